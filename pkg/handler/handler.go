// Package handler exposes the HTTP and websocket API surface: session
// lifecycle, the landmark stream, the statistics view and the chat proxy.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"

	"github.com/smardesk/smardesk-backend/pkg/chat"
	"github.com/smardesk/smardesk-backend/pkg/session"
	"github.com/smardesk/smardesk-backend/pkg/state"
	"github.com/smardesk/smardesk-backend/pkg/store"
)

// Handler holds the dependencies shared by all endpoints.
type Handler struct {
	sessions *session.Manager
	store    *store.Store
	redis    *redis.Client
	chat     *chat.Client
	limiter  *chat.Limiter
	health   *state.HealthChecker

	upgrader websocket.Upgrader
}

func New(sessions *session.Manager, st *store.Store, rdb *redis.Client, chatClient *chat.Client, limiter *chat.Limiter) *Handler {
	return &Handler{
		sessions: sessions,
		store:    st,
		redis:    rdb,
		chat:     chatClient,
		limiter:  limiter,
		health:   state.NewHealthChecker(rdb),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Browser clients connect from the app origin; access control
			// is handled by the CORS middleware on the HTTP side.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Register wires all routes onto the engine.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/health", h.Health)

	api := r.Group("/api")
	{
		api.POST("/sessions", h.StartSession)
		api.POST("/sessions/:sessionId/stop", h.StopSession)
		api.GET("/sessions/:sessionId/stream", h.StreamSession)

		api.GET("/stats/:userId", h.GetStats)
		api.GET("/advice/:userId", h.GetAdviceHistory)

		api.POST("/chat", h.PostChat)
		api.GET("/limits/:userId", h.GetLimits)
	}
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	if err := h.health.Check(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
