package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/smardesk/smardesk-backend/pkg/chat"
	"github.com/smardesk/smardesk-backend/pkg/common"
	"github.com/smardesk/smardesk-backend/pkg/metrics"
)

type chatRequest struct {
	UserID  string `json:"userId" binding:"required"`
	Message string `json:"message" binding:"required"`
	Kind    string `json:"kind"`
}

// PostChat handles POST /api/chat. The request is checked against the
// per-user quota before anything is sent upstream; denied requests do not
// consume quota.
func (h *Handler) PostChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.ChatRequestsTotal.WithLabelValues("bad_request").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId and message are required"})
		return
	}

	kind := req.Kind
	if kind != chat.KindInsight {
		kind = chat.KindChat
	}

	scope := common.NewScope(c.Request.Context(), "chat.complete")
	defer scope.Finish()
	scope.SetAttribute("chat.kind", kind)

	decision, err := h.limiter.Allow(scope.Ctx, req.UserID)
	if err != nil {
		metrics.ChatRequestsTotal.WithLabelValues("error").Inc()
		scope.TraceError(err)
		logrus.Errorf("chat limiter failed for user %s: %v", req.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "rate limit check failed"})
		return
	}
	if !decision.Allowed {
		metrics.ChatRequestsTotal.WithLabelValues("limited").Inc()
		scope.TraceEvent("request denied by rate limiter")
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":      decision.Reason,
			"limited":    true,
			"remaining":  decision.Remaining,
			"retryAfter": decision.RetryAfter.Seconds(),
		})
		return
	}

	reply, err := h.chat.Complete(scope.Ctx, kind, strings.TrimSpace(req.Message))
	if err != nil {
		metrics.ChatRequestsTotal.WithLabelValues("upstream_error").Inc()
		scope.TraceError(err)
		logrus.Errorf("chat completion failed for user %s: %v", req.UserID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "assistant is unavailable right now"})
		return
	}

	metrics.ChatRequestsTotal.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, gin.H{
		"reply":     reply,
		"remaining": decision.Remaining,
		"limited":   false,
	})
}

// GetLimits handles GET /api/limits/:userId.
func (h *Handler) GetLimits(c *gin.Context) {
	userID := c.Param("userId")

	used, remaining, err := h.limiter.Usage(c.Request.Context(), userID)
	if err != nil {
		logrus.Errorf("chat usage lookup failed for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "limit lookup failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requests":  used,
		"remaining": remaining,
	})
}
