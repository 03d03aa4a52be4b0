package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/smardesk/smardesk-backend/pkg/common"
	"github.com/smardesk/smardesk-backend/pkg/session"
)

type startSessionRequest struct {
	UserID string `json:"userId" binding:"required"`
}

// StartSession handles POST /api/sessions.
func (h *Handler) StartSession(c *gin.Context) {
	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}

	scope := common.NewScope(c.Request.Context(), "session.start")
	defer scope.Finish()

	s, err := h.sessions.Start(scope.Ctx, req.UserID)
	if err != nil {
		scope.TraceError(err)
		logrus.Errorf("failed to start session for user %s: %v", req.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start session"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"sessionId": s.ID,
		"userId":    s.UserID,
		"startedAt": s.StartedAt,
	})
}

// StopSession handles POST /api/sessions/:sessionId/stop. The response is
// the persisted summary so the client can render its end-of-session view
// without a second round trip.
func (h *Handler) StopSession(c *gin.Context) {
	scope := common.NewScope(c.Request.Context(), "session.stop")
	defer scope.Finish()

	sum, err := h.sessions.Stop(scope.Ctx, c.Param("sessionId"))
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		scope.TraceError(err)
		logrus.Errorf("failed to stop session %s: %v", c.Param("sessionId"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to stop session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": sum})
}

// StreamSession handles GET /api/sessions/:sessionId/stream. The client
// upgrades to a websocket, pushes landmark frames in, and receives
// verdicts and advice back on the same connection.
func (h *Handler) StreamSession(c *gin.Context) {
	s, ok := h.sessions.Get(c.Param("sessionId"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.Warnf("websocket upgrade failed for session %s: %v", s.ID, err)
		return
	}
	defer conn.Close()

	// Reader: client frames into the session's buffer. Closing the socket
	// ends the read loop, which tears the writer down too.
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		for {
			var frame session.Frame
			if err := conn.ReadJSON(&frame); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					logrus.Warnf("websocket read failed for session %s: %v", s.ID, err)
				}
				return
			}
			s.Push(frame)
		}
	}()

	// Writer: verdicts and advice back to the client.
	for {
		select {
		case <-readDone:
			return
		case <-s.Done():
			return
		case update, ok := <-s.Updates():
			if !ok {
				return
			}
			if err := conn.WriteJSON(update); err != nil {
				logrus.Warnf("websocket write failed for session %s: %v", s.ID, err)
				return
			}
		}
	}
}
