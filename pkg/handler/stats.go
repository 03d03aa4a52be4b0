package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/smardesk/smardesk-backend/pkg/state"
)

// snapshotMaxAge bounds how old a live snapshot may be before the stats
// view treats the session as gone. Covers sessions whose process died
// before the Redis TTL expires.
const snapshotMaxAge = time.Minute

// GetStats handles GET /api/stats/:userId. The response combines the
// per-day aggregates, the recent session summaries, and the live snapshot
// of an in-progress session when one exists.
func (h *Handler) GetStats(c *gin.Context) {
	userID := c.Param("userId")
	days := intQuery(c, "days", 7)
	limit := intQuery(c, "limit", 20)

	daily, err := h.store.DailyStats(c.Request.Context(), userID, days)
	if err != nil {
		logrus.Errorf("daily stats query failed for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats query failed"})
		return
	}

	summaries, err := h.store.ListSessionSummaries(c.Request.Context(), userID, limit)
	if err != nil {
		logrus.Errorf("session summaries query failed for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats query failed"})
		return
	}

	resp := gin.H{
		"daily":    daily,
		"sessions": summaries,
	}

	snap, err := state.GetSnapshot(c.Request.Context(), h.redis, userID)
	if err != nil {
		logrus.Warnf("live snapshot lookup failed for user %s: %v", userID, err)
	} else if snap != nil && !state.IsStale(snap, time.Now(), snapshotMaxAge) {
		resp["live"] = gin.H{
			"sessionId":    snap.SessionID,
			"startedAt":    snap.StartedAt,
			"updatedAt":    snap.UpdatedAt,
			"counters":     snap.Counters,
			"lastStatus":   snap.LastStatus,
			"lastSeverity": snap.LastSeverity,
			"postureScore": state.PostureScore(snap.Counters),
			"workMinutes":  state.WorkMinutes(snap.Counters),
		}
	}

	c.JSON(http.StatusOK, resp)
}

// GetAdviceHistory handles GET /api/advice/:userId.
func (h *Handler) GetAdviceHistory(c *gin.Context) {
	userID := c.Param("userId")
	days := intQuery(c, "days", 7)
	limit := intQuery(c, "limit", 50)

	since := time.Now().AddDate(0, 0, -days)
	events, err := h.store.ListAdviceEvents(c.Request.Context(), userID, since, limit)
	if err != nil {
		logrus.Errorf("advice history query failed for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "advice query failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"advice": events})
}

func intQuery(c *gin.Context, name string, fallback int) int {
	val, err := strconv.Atoi(c.DefaultQuery(name, strconv.Itoa(fallback)))
	if err != nil || val <= 0 {
		return fallback
	}

	return val
}
