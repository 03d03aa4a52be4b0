package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"

	"github.com/smardesk/smardesk-backend/pkg/chat"
	"github.com/smardesk/smardesk-backend/pkg/classify"
	"github.com/smardesk/smardesk-backend/pkg/session"
	"github.com/smardesk/smardesk-backend/pkg/store"
)

type fixture struct {
	router   *gin.Engine
	store    *store.Store
	sessions *session.Manager
}

func setupHandler(t *testing.T, chatLimit int) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	db, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "stand up and stretch"}},
			},
		})
	}))
	t.Cleanup(upstream.Close)

	sessions := session.NewManager(session.Config{
		Store:       db,
		Redis:       rdb,
		Calibration: classify.DefaultCalibration(),
		Period:      10 * time.Millisecond,
	})
	t.Cleanup(func() { sessions.StopAll(context.Background()) })

	h := New(sessions, db, rdb,
		chat.NewClient(upstream.URL, "test-key", ""),
		chat.NewLimiter(rdb, chatLimit, time.Nanosecond))

	router := gin.New()
	h.Register(router)

	return &fixture{router: router, store: db, sessions: sessions}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr *bytes.Reader
	if body == "" {
		rdr = bytes.NewReader(nil)
	} else {
		rdr = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func TestHealth(t *testing.T) {
	f := setupHandler(t, 10)

	w := f.do(t, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", w.Code)
	}
	if decode(t, w)["status"] != "ok" {
		t.Errorf("unexpected health body: %s", w.Body.String())
	}
}

func TestSessionLifecycle(t *testing.T) {
	f := setupHandler(t, 10)

	w := f.do(t, http.MethodPost, "/api/sessions", `{"userId": "user1"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("start status = %d, body %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	sessionID, _ := body["sessionId"].(string)
	if sessionID == "" || body["userId"] != "user1" {
		t.Fatalf("unexpected start body: %s", w.Body.String())
	}

	w = f.do(t, http.MethodPost, "/api/sessions/"+sessionID+"/stop", "")
	if w.Code != http.StatusOK {
		t.Fatalf("stop status = %d, body %s", w.Code, w.Body.String())
	}
	summary, ok := decode(t, w)["summary"].(map[string]interface{})
	if !ok || summary["sessionId"] != sessionID {
		t.Errorf("unexpected stop body: %s", w.Body.String())
	}

	// A stopped session is gone.
	w = f.do(t, http.MethodPost, "/api/sessions/"+sessionID+"/stop", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("second stop status = %d, expected 404", w.Code)
	}
}

func TestStartSession_MissingUserID(t *testing.T) {
	f := setupHandler(t, 10)

	w := f.do(t, http.MethodPost, "/api/sessions", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, expected 400", w.Code)
	}
}

func TestStreamSession(t *testing.T) {
	f := setupHandler(t, 10)

	w := f.do(t, http.MethodPost, "/api/sessions", `{"userId": "user1"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("start status = %d", w.Code)
	}
	sessionID := decode(t, w)["sessionId"].(string)

	srv := httptest.NewServer(f.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/sessions/" + sessionID + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("websocket dial failed: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(session.Frame{FrameWidth: 640}); err != nil {
		t.Fatalf("frame write failed: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var update session.Update
	if err := conn.ReadJSON(&update); err != nil {
		t.Fatalf("update read failed: %v", err)
	}
	if update.Verdict == nil {
		t.Fatalf("expected a verdict update, got %+v", update)
	}
	if update.Verdict.Status != classify.StatusNoPerson {
		t.Errorf("status = %s, expected no person for an empty frame", update.Verdict.Status)
	}
}

func TestStreamSession_UnknownSession(t *testing.T) {
	f := setupHandler(t, 10)

	w := f.do(t, http.MethodGet, "/api/sessions/sess_missing/stream", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, expected 404", w.Code)
	}
}

func TestPostChat(t *testing.T) {
	f := setupHandler(t, 2)

	w := f.do(t, http.MethodPost, "/api/chat", `{"userId": "user1", "message": "help me focus"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	if body["reply"] != "stand up and stretch" || body["limited"] != false {
		t.Errorf("unexpected chat body: %s", w.Body.String())
	}
	if body["remaining"].(float64) != 1 {
		t.Errorf("remaining = %v, expected 1", body["remaining"])
	}
}

func TestPostChat_BadRequest(t *testing.T) {
	f := setupHandler(t, 2)

	w := f.do(t, http.MethodPost, "/api/chat", `{"userId": "user1"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, expected 400", w.Code)
	}
}

func TestPostChat_DailyLimit(t *testing.T) {
	f := setupHandler(t, 2)

	for i := 0; i < 2; i++ {
		w := f.do(t, http.MethodPost, "/api/chat", `{"userId": "user1", "message": "hi"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, body %s", i+1, w.Code, w.Body.String())
		}
	}

	w := f.do(t, http.MethodPost, "/api/chat", `{"userId": "user1", "message": "hi"}`)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, expected 429, body %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	if body["limited"] != true || body["remaining"].(float64) != 0 {
		t.Errorf("unexpected limit body: %s", w.Body.String())
	}

	// Usage reflects the consumed quota.
	w = f.do(t, http.MethodGet, "/api/limits/user1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("limits status = %d", w.Code)
	}
	body = decode(t, w)
	if body["requests"].(float64) != 2 || body["remaining"].(float64) != 0 {
		t.Errorf("unexpected limits body: %s", w.Body.String())
	}
}

func TestGetStats(t *testing.T) {
	f := setupHandler(t, 10)
	ctx := context.Background()

	now := time.Now()
	if err := f.store.InsertSessionSummary(ctx, &store.SessionSummary{
		UserID:             "user1",
		SessionID:          "sess_done",
		StartedAt:          now.Add(-time.Hour),
		EndedAt:            now,
		TotalWorkSeconds:   3600,
		GoodPostureSeconds: 3000,
		SlouchingSeconds:   600,
		PostureScore:       83,
	}); err != nil {
		t.Fatalf("InsertSessionSummary failed: %v", err)
	}

	w := f.do(t, http.MethodGet, "/api/stats/user1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	body := decode(t, w)

	sessions, ok := body["sessions"].([]interface{})
	if !ok || len(sessions) != 1 {
		t.Fatalf("unexpected sessions: %s", w.Body.String())
	}
	daily, ok := body["daily"].([]interface{})
	if !ok || len(daily) == 0 {
		t.Fatalf("unexpected daily stats: %s", w.Body.String())
	}
	if _, ok := body["live"]; ok {
		t.Error("no live session should be reported")
	}
}

func TestGetAdviceHistory_Empty(t *testing.T) {
	f := setupHandler(t, 10)

	w := f.do(t, http.MethodGet, "/api/advice/user1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}
