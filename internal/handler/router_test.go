package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"linechat/internal/app/chat"
	"linechat/internal/configs"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestDeps(t *testing.T) *AppDeps {
	t.Helper()

	cfg := configs.Default()
	cfg.HistorySize = 3

	return &AppDeps{
		Hub:    chat.NewHub(cfg),
		Config: cfg,
	}
}

func get(t *testing.T, h http.Handler, path string) (int, envelope) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var body envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("GET %s: invalid JSON %q: %v", path, rec.Body.String(), err)
	}
	return rec.Code, body
}

func TestHealth(t *testing.T) {
	code, body := get(t, Router(newTestDeps(t)), "/health")

	if code != http.StatusOK || body.Code != 0 {
		t.Fatalf("GET /health = %d code %d, want 200 code 0", code, body.Code)
	}

	var data map[string]string
	if err := json.Unmarshal(body.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data["status"] != "ok" || data["service"] != "server" {
		t.Errorf("data = %v", data)
	}
}

func TestOnlineUsersAndHistory(t *testing.T) {
	deps := newTestDeps(t)
	router := Router(deps)

	for _, name := range []string{"bob", "alice", "alice"} {
		sess := chat.NewSession(nil, 16, 0)
		sess.SetName(name)
		deps.Hub.Join(sess)
	}

	sender := chat.NewSession(nil, 16, 0)
	sender.SetName("carol")
	deps.Hub.Join(sender)
	deps.Hub.Broadcast("first", sender, false)
	deps.Hub.Broadcast("second", sender, false)
	deps.Hub.Broadcast("notice", nil, true)

	_, body := get(t, router, "/api/users")

	var users OnlineUsersData
	if err := json.Unmarshal(body.Data, &users); err != nil {
		t.Fatalf("decode users: %v", err)
	}
	if users.Sessions != 4 || len(users.Users) != 3 {
		t.Fatalf("users = %+v, want 3 names and 4 sessions", users)
	}
	if users.Users[0].Name != "alice" || users.Users[0].Sessions != 2 {
		t.Errorf("first user = %+v, want alice with 2 sessions", users.Users[0])
	}

	_, body = get(t, router, "/api/history")

	var history struct {
		Capacity int      `json:"capacity"`
		Messages []string `json:"messages"`
	}
	if err := json.Unmarshal(body.Data, &history); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if history.Capacity != 3 {
		t.Errorf("capacity = %d, want 3", history.Capacity)
	}
	if len(history.Messages) != 2 || history.Messages[0] != "[carol] first" || history.Messages[1] != "[carol] second" {
		t.Errorf("messages = %q, want the two public lines", history.Messages)
	}
}

func TestNotFound(t *testing.T) {
	code, body := get(t, Router(newTestDeps(t)), "/api/rooms")

	if code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", code, http.StatusNotFound)
	}
	if body.Code == 0 {
		t.Error("envelope code = 0 for a missing route")
	}
}
