package settings_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/HerbHall/sentinel/internal/config"
	"github.com/HerbHall/sentinel/internal/plugin"
	"github.com/HerbHall/sentinel/internal/settings"
	"github.com/HerbHall/sentinel/internal/state"
	"github.com/HerbHall/sentinel/internal/testutil"
	"github.com/HerbHall/sentinel/pkg/models"
)

func setupHandlerEnv(t *testing.T) (*testutil.MockBus, *http.ServeMux) {
	t.Helper()

	bus := testutil.NewMockBus()
	m := settings.New()
	if err := m.Init(plugin.Dependencies{
		Config: config.New(nil),
		Logger: zap.NewNop(),
		Bus:    bus,
		State:  testutil.NewContainer(),
	}); err != nil {
		t.Fatalf("Init: %v", err)
	}

	mux := http.NewServeMux()
	for _, r := range m.Routes() {
		mux.HandleFunc(r.Method+" /api/v1/settings"+r.Path, r.Handler)
	}
	return bus, mux
}

func doRequest(mux *http.ServeMux, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestHandleGetNotifications_Defaults(t *testing.T) {
	_, mux := setupHandlerEnv(t)

	w := doRequest(mux, "GET", "/api/v1/settings/notifications", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GetNotifications status = %d, want %d", w.Code, http.StatusOK)
	}

	var got models.NotificationSettings
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("Decode response: %v", err)
	}
	if got != models.DefaultNotificationSettings() {
		t.Errorf("settings = %+v, want defaults", got)
	}
}

func TestHandleSetNotifications_TrimsDestinations(t *testing.T) {
	bus, mux := setupHandlerEnv(t)

	body := models.NotificationSettings{
		Telegram: models.ChannelSettings{Enabled: true, Destination: "  @sentinel_ops  "},
		Email:    models.ChannelSettings{Enabled: false, Destination: " suporte@sentinel.com"},
	}
	w := doRequest(mux, "PUT", "/api/v1/settings/notifications", body)
	if w.Code != http.StatusOK {
		t.Fatalf("SetNotifications status = %d, want %d", w.Code, http.StatusOK)
	}

	w = doRequest(mux, "GET", "/api/v1/settings/notifications", nil)
	var got models.NotificationSettings
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("Decode response: %v", err)
	}
	if got.Telegram.Destination != "@sentinel_ops" {
		t.Errorf("telegram destination = %q, want %q", got.Telegram.Destination, "@sentinel_ops")
	}
	if got.Email.Destination != "suporte@sentinel.com" {
		t.Errorf("email destination = %q, want %q", got.Email.Destination, "suporte@sentinel.com")
	}
	if got.Email.Enabled {
		t.Error("email should be disabled")
	}
	if n := bus.Count(state.TopicNotificationsUpdated); n != 1 {
		t.Errorf("published %d update events, want 1", n)
	}
}

func TestHandleSetNotifications_InvalidBody(t *testing.T) {
	_, mux := setupHandlerEnv(t)

	req := httptest.NewRequest("PUT", "/api/v1/settings/notifications", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("SetNotifications status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("Content-Type = %q, want application/problem+json", ct)
	}
}

func TestHandleEnabledChannels(t *testing.T) {
	_, mux := setupHandlerEnv(t)

	doRequest(mux, "PUT", "/api/v1/settings/notifications", models.NotificationSettings{
		Discord: models.ChannelSettings{Enabled: true, Destination: "https://discord.example/hook"},
	})

	w := doRequest(mux, "GET", "/api/v1/settings/notifications/enabled", nil)
	var got []string
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("Decode response: %v", err)
	}
	if len(got) != 1 || got[0] != "discord" {
		t.Errorf("enabled = %v, want [discord]", got)
	}
}
