package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/HerbHall/sentinel/internal/config"
	"github.com/HerbHall/sentinel/internal/plugin"
)

type stubPlugin struct {
	name   string
	health *plugin.HealthStatus
}

func (p *stubPlugin) Name() string                     { return p.name }
func (p *stubPlugin) Version() string                  { return "0.1.0" }
func (p *stubPlugin) Init(plugin.Dependencies) error   { return nil }
func (p *stubPlugin) Start(context.Context) error      { return nil }
func (p *stubPlugin) Stop() error                      { return nil }
func (p *stubPlugin) Routes() []plugin.Route {
	return []plugin.Route{{
		Method: http.MethodGet,
		Path:   "/items/{id}",
		Handler: func(w http.ResponseWriter, r *http.Request) {
			WriteJSON(w, http.StatusOK, map[string]string{"id": r.PathValue("id")})
		},
	}}
}

type healthStub struct{ stubPlugin }

func (p *healthStub) Health(context.Context) plugin.HealthStatus { return *p.health }

func newTestServer(t *testing.T, plugins ...plugin.Plugin) *Server {
	t.Helper()
	reg := plugin.NewRegistry(zap.NewNop())
	v := viper.New()
	for _, p := range plugins {
		if err := reg.Register(p); err != nil {
			t.Fatal(err)
		}
		v.Set("plugins."+p.Name()+".enabled", true)
	}
	if err := reg.InitAll(config.New(v), plugin.Dependencies{}); err != nil {
		t.Fatal(err)
	}
	metrics := prometheus.NewRegistry()
	probe := prometheus.NewCounter(prometheus.CounterOpts{Name: "sentinel_test_total", Help: "test"})
	metrics.MustRegister(probe)
	probe.Inc()
	return New(":0", reg, metrics, zap.NewNop(), Options{})
}

func TestPluginRoutesMounted(t *testing.T) {
	srv := newTestServer(t, &stubPlugin{name: "widgets"})

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/widgets/items/42", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var body map[string]string
	json.NewDecoder(w.Body).Decode(&body)
	if body["id"] != "42" {
		t.Errorf("id = %q, want %q", body["id"], "42")
	}
}

func TestHealthAggregatesPlugins(t *testing.T) {
	tests := []struct {
		name   string
		status string
		want   string
	}{
		{"healthy", "healthy", "ok"},
		{"degraded", "degraded", "degraded"},
		{"unhealthy", "unhealthy", "unhealthy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &healthStub{stubPlugin{name: "llm"}}
			p.health = &plugin.HealthStatus{Status: tt.status}
			srv := newTestServer(t, p)

			w := httptest.NewRecorder()
			srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

			var body healthResponse
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if body.Status != tt.want {
				t.Errorf("status = %q, want %q", body.Status, tt.want)
			}
			if body.Service != "sentinel" {
				t.Errorf("service = %q, want sentinel", body.Service)
			}
			if w.Header().Get("X-Sentinel-Version") == "" {
				t.Error("missing X-Sentinel-Version header")
			}
		})
	}
}

func TestPluginsList(t *testing.T) {
	srv := newTestServer(t, &stubPlugin{name: "b"}, &stubPlugin{name: "a"})

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/plugins", nil))

	var body []struct {
		Name    string `json:"name"`
		Enabled bool   `json:"enabled"`
	}
	json.NewDecoder(w.Body).Decode(&body)
	if len(body) != 2 {
		t.Fatalf("plugins = %d, want 2", len(body))
	}
	if body[0].Name != "a" || !body[0].Enabled {
		t.Errorf("body[0] = %+v, want enabled plugin a", body[0])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "sentinel_test_total 1") {
		t.Errorf("metrics output missing counter:\n%s", w.Body.String())
	}
}
