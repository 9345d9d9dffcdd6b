package plugin

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/HerbHall/sentinel/internal/config"
	"github.com/HerbHall/sentinel/internal/state"
)

// Route represents an HTTP route exposed by a plugin.
type Route struct {
	Method  string
	Path    string
	Handler http.HandlerFunc
}

// Dependencies are the shared services handed to each plugin at Init.
type Dependencies struct {
	// Config is scoped to plugins.<name>.
	Config *config.Config
	Logger *zap.Logger
	Bus    EventBus
	State  *state.Container
	// Metrics is where plugins register their collectors. Nil disables
	// metrics registration.
	Metrics prometheus.Registerer
}

// Plugin defines the interface that all Sentinel modules must implement.
type Plugin interface {
	// Name returns the plugin's unique identifier (e.g., "alerts", "inventory").
	Name() string

	// Version returns the plugin's semantic version.
	Version() string

	// Init wires the plugin to its dependencies.
	Init(deps Dependencies) error

	// Start begins the plugin's background operations.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the plugin.
	Stop() error

	// Routes returns the HTTP routes this plugin exposes.
	Routes() []Route
}

// Event is a notification published on the bus after a state change.
type Event struct {
	Topic     string    `json:"topic"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// EventHandler receives events from the bus.
type EventHandler func(ctx context.Context, e Event)

// EventBus is the in-process publish/subscribe channel between plugins.
type EventBus interface {
	Publish(ctx context.Context, e Event) error
	PublishAsync(ctx context.Context, e Event)
	Subscribe(topic string, h EventHandler) (unsubscribe func())
	SubscribeAll(h EventHandler) (unsubscribe func())
}
