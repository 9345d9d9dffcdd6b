// Package inventory manages stores and the assets they own: store CRUD with
// cascading delete, asset registration, the selected-store pointer and
// spreadsheet exports of the asset list.
package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/HerbHall/sentinel/internal/plugin"
	"github.com/HerbHall/sentinel/internal/state"
)

var _ plugin.Plugin = (*Module)(nil)

// Module implements the inventory plugin.
type Module struct {
	logger  *zap.Logger
	bus     plugin.EventBus
	state   *state.Container
	metrics *metrics

	now   func() time.Time
	newID func() string
}

// New creates the inventory module.
func New() *Module {
	return &Module{
		now:   time.Now,
		newID: uuid.NewString,
	}
}

func (m *Module) Name() string    { return "inventory" }
func (m *Module) Version() string { return "0.1.0" }

func (m *Module) Init(deps plugin.Dependencies) error {
	m.logger = deps.Logger
	m.bus = deps.Bus
	m.state = deps.State
	if m.state == nil {
		return fmt.Errorf("inventory: state container is required")
	}

	m.metrics = newMetrics(m.state)
	if deps.Metrics != nil {
		if err := m.metrics.register(deps.Metrics); err != nil {
			return fmt.Errorf("inventory: register metrics: %w", err)
		}
	}

	s := m.state.Snapshot()
	m.logger.Info("inventory module initialized",
		zap.Int("stores", len(s.Stores)),
		zap.Int("assets", len(s.AllAssets())),
	)
	return nil
}

func (m *Module) Start(_ context.Context) error { return nil }
func (m *Module) Stop() error                   { return nil }

func (m *Module) publish(ctx context.Context, topic string, payload any) {
	if m.bus == nil {
		return
	}
	m.bus.PublishAsync(ctx, plugin.Event{
		Topic:     topic,
		Source:    m.Name(),
		Timestamp: m.now(),
		Payload:   payload,
	})
}
