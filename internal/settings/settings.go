// Package settings exposes the process-wide notification channel settings.
// Nothing dispatches notifications yet; the settings are stored for a future
// dispatcher.
package settings

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/HerbHall/sentinel/internal/plugin"
	"github.com/HerbHall/sentinel/internal/state"
	"github.com/HerbHall/sentinel/pkg/models"
)

var _ plugin.Plugin = (*Module)(nil)

// Module implements the settings plugin.
type Module struct {
	logger *zap.Logger
	bus    plugin.EventBus
	state  *state.Container
	now    func() time.Time
}

// New creates the settings module.
func New() *Module {
	return &Module{now: time.Now}
}

func (m *Module) Name() string    { return "settings" }
func (m *Module) Version() string { return "0.1.0" }

func (m *Module) Init(deps plugin.Dependencies) error {
	m.logger = deps.Logger
	m.bus = deps.Bus
	m.state = deps.State
	if m.state == nil {
		return fmt.Errorf("settings: state container is required")
	}
	return nil
}

func (m *Module) Start(_ context.Context) error { return nil }
func (m *Module) Stop() error                   { return nil }

// Notifications returns the current channel settings.
func (m *Module) Notifications() models.NotificationSettings {
	return m.state.Snapshot().Notifications
}

// UpdateNotifications replaces the channel settings. Destinations are
// trimmed; no other validation applies.
func (m *Module) UpdateNotifications(ctx context.Context, n models.NotificationSettings) models.NotificationSettings {
	s, err := m.state.Dispatch(state.UpdateNotifications{Settings: n})
	if err != nil {
		// UpdateNotifications never fails to reduce.
		m.logger.Error("failed to update notification settings", zap.Error(err))
		return m.Notifications()
	}
	enabled := make([]string, 0, 3)
	for _, c := range s.Notifications.Enabled() {
		enabled = append(enabled, string(c))
	}
	m.logger.Info("notification settings updated", zap.Strings("enabled", enabled))
	if m.bus != nil {
		m.bus.PublishAsync(ctx, plugin.Event{
			Topic:     state.TopicNotificationsUpdated,
			Source:    m.Name(),
			Timestamp: m.now(),
			Payload:   s.Notifications,
		})
	}
	return s.Notifications
}
