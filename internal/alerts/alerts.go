// Package alerts manages the incident lifecycle: listing active alerts,
// inspecting one, asking the diagnostic collaborator about it and resolving
// it.
package alerts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/HerbHall/sentinel/internal/llm"
	"github.com/HerbHall/sentinel/internal/plugin"
	"github.com/HerbHall/sentinel/internal/state"
)

const (
	defaultDiagnosisTimeout   = 30 * time.Second
	defaultTemperature        = 0.2
	defaultDiagnosisPerMinute = 6
)

// ErrBusy is returned when a diagnosis is already outstanding.
var ErrBusy = errors.New("diagnosis already in progress")

var (
	_ plugin.Plugin        = (*Module)(nil)
	_ plugin.HealthChecker = (*Module)(nil)
)

// Option configures a Module.
type Option func(*Module)

// WithDiagnosisTimeout bounds each collaborator call.
func WithDiagnosisTimeout(d time.Duration) Option {
	return func(m *Module) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// WithTemperature sets the sampling temperature sent with every prompt.
func WithTemperature(t float64) Option {
	return func(m *Module) { m.temperature = t }
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Module) { m.now = now }
}

// Module implements the alert lifecycle plugin.
type Module struct {
	logger   *zap.Logger
	bus      plugin.EventBus
	state    *state.Container
	provider llm.Provider
	limiter  *rate.Limiter
	metrics  *metrics

	timeout     time.Duration
	temperature float64
	now         func() time.Time
	newID       func() string
}

// New creates the alerts module. provider may be nil, in which case every
// diagnosis degrades to the fallback text.
func New(provider llm.Provider, opts ...Option) *Module {
	m := &Module{
		provider:    provider,
		timeout:     defaultDiagnosisTimeout,
		temperature: defaultTemperature,
		now:         time.Now,
		newID:       func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Module) Name() string    { return "alerts" }
func (m *Module) Version() string { return "0.1.0" }

func (m *Module) Init(deps plugin.Dependencies) error {
	m.logger = deps.Logger
	m.bus = deps.Bus
	m.state = deps.State
	if m.state == nil {
		return fmt.Errorf("alerts: state container is required")
	}

	perMinute := defaultDiagnosisPerMinute
	if deps.Config.IsSet("diagnosis_per_minute") {
		perMinute = deps.Config.GetInt("diagnosis_per_minute")
	}
	m.limiter = newLimiter(perMinute)

	m.metrics = newMetrics(m.state)
	if deps.Metrics != nil {
		if err := m.metrics.register(deps.Metrics); err != nil {
			return fmt.Errorf("alerts: register metrics: %w", err)
		}
	}

	m.logger.Info("alerts module initialized",
		zap.Int("diagnosis_per_minute", perMinute),
		zap.Duration("diagnosis_timeout", m.timeout),
		zap.Bool("provider_configured", m.providerConfigured()),
	)
	return nil
}

func (m *Module) Start(_ context.Context) error { return nil }
func (m *Module) Stop() error                   { return nil }

// Health reports degraded when no collaborator credential is configured;
// diagnoses still answer, but always with the fallback text.
func (m *Module) Health(_ context.Context) plugin.HealthStatus {
	if !m.providerConfigured() {
		return plugin.HealthStatus{Status: "degraded", Message: "diagnostic collaborator not configured"}
	}
	return plugin.HealthStatus{Status: "healthy"}
}

type configurable interface {
	Configured() bool
}

func (m *Module) providerConfigured() bool {
	if m.provider == nil {
		return false
	}
	if c, ok := m.provider.(configurable); ok {
		return c.Configured()
	}
	return true
}

// newLimiter allows perMinute diagnoses per minute with a burst of the same
// size. A non-positive value disables limiting.
func newLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
}

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
