// Package telemetry simulates live utilization readings for instrumented
// store assets and streams state snapshots to dashboard clients.
package telemetry

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/HerbHall/sentinel/internal/plugin"
	"github.com/HerbHall/sentinel/internal/state"
)

const (
	defaultInterval  = 5 * time.Second
	defaultMaxJitter = 2
)

var (
	_ plugin.Plugin        = (*Module)(nil)
	_ plugin.HealthChecker = (*Module)(nil)
	_ plugin.Validator     = (*Module)(nil)
)

// Module runs the telemetry simulator.
type Module struct {
	logger *zap.Logger
	bus    plugin.EventBus
	state  *state.Container

	interval       time.Duration
	maxJitter      int
	allowedOrigins []string

	rngMu sync.Mutex
	rng   *rand.Rand

	metrics *metrics
	now     func() time.Time

	mu       sync.Mutex
	cancel   context.CancelFunc
	runCtx   context.Context
	wg       sync.WaitGroup
	lastTick time.Time
}

// New creates a telemetry module. The jitter source is seeded from the
// runtime's random source.
func New() *Module {
	return &Module{
		rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now: time.Now,
	}
}

func (m *Module) Name() string    { return "telemetry" }
func (m *Module) Version() string { return "0.1.0" }

func (m *Module) Init(deps plugin.Dependencies) error {
	m.logger = deps.Logger
	m.bus = deps.Bus
	m.state = deps.State
	if m.state == nil {
		return fmt.Errorf("telemetry: state container is required")
	}

	m.interval = defaultInterval
	if d := deps.Config.GetDuration("interval"); d != 0 {
		m.interval = d
	}
	m.maxJitter = defaultMaxJitter
	if deps.Config.IsSet("max_jitter") {
		m.maxJitter = deps.Config.GetInt("max_jitter")
	}
	m.allowedOrigins = deps.Config.GetStringSlice("allowed_origins")

	m.metrics = newMetrics()
	if deps.Metrics != nil {
		if err := m.metrics.register(deps.Metrics); err != nil {
			return fmt.Errorf("telemetry: register metrics: %w", err)
		}
	}

	m.logger.Info("telemetry module initialized",
		zap.Duration("interval", m.interval),
		zap.Int("max_jitter", m.maxJitter),
	)
	return nil
}

// ValidateConfig rejects a non-positive interval or a negative jitter bound.
func (m *Module) ValidateConfig() error {
	if m.interval <= 0 {
		return fmt.Errorf("interval must be positive, got %v", m.interval)
	}
	if m.maxJitter < 0 {
		return fmt.Errorf("max_jitter must not be negative, got %d", m.maxJitter)
	}
	return nil
}

// Start launches the simulation loop. It runs until Stop is called or ctx
// is cancelled.
func (m *Module) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return fmt.Errorf("telemetry: already started")
	}
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.runCtx = ctx

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.run(ctx)
	}()
	m.logger.Info("telemetry simulator started")
	return nil
}

// Stop cancels the loop and waits for it to exit.
func (m *Module) Stop() error {
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.wg.Wait()
	m.logger.Info("telemetry simulator stopped")
	return nil
}

func (m *Module) run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.Tick(ctx); err != nil {
				m.logger.Warn("telemetry tick failed", zap.Error(err))
			}
		}
	}
}

// Tick applies one round of jitter, refreshes the gauges and announces the
// new stores on the bus.
func (m *Module) Tick(ctx context.Context) error {
	next, err := m.state.Dispatch(state.JitterTelemetry{Jitter: m.jitter})
	if err != nil {
		return fmt.Errorf("apply jitter: %w", err)
	}

	now := m.now()
	m.mu.Lock()
	m.lastTick = now
	m.mu.Unlock()

	m.metrics.observe(next)

	if m.bus != nil {
		m.bus.PublishAsync(ctx, plugin.Event{
			Topic:     state.TopicTelemetryTick,
			Source:    m.Name(),
			Timestamp: now,
			Payload:   next.Stores,
		})
	}
	m.logger.Debug("telemetry tick", zap.Int("assets", len(next.AllAssets())))
	return nil
}

// lifetime is cancelled when the module stops. Streams opened before Start
// live until their client disconnects.
func (m *Module) lifetime() context.Context {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.runCtx == nil {
		return context.Background()
	}
	return m.runCtx
}

// jitter returns a value uniformly drawn from [-maxJitter, maxJitter].
func (m *Module) jitter() int {
	if m.maxJitter == 0 {
		return 0
	}
	m.rngMu.Lock()
	defer m.rngMu.Unlock()
	return m.rng.IntN(2*m.maxJitter+1) - m.maxJitter
}

// Health reports degraded when the loop has missed three consecutive ticks.
func (m *Module) Health(_ context.Context) plugin.HealthStatus {
	m.mu.Lock()
	running, last := m.cancel != nil, m.lastTick
	m.mu.Unlock()

	if !running {
		return plugin.HealthStatus{Status: "degraded", Message: "simulator not running"}
	}
	details := map[string]string{"interval": m.interval.String()}
	if !last.IsZero() {
		details["last_tick"] = last.UTC().Format(time.RFC3339)
		if m.now().Sub(last) > 3*m.interval {
			return plugin.HealthStatus{Status: "degraded", Message: "simulator is falling behind", Details: details}
		}
	}
	return plugin.HealthStatus{Status: "healthy", Details: details}
}
