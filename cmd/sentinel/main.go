package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/HerbHall/sentinel/internal/alerts"
	"github.com/HerbHall/sentinel/internal/config"
	"github.com/HerbHall/sentinel/internal/dashboard"
	"github.com/HerbHall/sentinel/internal/event"
	"github.com/HerbHall/sentinel/internal/inventory"
	"github.com/HerbHall/sentinel/internal/llm/gemini"
	"github.com/HerbHall/sentinel/internal/plugin"
	"github.com/HerbHall/sentinel/internal/seed"
	"github.com/HerbHall/sentinel/internal/server"
	"github.com/HerbHall/sentinel/internal/settings"
	"github.com/HerbHall/sentinel/internal/state"
	"github.com/HerbHall/sentinel/internal/telemetry"
	"github.com/HerbHall/sentinel/internal/tickets"
	"github.com/HerbHall/sentinel/internal/users"
	"github.com/HerbHall/sentinel/internal/version"
	"github.com/HerbHall/sentinel/pkg/models"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version":
			fmt.Println(version.Info())
			return
		case "export":
			runExport(os.Args[2:])
			return
		}
	}

	configPath := flag.String("config", "", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.GetString("log.level"), cfg.GetString("log.format"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Sentinel server starting", zap.String("version", version.Short()))

	a, err := newApp(cfg, logger)
	if err != nil {
		logger.Fatal("failed to build application", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.registry.StartAll(ctx); err != nil {
		logger.Fatal("failed to start plugins", zap.Error(err))
	}

	go func() {
		if err := a.server.Start(); err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	logger.Info("Sentinel server ready", zap.String("addr", a.addr))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	cancel()
	a.registry.StopAll()

	logger.Info("Sentinel server stopped")
}

// app holds the wired components of a running server.
type app struct {
	addr     string
	state    *state.Container
	registry *plugin.Registry
	server   *server.Server
}

// newApp wires every plugin against one state container, event bus and
// metrics registry, and initializes them.
func newApp(cfg *config.Config, logger *zap.Logger) (*app, error) {
	initial := state.State{Notifications: models.DefaultNotificationSettings()}
	if cfg.GetBool("seed.enabled") {
		s, err := seed.NewLoader().State(time.Now().UTC())
		if err != nil {
			return nil, fmt.Errorf("load seed data: %w", err)
		}
		initial = s
	}
	container := state.NewContainer(initial)

	metrics := prometheus.NewRegistry()
	metrics.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	bus := event.NewBus(logger.Named("event"))

	provider := gemini.New(gemini.Config{
		BaseURL: cfg.GetString("llm.base_url"),
		APIKey:  cfg.GetString("llm.api_key"),
		Model:   cfg.GetString("llm.model"),
		Timeout: cfg.GetDuration("llm.timeout"),
	}, logger.Named("gemini"))

	registry := plugin.NewRegistry(logger)
	plugins := []plugin.Plugin{
		inventory.New(),
		telemetry.New(),
		alerts.New(provider,
			alerts.WithDiagnosisTimeout(cfg.GetDuration("llm.timeout")),
			alerts.WithTemperature(cfg.GetFloat64("llm.temperature")),
		),
		tickets.New(),
		users.New(),
		settings.New(),
		dashboard.New(),
	}
	for _, p := range plugins {
		if err := registry.Register(p); err != nil {
			return nil, fmt.Errorf("register plugin: %w", err)
		}
	}

	if err := registry.InitAll(cfg, plugin.Dependencies{
		Logger:  logger,
		Bus:     bus,
		State:   container,
		Metrics: metrics,
	}); err != nil {
		return nil, fmt.Errorf("initialize plugins: %w", err)
	}

	addr := net.JoinHostPort(cfg.GetString("server.host"), cfg.GetString("server.port"))
	srv := server.New(addr, registry, metrics, logger, server.Options{
		ReadTimeout:  cfg.GetDuration("server.read_timeout"),
		WriteTimeout: cfg.GetDuration("server.write_timeout"),
		IdleTimeout:  cfg.GetDuration("server.idle_timeout"),
	})

	return &app{addr: addr, state: container, registry: registry, server: srv}, nil
}

// newLogger builds a production (json) or development (console) zap logger
// at the given level.
func newLogger(level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}
	var zc zap.Config
	switch format {
	case "console":
		zc = zap.NewDevelopmentConfig()
	case "json", "":
		zc = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}
