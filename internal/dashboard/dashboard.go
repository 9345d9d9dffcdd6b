// Package dashboard serves the estate-wide summary shown on the landing view.
package dashboard

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/HerbHall/sentinel/internal/plugin"
	"github.com/HerbHall/sentinel/internal/server"
	"github.com/HerbHall/sentinel/internal/state"
)

var _ plugin.Plugin = (*Module)(nil)

// Module implements the dashboard plugin.
type Module struct {
	logger *zap.Logger
	state  *state.Container
}

// New creates the dashboard module.
func New() *Module { return &Module{} }

func (m *Module) Name() string    { return "dashboard" }
func (m *Module) Version() string { return "0.1.0" }

func (m *Module) Init(deps plugin.Dependencies) error {
	m.logger = deps.Logger
	m.state = deps.State
	if m.state == nil {
		return fmt.Errorf("dashboard: state container is required")
	}
	return nil
}

func (m *Module) Start(_ context.Context) error { return nil }
func (m *Module) Stop() error                   { return nil }

// Summary computes the summary from the current state.
func (m *Module) Summary() Summary {
	return Summarize(m.state.Snapshot())
}

// Routes implements plugin.Plugin.
func (m *Module) Routes() []plugin.Route {
	return []plugin.Route{
		{Method: "GET", Path: "/summary", Handler: m.handleSummary},
	}
}

// handleSummary returns the estate summary.
//
//	@Summary		Dashboard summary
//	@Description	Online/total device counts, per-type counts, active alert count and the first five assets needing attention.
//	@Tags			dashboard
//	@Produce		json
//	@Success		200 {object} Summary
//	@Router			/dashboard/summary [get]
func (m *Module) handleSummary(w http.ResponseWriter, _ *http.Request) {
	server.WriteJSON(w, http.StatusOK, m.Summary())
}
