package alerts

import (
	"net/http"

	"github.com/HerbHall/sentinel/internal/plugin"
	"github.com/HerbHall/sentinel/internal/server"
	"github.com/HerbHall/sentinel/pkg/models"
)

// createAlertRequest is the JSON body for POST /alerts.
type createAlertRequest struct {
	Severity models.Status `json:"severity"`
	Message  string        `json:"message"`
	DeviceID string        `json:"device_id"`
}

// selectionRequest is the JSON body for PUT /alerts/selection.
type selectionRequest struct {
	AlertID string `json:"alert_id"`
}

// Routes implements plugin.Plugin.
func (m *Module) Routes() []plugin.Route {
	return []plugin.Route{
		{Method: "GET", Path: "", Handler: m.handleList},
		{Method: "POST", Path: "", Handler: m.handleCreate},
		{Method: "GET", Path: "/active", Handler: m.handleListActive},
		{Method: "GET", Path: "/selection", Handler: m.handleGetSelection},
		{Method: "PUT", Path: "/selection", Handler: m.handleSelect},
		{Method: "GET", Path: "/{id}", Handler: m.handleGet},
		{Method: "POST", Path: "/{id}/diagnosis", Handler: m.handleDiagnose},
		{Method: "POST", Path: "/{id}/resolve", Handler: m.handleResolve},
	}
}

// handleList returns every alert.
//
//	@Summary		List alerts
//	@Description	Returns all alerts, resolved ones included, in insertion order.
//	@Tags			alerts
//	@Produce		json
//	@Success		200 {array} models.Alert
//	@Router			/alerts [get]
func (m *Module) handleList(w http.ResponseWriter, _ *http.Request) {
	server.WriteJSON(w, http.StatusOK, m.List())
}

// handleListActive returns unresolved alerts.
//
//	@Summary		List active alerts
//	@Tags			alerts
//	@Produce		json
//	@Success		200 {array} models.Alert
//	@Router			/alerts/active [get]
func (m *Module) handleListActive(w http.ResponseWriter, _ *http.Request) {
	server.WriteJSON(w, http.StatusOK, m.ListActive())
}

// handleGet returns one alert.
//
//	@Summary		Get alert
//	@Tags			alerts
//	@Produce		json
//	@Param			id path string true "Alert ID"
//	@Success		200 {object} models.Alert
//	@Failure		404 {object} server.Problem
//	@Router			/alerts/{id} [get]
func (m *Module) handleGet(w http.ResponseWriter, r *http.Request) {
	a, err := m.Get(r.PathValue("id"))
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, a)
}

// handleCreate raises a new alert.
//
//	@Summary		Create alert
//	@Tags			alerts
//	@Accept			json
//	@Produce		json
//	@Param			request body createAlertRequest true "Alert"
//	@Success		201 {object} models.Alert
//	@Failure		400 {object} server.Problem
//	@Router			/alerts [post]
func (m *Module) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createAlertRequest
	if err := server.DecodeJSON(r, &req); err != nil {
		server.BadRequest(w, "invalid request body", r.URL.Path)
		return
	}
	a, err := m.Create(r.Context(), req.Severity, req.Message, req.DeviceID)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusCreated, a)
}

// handleGetSelection returns the inspected alert and its analysis.
//
//	@Summary		Current inspection
//	@Tags			alerts
//	@Produce		json
//	@Success		200 {object} state.Inspection
//	@Router			/alerts/selection [get]
func (m *Module) handleGetSelection(w http.ResponseWriter, _ *http.Request) {
	server.WriteJSON(w, http.StatusOK, m.Inspection())
}

// handleSelect moves the inspection to another alert.
//
//	@Summary		Select alert
//	@Tags			alerts
//	@Accept			json
//	@Produce		json
//	@Param			request body selectionRequest true "Selection"
//	@Success		200 {object} state.Inspection
//	@Failure		404 {object} server.Problem
//	@Router			/alerts/selection [put]
func (m *Module) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if err := server.DecodeJSON(r, &req); err != nil {
		server.BadRequest(w, "invalid request body", r.URL.Path)
		return
	}
	insp, err := m.Select(r.Context(), req.AlertID)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, insp)
}

// handleDiagnose asks the diagnostic collaborator about an alert. A failed
// collaborator call still answers 200 with ok=false and the fallback text.
//
//	@Summary		Request AI diagnosis
//	@Tags			alerts
//	@Produce		json
//	@Param			id path string true "Alert ID"
//	@Success		200 {object} models.Diagnosis
//	@Failure		404 {object} server.Problem
//	@Failure		409 {object} server.Problem
//	@Failure		429 {object} server.Problem
//	@Router			/alerts/{id}/diagnosis [post]
func (m *Module) handleDiagnose(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := m.Get(id); err != nil {
		server.WriteError(w, r, err)
		return
	}
	if m.Inspection().Busy {
		m.countDiagnosis(outcomeBusy)
		server.Conflict(w, ErrBusy.Error(), r.URL.Path)
		return
	}
	if !m.limiter.Allow() {
		m.countDiagnosis(outcomeRateLimited)
		server.RateLimited(w, "too many diagnosis requests, try again later", r.URL.Path)
		return
	}

	result, err := m.Diagnose(r.Context(), id)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, result)
}

// handleResolve marks an alert resolved.
//
//	@Summary		Resolve alert
//	@Tags			alerts
//	@Produce		json
//	@Param			id path string true "Alert ID"
//	@Success		200 {object} models.Alert
//	@Failure		404 {object} server.Problem
//	@Router			/alerts/{id}/resolve [post]
func (m *Module) handleResolve(w http.ResponseWriter, r *http.Request) {
	a, err := m.Resolve(r.Context(), r.PathValue("id"))
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, a)
}
