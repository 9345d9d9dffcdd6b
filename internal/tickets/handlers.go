package tickets

import (
	"net/http"

	"github.com/HerbHall/sentinel/internal/plugin"
	"github.com/HerbHall/sentinel/internal/server"
)

// Routes implements plugin.Plugin.
func (m *Module) Routes() []plugin.Route {
	return []plugin.Route{
		{Method: "GET", Path: "", Handler: m.handleList},
		{Method: "POST", Path: "", Handler: m.handleCreate},
		{Method: "GET", Path: "/{id}", Handler: m.handleGet},
		{Method: "PUT", Path: "/{id}", Handler: m.handleUpdate},
	}
}

// handleList returns all tickets.
//
//	@Summary		List tickets
//	@Tags			tickets
//	@Produce		json
//	@Success		200 {array} models.Ticket
//	@Router			/tickets [get]
func (m *Module) handleList(w http.ResponseWriter, _ *http.Request) {
	server.WriteJSON(w, http.StatusOK, m.List())
}

// handleGet returns one ticket.
//
//	@Summary		Get ticket
//	@Tags			tickets
//	@Produce		json
//	@Param			id path string true "Ticket ID"
//	@Success		200 {object} models.Ticket
//	@Failure		404 {object} server.Problem
//	@Router			/tickets/{id} [get]
func (m *Module) handleGet(w http.ResponseWriter, r *http.Request) {
	t, err := m.Get(r.PathValue("id"))
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, t)
}

// handleCreate opens a ticket.
//
//	@Summary		Create ticket
//	@Tags			tickets
//	@Accept			json
//	@Produce		json
//	@Param			request body Input true "Ticket"
//	@Success		201 {object} models.Ticket
//	@Failure		400 {object} server.Problem
//	@Router			/tickets [post]
func (m *Module) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := server.DecodeJSON(r, &in); err != nil {
		server.BadRequest(w, "invalid request body", r.URL.Path)
		return
	}
	t, err := m.Create(r.Context(), in)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusCreated, t)
}

// handleUpdate edits a ticket.
//
//	@Summary		Update ticket
//	@Tags			tickets
//	@Accept			json
//	@Produce		json
//	@Param			id path string true "Ticket ID"
//	@Param			request body Input true "Ticket"
//	@Success		200 {object} models.Ticket
//	@Failure		400 {object} server.Problem
//	@Failure		404 {object} server.Problem
//	@Router			/tickets/{id} [put]
func (m *Module) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := server.DecodeJSON(r, &in); err != nil {
		server.BadRequest(w, "invalid request body", r.URL.Path)
		return
	}
	t, err := m.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, t)
}
