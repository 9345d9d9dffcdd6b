package users

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

// handleList returns all users.
//
//	@Summary		List users
//	@Tags			users
//	@Produce		json
//	@Success		200 {array} models.User
//	@Router			/users [get]
func (m *Module) handleList(w http.ResponseWriter, _ *http.Request) {
	server.WriteJSON(w, http.StatusOK, m.List())
}

// handleGet returns one user.
//
//	@Summary		Get user
//	@Tags			users
//	@Produce		json
//	@Param			id path string true "User ID"
//	@Success		200 {object} models.User
//	@Failure		404 {object} server.Problem
//	@Router			/users/{id} [get]
func (m *Module) handleGet(w http.ResponseWriter, r *http.Request) {
	u, err := m.Get(r.PathValue("id"))
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, u)
}

// handleCreate adds a user.
//
//	@Summary		Create user
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Param			request body Input true "User"
//	@Success		201 {object} models.User
//	@Failure		400 {object} server.Problem
//	@Router			/users [post]
func (m *Module) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := server.DecodeJSON(r, &in); err != nil {
		server.BadRequest(w, "invalid request body", r.URL.Path)
		return
	}
	u, err := m.Create(r.Context(), in)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusCreated, u)
}

// handleUpdate edits a user.
//
//	@Summary		Update user
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Param			id path string true "User ID"
//	@Param			request body Input true "User"
//	@Success		200 {object} models.User
//	@Failure		400 {object} server.Problem
//	@Failure		404 {object} server.Problem
//	@Router			/users/{id} [put]
func (m *Module) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := server.DecodeJSON(r, &in); err != nil {
		server.BadRequest(w, "invalid request body", r.URL.Path)
		return
	}
	u, err := m.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, u)
}
