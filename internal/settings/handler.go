package settings

import (
	"net/http"

	"github.com/HerbHall/sentinel/internal/plugin"
	"github.com/HerbHall/sentinel/internal/server"
	"github.com/HerbHall/sentinel/pkg/models"
)

// Routes implements plugin.Plugin.
func (m *Module) Routes() []plugin.Route {
	return []plugin.Route{
		{Method: "GET", Path: "/notifications", Handler: m.handleGetNotifications},
		{Method: "PUT", Path: "/notifications", Handler: m.handleSetNotifications},
		{Method: "GET", Path: "/notifications/enabled", Handler: m.handleEnabledChannels},
	}
}

// handleGetNotifications returns the notification channel settings.
//
//	@Summary		Get notification settings
//	@Description	Get the telegram, discord and email channel settings.
//	@Tags			settings
//	@Produce		json
//	@Success		200	{object}	models.NotificationSettings	"Current settings"
//	@Router			/settings/notifications [get]
func (m *Module) handleGetNotifications(w http.ResponseWriter, _ *http.Request) {
	server.WriteJSON(w, http.StatusOK, m.Notifications())
}

// handleSetNotifications replaces the notification channel settings.
//
//	@Summary		Set notification settings
//	@Description	Replace all channel settings at once. Destinations are trimmed.
//	@Tags			settings
//	@Accept			json
//	@Produce		json
//	@Param			request	body		models.NotificationSettings	true	"Channel settings"
//	@Success		200		{object}	models.NotificationSettings	"Settings saved"
//	@Failure		400		{object}	server.Problem				"Invalid request body"
//	@Router			/settings/notifications [put]
func (m *Module) handleSetNotifications(w http.ResponseWriter, r *http.Request) {
	var req models.NotificationSettings
	if err := server.DecodeJSON(r, &req); err != nil {
		server.BadRequest(w, "invalid request body", r.URL.Path)
		return
	}
	server.WriteJSON(w, http.StatusOK, m.UpdateNotifications(r.Context(), req))
}

// handleEnabledChannels lists the channels that are switched on.
//
//	@Summary		List enabled channels
//	@Tags			settings
//	@Produce		json
//	@Success		200	{array}	string
//	@Router			/settings/notifications/enabled [get]
func (m *Module) handleEnabledChannels(w http.ResponseWriter, _ *http.Request) {
	enabled := m.Notifications().Enabled()
	if enabled == nil {
		enabled = []models.Channel{}
	}
	server.WriteJSON(w, http.StatusOK, enabled)
}
