// Package state holds the canonical in-memory collections of the dashboard
// and the pure reducers that transform them. Nothing here is persisted; a
// restart begins from whatever initial State the caller supplies.
package state

import "github.com/HerbHall/sentinel/pkg/models"

// Selection is the store currently opened in the inventory view.
type Selection struct {
	StoreID string `json:"store_id,omitempty"`
}

// Inspection is the alert currently opened in the alerts view together with
// its transient diagnosis output. Busy is advisory only.
type Inspection struct {
	AlertID  string            `json:"alert_id,omitempty"`
	Busy     bool              `json:"busy"`
	Analysis *models.Diagnosis `json:"analysis,omitempty"`
}

// State is the whole application state.
type State struct {
	Stores        []models.Store              `json:"stores"`
	Alerts        []models.Alert              `json:"alerts"`
	Tickets       []models.Ticket             `json:"tickets"`
	Users         []models.User               `json:"users"`
	Notifications models.NotificationSettings `json:"notifications"`
	Selection     Selection                   `json:"selection"`
	Inspection    Inspection                  `json:"inspection"`
}

// Clone returns a deep copy of s. Nil collections become empty slices.
func (s State) Clone() State {
	out := State{
		Stores:        make([]models.Store, len(s.Stores)),
		Alerts:        make([]models.Alert, len(s.Alerts)),
		Tickets:       make([]models.Ticket, len(s.Tickets)),
		Users:         make([]models.User, len(s.Users)),
		Notifications: s.Notifications,
		Selection:     s.Selection,
		Inspection:    s.Inspection,
	}
	for i := range s.Stores {
		out.Stores[i] = s.Stores[i].Clone()
	}
	for i := range s.Alerts {
		out.Alerts[i] = s.Alerts[i].Clone()
	}
	copy(out.Tickets, s.Tickets)
	for i := range s.Users {
		out.Users[i] = s.Users[i].Clone()
	}
	if s.Inspection.Analysis != nil {
		d := *s.Inspection.Analysis
		out.Inspection.Analysis = &d
	}
	return out
}

// AllAssets flattens the assets of every store, in store order.
func (s State) AllAssets() []models.Asset {
	var out []models.Asset
	for i := range s.Stores {
		out = append(out, s.Stores[i].Assets...)
	}
	return out
}

// Store returns the store with the given id.
func (s State) Store(id string) (models.Store, bool) {
	if i := s.storeIndex(id); i >= 0 {
		return s.Stores[i], true
	}
	return models.Store{}, false
}

// Asset returns the asset with the given id from any store.
func (s State) Asset(id string) (models.Asset, bool) {
	for i := range s.Stores {
		for j := range s.Stores[i].Assets {
			if s.Stores[i].Assets[j].ID == id {
				return s.Stores[i].Assets[j], true
			}
		}
	}
	return models.Asset{}, false
}

// Alert returns the alert with the given id.
func (s State) Alert(id string) (models.Alert, bool) {
	if i := s.alertIndex(id); i >= 0 {
		return s.Alerts[i], true
	}
	return models.Alert{}, false
}

// ActiveAlerts returns unresolved alerts in insertion order.
func (s State) ActiveAlerts() []models.Alert {
	out := []models.Alert{}
	for i := range s.Alerts {
		if s.Alerts[i].Active() {
			out = append(out, s.Alerts[i])
		}
	}
	return out
}

// Ticket returns the ticket with the given id.
func (s State) Ticket(id string) (models.Ticket, bool) {
	if i := s.ticketIndex(id); i >= 0 {
		return s.Tickets[i], true
	}
	return models.Ticket{}, false
}

// User returns the user with the given id.
func (s State) User(id string) (models.User, bool) {
	if i := s.userIndex(id); i >= 0 {
		return s.Users[i], true
	}
	return models.User{}, false
}

func (s State) storeIndex(id string) int {
	for i := range s.Stores {
		if s.Stores[i].ID == id {
			return i
		}
	}
	return -1
}

func (s State) alertIndex(id string) int {
	for i := range s.Alerts {
		if s.Alerts[i].ID == id {
			return i
		}
	}
	return -1
}

func (s State) ticketIndex(id string) int {
	for i := range s.Tickets {
		if s.Tickets[i].ID == id {
			return i
		}
	}
	return -1
}

func (s State) userIndex(id string) int {
	for i := range s.Users {
		if s.Users[i].ID == id {
			return i
		}
	}
	return -1
}
