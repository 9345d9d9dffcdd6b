package state

import (
	"fmt"
	"strings"
	"time"

	"github.com/HerbHall/sentinel/pkg/models"
)

// Event topics published after an action is applied.
const (
	TopicStoreCreated          = "inventory.store.created"
	TopicStoreUpdated          = "inventory.store.updated"
	TopicStoreDeleted          = "inventory.store.deleted"
	TopicStoreSelected         = "inventory.store.selected"
	TopicAssetCreated          = "inventory.asset.created"
	TopicTelemetryTick         = "telemetry.tick"
	TopicAlertCreated          = "alerts.alert.created"
	TopicAlertSelected         = "alerts.alert.selected"
	TopicAlertDiagnosisStarted = "alerts.diagnosis.started"
	TopicAlertDiagnosed        = "alerts.diagnosis.completed"
	TopicAlertResolved         = "alerts.alert.resolved"
	TopicTicketCreated         = "tickets.ticket.created"
	TopicTicketUpdated         = "tickets.ticket.updated"
	TopicUserCreated           = "users.user.created"
	TopicUserUpdated           = "users.user.updated"
	TopicNotificationsUpdated  = "settings.notifications.updated"
)

// Action is a request to transform State. Identifiers and timestamps are
// carried on the action so that Reduce stays deterministic.
type Action interface {
	// Topic names the event published once the action is applied.
	Topic() string
}

// CreateStore registers a new store with no assets.
type CreateStore struct {
	ID      string
	Name    string
	Region  string
	Address string
}

// UpdateStore edits a store's descriptive fields. A nil Status leaves the
// status unchanged.
type UpdateStore struct {
	ID      string
	Name    string
	Region  string
	Address string
	Status  *models.Status
}

// DeleteStore removes a store and every asset it owns.
type DeleteStore struct {
	ID string
}

// SelectStore opens a store in the inventory view. An empty ID clears it.
type SelectStore struct {
	ID string
}

// CreateAsset adds a device to an existing store.
type CreateAsset struct {
	ID          string
	StoreID     string
	Name        string
	Type        models.AssetType
	IP          string
	MAC         string
	Observation string
	Now         time.Time
}

// JitterTelemetry nudges the CPU usage of every instrumented asset by the
// value returned from Jitter, clamped to [0,100].
type JitterTelemetry struct {
	Jitter func() int
}

// CreateAlert raises a new active alert.
type CreateAlert struct {
	ID       string
	Severity models.Status
	Message  string
	DeviceID string
	Now      time.Time
}

// SelectAlert opens an alert for inspection and discards any previous
// analysis. An empty ID clears the inspection.
type SelectAlert struct {
	ID string
}

// BeginDiagnosis marks the inspected alert as waiting on the collaborator.
type BeginDiagnosis struct {
	AlertID string
}

// CompleteDiagnosis stores a diagnosis result as the transient analysis of
// the inspection, if the inspection still points at the same alert. A
// successful result is also kept on the alert itself.
type CompleteDiagnosis struct {
	Result models.Diagnosis
}

// ResolveAlert closes an alert. Resolution is one-way.
type ResolveAlert struct {
	ID  string
	Now time.Time
}

// CreateTicket opens a support ticket.
type CreateTicket struct {
	ID          string
	Title       string
	Description string
	Priority    models.TicketPriority
	Status      models.TicketStatus
	CreatedBy   string
	AssignedTo  string
	Now         time.Time
}

// UpdateTicket replaces a ticket's editable fields and refreshes UpdatedAt.
type UpdateTicket struct {
	ID          string
	Title       string
	Description string
	Priority    models.TicketPriority
	Status      models.TicketStatus
	AssignedTo  string
	Now         time.Time
}

// CreateUser adds a team member.
type CreateUser struct {
	ID    string
	Name  string
	Email string
	Role  models.Role
}

// UpdateUser replaces a team member's name, email and role.
type UpdateUser struct {
	ID    string
	Name  string
	Email string
	Role  models.Role
}

// UpdateNotifications replaces the notification channel settings.
type UpdateNotifications struct {
	Settings models.NotificationSettings
}

func (CreateStore) Topic() string         { return TopicStoreCreated }
func (UpdateStore) Topic() string         { return TopicStoreUpdated }
func (DeleteStore) Topic() string         { return TopicStoreDeleted }
func (SelectStore) Topic() string         { return TopicStoreSelected }
func (CreateAsset) Topic() string         { return TopicAssetCreated }
func (JitterTelemetry) Topic() string     { return TopicTelemetryTick }
func (CreateAlert) Topic() string         { return TopicAlertCreated }
func (SelectAlert) Topic() string         { return TopicAlertSelected }
func (BeginDiagnosis) Topic() string      { return TopicAlertDiagnosisStarted }
func (CompleteDiagnosis) Topic() string   { return TopicAlertDiagnosed }
func (ResolveAlert) Topic() string        { return TopicAlertResolved }
func (CreateTicket) Topic() string        { return TopicTicketCreated }
func (UpdateTicket) Topic() string        { return TopicTicketUpdated }
func (CreateUser) Topic() string          { return TopicUserCreated }
func (UpdateUser) Topic() string          { return TopicUserUpdated }
func (UpdateNotifications) Topic() string { return TopicNotificationsUpdated }

// Reduce applies a to s and returns the resulting state. On error the
// returned state is s unchanged; no action is ever partially applied.
func Reduce(s State, a Action) (State, error) {
	next := s.Clone()
	var err error
	switch act := a.(type) {
	case CreateStore:
		err = next.createStore(act)
	case UpdateStore:
		err = next.updateStore(act)
	case DeleteStore:
		err = next.deleteStore(act)
	case SelectStore:
		err = next.selectStore(act)
	case CreateAsset:
		err = next.createAsset(act)
	case JitterTelemetry:
		next.jitterTelemetry(act)
	case CreateAlert:
		err = next.createAlert(act)
	case SelectAlert:
		err = next.selectAlert(act)
	case BeginDiagnosis:
		err = next.beginDiagnosis(act)
	case CompleteDiagnosis:
		next.completeDiagnosis(act)
	case ResolveAlert:
		err = next.resolveAlert(act)
	case CreateTicket:
		err = next.createTicket(act)
	case UpdateTicket:
		err = next.updateTicket(act)
	case CreateUser:
		err = next.createUser(act)
	case UpdateUser:
		err = next.updateUser(act)
	case UpdateNotifications:
		next.updateNotifications(act)
	default:
		err = fmt.Errorf("unknown action %T", a)
	}
	if err != nil {
		return s, err
	}
	return next, nil
}

// -- inventory --

func (s *State) createStore(a CreateStore) error {
	name, region := strings.TrimSpace(a.Name), strings.TrimSpace(a.Region)
	if name == "" || region == "" {
		return invalid("name and region are required")
	}
	if s.storeIndex(a.ID) >= 0 {
		return fmt.Errorf("store %q: %w", a.ID, ErrAlreadyExists)
	}
	s.Stores = append(s.Stores, models.Store{
		ID:      a.ID,
		Name:    name,
		Status:  models.StatusNormal,
		Region:  region,
		Address: strings.TrimSpace(a.Address),
		Assets:  []models.Asset{},
	})
	return nil
}

func (s *State) updateStore(a UpdateStore) error {
	i := s.storeIndex(a.ID)
	if i < 0 {
		return fmt.Errorf("store %q: %w", a.ID, ErrNotFound)
	}
	name, region := strings.TrimSpace(a.Name), strings.TrimSpace(a.Region)
	if name == "" || region == "" {
		return invalid("name and region are required")
	}
	if a.Status != nil && !a.Status.Valid() {
		return invalid("status must be normal, warning or critical")
	}
	st := &s.Stores[i]
	st.Name = name
	st.Region = region
	st.Address = strings.TrimSpace(a.Address)
	if a.Status != nil {
		st.Status = *a.Status
	}
	return nil
}

func (s *State) deleteStore(a DeleteStore) error {
	i := s.storeIndex(a.ID)
	if i < 0 {
		return fmt.Errorf("store %q: %w", a.ID, ErrNotFound)
	}
	s.Stores = append(s.Stores[:i], s.Stores[i+1:]...)
	if s.Selection.StoreID == a.ID {
		s.Selection = Selection{}
	}
	return nil
}

func (s *State) selectStore(a SelectStore) error {
	if a.ID != "" && s.storeIndex(a.ID) < 0 {
		return fmt.Errorf("store %q: %w", a.ID, ErrNotFound)
	}
	s.Selection = Selection{StoreID: a.ID}
	return nil
}

func (s *State) createAsset(a CreateAsset) error {
	name, ip := strings.TrimSpace(a.Name), strings.TrimSpace(a.IP)
	if name == "" || ip == "" || a.StoreID == "" {
		return invalid("name, ip and store are required")
	}
	typ := a.Type
	if typ == "" {
		typ = models.AssetTypePDV
	}
	if !typ.Valid() {
		return invalid(fmt.Sprintf("unknown asset type %q", a.Type))
	}
	i := s.storeIndex(a.StoreID)
	if i < 0 {
		return fmt.Errorf("store %q: %w", a.StoreID, ErrNotFound)
	}
	if _, exists := s.Asset(a.ID); exists {
		return fmt.Errorf("asset %q: %w", a.ID, ErrAlreadyExists)
	}
	s.Stores[i].Assets = append(s.Stores[i].Assets, models.Asset{
		ID:          a.ID,
		Name:        name,
		Type:        typ,
		IP:          ip,
		MAC:         strings.TrimSpace(a.MAC),
		Observation: a.Observation,
		StoreID:     a.StoreID,
		Status:      models.StatusNormal,
		Latency:     0,
		LastSeen:    a.Now,
		CPUUsage:    models.Percent(0),
		DiskUsage:   models.Percent(0),
	})
	return nil
}

// -- telemetry --

func (s *State) jitterTelemetry(a JitterTelemetry) {
	if a.Jitter == nil {
		return
	}
	for i := range s.Stores {
		assets := s.Stores[i].Assets
		for j := range assets {
			if !assets[j].Instrumented() {
				continue
			}
			assets[j].CPUUsage = models.Percent(*assets[j].CPUUsage + a.Jitter())
		}
	}
}

// -- alerts --

func (s *State) createAlert(a CreateAlert) error {
	msg := strings.TrimSpace(a.Message)
	if msg == "" {
		return invalid("message is required")
	}
	if !a.Severity.Valid() {
		return invalid("severity must be normal, warning or critical")
	}
	if s.alertIndex(a.ID) >= 0 {
		return fmt.Errorf("alert %q: %w", a.ID, ErrAlreadyExists)
	}
	s.Alerts = append(s.Alerts, models.Alert{
		ID:        a.ID,
		Timestamp: a.Now,
		Severity:  a.Severity,
		Message:   msg,
		DeviceID:  strings.TrimSpace(a.DeviceID),
	})
	return nil
}

func (s *State) selectAlert(a SelectAlert) error {
	if a.ID != "" && s.alertIndex(a.ID) < 0 {
		return fmt.Errorf("alert %q: %w", a.ID, ErrNotFound)
	}
	s.Inspection = Inspection{AlertID: a.ID}
	return nil
}

func (s *State) beginDiagnosis(a BeginDiagnosis) error {
	if s.alertIndex(a.AlertID) < 0 {
		return fmt.Errorf("alert %q: %w", a.AlertID, ErrNotFound)
	}
	s.Inspection = Inspection{AlertID: a.AlertID, Busy: true}
	return nil
}

func (s *State) completeDiagnosis(a CompleteDiagnosis) {
	if i := s.alertIndex(a.Result.AlertID); i >= 0 && a.Result.OK {
		s.Alerts[i].AIAnalysis = a.Result.Text
	}
	if s.Inspection.AlertID != a.Result.AlertID {
		return
	}
	d := a.Result
	s.Inspection.Busy = false
	s.Inspection.Analysis = &d
}

func (s *State) resolveAlert(a ResolveAlert) error {
	i := s.alertIndex(a.ID)
	if i < 0 {
		return fmt.Errorf("alert %q: %w", a.ID, ErrNotFound)
	}
	al := &s.Alerts[i]
	if !al.Resolved {
		al.Resolved = true
		now := a.Now
		al.ResolvedAt = &now
	}
	s.Inspection = Inspection{}
	return nil
}

// -- tickets --

func (s *State) createTicket(a CreateTicket) error {
	title := strings.TrimSpace(a.Title)
	if title == "" {
		return invalid("title is required")
	}
	priority, status, err := ticketEnums(a.Priority, a.Status)
	if err != nil {
		return err
	}
	if s.ticketIndex(a.ID) >= 0 {
		return fmt.Errorf("ticket %q: %w", a.ID, ErrAlreadyExists)
	}
	createdBy := strings.TrimSpace(a.CreatedBy)
	if createdBy == "" {
		createdBy = "Admin User"
	}
	s.Tickets = append(s.Tickets, models.Ticket{
		ID:          a.ID,
		Title:       title,
		Description: a.Description,
		Priority:    priority,
		Status:      status,
		CreatedAt:   a.Now,
		UpdatedAt:   a.Now,
		CreatedBy:   createdBy,
		AssignedTo:  strings.TrimSpace(a.AssignedTo),
	})
	return nil
}

func (s *State) updateTicket(a UpdateTicket) error {
	i := s.ticketIndex(a.ID)
	if i < 0 {
		return fmt.Errorf("ticket %q: %w", a.ID, ErrNotFound)
	}
	title := strings.TrimSpace(a.Title)
	if title == "" {
		return invalid("title is required")
	}
	priority, status, err := ticketEnums(a.Priority, a.Status)
	if err != nil {
		return err
	}
	t := &s.Tickets[i]
	t.Title = title
	t.Description = a.Description
	t.Priority = priority
	t.Status = status
	t.AssignedTo = strings.TrimSpace(a.AssignedTo)
	t.UpdatedAt = a.Now
	if t.UpdatedAt.Before(t.CreatedAt) {
		t.UpdatedAt = t.CreatedAt
	}
	return nil
}

func ticketEnums(p models.TicketPriority, st models.TicketStatus) (models.TicketPriority, models.TicketStatus, error) {
	if p == "" {
		p = models.TicketPriorityMedium
	}
	if st == "" {
		st = models.TicketStatusOpen
	}
	if !p.Valid() {
		return "", "", invalid("priority must be low, medium or high")
	}
	if !st.Valid() {
		return "", "", invalid("status must be open, in-progress or closed")
	}
	return p, st, nil
}

// -- users --

func (s *State) createUser(a CreateUser) error {
	u, err := buildUser(a.ID, a.Name, a.Email, a.Role)
	if err != nil {
		return err
	}
	if s.userIndex(a.ID) >= 0 {
		return fmt.Errorf("user %q: %w", a.ID, ErrAlreadyExists)
	}
	s.Users = append(s.Users, u)
	return nil
}

func (s *State) updateUser(a UpdateUser) error {
	i := s.userIndex(a.ID)
	if i < 0 {
		return fmt.Errorf("user %q: %w", a.ID, ErrNotFound)
	}
	u, err := buildUser(a.ID, a.Name, a.Email, a.Role)
	if err != nil {
		return err
	}
	s.Users[i] = u
	return nil
}

func buildUser(id, name, email string, role models.Role) (models.User, error) {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if name == "" || email == "" {
		return models.User{}, invalid("name and email are required")
	}
	if role == "" {
		role = models.RoleViewer
	}
	if !role.Valid() {
		return models.User{}, invalid("role must be admin, tech or viewer")
	}
	return models.User{
		ID:          id,
		Name:        name,
		Email:       email,
		Role:        role,
		Permissions: models.PermissionsFor(role),
	}, nil
}

// -- settings --

func (s *State) updateNotifications(a UpdateNotifications) {
	n := a.Settings
	n.Telegram.Destination = strings.TrimSpace(n.Telegram.Destination)
	n.Discord.Destination = strings.TrimSpace(n.Discord.Destination)
	n.Email.Destination = strings.TrimSpace(n.Email.Destination)
	s.Notifications = n
}
