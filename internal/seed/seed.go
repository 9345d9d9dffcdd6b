// Package seed provides the embedded demo dataset a fresh process starts
// with.
package seed

import (
	_ "embed"
	"fmt"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/HerbHall/sentinel/internal/state"
	"github.com/HerbHall/sentinel/pkg/models"
)

//go:embed seed.yaml
var seedRawData []byte

// AssetTemplate describes one asset stamped into every store.
type AssetTemplate struct {
	Prefix    string           `yaml:"prefix"`
	Index     int              `yaml:"index"`
	Name      string           `yaml:"name"`
	Type      models.AssetType `yaml:"type"`
	Host      int              `yaml:"host"`
	MAC       string           `yaml:"mac"`
	Latency   int              `yaml:"latency"`
	Status    models.Status    `yaml:"status"`
	OS        string           `yaml:"os"`
	Model     string           `yaml:"model"`
	CPUUsage  *int             `yaml:"cpu_usage"`
	DiskUsage *int             `yaml:"disk_usage"`
}

// StoreEntry is a seeded store.
type StoreEntry struct {
	ID      string        `yaml:"id"`
	Name    string        `yaml:"name"`
	Status  models.Status `yaml:"status"`
	Region  string        `yaml:"region"`
	Address string        `yaml:"address"`
}

// AlertEntry is a seeded active alert.
type AlertEntry struct {
	ID       string        `yaml:"id"`
	Severity models.Status `yaml:"severity"`
	Message  string        `yaml:"message"`
	DeviceID string        `yaml:"device_id"`
}

// TicketEntry is a seeded ticket.
type TicketEntry struct {
	ID          string                `yaml:"id"`
	Title       string                `yaml:"title"`
	Description string                `yaml:"description"`
	Priority    models.TicketPriority `yaml:"priority"`
	Status      models.TicketStatus   `yaml:"status"`
	CreatedBy   string                `yaml:"created_by"`
}

// UserEntry is a seeded team member.
type UserEntry struct {
	ID    string      `yaml:"id"`
	Name  string      `yaml:"name"`
	Email string      `yaml:"email"`
	Role  models.Role `yaml:"role"`
}

// Dataset is the top-level structure of the embedded YAML.
type Dataset struct {
	AssetTemplates []AssetTemplate `yaml:"asset_templates"`
	Stores         []StoreEntry    `yaml:"stores"`
	Alerts         []AlertEntry    `yaml:"alerts"`
	Tickets        []TicketEntry   `yaml:"tickets"`
	Users          []UserEntry     `yaml:"users"`
}

// Loader provides lazy-loaded access to the embedded dataset.
type Loader struct {
	once    sync.Once
	dataset Dataset
	err     error
}

// NewLoader creates a Loader that parses the embedded YAML on first access.
func NewLoader() *Loader {
	return &Loader{}
}

// Dataset returns the parsed dataset.
func (l *Loader) Dataset() (Dataset, error) {
	l.once.Do(l.load)
	return l.dataset, l.err
}

// State builds the initial application state, stamping every timestamp
// with now.
func (l *Loader) State(now time.Time) (state.State, error) {
	d, err := l.Dataset()
	if err != nil {
		return state.State{}, err
	}
	return d.Build(now)
}

func (l *Loader) load() {
	d, err := Parse(seedRawData)
	if err != nil {
		l.err = err
		return
	}
	l.dataset = d
}

// Parse decodes a dataset from YAML.
func Parse(data []byte) (Dataset, error) {
	var d Dataset
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Dataset{}, fmt.Errorf("seed: parse yaml: %w", err)
	}
	return d, nil
}

// Build expands the templates and validates the result. Percentages are
// clamped to [0,100].
func (d Dataset) Build(now time.Time) (state.State, error) {
	s := state.State{
		Stores:        make([]models.Store, 0, len(d.Stores)),
		Alerts:        make([]models.Alert, 0, len(d.Alerts)),
		Tickets:       make([]models.Ticket, 0, len(d.Tickets)),
		Users:         make([]models.User, 0, len(d.Users)),
		Notifications: models.DefaultNotificationSettings(),
	}

	assetIDs := make(map[string]bool)
	for _, se := range d.Stores {
		if se.ID == "" || se.Name == "" || se.Region == "" {
			return state.State{}, fmt.Errorf("seed: store %q: id, name and region are required", se.ID)
		}
		if !se.Status.Valid() {
			return state.State{}, fmt.Errorf("seed: store %q: unknown status %q", se.ID, se.Status)
		}
		if _, dup := s.Store(se.ID); dup {
			return state.State{}, fmt.Errorf("seed: duplicate store id %q", se.ID)
		}
		st := models.Store{
			ID:      se.ID,
			Name:    se.Name,
			Status:  se.Status,
			Region:  se.Region,
			Address: se.Address,
			Assets:  make([]models.Asset, 0, len(d.AssetTemplates)),
		}
		for _, tpl := range d.AssetTemplates {
			a, err := tpl.expand(se.ID, now)
			if err != nil {
				return state.State{}, err
			}
			if assetIDs[a.ID] {
				return state.State{}, fmt.Errorf("seed: duplicate asset id %q", a.ID)
			}
			assetIDs[a.ID] = true
			st.Assets = append(st.Assets, a)
		}
		s.Stores = append(s.Stores, st)
	}

	for _, ae := range d.Alerts {
		if !ae.Severity.Valid() {
			return state.State{}, fmt.Errorf("seed: alert %q: unknown severity %q", ae.ID, ae.Severity)
		}
		s.Alerts = append(s.Alerts, models.Alert{
			ID:        ae.ID,
			Timestamp: now,
			Severity:  ae.Severity,
			Message:   ae.Message,
			DeviceID:  ae.DeviceID,
		})
	}

	for _, te := range d.Tickets {
		if !te.Priority.Valid() || !te.Status.Valid() {
			return state.State{}, fmt.Errorf("seed: ticket %q: invalid priority or status", te.ID)
		}
		s.Tickets = append(s.Tickets, models.Ticket{
			ID:          te.ID,
			Title:       te.Title,
			Description: te.Description,
			Priority:    te.Priority,
			Status:      te.Status,
			CreatedAt:   now,
			UpdatedAt:   now,
			CreatedBy:   te.CreatedBy,
		})
	}

	for _, ue := range d.Users {
		if !ue.Role.Valid() {
			return state.State{}, fmt.Errorf("seed: user %q: unknown role %q", ue.ID, ue.Role)
		}
		s.Users = append(s.Users, models.User{
			ID:          ue.ID,
			Name:        ue.Name,
			Email:       ue.Email,
			Role:        ue.Role,
			Permissions: models.PermissionsFor(ue.Role),
		})
	}
	return s, nil
}

func (t AssetTemplate) expand(storeID string, now time.Time) (models.Asset, error) {
	if !t.Type.Valid() {
		return models.Asset{}, fmt.Errorf("seed: template %s-%d: unknown asset type %q", t.Prefix, t.Index, t.Type)
	}
	if !t.Status.Valid() {
		return models.Asset{}, fmt.Errorf("seed: template %s-%d: unknown status %q", t.Prefix, t.Index, t.Status)
	}
	a := models.Asset{
		ID:       fmt.Sprintf("%s-%s-%d", t.Prefix, storeID, t.Index),
		Name:     t.Name,
		Type:     t.Type,
		IP:       fmt.Sprintf("192.168.%s.%d", storeID, t.Host),
		MAC:      t.MAC,
		Latency:  t.Latency,
		LastSeen: now,
		Status:   t.Status,
		StoreID:  storeID,
		OS:       t.OS,
		Model:    t.Model,
	}
	if t.CPUUsage != nil {
		a.CPUUsage = models.Percent(*t.CPUUsage)
	}
	if t.DiskUsage != nil {
		a.DiskUsage = models.Percent(*t.DiskUsage)
	}
	return a, nil
}
