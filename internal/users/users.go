// Package users manages dashboard team members. Permissions are derived from
// the role on every save and are informational only.
package users

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/HerbHall/sentinel/internal/plugin"
	"github.com/HerbHall/sentinel/internal/state"
	"github.com/HerbHall/sentinel/pkg/models"
)

var _ plugin.Plugin = (*Module)(nil)

// Input carries the editable fields of a user.
type Input struct {
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

// Module implements the users plugin.
type Module struct {
	logger *zap.Logger
	bus    plugin.EventBus
	state  *state.Container

	now   func() time.Time
	newID func() string
}

// New creates the users module.
func New() *Module {
	return &Module{
		now:   time.Now,
		newID: uuid.NewString,
	}
}

func (m *Module) Name() string    { return "users" }
func (m *Module) Version() string { return "0.1.0" }

func (m *Module) Init(deps plugin.Dependencies) error {
	m.logger = deps.Logger
	m.bus = deps.Bus
	m.state = deps.State
	if m.state == nil {
		return fmt.Errorf("users: state container is required")
	}
	return nil
}

func (m *Module) Start(_ context.Context) error { return nil }
func (m *Module) Stop() error                   { return nil }

// List returns every user.
func (m *Module) List() []models.User {
	return m.state.Snapshot().Users
}

// Get returns one user.
func (m *Module) Get(id string) (models.User, error) {
	u, ok := m.state.Snapshot().User(id)
	if !ok {
		return models.User{}, fmt.Errorf("user %q: %w", id, state.ErrNotFound)
	}
	return u, nil
}

// Create adds a team member. Role defaults to viewer.
func (m *Module) Create(ctx context.Context, in Input) (models.User, error) {
	id := m.newID()
	s, err := m.state.Dispatch(state.CreateUser{ID: id, Name: in.Name, Email: in.Email, Role: in.Role})
	if err != nil {
		return models.User{}, err
	}
	u, _ := s.User(id)
	m.logger.Info("user created", zap.String("user_id", id), zap.String("role", string(u.Role)))
	m.publish(ctx, state.TopicUserCreated, u)
	return u, nil
}

// Update replaces a team member's name, email and role.
func (m *Module) Update(ctx context.Context, id string, in Input) (models.User, error) {
	s, err := m.state.Dispatch(state.UpdateUser{ID: id, Name: in.Name, Email: in.Email, Role: in.Role})
	if err != nil {
		return models.User{}, err
	}
	u, _ := s.User(id)
	m.logger.Info("user updated", zap.String("user_id", id), zap.String("role", string(u.Role)))
	m.publish(ctx, state.TopicUserUpdated, u)
	return u, nil
}

func (m *Module) publish(ctx context.Context, topic string, payload any) {
	if m.bus == nil {
		return
	}
	m.bus.PublishAsync(ctx, plugin.Event{
		Topic:     topic,
		Source:    m.Name(),
		Timestamp: m.now(),
		Payload:   payload,
	})
}
