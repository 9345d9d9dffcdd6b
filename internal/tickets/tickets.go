// Package tickets manages human support tickets. Tickets are independent of
// alerts and are never deleted.
package tickets

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/HerbHall/sentinel/internal/plugin"
	"github.com/HerbHall/sentinel/internal/state"
	"github.com/HerbHall/sentinel/pkg/models"
)

// maxIDAttempts bounds how often a colliding ticket id is re-drawn.
const maxIDAttempts = 32

var _ plugin.Plugin = (*Module)(nil)

// Input carries the editable fields of a ticket. CreatedBy is only read on
// create.
type Input struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    models.TicketPriority `json:"priority"`
	Status      models.TicketStatus   `json:"status"`
	CreatedBy   string                `json:"created_by"`
	AssignedTo  string                `json:"assigned_to"`
}

// Module implements the tickets plugin.
type Module struct {
	logger *zap.Logger
	bus    plugin.EventBus
	state  *state.Container

	now    func() time.Time
	drawID func() int
}

// New creates the tickets module.
func New() *Module {
	return &Module{
		now:    time.Now,
		drawID: func() int { return 1000 + rand.IntN(9000) },
	}
}

func (m *Module) Name() string    { return "tickets" }
func (m *Module) Version() string { return "0.1.0" }

func (m *Module) Init(deps plugin.Dependencies) error {
	m.logger = deps.Logger
	m.bus = deps.Bus
	m.state = deps.State
	if m.state == nil {
		return fmt.Errorf("tickets: state container is required")
	}
	return nil
}

func (m *Module) Start(_ context.Context) error { return nil }
func (m *Module) Stop() error                   { return nil }

// List returns every ticket in creation order.
func (m *Module) List() []models.Ticket {
	return m.state.Snapshot().Tickets
}

// Get returns one ticket.
func (m *Module) Get(id string) (models.Ticket, error) {
	t, ok := m.state.Snapshot().Ticket(id)
	if !ok {
		return models.Ticket{}, fmt.Errorf("ticket %q: %w", id, state.ErrNotFound)
	}
	return t, nil
}

// Create opens a ticket with an id of the form T-<1000..9999>.
func (m *Module) Create(ctx context.Context, in Input) (models.Ticket, error) {
	now := m.now().UTC()
	for range maxIDAttempts {
		id := fmt.Sprintf("T-%d", m.drawID())
		s, err := m.state.Dispatch(state.CreateTicket{
			ID:          id,
			Title:       in.Title,
			Description: in.Description,
			Priority:    in.Priority,
			Status:      in.Status,
			CreatedBy:   in.CreatedBy,
			AssignedTo:  in.AssignedTo,
			Now:         now,
		})
		if errors.Is(err, state.ErrAlreadyExists) {
			m.logger.Debug("ticket id collision", zap.String("ticket_id", id))
			continue
		}
		if err != nil {
			return models.Ticket{}, err
		}
		t, _ := s.Ticket(id)
		m.logger.Info("ticket created",
			zap.String("ticket_id", id),
			zap.String("priority", string(t.Priority)),
			zap.String("created_by", t.CreatedBy),
		)
		m.publish(ctx, state.TopicTicketCreated, t)
		return t, nil
	}
	return models.Ticket{}, fmt.Errorf("allocate ticket id after %d attempts: %w", maxIDAttempts, state.ErrAlreadyExists)
}

// Update replaces a ticket's editable fields and refreshes its UpdatedAt.
func (m *Module) Update(ctx context.Context, id string, in Input) (models.Ticket, error) {
	s, err := m.state.Dispatch(state.UpdateTicket{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		Status:      in.Status,
		AssignedTo:  in.AssignedTo,
		Now:         m.now().UTC(),
	})
	if err != nil {
		return models.Ticket{}, err
	}
	t, _ := s.Ticket(id)
	m.logger.Info("ticket updated",
		zap.String("ticket_id", id),
		zap.String("status", string(t.Status)),
	)
	m.publish(ctx, state.TopicTicketUpdated, t)
	return t, nil
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
