package tickets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/HerbHall/sentinel/internal/config"
	"github.com/HerbHall/sentinel/internal/plugin"
	"github.com/HerbHall/sentinel/internal/state"
	"github.com/HerbHall/sentinel/internal/testutil"
	"github.com/HerbHall/sentinel/pkg/models"
)

func newTestModule(t *testing.T) (*Module, *testutil.Clock, *testutil.MockBus) {
	t.Helper()
	clock := testutil.NewClock()
	bus := testutil.NewMockBus()
	m := New()
	m.now = clock.Now
	require.NoError(t, m.Init(plugin.Dependencies{
		Config: config.New(nil),
		Logger: zap.NewNop(),
		Bus:    bus,
		State:  testutil.NewContainer(),
	}))
	return m, clock, bus
}

func TestCreateDefaults(t *testing.T) {
	m, clock, bus := newTestModule(t)

	tk, err := m.Create(context.Background(), Input{Title: "  Impressora sem papel  "})
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^T-[1-9]\d{3}$`), tk.ID)
	assert.Equal(t, "Impressora sem papel", tk.Title)
	assert.Equal(t, models.TicketPriorityMedium, tk.Priority)
	assert.Equal(t, models.TicketStatusOpen, tk.Status)
	assert.Equal(t, "Admin User", tk.CreatedBy)
	assert.Equal(t, clock.Now(), tk.CreatedAt)
	assert.Equal(t, tk.CreatedAt, tk.UpdatedAt)
	assert.Equal(t, 1, bus.Count(state.TopicTicketCreated))
}

func TestCreateIDRange(t *testing.T) {
	m, _, _ := newTestModule(t)
	for range 50 {
		tk, err := m.Create(context.Background(), Input{Title: "x"})
		require.NoError(t, err)
		var n int
		_, err = fmt.Sscanf(tk.ID, "T-%d", &n)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 1000)
		assert.LessOrEqual(t, n, 9999)
	}
	assert.Len(t, m.List(), 50)
}

func TestCreateRedrawsOnCollision(t *testing.T) {
	m, _, _ := newTestModule(t)
	draws := []int{1234, 1234, 1234, 5678}
	m.drawID = func() int {
		n := draws[0]
		draws = draws[1:]
		return n
	}

	first, err := m.Create(context.Background(), Input{Title: "a"})
	require.NoError(t, err)
	assert.Equal(t, "T-1234", first.ID)

	second, err := m.Create(context.Background(), Input{Title: "b"})
	require.NoError(t, err)
	assert.Equal(t, "T-5678", second.ID)
	assert.Empty(t, draws)
}

func TestCreateGivesUpAfterMaxAttempts(t *testing.T) {
	m, _, _ := newTestModule(t)
	m.drawID = func() int { return 4242 }

	_, err := m.Create(context.Background(), Input{Title: "a"})
	require.NoError(t, err)
	_, err = m.Create(context.Background(), Input{Title: "b"})
	assert.ErrorIs(t, err, state.ErrAlreadyExists)
}

func TestCreateValidation(t *testing.T) {
	m, _, bus := newTestModule(t)

	_, err := m.Create(context.Background(), Input{Title: "   "})
	assert.ErrorIs(t, err, state.ErrValidation)

	_, err = m.Create(context.Background(), Input{Title: "x", Priority: "urgent"})
	assert.ErrorIs(t, err, state.ErrValidation)

	assert.Empty(t, m.List())
	assert.Empty(t, bus.Events())
}

func TestUpdateRefreshesUpdatedAt(t *testing.T) {
	m, clock, _ := newTestModule(t)
	ctx := context.Background()

	tk, err := m.Create(ctx, Input{Title: "Switch reiniciando", CreatedBy: "Operador Silva"})
	require.NoError(t, err)

	clock.Advance(time.Hour)
	up, err := m.Update(ctx, tk.ID, Input{
		Title:      "Switch reiniciando",
		Priority:   models.TicketPriorityHigh,
		Status:     models.TicketStatusInProgress,
		AssignedTo: "Técnico João",
	})
	require.NoError(t, err)
	assert.Equal(t, tk.CreatedAt, up.CreatedAt)
	assert.Equal(t, tk.CreatedAt.Add(time.Hour), up.UpdatedAt)
	assert.Equal(t, "Operador Silva", up.CreatedBy, "creator is immutable")
	assert.Equal(t, models.TicketStatusInProgress, up.Status)

	clock.Set(tk.CreatedAt.Add(-time.Hour))
	up, err = m.Update(ctx, tk.ID, Input{Title: "x"})
	require.NoError(t, err)
	assert.False(t, up.UpdatedAt.Before(up.CreatedAt))

	_, err = m.Update(ctx, "T-0000", Input{Title: "x"})
	assert.ErrorIs(t, err, state.ErrNotFound)
}

func TestHandlers(t *testing.T) {
	m, _, _ := newTestModule(t)
	mux := http.NewServeMux()
	for _, r := range m.Routes() {
		mux.HandleFunc(r.Method+" /api/v1/tickets"+r.Path, r.Handler)
	}
	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		return w
	}

	w := do(http.MethodPost, "/api/v1/tickets", `{"title":"PDV travado","priority":"high"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var tk models.Ticket
	require.NoError(t, json.NewDecoder(w.Body).Decode(&tk))

	w = do(http.MethodGet, "/api/v1/tickets/"+tk.ID, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(http.MethodPut, "/api/v1/tickets/"+tk.ID, `{"title":"PDV travado","status":"closed"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.NewDecoder(w.Body).Decode(&tk))
	assert.Equal(t, models.TicketStatusClosed, tk.Status)

	w = do(http.MethodGet, "/api/v1/tickets", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.Ticket
	require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
	assert.Len(t, list, 1)

	w = do(http.MethodPost, "/api/v1/tickets", `{"title":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(http.MethodGet, "/api/v1/tickets/T-0001", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
