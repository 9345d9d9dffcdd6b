package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/HerbHall/sentinel/internal/config"
	"github.com/HerbHall/sentinel/internal/plugin"
	"github.com/HerbHall/sentinel/internal/state"
	"github.com/HerbHall/sentinel/internal/testutil"
	"github.com/HerbHall/sentinel/pkg/models"
)

func newTestModule(t *testing.T) *Module {
	t.Helper()
	m := New()
	if err := m.Init(plugin.Dependencies{
		Config: config.New(nil),
		Logger: zap.NewNop(),
		Bus:    testutil.NewMockBus(),
		State:  testutil.NewContainer(),
	}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return m
}

func TestCreatePermissionsFollowRole(t *testing.T) {
	tests := []struct {
		role     models.Role
		wantRole models.Role
		want     string
	}{
		{models.RoleAdmin, models.RoleAdmin, models.PermissionAll},
		{models.RoleTech, models.RoleTech, models.PermissionRestricted},
		{"", models.RoleViewer, models.PermissionRestricted},
	}
	for _, tt := range tests {
		t.Run(string(tt.wantRole), func(t *testing.T) {
			m := newTestModule(t)
			u, err := m.Create(context.Background(), Input{Name: "Ana", Email: "ana@sentinel.com", Role: tt.role})
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			if u.Role != tt.wantRole {
				t.Errorf("Role = %q, want %q", u.Role, tt.wantRole)
			}
			if len(u.Permissions) != 1 || u.Permissions[0] != tt.want {
				t.Errorf("Permissions = %v, want [%s]", u.Permissions, tt.want)
			}
		})
	}
}

func TestUpdateRederivesPermissions(t *testing.T) {
	m := newTestModule(t)
	ctx := context.Background()

	u, err := m.Create(ctx, Input{Name: "Ana", Email: "ana@sentinel.com", Role: models.RoleAdmin})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	up, err := m.Update(ctx, u.ID, Input{Name: "Ana Souza", Email: "ana@sentinel.com", Role: models.RoleViewer})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if up.ID != u.ID {
		t.Errorf("ID = %q, want %q", up.ID, u.ID)
	}
	if up.Permissions[0] != models.PermissionRestricted {
		t.Errorf("Permissions = %v, want [restricted]", up.Permissions)
	}
}

func TestValidation(t *testing.T) {
	m := newTestModule(t)
	ctx := context.Background()

	if _, err := m.Create(ctx, Input{Name: "Ana"}); !errors.Is(err, state.ErrValidation) {
		t.Errorf("Create without email: err = %v, want ErrValidation", err)
	}
	if _, err := m.Create(ctx, Input{Name: "Ana", Email: "a@b", Role: "root"}); err == nil {
		t.Error("Create with unknown role: expected error")
	}
	if _, err := m.Update(ctx, "missing", Input{Name: "x", Email: "y"}); !errors.Is(err, state.ErrNotFound) {
		t.Errorf("Update unknown id: err = %v, want ErrNotFound", err)
	}
	if got := len(m.List()); got != 0 {
		t.Errorf("List() len = %d, want 0", got)
	}
}

func TestHandlers(t *testing.T) {
	m := newTestModule(t)
	mux := http.NewServeMux()
	for _, r := range m.Routes() {
		mux.HandleFunc(r.Method+" /api/v1/users"+r.Path, r.Handler)
	}

	body := `{"name":"Carlos","email":"carlos@sentinel.com","role":"tech"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", strings.NewReader(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("POST status = %d, want %d", w.Code, http.StatusCreated)
	}
	var u models.User
	if err := json.NewDecoder(w.Body).Decode(&u); err != nil {
		t.Fatalf("decode: %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/users/"+u.ID, nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("GET status = %d, want %d", w.Code, http.StatusOK)
	}

	req = httptest.NewRequest(http.MethodPut, "/api/v1/users/"+u.ID, strings.NewReader(`{"name":"","email":"x"}`))
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("PUT invalid status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/users/nope", nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("GET unknown status = %d, want %d", w.Code, http.StatusNotFound)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	var list []models.User
	if err := json.NewDecoder(w.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("list len = %d, want 1", len(list))
	}
}
