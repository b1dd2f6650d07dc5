package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"opsdesk/internal/auth"
	"opsdesk/internal/core"
	"opsdesk/internal/infra/archive"
	"opsdesk/internal/infra/persistence/memory"
	"opsdesk/pkg/domain"
)

func newTestAPI(t *testing.T) (http.Handler, *auth.Gate, *core.Service) {
	t.Helper()
	mirror := memory.New()
	store := core.OpenStore(mirror, zap.NewNop(), time.Millisecond)
	t.Cleanup(store.Close)
	gate := auth.NewGate(mirror, zap.NewNop())
	service := core.NewService(store, archive.NewMemory(), zap.NewNop())
	return NewHandler(service, gate, zap.NewNop()).Router(), gate, service
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, h http.Handler, role domain.Role) {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/api/v1/login", map[string]any{
		"email": "user@example.com", "password": "pw", "role": role,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body)
	}
}

func TestLoginValidation(t *testing.T) {
	h, _, _ := newTestAPI(t)
	rec := doJSON(t, h, http.MethodPost, "/api/v1/login", map[string]any{"email": "", "password": ""})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestLoginReturnsRoleRoute(t *testing.T) {
	h, _, _ := newTestAPI(t)
	rec := doJSON(t, h, http.MethodPost, "/api/v1/login", map[string]any{
		"email": "lead@example.com", "password": "pw", "role": domain.RoleTechLead,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: %d %s", rec.Code, rec.Body)
	}
	var body struct {
		Route string `json:"route"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Route != "/projects" {
		t.Fatalf("expected /projects route, got %q", body.Route)
	}
}

func TestGuardedRouteRequiresLogin(t *testing.T) {
	h, _, _ := newTestAPI(t)
	rec := doJSON(t, h, http.MethodGet, "/api/v1/dashboard", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Fatalf("expected login redirect, got %q", loc)
	}
}

func TestRoleRedirect(t *testing.T) {
	h, _, _ := newTestAPI(t)
	login(t, h, domain.RoleTechLead)
	rec := doJSON(t, h, http.MethodGet, "/api/v1/outreach/leads", nil)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/projects" {
		t.Fatalf("expected redirect to role landing page, got %q", loc)
	}
}

func TestActivityFeedFounderOnly(t *testing.T) {
	h, _, _ := newTestAPI(t)
	login(t, h, domain.RoleTelecaller)
	if rec := doJSON(t, h, http.MethodGet, "/api/v1/activity", nil); rec.Code != http.StatusSeeOther {
		t.Fatalf("telecaller must be redirected, got %d", rec.Code)
	}
	login(t, h, domain.RoleFounder)
	if rec := doJSON(t, h, http.MethodGet, "/api/v1/activity", nil); rec.Code != http.StatusOK {
		t.Fatalf("founder must see the feed, got %d", rec.Code)
	}
}

func TestLeadCRUD(t *testing.T) {
	h, _, _ := newTestAPI(t)
	login(t, h, domain.RoleFounder)

	if rec := doJSON(t, h, http.MethodPost, "/api/v1/leads", map[string]any{"email": "x@y.z"}); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("missing name must 422, got %d", rec.Code)
	}

	rec := doJSON(t, h, http.MethodPost, "/api/v1/leads", map[string]any{
		"name": "Asha", "email": "asha@example.com", "phone": "987", "status": "New",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body)
	}
	var created struct {
		Lead domain.Lead `json:"lead"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.Lead.ID != 1 {
		t.Fatalf("expected ID 1, got %d", created.Lead.ID)
	}

	rec = doJSON(t, h, http.MethodPut, "/api/v1/leads/1", map[string]any{"name": "Asha Rao", "status": "Contacted"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: %d %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/v1/leads?search=rao", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: %d", rec.Code)
	}
	var listed struct {
		Leads []domain.Lead `json:"leads"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatal(err)
	}
	if len(listed.Leads) != 1 || listed.Leads[0].Name != "Asha Rao" {
		t.Fatalf("unexpected search result: %+v", listed.Leads)
	}

	if rec := doJSON(t, h, http.MethodDelete, "/api/v1/leads/1", nil); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", rec.Code)
	}
}

func TestTaskToggleRoute(t *testing.T) {
	h, _, svc := newTestAPI(t)
	login(t, h, domain.RoleFounder)
	project := svc.Store().AddProject(domain.Project{Name: "P", Client: "C"})
	task := svc.Store().AddTask(domain.Task{Name: "Ship", ProjectID: project.ID})

	if rec := doJSON(t, h, http.MethodPost, "/api/v1/tasks/1/toggle", nil); rec.Code != http.StatusOK {
		t.Fatalf("toggle: %d", rec.Code)
	}
	tasks := svc.Store().Tasks()
	if !tasks[0].Completed {
		t.Fatalf("task %d not toggled: %+v", task.ID, tasks)
	}
}

func TestOutreachValidationStatus(t *testing.T) {
	h, _, _ := newTestAPI(t)
	login(t, h, domain.RoleTelecaller)
	rec := doJSON(t, h, http.MethodPost, "/api/v1/outreach/whatsapp", map[string]any{
		"leadIds": []int64{}, "template": "Hi {{name}}",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d %s", rec.Code, rec.Body)
	}
}

func TestExportAndFetchArchive(t *testing.T) {
	h, _, svc := newTestAPI(t)
	login(t, h, domain.RoleFounder)
	svc.Store().AddLead(domain.Lead{Name: "Asha"})

	rec := doJSON(t, h, http.MethodPost, "/api/v1/export", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("export: %d %s", rec.Code, rec.Body)
	}
	var created struct {
		Archive archive.Info `json:"archive"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/v1/archives/"+created.Archive.Key, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("fetch archive: %d %s", rec.Code, rec.Body)
	}
	var snap domain.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatal(err)
	}
	if len(snap.Leads) != 1 {
		t.Fatalf("unexpected archived snapshot: %+v", snap)
	}
}

func TestSessionEndpoint(t *testing.T) {
	h, _, _ := newTestAPI(t)
	rec := doJSON(t, h, http.MethodGet, "/api/v1/session", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("session: %d", rec.Code)
	}
	var body struct {
		Authenticated bool `json:"authenticated"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Authenticated {
		t.Fatal("fresh session must be unauthenticated")
	}

	login(t, h, domain.RoleFounder)
	rec = doJSON(t, h, http.MethodGet, "/api/v1/session", nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if !body.Authenticated {
		t.Fatal("expected authenticated session after login")
	}

	if rec := doJSON(t, h, http.MethodPost, "/api/v1/logout", nil); rec.Code != http.StatusOK {
		t.Fatalf("logout: %d", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodGet, "/api/v1/dashboard", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", rec.Code)
	}
}
