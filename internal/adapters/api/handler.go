// Package api exposes the service over HTTP. Handlers are thin: decode,
// validate, call the service, encode. Role restrictions mirror the page gates:
// project endpoints for Founder and Tech Lead, outreach endpoints for Founder
// and Telecaller, the activity feed for Founder only.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"opsdesk/internal/auth"
	"opsdesk/internal/core"
	"opsdesk/internal/outreach"
	"opsdesk/internal/views"
	"opsdesk/pkg/domain"
)

// Handler routes the opsdesk HTTP API.
type Handler struct {
	service *core.Service
	gate    *auth.Gate
	logger  *zap.Logger
}

// NewHandler constructs the API handler.
func NewHandler(service *core.Service, gate *auth.Gate, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, gate: gate, logger: logger}
}

// Router builds the full route table.
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", h.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /api/v1/login", h.handleLogin)
	mux.HandleFunc("POST /api/v1/logout", h.handleLogout)
	mux.HandleFunc("GET /api/v1/session", h.handleSession)

	mux.Handle("GET /api/v1/dashboard", h.guard(h.handleDashboard))
	mux.Handle("GET /api/v1/calendar", h.guard(h.handleCalendar))
	mux.Handle("GET /api/v1/activity", h.guard(h.handleActivity, domain.RoleFounder))

	mux.Handle("GET /api/v1/leads", h.guard(h.handleListLeads))
	mux.Handle("POST /api/v1/leads", h.guard(h.handleCreateLead))
	mux.Handle("PUT /api/v1/leads/{id}", h.guard(h.handleUpdateLead))
	mux.Handle("DELETE /api/v1/leads/{id}", h.guard(h.handleDeleteLead))
	mux.Handle("POST /api/v1/leads/{id}/activities", h.guard(h.handleAddActivity))

	mux.Handle("GET /api/v1/meetings", h.guard(h.handleListMeetings))
	mux.Handle("POST /api/v1/meetings", h.guard(h.handleCreateMeeting))
	mux.Handle("PUT /api/v1/meetings/{id}", h.guard(h.handleUpdateMeeting))
	mux.Handle("DELETE /api/v1/meetings/{id}", h.guard(h.handleDeleteMeeting))

	projectRoles := []domain.Role{domain.RoleFounder, domain.RoleTechLead}
	mux.Handle("GET /api/v1/projects", h.guard(h.handleListProjects, projectRoles...))
	mux.Handle("POST /api/v1/projects", h.guard(h.handleCreateProject, projectRoles...))
	mux.Handle("PUT /api/v1/projects/{id}", h.guard(h.handleUpdateProject, projectRoles...))
	mux.Handle("DELETE /api/v1/projects/{id}", h.guard(h.handleDeleteProject, projectRoles...))
	mux.Handle("GET /api/v1/projects/{id}/tasks", h.guard(h.handleProjectTasks, projectRoles...))

	mux.Handle("POST /api/v1/tasks", h.guard(h.handleCreateTask, projectRoles...))
	mux.Handle("PUT /api/v1/tasks/{id}", h.guard(h.handleUpdateTask, projectRoles...))
	mux.Handle("DELETE /api/v1/tasks/{id}", h.guard(h.handleDeleteTask, projectRoles...))
	mux.Handle("POST /api/v1/tasks/{id}/toggle", h.guard(h.handleToggleTask, projectRoles...))

	outreachRoles := []domain.Role{domain.RoleFounder, domain.RoleTelecaller}
	mux.Handle("GET /api/v1/outreach/leads", h.guard(h.handleOutreachLeads, outreachRoles...))
	mux.Handle("POST /api/v1/outreach/whatsapp", h.guard(h.handleWhatsApp, outreachRoles...))
	mux.Handle("POST /api/v1/outreach/email", h.guard(h.handleEmail, outreachRoles...))

	mux.Handle("POST /api/v1/export", h.guard(h.handleExport, domain.RoleFounder))
	mux.Handle("GET /api/v1/archives", h.guard(h.handleArchives, domain.RoleFounder))
	mux.Handle("GET /api/v1/archives/{key}", h.guard(h.handleArchivePayload, domain.RoleFounder))

	return withMetrics(mux)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

type loginRequest struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid login payload")
		return
	}
	if !h.gate.Login(req.Email, req.Password, req.Role) {
		writeError(w, http.StatusUnprocessableEntity, "email and password are required")
		return
	}
	user, _ := h.gate.Session()
	writeJSON(w, http.StatusOK, map[string]any{
		"user":  user,
		"route": auth.DefaultRoute(user.Role),
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, _ *http.Request) {
	h.gate.Logout()
	writeJSON(w, http.StatusOK, map[string]any{"route": auth.RouteLogin})
}

func (h *Handler) handleSession(w http.ResponseWriter, _ *http.Request) {
	user, state := h.gate.Session()
	body := map[string]any{"authenticated": state == auth.StateAuthenticated}
	if state == auth.StateAuthenticated {
		body["user"] = user
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *Handler) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Dashboard())
}

func (h *Handler) handleActivity(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"feed": h.service.Dashboard().Feed})
}

func (h *Handler) handleCalendar(w http.ResponseWriter, r *http.Request) {
	selected := time.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse(views.DateLayout, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		selected = parsed
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": h.service.Calendar(selected)})
}

func (h *Handler) handleListLeads(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	store := h.service.Store()
	leads := store.Leads()
	filtered := views.FilterLeads(leads, views.LeadQuery{
		Search: q.Get("search"),
		Status: q.Get("status"),
		SortBy: q.Get("sortBy"),
		Desc:   q.Get("order") != "asc",
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"leads": filtered,
		"tabs":  views.LeadStatusTabs(leads),
	})
}

func (h *Handler) handleCreateLead(w http.ResponseWriter, r *http.Request) {
	var lead domain.Lead
	if err := json.NewDecoder(r.Body).Decode(&lead); err != nil {
		writeError(w, http.StatusBadRequest, "invalid lead payload")
		return
	}
	if lead.Name == "" {
		writeError(w, http.StatusUnprocessableEntity, "lead name is required")
		return
	}
	created := h.service.Store().AddLead(lead)
	writeJSON(w, http.StatusCreated, map[string]any{"lead": created})
}

func (h *Handler) handleUpdateLead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var lead domain.Lead
	if err := json.NewDecoder(r.Body).Decode(&lead); err != nil {
		writeError(w, http.StatusBadRequest, "invalid lead payload")
		return
	}
	lead.ID = id
	h.service.Store().UpdateLead(lead)
	writeJSON(w, http.StatusOK, map[string]any{"lead": lead})
}

func (h *Handler) handleDeleteLead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	h.service.Store().DeleteLead(id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAddActivity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var activity domain.Activity
	if err := json.NewDecoder(r.Body).Decode(&activity); err != nil {
		writeError(w, http.StatusBadRequest, "invalid activity payload")
		return
	}
	if activity.Title == "" {
		writeError(w, http.StatusUnprocessableEntity, "activity title is required")
		return
	}
	h.service.Store().AddLeadActivity(id, activity)
	lead, found := h.service.Store().GetLead(id)
	if !found {
		writeError(w, http.StatusNotFound, "lead not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"lead": lead})
}

func (h *Handler) handleListMeetings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	store := h.service.Store()
	meetings := store.Meetings()
	tab := q.Get("tab")
	if tab == "" {
		writeJSON(w, http.StatusOK, map[string]any{
			"meetings": meetings,
			"leads":    views.LeadNameOptions(store.Leads()),
			"types":    views.MeetingTypeOptions(meetings),
		})
		return
	}
	selected := time.Now()
	if raw := q.Get("date"); raw != "" {
		parsed, err := time.Parse(views.DateLayout, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		selected = parsed
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"meetings": views.MeetingsForTab(meetings, tab, selected, time.Now()),
	})
}

func (h *Handler) handleCreateMeeting(w http.ResponseWriter, r *http.Request) {
	var m domain.Meeting
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		writeError(w, http.StatusBadRequest, "invalid meeting payload")
		return
	}
	if m.LeadName == "" || m.Date == "" || m.Time == "" {
		writeError(w, http.StatusUnprocessableEntity, "lead name, date and time are required")
		return
	}
	if m.Status == "" {
		m.Status = domain.MeetingStatusUpcoming
	}
	created := h.service.Store().AddMeeting(m)
	writeJSON(w, http.StatusCreated, map[string]any{"meeting": created})
}

func (h *Handler) handleUpdateMeeting(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var m domain.Meeting
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		writeError(w, http.StatusBadRequest, "invalid meeting payload")
		return
	}
	m.ID = id
	h.service.Store().UpdateMeeting(m)
	writeJSON(w, http.StatusOK, map[string]any{"meeting": m})
}

func (h *Handler) handleDeleteMeeting(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	h.service.Store().DeleteMeeting(id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects := views.FilterProjects(h.service.Store().Projects(), r.URL.Query().Get("search"))
	writeJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

func (h *Handler) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var p domain.Project
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid project payload")
		return
	}
	if p.Name == "" || p.Client == "" {
		writeError(w, http.StatusUnprocessableEntity, "project name and client are required")
		return
	}
	if p.Status == "" {
		p.Status = domain.ProjectStatusPlanning
	}
	created := h.service.Store().AddProject(p)
	writeJSON(w, http.StatusCreated, map[string]any{"project": created})
}

func (h *Handler) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var p domain.Project
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid project payload")
		return
	}
	p.ID = id
	h.service.Store().UpdateProject(p)
	writeJSON(w, http.StatusOK, map[string]any{"project": p})
}

func (h *Handler) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	h.service.Store().DeleteProject(id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleProjectTasks(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	tasks := views.ProjectTasks(h.service.Store().Tasks(), id)
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

func (h *Handler) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var t domain.Task
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeError(w, http.StatusBadRequest, "invalid task payload")
		return
	}
	if t.Name == "" || t.ProjectID == 0 {
		writeError(w, http.StatusUnprocessableEntity, "task name and project id are required")
		return
	}
	created := h.service.Store().AddTask(t)
	writeJSON(w, http.StatusCreated, map[string]any{"task": created})
}

func (h *Handler) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var t domain.Task
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeError(w, http.StatusBadRequest, "invalid task payload")
		return
	}
	t.ID = id
	h.service.Store().UpdateTask(t)
	writeJSON(w, http.StatusOK, map[string]any{"task": t})
}

func (h *Handler) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	h.service.Store().DeleteTask(id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	h.service.Store().ToggleTaskCompletion(id)
	writeJSON(w, http.StatusOK, map[string]any{"tasks": h.service.Store().Tasks()})
}

func (h *Handler) handleOutreachLeads(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"leads": views.AvailableLeads(h.service.Store().Leads()),
	})
}

type outreachRequest struct {
	LeadIDs  []int64 `json:"leadIds"`
	Template string  `json:"template"`
}

func (h *Handler) handleWhatsApp(w http.ResponseWriter, r *http.Request) {
	h.handleOutreach(w, r, h.service.PrepareWhatsApp)
}

func (h *Handler) handleEmail(w http.ResponseWriter, r *http.Request) {
	h.handleOutreach(w, r, h.service.PrepareEmail)
}

func (h *Handler) handleOutreach(w http.ResponseWriter, r *http.Request, prepare func([]int64, string) (outreach.Result, error)) {
	var req outreachRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid outreach payload")
		return
	}
	res, err := prepare(req.LeadIDs, req.Template)
	if err != nil {
		if errors.Is(err, core.ErrEmptyTemplate) || errors.Is(err, core.ErrNoLeadsSelected) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.ExportSnapshot(r.Context())
	if err != nil {
		if errors.Is(err, core.ErrArchiveDisabled) {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"archive": info})
}

func (h *Handler) handleArchives(w http.ResponseWriter, r *http.Request) {
	infos, err := h.service.Archives(r.Context())
	if err != nil {
		if errors.Is(err, core.ErrArchiveDisabled) {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"archives": infos})
}

func (h *Handler) handleArchivePayload(w http.ResponseWriter, r *http.Request) {
	payload, err := h.service.ArchivePayload(r.Context(), r.PathValue("key"))
	if err != nil {
		if errors.Is(err, core.ErrArchiveDisabled) {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		writeError(w, http.StatusNotFound, "archive not found")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(payload)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
