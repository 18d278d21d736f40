package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kraftworks/kraft/internal/domain"
	"github.com/kraftworks/kraft/internal/store"
)

type TasksHandler struct {
	store store.Store
}

func NewTasksHandler(s store.Store) *TasksHandler {
	return &TasksHandler{store: s}
}

type CreateTaskRequest struct {
	Name           string      `json:"task_name"`
	Description    string      `json:"description,omitempty"`
	RequiredSkills []string    `json:"required_skills"`
	Priority       string      `json:"priority,omitempty"`
	EstimatedHours *float64    `json:"estimated_hours,omitempty"`
	Deadline       *time.Time  `json:"deadline,omitempty"`
	Dependencies   []uuid.UUID `json:"dependencies,omitempty"`
}

func (h *TasksHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "task_name required"})
		return
	}
	priority := domain.Priority(req.Priority)
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !priority.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown priority"})
		return
	}
	if req.EstimatedHours != nil && *req.EstimatedHours < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "estimated_hours must be non-negative"})
		return
	}

	task := &domain.Task{
		Name:           req.Name,
		Description:    req.Description,
		RequiredSkills: req.RequiredSkills,
		Priority:       priority,
		EstimatedHours: req.EstimatedHours,
		Deadline:       req.Deadline,
		Dependencies:   req.Dependencies,
		Status:         domain.TaskUnassigned,
	}
	if err := h.store.CreateTask(r.Context(), task); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (h *TasksHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := store.TaskFilter{}
	if s := r.URL.Query().Get("status"); s != "" {
		filter.Status = domain.TaskStatus(s)
	}
	tasks, err := h.store.ListTasks(r.Context(), filter)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TasksHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid task id"})
		return
	}
	task, err := h.store.GetTask(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if task == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
		return
	}
	writeJSON(w, http.StatusOK, task)
}

type MembersHandler struct {
	store store.Store
}

func NewMembersHandler(s store.Store) *MembersHandler {
	return &MembersHandler{store: s}
}

type CreateMemberRequest struct {
	Name              string               `json:"name"`
	Skills            []string             `json:"skills"`
	AvailabilityHours float64              `json:"availability_hours"`
	CurrentLoad       float64              `json:"current_load,omitempty"`
	Status            string               `json:"status,omitempty"`
	Exclusions        []string             `json:"exclusions,omitempty"`
	History           *domain.AgentHistory `json:"history,omitempty"`
}

func (h *MembersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name required"})
		return
	}
	if req.AvailabilityHours <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "availability_hours must be positive"})
		return
	}
	status := domain.AgentStatus(req.Status)
	if status == "" {
		status = domain.AgentAvailable
	}

	member := &domain.Agent{
		Name:              req.Name,
		Skills:            req.Skills,
		AvailabilityHours: req.AvailabilityHours,
		CurrentLoad:       req.CurrentLoad,
		Status:            status,
		Exclusions:        req.Exclusions,
		History:           req.History,
	}
	if err := h.store.CreateMember(r.Context(), member); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, member)
}

func (h *MembersHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := store.MemberFilter{}
	if s := r.URL.Query().Get("status"); s != "" {
		filter.Status = domain.AgentStatus(s)
	}
	members, err := h.store.ListMembers(r.Context(), filter)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if members == nil {
		members = []*domain.Agent{}
	}
	writeJSON(w, http.StatusOK, members)
}

type ConstraintsHandler struct {
	store store.Store
}

func NewConstraintsHandler(s store.Store) *ConstraintsHandler {
	return &ConstraintsHandler{store: s}
}

type CreateConstraintRequest struct {
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Category  string   `json:"category"`
	Weight    int      `json:"weight,omitempty"`
	IsActive  *bool    `json:"is_active,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
}

func (h *ConstraintsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateConstraintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name required"})
		return
	}
	ctype := domain.ConstraintType(req.Type)
	if ctype != domain.ConstraintHard && ctype != domain.ConstraintSoft {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "type must be hard or soft"})
		return
	}
	category := domain.ConstraintCategory(req.Category)
	if !category.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown category"})
		return
	}
	if ctype == domain.ConstraintSoft && (req.Weight < 1 || req.Weight > 10) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "soft constraint weight must be 1-10"})
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	c := &domain.Constraint{
		Name:      req.Name,
		Type:      ctype,
		Category:  category,
		Weight:    req.Weight,
		IsActive:  active,
		Threshold: req.Threshold,
	}
	if err := h.store.CreateConstraint(r.Context(), c); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *ConstraintsHandler) List(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	constraints, err := h.store.ListConstraints(r.Context(), activeOnly)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if constraints == nil {
		constraints = []*domain.Constraint{}
	}
	writeJSON(w, http.StatusOK, constraints)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
