package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/kraftworks/kraft/internal/engine"
	"github.com/kraftworks/kraft/internal/events"
	"github.com/kraftworks/kraft/internal/explain"
	"github.com/kraftworks/kraft/internal/scoring"
	"github.com/kraftworks/kraft/internal/store"
)

type AllocateHandler struct {
	store           store.Store
	engine          *engine.Engine
	events          events.Client
	defaultStrategy scoring.Strategy
	maxPairs        int
	logger          *slog.Logger
}

func NewAllocateHandler(s store.Store, e *engine.Engine, ev events.Client, defaultStrategy scoring.Strategy, maxPairs int, logger *slog.Logger) *AllocateHandler {
	return &AllocateHandler{
		store:           s,
		engine:          e,
		events:          ev,
		defaultStrategy: defaultStrategy,
		maxPairs:        maxPairs,
		logger:          logger,
	}
}

type AllocateRequest struct {
	TaskIDs       []uuid.UUID `json:"task_ids,omitempty"`
	TeamMemberIDs []uuid.UUID `json:"team_member_ids,omitempty"`
	Apply         bool        `json:"apply"`
	Strategy      string      `json:"strategy,omitempty"`
}

// Run executes one allocation pass: load tasks, members and active
// constraints, run the engine, optionally persist, publish events.
func (h *AllocateHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req AllocateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	ctx := r.Context()
	tasks, err := h.store.ListTasks(ctx, store.TaskFilter{})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	members, err := h.store.ListMembers(ctx, store.MemberFilter{})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	constraints, err := h.store.ListConstraints(ctx, true)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	strategy := h.defaultStrategy
	if req.Strategy != "" {
		strategy = scoring.Strategy(req.Strategy)
	}
	opts := engine.Options{
		Strategy:          strategy,
		Apply:             req.Apply,
		TaskIDs:           req.TaskIDs,
		AgentIDs:          req.TeamMemberIDs,
		Now:               time.Now().UTC(),
		MaxCandidatePairs: h.maxPairs,
	}

	result, err := h.engine.Run(tasks, members, constraints, opts)
	if err != nil {
		allocationRunErrors.Inc()
		status := http.StatusInternalServerError
		if engine.IsValidationError(err) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	if req.Apply {
		if err := h.store.ApplyRun(ctx, result); err != nil {
			allocationRunErrors.Inc()
			h.logger.Error("apply run failed", "run_id", result.RunID, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "apply run: " + err.Error()})
			return
		}
	}

	h.publishEvents(result)
	allocationRuns.WithLabelValues(string(result.Strategy)).Inc()
	allocationAssignments.Add(float64(result.SuccessfulAllocations))
	allocationUnassigned.Add(float64(len(result.UnassignedTasks)))

	writeJSON(w, http.StatusOK, result)
}

func (h *AllocateHandler) publishEvents(result *engine.RunResult) {
	now := time.Now().UTC()
	for i := range result.Assignments {
		a := &result.Assignments[i]
		err := h.events.Publish(events.SubjectTaskAssigned(a.TaskID.String()), events.TaskAssignedEvent{
			RunID:          result.RunID,
			TaskID:         a.TaskID,
			TaskName:       a.TaskName,
			MemberID:       a.AgentID,
			MemberName:     a.AgentName,
			Score:          a.Score,
			PredictedHours: a.PredictedHours,
			Factors:        a.Detail.Factors,
			Applied:        result.Applied,
			OccurredAt:     now,
		})
		if err != nil {
			h.logger.Warn("publish assigned event failed", "task_id", a.TaskID, "error", err)
		}
	}
	for _, u := range result.UnassignedTasks {
		err := h.events.Publish(events.SubjectTaskUnassigned(u.TaskID.String()), events.TaskUnassignedEvent{
			RunID:      result.RunID,
			TaskID:     u.TaskID,
			TaskName:   u.TaskName,
			Reasons:    u.Reasons,
			OccurredAt: now,
		})
		if err != nil {
			h.logger.Warn("publish unassigned event failed", "task_id", u.TaskID, "error", err)
		}
	}
	err := h.events.Publish(events.SubjectRunCompleted(result.RunID.String()), events.RunCompletedEvent{
		RunID:                 result.RunID,
		Strategy:              string(result.Strategy),
		TasksProcessed:        result.TasksProcessed,
		SuccessfulAllocations: result.SuccessfulAllocations,
		Applied:               result.Applied,
		Summary:               result.Summary,
		OccurredAt:            now,
	})
	if err != nil {
		h.logger.Warn("publish run event failed", "run_id", result.RunID, "error", err)
	}
}

type ExplainTaskResponse struct {
	TaskID       uuid.UUID `json:"task_id"`
	TeamMemberID uuid.UUID `json:"team_member_id"`
	Explanation  string    `json:"explanation"`
}

// ExplainTask renders a natural-language explanation from a fully-formed
// request. It never consults the solver, so narration can evolve
// independently of allocation.
func (h *AllocateHandler) ExplainTask(w http.ResponseWriter, r *http.Request) {
	var req explain.NarrateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.TaskName == "" || req.MemberName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "task_name and team_member_name required"})
		return
	}
	writeJSON(w, http.StatusOK, ExplainTaskResponse{
		TaskID:       req.TaskID,
		TeamMemberID: req.MemberID,
		Explanation:  explain.Narrate(&req),
	})
}
