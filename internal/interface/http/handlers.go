package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/jayai/growth-hub/internal/application/engine"
	"github.com/jayai/growth-hub/internal/domain/catalog"
	"github.com/jayai/growth-hub/internal/domain/goal"
	"github.com/jayai/growth-hub/internal/domain/growth"
	"github.com/jayai/growth-hub/internal/domain/insight"
	"github.com/jayai/growth-hub/internal/domain/shared"
	"github.com/jayai/growth-hub/pkg/logger"
)

// GrowthEngine is the application surface the HTTP layer needs.
type GrowthEngine interface {
	RecordActivity(ctx context.Context, userID string, domain catalog.Domain, xpDelta int, description string, at time.Time) (*growth.ActivityResult, error)
	GetProfile(ctx context.Context, userID string) (*engine.Profile, error)
	GenerateChallenge(ctx context.Context, userID string, domain catalog.Domain) (*engine.Challenge, error)
	GenerateChallenges(ctx context.Context, userID string, count int) ([]engine.Challenge, error)
	CompleteChallenge(ctx context.Context, userID string, domain catalog.Domain, targetXP int) (*growth.ActivityResult, error)
	GetInsights(ctx context.Context, userID string, unviewedOnly, markViewed bool) ([]*insight.Insight, error)
	RefreshInsights(ctx context.Context, userID string) ([]*insight.Insight, error)
	CreateGoal(ctx context.Context, params engine.CreateGoalParams) (*goal.Goal, error)
	GetGoal(ctx context.Context, userID, goalID string) (*goal.Goal, error)
	ListGoals(ctx context.Context, userID string, status *goal.Status) ([]*goal.Goal, error)
	UpdateGoalProgress(ctx context.Context, userID, goalID string, progress int) (*goal.Goal, error)
	CompleteGoalMilestone(ctx context.Context, userID, goalID, milestone string) (*goal.Goal, error)
	CompleteGoal(ctx context.Context, userID, goalID string) (*goal.Goal, error)
	AbandonGoal(ctx context.Context, userID, goalID string) (*goal.Goal, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health(r.Context()); err != nil {
			writeJSONError(w, http.StatusServiceUnavailable, "not_ready", err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// ══════════════════════════════════════════════════════════════════════════════
// ACTIVITIES AND PROFILES
// ══════════════════════════════════════════════════════════════════════════════

type recordActivityRequest struct {
	Domain      string `json:"domain"`
	XP          int    `json:"xp"`
	Description string `json:"description"`

	// Timestamp is optional RFC3339; empty means now.
	Timestamp string `json:"timestamp,omitempty"`
}

type activityResultResponse struct {
	Domain            string   `json:"domain"`
	Level             int      `json:"level"`
	XP                int      `json:"xp"`
	LevelsGained      int      `json:"levels_gained"`
	StreakCurrent     int      `json:"streak_current"`
	StreakLongest     int      `json:"streak_longest"`
	MilestonesCrossed []string `json:"milestones_crossed,omitempty"`
	StreakBroken      bool     `json:"streak_broken"`

	// ChallengesCompleted is populated only for challenge completions.
	ChallengesCompleted int `json:"challenges_completed,omitempty"`
}

func toActivityResultResponse(result *growth.ActivityResult) activityResultResponse {
	resp := activityResultResponse{
		Domain:              string(result.Domain),
		Level:               result.Level,
		XP:                  result.XP,
		LevelsGained:        result.LevelsGained,
		StreakCurrent:       result.StreakCurrent,
		StreakLongest:       result.StreakLongest,
		StreakBroken:        result.StreakBroken,
		ChallengesCompleted: result.ChallengesCompleted,
	}
	for _, m := range result.MilestonesCrossed {
		resp.MilestonesCrossed = append(resp.MilestonesCrossed, m.Tier)
	}
	return resp
}

func (s *Server) handleRecordActivity(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")

	var req recordActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}

	var at time.Time
	if req.Timestamp != "" {
		parsed, err := time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_timestamp", "timestamp must be RFC3339")
			return
		}
		at = parsed
	}

	result, err := s.engine.RecordActivity(r.Context(), userID, catalog.Domain(req.Domain), req.XP, req.Description, at)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toActivityResultResponse(result))
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.engine.GetProfile(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleGetChallenges(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")

	// A domain query parameter requests a single targeted challenge.
	if domain := r.URL.Query().Get("domain"); domain != "" {
		challenge, err := s.engine.GenerateChallenge(r.Context(), userID, catalog.Domain(domain))
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, []engine.Challenge{*challenge})
		return
	}

	count := queryInt(r, "count", 3)
	challenges, err := s.engine.GenerateChallenges(r.Context(), userID, count)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, challenges)
}

type completeChallengeRequest struct {
	Domain   string `json:"domain"`
	TargetXP int    `json:"target_xp"`
}

func (s *Server) handleCompleteChallenge(w http.ResponseWriter, r *http.Request) {
	var req completeChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}

	result, err := s.engine.CompleteChallenge(r.Context(), r.PathValue("id"), catalog.Domain(req.Domain), req.TargetXP)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toActivityResultResponse(result))
}

// ══════════════════════════════════════════════════════════════════════════════
// INSIGHTS
// ══════════════════════════════════════════════════════════════════════════════

type insightResponse struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	Text      string    `json:"text"`
	Domains   []string  `json:"domains,omitempty"`
	Viewed    bool      `json:"viewed"`
	CreatedAt time.Time `json:"created_at"`
}

func toInsightResponses(insights []*insight.Insight) []insightResponse {
	out := make([]insightResponse, 0, len(insights))
	for _, ins := range insights {
		resp := insightResponse{
			ID:        ins.ID,
			Category:  string(ins.Category),
			Text:      ins.Text,
			Viewed:    ins.Viewed,
			CreatedAt: ins.CreatedAt,
		}
		for _, d := range ins.Domains {
			resp.Domains = append(resp.Domains, string(d))
		}
		out = append(out, resp)
	}
	return out
}

func (s *Server) handleGetInsights(w http.ResponseWriter, r *http.Request) {
	insights, err := s.engine.GetInsights(r.Context(), r.PathValue("id"),
		queryBool(r, "unviewed"), queryBool(r, "mark_viewed"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInsightResponses(insights))
}

func (s *Server) handleRefreshInsights(w http.ResponseWriter, r *http.Request) {
	created, err := s.engine.RefreshInsights(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toInsightResponses(created))
}

// ══════════════════════════════════════════════════════════════════════════════
// GOALS
// ══════════════════════════════════════════════════════════════════════════════

type createGoalRequest struct {
	Domain       string   `json:"domain"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	TargetMetric string   `json:"target_metric"`
	TargetDate   string   `json:"target_date,omitempty"` // RFC3339 date
	Milestones   []string `json:"milestones,omitempty"`
}

type updateProgressRequest struct {
	Progress int `json:"progress"`
}

type completeMilestoneRequest struct {
	Milestone string `json:"milestone"`
}

type goalMilestoneResponse struct {
	Name string `json:"name"`
	Done bool   `json:"done"`
}

type goalResponse struct {
	ID           string                  `json:"id"`
	Domain       string                  `json:"domain"`
	Title        string                  `json:"title"`
	Description  string                  `json:"description,omitempty"`
	TargetMetric string                  `json:"target_metric,omitempty"`
	TargetDate   *time.Time              `json:"target_date,omitempty"`
	Milestones   []goalMilestoneResponse `json:"milestones,omitempty"`
	Progress     int                     `json:"progress"`
	Status       string                  `json:"status"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
	CompletedAt  *time.Time              `json:"completed_at,omitempty"`
}

func toGoalResponse(g *goal.Goal) goalResponse {
	resp := goalResponse{
		ID:           g.ID,
		Domain:       string(g.Domain),
		Title:        g.Title,
		Description:  g.Description,
		TargetMetric: g.TargetMetric,
		Progress:     g.Progress,
		Status:       string(g.Status),
		CreatedAt:    g.CreatedAt,
		UpdatedAt:    g.UpdatedAt,
		CompletedAt:  g.CompletedAt,
	}
	if !g.TargetDate.IsZero() {
		targetDate := g.TargetDate
		resp.TargetDate = &targetDate
	}
	for _, m := range g.Milestones {
		resp.Milestones = append(resp.Milestones, goalMilestoneResponse{Name: m.Name, Done: m.Done})
	}
	return resp
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req createGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}

	var targetDate time.Time
	if req.TargetDate != "" {
		parsed, err := time.Parse(time.RFC3339, req.TargetDate)
		if err != nil {
			// Accept a bare date as well.
			parsed, err = time.Parse("2006-01-02", req.TargetDate)
			if err != nil {
				writeJSONError(w, http.StatusBadRequest, "invalid_target_date", "target_date must be RFC3339 or YYYY-MM-DD")
				return
			}
		}
		targetDate = parsed
	}

	g, err := s.engine.CreateGoal(r.Context(), engine.CreateGoalParams{
		UserID:       r.PathValue("id"),
		Domain:       catalog.Domain(req.Domain),
		Title:        req.Title,
		Description:  req.Description,
		TargetMetric: req.TargetMetric,
		TargetDate:   targetDate,
		Milestones:   req.Milestones,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGoalResponse(g))
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	var status *goal.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		st := goal.Status(raw)
		status = &st
	}

	goals, err := s.engine.ListGoals(r.Context(), r.PathValue("id"), status)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	out := make([]goalResponse, 0, len(goals))
	for _, g := range goals {
		out = append(out, toGoalResponse(g))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	g, err := s.engine.GetGoal(r.Context(), r.PathValue("id"), r.PathValue("goalID"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalResponse(g))
}

func (s *Server) handleUpdateGoalProgress(w http.ResponseWriter, r *http.Request) {
	var req updateProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}

	g, err := s.engine.UpdateGoalProgress(r.Context(), r.PathValue("id"), r.PathValue("goalID"), req.Progress)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalResponse(g))
}

func (s *Server) handleCompleteGoalMilestone(w http.ResponseWriter, r *http.Request) {
	var req completeMilestoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}

	g, err := s.engine.CompleteGoalMilestone(r.Context(), r.PathValue("id"), r.PathValue("goalID"), req.Milestone)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalResponse(g))
}

func (s *Server) handleCompleteGoal(w http.ResponseWriter, r *http.Request) {
	g, err := s.engine.CompleteGoal(r.Context(), r.PathValue("id"), r.PathValue("goalID"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalResponse(g))
}

func (s *Server) handleAbandonGoal(w http.ResponseWriter, r *http.Request) {
	g, err := s.engine.AbandonGoal(r.Context(), r.PathValue("id"), r.PathValue("goalID"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalResponse(g))
}

// ══════════════════════════════════════════════════════════════════════════════
// ERROR MAPPING
// ══════════════════════════════════════════════════════════════════════════════

// writeDomainError maps domain error kinds onto HTTP status codes:
// validation → 400, not found → 404, state conflicts → 409, the rest → 500.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case shared.IsValidation(err):
		writeJSONError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case shared.IsNotFound(err):
		writeJSONError(w, http.StatusNotFound, "not_found", err.Error())
	case shared.IsStateError(err):
		writeJSONError(w, http.StatusConflict, "state_conflict", err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeJSONError(w, http.StatusServiceUnavailable, "timeout", "request cancelled or timed out")
	default:
		s.logger.Error("unhandled error", logger.Err(err))
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
