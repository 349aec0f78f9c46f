// Package memory implements in-memory persistence for Growth Hub.
// Used in tests and for storage-less development runs. Every read and
// write deep-copies, so a caller can never reach the stored state through
// a returned value.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jayai/growth-hub/internal/domain/goal"
	"github.com/jayai/growth-hub/internal/domain/growth"
	"github.com/jayai/growth-hub/internal/domain/insight"
)

// ══════════════════════════════════════════════════════════════════════════════
// GROWTH RECORDS
// ══════════════════════════════════════════════════════════════════════════════

// GrowthRepository implements growth.Repository in memory.
type GrowthRepository struct {
	mu      sync.RWMutex
	records map[string]*growth.UserGrowthRecord
}

// NewGrowthRepository creates an empty in-memory growth store.
func NewGrowthRepository() *GrowthRepository {
	return &GrowthRepository{records: make(map[string]*growth.UserGrowthRecord)}
}

// Get returns a deep copy of the stored record.
func (r *GrowthRepository) Get(ctx context.Context, userID string) (*growth.UserGrowthRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[userID]
	if !ok {
		return nil, growth.ErrRecordNotFound
	}
	return rec.Clone(), nil
}

// Save stores a deep copy of the record.
func (r *GrowthRepository) Save(ctx context.Context, record *growth.UserGrowthRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records[record.UserID] = record.Clone()
	return nil
}

// Exists reports whether a record is stored for the user.
func (r *GrowthRepository) Exists(ctx context.Context, userID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.records[userID]
	return ok, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// GOALS
// ══════════════════════════════════════════════════════════════════════════════

// GoalRepository implements goal.Repository in memory.
type GoalRepository struct {
	mu    sync.RWMutex
	goals map[string]map[string]*goal.Goal // userID -> goalID -> goal
}

// NewGoalRepository creates an empty in-memory goal store.
func NewGoalRepository() *GoalRepository {
	return &GoalRepository{goals: make(map[string]map[string]*goal.Goal)}
}

// Create persists a new goal.
func (r *GoalRepository) Create(ctx context.Context, g *goal.Goal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.goals[g.UserID] == nil {
		r.goals[g.UserID] = make(map[string]*goal.Goal)
	}
	r.goals[g.UserID][g.ID] = g.Clone()
	return nil
}

// Get returns a deep copy of a user's goal.
func (r *GoalRepository) Get(ctx context.Context, userID, goalID string) (*goal.Goal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.goals[userID][goalID]
	if !ok {
		return nil, goal.ErrGoalNotFound
	}
	return g.Clone(), nil
}

// Update replaces the stored goal state.
func (r *GoalRepository) Update(ctx context.Context, g *goal.Goal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.goals[g.UserID][g.ID]; !ok {
		return goal.ErrGoalNotFound
	}
	r.goals[g.UserID][g.ID] = g.Clone()
	return nil
}

// List returns a user's goals, newest first, optionally filtered by status.
func (r *GoalRepository) List(ctx context.Context, userID string, statusFilter *goal.Status) ([]*goal.Goal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*goal.Goal
	for _, g := range r.goals[userID] {
		if statusFilter != nil && g.Status != *statusFilter {
			continue
		}
		out = append(out, g.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// INSIGHTS
// ══════════════════════════════════════════════════════════════════════════════

// InsightRepository implements insight.Repository in memory.
type InsightRepository struct {
	mu       sync.RWMutex
	insights map[string][]*insight.Insight // userID -> append order
}

// NewInsightRepository creates an empty in-memory insight store.
func NewInsightRepository() *InsightRepository {
	return &InsightRepository{insights: make(map[string][]*insight.Insight)}
}

// Append persists new insights for a user.
func (r *InsightRepository) Append(ctx context.Context, insights ...*insight.Insight) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ins := range insights {
		clone := *ins
		r.insights[ins.UserID] = append(r.insights[ins.UserID], &clone)
	}
	return nil
}

// List returns a user's insights, newest first.
func (r *InsightRepository) List(ctx context.Context, userID string) ([]*insight.Insight, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.insights[userID]
	out := make([]*insight.Insight, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		clone := *stored[i]
		out = append(out, &clone)
	}
	return out, nil
}

// ListUnviewed returns the user's unviewed insights, newest first.
func (r *InsightRepository) ListUnviewed(ctx context.Context, userID string) ([]*insight.Insight, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*insight.Insight
	stored := r.insights[userID]
	for i := len(stored) - 1; i >= 0; i-- {
		if !stored[i].Viewed {
			clone := *stored[i]
			out = append(out, &clone)
		}
	}
	return out, nil
}

// MarkViewed marks the given insight ids as viewed.
func (r *InsightRepository) MarkViewed(ctx context.Context, userID string, insightIDs ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make(map[string]bool, len(insightIDs))
	for _, id := range insightIDs {
		ids[id] = true
	}
	for _, ins := range r.insights[userID] {
		if ids[ins.ID] {
			ins.Viewed = true
		}
	}
	return nil
}
