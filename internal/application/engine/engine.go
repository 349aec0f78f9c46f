// Package engine implements the growth engine facade: the single entry
// point through which callers record activities, read profiles, manage
// goals, and request challenges and insights. All mutations for one user
// are serialized through a per-user lock and follow the same shape: load,
// mutate a deep copy, persist, then publish events.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jayai/growth-hub/internal/domain/catalog"
	"github.com/jayai/growth-hub/internal/domain/goal"
	"github.com/jayai/growth-hub/internal/domain/growth"
	"github.com/jayai/growth-hub/internal/domain/insight"
	"github.com/jayai/growth-hub/internal/domain/shared"
	"github.com/jayai/growth-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION AND COLLABORATORS
// ══════════════════════════════════════════════════════════════════════════════

// Config holds the engine's tunable parameters.
type Config struct {
	// ChallengeBaseXP is the flat part of a challenge's target XP.
	ChallengeBaseXP int

	// ChallengeXPPerLevel scales a challenge's target XP with the domain level.
	ChallengeXPPerLevel int

	// GoalCreatedXP is awarded in the goal's domain when a goal is created.
	GoalCreatedXP int

	// GoalCompletedXP is awarded in the goal's domain when a goal completes.
	GoalCompletedXP int
}

// DefaultConfig returns the default engine parameters.
func DefaultConfig() Config {
	return Config{
		ChallengeBaseXP:     50,
		ChallengeXPPerLevel: 10,
		GoalCreatedXP:       10,
		GoalCompletedXP:     50,
	}
}

// EventPublisher publishes committed domain events.
type EventPublisher interface {
	Publish(ctx context.Context, event shared.Event) error
}

// ProfileCache caches assembled profile snapshots. Implementations live in
// infrastructure; a nil cache disables caching entirely.
type ProfileCache interface {
	// Get returns the cached snapshot, or an error on miss or backend failure.
	Get(ctx context.Context, userID string) (*Profile, error)

	// Set stores a snapshot.
	Set(ctx context.Context, profile *Profile) error

	// Invalidate drops the snapshot after a mutation.
	Invalidate(ctx context.Context, userID string) error
}

// Engine is the growth engine facade.
type Engine struct {
	catalog   *catalog.Catalog
	cfg       Config
	records   growth.Repository
	goals     goal.Repository
	insights  insight.Repository
	generator *insight.Generator
	bus       EventPublisher
	cache     ProfileCache
	log       *logger.Logger
	locks     userLocks
}

// Params collects the engine's dependencies.
type Params struct {
	Catalog   *catalog.Catalog
	Config    Config
	Records   growth.Repository
	Goals     goal.Repository
	Insights  insight.Repository
	Generator *insight.Generator

	// Bus is optional; without it events are simply not published.
	Bus EventPublisher

	// Cache is optional; without it every profile read hits the repository.
	Cache ProfileCache

	Logger *logger.Logger
}

// New creates an Engine, validating required dependencies.
func New(p Params) (*Engine, error) {
	if p.Catalog == nil {
		return nil, errors.New("engine: catalog is required")
	}
	if p.Records == nil || p.Goals == nil || p.Insights == nil {
		return nil, errors.New("engine: all repositories are required")
	}
	if p.Generator == nil {
		p.Generator = insight.NewGenerator()
	}
	if p.Logger == nil {
		p.Logger = logger.Default()
	}
	if p.Config == (Config{}) {
		p.Config = DefaultConfig()
	}

	return &Engine{
		catalog:   p.Catalog,
		cfg:       p.Config,
		records:   p.Records,
		goals:     p.Goals,
		insights:  p.Insights,
		generator: p.Generator,
		bus:       p.Bus,
		cache:     p.Cache,
		log:       p.Logger.With(logger.Component("engine")),
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// RECORDING ACTIVITIES
// ══════════════════════════════════════════════════════════════════════════════

// RecordActivity applies one activity to the user's growth state and
// persists the result. At is the activity timestamp; the zero time means
// now. The returned result reports level and streak changes.
func (e *Engine) RecordActivity(ctx context.Context, userID string, domain catalog.Domain, xpDelta int, description string, at time.Time) (*growth.ActivityResult, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id", shared.ErrEmptyValue)
	}

	unlock := e.locks.lock(userID)
	result, err := e.recordLocked(ctx, userID, domain, xpDelta, description, at)
	unlock()
	if err != nil {
		return nil, err
	}

	e.afterMutation(ctx, userID)
	e.publishActivityEvents(ctx, userID, domain, xpDelta, description, result)

	e.log.Info("activity recorded",
		logger.UserID(userID),
		logger.Domain(string(domain)),
		logger.XPDelta(xpDelta),
		logger.Int("level", result.Level),
		logger.StreakDays(result.StreakCurrent),
	)
	return result, nil
}

func (e *Engine) recordLocked(ctx context.Context, userID string, domain catalog.Domain, xpDelta int, description string, at time.Time) (*growth.ActivityResult, error) {
	// Defaulting inside the lock keeps concurrent now-stamped activities in
	// non-decreasing order.
	if at.IsZero() {
		at = time.Now().UTC()
	}

	record, _, err := e.loadOrInit(ctx, userID)
	if err != nil {
		return nil, err
	}

	work := record.Clone()
	result, err := work.RecordActivity(e.catalog, domain, xpDelta, description, at)
	if err != nil {
		return nil, err
	}

	if err := e.records.Save(ctx, work); err != nil {
		return nil, fmt.Errorf("failed to save growth record: %w", err)
	}
	return result, nil
}

// loadOrInit returns the stored record, or a fresh unpersisted one for a
// never-seen user. The bool reports whether the record came from storage.
func (e *Engine) loadOrInit(ctx context.Context, userID string) (*growth.UserGrowthRecord, bool, error) {
	record, err := e.records.Get(ctx, userID)
	if err == nil {
		return record, true, nil
	}
	if errors.Is(err, growth.ErrRecordNotFound) {
		return growth.NewUserGrowthRecord(userID, e.catalog), false, nil
	}
	return nil, false, fmt.Errorf("failed to load growth record: %w", err)
}

func (e *Engine) publishActivityEvents(ctx context.Context, userID string, domain catalog.Domain, xpDelta int, description string, result *growth.ActivityResult) {
	e.publish(ctx, shared.ActivityRecordedEvent{
		BaseEvent:   shared.NewBaseEvent(shared.EventActivityRecorded, userID),
		Domain:      string(domain),
		XPAwarded:   xpDelta,
		Description: description,
	})
	if result.LevelsGained > 0 {
		e.publish(ctx, shared.LevelUpEvent{
			BaseEvent:    shared.NewBaseEvent(shared.EventLevelUp, userID),
			Domain:       string(domain),
			NewLevel:     result.Level,
			LevelsGained: result.LevelsGained,
		})
	}
	for _, m := range result.MilestonesCrossed {
		e.publish(ctx, shared.StreakMilestoneEvent{
			BaseEvent: shared.NewBaseEvent(shared.EventStreakMilestone, userID),
			Days:      m.Days,
			Tier:      m.Tier,
		})
	}
	if result.StreakBroken {
		e.publish(ctx, shared.StreakBrokenEvent{
			BaseEvent:      shared.NewBaseEvent(shared.EventStreakBroken, userID),
			PreviousStreak: result.PreviousStreak,
		})
	}
}

func (e *Engine) publish(ctx context.Context, event shared.Event) {
	if e.bus == nil {
		return
	}
	if err := e.bus.Publish(ctx, event); err != nil {
		e.log.Warn("event publish failed",
			logger.String("event_type", string(event.EventType())),
			logger.UserID(event.UserID()),
			logger.Err(err),
		)
	}
}

// afterMutation drops the cached profile so the next read rebuilds it.
func (e *Engine) afterMutation(ctx context.Context, userID string) {
	if e.cache == nil {
		return
	}
	if err := e.cache.Invalidate(ctx, userID); err != nil {
		e.log.Warn("profile cache invalidation failed", logger.UserID(userID), logger.Err(err))
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// GOALS
// ══════════════════════════════════════════════════════════════════════════════

// CreateGoalParams are the caller-supplied fields for CreateGoal.
type CreateGoalParams struct {
	UserID       string
	Domain       catalog.Domain
	Title        string
	Description  string
	TargetMetric string
	TargetDate   time.Time
	Milestones   []string
}

// CreateGoal creates an active goal and rewards the commitment with a small
// activity in the goal's domain.
func (e *Engine) CreateGoal(ctx context.Context, params CreateGoalParams) (*goal.Goal, error) {
	g, err := goal.NewGoal(goal.NewGoalParams{
		ID:           uuid.NewString(),
		UserID:       params.UserID,
		Domain:       params.Domain,
		Title:        params.Title,
		Description:  params.Description,
		TargetMetric: params.TargetMetric,
		TargetDate:   params.TargetDate,
		Milestones:   params.Milestones,
	})
	if err != nil {
		return nil, err
	}

	if err := e.goals.Create(ctx, g); err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	if e.cfg.GoalCreatedXP > 0 {
		_, err := e.RecordActivity(ctx, g.UserID, g.Domain, e.cfg.GoalCreatedXP,
			fmt.Sprintf("Set a new goal: %s", g.Title), time.Time{})
		if err != nil {
			// The goal itself is committed; the reward activity is best-effort.
			e.log.Warn("goal creation reward failed",
				logger.UserID(g.UserID), logger.GoalID(g.ID), logger.Err(err))
		}
	}

	e.publish(ctx, shared.GoalCreatedEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventGoalCreated, g.UserID),
		GoalID:    g.ID,
		Domain:    string(g.Domain),
		Title:     g.Title,
	})
	e.afterMutation(ctx, g.UserID)

	e.log.Info("goal created", logger.UserID(g.UserID), logger.GoalID(g.ID), logger.Domain(string(g.Domain)))
	return g.Clone(), nil
}

// mutateGoalLocked applies a goal transition under the user's lock so that
// concurrent goal mutations cannot overwrite each other's committed state.
// The caller must not hold the lock; rewards and events happen afterwards.
func (e *Engine) mutateGoalLocked(ctx context.Context, userID, goalID string, transition func(*goal.Goal) error) (*goal.Goal, error) {
	unlock := e.locks.lock(userID)
	defer unlock()

	g, err := e.goals.Get(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}

	work := g.Clone()
	if err := transition(work); err != nil {
		return nil, err
	}
	if err := e.goals.Update(ctx, work); err != nil {
		return nil, fmt.Errorf("failed to update goal: %w", err)
	}
	return work, nil
}

// UpdateGoalProgress sets a goal's progress percentage. Reaching 100
// completes the goal with the full completion reward.
func (e *Engine) UpdateGoalProgress(ctx context.Context, userID, goalID string, progress int) (*goal.Goal, error) {
	work, err := e.mutateGoalLocked(ctx, userID, goalID, func(g *goal.Goal) error {
		return g.UpdateProgress(progress)
	})
	if err != nil {
		return nil, err
	}

	if work.Status == goal.StatusCompleted {
		e.rewardGoalCompletion(ctx, work)
	}
	e.afterMutation(ctx, userID)
	return work.Clone(), nil
}

// CompleteGoalMilestone marks a named milestone done on an active goal.
func (e *Engine) CompleteGoalMilestone(ctx context.Context, userID, goalID, milestone string) (*goal.Goal, error) {
	work, err := e.mutateGoalLocked(ctx, userID, goalID, func(g *goal.Goal) error {
		return g.CompleteMilestone(milestone)
	})
	if err != nil {
		return nil, err
	}
	return work.Clone(), nil
}

// CompleteGoal transitions an active goal to completed.
func (e *Engine) CompleteGoal(ctx context.Context, userID, goalID string) (*goal.Goal, error) {
	work, err := e.mutateGoalLocked(ctx, userID, goalID, (*goal.Goal).Complete)
	if err != nil {
		return nil, err
	}

	e.rewardGoalCompletion(ctx, work)
	e.afterMutation(ctx, userID)
	return work.Clone(), nil
}

// AbandonGoal transitions an active goal to abandoned.
func (e *Engine) AbandonGoal(ctx context.Context, userID, goalID string) (*goal.Goal, error) {
	work, err := e.mutateGoalLocked(ctx, userID, goalID, (*goal.Goal).Abandon)
	if err != nil {
		return nil, err
	}

	e.publish(ctx, shared.GoalAbandonedEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventGoalAbandoned, userID),
		GoalID:    work.ID,
		Domain:    string(work.Domain),
	})
	e.afterMutation(ctx, userID)
	return work.Clone(), nil
}

// GetGoal returns one goal owned by the user.
func (e *Engine) GetGoal(ctx context.Context, userID, goalID string) (*goal.Goal, error) {
	g, err := e.goals.Get(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	return g.Clone(), nil
}

// ListGoals returns the user's goals, newest first. A nil status returns all.
func (e *Engine) ListGoals(ctx context.Context, userID string, status *goal.Status) ([]*goal.Goal, error) {
	if status != nil && !status.IsValid() {
		return nil, fmt.Errorf("%w: goal status %q", shared.ErrInvalidInput, *status)
	}
	return e.goals.List(ctx, userID, status)
}

func (e *Engine) rewardGoalCompletion(ctx context.Context, g *goal.Goal) {
	if e.cfg.GoalCompletedXP > 0 {
		_, err := e.RecordActivity(ctx, g.UserID, g.Domain, e.cfg.GoalCompletedXP,
			fmt.Sprintf("Achieved goal: %s", g.Title), time.Time{})
		if err != nil {
			e.log.Warn("goal completion reward failed",
				logger.UserID(g.UserID), logger.GoalID(g.ID), logger.Err(err))
		}
	}

	e.publish(ctx, shared.GoalCompletedEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventGoalCompleted, g.UserID),
		GoalID:    g.ID,
		Domain:    string(g.Domain),
		Title:     g.Title,
	})

	e.log.Info("goal completed", logger.UserID(g.UserID), logger.GoalID(g.ID))
}

// ══════════════════════════════════════════════════════════════════════════════
// INSIGHTS
// ══════════════════════════════════════════════════════════════════════════════

// GetInsights returns the user's insights, newest first. When unviewedOnly
// is set, only unviewed insights are returned. When markViewed is set, the
// returned insights are marked viewed after the read.
func (e *Engine) GetInsights(ctx context.Context, userID string, unviewedOnly, markViewed bool) ([]*insight.Insight, error) {
	var (
		list []*insight.Insight
		err  error
	)
	if unviewedOnly {
		list, err = e.insights.ListUnviewed(ctx, userID)
	} else {
		list, err = e.insights.List(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list insights: %w", err)
	}

	if markViewed && len(list) > 0 {
		ids := make([]string, 0, len(list))
		for _, ins := range list {
			if !ins.Viewed {
				ids = append(ids, ins.ID)
			}
		}
		if err := e.insights.MarkViewed(ctx, userID, ids...); err != nil {
			return nil, fmt.Errorf("failed to mark insights viewed: %w", err)
		}
		e.afterMutation(ctx, userID)
	}
	return list, nil
}

// RefreshInsights runs the generator over the user's current state and
// persists whatever it produced. Returns the newly created insights.
func (e *Engine) RefreshInsights(ctx context.Context, userID string) ([]*insight.Insight, error) {
	unlock := e.locks.lock(userID)
	record, _, err := e.loadOrInit(ctx, userID)
	if err != nil {
		unlock()
		return nil, err
	}
	snapshot := record.Clone()
	unlock()

	goals, err := e.goals.List(ctx, userID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}

	drafts := e.generator.Generate(insight.Snapshot{
		Record: snapshot,
		Goals:  goals,
		Now:    time.Now().UTC(),
	})
	if len(drafts) == 0 {
		return nil, nil
	}

	created := make([]*insight.Insight, 0, len(drafts))
	for _, d := range drafts {
		ins, err := insight.New(uuid.NewString(), userID, d.Category, d.Text, d.Domains...)
		if err != nil {
			return nil, err
		}
		created = append(created, ins)
	}
	if err := e.insights.Append(ctx, created...); err != nil {
		return nil, fmt.Errorf("failed to append insights: %w", err)
	}

	e.publish(ctx, shared.InsightsGeneratedEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventInsightsGenerated, userID),
		Count:     len(created),
	})
	e.afterMutation(ctx, userID)

	e.log.Info("insights refreshed", logger.UserID(userID), logger.Int("count", len(created)))
	return created, nil
}
