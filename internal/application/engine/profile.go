package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jayai/growth-hub/internal/domain/catalog"
	"github.com/jayai/growth-hub/internal/domain/goal"
	"github.com/jayai/growth-hub/internal/domain/growth"
	"github.com/jayai/growth-hub/internal/domain/shared"
	"github.com/jayai/growth-hub/pkg/logger"
	"github.com/jayai/growth-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE SNAPSHOT
// ══════════════════════════════════════════════════════════════════════════════

// DomainProfile is one domain's state inside a profile snapshot.
type DomainProfile struct {
	Domain              catalog.Domain `json:"domain"`
	Title               string         `json:"title"`
	Level               int            `json:"level"`
	XP                  int            `json:"xp"`
	XPToNextLevel       int            `json:"xp_to_next_level"`
	ChallengesCompleted int            `json:"challenges_completed"`
}

// StreakProfile is the streak section of a profile snapshot.
type StreakProfile struct {
	Current          int    `json:"current"`
	Longest          int    `json:"longest"`
	Tier             string `json:"tier,omitempty"`
	NextMilestoneIn  int    `json:"next_milestone_in,omitempty"`
	NextMilestone    string `json:"next_milestone,omitempty"`
	ActiveToday      bool   `json:"active_today"`
	AtRiskOfBreaking bool   `json:"at_risk_of_breaking"`
}

// ActivityView is one recent activity inside a profile snapshot.
type ActivityView struct {
	Timestamp   time.Time      `json:"timestamp"`
	Domain      catalog.Domain `json:"domain"`
	XPAwarded   int            `json:"xp_awarded"`
	Description string         `json:"description,omitempty"`
}

// Profile is the assembled read model of one user's growth state. It is a
// detached snapshot: mutating it never affects the store.
type Profile struct {
	UserID           string          `json:"user_id"`
	Domains          []DomainProfile `json:"domains"`
	TotalLevel       int             `json:"total_level"`
	AverageLevel     float64         `json:"average_level"`
	HighestDomain    catalog.Domain  `json:"highest_domain"`
	Streak           StreakProfile   `json:"streak"`
	RecentActivities []ActivityView  `json:"recent_activities,omitempty"`
	ActiveGoals      int             `json:"active_goals"`
	UnviewedInsights int             `json:"unviewed_insights"`
	GeneratedAt      time.Time       `json:"generated_at"`
}

// recentActivityLimit caps how many log entries a profile shows.
const recentActivityLimit = 10

// ══════════════════════════════════════════════════════════════════════════════
// ASSEMBLY
// ══════════════════════════════════════════════════════════════════════════════

// GetProfile assembles the user's profile snapshot. A never-seen user gets
// a default profile (all domains at level 1, no streak) without anything
// being persisted.
func (e *Engine) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id", shared.ErrEmptyValue)
	}

	if e.cache != nil {
		if profile, err := e.cache.Get(ctx, userID); err == nil {
			return profile, nil
		}
		// Both misses and backend failures fall through to assembly.
	}

	unlock := e.locks.lock(userID)
	record, stored, err := e.loadOrInit(ctx, userID)
	if err != nil {
		unlock()
		return nil, err
	}
	snapshot := record.Clone()
	unlock()

	profile, err := e.buildProfile(ctx, snapshot)
	if err != nil {
		return nil, err
	}

	// Caching the never-seen default would pin an empty profile across the
	// user's first activity, so only stored records are cached.
	if e.cache != nil && stored {
		if err := e.cache.Set(ctx, profile); err != nil {
			e.log.Warn("profile cache write failed", logger.UserID(userID), logger.Err(err))
		}
	}
	return profile, nil
}

func (e *Engine) buildProfile(ctx context.Context, record *growth.UserGrowthRecord) (*Profile, error) {
	now := time.Now().UTC()

	domains := make([]DomainProfile, 0, len(e.catalog.Domains()))
	for _, d := range e.catalog.Domains() {
		state := record.Domains[d]
		desc, err := e.catalog.Descriptor(d)
		if err != nil {
			return nil, err
		}
		domains = append(domains, DomainProfile{
			Domain:              d,
			Title:               desc.Title,
			Level:               state.Level,
			XP:                  state.XP,
			XPToNextLevel:       desc.Curve.Threshold(state.Level) - state.XP,
			ChallengesCompleted: state.ChallengesCompleted,
		})
	}

	activeStatus := goal.StatusActive
	activeGoals, err := e.goals.List(ctx, record.UserID, &activeStatus)
	if err != nil {
		return nil, fmt.Errorf("failed to list active goals: %w", err)
	}

	unviewed, err := e.insights.ListUnviewed(ctx, record.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list unviewed insights: %w", err)
	}

	recent := record.RecentActivities(recentActivityLimit)
	views := make([]ActivityView, 0, len(recent))
	for _, entry := range recent {
		views = append(views, ActivityView{
			Timestamp:   entry.Timestamp,
			Domain:      entry.Domain,
			XPAwarded:   entry.XPAwarded,
			Description: entry.Description,
		})
	}

	return &Profile{
		UserID:           record.UserID,
		Domains:          domains,
		TotalLevel:       record.TotalLevel(),
		AverageLevel:     record.AverageLevel(),
		HighestDomain:    record.HighestDomain(),
		Streak:           buildStreakProfile(record.Streak, now),
		RecentActivities: views,
		ActiveGoals:      len(activeGoals),
		UnviewedInsights: len(unviewed),
		GeneratedAt:      now,
	}, nil
}

func buildStreakProfile(s growth.StreakState, now time.Time) StreakProfile {
	profile := StreakProfile{
		Current: s.Current,
		Longest: s.Longest,
		Tier:    streakTier(s.Current),
	}
	if next, ok := growth.NextMilestone(s.Current); ok && s.Current > 0 {
		profile.NextMilestone = next.Tier
		profile.NextMilestoneIn = next.Days - s.Current
	}
	if !s.LastActivityDate.IsZero() {
		profile.ActiveToday = timeutil.SameDay(s.LastActivityDate, now)
		// The streak survives until the end of the day after the last
		// activity; a quiet "yesterday" user is one missed day from a reset.
		profile.AtRiskOfBreaking = !profile.ActiveToday && !s.IsBroken(now) && s.Current > 0
	}
	return profile
}

// streakTier names the highest milestone tier the streak has reached.
func streakTier(current int) string {
	tier := ""
	for _, m := range growth.Milestones() {
		if current >= m.Days {
			tier = m.Tier
		}
	}
	return tier
}
