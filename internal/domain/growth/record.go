// Package growth contains the core progress model: per-domain levels and
// XP, the daily streak, and the append-only activity log. This is pure
// business logic with no infrastructure dependencies.
package growth

import (
	"fmt"
	"time"

	"github.com/jayai/growth-hub/internal/domain/catalog"
	"github.com/jayai/growth-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// USER GROWTH RECORD
// ══════════════════════════════════════════════════════════════════════════════

// ActivityEntry is one recorded activity in a user's log.
type ActivityEntry struct {
	// Timestamp is when the activity happened.
	Timestamp time.Time

	// Domain is the growth domain the activity belongs to.
	Domain catalog.Domain

	// XPAwarded is the XP granted for the activity.
	XPAwarded int

	// Description is the caller-provided summary of the activity.
	Description string
}

// UserGrowthRecord is the complete growth state of one user: per-domain
// level/XP, the streak, and the chronological activity log. Entries are
// only ever appended, never deleted.
type UserGrowthRecord struct {
	// UserID is the owning user's identifier.
	UserID string

	// Domains maps every catalog domain to its state. Initialized for all
	// eight domains on creation.
	Domains map[catalog.Domain]DomainState

	// Streak is the user's single cross-domain daily streak.
	Streak StreakState

	// ActivityLog holds activities in non-decreasing timestamp order.
	ActivityLog []ActivityEntry

	// CreatedAt is when the record was first created.
	CreatedAt time.Time

	// UpdatedAt is when the record was last mutated.
	UpdatedAt time.Time
}

// NewUserGrowthRecord creates a record with every catalog domain at level 1
// with zero XP, an empty streak, and an empty log.
func NewUserGrowthRecord(userID string, cat *catalog.Catalog) *UserGrowthRecord {
	now := time.Now().UTC()
	domains := make(map[catalog.Domain]DomainState, len(cat.Domains()))
	for _, d := range cat.Domains() {
		domains[d] = NewDomainState()
	}
	return &UserGrowthRecord{
		UserID:    userID,
		Domains:   domains,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy. Mutating the copy never affects the original,
// which is what makes snapshot reads and copy-then-commit writes safe.
func (r *UserGrowthRecord) Clone() *UserGrowthRecord {
	domains := make(map[catalog.Domain]DomainState, len(r.Domains))
	for d, s := range r.Domains {
		domains[d] = s
	}
	log := make([]ActivityEntry, len(r.ActivityLog))
	copy(log, r.ActivityLog)

	return &UserGrowthRecord{
		UserID:      r.UserID,
		Domains:     domains,
		Streak:      r.Streak,
		ActivityLog: log,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// RECORDING
// ══════════════════════════════════════════════════════════════════════════════

// ActivityResult summarizes what one recorded activity changed.
type ActivityResult struct {
	// Domain is the domain the XP was applied to.
	Domain catalog.Domain

	// Level and XP are the domain state after leveling.
	Level int
	XP    int

	// LevelsGained is how many levels this activity crossed.
	LevelsGained int

	// StreakCurrent and StreakLongest are the streak counters after the update.
	StreakCurrent int
	StreakLongest int

	// MilestonesCrossed lists streak milestones hit exactly on this update.
	MilestonesCrossed []Milestone

	// StreakBroken is true when this activity reset a previously running streak.
	StreakBroken bool

	// PreviousStreak is the streak length before the update.
	PreviousStreak int

	// ChallengesCompleted is the domain's completion counter, set only when
	// the activity came in through CompleteChallenge.
	ChallengesCompleted int
}

// RecordActivity applies one activity to the record: XP and leveling on the
// named domain, the streak update, and the log append. The record is only
// mutated if every validation passes; on error it is returned to the caller
// untouched.
func (r *UserGrowthRecord) RecordActivity(cat *catalog.Catalog, domain catalog.Domain, xpDelta int, description string, at time.Time) (*ActivityResult, error) {
	if !cat.Contains(domain) {
		return nil, fmt.Errorf("%w: %q", shared.ErrUnknownDomain, domain)
	}
	state, ok := r.Domains[domain]
	if !ok {
		return nil, fmt.Errorf("%w: %q not tracked for user %s", shared.ErrUnknownDomain, domain, r.UserID)
	}
	if xpDelta < 0 {
		return nil, fmt.Errorf("%w: xp delta %d", shared.ErrNegativeValue, xpDelta)
	}
	if n := len(r.ActivityLog); n > 0 && at.Before(r.ActivityLog[n-1].Timestamp) {
		return nil, fmt.Errorf("%w: activity at %s predates log tail %s",
			shared.ErrOutOfOrder, at.UTC().Format(time.RFC3339), r.ActivityLog[n-1].Timestamp.UTC().Format(time.RFC3339))
	}

	curve, err := cat.Curve(domain)
	if err != nil {
		return nil, err
	}

	// Compute both updates before committing either, so a streak rejection
	// cannot leave a half-applied record.
	newState, levelsGained, err := ApplyXP(state, xpDelta, curve)
	if err != nil {
		return nil, err
	}

	prevStreak := r.Streak.Current
	newStreak, crossed, err := RecordStreakActivity(r.Streak, at)
	if err != nil {
		return nil, err
	}

	r.Domains[domain] = newState
	r.Streak = newStreak
	r.ActivityLog = append(r.ActivityLog, ActivityEntry{
		Timestamp:   at.UTC(),
		Domain:      domain,
		XPAwarded:   xpDelta,
		Description: description,
	})
	r.UpdatedAt = time.Now().UTC()

	return &ActivityResult{
		Domain:            domain,
		Level:             newState.Level,
		XP:                newState.XP,
		LevelsGained:      levelsGained,
		StreakCurrent:     newStreak.Current,
		StreakLongest:     newStreak.Longest,
		MilestonesCrossed: crossed,
		StreakBroken:      prevStreak > 1 && newStreak.Current == 1,
		PreviousStreak:    prevStreak,
	}, nil
}

// CompleteChallenge records the challenge's target XP as an activity in its
// domain and bumps that domain's completion counter. Validation and ordering
// rules are those of RecordActivity.
func (r *UserGrowthRecord) CompleteChallenge(cat *catalog.Catalog, domain catalog.Domain, targetXP int, description string, at time.Time) (*ActivityResult, error) {
	result, err := r.RecordActivity(cat, domain, targetXP, description, at)
	if err != nil {
		return nil, err
	}

	state := r.Domains[domain]
	state.ChallengesCompleted++
	r.Domains[domain] = state
	result.ChallengesCompleted = state.ChallengesCompleted
	return result, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// AGGREGATES
// ══════════════════════════════════════════════════════════════════════════════

// TotalLevel sums the level across all domains.
func (r *UserGrowthRecord) TotalLevel() int {
	total := 0
	for _, s := range r.Domains {
		total += s.Level
	}
	return total
}

// AverageLevel is the mean level across all domains.
func (r *UserGrowthRecord) AverageLevel() float64 {
	if len(r.Domains) == 0 {
		return 0
	}
	return float64(r.TotalLevel()) / float64(len(r.Domains))
}

// HighestDomain returns the domain with the highest level, breaking ties by
// canonical domain order so the result is deterministic.
func (r *UserGrowthRecord) HighestDomain() catalog.Domain {
	var best catalog.Domain
	bestLevel := -1
	for _, d := range catalog.All() {
		if s, ok := r.Domains[d]; ok && s.Level > bestLevel {
			best = d
			bestLevel = s.Level
		}
	}
	return best
}

// RecentActivities returns up to n newest log entries, newest first.
func (r *UserGrowthRecord) RecentActivities(n int) []ActivityEntry {
	if n <= 0 || len(r.ActivityLog) == 0 {
		return nil
	}
	if n > len(r.ActivityLog) {
		n = len(r.ActivityLog)
	}
	out := make([]ActivityEntry, n)
	for i := 0; i < n; i++ {
		out[i] = r.ActivityLog[len(r.ActivityLog)-1-i]
	}
	return out
}

// LastActivityAt returns the timestamp of the newest log entry, or the zero
// time for an empty log.
func (r *UserGrowthRecord) LastActivityAt() time.Time {
	if len(r.ActivityLog) == 0 {
		return time.Time{}
	}
	return r.ActivityLog[len(r.ActivityLog)-1].Timestamp
}

// Validate checks the record's invariants against the catalog. Used by
// persistence implementations after loading.
func (r *UserGrowthRecord) Validate(cat *catalog.Catalog) error {
	if r.UserID == "" {
		return fmt.Errorf("%w: user id", shared.ErrEmptyValue)
	}
	for d, s := range r.Domains {
		if !cat.Contains(d) {
			return fmt.Errorf("%w: %q", shared.ErrUnknownDomain, d)
		}
		if s.Level < 1 {
			return fmt.Errorf("%w: domain %q level %d", shared.ErrValueOutOfRange, d, s.Level)
		}
		curve, err := cat.Curve(d)
		if err != nil {
			return err
		}
		if s.XP < 0 || s.XP >= curve.Threshold(s.Level) {
			return fmt.Errorf("%w: domain %q xp %d outside [0,%d)",
				shared.ErrValueOutOfRange, d, s.XP, curve.Threshold(s.Level))
		}
	}
	if r.Streak.Current > r.Streak.Longest {
		return fmt.Errorf("%w: streak current %d exceeds longest %d",
			shared.ErrValueOutOfRange, r.Streak.Current, r.Streak.Longest)
	}
	for i := 1; i < len(r.ActivityLog); i++ {
		if r.ActivityLog[i].Timestamp.Before(r.ActivityLog[i-1].Timestamp) {
			return fmt.Errorf("%w: activity log not in timestamp order at index %d", shared.ErrOutOfOrder, i)
		}
	}
	return nil
}
