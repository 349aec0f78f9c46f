package growth

import (
	"fmt"
	"time"

	"github.com/jayai/growth-hub/internal/domain/shared"
	"github.com/jayai/growth-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// STREAK TRACKING
// One streak per user, counted in whole UTC calendar days. Any recorded
// activity in any domain keeps the streak alive.
// ══════════════════════════════════════════════════════════════════════════════

// StreakState tracks consecutive active days for a user.
type StreakState struct {
	// Current is the length of the running streak in days.
	Current int

	// Longest is the best streak ever reached. Never decreases.
	Longest int

	// LastActivityDate is the UTC calendar day of the most recent activity.
	// The zero time means no activity has ever been recorded.
	LastActivityDate time.Time
}

// Milestone is a notable streak length with its consistency tier name.
type Milestone struct {
	// Days is the streak length that triggers the milestone.
	Days int

	// Tier is the consistency tier name for this length.
	Tier string
}

// Streak milestones, in ascending order.
var milestones = []Milestone{
	{Days: 3, Tier: "beginner"},
	{Days: 7, Tier: "consistent"},
	{Days: 14, Tier: "committed"},
	{Days: 30, Tier: "master"},
}

// Milestones returns the milestone set in ascending order.
func Milestones() []Milestone {
	out := make([]Milestone, len(milestones))
	copy(out, milestones)
	return out
}

// NextMilestone returns the first milestone longer than the given streak,
// or false when the streak is already past the last one.
func NextMilestone(current int) (Milestone, bool) {
	for _, m := range milestones {
		if current < m.Days {
			return m, true
		}
	}
	return Milestone{}, false
}

// RecordStreakActivity applies an activity dated at to the streak state.
//
// Same-day repeat activity leaves the counter unchanged; the day after the
// last activity extends the streak; a longer gap resets it to 1. Activity
// dated before the last recorded day is rejected and the state is returned
// unmodified. A milestone is crossed only on the update that moves the
// counter onto its exact value.
func RecordStreakActivity(s StreakState, at time.Time) (StreakState, []Milestone, error) {
	day := timeutil.StartOfDay(at)

	if s.LastActivityDate.IsZero() {
		s.Current++
		s.LastActivityDate = day
		if s.Current > s.Longest {
			s.Longest = s.Current
		}
		return s, crossed(s.Current), nil
	}

	switch days := timeutil.DaysBetween(s.LastActivityDate, day); {
	case days < 0:
		return s, nil, fmt.Errorf("%w: activity dated %s before last activity %s",
			shared.ErrOutOfOrder, timeutil.FormatDate(day), timeutil.FormatDate(s.LastActivityDate))
	case days == 0:
		// Already counted today.
		return s, nil, nil
	case days == 1:
		s.Current++
	default:
		s.Current = 1
	}

	if s.Current > s.Longest {
		s.Longest = s.Current
	}
	s.LastActivityDate = day

	return s, crossed(s.Current), nil
}

// IsBroken reports whether the streak has lapsed relative to now.
func (s StreakState) IsBroken(now time.Time) bool {
	if s.LastActivityDate.IsZero() || s.Current == 0 {
		return false
	}
	return timeutil.DaysBetween(s.LastActivityDate, now) > 1
}

func crossed(current int) []Milestone {
	for _, m := range milestones {
		if current == m.Days {
			return []Milestone{m}
		}
	}
	return nil
}
