package insight

import (
	"fmt"
	"time"

	"github.com/jayai/growth-hub/internal/domain/catalog"
	"github.com/jayai/growth-hub/internal/domain/goal"
	"github.com/jayai/growth-hub/internal/domain/growth"
	"github.com/jayai/growth-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// INSIGHT GENERATION
// Pure derivation over a read-only snapshot. The generator mutates nothing
// and is deterministic: the same snapshot always yields the same drafts, in
// the same order. Callers persist the results explicitly.
// ══════════════════════════════════════════════════════════════════════════════

// Snapshot is the read-only input to insight generation.
type Snapshot struct {
	// Record is the user's growth record.
	Record *growth.UserGrowthRecord

	// Goals are the user's goals, any status.
	Goals []*goal.Goal

	// Now anchors all recency calculations.
	Now time.Time
}

// Draft is a generated insight before it is assigned an id and persisted.
type Draft struct {
	// Category classifies the draft.
	Category Category

	// Text is the observation.
	Text string

	// Domains are the related growth domains, if any.
	Domains []catalog.Domain
}

// Generator derives insights from snapshots.
type Generator struct {
	// PatternWindow is how many recent activity entries feed the
	// fastest-growing-domain rule.
	PatternWindow int

	// NeglectAfterDays is how many quiet days make a domain neglected.
	NeglectAfterDays int

	// GoalNudgeAt is the progress percentage from which an active goal
	// earns a push-to-finish recommendation.
	GoalNudgeAt int
}

// NewGenerator returns a Generator with the default rule parameters.
func NewGenerator() *Generator {
	return &Generator{
		PatternWindow:    20,
		NeglectAfterDays: 7,
		GoalNudgeAt:      75,
	}
}

// Generate derives insights from the snapshot. Rules run in a fixed order
// (pattern, achievements, recommendations) so output order is stable.
func (g *Generator) Generate(snap Snapshot) []Draft {
	if snap.Record == nil {
		return nil
	}

	var drafts []Draft
	drafts = appendDraft(drafts, g.fastestGrowingDomain(snap))
	drafts = appendDraft(drafts, g.streakTier(snap))
	drafts = appendDraft(drafts, g.neglectedDomain(snap))
	drafts = appendDraft(drafts, g.nextMilestoneNudge(snap))
	drafts = append(drafts, g.goalNudges(snap)...)
	return drafts
}

func appendDraft(drafts []Draft, d *Draft) []Draft {
	if d == nil {
		return drafts
	}
	return append(drafts, *d)
}

// fastestGrowingDomain finds the domain with the most XP across the recent
// activity window. Ties break by canonical domain order.
func (g *Generator) fastestGrowingDomain(snap Snapshot) *Draft {
	recent := snap.Record.RecentActivities(g.PatternWindow)
	if len(recent) == 0 {
		return nil
	}

	xpByDomain := make(map[catalog.Domain]int)
	countByDomain := make(map[catalog.Domain]int)
	for _, entry := range recent {
		xpByDomain[entry.Domain] += entry.XPAwarded
		countByDomain[entry.Domain]++
	}

	var best catalog.Domain
	bestXP := -1
	for _, d := range catalog.All() {
		if xp, ok := xpByDomain[d]; ok && xp > bestXP {
			best = d
			bestXP = xp
		}
	}
	if bestXP <= 0 {
		return nil
	}

	return &Draft{
		Category: CategoryPattern,
		Text: fmt.Sprintf("Your fastest-growing domain lately is %s: %d XP across %d recent activities.",
			best, bestXP, countByDomain[best]),
		Domains: []catalog.Domain{best},
	}
}

// streakTier celebrates a streak sitting exactly on a milestone.
func (g *Generator) streakTier(snap Snapshot) *Draft {
	current := snap.Record.Streak.Current
	for _, m := range growth.Milestones() {
		if current == m.Days {
			return &Draft{
				Category: CategoryAchievement,
				Text: fmt.Sprintf("You've reached %s status with a %d-day streak!",
					m.Tier, m.Days),
			}
		}
	}
	return nil
}

// neglectedDomain points at the domain quiet the longest while the user has
// been otherwise active recently.
func (g *Generator) neglectedDomain(snap Snapshot) *Draft {
	if len(snap.Record.ActivityLog) == 0 {
		return nil
	}
	// Only nudge users with current momentum.
	if timeutil.DaysBetween(snap.Record.LastActivityAt(), snap.Now) > g.NeglectAfterDays {
		return nil
	}

	lastByDomain := make(map[catalog.Domain]time.Time)
	for _, entry := range snap.Record.ActivityLog {
		lastByDomain[entry.Domain] = entry.Timestamp
	}

	var quietest catalog.Domain
	quietestDays := -1
	for _, d := range catalog.All() {
		last, touched := lastByDomain[d]
		days := g.NeglectAfterDays + 1
		if touched {
			days = timeutil.DaysBetween(last, snap.Now)
		}
		if days > g.NeglectAfterDays && days > quietestDays {
			quietest = d
			quietestDays = days
		}
	}
	if quietestDays < 0 {
		return nil
	}

	return &Draft{
		Category: CategoryRecommendation,
		Text: fmt.Sprintf("Your %s domain has been quiet for over %d days. Even a small activity would restart momentum there.",
			quietest, g.NeglectAfterDays),
		Domains: []catalog.Domain{quietest},
	}
}

// nextMilestoneNudge encourages keeping a live streak going toward the next
// milestone.
func (g *Generator) nextMilestoneNudge(snap Snapshot) *Draft {
	current := snap.Record.Streak.Current
	if current == 0 || snap.Record.Streak.IsBroken(snap.Now) {
		return nil
	}
	next, ok := growth.NextMilestone(current)
	if !ok {
		return nil
	}

	return &Draft{
		Category: CategoryRecommendation,
		Text: fmt.Sprintf("You're on a %d-day streak. %d more days to reach %s status.",
			current, next.Days-current, next.Tier),
	}
}

// goalNudges pushes active goals that are close to done.
func (g *Generator) goalNudges(snap Snapshot) []Draft {
	var drafts []Draft
	for _, gl := range snap.Goals {
		if gl.Status != goal.StatusActive || gl.Progress < g.GoalNudgeAt {
			continue
		}
		drafts = append(drafts, Draft{
			Category: CategoryRecommendation,
			Text: fmt.Sprintf("Your goal %q is %d%% done. One more push would finish it.",
				gl.Title, gl.Progress),
			Domains: []catalog.Domain{gl.Domain},
		})
	}
	return drafts
}
