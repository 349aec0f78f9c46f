package insight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jayai/growth-hub/internal/domain/catalog"
	"github.com/jayai/growth-hub/internal/domain/goal"
	"github.com/jayai/growth-hub/internal/domain/growth"
	"github.com/jayai/growth-hub/pkg/timeutil"
)

func buildSnapshot(t *testing.T) Snapshot {
	t.Helper()
	cat := catalog.Default()
	rec := growth.NewUserGrowthRecord("user-1", cat)

	// Three days of cognitive work, one creative session.
	for i := 0; i < 3; i++ {
		_, err := rec.RecordActivity(cat, catalog.DomainCognitive, 60, "studied", timeutil.Date(2025, 8, 10+i))
		require.NoError(t, err)
	}
	_, err := rec.RecordActivity(cat, catalog.DomainCreative, 30, "sketched", timeutil.Date(2025, 8, 12))
	require.NoError(t, err)

	g, err := goal.NewGoal(goal.NewGoalParams{
		ID:     "goal-1",
		UserID: "user-1",
		Domain: catalog.DomainCognitive,
		Title:  "Finish the course",
	})
	require.NoError(t, err)
	require.NoError(t, g.UpdateProgress(80))

	return Snapshot{
		Record: rec,
		Goals:  []*goal.Goal{g},
		Now:    timeutil.Date(2025, 8, 12),
	}
}

func categories(drafts []Draft) []Category {
	out := make([]Category, len(drafts))
	for i, d := range drafts {
		out[i] = d.Category
	}
	return out
}

func TestGenerate_Deterministic(t *testing.T) {
	gen := NewGenerator()
	snap := buildSnapshot(t)

	first := gen.Generate(snap)
	second := gen.Generate(snap)

	assert.Equal(t, first, second)
	assert.NotEmpty(t, first)
}

func TestGenerate_DoesNotMutateSnapshot(t *testing.T) {
	gen := NewGenerator()
	snap := buildSnapshot(t)
	before := snap.Record.Clone()

	gen.Generate(snap)

	assert.Equal(t, before.Domains, snap.Record.Domains)
	assert.Equal(t, before.Streak, snap.Record.Streak)
	assert.Equal(t, before.ActivityLog, snap.Record.ActivityLog)
}

func TestGenerate_PatternPicksTopDomain(t *testing.T) {
	gen := NewGenerator()
	drafts := gen.Generate(buildSnapshot(t))

	require.NotEmpty(t, drafts)
	pattern := drafts[0]
	assert.Equal(t, CategoryPattern, pattern.Category)
	assert.Equal(t, []catalog.Domain{catalog.DomainCognitive}, pattern.Domains)
	assert.Contains(t, pattern.Text, "cognitive")
	assert.Contains(t, pattern.Text, "180 XP")
}

func TestGenerate_StreakMilestoneAchievement(t *testing.T) {
	gen := NewGenerator()
	snap := buildSnapshot(t) // streak is exactly 3 days

	drafts := gen.Generate(snap)
	assert.Contains(t, categories(drafts), CategoryAchievement)

	var achievement Draft
	for _, d := range drafts {
		if d.Category == CategoryAchievement {
			achievement = d
		}
	}
	assert.Contains(t, achievement.Text, "beginner")
	assert.Contains(t, achievement.Text, "3-day streak")
}

func TestGenerate_MilestoneNudgeTargetsNextTier(t *testing.T) {
	gen := NewGenerator()
	drafts := gen.Generate(buildSnapshot(t))

	found := false
	for _, d := range drafts {
		if d.Category == CategoryRecommendation && len(d.Domains) == 0 {
			assert.Contains(t, d.Text, "4 more days")
			assert.Contains(t, d.Text, "consistent")
			found = true
		}
	}
	assert.True(t, found, "expected a streak nudge recommendation")
}

func TestGenerate_GoalNudge(t *testing.T) {
	gen := NewGenerator()
	drafts := gen.Generate(buildSnapshot(t))

	found := false
	for _, d := range drafts {
		if d.Category == CategoryRecommendation && len(d.Domains) == 1 && d.Domains[0] == catalog.DomainCognitive {
			assert.Contains(t, d.Text, "Finish the course")
			assert.Contains(t, d.Text, "80%")
			found = true
		}
	}
	assert.True(t, found, "expected a goal nudge for the 80% goal")
}

func TestGenerate_EmptyRecord(t *testing.T) {
	gen := NewGenerator()
	cat := catalog.Default()

	drafts := gen.Generate(Snapshot{
		Record: growth.NewUserGrowthRecord("user-2", cat),
		Now:    timeutil.Date(2025, 8, 12),
	})
	assert.Empty(t, drafts, "a fresh record has nothing to observe")

	assert.Nil(t, gen.Generate(Snapshot{}))
}

func TestGenerate_StaleUserGetsNoNeglectNudge(t *testing.T) {
	gen := NewGenerator()
	snap := buildSnapshot(t)
	snap.Now = timeutil.Date(2025, 10, 1) // weeks after the last activity

	for _, d := range gen.Generate(snap) {
		if d.Category == CategoryRecommendation {
			assert.NotContains(t, d.Text, "quiet", "no neglect nudge for users without recent momentum")
		}
	}
}

func TestNew_Validation(t *testing.T) {
	_, err := New("", "u", CategoryPattern, "text")
	assert.Error(t, err)
	_, err = New("i", "u", Category("vibes"), "text")
	assert.Error(t, err)
	_, err = New("i", "u", CategoryPattern, "")
	assert.Error(t, err)

	ins, err := New("i", "u", CategoryPattern, "text", catalog.DomainSocial)
	require.NoError(t, err)
	assert.False(t, ins.Viewed)
}
