package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jayai/growth-hub/internal/application/engine"
	"github.com/jayai/growth-hub/internal/domain/catalog"
	"github.com/jayai/growth-hub/internal/domain/shared"
	"github.com/jayai/growth-hub/pkg/timeutil"
)

func TestGenerateChallenge_ScalesWithDomainLevel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// 250 XP at constant threshold 100 puts cognitive at level 3.
	_, err := f.engine.RecordActivity(ctx, "user-1", catalog.DomainCognitive, 250, "course",
		timeutil.Date(2025, 7, 1))
	require.NoError(t, err)

	c, err := f.engine.GenerateChallenge(ctx, "user-1", catalog.DomainCognitive)
	require.NoError(t, err)

	cfg := engine.DefaultConfig()
	assert.Equal(t, engine.ChallengeKindDomain, c.Kind)
	assert.Equal(t, catalog.DomainCognitive, c.Domain)
	assert.Equal(t, cfg.ChallengeBaseXP+3*cfg.ChallengeXPPerLevel, c.TargetXP)
	assert.Contains(t, c.Description, "Cognitive")
}

func TestGenerateChallenge_UnknownDomain(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.GenerateChallenge(context.Background(), "user-1", "chess")
	require.ErrorIs(t, err, shared.ErrUnknownDomain)
}

func TestGenerateChallenges_BiasesLowestLevelDomains(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.RecordActivity(ctx, "user-1", catalog.DomainCognitive, 250, "course",
		timeutil.Date(2025, 7, 1))
	require.NoError(t, err)

	challenges, err := f.engine.GenerateChallenges(ctx, "user-1", 3)
	require.NoError(t, err)
	require.Len(t, challenges, 3)

	// Two weakest level-1 domains in canonical order, then the running
	// streak claims the last slot.
	assert.Equal(t, catalog.DomainCreative, challenges[0].Domain)
	assert.Equal(t, catalog.DomainPhysical, challenges[1].Domain)
	assert.Equal(t, engine.ChallengeKindStreak, challenges[2].Kind)

	for _, c := range challenges[:2] {
		assert.NotEqual(t, catalog.DomainCognitive, c.Domain, "the strongest domain should not be challenged first")
	}
}

func TestGenerateChallenges_NeverSeenUser(t *testing.T) {
	f := newFixture(t)

	challenges, err := f.engine.GenerateChallenges(context.Background(), "ghost", 2)
	require.NoError(t, err)
	require.Len(t, challenges, 2)

	cfg := engine.DefaultConfig()
	for _, c := range challenges {
		assert.Equal(t, engine.ChallengeKindDomain, c.Kind)
		assert.Equal(t, cfg.ChallengeBaseXP+1*cfg.ChallengeXPPerLevel, c.TargetXP)
	}
}

func TestGenerateChallenges_CountClamped(t *testing.T) {
	f := newFixture(t)

	challenges, err := f.engine.GenerateChallenges(context.Background(), "ghost", 50)
	require.NoError(t, err)
	assert.Len(t, challenges, 8)

	_, err = f.engine.GenerateChallenges(context.Background(), "ghost", 0)
	require.ErrorIs(t, err, shared.ErrValueOutOfRange)
}

func TestGenerateChallenges_Deterministic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.RecordActivity(ctx, "user-1", catalog.DomainFinancial, 130, "budget review",
		timeutil.Date(2025, 7, 1))
	require.NoError(t, err)

	first, err := f.engine.GenerateChallenges(ctx, "user-1", 4)
	require.NoError(t, err)
	second, err := f.engine.GenerateChallenges(ctx, "user-1", 4)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCompleteChallenge_AwardsXPAndBumpsCounter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.engine.CompleteChallenge(ctx, "user-1", catalog.DomainPhysical, 120)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Level)
	assert.Equal(t, 20, res.XP)
	assert.Equal(t, 1, res.ChallengesCompleted)

	res, err = f.engine.CompleteChallenge(ctx, "user-1", catalog.DomainPhysical, 50)
	require.NoError(t, err)
	assert.Equal(t, 2, res.ChallengesCompleted)

	stored, err := f.records.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Domains[catalog.DomainPhysical].ChallengesCompleted)

	// 170 XP total at constant threshold 100: level 2 with 70 toward level 3.
	assert.Equal(t, 2, stored.Domains[catalog.DomainPhysical].Level)
	assert.Equal(t, 70, stored.Domains[catalog.DomainPhysical].XP)
	require.Len(t, stored.ActivityLog, 2)
	assert.Contains(t, stored.ActivityLog[0].Description, "challenge")

	assert.Len(t, f.events.ofType(shared.EventActivityRecorded), 2)
}

func TestCompleteChallenge_RejectsBadInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.CompleteChallenge(ctx, "user-1", catalog.DomainPhysical, 0)
	require.ErrorIs(t, err, shared.ErrValueOutOfRange)

	_, err = f.engine.CompleteChallenge(ctx, "", catalog.DomainPhysical, 50)
	require.ErrorIs(t, err, shared.ErrEmptyValue)

	_, err = f.engine.CompleteChallenge(ctx, "user-1", "chess", 50)
	require.ErrorIs(t, err, shared.ErrUnknownDomain)

	exists, err := f.records.Exists(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, exists)
}
