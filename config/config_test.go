package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "growth-hub", cfg.App.Name)
	assert.Equal(t, EnvDevelopment, cfg.App.Environment)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 100, cfg.Growth.XPBase)
	assert.Equal(t, 0, cfg.Growth.XPGrowth)
	assert.Equal(t, 50, cfg.Growth.ChallengeBaseXP)
	assert.Empty(t, cfg.Database.URL)
	assert.NotNil(t, cfg.Features)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("GROWTH_XP_BASE", "200")
	t.Setenv("GROWTH_GOAL_COMPLETED_XP", "75")
	t.Setenv("APP_SHUTDOWN_TIMEOUT", "5s")
	t.Setenv("REDIS_DISABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 200, cfg.Growth.XPBase)
	assert.Equal(t, 75, cfg.Growth.GoalCompletedXP)
	assert.Equal(t, 5*time.Second, cfg.App.ShutdownTimeout)
	assert.True(t, cfg.Redis.Disabled)
}

func TestLoad_ProductionRequiresDatabaseURL(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL is required in production")

	t.Setenv("DATABASE_URL", "postgres://localhost:5432/growth")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	t.Setenv("HTTP_PORT", "70000")
	_, err := Load()
	assert.ErrorContains(t, err, "HTTP_PORT")

	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("GROWTH_XP_BASE", "0")
	_, err = Load()
	assert.ErrorContains(t, err, "GROWTH_XP_BASE")
}

func TestParseCurveOverrides(t *testing.T) {
	overrides, err := parseCurveOverrides("cognitive:120:10, physical:100:0")
	require.NoError(t, err)
	require.Len(t, overrides, 2)
	assert.Equal(t, XPCurveConfig{Base: 120, Growth: 10}, overrides["cognitive"])
	assert.Equal(t, XPCurveConfig{Base: 100, Growth: 0}, overrides["physical"])
}

func TestParseCurveOverrides_Empty(t *testing.T) {
	overrides, err := parseCurveOverrides("")
	require.NoError(t, err)
	assert.Nil(t, overrides)
}

func TestParseCurveOverrides_Malformed(t *testing.T) {
	_, err := parseCurveOverrides("cognitive:120")
	assert.ErrorContains(t, err, "want domain:base:growth")

	_, err = parseCurveOverrides("cognitive:abc:10")
	assert.ErrorContains(t, err, "invalid curve base")

	_, err = parseCurveOverrides("cognitive:120:xyz")
	assert.ErrorContains(t, err, "invalid curve growth")
}

func TestFeatureFlags_Defaults(t *testing.T) {
	ff := LoadFeatureFlags()

	assert.True(t, ff.IsEnabled(FeatureProfileCache))
	assert.True(t, ff.IsEnabled(FeatureChallengeScaling))
	assert.True(t, ff.IsEnabled(FeatureInsightOnMilestone))
	assert.False(t, ff.IsEnabled("no.such.feature"))
}

func TestFeatureFlags_EnvOverride(t *testing.T) {
	t.Setenv("FEATURE_CACHE_PROFILE", "false")

	ff := LoadFeatureFlags()
	assert.False(t, ff.IsEnabled(FeatureProfileCache))
	assert.True(t, ff.IsEnabled(FeatureChallengeScaling))
}

func TestFeatureFlags_RolloutBucketing(t *testing.T) {
	ff := LoadFeatureFlags()
	ff.SetRollout(FeatureProfileCache, 50)

	// Partial rollout is no longer "globally enabled".
	assert.False(t, ff.IsEnabled(FeatureProfileCache))

	// Per-user assignment is deterministic.
	first := ff.IsEnabledFor(FeatureProfileCache, "user-42")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ff.IsEnabledFor(FeatureProfileCache, "user-42"))
	}

	// Zero rollout disables everyone, full rollout enables everyone.
	ff.SetRollout(FeatureProfileCache, 0)
	assert.False(t, ff.IsEnabledFor(FeatureProfileCache, "user-42"))
	ff.SetRollout(FeatureProfileCache, 100)
	assert.True(t, ff.IsEnabledFor(FeatureProfileCache, "user-42"))
}

func TestFeatureFlags_UserOverrideWins(t *testing.T) {
	ff := LoadFeatureFlags()
	ff.SetRollout(FeatureChallengeScaling, 0)

	ff.OverrideForUser("user-7", FeatureChallengeScaling, true)
	assert.True(t, ff.IsEnabledFor(FeatureChallengeScaling, "user-7"))
	assert.False(t, ff.IsEnabledFor(FeatureChallengeScaling, "user-8"))
}

func TestFeatureFlags_SetEnabled(t *testing.T) {
	ff := LoadFeatureFlags()

	ff.SetEnabled(FeatureInsightOnMilestone, false)
	assert.False(t, ff.IsEnabled(FeatureInsightOnMilestone))
	assert.False(t, ff.IsEnabledFor(FeatureInsightOnMilestone, "anyone"))

	ff.SetEnabled(FeatureInsightOnMilestone, true)
	assert.True(t, ff.IsEnabled(FeatureInsightOnMilestone))
}
