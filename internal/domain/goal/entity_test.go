package goal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jayai/growth-hub/internal/domain/catalog"
	"github.com/jayai/growth-hub/internal/domain/shared"
)

func newTestGoal(t *testing.T) *Goal {
	t.Helper()
	g, err := NewGoal(NewGoalParams{
		ID:           "goal-1",
		UserID:       "user-1",
		Domain:       catalog.DomainProfessional,
		Title:        "Ship the side project",
		Description:  "Launch v1 to real users",
		TargetMetric: "public release published",
		Milestones:   []string{"prototype", "beta", "launch"},
	})
	require.NoError(t, err)
	return g
}

func TestNewGoal(t *testing.T) {
	g := newTestGoal(t)

	assert.Equal(t, StatusActive, g.Status)
	assert.Equal(t, 0, g.Progress)
	assert.Nil(t, g.CompletedAt)
	assert.Len(t, g.Milestones, 3)
	assert.False(t, g.Milestones[0].Done)
}

func TestNewGoal_Validation(t *testing.T) {
	tests := []struct {
		name   string
		params NewGoalParams
	}{
		{"missing id", NewGoalParams{UserID: "u", Domain: catalog.DomainSocial, Title: "t"}},
		{"missing user", NewGoalParams{ID: "g", Domain: catalog.DomainSocial, Title: "t"}},
		{"unknown domain", NewGoalParams{ID: "g", UserID: "u", Domain: "astral", Title: "t"}},
		{"empty title", NewGoalParams{ID: "g", UserID: "u", Domain: catalog.DomainSocial, Title: "   "}},
		{"blank milestone", NewGoalParams{ID: "g", UserID: "u", Domain: catalog.DomainSocial, Title: "t", Milestones: []string{" "}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGoal(tt.params)
			assert.ErrorIs(t, err, shared.ErrValidation)
		})
	}
}

// The worked scenario: progress 150 fails validation; progress 80 then
// Complete succeeds; a second Complete fails with a state error.
func TestGoalLifecycle_Scenario(t *testing.T) {
	g := newTestGoal(t)

	err := g.UpdateProgress(150)
	assert.ErrorIs(t, err, shared.ErrValidation)
	assert.Equal(t, 0, g.Progress, "rejected update must not change progress")

	require.NoError(t, g.UpdateProgress(80))
	assert.Equal(t, 80, g.Progress)

	require.NoError(t, g.Complete())
	assert.Equal(t, StatusCompleted, g.Status)
	assert.Equal(t, 100, g.Progress)
	require.NotNil(t, g.CompletedAt)
	assert.WithinDuration(t, time.Now().UTC(), *g.CompletedAt, 5*time.Second)

	err = g.Complete()
	assert.ErrorIs(t, err, ErrGoalNotActive)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestUpdateProgress_AutoCompletesAtHundred(t *testing.T) {
	g := newTestGoal(t)

	require.NoError(t, g.UpdateProgress(100))
	assert.Equal(t, StatusCompleted, g.Status)
	assert.NotNil(t, g.CompletedAt)
}

func TestUpdateProgress_NegativeRejected(t *testing.T) {
	g := newTestGoal(t)
	assert.ErrorIs(t, g.UpdateProgress(-1), shared.ErrValidation)
}

func TestTerminalStatesRejectMutation(t *testing.T) {
	completed := newTestGoal(t)
	require.NoError(t, completed.Complete())

	abandoned := newTestGoal(t)
	require.NoError(t, abandoned.Abandon())
	assert.Nil(t, abandoned.CompletedAt, "abandoned goals never carry a completion stamp")

	for _, g := range []*Goal{completed, abandoned} {
		assert.ErrorIs(t, g.UpdateProgress(10), ErrGoalNotActive)
		assert.ErrorIs(t, g.Abandon(), ErrGoalNotActive)
		assert.ErrorIs(t, g.CompleteMilestone("prototype"), ErrGoalNotActive)
	}
}

func TestCompleteMilestone(t *testing.T) {
	g := newTestGoal(t)

	require.NoError(t, g.CompleteMilestone("beta"))
	assert.False(t, g.Milestones[0].Done)
	assert.True(t, g.Milestones[1].Done)

	assert.ErrorIs(t, g.CompleteMilestone("missing"), shared.ErrNotFound)
}

func TestClone_IsIsolated(t *testing.T) {
	g := newTestGoal(t)
	require.NoError(t, g.Complete())

	clone := g.Clone()
	clone.Milestones[0].Done = true
	*clone.CompletedAt = time.Time{}

	assert.False(t, g.Milestones[0].Done)
	assert.False(t, g.CompletedAt.IsZero())
}
