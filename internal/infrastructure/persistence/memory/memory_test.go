package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jayai/growth-hub/internal/domain/catalog"
	"github.com/jayai/growth-hub/internal/domain/goal"
	"github.com/jayai/growth-hub/internal/domain/growth"
	"github.com/jayai/growth-hub/internal/domain/insight"
)

func TestGrowthRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewGrowthRepository()
	cat := catalog.Default()

	_, err := repo.Get(ctx, "nobody")
	assert.ErrorIs(t, err, growth.ErrRecordNotFound)

	rec := growth.NewUserGrowthRecord("user-1", cat)
	require.NoError(t, repo.Save(ctx, rec))

	ok, err := repo.Exists(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, ok)

	loaded, err := repo.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, rec.Domains, loaded.Domains)

	// Mutating the loaded copy must not leak into the store.
	loaded.Domains[catalog.DomainCognitive] = growth.DomainState{Level: 9, XP: 0}
	reloaded, err := repo.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.Domains[catalog.DomainCognitive].Level)
}

func TestGoalRepository_CRUDAndFilter(t *testing.T) {
	ctx := context.Background()
	repo := NewGoalRepository()

	mk := func(id, title string) *goal.Goal {
		g, err := goal.NewGoal(goal.NewGoalParams{
			ID: id, UserID: "user-1", Domain: catalog.DomainCreative, Title: title,
		})
		require.NoError(t, err)
		return g
	}

	a := mk("goal-a", "Write an album")
	b := mk("goal-b", "Daily sketching")
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	require.NoError(t, b.Abandon())
	require.NoError(t, repo.Update(ctx, b))

	all, err := repo.List(ctx, "user-1", nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active := goal.StatusActive
	onlyActive, err := repo.List(ctx, "user-1", &active)
	require.NoError(t, err)
	require.Len(t, onlyActive, 1)
	assert.Equal(t, "goal-a", onlyActive[0].ID)

	_, err = repo.Get(ctx, "user-1", "missing")
	assert.ErrorIs(t, err, goal.ErrGoalNotFound)

	ghost := mk("ghost", "Never created")
	assert.ErrorIs(t, repo.Update(ctx, ghost), goal.ErrGoalNotFound)

	// Other users see nothing.
	other, err := repo.List(ctx, "user-2", nil)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestInsightRepository_AppendOnlyAndViewed(t *testing.T) {
	ctx := context.Background()
	repo := NewInsightRepository()

	first, err := insight.New("ins-1", "user-1", insight.CategoryPattern, "first")
	require.NoError(t, err)
	second, err := insight.New("ins-2", "user-1", insight.CategoryAchievement, "second")
	require.NoError(t, err)
	require.NoError(t, repo.Append(ctx, first, second))

	listed, err := repo.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "ins-2", listed[0].ID, "newest first")

	require.NoError(t, repo.MarkViewed(ctx, "user-1", "ins-1"))

	unviewed, err := repo.ListUnviewed(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, unviewed, 1)
	assert.Equal(t, "ins-2", unviewed[0].ID)

	// The original value passed to Append is not aliased by the store.
	first.Text = "tampered"
	listed, err = repo.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "first", listed[1].Text)
}
