package growth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jayai/growth-hub/internal/domain/catalog"
	"github.com/jayai/growth-hub/internal/domain/shared"
	"github.com/jayai/growth-hub/pkg/timeutil"
)

func newTestRecord(t *testing.T) (*UserGrowthRecord, *catalog.Catalog) {
	t.Helper()
	cat := catalog.Default()
	return NewUserGrowthRecord("user-1", cat), cat
}

func TestNewUserGrowthRecord_InitializesAllDomains(t *testing.T) {
	rec, cat := newTestRecord(t)

	assert.Len(t, rec.Domains, 8)
	for _, d := range cat.Domains() {
		state, ok := rec.Domains[d]
		require.True(t, ok, "domain %q missing", d)
		assert.Equal(t, 1, state.Level)
		assert.Equal(t, 0, state.XP)
	}
	assert.Zero(t, rec.Streak.Current)
	assert.Empty(t, rec.ActivityLog)
	assert.NoError(t, rec.Validate(cat))
}

// The worked example: 120 XP at level 1 with threshold 100 lands on
// {level:2, xp:20} with one level gained.
func TestRecordActivity_LevelUp(t *testing.T) {
	rec, cat := newTestRecord(t)

	res, err := rec.RecordActivity(cat, catalog.DomainCognitive, 120, "read a book", timeutil.Date(2025, 1, 1))
	require.NoError(t, err)

	assert.Equal(t, 2, res.Level)
	assert.Equal(t, 20, res.XP)
	assert.Equal(t, 1, res.LevelsGained)
	assert.Equal(t, 1, res.StreakCurrent)
	assert.Equal(t, DomainState{Level: 2, XP: 20}, rec.Domains[catalog.DomainCognitive])

	require.Len(t, rec.ActivityLog, 1)
	entry := rec.ActivityLog[0]
	assert.Equal(t, catalog.DomainCognitive, entry.Domain)
	assert.Equal(t, 120, entry.XPAwarded)
	assert.Equal(t, "read a book", entry.Description)

	assert.NoError(t, rec.Validate(cat))
}

func TestRecordActivity_UnknownDomain(t *testing.T) {
	rec, cat := newTestRecord(t)

	_, err := rec.RecordActivity(cat, catalog.Domain("astral"), 10, "meditated", time.Now())
	assert.ErrorIs(t, err, shared.ErrUnknownDomain)
	assert.Empty(t, rec.ActivityLog)
}

func TestRecordActivity_NegativeDelta(t *testing.T) {
	rec, cat := newTestRecord(t)

	_, err := rec.RecordActivity(cat, catalog.DomainSocial, -5, "oops", time.Now())
	assert.ErrorIs(t, err, shared.ErrValidation)
	assert.Empty(t, rec.ActivityLog)
}

func TestRecordActivity_OutOfOrderLeavesRecordUntouched(t *testing.T) {
	rec, cat := newTestRecord(t)

	_, err := rec.RecordActivity(cat, catalog.DomainPhysical, 50, "morning run", timeutil.Date(2025, 3, 10))
	require.NoError(t, err)
	snapshot := rec.Clone()

	_, err = rec.RecordActivity(cat, catalog.DomainPhysical, 50, "time travel", timeutil.Date(2025, 3, 9))
	assert.ErrorIs(t, err, shared.ErrOutOfOrder)
	assert.Equal(t, snapshot.Domains, rec.Domains)
	assert.Equal(t, snapshot.Streak, rec.Streak)
	assert.Equal(t, snapshot.ActivityLog, rec.ActivityLog)
}

func TestRecordActivity_SameDayKeepsStreak(t *testing.T) {
	rec, cat := newTestRecord(t)
	day := timeutil.Date(2025, 4, 2)

	_, err := rec.RecordActivity(cat, catalog.DomainCreative, 10, "sketched", day)
	require.NoError(t, err)
	res, err := rec.RecordActivity(cat, catalog.DomainCreative, 10, "sketched more", day.Add(4*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 1, res.StreakCurrent)
	assert.Len(t, rec.ActivityLog, 2)
	assert.Equal(t, 20, rec.Domains[catalog.DomainCreative].XP)
}

func TestRecordActivity_StreakBrokenFlag(t *testing.T) {
	rec, cat := newTestRecord(t)

	for i := 0; i < 3; i++ {
		_, err := rec.RecordActivity(cat, catalog.DomainFinancial, 5, "budgeted", timeutil.Date(2025, 5, 1+i))
		require.NoError(t, err)
	}

	res, err := rec.RecordActivity(cat, catalog.DomainFinancial, 5, "back again", timeutil.Date(2025, 5, 9))
	require.NoError(t, err)
	assert.True(t, res.StreakBroken)
	assert.Equal(t, 3, res.PreviousStreak)
	assert.Equal(t, 1, res.StreakCurrent)
	assert.Equal(t, 3, res.StreakLongest)
}

func TestClone_IsIsolated(t *testing.T) {
	rec, cat := newTestRecord(t)
	_, err := rec.RecordActivity(cat, catalog.DomainSocial, 40, "called a friend", timeutil.Date(2025, 6, 1))
	require.NoError(t, err)

	clone := rec.Clone()
	clone.Domains[catalog.DomainSocial] = DomainState{Level: 99, XP: 0}
	clone.ActivityLog[0].Description = "tampered"
	clone.Streak.Current = 42

	assert.Equal(t, 1, rec.Domains[catalog.DomainSocial].Level)
	assert.Equal(t, "called a friend", rec.ActivityLog[0].Description)
	assert.Equal(t, 1, rec.Streak.Current)
}

func TestAggregates(t *testing.T) {
	rec, cat := newTestRecord(t)

	// Push cognitive to level 3 and creative to level 2.
	_, err := rec.RecordActivity(cat, catalog.DomainCognitive, 200, "studied", timeutil.Date(2025, 7, 1))
	require.NoError(t, err)
	_, err = rec.RecordActivity(cat, catalog.DomainCreative, 100, "painted", timeutil.Date(2025, 7, 2))
	require.NoError(t, err)

	assert.Equal(t, 11, rec.TotalLevel()) // 3 + 2 + six at level 1
	assert.InDelta(t, 11.0/8.0, rec.AverageLevel(), 1e-9)
	assert.Equal(t, catalog.DomainCognitive, rec.HighestDomain())

	recent := rec.RecentActivities(1)
	require.Len(t, recent, 1)
	assert.Equal(t, "painted", recent[0].Description)
	assert.Len(t, rec.RecentActivities(10), 2)
}

func TestValidate_CatchesCorruption(t *testing.T) {
	rec, cat := newTestRecord(t)

	rec.Domains[catalog.DomainPhysical] = DomainState{Level: 1, XP: 150} // >= threshold
	assert.ErrorIs(t, rec.Validate(cat), shared.ErrValueOutOfRange)

	rec.Domains[catalog.DomainPhysical] = NewDomainState()
	rec.Streak = StreakState{Current: 5, Longest: 3}
	assert.ErrorIs(t, rec.Validate(cat), shared.ErrValueOutOfRange)
}
