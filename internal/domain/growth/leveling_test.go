package growth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jayai/growth-hub/internal/domain/catalog"
	"github.com/jayai/growth-hub/internal/domain/shared"
)

func TestApplyXP(t *testing.T) {
	curve := catalog.DefaultCurve() // threshold(level) = 100

	tests := []struct {
		name       string
		state      DomainState
		delta      int
		wantState  DomainState
		wantLevels int
	}{
		{
			name:       "zero delta is a no-op",
			state:      DomainState{Level: 3, XP: 40},
			delta:      0,
			wantState:  DomainState{Level: 3, XP: 40},
			wantLevels: 0,
		},
		{
			name:       "accumulates below threshold",
			state:      DomainState{Level: 1, XP: 30},
			delta:      50,
			wantState:  DomainState{Level: 1, XP: 80},
			wantLevels: 0,
		},
		{
			name:       "exact threshold levels up with zero residue",
			state:      DomainState{Level: 1, XP: 0},
			delta:      100,
			wantState:  DomainState{Level: 2, XP: 0},
			wantLevels: 1,
		},
		{
			name:       "overflow carries into next level",
			state:      DomainState{Level: 1, XP: 0},
			delta:      120,
			wantState:  DomainState{Level: 2, XP: 20},
			wantLevels: 1,
		},
		{
			name:       "large delta crosses several levels",
			state:      DomainState{Level: 1, XP: 0},
			delta:      350,
			wantState:  DomainState{Level: 4, XP: 50},
			wantLevels: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, levels, err := ApplyXP(tt.state, tt.delta, curve)
			require.NoError(t, err)
			assert.Equal(t, tt.wantState, got)
			assert.Equal(t, tt.wantLevels, levels)
		})
	}
}

func TestApplyXP_RejectsNegativeDelta(t *testing.T) {
	_, _, err := ApplyXP(NewDomainState(), -1, catalog.DefaultCurve())
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestApplyXP_RampedCurve(t *testing.T) {
	// threshold: level 1 = 100, level 2 = 150, level 3 = 200.
	curve := catalog.XPCurve{Base: 100, Growth: 50}

	state, levels, err := ApplyXP(NewDomainState(), 260, curve)
	require.NoError(t, err)
	assert.Equal(t, DomainState{Level: 3, XP: 10}, state)
	assert.Equal(t, 2, levels)
}

// Applying deltas one at a time must land on the same state as applying
// their sum in a single call.
func TestApplyXP_Associative(t *testing.T) {
	curve := catalog.XPCurve{Base: 100, Growth: 25}
	deltas := []int{0, 10, 95, 240, 5, 1000, 33}

	sum := 0
	split := NewDomainState()
	splitLevels := 0
	for _, d := range deltas {
		var levels int
		var err error
		split, levels, err = ApplyXP(split, d, curve)
		require.NoError(t, err)
		splitLevels += levels
		sum += d
	}

	once, onceLevels, err := ApplyXP(NewDomainState(), sum, curve)
	require.NoError(t, err)

	assert.Equal(t, once, split)
	assert.Equal(t, onceLevels, splitLevels)
}

// The resulting XP must always sit strictly below the threshold for the
// resulting level.
func TestApplyXP_NeverLeavesOverflow(t *testing.T) {
	curves := []catalog.XPCurve{
		catalog.DefaultCurve(),
		{Base: 1, Growth: 0},
		{Base: 100, Growth: 50},
		{Base: 7, Growth: 3},
	}

	for _, curve := range curves {
		state := NewDomainState()
		for delta := 0; delta <= 500; delta += 17 {
			var err error
			state, _, err = ApplyXP(state, delta, curve)
			require.NoError(t, err)
			assert.Less(t, state.XP, curve.Threshold(state.Level))
			assert.GreaterOrEqual(t, state.XP, 0)
		}
	}
}
