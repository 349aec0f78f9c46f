package growth

import (
	"fmt"

	"github.com/jayai/growth-hub/internal/domain/catalog"
	"github.com/jayai/growth-hub/internal/domain/shared"
)

// DomainState is the per-domain progress of one user.
type DomainState struct {
	// Level is the current level, starting at 1.
	Level int

	// XP is the experience accumulated toward the next level.
	// Always within [0, threshold(Level)) after leveling is applied.
	XP int

	// ChallengesCompleted counts completed challenges in this domain.
	ChallengesCompleted int
}

// NewDomainState returns the initial state: level 1, no XP.
func NewDomainState() DomainState {
	return DomainState{Level: 1, XP: 0}
}

// ApplyXP adds delta XP to the state and resolves any level-ups against the
// curve. While the accumulated XP reaches the threshold for the current
// level, the threshold is subtracted and the level incremented, so the
// returned state never carries residual XP at or above its threshold.
// A zero delta returns the input unchanged. Negative deltas are rejected.
func ApplyXP(state DomainState, delta int, curve catalog.XPCurve) (DomainState, int, error) {
	if delta < 0 {
		return state, 0, fmt.Errorf("%w: xp delta %d", shared.ErrNegativeValue, delta)
	}
	if state.Level < 1 {
		state.Level = 1
	}

	state.XP += delta
	levelsGained := 0
	for state.XP >= curve.Threshold(state.Level) {
		state.XP -= curve.Threshold(state.Level)
		state.Level++
		levelsGained++
	}

	return state, levelsGained, nil
}
