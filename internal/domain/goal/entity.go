// Package goal contains the goal aggregate: user-defined targets with
// trackable progress and a terminal lifecycle.
package goal

import (
	"fmt"
	"strings"
	"time"

	"github.com/jayai/growth-hub/internal/domain/catalog"
	"github.com/jayai/growth-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATUS
// ══════════════════════════════════════════════════════════════════════════════

// Status is the lifecycle state of a goal.
type Status string

const (
	// StatusActive - the goal is in progress and accepts updates.
	StatusActive Status = "active"
	// StatusCompleted - the goal was achieved. Terminal.
	StatusCompleted Status = "completed"
	// StatusAbandoned - the goal was given up. Terminal.
	StatusAbandoned Status = "abandoned"
)

// IsValid reports whether the status is one of the known states.
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusAbandoned:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the status allows no further transitions.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusAbandoned
}

// ══════════════════════════════════════════════════════════════════════════════
// ENTITY
// ══════════════════════════════════════════════════════════════════════════════

// Milestone is a named checkpoint inside a goal.
type Milestone struct {
	// Name describes the checkpoint.
	Name string

	// Done marks the checkpoint as reached.
	Done bool
}

// Goal is a user-defined target tied to a growth domain.
type Goal struct {
	// ID is the goal's unique identifier (UUID).
	ID string

	// UserID is the owning user.
	UserID string

	// Domain is the growth domain the goal belongs to.
	Domain catalog.Domain

	// Title is the short goal title.
	Title string

	// Description is the detailed description.
	Description string

	// TargetMetric describes how success is measured.
	TargetMetric string

	// TargetDate is the intended completion date. Zero when open-ended.
	TargetDate time.Time

	// Milestones are optional named checkpoints.
	Milestones []Milestone

	// Progress is the completion percentage, always within [0, 100].
	Progress int

	// Status is the lifecycle state.
	Status Status

	// CreatedAt is when the goal was created.
	CreatedAt time.Time

	// UpdatedAt is when the goal was last mutated.
	UpdatedAt time.Time

	// CompletedAt is set exactly when Status becomes completed.
	CompletedAt *time.Time
}

// Goal domain errors.
var (
	// ErrGoalNotFound - no goal with the given id for the user.
	ErrGoalNotFound = fmt.Errorf("%w: goal", shared.ErrNotFound)

	// ErrGoalNotActive - the goal is completed or abandoned and rejects mutation.
	ErrGoalNotActive = fmt.Errorf("%w: goal not active", shared.ErrInvalidState)

	// ErrInvalidProgress - progress outside [0, 100].
	ErrInvalidProgress = fmt.Errorf("%w: invalid progress value", shared.ErrValueOutOfRange)

	// ErrInvalidTitle - empty or oversized title.
	ErrInvalidTitle = fmt.Errorf("%w: title must be 1-200 chars", shared.ErrValidation)
)

// NewGoalParams contains the caller-supplied fields for a new goal.
type NewGoalParams struct {
	ID           string
	UserID       string
	Domain       catalog.Domain
	Title        string
	Description  string
	TargetMetric string
	TargetDate   time.Time
	Milestones   []string
}

// NewGoal creates an active goal at zero progress, validating all fields.
func NewGoal(params NewGoalParams) (*Goal, error) {
	if params.ID == "" {
		return nil, fmt.Errorf("%w: goal id", shared.ErrEmptyValue)
	}
	if params.UserID == "" {
		return nil, fmt.Errorf("%w: user id", shared.ErrEmptyValue)
	}
	if !params.Domain.IsValid() {
		return nil, fmt.Errorf("%w: %q", shared.ErrUnknownDomain, params.Domain)
	}

	title := strings.TrimSpace(params.Title)
	if len(title) == 0 || len(title) > 200 {
		return nil, ErrInvalidTitle
	}

	milestones := make([]Milestone, 0, len(params.Milestones))
	for _, name := range params.Milestones {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("%w: milestone name", shared.ErrEmptyValue)
		}
		milestones = append(milestones, Milestone{Name: name})
	}

	now := time.Now().UTC()
	return &Goal{
		ID:           params.ID,
		UserID:       params.UserID,
		Domain:       params.Domain,
		Title:        title,
		Description:  strings.TrimSpace(params.Description),
		TargetMetric: strings.TrimSpace(params.TargetMetric),
		TargetDate:   params.TargetDate,
		Milestones:   milestones,
		Progress:     0,
		Status:       StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// LIFECYCLE
// ══════════════════════════════════════════════════════════════════════════════

// UpdateProgress sets the progress percentage. Values outside [0, 100] are
// rejected. Reaching 100 completes the goal. Non-active goals reject any
// update.
func (g *Goal) UpdateProgress(progress int) error {
	if g.Status != StatusActive {
		return ErrGoalNotActive
	}
	if progress < 0 || progress > 100 {
		return fmt.Errorf("%w: %d", ErrInvalidProgress, progress)
	}

	g.Progress = progress
	g.UpdatedAt = time.Now().UTC()

	if progress == 100 {
		return g.Complete()
	}
	return nil
}

// CompleteMilestone marks the named milestone done.
func (g *Goal) CompleteMilestone(name string) error {
	if g.Status != StatusActive {
		return ErrGoalNotActive
	}
	for i := range g.Milestones {
		if g.Milestones[i].Name == name {
			g.Milestones[i].Done = true
			g.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return fmt.Errorf("%w: milestone %q", shared.ErrNotFound, name)
}

// Complete transitions the goal to its terminal completed state and stamps
// CompletedAt. A second call fails: completed is terminal.
func (g *Goal) Complete() error {
	if g.Status != StatusActive {
		return ErrGoalNotActive
	}
	now := time.Now().UTC()
	g.Status = StatusCompleted
	g.Progress = 100
	g.CompletedAt = &now
	g.UpdatedAt = now
	return nil
}

// Abandon transitions the goal to its terminal abandoned state.
func (g *Goal) Abandon() error {
	if g.Status != StatusActive {
		return ErrGoalNotActive
	}
	g.Status = StatusAbandoned
	g.UpdatedAt = time.Now().UTC()
	return nil
}

// Clone returns a deep copy of the goal.
func (g *Goal) Clone() *Goal {
	clone := *g
	clone.Milestones = make([]Milestone, len(g.Milestones))
	copy(clone.Milestones, g.Milestones)
	if g.CompletedAt != nil {
		completedAt := *g.CompletedAt
		clone.CompletedAt = &completedAt
	}
	return &clone
}
