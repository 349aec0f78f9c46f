package goal

import "context"

// Repository is the durable store for goals, keyed by user.
// Implementations live in infrastructure/persistence.
type Repository interface {
	// Create persists a new goal.
	Create(ctx context.Context, g *Goal) error

	// Get returns a user's goal by id.
	// Returns ErrGoalNotFound when the goal does not exist for the user.
	Get(ctx context.Context, userID, goalID string) (*Goal, error)

	// Update persists the full goal state.
	// Returns ErrGoalNotFound when the goal does not exist.
	Update(ctx context.Context, g *Goal) error

	// List returns a user's goals, newest first. A nil statusFilter returns
	// all goals; otherwise only goals in the given status.
	List(ctx context.Context, userID string, statusFilter *Status) ([]*Goal, error)
}
