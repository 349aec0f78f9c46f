package insight

import "context"

// Repository is the append-only store for insights, keyed by user.
// Insights are never edited or deleted; MarkViewed flips presentation
// metadata only.
type Repository interface {
	// Append persists new insights for a user.
	Append(ctx context.Context, insights ...*Insight) error

	// List returns a user's insights, newest first.
	List(ctx context.Context, userID string) ([]*Insight, error)

	// ListUnviewed returns the user's unviewed insights, newest first.
	ListUnviewed(ctx context.Context, userID string) ([]*Insight, error)

	// MarkViewed marks the given insight ids as viewed.
	MarkViewed(ctx context.Context, userID string, insightIDs ...string) error
}
