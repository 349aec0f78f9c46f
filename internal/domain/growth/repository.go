package growth

import (
	"context"
	"errors"
)

// ErrRecordNotFound is returned when a user has no stored growth record.
var ErrRecordNotFound = errors.New("growth record not found")

// Repository is the durable store for user growth records.
// Implementations live in infrastructure/persistence.
type Repository interface {
	// Get returns the record for a user.
	// Returns ErrRecordNotFound when the user has never been persisted.
	Get(ctx context.Context, userID string) (*UserGrowthRecord, error)

	// Save persists the full record, creating it on first write.
	// A successful Save is the commit point for a mutation.
	Save(ctx context.Context, record *UserGrowthRecord) error

	// Exists reports whether a record is stored for the user.
	Exists(ctx context.Context, userID string) (bool, error)
}
