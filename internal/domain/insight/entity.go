// Package insight contains derived observations about a user's growth and
// the rules that produce them.
package insight

import (
	"fmt"
	"time"

	"github.com/jayai/growth-hub/internal/domain/catalog"
	"github.com/jayai/growth-hub/internal/domain/shared"
)

// Category classifies an insight.
type Category string

const (
	// CategoryPattern - an observed trend in the user's activity.
	CategoryPattern Category = "pattern"
	// CategoryAchievement - a celebratory note about something reached.
	CategoryAchievement Category = "achievement"
	// CategoryRecommendation - a suggested next action.
	CategoryRecommendation Category = "recommendation"
)

// IsValid reports whether the category is known.
func (c Category) IsValid() bool {
	switch c {
	case CategoryPattern, CategoryAchievement, CategoryRecommendation:
		return true
	default:
		return false
	}
}

// Insight is a persisted, write-once observation. Text is never edited;
// newer insights supersede older ones. Viewed is presentation metadata and
// the only mutable field.
type Insight struct {
	// ID is the insight's unique identifier (UUID).
	ID string

	// UserID is the user the insight is about.
	UserID string

	// Category classifies the insight.
	Category Category

	// Text is the human-readable observation.
	Text string

	// Domains lists the growth domains the insight relates to, if any.
	Domains []catalog.Domain

	// CreatedAt is when the insight was persisted.
	CreatedAt time.Time

	// Viewed marks whether the user has seen the insight.
	Viewed bool
}

// New creates an insight, validating the category and text.
func New(id, userID string, category Category, text string, domains ...catalog.Domain) (*Insight, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: insight id", shared.ErrEmptyValue)
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: user id", shared.ErrEmptyValue)
	}
	if !category.IsValid() {
		return nil, fmt.Errorf("%w: insight category %q", shared.ErrInvalidInput, category)
	}
	if text == "" {
		return nil, fmt.Errorf("%w: insight text", shared.ErrEmptyValue)
	}
	for _, d := range domains {
		if !d.IsValid() {
			return nil, fmt.Errorf("%w: %q", shared.ErrUnknownDomain, d)
		}
	}

	return &Insight{
		ID:        id,
		UserID:    userID,
		Category:  category,
		Text:      text,
		Domains:   domains,
		CreatedAt: time.Now().UTC(),
	}, nil
}
