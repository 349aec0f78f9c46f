// Package eventhandler contains the subscribers wired onto the event bus.
// They run after the mutation that produced the event has been committed,
// so a handler failure never rolls anything back; failures are logged by
// the bus and the event is dropped.
package eventhandler

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jayai/growth-hub/internal/domain/catalog"
	"github.com/jayai/growth-hub/internal/domain/insight"
	"github.com/jayai/growth-hub/internal/domain/shared"
	"github.com/jayai/growth-hub/pkg/logger"
)

// AchievementRecorder turns notable events into persisted achievement
// insights: level-ups, streak milestones, and completed goals.
type AchievementRecorder struct {
	insights insight.Repository
	catalog  *catalog.Catalog
	log      *logger.Logger
}

// NewAchievementRecorder creates an AchievementRecorder.
func NewAchievementRecorder(insights insight.Repository, cat *catalog.Catalog, log *logger.Logger) *AchievementRecorder {
	if log == nil {
		log = logger.Default()
	}
	return &AchievementRecorder{
		insights: insights,
		catalog:  cat,
		log:      log.With(logger.Component("achievement_recorder")),
	}
}

// Name identifies the handler in bus logs.
func (h *AchievementRecorder) Name() string { return "achievement_recorder" }

// EventTypes lists the events this handler subscribes to.
func (h *AchievementRecorder) EventTypes() []shared.EventType {
	return []shared.EventType{
		shared.EventLevelUp,
		shared.EventStreakMilestone,
		shared.EventGoalCompleted,
	}
}

// Handle persists one achievement insight for the event.
func (h *AchievementRecorder) Handle(ctx context.Context, event shared.Event) error {
	var (
		text    string
		domains []catalog.Domain
	)

	switch e := event.(type) {
	case shared.LevelUpEvent:
		domain := catalog.Domain(e.Domain)
		title := string(domain)
		if desc, err := h.catalog.Descriptor(domain); err == nil {
			title = desc.Title
		}
		text = fmt.Sprintf("You've reached level %d in %s!", e.NewLevel, title)
		domains = []catalog.Domain{domain}

	case shared.StreakMilestoneEvent:
		text = fmt.Sprintf("You've achieved %s status with a %d-day streak!", e.Tier, e.Days)

	case shared.GoalCompletedEvent:
		text = fmt.Sprintf("You've achieved your goal: %s!", e.Title)
		domains = []catalog.Domain{catalog.Domain(e.Domain)}

	default:
		// Subscribed types only; anything else is a wiring mistake.
		return fmt.Errorf("unexpected event type %q", event.EventType())
	}

	ins, err := insight.New(uuid.NewString(), event.UserID(), insight.CategoryAchievement, text, domains...)
	if err != nil {
		return err
	}
	if err := h.insights.Append(ctx, ins); err != nil {
		return fmt.Errorf("failed to persist achievement insight: %w", err)
	}

	h.log.Debug("achievement insight recorded",
		logger.UserID(event.UserID()),
		logger.String("event_type", string(event.EventType())),
	)
	return nil
}
