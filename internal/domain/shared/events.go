package shared

import "time"

// EventType represents the type of domain event.
type EventType string

// Domain event types. Each event marks something significant that happened
// while mutating a user's growth state; handlers react to them after the
// mutation has been committed.
const (
	EventActivityRecorded EventType = "growth.activity_recorded"
	EventLevelUp          EventType = "growth.level_up"
	EventStreakMilestone  EventType = "growth.streak_milestone"
	EventStreakBroken     EventType = "growth.streak_broken"

	EventGoalCreated   EventType = "goal.created"
	EventGoalCompleted EventType = "goal.completed"
	EventGoalAbandoned EventType = "goal.abandoned"

	EventInsightsGenerated EventType = "insight.generated"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// UserID returns the user whose state produced this event.
	UserID() string
}

// BaseEvent provides common event fields.
type BaseEvent struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	User      string    `json:"user_id"`
}

// NewBaseEvent creates a BaseEvent stamped with the current UTC time.
func NewBaseEvent(t EventType, userID string) BaseEvent {
	return BaseEvent{Type: t, Timestamp: time.Now().UTC(), User: userID}
}

func (e BaseEvent) EventType() EventType  { return e.Type }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }
func (e BaseEvent) UserID() string        { return e.User }

// ActivityRecordedEvent fires after every successfully recorded activity.
type ActivityRecordedEvent struct {
	BaseEvent
	Domain      string `json:"domain"`
	XPAwarded   int    `json:"xp_awarded"`
	Description string `json:"description"`
}

// LevelUpEvent fires when an activity pushes a domain past one or more
// level thresholds.
type LevelUpEvent struct {
	BaseEvent
	Domain       string `json:"domain"`
	NewLevel     int    `json:"new_level"`
	LevelsGained int    `json:"levels_gained"`
}

// StreakMilestoneEvent fires when the streak counter lands exactly on a
// milestone value.
type StreakMilestoneEvent struct {
	BaseEvent
	Days int    `json:"days"`
	Tier string `json:"tier"`
}

// StreakBrokenEvent fires when a gap of more than one day resets the streak.
type StreakBrokenEvent struct {
	BaseEvent
	PreviousStreak int `json:"previous_streak"`
}

// GoalCreatedEvent fires after a goal is persisted.
type GoalCreatedEvent struct {
	BaseEvent
	GoalID string `json:"goal_id"`
	Domain string `json:"domain"`
	Title  string `json:"title"`
}

// GoalCompletedEvent fires when a goal reaches its terminal completed state.
type GoalCompletedEvent struct {
	BaseEvent
	GoalID string `json:"goal_id"`
	Domain string `json:"domain"`
	Title  string `json:"title"`
}

// GoalAbandonedEvent fires when a goal is abandoned.
type GoalAbandonedEvent struct {
	BaseEvent
	GoalID string `json:"goal_id"`
	Domain string `json:"domain"`
}

// InsightsGeneratedEvent fires after a batch of insights is persisted.
type InsightsGeneratedEvent struct {
	BaseEvent
	Count int `json:"count"`
}
