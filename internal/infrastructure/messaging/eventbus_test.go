package messaging

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jayai/growth-hub/internal/domain/shared"
)

func levelUp(userID string) shared.Event {
	return shared.LevelUpEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventLevelUp, userID),
		Domain:    "cognitive",
		NewLevel:  2,
	}
}

func TestEventBus_DeliversToSubscribedHandlers(t *testing.T) {
	bus := NewEventBus(nil)
	ctx := context.Background()

	var got []shared.Event
	handler := HandlerFunc{
		HandlerName: "collector",
		Fn: func(ctx context.Context, event shared.Event) error {
			got = append(got, event)
			return nil
		},
	}
	require.NoError(t, bus.Subscribe(handler, shared.EventLevelUp))

	require.NoError(t, bus.Publish(ctx, levelUp("user-1")))
	require.NoError(t, bus.Publish(ctx, shared.StreakBrokenEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventStreakBroken, "user-1"),
	}))

	// Only the subscribed type arrives.
	require.Len(t, got, 1)
	assert.Equal(t, shared.EventLevelUp, got[0].EventType())
	assert.Equal(t, "user-1", got[0].UserID())
}

func TestEventBus_DispatchesInSubscriptionOrder(t *testing.T) {
	bus := NewEventBus(nil)

	var order []string
	for _, name := range []string{"first", "second", "third"} {
		name := name
		err := bus.Subscribe(HandlerFunc{
			HandlerName: name,
			Fn: func(ctx context.Context, event shared.Event) error {
				order = append(order, name)
				return nil
			},
		}, shared.EventLevelUp)
		require.NoError(t, err)
	}

	require.NoError(t, bus.Publish(context.Background(), levelUp("user-1")))
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestEventBus_HandlerErrorDoesNotBlockOthers(t *testing.T) {
	bus := NewEventBus(nil)

	delivered := false
	require.NoError(t, bus.Subscribe(HandlerFunc{
		HandlerName: "broken",
		Fn: func(ctx context.Context, event shared.Event) error {
			return errors.New("handler exploded")
		},
	}, shared.EventLevelUp))
	require.NoError(t, bus.Subscribe(HandlerFunc{
		HandlerName: "working",
		Fn: func(ctx context.Context, event shared.Event) error {
			delivered = true
			return nil
		},
	}, shared.EventLevelUp))

	// Publish succeeds even though the first handler failed.
	err := bus.Publish(context.Background(), levelUp("user-1"))
	require.NoError(t, err)
	assert.True(t, delivered)
}

func TestEventBus_RejectsNilInputs(t *testing.T) {
	bus := NewEventBus(nil)

	assert.Error(t, bus.Subscribe(nil, shared.EventLevelUp))
	assert.Error(t, bus.Publish(context.Background(), nil))
}

func TestEventBus_ClosedBusRejectsOperations(t *testing.T) {
	bus := NewEventBus(nil)
	bus.Close()

	err := bus.Publish(context.Background(), levelUp("user-1"))
	assert.ErrorIs(t, err, ErrBusClosed)

	err = bus.Subscribe(HandlerFunc{HandlerName: "late", Fn: func(ctx context.Context, event shared.Event) error {
		return nil
	}}, shared.EventLevelUp)
	assert.ErrorIs(t, err, ErrBusClosed)
}
