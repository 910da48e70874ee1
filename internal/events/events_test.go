package events

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_PublishJSON(t *testing.T) {
	bus := NewEventBus()

	var got Event
	bus.Subscribe(TypeBookingCreated, func(event Event) error {
		got = event
		return nil
	})

	err := bus.PublishJSON(TypeBookingCreated, map[string]string{"booking_code": "code-1"})
	require.NoError(t, err)

	assert.Equal(t, TypeBookingCreated, got.Type)
	assert.False(t, got.CreatedAt.IsZero())

	var payload map[string]string
	require.NoError(t, json.Unmarshal(got.Payload, &payload))
	assert.Equal(t, "code-1", payload["booking_code"])
}

func TestEventBus_TypeIsolation(t *testing.T) {
	bus := NewEventBus()

	created, completed := 0, 0
	bus.Subscribe(TypeBookingCreated, func(Event) error { created++; return nil })
	bus.Subscribe(TypeBookingCompleted, func(Event) error { completed++; return nil })

	bus.Publish(Event{Type: TypeBookingCreated})
	bus.Publish(Event{Type: TypeBookingCreated})
	bus.Publish(Event{Type: TypeBookingCompleted})

	assert.Equal(t, 2, created)
	assert.Equal(t, 1, completed)
}

func TestEventBus_HandlerErrorDoesNotStopOthers(t *testing.T) {
	bus := NewEventBus()

	second := false
	bus.Subscribe(TypeBookingCreated, func(Event) error { return errors.New("boom") })
	bus.Subscribe(TypeBookingCreated, func(Event) error { second = true; return nil })

	bus.Publish(Event{Type: TypeBookingCreated})
	assert.True(t, second)
}

func TestEventBus_UnmarshalablePayload(t *testing.T) {
	bus := NewEventBus()
	err := bus.PublishJSON(TypeBookingCreated, make(chan int))
	assert.Error(t, err)
}
