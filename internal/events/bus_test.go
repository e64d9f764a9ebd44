package events

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusDeliversToEverySubscriber(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	var got []string
	record := func(prefix string) func(Event) {
		return func(e Event) {
			mu.Lock()
			got = append(got, prefix+":"+e.Action)
			mu.Unlock()
		}
	}
	require.NoError(t, bus.Subscribe(record("hub")))
	require.NoError(t, bus.Subscribe(record("broker")))

	bus.Publish(Event{Type: TypeStockUpdate, Action: "product_created", ID: "p1"})
	bus.Drain()

	assert.ElementsMatch(t, []string{"hub:product_created", "broker:product_created"}, got)
}

func TestBusStampsTime(t *testing.T) {
	bus := NewBus()
	done := make(chan Event, 1)
	require.NoError(t, bus.Subscribe(func(e Event) { done <- e }))

	bus.Publish(Event{Action: "product_deleted"})
	bus.Drain()

	e := <-done
	assert.False(t, e.At.IsZero())
}
