// Package events fans inventory change notifications out to the WebSocket hub
// and, when configured, to a message broker.
package events

import (
	"time"

	"github.com/asaskevich/EventBus"
)

const topicInventory = "inventory"

// Event types.
const (
	TypeStockUpdate   = "stock_update"
	TypeMemberUpdate  = "member_update"
	TypeSessionUpdate = "session_update"
)

// Event is one change notification. Actions follow the entity_verb pattern,
// e.g. product_created.
type Event struct {
	Type   string         `json:"type"`
	Action string         `json:"action"`
	ID     string         `json:"id,omitempty"`
	Data   map[string]any `json:"data,omitempty"`
	User   *Actor         `json:"user,omitempty"`
	At     time.Time      `json:"at"`
}

type Actor struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Publisher accepts change notifications.
type Publisher interface {
	Publish(e Event)
}

// Bus is an in-process publisher. Subscribers run asynchronously, one at a time each.
type Bus struct {
	bus EventBus.Bus
}

func NewBus() *Bus {
	return &Bus{bus: EventBus.New()}
}

func (b *Bus) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	b.bus.Publish(topicInventory, e)
}

// Subscribe registers fn for the lifetime of the bus.
func (b *Bus) Subscribe(fn func(Event)) error {
	return b.bus.SubscribeAsync(topicInventory, fn, true)
}

// Drain waits for in-flight asynchronous deliveries.
func (b *Bus) Drain() {
	b.bus.WaitAsync()
}

// Discard drops every event.
type Discard struct{}

func (Discard) Publish(Event) {}
