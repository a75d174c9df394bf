// Package realtime fans out room-change notifications to connected clients.
//
// Notifications carry no state. A subscriber learns that a room changed and
// reloads the full snapshot, so dropped or merged notifications never leave a
// client with a stale partial view.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// EventKind describes what changed in a room.
type EventKind string

const (
	EventRoomUpdated  EventKind = "room_updated"
	EventItemsUpdated EventKind = "items_updated"
	EventRoomDeleted  EventKind = "room_deleted"
)

// Event is a room-change notification.
type Event struct {
	RoomID string    `json:"room_id"`
	Kind   EventKind `json:"kind"`
	At     int64     `json:"at"`
}

// NewEvent stamps an event with the current time.
func NewEvent(roomID string, kind EventKind) Event {
	return Event{RoomID: roomID, Kind: kind, At: time.Now().UnixMilli()}
}

// Broker publishes and subscribes to room events.
type Broker interface {
	Publish(ctx context.Context, ev Event) error
	// Subscribe delivers events for roomID until ctx is done or the
	// subscription is closed.
	Subscribe(ctx context.Context, roomID string) (*Subscription, error)
	Close() error
}

type Config struct {
	Provider string
	RedisURL string
	NATSURL  string
}

// NewBroker returns the broker named by cfg.Provider.
func NewBroker(cfg Config) (Broker, error) {
	switch cfg.Provider {
	case "memory", "":
		return NewMemoryBroker(), nil
	case "redis":
		return NewRedisBroker(cfg.RedisURL)
	case "nats":
		return NewNATSBroker(cfg.NATSURL)
	default:
		return nil, fmt.Errorf("unsupported broker provider: %s", cfg.Provider)
	}
}

// Subscription is a stream of events for one room.
//
// C has a single slot: while a notification is pending, further ones are
// merged into it.
type Subscription struct {
	C <-chan Event

	ch     chan Event
	stop   func()
	once   sync.Once
	closed chan struct{}
}

func newSubscription(stop func()) *Subscription {
	ch := make(chan Event, 1)
	return &Subscription{C: ch, ch: ch, stop: stop, closed: make(chan struct{})}
}

// deliver hands ev to the subscriber without blocking.
func (s *Subscription) deliver(ev Event) {
	select {
	case <-s.closed:
		return
	default:
	}
	select {
	case s.ch <- ev:
	default:
	}
}

// Done is closed once the subscription ends.
func (s *Subscription) Done() <-chan struct{} {
	return s.closed
}

// Close ends the subscription. It is safe to call more than once.
func (s *Subscription) Close() error {
	s.once.Do(func() {
		close(s.closed)
		if s.stop != nil {
			s.stop()
		}
	})
	return nil
}

// closeWith ends the subscription when ctx is done.
func (s *Subscription) closeWith(ctx context.Context) {
	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-s.closed:
		}
	}()
}

func roomChannel(roomID string) string {
	return "rooms." + roomID
}

func encodeEvent(ev Event) ([]byte, error) {
	return json.Marshal(ev)
}

func decodeEvent(data []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return Event{}, fmt.Errorf("failed to decode room event: %w", err)
	}
	return ev, nil
}
