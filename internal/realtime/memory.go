package realtime

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned when using a closed broker.
var ErrClosed = errors.New("broker closed")

// MemoryBroker fans out events within a single process.
type MemoryBroker struct {
	mu     sync.Mutex
	subs   map[string]map[*Subscription]struct{}
	closed bool
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[string]map[*Subscription]struct{})}
}

func (m *MemoryBroker) Publish(_ context.Context, ev Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	for sub := range m.subs[ev.RoomID] {
		sub.deliver(ev)
	}
	return nil
}

func (m *MemoryBroker) Subscribe(ctx context.Context, roomID string) (*Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}

	var sub *Subscription
	sub = newSubscription(func() { m.remove(roomID, sub) })
	if m.subs[roomID] == nil {
		m.subs[roomID] = make(map[*Subscription]struct{})
	}
	m.subs[roomID][sub] = struct{}{}
	sub.closeWith(ctx)
	return sub, nil
}

func (m *MemoryBroker) remove(roomID string, sub *Subscription) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subs[roomID], sub)
	if len(m.subs[roomID]) == 0 {
		delete(m.subs, roomID)
	}
}

// Subscribers returns the number of open subscriptions for roomID.
func (m *MemoryBroker) Subscribers(roomID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs[roomID])
}

// Close ends every open subscription.
func (m *MemoryBroker) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	var all []*Subscription
	for _, set := range m.subs {
		for sub := range set {
			all = append(all, sub)
		}
	}
	m.mu.Unlock()

	for _, sub := range all {
		sub.Close()
	}
	return nil
}
