package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

const natsSubjectPrefix = "splitroom."

// NATSBroker relays events through NATS core subjects.
type NATSBroker struct {
	conn *nats.Conn
}

func NewNATSBroker(url string) (*NATSBroker, error) {
	if url == "" {
		url = nats.DefaultURL
	}
	conn, err := nats.Connect(url,
		nats.Name("splitroom"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	return &NATSBroker{conn: conn}, nil
}

func (n *NATSBroker) Publish(_ context.Context, ev Event) error {
	payload, err := encodeEvent(ev)
	if err != nil {
		return err
	}
	return n.conn.Publish(natsSubject(ev.RoomID), payload)
}

func (n *NATSBroker) Subscribe(ctx context.Context, roomID string) (*Subscription, error) {
	sub := newSubscription(nil)
	ns, err := n.conn.Subscribe(natsSubject(roomID), func(msg *nats.Msg) {
		ev, err := decodeEvent(msg.Data)
		if err != nil {
			slog.Warn("Dropping malformed room event", "room_id", roomID, "error", err)
			return
		}
		sub.deliver(ev)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to room %s: %w", roomID, err)
	}
	sub.stop = func() { _ = ns.Unsubscribe() }
	// Flush so the server has registered interest before we return.
	if err := n.conn.FlushTimeout(5 * time.Second); err != nil {
		sub.Close()
		return nil, fmt.Errorf("failed to flush nats subscription: %w", err)
	}
	sub.closeWith(ctx)
	return sub, nil
}

// Close drains pending messages before disconnecting.
func (n *NATSBroker) Close() error {
	return n.conn.Drain()
}

func natsSubject(roomID string) string {
	return natsSubjectPrefix + roomChannel(roomID)
}
