package service

import (
	"context"
	"hash/fnv"
	"log/slog"
	"sync"

	"github.com/mmynk/splitroom/internal/auth"
	"github.com/mmynk/splitroom/internal/middleware"
	"github.com/mmynk/splitroom/internal/models"
	"github.com/mmynk/splitroom/internal/realtime"
	"github.com/mmynk/splitroom/internal/storage"
)

// access levels for a room.
const (
	readAccess  = false
	writeAccess = true
)

// rooms holds what every room-scoped service needs.
type rooms struct {
	store  storage.Store
	broker realtime.Broker
}

// locks is shared by every service in the process.
var locks roomLocks

func newRooms(store storage.Store, broker realtime.Broker) rooms {
	return rooms{store: store, broker: broker}
}

// identity returns the caller or an Unauthenticated error.
func identity(ctx context.Context) (middleware.Identity, error) {
	id, ok := middleware.IdentityFrom(ctx)
	if !ok {
		return middleware.Identity{}, auth.ErrMissingToken
	}
	return id, nil
}

// load returns the room after checking the caller may use it. Current
// participants have write access; people who left keep read access so the
// room stays in their history.
func (r *rooms) load(ctx context.Context, roomID string, write bool) (*models.Room, middleware.Identity, error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, id, err
	}
	room, err := r.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, id, err
	}
	if room.HasParticipant(id.UserID) {
		return room, id, nil
	}
	if !write && hasLeft(room, id.UserID) {
		return room, id, nil
	}
	return nil, id, errNotParticipant
}

// publish notifies subscribers. Failure to notify never fails the write.
func (r *rooms) publish(ctx context.Context, roomID string, kind realtime.EventKind) {
	if err := r.broker.Publish(ctx, realtime.NewEvent(roomID, kind)); err != nil {
		slog.Warn("Failed to publish room event", "room_id", roomID, "kind", kind, "error", err)
	}
}

func hasLeft(room *models.Room, userID string) bool {
	for _, p := range room.LeftParticipants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// roomLocks serializes read-modify-write sequences on the same room.
type roomLocks struct {
	stripes [64]sync.Mutex
}

func (l *roomLocks) lock(roomID string) func() {
	h := fnv.New32a()
	h.Write([]byte(roomID))
	m := &l.stripes[h.Sum32()%uint32(len(l.stripes))]
	m.Lock()
	return m.Unlock
}
