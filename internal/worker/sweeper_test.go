package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitroom/internal/models"
	"github.com/mmynk/splitroom/internal/storage"
	"github.com/mmynk/splitroom/internal/storage/sqlite"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type failingStore struct{}

func (failingStore) DeleteExpiredRooms(ctx context.Context, now int64) (int64, error) {
	return 0, errors.New("disk on fire")
}

func TestSweep(t *testing.T) {
	ctx := context.Background()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "sweep.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	now := time.Unix(1_700_000_000, 0)
	past := now.Add(-time.Minute).Unix()
	future := now.Add(time.Minute).Unix()

	rooms := map[string]*int64{"EXPIRED1": &past, "LATER001": &future, "FOREVER1": nil}
	ids := map[string]string{}
	for code, expiresAt := range rooms {
		room := &models.Room{
			Code:      code,
			CreatedBy: "u1",
			Currency:  "USD",
			Participants: []models.Participant{
				{UserID: "u1", DisplayName: "Una", JoinedAt: now.Unix()},
			},
		}
		require.NoError(t, store.CreateRoom(ctx, room))
		require.NoError(t, store.SetRoomState(ctx, room.ID, models.RoomStatusActive, expiresAt))
		ids[code] = room.ID
	}

	reg := prometheus.NewRegistry()
	sweeper := NewSweeper(store, SweeperConfig{}, reg, "test", discard)
	sweeper.now = func() time.Time { return now }

	assert.Equal(t, int64(1), sweeper.Sweep(ctx))
	assert.Equal(t, int64(0), sweeper.Sweep(ctx))
	assert.Equal(t, 1.0, testutil.ToFloat64(sweeper.deleted))

	_, err = store.GetRoom(ctx, ids["EXPIRED1"])
	assert.ErrorIs(t, err, storage.ErrNotFound)
	for _, code := range []string{"LATER001", "FOREVER1"} {
		_, err := store.GetRoom(ctx, ids[code])
		assert.NoError(t, err, code)
	}

	// The boundary is inclusive.
	sweeper.now = func() time.Time { return time.Unix(future, 0) }
	assert.Equal(t, int64(1), sweeper.Sweep(ctx))
}

func TestSweep_StoreError(t *testing.T) {
	sweeper := NewSweeper(failingStore{}, SweeperConfig{}, nil, "", discard)
	assert.Equal(t, int64(0), sweeper.Sweep(context.Background()))
	assert.Equal(t, 1.0, testutil.ToFloat64(sweeper.failed))
}

func TestStart_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	sweeper := NewSweeper(failingStore{}, SweeperConfig{Interval: 10 * time.Millisecond}, nil, "", discard)
	go func() { done <- sweeper.Start(ctx) }()

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(sweeper.failed) >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
