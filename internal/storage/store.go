// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitroom/internal/models"
)

// ErrNotFound is returned when a room, item, participant or user does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a unique value (room code, email) is taken.
var ErrConflict = errors.New("already exists")

// RoomStore persists rooms, their participants and their tax profiles.
type RoomStore interface {
	// CreateRoom persists a new room with its tax profiles and participants.
	// room.ID and room.CreatedAt are populated by the store when empty.
	CreateRoom(ctx context.Context, room *models.Room) error

	// GetRoom retrieves a room snapshot by ID.
	GetRoom(ctx context.Context, roomID string) (*models.Room, error)

	// GetRoomByCode retrieves a room snapshot by its join code.
	GetRoomByCode(ctx context.Context, code string) (*models.Room, error)

	// ListRoomsForUser returns every room the user is in or has left,
	// most recent first.
	ListRoomsForUser(ctx context.Context, userID string) ([]*models.Room, error)

	// DeleteRoom removes a room and everything it contains.
	DeleteRoom(ctx context.Context, roomID string) error

	// DeleteExpiredRooms removes rooms whose expiry is at or before now and
	// returns how many were removed.
	DeleteExpiredRooms(ctx context.Context, now int64) (int64, error)

	// AddParticipant adds (or re-adds) a participant and clears the room's expiry.
	AddParticipant(ctx context.Context, roomID string, p models.Participant) error

	// RemoveParticipant marks a participant as left and sets the room's expiry.
	RemoveParticipant(ctx context.Context, roomID, userID string, leftAt int64, expiresAt *int64) error

	// RenameParticipant changes a participant's display name.
	RenameParticipant(ctx context.Context, roomID, userID, displayName string) error

	// SetSubmitted changes a participant's submission flag.
	SetSubmitted(ctx context.Context, roomID, userID string, submitted bool) error

	// SetRoomState changes status and expiry together.
	SetRoomState(ctx context.Context, roomID string, status models.RoomStatus, expiresAt *int64) error

	// SetServiceTaxRate changes the room-wide service charge percentage.
	SetServiceTaxRate(ctx context.Context, roomID string, rate float64) error

	// ReplaceTaxProfiles atomically replaces the room's ordered profile set.
	ReplaceTaxProfiles(ctx context.Context, roomID string, profiles []models.TaxProfile) error
}

// ItemStore persists bill items and selections.
type ItemStore interface {
	// AddItem persists a new item. item.ID and item.CreatedAt are populated
	// by the store when empty.
	AddItem(ctx context.Context, item *models.BillItem) error

	// GetItem retrieves one item of a room.
	GetItem(ctx context.Context, roomID, itemID string) (*models.BillItem, error)

	// ListItems returns every item of a room in creation order.
	ListItems(ctx context.Context, roomID string) ([]models.BillItem, error)

	// DeleteItem removes an item and its selections.
	DeleteItem(ctx context.Context, roomID, itemID string) error

	// ToggleSelection adds userID to the item's selectors, or removes it if
	// present, and reports whether the user now selects the item.
	ToggleSelection(ctx context.Context, roomID, itemID, userID string) (bool, error)

	// SetItemTaxProfile sets or clears (nil) the item's explicit tax profile.
	SetItemTaxProfile(ctx context.Context, roomID, itemID string, profileID *string) error
}

// UserStore persists identities.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Store defines the interface for all storage operations.
// This abstraction allows swapping storage backends without changing the
// service layer.
type Store interface {
	RoomStore
	ItemStore
	UserStore

	// Close releases any resources held by the store.
	Close() error
}
