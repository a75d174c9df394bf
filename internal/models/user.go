package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account or an anonymous guest identity.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Email is empty for guests.
	Email string

	// DisplayName is the default name used when joining rooms.
	DisplayName string

	// PasswordHash is the bcrypt hash; empty for guests.
	PasswordHash string

	// IsGuest marks identities created without credentials.
	IsGuest bool

	CreatedAt int64
	UpdatedAt int64
}

// NewUser creates a registered user with a fresh ID.
func NewUser(email, displayName, passwordHash string) *User {
	now := time.Now().Unix()
	return &User{
		ID:           uuid.New().String(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewGuest creates a guest identity with a fresh ID.
func NewGuest(displayName string) *User {
	now := time.Now().Unix()
	return &User{
		ID:          uuid.New().String(),
		DisplayName: displayName,
		IsGuest:     true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
