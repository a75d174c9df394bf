// Package auth issues and verifies the identities that join rooms: registered
// accounts with a password and anonymous guests with only a display name.
package auth

import (
	"context"

	"github.com/mmynk/splitroom/internal/models"
)

// Authenticator verifies credentials for registered accounts.
type Authenticator interface {
	// Register creates a new account with the given email and credential.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate verifies the credential and returns the account.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks the credential before it is stored.
	ValidateCredential(credential string) error
}

// UserStorage is the persistence the authenticators need.
type UserStorage interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}
