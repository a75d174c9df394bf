package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mmynk/splitroom/internal/models"
)

// ErrDisplayNameRequired is returned when a guest signs in without a name.
var ErrDisplayNameRequired = errors.New("display name is required")

const maxDisplayNameLength = 50

// GuestIssuer creates anonymous identities.
type GuestIssuer struct {
	storage UserStorage
}

func NewGuestIssuer(storage UserStorage) *GuestIssuer {
	return &GuestIssuer{storage: storage}
}

// SignIn persists a new guest identity with the given display name.
func (g *GuestIssuer) SignIn(ctx context.Context, displayName string) (*models.User, error) {
	name, err := CleanDisplayName(displayName)
	if err != nil {
		return nil, err
	}

	guest := models.NewGuest(name)
	if err := g.storage.CreateUser(ctx, guest); err != nil {
		return nil, fmt.Errorf("failed to create guest: %w", err)
	}
	return guest, nil
}

// CleanDisplayName trims a display name and enforces its length limits.
func CleanDisplayName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrDisplayNameRequired
	}
	if r := []rune(name); len(r) > maxDisplayNameLength {
		name = string(r[:maxDisplayNameLength])
	}
	return name, nil
}
