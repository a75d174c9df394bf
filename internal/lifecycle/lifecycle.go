// Package lifecycle holds the room lifecycle rules: join codes, default tax
// profiles, submission-driven completion and expiry policies.
package lifecycle

import (
	"crypto/rand"
	"math/big"
	"strings"
	"time"

	"github.com/mmynk/splitroom/internal/models"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 8
)

// Policy configures how long rooms outlive their activity.
type Policy struct {
	// EmptyRoomTTL applies once the last participant has left.
	EmptyRoomTTL time.Duration
	// CompletedRoomTTL applies once every participant has submitted.
	CompletedRoomTTL time.Duration
}

// DefaultPolicy keeps empty rooms for 30 minutes and completed rooms for 15 days.
var DefaultPolicy = Policy{
	EmptyRoomTTL:     30 * time.Minute,
	CompletedRoomTTL: 15 * 24 * time.Hour,
}

// NewCode generates an 8-character join code.
func NewCode() (string, error) {
	var b strings.Builder
	b.Grow(codeLength)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := 0; i < codeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(codeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// NormalizeCode upper-cases and trims a user-typed code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// DefaultTaxProfiles are the profiles every new room starts with. None is global.
func DefaultTaxProfiles() []models.TaxProfile {
	return []models.TaxProfile{
		{ID: "general", Name: "General", Rate: 6, Icon: "Coins"},
		{ID: "special", Name: "Special", Rate: 18, Icon: "CreditCard"},
		{ID: "luxe", Name: "Luxe", Rate: 40, Icon: "Sparkles"},
	}
}

// AllSubmitted reports whether every current participant has submitted.
// A room with no participants is never considered submitted.
func AllSubmitted(participants []models.Participant) bool {
	if len(participants) == 0 {
		return false
	}
	for _, p := range participants {
		if !p.HasSubmitted {
			return false
		}
	}
	return true
}

// Transition is the status and expiry a room should move to. Nothing is
// written when Changed is false.
type Transition struct {
	Changed   bool
	Status    models.RoomStatus
	ExpiresAt *int64
}

// AfterSubmission decides the room state after a participant's submission
// flag changed. participants must already carry the new flag.
func (p Policy) AfterSubmission(current models.RoomStatus, participants []models.Participant, submitted bool, now time.Time) Transition {
	if submitted && AllSubmitted(participants) {
		return Transition{Changed: true, Status: models.RoomStatusCompleted, ExpiresAt: at(now.Add(p.CompletedRoomTTL))}
	}
	if !submitted && current == models.RoomStatusCompleted {
		return Transition{Changed: true, Status: models.RoomStatusActive}
	}
	return Transition{Status: current}
}

// AfterLeave returns the room's expiry once a participant has left, given how
// many participants remain. Nil clears any expiry.
func (p Policy) AfterLeave(remaining int, now time.Time) *int64 {
	if remaining == 0 {
		return at(now.Add(p.EmptyRoomTTL))
	}
	return nil
}

// Expired reports whether a room's expiry has passed.
func Expired(room models.Room, now time.Time) bool {
	return room.ExpiresAt != nil && *room.ExpiresAt <= now.Unix()
}

func at(t time.Time) *int64 {
	v := t.Unix()
	return &v
}
