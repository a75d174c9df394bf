package models

// RoomStatus is the lifecycle state of a room.
type RoomStatus string

const (
	// RoomStatusActive is a room still collecting items and selections.
	RoomStatusActive RoomStatus = "active"
	// RoomStatusCompleted is a room where every participant has submitted.
	RoomStatusCompleted RoomStatus = "completed"
)

// Room is a shared bill-splitting session.
type Room struct {
	// ID is the unique identifier for the room (UUID format).
	ID string

	// Code is the 8-character join code shown to participants.
	Code string

	// Name is an optional display name.
	Name string

	// CreatedAt is the Unix timestamp when the room was created.
	CreatedAt int64

	// CreatedBy is the user ID of the organizer. The organizer settles
	// unclaimed items.
	CreatedBy string

	// Status is active until every participant has submitted.
	Status RoomStatus

	// Currency is the ISO 4217 code used for all formatting.
	Currency string

	// ServiceTaxRate is a non-negative percentage applied per item on top of
	// the item's price plus tax.
	ServiceTaxRate float64

	// TaxProfiles is the ordered list of tax rules available in the room.
	// Order matters: the first global profile wins.
	TaxProfiles []TaxProfile

	// Participants are the identities currently in the room.
	Participants []Participant

	// LeftParticipants are identities that left; the room stays in their history.
	LeftParticipants []Participant

	// ExpiresAt is the Unix timestamp after which the room may be purged.
	// Nil means the room does not expire.
	ExpiresAt *int64
}

// Participant is an identity associated with a room.
type Participant struct {
	// UserID references the User.
	UserID string

	// DisplayName is the name shown to other participants.
	DisplayName string

	// IsGuest marks anonymous guest identities.
	IsGuest bool

	// JoinedAt is the Unix timestamp when the participant joined.
	JoinedAt int64

	// HasSubmitted is set once the participant has finished selecting items.
	HasSubmitted bool

	// PhotoURL is an optional avatar.
	PhotoURL *string
}

// ParticipantIDs returns the user IDs of the current participants in room order.
func (r *Room) ParticipantIDs() []string {
	ids := make([]string, len(r.Participants))
	for i, p := range r.Participants {
		ids[i] = p.UserID
	}
	return ids
}

// HasParticipant reports whether userID is a current participant.
func (r *Room) HasParticipant(userID string) bool {
	return r.FindParticipant(userID) != nil
}

// FindParticipant returns the current participant with userID, or nil.
func (r *Room) FindParticipant(userID string) *Participant {
	for i := range r.Participants {
		if r.Participants[i].UserID == userID {
			return &r.Participants[i]
		}
	}
	return nil
}

// FindTaxProfile returns the tax profile with id, or nil.
func (r *Room) FindTaxProfile(id string) *TaxProfile {
	for i := range r.TaxProfiles {
		if r.TaxProfiles[i].ID == id {
			return &r.TaxProfiles[i]
		}
	}
	return nil
}
