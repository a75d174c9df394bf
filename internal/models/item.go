package models

// BillItem is one line of a room's bill.
type BillItem struct {
	// ID is the unique identifier for the item (UUID format).
	ID string

	// RoomID is the room the item belongs to.
	RoomID string

	// Name is a free-text label (e.g., "Paneer Tikka").
	Name string

	// Price is the non-negative unit price.
	Price float64

	// Quantity is a positive integer. Zero is read as 1.
	Quantity int

	// AddedBy is the user ID of the participant who created the item.
	AddedBy string

	// SelectedBy is the set of user IDs splitting this item. Order is
	// irrelevant and an ID appears at most once. Empty means unclaimed.
	SelectedBy []string

	// TaxProfileID is an explicit tax profile reference. Nil means
	// "use the room's global profile if any, else none".
	TaxProfileID *string

	// CreatedAt is the Unix timestamp when the item was added.
	CreatedAt int64
}

// IsSelectedBy reports whether userID is splitting the item.
func (i *BillItem) IsSelectedBy(userID string) bool {
	for _, id := range i.SelectedBy {
		if id == userID {
			return true
		}
	}
	return false
}
