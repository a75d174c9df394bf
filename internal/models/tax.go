package models

// TaxProfile is a named tax rule.
type TaxProfile struct {
	// ID is stable for the lifetime of the room.
	ID string

	// Name is the display label (e.g., "GST").
	Name string

	// Rate is a non-negative percentage (6 means 6%).
	Rate float64

	// IsGlobal makes this the default for items without an explicit profile.
	// At most one profile in a room should be global.
	IsGlobal bool

	// IsDouble doubles the computed tax, modelling two co-equal components
	// such as CGST+SGST at the same nominal rate.
	IsDouble bool

	// Icon is an opaque display tag.
	Icon string
}
