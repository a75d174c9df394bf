package models

// ReceiptDraft is the reviewed-before-accepted output of a receipt scan.
// Nothing in a draft is persisted until the user accepts it.
type ReceiptDraft struct {
	Items       []ReceiptLine
	ServiceTax  float64
	TaxProfiles []ReceiptTaxProfile
	Currency    string

	// Rejected lists human-readable reasons for lines dropped while parsing.
	Rejected []string
}

// ReceiptLine is a candidate bill item.
type ReceiptLine struct {
	Name     string  `validate:"required,max=200"`
	Price    float64 `validate:"gte=0,lte=1000000000"`
	Quantity int     `validate:"gte=1,lte=10000"`
}

// ReceiptTaxProfile is a candidate tax profile detected on a receipt.
type ReceiptTaxProfile struct {
	Name     string  `validate:"required,max=100"`
	Rate     float64 `validate:"gte=0,lte=100"`
	IsGlobal bool
	IsDouble bool
}
