package api

type ReceiptLine struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type ReceiptTaxProfile struct {
	Name     string  `json:"name"`
	Rate     float64 `json:"rate"`
	IsGlobal bool    `json:"isGlobal"`
	IsDouble bool    `json:"isDouble"`
}

type ReceiptDraft struct {
	Items       []ReceiptLine       `json:"items"`
	ServiceTax  float64             `json:"serviceTax"`
	TaxProfiles []ReceiptTaxProfile `json:"taxProfiles"`
	Currency    string              `json:"currency,omitempty"`
	Rejected    []string            `json:"rejected,omitempty"`
}

// ScanReceiptRequest carries the photo as base64 in JSON.
type ScanReceiptRequest struct {
	RoomID   string `json:"roomId"`
	Image    []byte `json:"image"`
	MimeType string `json:"mimeType"`
}

type ScanReceiptResponse struct {
	Draft ReceiptDraft `json:"draft"`
}

// AcceptReceiptRequest carries the draft as reviewed by the user.
type AcceptReceiptRequest struct {
	RoomID string       `json:"roomId"`
	Draft  ReceiptDraft `json:"draft"`
}

type AcceptReceiptResponse struct {
	Room  Room   `json:"room"`
	Items []Item `json:"items"`
}
