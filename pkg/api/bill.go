package api

type GetSummaryRequest struct {
	RoomID string `json:"roomId"`
	// Locale is a BCP 47 tag or Accept-Language value. When empty the
	// request's Accept-Language header, then the server default, is used.
	Locale string `json:"locale,omitempty"`
}

type WatchSummaryRequest struct {
	RoomID string `json:"roomId"`
	Locale string `json:"locale,omitempty"`
}

// Money is an amount with its display rendering.
type Money struct {
	Amount    float64 `json:"amount"`
	Formatted string  `json:"formatted"`
}

type ItemSummary struct {
	ItemID         string `json:"itemId"`
	Name           string `json:"name"`
	ExtendedPrice  Money  `json:"extendedPrice"`
	Tax            Money  `json:"tax"`
	ServiceCharge  Money  `json:"serviceCharge"`
	GrandTotal     Money  `json:"grandTotal"`
	PerPersonShare Money  `json:"perPersonShare"`
	TaxProfileID   string `json:"taxProfileId,omitempty"`
	Claimed        bool   `json:"claimed"`
}

type ParticipantShare struct {
	UserID       string `json:"userId"`
	DisplayName  string `json:"displayName"`
	HasSubmitted bool   `json:"hasSubmitted"`
	Left         bool   `json:"left"`
	Share        Money  `json:"share"`
}

type Transfer struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount Money  `json:"amount"`
}

type Summary struct {
	RoomID        string             `json:"roomId"`
	Status        string             `json:"status"`
	Currency      string             `json:"currency"`
	Locale        string             `json:"locale"`
	Subtotal      Money              `json:"subtotal"`
	Tax           Money              `json:"tax"`
	ServiceCharge Money              `json:"serviceCharge"`
	Total         Money              `json:"total"`
	Claimed       Money              `json:"claimed"`
	Unclaimed     Money              `json:"unclaimed"`
	Items         []ItemSummary      `json:"items"`
	Shares        []ParticipantShare `json:"shares"`
	Transfers     []Transfer         `json:"transfers"`
	ComputedAt    int64              `json:"computedAt"`
}

type SummaryResponse struct {
	Summary Summary `json:"summary"`
}
