package api

type User struct {
	ID          string `json:"id"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName"`
	IsGuest     bool   `json:"isGuest"`
}

type Participant struct {
	UserID       string  `json:"userId"`
	DisplayName  string  `json:"displayName"`
	IsGuest      bool    `json:"isGuest"`
	JoinedAt     int64   `json:"joinedAt"`
	HasSubmitted bool    `json:"hasSubmitted"`
	PhotoURL     *string `json:"photoUrl,omitempty"`
}

type TaxProfile struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Rate     float64 `json:"rate"`
	IsGlobal bool    `json:"isGlobal"`
	IsDouble bool    `json:"isDouble"`
	Icon     string  `json:"icon,omitempty"`
}

type Room struct {
	ID               string        `json:"id"`
	Code             string        `json:"code"`
	Name             string        `json:"name,omitempty"`
	CreatedAt        int64         `json:"createdAt"`
	CreatedBy        string        `json:"createdBy"`
	Status           string        `json:"status"`
	Currency         string        `json:"currency"`
	ServiceTaxRate   float64       `json:"serviceTaxRate"`
	TaxProfiles      []TaxProfile  `json:"taxProfiles"`
	Participants     []Participant `json:"participants"`
	LeftParticipants []Participant `json:"leftParticipants,omitempty"`
	ExpiresAt        *int64        `json:"expiresAt,omitempty"`
}

type Item struct {
	ID           string   `json:"id"`
	RoomID       string   `json:"roomId"`
	Name         string   `json:"name"`
	Price        float64  `json:"price"`
	Quantity     int      `json:"quantity"`
	AddedBy      string   `json:"addedBy"`
	SelectedBy   []string `json:"selectedBy"`
	TaxProfileID *string  `json:"taxProfileId,omitempty"`
	CreatedAt    int64    `json:"createdAt"`
}
