package api

type CreateRoomRequest struct {
	Name     string `json:"name"`
	Currency string `json:"currency"`
	// DisplayName overrides the caller's account name inside this room.
	DisplayName string  `json:"displayName,omitempty"`
	PhotoURL    *string `json:"photoUrl,omitempty"`
}

// RoomResponse is returned by every operation that changes a room.
type RoomResponse struct {
	Room Room `json:"room"`
}

type GetRoomRequest struct {
	RoomID string `json:"roomId"`
}

type GetRoomByCodeRequest struct {
	Code string `json:"code"`
}

type JoinRoomRequest struct {
	Code        string  `json:"code"`
	DisplayName string  `json:"displayName,omitempty"`
	PhotoURL    *string `json:"photoUrl,omitempty"`
}

type LeaveRoomRequest struct {
	RoomID string `json:"roomId"`
}

type LeaveRoomResponse struct{}

type ListMyRoomsRequest struct{}

type RoomListing struct {
	Room Room `json:"room"`
	// Left is set when the caller has left the room.
	Left bool `json:"left"`
}

type ListMyRoomsResponse struct {
	Rooms []RoomListing `json:"rooms"`
}

type DeleteRoomRequest struct {
	RoomID string `json:"roomId"`
}

type DeleteRoomResponse struct{}

type RenameParticipantRequest struct {
	RoomID      string `json:"roomId"`
	DisplayName string `json:"displayName"`
}

type SetSubmittedRequest struct {
	RoomID    string `json:"roomId"`
	Submitted bool   `json:"submitted"`
}

type UpdateServiceChargeRequest struct {
	RoomID string  `json:"roomId"`
	Rate   float64 `json:"rate"`
}

type UpdateTaxProfilesRequest struct {
	RoomID      string       `json:"roomId"`
	TaxProfiles []TaxProfile `json:"taxProfiles"`
}

// ToggleTaxProfileRequest flips the global or double flag of one profile.
type ToggleTaxProfileRequest struct {
	RoomID    string `json:"roomId"`
	ProfileID string `json:"profileId"`
}

type AddItemRequest struct {
	RoomID       string  `json:"roomId"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Quantity     int     `json:"quantity"`
	TaxProfileID *string `json:"taxProfileId,omitempty"`
}

type ItemResponse struct {
	Item Item `json:"item"`
}

type DeleteItemRequest struct {
	RoomID string `json:"roomId"`
	ItemID string `json:"itemId"`
}

type DeleteItemResponse struct{}

type ListItemsRequest struct {
	RoomID string `json:"roomId"`
}

type ListItemsResponse struct {
	Items []Item `json:"items"`
}

type ToggleSelectionRequest struct {
	RoomID string `json:"roomId"`
	ItemID string `json:"itemId"`
}

type ToggleSelectionResponse struct {
	Item     Item `json:"item"`
	Selected bool `json:"selected"`
}

// SetItemTaxProfileRequest sets the item's explicit profile. A nil
// TaxProfileID clears it so the room's global profile applies.
type SetItemTaxProfileRequest struct {
	RoomID       string  `json:"roomId"`
	ItemID       string  `json:"itemId"`
	TaxProfileID *string `json:"taxProfileId,omitempty"`
}
