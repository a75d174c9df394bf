package service

import (
	"context"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitroom/internal/models"
	"github.com/mmynk/splitroom/internal/realtime"
	"github.com/mmynk/splitroom/internal/validate"
	"github.com/mmynk/splitroom/pkg/api"
)

// AddItem adds an unclaimed item to the room.
func (s *RoomService) AddItem(ctx context.Context, req *connect.Request[api.AddItemRequest]) (*connect.Response[api.ItemResponse], error) {
	room, id, err := s.load(ctx, req.Msg.RoomID, writeAccess)
	if err != nil {
		return nil, toConnectError(err)
	}
	slog.Info("AddItem request received", "room_id", room.ID, "user_id", id.UserID, "price", req.Msg.Price)

	quantity := req.Msg.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if err := validate.Item(req.Msg.Name, req.Msg.Price, quantity); err != nil {
		return nil, toConnectError(err)
	}
	profileID, err := checkProfile(room, req.Msg.TaxProfileID)
	if err != nil {
		return nil, toConnectError(err)
	}

	item := &models.BillItem{
		RoomID:       room.ID,
		Name:         strings.TrimSpace(req.Msg.Name),
		Price:        req.Msg.Price,
		Quantity:     quantity,
		AddedBy:      id.UserID,
		SelectedBy:   []string{},
		TaxProfileID: profileID,
	}
	if err := s.store.AddItem(ctx, item); err != nil {
		slog.Error("AddItem failed", "room_id", room.ID, "error", err)
		return nil, toConnectError(err)
	}

	s.publish(ctx, room.ID, realtime.EventItemsUpdated)
	slog.Info("Item added", "room_id", room.ID, "item_id", item.ID)
	return connect.NewResponse(&api.ItemResponse{Item: itemToAPI(item)}), nil
}

// DeleteItem removes an item. Only whoever added it, or the organizer, may.
func (s *RoomService) DeleteItem(ctx context.Context, req *connect.Request[api.DeleteItemRequest]) (*connect.Response[api.DeleteItemResponse], error) {
	room, id, err := s.load(ctx, req.Msg.RoomID, writeAccess)
	if err != nil {
		return nil, toConnectError(err)
	}
	item, err := s.store.GetItem(ctx, room.ID, req.Msg.ItemID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if item.AddedBy != id.UserID && room.CreatedBy != id.UserID {
		return nil, toConnectError(errNotItemOwner)
	}

	if err := s.store.DeleteItem(ctx, room.ID, item.ID); err != nil {
		return nil, toConnectError(err)
	}

	s.publish(ctx, room.ID, realtime.EventItemsUpdated)
	slog.Info("Item deleted", "room_id", room.ID, "item_id", item.ID)
	return connect.NewResponse(&api.DeleteItemResponse{}), nil
}

// ListItems returns the room's items in the order they were added.
func (s *RoomService) ListItems(ctx context.Context, req *connect.Request[api.ListItemsRequest]) (*connect.Response[api.ListItemsResponse], error) {
	room, _, err := s.load(ctx, req.Msg.RoomID, readAccess)
	if err != nil {
		return nil, toConnectError(err)
	}
	items, err := s.store.ListItems(ctx, room.ID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.ListItemsResponse{Items: itemsToAPI(items)}), nil
}

// ToggleSelection adds the caller to the item's splitters, or removes them.
func (s *RoomService) ToggleSelection(ctx context.Context, req *connect.Request[api.ToggleSelectionRequest]) (*connect.Response[api.ToggleSelectionResponse], error) {
	room, id, err := s.load(ctx, req.Msg.RoomID, writeAccess)
	if err != nil {
		return nil, toConnectError(err)
	}

	selected, err := s.store.ToggleSelection(ctx, room.ID, req.Msg.ItemID, id.UserID)
	if err != nil {
		return nil, toConnectError(err)
	}
	item, err := s.store.GetItem(ctx, room.ID, req.Msg.ItemID)
	if err != nil {
		return nil, toConnectError(err)
	}

	s.publish(ctx, room.ID, realtime.EventItemsUpdated)
	return connect.NewResponse(&api.ToggleSelectionResponse{Item: itemToAPI(item), Selected: selected}), nil
}

// SetItemTaxProfile sets the item's explicit tax profile, or clears it so the
// room's global profile applies.
func (s *RoomService) SetItemTaxProfile(ctx context.Context, req *connect.Request[api.SetItemTaxProfileRequest]) (*connect.Response[api.ItemResponse], error) {
	room, _, err := s.load(ctx, req.Msg.RoomID, writeAccess)
	if err != nil {
		return nil, toConnectError(err)
	}
	profileID, err := checkProfile(room, req.Msg.TaxProfileID)
	if err != nil {
		return nil, toConnectError(err)
	}

	if err := s.store.SetItemTaxProfile(ctx, room.ID, req.Msg.ItemID, profileID); err != nil {
		return nil, toConnectError(err)
	}
	item, err := s.store.GetItem(ctx, room.ID, req.Msg.ItemID)
	if err != nil {
		return nil, toConnectError(err)
	}

	s.publish(ctx, room.ID, realtime.EventItemsUpdated)
	return connect.NewResponse(&api.ItemResponse{Item: itemToAPI(item)}), nil
}

// checkProfile normalizes an optional profile reference. An empty id means
// none; an id must name one of the room's profiles.
func checkProfile(room *models.Room, profileID *string) (*string, error) {
	if profileID == nil || *profileID == "" {
		return nil, nil
	}
	if room.FindTaxProfile(*profileID) == nil {
		return nil, errUnknownProfile
	}
	id := *profileID
	return &id, nil
}
