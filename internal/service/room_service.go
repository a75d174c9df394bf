package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/mmynk/splitroom/internal/auth"
	"github.com/mmynk/splitroom/internal/currency"
	"github.com/mmynk/splitroom/internal/lifecycle"
	"github.com/mmynk/splitroom/internal/models"
	"github.com/mmynk/splitroom/internal/realtime"
	"github.com/mmynk/splitroom/internal/storage"
	"github.com/mmynk/splitroom/internal/validate"
	"github.com/mmynk/splitroom/pkg/api"
	"github.com/mmynk/splitroom/pkg/api/apiconnect"
)

// maxCodeAttempts bounds retries when a generated room code is taken.
const maxCodeAttempts = 5

// RoomService implements the Connect RoomService.
type RoomService struct {
	rooms
	policy    lifecycle.Policy
	formatter *currency.Formatter
	now       func() time.Time
}

var _ apiconnect.RoomServiceHandler = (*RoomService)(nil)

// NewRoomService creates a RoomService. defaultLocale picks the currency of
// rooms created without one.
func NewRoomService(store storage.Store, broker realtime.Broker, policy lifecycle.Policy, defaultLocale string) *RoomService {
	return &RoomService{
		rooms:     newRooms(store, broker),
		policy:    policy,
		formatter: currency.NewFormatter(defaultLocale),
		now:       time.Now,
	}
}

// CreateRoom creates a room with the caller as organizer and only participant.
func (s *RoomService) CreateRoom(ctx context.Context, req *connect.Request[api.CreateRoomRequest]) (*connect.Response[api.RoomResponse], error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	slog.Info("CreateRoom request received", "user_id", id.UserID, "currency", req.Msg.Currency)

	code := strings.ToUpper(strings.TrimSpace(req.Msg.Currency))
	if code == "" {
		code = s.formatter.DefaultCurrency()
	}
	if err := validate.Join(validate.Currency(code), validate.RoomName(req.Msg.Name)); err != nil {
		return nil, toConnectError(err)
	}

	participant, err := s.newParticipant(id.UserID, id.IsGuest, firstNonEmpty(req.Msg.DisplayName, id.DisplayName), req.Msg.PhotoURL)
	if err != nil {
		return nil, toConnectError(err)
	}

	room := &models.Room{
		Name:         strings.TrimSpace(req.Msg.Name),
		CreatedAt:    s.now().Unix(),
		CreatedBy:    id.UserID,
		Status:       models.RoomStatusActive,
		Currency:     code,
		TaxProfiles:  lifecycle.DefaultTaxProfiles(),
		Participants: []models.Participant{participant},
	}

	for attempt := 1; ; attempt++ {
		room.Code, err = lifecycle.NewCode()
		if err != nil {
			return nil, toConnectError(err)
		}
		err = s.store.CreateRoom(ctx, room)
		if err == nil {
			break
		}
		if !errors.Is(err, storage.ErrConflict) || attempt == maxCodeAttempts {
			slog.Error("CreateRoom failed", "error", err)
			return nil, toConnectError(err)
		}
		slog.Warn("Room code collision, retrying", "attempt", attempt)
	}

	slog.Info("Room created", "room_id", room.ID, "code", room.Code)
	return s.roomResponse(ctx, room.ID)
}

// GetRoom returns a room the caller is in or has left.
func (s *RoomService) GetRoom(ctx context.Context, req *connect.Request[api.GetRoomRequest]) (*connect.Response[api.RoomResponse], error) {
	room, _, err := s.load(ctx, req.Msg.RoomID, readAccess)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.RoomResponse{Room: roomToAPI(room)}), nil
}

// GetRoomByCode lets any signed-in identity preview a room before joining.
func (s *RoomService) GetRoomByCode(ctx context.Context, req *connect.Request[api.GetRoomByCodeRequest]) (*connect.Response[api.RoomResponse], error) {
	if _, err := identity(ctx); err != nil {
		return nil, toConnectError(err)
	}
	room, err := s.store.GetRoomByCode(ctx, lifecycle.NormalizeCode(req.Msg.Code))
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.RoomResponse{Room: roomToAPI(room)}), nil
}

// JoinRoom adds the caller to a room. Joining a room already joined is a no-op.
func (s *RoomService) JoinRoom(ctx context.Context, req *connect.Request[api.JoinRoomRequest]) (*connect.Response[api.RoomResponse], error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	code := lifecycle.NormalizeCode(req.Msg.Code)
	slog.Info("JoinRoom request received", "user_id", id.UserID, "code", code)

	room, err := s.store.GetRoomByCode(ctx, code)
	if err != nil {
		return nil, toConnectError(err)
	}

	unlock := locks.lock(room.ID)
	defer unlock()

	// Re-read under the lock.
	room, err = s.store.GetRoom(ctx, room.ID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if room.HasParticipant(id.UserID) {
		return connect.NewResponse(&api.RoomResponse{Room: roomToAPI(room)}), nil
	}

	participant, err := s.newParticipant(id.UserID, id.IsGuest, firstNonEmpty(req.Msg.DisplayName, id.DisplayName), req.Msg.PhotoURL)
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := s.store.AddParticipant(ctx, room.ID, participant); err != nil {
		slog.Error("JoinRoom failed", "room_id", room.ID, "error", err)
		return nil, toConnectError(err)
	}
	// A newcomer has not submitted, so a completed room is active again.
	if room.Status == models.RoomStatusCompleted {
		if err := s.store.SetRoomState(ctx, room.ID, models.RoomStatusActive, nil); err != nil {
			return nil, toConnectError(err)
		}
	}

	s.publish(ctx, room.ID, realtime.EventRoomUpdated)
	slog.Info("Participant joined", "room_id", room.ID, "user_id", id.UserID)
	return s.roomResponse(ctx, room.ID)
}

// LeaveRoom removes the caller from the room. Their item selections stay, so
// the cost of items they picked is still split as if they were present.
func (s *RoomService) LeaveRoom(ctx context.Context, req *connect.Request[api.LeaveRoomRequest]) (*connect.Response[api.LeaveRoomResponse], error) {
	unlock := locks.lock(req.Msg.RoomID)
	defer unlock()

	room, id, err := s.load(ctx, req.Msg.RoomID, writeAccess)
	if err != nil {
		return nil, toConnectError(err)
	}

	now := s.now()
	remaining := make([]models.Participant, 0, len(room.Participants))
	for _, p := range room.Participants {
		if p.UserID != id.UserID {
			remaining = append(remaining, p)
		}
	}

	expiresAt := s.policy.AfterLeave(len(remaining), now)
	if len(remaining) > 0 && room.Status == models.RoomStatusCompleted {
		expiresAt = room.ExpiresAt
	}
	if err := s.store.RemoveParticipant(ctx, room.ID, id.UserID, now.Unix(), expiresAt); err != nil {
		slog.Error("LeaveRoom failed", "room_id", room.ID, "error", err)
		return nil, toConnectError(err)
	}

	// The one who left may have been the last holdout.
	if len(remaining) > 0 {
		if t := s.policy.AfterSubmission(room.Status, remaining, true, now); t.Changed {
			if err := s.store.SetRoomState(ctx, room.ID, t.Status, t.ExpiresAt); err != nil {
				return nil, toConnectError(err)
			}
		}
	}

	s.publish(ctx, room.ID, realtime.EventRoomUpdated)
	slog.Info("Participant left", "room_id", room.ID, "user_id", id.UserID, "remaining", len(remaining))
	return connect.NewResponse(&api.LeaveRoomResponse{}), nil
}

// ListMyRooms lists rooms the caller is in or has left, most recent first.
func (s *RoomService) ListMyRooms(ctx context.Context, req *connect.Request[api.ListMyRoomsRequest]) (*connect.Response[api.ListMyRoomsResponse], error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}

	list, err := s.store.ListRoomsForUser(ctx, id.UserID)
	if err != nil {
		slog.Error("ListMyRooms failed", "user_id", id.UserID, "error", err)
		return nil, toConnectError(err)
	}

	resp := &api.ListMyRoomsResponse{Rooms: make([]api.RoomListing, len(list))}
	for i, room := range list {
		resp.Rooms[i] = api.RoomListing{Room: roomToAPI(room), Left: !room.HasParticipant(id.UserID)}
	}
	slog.Info("ListMyRooms successful", "user_id", id.UserID, "count", len(list))
	return connect.NewResponse(resp), nil
}

// DeleteRoom deletes a room and everything in it. Organizer only.
func (s *RoomService) DeleteRoom(ctx context.Context, req *connect.Request[api.DeleteRoomRequest]) (*connect.Response[api.DeleteRoomResponse], error) {
	unlock := locks.lock(req.Msg.RoomID)
	defer unlock()

	room, id, err := s.load(ctx, req.Msg.RoomID, writeAccess)
	if err != nil {
		return nil, toConnectError(err)
	}
	if room.CreatedBy != id.UserID {
		return nil, toConnectError(errNotOrganizer)
	}

	if err := s.store.DeleteRoom(ctx, room.ID); err != nil {
		slog.Error("DeleteRoom failed", "room_id", room.ID, "error", err)
		return nil, toConnectError(err)
	}

	s.publish(ctx, room.ID, realtime.EventRoomDeleted)
	slog.Info("Room deleted", "room_id", room.ID)
	return connect.NewResponse(&api.DeleteRoomResponse{}), nil
}

// RenameParticipant changes the caller's display name in the room.
func (s *RoomService) RenameParticipant(ctx context.Context, req *connect.Request[api.RenameParticipantRequest]) (*connect.Response[api.RoomResponse], error) {
	room, id, err := s.load(ctx, req.Msg.RoomID, writeAccess)
	if err != nil {
		return nil, toConnectError(err)
	}
	name, err := auth.CleanDisplayName(req.Msg.DisplayName)
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := s.store.RenameParticipant(ctx, room.ID, id.UserID, name); err != nil {
		return nil, toConnectError(err)
	}

	s.publish(ctx, room.ID, realtime.EventRoomUpdated)
	return s.roomResponse(ctx, room.ID)
}

// SetSubmitted marks the caller done (or not done) selecting items. The room
// completes when everyone has submitted and reopens when anyone withdraws.
func (s *RoomService) SetSubmitted(ctx context.Context, req *connect.Request[api.SetSubmittedRequest]) (*connect.Response[api.RoomResponse], error) {
	unlock := locks.lock(req.Msg.RoomID)
	defer unlock()

	room, id, err := s.load(ctx, req.Msg.RoomID, writeAccess)
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := s.store.SetSubmitted(ctx, room.ID, id.UserID, req.Msg.Submitted); err != nil {
		return nil, toConnectError(err)
	}
	room.FindParticipant(id.UserID).HasSubmitted = req.Msg.Submitted

	t := s.policy.AfterSubmission(room.Status, room.Participants, req.Msg.Submitted, s.now())
	if t.Changed {
		if err := s.store.SetRoomState(ctx, room.ID, t.Status, t.ExpiresAt); err != nil {
			return nil, toConnectError(err)
		}
		slog.Info("Room status changed", "room_id", room.ID, "status", t.Status)
	}

	s.publish(ctx, room.ID, realtime.EventRoomUpdated)
	return s.roomResponse(ctx, room.ID)
}

// UpdateServiceCharge sets the room-wide service charge percentage.
func (s *RoomService) UpdateServiceCharge(ctx context.Context, req *connect.Request[api.UpdateServiceChargeRequest]) (*connect.Response[api.RoomResponse], error) {
	room, _, err := s.load(ctx, req.Msg.RoomID, writeAccess)
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := validate.ServiceCharge(req.Msg.Rate); err != nil {
		return nil, toConnectError(err)
	}
	if err := s.store.SetServiceTaxRate(ctx, room.ID, req.Msg.Rate); err != nil {
		return nil, toConnectError(err)
	}

	s.publish(ctx, room.ID, realtime.EventRoomUpdated)
	return s.roomResponse(ctx, room.ID)
}

// UpdateTaxProfiles replaces the room's tax profiles. Profiles without an id
// get one. Items pointing at a removed profile fall back to the global one.
func (s *RoomService) UpdateTaxProfiles(ctx context.Context, req *connect.Request[api.UpdateTaxProfilesRequest]) (*connect.Response[api.RoomResponse], error) {
	unlock := locks.lock(req.Msg.RoomID)
	defer unlock()

	room, _, err := s.load(ctx, req.Msg.RoomID, writeAccess)
	if err != nil {
		return nil, toConnectError(err)
	}

	profiles := taxProfilesFromAPI(req.Msg.TaxProfiles)
	for i := range profiles {
		profiles[i].Name = strings.TrimSpace(profiles[i].Name)
		if profiles[i].ID == "" {
			profiles[i].ID = uuid.New().String()
		}
	}
	if err := validate.TaxProfiles(profiles); err != nil {
		return nil, toConnectError(err)
	}

	if err := s.store.ReplaceTaxProfiles(ctx, room.ID, profiles); err != nil {
		return nil, toConnectError(err)
	}

	s.publish(ctx, room.ID, realtime.EventRoomUpdated)
	slog.Info("Tax profiles updated", "room_id", room.ID, "count", len(profiles))
	return s.roomResponse(ctx, room.ID)
}

// ToggleGlobalTaxProfile makes a profile the room's global one, or clears it
// if it already is. At most one profile is global afterwards.
func (s *RoomService) ToggleGlobalTaxProfile(ctx context.Context, req *connect.Request[api.ToggleTaxProfileRequest]) (*connect.Response[api.RoomResponse], error) {
	return s.toggleProfile(ctx, req.Msg, func(profiles []models.TaxProfile, target int) {
		makeGlobal := !profiles[target].IsGlobal
		for i := range profiles {
			profiles[i].IsGlobal = false
		}
		profiles[target].IsGlobal = makeGlobal
	})
}

// ToggleDoubleTaxProfile flips whether a profile is charged twice.
func (s *RoomService) ToggleDoubleTaxProfile(ctx context.Context, req *connect.Request[api.ToggleTaxProfileRequest]) (*connect.Response[api.RoomResponse], error) {
	return s.toggleProfile(ctx, req.Msg, func(profiles []models.TaxProfile, target int) {
		profiles[target].IsDouble = !profiles[target].IsDouble
	})
}

func (s *RoomService) toggleProfile(ctx context.Context, msg *api.ToggleTaxProfileRequest, apply func([]models.TaxProfile, int)) (*connect.Response[api.RoomResponse], error) {
	unlock := locks.lock(msg.RoomID)
	defer unlock()

	room, _, err := s.load(ctx, msg.RoomID, writeAccess)
	if err != nil {
		return nil, toConnectError(err)
	}

	target := -1
	for i, p := range room.TaxProfiles {
		if p.ID == msg.ProfileID {
			target = i
			break
		}
	}
	if target < 0 {
		return nil, toConnectError(fmt.Errorf("tax profile %s: %w", msg.ProfileID, storage.ErrNotFound))
	}

	profiles := append([]models.TaxProfile(nil), room.TaxProfiles...)
	apply(profiles, target)
	if err := validate.TaxProfiles(profiles); err != nil {
		return nil, toConnectError(err)
	}
	if err := s.store.ReplaceTaxProfiles(ctx, room.ID, profiles); err != nil {
		return nil, toConnectError(err)
	}

	s.publish(ctx, room.ID, realtime.EventRoomUpdated)
	return s.roomResponse(ctx, room.ID)
}

func (s *RoomService) newParticipant(userID string, isGuest bool, displayName string, photoURL *string) (models.Participant, error) {
	name, err := auth.CleanDisplayName(displayName)
	if err != nil {
		return models.Participant{}, err
	}
	if photoURL != nil && strings.TrimSpace(*photoURL) == "" {
		photoURL = nil
	}
	return models.Participant{
		UserID:      userID,
		DisplayName: name,
		IsGuest:     isGuest,
		JoinedAt:    s.now().Unix(),
		PhotoURL:    photoURL,
	}, nil
}

func (s *RoomService) roomResponse(ctx context.Context, roomID string) (*connect.Response[api.RoomResponse], error) {
	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.RoomResponse{Room: roomToAPI(room)}), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
