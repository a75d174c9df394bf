package service

import (
	"context"
	"strings"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitroom/internal/validate"
	"github.com/mmynk/splitroom/pkg/api"
)

func TestCreateRoom(t *testing.T) {
	srv := setupTestServer(t)
	alice := srv.guest(t, "Alice")

	room := alice.createRoom(t, &api.CreateRoomRequest{Name: " Friday dinner ", Currency: "eur"})

	assert.NotEmpty(t, room.ID)
	assert.Len(t, room.Code, 8)
	assert.Equal(t, "Friday dinner", room.Name)
	assert.Equal(t, "EUR", room.Currency)
	assert.Equal(t, "active", room.Status)
	assert.Equal(t, alice.user.ID, room.CreatedBy)
	assert.Len(t, room.TaxProfiles, 3)
	for _, p := range room.TaxProfiles {
		assert.False(t, p.IsGlobal, "new rooms start without a global profile")
	}
	require.Len(t, room.Participants, 1)
	assert.Equal(t, "Alice", room.Participants[0].DisplayName)
	assert.Nil(t, room.ExpiresAt)

	t.Run("default currency", func(t *testing.T) {
		room := alice.createRoom(t, &api.CreateRoomRequest{})
		assert.Equal(t, "USD", room.Currency)
	})

	t.Run("invalid input", func(t *testing.T) {
		_, err := alice.rooms.CreateRoom(context.Background(), connect.NewRequest(&api.CreateRoomRequest{
			Name:     strings.Repeat("x", 101),
			Currency: "XYZW",
		}))
		requireCode(t, err, connect.CodeInvalidArgument)
		fields := violationFields(Violations(err))
		assert.ElementsMatch(t, []string{"currency", "name"}, fields)
	})
}

func TestJoinRoom(t *testing.T) {
	srv := setupTestServer(t)
	ctx := context.Background()
	alice := srv.guest(t, "Alice")
	bob := srv.guest(t, "Bob")

	room := alice.createRoom(t, nil)

	preview, err := bob.rooms.GetRoomByCode(ctx, connect.NewRequest(&api.GetRoomByCodeRequest{Code: strings.ToLower(room.Code)}))
	require.NoError(t, err)
	assert.Equal(t, room.ID, preview.Msg.Room.ID)

	joined := bob.join(t, room.Code)
	assert.Len(t, joined.Participants, 2)

	again := bob.join(t, " "+strings.ToLower(room.Code)+" ")
	assert.Len(t, again.Participants, 2, "joining twice is a no-op")

	_, err = bob.rooms.JoinRoom(ctx, connect.NewRequest(&api.JoinRoomRequest{Code: "NOPE0000"}))
	requireCode(t, err, connect.CodeNotFound)

	t.Run("custom display name", func(t *testing.T) {
		carol := srv.guest(t, "Carol")
		resp, err := carol.rooms.JoinRoom(ctx, connect.NewRequest(&api.JoinRoomRequest{Code: room.Code, DisplayName: "C"}))
		require.NoError(t, err)
		var names []string
		for _, p := range resp.Msg.Room.Participants {
			names = append(names, p.DisplayName)
		}
		assert.Equal(t, []string{"Alice", "Bob", "C"}, names)
	})
}

func TestRoomAccess(t *testing.T) {
	srv := setupTestServer(t)
	ctx := context.Background()
	alice := srv.guest(t, "Alice")
	bob := srv.guest(t, "Bob")
	mallory := srv.guest(t, "Mallory")

	room := alice.createRoom(t, nil)
	bob.join(t, room.Code)
	item := alice.addItem(t, room.ID, "Fries", 5, 1)

	t.Run("outsiders are denied", func(t *testing.T) {
		_, err := mallory.rooms.GetRoom(ctx, connect.NewRequest(&api.GetRoomRequest{RoomID: room.ID}))
		requireCode(t, err, connect.CodePermissionDenied)

		_, err = mallory.rooms.AddItem(ctx, connect.NewRequest(&api.AddItemRequest{RoomID: room.ID, Name: "Steak", Price: 30}))
		requireCode(t, err, connect.CodePermissionDenied)

		_, err = mallory.bill.GetSummary(ctx, connect.NewRequest(&api.GetSummaryRequest{RoomID: room.ID}))
		requireCode(t, err, connect.CodePermissionDenied)
	})

	t.Run("only adder or organizer deletes items", func(t *testing.T) {
		_, err := bob.rooms.DeleteItem(ctx, connect.NewRequest(&api.DeleteItemRequest{RoomID: room.ID, ItemID: item.ID}))
		requireCode(t, err, connect.CodePermissionDenied)

		bobs := bob.addItem(t, room.ID, "Soda", 2, 1)
		_, err = alice.rooms.DeleteItem(ctx, connect.NewRequest(&api.DeleteItemRequest{RoomID: room.ID, ItemID: bobs.ID}))
		require.NoError(t, err)
	})

	t.Run("only organizer deletes the room", func(t *testing.T) {
		_, err := bob.rooms.DeleteRoom(ctx, connect.NewRequest(&api.DeleteRoomRequest{RoomID: room.ID}))
		requireCode(t, err, connect.CodePermissionDenied)
	})

	t.Run("left participants keep read access", func(t *testing.T) {
		_, err := bob.rooms.LeaveRoom(ctx, connect.NewRequest(&api.LeaveRoomRequest{RoomID: room.ID}))
		require.NoError(t, err)

		resp, err := bob.rooms.GetRoom(ctx, connect.NewRequest(&api.GetRoomRequest{RoomID: room.ID}))
		require.NoError(t, err)
		assert.Len(t, resp.Msg.Room.Participants, 1)
		require.Len(t, resp.Msg.Room.LeftParticipants, 1)
		assert.Equal(t, bob.user.ID, resp.Msg.Room.LeftParticipants[0].UserID)

		_, err = bob.rooms.ListItems(ctx, connect.NewRequest(&api.ListItemsRequest{RoomID: room.ID}))
		require.NoError(t, err)

		_, err = bob.rooms.AddItem(ctx, connect.NewRequest(&api.AddItemRequest{RoomID: room.ID, Name: "Pie", Price: 4}))
		requireCode(t, err, connect.CodePermissionDenied)

		list, err := bob.rooms.ListMyRooms(ctx, connect.NewRequest(&api.ListMyRoomsRequest{}))
		require.NoError(t, err)
		require.Len(t, list.Msg.Rooms, 1)
		assert.True(t, list.Msg.Rooms[0].Left)
	})

	t.Run("organizer deletes the room", func(t *testing.T) {
		_, err := alice.rooms.DeleteRoom(ctx, connect.NewRequest(&api.DeleteRoomRequest{RoomID: room.ID}))
		require.NoError(t, err)

		_, err = alice.rooms.GetRoom(ctx, connect.NewRequest(&api.GetRoomRequest{RoomID: room.ID}))
		requireCode(t, err, connect.CodeNotFound)
	})
}

func TestSubmissionLifecycle(t *testing.T) {
	srv := setupTestServer(t)
	ctx := context.Background()
	alice := srv.guest(t, "Alice")
	bob := srv.guest(t, "Bob")

	room := alice.createRoom(t, nil)
	bob.join(t, room.Code)

	submit := func(c *testClient, done bool) api.Room {
		t.Helper()
		resp, err := c.rooms.SetSubmitted(ctx, connect.NewRequest(&api.SetSubmittedRequest{RoomID: room.ID, Submitted: done}))
		require.NoError(t, err)
		return resp.Msg.Room
	}

	r := submit(alice, true)
	assert.Equal(t, "active", r.Status)

	r = submit(bob, true)
	assert.Equal(t, "completed", r.Status)
	require.NotNil(t, r.ExpiresAt)

	r = submit(bob, false)
	assert.Equal(t, "active", r.Status)
	assert.Nil(t, r.ExpiresAt)

	r = submit(bob, true)
	assert.Equal(t, "completed", r.Status)

	carol := srv.guest(t, "Carol")
	r = carol.join(t, room.Code)
	assert.Equal(t, "active", r.Status, "a newcomer reopens a completed room")
	assert.Nil(t, r.ExpiresAt)

	dave := srv.guest(t, "Dave")
	dave.join(t, room.Code)
	_, err := dave.rooms.LeaveRoom(ctx, connect.NewRequest(&api.LeaveRoomRequest{RoomID: room.ID}))
	require.NoError(t, err)
	resp, err := alice.rooms.GetRoom(ctx, connect.NewRequest(&api.GetRoomRequest{RoomID: room.ID}))
	require.NoError(t, err)
	assert.Equal(t, "active", resp.Msg.Room.Status, "carol has not submitted yet")

	// Carol was the last holdout.
	_, err = carol.rooms.LeaveRoom(ctx, connect.NewRequest(&api.LeaveRoomRequest{RoomID: room.ID}))
	require.NoError(t, err)
	resp, err = alice.rooms.GetRoom(ctx, connect.NewRequest(&api.GetRoomRequest{RoomID: room.ID}))
	require.NoError(t, err)
	assert.Equal(t, "completed", resp.Msg.Room.Status)
	assert.NotNil(t, resp.Msg.Room.ExpiresAt)
}

func TestLeaveRoom_LastParticipantSetsExpiry(t *testing.T) {
	srv := setupTestServer(t)
	ctx := context.Background()
	alice := srv.guest(t, "Alice")
	bob := srv.guest(t, "Bob")

	room := alice.createRoom(t, nil)
	bob.join(t, room.Code)

	_, err := bob.rooms.LeaveRoom(ctx, connect.NewRequest(&api.LeaveRoomRequest{RoomID: room.ID}))
	require.NoError(t, err)
	_, err = alice.rooms.LeaveRoom(ctx, connect.NewRequest(&api.LeaveRoomRequest{RoomID: room.ID}))
	require.NoError(t, err)

	resp, err := alice.rooms.GetRoom(ctx, connect.NewRequest(&api.GetRoomRequest{RoomID: room.ID}))
	require.NoError(t, err)
	assert.Empty(t, resp.Msg.Room.Participants)
	require.NotNil(t, resp.Msg.Room.ExpiresAt)

	rejoined := bob.join(t, room.Code)
	require.Len(t, rejoined.Participants, 1)
	assert.Equal(t, bob.user.ID, rejoined.Participants[0].UserID)
	require.Len(t, rejoined.LeftParticipants, 1)
	assert.Equal(t, alice.user.ID, rejoined.LeftParticipants[0].UserID)
	assert.Nil(t, rejoined.ExpiresAt, "rejoining clears the expiry")

	_, err = alice.rooms.LeaveRoom(ctx, connect.NewRequest(&api.LeaveRoomRequest{RoomID: room.ID}))
	requireCode(t, err, connect.CodePermissionDenied)
}

func TestRenameParticipant(t *testing.T) {
	srv := setupTestServer(t)
	ctx := context.Background()
	alice := srv.guest(t, "Alice")
	room := alice.createRoom(t, nil)

	resp, err := alice.rooms.RenameParticipant(ctx, connect.NewRequest(&api.RenameParticipantRequest{RoomID: room.ID, DisplayName: " Ally "}))
	require.NoError(t, err)
	assert.Equal(t, "Ally", resp.Msg.Room.Participants[0].DisplayName)

	_, err = alice.rooms.RenameParticipant(ctx, connect.NewRequest(&api.RenameParticipantRequest{RoomID: room.ID, DisplayName: ""}))
	requireCode(t, err, connect.CodeInvalidArgument)
}

func TestTaxProfiles(t *testing.T) {
	srv := setupTestServer(t)
	ctx := context.Background()
	alice := srv.guest(t, "Alice")
	room := alice.createRoom(t, nil)

	toggleGlobal := func(id string) api.Room {
		t.Helper()
		resp, err := alice.rooms.ToggleGlobalTaxProfile(ctx, connect.NewRequest(&api.ToggleTaxProfileRequest{RoomID: room.ID, ProfileID: id}))
		require.NoError(t, err)
		return resp.Msg.Room
	}
	globals := func(r api.Room) []string {
		var ids []string
		for _, p := range r.TaxProfiles {
			if p.IsGlobal {
				ids = append(ids, p.ID)
			}
		}
		return ids
	}

	assert.Equal(t, []string{"general"}, globals(toggleGlobal("general")))
	assert.Equal(t, []string{"luxe"}, globals(toggleGlobal("luxe")))
	assert.Empty(t, globals(toggleGlobal("luxe")))

	resp, err := alice.rooms.ToggleDoubleTaxProfile(ctx, connect.NewRequest(&api.ToggleTaxProfileRequest{RoomID: room.ID, ProfileID: "special"}))
	require.NoError(t, err)
	for _, p := range resp.Msg.Room.TaxProfiles {
		assert.Equal(t, p.ID == "special", p.IsDouble, p.ID)
	}

	_, err = alice.rooms.ToggleGlobalTaxProfile(ctx, connect.NewRequest(&api.ToggleTaxProfileRequest{RoomID: room.ID, ProfileID: "missing"}))
	requireCode(t, err, connect.CodeNotFound)

	t.Run("replace", func(t *testing.T) {
		resp, err := alice.rooms.UpdateTaxProfiles(ctx, connect.NewRequest(&api.UpdateTaxProfilesRequest{
			RoomID: room.ID,
			TaxProfiles: []api.TaxProfile{
				{ID: "general", Name: "General", Rate: 8, IsGlobal: true},
				{Name: "Alcohol", Rate: 25},
			},
		}))
		require.NoError(t, err)
		profiles := resp.Msg.Room.TaxProfiles
		require.Len(t, profiles, 2)
		assert.Equal(t, 8.0, profiles[0].Rate)
		assert.Equal(t, "Alcohol", profiles[1].Name)
		assert.NotEmpty(t, profiles[1].ID)
	})

	t.Run("two globals rejected", func(t *testing.T) {
		_, err := alice.rooms.UpdateTaxProfiles(ctx, connect.NewRequest(&api.UpdateTaxProfilesRequest{
			RoomID: room.ID,
			TaxProfiles: []api.TaxProfile{
				{ID: "a", Name: "A", Rate: 5, IsGlobal: true},
				{ID: "b", Name: "B", Rate: -1, IsGlobal: true},
			},
		}))
		requireCode(t, err, connect.CodeInvalidArgument)
		assert.ElementsMatch(t, []string{"tax_profiles[1].rate", "tax_profiles"}, violationFields(Violations(err)))
	})

	t.Run("service charge", func(t *testing.T) {
		resp, err := alice.rooms.UpdateServiceCharge(ctx, connect.NewRequest(&api.UpdateServiceChargeRequest{RoomID: room.ID, Rate: 12.5}))
		require.NoError(t, err)
		assert.Equal(t, 12.5, resp.Msg.Room.ServiceTaxRate)

		_, err = alice.rooms.UpdateServiceCharge(ctx, connect.NewRequest(&api.UpdateServiceChargeRequest{RoomID: room.ID, Rate: -3}))
		requireCode(t, err, connect.CodeInvalidArgument)
	})
}

func TestItems(t *testing.T) {
	srv := setupTestServer(t)
	ctx := context.Background()
	alice := srv.guest(t, "Alice")
	bob := srv.guest(t, "Bob")
	room := alice.createRoom(t, nil)
	bob.join(t, room.Code)

	item := alice.addItem(t, room.ID, " Naan ", 3.5, 0)
	assert.Equal(t, "Naan", item.Name)
	assert.Equal(t, 1, item.Quantity)
	assert.Empty(t, item.SelectedBy)
	assert.Nil(t, item.TaxProfileID)

	t.Run("invalid item", func(t *testing.T) {
		_, err := alice.rooms.AddItem(ctx, connect.NewRequest(&api.AddItemRequest{RoomID: room.ID, Name: "  ", Price: -1}))
		requireCode(t, err, connect.CodeInvalidArgument)
		assert.ElementsMatch(t, []string{"name", "price"}, violationFields(Violations(err)))
	})

	t.Run("unknown tax profile", func(t *testing.T) {
		missing := "nope"
		_, err := alice.rooms.AddItem(ctx, connect.NewRequest(&api.AddItemRequest{RoomID: room.ID, Name: "Tea", Price: 2, TaxProfileID: &missing}))
		requireCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("toggle selection", func(t *testing.T) {
		assert.True(t, alice.toggle(t, room.ID, item.ID))
		assert.True(t, bob.toggle(t, room.ID, item.ID))

		resp, err := alice.rooms.ListItems(ctx, connect.NewRequest(&api.ListItemsRequest{RoomID: room.ID}))
		require.NoError(t, err)
		require.Len(t, resp.Msg.Items, 1)
		assert.ElementsMatch(t, []string{alice.user.ID, bob.user.ID}, resp.Msg.Items[0].SelectedBy)

		assert.False(t, bob.toggle(t, room.ID, item.ID))
	})

	t.Run("set and clear tax profile", func(t *testing.T) {
		luxe := "luxe"
		resp, err := bob.rooms.SetItemTaxProfile(ctx, connect.NewRequest(&api.SetItemTaxProfileRequest{RoomID: room.ID, ItemID: item.ID, TaxProfileID: &luxe}))
		require.NoError(t, err)
		require.NotNil(t, resp.Msg.Item.TaxProfileID)
		assert.Equal(t, "luxe", *resp.Msg.Item.TaxProfileID)

		resp, err = bob.rooms.SetItemTaxProfile(ctx, connect.NewRequest(&api.SetItemTaxProfileRequest{RoomID: room.ID, ItemID: item.ID}))
		require.NoError(t, err)
		assert.Nil(t, resp.Msg.Item.TaxProfileID)
	})

	t.Run("missing item", func(t *testing.T) {
		_, err := alice.rooms.ToggleSelection(ctx, connect.NewRequest(&api.ToggleSelectionRequest{RoomID: room.ID, ItemID: "missing"}))
		requireCode(t, err, connect.CodeNotFound)
	})
}

func violationFields(violations []validate.Violation) []string {
	fields := make([]string, len(violations))
	for i, v := range violations {
		fields[i] = v.Field
	}
	return fields
}
