package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitroom/internal/models"
	"github.com/mmynk/splitroom/internal/receipt"
	"github.com/mmynk/splitroom/pkg/api"
)

func TestScanReceipt(t *testing.T) {
	srv := setupTestServer(t)
	ctx := context.Background()
	alice := srv.guest(t, "Alice")
	room := alice.createRoom(t, nil)

	srv.scanner.set(&models.ReceiptDraft{
		Items:       []models.ReceiptLine{{Name: "Burger", Price: 11.5, Quantity: 2}},
		ServiceTax:  5,
		TaxProfiles: []models.ReceiptTaxProfile{{Name: "VAT", Rate: 7, IsGlobal: true}},
		Currency:    "USD",
	}, nil)

	resp, err := alice.receipts.ScanReceipt(ctx, connect.NewRequest(&api.ScanReceiptRequest{
		RoomID:   room.ID,
		Image:    []byte{0xff, 0xd8, 0xff},
		MimeType: "image/jpeg",
	}))
	require.NoError(t, err)
	draft := resp.Msg.Draft
	require.Len(t, draft.Items, 1)
	assert.Equal(t, "Burger", draft.Items[0].Name)
	assert.Equal(t, 2, draft.Items[0].Quantity)
	assert.Equal(t, 5.0, draft.ServiceTax)
	require.Len(t, draft.TaxProfiles, 1)
	assert.True(t, draft.TaxProfiles[0].IsGlobal)

	items, err := alice.rooms.ListItems(ctx, connect.NewRequest(&api.ListItemsRequest{RoomID: room.ID}))
	require.NoError(t, err)
	assert.Empty(t, items.Msg.Items, "scanning stores nothing")

	t.Run("bad input", func(t *testing.T) {
		_, err := alice.receipts.ScanReceipt(ctx, connect.NewRequest(&api.ScanReceiptRequest{RoomID: room.ID, MimeType: "application/pdf"}))
		requireCode(t, err, connect.CodeInvalidArgument)
		assert.ElementsMatch(t, []string{"image", "mime_type"}, violationFields(Violations(err)))
	})

	t.Run("not a receipt", func(t *testing.T) {
		srv.scanner.set(nil, receipt.ErrNotAReceipt)
		_, err := alice.receipts.ScanReceipt(ctx, connect.NewRequest(&api.ScanReceiptRequest{RoomID: room.ID, Image: []byte{1}, MimeType: "image/png"}))
		requireCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("scanner unavailable", func(t *testing.T) {
		srv.scanner.set(nil, receipt.ErrUnavailable)
		_, err := alice.receipts.ScanReceipt(ctx, connect.NewRequest(&api.ScanReceiptRequest{RoomID: room.ID, Image: []byte{1}, MimeType: "image/png"}))
		requireCode(t, err, connect.CodeUnavailable)
	})

	t.Run("outsider", func(t *testing.T) {
		mallory := srv.guest(t, "Mallory")
		calls := srv.scanner.calls
		_, err := mallory.receipts.ScanReceipt(ctx, connect.NewRequest(&api.ScanReceiptRequest{RoomID: room.ID, Image: []byte{1}, MimeType: "image/png"}))
		requireCode(t, err, connect.CodePermissionDenied)
		assert.Equal(t, calls, srv.scanner.calls)
	})
}

func TestAcceptReceipt(t *testing.T) {
	srv := setupTestServer(t)
	ctx := context.Background()
	alice := srv.guest(t, "Alice")
	room := alice.createRoom(t, nil)

	_, err := alice.rooms.ToggleGlobalTaxProfile(ctx, connect.NewRequest(&api.ToggleTaxProfileRequest{RoomID: room.ID, ProfileID: "special"}))
	require.NoError(t, err)

	resp, err := alice.receipts.AcceptReceipt(ctx, connect.NewRequest(&api.AcceptReceiptRequest{
		RoomID: room.ID,
		Draft: api.ReceiptDraft{
			Items: []api.ReceiptLine{
				{Name: "Dosa", Price: 8, Quantity: 2},
				{Name: "Lassi", Price: 3},
			},
			ServiceTax: 12,
			TaxProfiles: []api.ReceiptTaxProfile{
				{Name: "general", Rate: 5, IsDouble: true},
				{Name: "City Tax", Rate: 2, IsGlobal: true},
			},
		},
	}))
	require.NoError(t, err)

	require.Len(t, resp.Msg.Items, 2)
	assert.Equal(t, "Dosa", resp.Msg.Items[0].Name)
	assert.Equal(t, 2, resp.Msg.Items[0].Quantity)
	assert.Equal(t, 1, resp.Msg.Items[1].Quantity)
	for _, item := range resp.Msg.Items {
		assert.Empty(t, item.SelectedBy)
		assert.Nil(t, item.TaxProfileID)
		assert.Equal(t, alice.user.ID, item.AddedBy)
	}

	updated := resp.Msg.Room
	assert.Equal(t, 12.0, updated.ServiceTaxRate)
	require.Len(t, updated.TaxProfiles, 4)

	byName := map[string]api.TaxProfile{}
	for _, p := range updated.TaxProfiles {
		byName[p.Name] = p
	}
	general := byName["General"]
	assert.Equal(t, "general", general.ID, "matched by name, id kept")
	assert.Equal(t, 5.0, general.Rate)
	assert.True(t, general.IsDouble)

	city := byName["City Tax"]
	assert.NotEmpty(t, city.ID)
	assert.Equal(t, "Receipt", city.Icon)
	assert.True(t, city.IsGlobal)
	assert.False(t, byName["Special"].IsGlobal, "the scanned global replaces the old one")
}

func TestAcceptReceipt_ValidatesEverythingFirst(t *testing.T) {
	srv := setupTestServer(t)
	ctx := context.Background()
	alice := srv.guest(t, "Alice")
	room := alice.createRoom(t, nil)

	_, err := alice.receipts.AcceptReceipt(ctx, connect.NewRequest(&api.AcceptReceiptRequest{
		RoomID: room.ID,
		Draft: api.ReceiptDraft{
			Items: []api.ReceiptLine{
				{Name: "Fine", Price: 4, Quantity: 1},
				{Name: "", Price: -2, Quantity: 1},
			},
			ServiceTax:  -1,
			TaxProfiles: []api.ReceiptTaxProfile{{Name: "Huge", Rate: 150}},
		},
	}))
	requireCode(t, err, connect.CodeInvalidArgument)
	assert.ElementsMatch(t,
		[]string{"items[1].name", "items[1].price", "tax_profiles[0].rate", "service_tax_rate"},
		violationFields(Violations(err)))

	items, err := alice.rooms.ListItems(ctx, connect.NewRequest(&api.ListItemsRequest{RoomID: room.ID}))
	require.NoError(t, err)
	assert.Empty(t, items.Msg.Items)

	got, err := alice.rooms.GetRoom(ctx, connect.NewRequest(&api.GetRoomRequest{RoomID: room.ID}))
	require.NoError(t, err)
	assert.Len(t, got.Msg.Room.TaxProfiles, 3)
	assert.Zero(t, got.Msg.Room.ServiceTaxRate)
}

func TestAcceptReceipt_RejectsOverflowingAmounts(t *testing.T) {
	srv := setupTestServer(t)
	ctx := context.Background()
	alice := srv.guest(t, "Alice")
	room := alice.createRoom(t, nil)

	_, err := alice.receipts.AcceptReceipt(ctx, connect.NewRequest(&api.AcceptReceiptRequest{
		RoomID: room.ID,
		Draft: api.ReceiptDraft{
			Items:      []api.ReceiptLine{{Name: "Yacht", Price: 1e308, Quantity: 2}},
			ServiceTax: 1e308,
		},
	}))
	requireCode(t, err, connect.CodeInvalidArgument)
	assert.ElementsMatch(t, []string{"items[0].price", "service_tax_rate"}, violationFields(Violations(err)))

	sum := alice.summary(t, room.ID)
	assert.Zero(t, sum.Total.Amount)
}

func TestMergeTaxProfiles(t *testing.T) {
	existing := []models.TaxProfile{
		{ID: "vat", Name: "VAT", Rate: 5, IsGlobal: true},
		{ID: "svc", Name: "Service", Rate: 3},
	}

	t.Run("no change", func(t *testing.T) {
		merged, changed := mergeTaxProfiles(existing, []models.ReceiptTaxProfile{{Name: "vat", Rate: 5, IsGlobal: true}})
		assert.False(t, changed)
		assert.Equal(t, existing, merged)
	})

	t.Run("does not mutate input", func(t *testing.T) {
		merged, changed := mergeTaxProfiles(existing, []models.ReceiptTaxProfile{{Name: "Service", Rate: 4, IsGlobal: true}})
		assert.True(t, changed)
		assert.False(t, merged[0].IsGlobal)
		assert.True(t, merged[1].IsGlobal)
		assert.True(t, existing[0].IsGlobal)
		assert.Equal(t, 3.0, existing[1].Rate)
	})
}
