package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/mmynk/splitroom/internal/models"
	"github.com/mmynk/splitroom/internal/realtime"
	"github.com/mmynk/splitroom/internal/receipt"
	"github.com/mmynk/splitroom/internal/storage"
	"github.com/mmynk/splitroom/internal/validate"
	"github.com/mmynk/splitroom/pkg/api"
	"github.com/mmynk/splitroom/pkg/api/apiconnect"
)

// scannedProfileIcon marks profiles that came from a receipt.
const scannedProfileIcon = "Receipt"

// ReceiptService implements the Connect ReceiptService.
type ReceiptService struct {
	rooms
	scanner receipt.Scanner
}

var _ apiconnect.ReceiptServiceHandler = (*ReceiptService)(nil)

func NewReceiptService(store storage.Store, broker realtime.Broker, scanner receipt.Scanner) *ReceiptService {
	return &ReceiptService{
		rooms:   newRooms(store, broker),
		scanner: scanner,
	}
}

// ScanReceipt extracts a draft from a photo. Nothing is stored.
func (s *ReceiptService) ScanReceipt(ctx context.Context, req *connect.Request[api.ScanReceiptRequest]) (*connect.Response[api.ScanReceiptResponse], error) {
	room, id, err := s.load(ctx, req.Msg.RoomID, writeAccess)
	if err != nil {
		return nil, toConnectError(err)
	}
	slog.Info("ScanReceipt request received", "room_id", room.ID, "user_id", id.UserID, "bytes", len(req.Msg.Image))

	var violations []error
	if len(req.Msg.Image) == 0 {
		violations = append(violations, &validate.Error{Violations: []validate.Violation{{Field: "image", Message: "is required"}}})
	}
	if !strings.HasPrefix(req.Msg.MimeType, "image/") {
		violations = append(violations, &validate.Error{Violations: []validate.Violation{{Field: "mime_type", Message: "must be an image type"}}})
	}
	if err := validate.Join(violations...); err != nil {
		return nil, toConnectError(err)
	}

	draft, err := s.scanner.Scan(ctx, req.Msg.Image, req.Msg.MimeType)
	if err != nil {
		slog.Warn("ScanReceipt failed", "room_id", room.ID, "error", err)
		return nil, toConnectError(err)
	}
	if draft.Currency != "" && draft.Currency != room.Currency {
		slog.Info("Receipt currency differs from room", "room_id", room.ID, "receipt", draft.Currency, "room", room.Currency)
	}

	return connect.NewResponse(&api.ScanReceiptResponse{Draft: draftToAPI(draft)}), nil
}

// AcceptReceipt applies a reviewed draft: its lines become unclaimed items,
// a positive service tax replaces the room's, and its tax profiles are merged
// into the room's by name. The whole draft is validated before anything is
// written.
func (s *ReceiptService) AcceptReceipt(ctx context.Context, req *connect.Request[api.AcceptReceiptRequest]) (*connect.Response[api.AcceptReceiptResponse], error) {
	unlock := locks.lock(req.Msg.RoomID)
	defer unlock()

	room, id, err := s.load(ctx, req.Msg.RoomID, writeAccess)
	if err != nil {
		return nil, toConnectError(err)
	}
	draft := draftFromAPI(req.Msg.Draft)
	slog.Info("AcceptReceipt request received",
		"room_id", room.ID,
		"items", len(draft.Items),
		"tax_profiles", len(draft.TaxProfiles),
		"service_tax", draft.ServiceTax,
	)

	var errs []error
	for i := range draft.Items {
		line := &draft.Items[i]
		line.Name = strings.TrimSpace(line.Name)
		if line.Quantity == 0 {
			line.Quantity = 1
		}
		errs = append(errs, validate.Prefixed(validate.ReceiptLine(*line), fmt.Sprintf("items[%d].", i)))
	}
	for i := range draft.TaxProfiles {
		p := &draft.TaxProfiles[i]
		p.Name = strings.TrimSpace(p.Name)
		errs = append(errs, validate.Prefixed(validate.ReceiptTaxProfile(*p), fmt.Sprintf("tax_profiles[%d].", i)))
	}
	errs = append(errs, validate.ServiceCharge(draft.ServiceTax))
	if err := validate.Join(errs...); err != nil {
		return nil, toConnectError(err)
	}

	profiles, changed := mergeTaxProfiles(room.TaxProfiles, draft.TaxProfiles)
	if err := validate.TaxProfiles(profiles); err != nil {
		return nil, toConnectError(err)
	}

	if changed {
		if err := s.store.ReplaceTaxProfiles(ctx, room.ID, profiles); err != nil {
			return nil, toConnectError(err)
		}
	}
	if draft.ServiceTax > 0 {
		if err := s.store.SetServiceTaxRate(ctx, room.ID, draft.ServiceTax); err != nil {
			return nil, toConnectError(err)
		}
	}

	added := make([]api.Item, 0, len(draft.Items))
	for _, line := range draft.Items {
		item := &models.BillItem{
			RoomID:     room.ID,
			Name:       line.Name,
			Price:      line.Price,
			Quantity:   line.Quantity,
			AddedBy:    id.UserID,
			SelectedBy: []string{},
		}
		if err := s.store.AddItem(ctx, item); err != nil {
			slog.Error("AcceptReceipt failed adding item", "room_id", room.ID, "added", len(added), "error", err)
			s.publish(ctx, room.ID, realtime.EventItemsUpdated)
			return nil, toConnectError(err)
		}
		added = append(added, itemToAPI(item))
	}

	s.publish(ctx, room.ID, realtime.EventRoomUpdated)

	updated, err := s.store.GetRoom(ctx, room.ID)
	if err != nil {
		return nil, toConnectError(err)
	}
	slog.Info("Receipt accepted", "room_id", room.ID, "items", len(added), "profiles_changed", changed)
	return connect.NewResponse(&api.AcceptReceiptResponse{Room: roomToAPI(updated), Items: added}), nil
}

// mergeTaxProfiles folds scanned profiles into the room's. A profile whose
// name matches an existing one (case-insensitively) updates its rate and
// double flag; others are appended. A scanned global profile becomes the
// room's only global profile.
func mergeTaxProfiles(existing []models.TaxProfile, scanned []models.ReceiptTaxProfile) ([]models.TaxProfile, bool) {
	profiles := append([]models.TaxProfile(nil), existing...)
	changed := false

	for _, sp := range scanned {
		idx := -1
		for i, p := range profiles {
			if strings.EqualFold(strings.TrimSpace(p.Name), sp.Name) {
				idx = i
				break
			}
		}
		if idx < 0 {
			profiles = append(profiles, models.TaxProfile{
				ID:   uuid.New().String(),
				Name: sp.Name,
				Icon: scannedProfileIcon,
			})
			idx = len(profiles) - 1
		}

		p := &profiles[idx]
		if p.Rate != sp.Rate || p.IsDouble != sp.IsDouble {
			changed = true
		}
		p.Rate = sp.Rate
		p.IsDouble = sp.IsDouble

		if sp.IsGlobal && !p.IsGlobal {
			for i := range profiles {
				profiles[i].IsGlobal = false
			}
			p.IsGlobal = true
			changed = true
		}
	}

	if len(profiles) != len(existing) {
		changed = true
	}
	return profiles, changed
}
