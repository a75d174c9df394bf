package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitroom/internal/calculator"
	"github.com/mmynk/splitroom/internal/currency"
	"github.com/mmynk/splitroom/internal/models"
	"github.com/mmynk/splitroom/internal/realtime"
	"github.com/mmynk/splitroom/internal/storage"
	"github.com/mmynk/splitroom/pkg/api"
	"github.com/mmynk/splitroom/pkg/api/apiconnect"
)

// errUpdatesStopped ends a watch when the broker shuts down underneath it.
var errUpdatesStopped = errors.New("room updates stopped")

// BillService implements the Connect BillService.
type BillService struct {
	rooms
	defaultLocale string
	now           func() time.Time
}

var _ apiconnect.BillServiceHandler = (*BillService)(nil)

// NewBillService creates a BillService. defaultLocale is used when the
// request names no locale.
func NewBillService(store storage.Store, broker realtime.Broker, defaultLocale string) *BillService {
	return &BillService{
		rooms:         newRooms(store, broker),
		defaultLocale: defaultLocale,
		now:           time.Now,
	}
}

// GetSummary computes totals and shares from the current room snapshot.
func (s *BillService) GetSummary(ctx context.Context, req *connect.Request[api.GetSummaryRequest]) (*connect.Response[api.SummaryResponse], error) {
	locale := firstNonEmpty(req.Msg.Locale, req.Header().Get("Accept-Language"), s.defaultLocale)

	summary, err := s.summary(ctx, req.Msg.RoomID, locale)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.SummaryResponse{Summary: *summary}), nil
}

// WatchSummary streams a fresh summary on every change to the room.
func (s *BillService) WatchSummary(ctx context.Context, req *connect.Request[api.WatchSummaryRequest], stream *connect.ServerStream[api.SummaryResponse]) error {
	locale := firstNonEmpty(req.Msg.Locale, req.Header().Get("Accept-Language"), s.defaultLocale)
	roomID := req.Msg.RoomID

	if _, _, err := s.load(ctx, roomID, readAccess); err != nil {
		return toConnectError(err)
	}

	// Subscribe before the first snapshot so no change slips in between.
	sub, err := s.broker.Subscribe(ctx, roomID)
	if err != nil {
		slog.Error("WatchSummary subscribe failed", "room_id", roomID, "error", err)
		return connect.NewError(connect.CodeUnavailable, err)
	}
	defer sub.Close()

	slog.Info("WatchSummary started", "room_id", roomID, "locale", locale)
	for {
		summary, err := s.summary(ctx, roomID, locale)
		if errors.Is(err, storage.ErrNotFound) {
			slog.Info("WatchSummary ended, room deleted", "room_id", roomID)
			return nil
		}
		if err != nil {
			return toConnectError(err)
		}
		if err := stream.Send(&api.SummaryResponse{Summary: *summary}); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-sub.Done():
			if ctx.Err() != nil {
				return nil
			}
			return connect.NewError(connect.CodeUnavailable, errUpdatesStopped)
		case ev := <-sub.C:
			if ev.Kind == realtime.EventRoomDeleted {
				slog.Info("WatchSummary ended, room deleted", "room_id", roomID)
				return nil
			}
		}
	}
}

func (s *BillService) summary(ctx context.Context, roomID, locale string) (*api.Summary, error) {
	room, _, err := s.load(ctx, roomID, readAccess)
	if err != nil {
		return nil, err
	}
	items, err := s.store.ListItems(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	out := buildSummary(room, items, currency.NewFormatter(locale), s.now())
	return &out, nil
}

// buildSummary recomputes everything from the snapshot and renders it for
// one locale.
func buildSummary(room *models.Room, items []models.BillItem, f *currency.Formatter, now time.Time) api.Summary {
	sum := calculator.Summarize(*room, items)
	money := func(v float64) api.Money {
		return api.Money{Amount: v, Formatted: f.Format(v, room.Currency)}
	}

	out := api.Summary{
		RoomID:        room.ID,
		Status:        string(room.Status),
		Currency:      room.Currency,
		Locale:        f.Tag().String(),
		Subtotal:      money(sum.Subtotal),
		Tax:           money(sum.Tax),
		ServiceCharge: money(sum.ServiceCharge),
		Total:         money(sum.Total),
		Claimed:       money(sum.Claimed),
		Unclaimed:     money(sum.Unclaimed),
		Items:         make([]api.ItemSummary, len(sum.Items)),
		Shares:        make([]api.ParticipantShare, 0, len(sum.Shares)),
		Transfers:     []api.Transfer{},
		ComputedAt:    now.Unix(),
	}

	for i, line := range sum.Items {
		out.Items[i] = api.ItemSummary{
			ItemID:         line.ItemID,
			Name:           line.Name,
			ExtendedPrice:  money(line.ExtendedPrice),
			Tax:            money(line.Tax),
			ServiceCharge:  money(line.ServiceCharge),
			GrandTotal:     money(line.GrandTotal),
			PerPersonShare: money(line.PerPersonShare),
			TaxProfileID:   line.ProfileID,
			Claimed:        line.Claimed,
		}
	}

	addShare := func(p models.Participant, left bool) {
		out.Shares = append(out.Shares, api.ParticipantShare{
			UserID:       p.UserID,
			DisplayName:  p.DisplayName,
			HasSubmitted: p.HasSubmitted,
			Left:         left,
			Share:        money(sum.Shares[p.UserID]),
		})
	}
	for _, p := range room.Participants {
		addShare(p, false)
	}
	for _, p := range room.LeftParticipants {
		if !room.HasParticipant(p.UserID) {
			addShare(p, true)
		}
	}

	for _, t := range calculator.SettleUp(sum, room.CreatedBy) {
		out.Transfers = append(out.Transfers, api.Transfer{From: t.From, To: t.To, Amount: money(t.Amount)})
	}

	return out
}
