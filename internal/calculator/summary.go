package calculator

import "github.com/mmynk/splitroom/internal/models"

// ItemLine holds the computed figures for one item.
type ItemLine struct {
	ItemID        string
	Name          string
	ExtendedPrice float64
	Tax           float64
	ServiceCharge float64
	GrandTotal    float64

	// PerPersonShare is zero for unclaimed items.
	PerPersonShare float64

	// ProfileID is the resolved tax profile, empty when no tax applies.
	ProfileID string
	Claimed   bool
}

// Summary is the full computed state of a room snapshot.
type Summary struct {
	Subtotal      float64
	Tax           float64
	ServiceCharge float64
	Total         float64

	Items []ItemLine

	// Shares maps every participant, including those who left, to their
	// UserShare. Selections outlive leaving, so so does the share.
	Shares map[string]float64

	// Claimed is the sum of Shares.
	Claimed float64

	// Unclaimed is the grand total of items nobody selected, which the
	// organizer absorbs.
	Unclaimed float64
}

// Summarize recomputes every figure for a room snapshot from scratch.
func Summarize(room models.Room, items []models.BillItem) Summary {
	s := Summary{
		Subtotal:      Subtotal(items),
		Tax:           TotalTax(items, room.TaxProfiles),
		ServiceCharge: TotalServiceCharge(items, room),
		Total:         TotalBill(items, room),
		Items:         make([]ItemLine, 0, len(items)),
		Shares:        SplitBreakdown(items, shareholders(room), room),
	}

	for _, item := range items {
		line := ItemLine{
			ItemID:         item.ID,
			Name:           item.Name,
			ExtendedPrice:  ExtendedPrice(item),
			Tax:            TaxAmount(item, room),
			ServiceCharge:  ServiceCharge(item, room),
			GrandTotal:     GrandTotal(item, room),
			PerPersonShare: PerPersonShare(item, room),
			Claimed:        len(item.SelectedBy) > 0,
		}
		if profile := EffectiveProfile(item, room); profile != nil {
			line.ProfileID = profile.ID
		}
		if !line.Claimed {
			s.Unclaimed += line.GrandTotal
		}
		s.Items = append(s.Items, line)
	}

	for _, share := range s.Shares {
		s.Claimed += share
	}

	return s
}

// shareholders lists current participants followed by those who left.
func shareholders(room models.Room) []string {
	ids := room.ParticipantIDs()
	for _, p := range room.LeftParticipants {
		if !room.HasParticipant(p.UserID) {
			ids = append(ids, p.UserID)
		}
	}
	return ids
}
