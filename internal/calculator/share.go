package calculator

import "github.com/mmynk/splitroom/internal/models"

// PerPersonShare is one selector's equal part of the item's grand total.
// Unclaimed items have no per-person share.
func PerPersonShare(item models.BillItem, room models.Room) float64 {
	n := len(item.SelectedBy)
	if n == 0 {
		return 0
	}
	return GrandTotal(item, room) / float64(n)
}

// UserShare sums userID's equal share of every item they selected,
// inclusive of tax and service charge.
//
// Unclaimed items contribute to nobody; their value stays in TotalBill and is
// settled by the room organizer.
func UserShare(items []models.BillItem, userID string, room models.Room) float64 {
	var share float64
	for _, item := range items {
		if len(item.SelectedBy) == 0 || !item.IsSelectedBy(userID) {
			continue
		}
		share += GrandTotal(item, room) / float64(len(item.SelectedBy))
	}
	return share
}

// SplitBreakdown computes UserShare for each participant independently.
func SplitBreakdown(items []models.BillItem, participantIDs []string, room models.Room) map[string]float64 {
	breakdown := make(map[string]float64, len(participantIDs))
	for _, id := range participantIDs {
		breakdown[id] = UserShare(items, id, room)
	}
	return breakdown
}
