package calculator

import "sort"

// Transfer is a payment one participant owes another.
type Transfer struct {
	From   string // Person who owes
	To     string // Person who is owed
	Amount float64
}

// minTransfer drops amounts below one minor unit, which are floating point noise.
const minTransfer = 0.01

// SettleUp lists what each participant owes the organizer, who paid the bill
// and absorbs unclaimed items. Transfers are ordered by debtor ID.
func SettleUp(summary Summary, organizerID string) []Transfer {
	debtors := make([]string, 0, len(summary.Shares))
	for id := range summary.Shares {
		if id != organizerID {
			debtors = append(debtors, id)
		}
	}
	sort.Strings(debtors)

	var transfers []Transfer
	for _, id := range debtors {
		amount := summary.Shares[id]
		if amount < minTransfer {
			continue
		}
		transfers = append(transfers, Transfer{From: id, To: organizerID, Amount: amount})
	}
	return transfers
}
