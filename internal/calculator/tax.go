// Package calculator implements the bill-splitting arithmetic: tax profile
// resolution, per-item figures, room-wide aggregates and per-user shares.
//
// Every function is pure. Inputs are snapshots that are never mutated, and
// figures are accumulated in float64 without intermediate rounding; rounding
// happens only when an amount is formatted for display.
package calculator

import "github.com/mmynk/splitroom/internal/models"

// ResolveProfile returns the tax profile that applies to item.
//
// An explicit TaxProfileID wins when it matches a profile. Otherwise the first
// global profile in list order applies. A dangling TaxProfileID falls through
// to the global lookup, and nil means no tax.
func ResolveProfile(item models.BillItem, profiles []models.TaxProfile) *models.TaxProfile {
	if item.TaxProfileID != nil {
		for i := range profiles {
			if profiles[i].ID == *item.TaxProfileID {
				return &profiles[i]
			}
		}
	}
	for i := range profiles {
		if profiles[i].IsGlobal {
			return &profiles[i]
		}
	}
	return nil
}

// ItemTax computes the tax owed on a pre-tax amount under profile.
// A double profile charges two components at the same rate.
func ItemTax(amount float64, profile *models.TaxProfile) float64 {
	if profile == nil {
		return 0
	}
	tax := amount * (profile.Rate / 100)
	if profile.IsDouble {
		tax *= 2
	}
	return tax
}
