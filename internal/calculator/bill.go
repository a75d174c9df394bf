package calculator

import "github.com/mmynk/splitroom/internal/models"

// Subtotal sums extended prices over all items, claimed or not.
func Subtotal(items []models.BillItem) float64 {
	var total float64
	for _, item := range items {
		total += ExtendedPrice(item)
	}
	return total
}

// TotalTax sums item tax over all items.
func TotalTax(items []models.BillItem, profiles []models.TaxProfile) float64 {
	var total float64
	for _, item := range items {
		total += ItemTax(ExtendedPrice(item), ResolveProfile(item, profiles))
	}
	return total
}

// TotalServiceCharge sums the service charge over all items.
func TotalServiceCharge(items []models.BillItem, room models.Room) float64 {
	var total float64
	for _, item := range items {
		total += ServiceCharge(item, room)
	}
	return total
}

// TotalBill sums every item's grand total. It equals
// Subtotal + TotalTax + TotalServiceCharge.
func TotalBill(items []models.BillItem, room models.Room) float64 {
	var total float64
	for _, item := range items {
		total += GrandTotal(item, room)
	}
	return total
}
