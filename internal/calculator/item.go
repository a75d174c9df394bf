package calculator

import "github.com/mmynk/splitroom/internal/models"

// quantity reads a missing (zero) quantity as 1.
func quantity(item models.BillItem) int {
	if item.Quantity <= 0 {
		return 1
	}
	return item.Quantity
}

// ExtendedPrice is the unit price times quantity.
func ExtendedPrice(item models.BillItem) float64 {
	return item.Price * float64(quantity(item))
}

// EffectiveProfile resolves the item's tax profile against the room.
func EffectiveProfile(item models.BillItem, room models.Room) *models.TaxProfile {
	return ResolveProfile(item, room.TaxProfiles)
}

// TaxAmount is the tax on the item's extended price.
func TaxAmount(item models.BillItem, room models.Room) float64 {
	return ItemTax(ExtendedPrice(item), EffectiveProfile(item, room))
}

// TotalWithTax is the extended price plus tax.
func TotalWithTax(item models.BillItem, room models.Room) float64 {
	return ExtendedPrice(item) + TaxAmount(item, room)
}

// ServiceCharge applies the room's service rate on top of price plus tax.
func ServiceCharge(item models.BillItem, room models.Room) float64 {
	return TotalWithTax(item, room) * (room.ServiceTaxRate / 100)
}

// GrandTotal is everything the item costs: price, tax and service charge.
func GrandTotal(item models.BillItem, room models.Room) float64 {
	return TotalWithTax(item, room) + ServiceCharge(item, room)
}
