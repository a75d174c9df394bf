package service

import (
	"github.com/mmynk/splitroom/internal/models"
	"github.com/mmynk/splitroom/pkg/api"
)

func userToAPI(u *models.User) api.User {
	return api.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		IsGuest:     u.IsGuest,
	}
}

func participantsToAPI(ps []models.Participant) []api.Participant {
	out := make([]api.Participant, len(ps))
	for i, p := range ps {
		out[i] = api.Participant{
			UserID:       p.UserID,
			DisplayName:  p.DisplayName,
			IsGuest:      p.IsGuest,
			JoinedAt:     p.JoinedAt,
			HasSubmitted: p.HasSubmitted,
			PhotoURL:     p.PhotoURL,
		}
	}
	return out
}

func taxProfilesToAPI(profiles []models.TaxProfile) []api.TaxProfile {
	out := make([]api.TaxProfile, len(profiles))
	for i, p := range profiles {
		out[i] = api.TaxProfile{
			ID:       p.ID,
			Name:     p.Name,
			Rate:     p.Rate,
			IsGlobal: p.IsGlobal,
			IsDouble: p.IsDouble,
			Icon:     p.Icon,
		}
	}
	return out
}

func taxProfilesFromAPI(profiles []api.TaxProfile) []models.TaxProfile {
	out := make([]models.TaxProfile, len(profiles))
	for i, p := range profiles {
		out[i] = models.TaxProfile{
			ID:       p.ID,
			Name:     p.Name,
			Rate:     p.Rate,
			IsGlobal: p.IsGlobal,
			IsDouble: p.IsDouble,
			Icon:     p.Icon,
		}
	}
	return out
}

func roomToAPI(r *models.Room) api.Room {
	return api.Room{
		ID:               r.ID,
		Code:             r.Code,
		Name:             r.Name,
		CreatedAt:        r.CreatedAt,
		CreatedBy:        r.CreatedBy,
		Status:           string(r.Status),
		Currency:         r.Currency,
		ServiceTaxRate:   r.ServiceTaxRate,
		TaxProfiles:      taxProfilesToAPI(r.TaxProfiles),
		Participants:     participantsToAPI(r.Participants),
		LeftParticipants: participantsToAPI(r.LeftParticipants),
		ExpiresAt:        r.ExpiresAt,
	}
}

func itemToAPI(item *models.BillItem) api.Item {
	selectedBy := item.SelectedBy
	if selectedBy == nil {
		selectedBy = []string{}
	}
	return api.Item{
		ID:           item.ID,
		RoomID:       item.RoomID,
		Name:         item.Name,
		Price:        item.Price,
		Quantity:     item.Quantity,
		AddedBy:      item.AddedBy,
		SelectedBy:   selectedBy,
		TaxProfileID: item.TaxProfileID,
		CreatedAt:    item.CreatedAt,
	}
}

func itemsToAPI(items []models.BillItem) []api.Item {
	out := make([]api.Item, len(items))
	for i := range items {
		out[i] = itemToAPI(&items[i])
	}
	return out
}

func draftToAPI(d *models.ReceiptDraft) api.ReceiptDraft {
	out := api.ReceiptDraft{
		Items:       make([]api.ReceiptLine, len(d.Items)),
		ServiceTax:  d.ServiceTax,
		TaxProfiles: make([]api.ReceiptTaxProfile, len(d.TaxProfiles)),
		Currency:    d.Currency,
		Rejected:    d.Rejected,
	}
	for i, l := range d.Items {
		out.Items[i] = api.ReceiptLine{Name: l.Name, Price: l.Price, Quantity: l.Quantity}
	}
	for i, p := range d.TaxProfiles {
		out.TaxProfiles[i] = api.ReceiptTaxProfile{Name: p.Name, Rate: p.Rate, IsGlobal: p.IsGlobal, IsDouble: p.IsDouble}
	}
	return out
}

func draftFromAPI(d api.ReceiptDraft) models.ReceiptDraft {
	out := models.ReceiptDraft{
		Items:       make([]models.ReceiptLine, len(d.Items)),
		ServiceTax:  d.ServiceTax,
		TaxProfiles: make([]models.ReceiptTaxProfile, len(d.TaxProfiles)),
		Currency:    d.Currency,
	}
	for i, l := range d.Items {
		out.Items[i] = models.ReceiptLine{Name: l.Name, Price: l.Price, Quantity: l.Quantity}
	}
	for i, p := range d.TaxProfiles {
		out.TaxProfiles[i] = models.ReceiptTaxProfile{Name: p.Name, Rate: p.Rate, IsGlobal: p.IsGlobal, IsDouble: p.IsDouble}
	}
	return out
}
