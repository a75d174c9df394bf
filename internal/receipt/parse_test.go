package receipt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("well formed payload", func(t *testing.T) {
		draft, err := Parse(`{
			"items": [
				{"name": "Paneer Tikka", "price": 12.5, "quantity": 2},
				{"name": "Lassi", "price": 3}
			],
			"serviceTax": 10,
			"taxProfiles": [{"name": "GST", "rate": 2.5, "isGlobal": true, "isDouble": true}],
			"currency": "inr"
		}`)
		require.NoError(t, err)

		require.Len(t, draft.Items, 2)
		assert.Equal(t, "Paneer Tikka", draft.Items[0].Name)
		assert.Equal(t, 12.5, draft.Items[0].Price)
		assert.Equal(t, 2, draft.Items[0].Quantity)
		assert.Equal(t, 1, draft.Items[1].Quantity)
		assert.Equal(t, 10.0, draft.ServiceTax)
		assert.Equal(t, "INR", draft.Currency)
		require.Len(t, draft.TaxProfiles, 1)
		assert.True(t, draft.TaxProfiles[0].IsDouble)
		assert.Empty(t, draft.Rejected)
	})

	t.Run("markdown fences are stripped", func(t *testing.T) {
		draft, err := Parse("```json\n{\"items\": [{\"name\": \"Tea\", \"price\": 2}]}\n```")
		require.NoError(t, err)
		require.Len(t, draft.Items, 1)
		assert.Equal(t, "Tea", draft.Items[0].Name)
	})

	t.Run("string numbers are coerced", func(t *testing.T) {
		draft, err := Parse(`{"items": [{"name": "Steak", "price": "$1,234.50", "quantity": "2"}], "serviceTax": "12.5%"}`)
		require.NoError(t, err)
		require.Len(t, draft.Items, 1)
		assert.Equal(t, 1234.5, draft.Items[0].Price)
		assert.Equal(t, 2, draft.Items[0].Quantity)
		assert.Equal(t, 12.5, draft.ServiceTax)
	})

	t.Run("decimal comma", func(t *testing.T) {
		draft, err := Parse(`{
			"items": [
				{"name": "Wurst", "price": "12,50"},
				{"name": "Bier", "price": "4,5 €"},
				{"name": "Platte", "price": "1.234,50"},
				{"name": "Fest", "price": "1,234"},
				{"name": "Saal", "price": "1,234,567"}
			],
			"serviceTax": "7,5%",
			"currency": "EUR"
		}`)
		require.NoError(t, err)
		require.Len(t, draft.Items, 5)
		assert.Equal(t, 12.5, draft.Items[0].Price)
		assert.Equal(t, 4.5, draft.Items[1].Price)
		assert.Equal(t, 1234.5, draft.Items[2].Price)
		assert.Equal(t, 1234.0, draft.Items[3].Price)
		assert.Equal(t, 1234567.0, draft.Items[4].Price)
		assert.Equal(t, 7.5, draft.ServiceTax)
		assert.Empty(t, draft.Rejected)
	})

	t.Run("invalid lines are rejected, not fatal", func(t *testing.T) {
		draft, err := Parse(`{
			"items": [
				{"name": "", "price": 4},
				{"name": "Discount", "price": -5},
				{"name": "Mystery", "price": "n/a"},
				{"name": "Rice", "price": 6, "quantity": 0}
			],
			"serviceTax": -3,
			"taxProfiles": [
				{"name": "Bogus", "rate": 250},
				{"name": "VAT", "rate": 5, "isGlobal": true},
				{"name": "City", "rate": 1, "isGlobal": true}
			]
		}`)
		require.NoError(t, err)

		require.Len(t, draft.Items, 1)
		assert.Equal(t, "Rice", draft.Items[0].Name)
		assert.Equal(t, 1, draft.Items[0].Quantity)
		assert.Zero(t, draft.ServiceTax)

		require.Len(t, draft.TaxProfiles, 2)
		assert.True(t, draft.TaxProfiles[0].IsGlobal)
		assert.False(t, draft.TaxProfiles[1].IsGlobal, "only the first global profile stays global")

		// three items, one profile, the service tax
		assert.Len(t, draft.Rejected, 5)
	})

	t.Run("unknown currency is dropped", func(t *testing.T) {
		draft, err := Parse(`{"items": [], "currency": "dollars"}`)
		require.NoError(t, err)
		assert.Empty(t, draft.Currency)
		assert.Empty(t, draft.Items)
	})

	t.Run("error field means not a receipt", func(t *testing.T) {
		_, err := Parse(`{"error": "image is a cat"}`)
		assert.ErrorIs(t, err, ErrNotAReceipt)

		_, err = Parse(`{"error": null, "items": []}`)
		assert.NoError(t, err)
	})

	t.Run("garbage is malformed", func(t *testing.T) {
		for _, text := range []string{"", "```\n```", "I could not read this", `{"items": "none"}`} {
			_, err := Parse(text)
			assert.ErrorIs(t, err, ErrMalformed, "input %q", text)
		}
	})
}
