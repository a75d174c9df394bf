package receipt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mmynk/splitroom/internal/currency"
	"github.com/mmynk/splitroom/internal/models"
	"github.com/mmynk/splitroom/internal/validate"
)

// payload mirrors the JSON the model is asked for. Every field is loose
// because models return numbers as strings, omit fields, or add an error.
type payload struct {
	Items       []payloadItem    `json:"items"`
	ServiceTax  looseNumber      `json:"serviceTax"`
	TaxProfiles []payloadProfile `json:"taxProfiles"`
	Currency    string           `json:"currency"`
	Error       json.RawMessage  `json:"error"`
}

type payloadItem struct {
	Name     string      `json:"name"`
	Price    looseNumber `json:"price"`
	Quantity looseNumber `json:"quantity"`
}

type payloadProfile struct {
	Name     string      `json:"name"`
	Rate     looseNumber `json:"rate"`
	IsGlobal bool        `json:"isGlobal"`
	IsDouble bool        `json:"isDouble"`
}

// looseNumber accepts 12.5, "12.5", "$12.50" and "1,234.00".
type looseNumber struct {
	Value float64
	Set   bool
	Bad   bool
}

func (n *looseNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			n.Bad = true
			return nil
		}
		s = strings.Map(func(r rune) rune {
			if (r >= '0' && r <= '9') || r == '.' || r == ',' || r == '-' {
				return r
			}
			return -1
		}, s)
		s = normalizeSeparators(s)
		if s == "" {
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			n.Bad = true
			return nil
		}
		n.Value, n.Set = v, true
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		n.Bad = true
		return nil
	}
	n.Value, n.Set = v, true
	return nil
}

// normalizeSeparators resolves commas in a numeric string. A comma is the
// decimal separator when it is the last separator and is followed by one or
// two digits ("12,50", "1.234,5"); otherwise commas group thousands.
func normalizeSeparators(s string) string {
	i := strings.LastIndexByte(s, ',')
	if i < 0 {
		return s
	}
	if tail := len(s) - i - 1; tail >= 1 && tail <= 2 && !strings.Contains(s[i:], ".") {
		return strings.NewReplacer(".", "", ",", "").Replace(s[:i]) + "." + s[i+1:]
	}
	return strings.ReplaceAll(s, ",", "")
}

// Parse converts raw model output into a draft. Lines that cannot be coerced
// into valid items or profiles are dropped and listed in Draft.Rejected.
func Parse(text string) (*models.ReceiptDraft, error) {
	raw := stripFences(text)
	if raw == "" {
		return nil, fmt.Errorf("empty response: %w", ErrMalformed)
	}

	var p payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if hasError(p.Error) {
		return nil, ErrNotAReceipt
	}

	draft := &models.ReceiptDraft{
		Items:       []models.ReceiptLine{},
		TaxProfiles: []models.ReceiptTaxProfile{},
	}

	for i, it := range p.Items {
		line, reason := coerceLine(it)
		if reason != "" {
			draft.Rejected = append(draft.Rejected, fmt.Sprintf("item %d: %s", i+1, reason))
			continue
		}
		draft.Items = append(draft.Items, line)
	}

	globalSeen := false
	for i, tp := range p.TaxProfiles {
		profile := models.ReceiptTaxProfile{
			Name:     strings.TrimSpace(tp.Name),
			Rate:     tp.Rate.Value,
			IsGlobal: tp.IsGlobal,
			IsDouble: tp.IsDouble,
		}
		if tp.Rate.Bad {
			draft.Rejected = append(draft.Rejected, fmt.Sprintf("tax profile %d: rate is not a number", i+1))
			continue
		}
		if err := validate.ReceiptTaxProfile(profile); err != nil {
			draft.Rejected = append(draft.Rejected, fmt.Sprintf("tax profile %d: %v", i+1, err))
			continue
		}
		// Only one profile may be global.
		if profile.IsGlobal {
			if globalSeen {
				profile.IsGlobal = false
			}
			globalSeen = true
		}
		draft.TaxProfiles = append(draft.TaxProfiles, profile)
	}

	switch {
	case p.ServiceTax.Bad:
		draft.Rejected = append(draft.Rejected, "service tax is not a number")
	case validate.ServiceCharge(p.ServiceTax.Value) != nil:
		draft.Rejected = append(draft.Rejected, fmt.Sprintf("service tax %v is out of range", p.ServiceTax.Value))
	default:
		draft.ServiceTax = p.ServiceTax.Value
	}

	code := strings.ToUpper(strings.TrimSpace(p.Currency))
	if _, err := currency.Parse(code); err == nil {
		draft.Currency = code
	}

	return draft, nil
}

func coerceLine(it payloadItem) (models.ReceiptLine, string) {
	if it.Price.Bad || !it.Price.Set {
		return models.ReceiptLine{}, "price is missing or not a number"
	}
	if it.Quantity.Bad {
		return models.ReceiptLine{}, "quantity is not a number"
	}

	qty := 1
	if it.Quantity.Set {
		qty = int(math.Round(it.Quantity.Value))
		if qty < 1 {
			qty = 1
		}
	}

	line := models.ReceiptLine{
		Name:     strings.TrimSpace(it.Name),
		Price:    it.Price.Value,
		Quantity: qty,
	}
	if err := validate.ReceiptLine(line); err != nil {
		return models.ReceiptLine{}, err.Error()
	}
	return line, ""
}

// stripFences removes markdown code fences the model sometimes adds.
func stripFences(text string) string {
	s := strings.TrimSpace(text)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```JSON", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

func hasError(raw json.RawMessage) bool {
	v := strings.TrimSpace(string(raw))
	return v != "" && v != "null" && v != "false" && v != `""`
}
