// Package validate checks user input at the write boundary: item creation,
// tax profile edits, service charge updates and accepted receipt drafts.
// The calculation core assumes everything reaching it passed these checks.
package validate

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mmynk/splitroom/internal/currency"
	"github.com/mmynk/splitroom/internal/models"
)

var v = validator.New()

// Violation is one invalid field.
type Violation struct {
	Field   string
	Message string
}

// Error collects every violation found in one input.
type Error struct {
	Violations []Violation
}

func (e *Error) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, viol := range e.Violations {
		msgs[i] = viol.Field + ": " + viol.Message
	}
	return "invalid input: " + strings.Join(msgs, "; ")
}

func (e *Error) add(field, format string, args ...any) {
	e.Violations = append(e.Violations, Violation{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (e *Error) orNil() error {
	if len(e.Violations) == 0 {
		return nil
	}
	return e
}

// AsError extracts the violations from err, if any.
func AsError(err error) (*Error, bool) {
	var verr *Error
	ok := errors.As(err, &verr)
	return verr, ok
}

type itemInput struct {
	Name     string  `validate:"required,max=200"`
	Price    float64 `validate:"gte=0,lte=1000000000"`
	Quantity int     `validate:"gte=1,lte=10000"`
}

type profileInput struct {
	ID   string  `validate:"required,max=64"`
	Name string  `validate:"required,max=100"`
	Rate float64 `validate:"gte=0,lte=100"`
	Icon string  `validate:"max=64"`
}

// Item checks a new or edited bill item.
func Item(name string, price float64, quantity int) error {
	verr := &Error{}
	collect(verr, "", v.Struct(itemInput{Name: strings.TrimSpace(name), Price: price, Quantity: quantity}))
	return verr.orNil()
}

// ServiceCharge checks a room's service charge percentage.
func ServiceCharge(rate float64) error {
	if math.IsNaN(rate) || rate < 0 || rate > 100 {
		return &Error{Violations: []Violation{{Field: "service_tax_rate", Message: "must be between 0 and 100"}}}
	}
	return nil
}

// RoomName checks an optional room display name.
func RoomName(name string) error {
	if n := len([]rune(strings.TrimSpace(name))); n > 100 {
		return &Error{Violations: []Violation{{Field: "name", Message: "must be at most 100 characters"}}}
	}
	return nil
}

// Prefixed returns err with every violation's field prefixed, as in
// "items[2].price". Errors that are not validation errors pass through.
func Prefixed(err error, prefix string) error {
	verr, ok := AsError(err)
	if !ok {
		return err
	}
	out := &Error{Violations: make([]Violation, len(verr.Violations))}
	for i, viol := range verr.Violations {
		out.Violations[i] = Violation{Field: prefix + viol.Field, Message: viol.Message}
	}
	return out
}

// Join merges the violations of several validation errors. Nil errors are
// skipped. The result is nil when nothing failed.
func Join(errs ...error) error {
	out := &Error{}
	for _, err := range errs {
		if err == nil {
			continue
		}
		verr, ok := AsError(err)
		if !ok {
			return err
		}
		out.Violations = append(out.Violations, verr.Violations...)
	}
	return out.orNil()
}

// Currency checks an ISO 4217 code.
func Currency(code string) error {
	if _, err := currency.Parse(code); err != nil {
		return &Error{Violations: []Violation{{Field: "currency", Message: err.Error()}}}
	}
	return nil
}

// TaxProfiles checks a room's complete profile set. Ids must be unique and at
// most one profile may be global.
func TaxProfiles(profiles []models.TaxProfile) error {
	verr := &Error{}
	ids := make(map[string]bool, len(profiles))
	globals := 0

	for i, p := range profiles {
		prefix := fmt.Sprintf("tax_profiles[%d].", i)
		collect(verr, prefix, v.Struct(profileInput{ID: p.ID, Name: strings.TrimSpace(p.Name), Rate: p.Rate, Icon: p.Icon}))
		if ids[p.ID] {
			verr.add(prefix+"id", "duplicate id %q", p.ID)
		}
		ids[p.ID] = true
		if p.IsGlobal {
			globals++
		}
	}
	if globals > 1 {
		verr.add("tax_profiles", "at most one profile may be global, got %d", globals)
	}

	return verr.orNil()
}

// ReceiptLine checks one reviewed receipt line.
func ReceiptLine(line models.ReceiptLine) error {
	verr := &Error{}
	collect(verr, "", v.Struct(line))
	return verr.orNil()
}

// ReceiptTaxProfile checks one reviewed receipt tax profile.
func ReceiptTaxProfile(p models.ReceiptTaxProfile) error {
	verr := &Error{}
	collect(verr, "", v.Struct(p))
	return verr.orNil()
}

// collect translates validator errors into violations.
func collect(verr *Error, prefix string, err error) {
	if err == nil {
		return
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		verr.add(strings.TrimSuffix(prefix, "."), "%v", err)
		return
	}
	for _, fe := range fieldErrs {
		verr.add(prefix+toSnake(fe.Field()), "%s", describe(fe))
	}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "failed " + fe.Tag()
	}
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
