// Package currency renders amounts for display.
//
// Display rounding is round-half-to-even at the currency's standard minor
// unit (2 decimals for USD, 0 for JPY). Callers keep accumulating unrounded
// float64 values and only pass the final figure through this package.
package currency

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultCode is used when neither the caller nor the locale names a currency.
const DefaultCode = "USD"

// Fallback is the locale used when no locale context is available.
var Fallback = language.AmericanEnglish

var ErrUnknownCurrency = errors.New("unknown currency code")

// Formatter formats amounts for one locale.
type Formatter struct {
	tag     language.Tag
	printer *message.Printer
}

// NewFormatter builds a formatter for an Accept-Language style locale string.
// An empty or unparsable locale yields the fallback locale.
func NewFormatter(locale string) *Formatter {
	return ForTag(parseLocale(locale))
}

// ForTag builds a formatter for a parsed language tag.
func ForTag(tag language.Tag) *Formatter {
	return &Formatter{tag: tag, printer: message.NewPrinter(tag)}
}

// FromEnvironment builds a formatter from LC_ALL, LC_MONETARY or LANG, for
// non-interactive contexts such as the server process itself.
func FromEnvironment() *Formatter {
	for _, key := range []string{"LC_ALL", "LC_MONETARY", "LANG"} {
		if v := os.Getenv(key); v != "" && v != "C" && v != "POSIX" {
			// en_US.UTF-8 -> en-US
			v, _, _ = strings.Cut(v, ".")
			return NewFormatter(strings.ReplaceAll(v, "_", "-"))
		}
	}
	return ForTag(Fallback)
}

// Tag returns the formatter's locale.
func (f *Formatter) Tag() language.Tag {
	return f.tag
}

// Format renders amount in the given currency. An empty code picks the
// currency of the locale's region, then DefaultCode. Unknown codes are
// rendered with the code itself as the symbol and two decimals.
func (f *Formatter) Format(amount float64, code string) string {
	unit, err := f.unit(code)
	if err != nil {
		prefix := strings.ToUpper(code) + " "
		if !finite(amount) {
			return nonFinite(amount, prefix)
		}
		rounded := roundBank(amount, 2)
		return prefix + f.printer.Sprint(number.Decimal(rounded, number.Scale(2)))
	}

	symbol := f.printer.Sprint(currency.NarrowSymbol(unit))
	if !finite(amount) {
		return nonFinite(amount, symbol)
	}
	scale := Scale(unit)
	rounded := roundBank(amount, scale)
	digits := f.printer.Sprint(number.Decimal(abs(rounded), number.Scale(scale)))
	if rounded < 0 {
		return "-" + symbol + digits
	}
	return symbol + digits
}

// DefaultCurrency returns the currency for the formatter's locale.
func (f *Formatter) DefaultCurrency() string {
	unit, conf := currency.FromTag(f.tag)
	if conf == language.No {
		return DefaultCode
	}
	return unit.String()
}

func (f *Formatter) unit(code string) (currency.Unit, error) {
	if strings.TrimSpace(code) == "" {
		code = f.DefaultCurrency()
	}
	return Parse(code)
}

// Format renders amount with the fallback locale.
func Format(amount float64, code string) string {
	return ForTag(Fallback).Format(amount, code)
}

// Parse validates an ISO 4217 code.
func Parse(code string) (currency.Unit, error) {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return currency.Unit{}, fmt.Errorf("%w: %q", ErrUnknownCurrency, code)
	}
	return unit, nil
}

// Scale is the number of minor-unit digits for the currency.
func Scale(unit currency.Unit) int {
	scale, _ := currency.Standard.Rounding(unit)
	return scale
}

// Round applies display rounding for code. Unknown codes round to 2 decimals.
func Round(amount float64, code string) float64 {
	unit, err := Parse(code)
	if err != nil {
		return roundBank(amount, 2)
	}
	return roundBank(amount, Scale(unit))
}

// nonFinite renders infinities and NaN, which decimal cannot represent.
func nonFinite(amount float64, symbol string) string {
	switch {
	case math.IsNaN(amount):
		return symbol + "NaN"
	case amount < 0:
		return "-" + symbol + "∞"
	default:
		return symbol + "∞"
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// roundBank leaves non-finite amounts untouched.
func roundBank(amount float64, scale int) float64 {
	if !finite(amount) {
		return amount
	}
	return decimal.NewFromFloat(amount).RoundBank(int32(scale)).InexactFloat64()
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func parseLocale(locale string) language.Tag {
	if strings.TrimSpace(locale) == "" {
		return Fallback
	}
	tags, _, err := language.ParseAcceptLanguage(locale)
	if err != nil || len(tags) == 0 {
		return Fallback
	}
	return tags[0]
}
