package num

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// derivedPlaces is the fractional-digit cap applied when rendering values
// produced by arithmetic rather than parsed off the wire.
const derivedPlaces = 10

// Decimal is an exact decimal amount tied to its wire representation.
//
// Values parsed from the wire keep their original text verbatim, so
// re-serialization is byte-identical to the input ("100.50" stays "100.50",
// never "100.5"). Values produced by arithmetic render their magnitude with
// a fixed rule instead: round toward positive infinity, at most
// derivedPlaces fractional digits. Comparisons always use the magnitude, so
// "100.50" and "100.5000" are equal even though their texts differ.
type Decimal struct {
	mag  decimal.Decimal
	text string
}

// ParseError reports a price/quantity/balance field that is not a
// well-formed decimal numeral.
type ParseError struct {
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid decimal %q", e.Input)
}

// Parse builds a Decimal from its wire text, preserving the text verbatim.
func Parse(s string) (Decimal, error) {
	mag, err := decimal.NewFromString(s)
	if err != nil {
		return Decimal{}, &ParseError{Input: s}
	}
	return Decimal{mag: mag, text: s}, nil
}

// MustParse is Parse for literals in tests and static tables.
func MustParse(s string) Decimal {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// FromInt builds a Decimal from an integer. The text is the exact decimal
// rendering, no rounding involved.
func FromInt(n int64) Decimal {
	mag := decimal.NewFromInt(n)
	return Decimal{mag: mag, text: mag.String()}
}

// derived wraps an arithmetic result; the text is freshly rendered and never
// inherited from an operand.
func derived(mag decimal.Decimal) Decimal {
	return Decimal{mag: mag, text: mag.RoundCeil(derivedPlaces).String()}
}

func (d Decimal) Add(o Decimal) Decimal { return derived(d.mag.Add(o.mag)) }
func (d Decimal) Sub(o Decimal) Decimal { return derived(d.mag.Sub(o.mag)) }
func (d Decimal) Mul(o Decimal) Decimal { return derived(d.mag.Mul(o.mag)) }
func (d Decimal) Div(o Decimal) Decimal { return derived(d.mag.Div(o.mag)) }

// Cmp compares magnitudes: -1 if d < o, 0 if equal, +1 if d > o.
func (d Decimal) Cmp(o Decimal) int { return d.mag.Cmp(o.mag) }

// Equal compares magnitudes, not texts.
func (d Decimal) Equal(o Decimal) bool { return d.mag.Equal(o.mag) }

func (d Decimal) IsZero() bool { return d.mag.IsZero() }

// Float64 is a lossy conversion for display-only consumers (gauges, logs).
func (d Decimal) Float64() float64 { return d.mag.InexactFloat64() }

// String returns the canonical wire text. The zero value renders as "0".
func (d Decimal) String() string {
	if d.text == "" {
		return d.mag.String()
	}
	return d.text
}

// UnmarshalJSON accepts only JSON strings; the exchange never sends numeric
// price/quantity fields as JSON numbers, and accepting them would silently
// route money values through float64.
func (d *Decimal) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("decimal field must be a JSON string: %w", err)
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Decimal) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}
