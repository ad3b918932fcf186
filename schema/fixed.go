package schema

import (
	"github.com/shopspring/decimal"
)

// FixedPlaces is the number of decimal places kept by Fixed.
const FixedPlaces = 2

var (
	halfUnit    = decimal.NewFromFloat(0.5)
	decimalFour = decimal.NewFromInt(4)
)

// Fixed is a two-place decimal that serializes as a bare JSON number.
// The zero value is 0.00.
type Fixed struct {
	d decimal.Decimal
}

// NewFixed rounds v half-up to two places.
func NewFixed(v float64) Fixed {
	return FixedFromDecimal(decimal.NewFromFloat(v))
}

// FixedFromDecimal rounds d half-up to two places.
func FixedFromDecimal(d decimal.Decimal) Fixed {
	return Fixed{d: RoundHalfUp(d, FixedPlaces)}
}

// RoundHalfUp rounds d to the given places, sending ties toward positive infinity.
func RoundHalfUp(d decimal.Decimal, places int32) decimal.Decimal {
	return d.Shift(places).Add(halfUnit).Floor().Shift(-places)
}

// Decimal returns the underlying decimal value.
func (f Fixed) Decimal() decimal.Decimal { return f.d }

// Float64 returns the nearest float64 of the value.
func (f Fixed) Float64() float64 {
	v, _ := f.d.Float64()
	return v
}

// String formats the value with exactly two places.
func (f Fixed) String() string { return f.d.StringFixed(FixedPlaces) }

// Equal reports whether both values are numerically equal.
func (f Fixed) Equal(other Fixed) bool { return f.d.Equal(other.d) }

// MarshalJSON emits the value as an unquoted number with two places.
func (f Fixed) MarshalJSON() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalJSON accepts quoted or bare numbers.
func (f *Fixed) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	*f = FixedFromDecimal(d)
	return nil
}
