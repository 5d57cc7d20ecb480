// Package fixpoint represents prices as unsigned 64-bit integers scaled by
// 1e9. Integer prices give exact equality for level bucketing, stable map
// keys, and deterministic ordering; decimals appear only at the parse and
// format boundaries.
package fixpoint

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

const (
	// Exponent is the number of fractional decimal digits carried by a Price.
	Exponent = 9

	// Scale is 10^Exponent, the integer units per whole price unit.
	Scale = 1_000_000_000
)

var (
	ErrNegative   = errors.New("negative price")
	ErrOutOfRange = errors.New("price out of range")
)

// maxScaled bounds parsed values; prices beyond int64 scaled units are
// rejected rather than silently truncated.
var maxScaled = decimal.NewFromInt(math.MaxInt64)

// Price is a fixed-point price: the decimal value multiplied by Scale.
// The zero value means "no price".
type Price uint64

// Parse converts a decimal string to a Price. Digits beyond the ninth
// fractional place are rounded half away from zero. Negative values and
// values that overflow the scaled range are rejected.
func Parse(s string) (Price, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("fixpoint: parse %q: %w", s, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("fixpoint: parse %q: %w", s, ErrNegative)
	}
	scaled := d.Shift(Exponent).Round(0)
	if scaled.Cmp(maxScaled) > 0 {
		return 0, fmt.Errorf("fixpoint: parse %q: %w", s, ErrOutOfRange)
	}
	return Price(scaled.IntPart()), nil
}

// MustParse is Parse for tests and literals; it panics on error.
func MustParse(s string) Price {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Append formats p onto dst without allocating: trailing fractional zeros
// are trimmed, the decimal point is omitted for whole values, and a zero
// Price appends nothing (the "no price" sentinel in the output format).
func Append(dst []byte, p Price) []byte {
	if p == 0 {
		return dst
	}
	dst = strconv.AppendUint(dst, uint64(p)/Scale, 10)
	frac := uint64(p) % Scale
	if frac == 0 {
		return dst
	}
	var digits [Exponent]byte
	for i := Exponent - 1; i >= 0; i-- {
		digits[i] = byte('0' + frac%10)
		frac /= 10
	}
	n := Exponent
	for digits[n-1] == '0' {
		n--
	}
	dst = append(dst, '.')
	return append(dst, digits[:n]...)
}

// String renders p in the same grammar as Append; the zero Price is the
// empty string.
func (p Price) String() string {
	return string(Append(nil, p))
}

// Float64 is a lossy conversion for reports and logs. The engine never
// compares prices as floats.
func (p Price) Float64() float64 {
	return float64(p) / Scale
}
