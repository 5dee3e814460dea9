// Package checked provides overflow-checked arithmetic for on-ledger
// quantities. Every helper fails with domain.ErrArithmeticOverflow instead
// of wrapping.
package checked

import (
	"math"
	"math/bits"

	"github.com/trebuchet-org/lockgov/internal/domain"
)

// Add returns a+b.
func Add(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, domain.ErrArithmeticOverflow
	}
	return sum, nil
}

// Sub returns a-b.
func Sub(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, domain.ErrArithmeticOverflow
	}
	return diff, nil
}

// Mul returns a*b.
func Mul(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, domain.ErrArithmeticOverflow
	}
	return lo, nil
}

// Div returns a/b rounded down.
func Div(a, b uint64) (uint64, error) {
	if b == 0 {
		return 0, domain.ErrArithmeticOverflow
	}
	return a / b, nil
}

// AddSeconds returns ts+delta for unix timestamps. delta must fit in int64.
func AddSeconds(ts int64, delta uint64) (int64, error) {
	if delta > math.MaxInt64 {
		return 0, domain.ErrArithmeticOverflow
	}
	d := int64(delta)
	if ts > 0 && d > math.MaxInt64-ts {
		return 0, domain.ErrArithmeticOverflow
	}
	return ts + d, nil
}
