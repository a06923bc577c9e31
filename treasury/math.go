package treasury

import (
	"math/bits"

	"github.com/holiman/uint256"
)

func addU64(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrNumericalOverflow
	}
	return sum, nil
}

func subU64(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, ErrNumericalOverflow
	}
	return diff, nil
}

// elapsedAtLeast reports whether now-since >= d. Differences that do not fit
// into int64 are resolved by the sign of the real difference.
func elapsedAtLeast(now, since, d int64) bool {
	diff := now - since
	if (since > 0 && diff > now) || (since < 0 && diff < now) {
		return now > since
	}
	return diff >= d
}

// mulDiv returns floor(a*b/c) computed without intermediate overflow. The
// result is saturated at max.
func mulDiv(a, b, c, max uint64) uint64 {
	v := new(uint256.Int).Mul(uint256.NewInt(a), uint256.NewInt(b))
	v.Div(v, uint256.NewInt(c))
	if !v.IsUint64() || v.Uint64() > max {
		return max
	}
	return v.Uint64()
}
