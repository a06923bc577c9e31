package dump

import (
	"fmt"
	"math/big"

	"github.com/nspcc-dev/reserve-treasury/treasury"
	"github.com/shopspring/decimal"
)

// FormatAmount renders amount of base units as a decimal number with the
// given precision, e.g. 1500000 with 6 decimals is "1.5".
func FormatAmount(amount uint64, decimals uint8) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(amount), -int32(decimals)).String()
}

// ParseAmount is the inverse of FormatAmount. It fails on values which can't
// be represented in base units exactly.
func ParseAmount(s string, decimals uint8) (uint64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount '%s': %w", s, err)
	}

	d = d.Shift(int32(decimals))
	if !d.IsInteger() || d.IsNegative() {
		return 0, fmt.Errorf("invalid amount '%s': not a whole number of base units", s)
	}

	v := d.BigInt()
	if !v.IsUint64() {
		return 0, fmt.Errorf("invalid amount '%s': out of range", s)
	}

	return v.Uint64(), nil
}

// FormatRatio renders a ratio in basis points as a percentage,
// e.g. 10000 is "100.00%".
func FormatRatio(bp uint16) string {
	return decimal.New(int64(bp), -2).StringFixed(2) + "%"
}

func parseTransactionType(s string) (treasury.TransactionType, error) {
	for t := treasury.TransactionMint; t <= treasury.TransactionPayout; t++ {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown transaction type '%s'", s)
}

func parseAuditStatus(s string) (treasury.AuditStatus, error) {
	for st := treasury.AuditPassed; st <= treasury.AuditUnderReview; st++ {
		if st.String() == s {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown audit status '%s'", s)
}
