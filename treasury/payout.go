package treasury

import "fmt"

// MaxPayoutPercentage is the upper bound of the payout percentage.
const MaxPayoutPercentage = 100

// IsPayoutWindowActive reports whether at least PayoutWindow seconds passed
// since the last payout.
func (r *Record) IsPayoutWindowActive(now int64) bool {
	return elapsedAtLeast(now, r.LastPayoutTime, r.PayoutWindow)
}

// ComputePayout splits revenue into the amount released to the beneficiary,
// floor(revenue*percentage/100), and the retained rest.
func ComputePayout(revenue uint64, percentage uint8) (payout uint64, retained uint64, err error) {
	if percentage > MaxPayoutPercentage {
		return 0, 0, fmt.Errorf("%w: %d", ErrInvalidPayoutPercentage, percentage)
	}

	payout = mulDiv(revenue, uint64(percentage), MaxPayoutPercentage, revenue)

	return payout, revenue - payout, nil
}
