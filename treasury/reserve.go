package treasury

import "fmt"

// ReserveRatio returns reserves to circulation ratio in basis points capped
// at BasisPoints. It is BasisPoints when nothing is in circulation.
func (r *Record) ReserveRatio() uint16 {
	return reserveRatio(r.Reserves, r.Circulation)
}

func reserveRatio(reserves, circulation uint64) uint16 {
	if circulation == 0 {
		return BasisPoints
	}
	return uint16(mulDiv(reserves, BasisPoints, circulation, BasisPoints))
}

// IsReserveRatioHealthy checks the current ratio against MinReserveRatio.
func (r *Record) IsReserveRatioHealthy() bool {
	return r.ReserveRatio() >= r.MinReserveRatio
}

// HasSufficientReserves checks that reserves cover amount.
func (r *Record) HasSufficientReserves(amount uint64) bool {
	return r.Reserves >= amount
}

// CheckWithdrawal checks that amount can leave the reserves: they must cover
// it and, while anything is in circulation, the resulting ratio must not drop
// below MinReserveRatio.
func (r *Record) CheckWithdrawal(amount uint64) error {
	if !r.HasSufficientReserves(amount) {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientReserves, r.Reserves, amount)
	}

	if r.Circulation == 0 {
		return nil
	}

	ratio := reserveRatio(r.Reserves-amount, r.Circulation)
	if ratio < r.MinReserveRatio {
		return fmt.Errorf("%w: %d < %d", ErrReserveRatioBelowMinimum, ratio, r.MinReserveRatio)
	}

	return nil
}
