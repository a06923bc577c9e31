package treasury

import "fmt"

// volumeWindowExpired reports whether the rolling daily window that started
// at LastVolumeReset is over at now.
func (r *Record) volumeWindowExpired(now int64) bool {
	return elapsedAtLeast(now, r.LastVolumeReset, SecondsPerDay)
}

// CheckCompliance checks amount against the per-transaction cap and the
// rolling daily volume limit. When the current window is over, the volume is
// considered reset and only amount itself is checked against the limit.
func (r *Record) CheckCompliance(amount uint64, now int64) error {
	if amount > r.MaxTransactionAmount {
		return fmt.Errorf("%w: %d > %d", ErrTransactionLimitExceeded, amount, r.MaxTransactionAmount)
	}

	if r.volumeWindowExpired(now) {
		if amount > r.DailyVolumeLimit {
			return fmt.Errorf("%w: %d > %d", ErrDailyVolumeExceeded, amount, r.DailyVolumeLimit)
		}
		return nil
	}

	total, err := addU64(r.CurrentDailyVolume, amount)
	if err != nil {
		return err
	}
	if total > r.DailyVolumeLimit {
		return fmt.Errorf("%w: %d + %d > %d", ErrDailyVolumeExceeded, r.CurrentDailyVolume, amount, r.DailyVolumeLimit)
	}

	return nil
}

// RecordVolume accounts amount in the rolling window using the same day
// boundary rule as CheckCompliance: an expired window is restarted at now
// with amount, otherwise amount is accumulated.
func (r *Record) RecordVolume(amount uint64, now int64) error {
	if r.volumeWindowExpired(now) {
		r.CurrentDailyVolume = amount
		r.LastVolumeReset = now
		return nil
	}

	total, err := addU64(r.CurrentDailyVolume, amount)
	if err != nil {
		return err
	}
	r.CurrentDailyVolume = total

	return nil
}

// tracksVolume defines which operations are accounted in the rolling daily
// window. Only minting is: burns, deposits, withdrawals and payouts are
// limited by their own guards and do not consume the daily volume.
func tracksVolume(k Kind) bool {
	return k == KindMintTokens
}
