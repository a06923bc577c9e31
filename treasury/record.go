package treasury

import (
	"github.com/nspcc-dev/neo-go/pkg/util"
)

const (
	// MaxSigners is the capacity of the signer set.
	MaxSigners = 5
	// BasisPoints is 100% expressed in basis points.
	BasisPoints = 10_000
	// SecondsPerDay is the length of the rolling volume window.
	SecondsPerDay = 86_400
	// DefaultPayoutWindow is one week.
	DefaultPayoutWindow = 7 * SecondsPerDay
)

// Record is the persisted state of a single treasury. It is owned by the
// ledger host and mutated only by the Processor: every operation reads the
// full record, changes a subset of fields and writes the full record back.
type Record struct {
	Initialized bool

	// Signers is an ordered set of treasury signers, at most MaxSigners.
	Signers []util.Uint160
	// Threshold is the number of co-signers required by the treasury policy.
	// It is validated against Signers but not enforced per request here, see
	// ValidateSignatures.
	Threshold uint8

	SyntheticMint  util.Uint160
	ReserveMint    util.Uint160
	ReserveAccount util.Uint160

	// Circulation is the outstanding amount of the synthetic unit.
	Circulation uint64
	// Reserves tracks the reference asset balance of ReserveAccount.
	Reserves uint64

	Paused             bool
	EmergencyAuthority util.Uint160

	LastPayoutTime int64
	PayoutWindow   int64
	// MinReserveRatio is the solvency floor in basis points.
	MinReserveRatio uint16

	// RevenueAccount holds the synthetic revenue of the beneficiary burnt on
	// payouts.
	RevenueAccount util.Uint160
	// BeneficiaryReserveAccount receives the reference asset on payouts.
	BeneficiaryReserveAccount util.Uint160

	TotalRevenueProcessed uint64
	PayoutCount           uint64

	ComplianceAuthority  util.Uint160
	MaxTransactionAmount uint64
	DailyVolumeLimit     uint64
	CurrentDailyVolume   uint64
	LastVolumeReset      int64
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() Record {
	res := *r
	res.Signers = append([]util.Uint160(nil), r.Signers...)
	return res
}

// IsSigner checks whether acc is a member of the signer set.
func (r *Record) IsSigner(acc util.Uint160) bool {
	for i := range r.Signers {
		if r.Signers[i].Equals(acc) {
			return true
		}
	}
	return false
}

// ValidateSignatures checks that provided contains at least Threshold
// distinct members of the signer set.
//
// No operation requires this to hold: collecting Threshold approvals is a
// policy of the request submission layer (see cosign package). The result is
// stored in payout audit entries.
func (r *Record) ValidateSignatures(provided []util.Uint160) bool {
	if r.Threshold == 0 || len(provided) < int(r.Threshold) {
		return false
	}

	return len(r.signerMembers(provided)) >= int(r.Threshold)
}

// signerMembers returns distinct members of the signer set found in
// provided, in signer set order.
func (r *Record) signerMembers(provided []util.Uint160) []util.Uint160 {
	var res []util.Uint160
	for i := range r.Signers {
		for j := range provided {
			if r.Signers[i].Equals(provided[j]) {
				res = append(res, r.Signers[i])
				break
			}
		}
	}
	return res
}

// validateSignerSet checks 1 <= threshold <= len(signers) <= MaxSigners and
// uniqueness of signers.
func validateSignerSet(signers []util.Uint160, threshold uint8) error {
	switch {
	case len(signers) == 0:
		return ErrInvalidSignatureThreshold
	case len(signers) > MaxSigners:
		return ErrInvalidSignatureThreshold
	case threshold == 0 || int(threshold) > len(signers):
		return ErrInvalidSignatureThreshold
	}

	for i := range signers {
		for j := i + 1; j < len(signers); j++ {
			if signers[i].Equals(signers[j]) {
				return ErrInvalidSignatureThreshold
			}
		}
	}

	return nil
}
