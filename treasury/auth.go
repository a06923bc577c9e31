package treasury

import "fmt"

type capability uint8

const (
	// capWitness requires the caller's signature only.
	capWitness capability = iota
	// capSigner requires the caller to be a member of the signer set.
	capSigner
	// capEmergency requires the caller to be the emergency authority.
	capEmergency
	// capCompliance requires the caller to be the compliance authority.
	capCompliance
)

// requiredCapability maps operations to the capability of the caller.
//
// Mint, burn and deposit are user-facing: the caller moves its own funds, so
// the signature is enough (burn additionally checks the source owner).
// Withdrawals and payouts release the pooled reserve account which belongs to
// no single caller, so they need a treasury signer. The emergency authority is a separate
// capability and is never derived from the signer set.
func requiredCapability(k Kind) capability {
	switch k {
	case KindInitializeTreasury, KindMintTokens, KindBurnTokens, KindDeposit:
		return capWitness
	case KindEmergencyPause, KindEmergencyUnpause:
		return capEmergency
	case KindUpdateComplianceLimits, KindAuditReserves:
		return capCompliance
	default:
		return capSigner
	}
}

// authorize decides whether the request caller may invoke an operation of
// the given kind on rec. Signatures are verified by the host; here only their
// presence is checked.
func authorize(req Request, rec *Record, k Kind) error {
	if !req.witnessed(req.Caller) {
		return ErrMissingSignature
	}

	switch requiredCapability(k) {
	case capSigner:
		if !rec.IsSigner(req.Caller) {
			return fmt.Errorf("%w: %s is not a treasury signer", ErrUnauthorizedSigner, req.Caller.StringLE())
		}
	case capEmergency:
		if !rec.EmergencyAuthority.Equals(req.Caller) {
			return fmt.Errorf("%w: %s is not the emergency authority", ErrUnauthorizedSigner, req.Caller.StringLE())
		}
	case capCompliance:
		if !rec.ComplianceAuthority.Equals(req.Caller) {
			return fmt.Errorf("%w: %s is not the compliance authority", ErrUnauthorizedSigner, req.Caller.StringLE())
		}
	}

	return nil
}
