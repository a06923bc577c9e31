package treasury

import (
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Kind enumerates treasury operations.
type Kind uint8

const (
	KindInitializeTreasury Kind = iota + 1
	KindInitializeToken
	KindMintTokens
	KindBurnTokens
	KindDeposit
	KindWithdraw
	KindWeeklyPayout
	KindEmergencyPause
	KindEmergencyUnpause
	KindUpdateTreasury
	KindUpdateComplianceLimits
	KindAuditReserves
)

var kindNames = map[Kind]string{
	KindInitializeTreasury:     "initializeTreasury",
	KindInitializeToken:        "initializeToken",
	KindMintTokens:             "mintTokens",
	KindBurnTokens:             "burnTokens",
	KindDeposit:                "depositUsdc",
	KindWithdraw:               "withdrawUsdc",
	KindWeeklyPayout:           "weeklyPayout",
	KindEmergencyPause:         "emergencyPause",
	KindEmergencyUnpause:       "emergencyUnpause",
	KindUpdateTreasury:         "updateTreasury",
	KindUpdateComplianceLimits: "updateComplianceLimits",
	KindAuditReserves:          "auditReserves",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// MovesValue reports whether operations of the kind move the synthetic unit
// or the reference asset. Such operations are blocked by the emergency pause.
func (k Kind) MovesValue() bool {
	switch k {
	case KindMintTokens, KindBurnTokens, KindDeposit, KindWithdraw, KindWeeklyPayout:
		return true
	}
	return false
}

// Operation is a closed set of treasury operations. Implementations are the
// exported structures of this package only.
type Operation interface {
	Kind() Kind
	operation()
}

// Parameters groups administrative settings of a new treasury.
type Parameters struct {
	SyntheticMint  util.Uint160
	ReserveMint    util.Uint160
	ReserveAccount util.Uint160

	// EmergencyAuthority defaults to the initializer when unset.
	EmergencyAuthority util.Uint160
	// ComplianceAuthority defaults to the initializer when unset.
	ComplianceAuthority util.Uint160

	RevenueAccount            util.Uint160
	BeneficiaryReserveAccount util.Uint160

	PayoutWindow         int64
	MinReserveRatio      uint16
	MaxTransactionAmount uint64
	DailyVolumeLimit     uint64
}

type (
	// InitializeTreasury creates the treasury record.
	InitializeTreasury struct {
		Signers   []util.Uint160
		Threshold uint8
		Params    Parameters
	}

	// InitializeToken initializes the synthetic mint with the program
	// authority as its mint authority.
	InitializeToken struct {
		Decimals        uint8
		FreezeAuthority *util.Uint160
	}

	// MintTokens takes Amount of the reference asset from Source and mints
	// the same amount of the synthetic unit to Destination.
	MintTokens struct {
		Amount      uint64
		Source      util.Uint160
		Destination util.Uint160
	}

	// BurnTokens burns Amount of the synthetic unit from Source and releases
	// the same amount of the reference asset to Destination.
	BurnTokens struct {
		Amount      uint64
		Source      util.Uint160
		Destination util.Uint160
	}

	// Deposit adds Amount of the reference asset from Source to the reserves.
	Deposit struct {
		Amount uint64
		Source util.Uint160
	}

	// Withdraw releases Amount of the reference asset to Destination.
	Withdraw struct {
		Amount      uint64
		Destination util.Uint160
	}

	// WeeklyPayout converts PayoutPercentage of RevenueAmount into the
	// reference asset for the beneficiary.
	WeeklyPayout struct {
		RevenueAmount    uint64
		PayoutPercentage uint8
	}

	EmergencyPause struct{}

	EmergencyUnpause struct{}

	// UpdateTreasury replaces the signer set and the threshold.
	UpdateTreasury struct {
		Signers   []util.Uint160
		Threshold uint8
	}

	// UpdateComplianceLimits replaces compliance caps.
	UpdateComplianceLimits struct {
		MaxTransactionAmount uint64
		DailyVolumeLimit     uint64
	}

	// AuditReserves appends a reserve audit entry.
	AuditReserves struct {
		Notes string
	}
)

func (InitializeTreasury) Kind() Kind     { return KindInitializeTreasury }
func (InitializeToken) Kind() Kind        { return KindInitializeToken }
func (MintTokens) Kind() Kind             { return KindMintTokens }
func (BurnTokens) Kind() Kind             { return KindBurnTokens }
func (Deposit) Kind() Kind                { return KindDeposit }
func (Withdraw) Kind() Kind               { return KindWithdraw }
func (WeeklyPayout) Kind() Kind           { return KindWeeklyPayout }
func (EmergencyPause) Kind() Kind         { return KindEmergencyPause }
func (EmergencyUnpause) Kind() Kind       { return KindEmergencyUnpause }
func (UpdateTreasury) Kind() Kind         { return KindUpdateTreasury }
func (UpdateComplianceLimits) Kind() Kind { return KindUpdateComplianceLimits }
func (AuditReserves) Kind() Kind          { return KindAuditReserves }

func (InitializeTreasury) operation()     {}
func (InitializeToken) operation()        {}
func (MintTokens) operation()             {}
func (BurnTokens) operation()             {}
func (Deposit) operation()                {}
func (Withdraw) operation()               {}
func (WeeklyPayout) operation()           {}
func (EmergencyPause) operation()         {}
func (EmergencyUnpause) operation()       {}
func (UpdateTreasury) operation()         {}
func (UpdateComplianceLimits) operation() {}
func (AuditReserves) operation()          {}

// Attestation carries compliance facts about the caller checked outside of
// the treasury.
type Attestation struct {
	KYCVerified bool
	AMLCleared  bool
	Notes       string
}

// Request is a single operation addressed to a treasury.
type Request struct {
	Caller util.Uint160
	// Witnesses is a set of accounts whose signatures are present in the
	// request, as verified by the ledger host.
	Witnesses []util.Uint160
	// Reference identifies the submitted transaction in audit entries,
	// at most MaxReferenceLen characters.
	Reference   string
	Attestation *Attestation
	Op          Operation
}

// witnessed checks whether acc signed the request.
func (r Request) witnessed(acc util.Uint160) bool {
	for i := range r.Witnesses {
		if r.Witnesses[i].Equals(acc) {
			return true
		}
	}
	return false
}
