package treasury

import "github.com/nspcc-dev/neo-go/pkg/util"

// Maximum lengths of free-text fields of audit entries.
const (
	MaxReferenceLen        = 88
	MaxComplianceNotesLen  = 256
	MaxReserveAuditNoteLen = 512
)

// TransactionType is a kind of value-moving operation in compliance entries.
type TransactionType uint8

const (
	TransactionMint TransactionType = iota
	TransactionBurn
	TransactionDeposit
	TransactionWithdraw
	TransactionPayout
)

var transactionTypeNames = [...]string{"mint", "burn", "deposit", "withdraw", "payout"}

func (t TransactionType) String() string {
	if int(t) < len(transactionTypeNames) {
		return transactionTypeNames[t]
	}
	return "unknown"
}

func transactionTypeOf(k Kind) (TransactionType, bool) {
	switch k {
	case KindMintTokens:
		return TransactionMint, true
	case KindBurnTokens:
		return TransactionBurn, true
	case KindDeposit:
		return TransactionDeposit, true
	case KindWithdraw:
		return TransactionWithdraw, true
	case KindWeeklyPayout:
		return TransactionPayout, true
	}
	return 0, false
}

// AuditStatus is a result of a reserve audit.
type AuditStatus uint8

const (
	AuditPassed AuditStatus = iota
	AuditFailed
	AuditUnderReview
)

var auditStatusNames = [...]string{"passed", "failed", "under_review"}

func (s AuditStatus) String() string {
	if int(s) < len(auditStatusNames) {
		return auditStatusNames[s]
	}
	return "unknown"
}

// PayoutRecord is an append-only entry written on every successful payout.
type PayoutRecord struct {
	PayoutID         uint64
	Timestamp        int64
	RevenueAmount    uint64
	PayoutPercentage uint8
	SyntheticBurned  uint64
	ReserveReleased  uint64
	// Reference of the submitted transaction.
	Reference string
	// ComplianceApproved is set when the request carried signatures of at
	// least Threshold treasury signers.
	ComplianceApproved bool
	// AuthorizedSigners are treasury signers witnessed in the request.
	AuthorizedSigners []util.Uint160
}

// ComplianceRecord is an append-only entry written for large transactions.
type ComplianceRecord struct {
	TransactionID      uint64
	UserWallet         util.Uint160
	Amount             uint64
	Type               TransactionType
	Timestamp          int64
	KYCVerified        bool
	AMLCleared         bool
	ComplianceApproved bool
	// RiskScore is in [0, 100].
	RiskScore uint8
	Notes     string
}

// ReserveAuditRecord is an append-only snapshot of the reserves.
type ReserveAuditRecord struct {
	AuditID      uint64
	Timestamp    int64
	Circulation  uint64
	Reserves     uint64
	ReserveRatio uint16
	Status       AuditStatus
	Auditor      util.Uint160
	Notes        string
}
