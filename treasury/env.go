package treasury

import (
	"context"

	"github.com/nspcc-dev/neo-go/pkg/util"
)

// TokenMover executes primitive token operations. Every call either fully
// succeeds or returns an error, in which case the whole treasury operation is
// discarded by the host.
type TokenMover interface {
	// InitializeMint creates a mint with the given authorities.
	InitializeMint(ctx context.Context, mint util.Uint160, decimals uint8, mintAuthority util.Uint160, freezeAuthority *util.Uint160) error
	// TransferReserve moves amount of the reference asset between accounts of
	// the mint. authority must own the source account.
	TransferReserve(ctx context.Context, mint, from, to util.Uint160, amount uint64, authority util.Uint160, details []byte) error
	// MintSynthetic issues amount of the synthetic unit to the account.
	MintSynthetic(ctx context.Context, mint, to util.Uint160, amount uint64, authority util.Uint160, details []byte) error
	// AccountOwner returns the owner of the token account.
	AccountOwner(ctx context.Context, account util.Uint160) (util.Uint160, error)
	// BurnSynthetic destroys amount of the synthetic unit held by the account.
	BurnSynthetic(ctx context.Context, mint, from util.Uint160, amount uint64, authority util.Uint160, details []byte) error
}

// Clock returns current time in seconds since epoch. It is monotonic.
type Clock interface {
	Now() int64
}

// AuditLog stores append-only audit entries. Identifiers of compliance and
// reserve audit entries are assigned by the log.
type AuditLog interface {
	AppendPayout(PayoutRecord) error
	AppendCompliance(ComplianceRecord) (uint64, error)
	AppendReserveAudit(ReserveAuditRecord) (uint64, error)
}

// Env groups collaborators of a single operation. All of them must operate
// within the same atomic scope of the host as the record itself.
type Env struct {
	Mover TokenMover
	Clock Clock
	Audit AuditLog
	// Authority is the program-controlled identity of the treasury. It is the
	// mint authority of the synthetic unit and the owner of the reserve
	// account.
	Authority util.Uint160
}
