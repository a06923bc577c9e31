package token

import (
	"context"

	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Mover executes treasury token primitives on a Ledger. The same ledger holds
// both the reference asset and the synthetic unit.
type Mover struct {
	Ledger *Ledger
}

// InitializeMint implements treasury.TokenMover.
func (m Mover) InitializeMint(ctx context.Context, mint util.Uint160, decimals uint8, mintAuthority util.Uint160, freezeAuthority *util.Uint160) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.Ledger.InitializeMint(mint, decimals, mintAuthority, freezeAuthority)
}

// TransferReserve implements treasury.TokenMover.
func (m Mover) TransferReserve(ctx context.Context, mint, from, to util.Uint160, amount uint64, authority util.Uint160, details []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.Ledger.Transfer(mint, from, to, amount, authority, details)
}

// MintSynthetic implements treasury.TokenMover.
func (m Mover) MintSynthetic(ctx context.Context, mint, to util.Uint160, amount uint64, authority util.Uint160, details []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.Ledger.MintTo(mint, to, amount, authority, details)
}

// AccountOwner implements treasury.TokenMover.
func (m Mover) AccountOwner(ctx context.Context, account util.Uint160) (util.Uint160, error) {
	if err := ctx.Err(); err != nil {
		return util.Uint160{}, err
	}
	acc, err := m.Ledger.GetAccount(account)
	if err != nil {
		return util.Uint160{}, err
	}
	return acc.Owner, nil
}

// BurnSynthetic implements treasury.TokenMover.
func (m Mover) BurnSynthetic(ctx context.Context, mint, from util.Uint160, amount uint64, authority util.Uint160, details []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.Ledger.Burn(mint, from, amount, authority, details)
}
