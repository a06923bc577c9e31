/*
Package token implements fungible tokens stored in a neo-go key-value store.

Every token has a Mint with the issuing authority and the total supply.
Tokens are held by Accounts, each belonging to a single mint and owned by a
single owner. Owners may delegate spending of a part of their balance to
another account.
*/
package token

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/reserve-treasury/common"
	"go.uber.org/zap"
)

// Store is a part of neo-go storage used by the Ledger.
type Store interface {
	common.Getter
	common.Putter
}

// Ledger provides token operations over a Store. It is not safe for
// concurrent use: callers are expected to use a separate store scope per
// operation.
type Ledger struct {
	log *zap.Logger
	st  Store
}

// NewLedger returns a Ledger operating on st.
func NewLedger(log *zap.Logger, st Store) *Ledger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ledger{log: log, st: st}
}

// InitializeMint creates a new mint with zero supply.
func (l *Ledger) InitializeMint(id util.Uint160, decimals uint8, mintAuthority util.Uint160, freezeAuthority *util.Uint160) error {
	_, err := l.GetMint(id)
	if err == nil {
		return fmt.Errorf("%w: %s", ErrMintExists, address.Uint160ToString(id))
	}
	if !errors.Is(err, ErrMintNotFound) {
		return err
	}

	m := Mint{
		Decimals:      decimals,
		MintAuthority: mintAuthority,
	}
	if freezeAuthority != nil {
		fa := *freezeAuthority
		m.FreezeAuthority = &fa
	}

	return common.SetSerialized(l.st, mintKey(id), &m)
}

// CreateAccount creates an empty account of the mint.
func (l *Ledger) CreateAccount(id, mint, owner util.Uint160) error {
	if _, err := l.GetMint(mint); err != nil {
		return err
	}

	_, err := l.GetAccount(id)
	if err == nil {
		return fmt.Errorf("%w: %s", ErrAccountExists, address.Uint160ToString(id))
	}
	if !errors.Is(err, ErrAccountNotFound) {
		return err
	}

	return common.SetSerialized(l.st, accountKey(id), &Account{Mint: mint, Owner: owner})
}

// GetMint returns mint info.
func (l *Ledger) GetMint(id util.Uint160) (Mint, error) {
	var m Mint
	ok, err := common.GetSerialized(l.st, mintKey(id), &m)
	if err != nil {
		return Mint{}, err
	}
	if !ok {
		return Mint{}, ErrMintNotFound
	}
	return m, nil
}

// GetAccount returns token account info.
func (l *Ledger) GetAccount(id util.Uint160) (Account, error) {
	var a Account
	ok, err := common.GetSerialized(l.st, accountKey(id), &a)
	if err != nil {
		return Account{}, err
	}
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return a, nil
}

// BalanceOf returns the balance of the account.
func (l *Ledger) BalanceOf(id util.Uint160) (uint64, error) {
	a, err := l.GetAccount(id)
	if err != nil {
		return 0, err
	}
	return a.Amount, nil
}

// Supply returns the total amount of issued tokens of the mint.
func (l *Ledger) Supply(mint util.Uint160) (uint64, error) {
	m, err := l.GetMint(mint)
	if err != nil {
		return 0, err
	}
	return m.Supply, nil
}

// accountOf returns the account checking that it belongs to the mint.
func (l *Ledger) accountOf(id, mint util.Uint160) (Account, error) {
	a, err := l.GetAccount(id)
	if err != nil {
		return Account{}, fmt.Errorf("%w: %s", err, address.Uint160ToString(id))
	}
	if !a.Mint.Equals(mint) {
		return Account{}, fmt.Errorf("%w: %s", ErrMintMismatch, address.Uint160ToString(id))
	}
	return a, nil
}

// Transfer moves amount between two accounts of the mint. authority must be
// the owner or the delegate of the source account.
func (l *Ledger) Transfer(mint, from, to util.Uint160, amount uint64, authority util.Uint160, details []byte) error {
	if from.Equals(to) {
		return ErrSelfTransfer
	}

	src, err := l.accountOf(from, mint)
	if err != nil {
		return err
	}
	dst, err := l.accountOf(to, mint)
	if err != nil {
		return err
	}
	if dst.Frozen {
		return fmt.Errorf("%w: %s", ErrAccountFrozen, address.Uint160ToString(to))
	}

	if err := src.spend(authority, amount); err != nil {
		return fmt.Errorf("can't transfer assets from %s: %w", address.Uint160ToString(from), err)
	}

	sum, carry := bits.Add64(dst.Amount, amount, 0)
	if carry != 0 {
		return ErrOverflow
	}

	src.Amount -= amount
	dst.Amount = sum

	if err := common.SetSerialized(l.st, accountKey(from), &src); err != nil {
		return err
	}
	if err := common.SetSerialized(l.st, accountKey(to), &dst); err != nil {
		return err
	}

	l.log.Debug("assets were transferred",
		zap.String("from", address.Uint160ToString(from)),
		zap.String("to", address.Uint160ToString(to)),
		zap.Uint64("amount", amount),
		zap.Binary("details", details))

	return nil
}

// MintTo issues amount of tokens to the account. authority must be the mint
// authority.
func (l *Ledger) MintTo(mint, to util.Uint160, amount uint64, authority util.Uint160, details []byte) error {
	m, err := l.GetMint(mint)
	if err != nil {
		return err
	}
	if !m.MintAuthority.Equals(authority) {
		return fmt.Errorf("%w: %s can't mint", ErrAuthorityMismatch, address.Uint160ToString(authority))
	}

	dst, err := l.accountOf(to, mint)
	if err != nil {
		return err
	}
	if dst.Frozen {
		return fmt.Errorf("%w: %s", ErrAccountFrozen, address.Uint160ToString(to))
	}

	supply, carry := bits.Add64(m.Supply, amount, 0)
	if carry != 0 {
		return ErrOverflow
	}
	balance, carry := bits.Add64(dst.Amount, amount, 0)
	if carry != 0 {
		return ErrOverflow
	}

	m.Supply = supply
	dst.Amount = balance

	if err := common.SetSerialized(l.st, mintKey(mint), &m); err != nil {
		return err
	}
	if err := common.SetSerialized(l.st, accountKey(to), &dst); err != nil {
		return err
	}

	l.log.Debug("assets were minted",
		zap.String("to", address.Uint160ToString(to)),
		zap.Uint64("amount", amount),
		zap.Binary("details", details))

	return nil
}

// Burn destroys amount of tokens held by the account. authority must be the
// owner or the delegate of the account.
func (l *Ledger) Burn(mint, from util.Uint160, amount uint64, authority util.Uint160, details []byte) error {
	m, err := l.GetMint(mint)
	if err != nil {
		return err
	}

	src, err := l.accountOf(from, mint)
	if err != nil {
		return err
	}
	if err := src.spend(authority, amount); err != nil {
		return fmt.Errorf("can't burn assets of %s: %w", address.Uint160ToString(from), err)
	}
	if m.Supply < amount {
		return fmt.Errorf("%w: negative supply after burn", ErrOverflow)
	}

	src.Amount -= amount
	m.Supply -= amount

	if err := common.SetSerialized(l.st, mintKey(mint), &m); err != nil {
		return err
	}
	if err := common.SetSerialized(l.st, accountKey(from), &src); err != nil {
		return err
	}

	l.log.Debug("assets were burned",
		zap.String("from", address.Uint160ToString(from)),
		zap.Uint64("amount", amount),
		zap.Binary("details", details))

	return nil
}

// Approve allows delegate to spend up to amount from the account. Zero
// amount revokes the delegation.
func (l *Ledger) Approve(id, delegate util.Uint160, amount uint64, owner util.Uint160) error {
	a, err := l.GetAccount(id)
	if err != nil {
		return err
	}
	if !a.Owner.Equals(owner) {
		return ErrOwnerMismatch
	}

	if amount == 0 {
		a.Delegate = util.Uint160{}
	} else {
		a.Delegate = delegate
	}
	a.DelegatedAmount = amount

	return common.SetSerialized(l.st, accountKey(id), &a)
}

// SetFrozen freezes or thaws the account. authority must be the freeze
// authority of the mint.
func (l *Ledger) SetFrozen(id util.Uint160, frozen bool, authority util.Uint160) error {
	a, err := l.GetAccount(id)
	if err != nil {
		return err
	}
	m, err := l.GetMint(a.Mint)
	if err != nil {
		return err
	}
	if m.FreezeAuthority == nil || !m.FreezeAuthority.Equals(authority) {
		return fmt.Errorf("%w: %s can't freeze", ErrAuthorityMismatch, address.Uint160ToString(authority))
	}

	a.Frozen = frozen

	return common.SetSerialized(l.st, accountKey(id), &a)
}
