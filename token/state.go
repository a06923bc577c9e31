package token

import (
	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

type (
	// Mint holds token info.
	Mint struct {
		// Amount of decimals
		Decimals uint8
		// Total amount of issued tokens
		Supply uint64
		// Account allowed to issue tokens
		MintAuthority util.Uint160
		// Account allowed to freeze token accounts, optional
		FreezeAuthority *util.Uint160
	}

	// Account is a token account holding tokens of a single mint.
	Account struct {
		Mint  util.Uint160
		Owner util.Uint160
		// Active balance
		Amount uint64
		// Delegate may transfer or burn up to DelegatedAmount on behalf of
		// the owner.
		Delegate        util.Uint160
		DelegatedAmount uint64
		Frozen          bool
	}
)

const (
	mintKeyPrefix    = 'm'
	accountKeyPrefix = 'a'
)

func mintKey(id util.Uint160) []byte {
	return append([]byte{mintKeyPrefix}, id.BytesBE()...)
}

func accountKey(id util.Uint160) []byte {
	return append([]byte{accountKeyPrefix}, id.BytesBE()...)
}

// EncodeBinary implements io.Serializable.
func (m *Mint) EncodeBinary(w *io.BinWriter) {
	w.WriteB(m.Decimals)
	w.WriteU64LE(m.Supply)
	w.WriteBytes(m.MintAuthority[:])
	w.WriteBool(m.FreezeAuthority != nil)
	if m.FreezeAuthority != nil {
		w.WriteBytes(m.FreezeAuthority[:])
	}
}

// DecodeBinary implements io.Serializable.
func (m *Mint) DecodeBinary(r *io.BinReader) {
	m.Decimals = r.ReadB()
	m.Supply = r.ReadU64LE()
	r.ReadBytes(m.MintAuthority[:])
	if r.ReadBool() {
		m.FreezeAuthority = new(util.Uint160)
		r.ReadBytes(m.FreezeAuthority[:])
	}
}

// EncodeBinary implements io.Serializable.
func (a *Account) EncodeBinary(w *io.BinWriter) {
	w.WriteBytes(a.Mint[:])
	w.WriteBytes(a.Owner[:])
	w.WriteU64LE(a.Amount)
	w.WriteBytes(a.Delegate[:])
	w.WriteU64LE(a.DelegatedAmount)
	w.WriteBool(a.Frozen)
}

// DecodeBinary implements io.Serializable.
func (a *Account) DecodeBinary(r *io.BinReader) {
	r.ReadBytes(a.Mint[:])
	r.ReadBytes(a.Owner[:])
	a.Amount = r.ReadU64LE()
	r.ReadBytes(a.Delegate[:])
	a.DelegatedAmount = r.ReadU64LE()
	a.Frozen = r.ReadBool()
}

// spend checks that authority may take amount from the account and updates
// the delegation. The owner is always allowed.
func (a *Account) spend(authority util.Uint160, amount uint64) error {
	if a.Frozen {
		return ErrAccountFrozen
	}
	if a.Amount < amount {
		return ErrInsufficientFunds
	}

	if a.Owner.Equals(authority) {
		return nil
	}

	var zero util.Uint160
	if a.Delegate.Equals(zero) || !a.Delegate.Equals(authority) {
		return ErrOwnerMismatch
	}
	if a.DelegatedAmount < amount {
		return ErrInsufficientDelegation
	}

	a.DelegatedAmount -= amount
	if a.DelegatedAmount == 0 {
		a.Delegate = zero
	}

	return nil
}
