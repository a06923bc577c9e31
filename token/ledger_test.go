package token

import (
	"context"
	"math"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var (
	mintID    = util.Uint160{0x01}
	otherMint = util.Uint160{0x02}
	mintAuth  = util.Uint160{0x03}
	freezer   = util.Uint160{0x04}

	alice    = util.Uint160{0x10}
	bob      = util.Uint160{0x11}
	aliceAcc = util.Uint160{0x20}
	bobAcc   = util.Uint160{0x21}
)

func newTestLedger(t *testing.T) *Ledger {
	l := NewLedger(zaptest.NewLogger(t), storage.NewMemCachedStore(storage.NewMemoryStore()))

	fa := freezer
	require.NoError(t, l.InitializeMint(mintID, 6, mintAuth, &fa))
	require.NoError(t, l.CreateAccount(aliceAcc, mintID, alice))
	require.NoError(t, l.CreateAccount(bobAcc, mintID, bob))

	return l
}

func requireBalance(t *testing.T, l *Ledger, acc util.Uint160, expected uint64) {
	b, err := l.BalanceOf(acc)
	require.NoError(t, err)
	require.Equal(t, expected, b)
}

func TestInitializeMint(t *testing.T) {
	l := newTestLedger(t)

	m, err := l.GetMint(mintID)
	require.NoError(t, err)
	require.EqualValues(t, 6, m.Decimals)
	require.Equal(t, mintAuth, m.MintAuthority)
	require.Equal(t, freezer, *m.FreezeAuthority)
	require.Zero(t, m.Supply)

	require.ErrorIs(t, l.InitializeMint(mintID, 9, mintAuth, nil), ErrMintExists)

	_, err = l.GetMint(otherMint)
	require.ErrorIs(t, err, ErrMintNotFound)

	require.ErrorIs(t, l.CreateAccount(aliceAcc, mintID, bob), ErrAccountExists)
	require.ErrorIs(t, l.CreateAccount(util.Uint160{0x30}, otherMint, bob), ErrMintNotFound)

	_, err = l.BalanceOf(util.Uint160{0x31})
	require.ErrorIs(t, err, ErrAccountNotFound)
}

func TestMintTo(t *testing.T) {
	l := newTestLedger(t)

	require.ErrorIs(t, l.MintTo(mintID, aliceAcc, 10, alice, nil), ErrAuthorityMismatch)

	require.NoError(t, l.MintTo(mintID, aliceAcc, 100, mintAuth, []byte("details")))
	requireBalance(t, l, aliceAcc, 100)

	supply, err := l.Supply(mintID)
	require.NoError(t, err)
	require.EqualValues(t, 100, supply)

	require.ErrorIs(t, l.MintTo(mintID, aliceAcc, math.MaxUint64, mintAuth, nil), ErrOverflow)
	requireBalance(t, l, aliceAcc, 100)
}

func TestTransfer(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.MintTo(mintID, aliceAcc, 100, mintAuth, nil))

	t.Run("owner", func(t *testing.T) {
		require.NoError(t, l.Transfer(mintID, aliceAcc, bobAcc, 30, alice, nil))
		requireBalance(t, l, aliceAcc, 70)
		requireBalance(t, l, bobAcc, 30)
	})

	t.Run("not an owner", func(t *testing.T) {
		require.ErrorIs(t, l.Transfer(mintID, aliceAcc, bobAcc, 1, bob, nil), ErrOwnerMismatch)
		requireBalance(t, l, aliceAcc, 70)
	})

	t.Run("not enough assets", func(t *testing.T) {
		require.ErrorIs(t, l.Transfer(mintID, aliceAcc, bobAcc, 71, alice, nil), ErrInsufficientFunds)
	})

	t.Run("self transfer", func(t *testing.T) {
		require.ErrorIs(t, l.Transfer(mintID, aliceAcc, aliceAcc, 1, alice, nil), ErrSelfTransfer)
	})

	t.Run("other mint", func(t *testing.T) {
		require.NoError(t, l.InitializeMint(otherMint, 6, mintAuth, nil))
		acc := util.Uint160{0x40}
		require.NoError(t, l.CreateAccount(acc, otherMint, alice))

		require.ErrorIs(t, l.Transfer(mintID, aliceAcc, acc, 1, alice, nil), ErrMintMismatch)
		require.ErrorIs(t, l.Transfer(otherMint, aliceAcc, acc, 1, alice, nil), ErrMintMismatch)
	})
}

func TestDelegation(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.MintTo(mintID, aliceAcc, 100, mintAuth, nil))

	require.ErrorIs(t, l.Burn(mintID, aliceAcc, 10, mintAuth, nil), ErrOwnerMismatch)
	require.ErrorIs(t, l.Approve(aliceAcc, mintAuth, 50, bob), ErrOwnerMismatch)

	require.NoError(t, l.Approve(aliceAcc, mintAuth, 50, alice))
	require.ErrorIs(t, l.Burn(mintID, aliceAcc, 51, mintAuth, nil), ErrInsufficientDelegation)

	require.NoError(t, l.Burn(mintID, aliceAcc, 20, mintAuth, nil))
	requireBalance(t, l, aliceAcc, 80)

	a, err := l.GetAccount(aliceAcc)
	require.NoError(t, err)
	require.EqualValues(t, 30, a.DelegatedAmount)

	require.NoError(t, l.Transfer(mintID, aliceAcc, bobAcc, 30, mintAuth, nil))
	a, err = l.GetAccount(aliceAcc)
	require.NoError(t, err)
	require.Zero(t, a.DelegatedAmount)
	require.Equal(t, util.Uint160{}, a.Delegate)

	require.ErrorIs(t, l.Transfer(mintID, aliceAcc, bobAcc, 1, mintAuth, nil), ErrOwnerMismatch)

	supply, err := l.Supply(mintID)
	require.NoError(t, err)
	require.EqualValues(t, 80, supply)
}

func TestBurn(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.MintTo(mintID, aliceAcc, 100, mintAuth, nil))

	require.ErrorIs(t, l.Burn(mintID, aliceAcc, 101, alice, nil), ErrInsufficientFunds)
	require.NoError(t, l.Burn(mintID, aliceAcc, 100, alice, nil))
	requireBalance(t, l, aliceAcc, 0)

	supply, err := l.Supply(mintID)
	require.NoError(t, err)
	require.Zero(t, supply)
}

func TestFreeze(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.MintTo(mintID, aliceAcc, 100, mintAuth, nil))

	require.ErrorIs(t, l.SetFrozen(bobAcc, true, alice), ErrAuthorityMismatch)
	require.NoError(t, l.SetFrozen(bobAcc, true, freezer))

	require.ErrorIs(t, l.Transfer(mintID, aliceAcc, bobAcc, 1, alice, nil), ErrAccountFrozen)
	require.ErrorIs(t, l.MintTo(mintID, bobAcc, 1, mintAuth, nil), ErrAccountFrozen)

	require.NoError(t, l.SetFrozen(bobAcc, false, freezer))
	require.NoError(t, l.Transfer(mintID, aliceAcc, bobAcc, 1, alice, nil))
}

func TestMover(t *testing.T) {
	l := newTestLedger(t)
	m := Mover{Ledger: l}
	ctx := context.Background()

	require.NoError(t, m.MintSynthetic(ctx, mintID, aliceAcc, 10, mintAuth, nil))
	require.NoError(t, m.TransferReserve(ctx, mintID, aliceAcc, bobAcc, 4, alice, nil))
	require.NoError(t, m.BurnSynthetic(ctx, mintID, bobAcc, 4, bob, nil))
	requireBalance(t, l, aliceAcc, 6)
	requireBalance(t, l, bobAcc, 0)

	owner, err := m.AccountOwner(ctx, bobAcc)
	require.NoError(t, err)
	require.Equal(t, bob, owner)
	_, err = m.AccountOwner(ctx, util.Uint160{0x99})
	require.ErrorIs(t, err, ErrAccountNotFound)

	newMint := util.Uint160{0x50}
	require.NoError(t, m.InitializeMint(ctx, newMint, 6, mintAuth, nil))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	require.ErrorIs(t, m.MintSynthetic(cancelled, mintID, aliceAcc, 1, mintAuth, nil), context.Canceled)
	requireBalance(t, l, aliceAcc, 6)
}
