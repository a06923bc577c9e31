package host

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/reserve-treasury/token"
	"github.com/nspcc-dev/reserve-treasury/treasury"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const startTime = 1_700_000_000

var (
	treasuryID = util.Uint160{0x7E}
	issuer     = util.Uint160{0x01}

	reserveMint   = util.Uint160{0x10}
	syntheticMint = util.Uint160{0x11}

	reserveAccount     = util.Uint160{0x20}
	userReserve        = util.Uint160{0x21}
	userSynthetic      = util.Uint160{0x22}
	revenueAccount     = util.Uint160{0x23}
	beneficiaryReserve = util.Uint160{0x24}
)

type testEnv struct {
	t     *testing.T
	h     *Host
	clock *ManualClock

	signerA, signerB, user, beneficiary *keys.PrivateKey
}

func newKey(t *testing.T) *keys.PrivateKey {
	k, err := keys.NewPrivateKey()
	require.NoError(t, err)
	return k
}

func account(k *keys.PrivateKey) util.Uint160 {
	return k.PublicKey().GetScriptHash()
}

// newTestEnv returns a host with an initialized treasury, the synthetic mint
// and funded user accounts.
func newTestEnv(t *testing.T, cfg treasury.Config) *testEnv {
	e := &testEnv{
		t:           t,
		clock:       NewManualClock(startTime),
		signerA:     newKey(t),
		signerB:     newKey(t),
		user:        newKey(t),
		beneficiary: newKey(t),
	}
	e.h = New(zaptest.NewLogger(t), storage.NewMemoryStore(), e.clock, cfg)

	require.NoError(t, e.h.CreateTreasury(treasuryID, treasury.RecordSize))

	_, err := e.submit(e.signerA, treasury.InitializeTreasury{
		Signers:   []util.Uint160{account(e.signerA), account(e.signerB)},
		Threshold: 2,
		Params: treasury.Parameters{
			SyntheticMint:             syntheticMint,
			ReserveMint:               reserveMint,
			ReserveAccount:            reserveAccount,
			RevenueAccount:            revenueAccount,
			BeneficiaryReserveAccount: beneficiaryReserve,
			PayoutWindow:              treasury.DefaultPayoutWindow,
			MinReserveRatio:           treasury.BasisPoints,
			MaxTransactionAmount:      1_000_000,
			DailyVolumeLimit:          10_000_000,
		},
	})
	require.NoError(t, err)

	_, err = e.submit(e.signerA, treasury.InitializeToken{Decimals: 6})
	require.NoError(t, err)

	authority := e.h.Authority(treasuryID)
	require.NoError(t, e.h.UpdateTokens(func(l *token.Ledger) error {
		require.NoError(t, l.InitializeMint(reserveMint, 6, issuer, nil))
		require.NoError(t, l.CreateAccount(reserveAccount, reserveMint, authority))
		require.NoError(t, l.CreateAccount(userReserve, reserveMint, account(e.user)))
		require.NoError(t, l.CreateAccount(userSynthetic, syntheticMint, account(e.user)))
		require.NoError(t, l.CreateAccount(revenueAccount, syntheticMint, account(e.beneficiary)))
		require.NoError(t, l.CreateAccount(beneficiaryReserve, reserveMint, account(e.beneficiary)))
		return l.MintTo(reserveMint, userReserve, 5_000_000, issuer, nil)
	}))

	return e
}

func (e *testEnv) request(caller *keys.PrivateKey, op treasury.Operation, cosigners ...*keys.PrivateKey) SignedRequest {
	req := SignedRequest{
		Treasury: treasuryID,
		Caller:   account(caller),
		Nonce:    uuid.New(),
		Op:       op,
	}
	for _, k := range append([]*keys.PrivateKey{caller}, cosigners...) {
		require.NoError(e.t, req.Sign(k))
	}
	return req
}

func (e *testEnv) submit(caller *keys.PrivateKey, op treasury.Operation, cosigners ...*keys.PrivateKey) (*treasury.Receipt, error) {
	return e.h.Submit(context.Background(), e.request(caller, op, cosigners...))
}

func (e *testEnv) balance(acc util.Uint160) uint64 {
	b, err := e.h.Tokens().BalanceOf(acc)
	require.NoError(e.t, err)
	return b
}

func (e *testEnv) record() treasury.Record {
	rec, err := e.h.Treasury(treasuryID)
	require.NoError(e.t, err)
	return rec
}

func TestCreateTreasury(t *testing.T) {
	h := New(zaptest.NewLogger(t), storage.NewMemoryStore(), NewManualClock(startTime), treasury.Config{})

	require.ErrorIs(t, h.CreateTreasury(treasuryID, treasury.RecordSize-1), treasury.ErrNotRentExempt)
	_, err := h.Treasury(treasuryID)
	require.ErrorIs(t, err, ErrTreasuryNotFound)

	require.NoError(t, h.CreateTreasury(treasuryID, treasury.RecordSize+100))
	require.ErrorIs(t, h.CreateTreasury(treasuryID, treasury.RecordSize), ErrTreasuryExists)

	rec, err := h.Treasury(treasuryID)
	require.NoError(t, err)
	require.False(t, rec.Initialized)

	key := newKey(t)
	req := SignedRequest{Treasury: util.Uint160{0x99}, Caller: account(key), Op: treasury.Deposit{Amount: 1}}
	require.NoError(t, req.Sign(key))
	_, err = h.Submit(context.Background(), req)
	require.ErrorIs(t, err, ErrTreasuryNotFound)
}

func TestMintAndBurn(t *testing.T) {
	e := newTestEnv(t, treasury.Config{})

	res, err := e.submit(e.user, treasury.MintTokens{Amount: 1000, Source: userReserve, Destination: userSynthetic})
	require.NoError(t, err)
	require.EqualValues(t, 1000, res.Circulation)

	require.EqualValues(t, 5_000_000-1000, e.balance(userReserve))
	require.EqualValues(t, 1000, e.balance(reserveAccount))
	require.EqualValues(t, 1000, e.balance(userSynthetic))

	rec := e.record()
	require.EqualValues(t, 1000, rec.Circulation)
	require.EqualValues(t, 1000, rec.Reserves)

	_, err = e.submit(e.user, treasury.BurnTokens{Amount: 400, Source: userSynthetic, Destination: userReserve})
	require.ErrorIs(t, err, token.ErrOwnerMismatch)

	require.NoError(t, e.h.UpdateTokens(func(l *token.Ledger) error {
		return l.Approve(userSynthetic, e.h.Authority(treasuryID), 400, account(e.user))
	}))

	_, err = e.submit(e.user, treasury.BurnTokens{Amount: 400, Source: userSynthetic, Destination: userReserve})
	require.NoError(t, err)

	require.EqualValues(t, 600, e.balance(userSynthetic))
	require.EqualValues(t, 600, e.balance(reserveAccount))
	require.EqualValues(t, 5_000_000-600, e.balance(userReserve))

	rec = e.record()
	require.EqualValues(t, 600, rec.Circulation)
	require.EqualValues(t, 600, rec.Reserves)

	supply, err := e.h.Tokens().Supply(syntheticMint)
	require.NoError(t, err)
	require.Equal(t, rec.Circulation, supply)
}

func TestBurnForeignAccount(t *testing.T) {
	e := newTestEnv(t, treasury.Config{})
	stranger := newKey(t)
	strangerReserve := util.Uint160{0x25}

	require.NoError(t, e.h.UpdateTokens(func(l *token.Ledger) error {
		return l.CreateAccount(strangerReserve, reserveMint, account(stranger))
	}))

	_, err := e.submit(e.user, treasury.MintTokens{Amount: 1000, Source: userReserve, Destination: userSynthetic})
	require.NoError(t, err)
	require.NoError(t, e.h.UpdateTokens(func(l *token.Ledger) error {
		return l.Approve(userSynthetic, e.h.Authority(treasuryID), 1000, account(e.user))
	}))

	before := e.record()

	_, err = e.submit(stranger, treasury.BurnTokens{Amount: 1000, Source: userSynthetic, Destination: strangerReserve})
	require.ErrorIs(t, err, treasury.ErrUnauthorizedSigner)

	require.Equal(t, before, e.record())
	require.EqualValues(t, 1000, e.balance(userSynthetic))
	require.EqualValues(t, 1000, e.balance(reserveAccount))
	require.Zero(t, e.balance(strangerReserve))

	// The approval is still usable by the owner.
	_, err = e.submit(e.user, treasury.BurnTokens{Amount: 1000, Source: userSynthetic, Destination: userReserve})
	require.NoError(t, err)
	require.Zero(t, e.balance(userSynthetic))
}

func TestAtomicity(t *testing.T) {
	e := newTestEnv(t, treasury.Config{})

	_, err := e.submit(e.user, treasury.MintTokens{Amount: 1000, Source: userReserve, Destination: userSynthetic})
	require.NoError(t, err)
	require.NoError(t, e.h.UpdateTokens(func(l *token.Ledger) error {
		return l.Approve(userSynthetic, e.h.Authority(treasuryID), 1000, account(e.user))
	}))

	before := e.record()

	// Burn succeeds, but the reserve asset can't be transferred to the
	// missing account: the whole operation is discarded.
	_, err = e.submit(e.user, treasury.BurnTokens{Amount: 100, Source: userSynthetic, Destination: util.Uint160{0xDE, 0xAD}})
	require.ErrorIs(t, err, token.ErrAccountNotFound)

	require.Equal(t, before, e.record())
	require.EqualValues(t, 1000, e.balance(userSynthetic))
	require.EqualValues(t, 1000, e.balance(reserveAccount))

	supply, err := e.h.Tokens().Supply(syntheticMint)
	require.NoError(t, err)
	require.EqualValues(t, 1000, supply)
}

func TestSignatures(t *testing.T) {
	e := newTestEnv(t, treasury.Config{})

	t.Run("tampered", func(t *testing.T) {
		req := e.request(e.user, treasury.Deposit{Amount: 10, Source: userReserve})
		req.Op = treasury.Deposit{Amount: 11, Source: userReserve}

		_, err := e.h.Submit(context.Background(), req)
		require.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("caller did not sign", func(t *testing.T) {
		req := e.request(e.user, treasury.Deposit{Amount: 10, Source: userReserve})
		req.Caller = account(e.signerA)
		req.Signatures = nil
		require.NoError(t, req.Sign(e.user))

		_, err := e.h.Submit(context.Background(), req)
		require.ErrorIs(t, err, treasury.ErrMissingSignature)
	})

	t.Run("replay", func(t *testing.T) {
		req := e.request(e.user, treasury.Deposit{Amount: 10, Source: userReserve})

		_, err := e.h.Submit(context.Background(), req)
		require.NoError(t, err)

		_, err = e.h.Submit(context.Background(), req)
		require.ErrorIs(t, err, ErrReplayed)

		// Same operation with another nonce is a different request.
		_, err = e.submit(e.user, treasury.Deposit{Amount: 10, Source: userReserve})
		require.NoError(t, err)
		require.EqualValues(t, 20, e.record().Reserves)
	})

	t.Run("failed request can be resubmitted", func(t *testing.T) {
		req := e.request(e.user, treasury.EmergencyPause{})

		_, err := e.h.Submit(context.Background(), req)
		require.ErrorIs(t, err, treasury.ErrUnauthorizedSigner)

		_, err = e.h.Submit(context.Background(), req)
		require.ErrorIs(t, err, treasury.ErrUnauthorizedSigner)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := e.h.Submit(ctx, e.request(e.user, treasury.Deposit{Amount: 10, Source: userReserve}))
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestPayout(t *testing.T) {
	e := newTestEnv(t, treasury.Config{LargeTransactionAmount: 500})

	_, err := e.submit(e.user, treasury.MintTokens{Amount: 1000, Source: userReserve, Destination: userSynthetic})
	require.NoError(t, err)

	authority := e.h.Authority(treasuryID)
	require.NoError(t, e.h.UpdateTokens(func(l *token.Ledger) error {
		if err := l.Transfer(syntheticMint, userSynthetic, revenueAccount, 1000, account(e.user), nil); err != nil {
			return err
		}
		return l.Approve(revenueAccount, authority, 1000, account(e.beneficiary))
	}))

	// The first payout is not delayed by initialization.
	req := e.request(e.signerA, treasury.WeeklyPayout{RevenueAmount: 1000, PayoutPercentage: 30}, e.signerB)
	res, err := e.h.Submit(context.Background(), req)
	require.NoError(t, err)
	require.EqualValues(t, 300, res.PayoutAmount)
	require.EqualValues(t, 700, res.RetainedAmount)

	require.EqualValues(t, 700, e.balance(revenueAccount))
	require.EqualValues(t, 300, e.balance(beneficiaryReserve))
	require.EqualValues(t, 700, e.balance(reserveAccount))

	_, err = e.submit(e.signerA, treasury.WeeklyPayout{RevenueAmount: 700, PayoutPercentage: 30}, e.signerB)
	require.ErrorIs(t, err, treasury.ErrPayoutWindowInactive)

	payouts, err := e.h.Payouts(treasuryID)
	require.NoError(t, err)
	require.Equal(t, []treasury.PayoutRecord{{
		PayoutID:           1,
		Timestamp:          startTime,
		RevenueAmount:      1000,
		PayoutPercentage:   30,
		SyntheticBurned:    300,
		ReserveReleased:    300,
		Reference:          base58.Encode(req.Signatures[0].Value),
		ComplianceApproved: true,
		AuthorizedSigners:  []util.Uint160{account(e.signerA), account(e.signerB)},
	}}, payouts)

	compliance, err := e.h.ComplianceRecords(treasuryID)
	require.NoError(t, err)
	require.Len(t, compliance, 1)
	require.Equal(t, treasury.TransactionMint, compliance[0].Type)
	require.EqualValues(t, 1, compliance[0].TransactionID)
	require.EqualValues(t, 1000, compliance[0].Amount)
}

func TestReserveAudits(t *testing.T) {
	e := newTestEnv(t, treasury.Config{})

	// Compliance authority defaults to the initializer.
	for i := 0; i < 3; i++ {
		_, err := e.submit(e.signerA, treasury.AuditReserves{Notes: "scheduled"})
		require.NoError(t, err)
	}

	audits, err := e.h.ReserveAudits(treasuryID)
	require.NoError(t, err)
	require.Len(t, audits, 3)
	for i := range audits {
		require.EqualValues(t, i+1, audits[i].AuditID)
		require.Equal(t, treasury.AuditPassed, audits[i].Status)
		require.Equal(t, account(e.signerA), audits[i].Auditor)
	}
}

func TestSignedRequestEncoding(t *testing.T) {
	e := newTestEnv(t, treasury.Config{})

	req := e.request(e.signerA, treasury.UpdateTreasury{
		Signers:   []util.Uint160{account(e.signerA)},
		Threshold: 1,
	}, e.signerB)
	req.Attestation = &treasury.Attestation{KYCVerified: true, Notes: "ok"}
	req.Reference = "ref"

	w := io.NewBufBinWriter()
	req.EncodeBinary(w.BinWriter)
	require.NoError(t, w.Err)

	var actual SignedRequest
	r := io.NewBinReaderFromBuf(w.Bytes())
	actual.DecodeBinary(r)
	require.NoError(t, r.Err)

	require.Equal(t, req.Treasury, actual.Treasury)
	require.Equal(t, req.Nonce, actual.Nonce)
	require.Equal(t, req.Attestation, actual.Attestation)
	require.Equal(t, req.Op, actual.Op)
	require.Len(t, actual.Signatures, 2)
	for i := range req.Signatures {
		require.True(t, req.Signatures[i].PublicKey.Equal(actual.Signatures[i].PublicKey))
		require.Equal(t, req.Signatures[i].Value, actual.Signatures[i].Value)
	}

	expected, err := req.ID()
	require.NoError(t, err)
	id, err := actual.ID()
	require.NoError(t, err)
	require.Equal(t, expected, id)
}

func TestClocks(t *testing.T) {
	c := NewManualClock(10)
	c.Advance(5)
	c.Advance(-100)
	require.EqualValues(t, 15, c.Now())

	var sc SystemClock
	first := sc.Now()
	require.GreaterOrEqual(t, sc.Now(), first)
}
