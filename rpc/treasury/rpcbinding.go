// Package treasury contains client wrappers for reserve treasuries.
package treasury

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/reserve-treasury/host"
	core "github.com/nspcc-dev/reserve-treasury/treasury"
)

// ErrNoKeys is returned when a request has to be signed, but Contract has no
// keys.
var ErrNoKeys = errors.New("no signing keys")

// Reader is an interface required by ContractReader to read treasury state.
type Reader interface {
	Treasury(id util.Uint160) (core.Record, error)
}

// Submitter is an interface required by Contract to execute requests. It is
// implemented by host.Host and cosign.Collector.
type Submitter interface {
	Submit(ctx context.Context, req host.SignedRequest) (*core.Receipt, error)
}

// ContractReader implements safe treasury methods.
type ContractReader struct {
	reader Reader
	hash   util.Uint160
}

// Contract implements all treasury methods.
type Contract struct {
	ContractReader
	submitter Submitter
	caller    util.Uint160
	keys      []*keys.PrivateKey

	reference   string
	attestation *core.Attestation
}

// NewReader creates an instance of ContractReader using hash and the given
// Reader.
func NewReader(reader Reader, hash util.Uint160) *ContractReader {
	return &ContractReader{reader, hash}
}

// New creates an instance of Contract submitting requests of the account of
// key. Requests are also signed by all cosigners.
func New(reader Reader, submitter Submitter, hash util.Uint160, key *keys.PrivateKey, cosigners ...*keys.PrivateKey) *Contract {
	c := &Contract{
		ContractReader: ContractReader{reader, hash},
		submitter:      submitter,
	}
	if key != nil {
		c.caller = key.PublicKey().GetScriptHash()
		c.keys = append(c.keys, key)
	}
	c.keys = append(c.keys, cosigners...)
	return c
}

// Hash returns the treasury identifier.
func (c *ContractReader) Hash() util.Uint160 {
	return c.hash
}

// Record returns the current treasury record.
func (c *ContractReader) Record() (core.Record, error) {
	return c.reader.Treasury(c.hash)
}

// ReserveRatio returns the current reserve ratio in basis points.
func (c *ContractReader) ReserveRatio() (uint16, error) {
	rec, err := c.Record()
	if err != nil {
		return 0, err
	}
	return rec.ReserveRatio(), nil
}

// IsPaused checks whether the treasury is paused.
func (c *ContractReader) IsPaused() (bool, error) {
	rec, err := c.Record()
	if err != nil {
		return false, err
	}
	return rec.Paused, nil
}

// Caller returns the account requests are submitted from.
func (c *Contract) Caller() util.Uint160 {
	return c.caller
}

// WithReference returns a copy of c attaching the base58-encoded txID to all
// requests as the audit reference.
func (c *Contract) WithReference(txID []byte) (*Contract, error) {
	ref := base58.Encode(txID)
	if len(ref) > core.MaxReferenceLen {
		return nil, fmt.Errorf("%w: reference has %d characters, max %d",
			core.ErrFieldTooLong, len(ref), core.MaxReferenceLen)
	}
	cp := *c
	cp.reference = ref
	return &cp, nil
}

// WithAttestation returns a copy of c attaching a to all requests.
func (c *Contract) WithAttestation(a core.Attestation) *Contract {
	cp := *c
	cp.attestation = &a
	return &cp
}

// MakeRequest creates a request for op with a random nonce signed by all
// keys of c.
func (c *Contract) MakeRequest(op core.Operation) (host.SignedRequest, error) {
	if len(c.keys) == 0 {
		return host.SignedRequest{}, ErrNoKeys
	}

	req := c.MakeUnsignedRequest(op)
	for _, k := range c.keys {
		if err := req.Sign(k); err != nil {
			return host.SignedRequest{}, err
		}
	}

	return req, nil
}

// MakeUnsignedRequest creates a request for op with a random nonce and no
// signatures. It can be signed by other parties and submitted later.
func (c *Contract) MakeUnsignedRequest(op core.Operation) host.SignedRequest {
	return host.SignedRequest{
		Treasury:    c.hash,
		Caller:      c.caller,
		Nonce:       uuid.New(),
		Reference:   c.reference,
		Attestation: c.attestation,
		Op:          op,
	}
}

// Invoke signs a request for op and submits it.
func (c *Contract) Invoke(ctx context.Context, op core.Operation) (*core.Receipt, error) {
	req, err := c.MakeRequest(op)
	if err != nil {
		return nil, fmt.Errorf("make %s request: %w", op.Kind(), err)
	}
	return c.submitter.Submit(ctx, req)
}

// InitializeTreasury creates the treasury record with the given signer set.
func (c *Contract) InitializeTreasury(ctx context.Context, signers []util.Uint160, threshold uint8, params core.Parameters) (*core.Receipt, error) {
	return c.Invoke(ctx, core.InitializeTreasury{
		Signers:   signers,
		Threshold: threshold,
		Params:    params,
	})
}

// InitializeToken initializes the synthetic mint.
func (c *Contract) InitializeToken(ctx context.Context, decimals uint8, freezeAuthority *util.Uint160) (*core.Receipt, error) {
	return c.Invoke(ctx, core.InitializeToken{
		Decimals:        decimals,
		FreezeAuthority: freezeAuthority,
	})
}

// MintTokens mints amount of the synthetic unit to dst against the same
// amount of the reference asset taken from src.
func (c *Contract) MintTokens(ctx context.Context, amount uint64, src, dst util.Uint160) (*core.Receipt, error) {
	return c.Invoke(ctx, core.MintTokens{Amount: amount, Source: src, Destination: dst})
}

// BurnTokens burns amount of the synthetic unit from src and releases the
// same amount of the reference asset to dst.
func (c *Contract) BurnTokens(ctx context.Context, amount uint64, src, dst util.Uint160) (*core.Receipt, error) {
	return c.Invoke(ctx, core.BurnTokens{Amount: amount, Source: src, Destination: dst})
}

// Deposit adds amount of the reference asset from src to the reserves.
func (c *Contract) Deposit(ctx context.Context, amount uint64, src util.Uint160) (*core.Receipt, error) {
	return c.Invoke(ctx, core.Deposit{Amount: amount, Source: src})
}

// Withdraw releases amount of the reference asset to dst.
func (c *Contract) Withdraw(ctx context.Context, amount uint64, dst util.Uint160) (*core.Receipt, error) {
	return c.Invoke(ctx, core.Withdraw{Amount: amount, Destination: dst})
}

// WeeklyPayout pays out percentage of revenue to the beneficiary.
func (c *Contract) WeeklyPayout(ctx context.Context, revenue uint64, percentage uint8) (*core.Receipt, error) {
	return c.Invoke(ctx, core.WeeklyPayout{RevenueAmount: revenue, PayoutPercentage: percentage})
}

// EmergencyPause pauses value-moving operations.
func (c *Contract) EmergencyPause(ctx context.Context) (*core.Receipt, error) {
	return c.Invoke(ctx, core.EmergencyPause{})
}

// EmergencyUnpause resumes value-moving operations.
func (c *Contract) EmergencyUnpause(ctx context.Context) (*core.Receipt, error) {
	return c.Invoke(ctx, core.EmergencyUnpause{})
}

// UpdateTreasury replaces the signer set and the threshold.
func (c *Contract) UpdateTreasury(ctx context.Context, signers []util.Uint160, threshold uint8) (*core.Receipt, error) {
	return c.Invoke(ctx, core.UpdateTreasury{Signers: signers, Threshold: threshold})
}

// UpdateComplianceLimits replaces compliance caps.
func (c *Contract) UpdateComplianceLimits(ctx context.Context, maxTransaction, dailyVolume uint64) (*core.Receipt, error) {
	return c.Invoke(ctx, core.UpdateComplianceLimits{
		MaxTransactionAmount: maxTransaction,
		DailyVolumeLimit:     dailyVolume,
	})
}

// AuditReserves appends a reserve audit entry with notes.
func (c *Contract) AuditReserves(ctx context.Context, notes string) (*core.Receipt, error) {
	return c.Invoke(ctx, core.AuditReserves{Notes: notes})
}
