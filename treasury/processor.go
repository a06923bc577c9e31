package treasury

import (
	"context"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/reserve-treasury/common"
	"go.uber.org/zap"
)

// MaxDecimals is the maximum precision of the synthetic unit.
const MaxDecimals = 18

// Config groups Processor settings.
type Config struct {
	// LargeTransactionAmount is the amount starting from which value-moving
	// operations produce a compliance entry. Zero disables compliance entries.
	LargeTransactionAmount uint64
}

// Receipt summarizes the treasury state after a successful operation.
type Receipt struct {
	Kind         Kind
	Circulation  uint64
	Reserves     uint64
	ReserveRatio uint16

	// PayoutAmount and RetainedAmount are set by payouts.
	PayoutAmount   uint64
	RetainedAmount uint64
	// PayoutID is set by payouts.
	PayoutID uint64
	// ComplianceID is an identifier of the compliance entry if one was written.
	ComplianceID uint64
	// AuditID is set by reserve audits.
	AuditID uint64
}

// Processor executes treasury operations. It keeps no state between calls:
// the record and the collaborators are provided by the host for each
// operation.
type Processor struct {
	log *zap.Logger
	cfg Config
}

// NewProcessor returns a Processor writing to the given logger (nil means
// no logging).
func NewProcessor(log *zap.Logger, cfg Config) *Processor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Processor{log: log, cfg: cfg}
}

// Process applies req to rec. Guards run first, then TokenMover calls, then
// rec is replaced with the new state. On error rec is left untouched; undoing
// effects of already made TokenMover calls and audit writes is the
// responsibility of the host discarding the whole scope.
func (p *Processor) Process(ctx context.Context, env Env, rec *Record, req Request) (*Receipt, error) {
	if req.Op == nil {
		return nil, ErrUnknownOperation
	}

	var (
		kind = req.Op.Kind()
		now  = env.Clock.Now()
		st   = rec.Clone()
		res  = &Receipt{Kind: kind}
		err  error
	)

	err = p.precheck(req, &st, kind)
	if err == nil {
		err = p.dispatch(ctx, env, &st, req, now, res)
	}
	if err == nil {
		err = p.recordCompliance(env, &st, req, now, res)
	}
	if err != nil {
		p.log.Debug("treasury operation rejected",
			zap.Stringer("operation", kind),
			zap.String("caller", address.Uint160ToString(req.Caller)),
			zap.Error(err))
		return nil, fmt.Errorf("%s: %w", kind, err)
	}

	*rec = st

	res.Circulation = rec.Circulation
	res.Reserves = rec.Reserves
	res.ReserveRatio = rec.ReserveRatio()

	p.log.Debug("treasury operation applied",
		zap.Stringer("operation", kind),
		zap.String("caller", address.Uint160ToString(req.Caller)),
		zap.Uint64("circulation", rec.Circulation),
		zap.Uint64("reserves", rec.Reserves))

	return res, nil
}

// precheck verifies the lifecycle stage, authorization and the pause gate.
func (p *Processor) precheck(req Request, st *Record, kind Kind) error {
	if kind == KindInitializeTreasury {
		if st.Initialized {
			return ErrAlreadyInitialized
		}
	} else if !st.Initialized {
		return ErrNotInitialized
	}

	if len(req.Reference) > MaxReferenceLen {
		return fmt.Errorf("%w: reference", ErrFieldTooLong)
	}
	if req.Attestation != nil && len(req.Attestation.Notes) > MaxComplianceNotesLen {
		return fmt.Errorf("%w: compliance notes", ErrFieldTooLong)
	}

	if err := authorize(req, st, kind); err != nil {
		return err
	}

	if kind.MovesValue() && st.Paused {
		return ErrEmergencyPauseActive
	}

	return nil
}

func (p *Processor) dispatch(ctx context.Context, env Env, st *Record, req Request, now int64, res *Receipt) error {
	switch op := req.Op.(type) {
	case InitializeTreasury:
		return p.initializeTreasury(st, req, op)
	case InitializeToken:
		return p.initializeToken(ctx, env, st, op)
	case MintTokens:
		return p.mintTokens(ctx, env, st, req, op, now)
	case BurnTokens:
		return p.burnTokens(ctx, env, st, req, op)
	case Deposit:
		return p.deposit(ctx, env, st, req, op)
	case Withdraw:
		return p.withdraw(ctx, env, st, req, op)
	case WeeklyPayout:
		return p.weeklyPayout(ctx, env, st, req, op, now, res)
	case EmergencyPause:
		return p.emergencyPause(st, req)
	case EmergencyUnpause:
		return p.emergencyUnpause(st, req)
	case UpdateTreasury:
		return p.updateTreasury(st, op)
	case UpdateComplianceLimits:
		st.MaxTransactionAmount = op.MaxTransactionAmount
		st.DailyVolumeLimit = op.DailyVolumeLimit
		return nil
	case AuditReserves:
		return p.auditReserves(env, st, req, op, now, res)
	default:
		return ErrUnknownOperation
	}
}

func (p *Processor) initializeTreasury(st *Record, req Request, op InitializeTreasury) error {
	if err := validateSignerSet(op.Signers, op.Threshold); err != nil {
		return err
	}

	prm := op.Params
	if prm.PayoutWindow < 0 {
		return fmt.Errorf("%w: negative payout window", ErrInvalidParameters)
	}
	if prm.MinReserveRatio > BasisPoints {
		return fmt.Errorf("%w: minimum reserve ratio %d exceeds %d", ErrInvalidParameters, prm.MinReserveRatio, BasisPoints)
	}

	var zero util.Uint160
	if prm.EmergencyAuthority.Equals(zero) {
		prm.EmergencyAuthority = req.Caller
	}
	if prm.ComplianceAuthority.Equals(zero) {
		prm.ComplianceAuthority = req.Caller
	}

	// Zero LastPayoutTime and LastVolumeReset open both windows right away.
	*st = Record{
		Initialized:               true,
		Signers:                   append([]util.Uint160(nil), op.Signers...),
		Threshold:                 op.Threshold,
		SyntheticMint:             prm.SyntheticMint,
		ReserveMint:               prm.ReserveMint,
		ReserveAccount:            prm.ReserveAccount,
		EmergencyAuthority:        prm.EmergencyAuthority,
		PayoutWindow:              prm.PayoutWindow,
		MinReserveRatio:           prm.MinReserveRatio,
		RevenueAccount:            prm.RevenueAccount,
		BeneficiaryReserveAccount: prm.BeneficiaryReserveAccount,
		ComplianceAuthority:       prm.ComplianceAuthority,
		MaxTransactionAmount:      prm.MaxTransactionAmount,
		DailyVolumeLimit:          prm.DailyVolumeLimit,
	}

	p.log.Info("treasury initialized",
		zap.Int("signers", len(op.Signers)),
		zap.Uint8("threshold", op.Threshold),
		zap.String("emergency authority", address.Uint160ToString(prm.EmergencyAuthority)))

	return nil
}

func (p *Processor) initializeToken(ctx context.Context, env Env, st *Record, op InitializeToken) error {
	if op.Decimals > MaxDecimals {
		return fmt.Errorf("%w: %d decimals", ErrInvalidParameters, op.Decimals)
	}

	err := env.Mover.InitializeMint(ctx, st.SyntheticMint, op.Decimals, env.Authority, op.FreezeAuthority)
	if err != nil {
		return fmt.Errorf("initialize synthetic mint: %w", err)
	}

	return nil
}

func (p *Processor) mintTokens(ctx context.Context, env Env, st *Record, req Request, op MintTokens, now int64) error {
	if err := st.CheckCompliance(op.Amount, now); err != nil {
		return err
	}

	circulation, err := addU64(st.Circulation, op.Amount)
	if err != nil {
		return err
	}
	reserves, err := addU64(st.Reserves, op.Amount)
	if err != nil {
		return err
	}

	details := common.MintTransferDetails([]byte(req.Reference))

	err = env.Mover.TransferReserve(ctx, st.ReserveMint, op.Source, st.ReserveAccount, op.Amount, req.Caller, details)
	if err != nil {
		return fmt.Errorf("transfer reserve asset in: %w", err)
	}
	err = env.Mover.MintSynthetic(ctx, st.SyntheticMint, op.Destination, op.Amount, env.Authority, details)
	if err != nil {
		return fmt.Errorf("mint synthetic unit: %w", err)
	}

	st.Circulation = circulation
	st.Reserves = reserves

	if tracksVolume(KindMintTokens) {
		return st.RecordVolume(op.Amount, now)
	}

	return nil
}

func (p *Processor) burnTokens(ctx context.Context, env Env, st *Record, req Request, op BurnTokens) error {
	if op.Amount > st.MaxTransactionAmount {
		return fmt.Errorf("%w: %d > %d", ErrTransactionLimitExceeded, op.Amount, st.MaxTransactionAmount)
	}
	if !st.HasSufficientReserves(op.Amount) {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientReserves, st.Reserves, op.Amount)
	}

	circulation, err := subU64(st.Circulation, op.Amount)
	if err != nil {
		return err
	}
	reserves, err := subU64(st.Reserves, op.Amount)
	if err != nil {
		return err
	}

	owner, err := env.Mover.AccountOwner(ctx, op.Source)
	if err != nil {
		return fmt.Errorf("get burn source owner: %w", err)
	}
	if !owner.Equals(req.Caller) {
		return fmt.Errorf("%w: %s does not own burn source %s", ErrUnauthorizedSigner, req.Caller.StringLE(), op.Source.StringLE())
	}

	details := common.BurnTransferDetails([]byte(req.Reference))

	err = env.Mover.BurnSynthetic(ctx, st.SyntheticMint, op.Source, op.Amount, env.Authority, details)
	if err != nil {
		return fmt.Errorf("burn synthetic unit: %w", err)
	}
	err = env.Mover.TransferReserve(ctx, st.ReserveMint, st.ReserveAccount, op.Destination, op.Amount, env.Authority, details)
	if err != nil {
		return fmt.Errorf("transfer reserve asset out: %w", err)
	}

	st.Circulation = circulation
	st.Reserves = reserves

	return nil
}

func (p *Processor) deposit(ctx context.Context, env Env, st *Record, req Request, op Deposit) error {
	reserves, err := addU64(st.Reserves, op.Amount)
	if err != nil {
		return err
	}

	err = env.Mover.TransferReserve(ctx, st.ReserveMint, op.Source, st.ReserveAccount, op.Amount, req.Caller,
		common.DepositTransferDetails([]byte(req.Reference)))
	if err != nil {
		return fmt.Errorf("transfer reserve asset in: %w", err)
	}

	st.Reserves = reserves

	return nil
}

func (p *Processor) withdraw(ctx context.Context, env Env, st *Record, req Request, op Withdraw) error {
	if err := st.CheckWithdrawal(op.Amount); err != nil {
		return err
	}

	err := env.Mover.TransferReserve(ctx, st.ReserveMint, st.ReserveAccount, op.Destination, op.Amount, env.Authority,
		common.WithdrawTransferDetails([]byte(req.Reference)))
	if err != nil {
		return fmt.Errorf("transfer reserve asset out: %w", err)
	}

	st.Reserves -= op.Amount

	return nil
}

func (p *Processor) weeklyPayout(ctx context.Context, env Env, st *Record, req Request, op WeeklyPayout, now int64, res *Receipt) error {
	payout, retained, err := ComputePayout(op.RevenueAmount, op.PayoutPercentage)
	if err != nil {
		return err
	}
	if !st.IsPayoutWindowActive(now) {
		return fmt.Errorf("%w: last payout at %d, window %d, now %d", ErrPayoutWindowInactive, st.LastPayoutTime, st.PayoutWindow, now)
	}
	if !st.HasSufficientReserves(payout) {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientReserves, st.Reserves, payout)
	}

	circulation, err := subU64(st.Circulation, payout)
	if err != nil {
		return err
	}
	reserves, err := subU64(st.Reserves, payout)
	if err != nil {
		return err
	}
	totalRevenue, err := addU64(st.TotalRevenueProcessed, op.RevenueAmount)
	if err != nil {
		return err
	}
	payoutID, err := addU64(st.PayoutCount, 1)
	if err != nil {
		return err
	}

	details := common.PayoutTransferDetails(payoutID)

	err = env.Mover.BurnSynthetic(ctx, st.SyntheticMint, st.RevenueAccount, payout, env.Authority, details)
	if err != nil {
		return fmt.Errorf("burn beneficiary revenue: %w", err)
	}
	err = env.Mover.TransferReserve(ctx, st.ReserveMint, st.ReserveAccount, st.BeneficiaryReserveAccount, payout, env.Authority, details)
	if err != nil {
		return fmt.Errorf("release reserve asset to beneficiary: %w", err)
	}

	st.Circulation = circulation
	st.Reserves = reserves
	st.LastPayoutTime = now
	st.TotalRevenueProcessed = totalRevenue
	st.PayoutCount = payoutID

	err = env.Audit.AppendPayout(PayoutRecord{
		PayoutID:           payoutID,
		Timestamp:          now,
		RevenueAmount:      op.RevenueAmount,
		PayoutPercentage:   op.PayoutPercentage,
		SyntheticBurned:    payout,
		ReserveReleased:    payout,
		Reference:          req.Reference,
		ComplianceApproved: st.ValidateSignatures(req.Witnesses),
		AuthorizedSigners:  st.signerMembers(req.Witnesses),
	})
	if err != nil {
		return fmt.Errorf("append payout record: %w", err)
	}

	res.PayoutAmount = payout
	res.RetainedAmount = retained
	res.PayoutID = payoutID

	p.log.Info("weekly payout processed",
		zap.Uint64("id", payoutID),
		zap.Uint64("revenue", op.RevenueAmount),
		zap.Uint8("percentage", op.PayoutPercentage),
		zap.Uint64("released", payout),
		zap.Uint64("retained", retained))

	return nil
}

func (p *Processor) emergencyPause(st *Record, req Request) error {
	if st.Paused {
		return ErrAlreadyPaused
	}
	st.Paused = true
	p.log.Warn("treasury paused", zap.String("authority", address.Uint160ToString(req.Caller)))
	return nil
}

func (p *Processor) emergencyUnpause(st *Record, req Request) error {
	if !st.Paused {
		return ErrNotPaused
	}
	st.Paused = false
	p.log.Warn("treasury unpaused", zap.String("authority", address.Uint160ToString(req.Caller)))
	return nil
}

func (p *Processor) updateTreasury(st *Record, op UpdateTreasury) error {
	if err := validateSignerSet(op.Signers, op.Threshold); err != nil {
		return err
	}

	st.Signers = append([]util.Uint160(nil), op.Signers...)
	st.Threshold = op.Threshold

	p.log.Info("treasury signers updated",
		zap.Int("signers", len(op.Signers)),
		zap.Uint8("threshold", op.Threshold))

	return nil
}

func (p *Processor) auditReserves(env Env, st *Record, req Request, op AuditReserves, now int64, res *Receipt) error {
	if len(op.Notes) > MaxReserveAuditNoteLen {
		return fmt.Errorf("%w: audit notes", ErrFieldTooLong)
	}

	status := AuditPassed
	if !st.IsReserveRatioHealthy() {
		status = AuditFailed
	}

	id, err := env.Audit.AppendReserveAudit(ReserveAuditRecord{
		Timestamp:    now,
		Circulation:  st.Circulation,
		Reserves:     st.Reserves,
		ReserveRatio: st.ReserveRatio(),
		Status:       status,
		Auditor:      req.Caller,
		Notes:        op.Notes,
	})
	if err != nil {
		return fmt.Errorf("append reserve audit record: %w", err)
	}

	res.AuditID = id

	return nil
}

// recordCompliance writes a compliance entry for large value-moving
// operations.
func (p *Processor) recordCompliance(env Env, st *Record, req Request, now int64, res *Receipt) error {
	typ, ok := transactionTypeOf(res.Kind)
	if !ok || p.cfg.LargeTransactionAmount == 0 {
		return nil
	}

	amount := movedAmount(req.Op, res)
	if amount < p.cfg.LargeTransactionAmount {
		return nil
	}

	rec := ComplianceRecord{
		UserWallet: req.Caller,
		Amount:     amount,
		Type:       typ,
		Timestamp:  now,
		RiskScore:  riskScore(amount, st.MaxTransactionAmount),
	}
	if a := req.Attestation; a != nil {
		rec.KYCVerified = a.KYCVerified
		rec.AMLCleared = a.AMLCleared
		rec.ComplianceApproved = a.KYCVerified && a.AMLCleared
		rec.Notes = a.Notes
	}

	id, err := env.Audit.AppendCompliance(rec)
	if err != nil {
		return fmt.Errorf("append compliance record: %w", err)
	}

	res.ComplianceID = id

	return nil
}

func movedAmount(op Operation, res *Receipt) uint64 {
	switch op := op.(type) {
	case MintTokens:
		return op.Amount
	case BurnTokens:
		return op.Amount
	case Deposit:
		return op.Amount
	case Withdraw:
		return op.Amount
	case WeeklyPayout:
		return res.PayoutAmount
	}
	return 0
}

// riskScore is amount relative to the per-transaction cap, in percent.
func riskScore(amount, max uint64) uint8 {
	if max == 0 {
		return 100
	}
	return uint8(mulDiv(amount, 100, max, 100))
}
