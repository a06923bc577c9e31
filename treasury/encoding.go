package treasury

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/reserve-treasury/common"
)

// Sizes of fixed binary layouts.
const (
	// RecordSize is the size of an encoded Record. Storage allocated for a
	// treasury must be at least this big.
	RecordSize = 330
	// PayoutRecordSize is the size of an encoded PayoutRecord.
	PayoutRecordSize = 235
	// ComplianceRecordSize is the size of an encoded ComplianceRecord.
	ComplianceRecordSize = 309
	// ReserveAuditRecordSize is the size of an encoded ReserveAuditRecord.
	ReserveAuditRecordSize = 571
)

var errInvalidLayout = errors.New("invalid layout")

// EncodeBinary implements io.Serializable.
func (r *Record) EncodeBinary(w *io.BinWriter) {
	w.WriteU32LE(uint32(common.Version))
	w.WriteBool(r.Initialized)
	writeSignerSlots(w, r.Signers)
	w.WriteB(r.Threshold)

	w.WriteBytes(r.SyntheticMint[:])
	w.WriteBytes(r.ReserveMint[:])
	w.WriteBytes(r.ReserveAccount[:])
	w.WriteU64LE(r.Circulation)
	w.WriteU64LE(r.Reserves)
	w.WriteBool(r.Paused)
	w.WriteBytes(r.EmergencyAuthority[:])

	w.WriteU64LE(uint64(r.LastPayoutTime))
	w.WriteU64LE(uint64(r.PayoutWindow))
	w.WriteU16LE(r.MinReserveRatio)
	w.WriteBytes(r.RevenueAccount[:])
	w.WriteBytes(r.BeneficiaryReserveAccount[:])
	w.WriteU64LE(r.TotalRevenueProcessed)
	w.WriteU64LE(r.PayoutCount)

	w.WriteBytes(r.ComplianceAuthority[:])
	w.WriteU64LE(r.MaxTransactionAmount)
	w.WriteU64LE(r.DailyVolumeLimit)
	w.WriteU64LE(r.CurrentDailyVolume)
	w.WriteU64LE(uint64(r.LastVolumeReset))
}

// DecodeBinary implements io.Serializable.
func (r *Record) DecodeBinary(br *io.BinReader) {
	version := br.ReadU32LE()
	if br.Err != nil {
		return
	}
	if err := common.CheckVersion(int(version)); err != nil {
		br.Err = err
		return
	}

	r.Initialized = br.ReadBool()
	r.Signers = readSignerSlots(br)
	r.Threshold = br.ReadB()

	br.ReadBytes(r.SyntheticMint[:])
	br.ReadBytes(r.ReserveMint[:])
	br.ReadBytes(r.ReserveAccount[:])
	r.Circulation = br.ReadU64LE()
	r.Reserves = br.ReadU64LE()
	r.Paused = br.ReadBool()
	br.ReadBytes(r.EmergencyAuthority[:])

	r.LastPayoutTime = int64(br.ReadU64LE())
	r.PayoutWindow = int64(br.ReadU64LE())
	r.MinReserveRatio = br.ReadU16LE()
	br.ReadBytes(r.RevenueAccount[:])
	br.ReadBytes(r.BeneficiaryReserveAccount[:])
	r.TotalRevenueProcessed = br.ReadU64LE()
	r.PayoutCount = br.ReadU64LE()

	br.ReadBytes(r.ComplianceAuthority[:])
	r.MaxTransactionAmount = br.ReadU64LE()
	r.DailyVolumeLimit = br.ReadU64LE()
	r.CurrentDailyVolume = br.ReadU64LE()
	r.LastVolumeReset = int64(br.ReadU64LE())
}

// Bytes returns the fixed-size encoding of the record.
func (r *Record) Bytes() ([]byte, error) {
	w := io.NewBufBinWriter()
	r.EncodeBinary(w.BinWriter)
	if w.Err != nil {
		return nil, w.Err
	}
	return w.Bytes(), nil
}

// EncodeBinary implements io.Serializable.
func (p *PayoutRecord) EncodeBinary(w *io.BinWriter) {
	w.WriteU64LE(p.PayoutID)
	w.WriteU64LE(uint64(p.Timestamp))
	w.WriteU64LE(p.RevenueAmount)
	w.WriteB(p.PayoutPercentage)
	w.WriteU64LE(p.SyntheticBurned)
	w.WriteU64LE(p.ReserveReleased)
	writeFixedString(w, p.Reference, MaxReferenceLen)
	w.WriteBool(p.ComplianceApproved)
	writeSignerSlots(w, p.AuthorizedSigners)
}

// DecodeBinary implements io.Serializable.
func (p *PayoutRecord) DecodeBinary(r *io.BinReader) {
	p.PayoutID = r.ReadU64LE()
	p.Timestamp = int64(r.ReadU64LE())
	p.RevenueAmount = r.ReadU64LE()
	p.PayoutPercentage = r.ReadB()
	p.SyntheticBurned = r.ReadU64LE()
	p.ReserveReleased = r.ReadU64LE()
	p.Reference = readFixedString(r, MaxReferenceLen)
	p.ComplianceApproved = r.ReadBool()
	p.AuthorizedSigners = readSignerSlots(r)
}

// EncodeBinary implements io.Serializable.
func (c *ComplianceRecord) EncodeBinary(w *io.BinWriter) {
	w.WriteU64LE(c.TransactionID)
	w.WriteBytes(c.UserWallet[:])
	w.WriteU64LE(c.Amount)
	w.WriteB(byte(c.Type))
	w.WriteU64LE(uint64(c.Timestamp))
	w.WriteBool(c.KYCVerified)
	w.WriteBool(c.AMLCleared)
	w.WriteBool(c.ComplianceApproved)
	w.WriteB(c.RiskScore)
	writeFixedString(w, c.Notes, MaxComplianceNotesLen)
}

// DecodeBinary implements io.Serializable.
func (c *ComplianceRecord) DecodeBinary(r *io.BinReader) {
	c.TransactionID = r.ReadU64LE()
	r.ReadBytes(c.UserWallet[:])
	c.Amount = r.ReadU64LE()
	c.Type = TransactionType(r.ReadB())
	c.Timestamp = int64(r.ReadU64LE())
	c.KYCVerified = r.ReadBool()
	c.AMLCleared = r.ReadBool()
	c.ComplianceApproved = r.ReadBool()
	c.RiskScore = r.ReadB()
	c.Notes = readFixedString(r, MaxComplianceNotesLen)
}

// EncodeBinary implements io.Serializable.
func (a *ReserveAuditRecord) EncodeBinary(w *io.BinWriter) {
	w.WriteU64LE(a.AuditID)
	w.WriteU64LE(uint64(a.Timestamp))
	w.WriteU64LE(a.Circulation)
	w.WriteU64LE(a.Reserves)
	w.WriteU16LE(a.ReserveRatio)
	w.WriteB(byte(a.Status))
	w.WriteBytes(a.Auditor[:])
	writeFixedString(w, a.Notes, MaxReserveAuditNoteLen)
}

// DecodeBinary implements io.Serializable.
func (a *ReserveAuditRecord) DecodeBinary(r *io.BinReader) {
	a.AuditID = r.ReadU64LE()
	a.Timestamp = int64(r.ReadU64LE())
	a.Circulation = r.ReadU64LE()
	a.Reserves = r.ReadU64LE()
	a.ReserveRatio = r.ReadU16LE()
	a.Status = AuditStatus(r.ReadB())
	r.ReadBytes(a.Auditor[:])
	a.Notes = readFixedString(r, MaxReserveAuditNoteLen)
}

// writeSignerSlots writes the number of accounts followed by MaxSigners
// fixed slots, unused ones zeroed.
func writeSignerSlots(w *io.BinWriter, accs []util.Uint160) {
	if len(accs) > MaxSigners {
		w.Err = fmt.Errorf("%w: %d signers", errInvalidLayout, len(accs))
		return
	}

	w.WriteB(byte(len(accs)))

	var zero util.Uint160
	for i := 0; i < MaxSigners; i++ {
		if i < len(accs) {
			w.WriteBytes(accs[i][:])
		} else {
			w.WriteBytes(zero[:])
		}
	}
}

func readSignerSlots(r *io.BinReader) []util.Uint160 {
	n := int(r.ReadB())
	if r.Err != nil {
		return nil
	}
	if n > MaxSigners {
		r.Err = fmt.Errorf("%w: %d signers", errInvalidLayout, n)
		return nil
	}

	var (
		res  = make([]util.Uint160, 0, n)
		slot util.Uint160
	)
	for i := 0; i < MaxSigners; i++ {
		r.ReadBytes(slot[:])
		if i < n {
			res = append(res, slot)
		}
	}
	if n == 0 {
		return nil
	}
	return res
}

// writeFixedString writes the length of s followed by exactly max bytes.
func writeFixedString(w *io.BinWriter, s string, max int) {
	if len(s) > max {
		w.Err = fmt.Errorf("%w: %d > %d", ErrFieldTooLong, len(s), max)
		return
	}

	buf := make([]byte, max)
	copy(buf, s)
	w.WriteU32LE(uint32(len(s)))
	w.WriteBytes(buf)
}

func readFixedString(r *io.BinReader, max int) string {
	n := r.ReadU32LE()
	buf := make([]byte, max)
	r.ReadBytes(buf)
	if r.Err != nil {
		return ""
	}
	if int(n) > max {
		r.Err = fmt.Errorf("%w: %d > %d", ErrFieldTooLong, n, max)
		return ""
	}
	return string(buf[:n])
}

// EncodeOperation writes op prefixed with its kind.
func EncodeOperation(w *io.BinWriter, op Operation) {
	if op == nil {
		w.Err = ErrUnknownOperation
		return
	}

	w.WriteB(byte(op.Kind()))

	switch op := op.(type) {
	case InitializeTreasury:
		writeSignerList(w, op.Signers)
		w.WriteB(op.Threshold)
		prm := op.Params
		for _, acc := range []util.Uint160{
			prm.SyntheticMint, prm.ReserveMint, prm.ReserveAccount,
			prm.EmergencyAuthority, prm.ComplianceAuthority,
			prm.RevenueAccount, prm.BeneficiaryReserveAccount,
		} {
			w.WriteBytes(acc[:])
		}
		w.WriteU64LE(uint64(prm.PayoutWindow))
		w.WriteU16LE(prm.MinReserveRatio)
		w.WriteU64LE(prm.MaxTransactionAmount)
		w.WriteU64LE(prm.DailyVolumeLimit)
	case InitializeToken:
		w.WriteB(op.Decimals)
		w.WriteBool(op.FreezeAuthority != nil)
		if op.FreezeAuthority != nil {
			w.WriteBytes(op.FreezeAuthority[:])
		}
	case MintTokens:
		w.WriteU64LE(op.Amount)
		w.WriteBytes(op.Source[:])
		w.WriteBytes(op.Destination[:])
	case BurnTokens:
		w.WriteU64LE(op.Amount)
		w.WriteBytes(op.Source[:])
		w.WriteBytes(op.Destination[:])
	case Deposit:
		w.WriteU64LE(op.Amount)
		w.WriteBytes(op.Source[:])
	case Withdraw:
		w.WriteU64LE(op.Amount)
		w.WriteBytes(op.Destination[:])
	case WeeklyPayout:
		w.WriteU64LE(op.RevenueAmount)
		w.WriteB(op.PayoutPercentage)
	case EmergencyPause, EmergencyUnpause:
	case UpdateTreasury:
		writeSignerList(w, op.Signers)
		w.WriteB(op.Threshold)
	case UpdateComplianceLimits:
		w.WriteU64LE(op.MaxTransactionAmount)
		w.WriteU64LE(op.DailyVolumeLimit)
	case AuditReserves:
		w.WriteString(op.Notes)
	}
}

// DecodeOperation reads an operation written by EncodeOperation.
func DecodeOperation(r *io.BinReader) Operation {
	kind := Kind(r.ReadB())
	if r.Err != nil {
		return nil
	}

	switch kind {
	case KindInitializeTreasury:
		var op InitializeTreasury
		op.Signers = readSignerList(r)
		op.Threshold = r.ReadB()
		prm := &op.Params
		for _, acc := range []*util.Uint160{
			&prm.SyntheticMint, &prm.ReserveMint, &prm.ReserveAccount,
			&prm.EmergencyAuthority, &prm.ComplianceAuthority,
			&prm.RevenueAccount, &prm.BeneficiaryReserveAccount,
		} {
			r.ReadBytes(acc[:])
		}
		prm.PayoutWindow = int64(r.ReadU64LE())
		prm.MinReserveRatio = r.ReadU16LE()
		prm.MaxTransactionAmount = r.ReadU64LE()
		prm.DailyVolumeLimit = r.ReadU64LE()
		return op
	case KindInitializeToken:
		var op InitializeToken
		op.Decimals = r.ReadB()
		if r.ReadBool() {
			op.FreezeAuthority = new(util.Uint160)
			r.ReadBytes(op.FreezeAuthority[:])
		}
		return op
	case KindMintTokens:
		var op MintTokens
		op.Amount = r.ReadU64LE()
		r.ReadBytes(op.Source[:])
		r.ReadBytes(op.Destination[:])
		return op
	case KindBurnTokens:
		var op BurnTokens
		op.Amount = r.ReadU64LE()
		r.ReadBytes(op.Source[:])
		r.ReadBytes(op.Destination[:])
		return op
	case KindDeposit:
		var op Deposit
		op.Amount = r.ReadU64LE()
		r.ReadBytes(op.Source[:])
		return op
	case KindWithdraw:
		var op Withdraw
		op.Amount = r.ReadU64LE()
		r.ReadBytes(op.Destination[:])
		return op
	case KindWeeklyPayout:
		var op WeeklyPayout
		op.RevenueAmount = r.ReadU64LE()
		op.PayoutPercentage = r.ReadB()
		return op
	case KindEmergencyPause:
		return EmergencyPause{}
	case KindEmergencyUnpause:
		return EmergencyUnpause{}
	case KindUpdateTreasury:
		var op UpdateTreasury
		op.Signers = readSignerList(r)
		op.Threshold = r.ReadB()
		return op
	case KindUpdateComplianceLimits:
		var op UpdateComplianceLimits
		op.MaxTransactionAmount = r.ReadU64LE()
		op.DailyVolumeLimit = r.ReadU64LE()
		return op
	case KindAuditReserves:
		return AuditReserves{Notes: r.ReadString(MaxReserveAuditNoteLen)}
	default:
		r.Err = fmt.Errorf("%w: kind %d", ErrUnknownOperation, kind)
		return nil
	}
}

// writeSignerList writes a variable-length list of accounts. Lists longer
// than MaxSigners can be written but are not read back.
func writeSignerList(w *io.BinWriter, accs []util.Uint160) {
	w.WriteVarUint(uint64(len(accs)))
	for i := range accs {
		w.WriteBytes(accs[i][:])
	}
}

func readSignerList(r *io.BinReader) []util.Uint160 {
	n := r.ReadVarUint()
	if r.Err != nil {
		return nil
	}
	if n > MaxSigners {
		r.Err = fmt.Errorf("%w: %d signers", errInvalidLayout, n)
		return nil
	}

	res := make([]util.Uint160, n)
	for i := range res {
		r.ReadBytes(res[i][:])
	}
	return res
}
