package dump

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/reserve-treasury/treasury"
)

// Creator dumps the state of a treasury. Output file format:
//
//	'<label>-<timestamp>-record.json': JSON object with the treasury record
//	'<label>-<timestamp>-payouts.csv': CSV of payout entries
//	'<label>-<timestamp>-compliance.csv': CSV of compliance entries
//	'<label>-<timestamp>-audits.csv': CSV of reserve audit entries
//
// Amounts are decimals with the precision of the synthetic unit, times are
// RFC 3339 strings and accounts are Neo addresses.
//
// Use IterateDumps or Open to access existing dumps.
type Creator struct {
	dumpStreams

	decimals uint8
	record   *dumpRecord

	payoutsCSV, complianceCSV, auditsCSV *csv.Writer
}

// NewCreator returns Creator which dumps a treasury into given directory.
// The dump is identified by specified ID. Resulting Creator should be closed
// when finished working with it.
//
// NewCreator fails if dump with provided ID already exists.
func NewCreator(dir string, id ID) (*Creator, error) {
	if id.Label == "" || strings.Contains(id.Label, sep) {
		return nil, fmt.Errorf("invalid dump label '%s'", id.Label)
	}

	var res Creator

	err := initDumpStreams(&res.dumpStreams, dir, id, false)
	if err != nil {
		return nil, err
	}

	res.payoutsCSV = csv.NewWriter(res.payouts)
	res.complianceCSV = csv.NewWriter(res.compliance)
	res.auditsCSV = csv.NewWriter(res.audits)

	return &res, nil
}

// SetRecord sets the treasury record of the dump. Amounts of all entries are
// rendered with the given decimals, so SetRecord must be called before any
// entry is added.
func (x *Creator) SetRecord(id util.Uint160, rec treasury.Record, decimals uint8) error {
	data, err := rec.Bytes()
	if err != nil {
		return err
	}

	signers := make([]string, len(rec.Signers))
	for i := range rec.Signers {
		signers[i] = address.Uint160ToString(rec.Signers[i])
	}

	x.decimals = decimals
	x.record = &dumpRecord{
		Treasury:     address.Uint160ToString(id),
		Decimals:     decimals,
		Initialized:  rec.Initialized,
		Paused:       rec.Paused,
		Signers:      signers,
		Threshold:    rec.Threshold,
		Circulation:  FormatAmount(rec.Circulation, decimals),
		Reserves:     FormatAmount(rec.Reserves, decimals),
		ReserveRatio: FormatRatio(rec.ReserveRatio()),
		MinRatio:     FormatRatio(rec.MinReserveRatio),
		PayoutCount:  rec.PayoutCount,
		LastPayout:   formatTime(rec.LastPayoutTime),
		Revenue:      FormatAmount(rec.TotalRevenueProcessed, decimals),
		DailyVolume:  FormatAmount(rec.CurrentDailyVolume, decimals),
		Data:         data,
	}

	return nil
}

// AddPayout adds a payout entry to the dump.
func (x *Creator) AddPayout(p treasury.PayoutRecord) error {
	err := x.payoutsCSV.Write([]string{
		strconv.FormatUint(p.PayoutID, 10),
		formatTime(p.Timestamp),
		FormatAmount(p.RevenueAmount, x.decimals),
		strconv.FormatUint(uint64(p.PayoutPercentage), 10),
		FormatAmount(p.SyntheticBurned, x.decimals),
		FormatAmount(p.ReserveReleased, x.decimals),
		p.Reference,
		strconv.FormatBool(p.ComplianceApproved),
		formatAccounts(p.AuthorizedSigners),
	})
	if err != nil {
		return fmt.Errorf("write payout as CSV data: %w", err)
	}
	return nil
}

// AddCompliance adds a compliance entry to the dump.
func (x *Creator) AddCompliance(c treasury.ComplianceRecord) error {
	err := x.complianceCSV.Write([]string{
		strconv.FormatUint(c.TransactionID, 10),
		address.Uint160ToString(c.UserWallet),
		FormatAmount(c.Amount, x.decimals),
		c.Type.String(),
		formatTime(c.Timestamp),
		strconv.FormatBool(c.KYCVerified),
		strconv.FormatBool(c.AMLCleared),
		strconv.FormatBool(c.ComplianceApproved),
		strconv.FormatUint(uint64(c.RiskScore), 10),
		c.Notes,
	})
	if err != nil {
		return fmt.Errorf("write compliance entry as CSV data: %w", err)
	}
	return nil
}

// AddReserveAudit adds a reserve audit entry to the dump.
func (x *Creator) AddReserveAudit(a treasury.ReserveAuditRecord) error {
	err := x.auditsCSV.Write([]string{
		strconv.FormatUint(a.AuditID, 10),
		formatTime(a.Timestamp),
		FormatAmount(a.Circulation, x.decimals),
		FormatAmount(a.Reserves, x.decimals),
		strconv.FormatUint(uint64(a.ReserveRatio), 10),
		a.Status.String(),
		address.Uint160ToString(a.Auditor),
		a.Notes,
	})
	if err != nil {
		return fmt.Errorf("write reserve audit as CSV data: %w", err)
	}
	return nil
}

// Flush flushes accumulated dump to the file system.
func (x *Creator) Flush() error {
	if x.record == nil {
		return errors.New("treasury record is not set")
	}

	jEnc := json.NewEncoder(x.dumpStreams.record)
	jEnc.SetIndent("", " ")

	err := jEnc.Encode(x.record)
	if err != nil {
		return fmt.Errorf("encode treasury record to JSON: %w", err)
	}

	for _, w := range []*csv.Writer{x.payoutsCSV, x.complianceCSV, x.auditsCSV} {
		w.Flush()
		if err = w.Error(); err != nil {
			return fmt.Errorf("flush CSV data: %w", err)
		}
	}

	return nil
}

// Close releases underlying resources of the Creator and makes it unusable.
func (x *Creator) Close() {
	x.close()
}
