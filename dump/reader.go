package dump

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	nio "github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/reserve-treasury/treasury"
)

// IterateDumps iterates over all treasury dumps collected by the Creator
// model in the specified directory, and passes ID and Reader of each dump
// into f.
func IterateDumps(dir string, f func(ID, *Reader)) error {
	var id ID

	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, e error) error {
		if errors.Is(e, fs.ErrNotExist) {
			return nil
		}
		if e != nil {
			return e
		}

		if d.IsDir() {
			if path != dir {
				return filepath.SkipDir
			}
			return nil
		}

		name := d.Name()

		if !strings.HasSuffix(name, recordFileSuffix) {
			return nil
		}

		err := id.decodeString(name)
		if err != nil {
			return fmt.Errorf("decode dump ID from file name '%s': %w", name, err)
		}

		r, err := Open(dir, id)
		if err != nil {
			return fmt.Errorf("open dump ('%s'): %w", name, err)
		}

		f(id, r)

		return nil
	})
}

// Reader reads the treasury state collected in the superior dump.
type Reader struct {
	treasury util.Uint160
	decimals uint8
	record   treasury.Record

	payouts    []treasury.PayoutRecord
	compliance []treasury.ComplianceRecord
	audits     []treasury.ReserveAuditRecord
}

// Open reads the dump with the given ID from dir.
func Open(dir string, id ID) (*Reader, error) {
	var streams dumpStreams

	err := initDumpStreams(&streams, dir, id, true)
	if err != nil {
		return nil, err
	}
	defer streams.close()

	var r Reader
	if err = r.fromDumpStreams(&streams); err != nil {
		return nil, err
	}

	return &r, nil
}

func (x *Reader) fromDumpStreams(s *dumpStreams) error {
	var rec dumpRecord

	err := json.NewDecoder(s.record).Decode(&rec)
	if err != nil {
		return fmt.Errorf("decode treasury record from JSON: %w", err)
	}

	x.treasury, err = address.StringToUint160(rec.Treasury)
	if err != nil {
		return fmt.Errorf("decode treasury address: %w", err)
	}
	x.decimals = rec.Decimals

	br := nio.NewBinReaderFromBuf(rec.Data)
	x.record.DecodeBinary(br)
	if br.Err != nil {
		return fmt.Errorf("decode treasury record: %w", br.Err)
	}

	err = readCSV(s.payouts, 9, func(rec []string) error {
		p, err := x.decodePayout(rec)
		if err == nil {
			x.payouts = append(x.payouts, p)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("read payouts: %w", err)
	}

	err = readCSV(s.compliance, 10, func(rec []string) error {
		c, err := x.decodeCompliance(rec)
		if err == nil {
			x.compliance = append(x.compliance, c)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("read compliance entries: %w", err)
	}

	err = readCSV(s.audits, 8, func(rec []string) error {
		a, err := x.decodeReserveAudit(rec)
		if err == nil {
			x.audits = append(x.audits, a)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("read reserve audits: %w", err)
	}

	return nil
}

func readCSV(r io.Reader, fields int, f func([]string) error) error {
	_csv := csv.NewReader(r)
	_csv.FieldsPerRecord = fields
	_csv.ReuseRecord = true

	for {
		rec, err := _csv.Read()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("read next CSV record: %w", err)
		}

		// out-of-range safety guaranteed by csv settings
		if err = f(rec); err != nil {
			return err
		}
	}
}

func (x *Reader) decodePayout(rec []string) (p treasury.PayoutRecord, err error) {
	if p.PayoutID, err = strconv.ParseUint(rec[0], 10, 64); err != nil {
		return p, fmt.Errorf("decode payout ID: %w", err)
	}
	if p.Timestamp, err = parseTime(rec[1]); err != nil {
		return p, err
	}
	if p.RevenueAmount, err = ParseAmount(rec[2], x.decimals); err != nil {
		return p, err
	}
	pct, err := strconv.ParseUint(rec[3], 10, 8)
	if err != nil {
		return p, fmt.Errorf("decode payout percentage: %w", err)
	}
	p.PayoutPercentage = uint8(pct)
	if p.SyntheticBurned, err = ParseAmount(rec[4], x.decimals); err != nil {
		return p, err
	}
	if p.ReserveReleased, err = ParseAmount(rec[5], x.decimals); err != nil {
		return p, err
	}
	p.Reference = rec[6]
	if p.ComplianceApproved, err = strconv.ParseBool(rec[7]); err != nil {
		return p, fmt.Errorf("decode compliance approval: %w", err)
	}
	p.AuthorizedSigners, err = parseAccounts(rec[8])
	return p, err
}

func (x *Reader) decodeCompliance(rec []string) (c treasury.ComplianceRecord, err error) {
	if c.TransactionID, err = strconv.ParseUint(rec[0], 10, 64); err != nil {
		return c, fmt.Errorf("decode transaction ID: %w", err)
	}
	if c.UserWallet, err = address.StringToUint160(rec[1]); err != nil {
		return c, fmt.Errorf("decode user wallet: %w", err)
	}
	if c.Amount, err = ParseAmount(rec[2], x.decimals); err != nil {
		return c, err
	}
	if c.Type, err = parseTransactionType(rec[3]); err != nil {
		return c, err
	}
	if c.Timestamp, err = parseTime(rec[4]); err != nil {
		return c, err
	}
	for i, b := range []*bool{&c.KYCVerified, &c.AMLCleared, &c.ComplianceApproved} {
		if *b, err = strconv.ParseBool(rec[5+i]); err != nil {
			return c, fmt.Errorf("decode compliance flag: %w", err)
		}
	}
	score, err := strconv.ParseUint(rec[8], 10, 8)
	if err != nil {
		return c, fmt.Errorf("decode risk score: %w", err)
	}
	c.RiskScore = uint8(score)
	c.Notes = rec[9]
	return c, nil
}

func (x *Reader) decodeReserveAudit(rec []string) (a treasury.ReserveAuditRecord, err error) {
	if a.AuditID, err = strconv.ParseUint(rec[0], 10, 64); err != nil {
		return a, fmt.Errorf("decode audit ID: %w", err)
	}
	if a.Timestamp, err = parseTime(rec[1]); err != nil {
		return a, err
	}
	if a.Circulation, err = ParseAmount(rec[2], x.decimals); err != nil {
		return a, err
	}
	if a.Reserves, err = ParseAmount(rec[3], x.decimals); err != nil {
		return a, err
	}
	ratio, err := strconv.ParseUint(rec[4], 10, 16)
	if err != nil {
		return a, fmt.Errorf("decode reserve ratio: %w", err)
	}
	a.ReserveRatio = uint16(ratio)
	if a.Status, err = parseAuditStatus(rec[5]); err != nil {
		return a, err
	}
	if a.Auditor, err = address.StringToUint160(rec[6]); err != nil {
		return a, fmt.Errorf("decode auditor: %w", err)
	}
	a.Notes = rec[7]
	return a, nil
}

// Treasury returns the identifier of the dumped treasury.
func (x *Reader) Treasury() util.Uint160 {
	return x.treasury
}

// Decimals returns the precision amounts are written with.
func (x *Reader) Decimals() uint8 {
	return x.decimals
}

// Record returns the dumped treasury record.
func (x *Reader) Record() treasury.Record {
	return x.record
}

// IteratePayouts passes all payout entries into f in the dump order.
func (x *Reader) IteratePayouts(f func(treasury.PayoutRecord)) {
	for i := range x.payouts {
		f(x.payouts[i])
	}
}

// IterateCompliance passes all compliance entries into f in the dump order.
func (x *Reader) IterateCompliance(f func(treasury.ComplianceRecord)) {
	for i := range x.compliance {
		f(x.compliance[i])
	}
}

// IterateReserveAudits passes all reserve audit entries into f in the dump
// order.
func (x *Reader) IterateReserveAudits(f func(treasury.ReserveAuditRecord)) {
	for i := range x.audits {
		f(x.audits[i])
	}
}
