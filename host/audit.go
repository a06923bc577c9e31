package host

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/reserve-treasury/common"
	"github.com/nspcc-dev/reserve-treasury/treasury"
)

const (
	payoutKeyPrefix     = 'p'
	complianceKeyPrefix = 'c'
	reserveAuditPrefix  = 'v'
	auditCounterPrefix  = 'n'
)

func auditPrefix(prefix byte, id util.Uint160) []byte {
	return append([]byte{prefix}, id.BytesBE()...)
}

// auditKey orders entries of a treasury by their big-endian identifiers.
func auditKey(prefix byte, id util.Uint160, n uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], n)
	return append(auditPrefix(prefix, id), buf[:]...)
}

// auditLog implements treasury.AuditLog on top of the operation scope.
type auditLog struct {
	st       *storage.MemCachedStore
	treasury util.Uint160
}

func (a *auditLog) AppendPayout(p treasury.PayoutRecord) error {
	return common.SetSerialized(a.st, auditKey(payoutKeyPrefix, a.treasury, p.PayoutID), &p)
}

func (a *auditLog) AppendCompliance(c treasury.ComplianceRecord) (uint64, error) {
	id, err := a.nextID(complianceKeyPrefix)
	if err != nil {
		return 0, err
	}

	c.TransactionID = id

	return id, common.SetSerialized(a.st, auditKey(complianceKeyPrefix, a.treasury, id), &c)
}

func (a *auditLog) AppendReserveAudit(r treasury.ReserveAuditRecord) (uint64, error) {
	id, err := a.nextID(reserveAuditPrefix)
	if err != nil {
		return 0, err
	}

	r.AuditID = id

	return id, common.SetSerialized(a.st, auditKey(reserveAuditPrefix, a.treasury, id), &r)
}

// nextID increments and returns the counter of entries of the given kind.
// Identifiers start from 1.
func (a *auditLog) nextID(kind byte) (uint64, error) {
	key := append([]byte{auditCounterPrefix, kind}, a.treasury.BytesBE()...)

	var n uint64
	data, err := a.st.Get(key)
	switch {
	case err == nil:
		if len(data) != 8 {
			return 0, fmt.Errorf("invalid audit counter length: %d", len(data))
		}
		n = binary.LittleEndian.Uint64(data)
	case !errors.Is(err, storage.ErrKeyNotFound):
		return 0, fmt.Errorf("get audit counter: %w", err)
	}

	n++

	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, n)
	a.st.Put(key, buf)

	return n, nil
}

// seekAudit passes every entry with the prefix to decode in the key order.
// It stops on the first decoding error.
func seekAudit(st storage.Store, prefix []byte, decode func(*io.BinReader)) error {
	var dErr error

	st.Seek(storage.SeekRange{Prefix: prefix}, func(_, v []byte) bool {
		r := io.NewBinReaderFromBuf(v)
		decode(r)
		if r.Err != nil {
			dErr = fmt.Errorf("decode audit entry: %w", r.Err)
			return false
		}
		return true
	})

	return dErr
}

// Payouts returns payout entries of the treasury ordered by identifiers.
func (h *Host) Payouts(id util.Uint160) ([]treasury.PayoutRecord, error) {
	var res []treasury.PayoutRecord
	err := seekAudit(h.store, auditPrefix(payoutKeyPrefix, id), func(r *io.BinReader) {
		var p treasury.PayoutRecord
		p.DecodeBinary(r)
		res = append(res, p)
	})
	return res, err
}

// ComplianceRecords returns compliance entries of the treasury ordered by
// identifiers.
func (h *Host) ComplianceRecords(id util.Uint160) ([]treasury.ComplianceRecord, error) {
	var res []treasury.ComplianceRecord
	err := seekAudit(h.store, auditPrefix(complianceKeyPrefix, id), func(r *io.BinReader) {
		var c treasury.ComplianceRecord
		c.DecodeBinary(r)
		res = append(res, c)
	})
	return res, err
}

// ReserveAudits returns reserve audit entries of the treasury ordered by
// identifiers.
func (h *Host) ReserveAudits(id util.Uint160) ([]treasury.ReserveAuditRecord, error) {
	var res []treasury.ReserveAuditRecord
	err := seekAudit(h.store, auditPrefix(reserveAuditPrefix, id), func(r *io.BinReader) {
		var a treasury.ReserveAuditRecord
		a.DecodeBinary(r)
		res = append(res, a)
	})
	return res, err
}
