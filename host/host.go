/*
Package host runs treasury operations against a neo-go key-value store.

Host owns treasury records, token balances and audit entries. Every request is
verified, then executed by the treasury processor in a separate cached scope
of the store. The scope is persisted only if the whole operation succeeds, so
no partial effects are ever visible. Requests are serialized: at most one
operation is executed at a time.
*/
package host

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/mr-tron/base58"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/reserve-treasury/common"
	"github.com/nspcc-dev/reserve-treasury/token"
	"github.com/nspcc-dev/reserve-treasury/treasury"
	"go.uber.org/zap"
)

const (
	recordKeyPrefix     = 't'
	allocationKeyPrefix = 'z'
	requestKeyPrefix    = 'r'
)

var (
	// ErrTreasuryNotFound is returned for requests to unknown treasuries.
	ErrTreasuryNotFound = errors.New("treasury not found")
	// ErrTreasuryExists is returned on attempt to create an existing treasury.
	ErrTreasuryExists = errors.New("treasury already exists")
	// ErrReplayed is returned for requests that were already applied.
	ErrReplayed = errors.New("request was already processed")
)

// Host executes treasury operations.
type Host struct {
	log   *zap.Logger
	store storage.Store
	clock treasury.Clock
	proc  *treasury.Processor

	mtx sync.Mutex
}

// New returns a Host operating on the store.
func New(log *zap.Logger, store storage.Store, clock treasury.Clock, cfg treasury.Config) *Host {
	if log == nil {
		log = zap.NewNop()
	}
	return &Host{
		log:   log,
		store: store,
		clock: clock,
		proc:  treasury.NewProcessor(log.With(zap.String("component", "treasury")), cfg),
	}
}

func recordKey(id util.Uint160) []byte {
	return append([]byte{recordKeyPrefix}, id.BytesBE()...)
}

func allocationKey(id util.Uint160) []byte {
	return append([]byte{allocationKeyPrefix}, id.BytesBE()...)
}

func requestKey(id util.Uint256) []byte {
	return append([]byte{requestKeyPrefix}, id.BytesBE()...)
}

// Authority returns the program-controlled identity of the treasury.
func (h *Host) Authority(id util.Uint160) util.Uint160 {
	return common.ProgramAuthority(id)
}

// CreateTreasury allocates storage for a new uninitialized treasury. The
// allocation must be enough to hold the treasury record.
func (h *Host) CreateTreasury(id util.Uint160, allocation int) error {
	if allocation < treasury.RecordSize {
		return fmt.Errorf("%w: %d bytes allocated, %d required",
			treasury.ErrNotRentExempt, allocation, treasury.RecordSize)
	}

	return h.update(func(scope *storage.MemCachedStore) error {
		if _, err := scope.Get(allocationKey(id)); err == nil {
			return fmt.Errorf("%w: %s", ErrTreasuryExists, address.Uint160ToString(id))
		} else if !errors.Is(err, storage.ErrKeyNotFound) {
			return err
		}

		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, uint32(allocation))
		scope.Put(allocationKey(id), buf)

		return common.SetSerialized(scope, recordKey(id), new(treasury.Record))
	})
}

// Treasury returns the current treasury record.
func (h *Host) Treasury(id util.Uint160) (treasury.Record, error) {
	return loadRecord(h.store, id)
}

func loadRecord(st common.Getter, id util.Uint160) (treasury.Record, error) {
	alloc, err := st.Get(allocationKey(id))
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return treasury.Record{}, fmt.Errorf("%w: %s", ErrTreasuryNotFound, address.Uint160ToString(id))
		}
		return treasury.Record{}, err
	}
	if len(alloc) != 4 || binary.LittleEndian.Uint32(alloc) < treasury.RecordSize {
		return treasury.Record{}, treasury.ErrNotRentExempt
	}

	var rec treasury.Record
	ok, err := common.GetSerialized(st, recordKey(id), &rec)
	if err != nil {
		return treasury.Record{}, fmt.Errorf("load treasury record: %w", err)
	}
	if !ok {
		return treasury.Record{}, fmt.Errorf("%w: %s", ErrTreasuryNotFound, address.Uint160ToString(id))
	}

	return rec, nil
}

// UpdateTokens runs f against the token ledger in a separate scope which is
// persisted if f succeeds.
func (h *Host) UpdateTokens(f func(*token.Ledger) error) error {
	return h.update(func(scope *storage.MemCachedStore) error {
		return f(token.NewLedger(h.log, scope))
	})
}

// Tokens returns a read-only view of the token ledger. Writes made through it
// are never persisted.
func (h *Host) Tokens() *token.Ledger {
	return token.NewLedger(h.log, storage.NewMemCachedStore(h.store))
}

// update serializes f with all other operations and persists its writes
// when it succeeds.
func (h *Host) update(f func(*storage.MemCachedStore) error) error {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	scope := storage.NewMemCachedStore(h.store)
	if err := f(scope); err != nil {
		return err
	}

	if _, err := scope.Persist(); err != nil {
		return fmt.Errorf("persist changes: %w", err)
	}

	return nil
}

// Submit verifies and executes the request.
func (h *Host) Submit(ctx context.Context, req SignedRequest) (*treasury.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	witnesses, err := req.Witnesses()
	if err != nil {
		return nil, err
	}
	reqID, err := req.ID()
	if err != nil {
		return nil, err
	}

	ref := req.Reference
	if ref == "" && len(req.Signatures) > 0 {
		ref = base58.Encode(req.Signatures[0].Value)
	}

	var res *treasury.Receipt

	err = h.update(func(scope *storage.MemCachedStore) error {
		if _, err := scope.Get(requestKey(reqID)); err == nil {
			return fmt.Errorf("%w: %s", ErrReplayed, reqID.StringLE())
		}

		rec, err := loadRecord(scope, req.Treasury)
		if err != nil {
			return err
		}

		env := treasury.Env{
			Mover:     token.Mover{Ledger: token.NewLedger(h.log, scope)},
			Clock:     h.clock,
			Audit:     &auditLog{st: scope, treasury: req.Treasury},
			Authority: common.ProgramAuthority(req.Treasury),
		}

		res, err = h.proc.Process(ctx, env, &rec, treasury.Request{
			Caller:      req.Caller,
			Witnesses:   witnesses,
			Reference:   ref,
			Attestation: req.Attestation,
			Op:          req.Op,
		})
		if err != nil {
			return err
		}

		if err := common.SetSerialized(scope, recordKey(req.Treasury), &rec); err != nil {
			return err
		}
		scope.Put(requestKey(reqID), []byte{1})

		return nil
	})
	if err != nil {
		h.log.Debug("request rejected",
			zap.String("treasury", address.Uint160ToString(req.Treasury)),
			zap.Stringer("request", reqID),
			zap.Error(err))
		return nil, err
	}

	h.log.Info("request processed",
		zap.String("treasury", address.Uint160ToString(req.Treasury)),
		zap.Stringer("request", reqID),
		zap.Stringer("operation", res.Kind))

	return res, nil
}
