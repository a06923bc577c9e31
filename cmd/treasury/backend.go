package main

import (
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/reserve-treasury/config"
	"github.com/nspcc-dev/reserve-treasury/dump"
	"github.com/nspcc-dev/reserve-treasury/host"
	"github.com/nspcc-dev/reserve-treasury/treasury"
	"go.uber.org/zap"
)

// wrapper over the treasury host providing services needed for commands.
type backend struct {
	log   *zap.Logger
	store storage.Store
	host  *host.Host
	cfg   config.Config
}

// newBackend opens the configured store and starts the host on it.
func newBackend(cfg config.Config) (*backend, error) {
	log, err := cfg.Logger.Build()
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	st, err := storage.NewStore(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Storage.Type, err)
	}

	return &backend{
		log:   log,
		store: st,
		host:  host.New(log, st, new(host.SystemClock), cfg.Treasury.ProcessorConfig()),
		cfg:   cfg,
	}, nil
}

func (x *backend) close() {
	if err := x.store.Close(); err != nil {
		x.log.Warn("can't close store", zap.Error(err))
	}
	_ = x.log.Sync()
}

// decimals returns the precision of the treasury synthetic unit. Treasuries
// without an initialized mint use the configured precision.
func decimals(h *host.Host, rec treasury.Record, fallback uint8) uint8 {
	m, err := h.Tokens().GetMint(rec.SyntheticMint)
	if err != nil {
		return fallback
	}
	return m.Decimals
}

// overtakeTreasury writes the record and all audit trails of the treasury
// into the dump.
func overtakeTreasury(h *host.Host, id util.Uint160, fallbackDecimals uint8, to *dump.Creator) error {
	rec, err := h.Treasury(id)
	if err != nil {
		return err
	}

	err = to.SetRecord(id, rec, decimals(h, rec, fallbackDecimals))
	if err != nil {
		return fmt.Errorf("dump record of %s: %w", address.Uint160ToString(id), err)
	}

	payouts, err := h.Payouts(id)
	if err != nil {
		return fmt.Errorf("read payouts: %w", err)
	}
	for i := range payouts {
		if err = to.AddPayout(payouts[i]); err != nil {
			return err
		}
	}

	compliance, err := h.ComplianceRecords(id)
	if err != nil {
		return fmt.Errorf("read compliance entries: %w", err)
	}
	for i := range compliance {
		if err = to.AddCompliance(compliance[i]); err != nil {
			return err
		}
	}

	audits, err := h.ReserveAudits(id)
	if err != nil {
		return fmt.Errorf("read reserve audits: %w", err)
	}
	for i := range audits {
		if err = to.AddReserveAudit(audits[i]); err != nil {
			return err
		}
	}

	return nil
}
