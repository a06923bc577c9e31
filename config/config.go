/*
Package config defines the configuration of the treasury host.

The configuration is a YAML file. Missing values are taken from Default, so a
file may carry only the settings that differ:

	logger:
	  level: debug
	storage:
	  Type: boltdb
	  BoltDBOptions:
	    FilePath: ./treasury.bolt
	treasury:
	  large_transaction_amount: 5000000000
*/
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/nspcc-dev/neo-go/pkg/core/storage/dbconfig"
	"github.com/nspcc-dev/reserve-treasury/treasury"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Default values of treasury settings.
const (
	// DefaultDecimals is the precision of the reference asset.
	DefaultDecimals = 6
	// DefaultMaxTransactionAmount is 10 000 units with DefaultDecimals.
	DefaultMaxTransactionAmount = 10_000_000_000
	// DefaultDailyVolumeLimit is 100 000 units with DefaultDecimals.
	DefaultDailyVolumeLimit = 100_000_000_000
	// DefaultLargeTransactionAmount is 1 000 units with DefaultDecimals.
	DefaultLargeTransactionAmount = 1_000_000_000
	// DefaultBallotExpiration is the lifetime of co-signing ballots in seconds.
	DefaultBallotExpiration = 3600
)

type (
	// Config is the root of the configuration.
	Config struct {
		Logger   Logger                   `yaml:"logger"`
		Storage  dbconfig.DBConfiguration `yaml:"storage"`
		Treasury Treasury                 `yaml:"treasury"`
		Cosign   Cosign                   `yaml:"cosign"`
	}

	// Logger configures the zap logger.
	Logger struct {
		Level    string `yaml:"level"`
		Encoding string `yaml:"encoding"`
	}

	// Treasury holds parameters of new treasuries and processing settings.
	Treasury struct {
		PayoutWindow           int64  `yaml:"payout_window"`
		MinReserveRatio        uint16 `yaml:"min_reserve_ratio"`
		MaxTransactionAmount   uint64 `yaml:"max_transaction_amount"`
		DailyVolumeLimit       uint64 `yaml:"daily_volume_limit"`
		LargeTransactionAmount uint64 `yaml:"large_transaction_amount"`
		Decimals               uint8  `yaml:"decimals"`
		// Allocation is the storage reserved for new treasury records.
		Allocation int `yaml:"allocation"`
	}

	// Cosign configures the co-signing collector.
	Cosign struct {
		BallotExpiration int64 `yaml:"ballot_expiration"`
	}
)

// Default returns the default configuration: info logs to the console and
// in-memory storage.
func Default() Config {
	return Config{
		Logger: Logger{
			Level:    "info",
			Encoding: "console",
		},
		Storage: dbconfig.DBConfiguration{
			Type: dbconfig.InMemoryDB,
		},
		Treasury: Treasury{
			PayoutWindow:           treasury.DefaultPayoutWindow,
			MinReserveRatio:        treasury.BasisPoints,
			MaxTransactionAmount:   DefaultMaxTransactionAmount,
			DailyVolumeLimit:       DefaultDailyVolumeLimit,
			LargeTransactionAmount: DefaultLargeTransactionAmount,
			Decimals:               DefaultDecimals,
			Allocation:             treasury.RecordSize,
		},
		Cosign: Cosign{
			BallotExpiration: DefaultBallotExpiration,
		},
	}
}

// Load reads the configuration file at path over Default and validates the
// result.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config file '%s': %w", path, err)
	}

	if err = cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config '%s': %w", path, err)
	}

	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.Logger.Level); err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	switch c.Logger.Encoding {
	case "console", "json":
	default:
		return fmt.Errorf("logger: unsupported encoding '%s'", c.Logger.Encoding)
	}

	switch c.Storage.Type {
	case dbconfig.InMemoryDB:
	case dbconfig.BoltDB:
		if c.Storage.BoltDBOptions.FilePath == "" {
			return errors.New("storage: missing BoltDB file path")
		}
	case dbconfig.LevelDB:
		if c.Storage.LevelDBOptions.DataDirectoryPath == "" {
			return errors.New("storage: missing LevelDB directory path")
		}
	default:
		return fmt.Errorf("storage: unsupported type '%s'", c.Storage.Type)
	}

	t := c.Treasury
	switch {
	case t.PayoutWindow < 0:
		return fmt.Errorf("treasury: negative payout window %d", t.PayoutWindow)
	case t.MinReserveRatio > treasury.BasisPoints:
		return fmt.Errorf("treasury: min reserve ratio %d exceeds %d", t.MinReserveRatio, treasury.BasisPoints)
	case t.Decimals > treasury.MaxDecimals:
		return fmt.Errorf("treasury: %d decimals exceed %d", t.Decimals, treasury.MaxDecimals)
	case t.Allocation < treasury.RecordSize:
		return fmt.Errorf("treasury: allocation %d is less than the record size %d", t.Allocation, treasury.RecordSize)
	}

	if c.Cosign.BallotExpiration <= 0 {
		return fmt.Errorf("cosign: non-positive ballot expiration %d", c.Cosign.BallotExpiration)
	}

	return nil
}

// Build returns the logger described by the configuration.
func (l Logger) Build() (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(l.Level)
	if err != nil {
		return nil, err
	}

	c := zap.NewProductionConfig()
	c.Level = zap.NewAtomicLevelAt(lvl)
	c.Encoding = l.Encoding
	if l.Encoding == "console" {
		c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	return c.Build()
}

// ProcessorConfig returns the settings of the treasury processor.
func (t Treasury) ProcessorConfig() treasury.Config {
	return treasury.Config{LargeTransactionAmount: t.LargeTransactionAmount}
}

// Parameters returns parameters of a new treasury. Accounts are left for the
// caller to fill.
func (t Treasury) Parameters() treasury.Parameters {
	return treasury.Parameters{
		PayoutWindow:         t.PayoutWindow,
		MinReserveRatio:      t.MinReserveRatio,
		MaxTransactionAmount: t.MaxTransactionAmount,
		DailyVolumeLimit:     t.DailyVolumeLimit,
	}
}
