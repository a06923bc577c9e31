package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/reserve-treasury/common"
	"github.com/nspcc-dev/reserve-treasury/config"
	"github.com/nspcc-dev/reserve-treasury/dump"
	"github.com/nspcc-dev/reserve-treasury/host"
	"github.com/nspcc-dev/reserve-treasury/treasury"
)

const usage = `Usage: treasury [-config file] <command> [flags]

Commands:
  create  allocate storage for a new treasury
  status  print the treasury record
  dump    write the treasury record and audit trails to files
  version print the version
`

func main() {
	err := run(os.Args[1:], os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("treasury", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() { fmt.Fprint(out, usage) }
	cfgPath := fs.String("config", "", "Path to the YAML configuration file")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("missing command")
	}

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		cfg, err = config.Load(*cfgPath)
		if err != nil {
			return err
		}
	}

	cmd, cmdArgs := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "version":
		fmt.Fprintln(out, common.VersionString())
		return nil
	case "create", "status", "dump":
	default:
		fs.Usage()
		return fmt.Errorf("unknown command '%s'", cmd)
	}

	b, err := newBackend(cfg)
	if err != nil {
		return err
	}
	defer b.close()

	switch cmd {
	case "create":
		return create(b, cmdArgs, out)
	case "status":
		return status(b, cmdArgs, out)
	default:
		return _dump(b, cmdArgs, out)
	}
}

func parseTreasury(fs *flag.FlagSet, args []string) (util.Uint160, error) {
	addr := fs.String("treasury", "", "Address of the treasury")
	if err := fs.Parse(args); err != nil {
		return util.Uint160{}, err
	}
	if *addr == "" {
		return util.Uint160{}, errors.New("missing treasury address")
	}

	id, err := address.StringToUint160(*addr)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("invalid treasury address '%s': %w", *addr, err)
	}
	return id, nil
}

func create(b *backend, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.SetOutput(out)

	id, err := parseTreasury(fs, args)
	if err != nil {
		return err
	}

	if err = b.host.CreateTreasury(id, b.cfg.Treasury.Allocation); err != nil {
		return err
	}

	fmt.Fprintf(out, "Treasury %s created, program authority %s\n",
		address.Uint160ToString(id), address.Uint160ToString(b.host.Authority(id)))
	return nil
}

func status(b *backend, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(out)

	id, err := parseTreasury(fs, args)
	if err != nil {
		return err
	}

	rec, err := b.host.Treasury(id)
	if err != nil {
		return err
	}

	printRecord(out, id, rec, decimals(b.host, rec, b.cfg.Treasury.Decimals))
	return nil
}

func printRecord(out io.Writer, id util.Uint160, rec treasury.Record, dec uint8) {
	signers := make([]string, len(rec.Signers))
	for i := range rec.Signers {
		signers[i] = address.Uint160ToString(rec.Signers[i])
	}

	fmt.Fprintf(out, "Treasury:      %s\n", address.Uint160ToString(id))
	fmt.Fprintf(out, "Initialized:   %t\n", rec.Initialized)
	if !rec.Initialized {
		return
	}
	fmt.Fprintf(out, "Paused:        %t\n", rec.Paused)
	fmt.Fprintf(out, "Signers:       %s (threshold %d)\n", strings.Join(signers, ", "), rec.Threshold)
	fmt.Fprintf(out, "Circulation:   %s\n", dump.FormatAmount(rec.Circulation, dec))
	fmt.Fprintf(out, "Reserves:      %s\n", dump.FormatAmount(rec.Reserves, dec))
	fmt.Fprintf(out, "Reserve ratio: %s (min %s)\n", dump.FormatRatio(rec.ReserveRatio()), dump.FormatRatio(rec.MinReserveRatio))
	fmt.Fprintf(out, "Payouts:       %d, revenue processed %s\n", rec.PayoutCount, dump.FormatAmount(rec.TotalRevenueProcessed, dec))
	lastPayout := "never"
	if rec.PayoutCount > 0 {
		lastPayout = time.Unix(rec.LastPayoutTime, 0).UTC().Format(time.RFC3339)
	}
	fmt.Fprintf(out, "Last payout:   %s\n", lastPayout)
	fmt.Fprintf(out, "Daily volume:  %s of %s\n", dump.FormatAmount(rec.CurrentDailyVolume, dec), dump.FormatAmount(rec.DailyVolumeLimit, dec))
}

func _dump(b *backend, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("dump", flag.ContinueOnError)
	fs.SetOutput(out)
	dir := fs.String("dir", "testdata", "Directory to write the dump to")
	label := fs.String("label", "treasury", "Label of the dump")

	id, err := parseTreasury(fs, args)
	if err != nil {
		return err
	}

	return writeDump(b.host, id, *dir, *label, b.cfg.Treasury.Decimals, out)
}

func writeDump(h *host.Host, id util.Uint160, dir, label string, dec uint8, out io.Writer) error {
	err := os.MkdirAll(dir, 0700)
	if err != nil {
		return fmt.Errorf("create root dir: %w", err)
	}

	d, err := dump.NewCreator(dir, dump.ID{
		Label:     label,
		Timestamp: time.Now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("init local dumper: %w", err)
	}

	defer d.Close()

	err = overtakeTreasury(h, id, dec, d)
	if err != nil {
		return err
	}

	err = d.Flush()
	if err != nil {
		return fmt.Errorf("flush dump: %w", err)
	}

	fmt.Fprintf(out, "Treasury %s is successfully dumped to '%s/'\n", address.Uint160ToString(id), dir)
	return nil
}
