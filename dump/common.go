package dump

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// ID is a unique identifier of the dump prepared according to the model
// described in the current package.
type ID struct {
	// Label of the dump source (e.g. treasury name or environment).
	Label string
	// Unix time at which the state was pulled.
	Timestamp int64
}

// String returns hyphen-separated ID fields.
func (x ID) String() string {
	return x.Label + sep + strconv.FormatInt(x.Timestamp, 10)
}

// decodes ID fields from the hyphen-separated string.
func (x *ID) decodeString(s string) error {
	ss := strings.Split(s, sep)
	if len(ss) < 2 {
		return fmt.Errorf("expected '%s'-separated string with at least 2 items", sep)
	}

	n, err := strconv.ParseInt(ss[1], 10, 64)
	if err != nil {
		return fmt.Errorf("decode timestamp from '%s': %w", ss[1], err)
	}

	x.Label = ss[0]
	x.Timestamp = n

	return nil
}

// dumpRecord is a JSON-encoded information about the dumped treasury.
// Amounts are decimal strings, Data holds the binary record.
type dumpRecord struct {
	Treasury     string   `json:"treasury"`
	Decimals     uint8    `json:"decimals"`
	Initialized  bool     `json:"initialized"`
	Paused       bool     `json:"paused"`
	Signers      []string `json:"signers"`
	Threshold    uint8    `json:"threshold"`
	Circulation  string   `json:"circulation"`
	Reserves     string   `json:"reserves"`
	ReserveRatio string   `json:"reserve_ratio"`
	MinRatio     string   `json:"min_reserve_ratio"`
	PayoutCount  uint64   `json:"payout_count"`
	LastPayout   string   `json:"last_payout"`
	Revenue      string   `json:"total_revenue_processed"`
	DailyVolume  string   `json:"current_daily_volume"`
	Data         []byte   `json:"data"`
}

// dumpStreams groups data streams for the record and audit trails.
type dumpStreams struct {
	record, payouts, compliance, audits io.ReadWriteCloser
}

// close closes all opened streams.
func (x *dumpStreams) close() {
	for _, c := range []io.Closer{x.record, x.payouts, x.compliance, x.audits} {
		if c != nil {
			_ = c.Close()
		}
	}
}

const (
	// word separator used in dump file naming
	sep = "-"
	// suffix of file with the treasury record
	recordFileSuffix = "record.json"

	payoutsFileSuffix    = "payouts.csv"
	complianceFileSuffix = "compliance.csv"
	auditsFileSuffix     = "audits.csv"
)

// initDumpStreams opens data streams for the dump files located in the
// specified directory. If read flag is set, streams are read-only. Otherwise,
// files must not exist, and streams are write only.
func initDumpStreams(d *dumpStreams, dir string, id ID, read bool) error {
	var flag int
	var perm os.FileMode

	if read {
		flag = os.O_RDONLY
	} else {
		flag = os.O_CREATE | os.O_WRONLY
		perm = 0600
	}

	for _, f := range []struct {
		suffix string
		stream *io.ReadWriteCloser
	}{
		{recordFileSuffix, &d.record},
		{payoutsFileSuffix, &d.payouts},
		{complianceFileSuffix, &d.compliance},
		{auditsFileSuffix, &d.audits},
	} {
		p := filepath.Join(dir, strings.Join([]string{id.String(), f.suffix}, sep))
		if !read {
			if err := checkFileNotExists(p); err != nil {
				d.close()
				return err
			}
		}

		file, err := os.OpenFile(p, flag, perm)
		if err != nil {
			d.close()
			return fmt.Errorf("open file '%s': %w", p, err)
		}
		*f.stream = file
	}

	return nil
}

// checkFileNotExists checks that there is no file at the specified path.
func checkFileNotExists(p string) error {
	_, err := os.Stat(p)
	if !os.IsNotExist(err) {
		if err == nil {
			err = os.ErrExist
		}
		return fmt.Errorf("file '%s' absence check failed: %w", p, err)
	}
	return nil
}

func formatTime(t int64) string {
	return time.Unix(t, 0).UTC().Format(time.RFC3339)
}

func parseTime(s string) (int64, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0, fmt.Errorf("invalid time '%s': %w", s, err)
	}
	return t.Unix(), nil
}

// formatAccounts renders accounts as space-separated addresses.
func formatAccounts(accs []util.Uint160) string {
	ss := make([]string, len(accs))
	for i := range accs {
		ss[i] = address.Uint160ToString(accs[i])
	}
	return strings.Join(ss, " ")
}

func parseAccounts(s string) ([]util.Uint160, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, nil
	}

	res := make([]util.Uint160, len(fields))
	for i := range fields {
		var err error
		res[i], err = address.StringToUint160(fields[i])
		if err != nil {
			return nil, fmt.Errorf("invalid address '%s': %w", fields[i], err)
		}
	}
	return res, nil
}
