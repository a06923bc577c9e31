package dump

import (
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/reserve-treasury/treasury"
	"github.com/stretchr/testify/require"
)

func TestAmount(t *testing.T) {
	for _, tc := range []struct {
		amount   uint64
		decimals uint8
		s        string
	}{
		{0, 6, "0"},
		{1, 6, "0.000001"},
		{1_500_000, 6, "1.5"},
		{1_000_000, 0, "1000000"},
		{18446744073709551615, 18, "18.446744073709551615"},
	} {
		require.Equal(t, tc.s, FormatAmount(tc.amount, tc.decimals))

		v, err := ParseAmount(tc.s, tc.decimals)
		require.NoError(t, err)
		require.Equal(t, tc.amount, v)
	}

	for _, s := range []string{"0.0000001", "-1", "18446744073709551616", "abc"} {
		_, err := ParseAmount(s, 6)
		require.Error(t, err, s)
	}

	require.Equal(t, "100.00%", FormatRatio(treasury.BasisPoints))
	require.Equal(t, "87.50%", FormatRatio(8750))
}

func testRecord() treasury.Record {
	return treasury.Record{
		Initialized:           true,
		Signers:               []util.Uint160{{1}, {2}},
		Threshold:             2,
		SyntheticMint:         util.Uint160{0x11},
		ReserveMint:           util.Uint160{0x10},
		ReserveAccount:        util.Uint160{0x20},
		Circulation:           2_000_000,
		Reserves:              2_500_000,
		EmergencyAuthority:    util.Uint160{1},
		LastPayoutTime:        1_700_000_000,
		PayoutWindow:          treasury.DefaultPayoutWindow,
		MinReserveRatio:       treasury.BasisPoints,
		TotalRevenueProcessed: 1000,
		PayoutCount:           1,
		ComplianceAuthority:   util.Uint160{2},
		MaxTransactionAmount:  1_000_000,
		DailyVolumeLimit:      10_000_000,
		LastVolumeReset:       1_700_000_000,
	}
}

func TestCreateAndRead(t *testing.T) {
	dir := t.TempDir()
	id := ID{Label: "mainnet", Timestamp: 1_700_000_500}
	treasuryID := util.Uint160{0x7E}

	payout := treasury.PayoutRecord{
		PayoutID:           1,
		Timestamp:          1_700_000_000,
		RevenueAmount:      1000,
		PayoutPercentage:   30,
		SyntheticBurned:    300,
		ReserveReleased:    300,
		Reference:          "3yZe7d",
		ComplianceApproved: true,
		AuthorizedSigners:  []util.Uint160{{1}, {2}},
	}
	compliance := treasury.ComplianceRecord{
		TransactionID:      1,
		UserWallet:         util.Uint160{0x30},
		Amount:             750_000,
		Type:               treasury.TransactionWithdraw,
		Timestamp:          1_700_000_100,
		KYCVerified:        true,
		AMLCleared:         true,
		ComplianceApproved: true,
		RiskScore:          75,
		Notes:              "desk review, ok",
	}
	audit := treasury.ReserveAuditRecord{
		AuditID:      1,
		Timestamp:    1_700_000_200,
		Circulation:  2_000_000,
		Reserves:     2_500_000,
		ReserveRatio: treasury.BasisPoints,
		Status:       treasury.AuditPassed,
		Auditor:      util.Uint160{2},
		Notes:        "",
	}

	c, err := NewCreator(dir, id)
	require.NoError(t, err)

	require.Error(t, c.Flush())

	require.NoError(t, c.SetRecord(treasuryID, testRecord(), 6))
	require.NoError(t, c.AddPayout(payout))
	require.NoError(t, c.AddCompliance(compliance))
	require.NoError(t, c.AddReserveAudit(audit))
	require.NoError(t, c.Flush())
	c.Close()

	_, err = NewCreator(dir, id)
	require.Error(t, err)

	r, err := Open(dir, id)
	require.NoError(t, err)
	require.Equal(t, treasuryID, r.Treasury())
	require.EqualValues(t, 6, r.Decimals())
	require.Equal(t, testRecord(), r.Record())

	var payouts []treasury.PayoutRecord
	r.IteratePayouts(func(p treasury.PayoutRecord) { payouts = append(payouts, p) })
	require.Equal(t, []treasury.PayoutRecord{payout}, payouts)

	var entries []treasury.ComplianceRecord
	r.IterateCompliance(func(c treasury.ComplianceRecord) { entries = append(entries, c) })
	require.Equal(t, []treasury.ComplianceRecord{compliance}, entries)

	var audits []treasury.ReserveAuditRecord
	r.IterateReserveAudits(func(a treasury.ReserveAuditRecord) { audits = append(audits, a) })
	require.Equal(t, []treasury.ReserveAuditRecord{audit}, audits)

	var ids []ID
	require.NoError(t, IterateDumps(dir, func(id ID, r *Reader) {
		ids = append(ids, id)
		require.Equal(t, treasuryID, r.Treasury())
	}))
	require.Equal(t, []ID{id}, ids)
}

func TestInvalidLabel(t *testing.T) {
	for _, l := range []string{"", "main-net"} {
		_, err := NewCreator(t.TempDir(), ID{Label: l, Timestamp: 1})
		require.Error(t, err)
	}
}
