package treasury

import (
	"strings"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/reserve-treasury/common"
	"github.com/stretchr/testify/require"
)

func encode(t *testing.T, v io.Serializable) []byte {
	w := io.NewBufBinWriter()
	v.EncodeBinary(w.BinWriter)
	require.NoError(t, w.Err)
	return w.Bytes()
}

func decode(t *testing.T, data []byte, v io.Serializable) {
	r := io.NewBinReaderFromBuf(data)
	v.DecodeBinary(r)
	require.NoError(t, r.Err)
}

func TestRecordEncoding(t *testing.T) {
	rec := Record{
		Initialized:               true,
		Signers:                   []util.Uint160{signerA, signerB},
		Threshold:                 2,
		SyntheticMint:             syntheticMint,
		ReserveMint:               reserveMint,
		ReserveAccount:            reserveAccount,
		Circulation:               123,
		Reserves:                  456,
		Paused:                    true,
		EmergencyAuthority:        emergency,
		LastPayoutTime:            -5,
		PayoutWindow:              DefaultPayoutWindow,
		MinReserveRatio:           9000,
		RevenueAccount:            revenue,
		BeneficiaryReserveAccount: beneficiary,
		TotalRevenueProcessed:     1 << 40,
		PayoutCount:               3,
		ComplianceAuthority:       compliance,
		MaxTransactionAmount:      1000,
		DailyVolumeLimit:          10000,
		CurrentDailyVolume:        10,
		LastVolumeReset:           startTime,
	}

	data := encode(t, &rec)
	require.Len(t, data, RecordSize)

	var actual Record
	decode(t, data, &actual)
	require.Equal(t, rec, actual)

	empty, err := new(Record).Bytes()
	require.NoError(t, err)
	require.Len(t, empty, RecordSize)

	t.Run("version", func(t *testing.T) {
		broken := append([]byte{}, data...)
		broken[0], broken[1], broken[2], broken[3] = 0xFF, 0xFF, 0xFF, 0x7F

		r := io.NewBinReaderFromBuf(broken)
		new(Record).DecodeBinary(r)
		require.ErrorIs(t, r.Err, common.ErrVersionMismatch)
	})

	t.Run("truncated", func(t *testing.T) {
		r := io.NewBinReaderFromBuf(data[:RecordSize-1])
		new(Record).DecodeBinary(r)
		require.Error(t, r.Err)
	})

	t.Run("too many signers", func(t *testing.T) {
		rec := Record{Signers: make([]util.Uint160, MaxSigners+1)}
		_, err := rec.Bytes()
		require.Error(t, err)
	})
}

func TestAuditRecordEncoding(t *testing.T) {
	payout := PayoutRecord{
		PayoutID:           1,
		Timestamp:          startTime,
		RevenueAmount:      1000,
		PayoutPercentage:   30,
		SyntheticBurned:    300,
		ReserveReleased:    300,
		Reference:          strings.Repeat("z", MaxReferenceLen),
		ComplianceApproved: true,
		AuthorizedSigners:  []util.Uint160{signerA, signerC},
	}
	data := encode(t, &payout)
	require.Len(t, data, PayoutRecordSize)
	var actualPayout PayoutRecord
	decode(t, data, &actualPayout)
	require.Equal(t, payout, actualPayout)

	cr := ComplianceRecord{
		TransactionID: 2,
		UserWallet:    user,
		Amount:        100,
		Type:          TransactionWithdraw,
		Timestamp:     startTime,
		KYCVerified:   true,
		RiskScore:     42,
		Notes:         "manual review",
	}
	data = encode(t, &cr)
	require.Len(t, data, ComplianceRecordSize)
	var actualCompliance ComplianceRecord
	decode(t, data, &actualCompliance)
	require.Equal(t, cr, actualCompliance)

	audit := ReserveAuditRecord{
		AuditID:      3,
		Timestamp:    startTime,
		Circulation:  10,
		Reserves:     9,
		ReserveRatio: 9000,
		Status:       AuditFailed,
		Auditor:      compliance,
	}
	data = encode(t, &audit)
	require.Len(t, data, ReserveAuditRecordSize)
	var actualAudit ReserveAuditRecord
	decode(t, data, &actualAudit)
	require.Equal(t, audit, actualAudit)

	cr.Notes = strings.Repeat("n", MaxComplianceNotesLen+1)
	w := io.NewBufBinWriter()
	cr.EncodeBinary(w.BinWriter)
	require.ErrorIs(t, w.Err, ErrFieldTooLong)
}

func TestOperationEncoding(t *testing.T) {
	freeze := util.Uint160{0x99}
	ops := []Operation{
		InitializeTreasury{
			Signers:   []util.Uint160{signerA, signerB},
			Threshold: 1,
			Params:    defaultParams(),
		},
		InitializeToken{Decimals: 6},
		InitializeToken{Decimals: 9, FreezeAuthority: &freeze},
		MintTokens{Amount: 10, Source: user, Destination: signerA},
		BurnTokens{Amount: 11, Source: signerA, Destination: user},
		Deposit{Amount: 12, Source: user},
		Withdraw{Amount: 13, Destination: signerB},
		WeeklyPayout{RevenueAmount: 14, PayoutPercentage: 15},
		EmergencyPause{},
		EmergencyUnpause{},
		UpdateTreasury{Signers: []util.Uint160{signerC}, Threshold: 1},
		UpdateComplianceLimits{MaxTransactionAmount: 16, DailyVolumeLimit: 17},
		AuditReserves{Notes: "quarterly"},
	}

	for _, op := range ops {
		w := io.NewBufBinWriter()
		EncodeOperation(w.BinWriter, op)
		require.NoError(t, w.Err)

		r := io.NewBinReaderFromBuf(w.Bytes())
		actual := DecodeOperation(r)
		require.NoError(t, r.Err)
		require.Equal(t, op, actual)
	}

	r := io.NewBinReaderFromBuf([]byte{0xFF})
	require.Nil(t, DecodeOperation(r))
	require.ErrorIs(t, r.Err, ErrUnknownOperation)
}
