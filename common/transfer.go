package common

var (
	mintPrefix     = []byte{0x01}
	burnPrefix     = []byte{0x02}
	depositPrefix  = []byte{0x03}
	withdrawPrefix = []byte{0x04}
	payoutPrefix   = []byte{0x10}
)

func MintTransferDetails(ref []byte) []byte {
	return append(append([]byte{}, mintPrefix...), ref...)
}

func BurnTransferDetails(ref []byte) []byte {
	return append(append([]byte{}, burnPrefix...), ref...)
}

func DepositTransferDetails(ref []byte) []byte {
	return append(append([]byte{}, depositPrefix...), ref...)
}

func WithdrawTransferDetails(ref []byte) []byte {
	return append(append([]byte{}, withdrawPrefix...), ref...)
}

// PayoutTransferDetails marks transfers made by a periodic payout with the
// payout sequence number.
func PayoutTransferDetails(payoutID uint64) []byte {
	var buf [8]byte
	for i := range buf {
		buf[i] = byte(payoutID >> (8 * i))
	}
	return append(append([]byte{}, payoutPrefix...), buf[:]...)
}
