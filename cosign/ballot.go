package cosign

import (
	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/reserve-treasury/host"
	"github.com/nspcc-dev/reserve-treasury/treasury"
)

// Ballot collects approvals of a single request.
type Ballot struct {
	// ID of the request.
	ID util.Uint256

	// Request with signatures of all voters attached.
	Request host.SignedRequest

	// Treasury signers that already approved the request.
	Voters []util.Uint160

	// Time of the last vote.
	Updated int64
}

const ballotKeyPrefix = 'b'

func ballotKey(id util.Uint256) []byte {
	return append([]byte{ballotKeyPrefix}, id.BytesBE()...)
}

// EncodeBinary implements io.Serializable.
func (b *Ballot) EncodeBinary(w *io.BinWriter) {
	w.WriteBytes(b.ID[:])
	b.Request.EncodeBinary(w)
	w.WriteVarUint(uint64(len(b.Voters)))
	for i := range b.Voters {
		w.WriteBytes(b.Voters[i][:])
	}
	w.WriteU64LE(uint64(b.Updated))
}

// DecodeBinary implements io.Serializable.
func (b *Ballot) DecodeBinary(r *io.BinReader) {
	r.ReadBytes(b.ID[:])
	b.Request.DecodeBinary(r)

	n := r.ReadVarUint()
	if r.Err != nil {
		return
	}
	if n > treasury.MaxSigners {
		r.Err = errTooManyVoters
		return
	}

	b.Voters = make([]util.Uint160, n)
	for i := range b.Voters {
		r.ReadBytes(b.Voters[i][:])
	}
	b.Updated = int64(r.ReadU64LE())
}

func (b *Ballot) voted(acc util.Uint160) bool {
	for i := range b.Voters {
		if b.Voters[i].Equals(acc) {
			return true
		}
	}
	return false
}
