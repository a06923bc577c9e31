package host

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/nspcc-dev/neo-go/pkg/crypto/hash"
	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/reserve-treasury/common"
	"github.com/nspcc-dev/reserve-treasury/treasury"
)

const (
	// maxSignatures limits the number of signatures of a single request.
	maxSignatures = 16
	signatureLen  = 64
)

var requestIDPrefix = []byte("treasury-request")

// ErrInvalidSignature is returned for requests with a signature that does not
// match the signed data.
var ErrInvalidSignature = errors.New("invalid request signature")

// Signature is a signature of the request data made by a key.
type Signature struct {
	PublicKey *keys.PublicKey
	Value     []byte
}

// SignedRequest is a treasury operation submitted to the host.
type SignedRequest struct {
	Treasury util.Uint160
	Caller   util.Uint160
	// Nonce distinguishes requests with the same content.
	Nonce uuid.UUID
	// Reference is an optional identifier of the request in audit entries.
	// When empty, the host uses the base58 encoding of the first signature.
	Reference   string
	Attestation *treasury.Attestation
	Op          treasury.Operation

	Signatures []Signature
}

// encodeUnsigned writes all request fields except signatures.
func (r *SignedRequest) encodeUnsigned(w *io.BinWriter) {
	w.WriteBytes(r.Treasury[:])
	w.WriteBytes(r.Caller[:])
	w.WriteBytes(r.Nonce[:])
	w.WriteString(r.Reference)
	w.WriteBool(r.Attestation != nil)
	if r.Attestation != nil {
		w.WriteBool(r.Attestation.KYCVerified)
		w.WriteBool(r.Attestation.AMLCleared)
		w.WriteString(r.Attestation.Notes)
	}
	treasury.EncodeOperation(w, r.Op)
}

// SignedData returns the data covered by request signatures.
func (r *SignedRequest) SignedData() ([]byte, error) {
	w := io.NewBufBinWriter()
	r.encodeUnsigned(w.BinWriter)
	if w.Err != nil {
		return nil, fmt.Errorf("encode request: %w", w.Err)
	}
	return w.Bytes(), nil
}

// ID returns an identifier of the request independent of its signatures.
func (r *SignedRequest) ID() (util.Uint256, error) {
	data, err := r.SignedData()
	if err != nil {
		return util.Uint256{}, err
	}
	return common.InvokeID([][]byte{data}, requestIDPrefix), nil
}

// Sign appends a signature made by the key.
func (r *SignedRequest) Sign(key *keys.PrivateKey) error {
	data, err := r.SignedData()
	if err != nil {
		return err
	}

	r.Signatures = append(r.Signatures, Signature{
		PublicKey: key.PublicKey(),
		Value:     key.Sign(data),
	})

	return nil
}

// Witnesses verifies all signatures and returns accounts of the signers.
func (r *SignedRequest) Witnesses() ([]util.Uint160, error) {
	data, err := r.SignedData()
	if err != nil {
		return nil, err
	}

	digest := hash.Sha256(data).BytesBE()
	res := make([]util.Uint160, 0, len(r.Signatures))

	for i, s := range r.Signatures {
		if s.PublicKey == nil || !s.PublicKey.Verify(s.Value, digest) {
			return nil, fmt.Errorf("%w: #%d", ErrInvalidSignature, i)
		}
		res = append(res, s.PublicKey.GetScriptHash())
	}

	return res, nil
}

// EncodeBinary implements io.Serializable.
func (r *SignedRequest) EncodeBinary(w *io.BinWriter) {
	r.encodeUnsigned(w)
	w.WriteVarUint(uint64(len(r.Signatures)))
	for i := range r.Signatures {
		r.Signatures[i].PublicKey.EncodeBinary(w)
		w.WriteVarBytes(r.Signatures[i].Value)
	}
}

// DecodeBinary implements io.Serializable.
func (r *SignedRequest) DecodeBinary(br *io.BinReader) {
	br.ReadBytes(r.Treasury[:])
	br.ReadBytes(r.Caller[:])
	br.ReadBytes(r.Nonce[:])
	r.Reference = br.ReadString(treasury.MaxReferenceLen)
	if br.ReadBool() {
		r.Attestation = &treasury.Attestation{
			KYCVerified: br.ReadBool(),
			AMLCleared:  br.ReadBool(),
			Notes:       br.ReadString(treasury.MaxComplianceNotesLen),
		}
	}
	r.Op = treasury.DecodeOperation(br)

	n := br.ReadVarUint()
	if br.Err != nil {
		return
	}
	if n > maxSignatures {
		br.Err = fmt.Errorf("too many signatures: %d", n)
		return
	}

	r.Signatures = make([]Signature, n)
	for i := range r.Signatures {
		r.Signatures[i].PublicKey = new(keys.PublicKey)
		r.Signatures[i].PublicKey.DecodeBinary(br)
		r.Signatures[i].Value = br.ReadVarBytes(signatureLen)
	}
}
