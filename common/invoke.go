package common

import (
	"github.com/nspcc-dev/neo-go/pkg/crypto/hash"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// programAuthoritySeed separates derived authority identities from any key
// based account.
var programAuthoritySeed = []byte("treasury-program-authority")

// InvokeID returns SHA256 of the prefix followed by all arguments. It
// identifies an invocation independently of the party submitting it.
func InvokeID(args [][]byte, prefix []byte) util.Uint256 {
	data := append([]byte{}, prefix...)
	for i := range args {
		data = append(data, args[i]...)
	}

	return hash.Sha256(data)
}

// ProgramAuthority returns the program-controlled identity of the given
// treasury. Nobody holds a key for it: only the treasury processor acts on
// its behalf, so it is used as mint authority of the synthetic token and owner
// of the reserve account.
func ProgramAuthority(treasury util.Uint160) util.Uint160 {
	return hash.Hash160(append(append([]byte{}, programAuthoritySeed...), treasury.BytesBE()...))
}
