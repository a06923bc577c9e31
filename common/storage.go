package common

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/io"
)

// Getter is a read-only part of the neo-go storage.
type Getter interface {
	Get(key []byte) ([]byte, error)
}

// Putter is a write part of the neo-go MemCachedStore.
type Putter interface {
	Put(key, value []byte)
}

// GetSerialized reads an item stored under key and decodes it into v. It
// returns false without an error if there is no such item.
func GetSerialized(st Getter, key []byte, v io.Serializable) (bool, error) {
	data, err := st.Get(key)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get storage item: %w", err)
	}

	r := io.NewBinReaderFromBuf(data)
	v.DecodeBinary(r)
	if r.Err != nil {
		return false, fmt.Errorf("decode storage item: %w", r.Err)
	}

	return true, nil
}

// SetSerialized serializes data and puts it into the storage.
func SetSerialized(st Putter, key []byte, v io.Serializable) error {
	w := io.NewBufBinWriter()
	v.EncodeBinary(w.BinWriter)
	if w.Err != nil {
		return fmt.Errorf("encode storage item: %w", w.Err)
	}

	st.Put(key, w.Bytes())

	return nil
}
