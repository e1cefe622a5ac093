package index

import (
	"fmt"
	"sync"
)

// BinaryLoader constructs an index instance from the payload produced by
// its MarshalBinary method.
type BinaryLoader func(data []byte) (Index, error)

var (
	binaryLoaderMu sync.RWMutex
	binaryLoaders  = map[Kind]BinaryLoader{}
)

// RegisterBinaryLoader registers a loader for a specific index kind.
//
// Index implementations should typically call this from an init() function.
func RegisterBinaryLoader(kind Kind, loader BinaryLoader) {
	binaryLoaderMu.Lock()
	defer binaryLoaderMu.Unlock()
	binaryLoaders[kind] = loader
}

// LoadBinary dispatches data to the loader registered for kind.
func LoadBinary(kind Kind, data []byte) (Index, error) {
	binaryLoaderMu.RLock()
	loader, ok := binaryLoaders[kind]
	binaryLoaderMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, kind)
	}
	return loader(data)
}
