// Package codec serializes item values V to the []byte payloads the pool
// frames and hands to the backing store.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
