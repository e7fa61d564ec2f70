// Package codec encodes cache entries for the remote cache backends.
package codec

import (
	"errors"
	"fmt"
)

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(v V) ([]byte, error)
	Decode(b []byte) (V, error)
}

// Type names a codec implementation.
type Type string

const (
	// TypeJSON selects encoding/json.
	TypeJSON Type = "json"

	// TypeMsgpack selects vmihailenco/msgpack.
	TypeMsgpack Type = "msgpack"

	// TypeCBOR selects fxamacker/cbor.
	TypeCBOR Type = "cbor"
)

// ErrUnsupportedCodec is returned by New for an unknown Type.
var ErrUnsupportedCodec = errors.New("unsupported codec")

// New returns the codec for t. An empty Type selects JSON.
func New[V any](t Type) (Codec[V], error) {
	switch t {
	case "", TypeJSON:
		return JSON[V]{}, nil
	case TypeMsgpack:
		return Msgpack[V]{}, nil
	case TypeCBOR:
		return NewCBOR[V]()
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCodec, t)
	}
}
