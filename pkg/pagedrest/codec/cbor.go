package codec

import (
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// CBOR serializes values using fxamacker/cbor.
// The zero value is NOT ready to use. Construct with NewCBOR.
//
// Nested maps decode as map[string]interface{} so that decoded responses have
// the same shape as JSON-decoded ones. Times are encoded as RFC3339Nano.
type CBOR[V any] struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

// NewCBOR constructs a CBOR codec.
func NewCBOR[V any]() (CBOR[V], error) {
	encOpts := cbor.PreferredUnsortedEncOptions()
	encOpts.Time = cbor.TimeRFC3339Nano

	enc, err := encOpts.EncMode()
	if err != nil {
		return CBOR[V]{}, fmt.Errorf("creating cbor encoder: %w", err)
	}

	dec, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]interface{}(nil)),
	}.DecMode()
	if err != nil {
		return CBOR[V]{}, fmt.Errorf("creating cbor decoder: %w", err)
	}

	return CBOR[V]{enc: enc, dec: dec}, nil
}

// Encode encodes v as CBOR.
func (c CBOR[V]) Encode(v V) ([]byte, error) {
	return c.enc.Marshal(v)
}

// Decode decodes b into a V.
func (c CBOR[V]) Decode(b []byte) (V, error) {
	var v V
	err := c.dec.Unmarshal(b, &v)

	return v, err
}
