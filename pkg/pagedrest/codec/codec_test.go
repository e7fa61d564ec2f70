package codec_test

import (
	"testing"
	"time"

	"github.com/fivetwenty-io/pagedrest/pkg/pagedrest/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Key       string                 `json:"key"        msgpack:"key"`
	Value     map[string]interface{} `json:"value"      msgpack:"value"`
	ExpiresAt time.Time              `json:"expires_at" msgpack:"expires_at"`
}

func TestNew(t *testing.T) {
	t.Parallel()

	for _, codecType := range []codec.Type{"", codec.TypeJSON, codec.TypeMsgpack, codec.TypeCBOR} {
		c, err := codec.New[envelope](codecType)
		require.NoError(t, err, "codec %q", codecType)
		assert.NotNil(t, c)
	}

	_, err := codec.New[envelope]("xml")
	require.ErrorIs(t, err, codec.ErrUnsupportedCodec)
}

func TestCodecs_PreserveNestedShape(t *testing.T) {
	t.Parallel()

	expiresAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	original := envelope{
		Key: "/api/v1/items?cursor=2",
		Value: map[string]interface{}{
			"items":    []interface{}{"a", "b"},
			"nextPage": "https://sandbox.pagedrest.io/api/v1/items?cursor=3",
			"owner":    map[string]interface{}{"name": "alice"},
		},
		ExpiresAt: expiresAt,
	}

	for _, codecType := range []codec.Type{codec.TypeJSON, codec.TypeMsgpack, codec.TypeCBOR} {
		t.Run(string(codecType), func(t *testing.T) {
			t.Parallel()

			c, err := codec.New[envelope](codecType)
			require.NoError(t, err)

			data, err := c.Encode(original)
			require.NoError(t, err)

			decoded, err := c.Decode(data)
			require.NoError(t, err)

			assert.Equal(t, original.Key, decoded.Key)
			assert.True(t, expiresAt.Equal(decoded.ExpiresAt))
			assert.Equal(t, []interface{}{"a", "b"}, decoded.Value["items"])

			owner, ok := decoded.Value["owner"].(map[string]interface{})
			require.True(t, ok, "nested object should decode as map[string]interface{}")
			assert.Equal(t, "alice", owner["name"])
		})
	}
}

func TestCodecs_DecodeGarbage(t *testing.T) {
	t.Parallel()

	for _, codecType := range []codec.Type{codec.TypeJSON, codec.TypeMsgpack, codec.TypeCBOR} {
		c, err := codec.New[envelope](codecType)
		require.NoError(t, err)

		_, err = c.Decode([]byte{0xff, 0x00, 0x13})
		assert.Error(t, err, "codec %q", codecType)
	}
}
