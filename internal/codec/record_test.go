package codec_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/kvstore/internal/codec"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	buf := make([]byte, 256)

	next := codec.Encode(buf, 0, "foo", "bar", 0)
	assert.Equal(t, codec.Size("foo", "bar"), next)

	key, value, expireTs, decodedNext, err := codec.DecodeAt(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "foo", key)
	assert.Equal(t, "bar", value)
	assert.Equal(t, int64(0), expireTs)
	assert.Equal(t, next, decodedNext)
}

func TestEncodeDecodeUnicode(t *testing.T) {
	buf := make([]byte, 256)
	key := "キー"
	value := "väluê 🎉"

	next := codec.Encode(buf, 0, key, value, 1234)
	gotKey, gotValue, gotExpiry, _, err := codec.DecodeAt(buf, 0)
	require.NoError(t, err)

	if diff := cmp.Diff(key, gotKey); diff != "" {
		t.Fatalf("key mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, value, gotValue)
	assert.Equal(t, int64(1234), gotExpiry)
	assert.Equal(t, codec.Size(key, value), next)
}

func TestPeekValueAndExpiryMatchesDecodeAt(t *testing.T) {
	buf := make([]byte, 256)
	codec.Encode(buf, 0, "session:42", "active", 999)

	_, wantValue, wantExpiry, _, err := codec.DecodeAt(buf, 0)
	require.NoError(t, err)

	gotValue, gotExpiry, err := codec.PeekValueAndExpiry(buf, 0)
	require.NoError(t, err)

	assert.Equal(t, wantValue, gotValue)
	assert.Equal(t, wantExpiry, gotExpiry)
}

func TestDecodeAtSequentialRecords(t *testing.T) {
	buf := make([]byte, 256)
	second := codec.Encode(buf, 0, "a", "1", 0)
	codec.Encode(buf, second, "b", "2", 0)

	_, v1, _, next1, err := codec.DecodeAt(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "1", v1)
	assert.Equal(t, second, next1)

	_, v2, _, _, err := codec.DecodeAt(buf, next1)
	require.NoError(t, err)
	assert.Equal(t, "2", v2)
}

func TestDecodeAtTruncatedHeader(t *testing.T) {
	buf := make([]byte, 10)
	_, _, _, _, err := codec.DecodeAt(buf, 0)
	assert.ErrorIs(t, err, codec.ErrTruncated)
}

func TestDecodeAtTruncatedTail(t *testing.T) {
	buf := make([]byte, 256)
	end := codec.Encode(buf, 0, "foo", "a-long-value", 0)

	// Simulate a crash mid-write: the last five bytes of the record never made it to disk.
	truncated := buf[:end-5]
	_, _, _, _, err := codec.DecodeAt(truncated, 0)
	assert.ErrorIs(t, err, codec.ErrTruncated)
}

func TestPeekValueAndExpiryTruncated(t *testing.T) {
	buf := make([]byte, 256)
	end := codec.Encode(buf, 0, "foo", "bar", 42)
	truncated := buf[:end-2]

	_, _, err := codec.PeekValueAndExpiry(truncated, 0)
	assert.ErrorIs(t, err, codec.ErrTruncated)
}

func TestDecodeAtStopsAtZeroFilledTail(t *testing.T) {
	// A freshly sized file is all zero bytes, which decodes as keyLen==0.
	// DecodeAt must treat that as the end of written data, not a valid
	// empty-keyed record, or recovery would walk the whole file as one
	// long chain of bogus records.
	buf := make([]byte, 256)
	_, _, _, _, err := codec.DecodeAt(buf, 0)
	assert.ErrorIs(t, err, codec.ErrTruncated)
}
