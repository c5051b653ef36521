// Package codec translates between the in-memory (key, value, expireTs)
// triple and the on-disk record layout:
//
//	keyLen (4, int32 BE) | key (keyLen) | valLen (4, int32 BE) | val (valLen) | expireTs (8, int64 BE)
//
// Integers are fixed big-endian so a file produced on one machine reads
// identically on any other, regardless of host byte order.
package codec

import (
	"encoding/binary"
	"fmt"
)

// HeaderSize is the fixed width of a record's two length fields plus its
// expiry timestamp: 4 (keyLen) + 4 (valLen) + 8 (expireTs).
const HeaderSize = 16

// ErrTruncated is returned by DecodeAt and PeekValueAndExpiry when fewer
// bytes remain in buf than the record at that offset claims to need.
// Recovery treats it as "stop scanning", not as a fatal error.
var ErrTruncated = fmt.Errorf("codec: truncated record")

// Size returns the total on-disk footprint of a record with the given key
// and value, including the 16-byte header.
func Size(key, value string) int {
	return HeaderSize + len(key) + len(value)
}

// Encode writes a record at buf[at:] and returns the offset just past it
// (at + Size(key, value)). The caller is responsible for having verified
// that buf is long enough; Encode panics via a slice out-of-range if not,
// the same way every other offset-based write in the engine would.
func Encode(buf []byte, at int, key, value string, expireTs int64) int {
	pos := at
	binary.BigEndian.PutUint32(buf[pos:], uint32(int32(len(key))))
	pos += 4
	pos += copy(buf[pos:], key)
	binary.BigEndian.PutUint32(buf[pos:], uint32(int32(len(value))))
	pos += 4
	pos += copy(buf[pos:], value)
	binary.BigEndian.PutUint64(buf[pos:], uint64(expireTs))
	pos += 8
	return pos
}

// DecodeAt reads the full record at buf[at:], returning the key, value,
// expiry, and the offset just past the record. It returns ErrTruncated if
// fewer bytes remain than the header at at claims to need, or if keyLen is
// not strictly positive. The latter is what lets recovery stop cleanly at
// the boundary between written records and a zero-filled, never-written
// tail: the engine never writes a record with an empty key, so a zero
// keyLen can only mean "nothing has been written here yet."
func DecodeAt(buf []byte, at int) (key, value string, expireTs int64, next int, err error) {
	if len(buf)-at < 4 {
		return "", "", 0, 0, ErrTruncated
	}
	keyLen := int32(binary.BigEndian.Uint32(buf[at:]))
	pos := at + 4
	if keyLen <= 0 || len(buf)-pos < int(keyLen)+4+8 {
		return "", "", 0, 0, ErrTruncated
	}
	key = string(buf[pos : pos+int(keyLen)])
	pos += int(keyLen)

	valLen := int32(binary.BigEndian.Uint32(buf[pos:]))
	pos += 4
	if valLen < 0 || len(buf)-pos < int(valLen)+8 {
		return "", "", 0, 0, ErrTruncated
	}
	value = string(buf[pos : pos+int(valLen)])
	pos += int(valLen)

	expireTs = int64(binary.BigEndian.Uint64(buf[pos:]))
	pos += 8

	return key, value, expireTs, pos, nil
}

// PeekValueAndExpiry reads the value and expiry of the record at buf[at:]
// without materializing the key, for callers (GET, EXPIRE) that already
// know the key from the index and only need the rest of the record.
func PeekValueAndExpiry(buf []byte, at int) (value string, expireTs int64, err error) {
	if len(buf)-at < 4 {
		return "", 0, ErrTruncated
	}
	keyLen := int32(binary.BigEndian.Uint32(buf[at:]))
	pos := at + 4
	if keyLen <= 0 || len(buf)-pos < int(keyLen)+4 {
		return "", 0, ErrTruncated
	}
	pos += int(keyLen)

	valLen := int32(binary.BigEndian.Uint32(buf[pos:]))
	pos += 4
	if valLen < 0 || len(buf)-pos < int(valLen)+8 {
		return "", 0, ErrTruncated
	}
	value = string(buf[pos : pos+int(valLen)])
	pos += int(valLen)

	expireTs = int64(binary.BigEndian.Uint64(buf[pos:]))
	return value, expireTs, nil
}
