// Package engine implements the append-only, memory-mapped key-value
// storage engine: the single fixed-size mapped region, the volatile index
// that projects it into O(1) lookups, the recovery scan that rebuilds that
// index at open time, and the four operations (SET, GET, DEL, EXPIRE) that
// mutate and query it under one exclusive lock.
//
// The engine is the core coordinator: it owns the mapped region and the
// write cursor directly rather than delegating to a segment-rotating
// storage subsystem. There is exactly one file, it never grows, and it is
// never compacted.
package engine

import (
	stdErrors "errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/iamNilotpal/kvstore/internal/codec"
	"github.com/iamNilotpal/kvstore/internal/index"
	"github.com/iamNilotpal/kvstore/internal/region"
	kverrors "github.com/iamNilotpal/kvstore/pkg/errors"
	"github.com/iamNilotpal/kvstore/pkg/options"
)

// ErrEngineClosed is returned when attempting to perform operations on a closed engine.
var ErrEngineClosed = stdErrors.New("operation failed: cannot access closed engine")

// Engine coordinates the mapped region, the write cursor, and the index.
// Every exported method validates its arguments first and then takes
// engine.mu for the rest of its work: lookup, buffer access, and index
// update all happen under the one lock, so from a caller's perspective each
// operation is atomic and totally ordered with every other.
type Engine struct {
	mu          sync.Mutex
	log         *zap.SugaredLogger
	options     *options.Options
	region      *region.Region
	index       *index.Index
	writeOffset int
	closed      bool
}

// Config holds the parameters needed to open an Engine.
type Config struct {
	Options *options.Options
	Logger  *zap.SugaredLogger
}

// Open maps the data file named by config.Options.FilePath and replays it
// to rebuild the index and the write cursor, per the recovery procedure:
// scan forward from offset 0, indexing every record that is not already
// expired, and stop without error at the first malformed or truncated
// trailing bytes.
func Open(config *Config) (*Engine, error) {
	if config == nil || config.Options == nil || config.Logger == nil {
		return nil, stdErrors.New("engine: invalid configuration")
	}

	config.Logger.Infow(
		"opening engine",
		"filePath", config.Options.FilePath,
		"fileSize", config.Options.FileSize,
	)

	reg, err := region.Open(config.Options.FilePath, config.Options.FileSize)
	if err != nil {
		config.Logger.Errorw("failed to open mapped region", "error", err, "path", config.Options.FilePath)
		return nil, err
	}

	e := &Engine{
		log:     config.Logger,
		options: config.Options,
		region:  reg,
		index:   index.New(),
	}

	e.recover()

	config.Logger.Infow(
		"engine opened",
		"writeOffset", e.writeOffset,
		"liveKeys", e.index.Len(),
	)
	return e, nil
}

// recover replays the mapped region from offset 0, rebuilding the index and
// advancing writeOffset past every fully-parsed record. It never returns an
// error: a truncated or malformed tail simply ends the scan.
func (e *Engine) recover() {
	buf := e.region.Bytes
	now := nowMillis()
	pos := 0

	for {
		key, value, expireTs, next, err := codec.DecodeAt(buf, pos)
		if err != nil {
			break
		}
		_ = value

		if expireTs == 0 || expireTs > now {
			e.index.Put(key, pos)
		}
		pos = next
	}

	e.writeOffset = pos
}

// validateKey rejects an absent or whitespace-only key.
func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return kverrors.NewBlankKeyError(key)
	}
	return nil
}

// Set writes a new record for key, replacing any previous record it
// indexes. value must be non-nil; the empty string is a valid value.
// ttlMillis > 0 sets an absolute expiry ttlMillis from now; ttlMillis <= 0
// (including negative) means no expiry.
func (e *Engine) Set(key string, value *string, ttlMillis int64) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if value == nil {
		return kverrors.NewNullValueError()
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrEngineClosed
	}

	var expireTs int64
	if ttlMillis > 0 {
		expireTs = nowMillis() + ttlMillis
	}

	return e.appendLocked(key, *value, expireTs)
}

// Get returns the value bound to key and whether it was found. A record
// whose expiry has passed is evicted from the index and reported as not
// found, per the lazy-expiry rule.
func (e *Engine) Get(key string) (string, bool, error) {
	if err := validateKey(key); err != nil {
		return "", false, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return "", false, ErrEngineClosed
	}

	offset, ok := e.index.Get(key)
	if !ok {
		return "", false, nil
	}

	value, expireTs, err := codec.PeekValueAndExpiry(e.region.Bytes, offset)
	if err != nil {
		// The offset came from our own index; a decode failure here means
		// the mapped region was corrupted out from under us.
		return "", false, kverrors.NewStorageError(err, kverrors.ErrorCodeIO, "failed to decode indexed record").
			WithPath(e.options.FilePath)
	}

	if expireTs != 0 && expireTs < nowMillis() {
		e.index.Remove(key)
		return "", false, nil
	}

	return value, true, nil
}

// Del removes key from the index, reporting whether it was present.
// On-disk bytes are left untouched.
func (e *Engine) Del(key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return false, ErrEngineClosed
	}

	return e.index.Remove(key), nil
}

// Expire rewrites key's record with a new expiry, leaving its value
// unchanged, and reports whether key was present. ttlMillis < 0 is
// rejected; ttlMillis == 0 clears any expiry. Expire does not check whether
// the current record has already lazily expired before rewriting it — a
// caller that expires an expired-but-not-yet-evicted key resurrects it with
// a fresh TTL, matching the engine's observable semantics.
func (e *Engine) Expire(key string, ttlMillis int64) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}
	if ttlMillis < 0 {
		return false, kverrors.NewNegativeTTLError(ttlMillis)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return false, ErrEngineClosed
	}

	offset, ok := e.index.Get(key)
	if !ok {
		return false, nil
	}

	value, _, err := codec.PeekValueAndExpiry(e.region.Bytes, offset)
	if err != nil {
		return false, kverrors.NewStorageError(err, kverrors.ErrorCodeIO, "failed to decode indexed record").
			WithPath(e.options.FilePath)
	}

	var expireTs int64
	if ttlMillis > 0 {
		expireTs = nowMillis() + ttlMillis
	}

	if err := e.appendLocked(key, value, expireTs); err != nil {
		return false, err
	}
	return true, nil
}

// Exists reports whether key has a live, unexpired record, applying the
// same lazy-expiry eviction as Get but without returning the value.
func (e *Engine) Exists(key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return false, ErrEngineClosed
	}

	offset, ok := e.index.Get(key)
	if !ok {
		return false, nil
	}

	_, expireTs, err := codec.PeekValueAndExpiry(e.region.Bytes, offset)
	if err != nil {
		return false, kverrors.NewStorageError(err, kverrors.ErrorCodeIO, "failed to decode indexed record").
			WithPath(e.options.FilePath)
	}

	if expireTs != 0 && expireTs < nowMillis() {
		e.index.Remove(key)
		return false, nil
	}
	return true, nil
}

// Stats reports the engine's current resource usage. It is computed from
// the in-memory write cursor and index size; it never scans the region.
type Stats struct {
	WriteOffset int
	FileSize    int
	Remaining   int
	LiveKeys    int
}

// Stats returns a snapshot of the engine's current resource usage.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	return Stats{
		WriteOffset: e.writeOffset,
		FileSize:    e.options.FileSize,
		Remaining:   e.options.FileSize - e.writeOffset,
		LiveKeys:    e.index.Len(),
	}
}

// appendLocked encodes a record at the current write cursor, checking
// capacity first, and updates the index to point at it. Callers must hold
// e.mu.
func (e *Engine) appendLocked(key, value string, expireTs int64) error {
	need := codec.Size(key, value)
	if e.writeOffset+need > e.options.FileSize {
		return kverrors.NewCapacityError(
			int64(need), int64(e.writeOffset), int64(e.options.FileSize),
		)
	}

	codec.Encode(e.region.Bytes, e.writeOffset, key, value, expireTs)
	e.index.Put(key, e.writeOffset)
	e.writeOffset += need
	return nil
}

// Close unmaps the region and closes the backing file descriptor. The
// contract has no explicit close step, but process shutdown and tests that
// exercise recovery across a reopen call this between sessions.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrEngineClosed
	}
	e.closed = true
	return e.region.Close()
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}
