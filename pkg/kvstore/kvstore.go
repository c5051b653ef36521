// Package kvstore is the public façade over the storage engine for
// in-process callers that want the key-value store as a library rather
// than over the network: embed a Store the way the line-protocol server
// embeds the same engine internally.
//
// Store wraps internal/engine behind plain Set/Get/Delete/Expire/Exists
// methods, since callers outside this module cannot import internal/
// packages directly. The engine is synchronous and never takes a
// context, so neither does Store.
package kvstore

import (
	"os"

	"go.uber.org/zap"

	"github.com/iamNilotpal/kvstore/internal/engine"
	"github.com/iamNilotpal/kvstore/internal/logging"
	"github.com/iamNilotpal/kvstore/pkg/options"
)

// Store is an embeddable instance of the key-value store. It wraps an
// Engine and the options it was opened with.
type Store struct {
	engine  *engine.Engine
	options *options.Options
}

// Open creates or opens a Store's data file, applying the default options
// overridden by any opts passed. The logger's environment is selected by
// KVSTORE_ENV: "production" builds the JSON encoder, anything else
// (including unset) builds the human-readable development encoder.
// Callers that already have a logger should call OpenWithLogger instead.
func Open(opts ...options.OptionFunc) (*Store, error) {
	log, err := logging.New(os.Getenv("KVSTORE_ENV"))
	if err != nil {
		return nil, err
	}
	return OpenWithLogger(log, opts...)
}

// OpenWithLogger is like Open but takes an explicit logger, for callers
// embedding the store inside a larger service that already has one.
func OpenWithLogger(log *zap.SugaredLogger, opts ...options.OptionFunc) (*Store, error) {
	defaultOpts := options.NewDefaultOptions()
	for _, opt := range opts {
		opt(&defaultOpts)
	}

	eng, err := engine.Open(&engine.Config{Logger: log, Options: &defaultOpts})
	if err != nil {
		return nil, err
	}
	return &Store{engine: eng, options: &defaultOpts}, nil
}

// Set stores value under key, replacing any previous value. ttlMillis > 0
// expires the entry that many milliseconds from now; ttlMillis <= 0 means
// no expiry.
func (s *Store) Set(key, value string, ttlMillis int64) error {
	return s.engine.Set(key, &value, ttlMillis)
}

// Get retrieves the value bound to key and reports whether it was found.
func (s *Store) Get(key string) (string, bool, error) {
	return s.engine.Get(key)
}

// Delete removes key, reporting whether it was present.
func (s *Store) Delete(key string) (bool, error) {
	return s.engine.Del(key)
}

// Expire rewrites key's TTL without changing its value, reporting whether
// key was present.
func (s *Store) Expire(key string, ttlMillis int64) (bool, error) {
	return s.engine.Expire(key, ttlMillis)
}

// Exists reports whether key has a live, unexpired entry.
func (s *Store) Exists(key string) (bool, error) {
	return s.engine.Exists(key)
}

// Stats returns a snapshot of the store's resource usage.
func (s *Store) Stats() engine.Stats {
	return s.engine.Stats()
}

// Close releases the store's underlying file mapping.
func (s *Store) Close() error {
	return s.engine.Close()
}
