// Package options provides data structures and functions for configuring
// the kvstore engine. It defines the parameters that control where the
// store's data file lives, how large that file is, and where the
// line-protocol server listens.
package options

import "strings"

// Options defines the configuration parameters for a kvstore engine and
// its server.
type Options struct {
	// FilePath is the path to the single fixed-size data file the engine
	// memory-maps.
	//
	// Default: "store.db"
	FilePath string `json:"filePath"`

	// FileSize is the fixed size, in bytes, of the mapped data file. It
	// never grows after the file is created.
	//
	// Default: 1048576 (1 MiB)
	FileSize int `json:"fileSize"`

	// ListenAddr is the address the line-protocol server binds to.
	//
	// Default: ":6379"
	ListenAddr string `json:"listenAddr"`
}

// OptionFunc is a function type that modifies the engine's configuration.
type OptionFunc func(*Options)

// WithDefaultOptions applies a predefined set of default configuration
// values to the Options struct.
func WithDefaultOptions() OptionFunc {
	return func(o *Options) {
		opts := NewDefaultOptions()
		o.FilePath = opts.FilePath
		o.FileSize = opts.FileSize
		o.ListenAddr = opts.ListenAddr
	}
}

// WithFilePath sets the path of the engine's data file. A blank path is
// ignored.
func WithFilePath(path string) OptionFunc {
	return func(o *Options) {
		path = strings.TrimSpace(path)
		if path != "" {
			o.FilePath = path
		}
	}
}

// WithFileSize sets the fixed size of the engine's data file. Sizes that
// are not positive are ignored.
func WithFileSize(size int) OptionFunc {
	return func(o *Options) {
		if size > 0 {
			o.FileSize = size
		}
	}
}

// WithListenAddr sets the address the line-protocol server binds to. A
// blank address is ignored.
func WithListenAddr(addr string) OptionFunc {
	return func(o *Options) {
		addr = strings.TrimSpace(addr)
		if addr != "" {
			o.ListenAddr = addr
		}
	}
}
