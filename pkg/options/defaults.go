package options

const (
	// DefaultFilePath is the path of the data file used when no other path
	// is specified.
	DefaultFilePath = "store.db"

	// DefaultFileSize is the fixed size, in bytes, of a newly created data
	// file: 1 MiB.
	DefaultFileSize = 1_048_576

	// DefaultListenAddr is the address the line-protocol server binds to
	// when no other address is specified.
	DefaultListenAddr = ":6379"
)

// defaultOptions holds the default configuration settings for a kvstore
// engine.
var defaultOptions = Options{
	FilePath:   DefaultFilePath,
	FileSize:   DefaultFileSize,
	ListenAddr: DefaultListenAddr,
}

// NewDefaultOptions returns the default Options.
func NewDefaultOptions() Options {
	return defaultOptions
}
