// Package logging constructs the *zap.SugaredLogger instances injected into
// the engine and server: the logger is built once at the process entry
// point and threaded through Config structs rather than having packages
// reach for a package-level logger.
package logging

import "go.uber.org/zap"

// New builds a SugaredLogger suited to the given environment. "production"
// selects JSON output at info level; anything else selects the human
// readable development encoder at debug level.
func New(env string) (*zap.SugaredLogger, error) {
	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

// NewNop returns a logger that discards everything, for tests and callers
// that don't want log noise.
func NewNop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
