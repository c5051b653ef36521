// kvstored is the contract process entry point: it opens an engine against
// a file named store.db in the working directory and serves the line
// protocol on the default address, with no flags and no environment
// variables to configure. Deployment-specific behavior belongs to whatever
// wraps this binary, not to the binary itself.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iamNilotpal/kvstore/internal/engine"
	"github.com/iamNilotpal/kvstore/internal/logging"
	"github.com/iamNilotpal/kvstore/internal/server"
	"github.com/iamNilotpal/kvstore/pkg/options"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "kvstored: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	log, err := logging.New("production")
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer log.Sync()

	opts := options.NewDefaultOptions()

	eng, err := engine.Open(&engine.Config{Options: &opts, Logger: log})
	if err != nil {
		return fmt.Errorf("opening engine: %w", err)
	}
	defer eng.Close()

	srv := server.New(&server.Config{Engine: eng, Logger: log, Addr: opts.ListenAddr})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve() }()

	select {
	case sig := <-sigCh:
		log.Infow("received shutdown signal", "signal", sig.String())
		if err := srv.Shutdown(); err != nil {
			return fmt.Errorf("shutting down server: %w", err)
		}
		return <-errCh
	case err := <-errCh:
		return err
	}
}
