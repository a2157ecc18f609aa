package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vvka-141/tourload/internal/config"
	"github.com/vvka-141/tourload/pkg/tourload"
)

// loadSettings layers the configuration sources: defaults, the yaml file,
// .env and the process environment. Command flags are applied by the caller.
// A missing config file is only an error when --config was given.
func loadSettings(cmd *cobra.Command, getenv func(string) string) (*config.Config, error) {
	if err := config.LoadDotEnv(config.DotEnvFileName); err != nil {
		return nil, fmt.Errorf("%w: %w", tourload.ErrInvalidConfig, err)
	}

	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(path)
	switch {
	case errors.Is(err, config.ErrConfigNotFound):
		if cmd.Flags().Changed("config") {
			return nil, fmt.Errorf("%s: %w: %w", path, err, tourload.ErrInvalidConfig)
		}
		cfg = config.Default()
	case err != nil:
		return nil, err
	}

	if err := cfg.ApplyEnv(getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runContext derives the run context: cancelled on SIGINT/SIGTERM and, when
// timeout is positive, after timeout.
func runContext(parent context.Context, timeout time.Duration, stderr io.Writer) (context.Context, context.CancelFunc) {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(parent, timeout)
	} else {
		ctx, cancel = context.WithCancel(parent)
	}

	// Handle interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(stderr, "\n[INTERRUPT] Received interrupt signal, cancelling run...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}
