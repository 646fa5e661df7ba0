package cli

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/diseb-lab/rocket/internal/config"
	"github.com/diseb-lab/rocket/internal/di"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "run a fault injection / fuzzing session",
	Long: `run loads the configured validator set and strategy options, starts
the packet dispatch server, and drives bounded iterations against the
configured interceptor until the configured iteration count or timeout is
reached.`,
	RunE: runFuzz,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runFuzz(cmd *cobra.Command, args []string) error {
	paths := config.DefaultPaths()
	if configFile != "" {
		paths.Main = configFile
	}

	cfg, err := config.Load(paths)
	if err != nil {
		return fmt.Errorf("cli: failed to load configuration: %w", err)
	}
	if quiet {
		log.SetOutput(io.Discard)
	}

	container, err := di.Wire(cfg)
	if err != nil {
		return fmt.Errorf("cli: failed to wire controller: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- di.Run(container)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("cli: run exited with error: %w", err)
		}
		return nil
	case sig := <-sigCh:
		log.Printf("cli: received %v, shutting down", sig)
		return nil
	}
}
