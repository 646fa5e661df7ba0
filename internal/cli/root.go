// Package cli wires the controller's command-line entry points: running a
// fuzzing session and reporting the build version.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configFile string
	debug      bool
	verbose    bool
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:   "rocket",
	Short: "rocket - network fault injection and fuzzing controller",
	Long: `rocket drives fault injection and fuzzing experiments against a
distributed consensus network: it intercepts validator-to-validator
traffic, decides per-packet forward/mutate/delay/drop actions, and runs
bounded iterations while recording actions and consensus outcomes.`,
	Version: "0.1.0-dev",
}

// Execute adds all child commands to the root command and runs it. Called
// once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "", "configuration file path")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "debug logging (accepted; no command reads it)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging (accepted; no command reads it)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output to console after startup")
}
