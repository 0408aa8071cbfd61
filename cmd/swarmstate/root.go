package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/swarmstate"
	"github.com/aretw0/swarmstate/internal/logging"
	"github.com/aretw0/swarmstate/pkg/registry"
	"github.com/aretw0/swarmstate/pkg/state"
)

var rootCmd = &cobra.Command{
	Use:   "swarmstate",
	Short: "swarmstate manages shared multi-agent workflow state",
	Long:  `swarmstate merges, validates and migrates the shared state of multi-agent workflows using per-field reducer strategies.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("registry", "", "Path to a YAML field registry (default: built-in)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
}

func newEngine(cmd *cobra.Command) (*swarmstate.Engine, error) {
	opts := []swarmstate.Option{swarmstate.WithLogger(newLogger(cmd))}

	if path, _ := cmd.Flags().GetString("registry"); path != "" {
		reg, err := registry.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load registry: %w", err)
		}
		opts = append(opts, swarmstate.WithRegistry(reg))
	}
	return swarmstate.New(opts...)
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	return logging.New(level)
}

func loadStateFile(path string) (state.State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}
	st, err := state.Deserialize(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}
	return st, nil
}

func writeStateFile(path string, st state.State) error {
	data, err := state.Serialize(st)
	if err != nil {
		return fmt.Errorf("failed to serialize state: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return nil
}
