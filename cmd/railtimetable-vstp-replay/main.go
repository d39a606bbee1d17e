// Command railtimetable-vstp-replay is an operator tool over the VSTP
// overlay state persisted by the main importer: it can list what has been
// received (inspect) and rebuild a schedule from a bulk CIF baseline plus
// every stored message (apply). Grounded on other_examples'
// x-b-e-xbe-cli cobra subcommand-per-file layout (newXxxCmd + RunE +
// tabwriter/--json output) and the sibling netex-validator's config.go
// for the optional YAML config file.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/theoremus-urban-solutions/railtimetable/vstp"
)

var (
	configPath string
	stateFlag  string
	logLevel   string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "railtimetable-vstp-replay",
		Short: "Inspect and replay persisted VSTP overlay state",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to a replay.yaml config file (optional)")
	root.PersistentFlags().StringVar(&stateFlag, "state", "", "Path to the persisted VSTP state file (overrides config)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "zerolog level: debug, info, warn, error (overrides config)")

	root.AddCommand(newInspectCmd())
	root.AddCommand(newApplyCmd())
	return root
}

// loadEffectiveConfig merges replay.yaml (if given) with flag overrides.
func loadEffectiveConfig() (*ReplayConfig, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if stateFlag != "" {
		cfg.StateFile = stateFlag
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}

func newLogger(level string, out *os.File) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}).
		Level(lvl).With().Timestamp().Logger(), nil
}

func loadState(cfg *ReplayConfig, log zerolog.Logger) *vstp.State {
	return vstp.LoadState(cfg.StateFile, log)
}
