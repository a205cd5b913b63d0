// Package cli implements the biosynth CLI commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/biosynth/internal/config"
	"github.com/rcliao/biosynth/internal/store"
	"github.com/rcliao/biosynth/internal/synth"
)

var (
	dbPath     string
	formatFlag string
	logLevel   string
	cfg        *config.Config
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "biosynth",
	Short: "Synthetic EEG and ECG waveform generator",
	Long:  "Generate labeled synthetic EEG/ECG recordings with band-power and HRV features. Sessions are kept in SQLite and can be served over HTTP or streamed to NATS.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		loadConfig()
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $BIOSYNTH_DB or ~/.biosynth/sessions.db)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default: $BIOSYNTH_LOG_LEVEL or info)")
}

func loadConfig() {
	c, err := config.Load()
	if err != nil {
		exitErr("load config", err)
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	if _, err := config.NewLogger(os.Stderr, c.LogLevel, c.LogFormat); err != nil {
		exitErr("init logger", err)
	}
	cfg = c
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	return cfg.DBPath
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(getDBPath())
}

func newEngine() *synth.Engine {
	if cfg == nil {
		return synth.New(nil)
	}
	return synth.New(nil, synth.WithMaxSamples(cfg.Defaults.MaxSamples))
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
