package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

var (
	flagLibDir   string
	flagLogLevel string
	flagOTel     bool
)

var rootCmd = &cobra.Command{
	Use:   "assist",
	Short: "Drive a native assistant engine session from the terminal",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLibDir, "lib-dir", ".",
		"directory containing the engine shared library")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&flagOTel, "otel-logs", false,
		"route logs through the OpenTelemetry bridge instead of stderr")
}

func setupLogging() {
	if flagOTel {
		slog.SetDefault(otelslog.NewLogger("assist"))
		return
	}

	var level slog.Level
	switch strings.ToLower(flagLogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
