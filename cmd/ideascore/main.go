package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chriscorrea/ideascore/internal/config"
)

// setupLogger configures the default slog logger. debug overrides level.
func setupLogger(debug bool, level string) {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(debug, level),
	})
	slog.SetDefault(slog.New(handler))
}

func parseLevel(debug bool, level string) slog.Level {
	if debug {
		return slog.LevelDebug
	}
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// loadConfig reads the file named by --config, or the default location,
// and reports whether a file was found.
func loadConfig(cmd *cobra.Command) (*config.Config, bool, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		return nil, false, fmt.Errorf("configuration error: %w", err)
	}
	if exists {
		slog.Debug("Loaded configuration", "path", resolved)
	}
	return cfg, exists, nil
}

var rootCmd = &cobra.Command{
	Use:   "ideascore",
	Short: "Score how unique a project idea is",
	Long: `ideascore compares a project idea against existing GitHub repositories and
reports a uniqueness score from 0 (already built many times) to 100 (nothing similar found).

Examples:
  ideascore analyze "offline first habit tracker with streaks"
  ideascore analyze -l go "terminal markdown slide deck"
  ideascore serve --bind 127.0.0.1:8080
  ideascore config init`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to configuration file (default: ~/.config/ideascore/config.toml)")
	rootCmd.PersistentFlags().BoolP("debug", "D", false, "Enable debug logging")
	_ = rootCmd.PersistentFlags().MarkHidden("debug")

	analyzeCmd := newAnalyzeCmd()
	rootCmd.AddCommand(analyzeCmd, newServeCmd(), newConfigCmd())

	// persistent flags are only visible once the command has a parent
	analyzeCmd.MarkFlagsMutuallyExclusive("quiet", "debug")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
