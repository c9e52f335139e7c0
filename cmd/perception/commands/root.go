package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ben-juodvalkis/musical-perception/cmd/perception/internal/config"
)

var (
	// Global flags
	cfgFile string
	verbose bool

	// Global configuration (loaded at init time)
	globalConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "perception",
	Short: "Rhythm perception for spoken dance-class counting",
	Long: `perception - musical parameter extraction from spoken counting.

Dance instructors count out loud ("five six seven eight, one and two and
three"). This tool turns that speech into structured musical parameters:
tempo, meter, subdivision, and the exercise being counted in.

Commands:
  analyze    Extract musical parameters from a WAV file or transcribed words
  markers    Show the rhythmic markers heard in audio or words
  listen     Run the wake + rhythm trigger over an audio file or stdin
  serve      Run the live websocket ingest server
  events     Inspect archived trigger events
  config     Manage configuration

Configuration lives in the OS config directory:
  macOS:   ~/Library/Application Support/perception/config.yaml
  Linux:   ~/.config/perception/config.yaml
  Windows: %AppData%/perception/config.yaml

Examples:
  # One-shot analysis of a recording
  perception analyze class.wav

  # Same, but machine-readable and filtered
  perception analyze class.wav --format json --query .normalized_tempo.bpm

  # Live ingest server with event archival
  perception serve --addr :8090

  # Inspect what the server heard
  perception events list --stream studio-a`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is <user config dir>/perception/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func initConfig() {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	var (
		cfg *config.Config
		err error
	)
	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		// Log but don't exit. Commands that need no configuration
		// (version, markers on a words file) still run.
		fmt.Fprintf(os.Stderr, "Warning: config: %v\n", err)
		return
	}
	globalConfig = cfg
}

// GetConfig returns the global configuration, loading defaults when the
// config file was unreadable at init time.
func GetConfig() *config.Config {
	if globalConfig == nil {
		dir, err := config.Dir()
		if err != nil {
			dir = "."
		}
		globalConfig = config.Default(dir)
	}
	return globalConfig
}

// IsVerbose returns whether verbose mode is enabled.
func IsVerbose() bool {
	return verbose
}

// dataDir returns the event storage directory, creating it if needed.
func dataDir() (string, error) {
	dir := GetConfig().DataDir
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create data directory: %w", err)
	}
	return dir, nil
}

// blobDir returns the audio blob directory under the data directory.
func blobDir(dir string) string {
	return filepath.Join(dir, "blobs")
}
