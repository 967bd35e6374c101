package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/haivivi/beatforge/pkg/cli"
)

const appName = "beatforge"

var (
	// Global flags
	cfgFile     string
	contextName string
	outputFile  string
	inputFile   string
	outputJSON  bool
	verbose     bool

	globalConfig *cli.Config
)

var rootCmd = &cobra.Command{
	Use:   "beatforge",
	Short: "Drum pattern and song renderer",
	Long: `beatforge renders drum patterns into audio.

It schedules Funk, Pop and custom patterns at a tempo, mixes them from a
sample bank, composes multi-section songs with melody and vocal layers, and
exports WAV, MP3, raw PCM or MIDI.

Configuration is stored in ~/.beatforge/beatforge/ and supports multiple
contexts, similar to kubectl's context management.

Examples:
  # Show the funk groove
  beatforge patterns show funk

  # Render 8 seconds of pop at 100 bpm
  beatforge render --style pop --bpm 100 --duration 8000

  # Render a project file to MP3
  beatforge song -f song.yaml --format mp3 --bitrate 192
`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "", "", "config file (default is ~/.beatforge/beatforge/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&contextName, "context", "c", "", "context name to use")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "result file (default: stdout)")
	rootCmd.PersistentFlags().StringVarP(&inputFile, "file", "f", "", "input project file (YAML or JSON)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output as JSON (for piping)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(patternsCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(songCmd)
	rootCmd.AddCommand(midiCmd)
	rootCmd.AddCommand(samplesCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	var err error
	globalConfig, err = cli.LoadConfigWithPath(appName, cfgFile)
	if err != nil {
		slog.Warn("failed to load config", "error", err)
	}
}

// getContext returns the context to use; without any configuration it is
// an empty context and every default applies.
func getContext() (*cli.Context, error) {
	if globalConfig == nil {
		if contextName != "" {
			return nil, fmt.Errorf("configuration not initialized")
		}
		return &cli.Context{}, nil
	}
	return globalConfig.ResolveContext(contextName)
}

func getConfig() (*cli.Config, error) {
	if globalConfig == nil {
		return nil, fmt.Errorf("configuration not initialized")
	}
	return globalConfig, nil
}

// outputResult prints result as YAML, JSON, or a table when it has one.
func outputResult(result any) error {
	format := cli.FormatYAML
	switch {
	case outputJSON:
		format = cli.FormatJSON
	case outputFile == "":
		if _, ok := result.(cli.Tabular); ok {
			format = cli.FormatTable
		}
	}
	return cli.Output(result, cli.OutputOptions{Format: format, File: outputFile})
}
