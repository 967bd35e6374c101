package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haivivi/beatforge/pkg/cli"
	"github.com/haivivi/beatforge/pkg/storage"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long: `Manage CLI configuration and contexts.

A context is a rendering profile: output directory or S3 bucket, sample
directory, cache directory and encoding defaults.

Configuration is stored in ~/.beatforge/beatforge/config.yaml`,
}

var addContextFlags struct {
	outDir     string
	samplesDir string
	cacheDir   string
	format     string
	bitrate    int
	s3         storage.S3Config
}

var configAddContextCmd = &cobra.Command{
	Use:   "add-context <name>",
	Short: "Add or replace a context",
	Long: `Add a context with the specified name.

Example:
  beatforge config add-context local --out-dir ./renders --samples-dir ./kit
  beatforge config add-context prod --s3-bucket beats --s3-prefix renders --format mp3 --bitrate 192`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		f := addContextFlags
		ctx := &cli.Context{
			OutDir:     f.outDir,
			SamplesDir: f.samplesDir,
			CacheDir:   f.cacheDir,
			Format:     f.format,
			Bitrate:    f.bitrate,
		}
		if f.s3.Bucket != "" || cmd.Flags().Changed("s3-endpoint") {
			s3 := f.s3
			ctx.S3 = &s3
		}
		if err := cfg.AddContext(args[0], ctx); err != nil {
			return err
		}
		cli.PrintSuccess("Context %q added", args[0])
		if cfg.CurrentContext == args[0] {
			fmt.Printf("  (set as current context)\n")
		}
		return nil
	},
}

var configUseContextCmd = &cobra.Command{
	Use:   "use-context <name>",
	Short: "Set the current context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		if err := cfg.UseContext(args[0]); err != nil {
			return err
		}
		cli.PrintSuccess("Switched to context %q", args[0])
		return nil
	},
}

type contextList struct {
	Current  string   `json:"current_context" yaml:"current_context"`
	Contexts []string `json:"contexts" yaml:"contexts"`
}

func (l contextList) Header() []string { return []string{"current", "name"} }

func (l contextList) Rows() [][]string {
	rows := make([][]string, 0, len(l.Contexts))
	for _, name := range l.Contexts {
		mark := ""
		if name == l.Current {
			mark = "*"
		}
		rows = append(rows, []string{mark, name})
	}
	return rows
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List contexts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		names := cfg.ListContexts()
		if len(names) == 0 {
			fmt.Println("No contexts configured.")
			fmt.Println("Use 'beatforge config add-context' to add one.")
			return nil
		}
		return outputResult(contextList{Current: cfg.CurrentContext, Contexts: names})
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show a context with secrets masked",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		name := cfg.CurrentContext
		if len(args) > 0 {
			name = args[0]
		}
		if name == "" {
			return fmt.Errorf("no context specified and no current context set")
		}
		ctx, err := cfg.GetContext(name)
		if err != nil {
			return err
		}
		return outputResult(ctx.Masked())
	},
}

var configDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		if err := cfg.DeleteContext(args[0]); err != nil {
			return err
		}
		cli.PrintSuccess("Context %q deleted", args[0])
		return nil
	},
}

func init() {
	f := configAddContextCmd.Flags()
	f.StringVar(&addContextFlags.outDir, "out-dir", "", "directory for exported files")
	f.StringVar(&addContextFlags.samplesDir, "samples-dir", "", "directory of kick.wav, snare.wav, hihat.wav, bass.wav")
	f.StringVar(&addContextFlags.cacheDir, "cache-dir", "", "render cache directory")
	f.StringVar(&addContextFlags.format, "format", "", "default export format (wav, mp3, pcm)")
	f.IntVar(&addContextFlags.bitrate, "bitrate", 0, "default MP3 bitrate in kbps, 0 for VBR")
	f.StringVar(&addContextFlags.s3.Bucket, "s3-bucket", "", "export to this S3 bucket")
	f.StringVar(&addContextFlags.s3.Prefix, "s3-prefix", "", "key prefix inside the bucket")
	f.StringVar(&addContextFlags.s3.Region, "s3-region", "", "bucket region (default us-east-1)")
	f.StringVar(&addContextFlags.s3.Endpoint, "s3-endpoint", "", "S3-compatible endpoint URL")
	f.StringVar(&addContextFlags.s3.AccessKey, "s3-access-key", "", "access key ID")
	f.StringVar(&addContextFlags.s3.SecretKey, "s3-secret-key", "", "secret access key")

	configCmd.AddCommand(configAddContextCmd)
	configCmd.AddCommand(configUseContextCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configDeleteCmd)
}
