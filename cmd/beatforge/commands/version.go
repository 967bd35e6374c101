package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haivivi/beatforge/cmd/beatforge/internal/build"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		if outputJSON || outputFile != "" {
			return outputResult(build.Get())
		}
		fmt.Println(build.String())
		return nil
	},
}
