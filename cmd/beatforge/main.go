// Package main provides the beatforge CLI.
//
// Usage:
//
//	beatforge [flags] <command> [args]
//
// Commands:
//
//	patterns - List and show drum patterns
//	render   - Render one style to an audio file
//	song     - Render a structured song or project file
//	midi     - Write a pattern as a Standard MIDI File
//	samples  - Export the synthesized drum kit
//	cache    - Inspect and clear the render cache
//	config   - Configuration management
//
// Configuration:
//
//	The CLI stores configuration in ~/.beatforge/beatforge/
//	Use 'beatforge config' commands to manage contexts.
package main

import (
	"fmt"
	"os"

	"github.com/haivivi/beatforge/cmd/beatforge/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
