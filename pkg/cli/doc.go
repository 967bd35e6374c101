// Package cli holds the plumbing shared by beatforge commands: named
// configuration contexts stored under ~/.beatforge/<app>/, YAML/JSON/table
// output, project file loading, and lipgloss styles for pattern grids.
//
// Example:
//
//	cfg, err := cli.LoadConfig("beatforge")
//	ctx, err := cfg.ResolveContext("")
//	out := ctx.OutDirOr(".")
package cli
