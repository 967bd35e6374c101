package cli

import (
	"os"
	"path/filepath"
)

// Paths lays out ~/.beatforge/<app>/.
type Paths struct {
	AppName string
	HomeDir string
}

// NewPaths returns the paths of appName under the user's home directory.
func NewPaths(appName string) (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &Paths{AppName: appName, HomeDir: home}, nil
}

func (p *Paths) BaseDir() string { return filepath.Join(p.HomeDir, DefaultBaseDir) }

func (p *Paths) AppDir() string { return filepath.Join(p.BaseDir(), p.AppName) }

func (p *Paths) ConfigFile() string { return filepath.Join(p.AppDir(), DefaultConfigFile) }

// CacheDir holds the render cache database.
func (p *Paths) CacheDir() string { return filepath.Join(p.AppDir(), "cache") }

// SamplesDir is the default sample directory.
func (p *Paths) SamplesDir() string { return filepath.Join(p.AppDir(), "samples") }

// EnsureCacheDir creates CacheDir.
func (p *Paths) EnsureCacheDir() error { return os.MkdirAll(p.CacheDir(), 0o755) }
