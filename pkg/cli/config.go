package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/haivivi/beatforge/pkg/storage"
)

const (
	// DefaultBaseDir is the configuration directory under the home dir.
	DefaultBaseDir = ".beatforge"
	// DefaultConfigFile is the configuration file name.
	DefaultConfigFile = "config.yaml"
)

// Config is the set of named contexts of an app.
type Config struct {
	AppName string `yaml:"-"`

	CurrentContext string              `yaml:"current_context,omitempty"`
	Contexts       map[string]*Context `yaml:"contexts,omitempty"`

	configPath string
}

// Context is a named rendering profile: where output and samples live,
// which cache to use and how to encode.
type Context struct {
	Name string `yaml:"name" json:"name"`

	// OutDir receives exported files when no S3 bucket is set.
	OutDir string `yaml:"out_dir,omitempty" json:"out_dir,omitempty"`

	// SamplesDir is a directory of kick.wav, snare.wav, hihat.wav and
	// bass.wav. Missing files fall back to the synthesized kit.
	SamplesDir string `yaml:"samples_dir,omitempty" json:"samples_dir,omitempty"`

	// CacheDir holds the render cache database.
	CacheDir string `yaml:"cache_dir,omitempty" json:"cache_dir,omitempty"`

	// Format is the default export format (wav, mp3, pcm).
	Format string `yaml:"format,omitempty" json:"format,omitempty"`

	// Bitrate is the default MP3 bitrate in kbps; 0 selects VBR.
	Bitrate int `yaml:"bitrate,omitempty" json:"bitrate,omitempty"`

	// S3 sends exports to a bucket instead of OutDir.
	S3 *storage.S3Config `yaml:"s3,omitempty" json:"s3,omitempty"`
}

// LoadConfig loads ~/.beatforge/<app>/config.yaml, creating it if needed.
func LoadConfig(appName string) (*Config, error) {
	return LoadConfigWithPath(appName, "")
}

// LoadConfigWithPath loads the configuration from customPath, or from the
// default location when customPath is empty.
func LoadConfigWithPath(appName, customPath string) (*Config, error) {
	configPath := customPath
	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = filepath.Join(home, DefaultBaseDir, appName, DefaultConfigFile)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	cfg := &Config{
		AppName:    appName,
		Contexts:   make(map[string]*Context),
		configPath: configPath,
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, cfg.Save()
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Contexts == nil {
		cfg.Contexts = make(map[string]*Context)
	}
	for name, ctx := range cfg.Contexts {
		ctx.Name = name
	}
	cfg.AppName = appName
	cfg.configPath = configPath
	return cfg, nil
}

// Save writes the configuration. The file may hold S3 secrets, so it is
// only readable by the owner.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(c.configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Path returns the config file path.
func (c *Config) Path() string { return c.configPath }

// AddContext validates ctx and stores it under name.
func (c *Config) AddContext(name string, ctx *Context) error {
	if name == "" {
		return fmt.Errorf("context name is required")
	}
	if err := ctx.Validate(); err != nil {
		return fmt.Errorf("context %q: %w", name, err)
	}
	ctx.Name = name
	c.Contexts[name] = ctx
	if c.CurrentContext == "" {
		c.CurrentContext = name
	}
	return c.Save()
}

func (c *Config) DeleteContext(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q not found", name)
	}
	delete(c.Contexts, name)
	if c.CurrentContext == name {
		c.CurrentContext = ""
	}
	return c.Save()
}

func (c *Config) UseContext(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q not found", name)
	}
	c.CurrentContext = name
	return c.Save()
}

func (c *Config) GetContext(name string) (*Context, error) {
	ctx, ok := c.Contexts[name]
	if !ok {
		return nil, fmt.Errorf("context %q not found", name)
	}
	return ctx, nil
}

// ResolveContext returns the named context, the current one when name is
// empty, or an empty context when nothing is configured.
func (c *Config) ResolveContext(name string) (*Context, error) {
	if name != "" {
		return c.GetContext(name)
	}
	if c.CurrentContext == "" {
		return &Context{}, nil
	}
	return c.GetContext(c.CurrentContext)
}

// ListContexts returns the context names in sorted order.
func (c *Config) ListContexts() []string {
	names := make([]string, 0, len(c.Contexts))
	for name := range c.Contexts {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Validate checks the encoding defaults.
func (ctx *Context) Validate() error {
	switch strings.ToLower(ctx.Format) {
	case "", "wav", "mp3", "pcm":
	default:
		return fmt.Errorf("unknown format %q", ctx.Format)
	}
	if ctx.Bitrate < 0 || ctx.Bitrate > 320 {
		return fmt.Errorf("bitrate %d out of range", ctx.Bitrate)
	}
	if ctx.S3 != nil && ctx.S3.Bucket == "" {
		return fmt.Errorf("s3 bucket is required")
	}
	return nil
}

// OutDirOr returns OutDir, or def when it is unset.
func (ctx *Context) OutDirOr(def string) string {
	if ctx.OutDir == "" {
		return def
	}
	return ctx.OutDir
}

// FormatOr returns Format, or def when it is unset.
func (ctx *Context) FormatOr(def string) string {
	if ctx.Format == "" {
		return def
	}
	return ctx.Format
}

// Masked returns a copy safe to print.
func (ctx *Context) Masked() *Context {
	cp := *ctx
	if ctx.S3 != nil {
		s3 := *ctx.S3
		s3.AccessKey = MaskSecret(s3.AccessKey)
		s3.SecretKey = MaskSecret(s3.SecretKey)
		cp.S3 = &s3
	}
	return &cp
}

// MaskSecret keeps the first and last four characters of long secrets.
func MaskSecret(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
