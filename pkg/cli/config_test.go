package cli

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/haivivi/beatforge/pkg/storage"
)

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"", ""},
		{"1234", "****"},
		{"12345678", "********"},
		{"123456789", "1234*6789"},
		{"AKIAABCDEFGHIJ", "AKIA******GHIJ"},
	}
	for _, tt := range tests {
		if got := MaskSecret(tt.key); got != tt.want {
			t.Errorf("MaskSecret(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg, err := LoadConfigWithPath("beatforge", path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config not created: %v", err)
	}

	err = cfg.AddContext("studio", &Context{
		OutDir:  "/tmp/out",
		Format:  "mp3",
		Bitrate: 192,
		S3:      &storage.S3Config{Bucket: "beats", AccessKey: "AKIAABCDEFGHIJ", SecretKey: "secret"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.AddContext("local", &Context{OutDir: "out"}); err != nil {
		t.Fatal(err)
	}
	if cfg.CurrentContext != "studio" {
		t.Errorf("CurrentContext = %q, want first added", cfg.CurrentContext)
	}

	again, err := LoadConfigWithPath("beatforge", path)
	if err != nil {
		t.Fatal(err)
	}
	if got := again.ListContexts(); !slices.Equal(got, []string{"local", "studio"}) {
		t.Errorf("ListContexts() = %v", got)
	}
	ctx, err := again.ResolveContext("")
	if err != nil {
		t.Fatal(err)
	}
	if ctx.Name != "studio" || ctx.Bitrate != 192 || ctx.S3 == nil || ctx.S3.Bucket != "beats" {
		t.Errorf("context = %+v", ctx)
	}

	if err := again.UseContext("local"); err != nil {
		t.Fatal(err)
	}
	if err := again.DeleteContext("local"); err != nil {
		t.Fatal(err)
	}
	if again.CurrentContext != "" {
		t.Errorf("CurrentContext = %q after deleting it", again.CurrentContext)
	}
	if err := again.UseContext("missing"); err == nil {
		t.Error("UseContext(missing) succeeded")
	}
}

func TestResolveContextWithoutConfig(t *testing.T) {
	cfg, err := LoadConfigWithPath("beatforge", filepath.Join(t.TempDir(), "c.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	ctx, err := cfg.ResolveContext("")
	if err != nil || ctx == nil {
		t.Fatalf("ResolveContext = %v, %v", ctx, err)
	}
	if ctx.OutDirOr("out") != "out" || ctx.FormatOr("wav") != "wav" {
		t.Errorf("defaults not applied: %+v", ctx)
	}
	if _, err := cfg.ResolveContext("nope"); err == nil {
		t.Error("unknown context resolved")
	}
}

func TestContextValidate(t *testing.T) {
	bad := []*Context{
		{Format: "flac"},
		{Bitrate: -1},
		{Bitrate: 512},
		{S3: &storage.S3Config{}},
	}
	for _, ctx := range bad {
		if err := ctx.Validate(); err == nil {
			t.Errorf("Validate(%+v) = nil", ctx)
		}
	}
	if err := (&Context{Format: "WAV", Bitrate: 128}).Validate(); err != nil {
		t.Error(err)
	}
}

func TestContextMasked(t *testing.T) {
	ctx := &Context{S3: &storage.S3Config{Bucket: "b", AccessKey: "AKIAABCDEFGHIJ", SecretKey: "topsecret!"}}
	m := ctx.Masked()
	if m.S3.SecretKey == "topsecret!" || m.S3.AccessKey != "AKIA******GHIJ" {
		t.Errorf("masked = %+v", m.S3)
	}
	if ctx.S3.SecretKey != "topsecret!" {
		t.Error("original modified")
	}
}
