package vocal

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/haivivi/beatforge/pkg/audio/codec/wav"
	"github.com/haivivi/beatforge/pkg/audio/pcm"
)

func constant(f pcm.Format, ms int64, v float32) *pcm.Buffer {
	s := make([]float32, f.SamplesInMillis(ms))
	for i := range s {
		s[i] = v
	}
	return pcm.Adopt(f, s)
}

func TestOverlay(t *testing.T) {
	f := pcm.L16Mono16K
	base := constant(f, 1000, 0.1)
	clip := constant(f, 500, 0.2)

	out := Overlay(base, clip, 750, 0)
	if out.Len() != base.Len() {
		t.Fatalf("Len = %d, want %d", out.Len(), base.Len())
	}
	if base.At(15000) != 0.1 {
		t.Error("base modified")
	}
	if math.Abs(float64(out.At(11999))-0.1) > 1e-6 {
		t.Errorf("before clip = %v", out.At(11999))
	}
	if math.Abs(float64(out.At(12000))-0.3) > 1e-6 {
		t.Errorf("inside clip = %v", out.At(12000))
	}
	if math.Abs(float64(out.At(15999))-0.3) > 1e-6 {
		t.Errorf("truncated tail = %v", out.At(15999))
	}
}

func TestOverlayGain(t *testing.T) {
	f := pcm.L16Mono16K
	out := Overlay(constant(f, 100, 0), constant(f, 100, 0.5), 0, -6.0206)
	if math.Abs(float64(out.At(10))-0.25) > 1e-4 {
		t.Errorf("sample = %v, want 0.25", out.At(10))
	}
}

func TestWithEcho(t *testing.T) {
	f := pcm.L16Mono16K
	clip := constant(f, 300, 0.4)
	out := WithEcho(clip, EchoDelayMs, EchoGainDB)
	if out.Len() != clip.Len() {
		t.Fatalf("Len = %d", out.Len())
	}
	if out.At(0) != 0.4 {
		t.Errorf("before delay = %v", out.At(0))
	}
	want := 0.4 + 0.4*math.Pow(10, -12.0/20)
	if math.Abs(float64(out.At(2000))-want) > 1e-5 {
		t.Errorf("after delay = %v, want %v", out.At(2000), want)
	}
}

func TestChop(t *testing.T) {
	f := pcm.L16Mono16K
	clip := constant(f, 1000, 0.5)
	out := Chop(clip, 200, 4)
	want := 4 * (3200 + 800)
	if out.Len() != want {
		t.Fatalf("Len = %d, want %d", out.Len(), want)
	}
	if out.At(0) != 0 || out.At(3200) != 0 {
		t.Errorf("chop edges not faded: %v %v", out.At(0), out.At(3200))
	}
	if out.At(1600) != 0.5 {
		t.Errorf("chop middle = %v", out.At(1600))
	}
}

func TestPrepare(t *testing.T) {
	f := pcm.L16Mono16K
	out := Prepare(constant(f, 300, 0.1), -0.3)
	if out.At(0) < 0.9 {
		t.Errorf("not normalized: %v", out.At(0))
	}
}

func TestSpeak(t *testing.T) {
	dir := t.TempDir()
	s := SynthesizerFunc(func(_ context.Context, text, lang string) (string, error) {
		if text != "hello" || lang != "en" {
			t.Errorf("got %q/%q", text, lang)
		}
		path := filepath.Join(dir, "out.wav")
		fh, err := os.Create(path)
		if err != nil {
			return "", err
		}
		defer fh.Close()
		return path, wav.Encode(fh, constant(pcm.L16Mono44K, 200, 0.25))
	})
	clip, err := Speak(context.Background(), s, "hello", "en", pcm.L16Mono44K)
	if err != nil {
		t.Fatal(err)
	}
	if clip.Len() != 8820 {
		t.Errorf("Len = %d", clip.Len())
	}
	if _, err := os.Stat(filepath.Join(dir, "out.wav")); !errors.Is(err, os.ErrNotExist) {
		t.Error("temporary file not removed")
	}
}

func TestCommandSynthesizerErrors(t *testing.T) {
	var empty CommandSynthesizer
	if _, err := empty.Synthesize(context.Background(), "x", "en"); err == nil {
		t.Error("empty command accepted")
	}
	bad := &CommandSynthesizer{Command: []string{"/nonexistent/tts-binary", "{text}"}, Dir: t.TempDir()}
	if _, err := bad.Synthesize(context.Background(), "x", "en"); err == nil {
		t.Error("missing binary succeeded")
	}
}

func TestCommandSynthesizerRuns(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("no /bin/sh")
	}
	s := &CommandSynthesizer{
		Command: []string{"/bin/sh", "-c", "printf '%s' '{text}-{lang}' > '{out}'"},
		Dir:     t.TempDir(),
	}
	path, err := s.Synthesize(context.Background(), "hi", "pt")
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hi-pt" {
		t.Errorf("output = %q", data)
	}
}
