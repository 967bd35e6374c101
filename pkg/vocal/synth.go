package vocal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Synthesizer turns text into a speech audio file and returns its path.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, lang string) (string, error)
}

// SynthesizerFunc adapts a function to Synthesizer.
type SynthesizerFunc func(ctx context.Context, text, lang string) (string, error)

func (f SynthesizerFunc) Synthesize(ctx context.Context, text, lang string) (string, error) {
	return f(ctx, text, lang)
}

// CommandSynthesizer runs an external TTS program. Each argument of Command
// may contain the placeholders {text}, {lang} and {out}; {out} is replaced by
// the path of the WAV file the program must write.
//
//	vocal.CommandSynthesizer{Command: []string{"espeak-ng", "-v", "{lang}", "-w", "{out}", "{text}"}}
type CommandSynthesizer struct {
	Command []string
	// Dir is where output files are created. Defaults to os.TempDir().
	Dir string
}

// Synthesize runs the command and returns the output path.
func (c *CommandSynthesizer) Synthesize(ctx context.Context, text, lang string) (string, error) {
	if len(c.Command) == 0 {
		return "", errors.New("vocal: no TTS command configured")
	}
	dir := c.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	out := filepath.Join(dir, "vocal-"+uuid.NewString()+".wav")

	r := strings.NewReplacer("{text}", text, "{lang}", lang, "{out}", out)
	args := make([]string, len(c.Command))
	for i, a := range c.Command {
		args[i] = r.Replace(a)
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		os.Remove(out)
		return "", fmt.Errorf("vocal: %s: %w: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}
	if _, err := os.Stat(out); err != nil {
		return "", fmt.Errorf("vocal: %s produced no output: %w", args[0], err)
	}
	return out, nil
}
