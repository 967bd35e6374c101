package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func newTestLocal(t *testing.T) *Local {
	t.Helper()
	s, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestClean(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"song.wav", "song.wav", true},
		{"a/./b/../c.mp3", "a/c.mp3", true},
		{"", "", false},
		{"/etc/passwd", "", false},
		{"../out.wav", "", false},
		{"a/../../x", "", false},
		{".", "", false},
	}
	for _, tt := range tests {
		got, err := Clean(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("Clean(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestLocalPutGet(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	err := Put(ctx, s, "songs/a.wav", func(w io.Writer) error {
		_, err := io.WriteString(w, "RIFF")
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	got, err := Get(ctx, s, "songs/a.wav")
	if err != nil || string(got) != "RIFF" {
		t.Fatalf("Get = %q, %v", got, err)
	}
	if loc := s.Location("songs/a.wav"); loc != filepath.Join(s.Root(), "songs", "a.wav") {
		t.Errorf("Location = %q", loc)
	}
	ok, err := s.Exists(ctx, "songs/a.wav")
	if err != nil || !ok {
		t.Errorf("Exists = %v, %v", ok, err)
	}
}

func TestLocalPutFailureLeavesNothing(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := Put(ctx, s, "x.mp3", func(w io.Writer) error {
		io.WriteString(w, "partial")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	entries, err := os.ReadDir(s.Root())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("left behind %v", entries)
	}
}

func TestLocalWriteIsAtomic(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	w, err := s.Write(ctx, "a.pcm")
	if err != nil {
		t.Fatal(err)
	}
	io.WriteString(w, "data")
	if ok, _ := s.Exists(ctx, "a.pcm"); ok {
		t.Error("file visible before Close")
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if ok, _ := s.Exists(ctx, "a.pcm"); !ok {
		t.Error("file missing after Close")
	}
}

func TestLocalReadMissing(t *testing.T) {
	s := newTestLocal(t)
	_, err := s.Read(context.Background(), "nope.wav")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("err = %v", err)
	}
}

func TestLocalDeleteIdempotent(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()
	if err := s.Delete(ctx, "nope"); err != nil {
		t.Fatal(err)
	}
	Put(ctx, s, "f", func(w io.Writer) error { return nil })
	if err := s.Delete(ctx, "f"); err != nil {
		t.Fatal(err)
	}
	if ok, _ := s.Exists(ctx, "f"); ok {
		t.Error("file still exists")
	}
}

func TestLocalRejectsEscape(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()
	if _, err := s.Write(ctx, "../evil"); err == nil {
		t.Error("Write escaped the root")
	}
	if _, err := s.Read(ctx, "/abs"); err == nil {
		t.Error("Read accepted an absolute path")
	}
}
