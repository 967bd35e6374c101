// Package storage is where rendered files end up: a local output directory
// or an S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// FileStore stores files under forward-slash paths relative to its root.
// Implementations are safe for concurrent use.
type FileStore interface {
	// Read opens the named file. A missing file yields an error wrapping
	// fs.ErrNotExist.
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Write creates or truncates the named file. The content is committed
	// when the returned writer is closed.
	Write(ctx context.Context, path string) (io.WriteCloser, error)

	// Delete removes the named file. Deleting a missing file is not an error.
	Delete(ctx context.Context, path string) error

	// Exists reports whether the named file exists.
	Exists(ctx context.Context, path string) (bool, error)

	// Location returns a user-facing address of the named file.
	Location(path string) string
}

// Clean validates p and returns it in canonical form. Absolute paths and
// paths escaping the root are rejected.
func Clean(p string) (string, error) {
	if p == "" {
		return "", errors.New("storage: empty path")
	}
	if strings.HasPrefix(p, "/") {
		return "", fmt.Errorf("storage: absolute path %q", p)
	}
	c := path.Clean(p)
	if c == "." || c == ".." || strings.HasPrefix(c, "../") {
		return "", fmt.Errorf("storage: path %q escapes the store", p)
	}
	return c, nil
}

// Put writes a file by calling fn with the store writer. If fn fails the
// partial file is removed.
func Put(ctx context.Context, s FileStore, path string, fn func(io.Writer) error) error {
	w, err := s.Write(ctx, path)
	if err != nil {
		return err
	}
	if err := fn(w); err != nil {
		if cw, ok := w.(interface{ Abort(error) }); ok {
			cw.Abort(err)
		} else {
			w.Close()
			s.Delete(ctx, path)
		}
		return err
	}
	return w.Close()
}

// Get reads the whole named file.
func Get(ctx context.Context, s FileStore, path string) ([]byte, error) {
	r, err := s.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
