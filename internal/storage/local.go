package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Local implements Storage on the local filesystem. Files land in dir and
// are served back by the static file mount under publicPrefix, so the
// returned reference is "<publicPrefix>/<generated-name>".
type Local struct {
	dir          string
	publicPrefix string
}

// NewLocal ensures the upload directory exists and returns a Local storage.
func NewLocal(dir, publicPrefix string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %q: %w", dir, err)
	}
	return &Local{
		dir:          dir,
		publicPrefix: strings.TrimRight(publicPrefix, "/"),
	}, nil
}

// Save writes the blob under a time-derived name and returns its public path.
// The write happens on the calling goroutine; requests never share a file.
func (l *Local) Save(ctx context.Context, originalName string, r io.Reader, size int64, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrUpload, err)
	}

	name := objectName(originalName)
	path := filepath.Join(l.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("%w: create %q: %w", ErrUpload, path, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("%w: write %q: %w", ErrUpload, path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("%w: close %q: %w", ErrUpload, path, err)
	}

	return l.publicPrefix + "/" + name, nil
}
