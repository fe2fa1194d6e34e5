// Package storage persists uploaded image blobs and hands back durable
// references. Two interchangeable backends exist: local disk (files served
// from a public directory) and any S3-compatible object store. The backend
// is picked once at startup; handlers only ever see the Storage interface.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"
)

// ErrUpload marks a failed blob write. Callers abort the surrounding
// operation before any database write when they see it.
var ErrUpload = errors.New("image upload failed")

// Storage stores a binary blob and returns a durable reference to it —
// a relative path for the local backend, an absolute URL for the remote one.
type Storage interface {
	Save(ctx context.Context, originalName string, r io.Reader, size int64, contentType string) (string, error)
}

// objectName derives a collision-resistant name from the current time,
// keeping the original file extension so the blob stays recognizable.
func objectName(originalName string) string {
	return fmt.Sprintf("%d%s", time.Now().UnixNano(), filepath.Ext(originalName))
}
