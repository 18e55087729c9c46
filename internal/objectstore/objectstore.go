// Package objectstore stores binary objects (profile avatars).
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

var (
	ErrExists     = errors.New("object already exists")
	ErrNotFound   = errors.New("object not found")
	ErrInvalidKey = errors.New("invalid object path")
)

// Store is a bucket of objects addressed by slash separated paths.
type Store interface {
	// Upload writes r to key. Without overwrite an existing object is an error.
	Upload(ctx context.Context, key string, r io.Reader, overwrite bool) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// PublicURL is the address clients use to fetch key.
	PublicURL(key string) string
}

// cleanKey rejects absolute paths and parent references.
func cleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return cleaned, nil
}
