// Package storage persists uploaded images to one of several interchangeable
// backends: local disk, an S3-compatible object store, or a CDN provider.
// The backend is elected once from configuration, not per request.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrTypeNotAllowed = errors.New("file type is not allowed")
	ErrTooLarge       = errors.New("file exceeds the size limit")
	ErrNotAnImage     = errors.New("file content is not a decodable image")
	ErrUploadFailed   = errors.New("upload failed")
)

// DefaultMaxUploadSize is the upload ceiling when the endpoint does not
// override it.
const DefaultMaxUploadSize = 5 << 20

// allowedImageTypes is the fixed content-type allow-list.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// Image describes a stored upload as returned to the client.
type Image struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type"`
	URL  string `json:"url"`
	Path string `json:"path"`
}

// Backend abstracts a single upload destination.
type Backend interface {
	Save(ctx context.Context, name, contentType string, r io.Reader, size int64) (*Image, error)
	Delete(ctx context.Context, path string) error
}

// Adapter routes saves to the elected backend and deletes to whichever
// backend owns the given path. A leading local URL prefix implies local disk.
type Adapter struct {
	local  *Local
	remote Backend
}

// NewAdapter builds an adapter around a mandatory local backend and an
// optional remote backend. When remote is non-nil all new uploads go there.
func NewAdapter(local *Local, remote Backend) *Adapter {
	return &Adapter{local: local, remote: remote}
}

// Save validates nothing; callers are expected to have run ValidateImage
// first. Any backend failure is wrapped as ErrUploadFailed with the
// underlying message preserved for diagnostics.
func (a *Adapter) Save(ctx context.Context, name, contentType string, r io.Reader, size int64) (*Image, error) {
	backend := Backend(a.local)
	if a.remote != nil {
		backend = a.remote
	}

	img, err := backend.Save(ctx, name, contentType, r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	return img, nil
}

// Delete removes a previously stored object, inferring the owning backend
// from the path shape.
func (a *Adapter) Delete(ctx context.Context, path string) error {
	if a.local.Owns(path) || a.remote == nil {
		return a.local.Delete(ctx, path)
	}
	return a.remote.Delete(ctx, path)
}

// ValidateImage rejects uploads whose declared type is outside the
// allow-list or whose size exceeds the ceiling. It runs before any
// storage write is attempted.
func ValidateImage(contentType string, size, maxSize int64) error {
	if maxSize <= 0 {
		maxSize = DefaultMaxUploadSize
	}
	if !allowedImageTypes[strings.ToLower(strings.TrimSpace(contentType))] {
		return ErrTypeNotAllowed
	}
	if size > maxSize {
		return ErrTooLarge
	}
	return nil
}

// objectName generates a date-prefixed unique object name preserving the
// original extension.
func objectName(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	return fmt.Sprintf("%s-%s%s", time.Now().Format("20060102"), uuid.New().String(), ext)
}
