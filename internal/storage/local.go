package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Local stores uploads on the filesystem under a fixed directory and serves
// them from a fixed URL prefix.
type Local struct {
	dir       string
	urlPrefix string
}

// NewLocal creates a filesystem backend. urlPrefix is the public path the
// router serves dir under, e.g. /uploads.
func NewLocal(dir, urlPrefix string) *Local {
	prefix := "/" + strings.Trim(strings.TrimSpace(urlPrefix), "/")
	return &Local{dir: dir, urlPrefix: prefix}
}

// Owns reports whether a stored path points at this backend.
func (l *Local) Owns(p string) bool {
	return strings.HasPrefix(p, l.urlPrefix+"/")
}

// Save writes the upload under the configured directory with a generated
// unique name.
func (l *Local) Save(ctx context.Context, name, contentType string, r io.Reader, size int64) (*Image, error) {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return nil, err
	}

	stored := objectName(name)
	target := filepath.Join(l.dir, stored)

	f, err := os.Create(target)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	written, err := io.Copy(f, r)
	if err != nil {
		os.Remove(target)
		return nil, err
	}

	url := path.Join(l.urlPrefix, stored)
	return &Image{
		Name: stored,
		Size: written,
		Type: contentType,
		URL:  url,
		Path: url,
	}, nil
}

// Delete removes a previously saved file. The path must stay inside the
// upload directory; anything else is rejected.
func (l *Local) Delete(ctx context.Context, p string) error {
	if !l.Owns(p) {
		return errors.New("path is outside the upload directory")
	}

	name := filepath.Base(strings.TrimPrefix(p, l.urlPrefix+"/"))
	if name == "." || name == ".." || name == "" {
		return errors.New("invalid upload path")
	}

	err := os.Remove(filepath.Join(l.dir, name))
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}
