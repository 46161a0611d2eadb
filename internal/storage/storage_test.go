package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateImage(t *testing.T) {
	cases := []struct {
		name        string
		contentType string
		size        int64
		maxSize     int64
		want        error
	}{
		{"jpeg ok", "image/jpeg", 1024, 0, nil},
		{"png ok", "image/png", 1024, 0, nil},
		{"mixed case ok", " Image/WebP ", 1024, 0, nil},
		{"pdf rejected", "application/pdf", 1024, 0, ErrTypeNotAllowed},
		{"svg rejected", "image/svg+xml", 1024, 0, ErrTypeNotAllowed},
		{"empty type rejected", "", 1024, 0, ErrTypeNotAllowed},
		{"too large default ceiling", "image/png", DefaultMaxUploadSize + 1, 0, ErrTooLarge},
		{"too large custom ceiling", "image/png", 2048, 1024, ErrTooLarge},
		{"at ceiling ok", "image/png", 1024, 1024, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidateImage(tc.contentType, tc.size, tc.maxSize); !errors.Is(got, tc.want) {
				t.Fatalf("ValidateImage(%q, %d, %d) = %v, want %v", tc.contentType, tc.size, tc.maxSize, got, tc.want)
			}
		})
	}
}

func TestLocalSaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	local := NewLocal(dir, "/uploads")

	content := []byte("fake image bytes")
	img, err := local.Save(context.Background(), "photo.PNG", "image/png", bytes.NewReader(content), int64(len(content)))
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	if !strings.HasPrefix(img.URL, "/uploads/") {
		t.Fatalf("expected url under /uploads/, got %q", img.URL)
	}
	if !strings.HasSuffix(img.Name, ".png") {
		t.Fatalf("expected lowered extension to survive, got %q", img.Name)
	}
	if img.Size != int64(len(content)) {
		t.Fatalf("expected size %d, got %d", len(content), img.Size)
	}

	stored, err := os.ReadFile(filepath.Join(dir, img.Name))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if !bytes.Equal(stored, content) {
		t.Fatal("stored bytes differ from upload")
	}

	if err := local.Delete(context.Background(), img.Path); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, img.Name)); !os.IsNotExist(err) {
		t.Fatalf("expected file to be removed, got %v", err)
	}

	// deleting again is a no-op
	if err := local.Delete(context.Background(), img.Path); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestLocalDeleteRejectsForeignPaths(t *testing.T) {
	local := NewLocal(t.TempDir(), "/uploads")

	for _, p := range []string{"/etc/passwd", "uploads/x.png", "/other/x.png"} {
		if err := local.Delete(context.Background(), p); err == nil {
			t.Errorf("expected delete of %q to be rejected", p)
		}
	}
}

func TestLocalOwns(t *testing.T) {
	local := NewLocal(t.TempDir(), "uploads")

	if !local.Owns("/uploads/20250601-abc.png") {
		t.Fatal("expected prefixed path to be owned")
	}
	if local.Owns("https://cdn.example.com/uploads/x.png") {
		t.Fatal("expected remote url to not be owned")
	}
	if local.Owns("site-assets/x.png") {
		t.Fatal("expected bare object key to not be owned")
	}
}

type stubBackend struct {
	saved   int
	deleted []string
	fail    bool
}

func (s *stubBackend) Save(ctx context.Context, name, contentType string, r io.Reader, size int64) (*Image, error) {
	if s.fail {
		return nil, errors.New("backend unreachable")
	}
	s.saved++
	return &Image{Name: name, Size: size, Type: contentType, URL: "https://cdn.example.com/" + name, Path: name}, nil
}

func (s *stubBackend) Delete(ctx context.Context, path string) error {
	s.deleted = append(s.deleted, path)
	return nil
}

func TestAdapterRoutesToRemoteWhenConfigured(t *testing.T) {
	local := NewLocal(t.TempDir(), "/uploads")
	remote := &stubBackend{}
	adapter := NewAdapter(local, remote)

	content := []byte("bytes")
	img, err := adapter.Save(context.Background(), "pic.png", "image/png", bytes.NewReader(content), int64(len(content)))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if remote.saved != 1 {
		t.Fatalf("expected remote save, got %d", remote.saved)
	}
	if !strings.HasPrefix(img.URL, "https://") {
		t.Fatalf("expected remote url, got %q", img.URL)
	}

	// an old local path still routes to disk on delete
	if err := adapter.Delete(context.Background(), "/uploads/legacy.png"); err != nil {
		t.Fatalf("delete local path: %v", err)
	}
	if len(remote.deleted) != 0 {
		t.Fatalf("expected local delete to bypass remote, got %v", remote.deleted)
	}

	if err := adapter.Delete(context.Background(), "pic.png"); err != nil {
		t.Fatalf("delete remote path: %v", err)
	}
	if len(remote.deleted) != 1 || remote.deleted[0] != "pic.png" {
		t.Fatalf("expected remote delete of pic.png, got %v", remote.deleted)
	}
}

func TestAdapterWrapsBackendFailure(t *testing.T) {
	local := NewLocal(t.TempDir(), "/uploads")
	adapter := NewAdapter(local, &stubBackend{fail: true})

	_, err := adapter.Save(context.Background(), "pic.png", "image/png", bytes.NewReader(nil), 0)
	if !errors.Is(err, ErrUploadFailed) {
		t.Fatalf("expected ErrUploadFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "backend unreachable") {
		t.Fatalf("expected underlying message to be preserved, got %q", err.Error())
	}
}

func TestObjectNameKeepsExtension(t *testing.T) {
	name := objectName("Holiday Photo.JPEG")
	if !strings.HasSuffix(name, ".jpeg") {
		t.Fatalf("expected lowered .jpeg suffix, got %q", name)
	}
	if name == objectName("Holiday Photo.JPEG") {
		t.Fatal("expected generated names to be unique")
	}
}
