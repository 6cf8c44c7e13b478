// Package storage keeps uploaded game images on disk, addressed by
// generated filenames.
package storage

import (
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DefaultImage is the shared placeholder shown for games without an
// upload. It is never owned, and never deleted, by any single record.
const DefaultImage = "default.webp"

// ImageStore writes and removes image blobs under a single directory.
type ImageStore struct {
	dir string
}

// NewImageStore creates the backing directory if needed.
func NewImageStore(dir string) (*ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &ImageStore{dir: dir}, nil
}

// Dir returns the directory blobs are stored in.
func (s *ImageStore) Dir() string {
	return s.dir
}

// Save persists an uploaded file under a freshly generated name and
// returns that name. The original filename only contributes its extension.
func (s *ImageStore) Save(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	name := "img-" + uuid.NewString() + strings.ToLower(filepath.Ext(fh.Filename))
	path := filepath.Join(s.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", err
	}
	return name, nil
}

// Release deletes a stored image, best effort. Failures are logged and
// never surfaced: the game row is the source of truth, not the blob. The
// default image is a shared asset and is left alone.
func (s *ImageStore) Release(name string) {
	if name == "" || name == DefaultImage {
		return
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
		log.Printf("failed to delete image %s: %v", name, err)
	}
}
