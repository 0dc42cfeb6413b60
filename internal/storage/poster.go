// Package storage abstracts where uploaded poster images live. Handlers
// only see the PosterStore interface and the durable public URL it returns,
// so the disk implementation can be swapped for an object-storage or CDN
// client without touching upload logic.
package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MaxPosterBytes caps uploads at 5 MB.
const MaxPosterBytes = 5 * 1024 * 1024

// allowedExtensions are the poster image types accepted for upload.
var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// ErrBadExtension is returned for files outside the image allow-list.
var ErrBadExtension = errors.New("invalid file type; allowed: png, jpg, jpeg, gif")

// ErrTooLarge is returned when an upload exceeds MaxPosterBytes.
var ErrTooLarge = errors.New("file exceeds 5MB limit")

// AllowedExtension reports whether the filename carries an accepted image
// extension (case-insensitive).
func AllowedExtension(filename string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// PosterStore persists poster images and returns a durable public URL.
type PosterStore interface {
	Save(ctx context.Context, filename string, r io.Reader) (url string, err error)
}

// DiskPosterStore writes posters under a local directory served as static
// files. Object keys are random so uploads never collide or overwrite.
type DiskPosterStore struct {
	Dir     string // filesystem directory, created on first save
	BaseURL string // public URL prefix mapped to Dir
}

func NewDiskPosterStore(dir, baseURL string) *DiskPosterStore {
	return &DiskPosterStore{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}
}

// Save streams the upload to disk under a uuid name, enforcing the
// extension allow-list and the size cap. The partial file is removed when
// the upload turns out oversized.
func (s *DiskPosterStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return "", ErrBadExtension
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", err
	}
	name := uuid.NewString() + ext
	path := filepath.Join(s.Dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	// Read one byte past the cap to detect oversized uploads.
	n, err := io.Copy(f, io.LimitReader(r, MaxPosterBytes+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", err
	}
	if n > MaxPosterBytes {
		_ = os.Remove(path)
		return "", ErrTooLarge
	}
	return s.BaseURL + "/" + name, nil
}
