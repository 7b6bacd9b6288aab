package imaging

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/google/uuid"

	"github.com/erazemk/assetdesk/internal/apperr"
)

// Ext is the extension of every stored image.
const Ext = ".jpg"

var storedName = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.jpg$`)

// Store keeps normalised images as <uuid>.jpg files in Dir. Assets
// reference images by that file name.
type Store struct {
	Dir      string
	MaxBytes int64
}

// NewStore creates dir if needed.
func NewStore(dir string, maxBytes int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating image directory: %w", err)
	}
	return &Store{Dir: dir, MaxBytes: maxBytes}, nil
}

// ValidName reports whether name could have been produced by Save.
func ValidName(name string) bool {
	return storedName.MatchString(name)
}

// Save normalises the upload and writes it under a fresh name, which it
// returns.
func (s *Store) Save(r io.Reader) (string, error) {
	data, err := Normalize(r, s.MaxBytes)
	if err != nil {
		return "", err
	}

	name := uuid.NewString() + Ext
	tmp := filepath.Join(s.Dir, "."+name+".tmp")
	if err := os.WriteFile(tmp, data, 0o640); err != nil {
		return "", apperr.Upstream("storing image", err)
	}
	if err := os.Rename(tmp, filepath.Join(s.Dir, name)); err != nil {
		os.Remove(tmp)
		return "", apperr.Upstream("storing image", err)
	}
	return name, nil
}

// Open returns the stored image called name.
func (s *Store) Open(name string) (*os.File, error) {
	if !ValidName(name) {
		return nil, apperr.NotFound("image", name)
	}
	f, err := os.Open(filepath.Join(s.Dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperr.NotFound("image", name)
	}
	if err != nil {
		return nil, apperr.Upstream("opening image", err)
	}
	return f, nil
}

// Exists reports whether name is a stored image.
func (s *Store) Exists(name string) bool {
	if !ValidName(name) {
		return false
	}
	info, err := os.Stat(filepath.Join(s.Dir, name))
	return err == nil && info.Mode().IsRegular()
}

// Remove deletes the stored image. Removing a missing image is not an error.
func (s *Store) Remove(name string) error {
	if !ValidName(name) {
		return nil
	}
	err := os.Remove(filepath.Join(s.Dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return apperr.Upstream("removing image", err)
	}
	return nil
}
