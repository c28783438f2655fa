package orderitems

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// FileStore persists uploaded image bytes.
type FileStore interface {
	Save(name string, r io.Reader) (string, error)
	Remove(path string) error
}

// DiskStore writes image files under a base directory.
type DiskStore struct {
	dir string
}

// NewDiskStore ensures the base directory exists.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("orderitems: create image dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

// Save stores the stream under a fresh name, keeping the original extension.
func (s *DiskStore) Save(name string, r io.Reader) (string, error) {
	target := filepath.Join(s.dir, uuid.NewString()+filepath.Ext(name))
	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("orderitems: create image file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	if _, err := io.Copy(f, r); err != nil {
		_ = os.Remove(target)
		return "", fmt.Errorf("orderitems: write image file: %w", err)
	}
	return target, nil
}

// Remove deletes a stored file. Missing files are not an error.
func (s *DiskStore) Remove(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
