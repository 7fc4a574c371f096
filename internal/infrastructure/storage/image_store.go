package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalImageStore keeps listing images under a single directory, one
// subdirectory per owner.
type LocalImageStore struct {
	dir string
}

func NewLocalImageStore(dir string) *LocalImageStore {
	return &LocalImageStore{dir: dir}
}

// Remove deletes the named image. Names that escape the store directory are
// rejected. A file that is already gone is not an error.
func (s *LocalImageStore) Remove(_ context.Context, fileName string) error {
	name := filepath.Clean(filepath.FromSlash(fileName))
	if fileName == "" || name == "." || filepath.IsAbs(name) || !filepath.IsLocal(name) {
		return fmt.Errorf("invalid image file name %q", fileName)
	}

	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove image %s: %w", name, err)
	}
	return nil
}
