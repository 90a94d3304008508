package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// AssetStore keeps uploaded bus images on local disk. Serving the files
// back out is left to whatever fronts this service.
type AssetStore struct {
	dir string
}

func NewAssetStore(dir string) (*AssetStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create asset dir %s: %w", dir, err)
	}
	return &AssetStore{dir: dir}, nil
}

// Save writes the image under a random name, keeping the original
// extension, and returns the stored file name.
func (s *AssetStore) Save(busID int64, originalName string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" {
		ext = ".png"
	}
	name := fmt.Sprintf("bus_%d_%s%s", busID, uuid.New().String(), ext)

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create asset file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write asset file: %w", err)
	}
	return name, nil
}

// Remove deletes a previously stored file. Missing files are not an error.
func (s *AssetStore) Remove(name string) error {
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
