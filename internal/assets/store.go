// Package assets maps purchased products onto downloadable archives.
package assets

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/nuxtz/storefront/internal/domain"
)

const ContentType = "application/zip"

// DefaultFile is served for product names missing from the catalog.
const DefaultFile = "nuxtz-minimal-boilerplate.zip"

var catalog = map[string]string{
	"Minimal Boilerplate":    "nuxtz-minimal-boilerplate.zip",
	"Full-Stack Boilerplate": "nuxtz-fullstack-boilerplate.zip",
}

// FileFor returns the archive name for productName.
func FileFor(productName string) string {
	if name, ok := catalog[productName]; ok {
		return name
	}
	return DefaultFile
}

// Asset is an opened archive ready to be streamed.
type Asset struct {
	FileName string
	Size     int64
	ModTime  time.Time
	Content  io.ReadSeekCloser
}

type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Open resolves productName and opens its archive. A missing file is a
// deployment problem and is reported as domain.ErrAssetNotFound.
func (s *Store) Open(productName string) (Asset, error) {
	name := FileFor(productName)
	path := filepath.Join(s.dir, name)

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Asset{}, fmt.Errorf("%w: %s", domain.ErrAssetNotFound, path)
		}
		return Asset{}, fmt.Errorf("open asset %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return Asset{}, fmt.Errorf("stat asset %s: %w", path, err)
	}
	if info.IsDir() {
		_ = f.Close()
		return Asset{}, fmt.Errorf("%w: %s is a directory", domain.ErrAssetNotFound, path)
	}

	return Asset{
		FileName: name,
		Size:     info.Size(),
		ModTime:  info.ModTime(),
		Content:  f,
	}, nil
}
