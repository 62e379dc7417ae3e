package photosheet

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alnah/go-photosheet/internal/fileutil"
)

// Lister enumerates candidate image files in a directory.
type Lister interface {
	List(ctx context.Context, dir string, filter ExtensionFilter) ([]string, error)
}

// ExtensionFilter selects files by extension.
type ExtensionFilter struct {
	Extensions []string
	Mode       FilterMode
}

// Match reports whether a file name passes the filter. Comparison is
// case-insensitive and ignores leading dots in the configured list.
func (f ExtensionFilter) Match(name string) bool {
	ext := fileutil.Ext(name)
	listed := false
	for _, e := range f.Extensions {
		if fileutil.NormalizeExtension(e) == ext {
			listed = true
			break
		}
	}
	if f.Mode == FilterExclude {
		return !listed
	}
	return listed
}

// Validate rejects unusable extension entries and unknown modes.
func (f ExtensionFilter) Validate() error {
	if err := f.Mode.Validate(); err != nil {
		return err
	}
	for _, e := range f.Extensions {
		if err := fileutil.ValidateExtension(e); err != nil {
			return fmt.Errorf("%w: %q: %v", ErrInvalidExtension, e, err)
		}
	}
	return nil
}

// DirLister lists the regular files of a single directory, sorted by name.
// Subdirectories are not descended into.
type DirLister struct{}

var _ Lister = DirLister{}

// List returns the full paths of the files in dir that pass filter.
func (DirLister) List(ctx context.Context, dir string, filter ExtensionFilter) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadDir, err)
	}

	var paths []string
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !e.Type().IsRegular() {
			// Follow symlinks to regular files, skip everything else.
			if e.Type()&os.ModeSymlink == 0 {
				continue
			}
			info, err := os.Stat(filepath.Join(dir, e.Name()))
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
		}
		if filter.Match(e.Name()) {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}

	// os.ReadDir returns entries sorted by file name.
	return paths, nil
}
