package container

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/eokit/stacforge/errors"
)

// dirContainer serves a product laid out as a local directory tree. The
// file listing is taken once at open time.
type dirContainer struct {
	root  string
	files []FileInfo
}

func openDir(root string) (*dirContainer, error) {
	d := &dirContainer{root: root}
	err := filepath.WalkDir(root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		d.files = append(d.files, FileInfo{Name: filepath.ToSlash(rel), Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(errors.ErrContainerAccess, "listing %s: %v", root, err)
	}
	return d, nil
}

func (d *dirContainer) Find(_ context.Context, pattern string) ([]string, error) {
	return findIn(d.files, pattern), nil
}

func (d *dirContainer) Open(_ context.Context, name string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(d.root, filepath.FromSlash(name)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(errors.ErrNotFound, "%s", name)
		}
		return nil, errors.Wrapf(errors.ErrContainerAccess, "open %s: %v", name, err)
	}
	return f, nil
}

func (d *dirContainer) Files(_ context.Context) ([]FileInfo, error) {
	return d.files, nil
}

func (d *dirContainer) Close() error { return nil }

// singleContainer wraps a standalone product file, such as a NetCDF or an
// orbit file, as a container holding exactly that file.
type singleContainer struct {
	path string
	info FileInfo
}

func openSingle(p string, size int64) (*singleContainer, error) {
	return &singleContainer{path: p, info: FileInfo{Name: filepath.Base(p), Size: size}}, nil
}

func (s *singleContainer) Find(_ context.Context, pattern string) ([]string, error) {
	if matchName(s.info.Name, pattern) {
		return []string{s.info.Name}, nil
	}
	return nil, nil
}

func (s *singleContainer) Open(_ context.Context, name string) (io.ReadCloser, error) {
	if name != s.info.Name {
		return nil, errors.Wrapf(errors.ErrNotFound, "%s", name)
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrContainerAccess, "open %s: %v", s.path, err)
	}
	return f, nil
}

func (s *singleContainer) Files(_ context.Context) ([]FileInfo, error) {
	return []FileInfo{s.info}, nil
}

func (s *singleContainer) Close() error { return nil }
