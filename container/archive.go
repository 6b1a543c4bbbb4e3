package container

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/eokit/stacforge/errors"
)

// zipContainer keeps the archive handle open for the accessor's lifetime;
// zip supports random access so Open is cheap.
type zipContainer struct {
	rc    *zip.ReadCloser
	files []FileInfo
}

func openZip(p string) (*zipContainer, error) {
	rc, err := zip.OpenReader(p)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrContainerAccess, "open %s: %v", p, err)
	}
	z := &zipContainer{rc: rc}
	for _, f := range rc.File {
		if strings.HasSuffix(f.Name, "/") {
			continue
		}
		z.files = append(z.files, FileInfo{Name: f.Name, Size: int64(f.UncompressedSize64)})
	}
	return z, nil
}

func (z *zipContainer) Find(_ context.Context, pattern string) ([]string, error) {
	return findIn(z.files, pattern), nil
}

func (z *zipContainer) Open(_ context.Context, name string) (io.ReadCloser, error) {
	for _, f := range z.rc.File {
		if f.Name == name {
			rd, err := f.Open()
			if err != nil {
				return nil, errors.Wrapf(errors.ErrContainerAccess, "open %s: %v", name, err)
			}
			return rd, nil
		}
	}
	return nil, errors.Wrapf(errors.ErrNotFound, "%s", name)
}

func (z *zipContainer) Files(_ context.Context) ([]FileInfo, error) {
	return z.files, nil
}

func (z *zipContainer) Close() error { return z.rc.Close() }

// tarContainer indexes the archive once up front. Tar is sequential, so
// each Open rescans the file to the wanted entry.
type tarContainer struct {
	path       string
	compressed bool
	files      []FileInfo
}

func openTar(p string) (*tarContainer, error) {
	lower := strings.ToLower(p)
	t := &tarContainer{
		path:       p,
		compressed: strings.HasSuffix(lower, ".tgz") || strings.HasSuffix(lower, ".tar.gz"),
	}
	tr, closeAll, err := t.reader()
	if err != nil {
		return nil, err
	}
	defer closeAll()
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(errors.ErrContainerAccess, "reading %s: %v", p, err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		t.files = append(t.files, FileInfo{Name: hdr.Name, Size: hdr.Size})
	}
	return t, nil
}

func (t *tarContainer) reader() (*tar.Reader, func(), error) {
	f, err := os.Open(t.path)
	if err != nil {
		return nil, nil, errors.Wrapf(errors.ErrContainerAccess, "open %s: %v", t.path, err)
	}
	var rd io.Reader = f
	closeAll := func() { f.Close() }
	if t.compressed {
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, nil, errors.Wrapf(errors.ErrContainerAccess, "open %s: %v", t.path, err)
		}
		rd = gz
		closeAll = func() {
			gz.Close()
			f.Close()
		}
	}
	return tar.NewReader(rd), closeAll, nil
}

func (t *tarContainer) Find(_ context.Context, pattern string) ([]string, error) {
	return findIn(t.files, pattern), nil
}

func (t *tarContainer) Open(_ context.Context, name string) (io.ReadCloser, error) {
	tr, closeAll, err := t.reader()
	if err != nil {
		return nil, err
	}
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			closeAll()
			return nil, errors.Wrapf(errors.ErrContainerAccess, "reading %s: %v", t.path, err)
		}
		if hdr.Typeflag == tar.TypeReg && hdr.Name == name {
			return &tarEntry{Reader: tr, release: closeAll}, nil
		}
	}
	closeAll()
	return nil, errors.Wrapf(errors.ErrNotFound, "%s", name)
}

func (t *tarContainer) Files(_ context.Context) ([]FileInfo, error) {
	return t.files, nil
}

func (t *tarContainer) Close() error { return nil }

type tarEntry struct {
	*tar.Reader
	release func()
}

func (e *tarEntry) Close() error {
	e.release()
	return nil
}

// gzipContainer serves a single gzip-compressed file; the inner name is
// the file name with the .gz suffix dropped.
type gzipContainer struct {
	path  string
	inner string
}

func openGzip(p string) (*gzipContainer, error) {
	return &gzipContainer{
		path:  p,
		inner: strings.TrimSuffix(filepath.Base(p), filepath.Ext(p)),
	}, nil
}

func (g *gzipContainer) Find(_ context.Context, pattern string) ([]string, error) {
	if matchName(g.inner, pattern) {
		return []string{g.inner}, nil
	}
	return nil, nil
}

func (g *gzipContainer) Open(_ context.Context, name string) (io.ReadCloser, error) {
	if name != g.inner {
		return nil, errors.Wrapf(errors.ErrNotFound, "%s", name)
	}
	f, err := os.Open(g.path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrContainerAccess, "open %s: %v", g.path, err)
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(errors.ErrContainerAccess, "open %s: %v", g.path, err)
	}
	return &gzipEntry{Reader: gz, file: f}, nil
}

func (g *gzipContainer) Files(_ context.Context) ([]FileInfo, error) {
	// uncompressed size is unknown without reading the stream
	return []FileInfo{{Name: g.inner, Size: -1}}, nil
}

func (g *gzipContainer) Close() error { return nil }

type gzipEntry struct {
	*gzip.Reader
	file *os.File
}

func (e *gzipEntry) Close() error {
	err := e.Reader.Close()
	if cerr := e.file.Close(); err == nil {
		err = cerr
	}
	return err
}
