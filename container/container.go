// Package container gives uniform read access to the files inside an
// Earth observation product, whatever its physical form: a local
// directory, a zip, tar or gzip archive, or an object-store prefix. One
// accessor is opened per scene and released when processing ends.
package container

import (
	"context"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/eokit/stacforge/errors"
	"github.com/eokit/stacforge/scene"
)

// FileInfo describes one file inside a product container. Name is the
// path relative to the container root.
type FileInfo struct {
	Name string
	Size int64
}

// Accessor reads files out of a single product. Implementations hold the
// underlying handle open until Close.
type Accessor interface {
	// Find returns the inner names matching pattern, sorted.
	Find(ctx context.Context, pattern string) ([]string, error)
	// Open returns the content of one inner file by exact name.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	// Files lists every file in the container.
	Files(ctx context.Context) ([]FileInfo, error)
	Close() error
}

// ForScene opens the right accessor for a scene. Remote scenes need a
// configured object-store backend.
func ForScene(ctx context.Context, s scene.Scene, remote *S3) (Accessor, error) {
	if s.IsRemote() {
		if remote == nil {
			return nil, errors.Wrapf(errors.ErrContainerAccess, "no object store configured for %s", s)
		}
		return remote.open(ctx, s)
	}

	info, err := os.Stat(s.String())
	if err != nil {
		return nil, errors.Wrapf(errors.ErrContainerAccess, "stat %s: %v", s, err)
	}
	if info.IsDir() {
		return openDir(s.String())
	}
	switch strings.ToLower(s.Ext()) {
	case ".zip":
		return openZip(s.String())
	case ".tar", ".tgz":
		return openTar(s.String())
	case ".gz":
		if strings.HasSuffix(strings.ToLower(s.Name()), ".tar.gz") {
			return openTar(s.String())
		}
		return openGzip(s.String())
	default:
		return openSingle(s.String(), info.Size())
	}
}

// Resolve finds exactly one inner file for a pattern. No match wraps
// ErrNotFound; several matches is an access failure so a sloppy pattern
// never silently picks a file.
func Resolve(ctx context.Context, acc Accessor, pattern string) (string, error) {
	matches, err := acc.Find(ctx, pattern)
	if err != nil {
		return "", err
	}
	switch len(matches) {
	case 0:
		return "", errors.Wrapf(errors.ErrNotFound, "no file matches %q", pattern)
	case 1:
		return matches[0], nil
	default:
		return "", errors.Wrapf(errors.ErrContainerAccess, "pattern %q is ambiguous: %v", pattern, matches)
	}
}

// matchName matches an inner path against a pattern. A pattern with
// separators must match the trailing path segments; a bare pattern matches
// the base name. Matching is case-insensitive.
func matchName(name, pattern string) bool {
	name = strings.ToLower(name)
	pattern = strings.ToLower(pattern)
	if !strings.Contains(pattern, "/") {
		ok, err := path.Match(pattern, path.Base(name))
		return err == nil && ok
	}
	ps := strings.Split(pattern, "/")
	ns := strings.Split(name, "/")
	if len(ns) < len(ps) {
		return false
	}
	ns = ns[len(ns)-len(ps):]
	for i := range ps {
		ok, err := path.Match(ps[i], ns[i])
		if err != nil || !ok {
			return false
		}
	}
	return true
}

func findIn(files []FileInfo, pattern string) []string {
	var out []string
	for _, f := range files {
		if matchName(f.Name, pattern) {
			out = append(out, f.Name)
		}
	}
	sort.Strings(out)
	return out
}
