// Package scene identifies a single satellite product instance to be
// processed: a local directory, an archive file, or a remote object-storage
// prefix.
package scene

import (
	"path"
	"regexp"
	"strings"
)

// Scene is one product instance, addressed by a local filesystem path or an
// s3:// URI. It is resolved upstream; the pipeline never parses credentials.
type Scene struct {
	raw string
}

// New builds a Scene from a resolved path. Trailing slashes are dropped so
// directory and prefix forms address the same scene.
func New(raw string) Scene {
	return Scene{raw: strings.TrimRight(raw, "/")}
}

func (s Scene) String() string { return s.raw }

// IsRemote reports whether the scene lives in object storage.
func (s Scene) IsRemote() bool {
	return strings.HasPrefix(s.raw, "s3://")
}

// Name returns the final path element of the scene.
func (s Scene) Name() string {
	return path.Base(s.raw)
}

// Parent returns the name of the scene's parent directory.
func (s Scene) Parent() string {
	return path.Base(path.Dir(s.raw))
}

// ParentNames returns every ancestor directory name, nearest first. Used by
// classification rules that key off collection directories rather than the
// scene name itself.
func (s Scene) ParentNames() []string {
	var names []string
	p := path.Dir(strings.TrimPrefix(s.raw, "s3://"))
	for p != "." && p != "/" && p != "" {
		names = append(names, path.Base(p))
		p = path.Dir(p)
	}
	return names
}

// Ext returns the lowercased file extension of the scene name, including the
// leading dot, or "" for extension-less names.
func (s Scene) Ext() string {
	return strings.ToLower(path.Ext(s.raw))
}

// Stem returns the scene name without its final extension.
func (s Scene) Stem() string {
	name := s.Name()
	return strings.TrimSuffix(name, path.Ext(name))
}

// Bucket and Key split a remote scene into its object-storage coordinates.
// Both return "" for local scenes.
func (s Scene) Bucket() string {
	if !s.IsRemote() {
		return ""
	}
	rest := strings.TrimPrefix(s.raw, "s3://")
	bucket, _, _ := strings.Cut(rest, "/")
	return bucket
}

func (s Scene) Key() string {
	if !s.IsRemote() {
		return ""
	}
	rest := strings.TrimPrefix(s.raw, "s3://")
	_, key, _ := strings.Cut(rest, "/")
	return key
}

var identifierStripRe = regexp.MustCompile(`(?i)\.(?:SAFE|EOF|SEN3)$`)

// Identifier derives the product identifier: the parent directory name when
// the scene name extends it (zipped products unpacked next to their metadata
// keep the identifier on the directory), otherwise the scene name, with the
// packaging suffix (.SAFE/.EOF/.SEN3) stripped.
func (s Scene) Identifier() string {
	name := s.Name()
	if parent := s.Parent(); parent != "" && parent != "." && strings.HasPrefix(name, parent) {
		name = parent
	}
	return identifierStripRe.ReplaceAllString(name, "")
}
