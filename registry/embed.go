package registry

import (
	"embed"
	"io/fs"

	"github.com/eokit/stacforge/errors"
)

//go:embed mappings/*.csv
var embedded embed.FS

// Default returns a registry backed by the rule tables compiled into the
// binary.
func Default() (*Registry, error) {
	sub, err := fs.Sub(embedded, "mappings")
	if err != nil {
		return nil, errors.Wrap(err, "embedded mappings")
	}
	return New(sub)
}
