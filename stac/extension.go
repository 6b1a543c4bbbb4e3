// Package stac renders extracted attribute collections into STAC items.
// One template per detected product family decides which properties,
// assets and extensions the item carries.
package stac

import "sort"

const stacVersion = "1.1.0"

// Extension is a STAC extension schema URL.
type Extension string

const (
	ExtEO         Extension = "https://stac-extensions.github.io/eo/v1.1.0/schema.json"
	ExtSAR        Extension = "https://stac-extensions.github.io/sar/v1.0.0/schema.json"
	ExtSat        Extension = "https://stac-extensions.github.io/sat/v1.0.0/schema.json"
	ExtView       Extension = "https://stac-extensions.github.io/view/v1.0.0/schema.json"
	ExtProjection Extension = "https://stac-extensions.github.io/projection/v1.1.0/schema.json"
	ExtProcessing Extension = "https://stac-extensions.github.io/processing/v1.1.0/schema.json"
	ExtGrid       Extension = "https://stac-extensions.github.io/grid/v1.1.0/schema.json"
	ExtRaster     Extension = "https://stac-extensions.github.io/raster/v1.1.0/schema.json"
	ExtAltinfo    Extension = "https://stac-extensions.github.io/alternate-assets/v1.1.0/schema.json"
	ExtFile       Extension = "https://stac-extensions.github.io/file/v2.1.0/schema.json"
	ExtStorage    Extension = "https://stac-extensions.github.io/storage/v1.0.0/schema.json"
	ExtTimestamps Extension = "https://stac-extensions.github.io/timestamps/v1.1.0/schema.json"
)

// ExtensionSet is a deduplicated set of extension URLs; rendering emits it
// sorted so items are byte-stable.
type ExtensionSet map[Extension]struct{}

func (s ExtensionSet) Add(exts ...Extension) {
	for _, e := range exts {
		s[e] = struct{}{}
	}
}

func (s ExtensionSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for e := range s {
		out = append(out, string(e))
	}
	sort.Strings(out)
	return out
}
