package extract

import (
	"github.com/eokit/stacforge/registry"
)

// Value is one extracted attribute: the coerced data plus its declared
// type.
type Value struct {
	Type registry.DataType
	Data any
}

// Attributes is the attribute collection produced by one extraction run.
// It is filled during extraction and read-only once handed to a renderer.
type Attributes map[string]Value

// Has reports whether the attribute was extracted.
func (a Attributes) Has(name string) bool {
	_, ok := a[name]
	return ok
}

// String returns a string attribute, or "" when absent or non-string.
func (a Attributes) String(name string) string {
	if s, ok := a[name].Data.(string); ok {
		return s
	}
	return ""
}

// Float returns a numeric attribute as float64.
func (a Attributes) Float(name string) (float64, bool) {
	switch v := a[name].Data.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// Int returns an integer attribute.
func (a Attributes) Int(name string) (int64, bool) {
	v, ok := a[name].Data.(int64)
	return v, ok
}

// Any returns the raw coerced data.
func (a Attributes) Any(name string) (any, bool) {
	v, ok := a[name]
	return v.Data, ok
}

// Strings returns a sequence attribute as a string slice; a scalar string
// becomes a one-element slice.
func (a Attributes) Strings(name string) []string {
	switch v := a[name].Data.(type) {
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
