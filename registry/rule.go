package registry

import (
	"strings"

	"github.com/eokit/stacforge/errors"
	"github.com/eokit/stacforge/xpr"
)

// StaticMetafile marks rules whose value is a constant, not read from any
// file inside the product.
const StaticMetafile = "static"

// Rule maps one attribute name to a typed value source: either a constant,
// or one or more path expressions evaluated against one or more metadata
// files.
type Rule struct {
	Attribute string
	Metafiles []string // candidate inner file patterns, usually one
	Exprs     []*xpr.Expr
	Raw       []string // source text of each expression
	Type      DataType
	Static    bool
	Constant  string
	// Intrinsic rules read a property of the metafile itself ("size",
	// "checksum:MD5", "checksum:SHA256") instead of its content.
	Intrinsic string
	// Multi marks rules written with a bracketed expression list; their
	// result is always rendered as a sequence.
	Multi bool
}

// Pseudo-expressions resolve from scene context instead of file content.
const (
	pseudoFilename    = "filename"
	pseudoUTCNow      = "utcnow"
	pseudoNow         = "now"
	pseudoProductType = "productType"
)

// IsPseudo reports whether raw is a context expression rather than a path.
func IsPseudo(raw string) bool {
	switch raw {
	case pseudoFilename, pseudoUTCNow, pseudoNow, pseudoProductType:
		return true
	}
	return false
}

// parseRule builds a Rule from one table row. The mappings column is either
// a single expression or a bracketed list; the file column likewise.
func parseRule(attribute, metafile, mappings string, datatype DataType) (Rule, error) {
	r := Rule{Attribute: attribute, Type: datatype}

	if strings.HasPrefix(mappings, "=") {
		r.Static = true
		r.Constant = mappings[1:]
		r.Metafiles = []string{StaticMetafile}
		return r, nil
	}

	r.Metafiles = splitBracketList(metafile)
	if len(r.Metafiles) == 0 {
		return Rule{}, errors.NewMappingLoadError("rule %q has no metafile", attribute)
	}

	if strings.HasPrefix(mappings, ":") {
		switch mappings {
		case ":size":
			r.Intrinsic = "size"
		case ":checksum", ":checksum:MD5":
			r.Intrinsic = "checksum:MD5"
		case ":checksum:SHA256":
			r.Intrinsic = "checksum:SHA256"
		default:
			return Rule{}, errors.NewMappingLoadError("rule %q: unknown intrinsic %q", attribute, mappings)
		}
		return r, nil
	}

	for _, raw := range splitBracketList(mappings) {
		r.Raw = append(r.Raw, raw)
		if IsPseudo(raw) {
			r.Exprs = append(r.Exprs, nil)
			continue
		}
		e, err := xpr.Compile(raw)
		if err != nil {
			return Rule{}, errors.Wrapf(err, "rule %q", attribute)
		}
		r.Exprs = append(r.Exprs, e)
	}
	r.Multi = strings.HasPrefix(strings.TrimSpace(mappings), "[")
	return r, nil
}

// splitBracketList splits "[a, b, c]" into its elements, or returns the
// trimmed input as a single element.
func splitBracketList(s string) []string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		if s == "" {
			return nil
		}
		return []string{s}
	}
	var (
		out   []string
		depth int
		quote byte
		start int
	)
	inner := s[1 : len(s)-1]
	flush := func(end int) {
		part := strings.TrimSpace(inner[start:end])
		if part != "" {
			out = append(out, part)
		}
	}
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '(' || c == '[':
			depth++
		case c == ')' || c == ']':
			depth--
		case c == ',' && depth == 0:
			flush(i)
			start = i + 1
		}
	}
	flush(len(inner))
	return out
}
