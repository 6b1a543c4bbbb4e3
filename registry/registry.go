// Package registry loads the two-level rule configuration: a product-type
// registry binding classifier output to a named rule table, and per-table
// CSV files mapping attribute names to typed path expressions. Tables are
// validated in full at load time and cached afterwards.
package registry

import (
	"encoding/csv"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/eokit/stacforge/classify"
	"github.com/eokit/stacforge/errors"
	"github.com/eokit/stacforge/logger"
)

const bindingFile = "ProductTypes2RuleMapping.csv"

// Binding connects a classified product type to its rule table and the
// label written into rendered documents.
type Binding struct {
	ProductType classify.ProductType
	RuleName    string
	Label       string
}

// Registry resolves product types to rule sets. Rule tables load lazily on
// first use and are cached; concurrent lookups are safe.
type Registry struct {
	fsys     fs.FS
	bindings map[classify.ProductType]Binding

	mu    sync.Mutex
	cache map[string][]Rule
}

// New reads the binding table from fsys and returns a registry backed by
// it. Rule tables referenced by bindings are not loaded until requested.
func New(fsys fs.FS) (*Registry, error) {
	f, err := fsys.Open(bindingFile)
	if err != nil {
		return nil, errors.NewMappingLoadError("opening %s: %v", bindingFile, err)
	}
	defer f.Close()

	rows, err := readTable(f, []string{"ProductType", "RuleName", "ESAProductType"})
	if err != nil {
		return nil, errors.Wrap(err, bindingFile)
	}

	r := &Registry{
		fsys:     fsys,
		bindings: make(map[classify.ProductType]Binding, len(rows)),
		cache:    make(map[string][]Rule),
	}
	for _, row := range rows {
		pt := classify.ProductType(row[0])
		if _, dup := r.bindings[pt]; dup {
			return nil, errors.NewMappingLoadError("%s: duplicate product type %q", bindingFile, pt)
		}
		r.bindings[pt] = Binding{ProductType: pt, RuleName: row[1], Label: row[2]}
	}
	logger.Debugw("loaded product type bindings", "count", len(r.bindings))
	return r, nil
}

// Resolve returns the binding for a product type. A classifier result with
// no registry row is a lookup failure.
func (r *Registry) Resolve(pt classify.ProductType) (Binding, error) {
	b, ok := r.bindings[pt]
	if !ok {
		return Binding{}, errors.Wrapf(errors.ErrLookup, "no rule binding for product type %q", pt)
	}
	return b, nil
}

// Rules returns the validated rule table for a rule set name, loading and
// caching it on first use.
func (r *Registry) Rules(name string) ([]Rule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rules, ok := r.cache[name]; ok {
		return rules, nil
	}
	f, err := r.fsys.Open(name + ".csv")
	if err != nil {
		return nil, errors.NewMappingLoadError("opening rule table %s: %v", name, err)
	}
	defer f.Close()

	rules, err := ParseRuleTable(f)
	if err != nil {
		return nil, errors.Wrapf(err, "rule table %s", name)
	}
	r.cache[name] = rules
	logger.Debugw("loaded rule table", "name", name, "rules", len(rules))
	return rules, nil
}

// ParseRuleTable reads one semicolon-separated rule table. Every row is
// validated: unknown data types, malformed expressions, and duplicate
// attribute names all fail the whole table.
func ParseRuleTable(rd io.Reader) ([]Rule, error) {
	rows, err := readTable(rd, []string{"metadata", "file", "mappings", "datatype"})
	if err != nil {
		return nil, err
	}

	var rules []Rule
	seen := make(map[string]struct{}, len(rows))
	for i, row := range rows {
		attribute, metafile, mappings := row[0], row[1], row[2]
		if strings.HasPrefix(attribute, "#") {
			continue
		}
		if mappings == "" {
			continue
		}
		datatype := DataType(row[3])
		if !datatype.Valid() {
			return nil, errors.NewMappingLoadError("row %d: unknown datatype %q", i+2, row[3])
		}
		if _, dup := seen[attribute]; dup {
			return nil, errors.NewMappingLoadError("row %d: duplicate attribute %q", i+2, attribute)
		}
		seen[attribute] = struct{}{}

		rule, err := parseRule(attribute, metafile, mappings, datatype)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", i+2)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// readTable parses a semicolon-separated CSV, checks the header, and
// returns trimmed data rows.
func readTable(rd io.Reader, header []string) ([][]string, error) {
	cr := csv.NewReader(rd)
	cr.Comma = ';'
	cr.FieldsPerRecord = len(header)
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.NewMappingLoadError("malformed table: %v", err)
	}
	if len(records) == 0 {
		return nil, errors.NewMappingLoadError("empty table")
	}
	for i, want := range header {
		if !strings.EqualFold(strings.TrimSpace(records[0][i]), want) {
			return nil, errors.NewMappingLoadError("unexpected header %v, want %v", records[0], header)
		}
	}
	rows := records[1:]
	for _, row := range rows {
		for i := range row {
			row[i] = strings.TrimSpace(row[i])
		}
	}
	return rows, nil
}
