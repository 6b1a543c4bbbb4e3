// Package extract evaluates mapping rules against the metadata files of a
// classified product and produces the typed attribute collection the
// renderer consumes.
package extract

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/antchfx/jsonquery"
	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/eokit/stacforge/errors"
	"github.com/eokit/stacforge/xpr"
)

// parseDoc builds an expression-evaluable document from metafile content.
// JSON files are detected by extension; everything else is parsed as XML.
func parseDoc(name string, content []byte) (xpr.Doc, error) {
	if strings.HasSuffix(strings.ToLower(name), ".json") {
		root, err := jsonquery.Parse(bytes.NewReader(content))
		if err != nil {
			return nil, errors.NewExtractionError("parsing %s: %v", name, err)
		}
		return &jsonDoc{root: root}, nil
	}
	root, err := xmlquery.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, errors.NewExtractionError("parsing %s: %v", name, err)
	}
	return &xmlDoc{root: root}, nil
}

type xmlDoc struct {
	root *xmlquery.Node
}

func (d *xmlDoc) Select(e *xpath.Expr) (xpr.Value, error) {
	switch v := e.Evaluate(xmlquery.CreateXPathNavigator(d.root)).(type) {
	case *xpath.NodeIterator:
		var out xpr.Value
		for _, n := range xmlquery.QuerySelectorAll(d.root, e) {
			out.Texts = append(out.Texts, n.InnerText())
			out.Nodes = append(out.Nodes, xmlNode{n})
		}
		return out, nil
	default:
		return scalarValue(v), nil
	}
}

type xmlNode struct {
	n *xmlquery.Node
}

func (x xmlNode) Text() string { return x.n.InnerText() }

func (x xmlNode) Select(path string) ([]xpr.Node, error) {
	nodes, err := xmlquery.QueryAll(x.n, path)
	if err != nil {
		return nil, errors.NewExtractionError("relative query %q: %v", path, err)
	}
	out := make([]xpr.Node, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, xmlNode{n})
	}
	return out, nil
}

type jsonDoc struct {
	root *jsonquery.Node
}

func (d *jsonDoc) Select(e *xpath.Expr) (xpr.Value, error) {
	switch v := e.Evaluate(jsonquery.CreateXPathNavigator(d.root)).(type) {
	case *xpath.NodeIterator:
		var out xpr.Value
		for _, n := range jsonquery.QuerySelectorAll(d.root, e) {
			out.Texts = append(out.Texts, n.InnerText())
			out.Nodes = append(out.Nodes, jsonNode{n})
		}
		return out, nil
	default:
		return scalarValue(v), nil
	}
}

type jsonNode struct {
	n *jsonquery.Node
}

func (j jsonNode) Text() string { return j.n.InnerText() }

func (j jsonNode) Select(path string) ([]xpr.Node, error) {
	nodes, err := jsonquery.QueryAll(j.n, path)
	if err != nil {
		return nil, errors.NewExtractionError("relative query %q: %v", path, err)
	}
	out := make([]xpr.Node, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, jsonNode{n})
	}
	return out, nil
}

// scalarValue converts a non-node XPath result to a value.
func scalarValue(v any) xpr.Value {
	switch t := v.(type) {
	case string:
		if t == "" {
			return xpr.Value{}
		}
		return xpr.Lit(t)
	case float64:
		return xpr.Lit(strconv.FormatFloat(t, 'f', -1, 64))
	case bool:
		return xpr.Lit(strconv.FormatBool(t))
	default:
		return xpr.Value{}
	}
}
