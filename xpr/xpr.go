// Package xpr compiles and evaluates mapping path expressions: XPath
// queries optionally wrapped in calls to a closed set of extension
// functions. Expressions compile once at rule-load time, so an unknown
// function name or malformed query is a load-time error, never a runtime
// surprise.
package xpr

import (
	"strconv"
	"strings"

	"github.com/antchfx/xpath"

	"github.com/eokit/stacforge/errors"
)

// Node is one result of a node-set query. Relative selection supports
// extension functions that descend into matched nodes.
type Node interface {
	Text() string
	Select(path string) ([]Node, error)
}

// Doc is a parsed metadata file that compiled expressions run against.
type Doc interface {
	Select(compiled *xpath.Expr) (Value, error)
}

// Value is the result of evaluating an expression or argument. Texts is
// always populated for non-empty results; Nodes is set for node-set
// results; Raw carries structured data produced by from_json and map.
type Value struct {
	Texts []string
	Nodes []Node
	Raw   any
}

// Lit builds a literal single-element value.
func Lit(s string) Value {
	return Value{Texts: []string{s}}
}

// First returns the first textual result, or "" when empty.
func (v Value) First() string {
	if len(v.Texts) == 0 {
		return ""
	}
	return v.Texts[0]
}

// IsEmpty reports whether the value holds no results.
func (v Value) IsEmpty() bool {
	return len(v.Texts) == 0 && v.Raw == nil
}

// Expr is a compiled path expression: either a bare XPath query or an
// extension-function call whose arguments are literals or nested
// expressions.
type Expr struct {
	raw  string
	xp   *xpath.Expr
	call *call
}

type call struct {
	fn   *Func
	args []arg
}

type arg struct {
	expr    *Expr
	literal string
	isLit   bool
}

// Raw returns the source text of the expression.
func (e *Expr) Raw() string { return e.raw }

// Compile parses and validates a path expression. Extension function names
// are resolved against the static function table; arities are checked here
// so rule tables fail fast at load time.
func Compile(raw string) (*Expr, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.NewMappingLoadError("empty path expression")
	}

	if name, inner, ok := splitCall(raw); ok {
		if fn, known := funcTable[name]; known {
			parts, err := splitArgs(inner)
			if err != nil {
				return nil, errors.Wrapf(err, "in expression %q", raw)
			}
			if len(parts) < fn.MinArgs || len(parts) > fn.MaxArgs {
				return nil, errors.NewMappingLoadError(
					"%s expects between %d and %d arguments, got %d in %q",
					name, fn.MinArgs, fn.MaxArgs, len(parts), raw)
			}
			c := &call{fn: fn}
			for _, p := range parts {
				a, err := compileArg(p)
				if err != nil {
					return nil, errors.Wrapf(err, "in expression %q", raw)
				}
				c.args = append(c.args, a)
			}
			return &Expr{raw: raw, call: c}, nil
		}
	}

	xp, err := xpath.Compile(raw)
	if err != nil {
		return nil, errors.NewMappingLoadError("invalid path expression %q: %v", raw, err)
	}
	return &Expr{raw: raw, xp: xp}, nil
}

func compileArg(s string) (arg, error) {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return arg{literal: s[1 : len(s)-1], isLit: true}, nil
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return arg{literal: s, isLit: true}, nil
	}
	sub, err := Compile(s)
	if err != nil {
		return arg{}, err
	}
	return arg{expr: sub}, nil
}

// Eval evaluates the expression against a parsed document. Extension
// functions are pure and evaluated eagerly.
func (e *Expr) Eval(doc Doc) (Value, error) {
	if e.call == nil {
		return doc.Select(e.xp)
	}
	values := make([]Value, 0, len(e.call.args))
	for _, a := range e.call.args {
		if a.isLit {
			values = append(values, Lit(a.literal))
			continue
		}
		v, err := a.expr.Eval(doc)
		if err != nil {
			return Value{}, err
		}
		values = append(values, v)
	}
	out, err := e.call.fn.Eval(values)
	if err != nil {
		return Value{}, errors.Wrapf(err, "%s(...)", e.call.fn.Name)
	}
	return out, nil
}

// splitCall matches `ident(inner)` with balanced parentheses, returning the
// candidate function name and argument text.
func splitCall(raw string) (name, inner string, ok bool) {
	open := strings.IndexByte(raw, '(')
	if open <= 0 || raw[len(raw)-1] != ')' {
		return "", "", false
	}
	name = raw[:open]
	for _, r := range name {
		if !isIdentRune(r) {
			return "", "", false
		}
	}
	inner = raw[open+1 : len(raw)-1]
	// the closing paren must balance the opening one
	depth := 0
	for i := open; i < len(raw); i++ {
		switch raw[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 && i != len(raw)-1 {
				return "", "", false
			}
		}
	}
	return name, inner, depth == 0
}

func isIdentRune(r rune) bool {
	return r == '_' || r == '-' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// splitArgs splits the argument text on top-level commas, respecting quotes
// and nested parentheses.
func splitArgs(inner string) ([]string, error) {
	if strings.TrimSpace(inner) == "" {
		return nil, nil
	}
	var (
		parts []string
		depth int
		quote byte
		start int
	)
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
			parts = append(parts, inner[start:i])
			start = i + 1
		}
	}
	if quote != 0 {
		return nil, errors.NewMappingLoadError("unterminated string literal in arguments %q", inner)
	}
	if depth != 0 {
		return nil, errors.NewMappingLoadError("unbalanced parentheses in arguments %q", inner)
	}
	parts = append(parts, inner[start:])
	return parts, nil
}
