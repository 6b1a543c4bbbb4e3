package xpr

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/eokit/stacforge/errors"
)

// Func is one extension function from the closed table. Functions are pure:
// they never touch the document beyond the node values handed to them.
type Func struct {
	Name    string
	MinArgs int
	MaxArgs int
	Eval    func(args []Value) (Value, error)
}

var funcTable = map[string]*Func{}

func register(f *Func) {
	funcTable[f.Name] = f
}

func init() {
	register(&Func{Name: "uppercase", MinArgs: 1, MaxArgs: 1, Eval: evalUppercase})
	register(&Func{Name: "lowercase", MinArgs: 1, MaxArgs: 1, Eval: evalLowercase})
	register(&Func{Name: "quote", MinArgs: 1, MaxArgs: 1, Eval: evalQuote})
	register(&Func{Name: "join", MinArgs: 1, MaxArgs: 2, Eval: evalJoin})
	register(&Func{Name: "regex-match", MinArgs: 2, MaxArgs: 3, Eval: evalRegexMatch})
	register(&Func{Name: "map", MinArgs: 2, MaxArgs: 2, Eval: evalMap})
	register(&Func{Name: "from_json", MinArgs: 1, MaxArgs: 1, Eval: evalFromJSON})
	register(&Func{Name: "date_format", MinArgs: 1, MaxArgs: 3, Eval: evalDateFormat})
	register(&Func{Name: "date_diff", MinArgs: 2, MaxArgs: 3, Eval: evalDateDiff})
	register(&Func{Name: "WKT", MinArgs: 1, MaxArgs: 2, Eval: evalWKT})
	register(&Func{Name: "geo_pnt2wkt", MinArgs: 1, MaxArgs: 1, Eval: evalPnt2WKT})
}

// IsFunc reports whether name is a registered extension function.
func IsFunc(name string) bool {
	_, ok := funcTable[name]
	return ok
}

func evalUppercase(args []Value) (Value, error) {
	out := make([]string, 0, len(args[0].Texts))
	for _, s := range args[0].Texts {
		out = append(out, strings.ToUpper(s))
	}
	return Value{Texts: out}, nil
}

func evalLowercase(args []Value) (Value, error) {
	out := make([]string, 0, len(args[0].Texts))
	for _, s := range args[0].Texts {
		out = append(out, strings.ToLower(s))
	}
	return Value{Texts: out}, nil
}

// quote collapses its input to a single-element sequence so downstream
// rendering treats the attribute as a list of one.
func evalQuote(args []Value) (Value, error) {
	if args[0].IsEmpty() {
		return Value{}, nil
	}
	return Value{Texts: []string{args[0].First()}, Raw: []any{args[0].First()}}, nil
}

func evalJoin(args []Value) (Value, error) {
	sep := ", "
	if len(args) == 2 {
		sep = args[1].First()
	}
	parts := make([]string, 0, len(args[0].Texts))
	for _, s := range args[0].Texts {
		if s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return Value{}, nil
	}
	return Lit(strings.Join(parts, sep)), nil
}

func evalRegexMatch(args []Value) (Value, error) {
	in := args[0].First()
	if in == "" {
		return Value{}, errors.New("no input value to match")
	}
	re, err := regexp.Compile(args[1].First())
	if err != nil {
		return Value{}, errors.Wrap(err, "invalid pattern")
	}
	group := 1
	if len(args) == 3 {
		group, err = strconv.Atoi(args[2].First())
		if err != nil {
			return Value{}, errors.Wrapf(err, "invalid group index %q", args[2].First())
		}
	}
	m := re.FindStringSubmatch(in)
	if m == nil || group >= len(m) {
		return Value{}, errors.Newf("pattern %q did not match %q", args[1].First(), in)
	}
	return Lit(m[group]), nil
}

// map translates a value through an inline JSON object. A "default" key
// catches unlisted inputs; with no match and no default the lookup fails.
func evalMap(args []Value) (Value, error) {
	var table map[string]any
	if err := json.Unmarshal([]byte(args[1].First()), &table); err != nil {
		return Value{}, errors.Wrap(err, "invalid lookup table")
	}
	key := args[0].First()
	v, ok := table[key]
	if !ok {
		v, ok = table["default"]
	}
	if !ok {
		return Value{}, errors.Newf("no entry for %q and no default", key)
	}
	return rawValue(v), nil
}

func evalFromJSON(args []Value) (Value, error) {
	var v any
	if err := json.Unmarshal([]byte(args[0].First()), &v); err != nil {
		return Value{}, errors.Wrap(err, "invalid JSON value")
	}
	return rawValue(v), nil
}

func rawValue(v any) Value {
	switch t := v.(type) {
	case string:
		return Value{Texts: []string{t}, Raw: t}
	case nil:
		return Value{}
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return Value{Raw: t}
		}
		return Value{Texts: []string{string(b)}, Raw: t}
	}
}
