package extract

import (
	"context"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"path"
	"regexp"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/eokit/stacforge/classify"
	"github.com/eokit/stacforge/container"
	"github.com/eokit/stacforge/errors"
	"github.com/eokit/stacforge/logger"
	"github.com/eokit/stacforge/registry"
	"github.com/eokit/stacforge/scene"
	"github.com/eokit/stacforge/xpr"
)

// Options controls extraction behavior for one scene.
type Options struct {
	// Strict turns any rule failure, including a missing metafile, into
	// a failure of the whole scene.
	Strict bool
}

// Result is the outcome of extracting one scene.
type Result struct {
	Attributes   Attributes
	RuleFailures int
}

var quicklookRe = regexp.MustCompile(`(?i)(?:-ql|^quicklook|^thumbnail)\.(?:jpe?g|png)$`)

// Run evaluates a rule table against a product. Rules bound to distinct
// metadata files run concurrently; rules on the same file share one parse.
// In non-strict mode failing rules are logged and counted, and their
// attributes stay absent.
func Run(ctx context.Context, acc container.Accessor, sc scene.Scene,
	pt classify.ProductType, rules []registry.Rule, opts Options) (*Result, error) {

	res := &Result{Attributes: Attributes{}}
	var mu sync.Mutex

	set := func(name string, t registry.DataType, data any) {
		if data == nil {
			return
		}
		mu.Lock()
		res.Attributes[name] = Value{Type: t, Data: data}
		mu.Unlock()
	}
	fail := func(rule registry.Rule, err error) error {
		if opts.Strict {
			return errors.Wrapf(err, "rule %q", rule.Attribute)
		}
		mu.Lock()
		res.RuleFailures++
		mu.Unlock()
		logger.Warnw("rule failed", "scene", sc.Name(), "attribute", rule.Attribute, "error", err)
		return nil
	}

	addSceneAttributes(res.Attributes, sc, pt)
	if err := addQuicklook(ctx, res.Attributes, acc); err != nil {
		return nil, err
	}

	// static and context rules need no file access
	groups := make(map[string][]registry.Rule)
	var order []string
	for _, rule := range rules {
		if rule.Static {
			set(rule.Attribute, rule.Type, rule.Constant)
			continue
		}
		if len(rule.Raw) == 1 && registry.IsPseudo(rule.Raw[0]) {
			v, err := evalPseudo(rule.Raw[0], sc, pt)
			if err == nil {
				var data any
				data, err = coerce(v, rule.Type, rule.Multi)
				if err == nil {
					set(rule.Attribute, rule.Type, data)
					continue
				}
			}
			if ferr := fail(rule, err); ferr != nil {
				return nil, errors.NewExtractionError("%s: %v", sc.Name(), ferr)
			}
			continue
		}
		key := strings.Join(rule.Metafiles, "|")
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], rule)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, key := range order {
		group := groups[key]
		g.Go(func() error {
			return runGroup(gctx, acc, sc, pt, group, set, fail)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.NewExtractionError("%s: %v", sc.Name(), err)
	}
	return res, nil
}

// runGroup evaluates all rules bound to one metafile pattern list.
func runGroup(ctx context.Context, acc container.Accessor, sc scene.Scene,
	pt classify.ProductType, group []registry.Rule,
	set func(string, registry.DataType, any), fail func(registry.Rule, error) error) error {

	name, err := resolveMetafile(ctx, acc, group[0].Metafiles)
	if err != nil {
		for _, rule := range group {
			if ferr := fail(rule, err); ferr != nil {
				return ferr
			}
		}
		return nil
	}

	rd, err := acc.Open(ctx, name)
	if err != nil {
		return err
	}
	content, err := io.ReadAll(rd)
	rd.Close()
	if err != nil {
		return errors.Wrapf(errors.ErrContainerAccess, "reading %s: %v", name, err)
	}

	var doc xpr.Doc
	for _, rule := range group {
		if rule.Intrinsic != "" {
			set(rule.Attribute, rule.Type, intrinsicValue(rule.Intrinsic, content))
			continue
		}
		if doc == nil {
			doc, err = parseDoc(name, content)
			if err != nil {
				for _, r := range group {
					if r.Intrinsic == "" {
						if ferr := fail(r, err); ferr != nil {
							return ferr
						}
					}
				}
				return nil
			}
		}
		v, err := evalRule(doc, rule, sc, pt)
		if err == nil {
			var data any
			data, err = coerce(v, rule.Type, rule.Multi)
			if err == nil {
				set(rule.Attribute, rule.Type, data)
				continue
			}
		}
		if ferr := fail(rule, err); ferr != nil {
			return ferr
		}
	}
	return nil
}

// evalRule evaluates every expression of a rule and merges the results.
func evalRule(doc xpr.Doc, rule registry.Rule, sc scene.Scene, pt classify.ProductType) (xpr.Value, error) {
	var merged xpr.Value
	for i, e := range rule.Exprs {
		var v xpr.Value
		var err error
		if e == nil {
			v, err = evalPseudo(rule.Raw[i], sc, pt)
		} else {
			v, err = e.Eval(doc)
		}
		if err != nil {
			return xpr.Value{}, err
		}
		merged.Texts = append(merged.Texts, v.Texts...)
		merged.Nodes = append(merged.Nodes, v.Nodes...)
		if merged.Raw == nil {
			merged.Raw = v.Raw
		}
	}
	return merged, nil
}

func evalPseudo(raw string, sc scene.Scene, pt classify.ProductType) (xpr.Value, error) {
	switch raw {
	case "filename":
		return xpr.Lit(sc.Name()), nil
	case "utcnow", "now":
		return xpr.Lit(nowUTC().Format(time.RFC3339Nano)), nil
	case "productType":
		return xpr.Lit(string(pt)), nil
	}
	return xpr.Value{}, errors.NewExtractionError("unknown context expression %q", raw)
}

// resolveMetafile tries each candidate pattern in order and returns the
// first that matches a file.
func resolveMetafile(ctx context.Context, acc container.Accessor, patterns []string) (string, error) {
	var lastErr error
	for _, p := range patterns {
		name, err := container.Resolve(ctx, acc, p)
		if err == nil {
			return name, nil
		}
		if !errors.IsNotFoundError(err) {
			return "", err
		}
		lastErr = err
	}
	return "", lastErr
}

func intrinsicValue(kind string, content []byte) any {
	switch kind {
	case "size":
		return int64(len(content))
	case "checksum:MD5":
		sum := md5.Sum(content)
		return hex.EncodeToString(sum[:])
	case "checksum:SHA256":
		sum := sha256.Sum256(content)
		return hex.EncodeToString(sum[:])
	}
	return nil
}

// addSceneAttributes fills the attributes every product carries regardless
// of its rule table.
func addSceneAttributes(attrs Attributes, sc scene.Scene, pt classify.ProductType) {
	attrs["filepath"] = Value{Type: registry.TypeString, Data: sc.String()}
	attrs["filename"] = Value{Type: registry.TypeString, Data: sc.Name()}
	attrs["identifier"] = Value{Type: registry.TypeString, Data: sc.Identifier()}
	attrs["sceneProductType"] = Value{Type: registry.TypeString, Data: string(pt)}
	attrs["publicationDate"] = Value{Type: registry.TypeDateTime, Data: nowUTC().Format(dateTimeLayout)}
}

// addQuicklook records the first browse image found in the container.
func addQuicklook(ctx context.Context, attrs Attributes, acc container.Accessor) error {
	files, err := acc.Files(ctx)
	if err != nil {
		return err
	}
	for _, f := range files {
		if quicklookRe.MatchString(path.Base(f.Name)) {
			attrs["quicklook"] = Value{Type: registry.TypeString, Data: f.Name}
			return nil
		}
	}
	return nil
}
