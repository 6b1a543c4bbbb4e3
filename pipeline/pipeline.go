// Package pipeline runs scenes end to end: classify, resolve rules, open
// the container, extract attributes and render the STAC item, fanned out
// over the planned worker fleet.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/eokit/stacforge/batch"
	"github.com/eokit/stacforge/classify"
	"github.com/eokit/stacforge/container"
	"github.com/eokit/stacforge/errors"
	"github.com/eokit/stacforge/extract"
	"github.com/eokit/stacforge/logger"
	"github.com/eokit/stacforge/registry"
	"github.com/eokit/stacforge/scene"
	"github.com/eokit/stacforge/stac"
)

// Options configures one processing run.
type Options struct {
	MaxWorkers           int
	ConcurrencyPerWorker int
	TaskTimeout          time.Duration
	Strict               bool

	// Template forces a renderer instead of detecting one per scene.
	// When unset, scenes whose family has no registered template fall
	// back to a flat attribute document.
	Template classify.TemplateID
}

// Outcome is the result of one scene, success or failure.
type Outcome struct {
	Scene        scene.Scene
	Document     map[string]any
	RuleFailures int
	Err          error
	Duration     time.Duration
}

// Processor holds the shared state of a run: the rule registry and the
// optional object-store backend.
type Processor struct {
	registry *registry.Registry
	remote   *container.S3
	log      *zap.SugaredLogger
}

// New builds a processor. remote may be nil when every scene is local.
func New(reg *registry.Registry, remote *container.S3) *Processor {
	return &Processor{registry: reg, remote: remote, log: logger.Named("pipeline")}
}

// ProcessScene runs one scene and returns its rendered document plus the
// count of non-fatal rule failures.
func (p *Processor) ProcessScene(ctx context.Context, sc scene.Scene, opts Options) (map[string]any, int, error) {
	if err := ctx.Err(); err != nil {
		if err == context.DeadlineExceeded {
			return nil, 0, errors.Wrapf(errors.ErrTimeout, "%s", sc.Name())
		}
		return nil, 0, err
	}
	pt, err := classify.Classify(sc)
	if err != nil {
		return nil, 0, err
	}
	binding, err := p.registry.Resolve(pt)
	if err != nil {
		return nil, 0, err
	}
	rules, err := p.registry.Rules(binding.RuleName)
	if err != nil {
		return nil, 0, err
	}

	tid := opts.Template
	forced := tid != ""
	if !forced {
		tid, err = classify.DetectTemplate(sc)
		if err != nil {
			tid = ""
		}
	}

	acc, err := container.ForScene(ctx, sc, p.remote)
	if err != nil {
		return nil, 0, err
	}
	defer acc.Close()

	res, err := extract.Run(ctx, acc, sc, pt, rules, extract.Options{Strict: opts.Strict})
	if err != nil {
		return nil, 0, err
	}
	attrs := res.Attributes
	attrs["collection"] = extract.Value{
		Type: registry.TypeString,
		Data: classify.CollectionName(sc, pt),
	}
	if !attrs.Has("productType") {
		attrs["productType"] = extract.Value{Type: registry.TypeString, Data: binding.Label}
	}

	if tid == "" {
		return stac.RenderFlat(attrs), res.RuleFailures, nil
	}
	doc, err := stac.Render(tid, attrs)
	if err != nil {
		if !forced && errors.Is(err, errors.ErrLookup) {
			return stac.RenderFlat(attrs), res.RuleFailures, nil
		}
		return nil, res.RuleFailures, err
	}
	return doc, res.RuleFailures, nil
}

// Process fans the scenes out over the worker fleet and streams one
// outcome per scene, in completion order. The channel closes when every
// scene is accounted for. In strict mode the first failed scene cancels
// the rest of the batch; scenes never dispatched produce no outcome.
func (p *Processor) Process(ctx context.Context, scenes []scene.Scene, opts Options) <-chan Outcome {
	out := make(chan Outcome, len(scenes))
	plan := batch.PlanFor(len(scenes), opts.MaxWorkers, opts.ConcurrencyPerWorker)
	pool := batch.NewPool(plan, opts.TaskTimeout)

	go func() {
		defer close(out)
		runCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		pool.Run(runCtx, len(scenes), func(taskCtx context.Context, i int) {
			sc := scenes[i]
			started := time.Now()
			doc, ruleFailures, err := p.ProcessScene(taskCtx, sc, opts)
			if err != nil && taskCtx.Err() == context.DeadlineExceeded {
				err = errors.Wrapf(errors.ErrTimeout, "%s: %v", sc.Name(), err)
			}
			o := Outcome{
				Scene:        sc,
				Document:     doc,
				RuleFailures: ruleFailures,
				Err:          err,
				Duration:     time.Since(started),
			}
			if err != nil {
				p.log.Errorw("scene failed", "scene", sc.Name(),
					"class", errors.Class(err), "error", err)
				if opts.Strict {
					cancel()
				}
			} else {
				p.log.Infow("scene processed", "scene", sc.Name(),
					"rule_failures", ruleFailures, "duration", o.Duration)
			}
			out <- o
		})
	}()
	return out
}
