package stac

import (
	"sort"
	"sync"

	"github.com/eokit/stacforge/classify"
	"github.com/eokit/stacforge/errors"
	"github.com/eokit/stacforge/extract"
)

// RenderFunc builds an item from an attribute collection. Templates read
// attributes, never files.
type RenderFunc func(attrs extract.Attributes) (*Item, error)

var (
	templateMu sync.RWMutex
	templates  = map[classify.TemplateID]RenderFunc{}
)

// RegisterTemplate binds a renderer to a template id. Later registrations
// replace earlier ones.
func RegisterTemplate(id classify.TemplateID, fn RenderFunc) {
	templateMu.Lock()
	defer templateMu.Unlock()
	templates[id] = fn
}

// Templates lists the registered template ids, sorted.
func Templates() []string {
	templateMu.RLock()
	defer templateMu.RUnlock()
	out := make([]string, 0, len(templates))
	for id := range templates {
		out = append(out, string(id))
	}
	sort.Strings(out)
	return out
}

// Render builds the document for a template id. An id with no registered
// renderer is a lookup failure.
func Render(id classify.TemplateID, attrs extract.Attributes) (map[string]any, error) {
	templateMu.RLock()
	fn, ok := templates[id]
	templateMu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(errors.ErrLookup, "no renderer for template %q", id)
	}
	item, err := fn(attrs)
	if err != nil {
		return nil, errors.Wrapf(err, "template %s", id)
	}
	return item.Build()
}

// RenderFlat emits the extracted attributes as-is, one key per attribute.
// Fallback for product families without an item template.
func RenderFlat(attrs extract.Attributes) map[string]any {
	doc := make(map[string]any, len(attrs))
	for name, v := range attrs {
		doc[name] = v.Data
	}
	return doc
}

// baseItem applies the attributes every template shares: identity,
// footprint, acquisition times and platform metadata.
func baseItem(attrs extract.Attributes) (*Item, error) {
	id := attrs.String("identifier")
	if id == "" {
		return nil, errors.NewRenderError("no identifier attribute")
	}
	it := NewItem(id, attrs.String("collection"))
	it.Geometry = attrs.String("coordinates")

	start := attrs.String("beginningDateTime")
	end := attrs.String("endingDateTime")
	if dt := attrs.String("datetime"); dt != "" {
		it.SetProperty("datetime", dt)
	} else if start != "" {
		it.SetProperty("datetime", start)
	}
	it.SetProperty("start_datetime", start)
	it.SetProperty("end_datetime", end)
	it.SetProperty("platform", lower(attrs.String("platformShortName"), attrs.String("platformSerialIdentifier")))
	it.SetProperty("constellation", lowerOnly(attrs.String("platformShortName")))
	it.SetProperty("instruments", instruments(attrs))
	it.SetProperty("created", attrs.String("publicationDate"))
	it.SetProperty("published", attrs.String("publicationDate"))

	if v, ok := attrs.Int("orbitNumber"); ok {
		it.SetProperty("sat:absolute_orbit", v)
		it.Extensions.Add(ExtSat)
	}
	if v, ok := attrs.Int("relativeOrbitNumber"); ok {
		it.SetProperty("sat:relative_orbit", v)
		it.Extensions.Add(ExtSat)
	}
	if d := attrs.String("orbitDirection"); d != "" {
		it.SetProperty("sat:orbit_state", d)
		it.Extensions.Add(ExtSat)
	}
	if v := attrs.String("processorVersion"); v != "" {
		it.SetProperty("processing:version", v)
		it.Extensions.Add(ExtProcessing)
	}
	it.Extensions.Add(ExtTimestamps)
	return it, nil
}
