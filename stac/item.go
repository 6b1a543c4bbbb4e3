package stac

import (
	"github.com/eokit/stacforge/errors"
)

// Item accumulates everything a template decides about a product; Build
// turns it into the final document.
type Item struct {
	ID         string
	Collection string
	// Geometry is the product footprint as well-known text.
	Geometry   string
	Properties map[string]any
	Assets     map[string]Asset
	Links      []Link
	Extensions ExtensionSet
}

// NewItem returns an item with empty collections ready for a template to
// fill.
func NewItem(id, collection string) *Item {
	return &Item{
		ID:         id,
		Collection: collection,
		Properties: map[string]any{},
		Assets:     map[string]Asset{},
		Extensions: ExtensionSet{},
	}
}

// SetProperty stores a property unless the value is nil or empty.
func (it *Item) SetProperty(name string, v any) {
	switch t := v.(type) {
	case nil:
		return
	case string:
		if t == "" {
			return
		}
	}
	it.Properties[name] = v
}

// Build assembles the document. The id, a datetime property and a
// parseable geometry are mandatory.
func (it *Item) Build() (map[string]any, error) {
	if it.ID == "" {
		return nil, errors.NewRenderError("item has no id")
	}
	if _, ok := it.Properties["datetime"]; !ok {
		if _, ok := it.Properties["start_datetime"]; !ok {
			return nil, errors.NewRenderError("item %s has no datetime", it.ID)
		}
		it.Properties["datetime"] = nil
	}
	if it.Geometry == "" {
		return nil, errors.NewRenderError("item %s has no geometry", it.ID)
	}
	fp, err := ParseFootprint(it.Geometry)
	if err != nil {
		return nil, errors.Wrapf(err, "item %s", it.ID)
	}
	gj, err := fp.GeoJSON()
	if err != nil {
		return nil, errors.Wrapf(err, "item %s", it.ID)
	}

	assets := make(map[string]any, len(it.Assets))
	for key, a := range it.Assets {
		assets[key] = a.Render(it.Extensions)
	}
	links := make([]map[string]any, 0, len(it.Links))
	for _, l := range it.Links {
		links = append(links, l.render())
	}

	doc := map[string]any{
		"type":            "Feature",
		"stac_version":    stacVersion,
		"id":              it.ID,
		"properties":      it.Properties,
		"geometry":        gj,
		"bbox":            fp.BBox(),
		"links":           links,
		"assets":          assets,
		"stac_extensions": it.Extensions.Sorted(),
	}
	if it.Collection != "" {
		doc["collection"] = it.Collection
	}
	return doc, nil
}
