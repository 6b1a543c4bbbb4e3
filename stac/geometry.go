package stac

import (
	"encoding/json"

	geom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkt"

	"github.com/eokit/stacforge/errors"
)

// Footprint is a product geometry ready for item assembly.
type Footprint struct {
	g geom.T
}

// ParseFootprint reads well-known text and normalizes the geometry:
// longitudes are wrapped into [-180, 180] and outer polygon rings are
// rewound counterclockwise as GeoJSON requires.
func ParseFootprint(wktStr string) (*Footprint, error) {
	g, err := wkt.Unmarshal(wktStr)
	if err != nil {
		return nil, errors.NewRenderError("invalid geometry %q: %v", wktStr, err)
	}
	return &Footprint{g: normalize(g)}, nil
}

// BBox returns [west, south, east, north].
func (f *Footprint) BBox() []float64 {
	b := f.g.Bounds()
	return []float64{b.Min(0), b.Min(1), b.Max(0), b.Max(1)}
}

// GeoJSON returns the geometry as a decoded GeoJSON object.
func (f *Footprint) GeoJSON() (map[string]any, error) {
	raw, err := geojson.Marshal(f.g)
	if err != nil {
		return nil, errors.NewRenderError("encoding geometry: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, errors.NewRenderError("encoding geometry: %v", err)
	}
	return out, nil
}

// WKT returns the normalized geometry as well-known text.
func (f *Footprint) WKT() (string, error) {
	s, err := wkt.Marshal(f.g)
	if err != nil {
		return "", errors.NewRenderError("encoding geometry: %v", err)
	}
	return s, nil
}

func normalize(g geom.T) geom.T {
	wrapLongitudes(g)
	switch t := g.(type) {
	case *geom.Polygon:
		return rewind(t)
	case *geom.MultiPolygon:
		out := geom.NewMultiPolygon(t.Layout())
		for i := 0; i < t.NumPolygons(); i++ {
			out.Push(rewind(t.Polygon(i)))
		}
		return out
	default:
		return g
	}
}

// wrapLongitudes shifts out-of-range longitudes back into [-180, 180].
func wrapLongitudes(g geom.T) {
	fc := g.FlatCoords()
	stride := g.Stride()
	for i := 0; i < len(fc); i += stride {
		for fc[i] > 180 {
			fc[i] -= 360
		}
		for fc[i] < -180 {
			fc[i] += 360
		}
	}
}

// rewind orients the outer ring counterclockwise and holes clockwise.
func rewind(p *geom.Polygon) *geom.Polygon {
	out := geom.NewPolygon(p.Layout())
	for i := 0; i < p.NumLinearRings(); i++ {
		ring := p.LinearRing(i).Coords()
		ccw := ringArea(ring) > 0
		if (i == 0 && !ccw) || (i > 0 && ccw) {
			reverseCoords(ring)
		}
		out.Push(geom.NewLinearRing(p.Layout()).MustSetCoords(ring))
	}
	return out
}

// ringArea is the signed shoelace area; positive means counterclockwise.
func ringArea(ring []geom.Coord) float64 {
	var sum float64
	for i := 0; i < len(ring)-1; i++ {
		sum += ring[i][0]*ring[i+1][1] - ring[i+1][0]*ring[i][1]
	}
	return sum / 2
}

func reverseCoords(cs []geom.Coord) {
	for i, j := 0, len(cs)-1; i < j; i, j = i+1, j-1 {
		cs[i], cs[j] = cs[j], cs[i]
	}
}
