package xpr

import (
	"strconv"
	"strings"

	geom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkt"

	"github.com/eokit/stacforge/errors"
)

// WKT builds well-known text from raw coordinate sequences. Each input value
// is one ring of whitespace-separated coordinates; the geometry kind follows
// from ring length: one point gives a point, two a line string, more a
// polygon with the ring closed if the source left it open. Several rings
// promote to the multi variant.
func evalWKT(args []Value) (Value, error) {
	order := "latlon"
	if len(args) == 2 && args[1].First() != "" {
		order = args[1].First()
	}
	if order != "latlon" && order != "lonlat" {
		return Value{}, errors.Newf("unsupported axis order %q", order)
	}

	var rings [][]float64
	for _, text := range args[0].Texts {
		ring, err := parseRing(text, order)
		if err != nil {
			return Value{}, err
		}
		if len(ring) > 0 {
			rings = append(rings, ring)
		}
	}
	if len(rings) == 0 {
		return Value{}, errors.New("no coordinates")
	}

	g, err := buildGeometry(rings)
	if err != nil {
		return Value{}, err
	}
	s, err := wkt.Marshal(g)
	if err != nil {
		return Value{}, errors.Wrap(err, "encoding geometry")
	}
	return Lit(s), nil
}

// parseRing parses "lat lon lat lon ..." (or comma-separated pairs) into
// flat lon-lat coordinates.
func parseRing(text, order string) ([]float64, error) {
	text = strings.ReplaceAll(text, ",", " ")
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil, nil
	}
	if len(fields)%2 != 0 {
		return nil, errors.Newf("odd coordinate count %d", len(fields))
	}
	flat := make([]float64, 0, len(fields))
	for i := 0; i < len(fields); i += 2 {
		a, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "coordinate %q", fields[i])
		}
		b, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "coordinate %q", fields[i+1])
		}
		if order == "latlon" {
			a, b = b, a
		}
		flat = append(flat, a, b)
	}
	return flat, nil
}

func buildGeometry(rings [][]float64) (geom.T, error) {
	single := len(rings) == 1
	points := len(rings[0]) / 2
	switch {
	case points == 1 && single:
		return geom.NewPointFlat(geom.XY, rings[0]), nil
	case points == 1:
		flat := make([]float64, 0, len(rings)*2)
		for _, r := range rings {
			flat = append(flat, r...)
		}
		return geom.NewMultiPointFlat(geom.XY, flat), nil
	case points == 2 && single:
		return geom.NewLineStringFlat(geom.XY, rings[0]), nil
	case points == 2:
		var flat []float64
		var ends []int
		for _, r := range rings {
			flat = append(flat, r...)
			ends = append(ends, len(flat))
		}
		return geom.NewMultiLineStringFlat(geom.XY, flat, ends), nil
	case single:
		r := closeRing(rings[0])
		return geom.NewPolygonFlat(geom.XY, r, []int{len(r)}), nil
	default:
		var flat []float64
		var endss [][]int
		for _, r := range rings {
			r = closeRing(r)
			flat = append(flat, r...)
			endss = append(endss, []int{len(flat)})
		}
		return geom.NewMultiPolygonFlat(geom.XY, flat, endss), nil
	}
}

func closeRing(flat []float64) []float64 {
	n := len(flat)
	if n >= 6 && (flat[0] != flat[n-2] || flat[1] != flat[n-1]) {
		flat = append(flat, flat[0], flat[1])
	}
	return flat
}

// geo_pnt2wkt turns a node set of positions, each carrying LATITUDE and
// LONGITUDE children, into a multipoint.
func evalPnt2WKT(args []Value) (Value, error) {
	if len(args[0].Nodes) == 0 {
		return Value{}, errors.New("no position nodes")
	}
	var flat []float64
	for _, n := range args[0].Nodes {
		lat, err := childFloat(n, "LATITUDE")
		if err != nil {
			return Value{}, err
		}
		lon, err := childFloat(n, "LONGITUDE")
		if err != nil {
			return Value{}, err
		}
		flat = append(flat, lon, lat)
	}
	s, err := wkt.Marshal(geom.NewMultiPointFlat(geom.XY, flat))
	if err != nil {
		return Value{}, errors.Wrap(err, "encoding geometry")
	}
	return Lit(s), nil
}

func childFloat(n Node, name string) (float64, error) {
	kids, err := n.Select("*[local-name()='" + name + "']")
	if err != nil {
		return 0, err
	}
	if len(kids) == 0 {
		return 0, errors.Newf("position node has no %s child", name)
	}
	return strconv.ParseFloat(strings.TrimSpace(kids[0].Text()), 64)
}
