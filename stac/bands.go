package stac

// EOBand describes one spectral band per the eo extension. Wavelengths are
// micrometers.
type EOBand struct {
	Name             string
	CommonName       string
	CenterWavelength float64
	FullWidthHalfMax float64
	GSD              float64
}

func renderBands(bands []EOBand) []map[string]any {
	out := make([]map[string]any, 0, len(bands))
	for _, b := range bands {
		m := map[string]any{"name": b.Name}
		if b.CommonName != "" {
			m["common_name"] = b.CommonName
		}
		if b.CenterWavelength > 0 {
			m["center_wavelength"] = b.CenterWavelength
		}
		if b.FullWidthHalfMax > 0 {
			m["full_width_half_max"] = b.FullWidthHalfMax
		}
		if b.GSD > 0 {
			m["gsd"] = b.GSD
		}
		out = append(out, m)
	}
	return out
}

// SentinelMSIBands is the band table of the Sentinel-2 MSI instrument.
var SentinelMSIBands = []EOBand{
	{Name: "B01", CommonName: "coastal", CenterWavelength: 0.443, FullWidthHalfMax: 0.027, GSD: 60},
	{Name: "B02", CommonName: "blue", CenterWavelength: 0.490, FullWidthHalfMax: 0.098, GSD: 10},
	{Name: "B03", CommonName: "green", CenterWavelength: 0.560, FullWidthHalfMax: 0.045, GSD: 10},
	{Name: "B04", CommonName: "red", CenterWavelength: 0.665, FullWidthHalfMax: 0.038, GSD: 10},
	{Name: "B05", CommonName: "rededge", CenterWavelength: 0.704, FullWidthHalfMax: 0.019, GSD: 20},
	{Name: "B06", CommonName: "rededge", CenterWavelength: 0.740, FullWidthHalfMax: 0.018, GSD: 20},
	{Name: "B07", CommonName: "rededge", CenterWavelength: 0.783, FullWidthHalfMax: 0.028, GSD: 20},
	{Name: "B08", CommonName: "nir", CenterWavelength: 0.842, FullWidthHalfMax: 0.145, GSD: 10},
	{Name: "B8A", CommonName: "nir08", CenterWavelength: 0.865, FullWidthHalfMax: 0.033, GSD: 20},
	{Name: "B09", CommonName: "nir09", CenterWavelength: 0.945, FullWidthHalfMax: 0.026, GSD: 60},
	{Name: "B10", CommonName: "cirrus", CenterWavelength: 1.374, FullWidthHalfMax: 0.075, GSD: 60},
	{Name: "B11", CommonName: "swir16", CenterWavelength: 1.610, FullWidthHalfMax: 0.143, GSD: 20},
	{Name: "B12", CommonName: "swir22", CenterWavelength: 2.190, FullWidthHalfMax: 0.242, GSD: 20},
}

// LandsatOLIBands is the band table of the Landsat 8/9 OLI instrument.
var LandsatOLIBands = []EOBand{
	{Name: "B1", CommonName: "coastal", CenterWavelength: 0.443, GSD: 30},
	{Name: "B2", CommonName: "blue", CenterWavelength: 0.482, GSD: 30},
	{Name: "B3", CommonName: "green", CenterWavelength: 0.562, GSD: 30},
	{Name: "B4", CommonName: "red", CenterWavelength: 0.655, GSD: 30},
	{Name: "B5", CommonName: "nir08", CenterWavelength: 0.865, GSD: 30},
	{Name: "B6", CommonName: "swir16", CenterWavelength: 1.609, GSD: 30},
	{Name: "B7", CommonName: "swir22", CenterWavelength: 2.201, GSD: 30},
	{Name: "B8", CommonName: "pan", CenterWavelength: 0.590, GSD: 15},
	{Name: "B9", CommonName: "cirrus", CenterWavelength: 1.373, GSD: 30},
}

// SelectBands filters a band table by band name, keeping table order.
func SelectBands(table []EOBand, names ...string) []EOBand {
	if len(names) == 0 {
		return table
	}
	want := make(map[string]struct{}, len(names))
	for _, n := range names {
		want[n] = struct{}{}
	}
	var out []EOBand
	for _, b := range table {
		if _, ok := want[b.Name]; ok {
			out = append(out, b)
		}
	}
	return out
}
