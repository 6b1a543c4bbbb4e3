package stac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eokit/stacforge/extract"
	"github.com/eokit/stacforge/registry"
)

func TestFootprintNormalization(t *testing.T) {
	// clockwise input ring
	fp, err := ParseFootprint("POLYGON ((0 0, 0 2, 2 2, 2 0, 0 0))")
	require.NoError(t, err)

	out, err := fp.WKT()
	require.NoError(t, err)
	assert.Equal(t, "POLYGON ((0 0, 2 0, 2 2, 0 2, 0 0))", out)
	assert.Equal(t, []float64{0, 0, 2, 2}, fp.BBox())

	// already counterclockwise stays untouched
	fp2, err := ParseFootprint(out)
	require.NoError(t, err)
	out2, err := fp2.WKT()
	require.NoError(t, err)
	assert.Equal(t, out, out2)
}

func TestFootprintLongitudeWrap(t *testing.T) {
	fp, err := ParseFootprint("POINT (190 10)")
	require.NoError(t, err)
	out, err := fp.WKT()
	require.NoError(t, err)
	assert.Equal(t, "POINT (-170 10)", out)
}

func TestFootprintGeoJSON(t *testing.T) {
	fp, err := ParseFootprint("POINT (12.5 41.9)")
	require.NoError(t, err)
	gj, err := fp.GeoJSON()
	require.NoError(t, err)
	assert.Equal(t, "Point", gj["type"])

	_, err = ParseFootprint("POLYGON WRONG")
	assert.Error(t, err)
}

func TestMultihash(t *testing.T) {
	assert.Equal(t,
		"d50110d41d8cd98f00b204e9800998ecf8427e",
		multihash(0xd5, "d41d8cd98f00b204e9800998ecf8427e"))
	assert.Equal(t, "1220"+hex64zero, multihash(0x12, hex64zero))
}

const hex64zero = "0000000000000000000000000000000000000000000000000000000000000000"

func TestAssetRender(t *testing.T) {
	exts := ExtensionSet{}
	out := Asset{
		Kind: KindCOG,
		Href: "B04.tif",
		Size: 42,
		MD5:  "d41d8cd98f00b204e9800998ecf8427e",
		Proj: &Projection{EPSG: 32633, Shape: []int{10980, 10980}},
	}.Render(exts)

	assert.Equal(t, "image/tiff; application=geotiff; profile=cloud-optimized", out["type"])
	assert.Equal(t, []string{"data"}, out["roles"])
	assert.Equal(t, int64(42), out["file:size"])
	assert.Equal(t, 32633, out["proj:epsg"])
	assert.Contains(t, exts, ExtFile)
	assert.Contains(t, exts, ExtProjection)
}

func TestExtensionSetSorted(t *testing.T) {
	s := ExtensionSet{}
	s.Add(ExtSAR, ExtEO, ExtSAR)
	assert.Equal(t, []string{string(ExtEO), string(ExtSAR)}, s.Sorted())
}

func str(s string) extract.Value {
	return extract.Value{Type: registry.TypeString, Data: s}
}

func testAttrs() extract.Attributes {
	return extract.Attributes{
		"identifier":               str("S2A_MSIL1C_20200601T100000_N0209_R122_T33UUU_20200601T120000"),
		"filepath":                 str("/data/S2A_MSIL1C.SAFE"),
		"filename":                 str("S2A_MSIL1C.SAFE"),
		"collection":               str("sentinel-2-l1c"),
		"coordinates":              str("POLYGON ((12 41, 13 41, 13 42, 12 42, 12 41))"),
		"beginningDateTime":        str("2020-06-01T10:00:00.000000Z"),
		"endingDateTime":           str("2020-06-01T10:03:00.000000Z"),
		"platformShortName":        str("SENTINEL-2"),
		"platformSerialIdentifier": str("A"),
		"instrumentShortName":      str("MSI"),
		"tileId":                   str("33UUU"),
		"cloudCover":               extract.Value{Type: registry.TypeDouble, Data: 12.5},
		"orbitNumber":              extract.Value{Type: registry.TypeInt, Data: int64(123)},
	}
}

func TestRenderS2L1C(t *testing.T) {
	doc, err := Render("stac_s2l1c", testAttrs())
	require.NoError(t, err)

	assert.Equal(t, "Feature", doc["type"])
	assert.Equal(t, stacVersion, doc["stac_version"])
	assert.Equal(t, "sentinel-2-l1c", doc["collection"])

	props, ok := doc["properties"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "2020-06-01T10:00:00.000000Z", props["datetime"])
	assert.Equal(t, "sentinel-2a", props["platform"])
	assert.Equal(t, []any{"msi"}, props["instruments"])
	assert.Equal(t, 12.5, props["eo:cloud_cover"])
	assert.Equal(t, "MGRS-33UUU", props["grid:code"])
	assert.Equal(t, int64(123), props["sat:absolute_orbit"])

	exts, ok := doc["stac_extensions"].([]string)
	require.True(t, ok)
	assert.IsIncreasing(t, exts)
	assert.Contains(t, exts, string(ExtEO))

	assets, ok := doc["assets"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, assets, "product")
	assert.Contains(t, assets, "metadata")

	links, ok := doc["links"].([]map[string]any)
	require.True(t, ok)
	require.NotEmpty(t, links)
	assert.Equal(t, RelEnclosure, links[0]["rel"])
	assert.Equal(t, testAttrs().String("filepath"), links[0]["href"])

	assert.Equal(t, []float64{12, 41, 13, 42}, doc["bbox"])
}

func TestRenderLandsatL1(t *testing.T) {
	attrs := testAttrs()
	attrs["identifier"] = str("LC09_L1GT_109060_20200601_20200601_02_T2")
	attrs["filepath"] = str("/data/LC09_L1GT_109060.tar")
	attrs["filename"] = str("LC09_L1GT_109060.tar")
	attrs["collection"] = str("landsat-ot-l1")
	attrs["platformShortName"] = str("LANDSAT")
	attrs["platformSerialIdentifier"] = str("-9")
	attrs["instrumentShortName"] = str("OLI")
	attrs["wrsPath"] = extract.Value{Type: registry.TypeInt, Data: int64(109)}
	attrs["wrsRow"] = extract.Value{Type: registry.TypeInt, Data: int64(60)}

	doc, err := Render("stac_landsat_l1_oli_tirs", attrs)
	require.NoError(t, err)

	props, ok := doc["properties"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "landsat-9", props["platform"])
	assert.Equal(t, "L1", props["processing:level"])
	assert.Equal(t, int64(109), props["landsat:wrs_path"])
	assert.Equal(t, int64(60), props["landsat:wrs_row"])

	assets, ok := doc["assets"].(map[string]any)
	require.True(t, ok)
	product, ok := assets["product"].(map[string]any)
	require.True(t, ok)
	bands, ok := product["eo:bands"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, bands, len(LandsatOLIBands))
	assert.Equal(t, "B1", bands[0]["name"])
}

func TestRenderMissingTemplate(t *testing.T) {
	_, err := Render("stac_nothing", testAttrs())
	assert.Error(t, err)
}

func TestRenderMissingRequiredAttribute(t *testing.T) {
	attrs := testAttrs()
	delete(attrs, "identifier")
	_, err := Render("stac_s2l1c", attrs)
	assert.Error(t, err)

	attrs = testAttrs()
	delete(attrs, "coordinates")
	_, err = Render("stac_s2l1c", attrs)
	assert.Error(t, err)
}

func TestItemRequiresDatetime(t *testing.T) {
	it := NewItem("id", "c")
	it.Geometry = "POINT (0 0)"
	_, err := it.Build()
	assert.Error(t, err)

	it.SetProperty("datetime", "2020-06-01T00:00:00Z")
	doc, err := it.Build()
	require.NoError(t, err)
	assert.Equal(t, "id", doc["id"])
}

func TestSelectBands(t *testing.T) {
	got := SelectBands(SentinelMSIBands, "B04", "B02")
	require.Len(t, got, 2)
	assert.Equal(t, "B02", got[0].Name, "table order wins")
	assert.Equal(t, "B04", got[1].Name)

	assert.Len(t, SelectBands(SentinelMSIBands), 13)
}
