package stac

import (
	"strings"

	"github.com/eokit/stacforge/extract"
)

func init() {
	RegisterTemplate("stac_s2l1c", renderS2L1C)
	RegisterTemplate("stac_s2l2a", renderS2L2A)
	RegisterTemplate("stac_s1_grd", renderS1GRD)
	RegisterTemplate("stac_s1_slc", renderS1GRD)
	RegisterTemplate("stac_s3_ol_1_earth", renderS3OLCI)
	RegisterTemplate("stac_s3_ol_2_land", renderS3OLCI)
	RegisterTemplate("stac_landsat_l1_oli", renderLandsatL1)
	RegisterTemplate("stac_landsat_l1_oli_tirs", renderLandsatL1)
	RegisterTemplate("stac_landsat_l1_tirs", renderLandsatL1)
}

func lowerOnly(s string) string { return strings.ToLower(s) }

// lower joins a platform name and serial into the lowercase platform
// property, "sentinel-2" + "A" giving "sentinel-2a".
func lower(name, serial string) string {
	if name == "" {
		return ""
	}
	return strings.ToLower(name + serial)
}

func instruments(attrs extract.Attributes) any {
	if v := attrs.String("instrumentShortName"); v != "" {
		return []any{strings.ToLower(v)}
	}
	return nil
}

// addProductAssets attaches the assets every packaged product exposes: the
// archive enclosure, its primary metadata file and a browse image when the
// container carries one.
func addProductAssets(it *Item, attrs extract.Attributes) {
	size, _ := attrs.Int("size")
	it.Assets["product"] = Asset{
		Kind:   KindProduct,
		Href:   attrs.String("filepath"),
		Title:  attrs.String("filename"),
		Size:   size,
		MD5:    attrs.String("checksum"),
		SHA256: attrs.String("checksumSHA256"),
	}
	if ql := attrs.String("quicklook"); ql != "" {
		it.Assets["thumbnail"] = Asset{Kind: KindThumbnail, Href: ql, Title: "Quicklook"}
	}
	it.Links = append(it.Links, Link{
		Rel:   RelEnclosure,
		Href:  attrs.String("filepath"),
		Type:  assetMediaTypes[KindProduct],
		Title: attrs.String("filename"),
	})
}

func renderS2L1C(attrs extract.Attributes) (*Item, error) {
	it, err := baseItem(attrs)
	if err != nil {
		return nil, err
	}
	if cc, ok := attrs.Float("cloudCover"); ok {
		it.SetProperty("eo:cloud_cover", cc)
		it.Extensions.Add(ExtEO)
	}
	it.SetProperty("processing:level", "L1C")
	it.Extensions.Add(ExtProcessing)
	if tile := attrs.String("tileId"); tile != "" {
		it.SetProperty("grid:code", "MGRS-"+tile)
		it.Extensions.Add(ExtGrid)
	}
	if epsg := attrs.String("epsgCode"); epsg != "" {
		it.SetProperty("proj:code", epsg)
		it.Extensions.Add(ExtProjection)
	}
	it.SetProperty("s2:datastrip_id", attrs.String("datastripId"))

	addProductAssets(it, attrs)
	it.Assets["metadata"] = Asset{
		Kind:  KindXML,
		Href:  attrs.String("filepath") + "/MTD_MSIL1C.xml",
		Title: "Product metadata",
	}
	data := it.Assets["product"]
	data.Bands = SelectBands(SentinelMSIBands)
	it.Assets["product"] = data
	it.Extensions.Add(ExtEO)
	return it, nil
}

func renderS2L2A(attrs extract.Attributes) (*Item, error) {
	it, err := renderS2L1C(attrs)
	if err != nil {
		return nil, err
	}
	it.Properties["processing:level"] = "L2A"
	if v, ok := attrs.Float("snowCover"); ok {
		it.SetProperty("s2:snow_ice_percentage", v)
	}
	if v, ok := attrs.Float("waterPercentage"); ok {
		it.SetProperty("s2:water_percentage", v)
	}
	if v, ok := attrs.Float("vegetationPercentage"); ok {
		it.SetProperty("s2:vegetation_percentage", v)
	}
	it.Assets["metadata"] = Asset{
		Kind:  KindXML,
		Href:  attrs.String("filepath") + "/MTD_MSIL2A.xml",
		Title: "Product metadata",
	}
	return it, nil
}

func renderS1GRD(attrs extract.Attributes) (*Item, error) {
	it, err := baseItem(attrs)
	if err != nil {
		return nil, err
	}
	it.SetProperty("sar:instrument_mode", attrs.String("operationalMode"))
	if pols := attrs.String("polarisationChannels"); pols != "" {
		var list []any
		for _, p := range strings.Split(pols, "&") {
			list = append(list, p)
		}
		it.SetProperty("sar:polarizations", list)
	}
	it.SetProperty("sar:product_type", attrs.String("sceneProductType"))
	it.Extensions.Add(ExtSAR)

	if v, ok := attrs.Int("missionDatatakeID"); ok {
		it.SetProperty("s1:datatake_id", v)
	}
	if v, ok := attrs.Int("sliceNumber"); ok {
		it.SetProperty("s1:slice_number", v)
	}

	addProductAssets(it, attrs)
	it.Assets["manifest"] = Asset{
		Kind:  KindManifest,
		Href:  attrs.String("filepath") + "/manifest.safe",
		Title: "SAFE manifest",
	}
	return it, nil
}

func renderLandsatL1(attrs extract.Attributes) (*Item, error) {
	it, err := baseItem(attrs)
	if err != nil {
		return nil, err
	}
	if cc, ok := attrs.Float("cloudCover"); ok {
		it.SetProperty("eo:cloud_cover", cc)
	}
	it.SetProperty("processing:level", "L1")
	it.Extensions.Add(ExtProcessing)
	if path, ok := attrs.Int("wrsPath"); ok {
		it.SetProperty("landsat:wrs_path", path)
	}
	if row, ok := attrs.Int("wrsRow"); ok {
		it.SetProperty("landsat:wrs_row", row)
	}

	addProductAssets(it, attrs)
	data := it.Assets["product"]
	data.Bands = SelectBands(LandsatOLIBands)
	it.Assets["product"] = data
	it.Extensions.Add(ExtEO)
	return it, nil
}

func renderS3OLCI(attrs extract.Attributes) (*Item, error) {
	it, err := baseItem(attrs)
	if err != nil {
		return nil, err
	}
	for attr, prop := range map[string]string{
		"salineWaterCover":      "s3:saline_water",
		"coastalCover":          "s3:coastal",
		"freshInlandWaterCover": "s3:fresh_inland_water",
		"tidalRegionCover":      "s3:tidal_region",
		"landCover":             "s3:land",
	} {
		if v, ok := attrs.Float(attr); ok {
			it.SetProperty(prop, v)
		}
	}
	addProductAssets(it, attrs)
	it.Assets["manifest"] = Asset{
		Kind:  KindManifest,
		Href:  attrs.String("filepath") + "/xfdumanifest.xml",
		Title: "SAFE manifest",
	}
	return it, nil
}
