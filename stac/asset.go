package stac

import (
	"encoding/hex"
	"fmt"
)

// AssetKind selects the fixed media type and default roles of an asset.
// The set is closed; templates never invent ad hoc kinds.
type AssetKind int

const (
	KindData AssetKind = iota
	KindXML
	KindProduct
	KindManifest
	KindNetCDF
	KindCOG
	KindJPEG2000
	KindThumbnail
)

var assetMediaTypes = map[AssetKind]string{
	KindData:      "application/octet-stream",
	KindXML:       "application/xml",
	KindProduct:   "application/zip",
	KindManifest:  "application/xml",
	KindNetCDF:    "application/x-netcdf",
	KindCOG:       "image/tiff; application=geotiff; profile=cloud-optimized",
	KindJPEG2000:  "image/jp2",
	KindThumbnail: "image/jpeg",
}

var assetRoles = map[AssetKind][]string{
	KindData:      {"data"},
	KindXML:       {"metadata"},
	KindProduct:   {"data", "metadata", "archive"},
	KindManifest:  {"metadata"},
	KindNetCDF:    {"data"},
	KindCOG:       {"data"},
	KindJPEG2000:  {"data"},
	KindThumbnail: {"thumbnail"},
}

// Projection carries the proj extension fields of a raster asset.
type Projection struct {
	EPSG      int
	Shape     []int
	Transform []float64
}

// Asset is one item asset. Optional fields render only when set.
type Asset struct {
	Kind      AssetKind
	Href      string
	Title     string
	MediaType string // overrides the kind's media type
	Roles     []string
	Size      int64
	MD5       string // hex digest
	SHA256    string // hex digest
	Bands     []EOBand
	Proj      *Projection
	// AlternateHref publishes a second access path for the same asset.
	AlternateHref string
}

// Render produces the asset's JSON object and reports which extensions it
// pulls into the item.
func (a Asset) Render(exts ExtensionSet) map[string]any {
	mediaType := a.MediaType
	if mediaType == "" {
		mediaType = assetMediaTypes[a.Kind]
	}
	roles := a.Roles
	if roles == nil {
		roles = assetRoles[a.Kind]
	}
	out := map[string]any{
		"href":  a.Href,
		"type":  mediaType,
		"roles": roles,
	}
	if a.Title != "" {
		out["title"] = a.Title
	}
	if a.Size > 0 {
		out["file:size"] = a.Size
		exts.Add(ExtFile)
	}
	if a.MD5 != "" {
		out["file:checksum"] = multihash(0xd5, a.MD5)
		exts.Add(ExtFile)
	}
	if a.SHA256 != "" {
		out["file:checksum"] = multihash(0x12, a.SHA256)
		exts.Add(ExtFile)
	}
	if len(a.Bands) > 0 {
		out["eo:bands"] = renderBands(a.Bands)
		exts.Add(ExtEO)
	}
	if a.Proj != nil {
		out["proj:epsg"] = a.Proj.EPSG
		if len(a.Proj.Shape) > 0 {
			out["proj:shape"] = a.Proj.Shape
		}
		if len(a.Proj.Transform) > 0 {
			out["proj:transform"] = a.Proj.Transform
		}
		exts.Add(ExtProjection)
	}
	if a.AlternateHref != "" {
		out["alternate"] = map[string]any{
			"https": map[string]any{"href": a.AlternateHref},
		}
		exts.Add(ExtAltinfo)
	}
	return out
}

// multihash prefixes a hex digest with its multihash function code and
// length, per the file extension's checksum encoding.
func multihash(code byte, hexDigest string) string {
	raw, err := hex.DecodeString(hexDigest)
	if err != nil {
		return hexDigest
	}
	prefix := encodeUvarint(uint64(code))
	prefix = append(prefix, encodeUvarint(uint64(len(raw)))...)
	return fmt.Sprintf("%x%s", prefix, hexDigest)
}

func encodeUvarint(v uint64) []byte {
	var out []byte
	for v >= 0x80 {
		out = append(out, byte(v)|0x80)
		v >>= 7
	}
	return append(out, byte(v))
}
