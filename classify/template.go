package classify

import (
	"strings"

	"github.com/eokit/stacforge/errors"
	"github.com/eokit/stacforge/scene"
)

// TemplateID names a registered rendering routine. Template detection is
// independent of product classification: a product type may render through
// several alternative templates, and the selection can be overridden by the
// batch caller.
type TemplateID string

type templateRule struct {
	match  func(s scene.Scene) bool
	result TemplateID
}

func nameContainsAll(prefix string, substrings ...string) func(scene.Scene) bool {
	return func(s scene.Scene) bool {
		name := s.Name()
		if !strings.HasPrefix(name, prefix) {
			return false
		}
		for _, sub := range substrings {
			if strings.Contains(name, sub) {
				return true
			}
		}
		return false
	}
}

func pathContainsAny(keys ...string) func(scene.Scene) bool {
	return func(s scene.Scene) bool {
		full := s.String()
		for _, k := range keys {
			if strings.Contains(full, k) {
				return true
			}
		}
		return false
	}
}

var templateRules = []templateRule{
	// Landsat
	{nameContainsAll("LO", "_L1GT_"), "stac_landsat_l1_oli"},
	{nameContainsAll("LC", "_L1GT_"), "stac_landsat_l1_oli_tirs"},
	{nameContainsAll("LT", "_L1GT_"), "stac_landsat_l1_tirs"},

	// Sentinel-1
	{nameContainsAll("S1", "_GRD"), "stac_s1_grd"},
	{
		func(s scene.Scene) bool {
			return strings.HasPrefix(s.Name(), "S1") &&
				strings.Contains(s.Name(), "_SLC_") && strings.Contains(s.Name(), "_WV_")
		},
		"stac_s1_slc_wv",
	},
	{nameContainsAll("S1", "_SLC_"), "stac_s1_slc"},

	// Sentinel-2
	{nameContainsAll("S2", "_MSIL1C_"), "stac_s2l1c"},
	{nameContainsAll("S2", "_MSIL2A_"), "stac_s2l2a"},
	{nameContainsAll("Sentinel-2_mosaic_"), "stac_s2_mosaic"},

	// Sentinel-3 OLCI
	{nameContainsAll("S3", "OL_1_E"), "stac_s3_ol_1_earth"},
	{nameContainsAll("S3", "OL_2_L"), "stac_s3_ol_2_land"},
	{nameContainsAll("S3", "OL_2_W"), "stac_s3_ol_2_water"},

	// Sentinel-3 SLSTR
	{nameContainsAll("S3", "SL_1_RBT____"), "stac_s3_sl_1_rbt"},
	{nameContainsAll("S3", "SL_2_AOD____"), "stac_s3_sl_2_aod"},
	{nameContainsAll("S3", "SL_2_FRP____", "SL_2_LST____", "SL_2_WST____"), "stac_s3_sl_2_frp_lst_wst"},

	// Sentinel-3 SRAL
	{nameContainsAll("S3", "SR_1_SRA____", "SR_1_SRA_A__", "SR_1_SRA_BS_"), "stac_s3_sr_1_sra"},
	{
		nameContainsAll("S3",
			"SR_2_LAN____", "SR_2_LAN_HY_", "SR_2_LAN_LI_", "SR_2_LAN_SI_", "SR_2_WAT____"),
		"stac_s3_sr_2_lan_wat",
	},

	// Sentinel-3 Synergy
	{nameContainsAll("S3", "SY_2_AOD____"), "stac_s3_sy_2_aod"},
	{nameContainsAll("S3", "SY_2_SYN____"), "stac_s3_sy_2_syn"},
	{nameContainsAll("S3", "SY_2_V10____", "SY_2_VG1____", "SY_2_VGP____"), "stac_s3_sy_2_veg"},

	// Sentinel-5P
	{
		nameContainsAll("S5P_",
			"_L1B_RA_BD", "_L2__AER_AI_", "_L2__AER_LH_", "_L2__CH4____", "_L2__CLOUD__",
			"_L2__CO_____", "_L2__HCHO___", "_L2__NO2____", "_L2__NP_BD3_", "_L2__NP_BD6_",
			"_L2__NP_BD7_", "_L2__O3_____", "_L2__O3__PR_", "_L2__O3_TCL_", "_L2__SO2____"),
		"stac_s5p",
	},

	// Sentinel-6
	{nameHasPrefix("S6"), "stac_s6"},

	// Copernicus Contributing Missions
	{pathContainsAny("SAR_SEA_ICE", "DWH_MG1_CORE_11"), "stac_ccm_sar"},
	{
		pathContainsAny(
			"VHR_IMAGE_2024", "VHR_IMAGE_2021", "VHR_IMAGE_2018", "VHR_IMAGE_2015",
			"Urban_Atlas_2012", "DAP_MG2b_01", "DAP_MG2b_02", "DWH_MG2b_CORE_03",
			"HR_IMAGE_2015", "Image2012", "DWH_MG2_CORE_01", "Image2006", "Image2009",
			"DWH_MG2_CORE_02", "DAP_MG2-3_01", "DWH_MG2_CORE_09", "EUR_HR2_MULTITEMP",
			"DWH_MG2-3_CORE_08", "MR_IMAGE_2015", "DEM_VHR_2018"),
		"stac_ccm_optical",
	},
	{pathContainsAny("COP-DEM"), "stac_ccm_dem"},

	// Global mosaics
	{
		func(s scene.Scene) bool {
			return strings.Contains(s.Name(), "mosaic") && strings.Contains(s.Name(), "Sentinel-1")
		},
		"stac_s1_mosaic",
	},
	{
		func(s scene.Scene) bool {
			return strings.Contains(s.Name(), "mosaic") && strings.Contains(s.Name(), "Sentinel-2")
		},
		"stac_s2_mosaic",
	},

	// Copernicus DEM COG
	{
		func(s scene.Scene) bool {
			return strings.HasPrefix(s.Name(), "Copernicus_DSM") && strings.Contains(s.Name(), "COG")
		},
		"stac_copdem_cog",
	},
	{nameHasPrefix("Landsat_mosaic"), "stac_landsat_mosaic"},
}

// DetectTemplate resolves the rendering template for a scene. First matching
// rule wins; no match is a typed failure so the caller can fall back to flat
// output or an explicit override.
func DetectTemplate(s scene.Scene) (TemplateID, error) {
	for _, r := range templateRules {
		if r.match(s) {
			return r.result, nil
		}
	}
	return "", errors.NewClassificationError("could not detect template for %q", s.Name())
}
