// Package classify maps a scene to its product type and, independently, to a
// rendering template. Both classifications walk an ordered rule list where
// the first matching rule wins; supporting a new mission means adding rules,
// never branching code elsewhere in the pipeline.
package classify

import (
	"strings"

	"github.com/eokit/stacforge/errors"
	"github.com/eokit/stacforge/scene"
)

// ProductType is an opaque key identifying a satellite product family.
type ProductType string

// productRule is one ordered classification entry: a predicate over the
// scene and a derivation of the product type from its name. Rule order is
// semantically significant where patterns overlap; do not reorder into a
// lookup table.
type productRule struct {
	match  func(s scene.Scene) bool
	derive func(s scene.Scene) ProductType
}

func nameHasPrefix(prefixes ...string) func(scene.Scene) bool {
	return func(s scene.Scene) bool {
		name := s.Name()
		for _, p := range prefixes {
			if strings.HasPrefix(name, p) {
				return true
			}
		}
		return false
	}
}

func constType(t ProductType) func(scene.Scene) ProductType {
	return func(scene.Scene) ProductType { return t }
}

func hasParent(dir string) func(scene.Scene) bool {
	return func(s scene.Scene) bool {
		for _, p := range s.ParentNames() {
			if p == dir {
				return true
			}
		}
		return false
	}
}

// ccmOpticalPrefixes are the commercial-mission scene name prefixes bound to
// the Copernicus Contributing Missions optical product family.
var ccmOpticalPrefixes = []string{
	"AL01", "AR3D", "DM01", "DM02", "EW02", "EW03", "FO02", "GY01",
	"IR06", "IR07", "KS03", "KS04", "PH1A", "PH1B", "PL00", "PN03",
	"QB02", "RE00", "S20A", "SP04", "SP05", "SP06", "SW00", "TR00",
	"UK02", "VS01",
}

var productRules = []productRule{
	{nameHasPrefix(ccmOpticalPrefixes...), constType("CCM_OPTICAL")},
	{nameHasPrefix("CS00", "IE00", "PAZ1", "RS02", "TX01"), constType("CCM_SAR")},
	{nameHasPrefix("DEM1"), constType("CCM_DEM")},
	{
		func(s scene.Scene) bool {
			return strings.HasPrefix(s.Name(), "Sentinel-1") && strings.Contains(s.Name(), "DH")
		},
		constType("S1SAR_L3_DH_MCM"),
	},
	{
		func(s scene.Scene) bool {
			return strings.HasPrefix(s.Name(), "Sentinel-1") && strings.Contains(s.Name(), "IW")
		},
		constType("S1SAR_L3_IW_MCM"),
	},
	{nameHasPrefix("S1"), deriveS1},
	{
		func(s scene.Scene) bool {
			return strings.HasPrefix(s.Name(), "S2") && strings.Contains(s.Name(), "_MSIL1C_")
		},
		constType("MSI_L1C"),
	},
	{
		func(s scene.Scene) bool {
			return strings.HasPrefix(s.Name(), "S2") && strings.Contains(s.Name(), "_MSIL2A_")
		},
		constType("MSI_L2A"),
	},
	{
		func(s scene.Scene) bool {
			return strings.HasPrefix(s.Name(), "S2") && len(s.Name()) >= 19 &&
				!strings.Contains(s.String(), "HR_IMAGE_2015")
		},
		func(s scene.Scene) ProductType { return ProductType(s.Name()[9:19]) },
	},
	{
		func(s scene.Scene) bool { return strings.HasPrefix(s.Name(), "S3") && len(s.Name()) >= 15 },
		func(s scene.Scene) ProductType { return ProductType(s.Name()[4:15]) },
	},
	{
		func(s scene.Scene) bool { return strings.HasPrefix(s.Name(), "S5P") && len(s.Name()) >= 20 },
		func(s scene.Scene) ProductType { return ProductType("S5P" + s.Name()[8:20]) },
	},
	{
		nameHasPrefix("S6A_P4", "S6B_P4"),
		func(s scene.Scene) ProductType { return ProductType("S6_" + s.Name()[4:6]) },
	},
	{
		nameHasPrefix("S6A_MW_2__AMR", "S6B_MW_2__AMR"),
		func(s scene.Scene) ProductType { return ProductType("S6_" + s.Name()[10:13]) },
	},
	{nameHasPrefix("LO09_L1", "LC09_L1", "LT09_L1"), constType("L09L1")},
	{nameHasPrefix("LC09_L2SP"), constType("LC09_L2SR")},
	{hasParent("Sentinel-1-RTC"), constType("RTC")},
	{nameHasPrefix("Sentinel-2_mosaic"), constType("S2MSI_L3__MCQ")},
	{
		func(s scene.Scene) bool {
			return strings.HasPrefix(s.Name(), "Copernicus_DSM") && strings.Contains(s.Name(), "COG")
		},
		constType("COPDEM_COG"),
	},
	{nameHasPrefix("Landsat_mosaic"), constType("LS_MOSAIC")},
}

// deriveS1 extracts the Sentinel-1 product type from the scene name, with
// the B/C unit suffix convention inherited from the naming scheme.
func deriveS1(s scene.Scene) ProductType {
	name := strings.Replace(s.Name(), "_OPER", "", 1)
	if len(name) < 14 {
		return ProductType(name)
	}
	core := strings.Replace(name[4:14], "_V2", "", 1)
	switch {
	case strings.HasPrefix(s.Name(), "S1B"):
		return ProductType(core + "_B")
	case strings.HasPrefix(s.Name(), "S1C"):
		return ProductType(core + "_C")
	default:
		return ProductType(core)
	}
}

// Classify resolves the product type for a scene. The rule list is walked in
// order and the first match wins; no match is a typed failure, never a guess.
func Classify(s scene.Scene) (ProductType, error) {
	for _, r := range productRules {
		if r.match(s) {
			return r.derive(s), nil
		}
	}
	return "", errors.NewClassificationError("could not identify product type for %q", s.Name())
}
