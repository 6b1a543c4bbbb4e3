package classify

import "github.com/eokit/stacforge/scene"

var levels = map[string]string{
	"0": "L0", "L0": "L0",
	"1": "L1", "L1": "L1",
	"2": "L2", "L2": "L2",
	"1A": "L1A", "1B": "L1B", "1C": "L1C",
	"2A": "L2A", "3A": "L3A",
}

var s3Types = map[string]string{
	"OL": "OLCI",
	"SR": "SRAL",
	"SL": "SLSTR",
	"SY": "Synergy",
	"DO": "DORIS",
	"MW": "MWR",
	"AX": "AUX",
	"GN": "GNSS",
	"TM": "TM",
}

// CollectionName derives the catalogue collection label for a scene from
// its sensor prefix and processing level. Unknown families map to "UNK";
// auxiliary products map to the sensor's AUX collection.
func CollectionName(s scene.Scene, productType ProductType) string {
	name := s.Name()
	if len(name) < 2 {
		return "UNK"
	}
	pt := string(productType)
	switch sensor := name[:2]; sensor {
	case "S1":
		var level string
		if len(pt) >= 9 {
			level = levels[pt[8:9]]
		}
		if level == "" || (len(pt) >= 2 && (pt[:2] == "GP" || pt[:2] == "HK")) {
			return "S1.AUX"
		}
		return "S1.SAR." + level
	case "S2":
		var level string
		if len(pt) >= 6 && pt[:3] == "MSI" {
			level = levels[pt[4:6]]
		}
		if level == "" {
			return "S2.AUX"
		}
		return "S2.MSI." + level
	case "S3":
		var level string
		if len(pt) >= 11 && pt[9:11] != "AX" && len(pt) >= 4 {
			level = levels[pt[3:4]]
		}
		var s3Type string
		if len(pt) >= 2 {
			s3Type = s3Types[pt[:2]]
		}
		if level == "" || s3Type == "" {
			return "S3.AUX"
		}
		return sensor + "." + s3Type + "." + level
	default:
		return "UNK"
	}
}
