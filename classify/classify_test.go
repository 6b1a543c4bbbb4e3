package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eokit/stacforge/scene"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		path string
		want ProductType
	}{
		{
			"s1 grd",
			"/data/S1A_IW_GRDH_1SDV_20200601T054102_20200601T054127_032861_03CE65_A53E.SAFE",
			"IW_GRDH_1S",
		},
		{
			"s1b unit suffix",
			"/data/S1B_IW_SLC__1SDV_20200601T054102_20200601T054127_032861_03CE65_A53E.SAFE",
			"IW_SLC__1S_B",
		},
		{
			"s1 oporbit aux",
			"/data/S1A_OPER_AUX_RESORB_OPOD_20200601T000000.EOF",
			"AUX_RESORB",
		},
		{
			"s2 l1c",
			"/data/S2A_MSIL1C_20200601T100000_N0209_R122_T33UUU_20200601T120000.SAFE",
			"MSI_L1C",
		},
		{
			"s2 l2a",
			"/data/S2B_MSIL2A_20200601T100000_N0214_R122_T33UUU_20200601T120000.SAFE",
			"MSI_L2A",
		},
		{
			"s3 olci",
			"/data/S3A_OL_1_EFR____20200601T054102_20200601T054402_20200601T073355_0179_059_048_1980_LN1_O_NR_002.SEN3",
			"OL_1_EFR___",
		},
		{
			"s5p",
			"/data/S5P_OFFL_L2__NO2____20200601T054102_20200601T072232_13702_01_010302_20200603T072532.nc",
			"S5P_L2__NO2____",
		},
		{
			"landsat 9 l1",
			"/data/LC09_L1GT_112062_20200601_20200601_02_T2.tar",
			"L09L1",
		},
		{
			"ccm optical",
			"/data/PH1A_PHR_MS___3_20200601.zip",
			"CCM_OPTICAL",
		},
		{
			"ccm dem",
			"/data/DEM1_SAR_DGE_30_20110211.tar",
			"CCM_DEM",
		},
		{
			"rtc by parent",
			"/data/Sentinel-1-RTC/2020/06/tile_33UUU.tif",
			"RTC",
		},
		{
			"copdem cog",
			"/data/Copernicus_DSM_COG_10_N50_00_E010_00_DEM.tar",
			"COPDEM_COG",
		},
		{
			"s2 mosaic",
			"/data/Sentinel-2_mosaic_2020_Q2_33UUU.tif",
			"S2MSI_L3__MCQ",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Classify(scene.New(tc.path))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	s := scene.New("/data/S2A_MSIL1C_20200601T100000_N0209_R122_T33UUU_20200601T120000.SAFE")
	first, err := Classify(s)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Classify(s)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestClassifyUnknown(t *testing.T) {
	_, err := Classify(scene.New("/data/random_download.bin"))
	assert.Error(t, err)
}

func TestDetectTemplate(t *testing.T) {
	tests := []struct {
		path string
		want TemplateID
	}{
		{"/d/S1A_IW_GRDH_1SDV_20200601.SAFE", "stac_s1_grd"},
		{"/d/S1A_IW_SLC__1SDV_20200601.SAFE", "stac_s1_slc"},
		{"/d/S1A_WV_SLC__1SSV_20200601.SAFE", "stac_s1_slc_wv"},
		{"/d/S2A_MSIL1C_20200601.SAFE", "stac_s2l1c"},
		{"/d/S2B_MSIL2A_20200601.SAFE", "stac_s2l2a"},
		{"/d/S3A_OL_1_EFR____20200601.SEN3", "stac_s3_ol_1_earth"},
		{"/d/S3B_SL_2_LST____20200601.SEN3", "stac_s3_sl_2_frp_lst_wst"},
		{"/d/S5P_OFFL_L2__CO_____20200601.nc", "stac_s5p"},
		{"/d/S6A_P4_2__LR______20200601.SEN6", "stac_s6"},
		{"/d/Copernicus_DSM_COG_10_N50_00_E010_00_DEM.tar", "stac_copdem_cog"},
	}
	for _, tc := range tests {
		t.Run(string(tc.want), func(t *testing.T) {
			got, err := DetectTemplate(scene.New(tc.path))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := DetectTemplate(scene.New("/d/unknown.bin"))
	assert.Error(t, err)
}

func TestCollectionName(t *testing.T) {
	tests := []struct {
		path string
		pt   ProductType
		want string
	}{
		{"/d/S1A_IW_GRDH_1SDV_20200601.SAFE", "IW_GRDH_1S", "S1.SAR.L1"},
		{"/d/S2A_MSIL1C_20200601.SAFE", "MSI_L1C", "S2.MSI.L1"},
		{"/d/S3A_OL_1_EFR____20200601.SEN3", "OL_1_EFR___", "S3.OLCI.L1"},
		{"/d/S1A_OPER_AUX_RESORB.EOF", "AUX_RESORB", "S1.AUX"},
		{"/d/LC09_L1GT_112062.tar", "L09L1", "UNK"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, CollectionName(scene.New(tc.path), tc.pt), tc.path)
	}
}
