package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eokit/stacforge/errors"
	"github.com/eokit/stacforge/registry"
	"github.com/eokit/stacforge/scene"
)

const testProductName = "S2A_MSIL1C_20200601T100000_N0209_R122_T33UUU_20200601T120000"

const testMTD = `<n1:Level-1C_User_Product xmlns:n1="https://psd.example">
  <n1:General_Info>
    <Product_Info>
      <PRODUCT_URI>` + testProductName + `.SAFE</PRODUCT_URI>
      <PRODUCT_START_TIME>2020-06-01T10:00:00.024Z</PRODUCT_START_TIME>
      <PRODUCT_STOP_TIME>2020-06-01T10:03:00.024Z</PRODUCT_STOP_TIME>
      <GENERATION_TIME>2020-06-01T12:00:00Z</GENERATION_TIME>
      <PROCESSING_BASELINE>02.09</PROCESSING_BASELINE>
      <Datatake>
        <SENSING_ORBIT_NUMBER>123</SENSING_ORBIT_NUMBER>
        <SENSING_ORBIT_DIRECTION>DESCENDING</SENSING_ORBIT_DIRECTION>
      </Datatake>
      <Product_Organisation>
        <Granule_List>
          <Granule datastripIdentifier="DS_TEST">
            <DATASTRIP_ID>DS_TEST</DATASTRIP_ID>
          </Granule>
        </Granule_List>
      </Product_Organisation>
    </Product_Info>
    <Product_Image_Characteristics/>
  </n1:General_Info>
  <n1:Geometric_Info>
    <Product_Footprint>
      <EXT_POS_LIST>41.0 12.0 41.0 13.0 42.0 13.0 42.0 12.0 41.0 12.0</EXT_POS_LIST>
    </Product_Footprint>
  </n1:Geometric_Info>
  <n1:Quality_Indicators_Info>
    <Cloud_Coverage_Assessment>12.5</Cloud_Coverage_Assessment>
    <Image_Content_QI>
      <SATURATED_DEFECTIVE_PIXEL_PERCENTAGE>0.01</SATURATED_DEFECTIVE_PIXEL_PERCENTAGE>
    </Image_Content_QI>
  </n1:Quality_Indicators_Info>
</n1:Level-1C_User_Product>`

const testMTDTL = `<n1:Level-1C_Tile xmlns:n1="https://psd.example">
  <n1:Geometric_Info>
    <Tile_Geocoding>
      <HORIZONTAL_CS_CODE>EPSG:32633</HORIZONTAL_CS_CODE>
    </Tile_Geocoding>
  </n1:Geometric_Info>
</n1:Level-1C_Tile>`

func writeProduct(t *testing.T) scene.Scene {
	t.Helper()
	root := filepath.Join(t.TempDir(), testProductName+".SAFE")
	granule := filepath.Join(root, "GRANULE", "L1C_T33UUU_A025864_20200601T100000")
	require.NoError(t, os.MkdirAll(granule, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "MTD_MSIL1C.xml"), []byte(testMTD), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(granule, "MTD_TL.xml"), []byte(testMTDTL), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, testProductName+"-ql.jpg"), []byte("img"), 0o644))
	return scene.New(root)
}

func newProcessor(t *testing.T) *Processor {
	t.Helper()
	reg, err := registry.Default()
	require.NoError(t, err)
	return New(reg, nil)
}

func TestProcessSceneEndToEnd(t *testing.T) {
	sc := writeProduct(t)
	p := newProcessor(t)

	doc, ruleFailures, err := p.ProcessScene(context.Background(), sc, Options{Strict: true})
	require.NoError(t, err)
	assert.Zero(t, ruleFailures)

	assert.Equal(t, testProductName, doc["id"])
	assert.Equal(t, "S2.MSI.L1", doc["collection"])
	assert.Equal(t, "Feature", doc["type"])

	props := doc["properties"].(map[string]any)
	assert.Equal(t, "2020-06-01T10:00:00.024000Z", props["start_datetime"])
	assert.Equal(t, "sentinel-2a", props["platform"])
	assert.Equal(t, 12.5, props["eo:cloud_cover"])
	assert.Equal(t, "MGRS-33UUU", props["grid:code"])
	assert.Equal(t, "EPSG:32633", props["proj:code"])

	assert.Equal(t, []float64{12, 41, 13, 42}, doc["bbox"])

	assets := doc["assets"].(map[string]any)
	assert.Contains(t, assets, "product")
	assert.Contains(t, assets, "thumbnail")
}

func TestProcessSceneFlatFallback(t *testing.T) {
	// OCN products carry a rule binding but no item template.
	name := "S1A_IW_OCN__2SDV_20200601T100000_20200601T100025_032862_03CF01_AAAA.SAFE"
	root := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.MkdirAll(root, 0o755))

	p := newProcessor(t)
	doc, _, err := p.ProcessScene(context.Background(), scene.New(root), Options{})
	require.NoError(t, err)

	assert.Equal(t, strings.TrimSuffix(name, ".SAFE"), doc["identifier"])
	assert.Equal(t, "S1.SAR.L2", doc["collection"])
	assert.NotContains(t, doc, "stac_version", "flat documents are not items")
}

func TestProcessSceneTemplateOverride(t *testing.T) {
	sc := writeProduct(t)
	p := newProcessor(t)

	_, _, err := p.ProcessScene(context.Background(), sc, Options{Template: "stac_nope"})
	require.Error(t, err, "a forced template must exist")
	assert.Equal(t, "LookupFailure", errors.Class(err))

	doc, _, err := p.ProcessScene(context.Background(), sc, Options{Template: "stac_s2l1c"})
	require.NoError(t, err)
	assert.Equal(t, testProductName, doc["id"])
}

func TestProcessStreamsOutcomes(t *testing.T) {
	good := writeProduct(t)
	missing := scene.New(filepath.Join(t.TempDir(), "S2A_MSIL1C_20200601T100001_N0209_R122_T33UUV_20200601T120000.SAFE"))
	unclassified := scene.New(filepath.Join(t.TempDir(), "whatever.bin"))

	p := newProcessor(t)
	outcomes := map[string]Outcome{}
	for o := range p.Process(context.Background(), []scene.Scene{good, missing, unclassified}, Options{
		MaxWorkers:           2,
		ConcurrencyPerWorker: 2,
	}) {
		outcomes[o.Scene.Name()] = o
	}
	require.Len(t, outcomes, 3, "one outcome per scene")

	assert.NoError(t, outcomes[good.Name()].Err)
	assert.NotNil(t, outcomes[good.Name()].Document)

	assert.Error(t, outcomes[missing.Name()].Err)
	assert.Equal(t, "ContainerAccessFailure", errors.Class(outcomes[missing.Name()].Err))

	assert.Error(t, outcomes[unclassified.Name()].Err)
	assert.Equal(t, "ClassificationFailure", errors.Class(outcomes[unclassified.Name()].Err))
}

func TestProcessStrictStopsBatch(t *testing.T) {
	bad := scene.New(filepath.Join(t.TempDir(), "S2A_MSIL1C_20200601T100001_N0209_R122_T33UUV_20200601T120000.SAFE"))
	scenes := []scene.Scene{bad, writeProduct(t), writeProduct(t)}

	p := newProcessor(t)
	var got []Outcome
	for o := range p.Process(context.Background(), scenes, Options{
		MaxWorkers:           1,
		ConcurrencyPerWorker: 1,
		Strict:               true,
	}) {
		got = append(got, o)
	}

	require.Len(t, got, 1, "the failure stops the batch before the remaining scenes run")
	assert.Equal(t, bad.Name(), got[0].Scene.Name())
	assert.Error(t, got[0].Err)
}

func TestProcessTaskTimeout(t *testing.T) {
	sc := writeProduct(t)
	p := newProcessor(t)

	var got []Outcome
	for o := range p.Process(context.Background(), []scene.Scene{sc}, Options{
		MaxWorkers:           1,
		ConcurrencyPerWorker: 1,
		TaskTimeout:          time.Nanosecond,
	}) {
		got = append(got, o)
	}
	require.Len(t, got, 1)
	assert.True(t, errors.IsTimeoutError(got[0].Err))
}

func TestFileSink(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewFileSink(filepath.Join(dir, "{}.json"), false, false)
	require.NoError(t, err)

	doc := map[string]any{"id": "item-1", "type": "Feature"}
	require.NoError(t, sink.Write(doc))
	assert.Error(t, sink.Write(doc), "no overwrite by default")

	data, err := os.ReadFile(filepath.Join(dir, "item-1.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "\"id\": \"item-1\"")
	require.NoError(t, sink.Close())

	_, err = NewFileSink(filepath.Join(dir, "out.json"), false, false)
	assert.Error(t, err, "pattern needs a placeholder")
}

func TestNDJSONSinkRollover(t *testing.T) {
	dir := t.TempDir()
	sink := NewNDJSONSink(filepath.Join(dir, "items.ndjson"), 2)
	for i := 0; i < 5; i++ {
		require.NoError(t, sink.Write(map[string]any{"id": i}))
	}
	require.NoError(t, sink.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 3, "five documents roll into three part files")

	first, err := os.ReadFile(filepath.Join(dir, "items-00000.ndjson"))
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(first)), "\n"), 2)
}

func TestFailLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fail.log")
	log, err := OpenFailLog(path)
	require.NoError(t, err)

	sc := scene.New("/data/broken.SAFE")
	require.NoError(t, log.Write(sc, errors.NewClassificationError("unrecognized product")))
	require.NoError(t, log.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var rec struct {
		RunID  string `json:"run_id"`
		Date   string `json:"date"`
		Scene  string `json:"scene"`
		Errors []struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(data, &rec))
	assert.Equal(t, log.RunID(), rec.RunID)
	assert.NotEmpty(t, rec.Date)
	assert.Equal(t, "/data/broken.SAFE", rec.Scene)
	require.Len(t, rec.Errors, 1)
	assert.Equal(t, "ClassificationFailure", rec.Errors[0].Type)
	assert.Contains(t, rec.Errors[0].Message, "unrecognized product")
}
