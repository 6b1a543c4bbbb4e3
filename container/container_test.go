package container

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eokit/stacforge/errors"
	"github.com/eokit/stacforge/scene"
)

func TestMatchName(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		want    bool
	}{
		{"S2A_MSIL1C.SAFE/MTD_MSIL1C.xml", "MTD_MSIL1C.xml", true},
		{"S2A_MSIL1C.SAFE/MTD_MSIL1C.xml", "mtd_msil1c.xml", true},
		{"S2A.SAFE/GRANULE/L1C_T33UUU/MTD_TL.xml", "GRANULE/*/MTD_TL.xml", true},
		{"S2A.SAFE/GRANULE/L1C_T33UUU/QI_DATA/MTD_TL.xml", "GRANULE/*/MTD_TL.xml", false},
		{"measurement/s1a-iw-grd.tiff", "*.tiff", true},
		{"manifest.safe", "xfdumanifest.xml", false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, matchName(tc.name, tc.pattern), "%s ~ %s", tc.name, tc.pattern)
	}
}

func writeProductDir(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "S2A_MSIL1C_20200601T100000.SAFE")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "GRANULE", "L1C_T33UUU"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "MTD_MSIL1C.xml"), []byte("<root/>"), 0o644))
	require.NoError(t, os.WriteFile(
		filepath.Join(root, "GRANULE", "L1C_T33UUU", "MTD_TL.xml"), []byte("<tile/>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "S2A-ql.jpg"), []byte("jpg"), 0o644))
	return root
}

func TestDirContainer(t *testing.T) {
	ctx := context.Background()
	root := writeProductDir(t)

	acc, err := ForScene(ctx, scene.New(root), nil)
	require.NoError(t, err)
	defer acc.Close()

	files, err := acc.Files(ctx)
	require.NoError(t, err)
	assert.Len(t, files, 3)

	name, err := Resolve(ctx, acc, "GRANULE/*/MTD_TL.xml")
	require.NoError(t, err)
	assert.Equal(t, "GRANULE/L1C_T33UUU/MTD_TL.xml", name)

	rd, err := acc.Open(ctx, name)
	require.NoError(t, err)
	data, err := io.ReadAll(rd)
	require.NoError(t, err)
	require.NoError(t, rd.Close())
	assert.Equal(t, "<tile/>", string(data))

	_, err = Resolve(ctx, acc, "nothing.xml")
	assert.True(t, errors.IsNotFoundError(err))

	_, err = Resolve(ctx, acc, "*.xml")
	assert.Error(t, err, "two xml files match")
}

func TestZipContainer(t *testing.T) {
	ctx := context.Background()
	p := filepath.Join(t.TempDir(), "S1A_IW_GRDH.zip")
	f, err := os.Create(p)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("S1A_IW_GRDH.SAFE/manifest.safe")
	require.NoError(t, err)
	_, err = w.Write([]byte("<xfdu/>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	acc, err := ForScene(ctx, scene.New(p), nil)
	require.NoError(t, err)
	defer acc.Close()

	name, err := Resolve(ctx, acc, "manifest.safe")
	require.NoError(t, err)
	rd, err := acc.Open(ctx, name)
	require.NoError(t, err)
	data, err := io.ReadAll(rd)
	require.NoError(t, err)
	require.NoError(t, rd.Close())
	assert.Equal(t, "<xfdu/>", string(data))
}

func TestTarContainer(t *testing.T) {
	ctx := context.Background()
	p := filepath.Join(t.TempDir(), "product.tgz")
	f, err := os.Create(p)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)
	content := []byte("<manifest/>")
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name: "product/xfdumanifest.xml", Mode: 0o644, Size: int64(len(content)), Typeflag: tar.TypeReg,
	}))
	_, err = tw.Write(content)
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	acc, err := ForScene(ctx, scene.New(p), nil)
	require.NoError(t, err)
	defer acc.Close()

	files, err := acc.Files(ctx)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, int64(len(content)), files[0].Size)

	rd, err := acc.Open(ctx, "product/xfdumanifest.xml")
	require.NoError(t, err)
	data, err := io.ReadAll(rd)
	require.NoError(t, err)
	require.NoError(t, rd.Close())
	assert.Equal(t, content, data)

	_, err = acc.Open(ctx, "missing.xml")
	assert.True(t, errors.IsNotFoundError(err))
}

func TestGzipContainer(t *testing.T) {
	ctx := context.Background()
	p := filepath.Join(t.TempDir(), "AUX_GNSSRD.EOF.gz")
	f, err := os.Create(p)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte("<Earth_Explorer_File/>"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	acc, err := ForScene(ctx, scene.New(p), nil)
	require.NoError(t, err)
	defer acc.Close()

	name, err := Resolve(ctx, acc, "AUX_GNSSRD.EOF")
	require.NoError(t, err)
	rd, err := acc.Open(ctx, name)
	require.NoError(t, err)
	data, err := io.ReadAll(rd)
	require.NoError(t, err)
	require.NoError(t, rd.Close())
	assert.Equal(t, "<Earth_Explorer_File/>", string(data))
}

func TestRemoteSceneWithoutBackend(t *testing.T) {
	_, err := ForScene(context.Background(), scene.New("s3://bucket/key"), nil)
	assert.Error(t, err)
}
