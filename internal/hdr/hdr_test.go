package hdr

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/regrid/internal/geo/datum"
	"github.com/banshee-data/regrid/internal/geo/proj"
	"github.com/banshee-data/regrid/internal/raster"
)

const sampleHeader = `
# MODIS tile header
PROJECTION_TYPE = ISIN

PROJECTION_PARAMETERS = ( 6371007.181 0.0 0.0 0.0 0.0 0.0
 0.0 0.0 21600.0 0.0 1.0 0.0 0.0 0.0 0.0 )

UL_CORNER_LATLON = ( 50.0 -117.486656 )
UR_CORNER_LATLON = ( 50.0 -104.0 )
LL_CORNER_LATLON = ( 40.0 -104.433342 )
LR_CORNER_LATLON = ( 40.0 -92.376354 )

NBANDS = 2
BANDNAMES = ( ndvi, evi )
DATA_TYPE = ( INT16 INT16 )
NLINES = ( 1200 1200 )
NSAMPLES = ( 1200 1200 )
PIXEL_SIZE = ( 926.62543305 926.62543305 )

MIN_VALUE = ( -2000 -2000 )
MAX_VALUE = ( 10000 10000 )
BACKGROUND_FILL = ( -3000 -3000 )

DATUM = NODATUM
BYTE_ORDER = BIG_ENDIAN
`

func TestParseFullHeader(t *testing.T) {
	d, err := ParseBytes([]byte(sampleHeader))
	require.NoError(t, err)

	assert.Equal(t, proj.IntSinusoidal, d.Projection)
	assert.Equal(t, 6371007.181, d.Params[0])
	assert.Equal(t, 21600.0, d.Params[8])
	assert.Equal(t, datum.NoDatum, d.Datum)
	assert.Equal(t, "BIG_ENDIAN", d.ByteOrderName)

	require.Len(t, d.Bands, 2)
	assert.Equal(t, "ndvi", d.Bands[0].Name)
	assert.Equal(t, raster.Int16, d.Bands[0].Type)
	assert.Equal(t, 1200, d.Bands[0].NRows)
	assert.Equal(t, 926.62543305, d.Bands[0].PixelSize)
	assert.Equal(t, -3000.0, d.Bands[0].Fill)
	assert.True(t, d.Bands[0].Selected)

	// corners store X=lon, Y=lat
	assert.Equal(t, -117.486656, d.Corners.X(raster.UL))
	assert.Equal(t, 50.0, d.Corners.Y(raster.UL))
	assert.Equal(t, 40.0, d.Corners.Y(raster.LR))
}

func TestParseMissingFieldsListed(t *testing.T) {
	_, err := ParseBytes([]byte("PROJECTION_TYPE = GEOGRAPHIC\n"))
	require.ErrorIs(t, err, ErrMissingField)
	assert.Contains(t, err.Error(), "NBANDS")
	assert.Contains(t, err.Error(), "PIXEL_SIZE")
}

func TestParseEnvExpansion(t *testing.T) {
	t.Setenv("REGRID_TEST_DIR", "/data/tiles")
	d, err := ParseBytes([]byte(sampleHeader + "INPUT_FILENAME = $(REGRID_TEST_DIR)/tile.hdr\n"))
	require.NoError(t, err)
	assert.Equal(t, "/data/tiles/tile.hdr", d.InputFilename)
}

func TestParseEnvUnsetFatal(t *testing.T) {
	_, err := ParseBytes([]byte("INPUT_FILENAME = $(REGRID_NO_SUCH_VAR)/tile.hdr\n"))
	assert.ErrorIs(t, err, ErrEnvUnset)
}

func TestParseBadValues(t *testing.T) {
	t.Parallel()
	cases := []string{
		"PROJECTION_TYPE = CYLINDRICAL\n",
		"NBANDS = ( one )\n",
		"BYTE_ORDER = MIDDLE_ENDIAN\n",
		"DATA_TYPE = ( FLOAT64 )\n",
	}
	for _, c := range cases {
		_, err := ParseBytes([]byte(c))
		assert.ErrorIs(t, err, ErrInvalidParameter, c)
	}
}

func TestNormalizeSeparators(t *testing.T) {
	t.Parallel()
	// first separator seen wins
	assert.Equal(t, "/a/b/c", normalizeSeparators("/a/b\\c"))
	assert.Equal(t, "\\a\\b\\c", normalizeSeparators("\\a/b/c"))
	// a drive colon forces backslashes
	assert.Equal(t, "C:\\a\\b", normalizeSeparators("C:/a/b"))
	assert.Equal(t, "plain.hdr", normalizeSeparators("plain.hdr"))
}

func TestWriteParseRoundTrip(t *testing.T) {
	d, err := ParseBytes([]byte(sampleHeader))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.hdr")
	require.NoError(t, Write(path, d))

	d2, err := Parse(path)
	require.NoError(t, err)

	assert.Equal(t, d.Projection, d2.Projection)
	assert.Equal(t, d.Datum, d2.Datum)
	assert.Equal(t, d.ByteOrderName, d2.ByteOrderName)
	assert.InDelta(t, d.Params[8], d2.Params[8], 1e-9)
	if diff := cmp.Diff(d.Bands, d2.Bands); diff != "" {
		t.Errorf("bands differ after round trip (-orig +reparsed):\n%s", diff)
	}
	for k := raster.UL; k <= raster.LR; k++ {
		assert.InDelta(t, d.Corners.X(k), d2.Corners.X(k), 1e-9)
		assert.InDelta(t, d.Corners.Y(k), d2.Corners.Y(k), 1e-9)
	}
}

func TestProjConfigConvertsAngles(t *testing.T) {
	t.Parallel()
	d := &Descriptor{Projection: proj.LambertCC}
	d.Params[2] = 33
	d.Params[3] = 45
	d.Params[4] = -95
	d.Params[5] = 39
	cfg := d.ProjConfig()
	assert.InDelta(t, 33*3.141592653589793/180, cfg.Params[2], 1e-12)
	assert.InDelta(t, -95*3.141592653589793/180, cfg.Params[4], 1e-12)
	// the descriptor itself stays in degrees
	assert.Equal(t, 33.0, d.Params[2])
}
