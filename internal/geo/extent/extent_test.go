package extent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/regrid/internal/geo/datum"
	"github.com/banshee-data/regrid/internal/geo/proj"
	"github.com/banshee-data/regrid/internal/geo/trans"
	"github.com/banshee-data/regrid/internal/raster"
)

func geoSide() trans.Side {
	return trans.Side{
		Proj:  proj.Config{Code: proj.Geographic, Spheroid: -1},
		Unit:  trans.Degree,
		Datum: datum.NoDatum,
	}
}

func sinSide() trans.Side {
	cfg := proj.Config{Code: proj.Sinusoidal, Spheroid: -1}
	cfg.Params[0] = 6371007.181
	return trans.Side{Proj: cfg, Unit: trans.Meter, Datum: datum.NoDatum}
}

func corners(ulx, uly, lrx, lry float64) raster.CornerSet {
	var c raster.CornerSet
	c[raster.UL] = [2]float64{ulx, uly}
	c[raster.UR] = [2]float64{lrx, uly}
	c[raster.LL] = [2]float64{ulx, lry}
	c[raster.LR] = [2]float64{lrx, lry}
	return c
}

// ---------------------------------------------------------------------------
// Corner cases (literally)
// ---------------------------------------------------------------------------

func TestOutputProjCoordsRoundsOutward(t *testing.T) {
	t.Parallel()
	s, err := NewSolver(geoSide(), geoSide(), trans.Options{})
	require.NoError(t, err)

	req := Request{
		Type:            OutputProjCoords,
		OutputCorners:   corners(0, 10, 10.5, 0.5),
		OutputPixelSize: 1.0,
	}
	out, err := s.OutputCorners(req)
	require.NoError(t, err)

	// 10.5 wide becomes 11 whole pixels; 9.5 tall becomes 10
	assert.InDelta(t, 0.0, out.X(raster.UL), 1e-9)
	assert.InDelta(t, 11.0, out.X(raster.LR), 1e-9)
	assert.InDelta(t, 10.0, out.Y(raster.UL), 1e-9)
	assert.InDelta(t, 0.0, out.Y(raster.LR), 1e-9)

	// squared off
	assert.Equal(t, out.X(raster.UL), out.X(raster.LL))
	assert.Equal(t, out.Y(raster.UL), out.Y(raster.UR))
}

func TestOutputProjCoordsExactFitUnchanged(t *testing.T) {
	t.Parallel()
	s, err := NewSolver(geoSide(), geoSide(), trans.Options{})
	require.NoError(t, err)

	req := Request{
		Type:            OutputProjCoords,
		OutputCorners:   corners(0, 10, 10, 0),
		OutputPixelSize: 1.0,
	}
	out, err := s.OutputCorners(req)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, out.X(raster.LR), 1e-9)
	assert.InDelta(t, 0.0, out.Y(raster.LR), 1e-9)
}

func TestGridSizeIsIntegral(t *testing.T) {
	t.Parallel()
	c := corners(0, 10, 11, 0)
	nrows, ncols := GridSize(c, 1.0)
	assert.Equal(t, 10, nrows)
	assert.Equal(t, 11, ncols)
}

// TestFullTileWalkGeoToSin walks a geographic tile boundary into
// sinusoidal space and checks the resulting box contains the projected
// corners and spans whole output pixels.
func TestFullTileWalkGeoToSin(t *testing.T) {
	t.Parallel()
	s, err := NewSolver(geoSide(), sinSide(), trans.Options{})
	require.NoError(t, err)

	const pixelOut = 1000.0
	req := Request{
		Type:            FullTile,
		InputCorners:    corners(-94, 42, -93, 41),
		InputPixelSize:  0.05,
		OutputPixelSize: pixelOut,
	}
	out, err := s.OutputCorners(req)
	require.NoError(t, err)

	width := out.X(raster.LR) - out.X(raster.UL)
	height := out.Y(raster.UL) - out.Y(raster.LR)
	assert.Greater(t, width, 0.0)
	assert.Greater(t, height, 0.0)

	// whole pixels within float tolerance
	assertIntegralMultiple(t, width, pixelOut)
	assertIntegralMultiple(t, height, pixelOut)

	// the box must contain all four projected corners
	fwd, err := trans.New(geoSide(), sinSide(), trans.Options{})
	require.NoError(t, err)
	for k := raster.UL; k <= raster.LR; k++ {
		x, y, err := fwd.Point(req.InputCorners.X(k), req.InputCorners.Y(k))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, x, out.X(raster.UL)-1e-6)
		assert.LessOrEqual(t, x, out.X(raster.LR)+1e-6)
		assert.GreaterOrEqual(t, y, out.Y(raster.LR)-1e-6)
		assert.LessOrEqual(t, y, out.Y(raster.UL)+1e-6)
	}
}

func assertIntegralMultiple(t *testing.T, span, pixel float64) {
	t.Helper()
	pixels := span / pixel
	frac := pixels - float64(int(pixels+0.5))
	assert.InDelta(t, 0.0, frac, 1e-6, "span %v is not a whole multiple of %v", span, pixel)
}

// TestBoundingTileRoundsInward uses the inward rule: a partial pixel
// pulls the LR corner back instead of extending it.
func TestBoundingTileRoundsInward(t *testing.T) {
	t.Parallel()
	s, err := NewSolver(geoSide(), geoSide(), trans.Options{})
	require.NoError(t, err)

	outward, err := s.OutputCorners(Request{
		Type:            FullTile,
		InputCorners:    corners(0, 10.5, 10.5, 0),
		InputPixelSize:  0.5,
		OutputPixelSize: 1.0,
	})
	require.NoError(t, err)
	inward, err := s.OutputCorners(Request{
		Type:            FullTile,
		UseBound:        true,
		InputCorners:    corners(0, 10.5, 10.5, 0),
		InputPixelSize:  0.5,
		OutputPixelSize: 1.0,
	})
	require.NoError(t, err)

	assert.InDelta(t, 11.0, outward.X(raster.LR), 1e-9)
	assert.InDelta(t, 9.0, inward.X(raster.LR), 1e-9)
	assert.InDelta(t, outward.Y(raster.LR), -0.5+0.0, 1e-9)
	assert.InDelta(t, inward.Y(raster.LR), 1.5, 1e-9)
}

// ---------------------------------------------------------------------------
// Discontinuity probes
// ---------------------------------------------------------------------------

func TestDiscontinuousProbe(t *testing.T) {
	t.Parallel()
	s, err := NewSolver(sinSide(), geoSide(), trans.Options{})
	require.NoError(t, err)

	// a point well inside the sinusoidal envelope round-trips
	assert.False(t, s.Discontinuous(0, 0))
	assert.False(t, s.Discontinuous(1.0e6, 4.0e6))

	// far outside the envelope it cannot
	assert.True(t, s.Discontinuous(2.0e7, 6.0e6))
}

func TestForbiddenLatLonProbe(t *testing.T) {
	t.Parallel()
	s, err := NewSolver(geoSide(), sinSide(), trans.Options{})
	require.NoError(t, err)

	// ordinary points survive the forward/inverse round trip
	assert.False(t, s.ForbiddenLatLon(-93, 41))
	assert.False(t, s.ForbiddenLatLon(179, -60))
}

// ---------------------------------------------------------------------------
// Dateline handling
// ---------------------------------------------------------------------------

func TestCheckDatelineStraddle(t *testing.T) {
	t.Parallel()

	ll := corners(179, 10, -179, 0)
	changed := CheckDateline(&ll)
	assert.True(t, changed)

	// all four longitudes end up on the same side
	sign := ll.X(raster.UL) > 0
	for k := raster.UL; k <= raster.LR; k++ {
		assert.Equal(t, sign, ll.X(k) > 0, "corner %d", k)
	}
}

func TestCheckDatelineNoStraddle(t *testing.T) {
	t.Parallel()
	ll := corners(-94, 42, -93, 41)
	orig := ll
	assert.False(t, CheckDateline(&ll))
	assert.Equal(t, orig, ll)
}
