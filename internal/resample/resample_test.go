package resample

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
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

func identityInverse(t *testing.T) *trans.Pipeline {
	t.Helper()
	p, err := trans.New(geoSide(), geoSide(), trans.Options{})
	require.NoError(t, err)
	return p
}

func memGrid(rows [][]float64, pixel, fill float64) *raster.MemReader {
	return &raster.MemReader{
		D: raster.Dims{
			NRows:     len(rows),
			NCols:     len(rows[0]),
			PixelSize: pixel,
			Type:      raster.Float32,
			Fill:      fill,
		},
		Data: rows,
	}
}

func gridCorners(ulx, uly float64, nrows, ncols int, pixel float64) raster.CornerSet {
	var c raster.CornerSet
	lrx := ulx + float64(ncols)*pixel
	lry := uly - float64(nrows)*pixel
	c[raster.UL] = [2]float64{ulx, uly}
	c[raster.UR] = [2]float64{lrx, uly}
	c[raster.LL] = [2]float64{ulx, lry}
	c[raster.LR] = [2]float64{lrx, lry}
	return c
}

// ---------------------------------------------------------------------------
// Nearest neighbor
// ---------------------------------------------------------------------------

// With identical grids and an identity transform, NN must reproduce the
// input row for row.
func TestNNIdentityCopies(t *testing.T) {
	t.Parallel()
	rows := [][]float64{
		{1, 2, 3, 4},
		{5, 6, 7, 8},
		{9, 10, 11, 12},
	}
	in := memGrid(rows, 1.0, 0)
	out := &raster.MemWriter{}

	job := Job{
		Input:        in,
		Output:       out,
		Inverse:      identityInverse(t),
		OutCorners:   gridCorners(0, 3, 3, 4, 1.0),
		OutPixelSize: 1.0,
		InUL:         [2]float64{0, 3},
		Kernel:       NearestNeighbor,
		BandName:     "band1",
	}
	require.NoError(t, NewEngine().Run(job))

	require.Len(t, out.Rows, 3)
	for i, want := range rows {
		if diff := cmp.Diff(want, out.Rows[i]); diff != "" {
			t.Errorf("row %d mismatch (-want +got):\n%s", i, diff)
		}
	}
}

// A pixel whose center inverse-maps outside the input grid takes the
// background fill.
func TestNNOutsideGridIsFill(t *testing.T) {
	t.Parallel()
	rows := [][]float64{{1, 2}, {3, 4}}
	in := memGrid(rows, 1.0, -9)
	out := &raster.MemWriter{}

	// the output grid extends two columns past the input's east edge
	job := Job{
		Input:        in,
		Output:       out,
		Inverse:      identityInverse(t),
		OutCorners:   gridCorners(0, 2, 2, 4, 1.0),
		OutPixelSize: 1.0,
		InUL:         [2]float64{0, 2},
		Kernel:       NearestNeighbor,
		BandName:     "edge",
	}
	require.NoError(t, NewEngine().Run(job))
	assert.Equal(t, []float64{1, 2, -9, -9}, out.Rows[0])
	assert.Equal(t, []float64{3, 4, -9, -9}, out.Rows[1])
}

// ---------------------------------------------------------------------------
// Bilinear
// ---------------------------------------------------------------------------

// With aligned grids the four neighbor weights are all 1/4.
func TestBIAveragesFourNeighbors(t *testing.T) {
	t.Parallel()
	rows := [][]float64{
		{0, 4, 8},
		{4, 8, 12},
		{8, 12, 16},
	}
	in := memGrid(rows, 1.0, 0)
	out := &raster.MemWriter{}

	job := Job{
		Input:        in,
		Output:       out,
		Inverse:      identityInverse(t),
		OutCorners:   gridCorners(0, 3, 3, 3, 1.0),
		OutPixelSize: 1.0,
		InUL:         [2]float64{0, 3},
		Kernel:       Bilinear,
		BandName:     "bi",
	}
	require.NoError(t, NewEngine().Run(job))

	// interior pixel (1,1): mean of {8, 12, 12, 16}
	assert.InDelta(t, 12.0, out.Rows[1][1], 1e-9)
	// pixel (0,0): mean of {0, 4, 4, 8}
	assert.InDelta(t, 4.0, out.Rows[0][0], 1e-9)
	// pixel (0,1): mean of {4, 8, 8, 12}
	assert.InDelta(t, 8.0, out.Rows[0][1], 1e-9)
}

// Two or more background neighbors force background; one is averaged
// out of the result.
func TestBIBackgroundMajority(t *testing.T) {
	t.Parallel()
	const bg = -99.0
	rows := [][]float64{
		{bg, 8, 8},
		{bg, 8, 8},
		{8, 8, 8},
	}
	in := memGrid(rows, 1.0, bg)
	out := &raster.MemWriter{}

	job := Job{
		Input:        in,
		Output:       out,
		Inverse:      identityInverse(t),
		OutCorners:   gridCorners(0, 3, 3, 3, 1.0),
		OutPixelSize: 1.0,
		InUL:         [2]float64{0, 3},
		Kernel:       Bilinear,
		BandName:     "bg",
	}
	require.NoError(t, NewEngine().Run(job))

	// (0,0) sees two background neighbors -> background
	assert.Equal(t, bg, out.Rows[0][0])
	// (1,0) sees one background neighbor -> weighted mean of the rest
	assert.InDelta(t, 8.0, out.Rows[1][0], 1e-9)
}

// ---------------------------------------------------------------------------
// Cubic convolution
// ---------------------------------------------------------------------------

// When pixel centers align exactly, the CC kernel weights collapse to a
// single 1.0 at the center sample, reproducing the input.
func TestCCAlignedIsIdentity(t *testing.T) {
	t.Parallel()
	rows := [][]float64{
		{1, 2, 3, 4},
		{5, 6, 7, 8},
		{9, 10, 11, 12},
		{13, 14, 15, 16},
	}
	in := memGrid(rows, 1.0, 0)
	out := &raster.MemWriter{}

	// shift the output grid half a pixel so output centers land on
	// input pixel corners, making col/row integral
	job := Job{
		Input:        in,
		Output:       out,
		Inverse:      identityInverse(t),
		OutCorners:   gridCorners(-0.5, 4.5, 4, 4, 1.0),
		OutPixelSize: 1.0,
		InUL:         [2]float64{0, 4},
		Kernel:       CubicConvolution,
		BandName:     "cc",
	}
	require.NoError(t, NewEngine().Run(job))

	for i, want := range rows {
		for j := range want {
			assert.InDelta(t, want[j], out.Rows[i][j], 1e-9, "pixel %d,%d", i, j)
		}
	}
}

func TestCCBackgroundMajority(t *testing.T) {
	t.Parallel()
	const bg = -1.0
	rows := make([][]float64, 6)
	for i := range rows {
		rows[i] = make([]float64, 6)
		for j := range rows[i] {
			if j < 3 {
				rows[i][j] = bg
			} else {
				rows[i][j] = 10
			}
		}
	}
	in := memGrid(rows, 1.0, bg)
	out := &raster.MemWriter{}

	job := Job{
		Input:        in,
		Output:       out,
		Inverse:      identityInverse(t),
		OutCorners:   gridCorners(0, 6, 6, 6, 1.0),
		OutPixelSize: 1.0,
		InUL:         [2]float64{0, 6},
		Kernel:       CubicConvolution,
		BandName:     "ccbg",
	}
	require.NoError(t, NewEngine().Run(job))

	// deep inside the background half: 8 or more of the 16 neighbors
	// are background
	assert.Equal(t, bg, out.Rows[3][1])
	// deep inside the valid half the value is exact
	assert.InDelta(t, 10.0, out.Rows[3][4], 1e-6)
}

// ---------------------------------------------------------------------------
// Kernel weights
// ---------------------------------------------------------------------------

func TestCubicConvolutionWeightFunction(t *testing.T) {
	t.Parallel()
	// ccw(alpha, 0) = 1, ccw at integer offsets 1 and 2 = 0
	assert.InDelta(t, 1.0, cubicConvolution(ccAlpha, 0), 1e-12)
	assert.InDelta(t, 0.0, cubicConvolution(ccAlpha, 1), 1e-12)
	assert.InDelta(t, 0.0, cubicConvolution(ccAlpha, -1), 1e-12)
	assert.InDelta(t, 0.0, cubicConvolution(ccAlpha, 2), 1e-12)
	assert.InDelta(t, 0.0, cubicConvolution(ccAlpha, 2.5), 1e-12)
	// symmetric
	assert.InDelta(t, cubicConvolution(ccAlpha, 0.3), cubicConvolution(ccAlpha, -0.3), 1e-12)
}

func TestWeightTableRowsSumToOneAtCenter(t *testing.T) {
	t.Parallel()
	w := newWeightTable()
	sum := 0.0
	for line := 0; line < linesInKernel; line++ {
		for _, v := range w.rowWeights(0, 0, line) {
			sum += v
		}
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestParseKernel(t *testing.T) {
	t.Parallel()
	for name, want := range map[string]Kernel{
		"NN":               NearestNeighbor,
		"NEAREST_NEIGHBOR": NearestNeighbor,
		"BI":               Bilinear,
		"CC":               CubicConvolution,
		"NONE":             NoResample,
	} {
		got, err := ParseKernel(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseKernel("LANCZOS")
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// Copy path
// ---------------------------------------------------------------------------

func TestNoResampleCopies(t *testing.T) {
	t.Parallel()
	rows := [][]float64{{1, 2}, {3, 4}}
	in := memGrid(rows, 1.0, 0)
	out := &raster.MemWriter{}
	job := Job{
		Input:    in,
		Output:   out,
		Kernel:   NoResample,
		BandName: "copy",
	}
	require.NoError(t, NewEngine().Run(job))
	assert.Equal(t, rows[0], out.Rows[0])
	assert.Equal(t, rows[1], out.Rows[1])
}

// ---------------------------------------------------------------------------
// ISIN shift model
// ---------------------------------------------------------------------------

func isinOperator(t *testing.T, nzone float64) proj.Operator {
	t.Helper()
	cfg := proj.Config{Code: proj.IntSinusoidal, Spheroid: -1}
	cfg.Params[0] = 6371007.181
	cfg.Params[8] = nzone
	cfg.Params[10] = 1
	op, err := proj.New(cfg)
	require.NoError(t, err)
	return op
}

// TestShiftTableGlobalGrid builds the shift table for the top rows of
// the 463 m global ISIN grid. The first rows sit outside the
// sinusoidal envelope at sample 0, so their shifts zero out; valid
// rows carry bounded shifts.
func TestShiftTableGlobalGrid(t *testing.T) {
	t.Parallel()
	const (
		pixel = 463.312716525
		r     = 6371007.181
	)
	ulX := -math.Pi * r
	ulY := math.Pi / 2 * r
	ncols := 86400
	op := isinOperator(t, 43200)

	table, err := BuildShiftTable(op, 400, ncols, ulX, ulY, pixel, nil)
	require.NoError(t, err)
	require.Len(t, table.Start, 400)

	// line 0 sample 0 is outside the envelope: zeroed
	assert.Equal(t, 0.0, table.Start[0])
	assert.Equal(t, 0.0, table.Slope[0])

	for i := range table.Start {
		assert.False(t, math.IsNaN(table.Start[i]), "row %d start", i)
		assert.False(t, math.IsNaN(table.Slope[i]), "row %d slope", i)
		assert.Less(t, math.Abs(table.Start[i]), 10.0, "row %d start", i)
	}
}

// TestShiftTableReproducible: two independent builds agree exactly.
func TestShiftTableReproducible(t *testing.T) {
	t.Parallel()
	const pixel = 463.312716525
	r := 6371007.181
	ulX := -math.Pi * r
	ulY := math.Pi / 2 * r

	a, err := BuildShiftTable(isinOperator(t, 43200), 250, 86400, ulX, ulY, pixel, nil)
	require.NoError(t, err)
	b, err := BuildShiftTable(isinOperator(t, 43200), 250, 86400, ulX, ulY, pixel, nil)
	require.NoError(t, err)

	if diff := cmp.Diff(a.Start, b.Start); diff != "" {
		t.Errorf("start shifts differ (-a +b):\n%s", diff)
	}
	if diff := cmp.Diff(a.Slope, b.Slope); diff != "" {
		t.Errorf("slopes differ (-a +b):\n%s", diff)
	}
}

// TestShiftTableCachedPerResolution: the engine reuses the table for
// bands of the same pixel size and rebuilds on change.
func TestShiftTableCachedPerResolution(t *testing.T) {
	t.Parallel()
	r := 6371007.181
	dims := raster.Dims{NRows: 50, NCols: 100, PixelSize: 926.62543305}
	op := isinOperator(t, 21600)
	e := NewEngine()

	t1, err := e.ShiftTableFor(op, dims, -math.Pi*r, math.Pi/2*r, false)
	require.NoError(t, err)
	t2, err := e.ShiftTableFor(op, dims, -math.Pi*r, math.Pi/2*r, false)
	require.NoError(t, err)
	assert.Same(t, t1, t2)

	e.DropShiftTable()
	t3, err := e.ShiftTableFor(op, dims, -math.Pi*r, math.Pi/2*r, false)
	require.NoError(t, err)
	assert.NotSame(t, t1, t3)
}

func TestShiftAtOutOfRangeRowIsZero(t *testing.T) {
	t.Parallel()
	table := &ShiftTable{Start: []float64{1, 2}, Slope: []float64{0.5, 0.25}}
	assert.Equal(t, 0.0, table.shiftAt(-1, 3))
	assert.Equal(t, 0.0, table.shiftAt(2, 3))
	assert.InDelta(t, 2.5, table.shiftAt(0, 3), 1e-12)
}
