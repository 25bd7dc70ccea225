// Package resample drives per-band output generation: each output
// pixel center is inverse-mapped to input pixel coordinates and filled
// by a nearest-neighbor, bilinear, or cubic convolution kernel. The
// integerized sinusoidal input grids additionally get a per-row sample
// shift correction applied to neighbor lookups.
package resample

import (
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/cheggaaa/pb/v3"
	"github.com/google/uuid"

	"github.com/banshee-data/regrid/internal/geo/proj"
	"github.com/banshee-data/regrid/internal/geo/trans"
	"github.com/banshee-data/regrid/internal/raster"
)

// Kernel selects the resampling method.
type Kernel int

const (
	NearestNeighbor Kernel = iota
	Bilinear
	CubicConvolution
	// NoResample copies rows through the marshalling layer when input
	// and output grids are identical.
	NoResample
)

func (k Kernel) String() string {
	switch k {
	case NearestNeighbor:
		return "NN"
	case Bilinear:
		return "BI"
	case CubicConvolution:
		return "CC"
	case NoResample:
		return "NONE"
	}
	return fmt.Sprintf("kernel(%d)", int(k))
}

// ParseKernel resolves the header-surface kernel names.
func ParseKernel(name string) (Kernel, error) {
	switch name {
	case "NN", "NEAREST_NEIGHBOR":
		return NearestNeighbor, nil
	case "BI", "BILINEAR":
		return Bilinear, nil
	case "CC", "CUBIC_CONVOLUTION":
		return CubicConvolution, nil
	case "NONE", "NO_RESAMPLE":
		return NoResample, nil
	}
	return 0, fmt.Errorf("resample: unknown resampling type %q", name)
}

// Job is one band's resampling work.
type Job struct {
	Input  raster.Reader
	Output raster.Writer

	// Inverse maps output projection coordinates to input projection
	// coordinates.
	Inverse *trans.Pipeline

	// OutCorners/OutPixelSize define the output grid; InUL anchors the
	// input grid (the original corners for bounding tiles).
	OutCorners   raster.CornerSet
	OutPixelSize float64
	InUL         [2]float64

	Kernel   Kernel
	BandName string

	// IsISIN enables the per-row shift correction; Shift must then be
	// the table for the input resolution.
	IsISIN bool
	Shift  *ShiftTable

	// Progress draws a row progress bar on stderr.
	Progress bool
}

// Engine runs jobs and owns the per-resolution state shared between
// bands: the ISIN shift table and the CC weight table.
type Engine struct {
	runID   string
	weights weightTable

	shift          *ShiftTable
	shiftPixelSize float64
}

// NewEngine creates an engine with a fresh run ID for log correlation.
func NewEngine() *Engine {
	return &Engine{runID: uuid.NewString()}
}

// RunID exposes the engine's correlation ID.
func (e *Engine) RunID() string { return e.runID }

// ShiftTableFor returns the shift table for an input ISIN band,
// building it when the resolution differs from the cached table.
func (e *Engine) ShiftTableFor(op proj.Operator, dims raster.Dims, ulX, ulY float64, progress bool) (*ShiftTable, error) {
	if e.shift != nil && e.shiftPixelSize == dims.PixelSize {
		return e.shift, nil
	}
	log.Printf("resample[%s]: calculating ISIN shifts for %d input rows", e.runID, dims.NRows)
	var bar *pb.ProgressBar
	tick := func() {}
	if progress {
		bar = pb.StartNew(dims.NRows)
		tick = func() { bar.Increment() }
	}
	t, err := BuildShiftTable(op, dims.NRows, dims.NCols, ulX, ulY, dims.PixelSize, tick)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return nil, err
	}
	log.Printf("resample[%s]: ISIN shift statistics: min %f max %f avg %f",
		e.runID, t.Min, t.Max, t.Avg)
	e.shift = t
	e.shiftPixelSize = dims.PixelSize
	return t, nil
}

// DropShiftTable releases the cached table, ending its lifetime after
// the final band of a resolution.
func (e *Engine) DropShiftTable() {
	e.shift = nil
	e.shiftPixelSize = 0
}

func recoverable(err error) bool {
	return errors.Is(err, proj.ErrOutOfRange) || errors.Is(err, proj.ErrInBreak)
}

// Run produces every output row of one band.
func (e *Engine) Run(job Job) error {
	if job.Kernel == NoResample {
		return e.copyBand(job)
	}
	if job.Kernel == CubicConvolution && e.weights == nil {
		e.weights = newWeightTable()
	}

	in := newGridSampler(job.Input)
	nrows, ncols := outputGridSize(job.OutCorners, job.OutPixelSize)
	buffer := make([]float64, ncols)

	log.Printf("resample[%s]: processing band %s (%s, %d x %d)",
		e.runID, job.BandName, job.Kernel, nrows, ncols)
	var bar *pb.ProgressBar
	if job.Progress {
		bar = pb.StartNew(nrows)
	}

	inPixel := in.dims.PixelSize
	fill := in.dims.Fill
	ulX, ulY := job.InUL[0], job.InUL[1]

	for i := 0; i < nrows; i++ {
		// pixel centers, not outer extents
		outY := job.OutCorners.Y(raster.UL) - (float64(i)+0.5)*job.OutPixelSize
		for j := 0; j < ncols; j++ {
			outX := job.OutCorners.X(raster.UL) + (float64(j)+0.5)*job.OutPixelSize

			inX, inY, err := job.Inverse.Point(outX, outY)
			if err != nil {
				if recoverable(err) {
					buffer[j] = fill
					continue
				}
				return fmt.Errorf("resample: inverse map at row %d col %d: %w", i, j, err)
			}

			// UL names the outer extent, so no rounding here: input
			// pixel k covers [k, k+1)
			col := (inX - ulX) / inPixel
			row := (ulY - inY) / inPixel

			switch job.Kernel {
			case NearestNeighbor:
				if col < 0 || row < 0 {
					buffer[j] = fill
				} else {
					buffer[j] = in.at(int(col), int(row))
				}
			case Bilinear:
				buffer[j] = e.biInterp(in, col, row, fill, job.IsISIN, job.Shift)
			case CubicConvolution:
				buffer[j] = e.ccInterp(in, col, row, fill, job.IsISIN, job.Shift)
			}
		}
		if in.err != nil {
			return in.err
		}
		if err := job.Output.WriteRow(i, buffer); err != nil {
			return err
		}
		if bar != nil {
			bar.Increment()
		}
	}
	if bar != nil {
		bar.Finish()
	}
	return nil
}

// copyBand moves a band through unchanged, row for row.
func (e *Engine) copyBand(job Job) error {
	dims := job.Input.Dims()
	log.Printf("resample[%s]: copying band %s (%d rows)", e.runID, job.BandName, dims.NRows)
	for i := 0; i < dims.NRows; i++ {
		vals, err := job.Input.ReadRow(i)
		if err != nil {
			return err
		}
		if err := job.Output.WriteRow(i, vals); err != nil {
			return err
		}
	}
	return nil
}

func outputGridSize(c raster.CornerSet, pixel float64) (nrows, ncols int) {
	ncols = int(math.Abs(c.X(raster.LR)-c.X(raster.UL))/pixel + 0.5)
	nrows = int(math.Abs(c.Y(raster.UL)-c.Y(raster.LR))/pixel + 0.5)
	return nrows, ncols
}

// biInterp is the bilinear kernel with ISIN shift handling and the
// background majority rule: two or more background neighbors of four
// produce background.
func (e *Engine) biInterp(in *gridSampler, x, y, background float64, isISIN bool, shift *ShiftTable) float64 {
	if x < 0 || y < 0 || x >= float64(in.dims.NCols) || y >= float64(in.dims.NRows) {
		return in.dims.Fill
	}
	x1 := int(x)
	y1 := int(y)

	// stop blurring around edges
	y2 := y1 + 1
	if y2 >= in.dims.NRows {
		y2 = y1
	}
	x2 := x1 + 1
	if x2 >= in.dims.NCols {
		x2 = x1
	}

	deltaS := 0.0
	if isISIN && y1 != y2 {
		deltaS = shift.shiftAt(y1, x)
	}

	v1 := in.at(x1, y1)
	v2 := in.at(x2, y1)
	deltaX := x + deltaS
	dx1 := int(deltaX)
	dx2 := int(deltaX + 1.0)
	v3 := in.at(dx1, y2)
	v4 := in.at(dx2, y2)

	w1 := (1.0 - (x - float64(x1))) * (1.0 - (y - float64(y1)))
	w2 := (1.0 - (float64(x2) - x)) * (1.0 - (y - float64(y1)))
	w3 := (1.0 - (deltaX - float64(dx1))) * (1.0 - (float64(y2) - y))
	w4 := (1.0 - (float64(dx2) - deltaX)) * (1.0 - (float64(y2) - y))

	// a zero background sentinel means the band has no fill value
	if background == 0.0 {
		return w1*v1 + w2*v2 + w3*v3 + w4*v4
	}

	count := 0
	v, w := 0.0, 0.0
	add := func(wi, vi float64) bool {
		if vi == background {
			count++
			return count >= 2
		}
		v += wi * vi
		w += wi
		return false
	}
	if add(w1, v1) {
		return background
	}
	if add(w2, v2) {
		return background
	}
	if add(w3, v3) {
		return background
	}
	if add(w4, v4) {
		return background
	}
	return v / w
}

// ccInterp is the cubic convolution kernel over a 4x4 footprint. For
// ISIN inputs the cumulative shift between the query row and each
// kernel line moves that line's sample coordinate. Eight or more
// background neighbors of sixteen produce background; accumulation is
// compensated to recover the extended precision of the original.
func (e *Engine) ccInterp(in *gridSampler, x, y, background float64, isISIN bool, shift *ShiftTable) float64 {
	if x < 0 || y < 0 || x >= float64(in.dims.NCols) || y >= float64(in.dims.NRows) {
		return in.dims.Fill
	}
	iy := int(y)
	dl := y - float64(iy)

	var total, totalC float64       // Kahan-compensated value sum
	var totalWeight, weightC float64
	count := 0

	for i := 0; i < linesInKernel; i++ {
		kline := i - topLines

		deltaS := 0.0
		if isISIN {
			switch {
			case kline < 0:
				// shifts accumulate; walking up subtracts them
				for k := kline; k < 0; k++ {
					deltaS -= shift.shiftAt(iy+k, x)
				}
			case kline > 0:
				for k := 0; k < kline; k++ {
					deltaS += shift.shiftAt(iy+k, x)
				}
			}
		}

		deltaX := x + deltaS
		deltaIx := int(deltaX)
		ds := deltaX - float64(deltaIx)
		weights := e.weights.rowWeights(dl, ds, i)

		for j := 0; j < samplesInKernel; j++ {
			value := in.at(deltaIx-leftSamples+j, iy-topLines+i)
			if background != 0.0 && value == background {
				if count++; count >= 8 {
					return background
				}
				continue
			}
			w := weights[j]
			// compensated accumulation
			t := total + w*value
			if math.Abs(total) >= math.Abs(w*value) {
				totalC += (total - t) + w*value
			} else {
				totalC += (w*value - t) + total
			}
			total = t
			tw := totalWeight + w
			if math.Abs(totalWeight) >= math.Abs(w) {
				weightC += (totalWeight - tw) + w
			} else {
				weightC += (w - tw) + totalWeight
			}
			totalWeight = tw
		}
	}
	total += totalC
	totalWeight += weightC

	if background != 0.0 && totalWeight != 0.0 {
		return total / totalWeight
	}
	return total
}
