package resample

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/banshee-data/regrid/internal/geo/proj"
)

// ShiftTable holds the per-row ISIN sample shifts for one input
// resolution. The shift of sample s on row r against the row below is
// Start[r] + s*Slope[r]. Tables are built once per resolution and
// shared across bands; the engine owns their lifetime.
type ShiftTable struct {
	Start []float64
	Slope []float64

	// Min, Max, Avg summarize the valid deltas, for logging.
	Min, Max, Avg float64
	PixelSize     float64
}

// shiftUnavailable marks a row end whose delta could not be computed
// (bounding-tile rows whose corners sit outside the projection).
const shiftUnavailable = -99.0

// calcShift computes the delta for one line/sample of an ISIN grid:
// inverse-map the pixel center and the point one pixel size further
// north (y + pixelSize), then forward-map the current row's longitude
// with that point's latitude.
// The horizontal displacement of that point, in pixels, is the shift.
func calcShift(op proj.Operator, line, sample int, ulX, ulY, pixelSize float64) (float64, error) {
	x := ulX + float64(sample)*pixelSize + 0.5*pixelSize
	y := ulY - float64(line)*pixelSize - 0.5*pixelSize

	lonOrig, _, err := op.Inverse(x, y)
	if err != nil {
		return 0, err
	}
	yPrime := y + pixelSize
	_, latPrime, err := op.Inverse(x, yPrime)
	if err != nil {
		return 0, err
	}
	xPrime, yDouble, err := op.Forward(lonOrig, latPrime)
	if err != nil {
		return 0, err
	}
	if math.Abs(yDouble-yPrime) > 0.000005 {
		return 0, fmt.Errorf("resample: ISIN shift y mismatch: %.9f != %.9f", yDouble, yPrime)
	}
	sPrime := (xPrime - ulX) / pixelSize
	return sPrime - float64(sample), nil
}

// BuildShiftTable computes the start/slope pair for every input row.
// Rows whose end shifts are unavailable get zero start and slope.
func BuildShiftTable(op proj.Operator, nrows, ncols int, ulX, ulY, pixelSize float64, tick func()) (*ShiftTable, error) {
	t := &ShiftTable{
		Start:     make([]float64, nrows),
		Slope:     make([]float64, nrows),
		PixelSize: pixelSize,
	}
	var deltas []float64
	for i := 0; i < nrows; i++ {
		if tick != nil {
			tick()
		}
		start, err := calcShift(op, i, 0, ulX, ulY, pixelSize)
		if err != nil {
			if !errors.Is(err, proj.ErrOutOfRange) && !errors.Is(err, proj.ErrInBreak) {
				return nil, err
			}
			start = shiftUnavailable
		}
		end, err := calcShift(op, i, ncols-1, ulX, ulY, pixelSize)
		if err != nil {
			if !errors.Is(err, proj.ErrOutOfRange) && !errors.Is(err, proj.ErrInBreak) {
				return nil, err
			}
			end = shiftUnavailable
		}

		if start == shiftUnavailable || end == shiftUnavailable {
			t.Start[i] = 0.0
			t.Slope[i] = 0.0
			continue
		}
		t.Start[i] = start
		t.Slope[i] = (end - start) / float64(ncols-1)
		deltas = append(deltas, start, end)
	}
	if len(deltas) > 0 {
		t.Min = floats.Min(deltas)
		t.Max = floats.Max(deltas)
		t.Avg = floats.Sum(deltas) / float64(len(deltas))
	}
	return t, nil
}

// shiftAt evaluates the shift of a fractional sample on row.
func (t *ShiftTable) shiftAt(row int, sample float64) float64 {
	if t == nil || row < 0 || row >= len(t.Start) {
		return 0.0
	}
	return t.Start[row] + sample*t.Slope[row]
}
