// Package extent sizes the output grid: it converts input corners to
// output-projection extents by walking the input boundary, probing for
// projection discontinuities, and rounding the result to whole output
// pixels.
package extent

import (
	"errors"
	"fmt"
	"math"

	"github.com/banshee-data/regrid/internal/geo/datum"
	"github.com/banshee-data/regrid/internal/geo/proj"
	"github.com/banshee-data/regrid/internal/geo/trans"
	"github.com/banshee-data/regrid/internal/raster"
)

// SubsetType selects how the output corners are derived.
type SubsetType int

const (
	// FullTile walks the whole input image boundary.
	FullTile SubsetType = iota
	// InputLatLon takes a user lat/lon subset.
	InputLatLon
	// LineSample takes a user line/sample subset (already resolved to
	// input projection coordinates); treated like FullTile.
	LineSample
	// OutputProjCoords uses user-specified output projection corners.
	OutputProjCoords
)

// Probe tolerances: a boundary point is discontinuous when the
// round-trip misses by more than these.
const (
	projRoundTripTol   = 5.0 // meters, input projection space
	latLonRoundTripTol = 0.1 // degrees, lat/lon space
)

// pixelSlack is the fraction of a pixel above which an extent is
// considered a partial pixel and rounded to a whole one.
const pixelSlack = 0.001

// Request carries the inputs of one extent solve.
type Request struct {
	Type     SubsetType
	IsSubset bool
	// UseBound marks a bounding tile: input corners sit in the
	// projection's discontinuity space, so extents round inward.
	UseBound bool

	// InputCorners are the input-projection corners of the (possibly
	// subset) image.
	InputCorners raster.CornerSet
	// LatLonCorners carry the subset corners with X=longitude and
	// Y=latitude, decimal degrees.
	LatLonCorners raster.CornerSet
	// OutputCorners are user-supplied output projection corners, used
	// only by OutputProjCoords.
	OutputCorners raster.CornerSet

	InputPixelSize  float64
	OutputPixelSize float64
}

// Solver owns the transform pipelines an extent solve needs. Build one
// per output band geometry.
type Solver struct {
	inToOut  *trans.Pipeline // input projection -> output projection
	geoToOut *trans.Pipeline // input-datum lat/lon degrees -> output projection
	inToGeo  *trans.Pipeline // input projection -> lat/lon degrees (direct)
	geoToIn  *trans.Pipeline // lat/lon degrees -> input projection (direct)
	outToGeo *trans.Pipeline // output projection -> lat/lon degrees
}

// NewSolver builds the pipelines for the in/out side pair.
func NewSolver(in, out trans.Side, opts trans.Options) (*Solver, error) {
	geoIn := trans.Side{
		Proj:  proj.Config{Code: proj.Geographic, Spheroid: -1},
		Unit:  trans.Degree,
		Datum: in.Datum,
	}
	geoOut := trans.Side{
		Proj:  proj.Config{Code: proj.Geographic, Spheroid: -1},
		Unit:  trans.Degree,
		Datum: out.Datum,
	}
	// The discontinuity probes stay entirely in input space; they run
	// the direct path with the input ellipsoid on both sides.
	directIn := in
	directIn.Datum = datum.NoDatum
	directGeo := geoIn
	directGeo.Datum = datum.NoDatum

	s := &Solver{}
	var err error
	if s.inToOut, err = trans.New(in, out, opts); err != nil {
		return nil, fmt.Errorf("extent: input to output pipeline: %w", err)
	}
	if s.geoToOut, err = trans.New(geoIn, out, opts); err != nil {
		return nil, fmt.Errorf("extent: lat/lon to output pipeline: %w", err)
	}
	if s.inToGeo, err = trans.New(directIn, directGeo, opts); err != nil {
		return nil, fmt.Errorf("extent: input to lat/lon pipeline: %w", err)
	}
	if s.geoToIn, err = trans.New(directGeo, directIn, opts); err != nil {
		return nil, fmt.Errorf("extent: lat/lon to input pipeline: %w", err)
	}
	if s.outToGeo, err = trans.New(out, geoOut, opts); err != nil {
		return nil, fmt.Errorf("extent: output to lat/lon pipeline: %w", err)
	}
	return s, nil
}

func recoverable(err error) bool {
	return errors.Is(err, proj.ErrOutOfRange) || errors.Is(err, proj.ErrInBreak)
}

// Discontinuous probes an input projection coordinate: a point whose
// inverse-then-forward mapping does not round-trip within 5 m has
// wrapped through a discontinuity and must not drive the extents.
func (s *Solver) Discontinuous(x, y float64) bool {
	lon, lat, err := s.inToGeo.Point(x, y)
	if err != nil {
		return true
	}
	x2, y2, err := s.geoToIn.Point(lon, lat)
	if err != nil {
		return true
	}
	return math.Abs(x-x2) > projRoundTripTol || math.Abs(y-y2) > projRoundTripTol
}

// ForbiddenLatLon probes a lat/lon corner against the output
// projection: forward-then-inverse must round-trip within 0.1 degree.
func (s *Solver) ForbiddenLatLon(lonDeg, latDeg float64) bool {
	x, y, err := s.geoToOut.Point(lonDeg, latDeg)
	if err != nil {
		return true
	}
	lon2, lat2, err := s.outToGeo.Point(x, y)
	if err != nil {
		return true
	}
	return math.Abs(latDeg-lat2) > latLonRoundTripTol || math.Abs(lonDeg-lon2) > latLonRoundTripTol
}

// walkBoundary samples the perimeter of an input-projection rectangle
// every input pixel and accumulates the output-projection bounding box,
// skipping discontinuous samples.
func (s *Solver) walkBoundary(c raster.CornerSet, pixelSize float64) (minx, maxx, miny, maxy float64, err error) {
	minx, miny = math.MaxFloat32, math.MaxFloat32
	maxx, maxy = -math.MaxFloat32, -math.MaxFloat32

	visit := func(x, y float64) error {
		if s.Discontinuous(x, y) {
			return nil
		}
		outx, outy, err := s.inToOut.Point(x, y)
		if err != nil {
			if recoverable(err) {
				return nil
			}
			return err
		}
		minx = math.Min(minx, outx)
		maxx = math.Max(maxx, outx)
		miny = math.Min(miny, outy)
		maxy = math.Max(maxy, outy)
		return nil
	}

	// left and right sides, top to bottom
	for y := c.Y(raster.UL); y >= c.Y(raster.LL); y -= pixelSize {
		if err := visit(c.X(raster.UL), y); err != nil {
			return 0, 0, 0, 0, err
		}
	}
	for y := c.Y(raster.UR); y >= c.Y(raster.LR); y -= pixelSize {
		if err := visit(c.X(raster.UR), y); err != nil {
			return 0, 0, 0, 0, err
		}
	}
	// top and bottom rows, left to right
	for x := c.X(raster.UL); x <= c.X(raster.UR); x += pixelSize {
		if err := visit(x, c.Y(raster.UL)); err != nil {
			return 0, 0, 0, 0, err
		}
	}
	for x := c.X(raster.LL); x <= c.X(raster.LR); x += pixelSize {
		if err := visit(x, c.Y(raster.LL)); err != nil {
			return 0, 0, 0, 0, err
		}
	}

	if minx > maxx || miny > maxy {
		return 0, 0, 0, 0, fmt.Errorf("extent: no input boundary point maps into the output projection")
	}
	return minx, maxx, miny, maxy, nil
}

// squareCorners rebuilds a corner set as the axis-aligned bounding box
// of the given min/max values.
func squareCorners(minx, maxx, miny, maxy float64) raster.CornerSet {
	var c raster.CornerSet
	c[raster.UL] = [2]float64{minx, maxy}
	c[raster.UR] = [2]float64{maxx, maxy}
	c[raster.LL] = [2]float64{minx, miny}
	c[raster.LR] = [2]float64{maxx, miny}
	return c
}

// roundToPixels extends (outward true) or pulls in (outward false) the
// max-x/min-y edges so the extent spans a whole number of output
// pixels. The inward direction serves bounding tiles, where extending
// would re-enter the discontinuity space.
func roundToPixels(minx, maxx, miny, maxy, pixel float64, outward bool) (float64, float64, float64, float64) {
	xpixels := (maxx - minx) / pixel
	if xpixels-math.Trunc(xpixels) > pixelSlack {
		if outward {
			xpixels += 1.0
		} else {
			xpixels -= 1.0
		}
		maxx = minx + math.Trunc(xpixels)*pixel
	}
	ypixels := (maxy - miny) / pixel
	if ypixels-math.Trunc(ypixels) > pixelSlack {
		if outward {
			ypixels += 1.0
		} else {
			ypixels -= 1.0
		}
		miny = maxy - math.Trunc(ypixels)*pixel
	}
	return minx, maxx, miny, maxy
}

// OutputCorners resolves the output-projection corner set for req.
func (s *Solver) OutputCorners(req Request) (raster.CornerSet, error) {
	switch {
	case req.Type == OutputProjCoords:
		minx := req.OutputCorners.X(raster.UL)
		maxy := req.OutputCorners.Y(raster.UL)
		maxx := req.OutputCorners.X(raster.LR)
		miny := req.OutputCorners.Y(raster.LR)
		minx, maxx, miny, maxy = roundToPixels(minx, maxx, miny, maxy, req.OutputPixelSize, true)
		return squareCorners(minx, maxx, miny, maxy), nil

	case req.Type == InputLatLon && req.IsSubset:
		// project the four corners themselves and box them
		minx, miny := math.MaxFloat32, math.MaxFloat32
		maxx, maxy := -math.MaxFloat32, -math.MaxFloat32
		for k := raster.UL; k <= raster.LR; k++ {
			outx, outy, err := s.geoToOut.Point(req.LatLonCorners.X(k), req.LatLonCorners.Y(k))
			if err != nil {
				return raster.CornerSet{}, fmt.Errorf("extent: projecting subset corner: %w", err)
			}
			minx = math.Min(minx, outx)
			maxx = math.Max(maxx, outx)
			miny = math.Min(miny, outy)
			maxy = math.Max(maxy, outy)
		}
		minx, maxx, miny, maxy = roundToPixels(minx, maxx, miny, maxy, req.OutputPixelSize, true)
		return squareCorners(minx, maxx, miny, maxy), nil

	case req.UseBound && !req.IsSubset:
		// bounding tile: walk the original corners, round inward
		minx, maxx, miny, maxy, err := s.walkBoundary(req.InputCorners, req.InputPixelSize)
		if err != nil {
			return raster.CornerSet{}, err
		}
		minx, maxx, miny, maxy = roundToPixels(minx, maxx, miny, maxy, req.OutputPixelSize, false)
		return squareCorners(minx, maxx, miny, maxy), nil

	default:
		// full tile or line/sample subset: square off the input
		// rectangle, walk it, round outward
		minx, miny := math.MaxFloat32, math.MaxFloat32
		maxx, maxy := -math.MaxFloat32, -math.MaxFloat32
		for k := raster.UL; k <= raster.LR; k++ {
			minx = math.Min(minx, req.InputCorners.X(k))
			maxx = math.Max(maxx, req.InputCorners.X(k))
			miny = math.Min(miny, req.InputCorners.Y(k))
			maxy = math.Max(maxy, req.InputCorners.Y(k))
		}
		in := squareCorners(minx, maxx, miny, maxy)
		minx, maxx, miny, maxy, err := s.walkBoundary(in, req.InputPixelSize)
		if err != nil {
			return raster.CornerSet{}, err
		}
		minx, maxx, miny, maxy = roundToPixels(minx, maxx, miny, maxy, req.OutputPixelSize, true)
		return squareCorners(minx, maxx, miny, maxy), nil
	}
}

// LatLonToInput projects a lat/lon degree pair to input projection
// coordinates on the direct path.
func (s *Solver) LatLonToInput(lonDeg, latDeg float64) (x, y float64, err error) {
	return s.geoToIn.Point(lonDeg, latDeg)
}

// LatLonExtents converts output corners back to lat/lon for metadata.
// Corners that land in a break come back as zero pairs.
func (s *Solver) LatLonExtents(corners raster.CornerSet) (raster.CornerSet, error) {
	var ll raster.CornerSet
	for k := raster.UL; k <= raster.LR; k++ {
		lon, lat, err := s.outToGeo.Point(corners.X(k), corners.Y(k))
		if err != nil {
			if recoverable(err) {
				continue
			}
			return raster.CornerSet{}, fmt.Errorf("extent: output corner to lat/lon: %w", err)
		}
		ll[k] = [2]float64{lon, lat}
	}
	return ll, nil
}

// GridSize derives the row/column counts from a corner set.
func GridSize(c raster.CornerSet, pixel float64) (nrows, ncols int) {
	ncols = int(math.Abs(c.X(raster.LR)-c.X(raster.UL))/pixel + 0.5)
	nrows = int(math.Abs(c.Y(raster.UL)-c.Y(raster.LR))/pixel + 0.5)
	return nrows, ncols
}

// CheckDateline detects a subset that straddles the +-180 meridian and
// normalizes it in place: whichever corner pair is nearer the dateline
// has its longitudes negated so all four corners share a side. Returns
// true when a straddle was corrected. Corners carry X=longitude,
// Y=latitude in degrees.
func CheckDateline(ll *raster.CornerSet) bool {
	west := math.Min(ll.X(raster.UL), ll.X(raster.LL))
	east := math.Max(ll.X(raster.UR), ll.X(raster.LR))
	if west <= east {
		return false
	}
	distUL := 180.0 - math.Abs(ll.X(raster.UL))
	distLR := 180.0 - math.Abs(ll.X(raster.LR))
	if distUL < distLR {
		ll[raster.UL][0] *= -1.0
		ll[raster.LL][0] *= -1.0
	} else {
		ll[raster.UR][0] *= -1.0
		ll[raster.LR][0] *= -1.0
	}
	return true
}
