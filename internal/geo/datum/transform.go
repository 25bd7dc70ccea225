package datum

import (
	"errors"
	"fmt"
)

const (
	r2d = 57.2957795131
	d2r = 1.745329251994328e-2
)

// Transformer converts geodetic coordinates between a fixed pair of
// datums. The conversion route is resolved once at construction.
type Transformer struct {
	in, out Definition
	route   route
	grids   GridShifter
}

type route int

const (
	routeNone route = iota
	routeMolodensky
	routeGrid27to83
	routeGrid83to27
	routeGridThenMolodensky // NAD27 -> NAD83 grid, then Molodensky
	routeMolodenskyThenGrid // Molodensky to NAD83, then grid to NAD27
)

// NewTransformer resolves the conversion route for the datum pair.
// grids may be nil, in which case every NADCON-preferring point falls
// back to Molodensky.
func NewTransformer(in, out ID, grids GridShifter) (*Transformer, error) {
	if in == NoDatum || out == NoDatum {
		return nil, fmt.Errorf("datum: transformer requires real datums on both sides")
	}
	if in == NAD27 && out == NAD27 {
		return nil, fmt.Errorf("%w: cannot convert from NAD27 to NAD27", ErrIncompatibleDatums)
	}
	ind, err := Lookup(in)
	if err != nil {
		return nil, err
	}
	outd, err := Lookup(out)
	if err != nil {
		return nil, err
	}
	if grids == nil {
		grids = NoGrid{}
	}
	t := &Transformer{in: ind, out: outd, grids: grids}
	switch {
	case in == out:
		t.route = routeNone
	case in == NAD27 && out == NAD83:
		t.route = routeGrid27to83
	case in == NAD83 && out == NAD27:
		t.route = routeGrid83to27
	case in == NAD27:
		t.route = routeGridThenMolodensky
	case out == NAD27:
		t.route = routeMolodenskyThenGrid
	default:
		t.route = routeMolodensky
	}
	return t, nil
}

// Transform converts a lon/lat pair in radians from the input to the
// output datum.
func (t *Transformer) Transform(lon, lat float64) (float64, float64, error) {
	switch t.route {
	case routeNone:
		return lon, lat, nil

	case routeMolodensky:
		lon, lat = molodenskyVia(lon, lat, t.in, t.out)
		return lon, lat, nil

	case routeGrid27to83, routeGrid83to27:
		outLon, outLat, err := t.grids.Shift(lon*r2d, lat*r2d, t.route == routeGrid27to83)
		if err != nil {
			if errors.Is(err, ErrGridRange) {
				lon, lat = molodenskyVia(lon, lat, t.in, t.out)
				return lon, lat, nil
			}
			return 0, 0, err
		}
		return outLon * d2r, outLat * d2r, nil

	case routeGridThenMolodensky:
		nad83, _ := Lookup(NAD83)
		outLon, outLat, err := t.grids.Shift(lon*r2d, lat*r2d, true)
		if err != nil {
			if errors.Is(err, ErrGridRange) {
				lon, lat = molodenskyVia(lon, lat, t.in, t.out)
				return lon, lat, nil
			}
			return 0, 0, err
		}
		lon, lat = molodenskyVia(outLon*d2r, outLat*d2r, nad83, t.out)
		return lon, lat, nil

	case routeMolodenskyThenGrid:
		nad83, _ := Lookup(NAD83)
		lon83, lat83 := molodenskyVia(lon, lat, t.in, nad83)
		outLon, outLat, err := t.grids.Shift(lon83*r2d, lat83*r2d, false)
		if err != nil {
			if errors.Is(err, ErrGridRange) {
				lon, lat = molodenskyVia(lon83, lat83, nad83, t.out)
				return lon, lat, nil
			}
			return 0, 0, err
		}
		return outLon * d2r, outLat * d2r, nil
	}
	return lon, lat, nil
}

// In and Out expose the resolved datum definitions.
func (t *Transformer) In() Definition  { return t.in }
func (t *Transformer) Out() Definition { return t.out }
