// Package trans composes projection, datum, and unit conversions into a
// point-transform pipeline. A Pipeline converts points in one direction;
// the resampler holds one (output->input for the inverse map) and the
// extent solver builds its own, each with independent projection state.
package trans

import "fmt"

// Unit is a projection coordinate unit code. Values match the GCTP
// numbering used in header files.
type Unit int

const (
	Radian Unit = 0
	Feet   Unit = 1
	Meter  Unit = 2
	Second Unit = 3
	Degree Unit = 4
	DMS    Unit = 5
)

// Exact GCTP conversion constants.
const (
	R2D = 57.2957795131
	D2R = 1.745329251994328e-2
	S2R = 4.848136811095359e-6

	feetPerMeter = 3.280833333333333 // US survey feet
	metersPerFoot = 0.3048006096012192
)

func (u Unit) String() string {
	switch u {
	case Radian:
		return "RADIANS"
	case Feet:
		return "FEET"
	case Meter:
		return "METERS"
	case Second:
		return "ARC-SEC"
	case Degree:
		return "DEGREES"
	case DMS:
		return "DMS"
	}
	return fmt.Sprintf("unit(%d)", int(u))
}

// UnitFactor returns the multiplicative factor converting from one unit
// to another within the same family (angular or linear). DMS has no
// factor; use PackDMS/UnpackDMS.
func UnitFactor(from, to Unit) (float64, error) {
	if from == to {
		return 1.0, nil
	}
	angular := func(u Unit) (float64, bool) {
		// factor from u to radians
		switch u {
		case Radian:
			return 1.0, true
		case Degree:
			return D2R, true
		case Second:
			return S2R, true
		}
		return 0, false
	}
	if ff, ok := angular(from); ok {
		if tf, ok := angular(to); ok {
			return ff / tf, nil
		}
	}
	linear := func(u Unit) (float64, bool) {
		// factor from u to meters
		switch u {
		case Meter:
			return 1.0, true
		case Feet:
			return metersPerFoot, true
		}
		return 0, false
	}
	if ff, ok := linear(from); ok {
		if tf, ok := linear(to); ok {
			return ff / tf, nil
		}
	}
	return 0, fmt.Errorf("trans: no unit factor from %s to %s", from, to)
}
