// Package proj implements the cartographic projections used by the
// reprojection pipeline. Each projection is an Operator bound to a single
// parameter block; forward maps geodetic (lon, lat) in radians to
// projection (x, y) in meters, inverse maps back. Operators hold all
// derived constants themselves, so two configurations of the same
// projection are fully independent.
package proj

import (
	"errors"
	"fmt"
)

// Code identifies a projection. Values match the GCTP numbering so
// header files and parameter blocks carry over unchanged.
type Code int

const (
	Geographic  Code = 0
	UTM         Code = 1
	StatePlane  Code = 2
	AlbersEqArea Code = 3
	LambertCC   Code = 4
	Mercator    Code = 5
	PolarStereo Code = 6
	TransverseMercator Code = 9
	LambertAz   Code = 11
	Sinusoidal  Code = 16
	Equirect    Code = 17
	SpaceOM     Code = 22
	Goode       Code = 24
	Mollweide   Code = 25
	Hammer      Code = 27
	IntSinusoidal Code = 31
)

var codeNames = map[Code]string{
	Geographic:         "GEO",
	UTM:                "UTM",
	StatePlane:         "SPCS",
	AlbersEqArea:       "AEA",
	LambertCC:          "LCC",
	Mercator:           "MERCAT",
	PolarStereo:        "PS",
	TransverseMercator: "TM",
	LambertAz:          "LA",
	Sinusoidal:         "SIN",
	Equirect:           "ER",
	SpaceOM:            "SOM",
	Goode:              "IGH",
	Mollweide:          "MOL",
	Hammer:             "HAM",
	IntSinusoidal:      "ISIN",
}

func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("proj(%d)", int(c))
}

// Recoverable point-level conditions. Callers treat both as "no data at
// this pixel" rather than as run failures.
var (
	// ErrOutOfRange reports a mathematical domain error: the point has
	// no image under the projection (outside the sinusoidal envelope,
	// opposite pole of a polar stereographic, ...).
	ErrOutOfRange = errors.New("proj: point out of range")

	// ErrInBreak reports a point inside a designed discontinuity, such
	// as an interruption lobe of the Goode homolosine.
	ErrInBreak = errors.New("proj: point in projection break")
)

// NumParams is the size of the projection parameter block.
const NumParams = 15

// Config describes one side of a transform: a projection, its parameter
// block, and the zone/spheroid selectors used by UTM and State Plane.
// Angular parameters are in radians; axes and offsets in meters.
type Config struct {
	Code    Code
	Params  [NumParams]float64
	Zone    int
	// Spheroid indexes the standard spheroid table. A negative value
	// means the semi-major/semi-minor axes come from Params[0:2].
	Spheroid int
}

// Operator is a projection bound to one parameter block.
type Operator interface {
	Code() Code
	// Forward converts geodetic lon/lat (radians) to x/y (meters).
	Forward(lon, lat float64) (x, y float64, err error)
	// Inverse converts x/y (meters) to geodetic lon/lat (radians).
	Inverse(x, y float64) (lon, lat float64, err error)
}

// New builds the operator for cfg.
func New(cfg Config) (Operator, error) {
	switch cfg.Code {
	case Geographic:
		return geographic{}, nil
	case UTM:
		return newUTM(cfg)
	case StatePlane:
		return newStatePlane(cfg)
	case AlbersEqArea:
		return newAlbers(cfg)
	case LambertCC:
		return newLambertCC(cfg)
	case Mercator:
		return newMercator(cfg)
	case PolarStereo:
		return newPolarStereo(cfg)
	case TransverseMercator:
		return newTransMerc(cfg)
	case LambertAz:
		return newLambertAz(cfg)
	case Sinusoidal:
		return newSinusoidal(cfg)
	case Equirect:
		return newEquirect(cfg)
	case Goode:
		return newGoode(cfg)
	case Mollweide:
		return newMollweide(cfg)
	case Hammer:
		return newHammer(cfg)
	case IntSinusoidal:
		return newIntSinusoidal(cfg)
	case SpaceOM:
		return nil, fmt.Errorf("proj: SOM point transforms are not supported")
	}
	return nil, fmt.Errorf("proj: unknown projection code %d", int(cfg.Code))
}

// geographic is the identity projection; coordinates are lon/lat radians
// on both sides.
type geographic struct{}

func (geographic) Code() Code { return Geographic }

func (geographic) Forward(lon, lat float64) (float64, float64, error) {
	return lon, lat, nil
}

func (geographic) Inverse(x, y float64) (float64, float64, error) {
	return x, y, nil
}

// axes resolves the working semi-major/semi-minor axes for cfg: the
// spheroid table entry when a spheroid code is given, else the parameter
// block with spherical fallbacks matching GCTP's sphdz behavior.
func axes(cfg Config) (a, b float64) {
	if cfg.Spheroid >= 0 {
		sp := SpheroidByCode(cfg.Spheroid)
		return sp.SemiMajor, sp.SemiMinor
	}
	a = cfg.Params[0]
	b = cfg.Params[1]
	if a <= 0 {
		sp := SpheroidByCode(0)
		a, b = sp.SemiMajor, sp.SemiMinor
	} else if b <= 0 {
		b = a
	} else if b < 1 {
		// Params[1] < 1 carries eccentricity squared, not an axis.
		b = a * sqrt(1-b)
	}
	return a, b
}
