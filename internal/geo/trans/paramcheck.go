package trans

import (
	"fmt"
	"log"
	"math"

	"github.com/banshee-data/regrid/internal/geo/datum"
	"github.com/banshee-data/regrid/internal/geo/proj"
)

// Tolerances for comparing parameter-block axes against datum axes.
const (
	axisTol = 0.01   // meters
	ecsqTol = 0.0001 // eccentricity squared
)

// modisSphereRadius is the MODIS products' sphere. It never matches a
// datum ellipsoid and is always accepted as an override.
const modisSphereRadius = 6371007.181

// checkParams validates the semi-major/semi-minor slots of a parameter
// block against the datum the configuration claims. It reports whether
// the slots should be refilled from the datum axes. A sphere whose
// radius disagrees with the datum's semi-minor axis is an error when
// strict, a logged warning otherwise.
func checkParams(d datum.Definition, params [proj.NumParams]float64, lenient bool) (fill bool, err error) {
	fill = true
	if math.Abs(params[0]) <= 0.000001 {
		return fill, nil
	}
	if math.Abs(params[0]-d.SemiMajor) > axisTol {
		if math.Abs(params[0]-modisSphereRadius) > axisTol {
			return false, fmt.Errorf("trans: semi-major axis %v does not match datum %s (%v)",
				params[0], d.Name, d.SemiMajor)
		}
		return fill, nil
	}
	if math.Abs(params[1]) > 0.000001 {
		if params[1] < 1 {
			// a value under one is eccentricity squared
			flat := 1.0 / d.RecipFlat
			esq := 2.0*flat - flat*flat
			if math.Abs(params[1]-esq) > ecsqTol {
				return false, fmt.Errorf("trans: eccentricity squared %v does not match datum %s",
					params[1], d.Name)
			}
			// matched as e^2: leave the slots alone
			return false, nil
		}
		if math.Abs(params[1]-d.SemiMinor) > axisTol {
			return false, fmt.Errorf("trans: semi-minor axis %v does not match datum %s (%v)",
				params[1], d.Name, d.SemiMinor)
		}
		return fill, nil
	}
	// semi-minor zero: a sphere, whose radius must agree with the
	// datum's semi-minor axis
	if math.Abs(params[0]-d.SemiMinor) > axisTol {
		if !lenient {
			return false, fmt.Errorf("trans: sphere radius %v does not match datum %s semi-minor axis (%v)",
				params[0], d.Name, d.SemiMinor)
		}
		log.Printf("trans: sphere radius %v does not match datum %s semi-minor axis (%v); continuing",
			params[0], d.Name, d.SemiMinor)
	}
	return fill, nil
}

// fillParams writes the datum axes into a parameter block, honoring the
// MODIS sphere override for the sinusoidal family.
func fillParams(cfg *proj.Config, d datum.Definition) {
	switch cfg.Code {
	case proj.Geographic, proj.UTM, proj.StatePlane:
		// these projections do not carry axes in the parameter block
		return
	case proj.Sinusoidal, proj.IntSinusoidal:
		if math.Abs(cfg.Params[0]-modisSphereRadius) <= axisTol {
			return
		}
	}
	cfg.Params[0] = d.SemiMajor
	cfg.Params[1] = d.SemiMinor
}

// spheroidFor maps a datum to the spheroid code UTM and State Plane use
// on the datum-conversion path.
func spheroidFor(id datum.ID) int {
	switch id {
	case datum.NAD27:
		return 0 // Clarke 1866
	case datum.NAD83:
		return 8 // GRS 1980
	case datum.WGS66:
		return 7
	case datum.WGS72:
		return 5
	case datum.WGS84:
		return 12
	}
	return -1
}
