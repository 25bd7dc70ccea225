package trans

import (
	"fmt"

	"github.com/banshee-data/regrid/internal/geo/datum"
	"github.com/banshee-data/regrid/internal/geo/proj"
)

// Side describes one end of a pipeline: projection configuration, the
// unit its coordinates are expressed in, and the datum they sit on.
type Side struct {
	Proj  proj.Config
	Unit  Unit
	Datum datum.ID
}

// Options tune pipeline construction.
type Options struct {
	// Grids supplies the NADCON service; nil means no grid coverage.
	Grids datum.GridShifter
	// Lenient tolerates a sphere radius that disagrees with the datum
	// semi-minor axis instead of rejecting the configuration.
	Lenient bool
}

// Pipeline converts points from its input side to its output side:
// input-projection inverse, optional datum shift, output-projection
// forward, with unit normalization at both ends. Construction resolves
// everything once; Point is then pure computation.
type Pipeline struct {
	inSide, outSide Side
	inOp, outOp     proj.Operator
	xform           *datum.Transformer // nil on the direct path
}

// New builds a pipeline for the in -> out direction.
//
// When either datum is NoDatum the pipeline runs the direct path: no
// datum stage, and the ellipsoid in each parameter block is used
// verbatim. Otherwise the parameter axes are validated against both
// datums, and the datum stage runs between the projections when the two
// datums differ.
func New(in, out Side, opts Options) (*Pipeline, error) {
	p := &Pipeline{inSide: in, outSide: out}

	if in.Proj.Code == proj.Geographic && in.Unit != Radian && in.Unit != Degree &&
		in.Unit != Second && in.Unit != DMS {
		return nil, fmt.Errorf("trans: geographic input requires an angular unit, got %s", in.Unit)
	}
	if in.Proj.Code != proj.Geographic && in.Unit != Meter && in.Unit != Feet {
		return nil, fmt.Errorf("trans: projected input requires meters or feet, got %s", in.Unit)
	}
	if out.Proj.Code != proj.Geographic && out.Unit != Meter && out.Unit != Feet {
		return nil, fmt.Errorf("trans: projected output requires meters or feet, got %s", out.Unit)
	}

	direct := out.Datum == datum.NoDatum || in.Datum == datum.NoDatum
	if !direct {
		ind, err := datum.Lookup(in.Datum)
		if err != nil {
			return nil, err
		}
		outd, err := datum.Lookup(out.Datum)
		if err != nil {
			return nil, err
		}
		if fill, err := checkParams(ind, in.Proj.Params, opts.Lenient); err != nil {
			return nil, err
		} else if fill {
			fillParams(&in.Proj, ind)
		}
		if fill, err := checkParams(outd, out.Proj.Params, opts.Lenient); err != nil {
			return nil, err
		} else if fill {
			fillParams(&out.Proj, outd)
		}
		in.Proj.Spheroid = spheroidFor(in.Datum)
		out.Proj.Spheroid = spheroidFor(out.Datum)

		if in.Datum != out.Datum {
			p.xform, err = datum.NewTransformer(in.Datum, out.Datum, opts.Grids)
			if err != nil {
				return nil, err
			}
		}
	}

	var err error
	p.inOp, err = proj.New(in.Proj)
	if err != nil {
		return nil, fmt.Errorf("trans: input projection: %w", err)
	}
	p.outOp, err = proj.New(out.Proj)
	if err != nil {
		return nil, fmt.Errorf("trans: output projection: %w", err)
	}
	p.inSide, p.outSide = in, out
	return p, nil
}

// Point converts a single coordinate pair. ErrOutOfRange and ErrInBreak
// from the projections pass through unwrapped so callers can recover at
// pixel level.
func (p *Pipeline) Point(x, y float64) (outX, outY float64, err error) {
	// SOM coordinates arrive with their axes swapped
	if p.inSide.Proj.Code == proj.SpaceOM {
		x, y = -y, x
	}

	lon, lat, err := p.toGeo(x, y)
	if err != nil {
		return 0, 0, err
	}
	if p.xform != nil {
		lon, lat, err = p.xform.Transform(lon, lat)
		if err != nil {
			return 0, 0, err
		}
	}
	outX, outY, err = p.fromGeo(lon, lat)
	if err != nil {
		return 0, 0, err
	}

	if p.outSide.Proj.Code == proj.SpaceOM {
		outX, outY = -outY, outX
	}
	return outX, outY, nil
}

// toGeo normalizes units and runs the input inverse, producing radians.
func (p *Pipeline) toGeo(x, y float64) (lon, lat float64, err error) {
	if p.inSide.Proj.Code == proj.Geographic {
		if p.inSide.Unit == DMS {
			lonDeg, err := UnpackDMS(x, "LON")
			if err != nil {
				return 0, 0, err
			}
			latDeg, err := UnpackDMS(y, "LAT")
			if err != nil {
				return 0, 0, err
			}
			return lonDeg * D2R, latDeg * D2R, nil
		}
		factor, err := UnitFactor(p.inSide.Unit, Radian)
		if err != nil {
			return 0, 0, err
		}
		return x * factor, y * factor, nil
	}
	if p.inSide.Unit != Meter {
		factor, err := UnitFactor(p.inSide.Unit, Meter)
		if err != nil {
			return 0, 0, err
		}
		x *= factor
		y *= factor
	}
	return p.inOp.Inverse(x, y)
}

// fromGeo runs the output forward and converts to the requested unit.
func (p *Pipeline) fromGeo(lon, lat float64) (x, y float64, err error) {
	if p.outSide.Proj.Code == proj.Geographic {
		if p.outSide.Unit == DMS {
			return PackDMS(lon * R2D), PackDMS(lat * R2D), nil
		}
		factor, err := UnitFactor(Radian, p.outSide.Unit)
		if err != nil {
			return 0, 0, err
		}
		return lon * factor, lat * factor, nil
	}
	x, y, err = p.outOp.Forward(lon, lat)
	if err != nil {
		return 0, 0, err
	}
	if p.outSide.Unit != Meter {
		factor, ferr := UnitFactor(Meter, p.outSide.Unit)
		if ferr != nil {
			return 0, 0, ferr
		}
		x *= factor
		y *= factor
	}
	return x, y, nil
}

// Input and Output expose the resolved sides (after datum parameter
// filling), mainly for logging.
func (p *Pipeline) Input() Side  { return p.inSide }
func (p *Pipeline) Output() Side { return p.outSide }
