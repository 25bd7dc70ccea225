package proj

import "math"

// mercator is the Mercator projection (ellipsoid), with true scale at
// the latitude in parameter slot 5.
type mercator struct {
	a         float64
	e         float64
	lonCenter float64
	falseEasting  float64
	falseNorthing float64
	m1        float64 // scale constant at the latitude of true scale
}

func newMercator(cfg Config) (*mercator, error) {
	a, b := axes(cfg)
	p := &mercator{
		a:             a,
		lonCenter:     cfg.Params[4],
		falseEasting:  cfg.Params[6],
		falseNorthing: cfg.Params[7],
	}
	latTrue := cfg.Params[5]
	_, p.e = eccentricity(a, b)
	sin1, cos1 := math.Sincos(latTrue)
	p.m1 = msfnz(p.e, sin1, cos1)
	return p, nil
}

func (p *mercator) Code() Code { return Mercator }

func (p *mercator) Forward(lon, lat float64) (float64, float64, error) {
	if math.Abs(math.Abs(lat)-halfPi) <= epsln {
		// poles map to infinity
		return 0, 0, ErrOutOfRange
	}
	ts := tsfnz(p.e, lat, math.Sin(lat))
	x := p.falseEasting + p.a*p.m1*adjustLon(lon-p.lonCenter)
	y := p.falseNorthing - p.a*p.m1*math.Log(ts)
	return x, y, nil
}

func (p *mercator) Inverse(x, y float64) (float64, float64, error) {
	x -= p.falseEasting
	y -= p.falseNorthing
	ts := math.Exp(-y / (p.a * p.m1))
	lat, err := phi2z(p.e, ts)
	if err != nil {
		return 0, 0, err
	}
	lon := adjustLon(p.lonCenter + x/(p.a*p.m1))
	return lon, lat, nil
}
