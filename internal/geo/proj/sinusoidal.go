package proj

import "math"

// sinusoidal is the spherical sinusoidal projection. The MODIS land
// products use it with a sphere of radius 6371007.181 m.
type sinusoidal struct {
	r            float64 // sphere radius
	lonCenter    float64
	falseEasting float64
	falseNorthing float64
}

func newSinusoidal(cfg Config) (*sinusoidal, error) {
	a, _ := axes(cfg)
	return &sinusoidal{
		r:             a,
		lonCenter:     cfg.Params[4],
		falseEasting:  cfg.Params[6],
		falseNorthing: cfg.Params[7],
	}, nil
}

func (p *sinusoidal) Code() Code { return Sinusoidal }

func (p *sinusoidal) Forward(lon, lat float64) (float64, float64, error) {
	deltaLon := adjustLon(lon - p.lonCenter)
	x := p.r*deltaLon*math.Cos(lat) + p.falseEasting
	y := p.r*lat + p.falseNorthing
	return x, y, nil
}

func (p *sinusoidal) Inverse(x, y float64) (float64, float64, error) {
	x -= p.falseEasting
	y -= p.falseNorthing
	lat := y / p.r
	if math.Abs(lat) > halfPi {
		return 0, 0, ErrOutOfRange
	}
	if math.Abs(math.Abs(lat)-halfPi) <= epsln {
		return adjustLon(p.lonCenter), lat, nil
	}
	// Points outside the sinusoidal envelope have no geodetic image;
	// they come up routinely in the corner space of bounding tiles.
	deltaLon := x / (p.r * math.Cos(lat))
	if math.Abs(deltaLon) > math.Pi+epsln {
		return 0, 0, ErrOutOfRange
	}
	return adjustLon(p.lonCenter + deltaLon), lat, nil
}
