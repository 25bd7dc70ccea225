package proj

import "math"

// hammer is the spherical Hammer projection.
type hammer struct {
	r         float64
	lonCenter float64
	falseEasting  float64
	falseNorthing float64
}

func newHammer(cfg Config) (*hammer, error) {
	a, _ := axes(cfg)
	return &hammer{
		r:             a,
		lonCenter:     cfg.Params[4],
		falseEasting:  cfg.Params[6],
		falseNorthing: cfg.Params[7],
	}, nil
}

func (p *hammer) Code() Code { return Hammer }

func (p *hammer) Forward(lon, lat float64) (float64, float64, error) {
	deltaLon := adjustLon(lon - p.lonCenter)
	fac := p.r * 1.414213562 / math.Sqrt(1.0+math.Cos(lat)*math.Cos(deltaLon/2.0))
	x := p.falseEasting + fac*2.0*math.Cos(lat)*math.Sin(deltaLon/2.0)
	y := p.falseNorthing + fac*math.Sin(lat)
	return x, y, nil
}

func (p *hammer) Inverse(x, y float64) (float64, float64, error) {
	x -= p.falseEasting
	y -= p.falseNorthing
	con := 4.0*p.r*p.r - (x*x)/4.0 - y*y
	if con < 0 {
		return 0, 0, ErrOutOfRange
	}
	fac := math.Sqrt(con) / 2.0
	lon := adjustLon(p.lonCenter + 2.0*math.Atan2(fac*x, 2.0*p.r*p.r-(x*x)/4.0-y*y))
	lat := asinz(y * fac / p.r / p.r)
	return lon, lat, nil
}
