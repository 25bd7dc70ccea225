package proj

import "math"

// equirect is the spherical equirectangular projection with true scale
// at the latitude in parameter slot 5.
type equirect struct {
	r         float64
	lonCenter float64
	latTrue   float64
	falseEasting  float64
	falseNorthing float64
}

func newEquirect(cfg Config) (*equirect, error) {
	a, _ := axes(cfg)
	return &equirect{
		r:             a,
		lonCenter:     cfg.Params[4],
		latTrue:       cfg.Params[5],
		falseEasting:  cfg.Params[6],
		falseNorthing: cfg.Params[7],
	}, nil
}

func (p *equirect) Code() Code { return Equirect }

func (p *equirect) Forward(lon, lat float64) (float64, float64, error) {
	deltaLon := adjustLon(lon - p.lonCenter)
	x := p.falseEasting + p.r*deltaLon*math.Cos(p.latTrue)
	y := p.falseNorthing + p.r*lat
	return x, y, nil
}

func (p *equirect) Inverse(x, y float64) (float64, float64, error) {
	x -= p.falseEasting
	y -= p.falseNorthing
	lat := y / p.r
	if math.Abs(lat) > halfPi {
		return 0, 0, ErrOutOfRange
	}
	lon := adjustLon(p.lonCenter + x/(p.r*math.Cos(p.latTrue)))
	return lon, lat, nil
}
