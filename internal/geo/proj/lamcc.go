package proj

import (
	"fmt"
	"math"
)

// lambertCC is the Lambert conformal conic projection (ellipsoid).
type lambertCC struct {
	a         float64
	e         float64
	lonCenter float64
	falseEasting  float64
	falseNorthing float64

	ns    float64 // ratio of angle between meridians
	f0    float64 // Snyder's F constant
	rh    float64 // radius of the parallel at the origin latitude
}

func newLambertCC(cfg Config) (*lambertCC, error) {
	a, b := axes(cfg)
	lat1 := cfg.Params[2]
	lat2 := cfg.Params[3]
	if math.Abs(lat1+lat2) < epsln {
		return nil, fmt.Errorf("proj: lcc standard parallels on opposite sides of the equator")
	}
	p := &lambertCC{
		a:             a,
		lonCenter:     cfg.Params[4],
		falseEasting:  cfg.Params[6],
		falseNorthing: cfg.Params[7],
	}
	latOrigin := cfg.Params[5]
	_, p.e = eccentricity(a, b)

	sin1, cos1 := math.Sincos(lat1)
	ms1 := msfnz(p.e, sin1, cos1)
	ts1 := tsfnz(p.e, lat1, sin1)
	sin2, cos2 := math.Sincos(lat2)
	ms2 := msfnz(p.e, sin2, cos2)
	ts2 := tsfnz(p.e, lat2, sin2)
	ts0 := tsfnz(p.e, latOrigin, math.Sin(latOrigin))

	if math.Abs(lat1-lat2) > epsln {
		p.ns = math.Log(ms1/ms2) / math.Log(ts1/ts2)
	} else {
		p.ns = sin1
	}
	p.f0 = ms1 / (p.ns * math.Pow(ts1, p.ns))
	p.rh = p.a * p.f0 * math.Pow(ts0, p.ns)
	return p, nil
}

func (p *lambertCC) Code() Code { return LambertCC }

func (p *lambertCC) Forward(lon, lat float64) (float64, float64, error) {
	var rh1 float64
	con := math.Abs(math.Abs(lat) - halfPi)
	if con > epsln {
		ts := tsfnz(p.e, lat, math.Sin(lat))
		rh1 = p.a * p.f0 * math.Pow(ts, p.ns)
	} else {
		con = lat * p.ns
		if con <= 0 {
			return 0, 0, ErrOutOfRange
		}
		rh1 = 0
	}
	theta := p.ns * adjustLon(lon-p.lonCenter)
	x := rh1*math.Sin(theta) + p.falseEasting
	y := p.rh - rh1*math.Cos(theta) + p.falseNorthing
	return x, y, nil
}

func (p *lambertCC) Inverse(x, y float64) (float64, float64, error) {
	x -= p.falseEasting
	y = p.rh - y + p.falseNorthing
	var rh1, con float64
	if p.ns > 0 {
		rh1 = math.Sqrt(x*x + y*y)
		con = 1.0
	} else {
		rh1 = -math.Sqrt(x*x + y*y)
		con = -1.0
	}
	theta := 0.0
	if rh1 != 0 {
		theta = math.Atan2(con*x, con*y)
	}
	var lat float64
	if rh1 != 0 || p.ns > 0 {
		con = 1.0 / p.ns
		ts := math.Pow(rh1/(p.a*p.f0), con)
		var err error
		lat, err = phi2z(p.e, ts)
		if err != nil {
			return 0, 0, err
		}
	} else {
		lat = -halfPi
	}
	lon := adjustLon(theta/p.ns + p.lonCenter)
	return lon, lat, nil
}
