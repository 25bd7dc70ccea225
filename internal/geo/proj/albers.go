package proj

import (
	"fmt"
	"math"
)

// albers is the Albers conical equal-area projection (ellipsoid).
type albers struct {
	a         float64
	e, e2, e3 float64
	lonCenter float64
	latOrigin float64
	falseEasting  float64
	falseNorthing float64

	ns0 float64 // ratio used between meridians (cone constant n)
	c   float64 // Snyder's C constant
	rh  float64 // radius of the parallel at the origin latitude
}

func newAlbers(cfg Config) (*albers, error) {
	a, b := axes(cfg)
	lat1 := cfg.Params[2]
	lat2 := cfg.Params[3]
	if math.Abs(lat1+lat2) < epsln {
		return nil, fmt.Errorf("proj: albers standard parallels on opposite sides of the equator")
	}
	p := &albers{
		a:             a,
		lonCenter:     cfg.Params[4],
		latOrigin:     cfg.Params[5],
		falseEasting:  cfg.Params[6],
		falseNorthing: cfg.Params[7],
	}
	p.e2, p.e3 = eccentricity(a, b)
	p.e = p.e3

	sinPo, cosPo := math.Sincos(lat1)
	con := sinPo
	ms1 := msfnz(p.e3, sinPo, cosPo)
	qs1 := qsfnz(p.e3, sinPo)

	sinPo, cosPo = math.Sincos(lat2)
	ms2 := msfnz(p.e3, sinPo, cosPo)
	qs2 := qsfnz(p.e3, sinPo)

	sinPo = math.Sin(p.latOrigin)
	qs0 := qsfnz(p.e3, sinPo)

	if math.Abs(lat1-lat2) > epsln {
		p.ns0 = (ms1*ms1 - ms2*ms2) / (qs2 - qs1)
	} else {
		p.ns0 = con
	}
	p.c = ms1*ms1 + p.ns0*qs1
	p.rh = p.a * math.Sqrt(p.c-p.ns0*qs0) / p.ns0
	return p, nil
}

func (p *albers) Code() Code { return AlbersEqArea }

func (p *albers) Forward(lon, lat float64) (float64, float64, error) {
	sinPhi := math.Sin(lat)
	qs := qsfnz(p.e3, sinPhi)
	con := p.c - p.ns0*qs
	if con < 0 {
		return 0, 0, ErrOutOfRange
	}
	rh1 := p.a * math.Sqrt(con) / p.ns0
	theta := p.ns0 * adjustLon(lon-p.lonCenter)
	x := rh1*math.Sin(theta) + p.falseEasting
	y := p.rh - rh1*math.Cos(theta) + p.falseNorthing
	return x, y, nil
}

func (p *albers) Inverse(x, y float64) (float64, float64, error) {
	x -= p.falseEasting
	y = p.rh - y + p.falseNorthing
	var rh1, con float64
	if p.ns0 >= 0 {
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
	con = rh1 * p.ns0 / p.a
	qs := (p.c - con*con) / p.ns0
	var lat float64
	if p.e3 >= 1e-10 {
		con = 1.0 - 0.5*(1.0-p.e2)*math.Log((1.0-p.e3)/(1.0+p.e3))/p.e3
		if math.Abs(math.Abs(con)-math.Abs(qs)) > 1e-7 {
			var err error
			lat, err = phi1z(p.e3, qs)
			if err != nil {
				return 0, 0, err
			}
		} else {
			if qs >= 0 {
				lat = halfPi
			} else {
				lat = -halfPi
			}
		}
	} else {
		var err error
		lat, err = phi1z(p.e3, qs)
		if err != nil {
			return 0, 0, err
		}
	}
	lon := adjustLon(theta/p.ns0 + p.lonCenter)
	return lon, lat, nil
}
