package proj

import "math"

// polarStereo is the polar stereographic projection (ellipsoid). The
// pole is selected by the sign of the true-scale latitude.
type polarStereo struct {
	a         float64
	e         float64
	lonCenter float64 // longitude down below the pole of the map
	falseEasting  float64
	falseNorthing float64

	fac float64 // +1 north pole, -1 south pole
	ind bool    // true when the true-scale latitude is off the pole
	mcs float64 // small m at the true-scale latitude
	tcs float64 // small t at the true-scale latitude
	e4  float64
}

func newPolarStereo(cfg Config) (*polarStereo, error) {
	a, b := axes(cfg)
	p := &polarStereo{
		a:             a,
		lonCenter:     cfg.Params[4],
		falseEasting:  cfg.Params[6],
		falseNorthing: cfg.Params[7],
	}
	_, p.e = eccentricity(a, b)
	latTrue := cfg.Params[5]

	p.fac = 1.0
	if latTrue < 0 {
		p.fac = -1.0
	}
	p.e4 = math.Sqrt(math.Pow(1.0+p.e, 1.0+p.e) * math.Pow(1.0-p.e, 1.0-p.e))
	if math.Abs(math.Abs(latTrue)-halfPi) > epsln {
		p.ind = true
		con1 := p.fac * latTrue
		sinphi, cosphi := math.Sincos(con1)
		p.mcs = msfnz(p.e, sinphi, cosphi)
		p.tcs = tsfnz(p.e, con1, sinphi)
	}
	return p, nil
}

func (p *polarStereo) Code() Code { return PolarStereo }

func (p *polarStereo) Forward(lon, lat float64) (float64, float64, error) {
	con1 := p.fac * adjustLon(lon-p.lonCenter)
	con2 := p.fac * lat
	if math.Abs(math.Abs(lat)-halfPi) <= epsln && p.fac*lat < 0 {
		// opposite pole has no finite image
		return 0, 0, ErrOutOfRange
	}
	sinphi := math.Sin(con2)
	ts := tsfnz(p.e, con2, sinphi)
	var rh float64
	if p.ind {
		rh = p.a * p.mcs * ts / p.tcs
	} else {
		rh = 2.0 * p.a * ts / p.e4
	}
	x := p.fac*rh*math.Sin(con1) + p.falseEasting
	y := -p.fac*rh*math.Cos(con1) + p.falseNorthing
	return x, y, nil
}

func (p *polarStereo) Inverse(x, y float64) (float64, float64, error) {
	x = (x - p.falseEasting) * p.fac
	y = (y - p.falseNorthing) * p.fac
	rh := math.Sqrt(x*x + y*y)
	var ts float64
	if p.ind {
		ts = rh * p.tcs / (p.mcs * p.a)
	} else {
		ts = rh * p.e4 / (2.0 * p.a)
	}
	phi, err := phi2z(p.e, ts)
	if err != nil {
		return 0, 0, err
	}
	lat := p.fac * phi
	var lon float64
	if rh == 0 {
		lon = p.fac * p.lonCenter
	} else {
		lon = adjustLon(p.fac*math.Atan2(x, -y) + p.lonCenter)
	}
	return adjustLon(lon), lat, nil
}
