package proj

import (
	"fmt"
	"math"
)

// transMerc is the transverse Mercator projection, ellipsoidal series
// form with a spherical fast path, shared by the TM and UTM codes.
type transMerc struct {
	code Code

	a           float64
	scaleFactor float64
	lonCenter   float64
	latOrigin   float64
	falseEasting  float64
	falseNorthing float64

	es     float64 // eccentricity squared
	esp    float64 // second eccentricity squared
	ml0    float64 // arc length from the equator to the origin latitude
	e0, e1, e2, e3 float64
	sphere bool
}

func newTransMerc(cfg Config) (*transMerc, error) {
	a, b := axes(cfg)
	p := &transMerc{
		code:          TransverseMercator,
		a:             a,
		scaleFactor:   cfg.Params[2],
		lonCenter:     cfg.Params[4],
		latOrigin:     cfg.Params[5],
		falseEasting:  cfg.Params[6],
		falseNorthing: cfg.Params[7],
	}
	if p.scaleFactor <= 0 {
		p.scaleFactor = 1.0
	}
	p.init(a, b)
	return p, nil
}

// DeriveUTMZone returns the UTM zone for a longitude in radians.
func DeriveUTMZone(lon float64) int {
	zone := int(math.Floor((lon*R2D+180.0)/6.0)) + 1
	// roundoff at the +-180 edges must stay inside the zone range
	if zone < 1 {
		zone = 1
	} else if zone > 60 {
		zone = 60
	}
	return zone
}

func newUTM(cfg Config) (*transMerc, error) {
	zone := cfg.Zone
	if zone == 0 {
		// zone 0 means "derive from the central meridian"
		zone = DeriveUTMZone(cfg.Params[0])
		if cfg.Params[1] < 0 {
			zone = -zone
		}
	}
	if az := zone; az < -60 || az > 60 || az == 0 {
		return nil, fmt.Errorf("proj: illegal UTM zone %d", zone)
	}
	// UTM always takes its axes from the spheroid code
	sp := SpheroidByCode(cfg.Spheroid)
	p := &transMerc{
		code:          UTM,
		a:             sp.SemiMajor,
		scaleFactor:   0.9996,
		latOrigin:     0,
		falseEasting:  500000.0,
		falseNorthing: 0,
	}
	az := zone
	if az < 0 {
		az = -az
		p.falseNorthing = 10000000.0
	}
	p.lonCenter = float64(6*az-183) * D2R
	p.init(sp.SemiMajor, sp.SemiMinor)
	return p, nil
}

func (p *transMerc) init(a, b float64) {
	p.es = 1.0 - (b*b)/(a*a)
	p.e0 = e0fn(p.es)
	p.e1 = e1fn(p.es)
	p.e2 = e2fn(p.es)
	p.e3 = e3fn(p.es)
	p.ml0 = a * mlfn(p.e0, p.e1, p.e2, p.e3, p.latOrigin)
	p.esp = p.es / (1.0 - p.es)
	p.sphere = p.es < epsln
}

func (p *transMerc) Code() Code { return p.code }

func (p *transMerc) Forward(lon, lat float64) (float64, float64, error) {
	deltaLon := adjustLon(lon - p.lonCenter)
	sinPhi, cosPhi := math.Sincos(lat)

	if p.sphere {
		b := cosPhi * math.Sin(deltaLon)
		if math.Abs(math.Abs(b)-1.0) < epsln {
			// point projects into infinity
			return 0, 0, ErrOutOfRange
		}
		x := 0.5*p.a*p.scaleFactor*math.Log((1.0+b)/(1.0-b)) + p.falseEasting
		con := math.Acos(cosPhi * math.Cos(deltaLon) / math.Sqrt(1.0-b*b))
		if lat < 0 {
			con = -con
		}
		y := p.a*p.scaleFactor*(con-p.latOrigin) + p.falseNorthing
		return x, y, nil
	}

	al := cosPhi * deltaLon
	als := al * al
	c := p.esp * cosPhi * cosPhi
	tq := math.Tan(lat)
	t := tq * tq
	con := 1.0 - p.es*sinPhi*sinPhi
	n := p.a / math.Sqrt(con)
	ml := p.a * mlfn(p.e0, p.e1, p.e2, p.e3, lat)

	x := p.scaleFactor*n*al*(1.0+als/6.0*(1.0-t+c+
		als/20.0*(5.0-18.0*t+t*t+72.0*c-58.0*p.esp))) + p.falseEasting
	y := p.scaleFactor*(ml-p.ml0+n*tq*(als*(0.5+als/24.0*
		(5.0-t+9.0*c+4.0*c*c+als/30.0*(61.0-58.0*t+t*t+
			600.0*c-330.0*p.esp))))) + p.falseNorthing
	return x, y, nil
}

func (p *transMerc) Inverse(x, y float64) (float64, float64, error) {
	x -= p.falseEasting
	y -= p.falseNorthing

	if p.sphere {
		f := math.Exp(x / (p.a * p.scaleFactor))
		g := 0.5 * (f - 1.0/f)
		temp := p.latOrigin + y/(p.a*p.scaleFactor)
		h := math.Cos(temp)
		con := math.Sqrt((1.0 - h*h) / (1.0 + g*g))
		lat := asinz(con)
		if temp < 0 {
			lat = -lat
		}
		var lon float64
		if g == 0 && h == 0 {
			lon = p.lonCenter
		} else {
			lon = adjustLon(math.Atan2(g, h) + p.lonCenter)
		}
		return lon, lat, nil
	}

	con := (p.ml0 + y/p.scaleFactor) / p.a
	phi := con
	converged := false
	for i := 0; i < maxLatIter; i++ {
		deltaPhi := ((con+p.e1*math.Sin(2.0*phi)-p.e2*math.Sin(4.0*phi)+
			p.e3*math.Sin(6.0*phi))/p.e0 - phi)
		phi += deltaPhi
		if math.Abs(deltaPhi) <= epsln2 {
			converged = true
			break
		}
	}
	if !converged {
		return 0, 0, ErrOutOfRange
	}
	if math.Abs(phi) >= halfPi {
		lat := halfPi
		if y < 0 {
			lat = -halfPi
		}
		return p.lonCenter, lat, nil
	}

	sinPhi, cosPhi := math.Sincos(phi)
	c := p.esp * cosPhi * cosPhi
	cs := c * c
	tq := math.Tan(phi)
	t := tq * tq
	ts := t * t
	n := p.a / math.Sqrt(1.0-p.es*sinPhi*sinPhi)
	r := n * (1.0 - p.es) / (1.0 - p.es*sinPhi*sinPhi)
	d := x / (n * p.scaleFactor)
	ds := d * d

	lat := phi - (n*tq*ds/r)*(0.5-ds/24.0*(5.0+3.0*t+10.0*c-4.0*cs-
		9.0*p.esp-ds/30.0*(61.0+90.0*t+298.0*c+45.0*ts-
		252.0*p.esp-3.0*cs)))
	lon := adjustLon(p.lonCenter + d*(1.0-ds/6.0*(1.0+2.0*t+c-
		ds/20.0*(5.0-2.0*c+28.0*t-3.0*cs+8.0*p.esp+24.0*ts)))/cosPhi)
	return lon, lat, nil
}
