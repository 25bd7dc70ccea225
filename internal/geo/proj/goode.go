package proj

import "math"

// goode is the interrupted Goode homolosine projection (sphere). Twelve
// regions: sinusoidal lobes between 40d 44' 11.8" N and S, mollweide
// lobes poleward. Points that land in an interruption report ErrInBreak
// so callers can fill rather than fail.
type goode struct {
	r float64

	lonCenter [12]float64
	feast     [12]float64
}

// Region boundary constants, radians.
const (
	goodeLatSplit = 0.710987989993  // 40d 44' 11.8"
	goodeLonM40   = -0.698131700798 // -40 degrees
	goodeLonM100  = -1.74532925199  // -100 degrees
	goodeLonM20   = -0.349065850399 // -20 degrees
	goodeLon80    = 1.3962634016    // 80 degrees
	goodeYOffset  = 0.0528035274542 // mollweide lobe y offset
)

func newGoode(cfg Config) (*goode, error) {
	a, _ := axes(cfg)
	p := &goode{r: a}
	p.lonCenter = [12]float64{
		-1.74532925199,  // -100.0 degrees
		-1.74532925199,  // -100.0 degrees
		0.523598775598,  //   30.0 degrees
		0.523598775598,  //   30.0 degrees
		-2.79252680319,  // -160.0 degrees
		-1.0471975512,   //  -60.0 degrees
		-2.79252680319,  // -160.0 degrees
		-1.0471975512,   //  -60.0 degrees
		0.349065850399,  //   20.0 degrees
		2.44346095279,   //  140.0 degrees
		0.349065850399,  //   20.0 degrees
		2.44346095279,   //  140.0 degrees
	}
	for i, lc := range p.lonCenter {
		p.feast[i] = a * lc
	}
	return p, nil
}

func (p *goode) Code() Code { return Goode }

// sinusoidalRegion reports whether a region index is one of the
// sinusoidal (equatorial) lobes.
func sinusoidalRegion(region int) bool {
	switch region {
	case 1, 3, 4, 5, 8, 9:
		return true
	}
	return false
}

func (p *goode) Forward(lon, lat float64) (float64, float64, error) {
	var region int
	switch {
	case lat >= goodeLatSplit:
		if lon <= goodeLonM40 {
			region = 0
		} else {
			region = 2
		}
	case lat >= 0:
		if lon <= goodeLonM40 {
			region = 1
		} else {
			region = 3
		}
	case lat >= -goodeLatSplit:
		switch {
		case lon <= goodeLonM100:
			region = 4
		case lon <= goodeLonM20:
			region = 5
		case lon <= goodeLon80:
			region = 8
		default:
			region = 9
		}
	default:
		switch {
		case lon <= goodeLonM100:
			region = 6
		case lon <= goodeLonM20:
			region = 7
		case lon <= goodeLon80:
			region = 10
		default:
			region = 11
		}
	}

	if sinusoidalRegion(region) {
		deltaLon := adjustLon(lon - p.lonCenter[region])
		x := p.feast[region] + p.r*deltaLon*math.Cos(lat)
		y := p.r * lat
		return x, y, nil
	}

	deltaLon := adjustLon(lon - p.lonCenter[region])
	theta, err := molwTheta(lat)
	if err != nil {
		return 0, 0, err
	}
	if halfPi-math.Abs(lat) < epsln {
		deltaLon = 0
	}
	x := p.feast[region] + molwXScale*p.r*deltaLon*math.Cos(theta)
	y := p.r * (molwYScale*math.Sin(theta) - math.Copysign(goodeYOffset, lat))
	return x, y, nil
}

func (p *goode) Inverse(x, y float64) (float64, float64, error) {
	var region int
	switch {
	case y >= p.r*goodeLatSplit:
		if x <= p.r*goodeLonM40 {
			region = 0
		} else {
			region = 2
		}
	case y >= 0:
		if x <= p.r*goodeLonM40 {
			region = 1
		} else {
			region = 3
		}
	case y >= -p.r*goodeLatSplit:
		switch {
		case x <= p.r*goodeLonM100:
			region = 4
		case x <= p.r*goodeLonM20:
			region = 5
		case x <= p.r*goodeLon80:
			region = 8
		default:
			region = 9
		}
	default:
		switch {
		case x <= p.r*goodeLonM100:
			region = 6
		case x <= p.r*goodeLonM20:
			region = 7
		case x <= p.r*goodeLon80:
			region = 10
		default:
			region = 11
		}
	}
	x -= p.feast[region]

	var lon, lat float64
	if sinusoidalRegion(region) {
		lat = y / p.r
		if math.Abs(lat) > halfPi {
			return 0, 0, ErrOutOfRange
		}
		if math.Abs(math.Abs(lat)-halfPi) > epsln {
			lon = adjustLon(p.lonCenter[region] + x/(p.r*math.Cos(lat)))
		} else {
			lon = p.lonCenter[region]
		}
	} else {
		arg := (y + math.Copysign(goodeYOffset*p.r, y)) / (molwYScale * p.r)
		if math.Abs(arg) > 1.0 {
			return 0, 0, ErrInBreak
		}
		theta := math.Asin(arg)
		lon = p.lonCenter[region] + x/(molwXScale*p.r*math.Cos(theta))
		if lon < -(math.Pi + epsln) {
			return 0, 0, ErrInBreak
		}
		arg = (2.0*theta + math.Sin(2.0*theta)) / math.Pi
		if math.Abs(arg) > 1.0 {
			return 0, 0, ErrInBreak
		}
		lat = math.Asin(arg)
	}

	// roundoff can flip +-180 near the map edge
	if (x < 0 && math.Pi-lon < epsln) || (x > 0 && math.Pi+lon < epsln) {
		lon = -lon
	}

	// reject points in the interruptions of this region
	var inBreak bool
	switch region {
	case 0, 1:
		inBreak = lon < -(math.Pi+epsln) || lon > goodeLonM40
	case 2, 3:
		inBreak = lon < goodeLonM40 || lon > math.Pi+epsln
	case 4, 6:
		inBreak = lon < -(math.Pi+epsln) || lon > goodeLonM100
	case 5, 7:
		inBreak = lon < goodeLonM100 || lon > goodeLonM20
	case 8, 10:
		inBreak = lon < goodeLonM20 || lon > goodeLon80
	case 9, 11:
		inBreak = lon < goodeLon80 || lon > math.Pi+epsln
	}
	if inBreak {
		return 0, 0, ErrInBreak
	}
	return lon, lat, nil
}
