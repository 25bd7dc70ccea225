package datum

import "math"

// Convergence bounds of the geocentric-to-geodetic solve.
const (
	heightTol = 0.002   // meters
	latTol    = 1.0e-10 // radians
)

// molodensky shifts a lon/lat (radians) from the in ellipsoid/frame to
// the out ellipsoid/frame through geocentric coordinates at h=0.
// pars: [dx dy dz aIn bIn aOut bOut].
func molodensky(lonIn, latIn float64, pars [7]float64) (lonOut, latOut float64) {
	// Bursa-Wolf with zero rotation and scale.
	x, y, z := geodeticToGeocentric(pars[3], pars[4], latIn, lonIn)
	xp := x + pars[0]
	yp := y + pars[1]
	zp := z + pars[2]
	latOut, lonOut = geocentricToGeodetic(pars[5], pars[6], xp, yp, zp)
	return lonOut, latOut
}

// geodeticToGeocentric converts lat/lon on the (a, b) ellipsoid at zero
// height to earth-centered cartesian coordinates.
func geodeticToGeocentric(a, b, phi, lam float64) (x, y, z float64) {
	e2 := 1.0 - (b*b)/(a*a)
	sinp, cosp := math.Sincos(phi)
	sinl, cosl := math.Sincos(lam)
	rn := a / math.Sqrt(1.0-e2*sinp*sinp)
	x = rn * cosp * cosl
	y = rn * cosp * sinl
	z = rn * (1.0 - e2) * sinp
	return x, y, z
}

// geocentricToGeodetic inverts geodeticToGeocentric on the (a, b)
// ellipsoid, iterating latitude and height jointly until the height
// correction is under 2 mm or the latitude correction under 1e-10 rad.
func geocentricToGeodetic(a, b, x, y, z float64) (phi, lam float64) {
	e2 := 1.0 - (b*b)/(a*a)
	r := math.Sqrt(x*x + y*y)
	lam = math.Atan2(y, x)

	// starting guess is the exact latitude for a point at zero height
	phi = math.Atan2(z, r*(1.0-e2))
	h := 0.0
	for {
		sinp, cosp := math.Sincos(phi)
		den2 := 1.0 - e2*sinp*sinp
		den := math.Sqrt(den2)

		drdp := a*sinp/den*(e2*cosp*cosp/den2-1.0) - h*sinp
		dzdp := a*(1.0-e2)*cosp/den*(1.0+e2*sinp*sinp/den2) + h*cosp
		rc := a*cosp/den + h*cosp
		zc := a*(1.0-e2)*sinp/den + h*sinp

		scalar := 1.0 / (drdp*sinp - cosp*dzdp)
		dphi := scalar * (sinp*(r-rc) - cosp*(z-zc))
		dh := scalar * (drdp*(z-zc) - dzdp*(r-rc))
		phi += dphi
		h += dh

		if math.Abs(dh) <= heightTol || math.Abs(dphi) <= latTol {
			break
		}
	}
	return phi, lam
}

// molodenskyVia shifts between two arbitrary datums through WGS-84.
func molodenskyVia(lon, lat float64, in, out Definition) (float64, float64) {
	if in.ID != WGS84 {
		lon, lat = molodensky(lon, lat, [7]float64{
			in.DX, in.DY, in.DZ,
			in.SemiMajor, in.SemiMinor,
			WGS84SemiMajor, WGS84SemiMinor,
		})
	}
	if out.ID != WGS84 {
		lon, lat = molodensky(lon, lat, [7]float64{
			-out.DX, -out.DY, -out.DZ,
			WGS84SemiMajor, WGS84SemiMinor,
			out.SemiMajor, out.SemiMinor,
		})
	}
	return lon, lat
}
