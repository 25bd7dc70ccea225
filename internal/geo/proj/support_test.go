package proj

import (
	"math"
	"testing"

	"github.com/banshee-data/regrid/internal/testutil"
)

func TestAdjustLon(t *testing.T) {
	t.Parallel()
	testutil.AssertInDelta(t, adjustLon(3*math.Pi), math.Pi, 1e-12)
	testutil.AssertInDelta(t, adjustLon(-3*math.Pi), -math.Pi, 1e-12)
	testutil.AssertInDelta(t, adjustLon(0.5), 0.5, 0)
	testutil.AssertInDelta(t, adjustLon(math.Pi+0.1), -math.Pi+0.1, 1e-12)
}

func TestAsinzClamps(t *testing.T) {
	t.Parallel()
	testutil.AssertInDelta(t, asinz(1.0000001), halfPi, 0)
	testutil.AssertInDelta(t, asinz(-1.0000001), -halfPi, 0)
	testutil.AssertInDelta(t, asinz(0.5), math.Asin(0.5), 0)
}

// phi2z inverts the conformal latitude function: t = tsfnz(phi) must
// give back phi.
func TestPhi2zInvertsTsfnz(t *testing.T) {
	t.Parallel()
	e := 0.0818191908426 // WGS84 eccentricity
	for _, phiDeg := range []float64{-80, -45, 0.01, 30, 60, 85} {
		phi := testutil.Deg(phiDeg)
		ts := tsfnz(e, phi, math.Sin(phi))
		got, err := phi2z(e, ts)
		testutil.AssertNoError(t, err)
		testutil.AssertInDelta(t, got, phi, 1e-10)
	}
}

// phi1z inverts the authalic latitude function via qsfnz.
func TestPhi1zInvertsQsfnz(t *testing.T) {
	t.Parallel()
	e := 0.0818191908426
	for _, phiDeg := range []float64{-75, -20, 10, 45, 80} {
		phi := testutil.Deg(phiDeg)
		qs := qsfnz(e, math.Sin(phi))
		got, err := phi1z(e, qs)
		testutil.AssertNoError(t, err)
		testutil.AssertInDelta(t, got, phi, 1e-10)
	}
}

func TestMeridionalArcAtEquatorIsZero(t *testing.T) {
	t.Parallel()
	es := 0.00669437999014
	e0 := e0fn(es)
	e1 := e1fn(es)
	e2 := e2fn(es)
	e3 := e3fn(es)
	testutil.AssertInDelta(t, mlfn(e0, e1, e2, e3, 0), 0, 1e-15)
	// one degree of arc is about 110.6 km on the WGS84 ellipsoid
	arc := 6378137.0 * mlfn(e0, e1, e2, e3, testutil.Deg(1))
	testutil.AssertInDelta(t, arc, 110574.0, 50.0)
}
