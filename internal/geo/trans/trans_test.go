package trans

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/regrid/internal/geo/datum"
	"github.com/banshee-data/regrid/internal/geo/proj"
)

// ---------------------------------------------------------------------------
// DMS packing
// ---------------------------------------------------------------------------

func TestDMSPackUnpack(t *testing.T) {
	t.Parallel()

	// 45d 30' 15.5" packs to 45030015.5 and is 45.50430555... degrees
	packed := PackDMS(45.0 + 30.0/60.0 + 15.5/3600.0)
	assert.InDelta(t, 45030015.5, packed, 1e-6)

	degrees, err := UnpackDMS(45030015.5, "LAT")
	require.NoError(t, err)
	assert.InDelta(t, 45.504305555555, degrees, 1e-9)

	// sign is preserved both ways
	assert.InDelta(t, -45030015.5, PackDMS(-45.504305555555556), 1e-6)
	neg, err := UnpackDMS(-45030015.5, "LAT")
	require.NoError(t, err)
	assert.InDelta(t, -45.504305555555, neg, 1e-9)
}

func TestDMSValidation(t *testing.T) {
	t.Parallel()

	assert.NoError(t, CheckDMS(179059059.99))
	assert.Error(t, CheckDMS(181000000.0), "degrees over 180")
	assert.Error(t, CheckDMS(45061000.0), "minutes over 59")
	assert.Error(t, CheckDMS(45030061.0), "seconds over 60")

	_, err := UnpackDMS(95000000.0, "LAT")
	assert.ErrorIs(t, err, ErrInvalidAngle, "latitude over 90")
	_, err = UnpackDMS(95000000.0, "LON")
	assert.NoError(t, err)
}

// ---------------------------------------------------------------------------
// Unit factors
// ---------------------------------------------------------------------------

func TestUnitFactor(t *testing.T) {
	t.Parallel()

	f, err := UnitFactor(Degree, Radian)
	require.NoError(t, err)
	assert.InDelta(t, math.Pi/180.0, f, 1e-12)

	f, err = UnitFactor(Second, Degree)
	require.NoError(t, err)
	assert.InDelta(t, 1.0/3600.0, f, 1e-12)

	f, err = UnitFactor(Feet, Meter)
	require.NoError(t, err)
	assert.InDelta(t, 0.3048006096012192, f, 1e-15)

	_, err = UnitFactor(Degree, Meter)
	assert.Error(t, err, "angular and linear units do not mix")
	_, err = UnitFactor(DMS, Degree)
	assert.Error(t, err, "DMS has no factor")
}

// ---------------------------------------------------------------------------
// Pipeline composition
// ---------------------------------------------------------------------------

func geoSide(unit Unit) Side {
	return Side{
		Proj:  proj.Config{Code: proj.Geographic, Spheroid: -1},
		Unit:  unit,
		Datum: datum.NoDatum,
	}
}

func sinSide() Side {
	cfg := proj.Config{Code: proj.Sinusoidal, Spheroid: -1}
	cfg.Params[0] = 6371007.181
	return Side{Proj: cfg, Unit: Meter, Datum: datum.NoDatum}
}

func TestPipelineGeoToSinusoidalRoundTrip(t *testing.T) {
	t.Parallel()
	fwd, err := New(geoSide(Degree), sinSide(), Options{})
	require.NoError(t, err)
	inv, err := New(sinSide(), geoSide(Degree), Options{})
	require.NoError(t, err)

	x, y, err := fwd.Point(-93.0, 41.5)
	require.NoError(t, err)
	lon, lat, err := inv.Point(x, y)
	require.NoError(t, err)
	assert.InDelta(t, -93.0, lon, 1e-9)
	assert.InDelta(t, 41.5, lat, 1e-9)
}

func TestPipelineGeoDegreeToDMS(t *testing.T) {
	t.Parallel()
	p, err := New(geoSide(Degree), geoSide(DMS), Options{})
	require.NoError(t, err)
	x, y, err := p.Point(-100.25, 45.504305555555556)
	require.NoError(t, err)
	assert.InDelta(t, -100015000.0, x, 1e-5)
	assert.InDelta(t, 45030015.5, y, 1e-5)
}

func TestPipelineFeetOutput(t *testing.T) {
	t.Parallel()
	out := sinSide()
	out.Unit = Feet
	p, err := New(geoSide(Degree), out, Options{})
	require.NoError(t, err)
	xFeet, _, err := p.Point(-93.0, 0.0)
	require.NoError(t, err)

	pm, err := New(geoSide(Degree), sinSide(), Options{})
	require.NoError(t, err)
	xMeters, _, err := pm.Point(-93.0, 0.0)
	require.NoError(t, err)

	assert.InEpsilon(t, xMeters/0.3048006096012192, xFeet, 1e-12)
}

func TestPipelineRecoverableErrorsPassThrough(t *testing.T) {
	t.Parallel()
	p, err := New(sinSide(), geoSide(Degree), Options{})
	require.NoError(t, err)
	_, _, err = p.Point(1.9e7, 6371007.181*(60.0*D2R))
	assert.ErrorIs(t, err, proj.ErrOutOfRange)
}

func TestPipelineRejectsBadUnits(t *testing.T) {
	t.Parallel()
	bad := sinSide()
	bad.Unit = Degree
	_, err := New(bad, geoSide(Degree), Options{})
	assert.Error(t, err)

	badGeo := geoSide(Meter)
	_, err = New(badGeo, sinSide(), Options{})
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// Datum path and parameter checking
// ---------------------------------------------------------------------------

func wgs84Side(code proj.Code) Side {
	cfg := proj.Config{Code: code, Spheroid: -1}
	cfg.Params[0] = 6378137.0
	cfg.Params[1] = 6356752.3142
	cfg.Params[4] = -100 * D2R
	cfg.Params[5] = 45 * D2R
	return Side{Proj: cfg, Unit: Meter, Datum: datum.WGS84}
}

func TestPipelineDatumShift(t *testing.T) {
	t.Parallel()
	in := geoSide(Degree)
	in.Datum = datum.WGS72
	out := wgs84Side(proj.LambertAz)

	p, err := New(in, out, Options{})
	require.NoError(t, err)
	x, y, err := p.Point(-100.0, 40.0)
	require.NoError(t, err)

	// the WGS72 -> WGS84 shift is meters, not kilometers, of change
	// against the no-shift result
	pd, err := New(geoSide(Degree), func() Side {
		s := wgs84Side(proj.LambertAz)
		s.Datum = datum.NoDatum
		return s
	}(), Options{})
	require.NoError(t, err)
	x0, y0, err := pd.Point(-100.0, 40.0)
	require.NoError(t, err)

	assert.InDelta(t, x0, x, 50.0)
	assert.InDelta(t, y0, y, 50.0)
	assert.True(t, math.Abs(x-x0) > 1e-6 || math.Abs(y-y0) > 1e-6)
}

func TestCheckParamsStrictVersusLenient(t *testing.T) {
	t.Parallel()
	wgs84, err := datum.Lookup(datum.WGS84)
	require.NoError(t, err)

	// a semi-major axis matching neither the datum nor the MODIS
	// sphere is always rejected
	var params [proj.NumParams]float64
	params[0] = 6370000.0
	_, err = checkParams(wgs84, params, false)
	assert.Error(t, err)
	_, err = checkParams(wgs84, params, true)
	assert.Error(t, err)

	// a sphere (zero semi-minor) whose radius is the datum semi-major
	// axis disagrees with the semi-minor: strict rejects, lenient
	// continues
	params[0] = wgs84.SemiMajor
	params[1] = 0
	_, err = checkParams(wgs84, params, false)
	assert.Error(t, err)
	fill, err := checkParams(wgs84, params, true)
	require.NoError(t, err)
	assert.True(t, fill)

	// the MODIS sphere is always accepted
	params[0] = 6371007.181
	_, err = checkParams(wgs84, params, false)
	assert.NoError(t, err)

	// matching axes pass strict
	params[0] = wgs84.SemiMajor
	params[1] = wgs84.SemiMinor
	_, err = checkParams(wgs84, params, false)
	assert.NoError(t, err)

	// eccentricity-squared form: matched value suppresses refill
	flat := 1.0 / wgs84.RecipFlat
	params[1] = 2.0*flat - flat*flat
	fill, err = checkParams(wgs84, params, false)
	require.NoError(t, err)
	assert.False(t, fill)
}
