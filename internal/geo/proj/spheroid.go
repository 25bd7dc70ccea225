package proj

// Spheroid is one entry of the standard GCTP spheroid table.
type Spheroid struct {
	Code      int
	Name      string
	SemiMajor float64
	SemiMinor float64
}

// spheroids lists the 20 GCTP reference spheroids. Code 19 is the
// authalic sphere; the MODIS products use a sphere of radius
// 6371007.181 m carried in the parameter block instead.
var spheroids = []Spheroid{
	{0, "Clarke 1866", 6378206.4, 6356583.8},
	{1, "Clarke 1880", 6378249.145, 6356514.86955},
	{2, "Bessel", 6377397.155, 6356078.96284},
	{3, "International 1967", 6378157.5, 6356772.2},
	{4, "International 1909", 6378388.0, 6356911.94613},
	{5, "WGS 72", 6378135.0, 6356750.519915},
	{6, "Everest", 6377276.3452, 6356075.4133},
	{7, "WGS 66", 6378145.0, 6356759.769356},
	{8, "GRS 1980", 6378137.0, 6356752.31414},
	{9, "Airy", 6377563.396, 6356256.91},
	{10, "Modified Everest", 6377304.063, 6356103.039},
	{11, "Modified Airy", 6377340.189, 6356034.448},
	{12, "WGS 84", 6378137.0, 6356752.314245},
	{13, "Southeast Asia", 6378155.0, 6356773.3205},
	{14, "Australian National", 6378160.0, 6356774.719},
	{15, "Krassovsky", 6378245.0, 6356863.0188},
	{16, "Hough", 6378270.0, 6356794.343479},
	{17, "Mercury 1960", 6378166.0, 6356784.283666},
	{18, "Modified Mercury 1968", 6378150.0, 6356768.337303},
	{19, "Sphere of Radius 6370997 meters", 6370997.0, 6370997.0},
}

// SpheroidByCode returns the table entry for code, falling back to
// Clarke 1866 for out-of-range codes the way GCTP's sphdz does.
func SpheroidByCode(code int) Spheroid {
	if code < 0 || code >= len(spheroids) {
		return spheroids[0]
	}
	return spheroids[code]
}

// NumSpheroids reports the size of the spheroid table.
func NumSpheroids() int { return len(spheroids) }
