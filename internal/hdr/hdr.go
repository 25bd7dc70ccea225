// Package hdr reads and writes the text header files that describe
// raw-binary gridded products: projection, parameter block, corners,
// and per-band geometry. The grammar is line oriented and order
// independent; '#' opens a comment, parentheses group value lists, and
// $(NAME) expands from the environment before parsing.
package hdr

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/banshee-data/regrid/internal/fsutil"
	"github.com/banshee-data/regrid/internal/geo/datum"
	"github.com/banshee-data/regrid/internal/geo/proj"
	"github.com/banshee-data/regrid/internal/raster"
)

// Fatal parse error kinds.
var (
	ErrMissingField     = errors.New("hdr: missing field")
	ErrInvalidParameter = errors.New("hdr: invalid parameter")
	ErrEnvUnset         = errors.New("hdr: environment variable not set")
)

// Descriptor is the parsed header.
type Descriptor struct {
	InputFilename  string
	OutputFilename string

	Projection proj.Code
	// Params as given in the header: degrees for angular slots.
	Params  [proj.NumParams]float64
	Datum   datum.ID
	UTMZone int

	ByteOrderName string
	ByteOrder     binary.ByteOrder

	// Corners carry X=longitude, Y=latitude in degrees.
	Corners raster.CornerSet

	Bands []raster.Band
}

var projNames = map[string]proj.Code{
	"GEO":                          proj.Geographic,
	"GEOGRAPHIC":                   proj.Geographic,
	"UTM":                          proj.UTM,
	"UNIVERSAL_TRANSVERSE_MERCATOR": proj.UTM,
	"AEA":                          proj.AlbersEqArea,
	"ALBERS_EQUAL_AREA":            proj.AlbersEqArea,
	"LCC":                          proj.LambertCC,
	"LAMBERT_CONFORMAL_CONIC":      proj.LambertCC,
	"MERCAT":                       proj.Mercator,
	"MERCATOR":                     proj.Mercator,
	"PS":                           proj.PolarStereo,
	"POLAR_STEREOGRAPHIC":          proj.PolarStereo,
	"TM":                           proj.TransverseMercator,
	"TRANSVERSE_MERCATOR":          proj.TransverseMercator,
	"LA":                           proj.LambertAz,
	"LAMBERT_AZIMUTHAL":            proj.LambertAz,
	"SIN":                          proj.Sinusoidal,
	"SINUSOIDAL":                   proj.Sinusoidal,
	"ER":                           proj.Equirect,
	"EQUIRECTANGULAR":              proj.Equirect,
	"IGH":                          proj.Goode,
	"INTERRUPTED_GOODE_HOMOLOSINE": proj.Goode,
	"MOL":                          proj.Mollweide,
	"MOLLWEIDE":                    proj.Mollweide,
	"HAM":                          proj.Hammer,
	"HAMMER":                       proj.Hammer,
	"ISIN":                         proj.IntSinusoidal,
	"INTEGERIZED_SINUSOIDAL":       proj.IntSinusoidal,
}

// LookupProjName resolves a header-surface projection name.
func LookupProjName(name string) (proj.Code, error) {
	code, ok := projNames[name]
	if !ok {
		return 0, fmt.Errorf("%w: unknown projection type %q", ErrInvalidParameter, name)
	}
	return code, nil
}

// ProjName returns the long header name for a projection code.
func ProjName(c proj.Code) string {
	switch c {
	case proj.Geographic:
		return "GEOGRAPHIC"
	case proj.UTM:
		return "UTM"
	case proj.AlbersEqArea:
		return "ALBERS_EQUAL_AREA"
	case proj.LambertCC:
		return "LAMBERT_CONFORMAL_CONIC"
	case proj.Mercator:
		return "MERCATOR"
	case proj.PolarStereo:
		return "POLAR_STEREOGRAPHIC"
	case proj.TransverseMercator:
		return "TRANSVERSE_MERCATOR"
	case proj.LambertAz:
		return "LAMBERT_AZIMUTHAL"
	case proj.Sinusoidal:
		return "SINUSOIDAL"
	case proj.Equirect:
		return "EQUIRECTANGULAR"
	case proj.Goode:
		return "INTERRUPTED_GOODE_HOMOLOSINE"
	case proj.Mollweide:
		return "MOLLWEIDE"
	case proj.Hammer:
		return "HAMMER"
	case proj.IntSinusoidal:
		return "INTEGERIZED_SINUSOIDAL"
	}
	return "UNKNOWN"
}

// expandEnv replaces every $(NAME) in line; an unset NAME is fatal.
func expandEnv(line string) (string, error) {
	for {
		start := strings.Index(line, "$(")
		if start < 0 {
			return line, nil
		}
		end := strings.Index(line[start:], ")")
		if end < 0 {
			return "", fmt.Errorf("%w: unterminated $( in %q", ErrInvalidParameter, line)
		}
		end += start
		name := line[start+2 : end]
		val, ok := os.LookupEnv(name)
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrEnvUnset, name)
		}
		line = line[:start] + val + line[end+1:]
	}
}

// normalizeSeparators rewrites path separators in a filename to match
// the first separator style seen, so environment-substituted prefixes
// and literal suffixes agree.
func normalizeSeparators(path string) string {
	if strings.ContainsRune(path, ':') {
		return strings.ReplaceAll(path, "/", "\\")
	}
	var sep byte
	for i := 0; i < len(path); i++ {
		if path[i] == '/' || path[i] == '\\' {
			sep = path[i]
			break
		}
	}
	if sep == 0 {
		return path
	}
	out := []byte(path)
	for i := range out {
		if out[i] == '/' || out[i] == '\\' {
			out[i] = sep
		}
	}
	return string(out)
}

// joinContinuations merges physical lines until every opened value
// list is closed, so parameter blocks may wrap.
func joinContinuations(lines []string) []string {
	var out []string
	var pending string
	for _, line := range lines {
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		if pending != "" {
			pending += " " + strings.TrimSpace(line)
			if strings.Contains(pending, ")") {
				out = append(out, pending)
				pending = ""
			}
			continue
		}
		if strings.Contains(line, "(") && !strings.Contains(line, ")") &&
			!strings.Contains(strings.ToUpper(line), "FILENAME") {
			pending = strings.TrimSpace(line)
			continue
		}
		out = append(out, line)
	}
	if pending != "" {
		out = append(out, pending)
	}
	return out
}

// directive is one parsed "NAME = values" line.
type directive struct {
	name   string
	values []string
}

func parseLine(raw string) (*directive, error) {
	line, err := expandEnv(raw)
	if err != nil {
		return nil, err
	}
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, nil
	}

	eq := strings.IndexByte(line, '=')
	if eq < 0 {
		return nil, fmt.Errorf("%w: expected NAME = value, got %q", ErrInvalidParameter, line)
	}
	name := strings.ToUpper(strings.TrimSpace(line[:eq]))
	rhs := strings.TrimSpace(line[eq+1:])

	if name == "INPUT_FILENAME" || name == "OUTPUT_FILENAME" {
		// parens and commas may be part of the path; take it verbatim
		return &directive{name: name, values: []string{normalizeSeparators(rhs)}}, nil
	}

	rhs = strings.NewReplacer(",", " ", "(", " ", ")", " ").Replace(rhs)
	values := strings.Fields(rhs)
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: %s has no value", ErrInvalidParameter, name)
	}
	return &directive{name: name, values: values}, nil
}

func parseFloats(d *directive) ([]float64, error) {
	out := make([]float64, len(d.values))
	for i, v := range d.values {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s value %q is not a number", ErrInvalidParameter, d.name, v)
		}
		out[i] = f
	}
	return out, nil
}

func parseInts(d *directive) ([]int, error) {
	out := make([]int, len(d.values))
	for i, v := range d.values {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s value %q is not an integer", ErrInvalidParameter, d.name, v)
		}
		out[i] = n
	}
	return out, nil
}

// FS is the filesystem headers are read from and written to;
// swappable for tests.
var FS fsutil.FileSystem = fsutil.OSFileSystem{}

// Parse reads and validates a header file.
func Parse(path string) (*Descriptor, error) {
	data, err := FS.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("hdr: reading %s: %w", path, err)
	}
	return ParseBytes(data)
}

// ParseBytes parses header text.
func ParseBytes(data []byte) (*Descriptor, error) {
	d := &Descriptor{
		Datum:         datum.NoDatum,
		ByteOrder:     nativeOrder(),
		ByteOrderName: nativeOrderName(),
	}

	seen := map[string]bool{}
	var (
		nbands    int
		names     []string
		types     []raster.DataType
		nlines    []int
		nsamples  []int
		pixels    []float64
		minVals   []float64
		maxVals   []float64
		fillVals  []float64
	)

	for _, raw := range joinContinuations(strings.Split(string(data), "\n")) {
		dir, err := parseLine(raw)
		if err != nil {
			return nil, err
		}
		if dir == nil {
			continue
		}
		seen[dir.name] = true

		switch dir.name {
		case "INPUT_FILENAME":
			d.InputFilename = dir.values[0]
		case "OUTPUT_FILENAME":
			d.OutputFilename = dir.values[0]
		case "PROJECTION_TYPE":
			code, ok := projNames[strings.ToUpper(dir.values[0])]
			if !ok {
				return nil, fmt.Errorf("%w: unknown projection type %q", ErrInvalidParameter, dir.values[0])
			}
			d.Projection = code
		case "PROJECTION_PARAMETERS":
			vals, err := parseFloats(dir)
			if err != nil {
				return nil, err
			}
			if len(vals) != proj.NumParams {
				return nil, fmt.Errorf("%w: PROJECTION_PARAMETERS needs %d values, got %d",
					ErrInvalidParameter, proj.NumParams, len(vals))
			}
			copy(d.Params[:], vals)
		case "UL_CORNER_LATLON", "UR_CORNER_LATLON", "LL_CORNER_LATLON", "LR_CORNER_LATLON":
			vals, err := parseFloats(dir)
			if err != nil {
				return nil, err
			}
			if len(vals) != 2 {
				return nil, fmt.Errorf("%w: %s needs lat lon", ErrInvalidParameter, dir.name)
			}
			k := map[string]raster.Corner{
				"UL_CORNER_LATLON": raster.UL,
				"UR_CORNER_LATLON": raster.UR,
				"LL_CORNER_LATLON": raster.LL,
				"LR_CORNER_LATLON": raster.LR,
			}[dir.name]
			d.Corners[k] = [2]float64{vals[1], vals[0]} // store X=lon, Y=lat
		case "NBANDS":
			vals, err := parseInts(dir)
			if err != nil {
				return nil, err
			}
			nbands = vals[0]
		case "BANDNAMES":
			names = append([]string(nil), dir.values...)
		case "DATA_TYPE":
			for _, v := range dir.values {
				t, err := raster.ParseDataType(strings.ToUpper(v))
				if err != nil {
					return nil, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
				}
				types = append(types, t)
			}
		case "NLINES":
			var err2 error
			if nlines, err2 = parseInts(dir); err2 != nil {
				return nil, err2
			}
		case "NSAMPLES":
			var err2 error
			if nsamples, err2 = parseInts(dir); err2 != nil {
				return nil, err2
			}
		case "PIXEL_SIZE":
			var err2 error
			if pixels, err2 = parseFloats(dir); err2 != nil {
				return nil, err2
			}
		case "MIN_VALUE":
			var err2 error
			if minVals, err2 = parseFloats(dir); err2 != nil {
				return nil, err2
			}
		case "MAX_VALUE":
			var err2 error
			if maxVals, err2 = parseFloats(dir); err2 != nil {
				return nil, err2
			}
		case "BACKGROUND_FILL":
			var err2 error
			if fillVals, err2 = parseFloats(dir); err2 != nil {
				return nil, err2
			}
		case "DATUM":
			id, err2 := datum.ByName(strings.ToUpper(dir.values[0]))
			if err2 != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidParameter, err2)
			}
			d.Datum = id
		case "UTM_ZONE":
			vals, err2 := parseInts(dir)
			if err2 != nil {
				return nil, err2
			}
			d.UTMZone = vals[0]
		case "BYTE_ORDER":
			switch strings.ToUpper(dir.values[0]) {
			case "BIG_ENDIAN":
				d.ByteOrder = binary.BigEndian
				d.ByteOrderName = "BIG_ENDIAN"
			case "LITTLE_ENDIAN":
				d.ByteOrder = binary.LittleEndian
				d.ByteOrderName = "LITTLE_ENDIAN"
			default:
				return nil, fmt.Errorf("%w: BYTE_ORDER %q", ErrInvalidParameter, dir.values[0])
			}
		}
	}

	required := []string{
		"PROJECTION_TYPE", "PROJECTION_PARAMETERS",
		"UL_CORNER_LATLON", "UR_CORNER_LATLON", "LL_CORNER_LATLON", "LR_CORNER_LATLON",
		"NBANDS", "BANDNAMES", "DATA_TYPE", "NLINES", "NSAMPLES", "PIXEL_SIZE",
	}
	var missing []string
	for _, r := range required {
		if !seen[r] {
			missing = append(missing, r)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, strings.Join(missing, ", "))
	}

	if nbands <= 0 {
		return nil, fmt.Errorf("%w: NBANDS must be positive", ErrInvalidParameter)
	}
	check := func(what string, n int) error {
		if n != nbands {
			return fmt.Errorf("%w: %s has %d entries for %d bands", ErrInvalidParameter, what, n, nbands)
		}
		return nil
	}
	for what, n := range map[string]int{
		"BANDNAMES": len(names),
		"DATA_TYPE": len(types),
		"NLINES":    len(nlines),
		"NSAMPLES":  len(nsamples),
		"PIXEL_SIZE": len(pixels),
	} {
		if err := check(what, n); err != nil {
			return nil, err
		}
	}

	d.Bands = make([]raster.Band, nbands)
	for i := range d.Bands {
		b := raster.Band{
			Name:      names[i],
			Type:      types[i],
			NRows:     nlines[i],
			NCols:     nsamples[i],
			PixelSize: pixels[i],
			Selected:  true,
		}
		if b.PixelSize <= 0 {
			return nil, fmt.Errorf("%w: PIXEL_SIZE for band %s must be positive", ErrInvalidParameter, b.Name)
		}
		if i < len(minVals) {
			b.ValidMin = minVals[i]
		}
		if i < len(maxVals) {
			b.ValidMax = maxVals[i]
		}
		if i < len(fillVals) {
			b.Fill = fillVals[i]
		}
		d.Bands[i] = b
	}
	return d, nil
}
