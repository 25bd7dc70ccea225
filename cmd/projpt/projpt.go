// Command projpt converts a single coordinate between two projection
// configurations. It exists as a debugging aid for the transform
// pipeline.
//
// Example:
//
//	projpt -from GEOGRAPHIC -to SINUSOIDAL -to-params 6371007.181 -x -100 -y 40
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/banshee-data/regrid/internal/geo/datum"
	"github.com/banshee-data/regrid/internal/geo/proj"
	"github.com/banshee-data/regrid/internal/geo/trans"
	"github.com/banshee-data/regrid/internal/hdr"
	"github.com/banshee-data/regrid/internal/units"
	"github.com/banshee-data/regrid/internal/version"
)

var (
	fromProj   = flag.String("from", "", "Input projection type (header names)")
	fromParams = flag.String("from-params", "", "Input projection parameters, comma separated (degrees for angles)")
	fromUnit   = flag.String("from-unit", "", "Input unit (default DEGREES for GEOGRAPHIC, METERS otherwise)")
	fromDatum  = flag.String("from-datum", "NODATUM", "Input datum")
	fromZone   = flag.Int("from-zone", 0, "Input UTM zone")
	toProj     = flag.String("to", "", "Output projection type (header names)")
	toParams   = flag.String("to-params", "", "Output projection parameters, comma separated (degrees for angles)")
	toUnit     = flag.String("to-unit", "", "Output unit")
	toDatum    = flag.String("to-datum", "NODATUM", "Output datum")
	toZone     = flag.Int("to-zone", 0, "Output UTM zone")
	xFlag      = flag.Float64("x", 0, "Input x (or longitude)")
	yFlag      = flag.Float64("y", 0, "Input y (or latitude)")
	lenient    = flag.Bool("lenient", false, "Tolerate axis/datum mismatches")
	verFlag    = flag.Bool("version", false, "Print version information and exit")
)

func side(projName, paramStr, unitName, datumName string, zone int) (trans.Side, error) {
	var s trans.Side
	code, err := hdr.LookupProjName(strings.ToUpper(projName))
	if err != nil {
		return s, err
	}
	d := &hdr.Descriptor{Projection: code, UTMZone: zone}
	if paramStr != "" {
		fields := strings.FieldsFunc(paramStr, func(r rune) bool { return r == ',' || r == ' ' })
		if len(fields) > proj.NumParams {
			return s, fmt.Errorf("too many parameters (%d)", len(fields))
		}
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return s, fmt.Errorf("parameter %q is not a number", f)
			}
			d.Params[i] = v
		}
	}
	if d.Datum, err = datum.ByName(strings.ToUpper(datumName)); err != nil {
		return s, err
	}
	s = d.Side()
	if unitName != "" {
		if !units.IsValid(strings.ToUpper(unitName)) {
			return s, fmt.Errorf("invalid unit %q (valid: %s)", unitName, units.GetValidUnitsString())
		}
		s.Unit = units.Code(strings.ToUpper(unitName))
	}
	return s, nil
}

func main() {
	// failures are reported on stdout with their symbolic tag
	log.SetOutput(os.Stdout)
	flag.Parse()
	if *verFlag {
		fmt.Printf("projpt %s (%s)\n", version.Version, version.GitSHA)
		return
	}
	if *fromProj == "" || *toProj == "" {
		fmt.Fprintln(os.Stderr, "projpt: -from and -to are required")
		flag.Usage()
		os.Exit(1)
	}

	in, err := side(*fromProj, *fromParams, *fromUnit, *fromDatum, *fromZone)
	if err != nil {
		log.Fatalf("ERROR_PROJECTION: input side: %v", err)
	}
	out, err := side(*toProj, *toParams, *toUnit, *toDatum, *toZone)
	if err != nil {
		log.Fatalf("ERROR_PROJECTION: output side: %v", err)
	}

	p, err := trans.New(in, out, trans.Options{Lenient: *lenient})
	if err != nil {
		log.Fatalf("ERROR_PROJECTION: %v", err)
	}
	x, y, err := p.Point(*xFlag, *yFlag)
	if err != nil {
		log.Fatalf("ERROR_PROJECTION: %v", err)
	}
	fmt.Printf("%.9f %.9f\n", x, y)
}
