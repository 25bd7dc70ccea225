// Command regrid reprojects raw-binary gridded rasters between map
// projections. The input is described by a text header; the output
// projection comes from flags. Band data files sit next to the header,
// named <base>.<band>.dat.
//
// Example:
//
//	regrid -header tile.hdr -o out -out-proj GEOGRAPHIC -out-pixel-size 0.01 -t BI
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/banshee-data/regrid/internal/geo/datum"
	"github.com/banshee-data/regrid/internal/geo/extent"
	"github.com/banshee-data/regrid/internal/geo/proj"
	"github.com/banshee-data/regrid/internal/geo/trans"
	"github.com/banshee-data/regrid/internal/hdr"
	"github.com/banshee-data/regrid/internal/raster"
	"github.com/banshee-data/regrid/internal/resample"
	"github.com/banshee-data/regrid/internal/version"
)

var (
	headerPath   = flag.String("header", "", "Path to the input header file")
	outputBase   = flag.String("o", "", "Output base name (writes <base>.hdr and <base>.<band>.dat)")
	kernelFlag   = flag.String("t", "NN", "Resampling type (NN, BI, CC, NONE)")
	outProjFlag  = flag.String("out-proj", "", "Output projection type (header names, e.g. GEOGRAPHIC, SINUSOIDAL)")
	outParams    = flag.String("out-params", "", "Output projection parameters, 15 comma-separated values (default all zero)")
	outDatumFlag = flag.String("out-datum", "NODATUM", "Output datum (NODATUM, NAD27, NAD83, WGS66, WGS72, WGS84)")
	outZone      = flag.Int("out-zone", 0, "Output UTM zone (0 derives from the central meridian)")
	outPixel     = flag.Float64("out-pixel-size", 0, "Output pixel size in output projection units (0 keeps each band's input size)")
	subsetLL     = flag.String("subset-ll", "", "Lat/lon subset: \"ULlat,ULlon,LRlat,LRlon\"")
	subsetProj   = flag.String("subset-proj", "", "Output projection subset: \"ULx,ULy,LRx,LRy\"")
	bands        = flag.String("bands", "", "Comma-separated band names to process (default all)")
	lenient      = flag.Bool("lenient", false, "Tolerate projection-parameter axes that disagree with the datum")
	progress     = flag.Bool("progress", false, "Draw row progress bars")
	versionFlag  = flag.Bool("version", false, "Print version information and exit")
)

func main() {
	// failures are reported on stdout with their symbolic tag
	log.SetOutput(os.Stdout)
	flag.Parse()
	if *versionFlag {
		fmt.Printf("regrid %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}
	if *headerPath == "" || *outputBase == "" || *outProjFlag == "" {
		fmt.Fprintln(os.Stderr, "regrid: -header, -o, and -out-proj are required")
		flag.Usage()
		os.Exit(1)
	}
	if err := run(); err != nil {
		log.Printf("ERROR_PROJECTION: %v", err)
		os.Exit(1)
	}
}

func parseParamList(s string) ([proj.NumParams]float64, error) {
	var out [proj.NumParams]float64
	if s == "" {
		return out, nil
	}
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	if len(fields) > proj.NumParams {
		return out, fmt.Errorf("too many projection parameters (%d)", len(fields))
	}
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return out, fmt.Errorf("projection parameter %q is not a number", f)
		}
		out[i] = v
	}
	return out, nil
}

func parseQuad(s string) ([4]float64, error) {
	var out [4]float64
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	if len(fields) != 4 {
		return out, fmt.Errorf("expected 4 values, got %d", len(fields))
	}
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return out, fmt.Errorf("%q is not a number", f)
		}
		out[i] = v
	}
	return out, nil
}

// outDescriptor assembles the output-side header descriptor from flags.
func outDescriptor(in *hdr.Descriptor) (*hdr.Descriptor, error) {
	out := &hdr.Descriptor{
		Datum:         datum.NoDatum,
		ByteOrder:     in.ByteOrder,
		ByteOrderName: in.ByteOrderName,
		UTMZone:       *outZone,
	}
	code, err := hdr.LookupProjName(strings.ToUpper(*outProjFlag))
	if err != nil {
		return nil, err
	}
	out.Projection = code
	if out.Params, err = parseParamList(*outParams); err != nil {
		return nil, err
	}
	if out.Datum, err = datum.ByName(strings.ToUpper(*outDatumFlag)); err != nil {
		return nil, err
	}
	return out, nil
}

func run() error {
	in, err := hdr.Parse(*headerPath)
	if err != nil {
		return err
	}
	out, err := outDescriptor(in)
	if err != nil {
		return err
	}
	kernel, err := resample.ParseKernel(strings.ToUpper(*kernelFlag))
	if err != nil {
		return err
	}

	selected := map[string]bool{}
	if *bands != "" {
		for _, b := range strings.Split(*bands, ",") {
			selected[strings.TrimSpace(b)] = true
		}
		for i := range in.Bands {
			in.Bands[i].Selected = selected[in.Bands[i].Name]
		}
	}

	opts := trans.Options{Lenient: *lenient}
	inSide := in.Side()
	outSide := out.Side()

	// normalize subsets that straddle the dateline before anything is
	// projected from the corner lat/lons
	llCorners := in.Corners
	if extent.CheckDateline(&llCorners) {
		log.Printf("regrid: subset straddles the international dateline; corner longitudes normalized")
	}

	engine := resample.NewEngine()
	log.Printf("regrid[%s]: %s -> %s, %s resampling", engine.RunID(),
		hdr.ProjName(in.Projection), hdr.ProjName(out.Projection), kernel)

	base := strings.TrimSuffix(*headerPath, filepath.Ext(*headerPath))
	outBands := make([]raster.Band, 0, len(in.Bands))

	processed := 0
	var lastSolver *extent.Solver
	var outCorners raster.CornerSet

	for bi, band := range in.Bands {
		if !band.Selected {
			continue
		}
		processed++
		last := true
		for _, rest := range in.Bands[bi+1:] {
			if rest.Selected {
				last = false
				break
			}
		}

		pixelOut := *outPixel
		if pixelOut <= 0 {
			pixelOut = band.PixelSize
		}

		solver, err := extent.NewSolver(inSide, outSide, opts)
		if err != nil {
			return err
		}

		// input projection corners from the lat/lon corner set
		inCorners, err := inputProjCorners(solver, llCorners)
		if err != nil {
			return err
		}

		req := extent.Request{
			Type:            extent.FullTile,
			InputCorners:    inCorners,
			LatLonCorners:   llCorners,
			InputPixelSize:  band.PixelSize,
			OutputPixelSize: pixelOut,
		}
		// bounding tiles: corners that do not survive the round-trip
		// probe sit in the projection's discontinuity space
		for k := raster.UL; k <= raster.LR; k++ {
			if solver.Discontinuous(inCorners.X(k), inCorners.Y(k)) {
				req.UseBound = true
				break
			}
		}
		switch {
		case *subsetProj != "":
			quad, err := parseQuad(*subsetProj)
			if err != nil {
				return err
			}
			req.Type = extent.OutputProjCoords
			req.OutputCorners[raster.UL] = [2]float64{quad[0], quad[1]}
			req.OutputCorners[raster.LR] = [2]float64{quad[2], quad[3]}
		case *subsetLL != "":
			quad, err := parseQuad(*subsetLL)
			if err != nil {
				return err
			}
			req.Type = extent.InputLatLon
			req.IsSubset = true
			req.LatLonCorners[raster.UL] = [2]float64{quad[1], quad[0]}
			req.LatLonCorners[raster.UR] = [2]float64{quad[3], quad[0]}
			req.LatLonCorners[raster.LL] = [2]float64{quad[1], quad[2]}
			req.LatLonCorners[raster.LR] = [2]float64{quad[3], quad[2]}
			extent.CheckDateline(&req.LatLonCorners)
		}

		corners, err := solver.OutputCorners(req)
		if err != nil {
			return err
		}
		nrows, ncols := extent.GridSize(corners, pixelOut)
		if kernel == resample.NoResample {
			// straight copy keeps the input geometry
			corners = inCorners
			nrows, ncols = band.NRows, band.NCols
			pixelOut = band.PixelSize
		}
		lastSolver, outCorners = solver, corners

		// inverse map: output projection -> input projection
		inverse, err := trans.New(outSide, inSide, opts)
		if err != nil {
			return err
		}

		dims := raster.Dims{
			NRows: band.NRows, NCols: band.NCols,
			PixelSize: band.PixelSize, Type: band.Type, Fill: band.Fill,
		}
		reader, err := raster.OpenFile(bandPath(base, band.Name), dims, in.ByteOrder)
		if err != nil {
			return err
		}

		outDims := raster.Dims{
			NRows: nrows, NCols: ncols,
			PixelSize: pixelOut, Type: band.Type, Fill: band.Fill,
		}
		writer, err := raster.CreateFile(bandPath(*outputBase, band.Name), outDims, out.ByteOrder)
		if err != nil {
			reader.Close()
			return err
		}

		job := resample.Job{
			Input:        reader,
			Output:       writer,
			Inverse:      inverse,
			OutCorners:   corners,
			OutPixelSize: pixelOut,
			InUL:         [2]float64{inCorners.X(raster.UL), inCorners.Y(raster.UL)},
			Kernel:       kernel,
			BandName:     band.Name,
			Progress:     *progress,
		}
		if in.Projection == proj.IntSinusoidal && (kernel == resample.Bilinear || kernel == resample.CubicConvolution) {
			op, err := proj.New(in.ProjConfig())
			if err != nil {
				reader.Close()
				writer.Close()
				return err
			}
			shift, err := engine.ShiftTableFor(op, dims, job.InUL[0], job.InUL[1], *progress)
			if err != nil {
				reader.Close()
				writer.Close()
				return err
			}
			job.IsISIN = true
			job.Shift = shift
		}

		runErr := engine.Run(job)
		reader.Close()
		if cerr := writer.Close(); runErr == nil {
			runErr = cerr
		}
		if runErr != nil {
			return runErr
		}
		if last {
			engine.DropShiftTable()
		}

		ob := band
		ob.NRows = nrows
		ob.NCols = ncols
		ob.PixelSize = pixelOut
		outBands = append(outBands, ob)
	}

	if processed == 0 {
		return fmt.Errorf("no bands selected")
	}

	// describe what was produced
	out.Bands = outBands
	if lastSolver != nil {
		ll, err := lastSolver.LatLonExtents(outCorners)
		if err != nil {
			return err
		}
		out.Corners = ll
	}
	out.InputFilename = *headerPath
	out.OutputFilename = *outputBase + ".hdr"
	if err := hdr.Write(*outputBase+".hdr", out); err != nil {
		return err
	}
	log.Printf("regrid[%s]: wrote %d band(s) and %s", engine.RunID(), processed, *outputBase+".hdr")
	return nil
}

// inputProjCorners converts the header's lat/lon corners to input
// projection coordinates.
func inputProjCorners(s *extent.Solver, ll raster.CornerSet) (raster.CornerSet, error) {
	var out raster.CornerSet
	for k := raster.UL; k <= raster.LR; k++ {
		x, y, err := s.LatLonToInput(ll.X(k), ll.Y(k))
		if err != nil {
			return out, fmt.Errorf("projecting input corner: %w", err)
		}
		out[k] = [2]float64{x, y}
	}
	return out, nil
}

func bandPath(base, band string) string {
	return base + "." + band + ".dat"
}
