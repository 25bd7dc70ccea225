package hdr

import (
	"fmt"
	"strings"

	"github.com/banshee-data/regrid/internal/raster"
)

// Write emits a header describing d in the same grammar Parse accepts,
// so produced rasters are directly consumable as inputs.
func Write(path string, d *Descriptor) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# Header written by regrid\n\n")
	if d.InputFilename != "" {
		fmt.Fprintf(&b, "INPUT_FILENAME = %s\n\n", d.InputFilename)
	}
	if d.OutputFilename != "" {
		fmt.Fprintf(&b, "OUTPUT_FILENAME = %s\n\n", d.OutputFilename)
	}
	fmt.Fprintf(&b, "PROJECTION_TYPE = %s\n\n", ProjName(d.Projection))
	fmt.Fprintf(&b, "PROJECTION_PARAMETERS = (")
	for _, p := range d.Params {
		fmt.Fprintf(&b, " %.9f", p)
	}
	fmt.Fprintf(&b, " )\n\n")

	corners := []struct {
		name string
		k    raster.Corner
	}{
		{"UL_CORNER_LATLON", raster.UL},
		{"UR_CORNER_LATLON", raster.UR},
		{"LL_CORNER_LATLON", raster.LL},
		{"LR_CORNER_LATLON", raster.LR},
	}
	for _, c := range corners {
		fmt.Fprintf(&b, "%s = ( %.9f %.9f )\n", c.name, d.Corners.Y(c.k), d.Corners.X(c.k))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "NBANDS = %d\n", len(d.Bands))
	write := func(name string, f func(raster.Band) string) {
		fmt.Fprintf(&b, "%s = (", name)
		for _, band := range d.Bands {
			fmt.Fprintf(&b, " %s", f(band))
		}
		fmt.Fprintf(&b, " )\n")
	}
	write("BANDNAMES", func(b raster.Band) string { return b.Name })
	write("DATA_TYPE", func(b raster.Band) string { return b.Type.String() })
	write("NLINES", func(b raster.Band) string { return fmt.Sprintf("%d", b.NRows) })
	write("NSAMPLES", func(b raster.Band) string { return fmt.Sprintf("%d", b.NCols) })
	write("PIXEL_SIZE", func(b raster.Band) string { return fmt.Sprintf("%.9f", b.PixelSize) })
	write("MIN_VALUE", func(b raster.Band) string { return fmt.Sprintf("%g", b.ValidMin) })
	write("MAX_VALUE", func(b raster.Band) string { return fmt.Sprintf("%g", b.ValidMax) })
	write("BACKGROUND_FILL", func(b raster.Band) string { return fmt.Sprintf("%g", b.Fill) })
	b.WriteString("\n")

	fmt.Fprintf(&b, "DATUM = %s\n", d.Datum.Name())
	if d.UTMZone != 0 {
		fmt.Fprintf(&b, "UTM_ZONE = %d\n", d.UTMZone)
	}
	fmt.Fprintf(&b, "BYTE_ORDER = %s\n", d.ByteOrderName)

	if err := FS.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("hdr: writing %s: %w", path, err)
	}
	return nil
}
