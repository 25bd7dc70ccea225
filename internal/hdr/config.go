package hdr

import (
	"encoding/binary"
	"unsafe"

	"github.com/banshee-data/regrid/internal/geo/proj"
	"github.com/banshee-data/regrid/internal/geo/trans"
)

// angularSlots lists, per projection, the parameter slots the header
// carries in decimal degrees.
func angularSlots(code proj.Code) []int {
	switch code {
	case proj.AlbersEqArea, proj.LambertCC:
		return []int{2, 3, 4, 5}
	case proj.Mercator, proj.PolarStereo, proj.TransverseMercator,
		proj.LambertAz, proj.Equirect:
		return []int{4, 5}
	case proj.Sinusoidal, proj.IntSinusoidal, proj.Mollweide,
		proj.Hammer, proj.Goode:
		return []int{4}
	case proj.UTM:
		// lon/lat used for zone derivation
		return []int{0, 1}
	}
	return nil
}

// ProjConfig converts the header's degree-valued parameter block into
// the radian convention of the projection library.
func (d *Descriptor) ProjConfig() proj.Config {
	cfg := proj.Config{
		Code:     d.Projection,
		Params:   d.Params,
		Zone:     d.UTMZone,
		Spheroid: -1,
	}
	for _, slot := range angularSlots(d.Projection) {
		cfg.Params[slot] *= trans.D2R
	}
	return cfg
}

// Unit reports the coordinate unit of the descriptor's projection:
// degrees for geographic, meters otherwise.
func (d *Descriptor) Unit() trans.Unit {
	if d.Projection == proj.Geographic {
		return trans.Degree
	}
	return trans.Meter
}

// Side assembles the transform-pipeline side for this descriptor.
func (d *Descriptor) Side() trans.Side {
	return trans.Side{
		Proj:  d.ProjConfig(),
		Unit:  d.Unit(),
		Datum: d.Datum,
	}
}

func nativeOrder() binary.ByteOrder {
	x := uint16(1)
	if *(*byte)(unsafe.Pointer(&x)) == 1 {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

func nativeOrderName() string {
	if nativeOrder() == binary.LittleEndian {
		return "LITTLE_ENDIAN"
	}
	return "BIG_ENDIAN"
}
