package proj

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// State-plane zone tables are fixed-record binary files produced by the
// spload utility: a 32-byte zone name, an int32 zone id, then nine
// float64 parameters, 108 bytes per record. The NAD27 and NAD83 tables
// live under the directory named by MRT_DATA_DIR (fallback MRTDATADIR).
const (
	SPZoneNameSize = 32
	spRecordSize   = SPZoneNameSize + 4 + 9*8

	spFileNAD27 = "nad27sp"
	spFileNAD83 = "nad83sp"
)

// DataDirEnv names the environment variables that locate the zone tables.
var DataDirEnv = [2]string{"MRT_DATA_DIR", "MRTDATADIR"}

// StatePlaneZone is one record of a zone table. Angular parameters are
// packed DMS, as written by the table builder.
type StatePlaneZone struct {
	Name   string
	ID     int32
	Params [9]float64
}

// DataDir resolves the table directory from the environment.
func DataDir() (string, error) {
	for _, name := range DataDirEnv {
		if dir := os.Getenv(name); dir != "" {
			return dir, nil
		}
	}
	return "", fmt.Errorf("proj: %s or %s must be set to locate the state plane tables", DataDirEnv[0], DataDirEnv[1])
}

// LoadStatePlaneTable reads every record of a zone table file.
func LoadStatePlaneTable(path string) ([]StatePlaneZone, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("proj: reading state plane table: %w", err)
	}
	if len(data)%spRecordSize != 0 {
		return nil, fmt.Errorf("proj: state plane table %s is %d bytes, not a multiple of the %d byte record", path, len(data), spRecordSize)
	}
	zones := make([]StatePlaneZone, 0, len(data)/spRecordSize)
	for off := 0; off < len(data); off += spRecordSize {
		rec := data[off : off+spRecordSize]
		var z StatePlaneZone
		z.Name = string(bytes.TrimRight(rec[:SPZoneNameSize], "\x00 "))
		z.ID = int32(binary.LittleEndian.Uint32(rec[SPZoneNameSize : SPZoneNameSize+4]))
		for i := 0; i < 9; i++ {
			base := SPZoneNameSize + 4 + i*8
			z.Params[i] = math.Float64frombits(binary.LittleEndian.Uint64(rec[base : base+8]))
		}
		zones = append(zones, z)
	}
	return zones, nil
}

// FindStatePlaneZone looks a zone id up in a loaded table.
func FindStatePlaneZone(zones []StatePlaneZone, id int32) (StatePlaneZone, bool) {
	for _, z := range zones {
		if z.ID == id {
			return z, true
		}
	}
	return StatePlaneZone{}, false
}

// unpackDMS converts a packed DDDMMMSSS.SS angle to radians.
func unpackDMS(angle float64) float64 {
	sign := 1.0
	if angle < 0 {
		sign = -1.0
		angle = -angle
	}
	deg := math.Trunc(angle / 1000000)
	angle -= deg * 1000000
	min := math.Trunc(angle / 1000)
	sec := angle - min*1000
	return sign * (deg + min/60.0 + sec/3600.0) * D2R
}

// newStatePlane resolves a state plane zone to its underlying conic or
// cylindric operator. Zone record layout: [0] semi-major, [1] e^2,
// [2]/[3] standard parallels (DMS) for Lambert zones or the scale
// reduction denominator for transverse Mercator zones, [4] central
// meridian (DMS), [5] latitude of origin (DMS), [6] false easting,
// [7] false northing, [8] nonzero for oblique zones (unsupported).
func newStatePlane(cfg Config) (Operator, error) {
	dir, err := DataDir()
	if err != nil {
		return nil, err
	}
	file := spFileNAD27
	if cfg.Spheroid == 8 || cfg.Spheroid == 12 {
		// GRS80/WGS84 spheroids select the NAD83 table
		file = spFileNAD83
	}
	zones, err := LoadStatePlaneTable(filepath.Join(dir, file))
	if err != nil {
		return nil, err
	}
	zone, ok := FindStatePlaneZone(zones, int32(cfg.Zone))
	if !ok {
		return nil, fmt.Errorf("proj: state plane zone %d not in %s", cfg.Zone, file)
	}
	return statePlaneOperator(zone)
}

func statePlaneOperator(zone StatePlaneZone) (Operator, error) {
	if zone.Params[8] != 0 {
		return nil, fmt.Errorf("proj: state plane zone %d uses an oblique system, not supported", zone.ID)
	}
	a := zone.Params[0]
	e2 := zone.Params[1]
	b := a * math.Sqrt(1.0-e2)

	var sub Config
	sub.Spheroid = -1
	sub.Params[0] = a
	sub.Params[1] = b
	sub.Params[4] = unpackDMS(zone.Params[4])
	sub.Params[5] = unpackDMS(zone.Params[5])
	sub.Params[6] = zone.Params[6]
	sub.Params[7] = zone.Params[7]

	if zone.Params[3] != 0 {
		// two standard parallels: Lambert conformal conic zone
		sub.Code = LambertCC
		sub.Params[2] = unpackDMS(zone.Params[2])
		sub.Params[3] = unpackDMS(zone.Params[3])
		return newLambertCC(sub)
	}
	// transverse Mercator zone; params[2] carries the scale reduction
	// denominator (e.g. 2500 means k0 = 1 - 1/2500)
	sub.Code = TransverseMercator
	if zone.Params[2] > 1 {
		sub.Params[2] = 1.0 - 1.0/zone.Params[2]
	} else if zone.Params[2] > 0 {
		sub.Params[2] = zone.Params[2]
	} else {
		sub.Params[2] = 1.0
	}
	return newTransMerc(sub)
}
