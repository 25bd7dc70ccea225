package raster

import (
	"encoding/binary"
	"math"
)

// This file is the only place sample types and byte order are handled;
// everything upstream works in float64. Scale factor and offset are
// metadata and are never applied here.

// WidenRow decodes one raw row into dst as float64, without scaling.
func WidenRow(raw []byte, t DataType, order binary.ByteOrder, dst []float64) {
	n := len(dst)
	switch t {
	case Int8:
		for i := 0; i < n; i++ {
			dst[i] = float64(int8(raw[i]))
		}
	case Uint8:
		for i := 0; i < n; i++ {
			dst[i] = float64(raw[i])
		}
	case Int16:
		for i := 0; i < n; i++ {
			dst[i] = float64(int16(order.Uint16(raw[2*i:])))
		}
	case Uint16:
		for i := 0; i < n; i++ {
			dst[i] = float64(order.Uint16(raw[2*i:]))
		}
	case Int32:
		for i := 0; i < n; i++ {
			dst[i] = float64(int32(order.Uint32(raw[4*i:])))
		}
	case Uint32:
		for i := 0; i < n; i++ {
			dst[i] = float64(order.Uint32(raw[4*i:]))
		}
	case Float32:
		for i := 0; i < n; i++ {
			dst[i] = float64(math.Float32frombits(order.Uint32(raw[4*i:])))
		}
	}
}

// roundHalfAway rounds away from zero at .5, matching the output
// convention of the original tool.
func roundHalfAway(v float64) float64 {
	if v < 0 {
		return v - 0.5
	}
	return v + 0.5
}

// NarrowRow encodes vals into raw, rounding and saturating to the
// output type's range. Float32 output clamps to [0, MaxFloat32].
func NarrowRow(vals []float64, t DataType, order binary.ByteOrder, raw []byte) {
	clip := func(v, lo, hi float64) float64 {
		v = roundHalfAway(v)
		if v < lo {
			return lo
		}
		if v > hi {
			return hi
		}
		return v
	}
	switch t {
	case Int8:
		for i, v := range vals {
			raw[i] = byte(int8(clip(v, math.MinInt8, math.MaxInt8)))
		}
	case Uint8:
		for i, v := range vals {
			raw[i] = byte(uint8(clip(v, 0, math.MaxUint8)))
		}
	case Int16:
		for i, v := range vals {
			order.PutUint16(raw[2*i:], uint16(int16(clip(v, math.MinInt16, math.MaxInt16))))
		}
	case Uint16:
		for i, v := range vals {
			order.PutUint16(raw[2*i:], uint16(clip(v, 0, math.MaxUint16)))
		}
	case Int32:
		for i, v := range vals {
			order.PutUint32(raw[4*i:], uint32(int32(clip(v, math.MinInt32, math.MaxInt32))))
		}
	case Uint32:
		for i, v := range vals {
			order.PutUint32(raw[4*i:], uint32(clip(v, 0, math.MaxUint32)))
		}
	case Float32:
		for i, v := range vals {
			if v < 0 {
				v = 0
			} else if v > math.MaxFloat32 {
				v = math.MaxFloat32
			}
			order.PutUint32(raw[4*i:], math.Float32bits(float32(v)))
		}
	}
}
