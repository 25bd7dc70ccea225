package raster

import (
	"encoding/binary"
	"fmt"
	"os"
)

// Raw-binary grid files: one flat file per band, row-major samples with
// no header of their own (the text header carries the geometry). Byte
// order comes from the header, defaulting to native little-endian on
// the platforms this tool targets.

// FileReader reads a raw-binary band with a one-row cache.
type FileReader struct {
	f     *os.File
	path  string
	dims  Dims
	order binary.ByteOrder

	raw     []byte
	row     []float64
	cached  int
}

// OpenFile opens a raw-binary band file.
func OpenFile(path string, dims Dims, order binary.ByteOrder) (*FileReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("raster: open %s: %w", path, err)
	}
	if order == nil {
		order = binary.LittleEndian
	}
	return &FileReader{
		f:      f,
		path:   path,
		dims:   dims,
		order:  order,
		raw:    make([]byte, dims.NCols*dims.Type.Size()),
		row:    make([]float64, dims.NCols),
		cached: -1,
	}, nil
}

func (r *FileReader) Dims() Dims { return r.dims }

func (r *FileReader) ReadRow(row int) ([]float64, error) {
	if row < 0 || row >= r.dims.NRows {
		return nil, fmt.Errorf("raster: row %d outside %s (%d rows)", row, r.path, r.dims.NRows)
	}
	if row == r.cached {
		return r.row, nil
	}
	off := int64(row) * int64(len(r.raw))
	if _, err := r.f.ReadAt(r.raw, off); err != nil {
		return nil, fmt.Errorf("raster: read row %d of %s: %w", row, r.path, err)
	}
	WidenRow(r.raw, r.dims.Type, r.order, r.row)
	r.cached = row
	return r.row, nil
}

func (r *FileReader) Close() error { return r.f.Close() }

// FileWriter writes a raw-binary band.
type FileWriter struct {
	f     *os.File
	path  string
	dims  Dims
	order binary.ByteOrder
	raw   []byte
}

// CreateFile creates (or truncates) a raw-binary band file.
func CreateFile(path string, dims Dims, order binary.ByteOrder) (*FileWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("raster: create %s: %w", path, err)
	}
	if order == nil {
		order = binary.LittleEndian
	}
	return &FileWriter{
		f:     f,
		path:  path,
		dims:  dims,
		order: order,
		raw:   make([]byte, dims.NCols*dims.Type.Size()),
	}, nil
}

func (w *FileWriter) WriteRow(row int, vals []float64) error {
	if len(vals) != w.dims.NCols {
		return fmt.Errorf("raster: row %d has %d samples, want %d", row, len(vals), w.dims.NCols)
	}
	NarrowRow(vals, w.dims.Type, w.order, w.raw)
	off := int64(row) * int64(len(w.raw))
	if _, err := w.f.WriteAt(w.raw, off); err != nil {
		return fmt.Errorf("raster: write row %d of %s: %w", row, w.path, err)
	}
	return nil
}

func (w *FileWriter) Close() error { return w.f.Close() }

// MemReader serves a grid held in memory; the resampler tests use it.
type MemReader struct {
	D    Dims
	Data [][]float64
}

func (m *MemReader) Dims() Dims { return m.D }

func (m *MemReader) ReadRow(row int) ([]float64, error) {
	if row < 0 || row >= len(m.Data) {
		return nil, fmt.Errorf("raster: row %d outside memory grid", row)
	}
	return m.Data[row], nil
}

func (m *MemReader) Close() error { return nil }

// MemWriter collects written rows in memory.
type MemWriter struct {
	D    Dims
	Rows map[int][]float64
}

func (m *MemWriter) WriteRow(row int, vals []float64) error {
	if m.Rows == nil {
		m.Rows = make(map[int][]float64)
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	m.Rows[row] = cp
	return nil
}

func (m *MemWriter) Close() error { return nil }
