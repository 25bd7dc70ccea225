package resample

import "github.com/banshee-data/regrid/internal/raster"

// gridSampler serves point samples from a row-oriented reader with a
// small row cache. The bilinear and cubic kernels revisit the same two
// to four rows for a whole output row, so a handful of cached rows is
// enough to make random access cheap.
type gridSampler struct {
	r    raster.Reader
	dims raster.Dims

	rows  map[int][]float64
	order []int
	err   error
}

const samplerCacheRows = 8

func newGridSampler(r raster.Reader) *gridSampler {
	return &gridSampler{
		r:    r,
		dims: r.Dims(),
		rows: make(map[int]([]float64), samplerCacheRows),
	}
}

// at returns the sample at (col, row), or the band's background fill
// when the indices fall outside the grid. Read errors latch into s.err
// and surface after the row loop.
func (s *gridSampler) at(col, row int) float64 {
	if col < 0 || col >= s.dims.NCols || row < 0 || row >= s.dims.NRows {
		return s.dims.Fill
	}
	vals, ok := s.rows[row]
	if !ok {
		src, err := s.r.ReadRow(row)
		if err != nil {
			if s.err == nil {
				s.err = err
			}
			return s.dims.Fill
		}
		vals = make([]float64, len(src))
		copy(vals, src)
		if len(s.order) >= samplerCacheRows {
			oldest := s.order[0]
			s.order = s.order[1:]
			delete(s.rows, oldest)
		}
		s.rows[row] = vals
		s.order = append(s.order, row)
	}
	return vals[col]
}
