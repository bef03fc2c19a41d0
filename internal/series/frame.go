package series

import "github.com/devskill-org/gridopt/internal/apperror"

// Frame holds named hourly columns for a single region, all aligned to
// a shared DatetimeIndex. Labels holds the one non-numeric column the
// engine produces (Price_Type); it is kept out of Columns because the
// persisted CSV format requires numeric columns only (spec.md §6) and
// Price_Type is dropped before writing.
type Frame struct {
	Index   DatetimeIndex
	Columns map[string][]float64
	Labels  map[string][]string
}

// NewFrame allocates an empty frame over idx.
func NewFrame(idx DatetimeIndex) *Frame {
	return &Frame{Index: idx, Columns: make(map[string][]float64), Labels: make(map[string][]string)}
}

// SetLabelCol installs a non-numeric column.
func (f *Frame) SetLabelCol(name string, data []string) {
	if len(data) != f.Index.Len() {
		panic("series: label column length mismatch with frame index")
	}
	f.Labels[name] = data
}

// Col returns the column (allocating a zeroed one if absent).
func (f *Frame) Col(name string) []float64 {
	c, ok := f.Columns[name]
	if !ok {
		c = make([]float64, f.Index.Len())
		f.Columns[name] = c
	}
	return c
}

// Has reports whether the column exists.
func (f *Frame) Has(name string) bool {
	_, ok := f.Columns[name]
	return ok
}

// SetCol installs a column, replacing any existing one. Panics if the
// length mismatches the frame's index (a programmer error, not a
// runtime data error).
func (f *Frame) SetCol(name string, data []float64) {
	if len(data) != f.Index.Len() {
		panic("series: column length mismatch with frame index")
	}
	f.Columns[name] = data
}

// At returns column[t], or 0 if the column does not exist.
func (f *Frame) At(name string, t int) float64 {
	c, ok := f.Columns[name]
	if !ok {
		return 0
	}
	return c[t]
}

// RequireColumns returns a DataError naming the first missing required
// column (spec.md §6).
func (f *Frame) RequireColumns(region string, names ...string) error {
	for _, n := range names {
		if !f.Has(n) {
			return apperror.NewDataError(region, n, "required column missing")
		}
	}
	return nil
}

// Add returns a new frame that is the pointwise sum of f and other
// over the union of their columns (spec.md §8 aggregate-sum property;
// missing columns are treated as all-zero).
func (f *Frame) Add(other *Frame) *Frame {
	out := NewFrame(f.Index)
	seen := make(map[string]bool)
	for name, col := range f.Columns {
		seen[name] = true
		sum := make([]float64, len(col))
		copy(sum, col)
		if oc, ok := other.Columns[name]; ok {
			for i := range sum {
				sum[i] += oc[i]
			}
		}
		out.Columns[name] = sum
	}
	for name, col := range other.Columns {
		if seen[name] {
			continue
		}
		cp := make([]float64, len(col))
		copy(cp, col)
		out.Columns[name] = cp
	}
	return out
}

// SumFrames folds Add across frames, matching sum([G1..Gn]) ==
// (G1+G2+...+Gn) pointwise (spec.md §8).
func SumFrames(frames ...*Frame) *Frame {
	if len(frames) == 0 {
		return nil
	}
	out := frames[0]
	for _, f := range frames[1:] {
		out = out.Add(f)
	}
	return out
}

// LeftJoinBackfill aligns src (whose own index may have gaps relative
// to idx) onto idx: positions present in src keep their value; gaps up
// to 4 hours are back-filled with the next known value; longer gaps
// become 0 (spec.md §3).
func LeftJoinBackfill(idx DatetimeIndex, srcIdx DatetimeIndex, srcCol []float64) []float64 {
	out := make([]float64, idx.Len())
	present := make([]bool, idx.Len())

	for t := 0; t < idx.Len(); t++ {
		if j := srcIdx.IndexOf(idx.At(t)); j >= 0 {
			out[t] = srcCol[j]
			present[t] = true
		}
	}

	const maxGap = 4
	n := idx.Len()
	for t := 0; t < n; t++ {
		if present[t] {
			continue
		}
		// positions t..end-1 form one gap; end is the next present
		// position, or n when no value follows the gap
		end := t
		for end < n && !present[end] {
			end++
		}
		fill := 0.0
		if end < n && end-t <= maxGap {
			fill = out[end]
		}
		for k := t; k < end; k++ {
			out[k] = fill
		}
		t = end
	}
	return out
}
