package sawit

import "sort"

// Table is a sorted (x, y) lookup with linear interpolation between
// bracketing points and linear extrapolation beyond the stored range.
// Grounded on original_source/utils.py's AFGen class.
type Table struct {
	x []float64
	y []float64
}

// NewTable builds a Table from an unordered x->y mapping, sorting points
// ascending by x. An empty map yields a Table that returns 0 for any x and
// a QuadratureError on Val (an empty lookup table is a fatal condition per
// the error taxonomy).
func NewTable(points map[float64]float64) *Table {
	t := &Table{x: make([]float64, 0, len(points)), y: make([]float64, 0, len(points))}
	for x := range points {
		t.x = append(t.x, x)
	}
	sort.Float64s(t.x)
	for _, x := range t.x {
		t.y = append(t.y, points[x])
	}
	return t
}

// NewTablePairs builds a Table from parallel, not-necessarily-sorted slices.
func NewTablePairs(xs, ys []float64) *Table {
	pts := make(map[float64]float64, len(xs))
	for i, x := range xs {
		pts[x] = ys[i]
	}
	return NewTable(pts)
}

// Val returns the interpolated (or extrapolated) y for the given x. A table
// with a single point returns that point's y for any x.
func (t *Table) Val(x float64) (float64, error) {
	n := len(t.x)
	if n == 0 {
		return 0, &QuadratureError{Reason: "empty lookup table"}
	}
	if n == 1 {
		return t.y[0], nil
	}

	i := sort.SearchFloat64s(t.x, x)
	switch {
	case i == 0:
		return t.interp(0, 1, x), nil
	case i >= n:
		return t.interp(n-2, n-1, x), nil
	case t.x[i] == x:
		return t.y[i], nil
	default:
		return t.interp(i-1, i, x), nil
	}
}

func (t *Table) interp(lo, hi int, x float64) float64 {
	x0, x1 := t.x[lo], t.x[hi]
	y0, y1 := t.y[lo], t.y[hi]
	if x1 == x0 {
		return y0
	}
	return y0 + (y1-y0)*(x-x0)/(x1-x0)
}

// Len reports the number of stored points.
func (t *Table) Len() int { return len(t.x) }
