package sawit

import "gonum.org/v1/gonum/integrate/quad"

// GaussLegendre integrates f over [a,b] using n-point Gauss-Legendre
// quadrature, grounded on spec.md §4.3's "N-point Gaussian quadrature"
// requirement. n must be in [1,9]; original_source/meteo.py and
// energybal.py hardcode the abscissas/weights for this range, but here the
// rule is obtained from gonum's fixed-node Gauss-Legendre quadrature
// (quad.Legendre) rather than hand-ported constants — see DESIGN.md for the
// rationale.
func GaussLegendre(f func(x float64) float64, a, b float64, n int) (float64, error) {
	if n < 1 || n > 9 {
		return 0, &QuadratureError{Reason: "quadrature order out of [1,9]"}
	}
	return quad.Fixed(f, a, b, n, quad.Legendre{}, 0), nil
}

// GaussLegendreNodes returns the n evaluation points and weights of the
// Gauss-Legendre rule over [a,b], already rescaled from gonum's canonical
// [-1,1] rule. Callers needing more than one integral over the same node set
// in a single pass (e.g. two quantities produced by one expensive per-node
// computation) use this instead of calling GaussLegendre once per quantity,
// which would redo the per-node work once per quantity.
func GaussLegendreNodes(a, b float64, n int) (x, w []float64, err error) {
	if n < 1 || n > 9 {
		return nil, nil, &QuadratureError{Reason: "quadrature order out of [1,9]"}
	}
	x = make([]float64, n)
	w = make([]float64, n)
	(quad.Legendre{}).FixedLocations(x, w, a, b)
	return x, w, nil
}
