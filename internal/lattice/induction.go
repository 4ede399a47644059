package lattice

import "math"

// layerFunc fills cur with the continuation values of time step i from the
// values of step i+1 held in next. It returns the node prices of step i
// (aligned with cur) and the populated index range [lo, hi].
type layerFunc func(i int, next, cur []float64) (prices []float64, lo, hi int, err error)

// rollback walks the time index from steps-1 down to 0 over two alternating
// layers seeded with terminal. For American contracts every node in the
// populated range is floored against intrinsic after the whole layer is
// computed. The returned slice is the step-0 layer.
func rollback(o Options, steps int, terminal []float64, layer layerFunc, american bool, intrinsic Payoff) ([]float64, error) {
	next := terminal
	cur := make([]float64, len(terminal))
	for i := steps - 1; i >= 0; i-- {
		prices, lo, hi, err := layer(i, next, cur)
		if err != nil {
			return nil, err
		}
		if american {
			for j := lo; j <= hi; j++ {
				cur[j] = math.Max(cur[j], intrinsic(prices[j]))
			}
		}
		if o.OnLayer != nil {
			o.OnLayer(i, prices[lo:hi+1], cur[lo:hi+1])
		}
		next, cur = cur, next
	}
	return next, nil
}
