package neutral

import (
	"math"

	"github.com/BenLubar/memoize"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultAlpha gives a two-sided 95% interval.
const DefaultAlpha = 0.05

var memoizedCritical = memoize.Memoize(critical)

func critical(alpha float64) float64 {
	return distuv.UnitNormal.Quantile(1 - alpha/2)
}

// Band holds per-point confidence limits.
type Band struct {
	Lower []float64
	Upper []float64
}

// Wilson returns the two-sided Wilson score interval for a proportion q
// observed over n trials. The interval is clipped to [0,1] and always
// contains q. With no trials the interval collapses to q.
func Wilson(q float64, n int, alpha float64) (lower, upper float64) {
	if n <= 0 {
		return q, q
	}

	z := memoizedCritical.(func(float64) float64)(alpha)
	nf := float64(n)
	z2 := z * z

	denom := 1 + z2/nf
	center := (q + z2/(2*nf)) / denom
	dist := z * math.Sqrt(q*(1-q)/nf+z2/(4*nf*nf)) / denom

	lower = math.Max(0, center-dist)
	upper = math.Min(1, center+dist)

	return math.Min(lower, q), math.Max(upper, q)
}

// Bands computes Wilson limits around each predicted occurrence.
func Bands(predicted []float64, nSamples int, alpha float64) Band {
	out := Band{
		Lower: make([]float64, len(predicted)),
		Upper: make([]float64, len(predicted)),
	}
	for i, q := range predicted {
		out.Lower[i], out.Upper[i] = Wilson(q, nSamples, alpha)
	}
	return out
}

// CurveBand evaluates the model and its Wilson limits along arbitrary
// abundances, for drawing.
func CurveBand(N int, m float64, nSamples int, alpha float64, x []float64) ([]float64, Band) {
	curve := Curve(N, m, x)
	return curve, Bands(curve, nSamples, alpha)
}
