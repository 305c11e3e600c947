// Package neutral implements the Sloan neutral community model: per-species
// frequencies, the truncated beta occurrence curve, the one-parameter fit of
// the immigration probability m, its goodness of fit, and Wilson score bands.
package neutral

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mathext"
)

// Occurrence is the predicted fraction of samples in which a species of mean
// relative abundance p is detected, given read depth N and immigration
// probability m. It is the mass of Beta(N*m*p, N*m*(1-p)) above 1/N.
func Occurrence(p float64, N int, m float64) float64 {
	switch {
	case N <= 1, p <= 0:
		return 0
	case p >= 1:
		return 1
	case m <= 0:
		// Bernoulli limit of the beta as its shape parameters vanish.
		return p
	}

	nm := float64(N) * m
	a, b := nm*p, nm*(1-p)

	return 1 - mathext.RegIncBeta(a, b, 1/float64(N))
}

// Curve evaluates Occurrence at every abundance in x.
func Curve(N int, m float64, x []float64) []float64 {
	out := make([]float64, len(x))
	for i, p := range x {
		out[i] = Occurrence(p, N, m)
	}
	return out
}

// LogSpace returns n log-spaced abundances from lo to hi inclusive. lo and hi
// must be positive.
func LogSpace(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	return floats.LogSpan(make([]float64, n), lo, hi)
}

// PlotAbscissa returns the abscissa used to draw a fitted curve: 1000
// log-spaced points from a tenth of the rarest species' abundance up to 1.
func PlotAbscissa(abundances []float64) []float64 {
	lo := math.Inf(1)
	for _, v := range abundances {
		if v > 0 && v < lo {
			lo = v
		}
	}
	if math.IsInf(lo, 1) {
		return nil
	}
	return LogSpace(lo/10, 1, 1000)
}
