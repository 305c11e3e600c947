package neutral

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/optimize"
)

var (
	ErrFitNonConvergence = errors.New("neutral model fit did not converge")
	ErrNoSpecies         = errors.New("no species to fit")
)

// FitSettings bounds the optimizer. Both budgets must be finite.
type FitSettings struct {
	// InitialM is the starting guess, in [0,1].
	InitialM float64

	MaxIterations  int
	MaxEvaluations int

	// The fit has converged once the objective improves by less than
	// Tolerance for ConvergeIterations consecutive iterations.
	Tolerance          float64
	ConvergeIterations int
}

var DefaultFitSettings = FitSettings{
	InitialM:           0.5,
	MaxIterations:      1000,
	MaxEvaluations:     10000,
	Tolerance:          1e-12,
	ConvergeIterations: 50,
}

type FitResult struct {
	// N is the read depth the model was fitted at.
	N int

	M         float64
	MStdErr   float64
	HasStdErr bool

	// Predicted is aligned with the fitted records.
	Predicted []float64

	Converged       bool
	Status          string
	Iterations      int
	FuncEvaluations int

	// SSR is the sum of squared residuals at M.
	SSR float64

	NSamples int
}

// FitTable fits the model to a frequency table at the table's depth.
func FitTable(t FrequencyTable, settings FitSettings) (FitResult, error) {
	res, err := Fit(t.Records, t.Depth, settings)
	if err != nil {
		return res, err
	}
	res.NSamples = t.NSamples
	return res, nil
}

// Fit finds the m in [0,1] that minimizes the squared difference between
// observed occurrence and Occurrence(mean abundance; N, m). The bound is
// enforced by optimizing theta with m = (sin(theta)+1)/2.
func Fit(records []FrequencyRecord, N int, settings FitSettings) (FitResult, error) {
	if len(records) == 0 {
		return FitResult{}, ErrNoSpecies
	}
	if settings.MaxIterations <= 0 || settings.MaxEvaluations <= 0 {
		return FitResult{}, fmt.Errorf("fit budget must be finite, got %d iterations and %d evaluations", settings.MaxIterations, settings.MaxEvaluations)
	}

	ssr := func(m float64) float64 {
		sum := 0.0
		for _, r := range records {
			d := r.Occurrence - Occurrence(r.MeanAbundance, N, m)
			sum += d * d
		}
		return sum
	}

	m0 := math.Max(0, math.Min(1, settings.InitialM))
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return ssr(boundedM(x[0]))
		},
	}
	opts := &optimize.Settings{
		MajorIterations: settings.MaxIterations,
		FuncEvaluations: settings.MaxEvaluations,
		Converger: &optimize.FunctionConverge{
			Absolute:   settings.Tolerance,
			Iterations: settings.ConvergeIterations,
		},
	}

	result, err := optimize.Minimize(problem, []float64{math.Asin(2*m0 - 1)}, opts, &optimize.NelderMead{})
	if err != nil {
		return FitResult{}, fmt.Errorf("%v: %w", err, ErrFitNonConvergence)
	}
	if result.Status.Early() {
		return FitResult{}, fmt.Errorf("stopped with status %s after %d iterations and %d evaluations: %w",
			result.Status, result.Stats.MajorIterations, result.Stats.FuncEvaluations, ErrFitNonConvergence)
	}

	m := boundedM(result.X[0])
	out := FitResult{
		N:               N,
		M:               m,
		Predicted:       make([]float64, len(records)),
		Converged:       true,
		Status:          result.Status.String(),
		Iterations:      result.Stats.MajorIterations,
		FuncEvaluations: result.Stats.FuncEvaluations,
	}
	for i, r := range records {
		out.Predicted[i] = Occurrence(r.MeanAbundance, N, m)
	}
	out.SSR = ssr(m)
	out.MStdErr, out.HasStdErr = stdErr(records, N, m, out.SSR)

	return out, nil
}

func boundedM(theta float64) float64 {
	return (math.Sin(theta) + 1) / 2
}

// stdErr estimates the standard error of m from the curvature of the
// residuals: sqrt((SSR/dof) / sum(J^2)), with J the derivative of each
// prediction with respect to m.
func stdErr(records []FrequencyRecord, N int, m, ssr float64) (float64, bool) {
	dof := len(records) - 1
	if dof <= 0 {
		return 0, false
	}

	const edge = 1e-4
	formula := fd.Central
	switch {
	case m < edge:
		formula = fd.Forward
	case m > 1-edge:
		formula = fd.Backward
	}

	jj := 0.0
	for _, r := range records {
		p := r.MeanAbundance
		j := fd.Derivative(func(m float64) float64 {
			return Occurrence(p, N, m)
		}, m, &fd.Settings{Formula: formula})
		jj += j * j
	}
	if jj == 0 || math.IsNaN(jj) || math.IsInf(jj, 0) {
		return 0, false
	}

	return math.Sqrt((ssr / float64(dof)) / jj), true
}

// NData is the number of fitted points.
func (f FitResult) NData() int {
	return len(f.Predicted)
}

// ChiSquare is the unweighted chi-square, equal to SSR.
func (f FitResult) ChiSquare() float64 {
	return f.SSR
}

// ReducedChiSquare divides SSR by the degrees of freedom (one free
// parameter). It is NaN with fewer than two points.
func (f FitResult) ReducedChiSquare() float64 {
	dof := f.NData() - 1
	if dof <= 0 {
		return math.NaN()
	}
	return f.SSR / float64(dof)
}

// AIC and BIC follow the least-squares convention
// n*ln(SSR/n) + penalty, with one free parameter.
func (f FitResult) AIC() float64 {
	return f.neg2LogLikelihood() + 2
}

func (f FitResult) BIC() float64 {
	return f.neg2LogLikelihood() + math.Log(float64(f.NData()))
}

func (f FitResult) neg2LogLikelihood() float64 {
	n := float64(f.NData())
	if n == 0 {
		return math.NaN()
	}
	return n * math.Log(math.Max(f.SSR, 1e-250)/n)
}
