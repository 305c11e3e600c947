package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/carbocation/neutralfit/compileinfo"
	"github.com/carbocation/neutralfit/pipeline"
	"github.com/carbocation/neutralfit/rarefy"
	"github.com/carbocation/pfx"
	"github.com/montanaflynn/stats"
)

type DepthSummary struct {
	Samples int
	Min     float64
	Median  float64
	Max     float64
}

// SummarizeDepths describes the per-sample read totals.
func SummarizeDepths(columnSums []int) (DepthSummary, error) {
	data := stats.LoadRawData(columnSums)
	out := DepthSummary{Samples: data.Len()}
	if out.Samples == 0 {
		return out, nil
	}

	var err error
	if out.Min, err = stats.Min(data); err != nil {
		return out, err
	}
	if out.Median, err = stats.Median(data); err != nil {
		return out, err
	}
	if out.Max, err = stats.Max(data); err != nil {
		return out, err
	}

	return out, nil
}

// DepthMessage describes how the rarefaction depth was chosen.
func DepthMessage(r rarefy.Result) string {
	switch r.Mode {
	case rarefy.ModeCustom:
		return fmt.Sprintf("rarefying to custom rarefaction level of %d reads", r.Depth)
	case rarefy.ModeFallback:
		return fmt.Sprintf("requested depth %d exceeds every sample; rarefying to highest possible uniform read depth of %d reads", r.Requested, r.Depth)
	}
	return fmt.Sprintf("rarefying to highest possible uniform read depth of %d reads", r.Depth)
}

// WriteFitReport writes a human-readable summary of the run: the input
// samples, the rarefaction, the fitted parameter with its statistics, and
// outlier counts.
func WriteFitReport(w io.Writer, res pipeline.Result) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", compileinfo.Get())

	sums := res.Input.ColumnSums()
	fmt.Fprintf(&b, "[[Samples]]\n")
	fmt.Fprintf(&b, "    %d species after ignore filter, %d samples\n", res.Input.NSpecies(), res.Input.NSamples())
	for j, id := range res.Input.Samples {
		fmt.Fprintf(&b, "    %s\t%d reads\n", id, sums[j])
	}
	summary, err := SummarizeDepths(sums)
	if err != nil {
		return pfx.Err(err)
	}
	fmt.Fprintf(&b, "    reads per sample: min %.0f, median %.1f, max %.0f\n", summary.Min, summary.Median, summary.Max)

	fmt.Fprintf(&b, "[[Rarefaction]]\n")
	fmt.Fprintf(&b, "    %s\n", DepthMessage(res.Rarefaction))
	for _, d := range res.Rarefaction.Dropped {
		fmt.Fprintf(&b, "    %s\n", d)
	}
	fmt.Fprintf(&b, "    %d samples subsampled, %d species retained\n", res.Rarefaction.Subsampled, res.Rarefaction.Matrix.NSpecies())

	fit := res.Fit
	fmt.Fprintf(&b, "[[Fit Statistics]]\n")
	fmt.Fprintf(&b, "    # fitting method   = Nelder-Mead\n")
	fmt.Fprintf(&b, "    # status           = %s\n", fit.Status)
	fmt.Fprintf(&b, "    # iterations       = %d\n", fit.Iterations)
	fmt.Fprintf(&b, "    # function evals   = %d\n", fit.FuncEvaluations)
	fmt.Fprintf(&b, "    # data points      = %d\n", fit.NData())
	fmt.Fprintf(&b, "    # variables        = 1\n")
	fmt.Fprintf(&b, "    chi-square         = %s\n", formatStat(fit.ChiSquare()))
	fmt.Fprintf(&b, "    reduced chi-square = %s\n", formatStat(fit.ReducedChiSquare()))
	fmt.Fprintf(&b, "    Akaike info crit   = %s\n", formatStat(fit.AIC()))
	fmt.Fprintf(&b, "    Bayesian info crit = %s\n", formatStat(fit.BIC()))

	fmt.Fprintf(&b, "[[Variables]]\n")
	fmt.Fprintf(&b, "    N: %d (fixed)\n", fit.N)
	if fit.HasStdErr {
		fmt.Fprintf(&b, "    m: %.8g +/- %.8g\n", fit.M, fit.MStdErr)
	} else {
		fmt.Fprintf(&b, "    m: %.8g +/- (not estimable)\n", fit.M)
	}

	fmt.Fprintf(&b, "[[Goodness of Fit]]\n")
	if res.RSquaredDefined {
		fmt.Fprintf(&b, "    R^2 = %.4f\n", res.RSquared)
	} else {
		fmt.Fprintf(&b, "    R^2 undefined (observed occurrence has no variance)\n")
	}

	fmt.Fprintf(&b, "[[Outliers]]\n")
	fmt.Fprintf(&b, "    %d above and %d below the %.0f%% Wilson band\n", len(res.Partition.Above), len(res.Partition.Below), 100*(1-res.Alpha))
	fmt.Fprintf(&b, "    %d differ from the prediction by more than %g\n", len(res.Ranked), res.Threshold)

	_, err = io.WriteString(w, b.String())
	return pfx.Err(err)
}

func formatStat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.8g", v)
}
