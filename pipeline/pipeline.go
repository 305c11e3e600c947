// Package pipeline runs the neutral model end to end on an in-memory count
// matrix: ignore-level filtering, rarefaction, frequencies, the fit, its
// confidence band, and outlier classification.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/carbocation/neutralfit/neutral"
	"github.com/carbocation/neutralfit/otutable"
	"github.com/carbocation/neutralfit/outlier"
	"github.com/carbocation/neutralfit/rarefy"
	"golang.org/x/exp/rand"
)

var ErrAllSamplesDropped = errors.New("rarefaction dropped every sample")

type Options struct {
	// Depth is the rarefaction depth. 0 selects the shallowest sample.
	Depth int

	// IgnoreLevel drops species with this many reads or fewer across all
	// samples, before rarefaction.
	IgnoreLevel int

	// Source drives rarefaction. nil seeds from the clock.
	Source rand.Source

	Threshold float64
	Alpha     float64

	// Ranks restricts the taxonomy columns carried into the results. Empty
	// keeps every rank the taxonomy has.
	Ranks []string

	Fit neutral.FitSettings
}

func DefaultOptions() Options {
	return Options{
		Threshold: outlier.DefaultThreshold,
		Alpha:     neutral.DefaultAlpha,
		Fit:       neutral.DefaultFitSettings,
	}
}

// Seeded returns a reproducible source for Options.Source.
func Seeded(seed uint64) rand.Source {
	return rand.NewSource(seed)
}

type Result struct {
	// Input is the matrix after the ignore-level filter.
	Input otutable.CountMatrix

	Rarefaction rarefy.Result
	Frequencies neutral.FrequencyTable
	Fit         neutral.FitResult

	RSquared        float64
	RSquaredDefined bool

	Band       neutral.Band
	Partition  outlier.BandPartition
	Deviations []outlier.Deviation
	Ranked     []outlier.Deviation

	// MissingRanks lists requested taxonomy ranks absent from the taxonomy.
	MissingRanks []string

	Threshold float64
	Alpha     float64
}

func (o Options) validate() error {
	if o.IgnoreLevel < 0 {
		return fmt.Errorf("ignore level %d < 0", o.IgnoreLevel)
	}
	if o.Threshold < 0 {
		return fmt.Errorf("outlier threshold %v < 0", o.Threshold)
	}
	if o.Alpha <= 0 || o.Alpha >= 1 {
		return fmt.Errorf("alpha %v is outside (0,1)", o.Alpha)
	}
	return nil
}

// Run fits the neutral model to m. The input matrix and taxonomy are not
// modified. Dropped samples are reported in Result.Rarefaction.Dropped.
func Run(m otutable.CountMatrix, taxonomy otutable.TaxonomyTable, opts Options) (Result, error) {
	if err := opts.validate(); err != nil {
		return Result{}, err
	}
	if err := m.Validate(); err != nil {
		return Result{}, err
	}

	out := Result{
		Input:     m.FilterIgnoreLevel(opts.IgnoreLevel),
		Threshold: opts.Threshold,
		Alpha:     opts.Alpha,
	}

	rarefied, err := rarefy.Rarefy(out.Input, opts.Depth, opts.Source)
	if err != nil {
		return out, err
	}
	out.Rarefaction = rarefied
	if err := checkRarefied(rarefied); err != nil {
		return out, err
	}

	var selected otutable.TaxonomyTable
	selected, out.MissingRanks = outlier.SelectRanks(taxonomy, opts.Ranks)

	out.Frequencies = neutral.Frequencies(rarefied.Matrix, rarefied.Depth, selected)

	out.Fit, err = neutral.FitTable(out.Frequencies, opts.Fit)
	if err != nil {
		return out, err
	}

	out.RSquared, out.RSquaredDefined = neutral.RSquared(out.Frequencies.Occurrences(), out.Fit.Predicted)
	out.Band = neutral.Bands(out.Fit.Predicted, out.Frequencies.NSamples, opts.Alpha)
	out.Partition = outlier.Band(out.Frequencies.Records, out.Fit, out.Band)
	out.Deviations = outlier.Deviations(out.Frequencies.Records, out.Fit, opts.Threshold)
	out.Ranked = outlier.Rank(out.Frequencies.Records, out.Fit, opts.Threshold)

	return out, nil
}

func checkRarefied(r rarefy.Result) error {
	if r.Matrix.NSamples() == 0 {
		return fmt.Errorf("%d samples below %d reads: %w", len(r.Dropped), r.Depth, ErrAllSamplesDropped)
	}
	return nil
}

// Curve evaluates the fitted model and its band along the plotting
// abscissa.
func (r Result) Curve() (x, y []float64, band neutral.Band) {
	x = neutral.PlotAbscissa(r.Frequencies.MeanAbundances())
	y, band = neutral.CurveBand(r.Fit.N, r.Fit.M, r.Fit.NSamples, r.Alpha, x)
	return x, y, band
}
