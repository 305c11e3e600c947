// Package outlier classifies species whose observed occurrence departs from
// the neutral model, either by leaving the confidence band or by differing
// from the prediction by more than a fixed threshold.
package outlier

import (
	"fmt"
	"math"
	"sort"

	"github.com/carbocation/neutralfit/neutral"
	"github.com/carbocation/neutralfit/otutable"
)

// DefaultThreshold is the absolute occurrence difference beyond which a
// species is ranked as a far outlier.
const DefaultThreshold = 0.5

type Side int

const (
	Above Side = iota
	Below
)

func (s Side) String() string {
	switch s {
	case Above:
		return "above"
	case Below:
		return "below"
	}
	return fmt.Sprintf("Side(%d)", int(s))
}

// BandOutlier is a species observed outside its confidence band.
type BandOutlier struct {
	SpeciesID     string
	MeanAbundance float64
	Observed      float64
	Predicted     float64
	Lower         float64
	Upper         float64

	// Deviation is Observed - Predicted.
	Deviation float64
	Side      Side
	Taxonomy  []string
}

type BandPartition struct {
	Above []BandOutlier
	Below []BandOutlier
}

// NonNeutral returns the species above the band followed by those below it.
func (b BandPartition) NonNeutral() []BandOutlier {
	out := make([]BandOutlier, 0, len(b.Above)+len(b.Below))
	out = append(out, b.Above...)
	return append(out, b.Below...)
}

// Band partitions species by whether their observed occurrence lies strictly
// above the upper limit or strictly below the lower limit. records, the
// fit's predictions and the band must be aligned.
func Band(records []neutral.FrequencyRecord, fit neutral.FitResult, band neutral.Band) BandPartition {
	var out BandPartition
	for i, r := range records {
		o := BandOutlier{
			SpeciesID:     r.SpeciesID,
			MeanAbundance: r.MeanAbundance,
			Observed:      r.Occurrence,
			Predicted:     fit.Predicted[i],
			Lower:         band.Lower[i],
			Upper:         band.Upper[i],
			Deviation:     r.Occurrence - fit.Predicted[i],
			Taxonomy:      r.Taxonomy,
		}

		switch {
		case o.Observed > o.Upper:
			o.Side = Above
			out.Above = append(out.Above, o)
		case o.Observed < o.Lower:
			o.Side = Below
			out.Below = append(out.Below, o)
		}
	}
	return out
}

// Deviation is one species' distance from the model.
type Deviation struct {
	SpeciesID string
	Observed  float64
	Predicted float64

	// Difference is |Observed - Predicted|; Signed keeps the direction.
	Difference float64
	Signed     float64

	// Far is set when Difference exceeds the ranking threshold.
	Far      bool
	Taxonomy []string
}

// Deviations computes the distance of every species from the model, in
// record order.
func Deviations(records []neutral.FrequencyRecord, fit neutral.FitResult, threshold float64) []Deviation {
	out := make([]Deviation, len(records))
	for i, r := range records {
		signed := r.Occurrence - fit.Predicted[i]
		out[i] = Deviation{
			SpeciesID:  r.SpeciesID,
			Observed:   r.Occurrence,
			Predicted:  fit.Predicted[i],
			Difference: math.Abs(signed),
			Signed:     signed,
			Far:        math.Abs(signed) > threshold,
			Taxonomy:   r.Taxonomy,
		}
	}
	return out
}

// Rank returns the species farther than threshold from their prediction,
// largest difference first.
func Rank(records []neutral.FrequencyRecord, fit neutral.FitResult, threshold float64) []Deviation {
	var out []Deviation
	for _, d := range Deviations(records, fit, threshold) {
		if d.Far {
			out = append(out, d)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Difference != out[j].Difference {
			return out[i].Difference > out[j].Difference
		}
		return out[i].SpeciesID < out[j].SpeciesID
	})

	return out
}

// SelectRanks restricts a taxonomy to the wanted rank columns. Wanted ranks
// the table lacks are reported rather than treated as an error. An empty
// want keeps every rank.
func SelectRanks(table otutable.TaxonomyTable, want []string) (otutable.TaxonomyTable, []string) {
	if len(want) == 0 {
		return table, nil
	}
	return table.Select(want)
}
