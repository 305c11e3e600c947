package neutral

import (
	"sort"

	"github.com/carbocation/neutralfit/otutable"
)

// FrequencyRecord summarizes one species across the rarefied samples.
type FrequencyRecord struct {
	SpeciesID string

	// MeanAbundance is the species' reads divided by depth*samples.
	MeanAbundance float64

	// Occurrence is the fraction of samples with a nonzero count.
	Occurrence float64

	// Taxonomy is aligned with the owning table's Ranks.
	Taxonomy []string
}

// FrequencyTable is the fitting input: one record per species, sorted by mean
// abundance.
type FrequencyTable struct {
	Depth    int
	NSamples int
	Ranks    []string
	Records  []FrequencyRecord
}

// Frequencies computes per-species mean relative abundance and occurrence for
// a matrix rarefied to depth reads per sample, then left-joins the taxonomy.
func Frequencies(m otutable.CountMatrix, depth int, taxonomy otutable.TaxonomyTable) FrequencyTable {
	out := FrequencyTable{
		Depth:    depth,
		NSamples: m.NSamples(),
		Ranks:    append([]string(nil), taxonomy.Ranks...),
	}
	if out.NSamples == 0 || depth <= 0 {
		return out
	}

	totalReads := float64(depth) * float64(out.NSamples)
	for i, id := range m.Species {
		sum, present := 0, 0
		for _, v := range m.Counts[i] {
			sum += v
			if v > 0 {
				present++
			}
		}

		out.Records = append(out.Records, FrequencyRecord{
			SpeciesID:     id,
			MeanAbundance: float64(sum) / totalReads,
			Occurrence:    float64(present) / float64(out.NSamples),
			Taxonomy:      taxonomy.Lookup(id),
		})
	}

	sort.SliceStable(out.Records, func(i, j int) bool {
		a, b := out.Records[i], out.Records[j]
		if a.MeanAbundance != b.MeanAbundance {
			return a.MeanAbundance < b.MeanAbundance
		}
		return a.SpeciesID < b.SpeciesID
	})

	return out
}

func (t FrequencyTable) Empty() bool {
	return len(t.Records) == 0
}

func (t FrequencyTable) MeanAbundances() []float64 {
	out := make([]float64, len(t.Records))
	for i, r := range t.Records {
		out[i] = r.MeanAbundance
	}
	return out
}

func (t FrequencyTable) Occurrences() []float64 {
	out := make([]float64, len(t.Records))
	for i, r := range t.Records {
		out[i] = r.Occurrence
	}
	return out
}
