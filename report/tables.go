// Package report writes the results of a neutral model run: delimited tables,
// a plain-text fit report, a terminal histogram and a PNG plot.
package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/carbocation/neutralfit/outlier"
	"github.com/carbocation/neutralfit/pipeline"
	"github.com/carbocation/neutralfit/rarefy"
	"github.com/carbocation/pfx"
	"github.com/gocarina/gocsv"
)

func tsvWriter(w io.Writer) *csv.Writer {
	out := csv.NewWriter(w)
	out.Comma = '\t'
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Header is the column layout shared by the full frequency table and the
// non-neutral table.
func Header(ranks []string) []string {
	out := []string{"species_id", "mean_abundance", "occurrence"}
	out = append(out, ranks...)
	return append(out, "predicted_occurrence", "lower_conf_int", "upper_conf_int")
}

// WriteFrequencyTable writes one row per fitted species, sorted by mean
// abundance, with its prediction and confidence limits.
func WriteFrequencyTable(w io.Writer, res pipeline.Result) error {
	out := tsvWriter(w)
	if err := out.Write(Header(res.Frequencies.Ranks)); err != nil {
		return pfx.Err(err)
	}

	for i, r := range res.Frequencies.Records {
		row := []string{r.SpeciesID, formatFloat(r.MeanAbundance), formatFloat(r.Occurrence)}
		row = append(row, r.Taxonomy...)
		row = append(row,
			formatFloat(res.Fit.Predicted[i]),
			formatFloat(res.Band.Lower[i]),
			formatFloat(res.Band.Upper[i]),
		)
		if err := out.Write(row); err != nil {
			return pfx.Err(err)
		}
	}

	out.Flush()
	return pfx.Err(out.Error())
}

// WriteNonNeutral writes the species outside the confidence band, those
// above it first, in the frequency table layout plus the side of the band.
func WriteNonNeutral(w io.Writer, res pipeline.Result) error {
	out := tsvWriter(w)
	if err := out.Write(append(Header(res.Frequencies.Ranks), "side")); err != nil {
		return pfx.Err(err)
	}

	for _, o := range res.Partition.NonNeutral() {
		row := []string{o.SpeciesID, formatFloat(o.MeanAbundance), formatFloat(o.Observed)}
		row = append(row, o.Taxonomy...)
		row = append(row,
			formatFloat(o.Predicted),
			formatFloat(o.Lower),
			formatFloat(o.Upper),
			o.Side.String(),
		)
		if err := out.Write(row); err != nil {
			return pfx.Err(err)
		}
	}

	out.Flush()
	return pfx.Err(out.Error())
}

// DeviationHeader is the column layout of the deviation ranking: the fixed
// fields followed by one column per taxonomy rank.
func DeviationHeader(ranks []string) []string {
	out := []string{"species_id", "occurrence", "predicted_occurrence", "difference", "signed_difference"}
	return append(out, ranks...)
}

// WriteDeviations writes ranked deviations with one column per rank. ranks
// names the columns of each deviation's Taxonomy.
func WriteDeviations(w io.Writer, ranks []string, deviations []outlier.Deviation) error {
	out := tsvWriter(w)
	if err := out.Write(DeviationHeader(ranks)); err != nil {
		return pfx.Err(err)
	}

	for _, d := range deviations {
		row := []string{
			d.SpeciesID,
			formatFloat(d.Observed),
			formatFloat(d.Predicted),
			formatFloat(d.Difference),
			formatFloat(d.Signed),
		}
		labels := make([]string, len(ranks))
		copy(labels, d.Taxonomy)
		if err := out.Write(append(row, labels...)); err != nil {
			return pfx.Err(err)
		}
	}

	out.Flush()
	return pfx.Err(out.Error())
}

// WriteDropped lists the samples removed for having fewer reads than the
// rarefaction depth.
func WriteDropped(w io.Writer, dropped []rarefy.DroppedSample) error {
	if dropped == nil {
		dropped = []rarefy.DroppedSample{}
	}
	return pfx.Err(gocsv.MarshalCSV(dropped, gocsv.NewSafeCSVWriter(tsvWriter(w))))
}
