package report

import (
	"fmt"
	"io"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/carbocation/neutralfit/outlier"
)

// PrintDeviationHistogram draws the distribution of signed deviations
// (observed minus predicted occurrence) in the terminal.
func PrintDeviationHistogram(w io.Writer, deviations []outlier.Deviation, bins int) error {
	if len(deviations) == 0 {
		_, err := fmt.Fprintln(w, "no deviations to plot")
		return err
	}

	values := make([]float64, len(deviations))
	for i, d := range deviations {
		values[i] = d.Signed
	}

	hist := histogram.Hist(bins, values)
	return histogram.Fprint(w, hist, histogram.Linear(40))
}
