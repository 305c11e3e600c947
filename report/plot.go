package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/carbocation/neutralfit/pipeline"
	"github.com/carbocation/pfx"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	curveColor = drawing.ColorFromHex("1f77b4")
	bandColor  = drawing.ColorFromHex("9ecae1")
	pointColor = drawing.ColorFromHex("7f7f7f").WithAlpha(160)

	highlightColors = []drawing.Color{
		drawing.ColorFromHex("d62728"),
		drawing.ColorFromHex("2ca02c"),
		drawing.ColorFromHex("ff7f0e"),
		drawing.ColorFromHex("9467bd"),
		drawing.ColorFromHex("8c564b"),
		drawing.ColorFromHex("e377c2"),
	}
)

// Highlight selects the species whose label at Rank equals Label, e.g.
// Phylum=p__Proteobacteria.
type Highlight struct {
	Rank  string
	Label string
}

func (h Highlight) String() string {
	return h.Rank + "=" + h.Label
}

// ParseHighlights parses a comma-separated list of Rank=label pairs.
func ParseHighlights(s string) ([]Highlight, error) {
	var out []Highlight
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		parts := strings.SplitN(item, "=", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
			return nil, fmt.Errorf("Highlight %q is not of the form Rank=label", item)
		}
		out = append(out, Highlight{Rank: strings.TrimSpace(parts[0]), Label: strings.TrimSpace(parts[1])})
	}
	return out, nil
}

// PlotFit renders observed occurrence against log10 mean abundance, with the
// fitted curve and its Wilson band, as a PNG.
func PlotFit(w io.Writer, res pipeline.Result) error {
	graph, err := fitChart(res)
	if err != nil {
		return err
	}

	return pfx.Err(graph.Render(chart.PNG, w))
}

// PlotHighlighted renders the PlotFit chart with the species matching each
// highlight drawn in its own colour, plus a legend. Highlights matching no
// species are left out of the chart.
func PlotHighlighted(w io.Writer, res pipeline.Result, highlights []Highlight) error {
	graph, err := fitChart(res)
	if err != nil {
		return err
	}

	for i, h := range highlights {
		x, y, err := highlightPoints(res, h)
		if err != nil {
			return err
		}
		if len(x) == 0 {
			continue
		}

		graph.Series = append(graph.Series, chart.ContinuousSeries{
			Name:    h.String(),
			XValues: x,
			YValues: y,
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotWidth:    4,
				DotColor:    highlightColors[i%len(highlightColors)],
			},
		})
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return pfx.Err(graph.Render(chart.PNG, w))
}

// highlightPoints returns log10 mean abundance and occurrence of the species
// labelled h.Label at h.Rank.
func highlightPoints(res pipeline.Result, h Highlight) (x, y []float64, err error) {
	rank := -1
	for i, name := range res.Frequencies.Ranks {
		if name == h.Rank {
			rank = i
			break
		}
	}
	if rank < 0 {
		return nil, nil, fmt.Errorf("Cannot highlight %s: the taxonomy has no %q rank (have: %s)", h, h.Rank, strings.Join(res.Frequencies.Ranks, ", "))
	}

	for _, r := range res.Frequencies.Records {
		if rank < len(r.Taxonomy) && r.Taxonomy[rank] == h.Label {
			x = append(x, math.Log10(r.MeanAbundance))
			y = append(y, r.Occurrence)
		}
	}
	return x, y, nil
}

func fitChart(res pipeline.Result) (chart.Chart, error) {
	if res.Frequencies.Empty() {
		return chart.Chart{}, fmt.Errorf("nothing to plot")
	}

	x, y, band := res.Curve()
	logX := log10All(x)

	title := "R^2 undefined"
	if res.RSquaredDefined {
		title = fmt.Sprintf("R^2 = %.3f, m = %.4g", res.RSquared, res.Fit.M)
	}

	return chart.Chart{
		Title:  title,
		Width:  800,
		Height: 600,
		XAxis: chart.XAxis{
			Name:  "log10(mean relative abundance)",
			Range: &chart.ContinuousRange{Min: logX[0], Max: 0},
		},
		YAxis: chart.YAxis{
			Name:  "occurrence frequency",
			Range: &chart.ContinuousRange{Min: 0, Max: 1},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "observed",
				XValues: log10All(res.Frequencies.MeanAbundances()),
				YValues: res.Frequencies.Occurrences(),
				Style: chart.Style{
					StrokeWidth: chart.Disabled,
					DotWidth:    3,
					DotColor:    pointColor,
				},
			},
			chart.ContinuousSeries{
				Name:    "neutral model",
				XValues: logX,
				YValues: y,
				Style: chart.Style{
					StrokeWidth: 2,
					StrokeColor: curveColor,
				},
			},
			bandSeries("lower bound", logX, band.Lower),
			bandSeries("upper bound", logX, band.Upper),
		},
	}, nil
}

// Dashes restart on every segment of a dense curve, so the band is drawn
// solid in a lighter shade of the curve colour.
func bandSeries(name string, x, y []float64) chart.ContinuousSeries {
	return chart.ContinuousSeries{
		Name:    name,
		XValues: x,
		YValues: y,
		Style: chart.Style{
			StrokeWidth: 1.5,
			StrokeColor: bandColor,
		},
	}
}

// go-chart's logarithmic range mishandles values below 1, so the abscissa is
// transformed up front.
func log10All(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = math.Log10(v)
	}
	return out
}
