package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/carbocation/neutralfit/neutral"
	"github.com/carbocation/neutralfit/otutable"
	"github.com/carbocation/neutralfit/outlier"
	"github.com/carbocation/neutralfit/pipeline"
	"github.com/carbocation/neutralfit/rarefy"
	"github.com/google/go-cmp/cmp"
	"github.com/wcharczuk/go-chart/v2"
)

func fixture(t *testing.T) pipeline.Result {
	t.Helper()

	input, err := otutable.NewCountMatrix(
		[]string{"a", "b", "c"},
		[]string{"S1", "S2", "S3", "S4"},
		[][]int{{5, 10, 5, 9}, {5, 0, 5, 0}, {0, 0, 0, 1}},
	)
	if err != nil {
		t.Fatal(err)
	}

	records := []neutral.FrequencyRecord{
		{SpeciesID: "c", MeanAbundance: 0.025, Occurrence: 0.25, Taxonomy: []string{"Bacteria", ""}},
		{SpeciesID: "b", MeanAbundance: 0.25, Occurrence: 0.5, Taxonomy: []string{"Bacteria", "Firmicutes"}},
		{SpeciesID: "a", MeanAbundance: 0.725, Occurrence: 1, Taxonomy: []string{"", ""}},
	}
	fit := neutral.FitResult{N: 10, M: 0.3, NSamples: 4, Converged: true, Status: "FunctionConvergence", SSR: 0.01, MStdErr: 0.02, HasStdErr: true}
	fit.Predicted = make([]float64, len(records))
	for i, r := range records {
		fit.Predicted[i] = neutral.Occurrence(r.MeanAbundance, fit.N, fit.M)
	}

	res := pipeline.Result{
		Input: input,
		Rarefaction: rarefy.Result{
			Matrix:    input,
			Requested: 10,
			Depth:     10,
			Mode:      rarefy.ModeCustom,
			Dropped:   []rarefy.DroppedSample{{SampleID: "S5", Reads: 3, Depth: 10}},
		},
		Frequencies: neutral.FrequencyTable{
			Depth:    10,
			NSamples: 4,
			Ranks:    []string{"Kingdom", "Phylum"},
			Records:  records,
		},
		Fit:       fit,
		Threshold: outlier.DefaultThreshold,
		Alpha:     neutral.DefaultAlpha,
	}
	res.RSquared, res.RSquaredDefined = neutral.RSquared(res.Frequencies.Occurrences(), fit.Predicted)
	res.Band = neutral.Bands(fit.Predicted, 4, res.Alpha)
	res.Partition = outlier.Band(records, fit, res.Band)
	res.Deviations = outlier.Deviations(records, fit, res.Threshold)
	res.Ranked = outlier.Rank(records, fit, res.Threshold)

	return res
}

func lines(s string) [][]string {
	var out [][]string
	for _, line := range strings.Split(strings.TrimSpace(s), "\n") {
		out = append(out, strings.Split(line, "\t"))
	}
	return out
}

func TestWriteFrequencyTable(t *testing.T) {
	res := fixture(t)

	var buf bytes.Buffer
	if err := WriteFrequencyTable(&buf, res); err != nil {
		t.Fatal(err)
	}

	rows := lines(buf.String())
	expected := []string{"species_id", "mean_abundance", "occurrence", "Kingdom", "Phylum", "predicted_occurrence", "lower_conf_int", "upper_conf_int"}
	if diff := cmp.Diff(expected, rows[0]); diff != "" {
		t.Fatalf("Unexpected header (-want +got):\n%s", diff)
	}
	if len(rows) != 4 {
		t.Fatalf("Expected 3 data rows, got %d", len(rows)-1)
	}
	if diff := cmp.Diff([]string{"b", "0.25", "0.5", "Bacteria", "Firmicutes"}, rows[2][:5]); diff != "" {
		t.Fatalf("Unexpected row (-want +got):\n%s", diff)
	}
	for _, row := range rows[1:] {
		if len(row) != len(expected) {
			t.Fatalf("Row has %d columns, expected %d: %v", len(row), len(expected), row)
		}
	}
}

func TestWriteNonNeutral(t *testing.T) {
	res := fixture(t)
	res.Partition = outlier.BandPartition{
		Above: []outlier.BandOutlier{{SpeciesID: "up", Side: outlier.Above, Taxonomy: []string{"k", "p"}}},
		Below: []outlier.BandOutlier{{SpeciesID: "down", Side: outlier.Below, Taxonomy: []string{"k", "p"}}},
	}

	var buf bytes.Buffer
	if err := WriteNonNeutral(&buf, res); err != nil {
		t.Fatal(err)
	}

	rows := lines(buf.String())
	if rows[0][len(rows[0])-1] != "side" || len(rows) != 3 {
		t.Fatalf("Unexpected table: %v", rows)
	}
	if rows[1][0] != "up" || rows[2][0] != "down" || rows[1][len(rows[1])-1] != "above" {
		t.Fatalf("Expected species above the band first, got %v", rows)
	}
}

func TestWriteDeviationsKeepsRankColumns(t *testing.T) {
	layout, err := otutable.LookupLayout("TCGA_WGS")
	if err != nil {
		t.Fatal(err)
	}
	ranks := layout.Ranks[:2]

	deviations := []outlier.Deviation{
		{SpeciesID: "y", Observed: 0.1, Predicted: 0.7, Difference: 0.6, Signed: -0.6, Far: true, Taxonomy: nil},
		{SpeciesID: "x", Observed: 0.9, Predicted: 0.25, Difference: 0.65, Signed: 0.65, Far: true, Taxonomy: []string{"d__Bacteria", "p__Firmicutes"}},
	}

	var buf bytes.Buffer
	if err := WriteDeviations(&buf, ranks, deviations); err != nil {
		t.Fatal(err)
	}

	expected := [][]string{
		{"species_id", "occurrence", "predicted_occurrence", "difference", "signed_difference", "Domain", "Phylum"},
		{"y", "0.1", "0.7", "0.6", "-0.6", "", ""},
		{"x", "0.9", "0.25", "0.65", "0.65", "d__Bacteria", "p__Firmicutes"},
	}
	if diff := cmp.Diff(expected, lines(buf.String())); diff != "" {
		t.Fatalf("Unexpected deviations (-want +got):\n%s", diff)
	}
}

func TestWriteDropped(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteDropped(&buf, []rarefy.DroppedSample{{SampleID: "S5", Reads: 3, Depth: 10}}); err != nil {
		t.Fatal(err)
	}
	expected := [][]string{{"sample_id", "reads", "depth"}, {"S5", "3", "10"}}
	if diff := cmp.Diff(expected, lines(buf.String())); diff != "" {
		t.Fatalf("Unexpected dropped samples (-want +got):\n%s", diff)
	}

	buf.Reset()
	if err := WriteDropped(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "sample_id\treads\tdepth" {
		t.Fatalf("Expected a header only, got %q", buf.String())
	}
}

func TestWriteFitReport(t *testing.T) {
	res := fixture(t)

	var buf bytes.Buffer
	if err := WriteFitReport(&buf, res); err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		"rarefying to custom rarefaction level of 10 reads",
		"dropping sample S5 with 3 reads < 10",
		"S2\t10 reads",
		"reads per sample: min 10, median 10.0, max 10",
		"m: 0.3 +/- 0.02",
		"R^2 = ",
		"# data points      = 3",
	} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("Fit report lacks %q:\n%s", want, buf.String())
		}
	}
}

func TestDepthMessage(t *testing.T) {
	tests := []struct {
		input    rarefy.Result
		expected string
	}{
		{rarefy.Result{Mode: rarefy.ModeAuto, Depth: 7}, "highest possible uniform read depth of 7"},
		{rarefy.Result{Mode: rarefy.ModeFallback, Requested: 100, Depth: 7}, "requested depth 100 exceeds every sample"},
		{rarefy.Result{Mode: rarefy.ModeCustom, Depth: 5}, "custom rarefaction level of 5"},
	}

	for _, test := range tests {
		if got := DepthMessage(test.input); !strings.Contains(got, test.expected) {
			t.Fatalf("\nError with input: %+v\nExpected to contain: %q\nGot: %q\n", test.input, test.expected, got)
		}
	}
}

func TestSummarizeDepths(t *testing.T) {
	got, err := SummarizeDepths([]int{3, 10, 15, 40})
	if err != nil {
		t.Fatal(err)
	}
	expected := DepthSummary{Samples: 4, Min: 3, Median: 12.5, Max: 40}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Fatalf("Unexpected summary (-want +got):\n%s", diff)
	}

	if got, err := SummarizeDepths(nil); err != nil || got.Samples != 0 {
		t.Fatalf("Expected an empty summary, got %+v, %v", got, err)
	}
}

func TestPrintDeviationHistogram(t *testing.T) {
	res := fixture(t)

	var buf bytes.Buffer
	if err := PrintDeviationHistogram(&buf, res.Deviations, 5); err != nil {
		t.Fatal(err)
	}
	if n := len(lines(buf.String())); n != 5 {
		t.Fatalf("Expected 5 histogram rows, got %d:\n%s", n, buf.String())
	}
}

func TestPlotFit(t *testing.T) {
	res := fixture(t)

	var buf bytes.Buffer
	if err := PlotFit(&buf, res); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Fatalf("Expected PNG output")
	}

	if err := PlotFit(&buf, pipeline.Result{}); err == nil {
		t.Fatalf("Expected an error plotting an empty result")
	}
}

func TestHighlightPoints(t *testing.T) {
	res := fixture(t)

	x, y, err := highlightPoints(res, Highlight{Rank: "Kingdom", Label: "Bacteria"})
	if err != nil {
		t.Fatal(err)
	}
	// Records c and b are Bacteria; a has no kingdom label.
	if diff := cmp.Diff([]float64{0.25, 0.5}, y); diff != "" {
		t.Fatalf("Unexpected highlighted occurrences (-want +got):\n%s", diff)
	}
	if len(x) != 2 || x[0] >= x[1] {
		t.Fatalf("Unexpected highlighted abundances: %v", x)
	}

	x, _, err = highlightPoints(res, Highlight{Rank: "Phylum", Label: "Proteobacteria"})
	if err != nil || len(x) != 0 {
		t.Fatalf("Expected no matches, got %v, %v", x, err)
	}

	if _, _, err := highlightPoints(res, Highlight{Rank: "Genus", Label: "g__Streptococcus"}); err == nil {
		t.Fatalf("Expected an error for a rank the taxonomy lacks")
	}
}

func TestPlotHighlighted(t *testing.T) {
	res := fixture(t)

	highlights := []Highlight{
		{Rank: "Phylum", Label: "Firmicutes"},
		{Rank: "Phylum", Label: "Proteobacteria"},
	}

	var buf bytes.Buffer
	if err := PlotHighlighted(&buf, res, highlights); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Fatalf("Expected PNG output")
	}
}

func TestBandIsDrawnSolid(t *testing.T) {
	graph, err := fitChart(fixture(t))
	if err != nil {
		t.Fatal(err)
	}

	for _, s := range graph.Series {
		cs, ok := s.(chart.ContinuousSeries)
		if !ok {
			t.Fatalf("Unexpected series type %T", s)
		}
		if len(cs.Style.StrokeDashArray) != 0 {
			t.Fatalf("Series %q is dashed", cs.Name)
		}
	}
}

func TestParseHighlights(t *testing.T) {
	tests := []struct {
		input    string
		expected []Highlight
		fails    bool
	}{
		{"", nil, false},
		{"Phylum=p__Proteobacteria, Genus=g__Streptococcus", []Highlight{{"Phylum", "p__Proteobacteria"}, {"Genus", "g__Streptococcus"}}, false},
		{" Genus = g__a ,", []Highlight{{"Genus", "g__a"}}, false},
		{"Phylum", nil, true},
		{"=p__x", nil, true},
	}

	for _, test := range tests {
		got, err := ParseHighlights(test.input)
		if (err != nil) != test.fails {
			t.Fatalf("\nError with input: %q\nGot error: %v\n", test.input, err)
		}
		if diff := cmp.Diff(test.expected, got); diff != "" {
			t.Fatalf("\nError with input: %q\n(-want +got):\n%s", test.input, diff)
		}
	}
}
