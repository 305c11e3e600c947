package otutable

import (
	"encoding/csv"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func tsvReader(s string) *csv.Reader {
	r := csv.NewReader(strings.NewReader(s))
	r.Comma = '\t'
	r.FieldsPerRecord = -1
	return r
}

func TestReadCountMatrix(t *testing.T) {
	input := "# Constructed from biom file\n" +
		"#OTU ID\tS1\tS2\tS3\n" +
		"otu1\t10\t0\t3.0\n" +
		"otu2\t0\t5\t1\n"

	m, err := ReadCountMatrix(tsvReader(input))
	if err != nil {
		t.Fatal(err)
	}

	expected := CountMatrix{
		Species: []string{"otu1", "otu2"},
		Samples: []string{"S1", "S2", "S3"},
		Counts:  [][]int{{10, 0, 3}, {0, 5, 1}},
	}

	if diff := cmp.Diff(expected, m); diff != "" {
		t.Fatalf("ReadCountMatrix mismatch (-want +got):\n%s", diff)
	}
}

func TestReadCountMatrixRejects(t *testing.T) {
	for _, v := range []struct {
		Name  string
		Input string
		Err   error
	}{
		{"negative", "id\tS1\notu1\t-1\n", ErrNegativeCount},
		{"duplicate species", "id\tS1\notu1\t1\notu1\t2\n", ErrDuplicateID},
		{"duplicate sample", "id\tS1\tS1\notu1\t1\t2\n", ErrDuplicateID},
		{"ragged", "id\tS1\tS2\notu1\t1\n", ErrRaggedRow},
	} {
		_, err := ReadCountMatrix(tsvReader(v.Input))
		if !errors.Is(err, v.Err) {
			t.Fatalf("\nError with input: %+v\nGot: %v\nExpected: %v\n", v.Name, err, v.Err)
		}
	}

	if _, err := ReadCountMatrix(tsvReader("id\tS1\notu1\t1.5\n")); err == nil {
		t.Fatalf("Expected a fractional count to be rejected")
	}
}

func TestFilterIgnoreLevel(t *testing.T) {
	m, err := NewCountMatrix(
		[]string{"a", "b", "c"},
		[]string{"S1", "S2"},
		[][]int{{1, 1}, {0, 0}, {5, 0}},
	)
	if err != nil {
		t.Fatal(err)
	}

	if got := m.FilterIgnoreLevel(0).Species; !cmp.Equal(got, []string{"a", "c"}) {
		t.Fatalf("ignore level 0 kept %v", got)
	}

	if got := m.FilterIgnoreLevel(2).Species; !cmp.Equal(got, []string{"c"}) {
		t.Fatalf("ignore level 2 kept %v", got)
	}

	// The receiver is untouched
	if len(m.Species) != 3 {
		t.Fatalf("FilterIgnoreLevel modified its receiver")
	}
}

func TestSums(t *testing.T) {
	m, err := NewCountMatrix(
		[]string{"a", "b"},
		[]string{"S1", "S2", "S3"},
		[][]int{{1, 2, 3}, {4, 5, 6}},
	)
	if err != nil {
		t.Fatal(err)
	}

	if got := m.RowSums(); !cmp.Equal(got, []int{6, 15}) {
		t.Fatalf("RowSums: %v", got)
	}
	if got := m.ColumnSums(); !cmp.Equal(got, []int{5, 7, 9}) {
		t.Fatalf("ColumnSums: %v", got)
	}

	sub := m.SelectSamples([]int{2, 0})
	if !cmp.Equal(sub.Samples, []string{"S3", "S1"}) || !cmp.Equal(sub.Counts, [][]int{{3, 1}, {6, 4}}) {
		t.Fatalf("SelectSamples: %+v", sub)
	}
}

func TestReadTaxonomyLayouts(t *testing.T) {
	defaultInput := "otu_id\tKingdom\tPhylum\tGenus\n" +
		"otu1\tBacteria\tFirmicutes\tStreptococcus\n" +
		"otu2\tBacteria\tProteobacteria\n"

	table, missing, err := ReadTaxonomy(tsvReader(defaultInput), Layouts["default"])
	if err != nil {
		t.Fatal(err)
	}

	if !cmp.Equal(table.Ranks, []string{"Kingdom", "Phylum", "Genus"}) {
		t.Fatalf("Ranks: %v", table.Ranks)
	}
	if !cmp.Equal(missing, []string{"Class", "Order", "Family", "Species"}) {
		t.Fatalf("Missing: %v", missing)
	}
	if got := table.Lookup("otu2"); !cmp.Equal(got, []string{"Bacteria", "Proteobacteria", ""}) {
		t.Fatalf("Lookup(otu2): %v", got)
	}
	if got := table.Lookup("absent"); !cmp.Equal(got, []string{"", "", ""}) {
		t.Fatalf("Lookup(absent): %v", got)
	}

	tcgaInput := "idx\tgOTU\tDomain\tPhylum\n" +
		"0\tg1\tBacteria\tActinobacteria\n"

	table, _, err = ReadTaxonomy(tsvReader(tcgaInput), Layouts["TCGA_WGS"])
	if err != nil {
		t.Fatal(err)
	}
	if i, ok := table.Index("Domain"); !ok || i != 0 {
		t.Fatalf("Domain should be the first rank of a TCGA_WGS table, got %v %v", i, ok)
	}
	if got := table.Lookup("g1"); !cmp.Equal(got, []string{"Bacteria", "Actinobacteria"}) {
		t.Fatalf("Lookup(g1): %v", got)
	}
}

func TestTaxonomySelect(t *testing.T) {
	table := TaxonomyTable{
		Ranks:  []string{"Kingdom", "Phylum"},
		Labels: map[string][]string{"a": {"Bacteria", "Firmicutes"}},
	}

	sub, missing := table.Select([]string{"Phylum", "Genus"})
	if !cmp.Equal(sub.Ranks, []string{"Phylum"}) || !cmp.Equal(missing, []string{"Genus"}) {
		t.Fatalf("Select: %+v %v", sub, missing)
	}
	if got := sub.Lookup("a"); !cmp.Equal(got, []string{"Firmicutes"}) {
		t.Fatalf("Lookup: %v", got)
	}
}

func TestLookupLayout(t *testing.T) {
	if _, err := LookupLayout("nope"); err == nil {
		t.Fatalf("Expected an unknown layout to fail")
	}
	if _, err := LookupLayout("TCGA_WGS"); err != nil {
		t.Fatal(err)
	}
}
