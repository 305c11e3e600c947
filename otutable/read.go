package otutable

import (
	"encoding/csv"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ReadCountMatrix parses a delimited OTU table: a header row naming the
// samples (its first cell labels the identifier column and is ignored),
// followed by one row per species. Leading comment lines are skipped; when
// several lines start with '#', the last of them is the header, which is how
// biom-format TSV exports look ("# Constructed from biom file", "#OTU ID ...").
// Counts may be written as integral floats.
func ReadCountMatrix(r *csv.Reader) (CountMatrix, error) {
	records, err := r.ReadAll()
	if err != nil {
		return CountMatrix{}, err
	}

	records = dropBlankRecords(records)
	if len(records) == 0 {
		return CountMatrix{}, fmt.Errorf("No entries in the count table")
	}

	headerRow := 0
	for headerRow+1 < len(records) &&
		strings.HasPrefix(records[headerRow][0], "#") &&
		strings.HasPrefix(records[headerRow+1][0], "#") {
		headerRow++
	}

	header := records[headerRow]
	if len(header) < 2 {
		return CountMatrix{}, fmt.Errorf("Expected >= 2 columns in the count table header, got %d", len(header))
	}

	m := CountMatrix{
		Samples: trimAll(header[1:]),
	}

	for lineNo, line := range records[headerRow+1:] {
		if len(line) != len(header) {
			return CountMatrix{}, fmt.Errorf("Line %d has %d columns, expected %d: %w", headerRow+lineNo+2, len(line), len(header), ErrRaggedRow)
		}

		row := make([]int, 0, len(line)-1)
		for j, cell := range line[1:] {
			v, err := parseCount(cell)
			if err != nil {
				return CountMatrix{}, fmt.Errorf("Line %d, sample %s: %w", headerRow+lineNo+2, m.Samples[j], err)
			}
			row = append(row, v)
		}

		m.Species = append(m.Species, strings.TrimSpace(line[0]))
		m.Counts = append(m.Counts, row)
	}

	if err := m.Validate(); err != nil {
		return CountMatrix{}, err
	}

	return m, nil
}

func parseCount(cell string) (int, error) {
	cell = strings.TrimSpace(cell)

	v, err := strconv.Atoi(cell)
	if err != nil {
		f, ferr := strconv.ParseFloat(cell, 64)
		if ferr != nil {
			return 0, err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return 0, fmt.Errorf("count %q is not an integer", cell)
		}
		v = int(f)
	}

	if v < 0 {
		return 0, fmt.Errorf("count %d: %w", v, ErrNegativeCount)
	}

	return v, nil
}

// ReadTaxonomy parses a delimited taxonomy table with a header row. The
// species identifier is read from layout.IDColumn and ranks are matched by
// header name. Ranks requested by the layout but absent from the header are
// omitted from the table and returned in missing. If the layout names no
// ranks, every non-identifier column is used in file order.
func ReadTaxonomy(r *csv.Reader, layout Layout) (table TaxonomyTable, missing []string, err error) {
	records, err := r.ReadAll()
	if err != nil {
		return table, nil, err
	}

	records = dropBlankRecords(records)
	if len(records) == 0 {
		return table, nil, fmt.Errorf("No entries in the taxonomy table")
	}

	header := trimAll(records[0])
	if layout.IDColumn < 0 || layout.IDColumn >= len(header) {
		return table, nil, fmt.Errorf("Taxonomy identifier column %d is out of range for a header with %d columns", layout.IDColumn, len(header))
	}

	columns := make(map[string]int)
	for i, name := range header {
		if i == layout.IDColumn {
			continue
		}
		if _, exists := columns[name]; !exists {
			columns[name] = i
		}
	}

	wanted := layout.Ranks
	if len(wanted) == 0 {
		for i, name := range header {
			if i != layout.IDColumn {
				wanted = append(wanted, name)
			}
		}
	}

	colIdx := make([]int, 0, len(wanted))
	for _, rank := range wanted {
		i, exists := columns[rank]
		if !exists {
			missing = append(missing, rank)
			continue
		}
		table.Ranks = append(table.Ranks, rank)
		colIdx = append(colIdx, i)
	}

	table.Labels = make(map[string][]string, len(records)-1)
	for lineNo, line := range records[1:] {
		if layout.IDColumn >= len(line) {
			return TaxonomyTable{}, nil, fmt.Errorf("Taxonomy line %d has no identifier column: %w", lineNo+2, ErrRaggedRow)
		}

		id := strings.TrimSpace(line[layout.IDColumn])
		if _, exists := table.Labels[id]; exists {
			return TaxonomyTable{}, nil, fmt.Errorf("taxonomy species %q: %w", id, ErrDuplicateID)
		}

		labels := make([]string, len(colIdx))
		for k, i := range colIdx {
			if i < len(line) {
				labels[k] = strings.TrimSpace(line[i])
			}
		}
		table.Labels[id] = labels
	}

	return table, missing, nil
}

func dropBlankRecords(records [][]string) [][]string {
	out := records[:0:0]
	for _, rec := range records {
		if len(rec) == 0 || (len(rec) == 1 && strings.TrimSpace(rec[0]) == "") {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func trimAll(in []string) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(v)
	}
	return out
}
