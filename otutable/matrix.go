// Package otutable holds the species-by-sample count matrix and the taxonomy
// table that annotates it, along with readers for their delimited text forms.
package otutable

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateID   = errors.New("duplicate identifier")
	ErrNegativeCount = errors.New("negative count")
	ErrRaggedRow     = errors.New("row length does not match sample count")
)

// CountMatrix is a species (rows) by sample (columns) table of read counts.
// Counts is indexed [species][sample]. Methods never modify the receiver;
// transformations return a new matrix.
type CountMatrix struct {
	Species []string
	Samples []string
	Counts  [][]int
}

// NewCountMatrix validates its inputs and returns a matrix that owns copies of
// them.
func NewCountMatrix(species, samples []string, counts [][]int) (CountMatrix, error) {
	m := CountMatrix{
		Species: append([]string(nil), species...),
		Samples: append([]string(nil), samples...),
		Counts:  make([][]int, len(counts)),
	}
	for i, row := range counts {
		m.Counts[i] = append([]int(nil), row...)
	}

	if err := m.Validate(); err != nil {
		return CountMatrix{}, err
	}

	return m, nil
}

// Validate checks identifier uniqueness, shape, and non-negativity.
func (m CountMatrix) Validate() error {
	if len(m.Counts) != len(m.Species) {
		return fmt.Errorf("%d species identifiers but %d rows: %w", len(m.Species), len(m.Counts), ErrRaggedRow)
	}

	if err := checkUnique("species", m.Species); err != nil {
		return err
	}
	if err := checkUnique("sample", m.Samples); err != nil {
		return err
	}

	for i, row := range m.Counts {
		if len(row) != len(m.Samples) {
			return fmt.Errorf("species %s has %d counts for %d samples: %w", m.Species[i], len(row), len(m.Samples), ErrRaggedRow)
		}
		for j, v := range row {
			if v < 0 {
				return fmt.Errorf("species %s sample %s has count %d: %w", m.Species[i], m.Samples[j], v, ErrNegativeCount)
			}
		}
	}

	return nil
}

func checkUnique(kind string, ids []string) error {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, exists := seen[id]; exists {
			return fmt.Errorf("%s %q: %w", kind, id, ErrDuplicateID)
		}
		seen[id] = struct{}{}
	}
	return nil
}

func (m CountMatrix) NSpecies() int { return len(m.Species) }
func (m CountMatrix) NSamples() int { return len(m.Samples) }

// Empty is true when the matrix has no samples or no species.
func (m CountMatrix) Empty() bool {
	return len(m.Samples) == 0 || len(m.Species) == 0
}

// RowSums returns the total reads per species.
func (m CountMatrix) RowSums() []int {
	out := make([]int, len(m.Counts))
	for i, row := range m.Counts {
		for _, v := range row {
			out[i] += v
		}
	}
	return out
}

// ColumnSums returns the total reads per sample.
func (m CountMatrix) ColumnSums() []int {
	out := make([]int, len(m.Samples))
	for _, row := range m.Counts {
		for j, v := range row {
			out[j] += v
		}
	}
	return out
}

// Column returns a copy of the counts for sample j.
func (m CountMatrix) Column(j int) []int {
	out := make([]int, len(m.Counts))
	for i, row := range m.Counts {
		out[i] = row[j]
	}
	return out
}

// Clone returns a deep copy.
func (m CountMatrix) Clone() CountMatrix {
	out := CountMatrix{
		Species: append([]string(nil), m.Species...),
		Samples: append([]string(nil), m.Samples...),
		Counts:  make([][]int, len(m.Counts)),
	}
	for i, row := range m.Counts {
		out.Counts[i] = append([]int(nil), row...)
	}
	return out
}

// FilterIgnoreLevel keeps only species whose total count exceeds level. A
// level of 0 keeps every species with at least one read.
func (m CountMatrix) FilterIgnoreLevel(level int) CountMatrix {
	sums := m.RowSums()

	keep := make([]int, 0, len(sums))
	for i, total := range sums {
		if total > level {
			keep = append(keep, i)
		}
	}

	return m.selectRows(keep)
}

// DropEmptySpecies removes species with no reads in any sample.
func (m CountMatrix) DropEmptySpecies() CountMatrix {
	return m.FilterIgnoreLevel(0)
}

// SelectSamples returns a matrix restricted to the given sample columns, in
// the given order.
func (m CountMatrix) SelectSamples(columns []int) CountMatrix {
	out := CountMatrix{
		Species: append([]string(nil), m.Species...),
		Samples: make([]string, 0, len(columns)),
		Counts:  make([][]int, len(m.Counts)),
	}
	for _, j := range columns {
		out.Samples = append(out.Samples, m.Samples[j])
	}
	for i, row := range m.Counts {
		newRow := make([]int, 0, len(columns))
		for _, j := range columns {
			newRow = append(newRow, row[j])
		}
		out.Counts[i] = newRow
	}
	return out
}

func (m CountMatrix) selectRows(rows []int) CountMatrix {
	out := CountMatrix{
		Species: make([]string, 0, len(rows)),
		Samples: append([]string(nil), m.Samples...),
		Counts:  make([][]int, 0, len(rows)),
	}
	for _, i := range rows {
		out.Species = append(out.Species, m.Species[i])
		out.Counts = append(out.Counts, append([]int(nil), m.Counts[i]...))
	}
	return out
}
