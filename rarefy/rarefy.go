// Package rarefy subsamples a count matrix to a uniform per-sample read depth
// by drawing reads without replacement.
package rarefy

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/carbocation/neutralfit/otutable"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"
)

var ErrInvalidDepth = errors.New("invalid rarefaction depth")

// Mode records how the rarefaction depth was chosen.
type Mode int

const (
	// ModeAuto: no depth was requested, so the shallowest sample sets it.
	ModeAuto Mode = iota
	// ModeCustom: the requested depth was used.
	ModeCustom
	// ModeFallback: the requested depth exceeded every sample, so the
	// shallowest sample sets it.
	ModeFallback
)

func (m Mode) String() string {
	switch m {
	case ModeAuto:
		return "auto"
	case ModeCustom:
		return "custom"
	case ModeFallback:
		return "fallback"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// DroppedSample is emitted for every sample with fewer reads than the
// rarefaction depth.
type DroppedSample struct {
	SampleID string `csv:"sample_id"`
	Reads    int    `csv:"reads"`
	Depth    int    `csv:"depth"`
}

func (d DroppedSample) String() string {
	return fmt.Sprintf("dropping sample %s with %d reads < %d", d.SampleID, d.Reads, d.Depth)
}

type Result struct {
	Matrix    otutable.CountMatrix
	Requested int
	Depth     int
	Mode      Mode

	// Subsampled is the number of samples whose reads were redrawn. Samples
	// already at Depth are copied as-is.
	Subsampled int
	Dropped    []DroppedSample
}

// Empty reports whether rarefaction left no samples (or no species) to fit.
func (r Result) Empty() bool {
	return r.Matrix.Empty()
}

// ResolveDepth picks the rarefaction depth from the per-sample read totals. A
// requested depth of 0, or one larger than the deepest sample, resolves to the
// shallowest sample's depth.
func ResolveDepth(columnSums []int, requested int) (int, Mode, error) {
	if requested < 0 {
		return 0, ModeCustom, fmt.Errorf("requested depth %d < 0: %w", requested, ErrInvalidDepth)
	}

	if len(columnSums) == 0 {
		return 0, ModeAuto, fmt.Errorf("no samples: %w", ErrInvalidDepth)
	}

	min, max := columnSums[0], columnSums[0]
	for _, v := range columnSums {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	depth, mode := requested, ModeCustom
	if requested == 0 {
		depth, mode = min, ModeAuto
	} else if requested > max {
		depth, mode = min, ModeFallback
	}

	if depth < 1 {
		return 0, mode, fmt.Errorf("shallowest sample has %d reads, so no sample reaches a usable depth; set the depth explicitly: %w", min, ErrInvalidDepth)
	}

	return depth, mode, nil
}

// Rarefy returns a new matrix in which every retained sample has exactly the
// resolved depth of reads. Samples below the depth are dropped and reported in
// Result.Dropped, and species left without reads are removed. When every
// sample is already at the depth, the input is returned unchanged (as a copy)
// and no random numbers are drawn. A nil src seeds from the clock.
func Rarefy(m otutable.CountMatrix, requested int, src rand.Source) (Result, error) {
	sums := m.ColumnSums()

	depth, mode, err := ResolveDepth(sums, requested)
	if err != nil {
		return Result{}, err
	}

	out := Result{
		Requested: requested,
		Depth:     depth,
		Mode:      mode,
	}

	alreadyUniform := true
	for _, v := range sums {
		if v != depth {
			alreadyUniform = false
			break
		}
	}
	if alreadyUniform {
		out.Matrix = m.Clone()
		return out, nil
	}

	if src == nil {
		src = rand.NewSource(uint64(time.Now().UnixNano()))
	}

	keep := make([]int, 0, len(sums))
	for j, total := range sums {
		if total < depth {
			out.Dropped = append(out.Dropped, DroppedSample{SampleID: m.Samples[j], Reads: total, Depth: depth})
			continue
		}
		keep = append(keep, j)
	}

	rarefied := m.SelectSamples(keep)
	for k, j := range keep {
		if sums[j] == depth {
			continue
		}

		column := subsampleColumn(m.Column(j), sums[j], depth, src)
		for i := range rarefied.Counts {
			rarefied.Counts[i][k] = column[i]
		}
		out.Subsampled++
	}

	out.Matrix = rarefied.DropEmptySpecies()

	return out, nil
}

// subsampleColumn draws depth of the total reads in counts without
// replacement. Read r belongs to the first species whose cumulative count
// exceeds r.
func subsampleColumn(counts []int, total, depth int, src rand.Source) []int {
	cumulative := make([]int, len(counts))
	running := 0
	for i, v := range counts {
		running += v
		cumulative[i] = running
	}

	reads := make([]int, depth)
	sampleuv.WithoutReplacement(reads, total, src)

	out := make([]int, len(counts))
	for _, r := range reads {
		out[sort.SearchInts(cumulative, r+1)]++
	}

	return out
}
