package main

import (
	"bufio"
	"io"
	"log"
	"os"

	"github.com/carbocation/neutralfit/pipeline"
	"github.com/carbocation/neutralfit/report"
)

type outputs struct {
	prefix     string
	plot       bool
	full       bool
	nonNeutral bool
	histogram  bool
	bins       int
	highlights []report.Highlight
}

// skipped lists the requested outputs that are only written under a prefix.
func (o outputs) skipped() []string {
	if o.prefix != "" {
		return nil
	}

	var out []string
	if o.plot {
		out = append(out, "plot")
	}
	if len(o.highlights) > 0 {
		out = append(out, "highlighted plot")
	}
	if o.full {
		out = append(out, "FullNonNeutral table")
	}
	if o.nonNeutral {
		out = append(out, "NonNeutral_Outliers table")
	}
	return out
}

func writeOutputs(res pipeline.Result, o outputs) error {
	if o.histogram {
		if err := report.PrintDeviationHistogram(os.Stderr, res.Deviations, o.bins); err != nil {
			return err
		}
	}

	if o.prefix == "" {
		for _, name := range o.skipped() {
			log.Printf("No -out prefix was given; skipping the %s\n", name)
		}
		if err := report.WriteFitReport(os.Stderr, res); err != nil {
			return err
		}
		return writeBuffered(os.Stdout, func(w io.Writer) error {
			return report.WriteFrequencyTable(w, res)
		})
	}

	files := []struct {
		suffix  string
		enabled bool
		write   func(io.Writer) error
	}{
		{"_fit.txt", true, func(w io.Writer) error { return report.WriteFitReport(w, res) }},
		{"_frequencies.tsv", true, func(w io.Writer) error { return report.WriteFrequencyTable(w, res) }},
		{"_FullNonNeutral.tsv", o.full, func(w io.Writer) error { return report.WriteNonNeutral(w, res) }},
		{"_NonNeutral_Outliers.tsv", o.nonNeutral, func(w io.Writer) error { return report.WriteDeviations(w, res.Frequencies.Ranks, res.Ranked) }},
		{"_dropped.tsv", len(res.Rarefaction.Dropped) > 0, func(w io.Writer) error { return report.WriteDropped(w, res.Rarefaction.Dropped) }},
		{".png", o.plot, func(w io.Writer) error { return report.PlotFit(w, res) }},
		{"_colored.png", len(o.highlights) > 0, func(w io.Writer) error { return report.PlotHighlighted(w, res, o.highlights) }},
	}

	for _, f := range files {
		if !f.enabled {
			continue
		}
		if err := writeFile(o.prefix+f.suffix, f.write); err != nil {
			return err
		}
	}

	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	if err := writeBuffered(out, write); err != nil {
		out.Close()
		return err
	}
	log.Println("Wrote", path)

	return out.Close()
}

func writeBuffered(w io.Writer, write func(io.Writer) error) error {
	bw := bufio.NewWriter(w)
	if err := write(bw); err != nil {
		return err
	}
	return bw.Flush()
}
