package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	_ "github.com/carbocation/neutralfit/compileinfoprint"
	"github.com/carbocation/neutralfit/otutable"
	"github.com/carbocation/neutralfit/pipeline"
	"github.com/carbocation/neutralfit/report"
)

var client *storage.Client

func main() {
	var countsFile, taxonomyFile, layoutName, ranks, highlight, out string
	var depth, ignore, bins int
	var seed int64
	var threshold, alpha float64
	var plot, full, nonNeutral, hist bool

	opts := pipeline.DefaultOptions()

	flag.StringVar(&countsFile, "counts", "", "Path to the species-by-sample count table (delimited text, optionally compressed). Optionally, may be a google storage URL (gs://)")
	flag.StringVar(&taxonomyFile, "taxonomy", "", "Optional path to the taxonomy table. Optionally, may be a google storage URL (gs://)")
	flag.StringVar(&layoutName, "layout", "default", "Taxonomy layout. One of: "+otutable.LayoutNames())
	flag.StringVar(&ranks, "ranks", "", "Optional comma-separated taxonomy ranks to carry into the outputs. Defaults to every rank of the layout")
	flag.IntVar(&depth, "depth", 0, "Rarefaction depth. 0 rarefies to the shallowest sample, as does any depth above the deepest sample")
	flag.IntVar(&ignore, "ignore", 0, "Drop species with this many reads or fewer across all samples before rarefying")
	flag.Int64Var(&seed, "seed", -1, "Seed for rarefaction. Negative seeds from the clock")
	flag.Float64Var(&threshold, "threshold", opts.Threshold, "Absolute occurrence difference beyond which a species is listed as a non-neutral outlier")
	flag.Float64Var(&alpha, "alpha", opts.Alpha, "Significance level of the Wilson confidence band")
	flag.StringVar(&out, "out", "", "Output prefix. If empty, the frequency table is written to stdout and the fit report to stderr")
	flag.BoolVar(&plot, "plot", true, "Write <out>.png with the fitted curve. Requires --out")
	flag.BoolVar(&full, "full", true, "Write <out>_FullNonNeutral.tsv with every species outside the confidence band")
	flag.BoolVar(&nonNeutral, "nonneutral", true, "Write <out>_NonNeutral_Outliers.tsv with species beyond --threshold")
	flag.BoolVar(&hist, "histogram", false, "Print a histogram of observed minus predicted occurrence to stderr")
	flag.IntVar(&bins, "bins", 20, "Number of histogram buckets")
	flag.StringVar(&highlight, "highlight", "", "Optional comma-separated Rank=label pairs (e.g. Phylum=p__Proteobacteria,Genus=g__Streptococcus). Matching species are drawn in their own colour in <out>_colored.png")
	flag.Parse()

	if countsFile == "" {
		flag.Usage()
		log.Fatalln("Must specify a --counts file")
	}

	log.Println(os.Args)

	if strings.HasPrefix(countsFile, "gs://") ||
		strings.HasPrefix(taxonomyFile, "gs://") {
		var err error
		client, err = storage.NewClient(context.Background())
		if err != nil {
			log.Fatalln(err)
		}
	}

	layout, err := otutable.LookupLayout(layoutName)
	if err != nil {
		log.Fatalln(err)
	}

	highlights, err := report.ParseHighlights(highlight)
	if err != nil {
		log.Fatalln(err)
	}

	matrix, err := readCounts(countsFile)
	if err != nil {
		log.Fatalln(err)
	}
	log.Printf("Read %d species across %d samples from %s\n", matrix.NSpecies(), matrix.NSamples(), countsFile)

	taxonomy, err := readTaxonomy(taxonomyFile, layout)
	if err != nil {
		log.Fatalln(err)
	}

	opts.Depth = depth
	opts.IgnoreLevel = ignore
	opts.Threshold = threshold
	opts.Alpha = alpha
	if seed >= 0 {
		opts.Source = pipeline.Seeded(uint64(seed))
	}
	opts.Ranks = splitList(ranks)

	res, err := pipeline.Run(matrix, taxonomy, opts)
	for _, d := range res.Rarefaction.Dropped {
		log.Println(d)
	}
	if err != nil {
		log.Fatalln(err)
	}

	for _, rank := range res.MissingRanks {
		log.Printf("Taxonomy has no %q column; omitting it\n", rank)
	}
	log.Printf("Fitted m=%.6g at depth %d over %d species and %d samples\n", res.Fit.M, res.Fit.N, res.Fit.NData(), res.Fit.NSamples)

	if err := writeOutputs(res, outputs{
		prefix:     out,
		plot:       plot,
		full:       full,
		nonNeutral: nonNeutral,
		histogram:  hist,
		bins:       bins,
		highlights: highlights,
	}); err != nil {
		log.Fatalln(err)
	}
}
