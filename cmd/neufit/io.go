package main

import (
	"log"

	"github.com/carbocation/neutralfit"
	"github.com/carbocation/neutralfit/otutable"
)

func readCounts(path string) (otutable.CountMatrix, error) {
	rdr, clsr, err := neutralfit.OpenDelimited(path, client)
	if err != nil {
		return otutable.CountMatrix{}, err
	}
	defer clsr.Close()

	return otutable.ReadCountMatrix(rdr)
}

// readTaxonomy returns an empty table when no path is given, so every rank
// label comes out blank.
func readTaxonomy(path string, layout otutable.Layout) (otutable.TaxonomyTable, error) {
	if path == "" {
		return otutable.TaxonomyTable{Ranks: layout.Ranks}, nil
	}

	rdr, clsr, err := neutralfit.OpenDelimited(path, client)
	if err != nil {
		return otutable.TaxonomyTable{}, err
	}
	defer clsr.Close()

	table, missing, err := otutable.ReadTaxonomy(rdr, layout)
	if err != nil {
		return table, err
	}
	for _, rank := range missing {
		log.Printf("Taxonomy file %s has no %q column\n", path, rank)
	}

	return table, nil
}
