package otutable

import (
	"fmt"
	"sort"
	"strings"
)

// Layout describes where a taxonomy table keeps its species identifier and
// which rank columns to read, most general rank first.
type Layout struct {
	IDColumn int
	Ranks    []string
}

var Layouts = map[string]Layout{
	"default": {
		IDColumn: 0,
		Ranks:    []string{"Kingdom", "Phylum", "Class", "Order", "Family", "Genus", "Species"},
	},
	// TCGA whole-genome tables lead with an index column and use Domain as the
	// top rank.
	"TCGA_WGS": {
		IDColumn: 1,
		Ranks:    []string{"Domain", "Phylum", "Class", "Order", "Family", "Genus", "Species"},
	},
}

// LookupLayout returns the named layout, or an error listing the known ones.
func LookupLayout(name string) (Layout, error) {
	layout, exists := Layouts[name]
	if !exists {
		return Layout{}, fmt.Errorf("Layout %q is not recognized. Choose from: %s", name, LayoutNames())
	}

	return layout, nil
}

func LayoutNames() string {
	names := make([]string, 0, len(Layouts))
	for name := range Layouts {
		names = append(names, name)
	}
	sort.Strings(names)

	return strings.Join(names, ", ")
}
