package otutable

// TaxonomyTable maps species identifiers to rank labels. Labels[id][k] is the
// label at Ranks[k]. The zero value is a valid, empty table.
type TaxonomyTable struct {
	Ranks  []string
	Labels map[string][]string
}

// Lookup returns the labels of a species, one per rank. Species absent from
// the table get empty labels, matching a left join.
func (t TaxonomyTable) Lookup(id string) []string {
	out := make([]string, len(t.Ranks))
	copy(out, t.Labels[id])
	return out
}

// Index returns the position of a rank.
func (t TaxonomyTable) Index(rank string) (int, bool) {
	for i, v := range t.Ranks {
		if v == rank {
			return i, true
		}
	}
	return -1, false
}

// Select returns a table restricted to the requested ranks, in the requested
// order. Ranks the table does not carry are omitted and reported in missing.
func (t TaxonomyTable) Select(ranks []string) (out TaxonomyTable, missing []string) {
	idx := make([]int, 0, len(ranks))
	for _, rank := range ranks {
		i, ok := t.Index(rank)
		if !ok {
			missing = append(missing, rank)
			continue
		}
		out.Ranks = append(out.Ranks, rank)
		idx = append(idx, i)
	}

	out.Labels = make(map[string][]string, len(t.Labels))
	for id, labels := range t.Labels {
		row := make([]string, len(idx))
		for k, i := range idx {
			if i < len(labels) {
				row[k] = labels[i]
			}
		}
		out.Labels[id] = row
	}

	return out, missing
}
