package neutral

import "gonum.org/v1/gonum/stat"

// RSquared returns 1 - SSres/SStot. When observed has no variance the
// statistic is undefined, and RSquared returns (0, false).
func RSquared(observed, predicted []float64) (float64, bool) {
	if len(observed) == 0 || len(observed) != len(predicted) {
		return 0, false
	}

	mean := stat.Mean(observed, nil)
	var ssRes, ssTot float64
	for i, o := range observed {
		ssRes += (o - predicted[i]) * (o - predicted[i])
		ssTot += (o - mean) * (o - mean)
	}
	if ssTot == 0 {
		return 0, false
	}

	return 1 - ssRes/ssTot, true
}
