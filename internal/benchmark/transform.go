package benchmark

import "math"

const (
	// ScaleFactor converts seconds into hundredths of nanoseconds.
	ScaleFactor = 1e8

	truncationScale = 100000
)

// TruncateTo5Decimals drops everything past the fifth decimal place, rounding
// toward zero: 1.234567 -> 1.23456, -1.234567 -> -1.23456.
func TruncateTo5Decimals(x float64) float64 {
	return math.Trunc(x*truncationScale) / truncationScale
}

// Rescale multiplies a seconds value by ScaleFactor and truncates the result.
// The value is not converted back to seconds.
func Rescale(x float64) float64 {
	return TruncateTo5Decimals(x * ScaleFactor)
}

// TransformStats counts what Transform rewrote.
type TransformStats struct {
	Results      int
	Measurements int
	// NonFinite counts rewritten values that overflowed to an infinity.
	NonFinite int
}

// Transform rescales MedianElapsed of every result and Elapsed of every
// measurement in place. All other fields and the order of both sequences are
// left alone.
func Transform(doc *Document) TransformStats {
	var stats TransformStats
	for i := range doc.Results {
		r := &doc.Results[i]
		r.MedianElapsed = Rescale(r.MedianElapsed)
		stats.Results++
		if isNonFinite(r.MedianElapsed) {
			stats.NonFinite++
		}

		for j := range r.Measurements {
			m := &r.Measurements[j]
			m.Elapsed = Rescale(m.Elapsed)
			stats.Measurements++
			if isNonFinite(m.Elapsed) {
				stats.NonFinite++
			}
		}
	}
	return stats
}

func isNonFinite(x float64) bool {
	return math.IsInf(x, 0) || math.IsNaN(x)
}
