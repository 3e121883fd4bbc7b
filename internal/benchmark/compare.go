package benchmark

import "fmt"

// DefaultThreshold is the percentage change of median(elapsed) beyond which a
// comparison counts as a regression or an improvement.
const DefaultThreshold = 5.0

type Comparison struct {
	Name       string
	Unit       string
	MedianDiff float64 // Percentage change
	Prev       RunResult
	Curr       RunResult
}

// Regressed reports whether the current median is slower than the previous
// one by more than threshold percent.
func (c Comparison) Regressed(threshold float64) bool {
	return c.MedianDiff > threshold
}

// Improved reports whether the current median is faster than the previous
// one by more than threshold percent.
func (c Comparison) Improved(threshold float64) bool {
	return c.MedianDiff < -threshold
}

// Compare runs comparison between two runs.
// It returns a list of comparisons for benchmarks present in both runs, in the
// order of the current run.
func Compare(prev, curr Run) []Comparison {
	prevMap := make(map[string]RunResult)
	for _, r := range prev.Results {
		prevMap[r.Name] = r
	}

	var comparisons []Comparison
	for _, c := range curr.Results {
		if p, ok := prevMap[c.Name]; ok {
			comp := Comparison{
				Name: c.Name,
				Unit: c.Unit,
				Prev: p,
				Curr: c,
			}

			if p.MedianElapsed > 0 {
				comp.MedianDiff = ((c.MedianElapsed - p.MedianElapsed) / p.MedianElapsed) * 100
			}

			comparisons = append(comparisons, comp)
		}
	}
	return comparisons
}

func (c Comparison) String() string {
	return fmt.Sprintf("%s: %+.2f%% median(elapsed)", c.Name, c.MedianDiff)
}
