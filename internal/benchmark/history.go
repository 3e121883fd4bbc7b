package benchmark

import "time"

// RunResult is the part of a transformed Result kept in run history.
type RunResult struct {
	Title         string  `json:"title"`
	Name          string  `json:"name"`
	Unit          string  `json:"unit"`
	MedianElapsed float64 `json:"median_elapsed"`
	Samples       int     `json:"samples"`
}

// Run represents one pipeline execution and the results it produced.
type Run struct {
	ID        int64       `json:"id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Input     string      `json:"input"`
	Output    string      `json:"output"`
	Results   []RunResult `json:"results"`
}

// NewRun snapshots a transformed document for history.
func NewRun(doc *Document, input, output string, at time.Time) Run {
	run := Run{
		Timestamp: at,
		Input:     input,
		Output:    output,
		Results:   make([]RunResult, 0, len(doc.Results)),
	}
	for _, r := range doc.Results {
		median := r.MedianElapsed
		if isNonFinite(median) {
			median = 0
		}
		run.Results = append(run.Results, RunResult{
			Title:         r.Title,
			Name:          r.Name,
			Unit:          r.Unit,
			MedianElapsed: median,
			Samples:       len(r.Measurements),
		})
	}
	return run
}
