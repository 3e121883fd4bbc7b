// Package pipeline runs a single post-processing pass over a nanobench
// document: load, transform, write, then the optional history and summary
// steps.
package pipeline

import (
	"fmt"
	"io"
	"time"

	"benchtrim/internal/benchmark"
	errs "benchtrim/internal/errors"
	"benchtrim/internal/telemetry"
)

// Reporter renders human readable output after the document is written.
type Reporter interface {
	Summary(doc *benchmark.Document, output string, size int) error
	Comparison(prev *benchmark.Run, comps []benchmark.Comparison, threshold float64) error
}

// Options configures a run. Input and Output are required, everything else
// is optional.
type Options struct {
	Input  string
	Output string
	Indent int

	// Store enables run history. The previous run is compared with the
	// current one before the current one is saved.
	Store     benchmark.Store
	Threshold float64

	// Reporter receives the comparison and, when Summary is set, the summary.
	Reporter Reporter
	Summary  bool

	// Out receives the "Written to <path>" confirmation.
	Out io.Writer

	Metrics *telemetry.Metrics
	Now     func() time.Time
}

// Result describes a successful run.
type Result struct {
	Stats       benchmark.TransformStats
	Bytes       int
	Run         *benchmark.Run
	Previous    *benchmark.Run
	Comparisons []benchmark.Comparison
	Duration    time.Duration
}

// Run executes the pipeline. Failures before the write leave the output path
// untouched. Failures after it (history, summary) are reported but the output
// file stays in place.
func Run(opts Options) (*Result, error) {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	start := now()

	res, err := run(opts, now)
	took := now().Sub(start)
	if opts.Metrics != nil {
		if err != nil {
			opts.Metrics.ObserveFailure(failureLabel(err), took)
		} else {
			opts.Metrics.ObserveSuccess(res.Stats.Results, res.Stats.Measurements, res.Stats.NonFinite, res.Bytes, took, now())
		}
	}
	if err != nil {
		return nil, err
	}
	res.Duration = took
	return res, nil
}

func run(opts Options, now func() time.Time) (*Result, error) {
	if opts.Input == "" || opts.Output == "" {
		return nil, errs.NewUsageError("input and output paths are required")
	}

	telemetry.LogDebug("Loading document", "path", opts.Input)
	doc, err := benchmark.Load(opts.Input)
	if err != nil {
		return nil, err
	}

	stats := benchmark.Transform(doc)
	telemetry.LogDebug("Transformed document",
		"results", stats.Results,
		"measurements", stats.Measurements,
		"non_finite", stats.NonFinite)
	if stats.NonFinite > 0 {
		telemetry.LogWarn("Rescaled values overflowed and were saturated", "count", stats.NonFinite)
	}

	n, err := benchmark.Write(opts.Output, doc, opts.Indent)
	if err != nil {
		return nil, err
	}
	telemetry.LogDebugf("Wrote %d bytes to %s", n, opts.Output)
	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "Written to %s\n", opts.Output)
	}

	res := &Result{Stats: stats, Bytes: n}

	if opts.Store != nil {
		current := benchmark.NewRun(doc, opts.Input, opts.Output, now())
		prev, comps, err := record(opts.Store, current)
		if err != nil {
			return nil, err
		}
		res.Run = &current
		res.Previous = prev
		res.Comparisons = comps

		if opts.Reporter != nil {
			if err := opts.Reporter.Comparison(prev, comps, opts.Threshold); err != nil {
				return nil, fmt.Errorf("failed to print comparison: %w", err)
			}
		}
	}

	if opts.Summary && opts.Reporter != nil {
		if err := opts.Reporter.Summary(doc, opts.Output, n); err != nil {
			return nil, fmt.Errorf("failed to print summary: %w", err)
		}
	}

	return res, nil
}

// record compares run against the latest stored run, then saves it. It
// returns the previous run, nil for an empty history.
func record(store benchmark.Store, run benchmark.Run) (*benchmark.Run, []benchmark.Comparison, error) {
	prev, err := store.LoadLatest()
	if err != nil {
		return nil, nil, errs.NewIOError("history", fmt.Errorf("failed to load previous run: %w", err))
	}

	var comps []benchmark.Comparison
	if prev != nil {
		comps = benchmark.Compare(*prev, run)
		telemetry.LogDebug("Compared with previous run", "previous", prev.ID, "benchmarks", len(comps))
	}

	if err := store.Save(run); err != nil {
		return nil, nil, errs.NewIOError("history", fmt.Errorf("failed to save run: %w", err))
	}
	return prev, comps, nil
}

func failureLabel(err error) string {
	switch errs.KindOf(err) {
	case errs.KindUsage:
		return "usage"
	case errs.KindIO:
		return "io"
	case errs.KindParse:
		return "parse"
	case errs.KindSchema:
		return "schema"
	default:
		return "error"
	}
}
