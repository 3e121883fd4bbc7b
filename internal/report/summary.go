// Package report renders human-readable views of a transformed document and
// of its comparison against the previous recorded run.
package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"benchtrim/internal/benchmark"

	"github.com/aclements/go-moremath/stats"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/termenv"
)

const wordWrap = 120

var (
	titleStyle       = lipgloss.NewStyle().Bold(true)
	regressionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	improvementStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	neutralStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Row summarises one result after transformation.
type Row struct {
	Name    string
	Unit    string
	Samples int
	Median  float64
	Mean    float64
	StdDev  float64
	Min     float64
	Max     float64
}

// Summarize computes per-result statistics over the transformed elapsed
// values of each result's measurements.
func Summarize(doc *benchmark.Document) []Row {
	rows := make([]Row, 0, len(doc.Results))
	for _, r := range doc.Results {
		row := Row{
			Name:    r.Name,
			Unit:    r.Unit,
			Samples: len(r.Measurements),
			Median:  r.MedianElapsed,
		}

		xs := make([]float64, 0, len(r.Measurements))
		for _, m := range r.Measurements {
			if !math.IsInf(m.Elapsed, 0) && !math.IsNaN(m.Elapsed) {
				xs = append(xs, m.Elapsed)
			}
		}
		if len(xs) > 0 {
			row.Mean = stats.Mean(xs)
			row.Min, row.Max = stats.Bounds(xs)
		}
		if len(xs) > 1 {
			row.StdDev = stats.StdDev(xs)
		}
		rows = append(rows, row)
	}
	return rows
}

// Markdown lays the rows out as a markdown table.
func Markdown(rows []Row, output string, size int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", escape(output))
	fmt.Fprintf(&b, "%d results, %s written\n\n", len(rows), humanize.Bytes(uint64(size)))
	b.WriteString("| benchmark | unit | samples | median(elapsed) | mean | stddev | min | max |\n")
	b.WriteString("|---|---|---:|---:|---:|---:|---:|---:|\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "| %s | %s | %d | %s | %s | %s | %s | %s |\n",
			escape(r.Name), escape(r.Unit), r.Samples,
			formatValue(r.Median), formatValue(r.Mean), formatValue(r.StdDev),
			formatValue(r.Min), formatValue(r.Max))
	}
	return b.String()
}

func formatValue(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return "overflow"
	}
	return humanize.FormatFloat("#,###.#####", v)
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// Reporter writes summaries and comparisons to a terminal or a plain stream.
type Reporter struct {
	out     io.Writer
	noColor bool
}

// NewReporter returns a Reporter writing to out. With noColor set all styling
// is dropped, regardless of what the terminal supports.
func NewReporter(out io.Writer, noColor bool) *Reporter {
	if noColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	return &Reporter{out: out, noColor: noColor}
}

// Summary renders the statistics of doc, which was written to output.
func (r *Reporter) Summary(doc *benchmark.Document, output string, size int) error {
	md := Markdown(Summarize(doc), output, size)

	style := glamour.WithAutoStyle()
	if r.noColor {
		style = glamour.WithStandardStyle("notty")
	}
	renderer, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(wordWrap))
	if err == nil {
		var rendered string
		if rendered, err = renderer.Render(md); err == nil {
			_, err = io.WriteString(r.out, rendered)
			return err
		}
	}

	// Fallback to plain text
	_, err = io.WriteString(r.out, md)
	return err
}

// Comparison prints the change of every benchmark against prev, the run
// recorded before the current one. prev is nil when the history was empty.
func (r *Reporter) Comparison(prev *benchmark.Run, comps []benchmark.Comparison, threshold float64) error {
	if prev == nil {
		_, err := fmt.Fprintln(r.out, neutralStyle.Render("No previous run to compare against."))
		return err
	}
	if len(comps) == 0 {
		_, err := fmt.Fprintln(r.out, neutralStyle.Render(fmt.Sprintf("No benchmarks in common with previous run #%d.", prev.ID)))
		return err
	}

	if _, err := fmt.Fprintln(r.out, titleStyle.Render("Comparison with previous run:")); err != nil {
		return err
	}
	for _, c := range comps {
		status := neutralStyle.Render("~")
		switch {
		case c.Regressed(threshold):
			status = regressionStyle.Render("REGRESSION")
		case c.Improved(threshold):
			status = improvementStyle.Render("improved")
		}
		_, err := fmt.Fprintf(r.out, "  %-32s %14s -> %-14s %+8.2f%%  %s\n",
			c.Name, formatValue(c.Prev.MedianElapsed), formatValue(c.Curr.MedianElapsed), c.MedianDiff, status)
		if err != nil {
			return err
		}
	}
	return nil
}
