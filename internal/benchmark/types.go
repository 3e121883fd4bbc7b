package benchmark

// Document is a nanobench result document: one Result per benchmark, in the
// order they appear in the source file.
type Document struct {
	Results []Result
}

// Result is the aggregate outcome of one named benchmark.
type Result struct {
	Title        string
	Name         string
	Unit         string
	Measurements []Measurement
	// MedianElapsed is seconds on input and scaled, truncated hundredths of
	// nanoseconds after Transform.
	MedianElapsed float64
}

// Measurement is one raw sample of a benchmark. Only Elapsed is rewritten by
// Transform; the counters pass through unchanged.
type Measurement struct {
	Iterations         uint64
	Elapsed            float64
	PageFaults         uint64
	CPUCycles          uint64
	ContextSwitches    uint64
	Instructions       uint64
	BranchInstructions uint64
	BranchMisses       uint64
}

// Wire names of every schema member. Decoding looks members up by these exact
// names and the encoding struct tags in wire.go repeat them in the order of
// ResultFields and MeasurementFields. The Go field names never leak into the
// JSON.
const (
	FieldResults = "results"

	FieldTitle         = "title"
	FieldName          = "name"
	FieldUnit          = "unit"
	FieldMeasurements  = "measurements"
	FieldMedianElapsed = "median(elapsed)"

	FieldIterations         = "iterations"
	FieldElapsed            = "elapsed"
	FieldPageFaults         = "pagefaults"
	FieldCPUCycles          = "cpucycles"
	FieldContextSwitches    = "contextswitches"
	FieldInstructions       = "instructions"
	FieldBranchInstructions = "branchinstructions"
	FieldBranchMisses       = "branchmisses"
)

// ResultFields lists the members of a result in output order.
var ResultFields = []string{
	FieldTitle,
	FieldName,
	FieldUnit,
	FieldMeasurements,
	FieldMedianElapsed,
}

// MeasurementFields lists the members of a measurement in output order.
var MeasurementFields = []string{
	FieldIterations,
	FieldElapsed,
	FieldPageFaults,
	FieldCPUCycles,
	FieldContextSwitches,
	FieldInstructions,
	FieldBranchInstructions,
	FieldBranchMisses,
}
