package benchmark

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateTo5Decimals(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{1.234567, 1.23456},
		{-1.234567, -1.23456},
		{123.456789, 123.45678},
		{0.123456789, 0.12345},
		{0.30000000000000004, 0.3},
		{1.99999, 1.99999},
		{12345.678901234, 12345.6789},
		{0, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TruncateTo5Decimals(tt.in), "TruncateTo5Decimals(%v)", tt.in)
	}
}

func TestTruncateTo5Decimals_Idempotent(t *testing.T) {
	for _, x := range []float64{1.234567, -1.234567, 123.456789, 0.123456789, 0.30000000000000004, 12345.678901234, 1.9999999} {
		once := TruncateTo5Decimals(x)
		assert.Equal(t, once, TruncateTo5Decimals(once), "x=%v", x)
	}
}

func TestRescale(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{name: "already five decimals", in: 0.0000012345678, want: 123.45678},
		{name: "truncates instead of rounding", in: 0.000000019999999, want: 1.99999},
		{name: "negative truncates toward zero", in: -3.5e-08, want: -3.5},
		{name: "zero", in: 0, want: 0},
		{name: "overflow", in: 1e300, want: math.Inf(1)},
		{name: "negative overflow", in: -1e300, want: math.Inf(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Rescale(tt.in))
		})
	}
}

func TestTransform(t *testing.T) {
	doc, err := Load(filepath.Join("testdata", "nanobench.json"))
	require.NoError(t, err)

	stats := Transform(doc)
	assert.Equal(t, TransformStats{Results: 2, Measurements: 5}, stats)

	assert.Equal(t, 2.08457, doc.Results[0].MedianElapsed)
	assert.Equal(t, []float64{2.0816, 2.08457, 2.11014}, elapsedOf(doc.Results[0]))

	assert.Equal(t, 0.41304, doc.Results[1].MedianElapsed)
	assert.Equal(t, []float64{0.41195, 0.41521}, elapsedOf(doc.Results[1]))
}

func TestTransform_FieldIsolation(t *testing.T) {
	before, err := Load(filepath.Join("testdata", "nanobench.json"))
	require.NoError(t, err)
	after, err := Load(filepath.Join("testdata", "nanobench.json"))
	require.NoError(t, err)

	Transform(after)

	require.Len(t, after.Results, len(before.Results))
	for i := range before.Results {
		b, a := before.Results[i], after.Results[i]
		assert.Equal(t, b.Title, a.Title)
		assert.Equal(t, b.Name, a.Name)
		assert.Equal(t, b.Unit, a.Unit)
		require.Len(t, a.Measurements, len(b.Measurements))
		for j := range b.Measurements {
			bm, am := b.Measurements[j], a.Measurements[j]
			bm.Elapsed, am.Elapsed = 0, 0
			assert.Equal(t, bm, am, "results[%d].measurements[%d]", i, j)
		}
	}
}

func TestTransform_CountsNonFinite(t *testing.T) {
	doc := &Document{Results: []Result{{
		Name:          "huge",
		MedianElapsed: 1e300,
		Measurements:  []Measurement{{Elapsed: -1e300}, {Elapsed: 1e-9}},
	}}}

	stats := Transform(doc)
	assert.Equal(t, 2, stats.NonFinite)
	assert.True(t, math.IsInf(doc.Results[0].MedianElapsed, 1))
	assert.True(t, math.IsInf(doc.Results[0].Measurements[0].Elapsed, -1))
	assert.Equal(t, 0.1, doc.Results[0].Measurements[1].Elapsed)
}

func elapsedOf(r Result) []float64 {
	out := make([]float64, 0, len(r.Measurements))
	for _, m := range r.Measurements {
		out = append(out, m.Elapsed)
	}
	return out
}
