package benchmark

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	errs "benchtrim/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_FieldOrder(t *testing.T) {
	doc, err := Decode([]byte(singleMeasurementDoc))
	require.NoError(t, err)
	Transform(doc)

	out, err := Encode(doc, DefaultIndent)
	require.NoError(t, err)
	text := string(out)

	assert.True(t, strings.HasSuffix(text, "}\n"))
	assert.Greater(t, strings.Count(text, "\n"), 10, "output must be multi-line")
	assert.Contains(t, text, `"median(elapsed)": 123.45678`)
	assert.Contains(t, text, `"elapsed": 123.45678`)

	assertOrdered(t, text, ResultFields)
	assertOrdered(t, text, MeasurementFields)
}

func TestEncode_Indent(t *testing.T) {
	doc := &Document{Results: []Result{{Title: "T", Name: "N", Unit: "ns", MedianElapsed: 1}}}

	two, err := Encode(doc, 2)
	require.NoError(t, err)
	assert.Contains(t, string(two), "\n  \"results\": [")

	four, err := Encode(doc, 4)
	require.NoError(t, err)
	assert.Contains(t, string(four), "\n    \"results\": [")

	fallback, err := Encode(doc, 0)
	require.NoError(t, err)
	assert.Equal(t, two, fallback)
}

func TestEncode_DropsUnknownMembers(t *testing.T) {
	doc, err := Load(filepath.Join("testdata", "nanobench.json"))
	require.NoError(t, err)

	out, err := Encode(doc, DefaultIndent)
	require.NoError(t, err)

	for _, member := range []string{"batch", "complexityN", "totalTime", "median(cpucycles)"} {
		assert.NotContains(t, string(out), `"`+member+`"`)
	}
}

func TestEncode_EmptySequences(t *testing.T) {
	out, err := Encode(&Document{}, DefaultIndent)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"results": []`)

	out, err = Encode(&Document{Results: []Result{{Name: "empty"}}}, DefaultIndent)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"measurements": []`)
}

func TestEncode_KeepsHTMLCharacters(t *testing.T) {
	out, err := Encode(&Document{Results: []Result{{Title: "a < b && c > d", Name: "N"}}}, DefaultIndent)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"title": "a < b && c > d"`)
}

func TestEncode_NonFinite(t *testing.T) {
	doc := &Document{Results: []Result{{
		Name:          "overflow",
		MedianElapsed: math.Inf(1),
		Measurements:  []Measurement{{Elapsed: math.Inf(-1)}},
	}}}

	out, err := Encode(doc, DefaultIndent)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"median(elapsed)": 1.7976931348623157e+308`)
	assert.Contains(t, string(out), `"elapsed": -1.7976931348623157e+308`)

	back, err := Decode(out)
	require.NoError(t, err)
	assert.Equal(t, math.MaxFloat64, back.Results[0].MedianElapsed)
	assert.Equal(t, -math.MaxFloat64, back.Results[0].Measurements[0].Elapsed)
}

func TestEncode_RoundTrip(t *testing.T) {
	doc, err := Load(filepath.Join("testdata", "nanobench.json"))
	require.NoError(t, err)
	Transform(doc)

	first, err := Encode(doc, DefaultIndent)
	require.NoError(t, err)

	decoded, err := Decode(first)
	require.NoError(t, err)
	assert.Equal(t, doc, decoded)

	second, err := Encode(decoded, DefaultIndent)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestWrite(t *testing.T) {
	doc, err := Decode([]byte(singleMeasurementDoc))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, os.WriteFile(path, []byte("stale contents"), 0644))

	n, err := Write(path, doc, DefaultIndent)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, len(data), n)

	back, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, doc, back)
}

func TestWrite_MissingParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.json")

	_, err := Write(path, &Document{}, DefaultIndent)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrIO))

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

// assertOrdered checks that the keys appear in text in the given order.
func assertOrdered(t *testing.T, text string, keys []string) {
	t.Helper()
	last := -1
	for _, key := range keys {
		idx := strings.Index(text, `"`+key+`":`)
		require.GreaterOrEqual(t, idx, 0, "key %q not found", key)
		assert.Greater(t, idx, last, "key %q out of order", key)
		last = idx
	}
}
