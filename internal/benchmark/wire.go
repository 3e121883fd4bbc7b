package benchmark

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	errs "benchtrim/internal/errors"
)

// Decoding side. Every object is read into a map keyed by the exact wire
// name, so member lookup is case-sensitive and a type mismatch can be
// reported with the indexed path of the member.

type wireObject map[string]json.RawMessage

// memberPath joins a member name onto the path of its parent object.
func memberPath(path, name string) string {
	if path == documentPath {
		return name
	}
	return path + "." + name
}

func missingField(path, field string) error {
	return errs.NewSchemaError(path, "missing required field %q", field)
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// decodeValue unmarshals raw into dst and turns a type mismatch into a schema
// error at path.
func decodeValue(raw json.RawMessage, dst any, path string) error {
	err := json.Unmarshal(raw, dst)
	if err == nil {
		return nil
	}
	var typeErr *json.UnmarshalTypeError
	if !errors.As(err, &typeErr) {
		return errs.NewParseError(path, err)
	}
	want := jsonKind(typeErr.Type)
	if want == "number" && strings.HasPrefix(typeErr.Value, "number ") {
		return errs.NewSchemaError(path, "%s is out of range", typeErr.Value)
	}
	return errs.NewSchemaError(path, "expected %s, got %s", want, typeErr.Value)
}

func decodeObject(raw json.RawMessage, path string) (wireObject, error) {
	if isNull(raw) {
		return nil, errs.NewSchemaError(path, "expected object, got null")
	}
	var obj wireObject
	if err := decodeValue(raw, &obj, path); err != nil {
		return nil, err
	}
	return obj, nil
}

// field decodes the required member name into dst.
func (o wireObject) field(path, name string, dst any) error {
	raw, ok := o[name]
	if !ok || isNull(raw) {
		return missingField(path, name)
	}
	return decodeValue(raw, dst, memberPath(path, name))
}

func decodeDocument(raw json.RawMessage) (*Document, error) {
	obj, err := decodeObject(raw, documentPath)
	if err != nil {
		return nil, err
	}

	var items []json.RawMessage
	if err := obj.field(documentPath, FieldResults, &items); err != nil {
		return nil, err
	}

	doc := &Document{Results: make([]Result, 0, len(items))}
	for i, item := range items {
		r, err := decodeResult(item, fmt.Sprintf("%s[%d]", FieldResults, i))
		if err != nil {
			return nil, err
		}
		doc.Results = append(doc.Results, r)
	}
	return doc, nil
}

func decodeResult(raw json.RawMessage, path string) (Result, error) {
	obj, err := decodeObject(raw, path)
	if err != nil {
		return Result{}, err
	}

	var r Result
	var items []json.RawMessage
	members := []struct {
		name string
		dst  any
	}{
		{FieldTitle, &r.Title},
		{FieldName, &r.Name},
		{FieldUnit, &r.Unit},
		{FieldMeasurements, &items},
		{FieldMedianElapsed, &r.MedianElapsed},
	}
	for _, m := range members {
		if err := obj.field(path, m.name, m.dst); err != nil {
			return Result{}, err
		}
	}

	r.Measurements = make([]Measurement, 0, len(items))
	for i, item := range items {
		m, err := decodeMeasurement(item, fmt.Sprintf("%s.%s[%d]", path, FieldMeasurements, i))
		if err != nil {
			return Result{}, err
		}
		r.Measurements = append(r.Measurements, m)
	}
	return r, nil
}

func decodeMeasurement(raw json.RawMessage, path string) (Measurement, error) {
	obj, err := decodeObject(raw, path)
	if err != nil {
		return Measurement{}, err
	}

	var m Measurement
	members := []struct {
		name string
		dst  any
	}{
		{FieldIterations, &m.Iterations},
		{FieldElapsed, &m.Elapsed},
		{FieldPageFaults, &m.PageFaults},
		{FieldCPUCycles, &m.CPUCycles},
		{FieldContextSwitches, &m.ContextSwitches},
		{FieldInstructions, &m.Instructions},
		{FieldBranchInstructions, &m.BranchInstructions},
		{FieldBranchMisses, &m.BranchMisses},
	}
	for _, f := range members {
		if err := obj.field(path, f.name, f.dst); err != nil {
			return Measurement{}, err
		}
	}
	return m, nil
}

// Encoding side. Field order here is the output order and the tags must
// match ResultFields and MeasurementFields.

type wireDocumentOut struct {
	Results []wireResultOut `json:"results"`
}

type wireResultOut struct {
	Title         string               `json:"title"`
	Name          string               `json:"name"`
	Unit          string               `json:"unit"`
	Measurements  []wireMeasurementOut `json:"measurements"`
	MedianElapsed jsonFloat            `json:"median(elapsed)"`
}

type wireMeasurementOut struct {
	Iterations         uint64    `json:"iterations"`
	Elapsed            jsonFloat `json:"elapsed"`
	PageFaults         uint64    `json:"pagefaults"`
	CPUCycles          uint64    `json:"cpucycles"`
	ContextSwitches    uint64    `json:"contextswitches"`
	Instructions       uint64    `json:"instructions"`
	BranchInstructions uint64    `json:"branchinstructions"`
	BranchMisses       uint64    `json:"branchmisses"`
}

func newWireDocument(doc *Document) wireDocumentOut {
	out := wireDocumentOut{Results: make([]wireResultOut, 0, len(doc.Results))}
	for _, r := range doc.Results {
		wr := wireResultOut{
			Title:         r.Title,
			Name:          r.Name,
			Unit:          r.Unit,
			Measurements:  make([]wireMeasurementOut, 0, len(r.Measurements)),
			MedianElapsed: jsonFloat(r.MedianElapsed),
		}
		for _, m := range r.Measurements {
			wr.Measurements = append(wr.Measurements, wireMeasurementOut{
				Iterations:         m.Iterations,
				Elapsed:            jsonFloat(m.Elapsed),
				PageFaults:         m.PageFaults,
				CPUCycles:          m.CPUCycles,
				ContextSwitches:    m.ContextSwitches,
				Instructions:       m.Instructions,
				BranchInstructions: m.BranchInstructions,
				BranchMisses:       m.BranchMisses,
			})
		}
		out.Results = append(out.Results, wr)
	}
	return out
}

// jsonFloat is a float64 that always encodes as valid JSON. Infinities
// saturate to the largest finite float64 of the same sign; NaN becomes null.
type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsNaN(v):
		return []byte("null"), nil
	case math.IsInf(v, 1):
		v = math.MaxFloat64
	case math.IsInf(v, -1):
		v = -math.MaxFloat64
	}
	return json.Marshal(v)
}
