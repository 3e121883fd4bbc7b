package benchmark

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	errs "benchtrim/internal/errors"

	"github.com/moby/sys/atomicwriter"
)

// DefaultIndent is the number of spaces per nesting level in written output.
const DefaultIndent = 2

// Encode renders doc as indented JSON terminated by a newline. Members appear
// in schema order so repeated runs over the same input produce identical bytes.
func Encode(doc *Document, indent int) ([]byte, error) {
	if indent < 1 {
		indent = DefaultIndent
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", strings.Repeat(" ", indent))
	if err := enc.Encode(newWireDocument(doc)); err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return buf.Bytes(), nil
}

// Write encodes doc and replaces the file at path with the result. The file is
// written through a temporary sibling and renamed into place, so a failure
// never leaves a truncated destination behind. It returns the number of bytes
// written.
func Write(path string, doc *Document, indent int) (int, error) {
	data, err := Encode(doc, indent)
	if err != nil {
		return 0, err
	}
	if err := atomicwriter.WriteFile(path, data, 0o644); err != nil {
		return 0, errs.NewIOError(path, err)
	}
	return len(data), nil
}
