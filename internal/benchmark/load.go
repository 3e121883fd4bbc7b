package benchmark

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"unicode/utf8"

	errs "benchtrim/internal/errors"
)

// documentPath labels errors about the top-level value.
const documentPath = "document"

// Load reads the document at path. The whole file is read into memory before
// decoding.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.NewIOError(path, err)
	}
	return Decode(data)
}

// Decode parses data as a benchmark document. Members outside the schema are
// ignored; every schema member is required and matched by its exact name.
// Syntax errors and text that is not valid UTF-8 are reported as parse
// errors, shape mismatches as schema errors. No partial document is ever
// returned.
func Decode(data []byte) (*Document, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errs.NewParseError("", err)
	}
	if err := checkText(data); err != nil {
		return nil, errs.NewParseError("", err)
	}
	return decodeDocument(raw)
}

// checkText rejects input that encoding/json would otherwise silently repair:
// invalid UTF-8 bytes and \u escapes of unpaired UTF-16 surrogates both
// decode to U+FFFD. data must already be valid JSON.
func checkText(data []byte) error {
	if !utf8.Valid(data) {
		return errors.New("input is not valid UTF-8")
	}

	inString := false
	for i := 0; i < len(data); i++ {
		switch c := data[i]; {
		case c == '"':
			inString = !inString
		case c == '\\' && inString:
			if data[i+1] != 'u' {
				i++
				continue
			}
			r := hex4(data, i+2)
			switch {
			case r >= 0xD800 && r < 0xDC00:
				if i+11 >= len(data) || data[i+6] != '\\' || data[i+7] != 'u' {
					return fmt.Errorf("unpaired surrogate escape \\u%04x at offset %d", r, i)
				}
				if lo := hex4(data, i+8); lo < 0xDC00 || lo > 0xDFFF {
					return fmt.Errorf("unpaired surrogate escape \\u%04x at offset %d", r, i)
				}
				i += 11
			case r >= 0xDC00 && r <= 0xDFFF:
				return fmt.Errorf("unpaired surrogate escape \\u%04x at offset %d", r, i)
			default:
				i += 5
			}
		}
	}
	return nil
}

// hex4 parses the four hex digits at data[i:i+4]. Valid JSON guarantees they
// are present.
func hex4(data []byte, i int) int {
	n, err := strconv.ParseUint(string(data[i:i+4]), 16, 16)
	if err != nil {
		return -1
	}
	return int(n)
}

// jsonKind names the JSON value a Go type decodes from.
func jsonKind(t reflect.Type) string {
	if t == nil {
		return "value"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Struct, reflect.Map:
		return "object"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.String:
		return "string"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "non-negative integer"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "integer"
	case reflect.Bool:
		return "boolean"
	}
	return t.String()
}
