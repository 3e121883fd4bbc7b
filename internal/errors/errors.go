package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a fatal pipeline failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindUsage
	KindIO
	KindParse
	KindSchema
)

func (k Kind) String() string {
	switch k {
	case KindUsage:
		return "usage error"
	case KindIO:
		return "I/O error"
	case KindParse:
		return "parse error"
	case KindSchema:
		return "schema error"
	default:
		return "error"
	}
}

// ExitCode returns the process exit status for the kind.
func (k Kind) ExitCode() int {
	switch k {
	case KindUsage:
		return 2
	case KindIO:
		return 3
	case KindParse:
		return 4
	case KindSchema:
		return 5
	default:
		return 1
	}
}

// Error is a classified failure. Op names what was being done (a path, a
// command), Err is the underlying cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

// Error implements the error interface
func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Op)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so callers can test against the
// sentinel values below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrUsage  = &Error{Kind: KindUsage}
	ErrIO     = &Error{Kind: KindIO}
	ErrParse  = &Error{Kind: KindParse}
	ErrSchema = &Error{Kind: KindSchema}
)

// NewUsageError reports a bad invocation.
func NewUsageError(format string, args ...any) *Error {
	return &Error{Kind: KindUsage, Err: fmt.Errorf(format, args...)}
}

// NewIOError wraps a file system failure on path.
func NewIOError(path string, err error) *Error {
	return &Error{Kind: KindIO, Op: path, Err: err}
}

// NewParseError wraps a JSON syntax failure.
func NewParseError(op string, err error) *Error {
	return &Error{Kind: KindParse, Op: op, Err: err}
}

// NewSchemaError reports a document that is valid JSON but does not match the
// expected shape. Path locates the offending member, e.g. "results[1].unit".
func NewSchemaError(path string, format string, args ...any) *Error {
	return &Error{Kind: KindSchema, Op: path, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// ExitCode maps err to a process exit status. A nil error is 0.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return KindOf(err).ExitCode()
}
