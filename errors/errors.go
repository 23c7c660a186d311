package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseLayout   Phase = "layout"   // offset and size computation
	PhaseScan     Phase = "scan"     // module binary scanning
	PhaseValidate Phase = "validate" // module validation
	PhasePopulate Phase = "populate" // context block writes
	PhaseEncode   Phase = "encode"   // layout snapshot encoding
)

// Kind categorizes the error
type Kind string

const (
	KindOutOfRange         Kind = "out_of_range"
	KindArithmeticOverflow Kind = "arithmetic_overflow"
	KindNarrowingOverflow  Kind = "narrowing_overflow"
	KindInvalidData        Kind = "invalid_data"
	KindInvalidInput       Kind = "invalid_input"
	KindUnsupported        Kind = "unsupported"
	KindOutOfBounds        Kind = "out_of_bounds"
	KindCountMismatch      Kind = "count_mismatch"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// IsKind reports whether any *Error in err's chain has the given kind,
// regardless of phase.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		var e *Error
		if !stderrors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Cause
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// OutOfRange creates an error for an index not below its region count
func OutOfRange(path []string, index uint32, count uint64) *Error {
	return &Error{
		Phase:  PhaseLayout,
		Kind:   KindOutOfRange,
		Path:   path,
		Detail: fmt.Sprintf("index %d out of range (count %d)", index, count),
		Value:  index,
	}
}

// ArithmeticOverflow creates an error for a product or sum that left its domain
func ArithmeticOverflow(path []string, what string) *Error {
	return &Error{
		Phase:  PhaseLayout,
		Kind:   KindArithmeticOverflow,
		Path:   path,
		Detail: what + " overflows",
	}
}

// NarrowingOverflow creates an error for an offset that does not fit 32 bits
func NarrowingOverflow(path []string, value int64) *Error {
	return &Error{
		Phase:  PhaseLayout,
		Kind:   KindNarrowingOverflow,
		Path:   path,
		Detail: fmt.Sprintf("offset %d does not fit int32", value),
		Value:  value,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Path:   path,
		Detail: detail,
	}
}

// Unsupported creates an unsupported construct error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// OutOfBounds creates an error for an access past the end of a memory
func OutOfBounds(phase Phase, path []string, offset uint64, size uint64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("offset %d out of bounds (size %d)", offset, size),
		Value:  offset,
	}
}

// CountMismatch creates an error for two sources disagreeing on an entity count
func CountMismatch(phase Phase, path []string, got, want uint64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindCountMismatch,
		Path:   path,
		Detail: fmt.Sprintf("count %d, expected %d", got, want),
		Value:  got,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
