package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in the lowering pipeline the error occurred
type Phase string

const (
	PhaseExtract Phase = "extract" // async region extraction
	PhaseConvert Phase = "convert" // dialect conversion / legalization
	PhaseVerify  Phase = "verify"  // op verification
	PhaseBuild   Phase = "build"   // IR construction
	PhaseDnn     Phase = "dnn"     // DNN library binding
	PhaseExec    Phase = "exec"    // host-side interpretation
)

// Kind categorizes the error
type Kind string

const (
	KindUnsupportedType Kind = "unsupported_type"
	KindTypeMismatch    Kind = "type_mismatch"
	KindRankMismatch    Kind = "rank_mismatch"
	KindInvalidEnum     Kind = "invalid_enum"
	KindUnconverted     Kind = "unconverted"
	KindInvalidIR       Kind = "invalid_ir"
	KindNotFound        Kind = "not_found"
	KindOutOfRange      Kind = "out_of_range"
	KindInvalidInput    Kind = "invalid_input"
	KindAllocation      Kind = "allocation"
	KindUseAfterFree    Kind = "use_after_free"
)

// Error is the structured error type used throughout the library
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Op     string // offending op kind, e.g. "memref.view"
	Type   string // offending type, e.g. "memref<2x4xi8>"
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Op != "" {
		b.WriteString(" at ")
		b.WriteString(e.Op)
	}

	if e.Type != "" {
		b.WriteString(": type ")
		b.WriteString(e.Type)
	}

	if e.Detail != "" {
		if e.Type != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
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

// Op sets the offending op kind
func (b *Builder) Op(op string) *Builder {
	b.err.Op = op
	return b
}

// Type sets the offending type name
func (b *Builder) Type(t string) *Builder {
	b.err.Type = t
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

// UnsupportedType creates an unsupported type error.
// These are configuration errors, not recoverable match failures.
func UnsupportedType(phase Phase, typeName string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupportedType,
		Type:   typeName,
		Detail: "no byte size defined for type",
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, op, want, got string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Op:     op,
		Detail: fmt.Sprintf("expected %s, got %s", want, got),
	}
}

// RankMismatch creates a tensor rank error
func RankMismatch(phase Phase, what string, rank int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindRankMismatch,
		Detail: fmt.Sprintf("%s is not a rank 1 tensor (rank %d)", what, rank),
	}
}

// InvalidEnum creates an enum range error
func InvalidEnum(phase Phase, what string, value uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidEnum,
		Detail: fmt.Sprintf("%s value %d out of range for enum cast", what, value),
		Value:  value,
	}
}

// Unconverted creates a legalization failure naming the op that no
// pattern could convert and the missing precondition if known.
func Unconverted(op, reason string) *Error {
	return &Error{
		Phase:  PhaseConvert,
		Kind:   KindUnconverted,
		Op:     op,
		Detail: reason,
	}
}

// InvalidIR creates a malformed-IR error
func InvalidIR(phase Phase, op, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidIR,
		Op:     op,
		Detail: detail,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// OutOfRange creates an out of range error
func OutOfRange(phase Phase, what string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfRange,
		Detail: fmt.Sprintf("%s %d out of range (length %d)", what, index, length),
		Value:  index,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(phase Phase, size uint64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to allocate %d bytes", size),
	}
}

// UseAfterFree creates a buffer lifetime violation error
func UseAfterFree(what string) *Error {
	return &Error{
		Phase:  PhaseExec,
		Kind:   KindUseAfterFree,
		Detail: fmt.Sprintf("%s used after deallocation", what),
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
