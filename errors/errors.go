package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseDecode   Phase = "decode"   // bytes to model
	PhaseEncode   Phase = "encode"   // model to bytes
	PhaseBuild    Phase = "build"    // builder accumulation
	PhaseResolve  Phase = "resolve"  // constant pool insert/lookup
	PhaseValidate Phase = "validate" // format-level checks
	PhaseLoad     Phase = "load"     // bundle loading
	PhaseParse    Phase = "parse"    // descriptor parsing
)

// Kind categorizes the error
type Kind string

const (
	KindMalformedAttribute   Kind = "malformed_attribute"
	KindInvalidConstantKind  Kind = "invalid_constant_kind"
	KindMissingRequiredField Kind = "missing_required_field"
	KindBuilderAlreadyBuilt  Kind = "builder_already_built"
	KindInvalidInput         Kind = "invalid_input"
	KindNotFound             Kind = "not_found"
	KindOverflow             Kind = "overflow"
	KindIntegrity            Kind = "integrity"
)

// Sentinels for errors.Is. They match any error of the same Kind,
// regardless of phase.
var (
	ErrMalformedAttribute   = &Error{Kind: KindMalformedAttribute}
	ErrInvalidConstantKind  = &Error{Kind: KindInvalidConstantKind}
	ErrMissingRequiredField = &Error{Kind: KindMissingRequiredField}
	ErrBuilderAlreadyBuilt  = &Error{Kind: KindBuilderAlreadyBuilt}
	ErrInvalidInput         = &Error{Kind: KindInvalidInput}
	ErrNotFound             = &Error{Kind: KindNotFound}
	ErrOverflow             = &Error{Kind: KindOverflow}
	ErrIntegrity            = &Error{Kind: KindIntegrity}
)

// Error is the structured error type used throughout the codec
type Error struct {
	Value     any
	Cause     error
	Phase     Phase
	Kind      Kind
	Expected  string
	Actual    string
	Detail    string
	Path      []string
	Offset    int
	HasOffset bool
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

	if e.HasOffset {
		fmt.Fprintf(&b, " (offset %d)", e.Offset)
	}

	if e.Expected != "" || e.Actual != "" {
		b.WriteString(": expected ")
		b.WriteString(orUnknown(e.Expected))
		b.WriteString(", got ")
		b.WriteString(orUnknown(e.Actual))
	}

	if e.Detail != "" {
		if e.Expected != "" || e.Actual != "" {
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

func orUnknown(s string) string {
	if s == "" {
		return "?"
	}
	return s
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. A target without a
// phase matches on kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.Kind != t.Kind {
		return false
	}
	return t.Phase == "" || e.Phase == t.Phase
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

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Offset sets the byte offset the error refers to
func (b *Builder) Offset(off int) *Builder {
	b.err.Offset = off
	b.err.HasOffset = true
	return b
}

// Expected sets what the decoder expected to find
func (b *Builder) Expected(s string) *Builder {
	b.err.Expected = s
	return b
}

// Actual sets what the decoder actually found
func (b *Builder) Actual(s string) *Builder {
	b.err.Actual = s
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

// Malformed creates a structural decode error at the given offset
func Malformed(path []string, offset int, detail string) *Error {
	return &Error{
		Phase:     PhaseDecode,
		Kind:      KindMalformedAttribute,
		Path:      path,
		Offset:    offset,
		HasOffset: true,
		Detail:    detail,
	}
}

// Truncated creates a malformed error for a read past the declared length
func Truncated(path []string, offset, need, have int) *Error {
	return &Error{
		Phase:     PhaseDecode,
		Kind:      KindMalformedAttribute,
		Path:      path,
		Offset:    offset,
		HasOffset: true,
		Expected:  fmt.Sprintf("%d bytes", need),
		Actual:    fmt.Sprintf("%d bytes", have),
		Detail:    "read past declared attribute length",
	}
}

// ConstantKind creates a tag mismatch error
func ConstantKind(phase Phase, path []string, expected, actual string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindInvalidConstantKind,
		Path:     path,
		Expected: expected,
		Actual:   actual,
	}
}

// FieldMissing creates a missing field error
func FieldMissing(phase Phase, path []string, fieldName string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindMissingRequiredField,
		Path:   path,
		Detail: fmt.Sprintf("required field %q not set", fieldName),
	}
}

// AlreadyBuilt creates a use-after-build error
func AlreadyBuilt(operation string) *Error {
	return &Error{
		Phase:  PhaseBuild,
		Kind:   KindBuilderAlreadyBuilt,
		Detail: fmt.Sprintf("%s called after Build", operation),
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

// NotFound creates a not-found error
func NotFound(phase Phase, what string, value any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %v not found", what, value),
		Value:  value,
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, path []string, value any, limit string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Path:   path,
		Detail: fmt.Sprintf("value %v exceeds %s", value, limit),
		Value:  value,
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
