package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseConvert  Phase = "convert"  // typed access on a tagged value
	PhasePack     Phase = "pack"     // native arguments to boundary slots
	PhaseCall     Phase = "call"     // packed function invocation
	PhaseParse    Phase = "parse"    // type descriptor text
	PhaseExtract  Phase = "extract"  // boundary extraction
	PhaseRegistry Phase = "registry" // function registration and lookup
	PhaseLoad     Phase = "load"     // kernel module loading
)

// Kind categorizes the error
type Kind string

const (
	KindTypeMismatch  Kind = "type_mismatch"
	KindRange         Kind = "range"
	KindIndex         Kind = "index"
	KindUnknownType   Kind = "unknown_type"
	KindInvalidAccess Kind = "invalid_access"
	KindNullCall      Kind = "null_call"
	KindNotFound      Kind = "not_found"
	KindInvalidInput  Kind = "invalid_input"
	KindInvalidData   Kind = "invalid_data"
	KindUnsupported   Kind = "unsupported"
	KindRegistration  Kind = "registration"
	KindTrap          Kind = "trap"
)

// Error is the structured error type used throughout the library
type Error struct {
	Value    any
	Cause    error
	Phase    Phase
	Kind     Kind
	Expected string
	Actual   string
	Detail   string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Expected != "" || e.Actual != "" {
		b.WriteString(": ")
		if e.Expected != "" && e.Actual != "" {
			b.WriteString("expected ")
			b.WriteString(e.Expected)
			b.WriteString(", actual ")
			b.WriteString(e.Actual)
		} else if e.Expected != "" {
			b.WriteString("expected ")
			b.WriteString(e.Expected)
		} else {
			b.WriteString("actual ")
			b.WriteString(e.Actual)
		}
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

// Expected sets the expected type tag name
func (b *Builder) Expected(tag string) *Builder {
	b.err.Expected = tag
	return b
}

// Actual sets the actual type tag name
func (b *Builder) Actual(tag string) *Builder {
	b.err.Actual = tag
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

// TypeMismatch creates a type mismatch error reporting both tags
func TypeMismatch(phase Phase, expected, actual string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindTypeMismatch,
		Expected: expected,
		Actual:   actual,
	}
}

// OutOfRange creates a numeric narrowing error
func OutOfRange(phase Phase, value any, target string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindRange,
		Expected: target,
		Detail:   fmt.Sprintf("value %v out of range for %s", value, target),
		Value:    value,
	}
}

// BadIndex creates an argument index error
func BadIndex(phase Phase, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindIndex,
		Detail: fmt.Sprintf("index %d out of bounds (count %d)", index, length),
		Value:  index,
	}
}

// UnknownType creates an error for unparsable descriptor text or an
// unrecognized tag
func UnknownType(phase Phase, text string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnknownType,
		Detail: fmt.Sprintf("unknown type %q", text),
		Value:  text,
	}
}

// InvalidAccess creates an error for access the current tag does not permit
func InvalidAccess(phase Phase, actual, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidAccess,
		Actual: actual,
		Detail: detail,
	}
}

// NullCall creates an error for invoking an empty packed function
func NullCall() *Error {
	return &Error{
		Phase:  PhaseCall,
		Kind:   KindNullCall,
		Detail: "packed function is nil",
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
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

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Detail: detail,
	}
}

// Registration creates a registration error
func Registration(name string, cause error) *Error {
	return &Error{
		Phase:  PhaseRegistry,
		Kind:   KindRegistration,
		Detail: fmt.Sprintf("register %q", name),
		Cause:  cause,
	}
}

// Trap creates an error for a kernel function that trapped
func Trap(name string, cause error) *Error {
	return &Error{
		Phase:  PhaseCall,
		Kind:   KindTrap,
		Detail: fmt.Sprintf("kernel function %q trapped", name),
		Cause:  cause,
	}
}

// Load creates a kernel loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
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
