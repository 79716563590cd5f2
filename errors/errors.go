package errors

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseConstruct   Phase = "construct"   // host function construction
	PhaseCall        Phase = "call"        // guest or host calling into a function
	PhaseReturn      Phase = "return"      // callable returning to its caller
	PhaseStore       Phase = "store"       // execution context access
	PhaseLink        Phase = "link"        // import resolution
	PhaseInstantiate Phase = "instantiate" // module instantiation
	PhaseLoad        Phase = "load"        // module loading
	PhaseRuntime     Phase = "runtime"     // guest execution
	PhaseHost        Phase = "host"        // host function registration
	PhaseParse       Phase = "parse"       // type and config parsing
)

// Kind categorizes the error
type Kind string

const (
	KindUsage         Kind = "usage"
	KindArity         Kind = "arity"
	KindTypeMismatch  Kind = "type_mismatch"
	KindOverflow      Kind = "overflow"
	KindBorrowed      Kind = "already_borrowed"
	KindExpired       Kind = "caller_expired"
	KindTrap          Kind = "trap"
	KindPanic         Kind = "panic"
	KindMissingImport Kind = "missing_import"
	KindNotFound      Kind = "not_found"
	KindUnsupported   Kind = "unsupported"
	KindInvalidInput  Kind = "invalid_input"
	KindInvalidData   Kind = "invalid_data"
	KindRegistration  Kind = "registration"
	KindInstantiation Kind = "instantiation"
	KindClosed        Kind = "closed"
)

// Side tells which direction of a call a value travels.
type Side string

const (
	SideNone    Side = ""
	SideParams  Side = "params"
	SideResults Side = "results"
)

// NoPosition marks an error that is not tied to a single value.
const NoPosition = -1

// Error is the structured error type used throughout the bridge
type Error struct {
	Value    any
	Cause    error
	Phase    Phase
	Kind     Kind
	Side     Side
	GoType   string
	WasmType string
	Detail   string
	Func     string
	Position int
	Given    int
	Expected int
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Func != "" {
		b.WriteString(" in ")
		b.WriteString(e.Func)
	}

	if e.Side != SideNone && e.Position >= 0 {
		b.WriteString(" at ")
		b.WriteString(positionName(e.Side, e.Position))
	}

	if e.GoType != "" || e.WasmType != "" {
		b.WriteString(": ")
		if e.GoType != "" && e.WasmType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", wasm type ")
			b.WriteString(e.WasmType)
		} else if e.GoType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		} else {
			b.WriteString("wasm type ")
			b.WriteString(e.WasmType)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.WasmType != "" {
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

func positionName(side Side, pos int) string {
	name := "param"
	if side == SideResults {
		name = "result"
	}
	return name + "[" + strconv.Itoa(pos) + "]"
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

// IsKind reports whether any error in err's chain is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	e, ok := AsError(err)
	return ok && e.Kind == kind
}

// AsError returns the first *Error in err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if !stderrors.As(err, &e) {
		return nil, false
	}
	return e, true
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase:    phase,
			Kind:     kind,
			Position: NoPosition,
		},
	}
}

// Func sets the function name the error relates to
func (b *Builder) Func(name string) *Builder {
	b.err.Func = name
	return b
}

// At sets the side and position of the offending value
func (b *Builder) At(side Side, pos int) *Builder {
	b.err.Side = side
	b.err.Position = pos
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// WasmType sets the wasm value type name
func (b *Builder) WasmType(t string) *Builder {
	b.err.WasmType = t
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

// Usage creates a construction-time usage error
func Usage(detail string, args ...any) *Error {
	return New(PhaseConstruct, KindUsage).Detail(detail, args...).Build()
}

// Arity creates a count mismatch error. The params side is raised at the
// calling boundary; the results side is a contract violation by the callable.
func Arity(side Side, given, expected int) *Error {
	phase, noun := PhaseCall, "arguments"
	if side == SideResults {
		phase, noun = PhaseReturn, "results"
	}
	return &Error{
		Phase:    phase,
		Kind:     KindArity,
		Side:     side,
		Position: NoPosition,
		Given:    given,
		Expected: expected,
		Detail:   fmt.Sprintf("wrong number of %s (given %d, expected %d)", noun, given, expected),
	}
}

// TypeConversion creates a type mismatch error for the value at pos.
func TypeConversion(side Side, pos int, goType, wasmType string) *Error {
	phase := PhaseCall
	if side == SideResults {
		phase = PhaseReturn
	}
	return &Error{
		Phase:    phase,
		Kind:     KindTypeMismatch,
		Side:     side,
		Position: pos,
		GoType:   goType,
		WasmType: wasmType,
	}
}

// Overflow creates an overflow error
func Overflow(side Side, pos int, value any, wasmType string) *Error {
	phase := PhaseCall
	if side == SideResults {
		phase = PhaseReturn
	}
	return &Error{
		Phase:    phase,
		Kind:     KindOverflow,
		Side:     side,
		Position: pos,
		WasmType: wasmType,
		Detail:   fmt.Sprintf("value %v overflows %s", value, wasmType),
		Value:    value,
	}
}

// Borrowed creates an error for a second concurrent borrow of a store
func Borrowed() *Error {
	return &Error{
		Phase:    PhaseStore,
		Kind:     KindBorrowed,
		Position: NoPosition,
		Detail:   "store data is already borrowed by an active host call",
	}
}

// Expired creates an error for a caller used outside its call
func Expired() *Error {
	return &Error{
		Phase:    PhaseStore,
		Kind:     KindExpired,
		Position: NoPosition,
		Detail:   "caller used after its host call returned",
	}
}

// Trap wraps a guest trap that did not originate from a host function
func Trap(fn string, cause error) *Error {
	return &Error{
		Phase:    PhaseRuntime,
		Kind:     KindTrap,
		Func:     fn,
		Position: NoPosition,
		Detail:   "guest trapped",
		Cause:    cause,
	}
}

// Panic wraps a non-error value recovered from a host callable
func Panic(fn string, value any) *Error {
	return &Error{
		Phase:    PhaseCall,
		Kind:     KindPanic,
		Func:     fn,
		Position: NoPosition,
		Detail:   fmt.Sprintf("host function panicked: %v", value),
		Value:    value,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindUnsupported,
		Position: NoPosition,
		Detail:   what,
	}
}

// Closed creates an error for use of a closed object
func Closed(what string) *Error {
	return &Error{
		Phase:    PhaseRuntime,
		Kind:     KindClosed,
		Position: NoPosition,
		Detail:   what + " is closed",
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindNotFound,
		Position: NoPosition,
		Detail:   fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindInvalidInput,
		Position: NoPosition,
		Detail:   detail,
	}
}

// Registration creates a registration error
func Registration(phase Phase, namespace, name string, cause error) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindRegistration,
		Position: NoPosition,
		Detail:   fmt.Sprintf("register %s#%s", namespace, name),
		Cause:    cause,
	}
}

// Instantiation creates an instantiation error
func Instantiation(cause error) *Error {
	return &Error{
		Phase:    PhaseInstantiate,
		Kind:     KindInstantiation,
		Position: NoPosition,
		Detail:   "instantiate module",
		Cause:    cause,
	}
}

// Load creates a module loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:    PhaseLoad,
		Kind:     KindInvalidData,
		Position: NoPosition,
		Detail:   detail,
		Cause:    cause,
	}
}

// ParseFailed creates a parsing error
func ParseFailed(what string, cause error) *Error {
	return &Error{
		Phase:    PhaseParse,
		Kind:     KindInvalidData,
		Position: NoPosition,
		Detail:   fmt.Sprintf("parse %s", what),
		Cause:    cause,
	}
}

// MissingImport represents a single unresolved import
type MissingImport struct {
	Module string // e.g., "env"
	Name   string // e.g., "log"
	Type   string // e.g., "(i32) -> ()"
}

// MissingImportsError is returned when linking fails due to missing host functions
type MissingImportsError struct {
	Imports []MissingImport
}

func (e *MissingImportsError) Error() string {
	if len(e.Imports) == 0 {
		return "[link] missing_import: no imports specified"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("missing %d host function(s):\n", len(e.Imports)))

	// Group by module for cleaner output
	byMod := make(map[string][]MissingImport)
	var modOrder []string
	for _, imp := range e.Imports {
		if _, exists := byMod[imp.Module]; !exists {
			modOrder = append(modOrder, imp.Module)
		}
		byMod[imp.Module] = append(byMod[imp.Module], imp)
	}

	for _, mod := range modOrder {
		b.WriteString("\n  ")
		b.WriteString(strconv.Quote(mod))
		b.WriteString(":\n")
		for _, imp := range byMod[mod] {
			b.WriteString("    - ")
			b.WriteString(imp.Name)
			if imp.Type != "" {
				b.WriteByte(' ')
				b.WriteString(imp.Type)
			}
			b.WriteByte('\n')
		}
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// Is reports whether target matches this error type
func (e *MissingImportsError) Is(target error) bool {
	_, ok := target.(*MissingImportsError)
	return ok
}
