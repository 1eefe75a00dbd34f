package dispatch

import (
	"fmt"
	"reflect"
)

// Param describes one formal parameter of a callable.
//
// Go functions do not carry parameter names or default values at runtime,
// so both are declared explicitly alongside the function and validated
// against its reflected type when the Func is built.
type Param struct {
	// Name is the formal parameter name used for named-argument lookup.
	Name string

	// Default is the value materialized when the parameter is omitted.
	// Only meaningful when HasDefault is true.
	Default any

	// HasDefault marks the parameter as optional.
	HasDefault bool

	kwSink bool
}

// P declares a required parameter.
func P(name string) Param {
	return Param{Name: name}
}

// D declares a parameter with a default value.
func D(name string, def any) Param {
	return Param{Name: name, Default: def, HasDefault: true}
}

// KwSink declares a trailing parameter that gathers extra named arguments.
// The underlying Go parameter must have type map[string]any. A callable
// with a KwSink parameter accepts arbitrary named keys beyond its declared
// parameters, and is therefore not bindable to a positional list.
func KwSink(name string) Param {
	return Param{Name: name, kwSink: true}
}

// Signature is the introspected shape of a callable: its ordered formal
// parameter names, which of them carry defaults, and whether it accepts
// unbounded extra positional or named arguments.
type Signature struct {
	// Params are the named formal parameters in declaration order.
	// The variadic tail and the kw-sink parameter are not included.
	Params []Param

	// VariadicArgs is true when the callable accepts unbounded extra
	// positional arguments (a Go variadic tail).
	VariadicArgs bool

	// VariadicKw is true when the callable accepts unbounded extra named
	// arguments (a trailing KwSink parameter).
	VariadicKw bool
}

// Names returns the formal parameter names in declaration order.
func (s Signature) Names() []string {
	names := make([]string, len(s.Params))
	for i, p := range s.Params {
		names[i] = p.Name
	}
	return names
}

// Defaulted returns the set of parameter names carrying defaults.
func (s Signature) Defaulted() map[string]bool {
	defs := make(map[string]bool)
	for _, p := range s.Params {
		if p.HasDefault {
			defs[p.Name] = true
		}
	}
	return defs
}

// Equal reports whether two signatures are structurally identical:
// same names in the same order, same defaulted-set, same variadic flags.
// Default values themselves are not compared.
func (s Signature) Equal(other Signature) bool {
	if len(s.Params) != len(other.Params) {
		return false
	}
	if s.VariadicArgs != other.VariadicArgs || s.VariadicKw != other.VariadicKw {
		return false
	}
	for i, p := range s.Params {
		q := other.Params[i]
		if p.Name != q.Name || p.HasDefault != q.HasDefault {
			return false
		}
	}
	return true
}

// String renders the signature for diagnostics, e.g. "(source)" or
// "(instrument, start, end=<default>)".
func (s Signature) String() string {
	out := "("
	for i, p := range s.Params {
		if i > 0 {
			out += ", "
		}
		out += p.Name
		if p.HasDefault {
			out += "=<default>"
		}
	}
	if s.VariadicArgs {
		if len(s.Params) > 0 {
			out += ", "
		}
		out += "..."
	}
	if s.VariadicKw {
		if len(s.Params) > 0 || s.VariadicArgs {
			out += ", "
		}
		out += "**"
	}
	return out + ")"
}

// Func pairs a Go function with its declared formal parameter list.
//
// Handlers and conditions are both represented as Funcs. The declared
// parameter list is validated against the function's reflected type at
// construction, so a Func always has a determinable signature; raw Go
// functions without a declaration are opaque to the introspector.
//
// Return conventions: a Func's underlying function may return nothing,
// a single value, a single error, or (value, error). Conditions must
// return bool or (bool, error).
type Func struct {
	name     string
	fn       reflect.Value
	sig      Signature
	receiver *reflect.Value // bound receiver, prepended on every call
	kwSink   string         // name of the kw-sink parameter, if any
}

// NewFunc builds a Func from a Go function and its declared parameters.
//
// The declared parameter count must match the function's reflected arity.
// A Go variadic tail is detected automatically and sets VariadicArgs; the
// variadic slice parameter itself is not declared. A trailing KwSink
// parameter sets VariadicKw and must correspond to a map[string]any
// parameter in the function type.
//
// Fails with an INTROSPECTION error when fn is not a function or the
// declaration disagrees with the reflected type.
func NewFunc(name string, fn any, params ...Param) (*Func, error) {
	return newFunc(name, fn, nil, params)
}

// NewBound builds a Func for a method expression bound to an instance.
// The function's first reflected parameter is the receiver; it is
// excluded from the visible signature and supplied on every call.
func NewBound(name string, receiver any, fn any, params ...Param) (*Func, error) {
	if receiver == nil {
		return nil, newIntrospectionError(name, "bound receiver must not be nil")
	}
	rv := reflect.ValueOf(receiver)
	return newFunc(name, fn, &rv, params)
}

// MustFunc is NewFunc but panics on error. Intended for package-level
// registrations where a bad declaration is a programming error.
func MustFunc(name string, fn any, params ...Param) *Func {
	f, err := NewFunc(name, fn, params...)
	if err != nil {
		panic(err)
	}
	return f
}

func newFunc(name string, fn any, receiver *reflect.Value, params []Param) (*Func, error) {
	if fn == nil {
		return nil, newIntrospectionError(name, "callable is nil")
	}
	v := reflect.ValueOf(fn)
	t := v.Type()
	if t.Kind() != reflect.Func {
		return nil, newIntrospectionError(name, fmt.Sprintf("callable has kind %s, not func", t.Kind()))
	}
	if t.NumOut() > 2 {
		return nil, newIntrospectionError(name, "callable returns more than two values")
	}
	if t.NumOut() == 2 && !t.Out(1).Implements(errorType) {
		return nil, newIntrospectionError(name, "second return value must be error")
	}

	f := &Func{name: name, fn: v, receiver: receiver}

	// Split off a trailing kw-sink from the declared list.
	declared := params
	if n := len(declared); n > 0 && declared[n-1].kwSink {
		sink := declared[n-1]
		if sink.HasDefault {
			return nil, newIntrospectionError(name, "kw-sink parameter cannot carry a default")
		}
		f.kwSink = sink.Name
		f.sig.VariadicKw = true
		declared = declared[:n-1]
	}
	for _, p := range declared {
		if p.kwSink {
			return nil, newIntrospectionError(name, "kw-sink parameter must be last")
		}
		if p.Name == "" {
			return nil, newIntrospectionError(name, "parameter name must not be empty")
		}
	}
	f.sig.Params = append([]Param(nil), declared...)

	// Reconcile the declaration with the reflected arity.
	want := len(declared)
	if receiver != nil {
		want++
	}
	if f.sig.VariadicKw {
		want++
	}
	if t.IsVariadic() {
		f.sig.VariadicArgs = true
		want++ // the variadic slice parameter is not declared
	}
	if t.NumIn() != want {
		return nil, newIntrospectionError(name, fmt.Sprintf(
			"declared %d parameter(s) but function takes %d", len(declared), t.NumIn(),
		))
	}
	if receiver != nil && !receiver.Type().AssignableTo(t.In(0)) {
		return nil, newIntrospectionError(name, fmt.Sprintf(
			"receiver %s is not assignable to first parameter %s", receiver.Type(), t.In(0),
		))
	}
	if f.sig.VariadicKw {
		idx := t.NumIn() - 1
		if f.sig.VariadicArgs {
			idx--
		}
		if t.In(idx) != kwSinkType {
			return nil, newIntrospectionError(name, fmt.Sprintf(
				"kw-sink parameter %q must have type map[string]any, has %s", f.kwSink, t.In(idx),
			))
		}
	}
	return f, nil
}

var (
	errorType  = reflect.TypeOf((*error)(nil)).Elem()
	kwSinkType = reflect.TypeOf(map[string]any(nil))
)

// Name returns the diagnostic name the Func was registered under.
func (f *Func) Name() string { return f.name }

// Signature returns the Func's introspected signature.
func (f *Func) Signature() Signature {
	return Signature{
		Params:       append([]Param(nil), f.sig.Params...),
		VariadicArgs: f.sig.VariadicArgs,
		VariadicKw:   f.sig.VariadicKw,
	}
}

// Describe extracts the formal signature of a callable.
//
// Only *Func callables are introspectable: Go's runtime reflection exposes
// parameter types but not names or defaults, so a raw function without a
// declared parameter list is opaque and fails with an INTROSPECTION error.
func Describe(callable any) (Signature, error) {
	if f, ok := callable.(*Func); ok && f != nil {
		return f.Signature(), nil
	}
	return Signature{}, newIntrospectionError(
		fmt.Sprintf("%T", callable),
		"signature cannot be determined: parameter names are not recoverable from a bare callable",
	)
}
