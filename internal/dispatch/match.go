package dispatch

import "reflect"

// Constraint is a positional type gate: a capability predicate over one
// bound argument value. Capability predicates instead of concrete type
// references allow structural as well as nominal matching.
type Constraint func(v any) bool

// OfType builds a Constraint satisfied by values of type T. When T is an
// interface type the value must implement it; otherwise the value's
// dynamic type must be assignable to T. nil satisfies only the empty
// interface.
func OfType[T any]() Constraint {
	want := reflect.TypeOf((*T)(nil)).Elem()
	return func(v any) bool {
		if v == nil {
			return want.Kind() == reflect.Interface && want.NumMethod() == 0
		}
		have := reflect.TypeOf(v)
		if want.Kind() == reflect.Interface {
			return have.Implements(want)
		}
		return have.AssignableTo(want)
	}
}

// Satisfies wraps an arbitrary predicate as a Constraint.
func Satisfies(pred func(v any) bool) Constraint {
	return Constraint(pred)
}

// matchesSignature reports whether a callable's formal signature can
// accept a call shaped like (args, kwargs), given defaults and
// extra-argument acceptance. Pure; evaluates the rules in order:
//
//  1. More positional arguments than formal parameters only match a
//     variadic-positional callable.
//  2. The remaining formals are those not covered positionally.
//  3. Every named key must land on a remaining formal, unless the
//     callable gathers extra named arguments.
//  4. Every remaining formal not covered by a named argument must carry
//     a default.
func matchesSignature(sig Signature, args []any, kwargs map[string]any) bool {
	params := sig.Params
	if !sig.VariadicArgs && len(args) > len(params) {
		return false
	}
	covered := len(args)
	if covered > len(params) {
		covered = len(params)
	}
	remaining := make(map[string]bool, len(params)-covered)
	for _, p := range params[covered:] {
		remaining[p.Name] = true
	}
	if !sig.VariadicKw {
		for key := range kwargs {
			if !remaining[key] {
				return false
			}
		}
	}
	for _, p := range params[covered:] {
		if _, ok := kwargs[p.Name]; ok {
			continue
		}
		if !p.HasDefault {
			return false
		}
	}
	return true
}

// matchesTypes reports whether the bound argument values satisfy an
// ordered, possibly partial, list of constraints. Values and constraints
// pair positionally up to the shorter length; unconstrained trailing
// arguments are unchecked, and an empty constraint list always matches.
func matchesTypes(bound []any, constraints []Constraint) bool {
	n := len(bound)
	if len(constraints) < n {
		n = len(constraints)
	}
	for i := 0; i < n; i++ {
		if !constraints[i](bound[i]) {
			return false
		}
	}
	return true
}
