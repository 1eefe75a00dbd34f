package dispatch

import (
	"fmt"
	"reflect"
)

// bindArgs turns positional and named arguments into the single ordered
// list that would be passed if every parameter were supplied positionally
// in declaration order. Defaults are materialized for omitted defaulted
// parameters, so the bound list always has the callable's full arity.
//
// Binding requires a concrete, finite parameter list: callables accepting
// unbounded extra positional or named arguments fail with an
// UNSUPPORTED_SIGNATURE error.
//
// A missing named value for a non-defaulted trailing parameter is a binder
// error; on the dispatch path the signature matcher gates this out before
// binding is attempted.
func bindArgs(f *Func, args []any, kwargs map[string]any) ([]any, error) {
	if f.sig.VariadicArgs || f.sig.VariadicKw {
		return nil, newUnsupportedSignatureError(f)
	}
	params := f.sig.Params
	if len(args) > len(params) {
		return nil, fmt.Errorf("%s: %d positional argument(s) for %d parameter(s)",
			f.name, len(args), len(params))
	}
	bound := make([]any, 0, len(params))
	bound = append(bound, args...)
	for _, p := range params[len(args):] {
		if v, ok := kwargs[p.Name]; ok {
			bound = append(bound, v)
			continue
		}
		if p.HasDefault {
			bound = append(bound, p.Default)
			continue
		}
		return nil, fmt.Errorf("%s: missing value for parameter %q", f.name, p.Name)
	}
	return bound, nil
}

// Call invokes the underlying function with the given positional and
// named arguments, equivalently to the original polymorphic call. The
// bound receiver (if any) is prepended, omitted defaulted parameters take
// their declared defaults, extra positional arguments feed a variadic
// tail, and unconsumed named arguments feed the kw-sink parameter.
//
// The result follows the function's return convention: (value, nil),
// (nil, error), or (nil, nil) for a void function. Errors returned by the
// function propagate unchanged.
func (f *Func) Call(args []any, kwargs map[string]any) (any, error) {
	in, err := f.callValues(args, kwargs)
	if err != nil {
		return nil, err
	}
	out := f.fn.Call(in)
	t := f.fn.Type()
	switch t.NumOut() {
	case 0:
		return nil, nil
	case 1:
		if t.Out(0) == errorType {
			return nil, asError(out[0])
		}
		return out[0].Interface(), nil
	default:
		return out[0].Interface(), asError(out[1])
	}
}

// evalBool invokes a condition and interprets its boolean verdict.
// The condition's return type is validated at registration time.
func (f *Func) evalBool(args []any, kwargs map[string]any) (bool, error) {
	in, err := f.callValues(args, kwargs)
	if err != nil {
		return false, err
	}
	out := f.fn.Call(in)
	verdict := out[0].Bool()
	if f.fn.Type().NumOut() == 2 {
		if err := asError(out[1]); err != nil {
			return false, err
		}
	}
	return verdict, nil
}

// callValues assembles the reflect argument list for a call.
func (f *Func) callValues(args []any, kwargs map[string]any) ([]reflect.Value, error) {
	t := f.fn.Type()
	in := make([]reflect.Value, 0, t.NumIn())
	base := 0
	if f.receiver != nil {
		in = append(in, *f.receiver)
		base = 1
	}

	params := f.sig.Params
	if !f.sig.VariadicArgs && len(args) > len(params) {
		return nil, fmt.Errorf("%s: %d positional argument(s) for %d parameter(s)",
			f.name, len(args), len(params))
	}

	consumed := make(map[string]bool, len(kwargs))
	for i, p := range params {
		var v any
		switch {
		case i < len(args):
			v = args[i]
		default:
			if kv, ok := kwargs[p.Name]; ok {
				v = kv
				consumed[p.Name] = true
			} else if p.HasDefault {
				v = p.Default
			} else {
				return nil, fmt.Errorf("%s: missing value for parameter %q", f.name, p.Name)
			}
		}
		rv, err := argValue(v, t.In(base+i), f.name, p.Name)
		if err != nil {
			return nil, err
		}
		in = append(in, rv)
	}

	if f.sig.VariadicKw {
		sink := make(map[string]any, len(kwargs))
		for k, v := range kwargs {
			if !consumed[k] {
				sink[k] = v
			}
		}
		in = append(in, reflect.ValueOf(sink))
	}

	if f.sig.VariadicArgs {
		elem := t.In(t.NumIn() - 1).Elem()
		for i := len(params); i < len(args); i++ {
			rv, err := argValue(args[i], elem, f.name, fmt.Sprintf("[%d]", i))
			if err != nil {
				return nil, err
			}
			in = append(in, rv)
		}
	}
	return in, nil
}

// argValue converts a call argument to the reflected parameter type.
// No implicit coercion: the value must be assignable as-is.
func argValue(v any, t reflect.Type, fn, param string) (reflect.Value, error) {
	if v == nil {
		switch t.Kind() {
		case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map,
			reflect.Pointer, reflect.Slice:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("%s: nil is not assignable to parameter %s (%s)", fn, param, t)
	}
	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(t) {
		return reflect.Value{}, fmt.Errorf("%s: %s is not assignable to parameter %s (%s)",
			fn, rv.Type(), param, t)
	}
	return rv, nil
}

func asError(v reflect.Value) error {
	if v.IsNil() {
		return nil
	}
	return v.Interface().(error)
}
