package dispatch

import "reflect"

// entry pairs a handler with its optional condition and type constraints.
type entry struct {
	handler   *Func
	condition *Func // nil for unconditioned (catch-all) entries
	types     []Constraint
}

// Registry routes one polymorphic call to the first registered handler
// whose signature and type gates accept the call and whose condition,
// if any, approves it.
//
// Entries live in two append-only lists: conditioned entries, considered
// first in registration order, and unconditioned entries, considered
// strictly after all conditioned ones regardless of interleaved
// registration. An unconditioned entry serves as the else branch for its
// signature-compatibility class.
//
// INVARIANTS:
//   - Entry order NEVER changes after registration; precedence is
//     insertion order within each list.
//   - Invocation mutates nothing; the registry is read-only during
//     dispatch.
//
// The registry is not safe for registration concurrent with invocation.
// Complete all registration before invoking, or serialize externally.
type Registry struct {
	conditioned   []entry
	unconditioned []entry
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{}
}

// RegisterOption configures a single registration.
type RegisterOption func(*registerConfig)

type registerConfig struct {
	condition *Func
	types     []Constraint
}

// When attaches a condition predicate to the registration. The condition
// is evaluated with the original call arguments whenever the entry's
// signature and type gates pass; the handler runs only if it returns
// true. The condition's declared parameter list must mirror the
// handler's exactly.
func When(condition *Func) RegisterOption {
	return func(cfg *registerConfig) {
		cfg.condition = condition
	}
}

// WithTypes attaches positional type constraints to the registration.
// Constraints apply to the handler's bound argument list (defaults
// materialized) and may cover fewer positions than the handler's arity.
func WithTypes(constraints ...Constraint) RegisterOption {
	return func(cfg *registerConfig) {
		cfg.types = constraints
	}
}

// Register adds a handler to the registry.
//
// With no When option the handler becomes an unconditioned catch-all for
// its signature-compatibility class. With a condition, the condition's
// signature is checked against the handler's: same names, same order,
// same defaulted-set, same variadic flags, or registration fails with a
// SIGNATURE_MISMATCH error. The condition must return bool or
// (bool, error).
//
// Registration is atomic: on failure the registry is unchanged.
func (r *Registry) Register(handler *Func, opts ...RegisterOption) error {
	if handler == nil {
		return newIntrospectionError("", "handler is nil")
	}
	var cfg registerConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.condition == nil {
		r.unconditioned = append(r.unconditioned, entry{handler: handler, types: cfg.types})
		return nil
	}
	if !conditionReturnsBool(cfg.condition) {
		return newIntrospectionError(cfg.condition.Name(), "condition must return bool or (bool, error)")
	}
	if !handler.sig.Equal(cfg.condition.sig) {
		return newSignatureMismatchError(handler, cfg.condition)
	}
	r.conditioned = append(r.conditioned, entry{
		handler:   handler,
		condition: cfg.condition,
		types:     cfg.types,
	})
	return nil
}

// MustRegister is Register but panics on error. Intended for static
// registration tables built at startup.
func (r *Registry) MustRegister(handler *Func, opts ...RegisterOption) {
	if err := r.Register(handler, opts...); err != nil {
		panic(err)
	}
}

// Decorator returns a registration function that adds its handler under
// the given condition and hands the handler back unchanged, for chained
// registration tables.
func (r *Registry) Decorator(condition *Func) func(*Func) *Func {
	return func(handler *Func) *Func {
		r.MustRegister(handler, When(condition))
		return handler
	}
}

// Invoke dispatches a purely positional call. See InvokeKw.
func (r *Registry) Invoke(args ...any) (any, error) {
	return r.InvokeKw(args, nil)
}

// InvokeKw dispatches a call with positional and named arguments.
//
// Conditioned entries are considered first, in registration order: for
// each whose signature gate accepts the call shape and whose type
// constraints (if any) accept the bound arguments, the condition is
// evaluated with the original arguments; the first condition returning
// true selects its handler, which is invoked with those same arguments
// and whose result or error is returned as-is. If no conditioned entry
// fires, unconditioned entries are tried under the same gates and the
// first acceptance wins.
//
// If no gate accepted the call at all the error carries
// NO_MATCHING_SIGNATURE; if gates passed but every condition declined,
// NO_SATISFIED_CONDITION. Condition and handler errors propagate
// unwrapped.
func (r *Registry) InvokeKw(args []any, kwargs map[string]any) (any, error) {
	anyMatched := false
	for _, e := range r.conditioned {
		ok, err := e.gate(args, kwargs)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		anyMatched = true
		accept, err := e.condition.evalBool(args, kwargs)
		if err != nil {
			return nil, err
		}
		if accept {
			return e.handler.Call(args, kwargs)
		}
	}
	for _, e := range r.unconditioned {
		ok, err := e.gate(args, kwargs)
		if err != nil {
			return nil, err
		}
		if ok {
			return e.handler.Call(args, kwargs)
		}
	}
	if anyMatched {
		return nil, newNoConditionError()
	}
	return nil, newNoMatchError(len(args), kwargs)
}

// gate applies the entry's signature and type filters to a call shape.
// Binding for the type gate fails for variadic-accepting handlers; that
// error surfaces to the caller rather than silently skipping the entry.
func (e entry) gate(args []any, kwargs map[string]any) (bool, error) {
	if !matchesSignature(e.handler.sig, args, kwargs) {
		return false, nil
	}
	if len(e.types) == 0 {
		return true, nil
	}
	bound, err := bindArgs(e.handler, args, kwargs)
	if err != nil {
		return false, err
	}
	return matchesTypes(bound, e.types), nil
}

// Entries returns a diagnostic snapshot of the routing table in
// consideration order: conditioned entries first, then unconditioned.
func (r *Registry) Entries() []EntryInfo {
	infos := make([]EntryInfo, 0, len(r.conditioned)+len(r.unconditioned))
	for _, e := range r.conditioned {
		infos = append(infos, EntryInfo{
			Handler:     e.handler.Name(),
			Signature:   e.handler.Signature().String(),
			Condition:   e.condition.Name(),
			Constraints: len(e.types),
		})
	}
	for _, e := range r.unconditioned {
		infos = append(infos, EntryInfo{
			Handler:     e.handler.Name(),
			Signature:   e.handler.Signature().String(),
			Constraints: len(e.types),
		})
	}
	return infos
}

// EntryInfo describes one routing table entry for diagnostics.
type EntryInfo struct {
	Handler     string `json:"handler"`
	Signature   string `json:"signature"`
	Condition   string `json:"condition,omitempty"`
	Constraints int    `json:"constraints,omitempty"`
}

func conditionReturnsBool(f *Func) bool {
	t := f.fn.Type()
	if t.NumOut() == 0 || t.NumOut() > 2 {
		return false
	}
	if t.NumOut() == 2 && t.Out(1) != errorType {
		return false
	}
	return t.Out(0).Kind() == reflect.Bool
}
