// Package dispatch implements deterministic, ordered, signature-aware
// conditional dispatch.
//
// A Registry holds candidate handlers for a single polymorphic call
// point. On invocation it selects the handler to run by inspecting the
// shape of the actual call (positional count plus named keys) and the
// types of the actual argument values, then evaluating each surviving
// candidate's condition predicate over those same arguments. This
// differs from plain overload resolution in that every candidate pairs
// an arbitrary boolean condition whose formal parameters must exactly
// mirror the handler's.
//
// Dispatch flow:
//
//  1. Signature gate: can the handler's declared parameter list accept
//     this call shape, given defaults and variadic acceptance?
//  2. Type gate: do the bound argument values (defaults materialized)
//     satisfy the entry's positional constraints?
//  3. Conditions of surviving conditioned entries are evaluated in
//     registration order with the original call arguments; the first
//     acceptance wins and its handler runs immediately.
//  4. If none fires, unconditioned entries are tried under the same
//     gates, in registration order.
//  5. Otherwise the invocation fails: NO_MATCHING_SIGNATURE when nothing
//     passed the gates at all, NO_SATISFIED_CONDITION when something did
//     but every condition declined.
//
// Evaluation order is a hard invariant. Entries are append-only,
// conditioned entries always precede unconditioned ones, and two calls
// with identical arguments against an unmodified registry select the
// same handler.
//
// Go functions do not expose parameter names or defaults at runtime, so
// callables are registered as Funcs: a Go function paired with a
// declared parameter list, validated against the function's reflected
// type at construction. Dispatch is synchronous on the caller's
// goroutine and holds no locks; finish registering before invoking.
package dispatch
