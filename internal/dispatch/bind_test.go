package dispatch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindArgs_NamedInFormalOrder(t *testing.T) {
	f := MustFunc("span", func(instrument, start, end string) {}, P("instrument"), P("start"), P("end"))

	// Named values are appended in declaration order, not map order.
	bound, err := bindArgs(f, []any{"BIR"}, map[string]any{
		"end":   "2011-06-11",
		"start": "2011-06-10",
	})
	require.NoError(t, err)
	assert.Equal(t, []any{"BIR", "2011-06-10", "2011-06-11"}, bound)
}

func TestBindArgs_MaterializesDefaults(t *testing.T) {
	f := MustFunc("h", func(x, y int) {}, P("x"), D("y", 10))

	bound, err := bindArgs(f, []any{1}, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{1, 10}, bound, "omitted defaulted parameter takes its declared default")
}

func TestBindArgs_MissingRequired(t *testing.T) {
	f := MustFunc("h", func(x, y int) {}, P("x"), P("y"))

	_, err := bindArgs(f, []any{1}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"y"`)
}

func TestBindArgs_ExcessPositional(t *testing.T) {
	f := MustFunc("h", func(x int) {}, P("x"))

	_, err := bindArgs(f, []any{1, 2}, nil)
	require.Error(t, err)
}

func TestBindArgs_RejectsVariadic(t *testing.T) {
	variadic := MustFunc("v", func(xs ...int) {})
	_, err := bindArgs(variadic, []any{1}, nil)
	assert.Equal(t, ErrCodeUnsupportedSignature, CodeOf(err))

	sink := MustFunc("s", func(x int, extra map[string]any) {}, P("x"), KwSink("extra"))
	_, err = bindArgs(sink, []any{1}, nil)
	assert.Equal(t, ErrCodeUnsupportedSignature, CodeOf(err))
}

func TestCall_MixedPositionalAndNamed(t *testing.T) {
	f := MustFunc("sub", func(a, b int) int { return a - b }, P("a"), P("b"))

	got, err := f.Call([]any{10}, map[string]any{"b": 4})
	require.NoError(t, err)
	assert.Equal(t, 6, got)
}

func TestCall_DefaultsApply(t *testing.T) {
	f := MustFunc("scale", func(x, factor int) int { return x * factor },
		P("x"), D("factor", 3))

	got, err := f.Call([]any{5}, nil)
	require.NoError(t, err)
	assert.Equal(t, 15, got)
}

func TestCall_ReturnConventions(t *testing.T) {
	boom := errors.New("boom")

	void := MustFunc("void", func(x int) {}, P("x"))
	got, err := void.Call([]any{1}, nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	errOnly := MustFunc("errOnly", func(x int) error { return boom }, P("x"))
	_, err = errOnly.Call([]any{1}, nil)
	assert.Same(t, boom, err)

	pair := MustFunc("pair", func(x int) (int, error) { return x, nil }, P("x"))
	got, err = pair.Call([]any{7}, nil)
	require.NoError(t, err)
	assert.Equal(t, 7, got)

	pairErr := MustFunc("pairErr", func(x int) (int, error) { return 0, boom }, P("x"))
	_, err = pairErr.Call([]any{7}, nil)
	assert.Same(t, boom, err, "handler errors propagate unchanged")
}

func TestCall_VariadicTail(t *testing.T) {
	f := MustFunc("sum", func(base int, rest ...int) int {
		for _, r := range rest {
			base += r
		}
		return base
	}, P("base"))

	got, err := f.Call([]any{1, 2, 3}, nil)
	require.NoError(t, err)
	assert.Equal(t, 6, got)
}

func TestCall_KwSinkGathersExtras(t *testing.T) {
	f := MustFunc("tag", func(name string, extra map[string]any) int {
		return len(extra)
	}, P("name"), KwSink("extra"))

	got, err := f.Call([]any{"a"}, map[string]any{"color": "red", "size": 2})
	require.NoError(t, err)
	assert.Equal(t, 2, got)
}

func TestCall_NilForNilableParameter(t *testing.T) {
	f := MustFunc("ptr", func(p *int) bool { return p == nil }, P("p"))
	got, err := f.Call([]any{nil}, nil)
	require.NoError(t, err)
	assert.Equal(t, true, got)
}

func TestCall_TypeMismatchIsError(t *testing.T) {
	f := MustFunc("strict", func(x int) int { return x }, P("x"))
	_, err := f.Call([]any{"not an int"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not assignable")
}
