package dispatch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFunc_DeclaresSignature(t *testing.T) {
	f, err := NewFunc("join", func(a, b string) string { return a + b }, P("a"), P("b"))
	require.NoError(t, err)

	sig := f.Signature()
	assert.Equal(t, []string{"a", "b"}, sig.Names())
	assert.Empty(t, sig.Defaulted())
	assert.False(t, sig.VariadicArgs)
	assert.False(t, sig.VariadicKw)
}

func TestNewFunc_DefaultedParameter(t *testing.T) {
	f, err := NewFunc("scale", func(x, factor int) int { return x * factor },
		P("x"), D("factor", 2))
	require.NoError(t, err)

	sig := f.Signature()
	assert.True(t, sig.Defaulted()["factor"])
	assert.False(t, sig.Defaulted()["x"])
}

func TestNewFunc_DetectsVariadicTail(t *testing.T) {
	f, err := NewFunc("sum", func(base int, rest ...int) int { return base }, P("base"))
	require.NoError(t, err)
	assert.True(t, f.Signature().VariadicArgs)
}

func TestNewFunc_KwSink(t *testing.T) {
	f, err := NewFunc("tag", func(name string, extra map[string]any) string { return name },
		P("name"), KwSink("extra"))
	require.NoError(t, err)

	sig := f.Signature()
	assert.True(t, sig.VariadicKw)
	assert.Equal(t, []string{"name"}, sig.Names(), "kw-sink is not a named formal")
}

func TestNewFunc_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		build  func() (*Func, error)
		reason string
	}{
		{
			name:   "not a function",
			build:  func() (*Func, error) { return NewFunc("x", 42) },
			reason: "kind",
		},
		{
			name:   "nil callable",
			build:  func() (*Func, error) { return NewFunc("x", nil) },
			reason: "nil",
		},
		{
			name: "arity mismatch",
			build: func() (*Func, error) {
				return NewFunc("x", func(a int) int { return a }, P("a"), P("b"))
			},
			reason: "declared 2 parameter(s)",
		},
		{
			name: "kw-sink wrong type",
			build: func() (*Func, error) {
				return NewFunc("x", func(a string, extra []string) {}, P("a"), KwSink("extra"))
			},
			reason: "map[string]any",
		},
		{
			name: "kw-sink not last",
			build: func() (*Func, error) {
				return NewFunc("x", func(extra map[string]any, a string) {}, KwSink("extra"), P("a"))
			},
			reason: "last",
		},
		{
			name: "three return values",
			build: func() (*Func, error) {
				return NewFunc("x", func() (int, int, error) { return 0, 0, nil })
			},
			reason: "two values",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.build()
			require.Error(t, err)
			assert.Equal(t, ErrCodeIntrospection, CodeOf(err))
			assert.True(t, strings.Contains(err.Error(), tc.reason),
				"error %q should mention %q", err, tc.reason)
		})
	}
}

func TestNewBound_StripsReceiver(t *testing.T) {
	type counter struct{ n int }
	bump := func(c *counter, by int) int {
		c.n += by
		return c.n
	}

	c := &counter{}
	f, err := NewBound("bump", c, bump, P("by"))
	require.NoError(t, err)

	assert.Equal(t, []string{"by"}, f.Signature().Names(),
		"receiver must be excluded from the visible signature")

	got, err := f.Call([]any{3}, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, got)
	assert.Equal(t, 3, c.n)
}

func TestNewBound_ReceiverTypeChecked(t *testing.T) {
	_, err := NewBound("bad", "not a counter", func(c int, by int) int { return by }, P("by"))
	require.Error(t, err)
	assert.Equal(t, ErrCodeIntrospection, CodeOf(err))
}

func TestDescribe(t *testing.T) {
	f := MustFunc("id", func(v any) any { return v }, P("v"))

	sig, err := Describe(f)
	require.NoError(t, err)
	assert.Equal(t, []string{"v"}, sig.Names())

	// A bare Go function is opaque: reflection cannot recover names.
	_, err = Describe(func(v any) any { return v })
	require.Error(t, err)
	assert.Equal(t, ErrCodeIntrospection, CodeOf(err))
}

func TestSignatureEqual(t *testing.T) {
	base := MustFunc("h", func(x, y int) {}, P("x"), P("y")).Signature()

	tests := []struct {
		name  string
		other Signature
		equal bool
	}{
		{
			name:  "identical",
			other: MustFunc("c", func(x, y int) bool { return true }, P("x"), P("y")).Signature(),
			equal: true,
		},
		{
			name:  "different order",
			other: MustFunc("c", func(y, x int) bool { return true }, P("y"), P("x")).Signature(),
			equal: false,
		},
		{
			name:  "fewer parameters",
			other: MustFunc("c", func(x int) bool { return true }, P("x")).Signature(),
			equal: false,
		},
		{
			name:  "defaulted-set differs",
			other: MustFunc("c", func(x, y int) bool { return true }, P("x"), D("y", 0)).Signature(),
			equal: false,
		},
		{
			name:  "variadic flag differs",
			other: MustFunc("c", func(x, y int, rest ...int) bool { return true }, P("x"), P("y")).Signature(),
			equal: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.equal, base.Equal(tc.other))
		})
	}
}

func TestSignatureEqual_IgnoresDefaultValues(t *testing.T) {
	a := MustFunc("h", func(x int) {}, D("x", 1)).Signature()
	b := MustFunc("c", func(x int) bool { return true }, D("x", 99)).Signature()
	assert.True(t, a.Equal(b), "defaulted-set is compared, default values are not")
}

func TestSignatureString(t *testing.T) {
	f := MustFunc("h", func(a int, b int, rest ...string) {}, P("a"), D("b", 1))
	assert.Equal(t, "(a, b=<default>, ...)", f.Signature().String())
}
