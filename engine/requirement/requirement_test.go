package requirement

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/fabula/engine/errs"
	"github.com/nathoo/fabula/engine/ref"
)

func facts(m map[string]bool) Predicate {
	return Func(func(r ref.Reference) bool { return m[r.String()] })
}

func eval(t *testing.T, src string, m map[string]bool) bool {
	t.Helper()
	e, err := Parse(src)
	require.NoError(t, err)
	v, err := Eval(e, facts(m))
	require.NoError(t, err)
	return v
}

func TestEval_Example(t *testing.T) {
	assert.True(t, eval(t, "a*b+!c", map[string]bool{"a": true, "b": false, "c": false}))
}

func TestEval_Precedence(t *testing.T) {
	tests := []struct {
		name string
		src  string
		has  map[string]bool
		want bool
	}{
		{"and binds tighter than or", "a+b*c", map[string]bool{"b": true, "c": true}, true},
		{"and fails", "a+b*c", map[string]bool{"b": true}, false},
		{"not binds tighter than and", "!a*b", map[string]bool{"b": true}, true},
		{"not applied to group", "!(a*b)", map[string]bool{"a": true, "b": true}, false},
		{"parens override", "(a+b)*c", map[string]bool{"a": true}, false},
		{"double not", "!!a", map[string]bool{"a": true}, true},
		{"whitespace ignored", " a *\tb ", map[string]bool{"a": true, "b": true}, true},
		{"scoped references", "player.awake*inventory.lamp+hall.lit", map[string]bool{"hall.lit": true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, eval(t, tt.src, tt.has))
		})
	}
}

// Every assignment over the atoms must agree with the formula written in Go.
func TestEval_AllAssignments(t *testing.T) {
	formulas := []struct {
		src string
		fn  func(a, b, c bool) bool
	}{
		{"a*b+!c", func(a, b, c bool) bool { return a && b || !c }},
		{"a+b*c", func(a, b, c bool) bool { return a || b && c }},
		{"(a+b)*c", func(a, b, c bool) bool { return (a || b) && c }},
		{"!(a+b)+c", func(a, b, c bool) bool { return !(a || b) || c }},
		{"a*!b*!c+a*b", func(a, b, c bool) bool { return a && !b && !c || a && b }},
		{"!a+!b+!c", func(a, b, c bool) bool { return !a || !b || !c }},
		{"((a))*(b+(c))", func(a, b, c bool) bool { return a && (b || c) }},
	}
	for _, f := range formulas {
		e, err := Parse(f.src)
		require.NoError(t, err, f.src)
		for mask := 0; mask < 8; mask++ {
			a, b, c := mask&1 != 0, mask&2 != 0, mask&4 != 0
			got, err := Eval(e, facts(map[string]bool{"a": a, "b": b, "c": c}))
			require.NoError(t, err)
			assert.Equal(t, f.fn(a, b, c), got, "%s with a=%v b=%v c=%v", f.src, a, b, c)
		}
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		src  string
		want error
	}{
		{"(a+b", errs.ErrUnbalancedParens},
		{"a+b)", errs.ErrUnbalancedParens},
		{")(", errs.ErrUnbalancedParens},
		{"a+", errs.ErrInvalidExpression},
		{"*a", errs.ErrInvalidExpression},
		{"a!b", errs.ErrInvalidExpression},
		{"!", errs.ErrInvalidExpression},
		{"", errs.ErrInvalidExpression},
		{"()", errs.ErrInvalidExpression},
		{"a.b.c", errs.ErrMalformedReference},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			e, err := Parse(tt.src)
			assert.Nil(t, e)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEval_NoShortCircuit(t *testing.T) {
	e := MustParse("a*b+c")
	var seen []string
	_, err := Eval(e, Func(func(r ref.Reference) bool {
		seen = append(seen, r.Property)
		return false
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, seen)
}

func TestEval_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Eval(MustParse("a+b"), func(r ref.Reference) (bool, error) {
		if r.Property == "b" {
			return false, boom
		}
		return true, nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestString(t *testing.T) {
	assert.Equal(t, "(a+(b*!c))", MustParse("a + b * !c").String())
	assert.Equal(t, "(player.x*hall.y)", MustParse("player.x*hall.y").String())
}

func TestRefs(t *testing.T) {
	got := Refs(MustParse("inventory.key*!(door.open+x)"))
	require.Len(t, got, 3)
	assert.Equal(t, ref.Inventory, got[0].Scope)
	assert.Equal(t, "door", got[1].Element)
	assert.Equal(t, ref.Local, got[2].Scope)
}
