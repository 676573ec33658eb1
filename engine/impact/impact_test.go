package impact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/fabula/engine/errs"
	"github.com/nathoo/fabula/engine/ref"
)

func TestParseList(t *testing.T) {
	got, err := ParseList(" +lit , -player.awake,!hall.open, >cellar ,#ring, +inventory.lamp")
	require.NoError(t, err)
	assert.Equal(t, []Impact{
		Manipulate{Ref: ref.Reference{Scope: ref.Local, Property: "lit"}, Op: Add},
		Manipulate{Ref: ref.Reference{Scope: ref.Player, Property: "awake"}, Op: Remove},
		Manipulate{Ref: ref.Reference{Scope: ref.Global, Element: "hall", Property: "open"}, Op: Invert},
		Focus{Target: "cellar"},
		Event{Ref: ref.Reference{Scope: ref.Local, Property: "ring"}},
		Manipulate{Ref: ref.Reference{Scope: ref.Inventory, Property: "lamp"}, Op: Add},
	}, got)
}

func TestParseList_Blank(t *testing.T) {
	got, err := ParseList("   ")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		in   string
		want error
	}{
		{"+", errs.ErrInvalidExpression},
		{"", errs.ErrInvalidExpression},
		{"x", errs.ErrInvalidExpression},
		{"?lit", errs.ErrInvalidExpression},
		{"lit", errs.ErrInvalidExpression},
		{">hall.lit", errs.ErrInvalidExpression},
		{"+a.b.c", errs.ErrMalformedReference},
		{"#a.b.c", errs.ErrMalformedReference},
	}
	for _, tt := range tests {
		_, err := Parse(tt.in)
		assert.ErrorIs(t, err, tt.want, tt.in)
	}
}

func TestParseList_EmptyEntry(t *testing.T) {
	_, err := ParseList("+a,,+b")
	assert.ErrorIs(t, err, errs.ErrInvalidExpression)
}

func TestJoin(t *testing.T) {
	src := "+lit,-player.awake,!hall.open,>cellar,#ring"
	assert.Equal(t, src, Join(MustParseList(src)))
}
