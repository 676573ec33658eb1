package describe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/fabula/engine/impact"
	"github.com/nathoo/fabula/engine/ref"
	"github.com/nathoo/fabula/engine/requirement"
)

func factsOf(m map[string]bool) requirement.Predicate {
	return requirement.Func(func(r ref.Reference) bool { return m[r.String()] })
}

func node(text, requires string, children ...*Node) *Node {
	n := &Node{Text: text, Children: children}
	if requires != "" {
		n.Requires = requirement.MustParse(requires)
	}
	return n
}

func elseNode(text, requires string) *Node {
	n := node(text, requires)
	n.Correlation = Else
	return n
}

func TestAccumulate_RootAlwaysAvailable(t *testing.T) {
	root := node("Root.", "never")
	root.Limit = 1
	res, err := Accumulate(root, factsOf(nil), true, true)
	require.NoError(t, err)
	assert.Equal(t, "[p]{0}Root.", res.Text)
	res, err = Accumulate(root, factsOf(nil), true, true)
	require.NoError(t, err)
	assert.Equal(t, "[p]{1}Root.", res.Text)
	assert.True(t, res.Fired)
}

func TestAccumulate_UnavailableNonRoot(t *testing.T) {
	n := node("Hidden.", "x")
	n.Impacts = impact.MustParseList("+seen")
	res, err := Accumulate(n, factsOf(nil), true, false)
	require.NoError(t, err)
	assert.Empty(t, res.Text)
	assert.Empty(t, res.Impacts)
	assert.False(t, res.Fired)
	assert.Equal(t, 0, n.Count())
}

func TestAccumulate_PreOrderAndImpacts(t *testing.T) {
	leaf := node("C", "")
	leaf.Impacts = impact.MustParseList("+c")
	mid := node("B", "", leaf)
	mid.Impacts = impact.MustParseList("+b")
	root := node("A", "", mid, node("D", ""))
	root.Impacts = impact.MustParseList("+a1,+a2")

	res, err := Accumulate(root, factsOf(nil), false, true)
	require.NoError(t, err)
	assert.Equal(t, "[p]{0}A[p]{0}B[p]{0}C[p]{0}D", res.Text)
	assert.Equal(t, "+a1,+a2,+b,+c", impact.Join(res.Impacts))
}

func TestAccumulate_EmptyTextNoMarker(t *testing.T) {
	root := node("", "", node("child", ""))
	res, err := Accumulate(root, factsOf(nil), false, true)
	require.NoError(t, err)
	assert.Equal(t, "[p]{0}child", res.Text)
}

func TestAccumulate_Correlation(t *testing.T) {
	build := func() *Node {
		return node("", "",
			node("X", "X"),
			elseNode("Y", "Y"),
			node("Z", "Z"),
		)
	}

	tests := []struct {
		name string
		has  map[string]bool
		want string
	}{
		{"first fails, else attempted and fires", map[string]bool{"Y": true, "Z": true}, "[p]{0}Y[p]{0}Z"},
		{"first fails, else attempted and fails", map[string]bool{"Z": true}, "[p]{0}Z"},
		{"first fires, else skipped regardless", map[string]bool{"X": true, "Y": true}, "[p]{0}X"},
		{"none child independent of else", map[string]bool{"X": true, "Y": true, "Z": true}, "[p]{0}X[p]{0}Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Accumulate(build(), factsOf(tt.has), false, true)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Text)
		})
	}
}

func TestAccumulate_ElseSkipsWithoutEvaluating(t *testing.T) {
	root := node("", "", node("X", ""), elseNode("Y", "boom"))
	var asked []string
	has := func(r ref.Reference) (bool, error) {
		asked = append(asked, r.String())
		return true, nil
	}
	res, err := Accumulate(root, has, false, true)
	require.NoError(t, err)
	assert.Equal(t, "[p]{0}X", res.Text)
	assert.Empty(t, asked)
}

// A sibling counts as fired when its own check passed, even if none of its
// descendants produced anything.
func TestAccumulate_FiredIsOwnAvailability(t *testing.T) {
	root := node("", "",
		node("", "", node("never shown", "nope")),
		elseNode("else", ""),
	)
	res, err := Accumulate(root, factsOf(nil), false, true)
	require.NoError(t, err)
	assert.Empty(t, res.Text)
}

func TestAccumulate_EvaluationLimit(t *testing.T) {
	n := node("once", "")
	n.Limit = 2

	for i := 0; i < 3; i++ {
		res, err := Accumulate(n, factsOf(nil), false, false)
		require.NoError(t, err)
		assert.True(t, res.Fired, "uncounted evaluation %d", i)
	}
	assert.Equal(t, 0, n.Count())

	res, _ := Accumulate(n, factsOf(nil), true, false)
	assert.True(t, res.Fired)
	res, _ = Accumulate(n, factsOf(nil), true, false)
	assert.True(t, res.Fired)
	assert.True(t, n.Exhausted())
	res, _ = Accumulate(n, factsOf(nil), true, false)
	assert.False(t, res.Fired)
	assert.Equal(t, 2, n.Count())
}

func TestAccumulate_PropagatesPredicateError(t *testing.T) {
	root := node("", "", node("x", "missing.key"))
	boom := assert.AnError
	_, err := Accumulate(root, func(ref.Reference) (bool, error) { return false, boom }, true, true)
	assert.ErrorIs(t, err, boom)
}

func TestAccumulate_FailedWalkKeepsCounts(t *testing.T) {
	child := node("ok", "")
	root := node("Poke.", "", child, node("boo", "ghost.here"))
	root.Limit = 1
	boom := assert.AnError
	has := func(r ref.Reference) (bool, error) {
		if r.Element == "ghost" {
			return false, boom
		}
		return true, nil
	}

	_, err := Accumulate(root, has, true, false)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, root.Count())
	assert.Equal(t, 0, child.Count())
	assert.False(t, root.Exhausted())

	res, err := Accumulate(root, factsOf(nil), true, false)
	require.NoError(t, err)
	assert.True(t, res.Fired)
	assert.Equal(t, 1, root.Count())
	assert.Equal(t, 1, child.Count())
}

func TestParseCorrelation(t *testing.T) {
	c, ok := ParseCorrelation("Else")
	assert.True(t, ok)
	assert.Equal(t, Else, c)
	c, ok = ParseCorrelation("")
	assert.True(t, ok)
	assert.Equal(t, None, c)
	_, ok = ParseCorrelation("otherwise")
	assert.False(t, ok)
}
