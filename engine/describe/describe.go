// Package describe walks trees of conditional description fragments,
// assembling player-visible text and collecting the impacts the fragments
// trigger. The walk never mutates world state: impacts are returned to the
// caller, which applies them once the text is final.
package describe

import (
	"strconv"
	"strings"

	"github.com/nathoo/fabula/engine/impact"
	"github.com/nathoo/fabula/engine/requirement"
)

// Correlation gates a fragment on the outcome of its preceding sibling.
type Correlation int

const (
	// None always attempts evaluation.
	None Correlation = iota
	// Else is skipped when the preceding sibling fired.
	Else
)

// ParseCorrelation maps the authored name to a Correlation. The empty
// string is None.
func ParseCorrelation(s string) (Correlation, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return None, true
	case "else":
		return Else, true
	default:
		return None, false
	}
}

func (c Correlation) String() string {
	if c == Else {
		return "else"
	}
	return "none"
}

// Node is a describable fragment: an entity's own description or one of
// its nested descriptors.
type Node struct {
	Text        string
	Requires    requirement.Expr // nil means always
	Impacts     []impact.Impact
	Children    []*Node
	Correlation Correlation
	Limit       int // 0 means unlimited

	count int
}

// Count returns how many counted evaluations the node has fired.
func (n *Node) Count() int { return n.count }

// Fire records one counted evaluation outside of a walk.
func (n *Node) Fire() { n.count++ }

// Exhausted reports whether the evaluation limit has been reached.
func (n *Node) Exhausted() bool {
	return n.Limit > 0 && n.count >= n.Limit
}

// Available reports whether the node may fire: its limit is not exhausted
// and its requirement holds.
func (n *Node) Available(has requirement.Predicate) (bool, error) {
	if n.Exhausted() {
		return false, nil
	}
	if n.Requires == nil {
		return true, nil
	}
	return requirement.Eval(n.Requires, has)
}

// Result is the outcome of one walk.
type Result struct {
	Text    string
	Impacts []impact.Impact
	Fired   bool // whether the root itself fired
}

// IterationMarker prefixes each fragment's text so the markup interpreter
// can make iteration-dependent choices.
func IterationMarker(count int) string {
	return "[p]{" + strconv.Itoa(count) + "}"
}

type walker struct {
	has   requirement.Predicate
	text  strings.Builder
	out   []impact.Impact
	fired []*Node
}

// Accumulate walks root depth-first. When root is true the top node is
// treated as a parentless entity and is always available. When count is
// true every fired node's evaluation count is incremented, once the walk
// has finished without error. A failed walk leaves every count unchanged.
func Accumulate(n *Node, has requirement.Predicate, count, root bool) (Result, error) {
	w := &walker{has: has}
	fired, err := w.visit(n, root)
	if err != nil {
		return Result{}, err
	}
	if count {
		for _, f := range w.fired {
			f.count++
		}
	}
	return Result{Text: w.text.String(), Impacts: w.out, Fired: fired}, nil
}

func (w *walker) visit(n *Node, root bool) (bool, error) {
	if !root {
		ok, err := n.Available(w.has)
		if err != nil || !ok {
			return false, err
		}
	}

	if n.Text != "" {
		w.text.WriteString(IterationMarker(n.count))
		w.text.WriteString(n.Text)
	}
	w.fired = append(w.fired, n)
	w.out = append(w.out, n.Impacts...)

	prevFired := false
	for _, child := range n.Children {
		if child.Correlation == Else && prevFired {
			prevFired = false
			continue
		}
		fired, err := w.visit(child, false)
		if err != nil {
			return false, err
		}
		prevFired = fired
	}
	return true, nil
}
