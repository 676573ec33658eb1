// Package requirement implements the availability expression language:
// references combined with ! (not), * (and), + (or) and parentheses.
// Expressions are compiled once at load time and evaluated on demand.
package requirement

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/nathoo/fabula/engine/errs"
	"github.com/nathoo/fabula/engine/ref"
)

// Expr is a compiled expression node. The set of node types is closed:
// Var, Not, And, Or.
type Expr interface {
	isExpr()
	String() string
}

// Var tests a single reference.
type Var struct{ Ref ref.Reference }

// Not negates its operand.
type Not struct{ X Expr }

// And is true when both operands are.
type And struct{ L, R Expr }

// Or is true when either operand is.
type Or struct{ L, R Expr }

func (Var) isExpr() {}
func (Not) isExpr() {}
func (And) isExpr() {}
func (Or) isExpr()  {}

func (v Var) String() string { return v.Ref.String() }
func (n Not) String() string { return "!" + n.X.String() }
func (a And) String() string { return "(" + a.L.String() + "*" + a.R.String() + ")" }
func (o Or) String() string  { return "(" + o.L.String() + "+" + o.R.String() + ")" }

// Predicate reports whether a reference holds. It may fail, e.g. when a
// global key does not resolve.
type Predicate func(ref.Reference) (bool, error)

// Func adapts an infallible predicate.
func Func(has func(ref.Reference) bool) Predicate {
	return func(r ref.Reference) (bool, error) { return has(r), nil }
}

// Eval evaluates e against has. Both operands of And/Or are always
// evaluated; the first error aborts evaluation.
func Eval(e Expr, has Predicate) (bool, error) {
	switch n := e.(type) {
	case Var:
		return has(n.Ref)
	case Not:
		v, err := Eval(n.X, has)
		return !v, err
	case And:
		l, err := Eval(n.L, has)
		if err != nil {
			return false, err
		}
		r, err := Eval(n.R, has)
		if err != nil {
			return false, err
		}
		return l && r, nil
	case Or:
		l, err := Eval(n.L, has)
		if err != nil {
			return false, err
		}
		r, err := Eval(n.R, has)
		if err != nil {
			return false, err
		}
		return l || r, nil
	default:
		panic(fmt.Sprintf("requirement: unknown node %T", e))
	}
}

const (
	opNot   = "!"
	opAnd   = "*"
	opOr    = "+"
	opOpen  = "("
	opClose = ")"
)

func isOperator(r rune) bool {
	switch r {
	case '!', '*', '+', '(', ')':
		return true
	}
	return false
}

// token is either an operator or an atom (reference text).
type token struct {
	text string
	atom bool
}

// tokenize strips whitespace and splits s into operators and atoms.
func tokenize(s string) []token {
	var toks []token
	var atom strings.Builder
	flush := func() {
		if atom.Len() > 0 {
			toks = append(toks, token{text: atom.String(), atom: true})
			atom.Reset()
		}
	}
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			continue
		case isOperator(r):
			flush()
			toks = append(toks, token{text: string(r)})
		default:
			atom.WriteRune(r)
		}
	}
	flush()
	return toks
}

// toPostfix reorders tokens with a shunting-yard pass.
func toPostfix(toks []token) ([]token, error) {
	var out, stack []token
	top := func() string {
		if len(stack) == 0 {
			return ""
		}
		return stack[len(stack)-1].text
	}
	pop := func() {
		out = append(out, stack[len(stack)-1])
		stack = stack[:len(stack)-1]
	}

	for _, t := range toks {
		if t.atom {
			out = append(out, t)
			continue
		}
		switch t.text {
		case opNot, opOpen:
			stack = append(stack, t)
		case opAnd:
			for top() == opAnd || top() == opNot {
				pop()
			}
			stack = append(stack, t)
		case opOr:
			for top() == opAnd || top() == opNot || top() == opOr {
				pop()
			}
			stack = append(stack, t)
		case opClose:
			for top() != opOpen {
				if len(stack) == 0 {
					return nil, fmt.Errorf("%w: unmatched %q", errs.ErrUnbalancedParens, opClose)
				}
				pop()
			}
			stack = stack[:len(stack)-1]
		}
	}
	for len(stack) > 0 {
		if top() == opOpen {
			return nil, fmt.Errorf("%w: unmatched %q", errs.ErrUnbalancedParens, opOpen)
		}
		pop()
	}
	return out, nil
}

// fold builds the expression tree from a postfix stream.
func fold(postfix []token) (Expr, error) {
	var stack []Expr
	popN := func(op string, n int) ([]Expr, error) {
		if len(stack) < n {
			return nil, fmt.Errorf("%w: %q is missing an operand", errs.ErrInvalidExpression, op)
		}
		args := stack[len(stack)-n:]
		stack = stack[:len(stack)-n]
		return args, nil
	}

	for _, t := range postfix {
		if t.atom {
			r, err := ref.Parse(t.text)
			if err != nil {
				return nil, err
			}
			stack = append(stack, Var{Ref: r})
			continue
		}
		switch t.text {
		case opNot:
			args, err := popN(t.text, 1)
			if err != nil {
				return nil, err
			}
			stack = append(stack, Not{X: args[0]})
		case opAnd:
			args, err := popN(t.text, 2)
			if err != nil {
				return nil, err
			}
			stack = append(stack, And{L: args[0], R: args[1]})
		case opOr:
			args, err := popN(t.text, 2)
			if err != nil {
				return nil, err
			}
			stack = append(stack, Or{L: args[0], R: args[1]})
		}
	}
	if len(stack) != 1 {
		return nil, fmt.Errorf("%w: %d operands left after folding", errs.ErrInvalidExpression, len(stack))
	}
	return stack[0], nil
}

// Parse compiles s. An empty or whitespace-only string is invalid; callers
// treat a missing requirement as "always available" before calling Parse.
func Parse(s string) (Expr, error) {
	postfix, err := toPostfix(tokenize(s))
	if err != nil {
		return nil, fmt.Errorf("requirement %q: %w", s, err)
	}
	e, err := fold(postfix)
	if err != nil {
		return nil, fmt.Errorf("requirement %q: %w", s, err)
	}
	return e, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Expr {
	e, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return e
}

// Refs returns every reference in e, left to right.
func Refs(e Expr) []ref.Reference {
	switch n := e.(type) {
	case Var:
		return []ref.Reference{n.Ref}
	case Not:
		return Refs(n.X)
	case And:
		return append(Refs(n.L), Refs(n.R)...)
	case Or:
		return append(Refs(n.L), Refs(n.R)...)
	default:
		return nil
	}
}
