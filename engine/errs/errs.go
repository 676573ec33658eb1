// Package errs defines the error taxonomy shared by the engine packages.
// Content compilation errors fail the whole load; evaluation errors abort
// the current evaluation. Callers match them with errors.Is.
package errs

import "errors"

var (
	// ErrMalformedReference is returned for a reference path with more than
	// one separator or an empty segment.
	ErrMalformedReference = errors.New("malformed reference")

	// ErrUnbalancedParens is returned when a requirement's parentheses do
	// not pair up.
	ErrUnbalancedParens = errors.New("unbalanced parentheses")

	// ErrInvalidExpression covers malformed impact directives and
	// requirements whose operands and operators do not fold into one tree.
	ErrInvalidExpression = errors.New("invalid expression")

	// ErrDuplicateKey is returned when two entities register the same key.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrUnknownReference is returned at evaluation time when a key does not
	// resolve to an entity of the expected kind.
	ErrUnknownReference = errors.New("unknown reference")

	// ErrInvalidEventTarget is returned when an event is routed to the
	// inventory scope.
	ErrInvalidEventTarget = errors.New("invalid event target")
)
