// Package ref parses dotted reference paths into a scope and a property.
// It is pure syntax; resolving a reference against state is the world's job.
package ref

import (
	"fmt"
	"strings"

	"github.com/nathoo/fabula/engine/errs"
)

// Scope selects where a reference's property is looked up.
type Scope int

const (
	// Local resolves against the acting entity.
	Local Scope = iota
	// Player resolves against the player's tags.
	Player
	// Inventory tests or edits the player's held items.
	Inventory
	// Global resolves against the entity registered under Element.
	Global
)

func (s Scope) String() string {
	switch s {
	case Local:
		return "local"
	case Player:
		return "player"
	case Inventory:
		return "inventory"
	case Global:
		return "global"
	default:
		return fmt.Sprintf("scope(%d)", int(s))
	}
}

const separator = "."

// Reference is an immutable parsed path.
type Reference struct {
	Scope    Scope
	Element  string // entity key, set only for Global
	Property string
}

// Parse splits s on its separator. No separator yields a Local reference;
// "player.X" and "inventory.X" (case-insensitive) select those scopes and
// anything else is a Global reference keyed by the element.
func Parse(s string) (Reference, error) {
	if s == "" {
		return Reference{}, fmt.Errorf("%w: empty reference", errs.ErrMalformedReference)
	}
	parts := strings.Split(s, separator)
	switch len(parts) {
	case 1:
		return Reference{Scope: Local, Property: s}, nil
	case 2:
	default:
		return Reference{}, fmt.Errorf("%w: %q has more than one %q", errs.ErrMalformedReference, s, separator)
	}

	element, property := parts[0], parts[1]
	if element == "" || property == "" {
		return Reference{}, fmt.Errorf("%w: %q has an empty segment", errs.ErrMalformedReference, s)
	}
	switch {
	case strings.EqualFold(element, "player"):
		return Reference{Scope: Player, Property: property}, nil
	case strings.EqualFold(element, "inventory"):
		return Reference{Scope: Inventory, Property: property}, nil
	default:
		return Reference{Scope: Global, Element: element, Property: property}, nil
	}
}

// MustParse is like Parse but panics on error. Intended for tests and
// static tables.
func MustParse(s string) Reference {
	r, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return r
}

// String renders the canonical path.
func (r Reference) String() string {
	switch r.Scope {
	case Player:
		return "player" + separator + r.Property
	case Inventory:
		return "inventory" + separator + r.Property
	case Global:
		return r.Element + separator + r.Property
	default:
		return r.Property
	}
}
