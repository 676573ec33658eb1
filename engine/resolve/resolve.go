// Package resolve maps names typed by the player to the entities currently
// on offer: the menu options and the held items.
package resolve

import (
	"fmt"
	"strings"

	"github.com/nathoo/fabula/engine/world"
)

// AmbiguityError indicates multiple entities matched a name.
type AmbiguityError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguityError) Error() string {
	names := strings.Join(e.Candidates, ", ")
	return fmt.Sprintf("which %s? (%s)", e.Name, names)
}

// NotFoundError indicates no entity matched a name.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("you don't see %q here", e.Name)
}

// Resolve finds the one candidate matching name. An exact key or title
// match wins over partial matches.
func Resolve(name string, candidates []*world.Entity) (*world.Entity, error) {
	nameLower := strings.ToLower(strings.TrimSpace(name))
	if nameLower == "" {
		return nil, &NotFoundError{Name: name}
	}

	var exact, partial []*world.Entity
	for _, c := range dedupe(candidates) {
		switch {
		case matchesExact(c, nameLower):
			exact = append(exact, c)
		case matchesWord(c, nameLower):
			partial = append(partial, c)
		}
	}

	matches := exact
	if len(matches) == 0 {
		matches = partial
	}
	switch len(matches) {
	case 0:
		return nil, &NotFoundError{Name: name}
	case 1:
		return matches[0], nil
	default:
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = m.Name()
		}
		return nil, &AmbiguityError{Name: name, Candidates: names}
	}
}

// matchesExact compares against the title and the key, also accepting
// "rusty key" for the key "rusty_key".
func matchesExact(e *world.Entity, nameLower string) bool {
	if strings.ToLower(e.Title) == nameLower {
		return true
	}
	if e.Key == "" {
		return false
	}
	keyLower := strings.ToLower(e.Key)
	return keyLower == nameLower || strings.ReplaceAll(nameLower, " ", "_") == keyLower
}

// matchesWord reports whether the query equals any word of the title,
// e.g. "key" matches "Rusty Key".
func matchesWord(e *world.Entity, nameLower string) bool {
	for _, word := range strings.Fields(strings.ToLower(e.Title)) {
		if word == nameLower {
			return true
		}
	}
	return false
}

// dedupe drops repeated entities, keeping the first occurrence.
func dedupe(in []*world.Entity) []*world.Entity {
	seen := make(map[*world.Entity]bool, len(in))
	out := make([]*world.Entity, 0, len(in))
	for _, e := range in {
		if e == nil || seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out
}
