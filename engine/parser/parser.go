// Package parser converts command strings into Intent structs.
// Intentionally dumb: no NLP, just pattern matching.
package parser

import (
	"strconv"
	"strings"

	"github.com/nathoo/fabula/types"
)

var verbAliases = map[string]string{
	"l":       "look",
	"x":       "look",
	"examine": "look",
	"b":       "back",
	"return":  "back",
	"up":      "back",
	"leave":   "back",
	"i":       "inventory",
	"inv":     "inventory",
	"g":       "again",
	"combine": "use",
	"apply":   "use",
	"choose":  "select",
	"pick":    "select",
	"go":      "select",
}

var prepositions = map[string]bool{
	"on": true, "with": true, "and": true,
	"to": true, "in": true, "at": true,
}

var articles = map[string]bool{
	"the": true, "a": true, "an": true,
}

// Parse converts a raw command string into an Intent.
func Parse(input string) types.Intent {
	input = strings.TrimSpace(input)
	if input == "" {
		return types.Intent{}
	}

	words := strings.Fields(strings.ToLower(input))

	// Bare number: menu selection.
	if len(words) == 1 {
		if n, ok := choice(words[0]); ok {
			return types.Intent{Verb: "select", Choice: n}
		}
	}

	if alias, ok := verbAliases[words[0]]; ok {
		words[0] = alias
	}

	verb := words[0]
	rest := stripArticles(words[1:])

	if verb == "select" {
		if len(rest) == 1 {
			if n, ok := choice(rest[0]); ok {
				return types.Intent{Verb: verb, Choice: n}
			}
		}
		return types.Intent{Verb: verb, Object: strings.Join(rest, " ")}
	}

	object, target := splitOnPreposition(rest)
	return types.Intent{
		Verb:   verb,
		Object: object,
		Target: target,
	}
}

func choice(w string) (int, bool) {
	n, err := strconv.Atoi(w)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// stripArticles removes articles ("the", "a", "an") from the word list.
func stripArticles(words []string) []string {
	result := make([]string, 0, len(words))
	for _, w := range words {
		if !articles[w] {
			result = append(result, w)
		}
	}
	return result
}

// splitOnPreposition splits words on the first preposition.
// Words before the preposition become the object, words after become the target.
// If no preposition is found, all words become the object.
func splitOnPreposition(words []string) (object, target string) {
	for i, w := range words {
		if prepositions[w] {
			object = strings.Join(words[:i], " ")
			target = strings.Join(words[i+1:], " ")
			return object, target
		}
	}
	return strings.Join(words, " "), ""
}
