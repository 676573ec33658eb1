// Package types defines the raw world model produced by the loader.
// Requirement, impact and correlation fields are still source strings here;
// the world compiles them once when it is built.
// This package contains only type definitions.
package types

// GameDef holds game metadata.
type GameDef struct {
	Title   string `yaml:"title"`
	Author  string `yaml:"author"`
	Version string `yaml:"version"`
	Start   string `yaml:"start"` // key of the initially focused location
	Intro   string `yaml:"intro"`
}

// DescriptorDef is a conditional description fragment, nested arbitrarily.
type DescriptorDef struct {
	Text        string          `yaml:"text"`
	Requires    string          `yaml:"requires"`
	Impact      string          `yaml:"impact"`
	Limit       int             `yaml:"limit"`
	Correlation string          `yaml:"correlation"` // "" / "none" / "else"
	Descriptors []DescriptorDef `yaml:"descriptors"`
}

// HandlerDef reacts to a named event raised on its owner.
type HandlerDef struct {
	Event    string `yaml:"event"`
	Requires string `yaml:"requires"`
	Impact   string `yaml:"impact"`
}

// CombinationDef declares what happens when the owner is used with the
// entity registered under With.
type CombinationDef struct {
	With        string          `yaml:"with"`
	Text        string          `yaml:"text"`
	Requires    string          `yaml:"requires"`
	Impact      string          `yaml:"impact"`
	Limit       int             `yaml:"limit"`
	Descriptors []DescriptorDef `yaml:"descriptors"`
}

// EntityDef holds the fields shared by locations, interactions and items.
type EntityDef struct {
	Key          string           `yaml:"key"`
	Title        string           `yaml:"title"`
	Description  string           `yaml:"description"`
	Requires     string           `yaml:"requires"`
	Impact       string           `yaml:"impact"`
	Limit        int              `yaml:"limit"`
	Tags         []string         `yaml:"tags"`
	Descriptors  []DescriptorDef  `yaml:"descriptors"`
	Combinations []CombinationDef `yaml:"combinations"`
	Handlers     []HandlerDef     `yaml:"on"`
}

// LocationDef is a node of the location graph. Parent is the key of the
// enclosing location, empty for top-level locations.
type LocationDef struct {
	EntityDef    `yaml:",inline"`
	Parent       string      `yaml:"parent"`
	Interactions []EntityDef `yaml:"interactions"`
}

// PlayerDef holds the player's starting state.
type PlayerDef struct {
	Tags     []string     `yaml:"tags"`
	Items    []string     `yaml:"items"`
	Handlers []HandlerDef `yaml:"on"`
}

// Defs is the complete world model, in declaration order.
type Defs struct {
	Game      GameDef       `yaml:"game"`
	Player    PlayerDef     `yaml:"player"`
	Locations []LocationDef `yaml:"locations"`
	Items     []EntityDef   `yaml:"items"`
}

// Intent is a parsed player command.
type Intent struct {
	Verb   string // "select", "look", "back", "inventory", "use", "again", or the raw word
	Choice int    // 1-based option number for "select"
	Object string
	Target string
}

// Result is the output of a single game step.
type Result struct {
	Output  []string // markup-laden text, one entry per paragraph
	Menu    []string // numbered option titles after the step
	Impacts []string // applied impacts, in directive form
	Events  []string // emitted events, rendered
	Err     error    // evaluation-time authoring error, if any
}
