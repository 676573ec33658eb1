package loader

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/nathoo/fabula/engine/impact"
	"github.com/nathoo/fabula/engine/ref"
	"github.com/nathoo/fabula/engine/requirement"
	"github.com/nathoo/fabula/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

func (e *ValidationError) errorf(format string, args ...any) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

func (e *ValidationError) warnf(format string, args ...any) {
	e.Warnings = append(e.Warnings, fmt.Sprintf(format, args...))
}

// validate checks defs for structural integrity. Warnings are logged; any
// error fails the load.
func validate(defs *types.Defs, log *slog.Logger) error {
	ve := check(defs)
	for _, w := range ve.Warnings {
		log.Warn("content warning", "warning", w)
	}
	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

// check runs every structural check and returns what it found.
func check(defs *types.Defs) *ValidationError {
	ve := &ValidationError{}

	if defs.Game.Title == "" {
		ve.errorf("Game.Title is required")
	}

	// Keys unique across locations and items.
	kinds := map[string]string{}
	register := func(kind, key string) {
		if key == "" {
			ve.errorf("%s without a key", kind)
			return
		}
		if prev, dup := kinds[key]; dup {
			ve.errorf("duplicate key %q (%s and %s)", key, prev, kind)
			return
		}
		kinds[key] = kind
	}
	parents := map[string]string{}
	for _, loc := range defs.Locations {
		register("location", loc.Key)
		if loc.Key != "" {
			parents[loc.Key] = loc.Parent
		}
	}
	for _, item := range defs.Items {
		register("item", item.Key)
	}
	for _, loc := range defs.Locations {
		for _, in := range loc.Interactions {
			if in.Key != "" {
				register("interaction", in.Key)
			}
		}
	}

	// Start location.
	if defs.Game.Start == "" {
		ve.errorf("Game.Start is required")
	} else if kinds[defs.Game.Start] != "location" {
		ve.errorf("start location %q not found in defined locations", defs.Game.Start)
	}

	// Parent links.
	for _, loc := range defs.Locations {
		if loc.Parent == "" {
			continue
		}
		if kinds[loc.Parent] != "location" {
			ve.errorf("location %q parent %q is not a defined location", loc.Key, loc.Parent)
		}
	}
	for _, key := range cycles(defs.Locations, parents) {
		ve.errorf("location %q is part of a parent cycle", key)
	}

	// Player.
	for _, item := range defs.Player.Items {
		if kinds[item] != "item" {
			ve.errorf("player item %q is not a defined item", item)
		}
	}
	checkHandlers(ve, "player", defs.Player.Handlers)

	// Per-entity content.
	for _, loc := range defs.Locations {
		checkEntity(ve, kinds, "location "+quote(loc.Key), loc.EntityDef)
		for i, in := range loc.Interactions {
			checkEntity(ve, kinds, fmt.Sprintf("location %q interaction %d", loc.Key, i+1), in)
		}
	}
	for _, item := range defs.Items {
		checkEntity(ve, kinds, "item "+quote(item.Key), item)
	}

	// Warnings: locations the player can never see.
	for _, key := range unreachable(defs, parents) {
		ve.warnf("location %q is unreachable from the start location", key)
	}

	return ve
}

func checkEntity(ve *ValidationError, kinds map[string]string, where string, e types.EntityDef) {
	checkRefs(ve, kinds, where, e.Requires, e.Impact)
	checkDescriptors(ve, kinds, where, e.Descriptors)
	for _, c := range e.Combinations {
		at := fmt.Sprintf("%s combination with %q", where, c.With)
		if c.With == "" {
			ve.errorf("%s combination has no target", where)
		} else if _, ok := kinds[c.With]; !ok {
			ve.errorf("%s names an undefined key", at)
		}
		checkRefs(ve, kinds, at, c.Requires, c.Impact)
		checkDescriptors(ve, kinds, at, c.Descriptors)
	}
	checkHandlers(ve, where, e.Handlers)
	for _, h := range e.Handlers {
		checkRefs(ve, kinds, where+" on "+quote(h.Event), h.Requires, h.Impact)
	}
}

func checkDescriptors(ve *ValidationError, kinds map[string]string, where string, ds []types.DescriptorDef) {
	for _, d := range ds {
		checkRefs(ve, kinds, where, d.Requires, d.Impact)
		checkDescriptors(ve, kinds, where, d.Descriptors)
	}
}

func checkHandlers(ve *ValidationError, where string, hs []types.HandlerDef) {
	for i, h := range hs {
		if h.Event == "" {
			ve.errorf("%s handler %d has no event name", where, i+1)
		}
	}
}

// checkRefs warns about global references and focus targets that name no
// defined key. Syntax errors are left to the world build, which reports
// them with the sentinel errors.
func checkRefs(ve *ValidationError, kinds map[string]string, where, requires, impacts string) {
	var refs []ref.Reference
	if requires != "" {
		if e, err := requirement.Parse(requires); err == nil {
			refs = append(refs, requirement.Refs(e)...)
		}
	}
	imps, _ := impact.ParseList(impacts)
	for _, imp := range imps {
		switch im := imp.(type) {
		case impact.Manipulate:
			refs = append(refs, im.Ref)
		case impact.Event:
			refs = append(refs, im.Ref)
		case impact.Focus:
			if kinds[im.Target] != "location" {
				ve.warnf("%s focuses %q, which is not a defined location", where, im.Target)
			}
		}
	}
	for _, r := range refs {
		switch r.Scope {
		case ref.Global:
			if _, ok := kinds[r.Element]; !ok {
				ve.warnf("%s references undefined key %q", where, r.Element)
			}
		case ref.Inventory:
			if kinds[r.Property] != "item" {
				ve.warnf("%s references %q, which is not a defined item", where, r.String())
			}
		}
	}
}

// cycles returns the locations whose parent chain loops, in declaration
// order.
func cycles(locs []types.LocationDef, parents map[string]string) []string {
	var out []string
	for _, loc := range locs {
		seen := map[string]bool{}
		for key := loc.Key; key != ""; key = parents[key] {
			if seen[key] {
				if key == loc.Key {
					out = append(out, loc.Key)
				}
				break
			}
			seen[key] = true
		}
	}
	return out
}

// unreachable returns the locations outside every tree the player can
// enter: the start location's tree and the trees of focus targets.
func unreachable(defs *types.Defs, parents map[string]string) []string {
	root := func(key string) string {
		seen := map[string]bool{}
		for parents[key] != "" && !seen[key] {
			seen[key] = true
			key = parents[key]
		}
		return key
	}

	roots := map[string]bool{}
	if defs.Game.Start != "" {
		roots[root(defs.Game.Start)] = true
	}
	for _, target := range focusTargets(defs) {
		if _, ok := parents[target]; ok {
			roots[root(target)] = true
		}
	}

	var out []string
	for _, loc := range defs.Locations {
		if loc.Key != "" && !roots[root(loc.Key)] {
			out = append(out, loc.Key)
		}
	}
	return out
}

// focusTargets collects the targets of every focus directive in defs.
func focusTargets(defs *types.Defs) []string {
	var out []string
	add := func(impacts string) {
		imps, _ := impact.ParseList(impacts)
		for _, imp := range imps {
			if f, ok := imp.(impact.Focus); ok {
				out = append(out, f.Target)
			}
		}
	}
	var descs func([]types.DescriptorDef)
	descs = func(ds []types.DescriptorDef) {
		for _, d := range ds {
			add(d.Impact)
			descs(d.Descriptors)
		}
	}
	entity := func(e types.EntityDef) {
		add(e.Impact)
		descs(e.Descriptors)
		for _, c := range e.Combinations {
			add(c.Impact)
			descs(c.Descriptors)
		}
		for _, h := range e.Handlers {
			add(h.Impact)
		}
	}

	for _, loc := range defs.Locations {
		entity(loc.EntityDef)
		for _, in := range loc.Interactions {
			entity(in)
		}
	}
	for _, item := range defs.Items {
		entity(item)
	}
	for _, h := range defs.Player.Handlers {
		add(h.Impact)
	}
	return out
}

func quote(s string) string {
	return fmt.Sprintf("%q", s)
}
