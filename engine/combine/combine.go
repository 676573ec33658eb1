// Package combine resolves "use A with B" into the combination that
// handles it.
package combine

import (
	"github.com/nathoo/fabula/engine/world"
)

// Find looks up the combination a declares for b. If none is available it
// tries b's combinations for a, once. It returns nil, nil, nil when neither
// side handles the pair.
func Find(w *world.World, a, b *world.Entity) (*world.Combination, *world.Entity, error) {
	return find(w, a, b, true)
}

func find(w *world.World, a, b *world.Entity, primary bool) (*world.Combination, *world.Entity, error) {
	if a == nil || b == nil {
		return nil, nil, nil
	}
	for _, c := range a.Combinations {
		if c.With != b.Key {
			continue
		}
		ok, err := c.Desc.Available(w.Facts(a))
		if err != nil {
			return nil, nil, err
		}
		if ok {
			return c, a, nil
		}
	}
	if !primary {
		return nil, nil, nil
	}
	return find(w, b, a, false)
}
