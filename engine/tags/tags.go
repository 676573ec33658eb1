// Package tags implements the ordered set of facts carried by every
// taggable entity and by the player.
package tags

// Set is an insertion-ordered set of tags. The zero value is ready to use.
type Set struct {
	order []string
	index map[string]int
}

// New creates a set holding the given tags, duplicates dropped.
func New(tags ...string) *Set {
	s := &Set{}
	for _, t := range tags {
		s.Add(t)
	}
	return s
}

// Has reports whether tag is present.
func (s *Set) Has(tag string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[tag]
	return ok
}

// Add inserts tag at the end. Returns false if it was already present.
func (s *Set) Add(tag string) bool {
	if s.Has(tag) {
		return false
	}
	if s.index == nil {
		s.index = map[string]int{}
	}
	s.index[tag] = len(s.order)
	s.order = append(s.order, tag)
	return true
}

// Remove deletes tag. Returns false if it was not present.
func (s *Set) Remove(tag string) bool {
	i, ok := s.index[tag]
	if !ok {
		return false
	}
	s.order = append(s.order[:i], s.order[i+1:]...)
	delete(s.index, tag)
	for j := i; j < len(s.order); j++ {
		s.index[s.order[j]] = j
	}
	return true
}

// Invert toggles tag and returns whether it is present afterwards.
func (s *Set) Invert(tag string) bool {
	if s.Remove(tag) {
		return false
	}
	s.Add(tag)
	return true
}

// List returns a copy of the tags in insertion order.
func (s *Set) List() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of tags.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}
