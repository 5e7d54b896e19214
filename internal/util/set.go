package util

// Set holds unique comparable values
type Set[K comparable] map[K]struct{}

// SetOf builds a Set from the given values, deduplicating as it goes
func SetOf[K comparable](elements ...K) Set[K] {
	s := make(Set[K], len(elements))
	for _, elem := range elements {
		s[elem] = struct{}{}
	}
	return s
}

// Add inserts key into the set
func (s Set[K]) Add(key K) {
	s[key] = struct{}{}
}

// Remove deletes key from the set, ignoring absent keys
func (s Set[K]) Remove(key K) {
	delete(s, key)
}

// Contains reports whether key is present
func (s Set[K]) Contains(key K) bool {
	_, ok := s[key]
	return ok
}

// Len returns the number of values held
func (s Set[K]) Len() int {
	return len(s)
}

// IsEmpty reports whether the set holds nothing
func (s Set[K]) IsEmpty() bool {
	return len(s) == 0
}
