// Package filter contains typed lookup criteria for feed entities.
//
// A criterion is either unset (no constraint) or a set of accepted values.
// A set criterion with no values matches nothing. Criteria of one entity are
// combined with AND.
package filter

// Set is an optional set of accepted values. The zero Set is unset.
type Set[T comparable] struct {
	values []T
	set    bool
}

// In returns a Set accepting exactly the given values. In() with no values
// is set but empty.
func In[T comparable](values ...T) Set[T] {
	out := make([]T, len(values))
	copy(out, values)
	return Set[T]{values: out, set: true}
}

// IsSet reports whether the criterion constrains the result.
func (s Set[T]) IsSet() bool {
	return s.set
}

// Empty reports whether the criterion is set and accepts no value.
func (s Set[T]) Empty() bool {
	return s.set && len(s.values) == 0
}

// Values returns a copy of the accepted values.
func (s Set[T]) Values() []T {
	out := make([]T, len(s.values))
	copy(out, s.values)
	return out
}

// Matches reports whether v satisfies the criterion.
func (s Set[T]) Matches(v T) bool {
	if !s.set {
		return true
	}
	for _, candidate := range s.values {
		if candidate == v {
			return true
		}
	}
	return false
}

// MatchesPtr is Matches for nullable columns: a nil value never satisfies a
// set criterion, the same way NULL never satisfies SQL IN.
func MatchesPtr[T comparable](s Set[T], v *T) bool {
	if !s.set {
		return true
	}
	if v == nil {
		return false
	}
	return s.Matches(*v)
}

// Value is an optional single value. The zero Value is unset.
type Value[T comparable] struct {
	v   T
	set bool
}

// Eq returns a set Value.
func Eq[T comparable](v T) Value[T] {
	return Value[T]{v: v, set: true}
}

// Get returns the value and whether it is set.
func (v Value[T]) Get() (T, bool) {
	return v.v, v.set
}

// IsSet reports whether the value is present.
func (v Value[T]) IsSet() bool {
	return v.set
}

// AsSet wraps a set value into a singleton Set; an unset Value stays unset.
func (v Value[T]) AsSet() Set[T] {
	if !v.set {
		return Set[T]{}
	}
	return In(v.v)
}

// Term is one set criterion bound to its storage column.
type Term struct {
	Column string
	Values []any
}

func appendTerm[T comparable](terms []Term, column string, s Set[T]) []Term {
	if !s.IsSet() {
		return terms
	}
	values := make([]any, 0, len(s.values))
	for _, v := range s.values {
		values = append(values, v)
	}
	return append(terms, Term{Column: column, Values: values})
}
