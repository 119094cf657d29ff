package model

import (
	"cmp"
	"iter"
	"maps"
	"slices"
)

// Set is an unordered collection of ordered values. Snapshot inventories
// are sets of SnapshotName, so set intersection plus Max gives the newest
// shared snapshot without any text processing.
type Set[T cmp.Ordered] map[T]struct{}

func NewSet[T cmp.Ordered](ks ...T) *Set[T] {
	set := &Set[T]{}
	for _, k := range ks {
		set.Add(k)
	}
	return set
}

func (set *Set[T]) All() iter.Seq[T] {
	return maps.Keys(*set)
}

// Sorted returns the members in ascending order.
func (set *Set[T]) Sorted() []T {
	ks := slices.Collect(maps.Keys(*set))
	slices.Sort(ks)
	return ks
}

// Max returns the greatest member, or false when the set is empty.
func (set *Set[T]) Max() (T, bool) {
	var max T
	if set.Size() == 0 {
		return max, false
	}
	first := true
	for k := range *set {
		if first || k > max {
			max = k
			first = false
		}
	}
	return max, true
}

func (set *Set[T]) Size() int {
	return len(*set)
}

func (set *Set[T]) Add(v T) {
	(*set)[v] = struct{}{}
}

func (set *Set[T]) Has(v T) bool {
	_, has := (*set)[v]
	return has
}

func (set *Set[T]) Del(v T) {
	delete(*set, v)
}

func (set *Set[T]) Union(other *Set[T]) *Set[T] {
	out := NewSet[T]()
	for k := range set.All() {
		out.Add(k)
	}
	for k := range other.All() {
		out.Add(k)
	}
	return out
}

func (set *Set[T]) Intersection(other *Set[T]) *Set[T] {
	out := NewSet[T]()
	for k := range set.All() {
		if other.Has(k) {
			out.Add(k)
		}
	}
	return out
}

func (set *Set[T]) Difference(other *Set[T]) *Set[T] {
	out := NewSet[T]()
	for k := range set.All() {
		if !other.Has(k) {
			out.Add(k)
		}
	}
	return out
}
