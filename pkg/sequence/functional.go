// Package sequence wraps iter.Seq with a small set of chainable helpers.
package sequence

import (
	"iter"
	"slices"
)

// Iterator is a lazy, chainable view over a sequence of T. Stages run only
// when a terminal operation (Collect, Any, Count, Partition) pulls values.
type Iterator[T any] struct {
	seq iter.Seq[T]
}

// From iterates data in order.
func From[T any](data []T) *Iterator[T] {
	return &Iterator[T]{seq: slices.Values(data)}
}

func (i *Iterator[T]) Seq() iter.Seq[T] { return i.seq }

// Collect drains the iterator. An empty iterator yields nil.
func (i *Iterator[T]) Collect() []T {
	return slices.AppendSeq([]T(nil), i.seq)
}

// Sort materializes the iterator and orders it by cmp, keeping the relative
// order of equal elements.
func (i *Iterator[T]) Sort(cmp func(a, b T) int) *Iterator[T] {
	data := i.Collect()
	slices.SortStableFunc(data, cmp)
	return From(data)
}

func (i *Iterator[T]) Filter(keep func(T) bool) *Iterator[T] {
	return &Iterator[T]{
		seq: func(yield func(T) bool) {
			for v := range i.seq {
				if keep(v) && !yield(v) {
					return
				}
			}
		},
	}
}

// Any stops at the first match.
func (i *Iterator[T]) Any(match func(T) bool) bool {
	for v := range i.seq {
		if match(v) {
			return true
		}
	}
	return false
}

// Partition splits the iterator into matching and remaining elements,
// preserving order on both sides.
func (i *Iterator[T]) Partition(match func(T) bool) (matched, rest []T) {
	for v := range i.seq {
		if match(v) {
			matched = append(matched, v)
		} else {
			rest = append(rest, v)
		}
	}
	return matched, rest
}

func (i *Iterator[T]) Count() int {
	n := 0
	for range i.seq {
		n++
	}
	return n
}

// ToSet collects the distinct elements of it.
func ToSet[T comparable](it *Iterator[T]) map[T]struct{} {
	set := make(map[T]struct{})
	for v := range it.seq {
		set[v] = struct{}{}
	}
	return set
}
