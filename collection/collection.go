// Package collection provides the ordered container returned by multi-instance
// fixture builds.
//
// A Collection addresses its elements by logical offset. Offsets are not
// guaranteed to be contiguous: assigning past the end leaves gaps, and Unset
// removes an element without shifting its neighbours. Iteration visits the
// present elements in offset order.
//
// Every element must be a structured value (see contract.IsStructured).
// Collections are not safe for concurrent mutation.
package collection

import (
	"fmt"
	"iter"
	"math/rand/v2"
	"slices"

	"github.com/tailored-agentic-units/fixtures/contract"
)

// NoOffset passed to Set appends the value, matching Add.
const NoOffset = -1

type slot[T any] struct {
	value   T
	present bool
}

// Collection is an ordered, offset-addressed sequence of fixture instances.
// The zero value is an empty collection ready for use.
type Collection[T any] struct {
	slots []slot[T]
	count int
	rng   *rand.Rand
}

// New creates an empty Collection.
func New[T any](opts ...Option) *Collection[T] {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Collection[T]{rng: cfg.rng}
}

// Of creates a Collection holding values in the given order.
func Of[T any](values ...T) (*Collection[T], error) {
	c := New[T]()
	if err := c.Add(values...); err != nil {
		return nil, err
	}
	return c, nil
}

// Count returns the number of present elements.
func (c *Collection[T]) Count() int {
	return c.count
}

// Len returns the logical length: one past the highest occupied offset.
// Len equals Count unless the collection has gaps.
func (c *Collection[T]) Len() int {
	return len(c.slots)
}

// Has reports whether an element is present at offset.
func (c *Collection[T]) Has(offset int) bool {
	return offset >= 0 && offset < len(c.slots) && c.slots[offset].present
}

// Get returns the element at offset.
func (c *Collection[T]) Get(offset int) (T, error) {
	if !c.Has(offset) {
		var zero T
		return zero, fmt.Errorf("%w: %d", ErrOffsetNotFound, offset)
	}
	return c.slots[offset].value, nil
}

// Set places value at offset.
//
// NoOffset appends. An offset within [0, Len()] inserts before the element
// currently at that offset, shifting it and everything after it one place
// right. An offset beyond Len() assigns directly, leaving a gap between the
// old end and offset.
func (c *Collection[T]) Set(offset int, value T) error {
	if !contract.IsStructured(value) {
		return fmt.Errorf("%w: %T", ErrInvalidValue, value)
	}

	switch {
	case offset == NoOffset:
		c.push(value)
		return nil
	case offset < 0:
		return fmt.Errorf("%w: %d", ErrInvalidOffset, offset)
	case offset <= len(c.slots):
		c.slots = slices.Insert(c.slots, offset, slot[T]{value: value, present: true})
	default:
		gap := offset - len(c.slots)
		c.slots = append(c.slots, make([]slot[T], gap)...)
		c.slots = append(c.slots, slot[T]{value: value, present: true})
	}

	c.count++
	return nil
}

// Unset removes the element at offset, leaving a gap. Absent offsets are
// ignored. Gaps left at the end are trimmed so Len tracks the last element.
func (c *Collection[T]) Unset(offset int) {
	if !c.Has(offset) {
		return
	}

	c.slots[offset] = slot[T]{}
	c.count--

	end := len(c.slots)
	for end > 0 && !c.slots[end-1].present {
		end--
	}
	clear(c.slots[end:])
	c.slots = c.slots[:end]
}

// Add appends values in order. Either every value is added or, when one is
// not structured, none are.
func (c *Collection[T]) Add(values ...T) error {
	for i, v := range values {
		if !contract.IsStructured(v) {
			return fmt.Errorf("%w: argument %d is %T", ErrInvalidValue, i, v)
		}
	}
	for _, v := range values {
		c.push(v)
	}
	return nil
}

// MustAdd is like Add but panics on error. It returns c for chaining.
func (c *Collection[T]) MustAdd(values ...T) *Collection[T] {
	if err := c.Add(values...); err != nil {
		panic(err)
	}
	return c
}

func (c *Collection[T]) push(v T) {
	c.slots = append(c.slots, slot[T]{value: v, present: true})
	c.count++
}

// Merge returns a new Collection holding c's elements followed by other's.
// Neither input is modified. The result shares c's random source.
func (c *Collection[T]) Merge(other *Collection[T]) *Collection[T] {
	merged := &Collection[T]{rng: c.rng}
	for v := range c.Values() {
		merged.push(v)
	}
	if other == nil {
		return merged
	}
	for v := range other.Values() {
		merged.push(v)
	}
	return merged
}

// Apply calls fn once per element in iteration order and returns c.
func (c *Collection[T]) Apply(fn func(T)) *Collection[T] {
	for v := range c.Values() {
		fn(v)
	}
	return c
}

// Filter returns a new Collection of the elements satisfying pred, in order.
func (c *Collection[T]) Filter(pred func(T) bool) *Collection[T] {
	filtered := &Collection[T]{rng: c.rng}
	for v := range c.Values() {
		if pred(v) {
			filtered.push(v)
		}
	}
	return filtered
}

// First returns the element at the lowest occupied offset.
func (c *Collection[T]) First() (T, error) {
	for _, s := range c.slots {
		if s.present {
			return s.value, nil
		}
	}
	var zero T
	return zero, ErrEmptyCollection
}

// Last returns the element at the highest occupied offset.
func (c *Collection[T]) Last() (T, error) {
	for i := len(c.slots) - 1; i >= 0; i-- {
		if c.slots[i].present {
			return c.slots[i].value, nil
		}
	}
	var zero T
	return zero, ErrEmptyCollection
}

// Random returns a uniformly chosen element.
func (c *Collection[T]) Random() (T, error) {
	var zero T
	if c.count == 0 {
		return zero, ErrEmptyCollection
	}

	n := c.intN(c.count)
	for v := range c.Values() {
		if n == 0 {
			return v, nil
		}
		n--
	}
	return zero, ErrEmptyCollection
}

func (c *Collection[T]) intN(n int) int {
	if c.rng != nil {
		return c.rng.IntN(n)
	}
	return rand.IntN(n)
}

// All yields each present offset and element in order.
func (c *Collection[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, s := range c.slots {
			if !s.present {
				continue
			}
			if !yield(i, s.value) {
				return
			}
		}
	}
}

// Values yields each present element in order.
func (c *Collection[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, v := range c.All() {
			if !yield(v) {
				return
			}
		}
	}
}

// ToSlice returns the present elements in order. Gaps are dropped, so the
// slice index of an element may differ from its offset.
func (c *Collection[T]) ToSlice() []T {
	out := make([]T, 0, c.count)
	for v := range c.Values() {
		out = append(out, v)
	}
	return out
}
