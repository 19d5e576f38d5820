package collection_test

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/tailored-agentic-units/fixtures/collection"
)

type item struct {
	ID     int
	Tagged bool
}

func items(n int) []*item {
	out := make([]*item, n)
	for i := range out {
		out[i] = &item{ID: i}
	}
	return out
}

func ids(c *collection.Collection[*item]) []int {
	var out []int
	for v := range c.Values() {
		out = append(out, v.ID)
	}
	return out
}

func mustOf(t *testing.T, values ...*item) *collection.Collection[*item] {
	t.Helper()
	c, err := collection.Of(values...)
	if err != nil {
		t.Fatalf("Of() failed: %v", err)
	}
	return c
}

func TestNew_Empty(t *testing.T) {
	c := collection.New[*item]()

	if c.Count() != 0 {
		t.Errorf("got Count %d, want 0", c.Count())
	}
	if c.Len() != 0 {
		t.Errorf("got Len %d, want 0", c.Len())
	}
	if got := c.ToSlice(); len(got) != 0 {
		t.Errorf("got %d values, want 0", len(got))
	}
}

func TestZeroValue_Usable(t *testing.T) {
	var c collection.Collection[*item]

	if err := c.Add(&item{ID: 1}); err != nil {
		t.Fatalf("Add() on zero value failed: %v", err)
	}
	if c.Count() != 1 {
		t.Errorf("got Count %d, want 1", c.Count())
	}
	if _, err := c.Random(); err != nil {
		t.Errorf("Random() unexpected error: %v", err)
	}
}

func TestOf_PreservesOrder(t *testing.T) {
	values := items(7)
	c := mustOf(t, values...)

	if !slices.Equal(c.ToSlice(), values) {
		t.Errorf("ToSlice() did not return the given values in order")
	}
}

func TestOf_RejectsPrimitives(t *testing.T) {
	_, err := collection.Of(1, 2, 3)
	if !errors.Is(err, collection.ErrInvalidValue) {
		t.Errorf("Of() error = %v, want %v", err, collection.ErrInvalidValue)
	}
}

func TestAccess(t *testing.T) {
	c := mustOf(t, items(3)...)

	for i := range 3 {
		got, err := c.Get(i)
		if err != nil {
			t.Fatalf("Get(%d) unexpected error: %v", i, err)
		}
		if got.ID != i {
			t.Errorf("Get(%d) returned ID %d", i, got.ID)
		}
	}

	if c.Has(10) {
		t.Error("Has(10) should be false before Set")
	}

	if err := c.Set(10, &item{ID: 10}); err != nil {
		t.Fatalf("Set(10) failed: %v", err)
	}
	if !c.Has(10) {
		t.Error("Has(10) should be true after Set")
	}

	c.Unset(10)
	if c.Has(10) {
		t.Error("Has(10) should be false after Unset")
	}
}

func TestGet_NotFound(t *testing.T) {
	c := mustOf(t, items(2)...)

	for _, offset := range []int{-1, 2, 50} {
		if _, err := c.Get(offset); !errors.Is(err, collection.ErrOffsetNotFound) {
			t.Errorf("Get(%d) error = %v, want %v", offset, err, collection.ErrOffsetNotFound)
		}
	}
}

func TestSet(t *testing.T) {
	tests := []struct {
		name      string
		offset    int
		wantIDs   []int
		wantLen   int
		wantCount int
	}{
		{name: "no offset appends", offset: collection.NoOffset, wantIDs: []int{0, 1, 2, 99}, wantLen: 4, wantCount: 4},
		{name: "insert at head", offset: 0, wantIDs: []int{99, 0, 1, 2}, wantLen: 4, wantCount: 4},
		{name: "insert in middle", offset: 1, wantIDs: []int{0, 99, 1, 2}, wantLen: 4, wantCount: 4},
		{name: "offset equal to length appends", offset: 3, wantIDs: []int{0, 1, 2, 99}, wantLen: 4, wantCount: 4},
		{name: "offset past end leaves gap", offset: 6, wantIDs: []int{0, 1, 2, 99}, wantLen: 7, wantCount: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := mustOf(t, items(3)...)

			if err := c.Set(tt.offset, &item{ID: 99}); err != nil {
				t.Fatalf("Set(%d) unexpected error: %v", tt.offset, err)
			}
			if got := ids(c); !slices.Equal(got, tt.wantIDs) {
				t.Errorf("got IDs %v, want %v", got, tt.wantIDs)
			}
			if c.Len() != tt.wantLen {
				t.Errorf("got Len %d, want %d", c.Len(), tt.wantLen)
			}
			if c.Count() != tt.wantCount {
				t.Errorf("got Count %d, want %d", c.Count(), tt.wantCount)
			}
		})
	}
}

func TestSet_GapOffsets(t *testing.T) {
	c := mustOf(t, items(2)...)

	if err := c.Set(5, &item{ID: 5}); err != nil {
		t.Fatalf("Set(5) failed: %v", err)
	}

	for _, offset := range []int{2, 3, 4} {
		if c.Has(offset) {
			t.Errorf("Has(%d) should be false inside the gap", offset)
		}
	}

	got, err := c.Get(5)
	if err != nil {
		t.Fatalf("Get(5) failed: %v", err)
	}
	if got.ID != 5 {
		t.Errorf("Get(5) returned ID %d, want 5", got.ID)
	}

	var offsets []int
	for offset := range c.All() {
		offsets = append(offsets, offset)
	}
	if !slices.Equal(offsets, []int{0, 1, 5}) {
		t.Errorf("got offsets %v, want [0 1 5]", offsets)
	}
}

func TestSet_InsertIntoGapRegion(t *testing.T) {
	c := mustOf(t, items(1)...)
	if err := c.Set(3, &item{ID: 3}); err != nil {
		t.Fatalf("Set(3) failed: %v", err)
	}

	// Offset 2 is inside the logical length, so the element at 3 shifts to 4.
	if err := c.Set(2, &item{ID: 2}); err != nil {
		t.Fatalf("Set(2) failed: %v", err)
	}

	if c.Len() != 5 {
		t.Errorf("got Len %d, want 5", c.Len())
	}
	if got, _ := c.Get(4); got == nil || got.ID != 3 {
		t.Errorf("Get(4) = %v, want ID 3", got)
	}
	if got, _ := c.Get(2); got == nil || got.ID != 2 {
		t.Errorf("Get(2) = %v, want ID 2", got)
	}
}

func TestSet_Errors(t *testing.T) {
	c := mustOf(t, items(2)...)

	var nilItem *item
	if err := c.Set(0, nilItem); !errors.Is(err, collection.ErrInvalidValue) {
		t.Errorf("Set(nil) error = %v, want %v", err, collection.ErrInvalidValue)
	}
	if err := c.Set(-5, &item{}); !errors.Is(err, collection.ErrInvalidOffset) {
		t.Errorf("Set(-5) error = %v, want %v", err, collection.ErrInvalidOffset)
	}
	if c.Count() != 2 {
		t.Errorf("failed Set changed Count to %d", c.Count())
	}
}

func TestSet_InterfaceElements(t *testing.T) {
	c := collection.New[any]()

	if err := c.Set(collection.NoOffset, "text"); !errors.Is(err, collection.ErrInvalidValue) {
		t.Errorf("Set(string) error = %v, want %v", err, collection.ErrInvalidValue)
	}
	if err := c.Set(collection.NoOffset, map[string]int{"a": 1}); err != nil {
		t.Errorf("Set(map) unexpected error: %v", err)
	}
}

func TestUnset(t *testing.T) {
	c := mustOf(t, items(4)...)

	c.Unset(1)
	if c.Count() != 3 {
		t.Errorf("got Count %d, want 3", c.Count())
	}
	if c.Len() != 4 {
		t.Errorf("got Len %d, want 4 (gap kept)", c.Len())
	}
	if got := ids(c); !slices.Equal(got, []int{0, 2, 3}) {
		t.Errorf("got IDs %v, want [0 2 3]", got)
	}

	c.Unset(1) // already absent
	c.Unset(42)
	if c.Count() != 3 {
		t.Errorf("no-op Unset changed Count to %d", c.Count())
	}

	c.Unset(3)
	if c.Len() != 3 {
		t.Errorf("got Len %d after removing the last element, want 3", c.Len())
	}
}

func TestUnset_TrimsTrailingGap(t *testing.T) {
	c := mustOf(t, items(1)...)
	if err := c.Set(4, &item{ID: 4}); err != nil {
		t.Fatalf("Set(4) failed: %v", err)
	}

	c.Unset(4)
	if c.Len() != 1 {
		t.Errorf("got Len %d, want 1", c.Len())
	}

	if err := c.Add(&item{ID: 1}); err != nil {
		t.Fatalf("Add() failed: %v", err)
	}
	if !c.Has(1) {
		t.Error("Add after trimming should land at offset 1")
	}
}

func TestAdd_AllOrNothing(t *testing.T) {
	c := mustOf(t, items(1)...)

	var nilItem *item
	err := c.Add(&item{ID: 1}, nilItem, &item{ID: 2})
	if !errors.Is(err, collection.ErrInvalidValue) {
		t.Fatalf("Add() error = %v, want %v", err, collection.ErrInvalidValue)
	}
	if c.Count() != 1 {
		t.Errorf("got Count %d, want 1 (no partial add)", c.Count())
	}
}

func TestMustAdd(t *testing.T) {
	c := collection.New[*item]().MustAdd(&item{ID: 1}).MustAdd(&item{ID: 2}, &item{ID: 3})
	if got := ids(c); !slices.Equal(got, []int{1, 2, 3}) {
		t.Errorf("got IDs %v, want [1 2 3]", got)
	}

	defer func() {
		if recover() == nil {
			t.Error("MustAdd(nil) should panic")
		}
	}()
	var nilItem *item
	c.MustAdd(nilItem)
}

func TestMerge(t *testing.T) {
	a := mustOf(t, items(5)...)
	b := mustOf(t, &item{ID: 10}, &item{ID: 11}, &item{ID: 12}, &item{ID: 13})

	merged := a.Merge(b)

	if merged.Count() != 9 {
		t.Errorf("got Count %d, want 9", merged.Count())
	}
	if merged == a || merged == b {
		t.Error("Merge should return a new collection")
	}
	if a.Count() != 5 || b.Count() != 4 {
		t.Errorf("inputs changed: a=%d b=%d", a.Count(), b.Count())
	}
	if got := ids(merged); !slices.Equal(got, []int{0, 1, 2, 3, 4, 10, 11, 12, 13}) {
		t.Errorf("got IDs %v", got)
	}
}

func TestMerge_CompactsGaps(t *testing.T) {
	a := mustOf(t, items(1)...)
	if err := a.Set(3, &item{ID: 3}); err != nil {
		t.Fatalf("Set(3) failed: %v", err)
	}

	merged := a.Merge(nil)
	if merged.Len() != 2 || merged.Count() != 2 {
		t.Errorf("got Len %d Count %d, want 2 and 2", merged.Len(), merged.Count())
	}
}

func TestApply(t *testing.T) {
	c := mustOf(t, items(6)...)

	for v := range c.Values() {
		if v.Tagged {
			t.Fatal("items should start untagged")
		}
	}

	got := c.Apply(func(i *item) { i.Tagged = true })
	if got != c {
		t.Error("Apply should return the receiver")
	}
	if c.Count() != 6 {
		t.Errorf("got Count %d, want 6", c.Count())
	}
	for v := range c.Values() {
		if !v.Tagged {
			t.Errorf("item %d was not tagged", v.ID)
		}
	}
}

func TestFilter(t *testing.T) {
	tagged := &item{ID: 100, Tagged: true}
	c := mustOf(t, tagged, &item{ID: 1}, &item{ID: 2}, tagged, &item{ID: 3})

	filtered := c.Filter(func(i *item) bool { return i.Tagged })

	if c.Count() != 5 {
		t.Errorf("original Count %d, want 5", c.Count())
	}
	if filtered.Count() != 2 {
		t.Errorf("filtered Count %d, want 2", filtered.Count())
	}
	for v := range filtered.Values() {
		if v != tagged {
			t.Errorf("unexpected item %d in filtered collection", v.ID)
		}
	}
}

func TestFirstLast(t *testing.T) {
	first := &item{ID: 1}
	last := &item{ID: 5}
	c := mustOf(t, first, &item{ID: 2}, &item{ID: 3}, &item{ID: 4}, last)

	if got, err := c.First(); err != nil || got != first {
		t.Errorf("First() = %v, %v; want %v", got, err, first)
	}
	if got, err := c.Last(); err != nil || got != last {
		t.Errorf("Last() = %v, %v; want %v", got, err, last)
	}
}

func TestFirstLast_SkipGaps(t *testing.T) {
	c := mustOf(t, items(3)...)
	c.Unset(0)
	if err := c.Set(8, &item{ID: 8}); err != nil {
		t.Fatalf("Set(8) failed: %v", err)
	}

	if got, _ := c.First(); got.ID != 1 {
		t.Errorf("First() ID = %d, want 1", got.ID)
	}
	if got, _ := c.Last(); got.ID != 8 {
		t.Errorf("Last() ID = %d, want 8", got.ID)
	}
}

func TestEmptyCollection(t *testing.T) {
	c := collection.New[*item]()

	if _, err := c.First(); !errors.Is(err, collection.ErrEmptyCollection) {
		t.Errorf("First() error = %v, want %v", err, collection.ErrEmptyCollection)
	}
	if _, err := c.Last(); !errors.Is(err, collection.ErrEmptyCollection) {
		t.Errorf("Last() error = %v, want %v", err, collection.ErrEmptyCollection)
	}
	if _, err := c.Random(); !errors.Is(err, collection.ErrEmptyCollection) {
		t.Errorf("Random() error = %v, want %v", err, collection.ErrEmptyCollection)
	}

	x := &item{ID: 42}
	if err := c.Add(x); err != nil {
		t.Fatalf("Add() failed: %v", err)
	}
	first, _ := c.First()
	last, _ := c.Last()
	if first != x || last != x {
		t.Errorf("First() = %v, Last() = %v; want both %v", first, last, x)
	}
}

func TestRandom_Seeded(t *testing.T) {
	values := items(20)

	pick := func() []int {
		c := collection.New[*item](collection.WithSeed(7))
		c.MustAdd(values...)
		var picks []int
		for range 10 {
			v, err := c.Random()
			if err != nil {
				t.Fatalf("Random() failed: %v", err)
			}
			picks = append(picks, v.ID)
		}
		return picks
	}

	if a, b := pick(), pick(); !slices.Equal(a, b) {
		t.Errorf("seeded Random() not reproducible: %v vs %v", a, b)
	}
}

func TestRandom_CoversAllElements(t *testing.T) {
	c := collection.New[*item](collection.WithRand(rand.New(rand.NewPCG(1, 2))))
	c.MustAdd(items(4)...)
	c.Unset(1)

	seen := make(map[int]bool)
	for range 200 {
		v, err := c.Random()
		if err != nil {
			t.Fatalf("Random() failed: %v", err)
		}
		seen[v.ID] = true
	}

	if seen[1] {
		t.Error("Random() returned an unset element")
	}
	for _, id := range []int{0, 2, 3} {
		if !seen[id] {
			t.Errorf("Random() never returned element %d", id)
		}
	}
}

func TestAll_StopsEarly(t *testing.T) {
	c := mustOf(t, items(5)...)

	visited := 0
	for range c.All() {
		visited++
		if visited == 2 {
			break
		}
	}
	if visited != 2 {
		t.Errorf("visited %d elements, want 2", visited)
	}
}
