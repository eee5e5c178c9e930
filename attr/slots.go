package attr

import (
	"iter"

	"github.com/bits-and-blooms/bitset"
)

// slotSet stores the values of one attribute in fixed-size blocks, indexed
// directly by entity index. A parallel validity bitmap tells set slots apart
// from slots that were never written or have been invalidated.
//
// The bitmap length only ever grows: it is the high-water mark of written
// indices. count always equals the number of set bits.
type slotSet[T any] struct {
	blocks [][slotBlockSize]T
	valid  *bitset.BitSet
	count  int
}

func newSlotSet[T any](capacity int) *slotSet[T] {
	blocks := (capacity + slotBlockSize - 1) / slotBlockSize
	words := (capacity + 63) / 64
	return &slotSet[T]{
		blocks: make([][slotBlockSize]T, 0, blocks),
		valid:  bitset.From(make([]uint64, 0, words)),
	}
}

// ensureCapacity grows the block list so that i is addressable.
// New slots hold the zero value of T and are invalid.
func (s *slotSet[T]) ensureCapacity(i Index) {
	blockIdx, _ := i.block()
	for blockIdx >= len(s.blocks) {
		s.blocks = append(s.blocks, [slotBlockSize]T{})
	}
}

func (s *slotSet[T]) set(i Index, v T) {
	s.ensureCapacity(i)

	blockIdx, slotIdx := i.block()
	s.blocks[blockIdx][slotIdx] = v

	if !s.valid.Test(uint(i)) {
		s.valid.Set(uint(i))
		s.count++
	}
}

// get returns a copy of the value at i, or false if i is out of range or invalid.
func (s *slotSet[T]) get(i Index) (T, bool) {
	var zero T
	if !s.isValid(i) {
		return zero, false
	}

	blockIdx, slotIdx := i.block()
	if blockIdx >= len(s.blocks) {
		return zero, false
	}
	return s.blocks[blockIdx][slotIdx], true
}

func (s *slotSet[T]) isValid(i Index) bool {
	return s.valid.Test(uint(i))
}

// invalidate clears the slot at i. It reports whether i was valid before.
func (s *slotSet[T]) invalidate(i Index) bool {
	if !s.valid.Test(uint(i)) {
		return false
	}
	s.valid.Clear(uint(i))
	s.count--

	// Zero out the value so references it holds can be collected
	blockIdx, slotIdx := i.block()
	var zero T
	s.blocks[blockIdx][slotIdx] = zero
	return true
}

func (s *slotSet[T]) highWater() int {
	return int(s.valid.Len())
}

// all yields every valid (index, value) pair in ascending index order.
// Validity is re-checked at each step, so writes made during iteration may or
// may not be observed.
func (s *slotSet[T]) all() iter.Seq2[Index, T] {
	return func(yield func(Index, T) bool) {
		next := uint(0)
		for {
			i, ok := s.valid.NextSet(next)
			if !ok {
				return
			}
			next = i + 1

			v, ok := s.get(Index(i))
			if !ok {
				continue
			}
			if !yield(Index(i), v) {
				return
			}
		}
	}
}

// reset releases all values. The slot set is empty afterwards.
func (s *slotSet[T]) reset() {
	s.blocks = nil
	s.valid.ClearAll()
	s.count = 0
}
