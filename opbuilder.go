package gofst

import (
	"bytes"
	"container/heap"
)

// IndexedValue is one contributing stream's value in a set-operation
// result bundle, tagged with the 0-based index it was added to the
// OpBuilder with.
type IndexedValue struct {
	Index int
	Value Output
}

// OpStream is the result of a set operation: like Stream, but each key
// yields the bundle of every contributing input's value rather than a
// single combined value, per §4.8. The returned slice from Values is
// borrowed and only valid until the next call to Next.
type OpStream interface {
	Next() bool
	Key() []byte
	Values() []IndexedValue
}

// OpBuilder composes multiple Streams (typically each from a different
// Map) into a single set operation. Streams are merged via a min-heap
// keyed on the current head of each, so the result is produced in a
// single ascending pass with no auxiliary sorting.
type OpBuilder struct {
	streams []Stream
}

// NewOpBuilder creates an empty OpBuilder.
func NewOpBuilder() *OpBuilder {
	return &OpBuilder{}
}

// Add appends a stream to participate in the eventual set operation,
// tagged with its 0-based position (the order Add was called in).
func (b *OpBuilder) Add(s Stream) *OpBuilder {
	b.streams = append(b.streams, s)
	return b
}

// Union yields every key present in any input stream.
func (b *OpBuilder) Union() OpStream {
	return newOpStream(b.streams, func(matched []int, _ int) bool { return true })
}

// Intersection yields only keys present in every input stream.
func (b *OpBuilder) Intersection() OpStream {
	n := len(b.streams)
	return newOpStream(b.streams, func(matched []int, _ int) bool { return len(matched) == n })
}

// Difference yields keys present in the first stream (index 0) and no
// other, carrying only index 0's value.
func (b *OpBuilder) Difference() OpStream {
	return newOpStream(b.streams, func(matched []int, _ int) bool {
		return len(matched) == 1 && matched[0] == 0
	})
}

// SymmetricDifference yields keys contributed by an odd number of input
// streams.
func (b *OpBuilder) SymmetricDifference() OpStream {
	return newOpStream(b.streams, func(matched []int, _ int) bool { return len(matched)%2 == 1 })
}

type heapItem struct {
	key   []byte
	value Output
	idx   int
}

type itemHeap []heapItem

func (h itemHeap) Len() int            { return len(h) }
func (h itemHeap) Less(i, j int) bool  { return bytes.Compare(h[i].key, h[j].key) < 0 }
func (h itemHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *itemHeap) Push(x interface{}) { *h = append(*h, x.(heapItem)) }
func (h *itemHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

type opStream struct {
	streams   []Stream
	h         itemHeap
	predicate func(matched []int, total int) bool

	curKey  []byte
	curVals []IndexedValue
}

func newOpStream(streams []Stream, predicate func([]int, int) bool) *opStream {
	s := &opStream{streams: streams, predicate: predicate}
	heap.Init(&s.h)
	for i, st := range streams {
		if st.Next() {
			heap.Push(&s.h, heapItem{key: cloneKey(st.Key()), value: st.Value(), idx: i})
		}
	}
	return s
}

// Next advances to the next key for which the operation's predicate
// holds, skipping over keys where it doesn't.
func (s *opStream) Next() bool {
	for s.h.Len() > 0 {
		minKey := s.h[0].key

		var matchedIdx []int
		var matchedVals []IndexedValue
		for s.h.Len() > 0 && bytes.Equal(s.h[0].key, minKey) {
			item := heap.Pop(&s.h).(heapItem)
			matchedIdx = append(matchedIdx, item.idx)
			matchedVals = append(matchedVals, IndexedValue{Index: item.idx, Value: item.value})

			st := s.streams[item.idx]
			if st.Next() {
				heap.Push(&s.h, heapItem{key: cloneKey(st.Key()), value: st.Value(), idx: item.idx})
			}
		}

		if s.predicate(matchedIdx, len(s.streams)) {
			s.curKey = minKey
			s.curVals = matchedVals
			return true
		}
	}
	return false
}

// Key returns the current key.
func (s *opStream) Key() []byte { return s.curKey }

// Values returns the current bundle of contributing (index, value) pairs.
func (s *opStream) Values() []IndexedValue { return s.curVals }
