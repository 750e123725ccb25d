package gofst

// StreamBuilder configures a streamer over a Map before materializing it
// with IntoStream. Obtain one from Map.Range, Set.Range or Search; with no
// bound and no Backward call it streams every key in ascending order.
//
// Calling Ge/Gt/Le/Lt a second time overwrites the previous bound of that
// kind, per §4.7 ("a bound called twice overwrites the prior setting").
type StreamBuilder[S any] struct {
	data     []byte
	rootAddr uint64
	aut      Automaton[S]

	geSet, ltSet bool
	ge, lt       []byte
	backward     bool
}

func newStreamBuilder[S any](data []byte, rootAddr uint64, aut Automaton[S]) *StreamBuilder[S] {
	return &StreamBuilder[S]{data: data, rootAddr: rootAddr, aut: aut}
}

// Ge restricts the stream to keys >= key (inclusive lower bound).
func (b *StreamBuilder[S]) Ge(key []byte) *StreamBuilder[S] {
	b.ge = cloneKey(key)
	b.geSet = true
	return b
}

// Gt restricts the stream to keys > key (exclusive lower bound),
// implemented as Ge(key + 0x00): no key can exist strictly between key and
// key+0x00 in lexicographic order.
func (b *StreamBuilder[S]) Gt(key []byte) *StreamBuilder[S] {
	return b.Ge(append(cloneKey(key), 0x00))
}

// Le restricts the stream to keys <= key (inclusive upper bound),
// implemented as Lt(key + 0x00) by the same successor-key argument as Gt.
func (b *StreamBuilder[S]) Le(key []byte) *StreamBuilder[S] {
	return b.Lt(append(cloneKey(key), 0x00))
}

// Lt restricts the stream to keys < key (exclusive upper bound).
func (b *StreamBuilder[S]) Lt(key []byte) *StreamBuilder[S] {
	b.lt = cloneKey(key)
	b.ltSet = true
	return b
}

// Backward reverses iteration order to descending.
func (b *StreamBuilder[S]) Backward() *StreamBuilder[S] {
	b.backward = true
	return b
}

// IntoStream materializes the configured Stream.
func (b *StreamBuilder[S]) IntoStream() Stream {
	return newWalker(b.data, b.rootAddr, b.aut, b.ge, b.lt, b.backward)
}

func cloneKey(key []byte) []byte {
	cp := make([]byte, len(key))
	copy(cp, key)
	return cp
}
