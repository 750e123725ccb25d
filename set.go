package gofst

import (
	"io"

	"github.com/kaitu-io/gofst/internal/bytesource"
)

// Set is an immutable, ordered set of byte-string keys, implemented as a
// Map whose every final output is pinned to 0 (SPEC_FULL.md §6). It
// shares a wire format with Map except for the Kind discriminator in the
// version tag, so a Set artifact opened as a Map (or vice versa) is
// rejected at Open time rather than silently misread.
type Set struct {
	m *Map
}

// OpenSet validates and wraps data as a Set.
func OpenSet(data []byte, cfg *ReaderConfig) (*Set, error) {
	if cfg == nil {
		cfg = &ReaderConfig{ChecksumStrict: false}
	}
	m, err := openKind(bytesource.NewMemorySource(data), cfg, KindSet)
	if err != nil {
		return nil, err
	}
	return &Set{m: m}, nil
}

// OpenSetFile memory-maps path and opens it as a Set. Close releases the
// mapping.
func OpenSetFile(path string, cfg *ReaderConfig) (*Set, error) {
	if cfg == nil {
		cfg = &ReaderConfig{ChecksumStrict: true}
	}
	src, err := bytesource.OpenMmapSource(path)
	if err != nil {
		return nil, err
	}
	m, err := openKind(src, cfg, KindSet)
	if err != nil {
		src.Close()
		return nil, err
	}
	return &Set{m: m}, nil
}

// Close releases the backing resource, if any.
func (s *Set) Close() error { return s.m.Close() }

// Len returns the number of keys in the set.
func (s *Set) Len() uint64 { return s.m.Len() }

// IsEmpty reports whether the set has zero keys.
func (s *Set) IsEmpty() bool { return s.m.IsEmpty() }

// Contains reports whether key is a member of the set.
func (s *Set) Contains(key []byte) bool { return s.m.ContainsKey(key) }

// Stream returns every key in ascending order.
func (s *Set) Stream() Stream { return s.m.Stream() }

// Range returns a StreamBuilder for configuring a bounded, optionally
// reversed key stream.
func (s *Set) Range() *StreamBuilder[alwaysMatchState] { return s.m.Range() }

// Keys returns every key in ascending order.
func (s *Set) Keys() [][]byte { return s.m.Keys() }

// Op returns an OpBuilder seeded with this set's stream.
func (s *Set) Op() *OpBuilder { return s.m.Op() }

// SetBuilder constructs a minimized FST Set from keys inserted in
// strictly ascending order, per §4.4 with every value pinned to 0.
type SetBuilder struct {
	b *MapBuilder
}

// NewSetBuilder creates a builder that will write a Set artifact to sink
// when Finish is called. cfg may be nil to use all defaults.
func NewSetBuilder(sink io.Writer, cfg *BuildConfig) *SetBuilder {
	return &SetBuilder{b: newBuilder(sink, KindSet, cfg)}
}

// Insert adds key with an implicit value of 0.
func (s *SetBuilder) Insert(key []byte) error {
	return s.b.Insert(key, 0)
}

// Finish finalizes the artifact and flushes it to the sink.
func (s *SetBuilder) Finish() error { return s.b.Finish() }

// Memory reports bytes accumulated so far.
func (s *SetBuilder) Memory() int { return s.b.Memory() }

// BytesWritten reports bytes flushed to the sink so far.
func (s *SetBuilder) BytesWritten() uint64 { return s.b.BytesWritten() }
