package gofst

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/kaitu-io/gofst/internal/bytesource"
	"github.com/kaitu-io/gofst/internal/fstnode"
)

// ArtifactKind distinguishes a Map artifact (arbitrary u64 final outputs)
// from a Set artifact (every final output is 0), per the version-tag
// layout SPEC_FULL.md §6 adds on top of the distilled wire format.
type ArtifactKind uint32

const (
	KindMap ArtifactKind = 0
	KindSet ArtifactKind = 1
)

const (
	magicSize   = 4
	versionSize = 8 // 4 bytes format version + 4 bytes Kind
	footerSize  = 20
)

var magic = [magicSize]byte{'F', 'S', 'T', 0}

// Map is an immutable, ordered map from byte-string keys to uint64
// values, backed by a byte range holding a minimized FST. A Map borrows
// its backing Source and never mutates it; it is safe to share across
// goroutines as read-only data (§5). Each Streamer built from it, however,
// is single-owner.
type Map struct {
	src      bytesource.Source
	data     []byte
	rootAddr uint64
	count    uint64
	kind     ArtifactKind
}

// Open validates and wraps data as a Map. cfg may be nil, in which case
// checksum verification defaults to off — the §9 default for in-memory
// sources the caller already trusts.
func Open(data []byte, cfg *ReaderConfig) (*Map, error) {
	if cfg == nil {
		cfg = &ReaderConfig{ChecksumStrict: false}
	}
	return openKind(bytesource.NewMemorySource(data), cfg, KindMap)
}

// OpenFile memory-maps path and opens it as a Map. The returned Map must
// be closed (via Close) when no longer needed to release the mapping. cfg
// may be nil, in which case checksum verification defaults to on — the §9
// default for memory-mapped sources, where partial reads from a truncated
// or concurrently modified file are otherwise observable.
func OpenFile(path string, cfg *ReaderConfig) (*Map, error) {
	if cfg == nil {
		cfg = &ReaderConfig{ChecksumStrict: true}
	}
	src, err := bytesource.OpenMmapSource(path)
	if err != nil {
		return nil, wrapError(KindIO, "open map file", err)
	}
	m, err := openKind(src, cfg, KindMap)
	if err != nil {
		src.Close()
		return nil, err
	}
	return m, nil
}

func openKind(src bytesource.Source, cfg *ReaderConfig, want ArtifactKind) (*Map, error) {
	data := src.Bytes()
	if int64(len(data)) < int64(magicSize+versionSize+footerSize) {
		return nil, newError(KindFormat, "artifact too small to contain header and footer")
	}

	if [magicSize]byte(data[0:magicSize]) != magic {
		return nil, newError(KindFormat, "bad magic")
	}
	gotVersion := binary.LittleEndian.Uint32(data[magicSize : magicSize+4])
	if gotVersion != formatVersion {
		return nil, newError(KindFormat, "unsupported format version")
	}
	gotKind := ArtifactKind(binary.LittleEndian.Uint32(data[magicSize+4 : magicSize+versionSize]))
	if gotKind != want {
		return nil, newError(KindFormat, "artifact kind does not match the operation (Map vs Set)")
	}

	footerStart := len(data) - footerSize
	rootAddr := binary.LittleEndian.Uint64(data[footerStart : footerStart+8])
	count := binary.LittleEndian.Uint64(data[footerStart+8 : footerStart+16])
	wantCRC := binary.LittleEndian.Uint32(data[footerStart+16 : footerStart+20])

	if cfg.ChecksumStrict {
		gotCRC := crc32.ChecksumIEEE(data[:footerStart+16])
		if gotCRC != wantCRC {
			return nil, newError(KindChecksumMismatch, "footer checksum does not match artifact contents")
		}
	}

	return &Map{src: src, data: data, rootAddr: rootAddr, count: count, kind: gotKind}, nil
}

// Close releases the backing Source, if it owns an OS resource (a memory
// mapping). Closing a Map opened with Open (in-memory) is a no-op.
func (m *Map) Close() error {
	if closable, ok := m.src.(interface{ Close() error }); ok {
		return closable.Close()
	}
	return nil
}

// Len returns the number of keys in the map.
func (m *Map) Len() uint64 { return m.count }

// IsEmpty reports whether the map has zero keys.
func (m *Map) IsEmpty() bool { return m.count == 0 }

// Get returns the value associated with key, and whether it was found.
func (m *Map) Get(key []byte) (Output, bool) {
	addr := m.rootAddr
	var total Output
	for _, b := range key {
		t, found, err := fstnode.FindTransition(m.data, addr, b)
		if err != nil || !found {
			return 0, false
		}
		total = total.Add(Output(t.Out))
		addr = t.Addr
	}
	final, finalOut, err := fstnode.IsFinalNode(m.data, addr)
	if err != nil || !final {
		return 0, false
	}
	return total.Add(Output(finalOut)), true
}

// ContainsKey reports whether key is present in the map.
func (m *Map) ContainsKey(key []byte) bool {
	_, ok := m.Get(key)
	return ok
}

// Stream returns every (key, value) pair in ascending order.
func (m *Map) Stream() Stream {
	return m.Range().IntoStream()
}

// Range returns a StreamBuilder for configuring a bounded, optionally
// reversed stream with no automaton filtering (AlwaysMatch).
func (m *Map) Range() *StreamBuilder[alwaysMatchState] {
	return newStreamBuilder[alwaysMatchState](m.data, m.rootAddr, alwaysMatchAutomaton{})
}

// Search returns a StreamBuilder filtered by aut. Search(AlwaysMatch())
// behaves exactly like Stream() (per §8), since AlwaysMatch's IsMatch and
// CanMatch are both unconditionally true.
func Search[S any](m *Map, aut Automaton[S]) *StreamBuilder[S] {
	return newStreamBuilder(m.data, m.rootAddr, aut)
}

// Keys returns every key in ascending order, ignoring values.
func (m *Map) Keys() [][]byte {
	s := m.Stream()
	var out [][]byte
	for s.Next() {
		out = append(out, cloneKey(s.Key()))
	}
	return out
}

// Values returns every value in ascending key order.
func (m *Map) Values() []Output {
	s := m.Stream()
	var out []Output
	for s.Next() {
		out = append(out, s.Value())
	}
	return out
}

// Op returns an OpBuilder for composing this map with others via
// set-style operations (union, intersection, difference, symmetric
// difference).
func (m *Map) Op() *OpBuilder {
	ob := NewOpBuilder()
	ob.Add(m.Stream())
	return ob
}
