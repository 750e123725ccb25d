package gofst

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"io"

	"github.com/kaitu-io/gofst/internal/fstnode"
	"github.com/kaitu-io/gofst/internal/registry"
)

// MapBuilder constructs a minimized FST from keys inserted in strictly
// ascending lexicographic order, per §4.4's online-minimization algorithm:
// a working stack holds one BuilderNode per depth of the key currently
// being inserted, and every insert finalizes (hashes, dedups against the
// registry, and serializes) whichever suffix of the previous key's stack
// the new key no longer shares.
//
// A MapBuilder is single-owner and not safe for concurrent use. Once an
// operation returns an error the builder is poisoned and every subsequent
// call returns that same error.
type MapBuilder struct {
	sink io.Writer
	kind ArtifactKind
	reg  *registry.Registry

	buf []byte // everything written so far, including the pending header

	stack   []*fstnode.BuilderNode
	free    []*fstnode.BuilderNode // finalized nodes, Reset and ready for reuse
	hasPrev bool
	prevKey []byte

	count  uint64
	err    error
	closed bool
}

// NewMapBuilder creates a builder that will write a Map artifact to sink
// when Finish is called. cfg may be nil to use all defaults.
func NewMapBuilder(sink io.Writer, cfg *BuildConfig) *MapBuilder {
	return newBuilder(sink, KindMap, cfg)
}

func newBuilder(sink io.Writer, kind ArtifactKind, cfg *BuildConfig) *MapBuilder {
	if cfg == nil {
		cfg = &BuildConfig{}
	}
	b := &MapBuilder{
		sink: sink,
		kind: kind,
		reg:  registry.New(cfg.registryCapacity()),
		stack: []*fstnode.BuilderNode{
			{},
		},
	}
	b.buf = make([]byte, 0, 4096)
	b.buf = append(b.buf, magic[:]...)
	var versionTag [versionSize]byte
	binary.LittleEndian.PutUint32(versionTag[0:4], formatVersion)
	binary.LittleEndian.PutUint32(versionTag[4:8], uint32(kind))
	b.buf = append(b.buf, versionTag[:]...)
	return b
}

// Insert adds a key/value pair. Keys must be inserted in strictly
// ascending order; violating that poisons the builder with
// ErrOutOfOrder (key < previous) or ErrDuplicateKey (key == previous).
func (b *MapBuilder) Insert(key []byte, value Output) error {
	if b.err != nil {
		return b.err
	}

	if b.hasPrev {
		switch bytes.Compare(key, b.prevKey) {
		case 0:
			return b.poison(newError(KindDuplicateKey, "key equals previously inserted key"))
		case -1:
			return b.poison(newError(KindOutOfOrder, "key is less than previously inserted key"))
		}
	}

	p := commonPrefixLen(b.prevKey, key)
	if err := b.finalizeAbove(p); err != nil {
		return b.poison(err)
	}

	remaining := value
	for d := 0; d < p; d++ {
		existingOut := uint64(0)
		if _, out, ok := b.stack[d].OpenTransition(); ok {
			existingOut = out
		}
		common := Output(existingOut).Prefix(remaining)
		b.stack[d].SetOpenOutput(uint64(common))
		remaining = remaining.Sub(common)
		pushDown := Output(existingOut).Sub(common)
		if !pushDown.IsZero() {
			// must run before the extend loop below creates depth p's new
			// open transition, or the push would land on it too.
			b.stack[d+1].AddOutputPrefix(uint64(pushDown))
		}
	}

	for d := p; d < len(key); d++ {
		b.stack = append(b.stack, b.allocNode())
		b.stack[d].SetOpen(key[d], 0)
	}

	term := b.stack[len(key)]
	term.IsFinal = true
	term.FinalOutput = uint64(remaining)

	b.hasPrev = true
	b.prevKey = append(b.prevKey[:0], key...)
	b.count++
	return nil
}

// Finish finalizes every remaining node on the working stack (including
// the root), writes the footer, and flushes the artifact to the sink. The
// builder must not be used afterward.
func (b *MapBuilder) Finish() error {
	if b.err != nil {
		return b.err
	}
	if b.closed {
		return b.poison(newError(KindIO, "Finish called twice"))
	}

	if err := b.finalizeAbove(0); err != nil {
		return b.poison(err)
	}
	rootAddr, err := b.freezeAndWrite(b.stack[0])
	if err != nil {
		return b.poison(err)
	}

	var footer [footerSize]byte
	binary.LittleEndian.PutUint64(footer[0:8], rootAddr)
	binary.LittleEndian.PutUint64(footer[8:16], b.count)
	crc := crc32.ChecksumIEEE(append(b.buf, footer[0:16]...))
	binary.LittleEndian.PutUint32(footer[16:20], crc)
	b.buf = append(b.buf, footer[:]...)

	if _, err := b.sink.Write(b.buf); err != nil {
		return b.poison(wrapError(KindIO, "write artifact to sink", err))
	}
	b.closed = true
	return nil
}

// Memory reports the number of bytes accumulated so far, including the
// pending header and any nodes already frozen, for callers watching
// construction working-set size.
func (b *MapBuilder) Memory() int {
	return len(b.buf)
}

// BytesWritten reports the number of bytes flushed to the sink so far.
// Since this builder buffers the whole artifact and flushes once at
// Finish, it is 0 until Finish succeeds, then equal to Memory().
func (b *MapBuilder) BytesWritten() uint64 {
	if !b.closed {
		return 0
	}
	return uint64(len(b.buf))
}

// finalizeAbove freezes and writes every node on the working stack deeper
// than depth, linking each into its parent's pending transition, then
// truncates the stack to depth+1.
func (b *MapBuilder) finalizeAbove(depth int) error {
	for d := len(b.stack) - 1; d > depth; d-- {
		node := b.stack[d]
		addr, err := b.freezeAndWrite(node)
		if err != nil {
			return err
		}
		b.stack[d-1].ResolveOpen(addr)
		// freezeAndWrite copies node's fields into an independent *Node
		// before this point, so node itself is free to reset and reuse.
		node.Reset()
		b.free = append(b.free, node)
	}
	b.stack = b.stack[:depth+1]
	return nil
}

// allocNode returns a BuilderNode ready for a new depth slot on the
// working stack, reusing one freed by finalizeAbove when available rather
// than allocating, per BuilderNode.Reset's intent.
func (b *MapBuilder) allocNode() *fstnode.BuilderNode {
	if n := len(b.free); n > 0 {
		node := b.free[n-1]
		b.free = b.free[:n-1]
		return node
	}
	return &fstnode.BuilderNode{}
}

func (b *MapBuilder) freezeAndWrite(node *fstnode.BuilderNode) (uint64, error) {
	frozen := node.Freeze()
	if frozen.IsFinal && frozen.FinalOutput == 0 && len(frozen.Transitions) == 0 {
		return fstnode.EmptyFinalAddr, nil
	}
	h := registry.Hash(frozen)
	if addr, ok := b.reg.Get(h, frozen); ok {
		return addr, nil
	}
	newBuf, addr, err := fstnode.Encode(b.buf, frozen, uint64(len(b.buf)))
	if err != nil {
		return 0, wrapError(KindIO, "encode node", err)
	}
	b.buf = newBuf
	b.reg.Insert(h, frozen, addr)
	return addr, nil
}

func (b *MapBuilder) poison(err error) error {
	b.err = err
	return err
}

func commonPrefixLen(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}
