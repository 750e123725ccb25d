// Package registry implements the builder's bounded deduplication table:
// during online minimization, a just-finalized candidate node is looked up
// by structural hash, and reused (its existing address returned) if an
// equivalent frozen node was already written. The table is a fixed-capacity
// LRU — bounded so construction memory stays independent of input size, per
// §4.4 and the re-architecture note in §9 ("do not use an unbounded cache").
// Eviction only ever degrades the compression ratio, never correctness:
// an evicted-then-recreated node is simply serialized and registered again.
package registry

import (
	"hash/fnv"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/kaitu-io/gofst/internal/fstnode"
)

// DefaultCapacity is chosen, per §4.4, to give roughly a 5-20MB working set
// for typical node sizes; callers building very large or very small FSTs
// can override it via BuildConfig.
const DefaultCapacity = 1 << 16

// entry pairs a previously written node's own structure with the address
// it was written at, so a hash hit can be confirmed against the real node
// rather than trusted on the hash alone.
type entry struct {
	node *fstnode.Node
	addr uint64
}

// Registry maps a structural hash of a candidate frozen node to the
// node(s) written under that hash and their addresses. Hashes bucket
// candidates; exact equality (checked on every Get) is what actually
// decides reuse, so a 64-bit hash collision between structurally
// different nodes can never corrupt the artifact — it only costs an
// extra comparison.
type Registry struct {
	cache *lru.Cache[uint64, []entry]
}

// New creates a Registry bounded to capacity entries. capacity <= 0 uses
// DefaultCapacity.
func New(capacity int) *Registry {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c, err := lru.New[uint64, []entry](capacity)
	if err != nil {
		// Only returns an error for capacity <= 0, already guarded above.
		panic(err)
	}
	return &Registry{cache: c}
}

// Equal reports whether two nodes are structurally identical: same
// finality, final output, and ordered (input byte, output, destination
// address) transitions.
func Equal(a, b *fstnode.Node) bool {
	if a.IsFinal != b.IsFinal || a.FinalOutput != b.FinalOutput {
		return false
	}
	if len(a.Transitions) != len(b.Transitions) {
		return false
	}
	for i := range a.Transitions {
		if a.Transitions[i] != b.Transitions[i] {
			return false
		}
	}
	return true
}

// Hash computes the structural hash of a candidate node: its finality,
// final output, and ordered (input byte, output, destination address)
// transitions. Two structurally identical candidates always hash equal;
// a collision between structurally different candidates only means they
// land in the same bucket, which Get/Insert resolve by comparing the
// actual nodes via Equal.
func Hash(n *fstnode.Node) uint64 {
	h := fnv.New64a()
	var buf [9]byte
	write := func(v uint64) {
		for i := 0; i < 8; i++ {
			buf[i] = byte(v >> (8 * i))
		}
		h.Write(buf[:8])
	}

	if n.IsFinal {
		buf[0] = 1
	} else {
		buf[0] = 0
	}
	h.Write(buf[:1])
	write(n.FinalOutput)
	write(uint64(len(n.Transitions)))
	for _, t := range n.Transitions {
		buf[0] = t.Inp
		h.Write(buf[:1])
		write(t.Out)
		write(t.Addr)
	}
	return h.Sum64()
}

// Get looks up an already-written node structurally equal to n among
// those sharing hash, returning its address and true on a hit. A hash
// match alone is never enough: every candidate in the bucket is compared
// against n with Equal before being trusted.
func (r *Registry) Get(hash uint64, n *fstnode.Node) (uint64, bool) {
	bucket, ok := r.cache.Get(hash)
	if !ok {
		return 0, false
	}
	for _, e := range bucket {
		if Equal(e.node, n) {
			return e.addr, true
		}
	}
	return 0, false
}

// Insert records that n was written at addr under hash, appending to any
// existing bucket for that hash so a later colliding-but-different node
// doesn't displace it. Evicts the least-recently-used bucket if the
// registry is full.
func (r *Registry) Insert(hash uint64, n *fstnode.Node, addr uint64) {
	bucket, _ := r.cache.Get(hash)
	bucket = append(bucket, entry{node: n, addr: addr})
	r.cache.Add(hash, bucket)
}

// Len returns the current number of distinct hash buckets, for tests and
// monitoring.
func (r *Registry) Len() int {
	return r.cache.Len()
}
