package fstnode

// BuilderNode is the mutable scratch form of a node while it is still
// being extended by the builder: a node stays a BuilderNode on the working
// stack only while the key currently being inserted still passes through
// it. Every transition but the last is already finalized (the pointed-to
// child has a frozen address); the last transition, if any, is still
// "open" because its destination is itself still on the working stack.
type BuilderNode struct {
	IsFinal     bool
	FinalOutput uint64

	// Finalized transitions, ascending by Inp, addresses already resolved.
	Transitions []Transition

	hasOpen bool
	openInp byte
	openOut uint64
}

// Reset clears n for reuse at a new depth slot on the working stack,
// avoiding an allocation per insert for the common case of a bounded-depth
// key stream.
func (n *BuilderNode) Reset() {
	n.IsFinal = false
	n.FinalOutput = 0
	n.Transitions = n.Transitions[:0]
	n.hasOpen = false
	n.openInp = 0
	n.openOut = 0
}

// OpenTransition reports the pending (not yet address-resolved) transition
// at the bottom of this node, if any — the one leading to the node one
// depth deeper on the working stack.
func (n *BuilderNode) OpenTransition() (inp byte, out uint64, ok bool) {
	return n.openInp, n.openOut, n.hasOpen
}

// SetOpen installs or overwrites the pending transition.
func (n *BuilderNode) SetOpen(inp byte, out uint64) {
	n.hasOpen = true
	n.openInp = inp
	n.openOut = out
}

// HasOpen reports whether this node has an unresolved trailing transition.
func (n *BuilderNode) HasOpen() bool {
	return n.hasOpen
}

// ResolveOpen finalizes the pending transition now that its destination
// has a frozen address, appending it to Transitions and clearing the
// pending slot.
func (n *BuilderNode) ResolveOpen(addr uint64) {
	if !n.hasOpen {
		return
	}
	n.Transitions = append(n.Transitions, Transition{Inp: n.openInp, Out: n.openOut, Addr: addr})
	n.hasOpen = false
}

// AddOutputToOpen adds delta to the pending transition's output.
func (n *BuilderNode) AddOutputToOpen(delta uint64) {
	n.openOut += delta
}

// SetOpenOutput overwrites the pending transition's output outright
// (rather than adding to it), used when lifting a common prefix onto the
// transition per §4.4 step (e).
func (n *BuilderNode) SetOpenOutput(v uint64) {
	n.openOut = v
}

// AddOutputPrefix pushes delta into every outgoing edge of n (its
// finalized transitions, its still-pending open transition if any, and
// its final output if it is final), preserving the total accumulated
// output along every path through n. Valid only while n is itself still
// unfinished — it mutates n's own stored fields, not any already-frozen
// child's on-disk bytes.
func (n *BuilderNode) AddOutputPrefix(delta uint64) {
	if delta == 0 {
		return
	}
	for i := range n.Transitions {
		n.Transitions[i].Out += delta
	}
	if n.hasOpen {
		n.openOut += delta
	}
	if n.IsFinal {
		n.FinalOutput += delta
	}
}

// Freeze copies n into an immutable Node ready for encoding. n must have no
// pending open transition (the caller resolves it first).
func (n *BuilderNode) Freeze() *Node {
	transitions := make([]Transition, len(n.Transitions))
	copy(transitions, n.Transitions)
	return &Node{
		IsFinal:     n.IsFinal,
		FinalOutput: n.FinalOutput,
		Transitions: transitions,
	}
}
