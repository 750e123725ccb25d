package fstnode

import (
	"fmt"
	"sort"
)

// EmptyFinalAddr is the address of the distinguished "empty final" node: a
// final node with no transitions and a zero final output. It is never
// written to the stream; builder addresses always start past the file
// header (magic + version), so a real node address is never 0, which lets
// decode treat address 0 as this synthetic sentinel.
const EmptyFinalAddr uint64 = 0

// Transition is one outgoing edge of a node: an input byte, an output
// increment accumulated when taking the edge, and the address of the
// destination node.
type Transition struct {
	Inp  byte
	Out  uint64
	Addr uint64
}

// Node is a decoded, immutable FST node: zero or more transitions ordered
// ascending by input byte, plus an optional final output.
type Node struct {
	IsFinal     bool
	FinalOutput uint64
	Transitions []Transition
}

// header bit layout (single byte):
//
//	bit 7      isFinal
//	bit 6      oneTransition (exactly one transition; count field omitted)
//	bits 5-4   addrWidth selector: 0->1, 1->2, 2->4, 3->8 bytes
//	bits 3-2   outputWidth selector: 0->0 (all zero, omitted), 1->1, 2->4, 3->8 bytes
//	bits 1-0   finalOutputWidth selector: same coding as outputWidth
const (
	headerFinalBit        = 1 << 7
	headerOneTransBit     = 1 << 6
	headerAddrWidthShift  = 4
	headerAddrWidthMask   = 0x3 << headerAddrWidthShift
	headerOutWidthShift   = 2
	headerOutWidthMask    = 0x3 << headerOutWidthShift
	headerFinalWidthShift = 0
	headerFinalWidthMask  = 0x3 << headerFinalWidthShift
)

func encodeFieldWidthCode(w fieldWidth) uint8 {
	switch w {
	case width0:
		return 0
	case width1:
		return 1
	case width4:
		return 2
	case width8:
		return 3
	}
	return 0
}

func decodeFieldWidth(code uint8) fieldWidth {
	switch code {
	case 0:
		return width0
	case 1:
		return width1
	case 2:
		return width4
	case 3:
		return width8
	}
	return width0
}

func encodeAddrWidthCode(w addrWidth) uint8 {
	switch w {
	case addrWidth1:
		return 0
	case addrWidth2:
		return 1
	case addrWidth4:
		return 2
	case addrWidth8:
		return 3
	}
	return 0
}

func decodeAddrWidth(code uint8) addrWidth {
	switch code {
	case 0:
		return addrWidth1
	case 1:
		return addrWidth2
	case 2:
		return addrWidth4
	case 3:
		return addrWidth8
	}
	return addrWidth1
}

// countFieldBytes is the fixed width of the explicit transition-count
// field. 2 bytes covers the full possible arity of a node (0-256 distinct
// byte values) without needing its own width selector.
const countFieldBytes = 2

// Encode serializes n as a frozen node, appending it to buf (which is
// assumed to already hold currentOffset bytes — i.e. len(buf) ==
// currentOffset on entry). It returns the node's address: the offset of
// its own last byte (the header), per the node-address convention in §3.
//
// Transitions must already be sorted ascending by Inp; Encode does not
// re-sort (the builder and registry are responsible for that invariant).
func Encode(buf []byte, n *Node, currentOffset uint64) ([]byte, uint64, error) {
	if !sort.SliceIsSorted(n.Transitions, func(i, j int) bool { return n.Transitions[i].Inp < n.Transitions[j].Inp }) {
		return nil, 0, fmt.Errorf("fstnode: transitions not sorted ascending by input byte")
	}
	for i := 1; i < len(n.Transitions); i++ {
		if n.Transitions[i].Inp == n.Transitions[i-1].Inp {
			return nil, 0, fmt.Errorf("fstnode: duplicate transition input byte 0x%02x", n.Transitions[i].Inp)
		}
	}

	count := len(n.Transitions)
	oneTransition := count == 1

	var maxOut uint64
	for _, t := range n.Transitions {
		if t.Out > maxOut {
			maxOut = t.Out
		}
	}
	outputWidth := fitsFieldWidth(maxOut)

	finalWidth := width0
	if n.IsFinal {
		finalWidth = fitsFieldWidth(n.FinalOutput)
	}

	countBytes := 0
	if !oneTransition {
		countBytes = countFieldBytes
	}
	finalBytes := finalWidth.bytes()

	// Pass 1: assume the widest address field to get an upper bound on
	// this node's length, hence an upper bound on its address.
	trialAddrWidth := addrWidth8
	recordSize := 1 + outputWidth.bytes() + trialAddrWidth.bytes()
	totalLen := 1 + finalBytes + countBytes + count*recordSize
	trialAddr := currentOffset + uint64(totalLen) - 1

	var maxDelta uint64
	for _, t := range n.Transitions {
		d := addrDelta(trialAddr, t.Addr)
		if d > maxDelta {
			maxDelta = d
		}
	}
	addrW := fitsAddrWidth(maxDelta)

	// Pass 2: addrW only ever shrinks the address relative to pass 1, so
	// deltas computed against the (smaller-or-equal) final address can
	// only shrink too; the width chosen above remains valid.
	recordSize = 1 + outputWidth.bytes() + addrW.bytes()
	totalLen = 1 + finalBytes + countBytes + count*recordSize
	addr := currentOffset + uint64(totalLen) - 1

	out := buf
	for _, t := range n.Transitions {
		rec := make([]byte, recordSize)
		rec[0] = t.Inp
		putUint(rec[1:1+outputWidth.bytes()], outputWidth.bytes(), t.Out)
		putUint(rec[1+outputWidth.bytes():], addrW.bytes(), addrDelta(addr, t.Addr))
		out = append(out, rec...)
	}
	if countBytes > 0 {
		cf := make([]byte, countFieldBytes)
		putUint(cf, countFieldBytes, uint64(count))
		out = append(out, cf...)
	}
	if finalBytes > 0 {
		ff := make([]byte, finalBytes)
		putUint(ff, finalBytes, n.FinalOutput)
		out = append(out, ff...)
	}

	header := uint8(0)
	if n.IsFinal {
		header |= headerFinalBit
	}
	if oneTransition {
		header |= headerOneTransBit
	}
	header |= encodeAddrWidthCode(addrW) << headerAddrWidthShift
	header |= encodeFieldWidthCode(outputWidth) << headerOutWidthShift
	header |= encodeFieldWidthCode(finalWidth) << headerFinalWidthShift
	out = append(out, header)

	if uint64(len(out)) != addr+1 {
		return nil, 0, fmt.Errorf("fstnode: internal length mismatch: wrote %d bytes, expected address %d+1", len(out), addr)
	}

	return out, addr, nil
}

// addrDelta computes the on-disk delta for a transition from nodeAddr to
// targetAddr. A delta of 0 is reserved to mean "target is the implicit
// empty-final node"; a real target can never produce it, since that would
// take a self-pointing transition, and in a well-formed DAG targets are
// always already-frozen, strictly earlier, addresses.
func addrDelta(nodeAddr, targetAddr uint64) uint64 {
	if targetAddr == EmptyFinalAddr {
		return 0
	}
	return nodeAddr - targetAddr
}

func resolveAddr(nodeAddr, delta uint64) uint64 {
	if delta == 0 {
		return EmptyFinalAddr
	}
	return nodeAddr - delta
}

// layout describes where each field of a node lives in the byte stream,
// computed once from the header byte so both Decode and FindTransition can
// avoid re-deriving it.
type layout struct {
	addrW       addrWidth
	outputW     fieldWidth
	finalW      fieldWidth
	isFinal     bool
	oneTrans    bool
	count       int
	recordSize  int
	recordsBase uint64 // offset of transition record 0
}

func readLayout(data []byte, addr uint64) (layout, error) {
	if addr >= uint64(len(data)) {
		return layout{}, fmt.Errorf("fstnode: address %d out of range for %d-byte stream", addr, len(data))
	}
	header := data[addr]
	l := layout{
		isFinal:  header&headerFinalBit != 0,
		oneTrans: header&headerOneTransBit != 0,
		addrW:    decodeAddrWidth(uint8(header&headerAddrWidthMask) >> headerAddrWidthShift),
		outputW:  decodeFieldWidth(uint8(header&headerOutWidthMask) >> headerOutWidthShift),
		finalW:   decodeFieldWidth(uint8(header&headerFinalWidthMask) >> headerFinalWidthShift),
	}

	cursor := addr // offset of the next field to read, scanning backward
	finalBytes := uint64(0)
	if l.isFinal {
		finalBytes = uint64(l.finalW.bytes())
	}
	if cursor < finalBytes {
		return layout{}, fmt.Errorf("fstnode: truncated node at address %d", addr)
	}
	cursor -= finalBytes

	if l.oneTrans {
		l.count = 1
	} else {
		if cursor < countFieldBytes {
			return layout{}, fmt.Errorf("fstnode: truncated node count at address %d", addr)
		}
		cursor -= countFieldBytes
		l.count = int(getUint(data[cursor:cursor+countFieldBytes], countFieldBytes))
	}

	l.recordSize = 1 + l.outputW.bytes() + l.addrW.bytes()
	recordsLen := uint64(l.count * l.recordSize)
	if cursor < recordsLen {
		return layout{}, fmt.Errorf("fstnode: truncated transition records at address %d", addr)
	}
	l.recordsBase = cursor - recordsLen

	return l, nil
}

func (l layout) finalOutput(data []byte, addr uint64) uint64 {
	if !l.isFinal || l.finalW.bytes() == 0 {
		return 0
	}
	start := addr - uint64(l.finalW.bytes())
	return getUint(data[start:addr], l.finalW.bytes())
}

func (l layout) transitionAt(data []byte, addr uint64, i int) Transition {
	off := l.recordsBase + uint64(i*l.recordSize)
	inp := data[off]
	out := getUint(data[off+1:off+1+uint64(l.outputW.bytes())], l.outputW.bytes())
	addrOff := off + 1 + uint64(l.outputW.bytes())
	delta := getUint(data[addrOff:addrOff+uint64(l.addrW.bytes())], l.addrW.bytes())
	return Transition{Inp: inp, Out: out, Addr: resolveAddr(addr, delta)}
}

// Decode fully materializes the node at addr. Used by streaming, where the
// whole ordered transition list is needed anyway.
func Decode(data []byte, addr uint64) (*Node, error) {
	if addr == EmptyFinalAddr {
		return &Node{IsFinal: true}, nil
	}
	l, err := readLayout(data, addr)
	if err != nil {
		return nil, err
	}
	n := &Node{
		IsFinal:     l.isFinal,
		FinalOutput: l.finalOutput(data, addr),
		Transitions: make([]Transition, l.count),
	}
	for i := 0; i < l.count; i++ {
		n.Transitions[i] = l.transitionAt(data, addr, i)
	}
	return n, nil
}

// FindTransition resolves only the transition for byte b via binary search
// over the node's fixed-stride record table, without materializing the
// rest of the node — the lazy point-lookup path called out in §4.3.
func FindTransition(data []byte, addr uint64, b byte) (Transition, bool, error) {
	idx, found, err := TransitionIndex(data, addr, b)
	if err != nil || !found {
		return Transition{}, false, err
	}
	l, err := readLayout(data, addr)
	if err != nil {
		return Transition{}, false, err
	}
	return l.transitionAt(data, addr, idx), true, nil
}

// TransitionIndex binary-searches the node at addr for the transition
// labeled b. If found, idx is its index and found is true. If not found,
// idx is the insertion point: the index of the first transition whose
// input byte is greater than b (possibly equal to the transition count, if
// b is greater than every transition in the node). This lets streaming
// seeks resume correctly even when the exact byte they sought isn't
// present.
func TransitionIndex(data []byte, addr uint64, b byte) (int, bool, error) {
	if addr == EmptyFinalAddr {
		return 0, false, nil
	}
	l, err := readLayout(data, addr)
	if err != nil {
		return 0, false, err
	}
	lo, hi := 0, l.count-1
	for lo <= hi {
		mid := (lo + hi) / 2
		t := l.transitionAt(data, addr, mid)
		switch {
		case t.Inp == b:
			return mid, true, nil
		case t.Inp < b:
			lo = mid + 1
		default:
			hi = mid - 1
		}
	}
	return lo, false, nil
}

// IsFinalNode reports whether the node at addr is final, and its final
// output, without materializing transitions.
func IsFinalNode(data []byte, addr uint64) (bool, uint64, error) {
	if addr == EmptyFinalAddr {
		return true, 0, nil
	}
	l, err := readLayout(data, addr)
	if err != nil {
		return false, 0, err
	}
	return l.isFinal, l.finalOutput(data, addr), nil
}

// NumTransitions reports the number of outgoing transitions of the node at
// addr without materializing them.
func NumTransitions(data []byte, addr uint64) (int, error) {
	if addr == EmptyFinalAddr {
		return 0, nil
	}
	l, err := readLayout(data, addr)
	if err != nil {
		return 0, err
	}
	return l.count, nil
}

// TransitionAt returns the i'th transition (ascending order) of the node
// at addr without materializing the others.
func TransitionAt(data []byte, addr uint64, i int) (Transition, error) {
	if addr == EmptyFinalAddr {
		return Transition{}, fmt.Errorf("fstnode: empty-final node has no transitions")
	}
	l, err := readLayout(data, addr)
	if err != nil {
		return Transition{}, err
	}
	if i < 0 || i >= l.count {
		return Transition{}, fmt.Errorf("fstnode: transition index %d out of range [0,%d)", i, l.count)
	}
	return l.transitionAt(data, addr, i), nil
}
