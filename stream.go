package gofst

import "bytes"

// Stream is a pull-based, single-owner iteration handle over (key, value)
// pairs in ascending or descending key order. It yields borrowed items:
// the []byte returned by Key is only valid until the next call to Next,
// per the streaming-with-lifetimes design note in §9 — callers that need
// to retain a key past the next Next() must copy it.
//
// Not safe for concurrent Next calls on the same instance (§5).
type Stream interface {
	// Next advances to the next pair and reports whether one exists. It
	// must be called once before the first Key/Value.
	Next() bool

	// Key returns the current key. Valid only until the next Next call.
	Key() []byte

	// Value returns the current value.
	Value() Output
}

// frame is one level of the explicit traversal stack. Kept as a flat
// struct-of-slices on *walker rather than a recursive call, per §9's
// "open recursion ... must be expressed as an explicit stack" note —
// FSTs can be thousands of bytes deep.
type frame[S any] struct {
	addr   uint64
	// cursor indexes the transition most recently taken (or skipped);
	// the next one tried is cursor+1 for forward and cursor-1 for
	// backward. It starts at -1 (forward) or numTr (backward).
	cursor int
	numTr  int
	autSt  S

	// finalDone marks that this frame's own final value has already been
	// tested (and yielded, if eligible) in backward traversal. Backward
	// order visits a node's children before the node itself, so that test
	// happens once its last child is exhausted, not on entry.
	finalDone bool
}

// walker is the generic depth-first streamer shared by Stream/Range/Search
// (they differ only in bounds and automaton). Structurally grounded on the
// couchbase/vellum FSTIterator retrieved into other_examples/: parallel
// stacks of (node, key-byte-so-far, accumulated output, automaton state),
// a one-time descent-based seek, and resumable next() driven by the last
// consumed transition offset.
type walker[S any] struct {
	data []byte
	aut  Automaton[S]

	ge []byte // lower bound, inclusive; nil means unbounded
	lt []byte // upper bound, exclusive; nil means unbounded
	backward bool

	frames  []frame[S]
	keyBuf  []byte
	valBuf  []Output

	started bool
	done    bool

	curKey []byte
	curVal Output
}

func newWalker[S any](data []byte, rootAddr uint64, aut Automaton[S], ge, lt []byte, backward bool) *walker[S] {
	w := &walker[S]{data: data, aut: aut, ge: ge, lt: lt, backward: backward}
	w.seed(rootAddr)
	return w
}

// seed pushes the root frame and, if a bound applies in the traversal
// direction, descends along it exactly once (the "one-time seek" in §4.7),
// so the first yield lands at or just past the bound.
func (w *walker[S]) seed(rootAddr uint64) {
	n, err := numTransitionsOrZero(w.data, rootAddr)
	if err != nil {
		w.done = true
		return
	}
	w.frames = append(w.frames, frame[S]{addr: rootAddr, cursor: w.startCursor(n), numTr: n, autSt: w.aut.Start()})

	seekKey := w.ge
	if w.backward {
		seekKey = w.lt
	}
	if len(seekKey) == 0 {
		return
	}
	w.descendTo(seekKey)
}

func numTransitionsOrZero(data []byte, addr uint64) (int, error) {
	return numTransitionsImpl(data, addr)
}

func (w *walker[S]) startCursor(numTr int) int {
	if w.backward {
		return numTr
	}
	return -1
}

// descendTo walks from the current (root) frame along key as far as
// matching transitions exist, pushing a frame per byte consumed — the
// shape of vellum's pointTo. It does not itself decide whether the
// resulting position should be yielded; next() is always called
// afterwards to normalize onto a real match.
func (w *walker[S]) descendTo(key []byte) {
	for _, b := range key {
		top := &w.frames[len(w.frames)-1]
		t, found, err := findTransitionImpl(w.data, top.addr, b)
		if err != nil || !found {
			// Position the cursor just before (forward) or after
			// (backward) where b would have sorted, so the
			// subsequent scan in next() resumes correctly.
			idx, _ := transitionInsertIndex(w.data, top.addr, b)
			if w.backward {
				top.cursor = idx
			} else {
				top.cursor = idx - 1
			}
			return
		}

		autNext := w.aut.Accept(top.autSt, b)
		nextNumTr, _ := numTransitionsOrZero(w.data, t.Addr)
		w.keyBuf = append(w.keyBuf, b)
		w.valBuf = append(w.valBuf, Output(t.Out))

		pos, _ := transitionIndexOf(w.data, top.addr, b)
		top.cursor = pos

		w.frames = append(w.frames, frame[S]{addr: t.Addr, cursor: w.startCursor(nextNumTr), numTr: nextNumTr, autSt: autNext})
	}
}

// Next advances the walker to the next yieldable (key, value, state) in
// the configured order, honoring bounds and automaton pruning. It is the
// single engine behind forward streaming, backward streaming, and
// resuming after a seek.
func (w *walker[S]) Next() bool {
	if w.done {
		return false
	}

	// On the very first call after a seek that already landed on a
	// valid, in-bounds, matching position, yield it directly. Only valid
	// in forward (pre-order) traversal: backward is post-order, so the
	// landed node's own value must wait until its children are exhausted
	// (handled below, in the main loop).
	if !w.started {
		w.started = true
		if !w.backward && w.currentIsYieldable() {
			w.setCurrent()
			return true
		}
	}

	for len(w.frames) > 0 {
		top := &w.frames[len(w.frames)-1]

		advanced := false
		for {
			next := top.cursor + w.step()
			if next < 0 || next >= top.numTr {
				break
			}
			top.cursor = next

			t, err := transitionAtImpl(w.data, top.addr, next)
			if err != nil {
				w.done = true
				return false
			}
			autNext := w.aut.Accept(top.autSt, t.Inp)
			if !w.aut.CanMatch(autNext) {
				continue
			}

			w.keyBuf = append(w.keyBuf, t.Inp)
			w.valBuf = append(w.valBuf, Output(t.Out))
			if w.overLT() {
				w.keyBuf = w.keyBuf[:len(w.keyBuf)-1]
				w.valBuf = w.valBuf[:len(w.valBuf)-1]
				if !w.backward {
					w.done = true
					return false
				}
				continue
			}

			nextNumTr, err := numTransitionsOrZero(w.data, t.Addr)
			if err != nil {
				w.done = true
				return false
			}
			w.frames = append(w.frames, frame[S]{addr: t.Addr, cursor: w.startCursor(nextNumTr), numTr: nextNumTr, autSt: autNext})
			advanced = true
			break
		}

		if advanced {
			// Forward is pre-order: a node's own key always sorts before
			// any of its children's, so yield on entry. Backward defers
			// to the post-order check below instead.
			if !w.backward && w.currentIsYieldable() {
				w.setCurrent()
				return true
			}
			continue
		}

		// No more transitions at this level. In backward (post-order)
		// traversal, this is where the node's own final value, if any,
		// sorts: after every descending child, before the node is popped.
		if w.backward && !top.finalDone {
			top.finalDone = true
			if w.currentIsYieldable() {
				w.setCurrent()
				return true
			}
		}

		// Pop, unless it's the root.
		if len(w.frames) == 1 {
			break
		}
		w.frames = w.frames[:len(w.frames)-1]
		w.keyBuf = w.keyBuf[:len(w.keyBuf)-1]
		w.valBuf = w.valBuf[:len(w.valBuf)-1]
	}

	w.done = true
	return false
}

func (w *walker[S]) step() int {
	if w.backward {
		return -1
	}
	return 1
}

func (w *walker[S]) currentIsYieldable() bool {
	top := w.frames[len(w.frames)-1]
	final, _, err := isFinalImpl(w.data, top.addr)
	if err != nil || !final {
		return false
	}
	if !w.aut.IsMatch(top.autSt) {
		return false
	}
	if len(w.ge) > 0 && bytes.Compare(w.keyBuf, w.ge) < 0 {
		return false
	}
	return !w.overLT()
}

func (w *walker[S]) overLT() bool {
	return len(w.lt) > 0 && bytes.Compare(w.keyBuf, w.lt) >= 0
}

func (w *walker[S]) setCurrent() {
	w.curKey = append(w.curKey[:0], w.keyBuf...)
	var total Output
	for _, v := range w.valBuf {
		total = total.Add(v)
	}
	top := w.frames[len(w.frames)-1]
	_, finalOut, _ := isFinalImpl(w.data, top.addr)
	total = total.Add(Output(finalOut))
	w.curVal = total
}

func (w *walker[S]) Key() []byte   { return w.curKey }
func (w *walker[S]) Value() Output { return w.curVal }
