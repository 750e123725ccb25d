package gofst

// Automaton is a user-supplied filter over key bytes that composes with
// FST traversal to restrict a stream to matching keys. S is the
// automaton's own opaque state type, which must be cheap to copy (Go
// values are copied by assignment, so a struct of small fields or an int
// works well; avoid putting anything expensive to copy in S).
//
// Grounded on the couchbase/vellum Automaton shape retrieved into this
// pack's other_examples/ (Start/Accept/IsMatch/CanMatch), expressed with a
// Go generic type parameter in place of an associated type.
type Automaton[S any] interface {
	// Start returns the initial state.
	Start() S

	// IsMatch reports terminal acceptance at the current state. Only
	// consulted at FST-final nodes — this library has no notion of a
	// match position within a key, only whole-key acceptance.
	IsMatch(s S) bool

	// CanMatch reports whether s can still lead to a match; it returns
	// false for a dead state, and the streaming walker prunes any subtree
	// reached through a dead state.
	CanMatch(s S) bool

	// Accept returns the state reached by consuming byte b from s.
	Accept(s S, b byte) S
}

// alwaysMatchState is AlwaysMatch's trivial unit state.
type alwaysMatchState struct{}

// alwaysMatchAutomaton matches every key; it's the automaton `Stream()`
// uses internally, equivalent to `Search(m, AlwaysMatch())`.
type alwaysMatchAutomaton struct{}

func (alwaysMatchAutomaton) Start() alwaysMatchState                       { return alwaysMatchState{} }
func (alwaysMatchAutomaton) IsMatch(alwaysMatchState) bool                 { return true }
func (alwaysMatchAutomaton) CanMatch(alwaysMatchState) bool                { return true }
func (alwaysMatchAutomaton) Accept(alwaysMatchState, byte) alwaysMatchState { return alwaysMatchState{} }

// AlwaysMatch is the identity automaton: every state matches and can
// match, so composing it with a stream is equivalent to no automaton at
// all. `Search(m, AlwaysMatch())` is required by §8 to behave exactly
// like `m.Stream()`.
func AlwaysMatch() Automaton[alwaysMatchState] {
	return alwaysMatchAutomaton{}
}

// startsWithAutomaton matches any key that has the given prefix.
type startsWithAutomaton struct {
	prefix []byte
}

// startsWithState tracks how many bytes of the prefix have matched so
// far; once it reaches len(prefix), the automaton has "escaped" into an
// always-match state (tracked via the done flag) for the remainder of the
// key, since a whole-key match only requires the prefix to have occurred
// at the start. dead marks a state reached after a byte diverged from the
// prefix — a terminal non-match, regardless of what bytes follow.
type startsWithState struct {
	matched int
	done    bool
	dead    bool
}

// StartsWith wraps prefix as an automaton matching exactly the keys that
// begin with it.
func StartsWith(prefix []byte) Automaton[startsWithState] {
	cp := make([]byte, len(prefix))
	copy(cp, prefix)
	return startsWithAutomaton{prefix: cp}
}

func (a startsWithAutomaton) Start() startsWithState {
	return startsWithState{done: len(a.prefix) == 0}
}

func (a startsWithAutomaton) IsMatch(s startsWithState) bool {
	return s.done
}

func (a startsWithAutomaton) CanMatch(s startsWithState) bool {
	return !s.dead
}

func (a startsWithAutomaton) Accept(s startsWithState, b byte) startsWithState {
	if s.dead || s.done {
		return s
	}
	if s.matched < len(a.prefix) && a.prefix[s.matched] == b {
		next := s.matched + 1
		return startsWithState{matched: next, done: next == len(a.prefix)}
	}
	return startsWithState{dead: true}
}

// complementAutomaton inverts IsMatch and reports CanMatch as always true:
// a dead state of the inner automaton rejects every extension, so the
// complement accepts all of them and no subtree can be pruned.
type complementAutomaton[S any] struct {
	inner Automaton[S]
}

// Complement wraps a to match exactly the keys a does not match.
func Complement[S any](a Automaton[S]) Automaton[S] {
	return complementAutomaton[S]{inner: a}
}

func (c complementAutomaton[S]) Start() S                 { return c.inner.Start() }
func (c complementAutomaton[S]) IsMatch(s S) bool          { return !c.inner.IsMatch(s) }
func (c complementAutomaton[S]) CanMatch(s S) bool         { return true }
func (c complementAutomaton[S]) Accept(s S, b byte) S      { return c.inner.Accept(s, b) }

// pairState is the product state used by Intersection and Union.
type pairState[A, B any] struct {
	A A
	B B
}

type intersectionAutomaton[A, B any] struct {
	a Automaton[A]
	b Automaton[B]
}

// Intersection wraps a and b to match exactly the keys both match.
func Intersection[A, B any](a Automaton[A], b Automaton[B]) Automaton[pairState[A, B]] {
	return intersectionAutomaton[A, B]{a: a, b: b}
}

func (i intersectionAutomaton[A, B]) Start() pairState[A, B] {
	return pairState[A, B]{A: i.a.Start(), B: i.b.Start()}
}
func (i intersectionAutomaton[A, B]) IsMatch(s pairState[A, B]) bool {
	return i.a.IsMatch(s.A) && i.b.IsMatch(s.B)
}
func (i intersectionAutomaton[A, B]) CanMatch(s pairState[A, B]) bool {
	return i.a.CanMatch(s.A) && i.b.CanMatch(s.B)
}
func (i intersectionAutomaton[A, B]) Accept(s pairState[A, B], byt byte) pairState[A, B] {
	return pairState[A, B]{A: i.a.Accept(s.A, byt), B: i.b.Accept(s.B, byt)}
}

type unionAutomaton[A, B any] struct {
	a Automaton[A]
	b Automaton[B]
}

// Union wraps a and b to match every key that either matches.
func Union[A, B any](a Automaton[A], b Automaton[B]) Automaton[pairState[A, B]] {
	return unionAutomaton[A, B]{a: a, b: b}
}

func (u unionAutomaton[A, B]) Start() pairState[A, B] {
	return pairState[A, B]{A: u.a.Start(), B: u.b.Start()}
}
func (u unionAutomaton[A, B]) IsMatch(s pairState[A, B]) bool {
	return u.a.IsMatch(s.A) || u.b.IsMatch(s.B)
}
func (u unionAutomaton[A, B]) CanMatch(s pairState[A, B]) bool {
	return u.a.CanMatch(s.A) || u.b.CanMatch(s.B)
}
func (u unionAutomaton[A, B]) Accept(s pairState[A, B], byt byte) pairState[A, B] {
	return pairState[A, B]{A: u.a.Accept(s.A, byt), B: u.b.Accept(s.B, byt)}
}
