package gofst

import "testing"

func runAutomaton[S any](a Automaton[S], key []byte) (matched, canMatch bool) {
	s := a.Start()
	canMatch = a.CanMatch(s)
	for _, b := range key {
		if !canMatch {
			break
		}
		s = a.Accept(s, b)
		canMatch = a.CanMatch(s)
	}
	return a.IsMatch(s), canMatch
}

func TestAlwaysMatch(t *testing.T) {
	a := AlwaysMatch()
	for _, key := range [][]byte{nil, []byte("x"), []byte("anything")} {
		matched, canMatch := runAutomaton[alwaysMatchState](a, key)
		if !matched || !canMatch {
			t.Errorf("AlwaysMatch() on %q = (%v, %v), want (true, true)", key, matched, canMatch)
		}
	}
}

func TestStartsWith(t *testing.T) {
	a := StartsWith([]byte("ban"))
	tests := []struct {
		key         string
		wantMatch   bool
		wantCanGoOn bool
	}{
		{"ban", true, true},
		{"banana", true, true},
		{"ba", false, true},
		{"", false, true},
		{"cat", false, false},
		{"banX", true, true},
	}
	for _, tt := range tests {
		matched, canMatch := runAutomaton[startsWithState](a, []byte(tt.key))
		if matched != tt.wantMatch {
			t.Errorf("StartsWith(\"ban\") match on %q = %v, want %v", tt.key, matched, tt.wantMatch)
		}
		if canMatch != tt.wantCanGoOn {
			t.Errorf("StartsWith(\"ban\") canMatch on %q = %v, want %v", tt.key, canMatch, tt.wantCanGoOn)
		}
	}
}

func TestStartsWithDeadStateStaysDead(t *testing.T) {
	a := StartsWith([]byte("ab"))
	// Diverges on the second byte, then happens to replay bytes that would
	// coincidentally re-sync with the prefix; the dead state must not
	// resurrect into a match.
	matched, canMatch := runAutomaton[startsWithState](a, []byte("axab"))
	if matched {
		t.Errorf("StartsWith(\"ab\") matched %q, want false", "axab")
	}
	if canMatch {
		t.Errorf("StartsWith(\"ab\") canMatch on %q = true, want false (dead state)", "axab")
	}
}

func TestComplement(t *testing.T) {
	inner := StartsWith([]byte("a"))
	outer := Complement[startsWithState](inner)

	for _, key := range []string{"apple", "banana"} {
		innerMatch, _ := runAutomaton[startsWithState](inner, []byte(key))
		outerMatch, _ := runAutomaton[startsWithState](outer, []byte(key))
		if innerMatch == outerMatch {
			t.Errorf("Complement on %q: inner=%v outer=%v, want opposite", key, innerMatch, outerMatch)
		}
	}
}

func TestIntersectionAndUnion(t *testing.T) {
	a := StartsWith([]byte("ba"))
	b := StartsWith([]byte("ban"))

	inter := Intersection(a, b)
	union := Union(a, b)

	tests := []struct {
		key        string
		wantInter  bool
		wantUnion  bool
	}{
		{"banana", true, true},
		{"bat", false, true},
		{"cat", false, false},
	}
	for _, tt := range tests {
		gotInter, _ := runAutomaton[pairState[startsWithState, startsWithState]](inter, []byte(tt.key))
		if gotInter != tt.wantInter {
			t.Errorf("Intersection on %q = %v, want %v", tt.key, gotInter, tt.wantInter)
		}
		gotUnion, _ := runAutomaton[pairState[startsWithState, startsWithState]](union, []byte(tt.key))
		if gotUnion != tt.wantUnion {
			t.Errorf("Union on %q = %v, want %v", tt.key, gotUnion, tt.wantUnion)
		}
	}
}
