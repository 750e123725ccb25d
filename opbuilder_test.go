package gofst

import "testing"

func buildMapFor(t *testing.T, entries map[string]uint64) *Map {
	t.Helper()
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	// simple insertion sort to keep the test self-contained
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}

	var list []struct {
		key   string
		value uint64
	}
	for _, k := range keys {
		list = append(list, struct {
			key   string
			value uint64
		}{k, entries[k]})
	}
	data := buildMap(t, list)
	m, err := Open(data, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func opKeys(s OpStream) []string {
	var out []string
	for s.Next() {
		out = append(out, string(s.Key()))
	}
	return out
}

func TestOpUnion(t *testing.T) {
	a := buildMapFor(t, map[string]uint64{"x": 1, "y": 2})
	b := buildMapFor(t, map[string]uint64{"y": 20, "z": 3})

	got := opKeys(NewOpBuilder().Add(a.Stream()).Add(b.Stream()).Union())
	want := []string{"x", "y", "z"}
	if !equalStrings(got, want) {
		t.Errorf("Union() = %v, want %v", got, want)
	}
}

func TestOpUnionCommutative(t *testing.T) {
	a := buildMapFor(t, map[string]uint64{"x": 1, "y": 2})
	b := buildMapFor(t, map[string]uint64{"y": 20, "z": 3})

	ab := opKeys(NewOpBuilder().Add(a.Stream()).Add(b.Stream()).Union())
	ba := opKeys(NewOpBuilder().Add(b.Stream()).Add(a.Stream()).Union())
	if !equalStrings(ab, ba) {
		t.Errorf("Union(A,B) = %v, Union(B,A) = %v, want equal as key sets", ab, ba)
	}
}

func TestOpIntersection(t *testing.T) {
	a := buildMapFor(t, map[string]uint64{"x": 1, "y": 2})
	b := buildMapFor(t, map[string]uint64{"y": 20, "z": 3})

	got := opKeys(NewOpBuilder().Add(a.Stream()).Add(b.Stream()).Intersection())
	want := []string{"y"}
	if !equalStrings(got, want) {
		t.Errorf("Intersection() = %v, want %v", got, want)
	}
}

func TestOpIntersectionSelfIsIdentity(t *testing.T) {
	a := buildMapFor(t, map[string]uint64{"x": 1, "y": 2})
	a2 := buildMapFor(t, map[string]uint64{"x": 1, "y": 2})

	got := opKeys(NewOpBuilder().Add(a.Stream()).Add(a2.Stream()).Intersection())
	want := []string{"x", "y"}
	if !equalStrings(got, want) {
		t.Errorf("Intersection(A,A) = %v, want %v", got, want)
	}
}

func TestOpDifference(t *testing.T) {
	a := buildMapFor(t, map[string]uint64{"x": 1, "y": 2})
	b := buildMapFor(t, map[string]uint64{"y": 20, "z": 3})

	s := NewOpBuilder().Add(a.Stream()).Add(b.Stream()).Difference()
	var got []string
	for s.Next() {
		got = append(got, string(s.Key()))
		vals := s.Values()
		if len(vals) != 1 || vals[0].Index != 0 {
			t.Errorf("Difference() bundle for %q = %+v, want exactly index 0", s.Key(), vals)
		}
	}
	want := []string{"x"}
	if !equalStrings(got, want) {
		t.Errorf("Difference() = %v, want %v", got, want)
	}
}

func TestOpSymmetricDifference(t *testing.T) {
	a := buildMapFor(t, map[string]uint64{"x": 1, "y": 2})
	b := buildMapFor(t, map[string]uint64{"y": 20, "z": 3})

	got := opKeys(NewOpBuilder().Add(a.Stream()).Add(b.Stream()).SymmetricDifference())
	want := []string{"x", "z"}
	if !equalStrings(got, want) {
		t.Errorf("SymmetricDifference() = %v, want %v", got, want)
	}
}

func TestOpSetLaws(t *testing.T) {
	a := buildMapFor(t, map[string]uint64{"x": 1, "y": 2, "w": 9})
	b := buildMapFor(t, map[string]uint64{"y": 20, "z": 3})

	union := opKeys(NewOpBuilder().Add(a.Stream()).Add(b.Stream()).Union())
	inter := opKeys(NewOpBuilder().Add(a.Stream()).Add(b.Stream()).Intersection())
	symdiff := opKeys(NewOpBuilder().Add(a.Stream()).Add(b.Stream()).SymmetricDifference())
	diff := opKeys(NewOpBuilder().Add(a.Stream()).Add(b.Stream()).Difference())

	// symdiff(A,B) = union(A,B) \ intersection(A,B)
	interSet := map[string]bool{}
	for _, k := range inter {
		interSet[k] = true
	}
	var unionMinusInter []string
	for _, k := range union {
		if !interSet[k] {
			unionMinusInter = append(unionMinusInter, k)
		}
	}
	if !equalStrings(symdiff, unionMinusInter) {
		t.Errorf("symdiff = %v, union\\intersection = %v, want equal", symdiff, unionMinusInter)
	}

	// difference(A,B) ∪ intersection(A,B) = A, as key sets
	combined := append(append([]string{}, diff...), inter...)
	for i := 1; i < len(combined); i++ {
		for j := i; j > 0 && combined[j-1] > combined[j]; j-- {
			combined[j-1], combined[j] = combined[j], combined[j-1]
		}
	}
	wantA := []string{"w", "x", "y"}
	if !equalStrings(combined, wantA) {
		t.Errorf("difference ∪ intersection = %v, want A's keys %v", combined, wantA)
	}
}
