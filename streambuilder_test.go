package gofst

import "testing"

func TestStreamBuilderGeIsInclusiveLtIsExclusive(t *testing.T) {
	m := buildFixtureMap(t)
	got := streamKeys(m.Range().Ge([]byte("bat")).Lt([]byte("cat")).IntoStream())
	want := []string{"bat", "bee"}
	if !equalStrings(got, want) {
		t.Errorf("Range(ge bat, lt cat) = %v, want %v", got, want)
	}
}

func TestStreamBuilderNoBoundsMatchesStream(t *testing.T) {
	m := buildFixtureMap(t)
	got := streamKeys(m.Range().IntoStream())
	want := streamKeys(m.Stream())
	if !equalStrings(got, want) {
		t.Errorf("Range() with no bounds = %v, want %v (same as Stream())", got, want)
	}
}

func TestStreamBuilderBoundCalledTwiceOverwrites(t *testing.T) {
	m := buildFixtureMap(t)
	b := m.Range().Ge([]byte("ant")).Ge([]byte("bat"))
	got := streamKeys(b.IntoStream())
	want := []string{"bat", "bee", "cat"}
	if !equalStrings(got, want) {
		t.Errorf("Ge called twice kept the first bound: got %v, want %v", got, want)
	}
}

func TestStreamBuilderBackwardFullRange(t *testing.T) {
	m := buildFixtureMap(t)
	got := streamKeys(m.Range().Backward().IntoStream())
	want := []string{"cat", "bee", "bat", "ape", "ant"}
	if !equalStrings(got, want) {
		t.Errorf("Range().Backward() = %v, want %v", got, want)
	}
}

func TestStreamBuilderEmptyRange(t *testing.T) {
	m := buildFixtureMap(t)
	got := streamKeys(m.Range().Ge([]byte("dog")).IntoStream())
	if len(got) != 0 {
		t.Errorf("Range(ge dog) on a map with no key >= dog: got %v, want empty", got)
	}
}

func TestStreamBuilderBackwardWithPrefixKeys(t *testing.T) {
	data := buildMap(t, []struct {
		key   string
		value uint64
	}{
		{"d", 1},
		{"da", 2},
	})
	m, err := Open(data, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer m.Close()

	got := streamKeys(m.Range().Backward().IntoStream())
	want := []string{"da", "d"}
	if !equalStrings(got, want) {
		t.Errorf("Range().Backward() on {d, da} = %v, want %v", got, want)
	}
}

func TestStreamBuilderBackwardWithEmptyKey(t *testing.T) {
	data := buildMap(t, []struct {
		key   string
		value uint64
	}{
		{"", 1},
		{"a", 2},
		{"ab", 3},
	})
	m, err := Open(data, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer m.Close()

	got := streamKeys(m.Range().Backward().IntoStream())
	want := []string{"ab", "a", ""}
	if !equalStrings(got, want) {
		t.Errorf("Range().Backward() on {\"\", a, ab} = %v, want %v", got, want)
	}
}
