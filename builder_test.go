package gofst

import (
	"bytes"
	"errors"
	"testing"
)

func buildMap(t *testing.T, entries []struct {
	key   string
	value uint64
}) []byte {
	t.Helper()
	var buf bytes.Buffer
	b := NewMapBuilder(&buf, nil)
	for _, e := range entries {
		if err := b.Insert([]byte(e.key), Output(e.value)); err != nil {
			t.Fatalf("Insert(%q, %d): %v", e.key, e.value, err)
		}
	}
	if err := b.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	return buf.Bytes()
}

func TestBuilderEmpty(t *testing.T) {
	data := buildMap(t, nil)
	m, err := Open(data, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer m.Close()

	if m.Len() != 0 {
		t.Errorf("Len() = %d, want 0", m.Len())
	}
	if !m.IsEmpty() {
		t.Errorf("IsEmpty() = false, want true")
	}
	s := m.Stream()
	if s.Next() {
		t.Errorf("Stream().Next() on empty map: expected false")
	}
}

func TestBuilderSingleEmptyKey(t *testing.T) {
	data := buildMap(t, []struct {
		key   string
		value uint64
	}{{"", 77}})

	m, err := Open(data, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer m.Close()

	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
	v, ok := m.Get(nil)
	if !ok || v != 77 {
		t.Errorf("Get(\"\") = (%d, %v), want (77, true)", v, ok)
	}
}

func TestBuilderRoundTrip(t *testing.T) {
	entries := []struct {
		key   string
		value uint64
	}{
		{"app", 1},
		{"apple", 3},
		{"banana", 7},
		{"band", 42},
		{"banjo", 0},
		{"z", 0xFFFFFFFFFFFFFFFF},
	}
	data := buildMap(t, entries)

	m, err := Open(data, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer m.Close()

	if m.Len() != uint64(len(entries)) {
		t.Errorf("Len() = %d, want %d", m.Len(), len(entries))
	}

	want := map[string]uint64{}
	for _, e := range entries {
		want[e.key] = e.value
	}
	for key, v := range want {
		got, ok := m.Get([]byte(key))
		if !ok || uint64(got) != v {
			t.Errorf("Get(%q) = (%d, %v), want (%d, true)", key, got, ok, v)
		}
	}
	if m.ContainsKey([]byte("missing")) {
		t.Errorf("ContainsKey(\"missing\") = true, want false")
	}

	s := m.Stream()
	var gotKeys []string
	for s.Next() {
		gotKeys = append(gotKeys, string(s.Key()))
		if uint64(s.Value()) != want[string(s.Key())] {
			t.Errorf("Stream value for %q = %d, want %d", s.Key(), s.Value(), want[string(s.Key())])
		}
	}
	wantOrder := []string{"app", "apple", "banana", "band", "banjo", "z"}
	if len(gotKeys) != len(wantOrder) {
		t.Fatalf("Stream() yielded %d keys, want %d: %v", len(gotKeys), len(wantOrder), gotKeys)
	}
	for i := range wantOrder {
		if gotKeys[i] != wantOrder[i] {
			t.Errorf("Stream() order[%d] = %q, want %q (full: %v)", i, gotKeys[i], wantOrder[i], gotKeys)
		}
	}
}

func TestBuilderRejectsOutOfOrder(t *testing.T) {
	var buf bytes.Buffer
	b := NewMapBuilder(&buf, nil)
	if err := b.Insert([]byte("b"), 0); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	err := b.Insert([]byte("a"), 0)
	if !errors.Is(err, ErrOutOfOrder) {
		t.Errorf("Insert out-of-order: err = %v, want ErrOutOfOrder", err)
	}
	// The builder is poisoned: every subsequent call fails with the same error.
	if err2 := b.Insert([]byte("c"), 0); !errors.Is(err2, ErrOutOfOrder) {
		t.Errorf("Insert after poisoning: err = %v, want ErrOutOfOrder", err2)
	}
	if err3 := b.Finish(); !errors.Is(err3, ErrOutOfOrder) {
		t.Errorf("Finish after poisoning: err = %v, want ErrOutOfOrder", err3)
	}
}

func TestBuilderRejectsDuplicateKey(t *testing.T) {
	var buf bytes.Buffer
	b := NewMapBuilder(&buf, nil)
	if err := b.Insert([]byte("a"), 0); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	err := b.Insert([]byte("a"), 1)
	if !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("Insert duplicate: err = %v, want ErrDuplicateKey", err)
	}
}

func TestBuilderDeterministic(t *testing.T) {
	entries := []struct {
		key   string
		value uint64
	}{
		{"alpha", 1},
		{"alphabet", 2},
		{"beta", 3},
	}
	first := buildMap(t, entries)
	second := buildMap(t, entries)
	if !bytes.Equal(first, second) {
		t.Errorf("two builds of the same input produced different artifacts")
	}
}

func TestBuilderDeepSharedPrefix(t *testing.T) {
	prefix := bytes.Repeat([]byte{'x'}, 1500)
	var buf bytes.Buffer
	b := NewMapBuilder(&buf, nil)
	k1 := append(append([]byte{}, prefix...), 'a')
	k2 := append(append([]byte{}, prefix...), 'b')
	if err := b.Insert(k1, 1); err != nil {
		t.Fatalf("Insert k1: %v", err)
	}
	if err := b.Insert(k2, 2); err != nil {
		t.Fatalf("Insert k2: %v", err)
	}
	if err := b.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	m, err := Open(buf.Bytes(), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer m.Close()

	if v, ok := m.Get(k1); !ok || v != 1 {
		t.Errorf("Get(k1) = (%d, %v), want (1, true)", v, ok)
	}
	if v, ok := m.Get(k2); !ok || v != 2 {
		t.Errorf("Get(k2) = (%d, %v), want (2, true)", v, ok)
	}
}

func TestBuilderFullByteRangeAtDepthZero(t *testing.T) {
	var buf bytes.Buffer
	b := NewMapBuilder(&buf, nil)
	for i := 0; i < 256; i++ {
		if err := b.Insert([]byte{byte(i)}, Output(i)); err != nil {
			t.Fatalf("Insert(%d): %v", i, err)
		}
	}
	if err := b.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	m, err := Open(buf.Bytes(), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer m.Close()

	if m.Len() != 256 {
		t.Errorf("Len() = %d, want 256", m.Len())
	}
	for i := 0; i < 256; i++ {
		v, ok := m.Get([]byte{byte(i)})
		if !ok || uint64(v) != uint64(i) {
			t.Errorf("Get(%d) = (%d, %v), want (%d, true)", i, v, ok, i)
		}
	}
}
