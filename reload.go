package gofst

import (
	"sync/atomic"
	"time"

	"github.com/kaitu-io/gofst/internal/bytesource"
)

// reloadable is the shared hot-swap machinery behind ReloadableMap and
// ReloadableSet: an atomic, lock-free handle that lets a long-lived process
// replace the backing artifact (e.g. after a rebuild) without blocking
// streamers already working off a previous generation, generalized from
// the teacher's CachedMmapReader to gofst's Map/Set split.
type reloadable struct {
	cached *bytesource.CachedSource
	cur    atomic.Pointer[Map]
	cfg    *ReaderConfig
	kind   ArtifactKind
}

func newReloadable(path string, cfg *ReaderConfig, kind ArtifactKind, gracePeriod time.Duration) (*reloadable, error) {
	if cfg == nil {
		cfg = &ReaderConfig{ChecksumStrict: true}
	}
	r := &reloadable{cached: bytesource.NewCachedSource(gracePeriod), cfg: cfg, kind: kind}
	if err := r.reload(path); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *reloadable) reload(path string) error {
	src, err := bytesource.OpenMmapSource(path)
	if err != nil {
		return wrapError(KindIO, "open map file", err)
	}
	m, err := openKind(src, r.cfg, r.kind)
	if err != nil {
		src.Close()
		return err
	}
	r.cached.Swap(src)
	r.cur.Store(m)
	return nil
}

func (r *reloadable) current() *Map { return r.cur.Load() }

func (r *reloadable) close() error { return r.cached.Close() }

// ReloadableMap is a hot-swappable handle to a memory-mapped Map. Reload
// opens a freshly built artifact (typically at the same path, after a
// rebuild) and atomically publishes it; Current always returns the latest
// generation. The mapping superseded by a Reload is kept open for the
// configured grace period so streamers already reading it can finish.
// That holds when the new artifact replaces the file at path (for example
// by rename); the mapping is shared with the file, so rewriting the mapped
// file in place changes the bytes a superseded Map reads.
type ReloadableMap struct {
	r *reloadable
}

// NewReloadableMap opens path as a Map and wraps it for hot reload.
// gracePeriod is how long a superseded mapping is kept mapped after a
// Reload before it is closed; 0 closes it immediately. cfg may be nil, in
// which case checksum verification defaults to on, matching OpenFile.
func NewReloadableMap(path string, cfg *ReaderConfig, gracePeriod time.Duration) (*ReloadableMap, error) {
	r, err := newReloadable(path, cfg, KindMap, gracePeriod)
	if err != nil {
		return nil, err
	}
	return &ReloadableMap{r: r}, nil
}

// Reload opens path again and atomically replaces the current Map.
// Callers already holding a *Map from a previous Current() keep reading
// it undisturbed.
func (rm *ReloadableMap) Reload(path string) error { return rm.r.reload(path) }

// Current returns the latest generation's Map. Do not call Close on the
// returned Map directly; ReloadableMap owns its lifecycle.
func (rm *ReloadableMap) Current() *Map { return rm.r.current() }

// Close releases the current mapping. A superseded mapping still within
// its grace period is not released by Close; it is closed when its grace
// period ends.
func (rm *ReloadableMap) Close() error { return rm.r.close() }

// ReloadableSet is the Set analogue of ReloadableMap.
type ReloadableSet struct {
	r *reloadable
}

// NewReloadableSet opens path as a Set and wraps it for hot reload. See
// NewReloadableMap for the meaning of gracePeriod.
func NewReloadableSet(path string, cfg *ReaderConfig, gracePeriod time.Duration) (*ReloadableSet, error) {
	r, err := newReloadable(path, cfg, KindSet, gracePeriod)
	if err != nil {
		return nil, err
	}
	return &ReloadableSet{r: r}, nil
}

// Reload opens path again and atomically replaces the current Set.
func (rs *ReloadableSet) Reload(path string) error { return rs.r.reload(path) }

// Current returns the latest generation's Set. Do not call Close on the
// returned Set directly; ReloadableSet owns its lifecycle.
func (rs *ReloadableSet) Current() *Set { return &Set{m: rs.r.current()} }

// Close releases the current mapping. A superseded mapping still within
// its grace period is not released by Close; it is closed when its grace
// period ends.
func (rs *ReloadableSet) Close() error { return rs.r.close() }
