package bytesource

import (
	"sync/atomic"
	"time"
)

// closer is satisfied by any Source that owns an OS resource (MmapSource);
// MemorySource doesn't need closing and is used as-is.
type closer interface {
	Close() error
}

// CachedSource provides lock-free hot-reload over a Source using
// atomic.Value for zero-lock concurrent access, generalized from the
// teacher's CachedMmapReader (which hard-coded *MmapReader) to any Source.
type CachedSource struct {
	current    atomic.Value // holds sourceHolder
	generation atomic.Uint64

	// gracePeriod delays closing the superseded source so readers that
	// grabbed it just before the swap can finish. Zero disables the
	// delay (closes immediately), useful in tests.
	gracePeriod time.Duration
}

// sourceHolder gives every value stored in CachedSource.current the same
// concrete type, as atomic.Value requires, whatever Source it carries.
type sourceHolder struct{ src Source }

// NewCachedSource creates an empty CachedSource. gracePeriod mirrors the
// teacher's hard-coded 5 * time.Second; callers needing deterministic test
// behavior should pass 0.
func NewCachedSource(gracePeriod time.Duration) *CachedSource {
	return &CachedSource{gracePeriod: gracePeriod}
}

// Swap installs newSource as the current source and schedules the
// previously current source (if any) to be closed after the grace period.
// Swap never blocks: readers that already called Get keep their own
// reference to the old source until they finish.
func (c *CachedSource) Swap(newSource Source) {
	old := c.current.Swap(sourceHolder{src: newSource})
	c.generation.Add(1)

	if old == nil {
		return
	}
	closable, ok := old.(sourceHolder).src.(closer)
	if !ok {
		return
	}

	if c.gracePeriod <= 0 {
		closable.Close()
		return
	}
	go func() {
		time.Sleep(c.gracePeriod)
		closable.Close()
	}()
}

// Get returns the current source, or nil if Swap has never been called.
func (c *CachedSource) Get() Source {
	val := c.current.Load()
	if val == nil {
		return nil
	}
	return val.(sourceHolder).src
}

// Generation returns the number of times Swap has been called, useful for
// monitoring and tests.
func (c *CachedSource) Generation() uint64 {
	return c.generation.Load()
}

// Close closes the current source, if any.
func (c *CachedSource) Close() error {
	src := c.Get()
	if src == nil {
		return nil
	}
	if closable, ok := src.(closer); ok {
		return closable.Close()
	}
	return nil
}
