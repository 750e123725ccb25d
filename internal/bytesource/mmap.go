package bytesource

import (
	"fmt"
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

// MmapSource is a Source backed by a memory-mapped file, giving zero-copy
// random access without reading the whole artifact into the heap. It
// mirrors the teacher's MmapReader: open, stat, map, and hand back slice
// views directly into the mapped region.
type MmapSource struct {
	file *os.File
	data mmap.MMap
}

// OpenMmapSource memory-maps the file at path read-only.
func OpenMmapSource(path string) (*MmapSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("bytesource: open %s: %w", path, err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("bytesource: stat %s: %w", path, err)
	}
	if stat.Size() == 0 {
		file.Close()
		return nil, fmt.Errorf("bytesource: %s is empty", path)
	}

	data, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("bytesource: mmap %s: %w", path, err)
	}

	return &MmapSource{file: file, data: data}, nil
}

// Close unmaps the file and closes the handle. Using the source (or any
// Source derived from it via Slice) after Close is undefined behavior, per
// the §4.1 contract and the memory-mapped-backing caveat in §5.
func (s *MmapSource) Close() error {
	var err error
	if s.data != nil {
		if unmapErr := s.data.Unmap(); unmapErr != nil {
			err = unmapErr
		}
		s.data = nil
	}
	if s.file != nil {
		if closeErr := s.file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		s.file = nil
	}
	return err
}

func (s *MmapSource) Len() int64 { return int64(len(s.data)) }

func (s *MmapSource) Slice(offset, length int64) (Source, error) {
	if offset < 0 || length < 0 || offset+length > int64(len(s.data)) {
		return nil, fmt.Errorf("bytesource: slice [%d, %d) out of range for len %d", offset, offset+length, len(s.data))
	}
	// Zero-copy: hand back a MemorySource view into the mapped bytes
	// rather than re-mapping. The mapping itself is only torn down by
	// Close on the owning MmapSource.
	return &MemorySource{data: s.data[offset : offset+length]}, nil
}

func (s *MmapSource) ReadAt(buf []byte, offset int64) error {
	if offset < 0 || offset+int64(len(buf)) > int64(len(s.data)) {
		return fmt.Errorf("bytesource: read [%d, %d) out of range for len %d", offset, offset+int64(len(buf)), len(s.data))
	}
	copy(buf, s.data[offset:offset+int64(len(buf))])
	return nil
}

func (s *MmapSource) Bytes() []byte { return s.data }
