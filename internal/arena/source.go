package arena

import (
	"sync"
	"unsafe"

	"github.com/hupe1980/attrgraph/internal/mem"
	"github.com/hupe1980/attrgraph/internal/mmap"
)

// BlockSource obtains and releases the raw blocks an Arena carves up.
// Obtained blocks must be zeroed and aligned to at least Alignment bytes.
type BlockSource interface {
	Obtain(size int) ([]byte, error)
	Release(block []byte)
}

// MemoryAcquirer is consulted before every block is obtained.
// resource.Controller implements it.
type MemoryAcquirer interface {
	AcquireMemory(amount int64) error
	ReleaseMemory(amount int64)
}

// HeapSource obtains cache-line aligned blocks from the Go heap. Released
// blocks are left to the garbage collector.
type HeapSource struct{}

// Obtain implements BlockSource.
func (HeapSource) Obtain(size int) ([]byte, error) {
	return mem.AllocAligned(size, mem.CacheLine), nil
}

// Release implements BlockSource.
func (HeapSource) Release([]byte) {}

// MmapSource obtains blocks from anonymous memory mappings, outside the
// garbage collector's view. It is safe for concurrent use so several arenas
// may share one instance.
type MmapSource struct {
	mu       sync.Mutex
	mappings map[*byte]*mmap.Mapping
}

// NewMmapSource creates an empty MmapSource.
func NewMmapSource() *MmapSource {
	return &MmapSource{mappings: make(map[*byte]*mmap.Mapping)}
}

// Obtain implements BlockSource.
func (s *MmapSource) Obtain(size int) ([]byte, error) {
	m, err := mmap.MapAnon(size)
	if err != nil {
		return nil, err
	}

	data, err := m.Bytes()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.mappings[unsafe.SliceData(data)] = m
	s.mu.Unlock()

	return data[:size:size], nil
}

// Release implements BlockSource.
func (s *MmapSource) Release(block []byte) {
	if len(block) == 0 {
		return
	}

	key := unsafe.SliceData(block)

	s.mu.Lock()
	m, ok := s.mappings[key]
	delete(s.mappings, key)
	s.mu.Unlock()

	if ok {
		_ = m.Close()
	}
}

// Mapped returns the number of blocks currently mapped.
func (s *MmapSource) Mapped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.mappings)
}
