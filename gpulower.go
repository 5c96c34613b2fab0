package gpulower

import (
	"github.com/substratelabs/gpulower/errors"
)

// Buffer is a host-visible view of contiguous memory. Views returned by
// Slice share the backing storage of their parent; the parent must
// outlive every view derived from it.
type Buffer interface {
	// Bytes returns the backing storage. Mutations are visible through
	// every view of the same allocation.
	Bytes() []byte
	// Size returns the length in bytes.
	Size() uint64
	// Slice returns a view of [offset, offset+size) sharing the backing
	// storage.
	Slice(offset, size uint64) (Buffer, error)
}

// Allocator hands out buffers. Implementations decide the memory kind;
// the host allocator below backs buffers with plain byte slices.
type Allocator interface {
	Allocate(size uint64) (Buffer, error)
	Deallocate(b Buffer) error
}

// HostBuffer is a Buffer over a host byte slice.
type HostBuffer struct {
	data []byte
}

// NewHostBuffer allocates a zeroed host buffer.
func NewHostBuffer(size uint64) *HostBuffer {
	return &HostBuffer{data: make([]byte, size)}
}

// WrapHostBuffer wraps existing host memory without copying.
func WrapHostBuffer(data []byte) *HostBuffer {
	return &HostBuffer{data: data}
}

func (b *HostBuffer) Bytes() []byte { return b.data }

func (b *HostBuffer) Size() uint64 { return uint64(len(b.data)) }

// Slice returns an aliasing view; writes through the view are visible
// in the parent and vice versa.
func (b *HostBuffer) Slice(offset, size uint64) (Buffer, error) {
	if offset+size > uint64(len(b.data)) {
		return nil, errors.OutOfRange(errors.PhaseExec, "buffer view end", int(offset+size), len(b.data))
	}
	return &HostBuffer{data: b.data[offset : offset+size]}, nil
}

// HostAllocator is an Allocator over host memory.
type HostAllocator struct{}

func (HostAllocator) Allocate(size uint64) (Buffer, error) {
	return NewHostBuffer(size), nil
}

func (HostAllocator) Deallocate(Buffer) error { return nil }
