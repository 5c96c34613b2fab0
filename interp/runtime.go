package interp

import (
	"fmt"

	"github.com/substratelabs/gpulower"
	"github.com/substratelabs/gpulower/errors"
)

// Device identifies a simulated device.
type Device struct {
	Platform string
	Ordinal  int64
}

// Context is a simulated device context.
type Context struct {
	Device Device
}

// Token is a completion token value. Tokens are opaque ordering edges;
// the interpreter mints a fresh one whenever an op publishes a token.
type Token struct {
	id int
}

func (t Token) String() string { return fmt.Sprintf("token#%d", t.id) }

// workItem is one enqueued unit of stream work. Execution happens at
// drain time, so lifetime violations surface exactly where a real
// device would observe them: when the stream runs, not when the host
// enqueued.
type workItem struct {
	describe string
	run      func() error
}

// Stream is a FIFO work queue. Enqueued items execute in order, only
// when the stream is drained by a synchronize (or up to a recorded
// event's position).
type Stream struct {
	ctx      *Context
	pending  []workItem
	executed int // items completed across drains
}

// enqueue appends a work item, preserving enqueue order.
func (s *Stream) enqueue(describe string, run func() error) {
	s.pending = append(s.pending, workItem{describe: describe, run: run})
}

// frontier returns the current enqueue position, counted from stream
// creation.
func (s *Stream) frontier() int {
	return s.executed + len(s.pending)
}

// drainTo executes pending items until the given frontier position.
func (s *Stream) drainTo(position int) error {
	for s.executed < position && len(s.pending) > 0 {
		item := s.pending[0]
		s.pending = s.pending[1:]
		s.executed++
		if err := item.run(); err != nil {
			return errors.Wrap(errors.PhaseExec, errors.KindInvalidInput, err,
				"stream work item "+item.describe+" failed")
		}
	}
	return nil
}

// drain executes everything currently enqueued.
func (s *Stream) drain() error {
	return s.drainTo(s.frontier())
}

// Event marks a position on a stream. Synchronizing the event drains
// the stream up to the recorded position only.
type Event struct {
	stream   *Stream
	position int
	recorded bool
}

// allocation is the shared lifetime state behind a buffer and all of
// its views.
type allocation struct {
	freed bool
}

// Buffer is a simulated device or host buffer: host bytes plus shared
// lifetime state. Views alias the parent's storage and its allocation,
// so freeing through any alias invalidates all of them.
type Buffer struct {
	data  gpulower.Buffer
	alloc *allocation
	label string
}

func newBuffer(data gpulower.Buffer, label string) *Buffer {
	return &Buffer{data: data, alloc: &allocation{}, label: label}
}

// NewHostBuffer creates a zero-filled buffer for passing host data into
// Exec as a function argument.
func NewHostBuffer(size uint64) *Buffer {
	return newBuffer(gpulower.NewHostBuffer(size), "host buffer")
}

// Bytes returns the backing storage, flagging use after free.
func (b *Buffer) Bytes() ([]byte, error) {
	if b.alloc.freed {
		return nil, errors.UseAfterFree(b.label)
	}
	return b.data.Bytes(), nil
}

// Size returns the buffer length in bytes.
func (b *Buffer) Size() uint64 { return b.data.Size() }

// Data returns the backing host buffer, flagging use after free. Kernel
// bindings that take a raw buffer payload receive this.
func (b *Buffer) Data() (gpulower.Buffer, error) {
	if b.alloc.freed {
		return nil, errors.UseAfterFree(b.label)
	}
	return b.data, nil
}

// View returns an aliasing sub-range buffer sharing lifetime state.
func (b *Buffer) View(offset, size uint64) (*Buffer, error) {
	if b.alloc.freed {
		return nil, errors.UseAfterFree(b.label)
	}
	slice, err := b.data.Slice(offset, size)
	if err != nil {
		return nil, err
	}
	return &Buffer{data: slice, alloc: b.alloc, label: b.label + " view"}, nil
}

// free marks the allocation dead for the buffer and every view of it.
func (b *Buffer) free() error {
	if b.alloc.freed {
		return errors.UseAfterFree(b.label)
	}
	b.alloc.freed = true
	return nil
}

// Allocator hands out simulated buffers backed by host memory.
type Allocator struct {
	ctx     *Context
	backing gpulower.Allocator
	next    int
}

func (a *Allocator) allocate(size uint64) (*Buffer, error) {
	data, err := a.backing.Allocate(size)
	if err != nil {
		return nil, errors.AllocationFailed(errors.PhaseExec, size)
	}
	a.next++
	return newBuffer(data, fmt.Sprintf("buffer#%d", a.next)), nil
}

// Module is loaded device code; functions are resolved by name.
type Module struct {
	ctx  *Context
	data []byte
}

// Function is a launchable kernel reference.
type Function struct {
	module *Module
	name   string
}
