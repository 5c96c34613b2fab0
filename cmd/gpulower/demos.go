package main

import (
	"github.com/substratelabs/gpulower/gpu"
	"github.com/substratelabs/gpulower/interp"
	"github.com/substratelabs/gpulower/ir"
)

// demo is a built-in input program: a function in pre-lowering form,
// plus the host argument values to execute the lowered result with.
type demo struct {
	name     string
	describe string
	build    func() *ir.Func
	args     func() []any
}

func demos() []demo {
	return []demo{
		{
			name:     "streams",
			describe: "allocate, set, copy and synchronize on one stream",
			build:    buildStreamsDemo,
			args:     func() []any { return []any{interp.Token{}} },
		},
		{
			name:     "memory",
			describe: "memref views and allocations over a host buffer",
			build:    buildMemoryDemo,
			args:     func() []any { return []any{interp.NewHostBuffer(16), interp.Token{}} },
		},
		{
			name:     "events",
			describe: "cross-stream ordering with an event record and wait",
			build:    buildEventsDemo,
			args:     func() []any { return []any{interp.Token{}} },
		},
	}
}

func findDemo(name string) (demo, bool) {
	for _, d := range demos() {
		if d.name == name {
			return d, true
		}
	}
	return demo{}, false
}

// buildStreamsDemo returns a single-stream program. The constants
// between the device ops split it into several async regions.
func buildStreamsDemo() *ir.Func {
	f := ir.NewFunc("streams", ir.FuncType{
		Params:  []ir.Type{gpu.TokenType{}},
		Results: []ir.Type{gpu.StreamType{}},
	})
	entry := f.EntryBlock()
	token := entry.Argument(0)

	device := gpu.DeviceGet("CUDA", 0)
	context := gpu.ContextPrimary(device.Result(0))
	stream := gpu.StreamCreate(context.Result(0))
	allocator := gpu.AllocatorCreate(context.Result(0))
	size := gpu.ConstantU64(32)
	src := gpu.MemAllocate(allocator.Result(0), stream.Result(0), size.Result(0), token)
	dst := gpu.MemAllocate(allocator.Result(0), stream.Result(0), size.Result(0), token)
	value := gpu.ConstantU64(7)
	set := gpu.MemSet(src.Result(0), value.Result(0), stream.Result(0), token)
	copyOp := gpu.MemCopy(dst.Result(0), src.Result(0), stream.Result(0), set.Result(0))
	sync := gpu.StreamSynchronize(stream.Result(0), copyOp.Result(0))

	for _, op := range []*ir.Op{device, context, stream, allocator, size, src, dst, value, set, copyOp, sync} {
		entry.Append(op)
	}
	entry.Append(ir.Return(stream.Result(0)))
	return f
}

// buildMemoryDemo returns a program of memref ops over a buffer
// parameter: a whole-buffer view that folds away, a sub-range view that
// lowers to an explicit gpu view, and a scratch allocation.
func buildMemoryDemo() *ir.Func {
	f := ir.NewFunc("memory", ir.FuncType{
		Params:  []ir.Type{ir.MemRefType{Elem: ir.I8, Dims: []int64{16}}, gpu.TokenType{}},
		Results: []ir.Type{ir.MemRefType{Elem: ir.I8, Dims: []int64{4}}},
	})
	entry := f.EntryBlock()
	param := entry.Argument(0)

	zero := ir.ConstantIndex(0)
	whole := ir.View(param, zero.Result(0), nil, ir.MemRefType{Elem: ir.I8, Dims: []int64{16}})
	four := ir.ConstantIndex(4)
	window := ir.View(whole.Result(0), four.Result(0), nil, ir.MemRefType{Elem: ir.I8, Dims: []int64{4}})
	scratch := ir.Alloc(ir.MemRefType{Elem: ir.F32, Dims: []int64{8}})
	release := ir.Dealloc(scratch.Result(0))

	for _, op := range []*ir.Op{zero, whole, four, window, scratch, release} {
		entry.Append(op)
	}
	entry.Append(ir.Return(window.Result(0)))
	return f
}

// buildEventsDemo returns a two-stream program where the second stream
// waits on an event recorded on the first before copying.
func buildEventsDemo() *ir.Func {
	f := ir.NewFunc("events", ir.FuncType{
		Params:  []ir.Type{gpu.TokenType{}},
		Results: []ir.Type{gpu.BufferType{}},
	})
	entry := f.EntryBlock()
	token := entry.Argument(0)

	device := gpu.DeviceGet("CUDA", 0)
	context := gpu.ContextPrimary(device.Result(0))
	producer := gpu.StreamCreate(context.Result(0))
	consumer := gpu.StreamCreate(context.Result(0))
	allocator := gpu.AllocatorCreate(context.Result(0))
	size := gpu.ConstantU64(8)
	src := gpu.MemAllocate(allocator.Result(0), producer.Result(0), size.Result(0), token)
	dst := gpu.MemAllocate(allocator.Result(0), consumer.Result(0), size.Result(0), token)
	value := gpu.ConstantU64(1)
	set := gpu.MemSet(src.Result(0), value.Result(0), producer.Result(0), token)
	event := gpu.EventCreate(context.Result(0))
	record := gpu.EventRecord(event.Result(0), producer.Result(0), set.Result(0))
	wait := gpu.StreamWait(consumer.Result(0), event.Result(0), record.Result(0))
	copyOp := gpu.MemCopy(dst.Result(0), src.Result(0), consumer.Result(0), wait.Result(0))
	sync := gpu.StreamSynchronize(consumer.Result(0), copyOp.Result(0))

	for _, op := range []*ir.Op{device, context, producer, consumer, allocator, size, src, dst, value, set, event, record, wait, copyOp, sync} {
		entry.Append(op)
	}
	entry.Append(ir.Return(dst.Result(0)))
	return f
}
