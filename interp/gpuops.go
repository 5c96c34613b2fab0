package interp

import (
	"fmt"

	"github.com/substratelabs/gpulower"
	"github.com/substratelabs/gpulower/conversion"
	"github.com/substratelabs/gpulower/errors"
	"github.com/substratelabs/gpulower/gpu"
	"github.com/substratelabs/gpulower/ir"
)

// operand type accessors. Each reports a structured type mismatch
// naming the op when the bound value has the wrong dynamic type.

func operandAs[T any](op *ir.Op, args []any, i int) (T, error) {
	var zero T
	v, ok := args[i].(T)
	if !ok {
		return zero, errors.TypeMismatch(errors.PhaseExec, op.Kind,
			fmt.Sprintf("%T", zero), fmt.Sprintf("%T", args[i]))
	}
	return v, nil
}

func operandUint64(op *ir.Op, args []any, i int) (uint64, error) {
	switch v := args[i].(type) {
	case uint64:
		return v, nil
	case int64:
		return uint64(v), nil
	}
	return 0, errors.TypeMismatch(errors.PhaseExec, op.Kind, "integer", fmt.Sprintf("%T", args[i]))
}

// execGpuOp interprets one gpu dialect op.
func (in *Interp) execGpuOp(op *ir.Op, env frame) error {
	args, err := in.values(op, env)
	if err != nil {
		return err
	}

	switch op.Kind {
	case gpu.KindDeviceGet:
		platform, _ := op.StrAttr("platform")
		ordinal, _ := op.IntAttr("ordinal")
		env[op.Result(0)] = Device{Platform: platform, Ordinal: ordinal}
		return nil

	case gpu.KindContextPrimary, gpu.KindContextCreate:
		device, err := operandAs[Device](op, args, 0)
		if err != nil {
			return err
		}
		env[op.Result(0)] = &Context{Device: device}
		return nil

	case gpu.KindStreamCreate:
		ctx, err := operandAs[*Context](op, args, 0)
		if err != nil {
			return err
		}
		stream := &Stream{ctx: ctx}
		if in.ambientStream == nil {
			in.ambientStream = stream
		}
		env[op.Result(0)] = stream
		return nil

	case gpu.KindStreamSynchronize:
		stream, err := operandAs[*Stream](op, args, 0)
		if err != nil {
			return err
		}
		if err := stream.drain(); err != nil {
			return err
		}
		env[op.Result(0)] = in.newToken()
		return nil

	case gpu.KindStreamWait:
		stream, err := operandAs[*Stream](op, args, 0)
		if err != nil {
			return err
		}
		event, err := operandAs[*Event](op, args, 1)
		if err != nil {
			return err
		}
		stream.enqueue(op.Kind, func() error {
			if !event.recorded {
				return errors.InvalidInput(errors.PhaseExec, "wait on an unrecorded event")
			}
			return event.stream.drainTo(event.position)
		})
		env[op.Result(0)] = in.newToken()
		return nil

	case gpu.KindEventCreate:
		env[op.Result(0)] = &Event{}
		return nil

	case gpu.KindEventRecord:
		event, err := operandAs[*Event](op, args, 0)
		if err != nil {
			return err
		}
		stream, err := operandAs[*Stream](op, args, 1)
		if err != nil {
			return err
		}
		event.stream = stream
		event.position = stream.frontier()
		event.recorded = true
		env[op.Result(0)] = in.newToken()
		return nil

	case gpu.KindEventSynchronize:
		event, err := operandAs[*Event](op, args, 0)
		if err != nil {
			return err
		}
		if !event.recorded {
			return errors.InvalidInput(errors.PhaseExec, "synchronize on an unrecorded event")
		}
		if err := event.stream.drainTo(event.position); err != nil {
			return err
		}
		env[op.Result(0)] = in.newToken()
		return nil

	case gpu.KindAllocatorCreate:
		ctx, err := operandAs[*Context](op, args, 0)
		if err != nil {
			return err
		}
		env[op.Result(0)] = &Allocator{ctx: ctx, backing: gpulower.HostAllocator{}}
		return nil

	case gpu.KindMemAllocate:
		allocator, err := operandAs[*Allocator](op, args, 0)
		if err != nil {
			return err
		}
		size, err := operandUint64(op, args, 2)
		if err != nil {
			return err
		}
		buffer, err := allocator.allocate(size)
		if err != nil {
			return err
		}
		env[op.Result(0)] = buffer
		return nil

	case gpu.KindMemAllocateHost:
		size, err := operandUint64(op, args, 1)
		if err != nil {
			return err
		}
		env[op.Result(0)] = newBuffer(gpulower.NewHostBuffer(size), "host buffer")
		return nil

	case gpu.KindMemRegister:
		switch host := args[1].(type) {
		case *Buffer:
			env[op.Result(0)] = host
		case gpulower.Buffer:
			env[op.Result(0)] = newBuffer(host, "registered host buffer")
		default:
			return errors.TypeMismatch(errors.PhaseExec, op.Kind, "host buffer", fmt.Sprintf("%T", args[1]))
		}
		return nil

	case gpu.KindMemDeallocate:
		buffer, err := operandAs[*Buffer](op, args, 0)
		if err != nil {
			return err
		}
		stream, err := operandAs[*Stream](op, args, 1)
		if err != nil {
			return err
		}
		stream.enqueue(op.Kind, buffer.free)
		env[op.Result(0)] = in.newToken()
		return nil

	case gpu.KindMemCopy:
		dst, err := operandAs[*Buffer](op, args, 0)
		if err != nil {
			return err
		}
		src, err := operandAs[*Buffer](op, args, 1)
		if err != nil {
			return err
		}
		// Copying a buffer onto itself is a no-op; the token chain
		// threads through without enqueuing work.
		if dst == src {
			env[op.Result(0)] = in.newToken()
			return nil
		}
		stream, err := operandAs[*Stream](op, args, 2)
		if err != nil {
			return err
		}
		stream.enqueue(op.Kind, func() error {
			dstBytes, err := dst.Bytes()
			if err != nil {
				return err
			}
			srcBytes, err := src.Bytes()
			if err != nil {
				return err
			}
			if len(dstBytes) != len(srcBytes) {
				return errors.TypeMismatch(errors.PhaseExec, op.Kind,
					fmt.Sprintf("%d bytes", len(dstBytes)), fmt.Sprintf("%d bytes", len(srcBytes)))
			}
			copy(dstBytes, srcBytes)
			return nil
		})
		env[op.Result(0)] = in.newToken()
		return nil

	case gpu.KindMemSet:
		buffer, err := operandAs[*Buffer](op, args, 0)
		if err != nil {
			return err
		}
		value, err := operandUint64(op, args, 1)
		if err != nil {
			return err
		}
		stream, err := operandAs[*Stream](op, args, 2)
		if err != nil {
			return err
		}
		stream.enqueue(op.Kind, func() error {
			bytes, err := buffer.Bytes()
			if err != nil {
				return err
			}
			for i := range bytes {
				bytes[i] = byte(value)
			}
			return nil
		})
		env[op.Result(0)] = in.newToken()
		return nil

	case gpu.KindMemView:
		buffer, err := operandAs[*Buffer](op, args, 0)
		if err != nil {
			return err
		}
		offset, err := operandUint64(op, args, 1)
		if err != nil {
			return err
		}
		size, err := operandUint64(op, args, 2)
		if err != nil {
			return err
		}
		view, err := buffer.View(offset, size)
		if err != nil {
			return err
		}
		env[op.Result(0)] = view
		return nil

	case gpu.KindAlloc:
		size, err := conversion.TypeSizeBytes(op.Result(0).Type())
		if err != nil {
			return err
		}
		env[op.Result(0)] = newBuffer(gpulower.NewHostBuffer(size), "alloc")
		return nil

	case gpu.KindDealloc:
		buffer, err := operandAs[*Buffer](op, args, 0)
		if err != nil {
			return err
		}
		return buffer.free()

	case gpu.KindModuleLoad:
		ctx, err := operandAs[*Context](op, args, 0)
		if err != nil {
			return err
		}
		raw, _ := op.Attr("data")
		data, _ := raw.([]byte)
		env[op.Result(0)] = &Module{ctx: ctx, data: data}
		return nil

	case gpu.KindModuleGetGlobal:
		if _, err := operandAs[*Module](op, args, 0); err != nil {
			return err
		}
		name, _ := op.StrAttr("name")
		env[op.Result(0)] = newBuffer(gpulower.NewHostBuffer(8), "global "+name)
		return nil

	case gpu.KindModuleGetFunction:
		module, err := operandAs[*Module](op, args, 0)
		if err != nil {
			return err
		}
		name, _ := op.StrAttr("name")
		env[op.Result(0)] = &Function{module: module, name: name}
		return nil

	case gpu.KindFunctionLaunch:
		return in.execLaunch(op, args, env)
	}

	return errors.New(errors.PhaseExec, errors.KindNotFound).
		Op(op.Kind).
		Detail("no interpretation for op").
		Build()
}

// execLaunch enqueues a kernel launch on its stream. Kernel arguments
// are captured by value at enqueue time, matching submission semantics.
func (in *Interp) execLaunch(op *ir.Op, args []any, env frame) error {
	stream, err := operandAs[*Stream](op, args, 0)
	if err != nil {
		return err
	}
	fn, err := operandAs[*Function](op, args, 1)
	if err != nil {
		return err
	}
	var grid, block [3]uint64
	for i := 0; i < 3; i++ {
		if grid[i], err = operandUint64(op, args, 2+i); err != nil {
			return err
		}
		if block[i], err = operandUint64(op, args, 5+i); err != nil {
			return err
		}
	}
	shared, err := operandUint64(op, args, 8)
	if err != nil {
		return err
	}
	kernelArgs := append([]any(nil), args[10:]...)

	stream.enqueue(op.Kind, func() error {
		if in.cfg.Launch == nil {
			return nil
		}
		return in.cfg.Launch(fn, grid, block, shared, kernelArgs)
	})
	env[op.Result(0)] = in.newToken()
	return nil
}
