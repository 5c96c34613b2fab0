package interp

import (
	"go.uber.org/zap"

	"github.com/substratelabs/gpulower/dnn"
	"github.com/substratelabs/gpulower/errors"
	"github.com/substratelabs/gpulower/gpu"
	"github.com/substratelabs/gpulower/ir"
)

// LaunchFunc executes a kernel launch on the host. The interpreter
// calls it from inside the owning stream's work queue.
type LaunchFunc func(fn *Function, grid, block [3]uint64, sharedMemBytes uint64, args []any) error

// Config configures an interpreter.
type Config struct {
	// Module resolves func.call callees. Optional.
	Module *ir.Module
	// Binding and Registry enable dnn op dispatch. Optional together.
	Binding  *dnn.Binding
	Registry *dnn.Registry
	// Launch handles gpu.function.launch work items. Nil launches are
	// accepted and do nothing, which suffices for ordering tests.
	Launch LaunchFunc
	Logger *zap.Logger
}

// Interp executes lowered programs on the host: streams are in-memory
// FIFO queues, buffers are byte slices with aliasing views, and tokens
// are opaque ordering values. It validates the target program's
// semantics without a device.
type Interp struct {
	cfg Config
	log *zap.Logger

	nextToken     int
	ambientStream *Stream
	lastChain     any
}

// New creates an interpreter.
func New(cfg Config) *Interp {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Interp{cfg: cfg, log: log}
}

// frame holds the SSA value bindings of one function activation.
type frame map[*ir.Value]any

func (in *Interp) newToken() Token {
	in.nextToken++
	return Token{id: in.nextToken}
}

// defaultStream returns the stream bound to async region bodies: the
// first stream the program created, or an implicit one.
func (in *Interp) defaultStream() *Stream {
	if in.ambientStream == nil {
		in.ambientStream = &Stream{}
	}
	return in.ambientStream
}

// Exec runs a function with the given argument values, returning the
// values of its return op.
func (in *Interp) Exec(f *ir.Func, args ...any) ([]any, error) {
	entry := f.EntryBlock()
	if len(args) != len(entry.Arguments()) {
		return nil, errors.New(errors.PhaseExec, errors.KindInvalidInput).
			Detail("function %s takes %d arguments, got %d", f.Name, len(entry.Arguments()), len(args)).
			Build()
	}
	in.log.Debug("executing function", zap.String("func", f.Name))
	env := make(frame)
	for i, arg := range entry.Arguments() {
		env[arg] = args[i]
	}
	return in.execBlock(entry, env)
}

// execBlock runs a block's ops in order. It returns the operands of
// the block's func.return, or nil for terminator-less region bodies.
func (in *Interp) execBlock(b *ir.Block, env frame) ([]any, error) {
	for _, op := range b.Ops() {
		if op.Kind == ir.KindFuncReturn {
			return in.values(op, env)
		}
		if err := in.execOp(op, env); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

// values evaluates an op's operands against the frame.
func (in *Interp) values(op *ir.Op, env frame) ([]any, error) {
	out := make([]any, op.NumOperands())
	for i, v := range op.Operands() {
		bound, ok := env[v]
		if !ok {
			return nil, errors.InvalidIR(errors.PhaseExec, op.Kind, "operand has no bound value")
		}
		out[i] = bound
	}
	return out, nil
}

func (in *Interp) execOp(op *ir.Op, env frame) error {
	switch op.Kind {
	case gpu.KindAsyncExecute:
		return in.execAsyncRegion(op, env)
	case ir.KindConstant:
		value, _ := op.IntAttr("value")
		env[op.Result(0)] = value
		return nil
	case ir.KindFuncCall:
		return in.execCall(op, env)
	case gpu.KindConversionCast:
		args, err := in.values(op, env)
		if err != nil {
			return err
		}
		env[op.Result(0)] = args[0]
		return nil
	}

	if k, ok := in.lookupDnnKernel(op.Kind); ok {
		args, err := in.values(op, env)
		if err != nil {
			return err
		}
		// Kernels take raw buffer payloads, not the interpreter's
		// lifetime-tracked wrappers.
		for i, a := range args {
			if buf, ok := a.(*Buffer); ok {
				if args[i], err = buf.Data(); err != nil {
					return err
				}
			}
		}
		results, err := k(in.cfg.Binding, args)
		if err != nil {
			return err
		}
		for i, r := range op.Results() {
			env[r] = results[i]
		}
		return nil
	}

	return in.execGpuOp(op, env)
}

func (in *Interp) lookupDnnKernel(kind string) (dnn.Kernel, bool) {
	if in.cfg.Registry == nil || in.cfg.Binding == nil {
		return nil, false
	}
	return in.cfg.Registry.Lookup(kind)
}

// execAsyncRegion runs a region body with the ambient token and the
// default stream bound to its arguments, then records the token the
// yield publishes.
func (in *Interp) execAsyncRegion(op *ir.Op, env frame) error {
	body := gpu.Body(op)
	env[body.Argument(0)] = in.newToken()
	env[body.Argument(1)] = in.defaultStream()

	for _, inner := range body.Ops() {
		if inner.Kind == gpu.KindAsyncYield {
			published, err := in.values(inner, env)
			if err != nil {
				return err
			}
			in.lastChain = published[0]
			return nil
		}
		if err := in.execOp(inner, env); err != nil {
			return err
		}
	}
	return errors.InvalidIR(errors.PhaseExec, op.Kind, "region body has no yield")
}

func (in *Interp) execCall(op *ir.Op, env frame) error {
	callee, _ := op.StrAttr("callee")
	if in.cfg.Module == nil {
		return errors.NotFound(errors.PhaseExec, "callee", callee)
	}
	target := in.cfg.Module.Func(callee)
	if target == nil {
		return errors.NotFound(errors.PhaseExec, "callee", callee)
	}
	args, err := in.values(op, env)
	if err != nil {
		return err
	}
	results, err := in.Exec(target, args...)
	if err != nil {
		return err
	}
	if len(results) < op.NumResults() {
		return errors.InvalidIR(errors.PhaseExec, op.Kind, "callee returned too few values")
	}
	for i, r := range op.Results() {
		env[r] = results[i]
	}
	return nil
}
