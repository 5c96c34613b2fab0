package gpu

import (
	"github.com/substratelabs/gpulower/errors"
	"github.com/substratelabs/gpulower/ir"
)

// opSignature describes the fixed operand and result types of a gpu op.
// A nil entry skips the type check for that slot (used for polymorphic
// operands such as mem.set values). Variadic ops set variadic.
type opSignature struct {
	operands []ir.Type
	results  []ir.Type
	variadic bool
}

var signatures = map[string]opSignature{
	KindDeviceGet:         {results: []ir.Type{DeviceType{}}},
	KindContextPrimary:    {operands: []ir.Type{DeviceType{}}, results: []ir.Type{ContextType{}}},
	KindContextCreate:     {operands: []ir.Type{DeviceType{}}, results: []ir.Type{ContextType{}}},
	KindStreamCreate:      {operands: []ir.Type{ContextType{}}, results: []ir.Type{StreamType{}}},
	KindStreamWait:        {operands: []ir.Type{StreamType{}, EventType{}, TokenType{}}, results: []ir.Type{TokenType{}}},
	KindStreamSynchronize: {operands: []ir.Type{StreamType{}, TokenType{}}, results: []ir.Type{TokenType{}}},
	KindEventCreate:       {operands: []ir.Type{ContextType{}}, results: []ir.Type{EventType{}}},
	KindEventRecord:       {operands: []ir.Type{EventType{}, StreamType{}, TokenType{}}, results: []ir.Type{TokenType{}}},
	KindEventSynchronize:  {operands: []ir.Type{EventType{}, TokenType{}}, results: []ir.Type{TokenType{}}},
	KindAllocatorCreate:   {operands: []ir.Type{ContextType{}}, results: []ir.Type{AllocatorType{}}},
	KindMemAllocate:       {operands: []ir.Type{AllocatorType{}, StreamType{}, ir.UI64, TokenType{}}, results: []ir.Type{BufferType{}}},
	KindMemAllocateHost:   {operands: []ir.Type{ContextType{}, ir.UI64, TokenType{}}, results: []ir.Type{BufferType{}}},
	KindMemDeallocate:     {operands: []ir.Type{BufferType{}, StreamType{}, TokenType{}}, results: []ir.Type{TokenType{}}},
	KindMemCopy:           {operands: []ir.Type{BufferType{}, BufferType{}, StreamType{}, TokenType{}}, results: []ir.Type{TokenType{}}},
	KindMemSet:            {operands: []ir.Type{BufferType{}, nil, StreamType{}, TokenType{}}, results: []ir.Type{TokenType{}}},
	KindMemRegister:       {operands: []ir.Type{ContextType{}, nil}, results: []ir.Type{BufferType{}}},
	KindMemView:           {operands: []ir.Type{BufferType{}, ir.UI64, ir.UI64}, results: []ir.Type{BufferType{}}},
	KindModuleLoad:        {operands: []ir.Type{ContextType{}}, results: []ir.Type{ModuleType{}}},
	KindModuleGetGlobal:   {operands: []ir.Type{ModuleType{}}, results: []ir.Type{BufferType{}}},
	KindModuleGetFunction: {operands: []ir.Type{ModuleType{}}, results: []ir.Type{FunctionType{}}},
	KindFunctionLaunch: {
		operands: []ir.Type{StreamType{}, FunctionType{}, ir.UI64, ir.UI64, ir.UI64, ir.UI64, ir.UI64, ir.UI64, nil, TokenType{}},
		results:  []ir.Type{TokenType{}},
		variadic: true,
	},
	KindDealloc:    {operands: []ir.Type{nil}},
	KindAsyncYield: {operands: []ir.Type{TokenType{}}},
}

// Verify checks a gpu dialect op against its signature. Ops of other
// dialects are accepted unchanged.
func Verify(op *ir.Op) error {
	if op.Kind == KindAsyncExecute {
		return verifyAsyncExecute(op)
	}

	sig, ok := signatures[op.Kind]
	if !ok {
		return nil
	}

	if sig.variadic {
		if op.NumOperands() < len(sig.operands) {
			return errors.New(errors.PhaseVerify, errors.KindInvalidIR).
				Op(op.Kind).
				Detail("expected at least %d operands, got %d", len(sig.operands), op.NumOperands()).
				Build()
		}
	} else if op.NumOperands() != len(sig.operands) {
		return errors.New(errors.PhaseVerify, errors.KindInvalidIR).
			Op(op.Kind).
			Detail("expected %d operands, got %d", len(sig.operands), op.NumOperands()).
			Build()
	}

	for i, want := range sig.operands {
		if want == nil {
			continue
		}
		if got := op.Operand(i).Type(); !got.Same(want) {
			return errors.TypeMismatch(errors.PhaseVerify, op.Kind, want.String(), got.String())
		}
	}

	if op.NumResults() != len(sig.results) {
		return errors.New(errors.PhaseVerify, errors.KindInvalidIR).
			Op(op.Kind).
			Detail("expected %d results, got %d", len(sig.results), op.NumResults()).
			Build()
	}
	for i, want := range sig.results {
		if got := op.Result(i).Type(); !got.Same(want) {
			return errors.TypeMismatch(errors.PhaseVerify, op.Kind, want.String(), got.String())
		}
	}
	return nil
}

// verifyAsyncExecute checks the async region contract: one body block
// taking (token, stream) arguments, terminated by gpu.async.yield with a
// single token operand.
func verifyAsyncExecute(op *ir.Op) error {
	if len(op.Regions()) != 1 || len(op.Regions()[0].Blocks()) != 1 {
		return errors.InvalidIR(errors.PhaseVerify, op.Kind, "expected exactly one body block")
	}
	body := Body(op)

	args := body.Arguments()
	if len(args) != 2 || !args[0].Type().Same(TokenType{}) || !args[1].Type().Same(StreamType{}) {
		return errors.InvalidIR(errors.PhaseVerify, op.Kind, "body must take (token, stream) arguments")
	}

	term := body.Terminator()
	if term == nil || term.Kind != KindAsyncYield {
		return errors.InvalidIR(errors.PhaseVerify, op.Kind, "body must end in gpu.async.yield")
	}
	if term.NumOperands() != 1 || !term.Operand(0).Type().Same(TokenType{}) {
		return errors.InvalidIR(errors.PhaseVerify, KindAsyncYield, "terminator must carry exactly one token operand")
	}
	return nil
}

// VerifyFunc verifies every gpu op in the function.
func VerifyFunc(f *ir.Func) error {
	var firstErr error
	f.WalkOps(func(op *ir.Op) {
		if firstErr == nil {
			firstErr = Verify(op)
		}
	})
	return firstErr
}
