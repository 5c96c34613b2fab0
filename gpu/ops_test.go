package gpu

import (
	"testing"

	"github.com/substratelabs/gpulower/ir"
)

// TestAsyncExecuteShape tests the freshly built region op contract.
func TestAsyncExecuteShape(t *testing.T) {
	exec := AsyncExecute()

	if err := Verify(exec); err != nil {
		t.Fatalf("Verify(AsyncExecute()) = %v", err)
	}

	body := Body(exec)
	if got := len(body.Arguments()); got != 2 {
		t.Fatalf("body arguments = %d, want 2", got)
	}
	if !body.Argument(1).Type().Same(StreamType{}) {
		t.Errorf("body argument 1 = %s, want gpu.stream", body.Argument(1).Type())
	}

	term := body.Terminator()
	if term.Kind != KindAsyncYield {
		t.Fatalf("terminator = %s, want %s", term.Kind, KindAsyncYield)
	}
	// An empty region yields its incoming token unchanged.
	if term.Operand(0) != body.Argument(0) {
		t.Errorf("fresh region does not yield the incoming token")
	}
}

// TestBuilderResultTypes tests that builders produce correctly typed results.
func TestBuilderResultTypes(t *testing.T) {
	device := DeviceGet("CUDA", 0)
	context := ContextPrimary(device.Result(0))
	stream := StreamCreate(context.Result(0))
	allocator := AllocatorCreate(context.Result(0))

	tests := []struct {
		name string
		op   *ir.Op
		want ir.Type
	}{
		{"device.get", device, DeviceType{}},
		{"context.primary", context, ContextType{}},
		{"stream.create", stream, StreamType{}},
		{"allocator.create", allocator, AllocatorType{}},
	}
	for _, tt := range tests {
		if got := tt.op.Result(0).Type(); !got.Same(tt.want) {
			t.Errorf("%s result type = %s, want %s", tt.name, got, tt.want)
		}
		if err := Verify(tt.op); err != nil {
			t.Errorf("Verify(%s) = %v", tt.name, err)
		}
	}
}

// TestVerifyOperandTypes tests signature type checking.
func TestVerifyOperandTypes(t *testing.T) {
	device := DeviceGet("CUDA", 0)

	// stream.create over a device instead of a context must fail.
	bad := ir.NewOp(KindStreamCreate, []*ir.Value{device.Result(0)}, []ir.Type{StreamType{}})
	if err := Verify(bad); err == nil {
		t.Errorf("Verify accepted stream.create(device)")
	}
}

// TestVerifyOperandCount tests arity checking.
func TestVerifyOperandCount(t *testing.T) {
	bad := ir.NewOp(KindStreamSynchronize, nil, []ir.Type{TokenType{}})
	if err := Verify(bad); err == nil {
		t.Errorf("Verify accepted stream.synchronize with no operands")
	}
}

// TestVerifyNonDialectOp tests that foreign ops pass through.
func TestVerifyNonDialectOp(t *testing.T) {
	op := ir.NewOp("memref.view", nil, nil)
	if err := Verify(op); err != nil {
		t.Errorf("Verify(foreign op) = %v, want nil", err)
	}
}

// TestModuleLoadNullTerminated tests that module data is null-terminated.
func TestModuleLoadNullTerminated(t *testing.T) {
	context := ContextPrimary(DeviceGet("CUDA", 0).Result(0))
	load := ModuleLoad(context.Result(0), []byte("ptx"))

	raw, ok := load.Attr("data")
	if !ok {
		t.Fatalf("module.load has no data attribute")
	}
	data := raw.([]byte)
	if len(data) == 0 || data[len(data)-1] != 0 {
		t.Errorf("module data %q not null-terminated", data)
	}

	// Already terminated data is not double-terminated.
	load2 := ModuleLoad(context.Result(0), []byte{'p', 0})
	raw2, _ := load2.Attr("data")
	if got := raw2.([]byte); len(got) != 2 {
		t.Errorf("pre-terminated data length = %d, want 2", len(got))
	}
}

// TestFunctionLaunchVariadic tests launch operand layout and verification.
func TestFunctionLaunchVariadic(t *testing.T) {
	context := ContextPrimary(DeviceGet("CUDA", 0).Result(0))
	stream := StreamCreate(context.Result(0))
	module := ModuleLoad(context.Result(0), []byte("ptx"))
	fn := ModuleGetFunction(module.Result(0), "kernel")

	one := ConstantU64(1)
	shared := ConstantU64(0)
	token := ir.NewOp("test.token", nil, []ir.Type{TokenType{}})
	arg := ir.NewOp("test.buffer", nil, []ir.Type{BufferType{}})

	launch := FunctionLaunch(
		stream.Result(0), fn.Result(0),
		[3]*ir.Value{one.Result(0), one.Result(0), one.Result(0)},
		[3]*ir.Value{one.Result(0), one.Result(0), one.Result(0)},
		shared.Result(0), token.Result(0),
		arg.Result(0),
	)

	if err := Verify(launch); err != nil {
		t.Fatalf("Verify(launch) = %v", err)
	}
	if got := launch.NumOperands(); got != 11 {
		t.Errorf("launch operands = %d, want 11", got)
	}
	if !launch.Result(0).Type().Same(TokenType{}) {
		t.Errorf("launch result = %s, want token", launch.Result(0).Type())
	}
}
