package gpu

import "github.com/substratelabs/gpulower/ir"

// GPU dialect op kinds: the wire contract the lowering produces.
const (
	KindDeviceGet         = "gpu.device.get"
	KindContextPrimary    = "gpu.context.primary"
	KindContextCreate     = "gpu.context.create"
	KindStreamCreate      = "gpu.stream.create"
	KindStreamWait        = "gpu.stream.wait"
	KindStreamSynchronize = "gpu.stream.synchronize"
	KindEventCreate       = "gpu.event.create"
	KindEventRecord       = "gpu.event.record"
	KindEventSynchronize  = "gpu.event.synchronize"
	KindAllocatorCreate   = "gpu.allocator.create"
	KindMemAllocate       = "gpu.mem.allocate"
	KindMemAllocateHost   = "gpu.mem.allocate_host"
	KindMemDeallocate     = "gpu.mem.deallocate"
	KindMemCopy           = "gpu.mem.copy"
	KindMemSet            = "gpu.mem.set"
	KindMemRegister       = "gpu.mem.register"
	KindMemView           = "gpu.mem.view"
	KindModuleLoad        = "gpu.module.load"
	KindModuleGetGlobal   = "gpu.module.get_global"
	KindModuleGetFunction = "gpu.module.get_function"
	KindFunctionLaunch    = "gpu.function.launch"

	// Synchronous-on-current-stream allocation forms produced by the
	// memory rewriter; a later lowering stage adds asynchrony.
	KindAlloc   = "gpu.alloc"
	KindDealloc = "gpu.dealloc"

	// Conversion-internal ops.
	KindAsyncExecute   = "gpu.async.execute"
	KindAsyncYield     = "gpu.async.yield"
	KindConversionCast = "gpu.conversion.cast"

	// DNN binding ops, dispatched by name through the dnn kernel registry.
	KindDnnCreate                = "gpu.dnn.create"
	KindDnnCreatePoolingDesc     = "gpu.dnn.create_pooling_descriptor"
	KindDnnCreateTensorDesc      = "gpu.dnn.create_tensor_descriptor"
	KindDnnPoolingForward        = "gpu.dnn.pooling_forward"
	KindDnnPoolingBackward       = "gpu.dnn.pooling_backward"
	KindDnnConvForward           = "gpu.dnn.convolution_forward"
	KindDnnConvBackwardData      = "gpu.dnn.convolution_backward_data"
	KindDnnConvBackwardFilter    = "gpu.dnn.convolution_backward_filter"
	KindDnnConvBiasActivationFwd = "gpu.dnn.convolution_bias_activation_forward"
)

// DeviceGet builds gpu.device.get(platform, ordinal) -> device.
func DeviceGet(platform string, ordinal int64) *ir.Op {
	op := ir.NewOp(KindDeviceGet, nil, []ir.Type{DeviceType{}})
	op.SetAttr("platform", platform)
	op.SetAttr("ordinal", ordinal)
	return op
}

// ContextPrimary builds gpu.context.primary(device) -> context.
func ContextPrimary(device *ir.Value) *ir.Op {
	return ir.NewOp(KindContextPrimary, []*ir.Value{device}, []ir.Type{ContextType{}})
}

// ContextCreate builds gpu.context.create(device) -> context.
func ContextCreate(device *ir.Value) *ir.Op {
	return ir.NewOp(KindContextCreate, []*ir.Value{device}, []ir.Type{ContextType{}})
}

// StreamCreate builds gpu.stream.create(context) -> stream.
func StreamCreate(context *ir.Value) *ir.Op {
	return ir.NewOp(KindStreamCreate, []*ir.Value{context}, []ir.Type{StreamType{}})
}

// StreamWait builds gpu.stream.wait(stream, event, token) -> token.
// The stream delays subsequent work until the event has been reached.
func StreamWait(stream, event, token *ir.Value) *ir.Op {
	return ir.NewOp(KindStreamWait, []*ir.Value{stream, event, token}, []ir.Type{TokenType{}})
}

// StreamSynchronize builds gpu.stream.synchronize(stream, token) -> token.
// Blocks the host until all work enqueued on the stream has completed.
func StreamSynchronize(stream, token *ir.Value) *ir.Op {
	return ir.NewOp(KindStreamSynchronize, []*ir.Value{stream, token}, []ir.Type{TokenType{}})
}

// EventCreate builds gpu.event.create(context) -> event.
func EventCreate(context *ir.Value) *ir.Op {
	return ir.NewOp(KindEventCreate, []*ir.Value{context}, []ir.Type{EventType{}})
}

// EventRecord builds gpu.event.record(event, stream, token) -> token.
func EventRecord(event, stream, token *ir.Value) *ir.Op {
	return ir.NewOp(KindEventRecord, []*ir.Value{event, stream, token}, []ir.Type{TokenType{}})
}

// EventSynchronize builds gpu.event.synchronize(event, token) -> token.
// Blocks the host until work enqueued before the record point completes.
func EventSynchronize(event, token *ir.Value) *ir.Op {
	return ir.NewOp(KindEventSynchronize, []*ir.Value{event, token}, []ir.Type{TokenType{}})
}

// AllocatorCreate builds gpu.allocator.create(context) -> allocator.
func AllocatorCreate(context *ir.Value) *ir.Op {
	return ir.NewOp(KindAllocatorCreate, []*ir.Value{context}, []ir.Type{AllocatorType{}})
}

// MemAllocate builds gpu.mem.allocate(allocator, stream, size, token) -> buffer.
func MemAllocate(allocator, stream, size, token *ir.Value) *ir.Op {
	return ir.NewOp(KindMemAllocate, []*ir.Value{allocator, stream, size, token}, []ir.Type{BufferType{}})
}

// MemAllocateHost builds gpu.mem.allocate_host(context, size, token) -> buffer.
// The resulting host buffer must stay valid until the consuming stream is
// synchronized; this is a caller obligation, not enforced here.
func MemAllocateHost(context, size, token *ir.Value) *ir.Op {
	return ir.NewOp(KindMemAllocateHost, []*ir.Value{context, size, token}, []ir.Type{BufferType{}})
}

// MemDeallocate builds gpu.mem.deallocate(buffer, stream, token) -> token.
// Deallocation is causally ordered after the buffer's last use on the stream.
func MemDeallocate(buffer, stream, token *ir.Value) *ir.Op {
	return ir.NewOp(KindMemDeallocate, []*ir.Value{buffer, stream, token}, []ir.Type{TokenType{}})
}

// MemCopy builds gpu.mem.copy(dst, src, stream, token) -> token.
// dst and src may each be a device or host buffer; copying a buffer onto
// itself is a no-op.
func MemCopy(dst, src, stream, token *ir.Value) *ir.Op {
	return ir.NewOp(KindMemCopy, []*ir.Value{dst, src, stream, token}, []ir.Type{TokenType{}})
}

// MemSet builds gpu.mem.set(buffer, value, stream, token) -> token.
func MemSet(buffer, value, stream, token *ir.Value) *ir.Op {
	return ir.NewOp(KindMemSet, []*ir.Value{buffer, value, stream, token}, []ir.Type{TokenType{}})
}

// MemRegister builds gpu.mem.register(context, hostBuffer) -> buffer, a
// lifetime-extending wrapper around existing host memory.
func MemRegister(context, hostBuffer *ir.Value) *ir.Op {
	return ir.NewOp(KindMemRegister, []*ir.Value{context, hostBuffer}, []ir.Type{BufferType{}})
}

// MemView builds gpu.mem.view(buffer, offset, size) -> buffer. The view
// shares the source allocation; it never copies.
func MemView(buffer, offset, size *ir.Value) *ir.Op {
	return ir.NewOp(KindMemView, []*ir.Value{buffer, offset, size}, []ir.Type{BufferType{}})
}

// ModuleLoad builds gpu.module.load(context) -> module with the device
// code attached as a null-terminated data attribute.
func ModuleLoad(context *ir.Value, data []byte) *ir.Op {
	op := ir.NewOp(KindModuleLoad, []*ir.Value{context}, []ir.Type{ModuleType{}})
	if len(data) == 0 || data[len(data)-1] != 0 {
		data = append(append([]byte(nil), data...), 0)
	}
	op.SetAttr("data", data)
	return op
}

// ModuleGetGlobal builds gpu.module.get_global(module) -> buffer.
func ModuleGetGlobal(module *ir.Value, name string) *ir.Op {
	op := ir.NewOp(KindModuleGetGlobal, []*ir.Value{module}, []ir.Type{BufferType{}})
	op.SetAttr("name", name)
	return op
}

// ModuleGetFunction builds gpu.module.get_function(module) -> function.
func ModuleGetFunction(module *ir.Value, name string) *ir.Op {
	op := ir.NewOp(KindModuleGetFunction, []*ir.Value{module}, []ir.Type{FunctionType{}})
	op.SetAttr("name", name)
	return op
}

// FunctionLaunch builds gpu.function.launch. Operand layout:
// stream, function, grid x/y/z, block x/y/z, sharedMemBytes, token,
// then the variadic kernel arguments.
func FunctionLaunch(stream, function *ir.Value, grid, block [3]*ir.Value, sharedMemBytes, token *ir.Value, args ...*ir.Value) *ir.Op {
	operands := []*ir.Value{stream, function, grid[0], grid[1], grid[2], block[0], block[1], block[2], sharedMemBytes, token}
	operands = append(operands, args...)
	return ir.NewOp(KindFunctionLaunch, operands, []ir.Type{TokenType{}})
}

// Alloc builds gpu.alloc with no async dependencies and no dynamic
// sizes or symbol operands. The result keeps the generic buffer type;
// operand type conversion legalizes it later.
func Alloc(result ir.Type) *ir.Op {
	return ir.NewOp(KindAlloc, nil, []ir.Type{result})
}

// Dealloc builds gpu.dealloc with no async token and no dependencies.
func Dealloc(buffer *ir.Value) *ir.Op {
	return ir.NewOp(KindDealloc, []*ir.Value{buffer}, nil)
}

// ConversionCast builds a gpu.conversion.cast materializing a value of
// the given type at a conversion boundary.
func ConversionCast(value *ir.Value, result ir.Type) *ir.Op {
	return ir.NewOp(KindConversionCast, []*ir.Value{value}, []ir.Type{result})
}

// ConstantU64 builds an unsigned 64-bit arith.constant, the form used
// for byte offsets and sizes in the gpu dialect.
func ConstantU64(value uint64) *ir.Op {
	return ir.Constant(int64(value), ir.UI64)
}

// AsyncExecute builds an empty gpu.async.execute region op. The body
// block takes (token, stream) arguments and is created with a
// gpu.async.yield terminator publishing the incoming token, so an empty
// region is a complete no-op.
func AsyncExecute() *ir.Op {
	op := ir.NewOp(KindAsyncExecute, nil, nil)
	body := ir.NewBlock(TokenType{}, StreamType{})
	body.Append(ir.NewOp(KindAsyncYield, []*ir.Value{body.Argument(0)}, nil))
	op.AddRegion().AddBlock(body)
	return op
}

// Body returns the body block of a gpu.async.execute op.
func Body(exec *ir.Op) *ir.Block {
	return exec.Regions()[0].Blocks()[0]
}

// IsAsyncExecute reports whether op is a gpu.async.execute, tolerating nil.
func IsAsyncExecute(op *ir.Op) bool {
	return op != nil && op.Kind == KindAsyncExecute
}
