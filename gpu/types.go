package gpu

import "github.com/substratelabs/gpulower/ir"

// DeviceType is an opaque handle to a physical device.
type DeviceType struct{}

func (DeviceType) String() string { return "gpu.device" }

func (DeviceType) Same(o ir.Type) bool { _, ok := o.(DeviceType); return ok }

// ContextType is a driver context on a device.
type ContextType struct{}

func (ContextType) String() string { return "gpu.context" }

func (ContextType) Same(o ir.Type) bool { _, ok := o.(ContextType); return ok }

// StreamType is an ordered work queue on a device context. Ops that
// consume the same stream execute in enqueue order; cross-stream ordering
// requires an event record/wait pair.
type StreamType struct{}

func (StreamType) String() string { return "gpu.stream" }

func (StreamType) Same(o ir.Type) bool { _, ok := o.(StreamType); return ok }

// EventType is a marker recorded on a stream for cross-stream sync.
type EventType struct{}

func (EventType) String() string { return "gpu.event" }

func (EventType) Same(o ir.Type) bool { _, ok := o.(EventType); return ok }

// AllocatorType is a device memory allocator bound to a context.
type AllocatorType struct{}

func (AllocatorType) String() string { return "gpu.allocator" }

func (AllocatorType) Same(o ir.Type) bool { _, ok := o.(AllocatorType); return ok }

// BufferType is an opaque handle to a contiguous memory region, host or
// device. Views share the underlying allocation and never outlive it.
type BufferType struct{}

func (BufferType) String() string { return "gpu.buffer" }

func (BufferType) Same(o ir.Type) bool { _, ok := o.(BufferType); return ok }

// ModuleType is a loaded device code module.
type ModuleType struct{}

func (ModuleType) String() string { return "gpu.module" }

func (ModuleType) Same(o ir.Type) bool { _, ok := o.(ModuleType); return ok }

// FunctionType is a kernel function handle resolved from a module.
type FunctionType struct{}

func (FunctionType) String() string { return "gpu.function" }

func (FunctionType) Same(o ir.Type) bool { _, ok := o.(FunctionType); return ok }

// TokenType is the completion token (chain) threaded through async ops
// to establish a happens-before order. Exactly one token value is live
// per control-flow edge.
type TokenType struct{}

func (TokenType) String() string { return "gpu.token" }

func (TokenType) Same(o ir.Type) bool { _, ok := o.(TokenType); return ok }

// DnnHandleType is a handle into the vendor DNN library, bound to a stream.
type DnnHandleType struct{}

func (DnnHandleType) String() string { return "gpu.dnn.handle" }

func (DnnHandleType) Same(o ir.Type) bool { _, ok := o.(DnnHandleType); return ok }

// DnnPoolingDescType describes a pooling operation.
type DnnPoolingDescType struct{}

func (DnnPoolingDescType) String() string { return "gpu.dnn.pooling_desc" }

func (DnnPoolingDescType) Same(o ir.Type) bool { _, ok := o.(DnnPoolingDescType); return ok }

// DnnTensorDescType describes a tensor layout.
type DnnTensorDescType struct{}

func (DnnTensorDescType) String() string { return "gpu.dnn.tensor_desc" }

func (DnnTensorDescType) Same(o ir.Type) bool { _, ok := o.(DnnTensorDescType); return ok }
