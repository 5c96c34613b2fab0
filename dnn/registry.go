package dnn

import (
	"fmt"

	"github.com/substratelabs/gpulower"
	"github.com/substratelabs/gpulower/errors"
	"github.com/substratelabs/gpulower/gpu"
)

// Chain is the completion value published by kernels that only signal
// ordering; it is the host-side stand-in for a gpu token result.
type Chain struct{}

// Kernel executes one dnn op against evaluated operand values and
// returns its result values in op result order.
type Kernel func(b *Binding, args []any) ([]any, error)

// Registry maps op kinds to kernels. The interpreter dispatches dnn
// ops through it by kind name.
type Registry struct {
	kernels map[string]Kernel
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{kernels: make(map[string]Kernel)}
}

// Register adds a kernel under an op kind, replacing any previous one.
func (r *Registry) Register(kind string, k Kernel) {
	r.kernels[kind] = k
}

// Lookup returns the kernel registered for an op kind.
func (r *Registry) Lookup(kind string) (Kernel, bool) {
	k, ok := r.kernels[kind]
	return k, ok
}

// WithChain wraps a kernel that produces no values into one that
// publishes a completion chain as its single result.
func WithChain(k func(b *Binding, args []any) error) Kernel {
	return func(b *Binding, args []any) ([]any, error) {
		if err := k(b, args); err != nil {
			return nil, err
		}
		return []any{Chain{}}, nil
	}
}

// argAt extracts a typed operand value with a descriptive failure.
func argAt[T any](args []any, i int) (T, error) {
	var zero T
	if i >= len(args) {
		return zero, errors.OutOfRange(errors.PhaseDnn, "kernel argument", i, len(args))
	}
	v, ok := args[i].(T)
	if !ok {
		return zero, errors.TypeMismatch(errors.PhaseDnn, "kernel argument",
			fmt.Sprintf("%T", zero), fmt.Sprintf("%T", args[i]))
	}
	return v, nil
}

// RegisterKernels registers the full dnn op set against a registry.
//
// Operand layouts follow the op kinds' wire contract: a leading device
// context, then handles, descriptors, scales, and buffers in call
// order. Ops without a value result publish a Chain.
func RegisterKernels(r *Registry) {
	r.Register(gpu.KindDnnCreate, createKernel)
	r.Register(gpu.KindDnnCreatePoolingDesc, createPoolingDescKernel)
	r.Register(gpu.KindDnnCreateTensorDesc, createTensorDescKernel)
	r.Register(gpu.KindDnnPoolingForward, WithChain(poolingForwardKernel))
	r.Register(gpu.KindDnnPoolingBackward, WithChain(poolingBackwardKernel))
	r.Register(gpu.KindDnnConvForward, WithChain(convForwardKernel))
	r.Register(gpu.KindDnnConvBackwardData, WithChain(convBackwardDataKernel))
	r.Register(gpu.KindDnnConvBackwardFilter, WithChain(convBackwardFilterKernel))
	r.Register(gpu.KindDnnConvBiasActivationFwd, WithChain(convBiasActivationKernel))
}

func createKernel(b *Binding, args []any) ([]any, error) {
	ctx, err := argAt[DeviceContext](args, 0)
	if err != nil {
		return nil, err
	}
	stream, err := argAt[Stream](args, 1)
	if err != nil {
		return nil, err
	}
	h, err := b.Create(ctx, stream)
	if err != nil {
		return nil, err
	}
	return []any{h}, nil
}

func createPoolingDescKernel(b *Binding, args []any) ([]any, error) {
	ctx, err := argAt[DeviceContext](args, 0)
	if err != nil {
		return nil, err
	}
	mode, err := argAt[uint32](args, 1)
	if err != nil {
		return nil, err
	}
	nan, err := argAt[uint32](args, 2)
	if err != nil {
		return nil, err
	}
	window, err := argAt[*HostTensor](args, 3)
	if err != nil {
		return nil, err
	}
	paddings, err := argAt[*HostTensor](args, 4)
	if err != nil {
		return nil, err
	}
	strides, err := argAt[*HostTensor](args, 5)
	if err != nil {
		return nil, err
	}
	desc, err := b.CreatePoolingDescriptor(ctx, mode, nan, window, paddings, strides)
	if err != nil {
		return nil, err
	}
	return []any{desc}, nil
}

func createTensorDescKernel(b *Binding, args []any) ([]any, error) {
	ctx, err := argAt[DeviceContext](args, 0)
	if err != nil {
		return nil, err
	}
	dtype, err := argAt[uint32](args, 1)
	if err != nil {
		return nil, err
	}
	dims, err := argAt[*HostTensor](args, 2)
	if err != nil {
		return nil, err
	}
	strides, err := argAt[*HostTensor](args, 3)
	if err != nil {
		return nil, err
	}
	desc, err := b.CreateTensorDescriptor(ctx, DataType(dtype), dims, strides)
	if err != nil {
		return nil, err
	}
	return []any{desc}, nil
}

// scalePair reads the (alpha, beta) scale operands at positions i, i+1.
func scalePair(args []any, i int) (float64, float64, error) {
	alpha, err := argAt[float64](args, i)
	if err != nil {
		return 0, 0, err
	}
	beta, err := argAt[float64](args, i+1)
	if err != nil {
		return 0, 0, err
	}
	return alpha, beta, nil
}

func poolingForwardKernel(b *Binding, args []any) error {
	ctx, err := argAt[DeviceContext](args, 0)
	if err != nil {
		return err
	}
	h, err := argAt[Handle](args, 1)
	if err != nil {
		return err
	}
	desc, err := argAt[PoolingDescriptor](args, 2)
	if err != nil {
		return err
	}
	alpha, beta, err := scalePair(args, 3)
	if err != nil {
		return err
	}
	xDesc, err := argAt[TensorDescriptor](args, 5)
	if err != nil {
		return err
	}
	x, err := argAt[gpulower.Buffer](args, 6)
	if err != nil {
		return err
	}
	yDesc, err := argAt[TensorDescriptor](args, 7)
	if err != nil {
		return err
	}
	y, err := argAt[gpulower.Buffer](args, 8)
	if err != nil {
		return err
	}
	return b.PoolingForward(ctx, h, desc, alpha, xDesc, x, beta, yDesc, y)
}

func poolingBackwardKernel(b *Binding, args []any) error {
	ctx, err := argAt[DeviceContext](args, 0)
	if err != nil {
		return err
	}
	h, err := argAt[Handle](args, 1)
	if err != nil {
		return err
	}
	desc, err := argAt[PoolingDescriptor](args, 2)
	if err != nil {
		return err
	}
	alpha, beta, err := scalePair(args, 3)
	if err != nil {
		return err
	}
	descs := make([]TensorDescriptor, 4)
	buffers := make([]gpulower.Buffer, 4)
	for i := range descs {
		if descs[i], err = argAt[TensorDescriptor](args, 5+2*i); err != nil {
			return err
		}
		if buffers[i], err = argAt[gpulower.Buffer](args, 6+2*i); err != nil {
			return err
		}
	}
	return b.PoolingBackward(ctx, h, desc, alpha,
		descs[0], buffers[0], descs[1], buffers[1], descs[2], buffers[2],
		beta, descs[3], buffers[3])
}

func convForwardKernel(b *Binding, args []any) error {
	ctx, err := argAt[DeviceContext](args, 0)
	if err != nil {
		return err
	}
	h, err := argAt[Handle](args, 1)
	if err != nil {
		return err
	}
	alpha, beta, err := scalePair(args, 2)
	if err != nil {
		return err
	}
	descs := make([]TensorDescriptor, 3)
	buffers := make([]gpulower.Buffer, 3)
	for i := range descs {
		if descs[i], err = argAt[TensorDescriptor](args, 4+2*i); err != nil {
			return err
		}
		if buffers[i], err = argAt[gpulower.Buffer](args, 5+2*i); err != nil {
			return err
		}
	}
	return b.ConvolutionForward(ctx, h, alpha,
		descs[0], buffers[0], descs[1], buffers[1], beta, descs[2], buffers[2])
}

func convBackwardDataKernel(b *Binding, args []any) error {
	ctx, err := argAt[DeviceContext](args, 0)
	if err != nil {
		return err
	}
	h, err := argAt[Handle](args, 1)
	if err != nil {
		return err
	}
	alpha, beta, err := scalePair(args, 2)
	if err != nil {
		return err
	}
	descs := make([]TensorDescriptor, 3)
	buffers := make([]gpulower.Buffer, 3)
	for i := range descs {
		if descs[i], err = argAt[TensorDescriptor](args, 4+2*i); err != nil {
			return err
		}
		if buffers[i], err = argAt[gpulower.Buffer](args, 5+2*i); err != nil {
			return err
		}
	}
	return b.ConvolutionBackwardData(ctx, h, alpha,
		descs[0], buffers[0], descs[1], buffers[1], beta, descs[2], buffers[2])
}

func convBackwardFilterKernel(b *Binding, args []any) error {
	ctx, err := argAt[DeviceContext](args, 0)
	if err != nil {
		return err
	}
	h, err := argAt[Handle](args, 1)
	if err != nil {
		return err
	}
	alpha, beta, err := scalePair(args, 2)
	if err != nil {
		return err
	}
	descs := make([]TensorDescriptor, 3)
	buffers := make([]gpulower.Buffer, 3)
	for i := range descs {
		if descs[i], err = argAt[TensorDescriptor](args, 4+2*i); err != nil {
			return err
		}
		if buffers[i], err = argAt[gpulower.Buffer](args, 5+2*i); err != nil {
			return err
		}
	}
	return b.ConvolutionBackwardFilter(ctx, h, alpha,
		descs[0], buffers[0], descs[1], buffers[1], beta, descs[2], buffers[2])
}

func convBiasActivationKernel(b *Binding, args []any) error {
	ctx, err := argAt[DeviceContext](args, 0)
	if err != nil {
		return err
	}
	h, err := argAt[Handle](args, 1)
	if err != nil {
		return err
	}
	alpha1, err := argAt[float64](args, 2)
	if err != nil {
		return err
	}
	alpha2, err := argAt[float64](args, 3)
	if err != nil {
		return err
	}
	descs := make([]TensorDescriptor, 5)
	buffers := make([]gpulower.Buffer, 5)
	for i := range descs {
		if descs[i], err = argAt[TensorDescriptor](args, 4+2*i); err != nil {
			return err
		}
		if buffers[i], err = argAt[gpulower.Buffer](args, 5+2*i); err != nil {
			return err
		}
	}
	return b.ConvolutionBiasActivationForward(ctx, h, alpha1,
		descs[0], buffers[0], descs[1], buffers[1], alpha2,
		descs[2], buffers[2], descs[3], buffers[3], descs[4], buffers[4])
}
