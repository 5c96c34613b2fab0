package dnn

import (
	stderrors "errors"
	"testing"

	"github.com/substratelabs/gpulower"
	"github.com/substratelabs/gpulower/errors"
	"github.com/substratelabs/gpulower/gpu"
)

// fakeLibrary records calls so tests can check ordering and arguments.
type fakeLibrary struct {
	calls      []string
	currentCtx DeviceContext
	currentErr error

	poolingMode PoolingMode
	window      []int32
}

func (f *fakeLibrary) SetContextCurrent(ctx DeviceContext) error {
	f.calls = append(f.calls, "set_context")
	if f.currentErr != nil {
		return f.currentErr
	}
	f.currentCtx = ctx
	return nil
}

func (f *fakeLibrary) Create() (Handle, error) {
	f.calls = append(f.calls, "create")
	return "handle", nil
}

func (f *fakeLibrary) SetStream(h Handle, stream Stream) error {
	f.calls = append(f.calls, "set_stream")
	return nil
}

func (f *fakeLibrary) CreatePoolingDescriptor(mode PoolingMode, nan NanPropagation, windowDims, paddings, strides []int32) (PoolingDescriptor, error) {
	f.calls = append(f.calls, "create_pooling_descriptor")
	f.poolingMode = mode
	f.window = windowDims
	return "pooling_desc", nil
}

func (f *fakeLibrary) CreateTensorDescriptor(dtype DataType, dims, strides []int32) (TensorDescriptor, error) {
	f.calls = append(f.calls, "create_tensor_descriptor")
	return "tensor_desc", nil
}

func (f *fakeLibrary) PoolingForward(h Handle, desc PoolingDescriptor, alpha float64, xDesc TensorDescriptor, x gpulower.Buffer, beta float64, yDesc TensorDescriptor, y gpulower.Buffer) error {
	f.calls = append(f.calls, "pooling_forward")
	return nil
}

func (f *fakeLibrary) PoolingBackward(h Handle, desc PoolingDescriptor, alpha float64, yDesc TensorDescriptor, y gpulower.Buffer, dyDesc TensorDescriptor, dy gpulower.Buffer, xDesc TensorDescriptor, x gpulower.Buffer, beta float64, dxDesc TensorDescriptor, dx gpulower.Buffer) error {
	f.calls = append(f.calls, "pooling_backward")
	return nil
}

func (f *fakeLibrary) ConvolutionForward(h Handle, alpha float64, xDesc TensorDescriptor, x gpulower.Buffer, wDesc TensorDescriptor, w gpulower.Buffer, beta float64, yDesc TensorDescriptor, y gpulower.Buffer) error {
	f.calls = append(f.calls, "convolution_forward")
	return nil
}

func (f *fakeLibrary) ConvolutionBackwardData(h Handle, alpha float64, wDesc TensorDescriptor, w gpulower.Buffer, dyDesc TensorDescriptor, dy gpulower.Buffer, beta float64, dxDesc TensorDescriptor, dx gpulower.Buffer) error {
	f.calls = append(f.calls, "convolution_backward_data")
	return nil
}

func (f *fakeLibrary) ConvolutionBackwardFilter(h Handle, alpha float64, xDesc TensorDescriptor, x gpulower.Buffer, dyDesc TensorDescriptor, dy gpulower.Buffer, beta float64, dwDesc TensorDescriptor, dw gpulower.Buffer) error {
	f.calls = append(f.calls, "convolution_backward_filter")
	return nil
}

func (f *fakeLibrary) ConvolutionBiasActivationForward(h Handle, alpha1 float64, xDesc TensorDescriptor, x gpulower.Buffer, wDesc TensorDescriptor, w gpulower.Buffer, alpha2 float64, zDesc TensorDescriptor, z gpulower.Buffer, biasDesc TensorDescriptor, bias gpulower.Buffer, yDesc TensorDescriptor, y gpulower.Buffer) error {
	f.calls = append(f.calls, "convolution_bias_activation_forward")
	return nil
}

func newTestBinding(t *testing.T) (*Binding, *fakeLibrary) {
	t.Helper()
	lib := &fakeLibrary{}
	b, err := NewBinding(Config{Library: lib})
	if err != nil {
		t.Fatalf("NewBinding() = %v", err)
	}
	return b, lib
}

func int32Vector(values ...int32) *HostTensor {
	return &HostTensor{DType: Int32, Dims: []int64{int64(len(values))}, Data: values}
}

// TestCreateSetsContextThenStream tests the call ordering contract:
// context current first, then create, then stream binding.
func TestCreateSetsContextThenStream(t *testing.T) {
	b, lib := newTestBinding(t)

	h, err := b.Create("ctx", "stream")
	if err != nil {
		t.Fatalf("Create() = %v", err)
	}
	if h != Handle("handle") {
		t.Errorf("Create() handle = %v", h)
	}
	want := []string{"set_context", "create", "set_stream"}
	if len(lib.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", lib.calls, want)
	}
	for i := range want {
		if lib.calls[i] != want[i] {
			t.Fatalf("calls = %v, want %v", lib.calls, want)
		}
	}
}

// TestContextFailureForwardedFirst tests that a context-current failure
// short-circuits before the vendor call runs.
func TestContextFailureForwardedFirst(t *testing.T) {
	b, lib := newTestBinding(t)
	lib.currentErr = stderrors.New("device lost")

	_, err := b.Create("ctx", "stream")
	if err == nil {
		t.Fatalf("Create() succeeded with a failing context")
	}
	if !stderrors.Is(err, lib.currentErr) {
		t.Errorf("context failure not forwarded: %v", err)
	}
	for _, call := range lib.calls {
		if call == "create" {
			t.Errorf("vendor create ran despite context failure")
		}
	}
}

// TestCreatePoolingDescriptorValidation tests enum and parameter
// vector validation.
func TestCreatePoolingDescriptorValidation(t *testing.T) {
	window := int32Vector(2, 2)
	padding := int32Vector(0, 0)
	stride := int32Vector(2, 2)

	tests := []struct {
		name    string
		mode    uint32
		nan     uint32
		window  *HostTensor
		wantErr errors.Kind
	}{
		{"valid", 0, 1, window, ""},
		{"mode out of range", 4, 0, window, errors.KindInvalidEnum},
		{"nan out of range", 0, 2, window, errors.KindInvalidEnum},
		{"rank 2 window", 0, 0, &HostTensor{DType: Int32, Dims: []int64{2, 2}, Data: []int32{2, 2, 2, 2}}, errors.KindRankMismatch},
		{"float window", 0, 0, &HostTensor{DType: Float32, Dims: []int64{2}, Data: []float32{2, 2}}, errors.KindTypeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, lib := newTestBinding(t)
			_, err := b.CreatePoolingDescriptor("ctx", tt.mode, tt.nan, tt.window, padding, stride)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("CreatePoolingDescriptor() = %v", err)
				}
				if lib.poolingMode != PoolingMax {
					t.Errorf("mode = %d, want %d", lib.poolingMode, PoolingMax)
				}
				if len(lib.window) != 2 || lib.window[0] != 2 {
					t.Errorf("window = %v", lib.window)
				}
				return
			}
			var structured *errors.Error
			if !stderrors.As(err, &structured) || structured.Kind != tt.wantErr {
				t.Errorf("error = %v, want kind %s", err, tt.wantErr)
			}
		})
	}
}

// TestRegistryDispatch tests name-based kernel dispatch end to end:
// create a handle, then run a pooling forward publishing a chain.
func TestRegistryDispatch(t *testing.T) {
	b, lib := newTestBinding(t)
	r := NewRegistry()
	RegisterKernels(r)

	create, ok := r.Lookup(gpu.KindDnnCreate)
	if !ok {
		t.Fatalf("no kernel for %s", gpu.KindDnnCreate)
	}
	results, err := create(b, []any{DeviceContext("ctx"), Stream("stream")})
	if err != nil {
		t.Fatalf("create kernel: %v", err)
	}
	handle := results[0]

	forward, ok := r.Lookup(gpu.KindDnnPoolingForward)
	if !ok {
		t.Fatalf("no kernel for %s", gpu.KindDnnPoolingForward)
	}
	x := gpulower.NewHostBuffer(16)
	y := gpulower.NewHostBuffer(16)
	results, err = forward(b, []any{
		DeviceContext("ctx"), handle, PoolingDescriptor("pooling_desc"),
		1.0, 0.0,
		TensorDescriptor("x_desc"), gpulower.Buffer(x),
		TensorDescriptor("y_desc"), gpulower.Buffer(y),
	})
	if err != nil {
		t.Fatalf("pooling forward kernel: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("pooling forward results = %v, want one chain", results)
	}
	if _, ok := results[0].(Chain); !ok {
		t.Errorf("pooling forward result = %T, want Chain", results[0])
	}
	if lib.calls[len(lib.calls)-1] != "pooling_forward" {
		t.Errorf("vendor pooling_forward not reached: %v", lib.calls)
	}
}
