// Package dnn binds to a vendor neural-network primitives library
// (a cuDNN equivalent) for pooling and convolution.
//
// The Library interface is the vendor surface; Binding wraps it with
// the calling discipline the vendor requires: the device context is
// made current before every call, and a failure from that step is
// forwarded before the underlying call runs. Parameter vectors
// (window dimensions, paddings, strides) are validated fail-fast:
// they must be rank-1 int32 host tensors.
//
// The Registry maps dnn op kinds to host-dispatchable kernels; the
// interpreter uses it to execute dnn ops in a lowered program. Kernels
// whose op publishes only a completion token wrap their work in
// WithChain.
package dnn
