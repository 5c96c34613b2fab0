// Package interp executes lowered gpu dialect programs on the host.
//
// It exists to validate the semantics the lowering encodes, without a
// device: streams are FIFO work queues whose items run only when the
// stream is drained by a synchronize (or up to a recorded event's
// position), buffers are host byte slices whose views alias the parent
// allocation, and tokens are opaque ordering values.
//
// Deferred execution makes lifetime bugs observable where a device
// would observe them. A mem.copy enqueued after a mem.deallocate on
// the same stream fails with a use-after-free at drain time, not at
// enqueue time. Copying a buffer onto itself is a no-op that still
// threads the token chain.
//
// Async regions run inline: the body's token argument is a fresh
// token, the stream argument is the first stream the program created,
// and the yield's operand becomes the region's published chain.
package interp
