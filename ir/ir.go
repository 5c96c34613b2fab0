package ir

import (
	"github.com/substratelabs/gpulower/errors"
)

// Value is an SSA value: either an op result or a block argument.
type Value struct {
	typ   Type
	def   *Op    // defining op, nil for block arguments
	owner *Block // owning block for block arguments, nil otherwise
	index int    // result or argument position
}

// Type returns the value's type.
func (v *Value) Type() Type { return v.typ }

// SetType updates the value's type. Used by signature and result
// conversion; callers are responsible for keeping uses consistent.
func (v *Value) SetType(t Type) { v.typ = t }

// DefiningOp returns the op that produces this value, or nil for a
// block argument.
func (v *Value) DefiningOp() *Op { return v.def }

// IsBlockArgument reports whether the value is a block argument.
func (v *Value) IsBlockArgument() bool { return v.owner != nil }

// Op is a single instruction node: a kind tag, operand and result values,
// attributes, and optional nested regions. An op belongs to exactly one
// block at a time; Block mutation methods transfer ownership atomically.
type Op struct {
	Kind     string
	operands []*Value
	results  []*Value
	attrs    map[string]any
	regions  []*Region
	block    *Block
}

// NewOp creates a detached op with fresh result values of the given types.
func NewOp(kind string, operands []*Value, resultTypes []Type) *Op {
	op := &Op{Kind: kind, operands: append([]*Value(nil), operands...)}
	for i, t := range resultTypes {
		op.results = append(op.results, &Value{typ: t, def: op, index: i})
	}
	return op
}

// Operands returns the operand list. The returned slice is the op's own
// storage; callers must not mutate it directly.
func (op *Op) Operands() []*Value { return op.operands }

// Operand returns the i-th operand.
func (op *Op) Operand(i int) *Value { return op.operands[i] }

// NumOperands returns the operand count.
func (op *Op) NumOperands() int { return len(op.operands) }

// SetOperands replaces the entire operand list.
func (op *Op) SetOperands(operands ...*Value) {
	op.operands = append(op.operands[:0], operands...)
}

// Results returns the result values.
func (op *Op) Results() []*Value { return op.results }

// Result returns the i-th result.
func (op *Op) Result(i int) *Value { return op.results[i] }

// NumResults returns the result count.
func (op *Op) NumResults() int { return len(op.results) }

// SetAttr sets an attribute.
func (op *Op) SetAttr(name string, value any) {
	if op.attrs == nil {
		op.attrs = make(map[string]any)
	}
	op.attrs[name] = value
}

// Attr returns an attribute value.
func (op *Op) Attr(name string) (any, bool) {
	v, ok := op.attrs[name]
	return v, ok
}

// IntAttr returns an int64 attribute.
func (op *Op) IntAttr(name string) (int64, bool) {
	v, ok := op.attrs[name].(int64)
	return v, ok
}

// StrAttr returns a string attribute.
func (op *Op) StrAttr(name string) (string, bool) {
	v, ok := op.attrs[name].(string)
	return v, ok
}

// Attrs returns a copy of the attribute map.
func (op *Op) Attrs() map[string]any {
	if op.attrs == nil {
		return nil
	}
	out := make(map[string]any, len(op.attrs))
	for k, v := range op.attrs {
		out[k] = v
	}
	return out
}

// SetAttrs replaces all attributes with a copy of attrs.
func (op *Op) SetAttrs(attrs map[string]any) {
	op.attrs = nil
	for k, v := range attrs {
		op.SetAttr(k, v)
	}
}

// AddRegion appends an empty nested region and returns it.
func (op *Op) AddRegion() *Region {
	r := &Region{owner: op}
	op.regions = append(op.regions, r)
	return r
}

// Regions returns the nested regions.
func (op *Op) Regions() []*Region { return op.regions }

// Block returns the block currently holding this op, or nil if detached.
func (op *Op) Block() *Block { return op.block }

// ParentOp returns the op owning the region that holds this op's block,
// or nil at the top level.
func (op *Op) ParentOp() *Op {
	if op.block == nil || op.block.region == nil {
		return nil
	}
	return op.block.region.owner
}

// Block is an ordered sequence of ops with optional block arguments.
// The sequence order defines execution order for legality scanning.
type Block struct {
	args   []*Value
	ops    []*Op
	region *Region
}

// NewBlock creates a detached block with arguments of the given types.
func NewBlock(argTypes ...Type) *Block {
	b := &Block{}
	for i, t := range argTypes {
		b.args = append(b.args, &Value{typ: t, owner: b, index: i})
	}
	return b
}

// Arguments returns the block argument values.
func (b *Block) Arguments() []*Value { return b.args }

// Argument returns the i-th block argument.
func (b *Block) Argument(i int) *Value { return b.args[i] }

// Ops returns a snapshot of the op list. Mutating the block while
// iterating the snapshot is safe; the snapshot does not change.
func (b *Block) Ops() []*Op {
	return append([]*Op(nil), b.ops...)
}

// NumOps returns the op count.
func (b *Block) NumOps() int { return len(b.ops) }

// Terminator returns the last op in the block, or nil if empty.
func (b *Block) Terminator() *Op {
	if len(b.ops) == 0 {
		return nil
	}
	return b.ops[len(b.ops)-1]
}

// Region returns the owning region, or nil if detached.
func (b *Block) Region() *Region { return b.region }

// ParentOp returns the op owning this block's region, or nil.
func (b *Block) ParentOp() *Op {
	if b.region == nil {
		return nil
	}
	return b.region.owner
}

// Append adds an op at the end of the block. The op must be detached.
func (b *Block) Append(op *Op) {
	if op.block != nil {
		panic("ir: append of op already owned by a block")
	}
	op.block = b
	b.ops = append(b.ops, op)
}

// IndexOf returns the position of op within the block, or -1.
func (b *Block) IndexOf(op *Op) int {
	for i, o := range b.ops {
		if o == op {
			return i
		}
	}
	return -1
}

// InsertBefore inserts a detached op immediately before ref, which must
// belong to this block.
func (b *Block) InsertBefore(ref, op *Op) error {
	idx := b.IndexOf(ref)
	if idx < 0 {
		return errors.InvalidIR(errors.PhaseBuild, op.Kind, "insertion point not in block")
	}
	if op.block != nil {
		return errors.InvalidIR(errors.PhaseBuild, op.Kind, "op already owned by a block")
	}
	op.block = b
	b.ops = append(b.ops, nil)
	copy(b.ops[idx+1:], b.ops[idx:])
	b.ops[idx] = op
	return nil
}

// Remove detaches op from the block without destroying it.
func (b *Block) Remove(op *Op) {
	idx := b.IndexOf(op)
	if idx < 0 {
		return
	}
	b.ops = append(b.ops[:idx], b.ops[idx+1:]...)
	op.block = nil
}

// MoveRange detaches the ops in [from, to) by position and appends them,
// in order, to dst before dst's terminator (or at the end if dst has no
// terminator yet). Ownership transfers atomically per op.
func (b *Block) MoveRange(from, to int, dst *Block) error {
	if from < 0 || to > len(b.ops) || from > to {
		return errors.OutOfRange(errors.PhaseBuild, "op range", from, len(b.ops))
	}
	moved := append([]*Op(nil), b.ops[from:to]...)
	b.ops = append(b.ops[:from], b.ops[to:]...)

	insertAt := len(dst.ops)
	if t := dst.Terminator(); t != nil {
		insertAt = len(dst.ops) - 1
	}
	tail := append([]*Op(nil), dst.ops[insertAt:]...)
	dst.ops = append(dst.ops[:insertAt], moved...)
	dst.ops = append(dst.ops, tail...)
	for _, op := range moved {
		op.block = dst
	}
	return nil
}

// Region is a list of blocks owned by a parent op (or a Func).
type Region struct {
	blocks []*Block
	owner  *Op
}

// Blocks returns the block list.
func (r *Region) Blocks() []*Block { return r.blocks }

// AddBlock appends a detached block to the region.
func (r *Region) AddBlock(b *Block) {
	b.region = r
	r.blocks = append(r.blocks, b)
}

// Owner returns the op owning the region, or nil for a function body.
func (r *Region) Owner() *Op { return r.owner }

// Func is a named function: a signature plus a body region.
type Func struct {
	Name string
	typ  FuncType
	body *Region
}

// NewFunc creates a function with an entry block whose arguments mirror
// the parameter types.
func NewFunc(name string, typ FuncType) *Func {
	f := &Func{Name: name, typ: typ, body: &Region{}}
	f.body.AddBlock(NewBlock(typ.Params...))
	return f
}

// Type returns the function signature.
func (f *Func) Type() FuncType { return f.typ }

// SetType updates the function signature.
func (f *Func) SetType(t FuncType) { f.typ = t }

// Body returns the body region.
func (f *Func) Body() *Region { return f.body }

// EntryBlock returns the first block of the body.
func (f *Func) EntryBlock() *Block { return f.body.blocks[0] }

// WalkBlocks visits every block of the function pre-order, including
// blocks nested inside op regions. The visit set is snapshotted up front,
// so blocks created during the walk are not visited.
func (f *Func) WalkBlocks(visit func(*Block)) {
	var all []*Block
	var collect func(r *Region)
	collect = func(r *Region) {
		for _, b := range r.blocks {
			all = append(all, b)
			for _, op := range b.ops {
				for _, nested := range op.regions {
					collect(nested)
				}
			}
		}
	}
	collect(f.body)
	for _, b := range all {
		visit(b)
	}
}

// WalkOps visits every op of the function pre-order, descending into
// nested regions. The visit set is snapshotted up front.
func (f *Func) WalkOps(visit func(*Op)) {
	f.WalkBlocks(func(b *Block) {
		for _, op := range b.Ops() {
			visit(op)
		}
	})
}

// ReplaceUses rewrites every operand use of old to new across the whole
// function, including ops nested in regions.
func (f *Func) ReplaceUses(old, new *Value) {
	f.WalkOps(func(op *Op) {
		for i, v := range op.operands {
			if v == old {
				op.operands[i] = new
			}
		}
	})
}

// CountOps returns the number of ops in the function, at every nesting
// level, whose kind satisfies pred (nil counts everything).
func (f *Func) CountOps(pred func(*Op) bool) int {
	n := 0
	f.WalkOps(func(op *Op) {
		if pred == nil || pred(op) {
			n++
		}
	})
	return n
}

// Module is an ordered collection of named functions.
type Module struct {
	Name  string
	funcs []*Func
}

// NewModule creates an empty module.
func NewModule(name string) *Module {
	return &Module{Name: name}
}

// AddFunc appends a function.
func (m *Module) AddFunc(f *Func) {
	m.funcs = append(m.funcs, f)
}

// Funcs returns the function list.
func (m *Module) Funcs() []*Func { return m.funcs }

// Func returns the named function, or nil.
func (m *Module) Func(name string) *Func {
	for _, f := range m.funcs {
		if f.Name == name {
			return f
		}
	}
	return nil
}
