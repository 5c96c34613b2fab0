package ir

import (
	"strings"
	"testing"
)

// TestBlockAppendOwnership tests that ops belong to exactly one block.
func TestBlockAppendOwnership(t *testing.T) {
	b := NewBlock()
	op := NewOp("test.op", nil, nil)
	b.Append(op)

	if op.Block() != b {
		t.Fatalf("op.Block() = %v, want %v", op.Block(), b)
	}

	defer func() {
		if recover() == nil {
			t.Errorf("double append did not panic")
		}
	}()
	NewBlock().Append(op)
}

// TestBlockInsertBefore tests positional insertion.
func TestBlockInsertBefore(t *testing.T) {
	b := NewBlock()
	first := NewOp("test.first", nil, nil)
	last := NewOp("test.last", nil, nil)
	b.Append(first)
	b.Append(last)

	mid := NewOp("test.mid", nil, nil)
	if err := b.InsertBefore(last, mid); err != nil {
		t.Fatalf("InsertBefore: %v", err)
	}

	ops := b.Ops()
	if len(ops) != 3 || ops[1] != mid {
		t.Errorf("ops after insert = %v", kinds(ops))
	}
}

// TestBlockInsertBeforeDetachedRef tests rejection of bad insertion points.
func TestBlockInsertBeforeDetachedRef(t *testing.T) {
	b := NewBlock()
	ref := NewOp("test.ref", nil, nil)
	if err := b.InsertBefore(ref, NewOp("test.op", nil, nil)); err == nil {
		t.Errorf("InsertBefore with foreign ref succeeded, want error")
	}
}

// TestMoveRange tests splicing a run of ops into another block before
// its terminator, preserving order.
func TestMoveRange(t *testing.T) {
	src := NewBlock()
	var ops []*Op
	for _, k := range []string{"test.a", "test.b", "test.c", "test.d"} {
		op := NewOp(k, nil, nil)
		ops = append(ops, op)
		src.Append(op)
	}

	dst := NewBlock()
	term := NewOp("test.yield", nil, nil)
	dst.Append(term)

	if err := src.MoveRange(1, 3, dst); err != nil {
		t.Fatalf("MoveRange: %v", err)
	}

	if got := kinds(src.Ops()); got != "test.a,test.d" {
		t.Errorf("source after move = %s", got)
	}
	if got := kinds(dst.Ops()); got != "test.b,test.c,test.yield" {
		t.Errorf("dest after move = %s", got)
	}
	for _, op := range ops[1:3] {
		if op.Block() != dst {
			t.Errorf("%s not owned by dest block", op.Kind)
		}
	}
}

// TestMoveRangeBounds tests range validation.
func TestMoveRangeBounds(t *testing.T) {
	src := NewBlock()
	src.Append(NewOp("test.a", nil, nil))
	if err := src.MoveRange(0, 5, NewBlock()); err == nil {
		t.Errorf("out-of-range MoveRange succeeded, want error")
	}
}

// TestWalkBlocksSnapshot tests that blocks created during a walk are
// not visited.
func TestWalkBlocksSnapshot(t *testing.T) {
	f := NewFunc("f", FuncType{})
	inner := NewOp("test.region_op", nil, nil)
	f.EntryBlock().Append(inner)

	visits := 0
	f.WalkBlocks(func(b *Block) {
		visits++
		// Grow the IR mid-walk; the new block must not be visited.
		r := inner.AddRegion()
		r.AddBlock(NewBlock())
	})

	if visits != 1 {
		t.Errorf("visited %d blocks, want 1", visits)
	}
}

// TestWalkBlocksNested tests pre-order traversal into existing regions.
func TestWalkBlocksNested(t *testing.T) {
	f := NewFunc("f", FuncType{})
	outer := NewOp("test.region_op", nil, nil)
	nested := NewBlock()
	outer.AddRegion().AddBlock(nested)
	f.EntryBlock().Append(outer)

	var seen []*Block
	f.WalkBlocks(func(b *Block) { seen = append(seen, b) })

	if len(seen) != 2 || seen[0] != f.EntryBlock() || seen[1] != nested {
		t.Errorf("walk order wrong: %d blocks", len(seen))
	}
}

// TestReplaceUses tests whole-function operand rewriting.
func TestReplaceUses(t *testing.T) {
	f := NewFunc("f", FuncType{Params: []Type{I32}})
	arg := f.EntryBlock().Argument(0)

	def := NewOp("test.def", nil, []Type{I32})
	use := NewOp("test.use", []*Value{arg, arg}, nil)
	f.EntryBlock().Append(def)
	f.EntryBlock().Append(use)

	f.ReplaceUses(arg, def.Result(0))

	for i, v := range use.Operands() {
		if v != def.Result(0) {
			t.Errorf("operand %d not replaced", i)
		}
	}
}

// TestParentOp tests region ownership back-pointers.
func TestParentOp(t *testing.T) {
	holder := NewOp("test.region_op", nil, nil)
	body := NewBlock()
	holder.AddRegion().AddBlock(body)
	child := NewOp("test.child", nil, nil)
	body.Append(child)

	if child.ParentOp() != holder {
		t.Errorf("ParentOp = %v, want holder", child.ParentOp())
	}
	if body.ParentOp() != holder {
		t.Errorf("block ParentOp = %v, want holder", body.ParentOp())
	}
}

// TestPrint tests the debug rendering.
func TestPrint(t *testing.T) {
	f := NewFunc("copyish", FuncType{Params: []Type{MemRefType{Elem: I32, Dims: []int64{4}}}})
	arg := f.EntryBlock().Argument(0)
	op := NewOp("memref.view", []*Value{arg}, []Type{MemRefType{Elem: I32, Dims: []int64{4}}})
	op.SetAttr("byte_shift", int64(0))
	f.EntryBlock().Append(op)
	f.EntryBlock().Append(NewOp("func.return", []*Value{op.Result(0)}, nil))

	out := Sprint(f)
	for _, want := range []string{"func copyish", "memref.view", "byte_shift = 0", "memref<4xi32>"} {
		if !strings.Contains(out, want) {
			t.Errorf("Sprint missing %q in:\n%s", want, out)
		}
	}
}

func kinds(ops []*Op) string {
	var ks []string
	for _, op := range ops {
		ks = append(ks, op.Kind)
	}
	return strings.Join(ks, ",")
}
