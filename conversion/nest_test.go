package conversion

import (
	"errors"
	"testing"

	gperrors "github.com/substratelabs/gpulower/errors"
	"github.com/substratelabs/gpulower/gpu"
	"github.com/substratelabs/gpulower/ir"
)

// buildMixedFunc returns a function whose entry block interleaves
// lowered gpu ops with ops still awaiting conversion:
//
//	device.get, context.primary, test.pending, stream.create, return
func buildMixedFunc() *ir.Func {
	f := ir.NewFunc("mixed", ir.FuncType{})
	entry := f.EntryBlock()

	device := gpu.DeviceGet("CUDA", 0)
	context := gpu.ContextPrimary(device.Result(0))
	pending := ir.NewOp("test.pending", nil, nil)
	stream := gpu.StreamCreate(context.Result(0))

	entry.Append(device)
	entry.Append(context)
	entry.Append(pending)
	entry.Append(stream)
	entry.Append(ir.Return())
	return f
}

// TestNestWrapsMaximalRuns tests that each maximal legal run becomes
// exactly one region at the run's original position, order preserved.
func TestNestWrapsMaximalRuns(t *testing.T) {
	f := buildMixedFunc()
	rw := NewRewriter(f)
	pattern := &NestAsyncPattern{Target: DefaultTarget()}

	matched, err := pattern.MatchAndRewriteFunc(f, rw)
	if err != nil {
		t.Fatalf("MatchAndRewriteFunc() = %v", err)
	}
	if !matched {
		t.Fatalf("pattern did not match a function with legal runs")
	}

	ops := f.EntryBlock().Ops()
	kinds := make([]string, len(ops))
	for i, op := range ops {
		kinds[i] = op.Kind
	}
	want := []string{gpu.KindAsyncExecute, "test.pending", gpu.KindAsyncExecute, ir.KindFuncReturn}
	if len(kinds) != len(want) {
		t.Fatalf("entry block kinds = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("entry block kinds = %v, want %v", kinds, want)
		}
	}

	first := gpu.Body(ops[0]).Ops()
	if len(first) != 3 || first[0].Kind != gpu.KindDeviceGet || first[1].Kind != gpu.KindContextPrimary {
		t.Errorf("first region does not hold the run in original order")
	}
	second := gpu.Body(ops[2]).Ops()
	if len(second) != 2 || second[0].Kind != gpu.KindStreamCreate {
		t.Errorf("second region does not hold the trailing run")
	}
}

// TestNestPreservesInstructionSet tests that extraction neither creates
// nor destroys payload ops; only region containers and yields are new.
func TestNestPreservesInstructionSet(t *testing.T) {
	f := buildMixedFunc()
	before := f.CountOps(nil)

	rw := NewRewriter(f)
	if _, err := (&NestAsyncPattern{Target: DefaultTarget()}).MatchAndRewriteFunc(f, rw); err != nil {
		t.Fatalf("MatchAndRewriteFunc() = %v", err)
	}

	regions := f.CountOps(func(op *ir.Op) bool { return op.Kind == gpu.KindAsyncExecute })
	yields := f.CountOps(func(op *ir.Op) bool { return op.Kind == gpu.KindAsyncYield })
	if got := f.CountOps(nil); got != before+regions+yields {
		t.Errorf("op count = %d, want %d payload + %d regions + %d yields", got, before, regions, yields)
	}
}

// TestNestIdempotent tests that a second application finds nothing:
// ops nested inside regions are not reprocessed.
func TestNestIdempotent(t *testing.T) {
	f := buildMixedFunc()
	pattern := &NestAsyncPattern{Target: DefaultTarget()}

	rw := NewRewriter(f)
	if _, err := pattern.MatchAndRewriteFunc(f, rw); err != nil {
		t.Fatalf("first application: %v", err)
	}
	rw.Commit()
	countAfterFirst := f.CountOps(nil)

	rw = NewRewriter(f)
	matched, err := pattern.MatchAndRewriteFunc(f, rw)
	if err != nil {
		t.Fatalf("second application: %v", err)
	}
	if matched {
		t.Errorf("second application reported a match")
	}
	if got := f.CountOps(nil); got != countAfterFirst {
		t.Errorf("second application changed op count: %d -> %d", countAfterFirst, got)
	}
}

// TestNestRejectsTrailingLegalRun tests the block-end invariant: a
// legal run reaching the end of a block is a malformed input, not a
// silently unwrapped run.
func TestNestRejectsTrailingLegalRun(t *testing.T) {
	f := ir.NewFunc("trailing", ir.FuncType{})
	f.EntryBlock().Append(gpu.DeviceGet("CUDA", 0))

	rw := NewRewriter(f)
	_, err := (&NestAsyncPattern{Target: DefaultTarget()}).MatchAndRewriteFunc(f, rw)
	if err == nil {
		t.Fatalf("trailing legal run accepted")
	}
	want := &gperrors.Error{Phase: gperrors.PhaseExtract, Kind: gperrors.KindInvalidIR}
	if !errors.Is(err, want) {
		t.Errorf("error = %v, want phase %s kind %s", err, want.Phase, want.Kind)
	}
}

// TestParentStreamAndChain tests the region accessor helpers.
func TestParentStreamAndChain(t *testing.T) {
	f := buildMixedFunc()
	rw := NewRewriter(f)
	if _, err := (&NestAsyncPattern{Target: DefaultTarget()}).MatchAndRewriteFunc(f, rw); err != nil {
		t.Fatalf("MatchAndRewriteFunc() = %v", err)
	}

	exec := f.EntryBlock().Ops()[0]
	body := gpu.Body(exec)
	inner := body.Ops()[0]

	if got := ParentStream(inner); got != body.Argument(1) {
		t.Errorf("ParentStream = %v, want body argument 1", got)
	}
	if got := ParentChain(inner); got != body.Argument(0) {
		t.Errorf("ParentChain = %v, want the incoming token", got)
	}

	outer := f.EntryBlock().Ops()[1]
	if ParentStream(outer) != nil || ParentChain(outer) != nil {
		t.Errorf("ops outside regions must have no parent stream or chain")
	}

	// Redirect the published token and confirm the terminator follows.
	record := gpu.EventRecord(
		ir.NewOp("test.event", nil, []ir.Type{gpu.EventType{}}).Result(0),
		body.Argument(1),
		body.Argument(0),
	)
	SetParentChain(inner, record.Result(0), rw)
	if got := ParentChain(inner); got != record.Result(0) {
		t.Errorf("SetParentChain did not update the terminator operand")
	}
}
