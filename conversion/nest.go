package conversion

import (
	"github.com/substratelabs/gpulower/errors"
	"github.com/substratelabs/gpulower/gpu"
	"github.com/substratelabs/gpulower/ir"
)

// NestAsyncPattern wraps maximal contiguous runs of already-legal ops
// into gpu.async.execute regions. Blocks that are themselves async
// region bodies are skipped, which makes the pattern idempotent: a
// second application finds no runs outside regions and reports no
// match.
//
// The rewrite is two-phase per block: runs are located on a snapshot of
// the op list first, then spliced, so the scan never observes its own
// edits.
type NestAsyncPattern struct {
	Target *Target
}

func (p *NestAsyncPattern) Name() string { return "nest-async-regions" }

// MatchAndRewriteFunc nests legal runs in every block of the function.
// Matched is true when at least one region was created.
func (p *NestAsyncPattern) MatchAndRewriteFunc(f *ir.Func, rw *Rewriter) (bool, error) {
	nested := 0
	var firstErr error
	f.WalkBlocks(func(b *ir.Block) {
		if firstErr != nil {
			return
		}
		if gpu.IsAsyncExecute(b.ParentOp()) {
			return
		}
		n, err := p.rewriteBlock(b, rw)
		if err != nil {
			firstErr = err
			return
		}
		nested += n
	})
	if firstErr != nil {
		return false, firstErr
	}
	return nested > 0, nil
}

// rewriteBlock returns the number of regions created in the block.
func (p *NestAsyncPattern) rewriteBlock(b *ir.Block, rw *Rewriter) (int, error) {
	ops := b.Ops()

	// Phase one: locate maximal legal runs. A run is flushed by the
	// first illegal op after it; the block terminator is never in
	// target form, so no run can be open when the scan ends. Existing
	// async regions break runs and are never re-wrapped.
	var runs [][]*ir.Op
	var run []*ir.Op
	for _, op := range ops {
		if !gpu.IsAsyncExecute(op) && p.Target.IsLegal(op) {
			run = append(run, op)
			continue
		}
		if len(run) > 0 {
			runs = append(runs, run)
			run = nil
		}
	}
	if len(run) > 0 {
		return 0, errors.InvalidIR(errors.PhaseExtract, run[len(run)-1].Kind,
			"legal op run reaches the end of the block; terminator is already in target form")
	}

	// Phase two: splice each run into a fresh region inserted where the
	// run began. Ops keep their relative order; the region's yield keeps
	// publishing the incoming token until a later stage threads real
	// dependencies.
	for _, run := range runs {
		exec := gpu.AsyncExecute()
		if err := rw.InsertBefore(run[0], exec); err != nil {
			return 0, err
		}
		rw.MoveOpsBefore(gpu.Body(exec), run)
	}
	return len(runs), nil
}
