package conversion

import (
	"github.com/substratelabs/gpulower/ir"
)

// Pattern rewrites one op kind (or a small family of kinds) into target
// form. MatchAndRewrite returns matched=false with a nil error when a
// precondition does not hold; that is a normal outcome and the driver
// simply tries the next pattern. A non-nil error aborts conversion of
// the whole function.
type Pattern interface {
	Name() string
	MatchAndRewrite(op *ir.Op, rw *Rewriter) (matched bool, err error)
}

// FuncPattern rewrites at whole-function granularity, e.g. signature
// conversion and async region extraction.
type FuncPattern interface {
	Name() string
	MatchAndRewriteFunc(f *ir.Func, rw *Rewriter) (matched bool, err error)
}

// PatternSet holds rewrite rules keyed by the op kind they apply to.
type PatternSet struct {
	byKind map[string][]Pattern
	funcs  []FuncPattern
}

// NewPatternSet creates an empty set.
func NewPatternSet() *PatternSet {
	return &PatternSet{byKind: make(map[string][]Pattern)}
}

// Add registers a pattern for the given op kinds.
func (ps *PatternSet) Add(p Pattern, kinds ...string) {
	for _, k := range kinds {
		ps.byKind[k] = append(ps.byKind[k], p)
	}
}

// AddFuncPattern registers a function-level pattern.
func (ps *PatternSet) AddFuncPattern(p FuncPattern) {
	ps.funcs = append(ps.funcs, p)
}

// ForKind returns the patterns registered for an op kind.
func (ps *PatternSet) ForKind(kind string) []Pattern {
	return ps.byKind[kind]
}

// FuncPatterns returns the function-level patterns.
func (ps *PatternSet) FuncPatterns() []FuncPattern {
	return ps.funcs
}

// Rewriter applies IR mutations on behalf of patterns and records an
// undo entry for each one, so a failed conversion rolls the function
// back to its pre-conversion state. All edits made through a Rewriter
// are provisional until Commit.
//
// The rewriter also remembers the pre-conversion type of every value
// whose type it changed or replaced, so later patterns can reason about
// the source-level type (e.g. byte sizes of memrefs) after the value
// has already been narrowed to a target handle type.
type Rewriter struct {
	fn       *ir.Func
	undo     []func()
	original map[*ir.Value]ir.Type
}

// NewRewriter creates a rewriter over a function.
func NewRewriter(f *ir.Func) *Rewriter {
	return &Rewriter{fn: f, original: make(map[*ir.Value]ir.Type)}
}

// Func returns the function under rewrite.
func (rw *Rewriter) Func() *ir.Func { return rw.fn }

// InsertBefore inserts a detached op before ref.
func (rw *Rewriter) InsertBefore(ref, op *ir.Op) error {
	block := ref.Block()
	if err := block.InsertBefore(ref, op); err != nil {
		return err
	}
	rw.undo = append(rw.undo, func() { block.Remove(op) })
	return nil
}

// MoveOpsBefore detaches the given ops from their current blocks and
// appends them, in order, to dst before dst's terminator. Positions are
// recorded op by op so rollback restores the original layout exactly.
func (rw *Rewriter) MoveOpsBefore(dst *ir.Block, ops []*ir.Op) {
	term := dst.Terminator()
	for _, op := range ops {
		src := op.Block()
		idx := src.IndexOf(op)
		src.Remove(op)
		if term != nil {
			if err := dst.InsertBefore(term, op); err != nil {
				// The terminator belongs to dst; insertion cannot fail.
				panic(err)
			}
		} else {
			dst.Append(op)
		}
		rw.undo = append(rw.undo, func() {
			dst.Remove(op)
			restoreAt(src, idx, op)
		})
	}
}

// ReplaceOp replaces every use of op's results with the given values
// and detaches op. The replacement count must match the result count.
// The pre-conversion result types are recorded against the new values.
func (rw *Rewriter) ReplaceOp(op *ir.Op, with ...*ir.Value) {
	type use struct {
		user *ir.Op
		pos  int
		old  *ir.Value
	}
	var uses []use
	rw.fn.WalkOps(func(user *ir.Op) {
		for i, v := range user.Operands() {
			for ri, r := range op.Results() {
				if v == r {
					uses = append(uses, use{user, i, v})
					user.Operands()[i] = with[ri]
				}
			}
		}
	})
	for ri, r := range op.Results() {
		rw.noteOriginalType(with[ri], r.Type())
	}

	block := op.Block()
	idx := block.IndexOf(op)
	block.Remove(op)

	rw.undo = append(rw.undo, func() {
		restoreAt(block, idx, op)
		for _, u := range uses {
			u.user.Operands()[u.pos] = u.old
		}
	})
}

// EraseOp detaches an op with no result uses.
func (rw *Rewriter) EraseOp(op *ir.Op) {
	block := op.Block()
	idx := block.IndexOf(op)
	block.Remove(op)
	rw.undo = append(rw.undo, func() { restoreAt(block, idx, op) })
}

// SetOperands replaces an op's operand list.
func (rw *Rewriter) SetOperands(op *ir.Op, operands ...*ir.Value) {
	old := append([]*ir.Value(nil), op.Operands()...)
	op.SetOperands(operands...)
	rw.undo = append(rw.undo, func() { op.SetOperands(old...) })
}

// SetValueType changes a value's type in place, recording the original.
// The recording happens after the change so the no-op guard compares the
// old type against the new one.
func (rw *Rewriter) SetValueType(v *ir.Value, t ir.Type) {
	old := v.Type()
	v.SetType(t)
	rw.noteOriginalType(v, old)
	rw.undo = append(rw.undo, func() { v.SetType(old) })
}

// SetFuncType changes the signature of the function under rewrite.
func (rw *Rewriter) SetFuncType(t ir.FuncType) {
	old := rw.fn.Type()
	rw.fn.SetType(t)
	rw.undo = append(rw.undo, func() { rw.fn.SetType(old) })
}

// OriginalType returns the value's type as it was before any rewrite
// touched it. For values the rewriter never retyped or substituted it
// is simply the current type.
func (rw *Rewriter) OriginalType(v *ir.Value) ir.Type {
	if t, ok := rw.original[v]; ok {
		return t
	}
	return v.Type()
}

// noteOriginalType records the pre-conversion type of v, keeping the
// earliest recording when v is rewritten more than once.
func (rw *Rewriter) noteOriginalType(v *ir.Value, t ir.Type) {
	if _, ok := rw.original[v]; !ok && !v.Type().Same(t) {
		rw.original[v] = t
	}
}

// Commit makes all recorded edits permanent.
func (rw *Rewriter) Commit() {
	rw.undo = nil
}

// Rollback undoes every edit in reverse order, restoring the function
// to its state at NewRewriter time.
func (rw *Rewriter) Rollback() {
	for i := len(rw.undo) - 1; i >= 0; i-- {
		rw.undo[i]()
	}
	rw.undo = nil
	rw.original = make(map[*ir.Value]ir.Type)
}

// restoreAt re-inserts a detached op at its recorded position.
func restoreAt(b *ir.Block, idx int, op *ir.Op) {
	ops := b.Ops()
	if idx >= len(ops) {
		b.Append(op)
		return
	}
	if err := b.InsertBefore(ops[idx], op); err != nil {
		panic(err)
	}
}
