package conversion

import (
	"go.uber.org/zap"

	"github.com/substratelabs/gpulower/errors"
	"github.com/substratelabs/gpulower/gpu"
	"github.com/substratelabs/gpulower/ir"
)

// defaultMaxIterations bounds the legalization fixpoint. Each useful
// iteration converts at least one op, so well-formed inputs converge
// long before this.
const defaultMaxIterations = 64

// Config carries everything a conversion run needs. All pieces are
// explicit; nothing is registered globally.
type Config struct {
	Converter *TypeConverter
	Target    *Target
	Patterns  *PatternSet

	// MaxIterations overrides the fixpoint bound when positive.
	MaxIterations int
}

// DefaultConfig assembles the full async lowering: region extraction,
// memory op rewriting, and call/signature type conversion against the
// gpu dialect target.
func DefaultConfig() Config {
	converter := DefaultConverter()
	target := DefaultTarget()
	patterns := NewPatternSet()
	AddAsyncConversionPatterns(patterns, converter, target)
	return Config{Converter: converter, Target: target, Patterns: patterns}
}

// DefaultTarget marks the gpu dialect legal and the memref ops that
// must be rewritten illegal. Everything else starts Unknown and is left
// alone unless a pattern applies.
func DefaultTarget() *Target {
	t := NewTarget()
	t.AddLegalDialect("gpu")
	t.AddIllegalKind(
		ir.KindMemRefView,
		ir.KindMemRefReinterpretCast,
		ir.KindMemRefAlloc,
		ir.KindMemRefAlloca,
		ir.KindMemRefDealloc,
	)
	return t
}

// AddAsyncConversionPatterns registers the async lowering patterns and
// the dynamic legality rule for calls: a call is legal when it has no
// results or all its result types are already converted.
func AddAsyncConversionPatterns(ps *PatternSet, converter *TypeConverter, target *Target) {
	ps.AddFuncPattern(&NestAsyncPattern{Target: target})
	ps.AddFuncPattern(&SignatureConversionPattern{Converter: converter})
	ps.Add(FoldViewPattern{}, ir.KindMemRefView)
	ps.Add(FoldReinterpretCastPattern{}, ir.KindMemRefReinterpretCast)
	ps.Add(RewriteAllocPattern{}, ir.KindMemRefAlloc, ir.KindMemRefAlloca)
	ps.Add(RewriteDeallocPattern{}, ir.KindMemRefDealloc)
	ps.Add(&ConvertOpTypesPattern{Converter: converter}, ir.KindFuncCall, ir.KindFuncReturn)

	target.AddDynamicallyLegal(ir.KindFuncCall, func(op *ir.Op) bool {
		if op.NumResults() == 0 {
			return true
		}
		for _, r := range op.Results() {
			if !converter.IsConverted(r.Type()) {
				return false
			}
		}
		return true
	})
}

// Apply converts one function. The whole conversion is transactional:
// on any error the function is rolled back to its input state and the
// error is returned; on success all edits are committed at once.
//
// Function-level patterns run first, then op patterns are driven to a
// fixpoint: each sweep walks a snapshot of the ops, tries the patterns
// registered for each non-legal op's kind in order, and stops when a
// full sweep changes nothing. Ops still explicitly illegal after the
// fixpoint fail the conversion.
func Apply(f *ir.Func, cfg Config) error {
	log := Logger()
	rw := NewRewriter(f)

	for _, p := range cfg.Patterns.FuncPatterns() {
		matched, err := p.MatchAndRewriteFunc(f, rw)
		if err != nil {
			rw.Rollback()
			return err
		}
		if matched {
			log.Debug("applied function pattern",
				zap.String("pattern", p.Name()),
				zap.String("func", f.Name))
		}
	}

	maxIter := cfg.MaxIterations
	if maxIter <= 0 {
		maxIter = defaultMaxIterations
	}

	for iter := 0; ; iter++ {
		if iter >= maxIter {
			rw.Rollback()
			return errors.New(errors.PhaseConvert, errors.KindUnconverted).
				Detail("no fixpoint after %d iterations", maxIter).
				Build()
		}

		changed := false
		var applyErr error
		f.WalkOps(func(op *ir.Op) {
			if applyErr != nil || op.Block() == nil {
				return
			}
			if cfg.Target.Legality(op) == Legal {
				return
			}
			for _, p := range cfg.Patterns.ForKind(op.Kind) {
				matched, err := p.MatchAndRewrite(op, rw)
				if err != nil {
					applyErr = err
					return
				}
				if matched {
					log.Debug("applied pattern",
						zap.String("pattern", p.Name()),
						zap.String("op", op.Kind))
					changed = true
					break
				}
			}
		})
		if applyErr != nil {
			rw.Rollback()
			return applyErr
		}
		if !changed {
			break
		}
	}

	var leftover *ir.Op
	f.WalkOps(func(op *ir.Op) {
		if leftover == nil && cfg.Target.Legality(op) == Illegal {
			leftover = op
		}
	})
	if leftover != nil {
		rw.Rollback()
		return errors.Unconverted(leftover.Kind, "no rewrite pattern matched its preconditions")
	}

	if err := gpu.VerifyFunc(f); err != nil {
		rw.Rollback()
		return err
	}

	rw.Commit()
	return nil
}

// ApplyModule converts every function in the module. Each function is
// all-or-nothing; the first failure stops the run with later functions
// untouched.
func ApplyModule(m *ir.Module, cfg Config) error {
	for _, f := range m.Funcs() {
		if err := Apply(f, cfg); err != nil {
			return errors.Wrap(errors.PhaseConvert, errors.KindUnconverted, err,
				"function "+f.Name+" failed to convert")
		}
	}
	return nil
}
