package conversion

import (
	"github.com/substratelabs/gpulower/ir"
)

// SignatureConversionPattern rewrites a function's signature and entry
// block arguments through the type converter. No match when the
// signature does not convert or is already in target form.
type SignatureConversionPattern struct {
	Converter *TypeConverter
}

func (p *SignatureConversionPattern) Name() string { return "convert-func-signature" }

func (p *SignatureConversionPattern) MatchAndRewriteFunc(f *ir.Func, rw *Rewriter) (bool, error) {
	sig := f.Type()
	params, ok := p.Converter.ConvertTypes(sig.Params)
	if !ok {
		return false, nil
	}
	results, ok := p.Converter.ConvertTypes(sig.Results)
	if !ok {
		return false, nil
	}
	converted := ir.FuncType{Params: params, Results: results}
	if converted.Same(sig) {
		return false, nil
	}

	rw.SetFuncType(converted)
	for i, arg := range f.EntryBlock().Arguments() {
		if !arg.Type().Same(params[i]) {
			rw.SetValueType(arg, params[i])
		}
	}
	return true, nil
}

// ConvertOpTypesPattern rebuilds call-like and return-like ops with
// converted result types, carrying operands and attributes over
// unchanged. Ops whose results are already in converted form do not
// match, which is what makes zero-result calls trivially legal.
type ConvertOpTypesPattern struct {
	Converter *TypeConverter
}

func (p *ConvertOpTypesPattern) Name() string { return "convert-op-result-types" }

func (p *ConvertOpTypesPattern) MatchAndRewrite(op *ir.Op, rw *Rewriter) (bool, error) {
	resultTypes := make([]ir.Type, op.NumResults())
	for i, r := range op.Results() {
		resultTypes[i] = r.Type()
	}
	converted, ok := p.Converter.ConvertTypes(resultTypes)
	if !ok {
		return false, nil
	}
	if ir.SameTypes(converted, resultTypes) {
		return false, nil
	}

	replacement := ir.NewOp(op.Kind, op.Operands(), converted)
	replacement.SetAttrs(op.Attrs())
	if err := rw.InsertBefore(op, replacement); err != nil {
		return false, err
	}
	rw.ReplaceOp(op, replacement.Results()...)
	return true, nil
}
