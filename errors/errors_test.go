package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

// TestErrorFormat tests the rendered error message layout.
func TestErrorFormat(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want []string
	}{
		{
			name: "phase and kind",
			err:  &Error{Phase: PhaseConvert, Kind: KindUnconverted},
			want: []string{"[convert]", "unconverted"},
		},
		{
			name: "with op",
			err:  &Error{Phase: PhaseConvert, Kind: KindUnconverted, Op: "memref.copy"},
			want: []string{"at memref.copy"},
		},
		{
			name: "with type and detail",
			err: &Error{
				Phase: PhaseConvert, Kind: KindUnsupportedType,
				Type: "vector<4xi32>", Detail: "no byte size defined for type",
			},
			want: []string{"type vector<4xi32>", " - no byte size defined for type"},
		},
		{
			name: "with cause",
			err: &Error{
				Phase: PhaseDnn, Kind: KindInvalidInput,
				Cause: stderrors.New("boom"),
			},
			want: []string{"(caused by: boom)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("Error() = %q, want substring %q", got, w)
				}
			}
		})
	}
}

// TestErrorIs tests matching by phase and kind.
func TestErrorIs(t *testing.T) {
	err := Unconverted("memref.view", "no applicable pattern")
	target := &Error{Phase: PhaseConvert, Kind: KindUnconverted}

	if !stderrors.Is(err, target) {
		t.Errorf("errors.Is(%v, %v) = false, want true", err, target)
	}

	other := &Error{Phase: PhaseDnn, Kind: KindUnconverted}
	if stderrors.Is(err, other) {
		t.Errorf("errors.Is matched across phases")
	}
}

// TestErrorUnwrap tests the cause chain.
func TestErrorUnwrap(t *testing.T) {
	cause := stderrors.New("device lost")
	err := Wrap(PhaseDnn, KindInvalidInput, cause, "set stream")

	if !stderrors.Is(err, cause) {
		t.Errorf("wrapped cause not reachable via errors.Is")
	}
}

// TestBuilder tests structured construction.
func TestBuilder(t *testing.T) {
	err := New(PhaseVerify, KindInvalidIR).
		Op("gpu.mem.copy").
		Detail("expected %d operands, got %d", 4, 3).
		Build()

	if err.Phase != PhaseVerify || err.Kind != KindInvalidIR {
		t.Errorf("builder phase/kind = %s/%s", err.Phase, err.Kind)
	}
	if err.Op != "gpu.mem.copy" {
		t.Errorf("builder op = %q", err.Op)
	}
	if err.Detail != "expected 4 operands, got 3" {
		t.Errorf("builder detail = %q", err.Detail)
	}
}

// TestConvenienceConstructors tests the shorthand constructors.
func TestConvenienceConstructors(t *testing.T) {
	if e := RankMismatch(PhaseDnn, "paddings", 2); e.Kind != KindRankMismatch {
		t.Errorf("RankMismatch kind = %s", e.Kind)
	}
	if e := InvalidEnum(PhaseDnn, "mode", 7); e.Kind != KindInvalidEnum || e.Value != uint32(7) {
		t.Errorf("InvalidEnum = %+v", e)
	}
	if e := UnsupportedType(PhaseConvert, "tuple<>"); e.Type != "tuple<>" {
		t.Errorf("UnsupportedType type = %q", e.Type)
	}
	if e := UseAfterFree("host buffer"); e.Phase != PhaseExec {
		t.Errorf("UseAfterFree phase = %s", e.Phase)
	}
}
