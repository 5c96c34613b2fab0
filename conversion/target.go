package conversion

import (
	"strings"

	"github.com/substratelabs/gpulower/ir"
)

// Legality is the classification of an op against a Target.
type Legality int

const (
	// Unknown ops are neither converted nor wrapped; the driver leaves
	// them alone unless a pattern applies.
	Unknown Legality = iota
	// Legal ops are already in target form.
	Legal
	// Illegal ops must be converted; any left after the fixpoint fail
	// the whole function.
	Illegal
)

// Target describes which ops are considered legal (already lowered).
// It is the externally supplied legality predicate of the region
// extractor and the completion criterion of the legalization fixpoint.
type Target struct {
	legalKinds    map[string]bool
	illegalKinds  map[string]bool
	legalDialects map[string]bool
	dynamic       map[string]func(*ir.Op) bool
}

// NewTarget creates an empty target; all ops start Unknown.
func NewTarget() *Target {
	return &Target{
		legalKinds:    make(map[string]bool),
		illegalKinds:  make(map[string]bool),
		legalDialects: make(map[string]bool),
		dynamic:       make(map[string]func(*ir.Op) bool),
	}
}

// AddLegalDialect marks every op kind with the given prefix (up to the
// first '.') as legal, e.g. "gpu" covers "gpu.mem.copy".
func (t *Target) AddLegalDialect(prefixes ...string) {
	for _, p := range prefixes {
		t.legalDialects[p] = true
	}
}

// AddLegalKind marks specific op kinds legal.
func (t *Target) AddLegalKind(kinds ...string) {
	for _, k := range kinds {
		t.legalKinds[k] = true
	}
}

// AddIllegalKind marks op kinds that must not survive conversion.
func (t *Target) AddIllegalKind(kinds ...string) {
	for _, k := range kinds {
		t.illegalKinds[k] = true
	}
}

// AddDynamicallyLegal registers a per-op legality callback for a kind.
// The callback takes precedence over static kind and dialect rules.
func (t *Target) AddDynamicallyLegal(kind string, fn func(*ir.Op) bool) {
	t.dynamic[kind] = fn
}

// Legality classifies an op.
func (t *Target) Legality(op *ir.Op) Legality {
	if fn, ok := t.dynamic[op.Kind]; ok {
		if fn(op) {
			return Legal
		}
		return Illegal
	}
	if t.illegalKinds[op.Kind] {
		return Illegal
	}
	if t.legalKinds[op.Kind] {
		return Legal
	}
	if dialect, _, ok := strings.Cut(op.Kind, "."); ok && t.legalDialects[dialect] {
		return Legal
	}
	return Unknown
}

// IsLegal reports whether the op is already in target form. This is the
// predicate the region extractor scans with.
func (t *Target) IsLegal(op *ir.Op) bool {
	return t.Legality(op) == Legal
}
