// Package flow implements the branch-level symbolic executor: given a
// method, it walks every reachable instruction with an abstract register
// map instead of concrete values, forking at each conditional, and reports
// which branches are statically decidable (dead on one side) versus which
// remain genuinely data-dependent.
package flow

import "dexlens/internal/vm"

// AbsKind tags the precision an abstract register value carries.
type AbsKind int

const (
	// AbsTop means nothing is known about the value: it came from an
	// operation this analyser doesn't model. Revisit limits never produce
	// it; a path that hits Options.WidenAfter is dropped instead.
	AbsTop AbsKind = iota
	// AbsSymbolic marks an incoming parameter or other not-yet-narrowed
	// slot: distinct from AbsTop so a future pass could special-case
	// "this specific symbolic source" without touching the widening path.
	AbsSymbolic
	// AbsConcrete carries a fully known vm.Value, foldable through
	// constant arithmetic and comparable in an if-* guard.
	AbsConcrete
)

// AbsValue is one register's abstract value.
type AbsValue struct {
	Kind     AbsKind
	Slot     int // parameter/source slot, for AbsSymbolic
	Concrete vm.Value
}

func Top() AbsValue                      { return AbsValue{Kind: AbsTop} }
func Symbolic(slot int) AbsValue         { return AbsValue{Kind: AbsSymbolic, Slot: slot} }
func Concrete(v vm.Value) AbsValue       { return AbsValue{Kind: AbsConcrete, Concrete: v} }
func (a AbsValue) IsConcrete() bool      { return a.Kind == AbsConcrete }
func (a AbsValue) IsTopOrSymbolic() bool { return a.Kind != AbsConcrete }

// regState is the abstract register file at one worklist item, copy-on-fork
// so the taken and not-taken successors never alias each other's edits.
type regState map[int]AbsValue

func (s regState) clone() regState {
	c := make(regState, len(s))
	for k, v := range s {
		c[k] = v
	}
	return c
}

func (s regState) get(r int) AbsValue {
	if v, ok := s[r]; ok {
		return v
	}
	return Top()
}
