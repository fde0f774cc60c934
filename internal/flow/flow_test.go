package flow

import (
	"testing"

	"dexlens/internal/model"
)

func u16(op, arg byte) uint16 { return uint16(op) | uint16(arg)<<8 }

func codeOf(regs, ins, outs int, insns []uint16) *model.Code {
	return &model.Code{RegistersSize: regs, InsSize: ins, OutsSize: outs, Insns: insns}
}

// TestDeadBranchBothConcrete exercises the spec's own S2 example: "int x =
// 1; if (x == 2) A else B" must report exactly one Branching whose dead
// side is the taken (equal) edge.
func TestDeadBranchBothConcrete(t *testing.T) {
	insns := []uint16{
		u16(0x12, 0x10), // const/4 v0, #1
		u16(0x12, 0x21), // const/4 v1, #2
		u16(0x32, 0x10), // if-eq v0, v1, +3
		3,
		u16(0x0e, 0x00), // return-void  (fallthrough: not taken, runs)
		u16(0x0e, 0x00), // return-void  (taken: dead)
	}
	m := &model.Method{
		Name:  "deadBranch",
		Proto: model.Proto{ReturnType: model.Type{Descriptor: "V"}},
		Code:  codeOf(2, 0, 0, insns),
	}
	m.Class = &model.Class{Type: model.Type{Descriptor: "Lpkg/Flow;"}}

	branches, err := AnalyseBranches(m, nil, false, DefaultOptions())
	if err != nil {
		t.Fatalf("AnalyseBranches: %v", err)
	}
	if len(branches) != 1 {
		t.Fatalf("got %d branches, want 1: %+v", len(branches), branches)
	}
	if branches[0].Dead != DeadTaken {
		t.Fatalf("Dead = %v, want DeadTaken", branches[0].Dead)
	}
	if branches[0].Method != m {
		t.Fatalf("Method backreference mismatch")
	}
}

// TestLiveBranchOnSymbolicParam checks that a guard comparing an incoming
// parameter (Symbolic, not concrete) against a constant is reported as
// live (DeadNone) since neither mode can decide it statically.
func TestLiveBranchOnSymbolicParam(t *testing.T) {
	insns := []uint16{
		u16(0x12, 0x10), // const/4 v0, #1
		u16(0x32, 0x10), // if-eq v0, v1, +3
		3,
		u16(0x0e, 0x00),
		u16(0x0e, 0x00),
	}
	m := &model.Method{
		Name:  "liveBranch",
		Proto: model.Proto{ReturnType: model.Type{Descriptor: "V"}},
		Code:  codeOf(2, 1, 0, insns), // 1 ins register: v1 is the incoming parameter
	}
	m.Class = &model.Class{Type: model.Type{Descriptor: "Lpkg/Flow;"}}

	branches, err := AnalyseBranches(m, nil, false, DefaultOptions())
	if err != nil {
		t.Fatalf("AnalyseBranches: %v", err)
	}
	if len(branches) != 1 {
		t.Fatalf("got %d branches, want 1: %+v", len(branches), branches)
	}
	if branches[0].Dead != DeadNone {
		t.Fatalf("Dead = %v, want DeadNone (v1 is an unconstrained parameter)", branches[0].Dead)
	}
}

// TestConservativeModeAgreesOnConcreteGuard checks that conservative mode
// reaches the same verdict as non-conservative mode when both operands are
// concrete (this analyser's documented interpretation of the spec's
// conservative-mode clause: it only affects undecidable guards, which stay
// undecidable either way).
func TestConservativeModeAgreesOnConcreteGuard(t *testing.T) {
	insns := []uint16{
		u16(0x12, 0x10), // const/4 v0, #1
		u16(0x12, 0x21), // const/4 v1, #2
		u16(0x32, 0x10), // if-eq v0, v1, +3
		3,
		u16(0x0e, 0x00),
		u16(0x0e, 0x00),
	}
	m := &model.Method{
		Name:  "conservativeBranch",
		Proto: model.Proto{ReturnType: model.Type{Descriptor: "V"}},
		Code:  codeOf(2, 0, 0, insns),
	}
	m.Class = &model.Class{Type: model.Type{Descriptor: "Lpkg/Flow;"}}

	branches, err := AnalyseBranches(m, nil, true, DefaultOptions())
	if err != nil {
		t.Fatalf("AnalyseBranches: %v", err)
	}
	if len(branches) != 1 || branches[0].Dead != DeadTaken {
		t.Fatalf("conservative mode: got %+v, want one DeadTaken branch", branches)
	}
}

// TestWideningTerminatesOnLoop checks that a backward-branching loop whose
// counter the analyser can't fold indefinitely still terminates the
// worklist via the per-PC revisit cap, rather than looping forever.
func TestWideningTerminatesOnLoop(t *testing.T) {
	insns := []uint16{
		u16(0x38, 0x00), // [0] if-eqz v0, +0  (infinite self-loop on an unfoldable guard; offset0, size2)
		0x0000,
	}
	m := &model.Method{
		Name:  "loopy",
		Proto: model.Proto{ReturnType: model.Type{Descriptor: "V"}},
		Code:  codeOf(1, 1, 0, insns),
	}
	m.Class = &model.Class{Type: model.Type{Descriptor: "Lpkg/Flow;"}}

	opts := Options{MaxSteps: 1000, WidenAfter: 4}
	branches, err := AnalyseBranches(m, nil, false, opts)
	if err != nil {
		t.Fatalf("AnalyseBranches: %v", err)
	}
	// v0 is the incoming parameter (RegistersSize=1, InsSize=1), so it stays
	// Symbolic and the guard never folds: the taken edge targets offset 0,
	// itself, and would be re-enqueued forever without the revisit cap.
	if len(branches) != 1 {
		t.Fatalf("got %d branches, want 1: %+v", len(branches), branches)
	}
}

func TestBatchIsOrderPreserving(t *testing.T) {
	mk := func(name string, lit byte) *model.Method {
		insns := []uint16{
			u16(0x12, lit),
			u16(0x0f, 0x00),
		}
		m := &model.Method{Name: name, Proto: model.Proto{ReturnType: model.Type{Descriptor: "I"}}, Code: codeOf(1, 0, 0, insns)}
		m.Class = &model.Class{Type: model.Type{Descriptor: "Lpkg/Flow;"}}
		return m
	}
	methods := []*model.Method{mk("a", 0x10), mk("b", 0x20), mk("c", 0x30)}

	results := AnalyseBranchesBatch(methods, nil, false, DefaultOptions(), 2, nil)
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for i, r := range results {
		if r.Method != methods[i] {
			t.Fatalf("result %d method mismatch: got %v, want %v", i, r.Method, methods[i])
		}
	}
}
