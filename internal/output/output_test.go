package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"dexlens/internal/flow"
	"dexlens/internal/model"
	"dexlens/internal/vm"
)

func TestEvidenceToJSONVariants(t *testing.T) {
	cls := &model.Class{Type: model.Type{Descriptor: "Lpkg/A;"}}
	m := &model.Method{Class: cls, Name: "go", Proto: model.Proto{ReturnType: model.Type{Descriptor: "V"}}}
	f := &model.Field{Class: cls, Name: "x", Type: model.Type{Descriptor: "I"}}

	cases := []struct {
		name string
		ev   model.Evidence
		want string
	}{
		{"class", model.NewClassEvidence(cls), "Lpkg/A;"},
		{"method", model.NewMethodEvidence(m), "Lpkg/A;->go()V"},
		{"field", model.NewFieldEvidence(f), "Lpkg/A;->x:I"},
		{"string", model.NewStringEvidence("hi"), "hi"},
	}
	for _, c := range cases {
		j, err := EvidenceToJSON(c.ev)
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		got := j.Class + j.Method + j.Field + j.String
		if got != c.want {
			t.Fatalf("%s: got %q, want %q", c.name, got, c.want)
		}
	}
}

func TestEvidenceToJSONInstructionAndFieldAccess(t *testing.T) {
	cls := &model.Class{Type: model.Type{Descriptor: "Lpkg/A;"}}
	m := &model.Method{Class: cls, Name: "go", Proto: model.Proto{ReturnType: model.Type{Descriptor: "V"}}}
	f := &model.Field{Class: cls, Name: "x", Type: model.Type{Descriptor: "I"}}
	site := model.CiteSite{Method: m, Offset: 4}

	ij, err := EvidenceToJSON(model.NewInstructionEvidence(site))
	if err != nil {
		t.Fatalf("instruction: %v", err)
	}
	if ij.Instruction == nil || ij.Instruction.Method != "Lpkg/A;->go()V" || ij.Instruction.Offset != 4 {
		t.Fatalf("got %+v", ij.Instruction)
	}

	faj, err := EvidenceToJSON(model.NewFieldAccessEvidence(model.FieldAccess{Site: site, Field: f, IsWrite: true}))
	if err != nil {
		t.Fatalf("field access: %v", err)
	}
	if faj.FieldAccess == nil || faj.FieldAccess.Field != "Lpkg/A;->x:I" || !faj.FieldAccess.IsWrite {
		t.Fatalf("got %+v", faj.FieldAccess)
	}
}

func TestBranchingToJSON(t *testing.T) {
	cls := &model.Class{Type: model.Type{Descriptor: "Lpkg/A;"}}
	m := &model.Method{Class: cls, Name: "go", Proto: model.Proto{ReturnType: model.Type{Descriptor: "V"}}}
	b := flow.Branching{Method: m, PC: 2, TakenPC: 5, FallthroughPC: 4, Dead: flow.DeadTaken}

	j := BranchingToJSON(b)
	if j.Method != "Lpkg/A;->go()V" || j.Dead != "taken" || j.TakenPC != 5 || j.FallthroughPC != 4 {
		t.Fatalf("got %+v", j)
	}
}

func TestValueToJSONVariants(t *testing.T) {
	cases := []struct {
		v    vm.Value
		kind string
	}{
		{vm.VInt(42), "int"},
		{vm.VLong(42), "long"},
		{vm.VString("hi"), "string"},
		{vm.VBool(true), "bool"},
		{vm.VDouble(1.5), "double"},
	}
	for _, c := range cases {
		j := ValueToJSON(c.v)
		if j.Kind != c.kind {
			t.Fatalf("got kind %q, want %q", j.Kind, c.kind)
		}
	}
	if j := ValueToJSON(vm.VInt(42)); j.Int != 42 {
		t.Fatalf("int value got %d, want 42", j.Int)
	}
	if j := ValueToJSON(vm.VString("hi")); j.Str != "hi" {
		t.Fatalf("string value got %q, want hi", j.Str)
	}
}

func TestWriteProducesValidJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, []int{1, 2, 3}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	var out []int
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(out) != 3 || out[2] != 3 {
		t.Fatalf("got %v", out)
	}
}
