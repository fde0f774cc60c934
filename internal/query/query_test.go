package query

import (
	"testing"

	"dexlens/internal/model"
	"dexlens/internal/vm"
)

func u16(op, arg byte) uint16 { return uint16(op) | uint16(arg)<<8 }

func codeOf(regs, ins, outs int, insns []uint16) *model.Code {
	return &model.Code{RegistersSize: regs, InsSize: ins, OutsSize: outs, Insns: insns}
}

// buildTestContext wires one class Lpkg/A; with:
//   - a static field GREETING:Ljava/lang/String; set in <clinit>
//   - a virtual method greet()Ljava/lang/String; that references a string
//     constant and calls another method
//   - an add(II)I static method for Emulate/AnalyseBranches coverage
func buildTestContext() *model.Context {
	typeA := model.Type{Descriptor: "Lpkg/A;"}
	typeStr := model.Type{Descriptor: "Ljava/lang/String;"}
	typeI := model.Type{Descriptor: "I"}
	typeV := model.Type{Descriptor: "V"}

	cls := &model.Class{Type: typeA}

	greeting := &model.Field{Class: cls, Name: "GREETING", Type: typeStr}
	cls.StaticFields = []*model.Field{greeting}

	clinitInsns := []uint16{
		u16(0x1a, 0x00), 0x0000, // const-string v0, "hello"
		u16(0x69, 0x00), 0x0000, // sput-object v0, Lpkg/A;->GREETING:Ljava/lang/String;
		u16(0x0e, 0x00), // return-void
	}
	clinit := &model.Method{
		Class: cls, Name: "<clinit>",
		Proto: model.Proto{ReturnType: typeV},
		Code:  codeOf(1, 0, 0, clinitInsns),
	}

	greetInsns := []uint16{
		u16(0x1a, 0x00), 0x0000, // const-string v0, "hello"
		u16(0x11, 0x00), // return-object v0
	}
	greet := &model.Method{
		Class: cls, Name: "greet",
		Proto: model.Proto{ReturnType: typeStr},
		Code:  codeOf(1, 0, 0, greetInsns),
	}

	addInsns := []uint16{
		u16(0x12, 0x10), // const/4 v0, #1
		u16(0x12, 0x21), // const/4 v1, #2
		u16(0x32, 0x10), // if-eq v0, v1, +3
		3,
		u16(0x0e, 0x00), // return-void (fallthrough, live)
		u16(0x0e, 0x00), // return-void (taken, dead)
	}
	add := &model.Method{
		Class: cls, Name: "add",
		Proto: model.Proto{ReturnType: typeI, ParamTypes: []model.Type{typeI, typeI}},
		Code:  codeOf(2, 0, 0, addInsns),
	}

	cls.DirectMethods = []*model.Method{clinit, add}
	cls.VirtualMethods = []*model.Method{greet}

	df := &model.DexFile{
		Name:    "classes.dex",
		Strings: []string{"hello"},
		Fields:  []model.RawFieldResolved{{Class: typeA, Name: "GREETING", Type: typeStr}},
		Classes: []*model.Class{cls},
	}

	ctx := model.NewContext()
	ctx.AddDexFile(df)
	return ctx
}

func TestFindClassesMethodsFieldsStrings(t *testing.T) {
	s := New(buildTestContext())

	classes, err := s.Find(`Lpkg/A;`, KindClass)
	if err != nil || len(classes) != 1 {
		t.Fatalf("Find class: %v, %d results", err, len(classes))
	}

	methods, err := s.Find(`greet`, KindMethod)
	if err != nil || len(methods) != 1 {
		t.Fatalf("Find method: %v, %d results", err, len(methods))
	}
	m, err := methods[0].AsMethod()
	if err != nil || m.Name != "greet" {
		t.Fatalf("AsMethod: %v, %+v", err, m)
	}

	fields, err := s.Find(`GREETING`, KindField)
	if err != nil || len(fields) != 1 {
		t.Fatalf("Find field: %v, %d results", err, len(fields))
	}

	strs, err := s.Find(`hel+o`, KindString)
	if err != nil || len(strs) != 1 {
		t.Fatalf("Find string: %v, %d results", err, len(strs))
	}
}

func TestFindUnknownKind(t *testing.T) {
	s := New(buildTestContext())
	if _, err := s.Find(".*", Kind("bogus")); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestCrossReferencesForMethod(t *testing.T) {
	s := New(buildTestContext())
	m, err := s.FindMethodByFQDN("Lpkg/A;->greet()Ljava/lang/String;")
	if err != nil {
		t.Fatalf("FindMethodByFQDN: %v", err)
	}

	refs, err := s.CrossReferences(model.NewStringEvidence("hello"))
	if err != nil {
		t.Fatalf("CrossReferences: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("got %d sites referencing \"hello\", want 2", len(refs))
	}
	// Sites sort by method signature, so <clinit> comes before greet.
	site, err := refs[1].AsInstruction()
	if err != nil {
		t.Fatalf("AsInstruction: %v", err)
	}
	if site.Method != m {
		t.Fatalf("got method %v, want greet", site.Method)
	}
}

func TestCrossReferencesWrongKind(t *testing.T) {
	s := New(buildTestContext())
	if _, err := s.CrossReferences(model.Evidence{}); err == nil {
		t.Fatalf("expected type-mismatch error for zero-value Evidence")
	}
}

func TestGetStaticFieldAfterClinit(t *testing.T) {
	s := New(buildTestContext())
	val, ok, err := s.GetStaticField("Lpkg/A;->GREETING:Ljava/lang/String;")
	if err != nil {
		t.Fatalf("GetStaticField: %v", err)
	}
	if !ok {
		t.Fatalf("GetStaticField: ok = false, want true")
	}
	if val.Kind != vm.KindString || val.Str != "hello" {
		t.Fatalf("got %+v, want string \"hello\"", val)
	}
}

func TestGetStaticFieldNotInitialised(t *testing.T) {
	s := New(buildTestContext())
	_, ok, err := s.GetStaticField("Lpkg/Missing;->X:I")
	if err != nil {
		t.Fatalf("GetStaticField: %v", err)
	}
	if ok {
		t.Fatalf("GetStaticField: ok = true for unknown class, want false")
	}
}

func TestAnalyseBranchesDeadBranch(t *testing.T) {
	s := New(buildTestContext())
	m, err := s.FindMethodByFQDN("Lpkg/A;->add(II)I")
	if err != nil {
		t.Fatalf("FindMethodByFQDN: %v", err)
	}
	branches, err := s.AnalyseBranches(m, false)
	if err != nil {
		t.Fatalf("AnalyseBranches: %v", err)
	}
	if len(branches) != 1 {
		t.Fatalf("got %d branches, want 1: %+v", len(branches), branches)
	}
}

func TestEmulateInvokesMethod(t *testing.T) {
	s := New(buildTestContext())
	m, err := s.FindMethodByFQDN("Lpkg/A;->greet()Ljava/lang/String;")
	if err != nil {
		t.Fatalf("FindMethodByFQDN: %v", err)
	}
	ret, err := s.Emulate(m, nil)
	if err != nil {
		t.Fatalf("Emulate: %v", err)
	}
	if ret.Kind != vm.KindString || ret.Str != "hello" {
		t.Fatalf("got %+v, want string \"hello\"", ret)
	}
}
