package xref

import (
	"testing"

	"dexlens/internal/model"
)

func buildTestContext() *model.Context {
	typeA := model.Type{Descriptor: "Lpkg/A;"}
	typeI := model.Type{Descriptor: "I"}
	typeV := model.Type{Descriptor: "V"}

	// const-string v0, string@0 ("hi")
	// iget v0, v0, field@0  (Lpkg/A;->f:I)
	// invoke-static {}, method@0  (Lpkg/A;->g()V)
	// return-void
	insns := []uint16{
		0x001a, 0x0000, // const-string v0, "hi"
		0x0052, 0x0000, // iget v0, v0, field@0
		0x0071, 0x0000, 0x0000, // invoke-static {}, method@0
		0x000e, // return-void
	}

	fMethod := &model.Method{Proto: model.Proto{ReturnType: typeV}}
	gMethod := &model.Method{Name: "g", Proto: model.Proto{ReturnType: typeV}}
	field := &model.Field{Name: "f", Type: typeI}

	cls := &model.Class{Type: typeA}
	fMethod.Name = "m"
	fMethod.Class = cls
	fMethod.Code = &model.Code{RegistersSize: 2, Insns: insns}
	gMethod.Class = cls
	field.Class = cls

	cls.VirtualMethods = []*model.Method{fMethod, gMethod}
	cls.InstanceFields = []*model.Field{field}

	df := &model.DexFile{
		Name:    "classes.dex",
		Strings: []string{"hi"},
		Fields:  []model.RawFieldResolved{{Class: typeA, Name: "f", Type: typeI}},
		Methods: []model.RawMethodResolved{{Class: typeA, Name: "g", Proto: model.Proto{ReturnType: typeV}}},
		Classes: []*model.Class{cls},
	}

	ctx := model.NewContext()
	ctx.AddDexFile(df)
	return ctx
}

func TestIndexStringMethodField(t *testing.T) {
	ctx := buildTestContext()
	ix := New(ctx)

	strSites := ix.String("hi")
	if len(strSites) != 1 || strSites[0].Method.Name != "m" || strSites[0].Offset != 0 {
		t.Fatalf("String(hi) = %+v", strSites)
	}

	fieldSites := ix.Field("Lpkg/A;->f:I")
	if len(fieldSites) != 1 || fieldSites[0].Offset != 2 {
		t.Fatalf("Field sites = %+v", fieldSites)
	}

	methodSites := ix.Method("Lpkg/A;->g()V")
	if len(methodSites) != 1 || methodSites[0].Offset != 4 {
		t.Fatalf("Method sites = %+v", methodSites)
	}
}

func TestIndexIsLazyAndCached(t *testing.T) {
	ctx := buildTestContext()
	ix := New(ctx)
	if ix.sites != nil {
		t.Fatal("index should not be built before first query")
	}
	_ = ix.String("hi")
	if ix.sites == nil {
		t.Fatal("index should be built after first query")
	}
}

func TestFieldAccessesClassifiesReadVsWrite(t *testing.T) {
	ctx := buildTestContext()
	ix := New(ctx)
	accesses := ix.FieldAccesses("Lpkg/A;->f:I")
	if len(accesses) != 1 {
		t.Fatalf("accesses = %+v", accesses)
	}
	if accesses[0].IsWrite {
		t.Fatal("iget is a read, not a write")
	}
}
