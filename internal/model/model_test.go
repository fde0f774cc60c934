package model

import "testing"

func TestEvidenceDowncast(t *testing.T) {
	cls := &Class{Type: Type{Descriptor: "Lfoo/Bar;"}}
	ev := NewClassEvidence(cls)

	got, err := ev.AsClass()
	if err != nil {
		t.Fatalf("AsClass: %v", err)
	}
	if got != cls {
		t.Fatalf("AsClass returned a different class")
	}

	if _, err := ev.AsMethod(); err == nil {
		t.Fatal("expected type-mismatch error downcasting Class evidence to Method")
	} else if mm, ok := err.(*ErrTypeMismatch); !ok || mm.Want != EvidenceMethod || mm.Have != EvidenceClass {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSubclassesAndImplementers(t *testing.T) {
	ctx := NewContext()

	base := Type{Descriptor: "Ljava/lang/Object;"}
	iface := Type{Descriptor: "Ljava/lang/Runnable;"}

	super := &Class{Type: Type{Descriptor: "Lpkg/Super;"}, Super: &base}
	sub := &Class{Type: Type{Descriptor: "Lpkg/Sub;"}, Super: &Type{Descriptor: "Lpkg/Super;"}, Interfaces: []Type{iface}}

	df := &DexFile{Name: "classes.dex", Classes: []*Class{super, sub}}
	ctx.AddDexFile(df)

	subs := ctx.Subclasses("Lpkg/Super;")
	if len(subs) != 1 || subs[0] != "Lpkg/Sub;" {
		t.Fatalf("Subclasses = %v", subs)
	}

	impls := ctx.Implementers("Ljava/lang/Runnable;")
	if len(impls) != 1 || impls[0] != "Lpkg/Sub;" {
		t.Fatalf("Implementers = %v", impls)
	}

	if !ctx.IsSubclassOf("Lpkg/Sub;", "Lpkg/Super;") {
		t.Error("Lpkg/Sub; should be a subclass of Lpkg/Super;")
	}
	if !ctx.Implements("Lpkg/Sub;", "Ljava/lang/Runnable;") {
		t.Error("Lpkg/Sub; should implement Ljava/lang/Runnable;")
	}
}

func TestShadowedClassKeptForReporting(t *testing.T) {
	ctx := NewContext()
	first := &Class{Type: Type{Descriptor: "Lpkg/Dup;"}}
	dup := &Class{Type: Type{Descriptor: "Lpkg/Dup;"}}

	ctx.AddDexFile(&DexFile{Name: "classes.dex", Classes: []*Class{first}})
	ctx.AddDexFile(&DexFile{Name: "classes2.dex", Classes: []*Class{dup}})

	if ctx.ClassByDescriptor("Lpkg/Dup;") != first {
		t.Fatal("first definition should win")
	}
	shadows := ctx.Shadows("Lpkg/Dup;")
	if len(shadows) != 1 || shadows[0] != dup {
		t.Fatalf("shadows = %v", shadows)
	}
	if !dup.Shadowed {
		t.Error("shadowed class should be marked Shadowed")
	}
}

func TestTypeKind(t *testing.T) {
	cases := []struct {
		desc string
		kind TypeKind
	}{
		{"I", KindPrimitive},
		{"V", KindPrimitive},
		{"Ljava/lang/String;", KindReference},
		{"[I", KindArray},
		{"[Ljava/lang/String;", KindArray},
	}
	for _, c := range cases {
		got := Type{Descriptor: c.desc}.Kind()
		if got != c.kind {
			t.Errorf("Type(%q).Kind() = %v, want %v", c.desc, got, c.kind)
		}
	}
}
