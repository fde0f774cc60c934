package model

import "fmt"

// Field is a declared field. StaticValue is non-nil only for a static field
// with an explicit entry in the class's encoded_array (spec §3).
type Field struct {
	Class       *Class
	Name        string
	Type        Type
	AccessFlags AccessFlags
	StaticValue *EncodedValue

	// Annotations is the field's annotation set from the declaring class's
	// annotations_directory_item, if any.
	Annotations []*Annotation

	DexIndex int
}

// FQDN renders the field's stable identifier: "Lpkg/Name;->field:I".
func (f *Field) FQDN() string {
	return fmt.Sprintf("%s->%s:%s", f.Class.Descriptor(), f.Name, f.Type.Descriptor)
}

func (f *Field) IsStatic() bool { return f.AccessFlags.Has(AccStatic) }

// EncodedValue is a resolved static/annotation constant. Exactly one field
// is meaningful per Kind; see dexfile.EncodedValueType for the source tags.
type EncodedValue struct {
	Kind    EncodedValueKind
	Bool    bool
	Long    int64   // Byte/Short/Char/Int/Long all normalize into Long
	Float   float32
	Double  float64
	Str     string // resolved string, for Kind == EVString
	TypeRef Type   // for Kind == EVType
	FieldRef *Field // for Kind == EVField/EVEnum; the resolver leaves it nil
	MethodRef *Method // for Kind == EVMethod; the resolver leaves it nil
	Array   []EncodedValue
	Annotation *Annotation
}

// EncodedValueKind classifies a resolved EncodedValue.
type EncodedValueKind int

const (
	EVNull EncodedValueKind = iota
	EVBool
	EVInt // covers byte/short/char/int/long, stored widened in Long
	EVFloat
	EVDouble
	EVString
	EVType
	EVField
	EVMethod
	EVEnum
	EVArray
	EVAnnotation
	// EVMethodType/EVMethodHandle are decoded structurally (an index into
	// the right pool) but never evaluated by the VM — spec §9 Open Question.
	EVMethodType
	EVMethodHandle
)

// Annotation is a resolved encoded_annotation: a type plus name/value pairs.
// Visibility is meaningful only for annotations reached through a class's
// annotations_directory_item; a VALUE_ANNOTATION encoded_value carries no
// visibility byte of its own and resolves with the zero value (Build).
type Annotation struct {
	Type       Type
	Visibility AnnotationVisibility
	Names      []string
	Values     []EncodedValue
}

// AnnotationVisibility classifies how far an annotation is meant to survive:
// build-time only, visible to the runtime via reflection, or system/internal.
type AnnotationVisibility int

const (
	VisibilityBuild AnnotationVisibility = iota
	VisibilityRuntime
	VisibilitySystem
)
