package model

import "fmt"

// Method is a declared method. Code is nil iff the method is abstract or
// native (spec §3: "code is present iff not abstract/native").
type Method struct {
	Class       *Class
	Name        string
	Proto       Proto
	AccessFlags AccessFlags
	Code        *Code

	// Annotations is the method-level annotation set from the declaring
	// class's annotations_directory_item, if any.
	Annotations []*Annotation
	// ParameterAnnotations holds one annotation set per formal parameter,
	// in declaration order, decoded from the directory's
	// annotation_set_ref_list; nil if the method has no parameter
	// annotations at all. An individual element is nil/empty for a
	// parameter that itself carries no annotations.
	ParameterAnnotations [][]*Annotation

	DexIndex int
}

// FQDN renders the method's stable identifier: "Lpkg/Name;->method(II)Ljava/lang/String;".
func (m *Method) FQDN() string {
	return fmt.Sprintf("%s->%s%s", m.Class.Descriptor(), m.Name, m.Proto.Descriptor())
}

// Signature is an alias for FQDN, used as the sort key in spec §4.4/§5
// ("sorted by (method.signature, offset)").
func (m *Method) Signature() string { return m.FQDN() }

func (m *Method) IsAbstract() bool { return m.AccessFlags.Has(AccAbstract) }
func (m *Method) IsNative() bool   { return m.AccessFlags.Has(AccNative) }
func (m *Method) IsStatic() bool   { return m.AccessFlags.Has(AccStatic) }

// Code is the disassembled-body-ready instruction stream and exception
// tables for one method. Instruction decoding itself lives in
// internal/disasm; Code here holds only what dexfile decoded structurally.
type Code struct {
	RegistersSize int
	InsSize       int
	OutsSize      int
	Insns         []uint16 // raw u16 stream, resolved into Instructions by internal/disasm
	Tries         []TryRange
	Handlers      []Handler
}

// TryRange is one try_item, addressed in code-unit (u16) offsets.
type TryRange struct {
	StartAddr uint32
	InsnCount uint16
	Handler   Handler
}

// Handler is a resolved exception handler.
type Handler struct {
	Catches      []Catch
	CatchAllAddr uint32
	HasCatchAll  bool
}

// Catch pairs a caught exception type with its handler address.
type Catch struct {
	Type Type
	Addr uint32
}
