package model

// AccessFlags mirrors the DEX access_flags bitset (shared by classes,
// fields, and methods).
type AccessFlags uint32

const (
	AccPublic       AccessFlags = 0x1
	AccPrivate      AccessFlags = 0x2
	AccProtected    AccessFlags = 0x4
	AccStatic       AccessFlags = 0x8
	AccFinal        AccessFlags = 0x10
	AccSynchronized AccessFlags = 0x20
	AccInterface    AccessFlags = 0x200
	AccAbstract     AccessFlags = 0x400
	AccNative       AccessFlags = 0x100
)

func (f AccessFlags) Has(bit AccessFlags) bool { return f&bit != 0 }

// Class is a resolved class definition, combining its class_def with its
// decoded fields and methods. Classes own their fields and methods by value.
type Class struct {
	Type        Type
	Super       *Type // nil for java.lang.Object and interfaces with no super
	Interfaces  []Type
	AccessFlags AccessFlags
	SourceFile  string // "" if unknown

	StaticFields   []*Field
	InstanceFields []*Field
	DirectMethods  []*Method
	VirtualMethods []*Method

	// Annotations is the class-level annotation set from the class's
	// annotations_directory_item, if any (spec §3 Class.annotations).
	Annotations []*Annotation

	// DexIndex is the index of the owning DexFile within its Context.
	DexIndex int
	// Shadowed is true if an earlier DexFile in the context already defined
	// this descriptor; shadowed classes are kept for reporting but excluded
	// from dispatch (spec §4.2: "first definition wins").
	Shadowed bool
}

// Descriptor is the class's type descriptor, e.g. "Lpkg/sub/Name;".
func (c *Class) Descriptor() string { return c.Type.Descriptor }

// AllMethods returns direct and virtual methods concatenated.
func (c *Class) AllMethods() []*Method {
	out := make([]*Method, 0, len(c.DirectMethods)+len(c.VirtualMethods))
	out = append(out, c.DirectMethods...)
	out = append(out, c.VirtualMethods...)
	return out
}

// AllFields returns static and instance fields concatenated.
func (c *Class) AllFields() []*Field {
	out := make([]*Field, 0, len(c.StaticFields)+len(c.InstanceFields))
	out = append(out, c.StaticFields...)
	out = append(out, c.InstanceFields...)
	return out
}

// FindMethod looks up a declared method by name+proto on this class only
// (no superclass walk — that's VM dispatch's job).
func (c *Class) FindMethod(name, protoDesc string) *Method {
	for _, m := range c.AllMethods() {
		if m.Name == name && m.Proto.Descriptor() == protoDesc {
			return m
		}
	}
	return nil
}

// FindField looks up a declared field by name+type on this class only.
func (c *Class) FindField(name, typeDescriptor string) *Field {
	for _, f := range c.AllFields() {
		if f.Name == name && f.Type.Descriptor == typeDescriptor {
			return f
		}
	}
	return nil
}

// accessFlags converts a raw DEX access_flags bitset to AccessFlags.
func accessFlags(v uint32) AccessFlags { return AccessFlags(v) }
