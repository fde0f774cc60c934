package model

import (
	"fmt"
	"regexp"
	"sort"

	"dexlens/internal/dexfile"
)

// DexFile is a resolved DEX file: its own pools plus the classes it defines.
// Ownership: DexFile owns its pools and classes; classes own methods/fields
// by value (spec §3 "Ownership").
type DexFile struct {
	Name       string // archive entry name, e.g. "classes2.dex"
	Identifier string // content hash, stable for the life of a Context
	IsPrimary  bool   // matches classes.dex or classes\d+.dex at the archive root

	Strings []string
	Types   []Type
	Protos  []Proto
	Fields  []RawFieldResolved
	Methods []RawMethodResolved
	Classes []*Class
}

// RawFieldResolved/RawMethodResolved retain the file-local field/method id
// tables resolved to Type/name, used when decoding instruction operands
// that reference a field_id/method_id directly (not via a declared Field).
type RawFieldResolved struct {
	Class Type
	Name  string
	Type  Type
}

type RawMethodResolved struct {
	Class Type
	Name  string
	Proto Proto
}

// primaryDexPattern matches "classes.dex" or "classesN.dex".
var primaryDexPattern = regexp.MustCompile(`^classes[0-9]*\.dex$`)

// Context aggregates one or more DexFiles into a unified namespace and
// derives global indices (class-by-descriptor, subclasses-of,
// implementers-of). It owns all DexFiles (spec §3 "Ownership").
type Context struct {
	Dexes []*DexFile

	// FailedDexes records the members a loader skipped because BuildFromDex
	// failed for them (spec §7: "Parse errors are fatal for the affected DEX
	// file only; the context records it as a failed member and continues
	// with the rest"). The winning classes reported by AllClasses/
	// ClassByDescriptor never come from a failed member.
	FailedDexes []FailedDex

	byDescriptor map[string]*Class // first definition wins
	shadows      map[string][]*Class

	subclasses   map[string][]string // super descriptor -> direct subclass descriptors
	implementers map[string][]string // interface descriptor -> implementing class descriptors
}

// FailedDex records one DEX archive member a loader could not parse.
type FailedDex struct {
	Name string // archive entry name, e.g. "classes2.dex"
	Err  error
}

// AddFailedDex records a skipped member (spec §7 propagation policy).
func (c *Context) AddFailedDex(name string, err error) {
	c.FailedDexes = append(c.FailedDexes, FailedDex{Name: name, Err: err})
}

// BuildFromDex parses a single raw DEX blob into a resolved DexFile ready to
// be added to a Context. name is the archive entry name (used for primary/
// secondary classification); identifier is a caller-supplied stable hash.
func BuildFromDex(data []byte, name, identifier string) (*DexFile, error) {
	raw, err := dexfile.Parse(data)
	if err != nil {
		return nil, err
	}
	return resolveDexFile(raw, name, identifier)
}

func resolveDexFile(raw *dexfile.RawDexFile, name, identifier string) (*DexFile, error) {
	types := make([]Type, len(raw.Types))
	for i, t := range raw.Types {
		if int(t.DescriptorIdx) >= len(raw.Strings) {
			return nil, fmt.Errorf("dexfile %s: type %d: string index %d out of range", name, i, t.DescriptorIdx)
		}
		types[i] = Type{Descriptor: raw.Strings[t.DescriptorIdx]}
	}

	typeOf := func(idx uint32) Type {
		if int(idx) >= len(types) {
			return Type{Descriptor: "Lunknown/Unresolved;"}
		}
		return types[idx]
	}
	stringOf := func(idx uint32) string {
		if int(idx) >= len(raw.Strings) {
			return ""
		}
		return raw.Strings[idx]
	}

	protos := make([]Proto, len(raw.Protos))
	for i, p := range raw.Protos {
		params := make([]Type, len(p.ParamTypeIdxs))
		for j, idx := range p.ParamTypeIdxs {
			params[j] = typeOf(idx)
		}
		protos[i] = Proto{ReturnType: typeOf(p.ReturnTypeIdx), ParamTypes: params}
	}

	fields := make([]RawFieldResolved, len(raw.Fields))
	for i, f := range raw.Fields {
		fields[i] = RawFieldResolved{Class: typeOf(f.ClassIdx), Name: stringOf(f.NameIdx), Type: typeOf(f.TypeIdx)}
	}

	methods := make([]RawMethodResolved, len(raw.Methods))
	for i, m := range raw.Methods {
		proto := Proto{}
		if int(m.ProtoIdx) < len(protos) {
			proto = protos[m.ProtoIdx]
		}
		methods[i] = RawMethodResolved{Class: typeOf(m.ClassIdx), Name: stringOf(m.NameIdx), Proto: proto}
	}

	df := &DexFile{
		Name:       name,
		Identifier: identifier,
		IsPrimary:  primaryDexPattern.MatchString(name),
		Strings:    raw.Strings,
		Types:      types,
		Protos:     protos,
		Fields:     fields,
		Methods:    methods,
	}

	resolver := &fileResolver{raw: raw, df: df, typeOf: typeOf, stringOf: stringOf}
	for i, cd := range raw.ClassDefs {
		cls, err := resolver.buildClass(i, cd)
		if err != nil {
			return nil, err
		}
		df.Classes = append(df.Classes, cls)
	}

	return df, nil
}

type fileResolver struct {
	raw      *dexfile.RawDexFile
	df       *DexFile
	typeOf   func(uint32) Type
	stringOf func(uint32) string
}

func (r *fileResolver) buildClass(i int, cd dexfile.RawClassDef) (*Class, error) {
	cls := &Class{
		Type:        r.typeOf(cd.ClassIdx),
		AccessFlags: AccessFlags(cd.AccessFlags),
		DexIndex:    0,
	}
	if cd.SuperclassIdx >= 0 {
		t := r.typeOf(uint32(cd.SuperclassIdx))
		cls.Super = &t
	}
	if cd.SourceFileIdx >= 0 {
		cls.SourceFile = r.stringOf(uint32(cd.SourceFileIdx))
	}
	for _, idx := range cd.Interfaces {
		cls.Interfaces = append(cls.Interfaces, r.typeOf(idx))
	}

	data := r.raw.ClassData[i]
	if data != nil {
		cls.StaticFields = r.buildFields(cls, data.StaticFields)
		cls.InstanceFields = r.buildFields(cls, data.InstanceFields)
		cls.DirectMethods = r.buildMethods(cls, data.DirectMethods)
		cls.VirtualMethods = r.buildMethods(cls, data.VirtualMethods)
	}

	statics := r.raw.StaticValues[i]
	for idx, sf := range cls.StaticFields {
		if idx < len(statics) {
			ev := r.resolveEncodedValue(statics[idx])
			sf.StaticValue = &ev
		}
	}

	if dir := r.raw.AnnotationsDirs[i]; dir != nil {
		cls.Annotations = r.resolveAnnotationSet(dir.ClassAnnotations)
		r.applyFieldAnnotations(cls.StaticFields, dir.Fields)
		r.applyFieldAnnotations(cls.InstanceFields, dir.Fields)
		r.applyMethodAnnotations(cls.DirectMethods, dir.Methods, dir.Parameters)
		r.applyMethodAnnotations(cls.VirtualMethods, dir.Methods, dir.Parameters)
	}

	return cls, nil
}

// resolveAnnotationSet resolves a decoded annotation_set_item's pool indices
// (type, element names) into the program model, dropping nil entries that a
// malformed annotation_off_item may have left unresolved.
func (r *fileResolver) resolveAnnotationSet(set *dexfile.RawAnnotationSetItem) []*Annotation {
	if set == nil {
		return nil
	}
	var out []*Annotation
	for _, item := range set.Items {
		if item == nil || item.Annotation == nil {
			continue
		}
		ann := &Annotation{Type: r.typeOf(item.Annotation.TypeIdx), Visibility: AnnotationVisibility(item.Visibility)}
		for _, n := range item.Annotation.Names {
			ann.Names = append(ann.Names, r.stringOf(n))
		}
		for _, v := range item.Annotation.Values {
			ann.Values = append(ann.Values, r.resolveEncodedValue(v))
		}
		out = append(out, ann)
	}
	return out
}

// applyFieldAnnotations attaches each field_annotation's resolved set to the
// matching *Field by field_ids index (Field.DexIndex).
func (r *fileResolver) applyFieldAnnotations(fields []*Field, anns []dexfile.RawFieldAnnotation) {
	if len(anns) == 0 {
		return
	}
	byIdx := make(map[uint32]*dexfile.RawFieldAnnotation, len(anns))
	for i := range anns {
		byIdx[anns[i].FieldIdx] = &anns[i]
	}
	for _, f := range fields {
		if fa, ok := byIdx[uint32(f.DexIndex)]; ok {
			f.Annotations = r.resolveAnnotationSet(fa.Annotations)
		}
	}
}

// applyMethodAnnotations attaches each method_annotation and
// parameter_annotation entry to the matching *Method by method_ids index
// (Method.DexIndex).
func (r *fileResolver) applyMethodAnnotations(methods []*Method, methodAnns []dexfile.RawMethodAnnotation, paramAnns []dexfile.RawParameterAnnotation) {
	byIdx := make(map[uint32]*dexfile.RawMethodAnnotation, len(methodAnns))
	for i := range methodAnns {
		byIdx[methodAnns[i].MethodIdx] = &methodAnns[i]
	}
	byParamIdx := make(map[uint32]*dexfile.RawParameterAnnotation, len(paramAnns))
	for i := range paramAnns {
		byParamIdx[paramAnns[i].MethodIdx] = &paramAnns[i]
	}
	for _, m := range methods {
		if ma, ok := byIdx[uint32(m.DexIndex)]; ok {
			m.Annotations = r.resolveAnnotationSet(ma.Annotations)
		}
		if pa, ok := byParamIdx[uint32(m.DexIndex)]; ok {
			for _, set := range pa.Parameters {
				m.ParameterAnnotations = append(m.ParameterAnnotations, r.resolveAnnotationSet(set))
			}
		}
	}
}

func (r *fileResolver) buildFields(cls *Class, raws []dexfile.RawEncodedField) []*Field {
	out := make([]*Field, len(raws))
	for i, rf := range raws {
		fr := RawFieldResolved{}
		if int(rf.FieldIdx) < len(r.df.Fields) {
			fr = r.df.Fields[rf.FieldIdx]
		}
		out[i] = &Field{
			Class:       cls,
			Name:        fr.Name,
			Type:        fr.Type,
			AccessFlags: AccessFlags(rf.AccessFlags),
			DexIndex:    int(rf.FieldIdx),
		}
	}
	return out
}

func (r *fileResolver) buildMethods(cls *Class, raws []dexfile.RawEncodedMethod) []*Method {
	out := make([]*Method, len(raws))
	for i, rm := range raws {
		mr := RawMethodResolved{}
		if int(rm.MethodIdx) < len(r.df.Methods) {
			mr = r.df.Methods[rm.MethodIdx]
		}
		m := &Method{
			Class:       cls,
			Name:        mr.Name,
			Proto:       mr.Proto,
			AccessFlags: AccessFlags(rm.AccessFlags),
			DexIndex:    int(rm.MethodIdx),
		}
		if rm.CodeOff != 0 {
			if rc, ok := r.raw.Code[rm.CodeOff]; ok {
				m.Code = r.buildCode(rc)
			}
		}
		out[i] = m
	}
	return out
}

func (r *fileResolver) buildCode(rc *dexfile.RawCode) *Code {
	c := &Code{
		RegistersSize: int(rc.RegistersSize),
		InsSize:       int(rc.InsSize),
		OutsSize:      int(rc.OutsSize),
		Insns:         rc.Insns,
	}
	for i, t := range rc.Tries {
		h := r.resolveHandler(rc.Handlers[i])
		c.Tries = append(c.Tries, TryRange{StartAddr: t.StartAddr, InsnCount: t.InsnCount, Handler: h})
		c.Handlers = append(c.Handlers, h)
	}
	return c
}

func (r *fileResolver) resolveHandler(rh dexfile.RawHandler) Handler {
	h := Handler{CatchAllAddr: rh.CatchAllAddr, HasCatchAll: rh.HasCatchAll}
	for _, c := range rh.Catches {
		h.Catches = append(h.Catches, Catch{Type: r.typeOf(c.TypeIdx), Addr: c.Addr})
	}
	return h
}

func (r *fileResolver) resolveEncodedValue(rv dexfile.RawEncodedValue) EncodedValue {
	switch rv.Type {
	case dexfile.ValueByte:
		return EncodedValue{Kind: EVInt, Long: int64(rv.Byte)}
	case dexfile.ValueShort:
		return EncodedValue{Kind: EVInt, Long: int64(rv.Short)}
	case dexfile.ValueChar:
		return EncodedValue{Kind: EVInt, Long: int64(rv.Char)}
	case dexfile.ValueInt:
		return EncodedValue{Kind: EVInt, Long: int64(rv.Int)}
	case dexfile.ValueLong:
		return EncodedValue{Kind: EVInt, Long: rv.Long}
	case dexfile.ValueFloat:
		return EncodedValue{Kind: EVFloat, Float: rv.Float}
	case dexfile.ValueDouble:
		return EncodedValue{Kind: EVDouble, Double: rv.Double}
	case dexfile.ValueString:
		return EncodedValue{Kind: EVString, Str: r.stringOf(rv.Index)}
	case dexfile.ValueType:
		return EncodedValue{Kind: EVType, TypeRef: r.typeOf(rv.Index)}
	case dexfile.ValueField, dexfile.ValueEnum:
		kind := EVField
		if rv.Type == dexfile.ValueEnum {
			kind = EVEnum
		}
		return EncodedValue{Kind: kind}
	case dexfile.ValueMethod:
		return EncodedValue{Kind: EVMethod}
	case dexfile.ValueMethodType:
		return EncodedValue{Kind: EVMethodType}
	case dexfile.ValueMethodHandle:
		return EncodedValue{Kind: EVMethodHandle}
	case dexfile.ValueArray:
		arr := make([]EncodedValue, len(rv.Array))
		for i, v := range rv.Array {
			arr[i] = r.resolveEncodedValue(v)
		}
		return EncodedValue{Kind: EVArray, Array: arr}
	case dexfile.ValueAnnotation:
		if rv.Annotation == nil {
			return EncodedValue{Kind: EVAnnotation}
		}
		ann := &Annotation{Type: r.typeOf(rv.Annotation.TypeIdx)}
		for _, n := range rv.Annotation.Names {
			ann.Names = append(ann.Names, r.stringOf(n))
		}
		for _, v := range rv.Annotation.Values {
			ann.Values = append(ann.Values, r.resolveEncodedValue(v))
		}
		return EncodedValue{Kind: EVAnnotation, Annotation: ann}
	case dexfile.ValueNull:
		return EncodedValue{Kind: EVNull}
	case dexfile.ValueBoolean:
		return EncodedValue{Kind: EVBool, Bool: rv.BoolVal}
	default:
		return EncodedValue{Kind: EVNull}
	}
}

// NewContext builds an empty Context.
func NewContext() *Context {
	return &Context{
		byDescriptor: make(map[string]*Class),
		shadows:      make(map[string][]*Class),
		subclasses:   make(map[string][]string),
		implementers: make(map[string][]string),
	}
}

// AddDexFile adds a resolved DexFile to the context, indexing its classes.
// First definition of a descriptor wins; later duplicates are recorded as
// shadows (spec §4.2).
func (c *Context) AddDexFile(df *DexFile) {
	df2 := *df
	idx := len(c.Dexes)
	for _, cls := range df.Classes {
		cls.DexIndex = idx
		if existing, ok := c.byDescriptor[cls.Descriptor()]; ok {
			_ = existing
			cls.Shadowed = true
			c.shadows[cls.Descriptor()] = append(c.shadows[cls.Descriptor()], cls)
			continue
		}
		c.byDescriptor[cls.Descriptor()] = cls
	}
	c.Dexes = append(c.Dexes, &df2)
	c.rebuildHierarchy()
}

// ClassByDescriptor returns the winning (non-shadowed) definition for a
// descriptor, or nil if unknown.
func (c *Context) ClassByDescriptor(descriptor string) *Class {
	return c.byDescriptor[descriptor]
}

// Shadows returns the shadowed (ignored-for-dispatch) definitions of a
// descriptor, kept for reporting per spec §4.2.
func (c *Context) Shadows(descriptor string) []*Class {
	return c.shadows[descriptor]
}

// AllClasses returns every winning class across all DexFiles, sorted by
// descriptor for reproducible iteration.
func (c *Context) AllClasses() []*Class {
	out := make([]*Class, 0, len(c.byDescriptor))
	for _, cls := range c.byDescriptor {
		out = append(out, cls)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Descriptor() < out[j].Descriptor() })
	return out
}

// PrimaryDexes returns the DexFiles classified as primary (spec §4.2).
func (c *Context) PrimaryDexes() []*DexFile {
	var out []*DexFile
	for _, df := range c.Dexes {
		if df.IsPrimary {
			out = append(out, df)
		}
	}
	return out
}
