// Package model assembles parsed DEX files (internal/dexfile) into one
// resolved, cross-indexed program model: classes with methods and fields,
// instruction streams, a class hierarchy, and file-of-origin tracking. It is
// the data every analysis in this repo consumes; entities here are created
// once at parse time and are logically immutable thereafter.
package model

import "strings"

// TypeKind classifies a type descriptor by its first byte.
type TypeKind int

const (
	KindPrimitive TypeKind = iota
	KindReference
	KindArray
)

// Type is a resolved JVM type descriptor ("Ljava/lang/String;", "[I", "V").
type Type struct {
	Descriptor string
}

// Kind classifies the descriptor as primitive, reference, or array.
func (t Type) Kind() TypeKind {
	if len(t.Descriptor) == 0 {
		return KindPrimitive
	}
	switch t.Descriptor[0] {
	case '[':
		return KindArray
	case 'L':
		return KindReference
	default:
		return KindPrimitive
	}
}

// ElementType returns the element type of an array descriptor by peeling a
// single leading '[' (so "[[I" yields "[I"). Returns the zero Type if this
// is not an array descriptor.
func (t Type) ElementType() Type {
	if t.Kind() != KindArray {
		return Type{}
	}
	return Type{Descriptor: t.Descriptor[1:]}
}

// IsPrimitive reports whether the descriptor names one of the eight JVM
// primitive types or void.
func (t Type) IsPrimitive() bool {
	return t.Kind() == KindPrimitive
}

// primitiveNames maps a descriptor's lead byte to its Java source name.
var primitiveNames = map[byte]string{
	'V': "void", 'Z': "boolean", 'B': "byte", 'S': "short",
	'C': "char", 'I': "int", 'J': "long", 'F': "float", 'D': "double",
}

// shortyChar maps a descriptor to the one-letter "shorty" form used in
// proto shorty strings (L for every reference type, including arrays).
func shortyChar(descriptor string) byte {
	if descriptor == "" {
		return 'V'
	}
	switch descriptor[0] {
	case '[', 'L':
		return 'L'
	default:
		return descriptor[0]
	}
}

// Proto is a method prototype: an ordered parameter list plus return type.
type Proto struct {
	ReturnType Type
	ParamTypes []Type
}

// Descriptor renders the proto in the "(II)Ljava/lang/String;" form used in
// method FQDNs.
func (p Proto) Descriptor() string {
	var b strings.Builder
	b.WriteByte('(')
	for _, pt := range p.ParamTypes {
		b.WriteString(pt.Descriptor)
	}
	b.WriteByte(')')
	b.WriteString(p.ReturnType.Descriptor)
	return b.String()
}
