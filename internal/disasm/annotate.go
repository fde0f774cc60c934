package disasm

import "fmt"

// Annotator returns an optional inline comment for an instruction. Empty
// string means no annotation.
type Annotator func(inst Instruction) string

// PoolAnnotator renders a resolved constant-pool operand as a comment: the
// string literal, the type/field/method it names. Unlike the ARM64
// teacher's register-provenance annotators, a Dalvik operand names its
// pool entry directly, so this needs no register tracking at all — it's a
// straight switch over the already-Resolved Instruction fields.
func PoolAnnotator(inst Instruction) string {
	switch inst.Ref {
	case RefString:
		if inst.String != nil {
			return fmt.Sprintf("%q", *inst.String)
		}
	case RefType:
		if inst.Type != nil {
			return inst.Type.Descriptor
		}
	case RefField:
		if inst.Field != nil {
			return fmt.Sprintf("%s->%s:%s", inst.Field.Class.Descriptor, inst.Field.Name, inst.Field.Type.Descriptor)
		}
	case RefMethod:
		if inst.Method != nil {
			return fmt.Sprintf("%s->%s%s", inst.Method.Class.Descriptor, inst.Method.Name, inst.Method.Proto.Descriptor())
		}
	}
	return ""
}

// SwitchAnnotator renders the key/target summary of a switch payload.
func SwitchAnnotator(inst Instruction) string {
	if inst.PayloadKind == "" || len(inst.SwitchKeys) == 0 {
		return ""
	}
	return fmt.Sprintf("%d cases, keys %d..%d", len(inst.SwitchKeys), inst.SwitchKeys[0], inst.SwitchKeys[len(inst.SwitchKeys)-1])
}
