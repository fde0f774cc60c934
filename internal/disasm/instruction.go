// Package disasm decodes a method's raw Dalvik instruction stream
// (model.Code.Insns) into typed Instructions whose constant-pool operands
// are resolved against the owning DexFile/Context, and builds per-method
// control-flow graphs from the decoded stream.
package disasm

import "dexlens/internal/model"

// Instruction is one decoded Dalvik instruction. Offset and Size are in
// code units (u16), matching the addressing used throughout the DEX format
// (branch offsets, try ranges, switch targets).
type Instruction struct {
	Offset  int
	Size    int
	Opcode  byte
	Name    string
	Format  Format
	Unknown bool     // true if Opcode had no table entry; Raw is all this repo knows
	Raw     []uint16 // the instruction's own code units, verbatim

	// Regs holds register operands in encoding order: for 35c/3rc this is
	// C,D,E,F,G (up to 5, in invocation-argument order); for every other
	// format it's A,B,C in the format's letter order.
	Regs []int

	// Lit is the sign-extended immediate for const/lit/if-cc-style formats.
	// Not meaningful for formats with no immediate (e.g. 23x, 35c).
	Lit int64

	// Branch is the signed target offset in code units, relative to Offset,
	// for goto/if-*/packed-switch/sparse-switch/fill-array-data.
	Branch    int
	HasBranch bool

	// Ref classifies PoolIdx, if any.
	Ref     RefKind
	PoolIdx uint32

	// Resolved pool references, filled in by Resolve. Nil until then.
	String *string
	Type   *model.Type
	Field  *FieldRef
	Method *MethodRef

	// Payload pseudo-instruction fields, set when PayloadKind != "". A
	// payload is never itself "executed" sequentially — it's reached only
	// through the Branch offset of a packed-switch/sparse-switch/
	// fill-array-data instruction, which is why its decode differs from
	// every real opcode (no entry in opcodeTable identifies it).
	PayloadKind   string // "packed-switch", "sparse-switch", "fill-array-data"
	SwitchKeys    []int32
	SwitchTargets []int // offsets relative to the switch instruction, not to the payload
	ElementWidth  int
	ElementCount  int
	PayloadData   []byte
}

// FieldRef is a field_id resolved to its declaring/typed Type, plus the
// concrete *model.Field if one is declared somewhere in the Context (it may
// be nil for fields declared only in framework classes outside the dex set).
type FieldRef struct {
	Class Type
	Name  string
	Type  Type
	Field *model.Field
}

// MethodRef is a method_id resolved the same way.
type MethodRef struct {
	Class  Type
	Name   string
	Proto  Proto
	Method *model.Method
}

// Type/Proto alias model's so callers of this package don't need a second
// import for plain display purposes.
type Type = model.Type
type Proto = model.Proto

// IsTerminal reports whether this instruction ends a basic block outright
// (no fallthrough successor): return family and throw.
func (in Instruction) IsTerminal() bool {
	switch in.Name {
	case "return-void", "return", "return-wide", "return-object", "throw":
		return true
	}
	return false
}

// IsGoto reports whether this instruction is an unconditional jump.
func (in Instruction) IsGoto() bool {
	switch in.Name {
	case "goto", "goto/16", "goto/32":
		return true
	}
	return false
}

// IsConditionalBranch reports whether this instruction has both a taken and
// a fallthrough successor.
func (in Instruction) IsConditionalBranch() bool {
	return in.Format == f21t || in.Format == f22t
}

// IsSwitch reports whether this instruction is packed-switch/sparse-switch
// (a branch into a payload pseudo-instruction, resolved separately).
func (in Instruction) IsSwitch() bool {
	return in.Name == "packed-switch" || in.Name == "sparse-switch"
}

// IsInvoke reports whether this instruction is a call site.
func (in Instruction) IsInvoke() bool {
	return in.Ref == RefMethod
}
