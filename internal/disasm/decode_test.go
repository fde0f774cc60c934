package disasm

import "testing"

func TestDecodeConst4(t *testing.T) {
	// const/4 v1, #7  ->  op=0x12, arg = B<<4|A = 7<<4|1 = 0x71
	insns := []uint16{0x7112}
	insts := Disassemble(insns)
	if len(insts) != 1 {
		t.Fatalf("got %d instructions, want 1", len(insts))
	}
	in := insts[0]
	if in.Name != "const/4" || in.Unknown {
		t.Fatalf("decoded %+v", in)
	}
	if len(in.Regs) != 1 || in.Regs[0] != 1 {
		t.Fatalf("regs = %v, want [1]", in.Regs)
	}
	if in.Lit != 7 {
		t.Fatalf("lit = %d, want 7", in.Lit)
	}
}

func TestDecodeConst4Negative(t *testing.T) {
	// const/4 v0, #-1  -> arg = 0xf<<4 | 0 = 0xf0
	insns := []uint16{0xf012}
	in := Disassemble(insns)[0]
	if in.Lit != -1 {
		t.Fatalf("lit = %d, want -1", in.Lit)
	}
}

func TestDecodeMove12x(t *testing.T) {
	// move v2, v3 -> op=0x01, arg = B<<4|A = 3<<4|2 = 0x32
	insns := []uint16{0x3201}
	in := Disassemble(insns)[0]
	if in.Name != "move" || len(in.Regs) != 2 || in.Regs[0] != 2 || in.Regs[1] != 3 {
		t.Fatalf("decoded %+v", in)
	}
}

func TestDecodeConstString21c(t *testing.T) {
	// const-string v0, string@0x0009
	insns := []uint16{0x001a, 0x0009}
	in := Disassemble(insns)[0]
	if in.Name != "const-string" || in.Ref != RefString || in.PoolIdx != 9 {
		t.Fatalf("decoded %+v", in)
	}
	if in.Regs[0] != 0 {
		t.Fatalf("regs = %v", in.Regs)
	}
}

func TestDecodeIfEqz21t(t *testing.T) {
	// if-eqz v1, +5 -> op=0x38, arg=AA=1; offset=5
	insns := []uint16{0x0138, 0x0005}
	in := Disassemble(insns)[0]
	if in.Name != "if-eqz" || !in.HasBranch || in.Branch != 5 {
		t.Fatalf("decoded %+v", in)
	}
	if !in.IsConditionalBranch() {
		t.Fatal("expected conditional branch")
	}
}

func TestDecodeGoto10t(t *testing.T) {
	// goto +2 -> op=0x28, arg=2 (signed byte)
	insns := []uint16{0x0228}
	in := Disassemble(insns)[0]
	if in.Name != "goto" || in.Branch != 2 || !in.IsGoto() {
		t.Fatalf("decoded %+v", in)
	}
}

func TestDecodeIget22c(t *testing.T) {
	// iget v1, v2, field@0x0003 -> op=0x52, arg=B<<4|A=2<<4|1=0x21
	insns := []uint16{0x2152, 0x0003}
	in := Disassemble(insns)[0]
	if in.Name != "iget" || in.Ref != RefField || in.PoolIdx != 3 {
		t.Fatalf("decoded %+v", in)
	}
	if in.Regs[0] != 1 || in.Regs[1] != 2 {
		t.Fatalf("regs = %v", in.Regs)
	}
}

func TestDecodeInvokeVirtual35c(t *testing.T) {
	// invoke-virtual {v2, v1}, method@0x0042 (A=2 args: C=v2 receiver, D=v1)
	// byte1 = A<<4|G = 2<<4|0 = 0x20; u2 = F<<12|E<<8|D<<4|C, D=1,C=2 -> 0x0012
	insns := []uint16{0x206e, 0x0042, 0x0012}
	in := Disassemble(insns)[0]
	if in.Name != "invoke-virtual" || in.Ref != RefMethod || in.PoolIdx != 0x42 {
		t.Fatalf("decoded %+v", in)
	}
	if len(in.Regs) != 2 || in.Regs[0] != 2 || in.Regs[1] != 1 {
		t.Fatalf("regs = %v, want [2 1] (C=v2, D=v1)", in.Regs)
	}
}

func TestDecodeUnknownOpcodePreservesBytes(t *testing.T) {
	// 0x73 and 0x79/0x7a are unassigned in the standard table.
	insns := []uint16{0x0073, 0xbeef}
	insts := Disassemble(insns)
	if len(insts) != 2 {
		t.Fatalf("got %d instructions, want 2 (unknown opcode consumes 1 unit)", len(insts))
	}
	if !insts[0].Unknown || insts[0].Raw[0] != 0x0073 {
		t.Fatalf("decoded %+v", insts[0])
	}
}

func TestDecodePackedSwitchPayload(t *testing.T) {
	// packed-switch-payload: ident=0x0100, size=2, first_key=10 (lo,hi), targets -4, 6
	insns := []uint16{
		0x0100, 0x0002,
		0x000a, 0x0000, // first_key = 10
		0xfffc, 0xffff, // target0 = -4
		0x0006, 0x0000, // target1 = 6
	}
	in := Disassemble(insns)[0]
	if in.PayloadKind != "packed-switch" {
		t.Fatalf("decoded %+v", in)
	}
	if len(in.SwitchKeys) != 2 || in.SwitchKeys[0] != 10 || in.SwitchKeys[1] != 11 {
		t.Fatalf("keys = %v", in.SwitchKeys)
	}
	if len(in.SwitchTargets) != 2 || in.SwitchTargets[0] != -4 || in.SwitchTargets[1] != 6 {
		t.Fatalf("targets = %v", in.SwitchTargets)
	}
	if in.Size != 8 {
		t.Fatalf("size = %d, want 8", in.Size)
	}
}

func TestDecodeFillArrayDataPayload(t *testing.T) {
	// width=1 (bytes), count=3, data packed 2-per-unit with padding
	insns := []uint16{
		0x0300, 0x0001,
		0x0003, 0x0000, // count = 3
		0x6261, 0x0063, // "ab" then "c\0" (padding byte ignored)
	}
	in := Disassemble(insns)[0]
	if in.PayloadKind != "fill-array-data" || in.ElementWidth != 1 || in.ElementCount != 3 {
		t.Fatalf("decoded %+v", in)
	}
	if string(in.PayloadData) != "abc" {
		t.Fatalf("data = %q, want %q", in.PayloadData, "abc")
	}
}
