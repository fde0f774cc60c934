package disasm

// Disassemble decodes a method's full insns stream into Instructions, one
// per code-unit offset that starts an instruction (real opcode or payload
// pseudo-opcode). Unknown opcodes are preserved verbatim rather than
// aborting the decode, so a single unrecognized byte never prevents the
// rest of the method from disassembling.
func Disassemble(insns []uint16) []Instruction {
	var out []Instruction
	for i := 0; i < len(insns); {
		in := decodeAt(insns, i)
		if in.Size <= 0 {
			in.Size = 1 // never get stuck
		}
		out = append(out, in)
		i += in.Size
	}
	return out
}

func decodeAt(insns []uint16, i int) Instruction {
	u0 := insns[i]
	op := byte(u0)
	arg := byte(u0 >> 8)

	if op == 0x00 {
		switch u0 {
		case 0x0100:
			return decodePackedSwitchPayload(insns, i)
		case 0x0200:
			return decodeSparseSwitchPayload(insns, i)
		case 0x0300:
			return decodeFillArrayDataPayload(insns, i)
		}
	}

	info, ok := opcodeTable[op]
	if !ok {
		return Instruction{Offset: i, Size: 1, Opcode: op, Name: "unknown", Unknown: true, Raw: []uint16{u0}}
	}

	in := Instruction{Offset: i, Opcode: op, Name: info.Name, Format: info.Format, Ref: info.Ref}

	switch info.Format {
	case f10x:
		in.Size = 1

	case f12x:
		in.Size = 1
		in.Regs = []int{int(arg & 0xf), int(arg >> 4)}

	case f11n:
		in.Size = 1
		A := int(arg & 0xf)
		B := signExtendNibble(arg >> 4)
		in.Regs = []int{A}
		in.Lit = int64(B)

	case f11x:
		in.Size = 1
		in.Regs = []int{int(arg)}

	case f10t:
		in.Size = 1
		in.HasBranch = true
		in.Branch = int(int8(arg))

	case f20t:
		if !need(insns, i, 2) {
			return truncated(insns, i, op)
		}
		in.Size = 2
		in.HasBranch = true
		in.Branch = int(int16(insns[i+1]))

	case f22x:
		if !need(insns, i, 2) {
			return truncated(insns, i, op)
		}
		in.Size = 2
		in.Regs = []int{int(arg), int(insns[i+1])}

	case f21t:
		if !need(insns, i, 2) {
			return truncated(insns, i, op)
		}
		in.Size = 2
		in.Regs = []int{int(arg)}
		in.HasBranch = true
		in.Branch = int(int16(insns[i+1]))

	case f21s:
		if !need(insns, i, 2) {
			return truncated(insns, i, op)
		}
		in.Size = 2
		in.Regs = []int{int(arg)}
		in.Lit = int64(int16(insns[i+1]))

	case f21h:
		if !need(insns, i, 2) {
			return truncated(insns, i, op)
		}
		in.Size = 2
		in.Regs = []int{int(arg)}
		hi := insns[i+1]
		if info.Name == "const-wide/high16" {
			in.Lit = int64(hi) << 48
		} else {
			in.Lit = int64(int32(uint32(hi) << 16))
		}

	case f21c:
		if !need(insns, i, 2) {
			return truncated(insns, i, op)
		}
		in.Size = 2
		in.Regs = []int{int(arg)}
		in.PoolIdx = uint32(insns[i+1])

	case f23x:
		if !need(insns, i, 2) {
			return truncated(insns, i, op)
		}
		in.Size = 2
		u1 := insns[i+1]
		in.Regs = []int{int(arg), int(u1 & 0xff), int(u1 >> 8)}

	case f22b:
		if !need(insns, i, 2) {
			return truncated(insns, i, op)
		}
		in.Size = 2
		u1 := insns[i+1]
		in.Regs = []int{int(arg), int(u1 & 0xff)}
		in.Lit = int64(int8(u1 >> 8))

	case f22t:
		if !need(insns, i, 2) {
			return truncated(insns, i, op)
		}
		in.Size = 2
		in.Regs = []int{int(arg & 0xf), int(arg >> 4)}
		in.HasBranch = true
		in.Branch = int(int16(insns[i+1]))

	case f22s:
		if !need(insns, i, 2) {
			return truncated(insns, i, op)
		}
		in.Size = 2
		in.Regs = []int{int(arg & 0xf), int(arg >> 4)}
		in.Lit = int64(int16(insns[i+1]))

	case f22c:
		if !need(insns, i, 2) {
			return truncated(insns, i, op)
		}
		in.Size = 2
		in.Regs = []int{int(arg & 0xf), int(arg >> 4)}
		in.PoolIdx = uint32(insns[i+1])

	case f32x:
		if !need(insns, i, 3) {
			return truncated(insns, i, op)
		}
		in.Size = 3
		in.Regs = []int{int(insns[i+1]), int(insns[i+2])}

	case f30t:
		if !need(insns, i, 3) {
			return truncated(insns, i, op)
		}
		in.Size = 3
		in.HasBranch = true
		in.Branch = int(int32(uint32(insns[i+1]) | uint32(insns[i+2])<<16))

	case f31i:
		if !need(insns, i, 3) {
			return truncated(insns, i, op)
		}
		in.Size = 3
		in.Regs = []int{int(arg)}
		in.Lit = int64(int32(uint32(insns[i+1]) | uint32(insns[i+2])<<16))

	case f31c:
		if !need(insns, i, 3) {
			return truncated(insns, i, op)
		}
		in.Size = 3
		in.Regs = []int{int(arg)}
		in.PoolIdx = uint32(insns[i+1]) | uint32(insns[i+2])<<16

	case f31t:
		if !need(insns, i, 3) {
			return truncated(insns, i, op)
		}
		in.Size = 3
		in.Regs = []int{int(arg)}
		in.HasBranch = true
		in.Branch = int(int32(uint32(insns[i+1]) | uint32(insns[i+2])<<16))

	case f35c:
		if !need(insns, i, 3) {
			return truncated(insns, i, op)
		}
		in.Size = 3
		A := int(arg >> 4)
		G := int(arg & 0xf)
		in.PoolIdx = uint32(insns[i+1])
		u2 := insns[i+2]
		F := int((u2 >> 12) & 0xf)
		E := int((u2 >> 8) & 0xf)
		D := int((u2 >> 4) & 0xf)
		C := int(u2 & 0xf)
		all := []int{C, D, E, F, G}
		if A > 5 {
			A = 5
		}
		in.Regs = all[:A]

	case f3rc:
		if !need(insns, i, 3) {
			return truncated(insns, i, op)
		}
		in.Size = 3
		count := int(arg)
		in.PoolIdx = uint32(insns[i+1])
		start := int(insns[i+2])
		regs := make([]int, count)
		for k := 0; k < count; k++ {
			regs[k] = start + k
		}
		in.Regs = regs

	case f51l:
		if !need(insns, i, 5) {
			return truncated(insns, i, op)
		}
		in.Size = 5
		in.Regs = []int{int(arg)}
		v := uint64(insns[i+1]) | uint64(insns[i+2])<<16 | uint64(insns[i+3])<<32 | uint64(insns[i+4])<<48
		in.Lit = int64(v)

	default:
		return Instruction{Offset: i, Size: 1, Opcode: op, Name: "unknown", Unknown: true, Raw: []uint16{u0}}
	}

	end := i + in.Size
	if end > len(insns) {
		end = len(insns)
	}
	in.Raw = insns[i:end]
	return in
}

func need(insns []uint16, i, units int) bool {
	return i+units <= len(insns)
}

// truncated handles a format whose operand units run past the end of the
// stream (a malformed or adversarially truncated method body): rather than
// panic on an out-of-range index, the remaining bytes are folded into a
// single Unknown instruction.
func truncated(insns []uint16, i int, op byte) Instruction {
	return Instruction{Offset: i, Size: len(insns) - i, Opcode: op, Name: "unknown", Unknown: true, Raw: insns[i:]}
}

func signExtendNibble(n byte) int8 {
	n &= 0xf
	if n&0x8 != 0 {
		return int8(n | 0xf0)
	}
	return int8(n)
}

func decodePackedSwitchPayload(insns []uint16, i int) Instruction {
	if !need(insns, i, 4) {
		return truncated(insns, i, 0x00)
	}
	size := int(insns[i+1])
	firstKey := int32(uint32(insns[i+2]) | uint32(insns[i+3])<<16)
	total := 4 + size*2
	if !need(insns, i, total) {
		return truncated(insns, i, 0x00)
	}
	targets := make([]int, size)
	for k := 0; k < size; k++ {
		lo := insns[i+4+k*2]
		hi := insns[i+5+k*2]
		targets[k] = int(int32(uint32(lo) | uint32(hi)<<16))
	}
	keys := make([]int32, size)
	for k := range keys {
		keys[k] = firstKey + int32(k)
	}
	return Instruction{
		Offset: i, Size: total, Opcode: 0x00, Name: "packed-switch-payload",
		PayloadKind: "packed-switch", SwitchKeys: keys, SwitchTargets: targets,
		Raw: insns[i : i+total],
	}
}

func decodeSparseSwitchPayload(insns []uint16, i int) Instruction {
	if !need(insns, i, 2) {
		return truncated(insns, i, 0x00)
	}
	size := int(insns[i+1])
	total := 2 + size*4
	if !need(insns, i, total) {
		return truncated(insns, i, 0x00)
	}
	keys := make([]int32, size)
	for k := 0; k < size; k++ {
		lo := insns[i+2+k*2]
		hi := insns[i+3+k*2]
		keys[k] = int32(uint32(lo) | uint32(hi)<<16)
	}
	targets := make([]int, size)
	base := i + 2 + size*2
	for k := 0; k < size; k++ {
		lo := insns[base+k*2]
		hi := insns[base+k*2+1]
		targets[k] = int(int32(uint32(lo) | uint32(hi)<<16))
	}
	return Instruction{
		Offset: i, Size: total, Opcode: 0x00, Name: "sparse-switch-payload",
		PayloadKind: "sparse-switch", SwitchKeys: keys, SwitchTargets: targets,
		Raw: insns[i : i+total],
	}
}

func decodeFillArrayDataPayload(insns []uint16, i int) Instruction {
	if !need(insns, i, 4) {
		return truncated(insns, i, 0x00)
	}
	width := int(insns[i+1])
	count := int(uint32(insns[i+2]) | uint32(insns[i+3])<<16)
	dataUnits := (count*width + 1) / 2
	total := 4 + dataUnits
	if !need(insns, i, total) {
		return truncated(insns, i, 0x00)
	}
	data := make([]byte, 0, count*width)
	for k := 0; k < dataUnits; k++ {
		u := insns[i+4+k]
		data = append(data, byte(u), byte(u>>8))
	}
	if len(data) > count*width {
		data = data[:count*width]
	}
	return Instruction{
		Offset: i, Size: total, Opcode: 0x00, Name: "fill-array-data-payload",
		PayloadKind: "fill-array-data", ElementWidth: width, ElementCount: count, PayloadData: data,
		Raw: insns[i : i+total],
	}
}
