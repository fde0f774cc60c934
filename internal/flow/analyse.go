package flow

import (
	"strings"

	"dexlens/internal/disasm"
	"dexlens/internal/model"
	"dexlens/internal/vm"
)

// wlItem is one pending worklist entry: the instruction index to execute
// next and the abstract register state flowing into it.
type wlItem struct {
	idx  int
	regs regState
}

// AnalyseBranches symbolically executes m starting from pc=0 with its
// incoming parameters marked Symbolic, and returns every conditional it
// encountered along with a verdict on whether either side is dead.
func AnalyseBranches(m *model.Method, ctx *model.Context, conservative bool, opts Options) ([]Branching, error) {
	if m == nil || m.Code == nil {
		return nil, nil
	}

	all := disasm.Disassemble(m.Code.Insns)
	var df *model.DexFile
	if ctx != nil && m.Class != nil && m.Class.DexIndex < len(ctx.Dexes) {
		df = ctx.Dexes[m.Class.DexIndex]
	}
	if df != nil && ctx != nil {
		disasm.Resolve(all, df, ctx)
	}

	var insts []disasm.Instruction
	payloads := make(map[int]disasm.Instruction)
	offsetIdx := make(map[int]int)
	for _, in := range all {
		if in.PayloadKind != "" {
			payloads[in.Offset] = in
			continue
		}
		offsetIdx[in.Offset] = len(insts)
		insts = append(insts, in)
	}
	if len(insts) == 0 {
		return nil, nil
	}

	init := regState{}
	start := m.Code.RegistersSize - m.Code.InsSize
	if start < 0 {
		start = 0
	}
	for r := start; r < m.Code.RegistersSize; r++ {
		init[r] = Symbolic(r - start)
	}

	a := &analyser{
		method:     m,
		insts:      insts,
		offsetIdx:  offsetIdx,
		payloads:   payloads,
		conservative: conservative,
		opts:       opts,
		seenBranch: make(map[int]bool),
		visits:     make(map[int]int),
	}
	a.run(wlItem{idx: 0, regs: init})
	return a.branches, nil
}

type analyser struct {
	method       *model.Method
	insts        []disasm.Instruction
	offsetIdx    map[int]int
	payloads     map[int]disasm.Instruction
	conservative bool
	opts         Options

	branches   []Branching
	seenBranch map[int]bool // branch-site offset -> already recorded
	visits     map[int]int  // instruction index -> revisit count

	steps int
}

func (a *analyser) run(start wlItem) {
	work := []wlItem{start}
	for len(work) > 0 {
		item := work[len(work)-1]
		work = work[:len(work)-1]

		if a.opts.MaxSteps > 0 && a.steps >= a.opts.MaxSteps {
			return
		}
		a.steps++

		a.visits[item.idx]++
		if a.opts.WidenAfter > 0 && a.visits[item.idx] > a.opts.WidenAfter {
			// Widened too many times at this program point: stop expanding
			// this path rather than loop forever.
			continue
		}

		succ := a.step(item)
		work = append(work, succ...)
	}
}

// step executes one instruction abstractly and returns the worklist items
// it produces (0 for a terminal instruction, 1 for straight-line/goto or a
// conditional with a dead side, 2 for a conditional, and one per target
// plus the fallthrough for a switch).
func (a *analyser) step(item wlItem) []wlItem {
	in := a.insts[item.idx]
	next := item.idx + 1

	switch {
	case in.Opcode == 0x0e, in.Opcode >= 0x0f && in.Opcode <= 0x11: // return-void/return/return-wide/return-object
		return nil
	case in.Opcode == 0x27: // throw
		return nil

	case in.Opcode >= 0x28 && in.Opcode <= 0x2a: // goto/16/32
		return a.jump(item.regs, in)

	case in.Opcode >= 0x2d && in.Opcode <= 0x31: // cmp family
		regs := item.regs.clone()
		a.execCompare(regs, in)
		return []wlItem{{idx: next, regs: regs}}

	case in.Opcode >= 0x32 && in.Opcode <= 0x37: // if-* (two regs)
		return a.execIf(item, in, true)
	case in.Opcode >= 0x38 && in.Opcode <= 0x3d: // if-*z (vs zero)
		return a.execIf(item, in, false)

	case in.Opcode >= 0x2b && in.Opcode <= 0x2c: // packed-switch/sparse-switch
		return a.execSwitch(item, in)

	case isMoveOpcode(in.Opcode):
		regs := item.regs.clone()
		if len(in.Regs) >= 2 {
			regs[in.Regs[0]] = regs.get(in.Regs[1])
		}
		return []wlItem{{idx: next, regs: regs}}

	case isConstOpcode(in.Opcode):
		regs := item.regs.clone()
		a.execConst(regs, in)
		return []wlItem{{idx: next, regs: regs}}

	case in.Opcode >= 0x90 && in.Opcode <= 0x9a: // add-int..ushr-int
		regs := item.regs.clone()
		a.execBinopInt(regs, in, in.Regs[0], in.Regs[1], in.Regs[2], intOpName(in.Opcode-0x90))
		return []wlItem{{idx: next, regs: regs}}
	case in.Opcode >= 0xb0 && in.Opcode <= 0xba: // add-int/2addr..ushr-int/2addr
		regs := item.regs.clone()
		a.execBinopInt(regs, in, in.Regs[0], in.Regs[0], in.Regs[1], intOpName(in.Opcode-0xb0))
		return []wlItem{{idx: next, regs: regs}}
	case in.Opcode >= 0xd0 && in.Opcode <= 0xd7: // +int/lit16
		regs := item.regs.clone()
		a.execBinopLit(regs, in, intOpName(in.Opcode-0xd0))
		return []wlItem{{idx: next, regs: regs}}
	case in.Opcode >= 0xd8 && in.Opcode <= 0xe2: // +int/lit8
		regs := item.regs.clone()
		a.execBinopLit(regs, in, intOpName(in.Opcode-0xd8))
		return []wlItem{{idx: next, regs: regs}}

	default:
		// Anything this analyser doesn't model (invoke, field/array
		// access, unary ops, wide arithmetic, ...): any destination
		// register it would have written becomes Top, matching the VM's
		// own "unknown opcode yields Unknown and advances" fallback.
		regs := item.regs.clone()
		if dst, ok := destRegOf(in); ok {
			regs[dst] = Top()
		}
		if next >= len(a.insts) {
			return nil
		}
		return []wlItem{{idx: next, regs: regs}}
	}
}

func (a *analyser) jump(regs regState, in disasm.Instruction) []wlItem {
	idx, ok := a.offsetIdx[in.Offset+in.Branch]
	if !ok {
		return nil
	}
	return []wlItem{{idx: idx, regs: regs.clone()}}
}

func destRegOf(in disasm.Instruction) (int, bool) {
	switch {
	case in.Opcode >= 0x6e && in.Opcode <= 0x78: // invoke family, no direct dest
		return 0, false
	case in.Opcode >= 0x0a && in.Opcode <= 0x0d: // move-result family
		if len(in.Regs) >= 1 {
			return in.Regs[0], true
		}
	case in.Opcode == 0x20: // instance-of
		if len(in.Regs) >= 1 {
			return in.Regs[0], true
		}
	case in.Opcode >= 0x22 && in.Opcode <= 0x23: // new-instance/new-array
		if len(in.Regs) >= 1 {
			return in.Regs[0], true
		}
	case in.Opcode >= 0x44 && in.Opcode <= 0x51: // aget family (not aput)
		if in.Opcode <= 0x4a && len(in.Regs) >= 1 {
			return in.Regs[0], true
		}
	case in.Opcode >= 0x52 && in.Opcode <= 0x58: // iget family
		if len(in.Regs) >= 1 {
			return in.Regs[0], true
		}
	case in.Opcode >= 0x60 && in.Opcode <= 0x66: // sget family
		if len(in.Regs) >= 1 {
			return in.Regs[0], true
		}
	case in.Opcode >= 0x7b && in.Opcode <= 0x8f: // unary ops/conversions
		if len(in.Regs) >= 1 {
			return in.Regs[0], true
		}
	}
	return 0, false
}

func isMoveOpcode(op byte) bool {
	return op >= 0x01 && op <= 0x09
}

func isConstOpcode(op byte) bool {
	return op >= 0x12 && op <= 0x1a
}

func (a *analyser) execConst(regs regState, in disasm.Instruction) {
	if len(in.Regs) == 0 {
		return
	}
	dst := in.Regs[0]
	switch in.Name {
	case "const/4", "const/16", "const", "const/high16":
		regs[dst] = Concrete(vm.VInt(int32(in.Lit)))
	case "const-wide/16", "const-wide/32", "const-wide", "const-wide/high16":
		regs[dst] = Concrete(vm.VLong(in.Lit))
	default:
		regs[dst] = Top()
	}
}

func (a *analyser) execCompare(regs regState, in disasm.Instruction) {
	if len(in.Regs) < 3 {
		return
	}
	dst, rb, rc := in.Regs[0], in.Regs[1], in.Regs[2]
	b, c := regs.get(rb), regs.get(rc)
	if !b.IsConcrete() || !c.IsConcrete() {
		regs[dst] = Top()
		return
	}
	var result int32
	switch in.Name {
	case "cmp-long":
		bi, _ := b.Concrete.AsInt64()
		ci, _ := c.Concrete.AsInt64()
		result = cmp64(bi, ci)
	case "cmpl-float", "cmpg-float":
		result = cmpFloat(float64(b.Concrete.F32), float64(c.Concrete.F32))
	case "cmpl-double", "cmpg-double":
		result = cmpFloat(b.Concrete.F64, c.Concrete.F64)
	}
	regs[dst] = Concrete(vm.VInt(result))
}

func cmp64(a, b int64) int32 {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpFloat(a, b float64) int32 {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	case a == b:
		return 0
	default: // NaN
		return 1
	}
}

func (a *analyser) execIf(item wlItem, in disasm.Instruction, twoRegs bool) []wlItem {
	regs := item.regs
	av := regs.get(in.Regs[0])
	var bv AbsValue
	if twoRegs {
		bv = regs.get(in.Regs[1])
	} else {
		bv = Concrete(vm.VInt(0))
	}

	takenOff := in.Offset + in.Branch
	fallOff := in.Offset + in.Size
	takenIdx, takenOK := a.offsetIdx[takenOff]
	fallIdx := item.idx + 1

	// A dead side is claimed only when both operands are concrete (the
	// IsConcrete check below); a guard with a non-concrete operand yields
	// DeadNone in either mode, so conservative mode does not change the
	// verdict.
	dead := DeadNone
	if av.IsConcrete() && bv.IsConcrete() {
		av64 := compareAbsOperand(av.Concrete)
		bv64 := compareAbsOperand(bv.Concrete)
		if evalCond(in.Name, av64, bv64) {
			dead = DeadFallthrough
		} else {
			dead = DeadTaken
		}
	}

	if !a.seenBranch[in.Offset] {
		a.seenBranch[in.Offset] = true
		a.branches = append(a.branches, Branching{
			Method:        a.method,
			PC:            in.Offset,
			TakenPC:       takenOff,
			FallthroughPC: fallOff,
			Dead:          dead,
		})
	}

	var out []wlItem
	if dead != DeadTaken && takenOK {
		out = append(out, wlItem{idx: takenIdx, regs: regs.clone()})
	}
	if dead != DeadFallthrough && fallIdx < len(a.insts) {
		out = append(out, wlItem{idx: fallIdx, regs: regs.clone()})
	}
	return out
}

func compareAbsOperand(v vm.Value) int64 {
	if v.Kind == vm.KindReference {
		return int64(v.Ref)
	}
	if n, ok := v.AsInt64(); ok {
		return n
	}
	return 0
}

func evalCond(name string, a, b int64) bool {
	suffix := strings.TrimPrefix(name, "if-")
	suffix = strings.TrimSuffix(suffix, "z")
	switch suffix {
	case "eq":
		return a == b
	case "ne":
		return a != b
	case "lt":
		return a < b
	case "ge":
		return a >= b
	case "gt":
		return a > b
	case "le":
		return a <= b
	}
	return false
}

func (a *analyser) execSwitch(item wlItem, in disasm.Instruction) []wlItem {
	fallIdx := item.idx + 1
	out := []wlItem{}
	if fallIdx < len(a.insts) {
		out = append(out, wlItem{idx: fallIdx, regs: item.regs.clone()})
	}
	payload, ok := a.payloads[in.Offset+in.Branch]
	if !ok {
		return out
	}
	for _, rel := range payload.SwitchTargets {
		idx, ok := a.offsetIdx[in.Offset+rel]
		if ok {
			out = append(out, wlItem{idx: idx, regs: item.regs.clone()})
		}
	}
	return out
}

var intOpNames = []string{"add", "sub", "mul", "div", "rem", "and", "or", "xor", "shl", "shr", "ushr"}

func intOpName(i byte) string {
	idx := int(i)
	if idx < 0 || idx >= len(intOpNames) {
		return ""
	}
	return intOpNames[idx]
}

func (a *analyser) execBinopInt(regs regState, in disasm.Instruction, dst, rb, rc int, op string) {
	b, c := regs.get(rb), regs.get(rc)
	if !b.IsConcrete() || !c.IsConcrete() {
		regs[dst] = Top()
		return
	}
	bi, _ := b.Concrete.AsInt64()
	ci, _ := c.Concrete.AsInt64()
	res, ok := foldInt(op, int32(bi), int32(ci))
	if !ok {
		regs[dst] = Top()
		return
	}
	regs[dst] = Concrete(vm.VInt(res))
}

func (a *analyser) execBinopLit(regs regState, in disasm.Instruction, op string) {
	if len(in.Regs) < 2 {
		return
	}
	dst, rb := in.Regs[0], in.Regs[1]
	b := regs.get(rb)
	if !b.IsConcrete() {
		regs[dst] = Top()
		return
	}
	bi, _ := b.Concrete.AsInt64()
	res, ok := foldInt(op, int32(bi), int32(in.Lit))
	if !ok {
		regs[dst] = Top()
		return
	}
	regs[dst] = Concrete(vm.VInt(res))
}

func foldInt(op string, b, c int32) (int32, bool) {
	switch op {
	case "add":
		return b + c, true
	case "sub":
		return b - c, true
	case "mul":
		return b * c, true
	case "div":
		if c == 0 {
			return 0, false
		}
		return b / c, true
	case "rem":
		if c == 0 {
			return 0, false
		}
		return b % c, true
	case "and":
		return b & c, true
	case "or":
		return b | c, true
	case "xor":
		return b ^ c, true
	case "shl":
		return b << (uint32(c) & 31), true
	case "shr":
		return b >> (uint32(c) & 31), true
	case "ushr":
		return int32(uint32(b) >> (uint32(c) & 31)), true
	}
	return 0, false
}
