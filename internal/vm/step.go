package vm

import (
	"math"
	"strings"

	"dexlens/internal/disasm"
)

type stepResult struct {
	jumped   bool
	returned bool
	retVal   Value
}

var intOpsOrder = []string{"add", "sub", "mul", "div", "rem", "and", "or", "xor", "shl", "shr", "ushr"}
var floatOpsOrder = []string{"add", "sub", "mul", "div", "rem"}
var lit16OpsOrder = []string{"add", "rsub", "mul", "div", "rem", "and", "or", "xor"}
var lit8OpsOrder = []string{"add", "rsub", "mul", "div", "rem", "and", "or", "xor", "shl", "shr", "ushr"}

// step executes exactly one instruction at f.PC, mutating f's registers
// (and, for array/field/heap writes, vm's heap and static area).
func (vm *VM) step(f *Frame, payloads map[int]disasm.Instruction) (stepResult, error) {
	in := f.Insts[f.PC]
	op := in.Opcode

	switch {
	case op == 0x00: // nop
		return stepResult{}, nil

	case op >= 0x01 && op <= 0x03: // move, move/from16, move/16
		v, err := f.get(in.Regs[1])
		if err != nil {
			return stepResult{}, err
		}
		return stepResult{}, f.set(in.Regs[0], v)

	case op >= 0x04 && op <= 0x06: // move-wide family
		v, err := f.getWide(in.Regs[1])
		if err != nil {
			return stepResult{}, err
		}
		return stepResult{}, f.setWide(in.Regs[0], v)

	case op >= 0x07 && op <= 0x09: // move-object family
		v, err := f.get(in.Regs[1])
		if err != nil {
			return stepResult{}, err
		}
		return stepResult{}, f.set(in.Regs[0], v)

	case op == 0x0a: // move-result
		return stepResult{}, f.set(in.Regs[0], f.ReturnSlot)
	case op == 0x0b: // move-result-wide
		return stepResult{}, f.setWide(in.Regs[0], f.ReturnSlot)
	case op == 0x0c: // move-result-object
		return stepResult{}, f.set(in.Regs[0], f.ReturnSlot)
	case op == 0x0d: // move-exception
		return stepResult{}, f.set(in.Regs[0], f.ReturnSlot)

	case op == 0x0e: // return-void
		return stepResult{returned: true, retVal: Value{}}, nil
	case op == 0x0f: // return
		v, err := f.get(in.Regs[0])
		if err != nil {
			return stepResult{}, err
		}
		return stepResult{returned: true, retVal: v}, nil
	case op == 0x10: // return-wide
		v, err := f.getWide(in.Regs[0])
		if err != nil {
			return stepResult{}, err
		}
		return stepResult{returned: true, retVal: v}, nil
	case op == 0x11: // return-object
		v, err := f.get(in.Regs[0])
		if err != nil {
			return stepResult{}, err
		}
		return stepResult{returned: true, retVal: v}, nil

	case op == 0x12, op == 0x13, op == 0x14: // const/4, const/16, const
		return stepResult{}, f.set(in.Regs[0], VInt(int32(in.Lit)))
	case op == 0x15: // const/high16 — see DESIGN.md known simplification
		return stepResult{}, f.set(in.Regs[0], VInt(int32(in.Lit)))
	case op == 0x16, op == 0x17, op == 0x18, op == 0x19: // const-wide family
		return stepResult{}, f.setWide(in.Regs[0], VLong(in.Lit))

	case op == 0x1a, op == 0x1b: // const-string(/jumbo)
		if in.String != nil {
			return stepResult{}, f.set(in.Regs[0], vm.internString(*in.String))
		}
		return stepResult{}, f.set(in.Regs[0], VUnknown())

	case op == 0x1c: // const-class
		desc := "Lunknown/Unresolved;"
		if in.Type != nil {
			desc = in.Type.Descriptor
		}
		id := vm.Heap.NewInstance("Ljava/lang/Class;")
		vm.Heap.Get(id).Fields["descriptor"] = VString(desc)
		return stepResult{}, f.set(in.Regs[0], VRef(id))

	case op == 0x1d, op == 0x1e: // monitor-enter/exit — no concurrency modeled
		return stepResult{}, nil

	case op == 0x1f: // check-cast — best-effort, never raises ClassCastException
		return stepResult{}, nil

	case op == 0x20: // instance-of
		obj, err := f.get(in.Regs[1])
		if err != nil {
			return stepResult{}, err
		}
		return stepResult{}, f.set(in.Regs[0], vm.instanceOf(obj, in))

	case op == 0x21: // array-length
		obj, err := f.get(in.Regs[1])
		if err != nil {
			return stepResult{}, err
		}
		heapObj := vm.Heap.Get(obj.Ref)
		if obj.Kind != KindReference || heapObj == nil || !heapObj.IsArray {
			return stepResult{}, f.set(in.Regs[0], VUnknown())
		}
		return stepResult{}, f.set(in.Regs[0], VInt(int32(len(heapObj.Elems))))

	case op == 0x22: // new-instance
		desc := "Lunknown/Unresolved;"
		if in.Type != nil {
			desc = in.Type.Descriptor
		}
		return stepResult{}, f.set(in.Regs[0], VRef(vm.Heap.NewInstance(desc)))

	case op == 0x23: // new-array
		sizeV, err := f.get(in.Regs[1])
		if err != nil {
			return stepResult{}, err
		}
		size, _ := sizeV.AsInt64()
		elemDesc := ""
		if in.Type != nil {
			elemDesc = strings.TrimPrefix(in.Type.Descriptor, "[")
		}
		if size < 0 {
			size = 0
		}
		return stepResult{}, f.set(in.Regs[0], VRef(vm.Heap.NewArray(elemDesc, int(size))))

	case op == 0x24, op == 0x25: // filled-new-array(/range)
		elemDesc := ""
		if in.Type != nil {
			elemDesc = strings.TrimPrefix(in.Type.Descriptor, "[")
		}
		id := vm.Heap.NewArray(elemDesc, len(in.Regs))
		arr := vm.Heap.Get(id)
		for i, r := range in.Regs {
			v, err := f.get(r)
			if err != nil {
				return stepResult{}, err
			}
			arr.Elems[i] = v
		}
		f.ReturnSlot = VRef(id)
		return stepResult{}, nil

	case op == 0x26: // fill-array-data
		return stepResult{}, vm.fillArrayData(f, in, payloads)

	case op == 0x27: // throw
		excVal, err := f.get(in.Regs[0])
		if err != nil {
			return stepResult{}, err
		}
		excType := "Ljava/lang/Throwable;"
		if heapObj := vm.Heap.Get(excVal.Ref); heapObj != nil {
			excType = heapObj.Class
		}
		return stepResult{}, uncaught(f.Method.FQDN(), f.pc(), excType, "thrown explicitly")

	case op == 0x28, op == 0x29, op == 0x2a: // goto family
		return stepResult{jumped: true}, f.jumpTo(f.pc() + in.Branch)

	case op == 0x2b, op == 0x2c: // packed-switch, sparse-switch
		return vm.execSwitch(f, in, payloads)

	case op >= 0x2d && op <= 0x31: // cmp* family
		return vm.execCompare(f, in)

	case op >= 0x32 && op <= 0x37: // if-* (two-register compare)
		return vm.execIf(f, in, true)
	case op >= 0x38 && op <= 0x3d: // if-*z (compare against zero)
		return vm.execIf(f, in, false)

	case op >= 0x44 && op <= 0x51: // aget/aput family
		return stepResult{}, vm.execArrayOp(f, in)

	case op >= 0x52 && op <= 0x5f: // iget/iput family
		return stepResult{}, vm.execInstanceField(f, in)

	case op >= 0x60 && op <= 0x6d: // sget/sput family
		return stepResult{}, vm.execStaticField(f, in)

	case op >= 0x6e && op <= 0x72, op >= 0x74 && op <= 0x78: // invoke-* family
		return stepResult{}, vm.execInvoke(f, in)

	case op >= 0x7b && op <= 0x8f: // unary ops and conversions
		return stepResult{}, vm.execUnary(f, in)

	case op >= 0x90 && op <= 0x9a: // add-int .. ushr-int
		return stepResult{}, vm.execBinopInt(f, in, intOpsOrder[op-0x90], false)
	case op >= 0x9b && op <= 0xa5: // add-long .. ushr-long
		return stepResult{}, vm.execBinopLong(f, in, intOpsOrder[op-0x9b], false)
	case op >= 0xa6 && op <= 0xaa: // add-float .. rem-float
		return stepResult{}, vm.execBinopFloat(f, in, floatOpsOrder[op-0xa6], false)
	case op >= 0xab && op <= 0xaf: // add-double .. rem-double
		return stepResult{}, vm.execBinopDouble(f, in, floatOpsOrder[op-0xab], false)

	case op >= 0xb0 && op <= 0xba: // add-int/2addr .. ushr-int/2addr
		return stepResult{}, vm.execBinopInt(f, in, intOpsOrder[op-0xb0], true)
	case op >= 0xbb && op <= 0xc5: // add-long/2addr .. ushr-long/2addr
		return stepResult{}, vm.execBinopLong(f, in, intOpsOrder[op-0xbb], true)
	case op >= 0xc6 && op <= 0xca: // add-float/2addr .. rem-float/2addr
		return stepResult{}, vm.execBinopFloat(f, in, floatOpsOrder[op-0xc6], true)
	case op >= 0xcb && op <= 0xcf: // add-double/2addr .. rem-double/2addr
		return stepResult{}, vm.execBinopDouble(f, in, floatOpsOrder[op-0xcb], true)

	case op >= 0xd0 && op <= 0xd7: // binop/lit16
		return stepResult{}, vm.execBinopLit(f, in, lit16OpsOrder[op-0xd0])
	case op >= 0xd8 && op <= 0xe2: // binop/lit8
		return stepResult{}, vm.execBinopLit(f, in, lit8OpsOrder[op-0xd8])

	default:
		// Unknown/unsupported opcode: advance without touching any
		// register; nothing is logged.
		return stepResult{}, nil
	}
}

func (vm *VM) internString(s string) Value {
	return VString(s)
}

func (vm *VM) instanceOf(obj Value, in disasm.Instruction) Value {
	if obj.Kind != KindReference || obj.Ref == Null {
		return VBool(false)
	}
	heapObj := vm.Heap.Get(obj.Ref)
	if heapObj == nil || in.Type == nil {
		return VUnknown()
	}
	want := in.Type.Descriptor
	if heapObj.Class == want {
		return VBool(true)
	}
	return VBool(vm.Ctx.IsSubclassOf(heapObj.Class, want) || vm.Ctx.Implements(heapObj.Class, want))
}

func (vm *VM) fillArrayData(f *Frame, in disasm.Instruction, payloads map[int]disasm.Instruction) error {
	arrV, err := f.get(in.Regs[0])
	if err != nil {
		return err
	}
	payload, ok := payloads[in.Offset+in.Branch]
	if !ok {
		return nil
	}
	heapObj := vm.Heap.Get(arrV.Ref)
	if heapObj == nil || !heapObj.IsArray {
		return nil
	}
	width := payload.ElementWidth
	for i := 0; i < payload.ElementCount && i < len(heapObj.Elems); i++ {
		off := i * width
		if off+width > len(payload.PayloadData) {
			break
		}
		heapObj.Elems[i] = decodeArrayLiteral(payload.PayloadData[off:off+width], width)
	}
	return nil
}

func decodeArrayLiteral(b []byte, width int) Value {
	var u uint64
	for i := 0; i < width && i < len(b); i++ {
		u |= uint64(b[i]) << (8 * i)
	}
	switch width {
	case 1:
		return VByte(int8(u))
	case 2:
		return VShort(int16(u))
	case 4:
		return VInt(int32(u))
	case 8:
		return VLong(int64(u))
	default:
		return VUnknown()
	}
}

func (vm *VM) execSwitch(f *Frame, in disasm.Instruction, payloads map[int]disasm.Instruction) (stepResult, error) {
	keyV, err := f.get(in.Regs[0])
	if err != nil {
		return stepResult{}, err
	}
	key, _ := keyV.AsInt64()
	payload, ok := payloads[in.Offset+in.Branch]
	if ok {
		for i, k := range payload.SwitchKeys {
			if int64(k) == key {
				return stepResult{jumped: true}, f.jumpTo(in.Offset + payload.SwitchTargets[i])
			}
		}
	}
	return stepResult{}, nil // falls through to the next instruction (default)
}

func (vm *VM) execCompare(f *Frame, in disasm.Instruction) (stepResult, error) {
	var result int32
	switch in.Name {
	case "cmpl-float", "cmpg-float":
		a, err := f.get(in.Regs[1])
		if err != nil {
			return stepResult{}, err
		}
		b, err := f.get(in.Regs[2])
		if err != nil {
			return stepResult{}, err
		}
		nan := int32(1)
		if in.Name == "cmpl-float" {
			nan = -1
		}
		result = cmpFloat(a.F32, b.F32, nan)
	case "cmpl-double", "cmpg-double":
		a, err := f.getWide(in.Regs[1])
		if err != nil {
			return stepResult{}, err
		}
		b, err := f.getWide(in.Regs[2])
		if err != nil {
			return stepResult{}, err
		}
		nan := int32(1)
		if in.Name == "cmpl-double" {
			nan = -1
		}
		result = cmpDouble(a.F64, b.F64, nan)
	case "cmp-long":
		a, err := f.getWide(in.Regs[1])
		if err != nil {
			return stepResult{}, err
		}
		b, err := f.getWide(in.Regs[2])
		if err != nil {
			return stepResult{}, err
		}
		result = cmpLong(a.I64, b.I64)
	}
	return stepResult{}, f.set(in.Regs[0], VInt(result))
}

// execIf handles both if-* (two register operands) and if-*z (one register
// vs. implicit zero/null).
func (vm *VM) execIf(f *Frame, in disasm.Instruction, twoRegs bool) (stepResult, error) {
	a, err := f.get(in.Regs[0])
	if err != nil {
		return stepResult{}, err
	}
	var bVal int64
	var aVal int64
	if twoRegs {
		b, err := f.get(in.Regs[1])
		if err != nil {
			return stepResult{}, err
		}
		aVal, bVal = compareOperand(a), compareOperand(b)
	} else {
		aVal = compareOperand(a)
		bVal = 0
	}

	suffix := strings.TrimPrefix(in.Name, "if-")
	suffix = strings.TrimSuffix(suffix, "z")
	var taken bool
	switch suffix {
	case "eq":
		taken = aVal == bVal
	case "ne":
		taken = aVal != bVal
	case "lt":
		taken = aVal < bVal
	case "ge":
		taken = aVal >= bVal
	case "gt":
		taken = aVal > bVal
	case "le":
		taken = aVal <= bVal
	}
	if taken {
		return stepResult{jumped: true}, f.jumpTo(f.pc() + in.Branch)
	}
	return stepResult{}, nil
}

// compareOperand widens a value to an int64 for if-* comparisons,
// including reference identity (compared by ObjectId).
func compareOperand(v Value) int64 {
	if v.Kind == KindReference {
		return int64(v.Ref)
	}
	if n, ok := v.AsInt64(); ok {
		return n
	}
	return 0
}

func (vm *VM) execArrayOp(f *Frame, in disasm.Instruction) error {
	isPut := in.Opcode >= 0x4b
	arrReg, idxReg := in.Regs[1], in.Regs[2]
	valReg := in.Regs[0]

	arrV, err := f.get(arrReg)
	if err != nil {
		return err
	}
	idxV, err := f.get(idxReg)
	if err != nil {
		return err
	}
	idx64, _ := idxV.AsInt64()
	idx := int(idx64)

	heapObj := vm.Heap.Get(arrV.Ref)
	if heapObj == nil || !heapObj.IsArray || idx < 0 || idx >= len(heapObj.Elems) {
		if !isPut {
			return f.set(valReg, VUnknown())
		}
		return nil
	}

	wide := in.Name == "aget-wide" || in.Name == "aput-wide"
	if isPut {
		var v Value
		if wide {
			v, err = f.getWide(valReg)
		} else {
			v, err = f.get(valReg)
		}
		if err != nil {
			return err
		}
		heapObj.Elems[idx] = v
		return nil
	}
	v := heapObj.Elems[idx]
	if wide {
		return f.setWide(valReg, v)
	}
	return f.set(valReg, v)
}

func fieldKey(fr *disasm.FieldRef) string {
	if fr == nil {
		return ""
	}
	if fr.Field != nil {
		return fr.Field.FQDN()
	}
	return fr.Class.Descriptor + "->" + fr.Name + ":" + fr.Type.Descriptor
}

func (vm *VM) execInstanceField(f *Frame, in disasm.Instruction) error {
	isPut := in.Opcode >= 0x59
	valReg, objReg := in.Regs[0], in.Regs[1]
	wide := in.Name == "iget-wide" || in.Name == "iput-wide"

	objV, err := f.get(objReg)
	if err != nil {
		return err
	}
	heapObj := vm.Heap.Get(objV.Ref)
	key := fieldKey(in.Field)

	if isPut {
		var v Value
		if wide {
			v, err = f.getWide(valReg)
		} else {
			v, err = f.get(valReg)
		}
		if err != nil {
			return err
		}
		if heapObj != nil {
			heapObj.Fields[key] = v
		}
		return nil
	}
	if heapObj == nil {
		if wide {
			return f.setWide(valReg, VUnknown())
		}
		return f.set(valReg, VUnknown())
	}
	v, ok := heapObj.Fields[key]
	if !ok {
		v = VUnknown()
	}
	if wide {
		return f.setWide(valReg, v)
	}
	return f.set(valReg, v)
}

func (vm *VM) execStaticField(f *Frame, in disasm.Instruction) error {
	isPut := in.Opcode >= 0x67
	valReg := in.Regs[0]
	wide := in.Name == "sget-wide" || in.Name == "sput-wide"

	if in.Field == nil {
		if isPut {
			return nil
		}
		if wide {
			return f.setWide(valReg, VUnknown())
		}
		return f.set(valReg, VUnknown())
	}
	if err := vm.ensureClassInit(in.Field.Class.Descriptor); err != nil {
		return err
	}
	key := fieldKey(in.Field)

	if isPut {
		var v Value
		var err error
		if wide {
			v, err = f.getWide(valReg)
		} else {
			v, err = f.get(valReg)
		}
		if err != nil {
			return err
		}
		vm.Statics.set(key, v)
		return nil
	}
	v, ok := vm.Statics.get(key)
	if !ok {
		v = VUnknown()
	}
	if wide {
		return f.setWide(valReg, v)
	}
	return f.set(valReg, v)
}

func (vm *VM) execUnary(f *Frame, in disasm.Instruction) error {
	dst, src := in.Regs[0], in.Regs[1]
	switch in.Name {
	case "neg-int":
		v, err := f.get(src)
		if err != nil {
			return err
		}
		return f.set(dst, VInt(-v.I32))
	case "not-int":
		v, err := f.get(src)
		if err != nil {
			return err
		}
		return f.set(dst, VInt(^v.I32))
	case "neg-long":
		v, err := f.getWide(src)
		if err != nil {
			return err
		}
		return f.setWide(dst, VLong(-v.I64))
	case "not-long":
		v, err := f.getWide(src)
		if err != nil {
			return err
		}
		return f.setWide(dst, VLong(^v.I64))
	case "neg-float":
		v, err := f.get(src)
		if err != nil {
			return err
		}
		return f.set(dst, VFloat(-v.F32))
	case "neg-double":
		v, err := f.getWide(src)
		if err != nil {
			return err
		}
		return f.setWide(dst, VDouble(-v.F64))
	case "int-to-long":
		v, err := f.get(src)
		if err != nil {
			return err
		}
		return f.setWide(dst, VLong(int64(v.I32)))
	case "int-to-float":
		v, err := f.get(src)
		if err != nil {
			return err
		}
		return f.set(dst, VFloat(float32(v.I32)))
	case "int-to-double":
		v, err := f.get(src)
		if err != nil {
			return err
		}
		return f.setWide(dst, VDouble(float64(v.I32)))
	case "long-to-int":
		v, err := f.getWide(src)
		if err != nil {
			return err
		}
		return f.set(dst, VInt(int32(v.I64)))
	case "long-to-float":
		v, err := f.getWide(src)
		if err != nil {
			return err
		}
		return f.set(dst, VFloat(float32(v.I64)))
	case "long-to-double":
		v, err := f.getWide(src)
		if err != nil {
			return err
		}
		return f.setWide(dst, VDouble(float64(v.I64)))
	case "float-to-int":
		v, err := f.get(src)
		if err != nil {
			return err
		}
		return f.set(dst, VInt(float32ToInt32(v.F32)))
	case "float-to-long":
		v, err := f.get(src)
		if err != nil {
			return err
		}
		return f.setWide(dst, VLong(float64ToInt64(float64(v.F32))))
	case "float-to-double":
		v, err := f.get(src)
		if err != nil {
			return err
		}
		return f.setWide(dst, VDouble(float64(v.F32)))
	case "double-to-int":
		v, err := f.getWide(src)
		if err != nil {
			return err
		}
		return f.set(dst, VInt(float32ToInt32(float32(v.F64))))
	case "double-to-long":
		v, err := f.getWide(src)
		if err != nil {
			return err
		}
		return f.setWide(dst, VLong(float64ToInt64(v.F64)))
	case "double-to-float":
		v, err := f.getWide(src)
		if err != nil {
			return err
		}
		return f.set(dst, VFloat(float32(v.F64)))
	case "int-to-byte":
		v, err := f.get(src)
		if err != nil {
			return err
		}
		return f.set(dst, VByte(int8(v.I32)))
	case "int-to-char":
		v, err := f.get(src)
		if err != nil {
			return err
		}
		return f.set(dst, VChar(uint16(v.I32)))
	case "int-to-short":
		v, err := f.get(src)
		if err != nil {
			return err
		}
		return f.set(dst, VShort(int16(v.I32)))
	}
	return nil
}

// float32ToInt32/float64ToInt64 implement Java's saturating float-to-int
// conversion (NaN -> 0, out-of-range saturates instead of wrapping).
func float32ToInt32(f float32) int32 {
	if math.IsNaN(float64(f)) {
		return 0
	}
	if f >= math.MaxInt32 {
		return math.MaxInt32
	}
	if f <= math.MinInt32 {
		return math.MinInt32
	}
	return int32(f)
}

func float64ToInt64(f float64) int64 {
	if math.IsNaN(f) {
		return 0
	}
	if f >= math.MaxInt64 {
		return math.MaxInt64
	}
	if f <= math.MinInt64 {
		return math.MinInt64
	}
	return int64(f)
}

func (vm *VM) execBinopInt(f *Frame, in disasm.Instruction, op string, addr2 bool) error {
	dst := in.Regs[0]
	var aReg, bReg int
	if addr2 {
		aReg, bReg = in.Regs[0], in.Regs[1]
	} else {
		aReg, bReg = in.Regs[1], in.Regs[2]
	}
	a, err := f.get(aReg)
	if err != nil {
		return err
	}
	b, err := f.get(bReg)
	if err != nil {
		return err
	}
	result, ok := intBinOp(op, a.I32, b.I32)
	if !ok {
		return divByZero(f, in)
	}
	return f.set(dst, VInt(result))
}

func (vm *VM) execBinopLong(f *Frame, in disasm.Instruction, op string, addr2 bool) error {
	dst := in.Regs[0]
	var aReg, bReg int
	if addr2 {
		aReg, bReg = in.Regs[0], in.Regs[1]
	} else {
		aReg, bReg = in.Regs[1], in.Regs[2]
	}
	a, err := f.getWide(aReg)
	if err != nil {
		return err
	}
	b, err := f.getWide(bReg)
	if err != nil {
		return err
	}
	result, ok := longBinOp(op, a.I64, b.I64)
	if !ok {
		return divByZero(f, in)
	}
	return f.setWide(dst, VLong(result))
}

func (vm *VM) execBinopFloat(f *Frame, in disasm.Instruction, op string, addr2 bool) error {
	dst := in.Regs[0]
	var aReg, bReg int
	if addr2 {
		aReg, bReg = in.Regs[0], in.Regs[1]
	} else {
		aReg, bReg = in.Regs[1], in.Regs[2]
	}
	a, err := f.get(aReg)
	if err != nil {
		return err
	}
	b, err := f.get(bReg)
	if err != nil {
		return err
	}
	return f.set(dst, VFloat(floatBinOp(op, a.F32, b.F32)))
}

func (vm *VM) execBinopDouble(f *Frame, in disasm.Instruction, op string, addr2 bool) error {
	dst := in.Regs[0]
	var aReg, bReg int
	if addr2 {
		aReg, bReg = in.Regs[0], in.Regs[1]
	} else {
		aReg, bReg = in.Regs[1], in.Regs[2]
	}
	a, err := f.getWide(aReg)
	if err != nil {
		return err
	}
	b, err := f.getWide(bReg)
	if err != nil {
		return err
	}
	return f.setWide(dst, VDouble(doubleBinOp(op, a.F64, b.F64)))
}

func (vm *VM) execBinopLit(f *Frame, in disasm.Instruction, op string) error {
	dst, src := in.Regs[0], in.Regs[1]
	a, err := f.get(src)
	if err != nil {
		return err
	}
	result, ok := intBinOp(op, a.I32, int32(in.Lit))
	if !ok {
		return divByZero(f, in)
	}
	return f.set(dst, VInt(result))
}

func divByZero(f *Frame, in disasm.Instruction) error {
	return uncaught(f.Method.FQDN(), in.Offset, "Ljava/lang/ArithmeticException;", "divide by zero")
}

// execInvoke resolves the call target per spec §4.5 dispatch rules, gathers
// argument registers (C,D,E,F,G order for 35c, a contiguous run for 3rc),
// and recurses into vm.Invoke. The result lands in f.ReturnSlot for a
// subsequent move-result* to pick up, matching real Dalvik's calling
// convention.
func (vm *VM) execInvoke(f *Frame, in disasm.Instruction) error {
	if in.Method == nil {
		f.ReturnSlot = VUnknown()
		return nil
	}

	var receiver Value
	haveReceiver := in.Name == "invoke-virtual" || in.Name == "invoke-virtual/range" ||
		in.Name == "invoke-interface" || in.Name == "invoke-interface/range" ||
		in.Name == "invoke-direct" || in.Name == "invoke-direct/range" ||
		in.Name == "invoke-super" || in.Name == "invoke-super/range"
	if haveReceiver && len(in.Regs) > 0 {
		v, err := f.get(in.Regs[0])
		if err != nil {
			return err
		}
		receiver = v
	}

	target := vm.resolveInvokeTarget(in.Name, in.Method, receiver)
	if target == nil {
		f.ReturnSlot = VUnknown()
		return nil
	}

	args := make([]Value, 0, len(in.Regs))
	i := 0
	if haveReceiver {
		args = append(args, receiver)
		i = 1
	}
	paramTypes := in.Method.Proto.ParamTypes
	for pi := 0; pi < len(paramTypes) && i < len(in.Regs); pi++ {
		desc := paramTypes[pi].Descriptor
		if desc == "J" || desc == "D" {
			v, err := f.getWide(in.Regs[i])
			if err != nil {
				return err
			}
			args = append(args, v)
			i += 2
			continue
		}
		v, err := f.get(in.Regs[i])
		if err != nil {
			return err
		}
		args = append(args, v)
		i++
	}

	ret, err := vm.Invoke(target, args)
	if err != nil {
		return err
	}
	f.ReturnSlot = ret
	return nil
}
