package vm

import (
	"dexlens/internal/disasm"
	"dexlens/internal/model"
	"dexlens/internal/xlog"
)

// Options carries the interpreter's runtime knobs as a plain value type,
// mirroring the corpus's own Options{Mode, MaxSteps} convention rather
// than a flag/env framework (spec §6: "Persisted state: none").
type Options struct {
	// MaxSteps bounds the total number of instructions executed across an
	// entire Invoke call tree (spec: "Step budget exceeded: non-fatal
	// VmError::Budget; any partial state is returned").
	MaxSteps int
}

// DefaultOptions returns sane defaults for interactive/CLI use.
func DefaultOptions() Options {
	return Options{MaxSteps: 200000}
}

// IntrinsicLookup resolves a best-effort native stub for a method FQDN that
// has no Dalvik code (abstract, native, or missing). internal/vm/intrinsics
// implements this without vm importing it back, the same way the pack's
// native-emulator sibling keeps its stub registry a one-way dependency on
// the emulator package rather than the reverse. The VM itself is passed
// through so a stub can read heap-backed arguments (an array's elements, a
// receiver's fields) the same way a real intrinsic would touch the heap.
type IntrinsicLookup interface {
	Call(vm *VM, fqdn string, args []Value) (Value, bool)
}

// VM is one self-contained interpreter instance over a Context: its own
// heap, static area, and step budget. Nothing here is shared across
// goroutines — the core is synchronous by design (spec §5); Clone gives a
// concurrent worker a VM of its own.
type VM struct {
	Ctx        *model.Context
	Heap       *Heap
	Statics    *staticArea
	Intrinsics IntrinsicLookup
	Options    Options
	Log        *xlog.Logger

	steps int
	depth int
}

// New builds a VM over ctx with the given options. Intrinsics may be nil,
// in which case methods with no code always evaluate to Unknown.
func New(ctx *model.Context, opts Options) *VM {
	return &VM{
		Ctx:     ctx,
		Heap:    NewHeap(),
		Statics: newStaticArea(),
		Options: opts,
		Log:     xlog.Get(),
	}
}

// Clone returns a fresh VM sharing no mutable state with vm, for
// independent use by a batch-analysis worker (spec §5: "each worker
// receives a cloned VM"). The Context is read-only after construction and
// is safe to share.
func (vm *VM) Clone() *VM {
	c := New(vm.Ctx, vm.Options)
	c.Intrinsics = vm.Intrinsics
	return c
}

// Invoke runs method with the given argument values (already shaped per
// Dalvik calling convention: receiver first for instance methods, one
// Value per argument, a wide Value filling its two registers) and returns
// its result.
func (vm *VM) Invoke(m *model.Method, args []Value) (Value, error) {
	if m == nil {
		return VUnknown(), nil
	}
	if vm.depth == 0 {
		vm.steps = 0
	}
	vm.depth++
	defer func() { vm.depth-- }()
	if err := vm.ensureClassInit(m.Class.Descriptor()); err != nil {
		return Value{}, err
	}
	if m.Code == nil {
		if vm.Intrinsics != nil {
			if v, ok := vm.Intrinsics.Call(vm, m.FQDN(), args); ok {
				return v, nil
			}
		}
		return VUnknown(), nil
	}

	all := disasm.Disassemble(m.Code.Insns)
	var df *model.DexFile
	if m.Class.DexIndex < len(vm.Ctx.Dexes) {
		df = vm.Ctx.Dexes[m.Class.DexIndex]
	}
	if df != nil {
		disasm.Resolve(all, df, vm.Ctx)
	}

	var exec []disasm.Instruction
	payloadByOffset := make(map[int]disasm.Instruction)
	for _, in := range all {
		if in.PayloadKind != "" {
			payloadByOffset[in.Offset] = in
			continue
		}
		exec = append(exec, in)
	}

	f := newFrame(m, exec)
	placeArgs(f, m, args)

	ret, _, err := vm.execFrame(f, payloadByOffset)
	return ret, err
}

// placeArgs writes the incoming arguments into the last ins_size registers
// of the new frame, per Dalvik's calling convention; wide arguments consume
// two consecutive registers the same way they do inside the method body.
func placeArgs(f *Frame, m *model.Method, args []Value) {
	start := m.Code.RegistersSize - m.Code.InsSize
	if start < 0 {
		start = 0
	}
	r := start
	for _, a := range args {
		if r >= len(f.Regs) {
			break
		}
		if a.Kind.IsWide() {
			_ = f.setWide(r, a)
			r += 2
		} else {
			_ = f.set(r, a)
			r++
		}
	}
}

// execFrame runs f to completion (return, uncaught exception, or budget
// exhaustion), threading the resolved payload table through for
// packed-switch/sparse-switch/fill-array-data pseudo-instructions.
func (vm *VM) execFrame(f *Frame, payloads map[int]disasm.Instruction) (Value, bool, error) {
	for {
		if f.PC >= len(f.Insts) {
			return VUnknown(), false, nil
		}
		if vm.Options.MaxSteps > 0 {
			vm.steps++
			if vm.steps > vm.Options.MaxSteps {
				return Value{}, false, budgetExceeded(f.Method.FQDN(), f.pc())
			}
		}

		res, err := vm.step(f, payloads)
		if err != nil {
			if ve, ok := err.(*VmError); ok && ve.Kind == ErrUncaught {
				if handled, herr := vm.raiseException(f, ve.ExcType, ve.Detail); herr == nil && handled {
					continue
				} else if herr != nil {
					return Value{}, false, herr
				}
			}
			return Value{}, false, err
		}
		if res.returned {
			return res.retVal, true, nil
		}
		if !res.jumped {
			f.PC++
		}
	}
}
