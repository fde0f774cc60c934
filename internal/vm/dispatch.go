package vm

import (
	"dexlens/internal/disasm"
	"dexlens/internal/model"

	"go.uber.org/zap"
)

// ensureClassInit triggers <clinit> the first time classDescriptor's
// static state or static method is touched (spec §4.5 "Class init
// order"). A class already InProgress is left alone and recorded Done with
// a warning — this is how circular <clinit> chains terminate instead of
// recursing forever.
func (vm *VM) ensureClassInit(classDescriptor string) error {
	switch vm.Statics.stateOf(classDescriptor) {
	case Done:
		return nil
	case InProgress:
		vm.Log.Warn("circular <clinit> detected", zap.String("class", classDescriptor))
		vm.Statics.state[classDescriptor] = Done
		return nil
	}
	vm.Statics.state[classDescriptor] = InProgress

	cls := vm.Ctx.ClassByDescriptor(classDescriptor)
	if cls == nil {
		vm.Statics.state[classDescriptor] = Done
		return nil
	}

	for _, sf := range cls.StaticFields {
		vm.Statics.set(sf.FQDN(), defaultStaticValue(sf))
	}

	clinit := cls.FindMethod("<clinit>", "()V")
	if clinit != nil && clinit.Code != nil {
		if _, err := vm.Invoke(clinit, nil); err != nil {
			vm.Statics.state[classDescriptor] = Done
			return err
		}
	}

	vm.Statics.state[classDescriptor] = Done
	return nil
}

func defaultStaticValue(f *model.Field) Value {
	if f.StaticValue == nil {
		return zeroValueFor(f.Type.Descriptor)
	}
	ev := *f.StaticValue
	switch ev.Kind {
	case model.EVBool:
		return VBool(ev.Long != 0)
	case model.EVInt:
		switch f.Type.Descriptor {
		case "J":
			return VLong(ev.Long)
		default:
			return VInt(int32(ev.Long))
		}
	case model.EVFloat:
		return VFloat(ev.Float)
	case model.EVDouble:
		return VDouble(ev.Double)
	case model.EVString:
		return VString(ev.Str)
	default:
		return zeroValueFor(f.Type.Descriptor)
	}
}

// raiseException searches f's try ranges for a handler covering the
// instruction at f.pc(), matching excType by subclass walk (or CatchAll).
// On a match it jumps to the handler and reports handled=true; the caller
// resumes interpretation at the handler address with no registers
// touched except whatever move-exception subsequently reads (spec §4.5:
// "transfers to the nearest matching handler in the current try range").
func (vm *VM) raiseException(f *Frame, excType, detail string) (bool, error) {
	pc := f.pc()
	for _, t := range f.Method.Code.Tries {
		if uint32(pc) < t.StartAddr || uint32(pc) >= t.StartAddr+uint32(t.InsnCount) {
			continue
		}
		for _, c := range t.Handler.Catches {
			if vm.Ctx.IsSubclassOf(excType, c.Type.Descriptor) {
				return true, f.jumpTo(int(c.Addr))
			}
		}
		if t.Handler.HasCatchAll {
			return true, f.jumpTo(int(t.Handler.CatchAllAddr))
		}
	}
	return false, nil
}

// resolveInvokeTarget implements the instance-dispatch rules of spec §4.5
// for one invoke-* instruction: direct/static resolve statically;
// virtual/interface dispatch on the receiver's runtime class, falling back
// to the statically named method when the receiver is Unknown or its class
// isn't in the program model; super starts the lookup at the declaring
// method's own superclass.
func (vm *VM) resolveInvokeTarget(kind string, ref *disasm.MethodRef, receiver Value) *model.Method {
	if ref == nil {
		return nil
	}
	switch kind {
	case "invoke-static", "invoke-static/range", "invoke-direct", "invoke-direct/range":
		return ref.Method

	case "invoke-super", "invoke-super/range":
		if ref.Method == nil || ref.Method.Class.Super == nil {
			return ref.Method
		}
		return vm.Ctx.ResolveMethod(ref.Method.Class.Super.Descriptor, ref.Name, ref.Proto.Descriptor())

	case "invoke-virtual", "invoke-virtual/range", "invoke-interface", "invoke-interface/range":
		runtimeClass := vm.runtimeClassOf(receiver)
		if runtimeClass == "" {
			return ref.Method
		}
		if m := vm.Ctx.ResolveMethod(runtimeClass, ref.Name, ref.Proto.Descriptor()); m != nil {
			return m
		}
		return ref.Method

	default:
		return ref.Method
	}
}

// runtimeClassOf reports the concrete class descriptor backing a value,
// or "" if the VM can't determine one (Unknown, or a heap id with no
// object — spec: "fall back ... if the receiver is Unknown or the class
// is not present").
func (vm *VM) runtimeClassOf(v Value) string {
	switch v.Kind {
	case KindString:
		return "Ljava/lang/String;"
	case KindReference:
		if obj := vm.Heap.Get(v.Ref); obj != nil {
			return obj.Class
		}
		return ""
	default:
		return ""
	}
}
