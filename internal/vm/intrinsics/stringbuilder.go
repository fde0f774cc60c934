package intrinsics

import (
	"strconv"

	"dexlens/internal/vm"
)

// StringBuilder/StringBuffer are modeled as plain KindString values rather
// than heap objects: append-family methods return the concatenated string,
// which the caller's move-result picks up as the "this" for the next
// chained call. This loses object identity (two references to the same
// builder diverge once either is appended to) but reproduces exactly the
// value a real run would read back out via toString(), which is what every
// consumer of this interpreter actually wants.
func init() {
	for _, cls := range []string{"Ljava/lang/StringBuilder;", "Ljava/lang/StringBuffer;"} {
		r := DefaultRegistry
		r.RegisterFunc(cls+"-><init>()V", "stringbuilder", sbInitEmpty)
		r.RegisterFunc(cls+"-><init>(Ljava/lang/String;)V", "stringbuilder", sbInitFromString)
		r.RegisterFunc(cls+"->append(Ljava/lang/String;)L"+trimL(cls), "stringbuilder", sbAppendString)
		r.RegisterFunc(cls+"->append(I)L"+trimL(cls), "stringbuilder", sbAppendInt)
		r.RegisterFunc(cls+"->append(J)L"+trimL(cls), "stringbuilder", sbAppendLong)
		r.RegisterFunc(cls+"->append(C)L"+trimL(cls), "stringbuilder", sbAppendChar)
		r.RegisterFunc(cls+"->append(Z)L"+trimL(cls), "stringbuilder", sbAppendBool)
		r.RegisterFunc(cls+"->toString()Ljava/lang/String;", "stringbuilder", sbToString)
		r.RegisterFunc(cls+"->length()I", "stringbuilder", sbLength)
	}
}

// trimL strips the leading 'L' a descriptor already carries, since the
// registration strings above build "L"+trimL(cls) back up to the full
// return-type descriptor of append's self-referencing return type.
func trimL(cls string) string {
	if len(cls) > 0 && cls[0] == 'L' {
		return cls[1:]
	}
	return cls
}

func sbReceiver(v *vm.VM, args []vm.Value) (string, bool) {
	if len(args) == 0 {
		return "", true // never-initialized builder reads as empty
	}
	s, ok := stringOf(v, args[0])
	if !ok {
		return "", true
	}
	return s, true
}

func sbInitEmpty(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	return vm.VString(""), true
}

func sbInitFromString(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	if len(args) < 2 {
		return vm.VString(""), true
	}
	s, ok := stringOf(v, args[1])
	if !ok {
		return vm.VString(""), true
	}
	return vm.VString(s), true
}

func sbAppendString(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	cur, _ := sbReceiver(v, args)
	if len(args) < 2 {
		return vm.VString(cur), true
	}
	add, ok := stringOf(v, args[1])
	if !ok {
		return vm.VString(cur), true
	}
	return vm.VString(cur + add), true
}

func sbAppendInt(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	cur, _ := sbReceiver(v, args)
	if len(args) < 2 {
		return vm.VString(cur), true
	}
	n, ok := intOf(args[1])
	if !ok {
		return vm.VString(cur), true
	}
	return vm.VString(cur + strconv.FormatInt(n, 10)), true
}

func sbAppendLong(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	return sbAppendInt(v, args)
}

func sbAppendChar(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	cur, _ := sbReceiver(v, args)
	if len(args) < 2 {
		return vm.VString(cur), true
	}
	n, ok := intOf(args[1])
	if !ok {
		return vm.VString(cur), true
	}
	return vm.VString(cur + string(rune(n))), true
}

func sbAppendBool(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	cur, _ := sbReceiver(v, args)
	if len(args) < 2 {
		return vm.VString(cur), true
	}
	return vm.VString(cur + strconv.FormatBool(args[1].Bool())), true
}

func sbToString(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	cur, _ := sbReceiver(v, args)
	return vm.VString(cur), true
}

func sbLength(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	cur, _ := sbReceiver(v, args)
	return vm.VInt(int32(len([]rune(cur)))), true
}
