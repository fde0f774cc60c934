package intrinsics

import (
	"strconv"
	"strings"

	"dexlens/internal/vm"
)

func init() {
	r := DefaultRegistry

	r.RegisterFunc("Ljava/lang/Integer;->valueOf(I)Ljava/lang/Integer;", "boxed", boxedIdentityInt)
	r.RegisterFunc("Ljava/lang/Integer;->parseInt(Ljava/lang/String;)I", "boxed", intParseInt)
	r.RegisterFunc("Ljava/lang/Integer;->toString(I)Ljava/lang/String;", "boxed", intToString)
	r.RegisterFunc("Ljava/lang/Integer;->intValue()I", "boxed", boxedIdentityInt)

	r.RegisterFunc("Ljava/lang/Long;->valueOf(J)Ljava/lang/Long;", "boxed", boxedIdentityLong)
	r.RegisterFunc("Ljava/lang/Long;->parseLong(Ljava/lang/String;)J", "boxed", longParseLong)
	r.RegisterFunc("Ljava/lang/Long;->toString(J)Ljava/lang/String;", "boxed", longToString)
	r.RegisterFunc("Ljava/lang/Long;->longValue()J", "boxed", boxedIdentityLong)

	r.RegisterFunc("Ljava/lang/Double;->valueOf(D)Ljava/lang/Double;", "boxed", boxedIdentityDouble)
	r.RegisterFunc("Ljava/lang/Double;->parseDouble(Ljava/lang/String;)D", "boxed", doubleParseDouble)
	r.RegisterFunc("Ljava/lang/Double;->toString(D)Ljava/lang/String;", "boxed", doubleToString)
	r.RegisterFunc("Ljava/lang/Double;->doubleValue()D", "boxed", boxedIdentityDouble)

	r.RegisterFunc("Ljava/lang/Boolean;->valueOf(Z)Ljava/lang/Boolean;", "boxed", boxedIdentityBool)
	r.RegisterFunc("Ljava/lang/Boolean;->parseBoolean(Ljava/lang/String;)Z", "boxed", boolParseBoolean)
	r.RegisterFunc("Ljava/lang/Boolean;->toString(Z)Ljava/lang/String;", "boxed", boolToString)
	r.RegisterFunc("Ljava/lang/Boolean;->booleanValue()Z", "boxed", boxedIdentityBool)
}

func boxedIdentityInt(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	if len(args) < 1 {
		return vm.VUnknown(), false
	}
	n, ok := intOf(args[0])
	if !ok {
		return vm.VUnknown(), false
	}
	return vm.VInt(int32(n)), true
}

func boxedIdentityLong(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	if len(args) < 1 {
		return vm.VUnknown(), false
	}
	n, ok := intOf(args[0])
	if !ok {
		return vm.VUnknown(), false
	}
	return vm.VLong(n), true
}

func boxedIdentityDouble(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	if len(args) < 1 || args[0].Kind != vm.KindDouble {
		return vm.VUnknown(), false
	}
	return args[0], true
}

func boxedIdentityBool(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	if len(args) < 1 {
		return vm.VUnknown(), false
	}
	return vm.VBool(args[0].Bool()), true
}

func intParseInt(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	if len(args) < 1 {
		return vm.VUnknown(), false
	}
	s, ok := stringOf(v, args[0])
	if !ok {
		return vm.VUnknown(), false
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return vm.VUnknown(), false
	}
	return vm.VInt(int32(n)), true
}

func intToString(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	if len(args) < 1 {
		return vm.VUnknown(), false
	}
	n, ok := intOf(args[0])
	if !ok {
		return vm.VUnknown(), false
	}
	return vm.VString(strconv.FormatInt(n, 10)), true
}

func longParseLong(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	if len(args) < 1 {
		return vm.VUnknown(), false
	}
	s, ok := stringOf(v, args[0])
	if !ok {
		return vm.VUnknown(), false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return vm.VUnknown(), false
	}
	return vm.VLong(n), true
}

func longToString(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	return intToString(v, args)
}

func doubleParseDouble(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	if len(args) < 1 {
		return vm.VUnknown(), false
	}
	s, ok := stringOf(v, args[0])
	if !ok {
		return vm.VUnknown(), false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return vm.VUnknown(), false
	}
	return vm.VDouble(f), true
}

func doubleToString(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	if len(args) < 1 || args[0].Kind != vm.KindDouble {
		return vm.VUnknown(), false
	}
	return vm.VString(strconv.FormatFloat(args[0].F64, 'g', -1, 64)), true
}

func boolParseBoolean(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	if len(args) < 1 {
		return vm.VUnknown(), false
	}
	s, ok := stringOf(v, args[0])
	if !ok {
		return vm.VUnknown(), false
	}
	return vm.VBool(strings.EqualFold(s, "true")), true
}

func boolToString(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	if len(args) < 1 {
		return vm.VUnknown(), false
	}
	return vm.VString(strconv.FormatBool(args[0].Bool())), true
}
