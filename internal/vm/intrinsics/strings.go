package intrinsics

import (
	"strconv"
	"strings"

	"dexlens/internal/vm"
)

func init() {
	r := DefaultRegistry
	const cls = "Ljava/lang/String;"
	r.RegisterFunc(cls+"->length()I", "string", stringLength)
	r.RegisterFunc(cls+"->isEmpty()Z", "string", stringIsEmpty)
	r.RegisterFunc(cls+"->charAt(I)C", "string", stringCharAt)
	r.RegisterFunc(cls+"->equals(Ljava/lang/Object;)Z", "string", stringEquals)
	r.RegisterFunc(cls+"->equalsIgnoreCase(Ljava/lang/String;)Z", "string", stringEqualsIgnoreCase)
	r.RegisterFunc(cls+"->concat(Ljava/lang/String;)Ljava/lang/String;", "string", stringConcat)
	r.RegisterFunc(cls+"->toUpperCase()Ljava/lang/String;", "string", stringToUpper)
	r.RegisterFunc(cls+"->toLowerCase()Ljava/lang/String;", "string", stringToLower)
	r.RegisterFunc(cls+"->trim()Ljava/lang/String;", "string", stringTrim)
	r.RegisterFunc(cls+"->substring(I)Ljava/lang/String;", "string", stringSubstring1)
	r.RegisterFunc(cls+"->substring(II)Ljava/lang/String;", "string", stringSubstring2)
	r.RegisterFunc(cls+"->indexOf(Ljava/lang/String;)I", "string", stringIndexOf)
	r.RegisterFunc(cls+"->contains(Ljava/lang/CharSequence;)Z", "string", stringContains)
	r.RegisterFunc(cls+"->startsWith(Ljava/lang/String;)Z", "string", stringStartsWith)
	r.RegisterFunc(cls+"->endsWith(Ljava/lang/String;)Z", "string", stringEndsWith)
	r.RegisterFunc(cls+"->replace(Ljava/lang/CharSequence;Ljava/lang/CharSequence;)Ljava/lang/String;", "string", stringReplace)
	r.RegisterFunc(cls+"->hashCode()I", "string", stringHashCode)
	r.RegisterFunc(cls+"->toString()Ljava/lang/String;", "string", stringIdentity)
	r.RegisterFunc(cls+"->valueOf(I)Ljava/lang/String;", "string", stringValueOfInt)
	r.RegisterFunc(cls+"->valueOf(J)Ljava/lang/String;", "string", stringValueOfLong)
	r.RegisterFunc(cls+"->valueOf(Z)Ljava/lang/String;", "string", stringValueOfBool)
}

func receiverString(v *vm.VM, args []vm.Value) (string, bool) {
	if len(args) == 0 {
		return "", false
	}
	return stringOf(v, args[0])
}

func stringLength(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	s, ok := receiverString(v, args)
	if !ok {
		return vm.VUnknown(), false
	}
	return vm.VInt(int32(len([]rune(s)))), true
}

func stringIsEmpty(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	s, ok := receiverString(v, args)
	if !ok {
		return vm.VUnknown(), false
	}
	return vm.VBool(len(s) == 0), true
}

func stringCharAt(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	s, ok := receiverString(v, args)
	if !ok || len(args) < 2 {
		return vm.VUnknown(), false
	}
	idx, ok := intOf(args[1])
	r := []rune(s)
	if !ok || idx < 0 || idx >= int64(len(r)) {
		return vm.VUnknown(), false
	}
	return vm.VChar(uint16(r[idx])), true
}

func stringEquals(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	a, ok := receiverString(v, args)
	if !ok || len(args) < 2 {
		return vm.VUnknown(), false
	}
	b, ok := stringOf(v, args[1])
	if !ok {
		return vm.VBool(false), true
	}
	return vm.VBool(a == b), true
}

func stringEqualsIgnoreCase(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	a, ok := receiverString(v, args)
	if !ok || len(args) < 2 {
		return vm.VUnknown(), false
	}
	b, ok := stringOf(v, args[1])
	if !ok {
		return vm.VBool(false), true
	}
	return vm.VBool(strings.EqualFold(a, b)), true
}

func stringConcat(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	a, ok := receiverString(v, args)
	if !ok || len(args) < 2 {
		return vm.VUnknown(), false
	}
	b, ok := stringOf(v, args[1])
	if !ok {
		return vm.VUnknown(), false
	}
	return vm.VString(a + b), true
}

func stringToUpper(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	s, ok := receiverString(v, args)
	if !ok {
		return vm.VUnknown(), false
	}
	return vm.VString(strings.ToUpper(s)), true
}

func stringToLower(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	s, ok := receiverString(v, args)
	if !ok {
		return vm.VUnknown(), false
	}
	return vm.VString(strings.ToLower(s)), true
}

func stringTrim(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	s, ok := receiverString(v, args)
	if !ok {
		return vm.VUnknown(), false
	}
	return vm.VString(strings.TrimSpace(s)), true
}

func stringSubstring1(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	s, ok := receiverString(v, args)
	if !ok || len(args) < 2 {
		return vm.VUnknown(), false
	}
	r := []rune(s)
	begin, ok := intOf(args[1])
	if !ok || begin < 0 || begin > int64(len(r)) {
		return vm.VUnknown(), false
	}
	return vm.VString(string(r[begin:])), true
}

func stringSubstring2(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	s, ok := receiverString(v, args)
	if !ok || len(args) < 3 {
		return vm.VUnknown(), false
	}
	r := []rune(s)
	begin, ok1 := intOf(args[1])
	end, ok2 := intOf(args[2])
	if !ok1 || !ok2 || begin < 0 || end > int64(len(r)) || begin > end {
		return vm.VUnknown(), false
	}
	return vm.VString(string(r[begin:end])), true
}

func stringIndexOf(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	s, ok := receiverString(v, args)
	if !ok || len(args) < 2 {
		return vm.VUnknown(), false
	}
	needle, ok := stringOf(v, args[1])
	if !ok {
		return vm.VUnknown(), false
	}
	return vm.VInt(int32(strings.Index(s, needle))), true
}

func stringContains(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	s, ok := receiverString(v, args)
	if !ok || len(args) < 2 {
		return vm.VUnknown(), false
	}
	needle, ok := stringOf(v, args[1])
	if !ok {
		return vm.VUnknown(), false
	}
	return vm.VBool(strings.Contains(s, needle)), true
}

func stringStartsWith(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	s, ok := receiverString(v, args)
	if !ok || len(args) < 2 {
		return vm.VUnknown(), false
	}
	prefix, ok := stringOf(v, args[1])
	if !ok {
		return vm.VUnknown(), false
	}
	return vm.VBool(strings.HasPrefix(s, prefix)), true
}

func stringEndsWith(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	s, ok := receiverString(v, args)
	if !ok || len(args) < 2 {
		return vm.VUnknown(), false
	}
	suffix, ok := stringOf(v, args[1])
	if !ok {
		return vm.VUnknown(), false
	}
	return vm.VBool(strings.HasSuffix(s, suffix)), true
}

func stringReplace(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	s, ok := receiverString(v, args)
	if !ok || len(args) < 3 {
		return vm.VUnknown(), false
	}
	old, ok1 := stringOf(v, args[1])
	new_, ok2 := stringOf(v, args[2])
	if !ok1 || !ok2 {
		return vm.VUnknown(), false
	}
	return vm.VString(strings.ReplaceAll(s, old, new_)), true
}

func stringHashCode(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	s, ok := receiverString(v, args)
	if !ok {
		return vm.VUnknown(), false
	}
	// java.lang.String.hashCode's documented polynomial, s[0]*31^(n-1)+...
	var h int32
	for _, c := range s {
		h = h*31 + int32(c)
	}
	return vm.VInt(h), true
}

func stringIdentity(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	s, ok := receiverString(v, args)
	if !ok {
		return vm.VUnknown(), false
	}
	return vm.VString(s), true
}

func stringValueOfInt(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	if len(args) < 1 {
		return vm.VUnknown(), false
	}
	n, ok := intOf(args[0])
	if !ok {
		return vm.VUnknown(), false
	}
	return vm.VString(strconv.FormatInt(n, 10)), true
}

func stringValueOfLong(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	return stringValueOfInt(v, args)
}

func stringValueOfBool(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	if len(args) < 1 {
		return vm.VUnknown(), false
	}
	return vm.VString(strconv.FormatBool(args[0].Bool())), true
}
