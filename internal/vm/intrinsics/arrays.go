package intrinsics

import (
	"sort"
	"strconv"
	"strings"

	"dexlens/internal/vm"
)

// java.util.Arrays stubs read straight from the heap-backed Elems slice a
// real new-array/filled-new-array allocation produced, which is why these
// need the vm parameter the rest of the string stubs don't.
func init() {
	r := DefaultRegistry
	const cls = "Ljava/util/Arrays;"
	r.RegisterFunc(cls+"->toString([I)Ljava/lang/String;", "arrays", arraysToStringInt)
	r.RegisterFunc(cls+"->toString([Ljava/lang/String;)Ljava/lang/String;", "arrays", arraysToStringObj)
	r.RegisterFunc(cls+"->fill([II)V", "arrays", arraysFillInt)
	r.RegisterFunc(cls+"->sort([I)V", "arrays", arraysSortInt)
	r.RegisterFunc(cls+"->equals([I[I)Z", "arrays", arraysEqualsInt)
	r.RegisterFunc(cls+"->binarySearch([II)I", "arrays", arraysBinarySearchInt)
}

func arrayElems(v *vm.VM, val vm.Value) ([]vm.Value, bool) {
	if val.Kind != vm.KindReference {
		return nil, false
	}
	obj := v.Heap.Get(val.Ref)
	if obj == nil || !obj.IsArray {
		return nil, false
	}
	return obj.Elems, true
}

func arraysToStringInt(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	if len(args) < 1 {
		return vm.VUnknown(), false
	}
	elems, ok := arrayElems(v, args[0])
	if !ok {
		return vm.VString("null"), true
	}
	parts := make([]string, len(elems))
	for i, e := range elems {
		n, _ := intOf(e)
		parts[i] = strconv.FormatInt(n, 10)
	}
	return vm.VString("[" + strings.Join(parts, ", ") + "]"), true
}

func arraysToStringObj(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	if len(args) < 1 {
		return vm.VUnknown(), false
	}
	elems, ok := arrayElems(v, args[0])
	if !ok {
		return vm.VString("null"), true
	}
	parts := make([]string, len(elems))
	for i, e := range elems {
		if s, ok := stringOf(v, e); ok {
			parts[i] = s
		} else {
			parts[i] = "null"
		}
	}
	return vm.VString("[" + strings.Join(parts, ", ") + "]"), true
}

func arraysFillInt(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	if len(args) < 2 {
		return vm.VUnknown(), false
	}
	elems, ok := arrayElems(v, args[0])
	if !ok {
		return vm.VUnknown(), false
	}
	n, ok := intOf(args[1])
	if !ok {
		return vm.VUnknown(), false
	}
	for i := range elems {
		elems[i] = vm.VInt(int32(n))
	}
	return vm.VUnknown(), true
}

func arraysSortInt(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	if len(args) < 1 {
		return vm.VUnknown(), false
	}
	elems, ok := arrayElems(v, args[0])
	if !ok {
		return vm.VUnknown(), false
	}
	sort.Slice(elems, func(i, j int) bool {
		a, _ := intOf(elems[i])
		b, _ := intOf(elems[j])
		return a < b
	})
	return vm.VUnknown(), true
}

func arraysEqualsInt(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	if len(args) < 2 {
		return vm.VUnknown(), false
	}
	a, ok1 := arrayElems(v, args[0])
	b, ok2 := arrayElems(v, args[1])
	if !ok1 || !ok2 {
		return vm.VBool(!ok1 && !ok2), true
	}
	if len(a) != len(b) {
		return vm.VBool(false), true
	}
	for i := range a {
		x, _ := intOf(a[i])
		y, _ := intOf(b[i])
		if x != y {
			return vm.VBool(false), true
		}
	}
	return vm.VBool(true), true
}

func arraysBinarySearchInt(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	if len(args) < 2 {
		return vm.VUnknown(), false
	}
	elems, ok := arrayElems(v, args[0])
	if !ok {
		return vm.VUnknown(), false
	}
	key, ok := intOf(args[1])
	if !ok {
		return vm.VUnknown(), false
	}
	lo, hi := 0, len(elems)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		n, _ := intOf(elems[mid])
		switch {
		case n < key:
			lo = mid + 1
		case n > key:
			hi = mid - 1
		default:
			return vm.VInt(int32(mid)), true
		}
	}
	return vm.VInt(int32(-(lo + 1))), true
}
