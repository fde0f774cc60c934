package intrinsics

import (
	"strconv"

	"dexlens/internal/vm"
)

// java.util.HashMap is modeled as a heap Object whose Fields map holds
// entries keyed by a string rendering of the map key. This only supports
// String/int/long keys, which covers the overwhelming majority of real
// usage and matches how this interpreter already treats Fields as a
// generic string-keyed slot table rather than modeling java.lang.Object
// identity/equals/hashCode fully.
func init() {
	r := DefaultRegistry
	const cls = "Ljava/util/HashMap;"
	r.RegisterFunc(cls+"-><init>()V", "hashmap", hashmapInit)
	r.RegisterFunc(cls+"->put(Ljava/lang/Object;Ljava/lang/Object;)Ljava/lang/Object;", "hashmap", hashmapPut)
	r.RegisterFunc(cls+"->get(Ljava/lang/Object;)Ljava/lang/Object;", "hashmap", hashmapGet)
	r.RegisterFunc(cls+"->containsKey(Ljava/lang/Object;)Z", "hashmap", hashmapContainsKey)
	r.RegisterFunc(cls+"->size()I", "hashmap", hashmapSize)
	r.RegisterFunc(cls+"->isEmpty()Z", "hashmap", hashmapIsEmpty)
	r.RegisterFunc(cls+"->remove(Ljava/lang/Object;)Ljava/lang/Object;", "hashmap", hashmapRemove)
}

func mapKeyString(v *vm.VM, val vm.Value) (string, bool) {
	if s, ok := stringOf(v, val); ok {
		return "s:" + s, true
	}
	if n, ok := intOf(val); ok {
		return "i:" + strconv.FormatInt(n, 10), true
	}
	return "", false
}

func hashmapInit(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	id := v.Heap.NewInstance("Ljava/util/HashMap;")
	obj := v.Heap.Get(id)
	if obj != nil {
		obj.Fields = make(map[string]vm.Value)
	}
	return vm.VRef(id), true
}

func mapObject(v *vm.VM, val vm.Value) *vm.Object {
	if val.Kind != vm.KindReference {
		return nil
	}
	obj := v.Heap.Get(val.Ref)
	if obj == nil || obj.Class != "Ljava/util/HashMap;" {
		return nil
	}
	return obj
}

func hashmapPut(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	if len(args) < 3 {
		return vm.VUnknown(), false
	}
	obj := mapObject(v, args[0])
	if obj == nil {
		return vm.VUnknown(), false
	}
	key, ok := mapKeyString(v, args[1])
	if !ok {
		return vm.VUnknown(), false
	}
	prev, had := obj.Fields[key+"$v"]
	obj.Fields[key+"$v"] = args[2]
	if !had {
		return vm.VNullRef(), true
	}
	return prev, true
}

func hashmapGet(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	if len(args) < 2 {
		return vm.VUnknown(), false
	}
	obj := mapObject(v, args[0])
	if obj == nil {
		return vm.VUnknown(), false
	}
	key, ok := mapKeyString(v, args[1])
	if !ok {
		return vm.VUnknown(), false
	}
	val, ok := obj.Fields[key+"$v"]
	if !ok {
		return vm.VNullRef(), true
	}
	return val, true
}

func hashmapContainsKey(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	if len(args) < 2 {
		return vm.VUnknown(), false
	}
	obj := mapObject(v, args[0])
	if obj == nil {
		return vm.VUnknown(), false
	}
	key, ok := mapKeyString(v, args[1])
	if !ok {
		return vm.VUnknown(), false
	}
	_, has := obj.Fields[key+"$v"]
	return vm.VBool(has), true
}

func hashmapSize(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	if len(args) < 1 {
		return vm.VUnknown(), false
	}
	obj := mapObject(v, args[0])
	if obj == nil {
		return vm.VUnknown(), false
	}
	return vm.VInt(int32(len(obj.Fields))), true
}

func hashmapIsEmpty(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	if len(args) < 1 {
		return vm.VUnknown(), false
	}
	obj := mapObject(v, args[0])
	if obj == nil {
		return vm.VUnknown(), false
	}
	return vm.VBool(len(obj.Fields) == 0), true
}

func hashmapRemove(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	if len(args) < 2 {
		return vm.VUnknown(), false
	}
	obj := mapObject(v, args[0])
	if obj == nil {
		return vm.VUnknown(), false
	}
	key, ok := mapKeyString(v, args[1])
	if !ok {
		return vm.VUnknown(), false
	}
	prev, had := obj.Fields[key+"$v"]
	delete(obj.Fields, key+"$v")
	if !had {
		return vm.VNullRef(), true
	}
	return prev, true
}
