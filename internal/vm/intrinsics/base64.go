package intrinsics

import (
	"encoding/base64"

	"dexlens/internal/vm"
)

// android.util.Base64 and java.util.Base64 both boil down to the standard
// alphabet with padding; callers of the android flavor pass a flags int
// (DEFAULT/NO_WRAP/...) that only changes line-wrapping, which never
// matters for a single in-memory byte array, so it's accepted and ignored.
func init() {
	r := DefaultRegistry
	r.RegisterFunc("Landroid/util/Base64;->encodeToString([BI)Ljava/lang/String;", "base64", base64EncodeAndroid)
	r.RegisterFunc("Landroid/util/Base64;->decode(Ljava/lang/String;I)[B", "base64", base64DecodeAndroid)
	r.RegisterFunc("Ljava/util/Base64$Encoder;->encodeToString([B)Ljava/lang/String;", "base64", base64EncodeJava)
	r.RegisterFunc("Ljava/util/Base64$Decoder;->decode(Ljava/lang/String;)[B", "base64", base64DecodeJava)
}

func bytesOf(v *vm.VM, val vm.Value) ([]byte, bool) {
	elems, ok := arrayElems(v, val)
	if !ok {
		return nil, false
	}
	out := make([]byte, len(elems))
	for i, e := range elems {
		n, _ := intOf(e)
		out[i] = byte(n)
	}
	return out, true
}

func newByteArray(v *vm.VM, data []byte) vm.Value {
	id := v.Heap.NewArray("B", len(data))
	obj := v.Heap.Get(id)
	for i, b := range data {
		obj.Elems[i] = vm.VByte(int8(b))
	}
	return vm.VRef(id)
}

func base64EncodeAndroid(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	if len(args) < 1 {
		return vm.VUnknown(), false
	}
	b, ok := bytesOf(v, args[0])
	if !ok {
		return vm.VUnknown(), false
	}
	return vm.VString(base64.StdEncoding.EncodeToString(b)), true
}

func base64DecodeAndroid(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	if len(args) < 1 {
		return vm.VUnknown(), false
	}
	s, ok := stringOf(v, args[0])
	if !ok {
		return vm.VUnknown(), false
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return vm.VUnknown(), false
	}
	return newByteArray(v, data), true
}

func base64EncodeJava(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	return base64EncodeAndroid(v, args)
}

func base64DecodeJava(v *vm.VM, args []vm.Value) (vm.Value, bool) {
	return base64DecodeAndroid(v, args)
}
