package intrinsics

import (
	"testing"

	"dexlens/internal/model"
	"dexlens/internal/vm"
)

func newTestVM(t *testing.T) *vm.VM {
	t.Helper()
	return vm.New(model.NewContext(), vm.DefaultOptions())
}

func TestStringLengthAndCase(t *testing.T) {
	v := newTestVM(t)
	got, ok := DefaultRegistry.Call(v, "Ljava/lang/String;->length()I", []vm.Value{vm.VString("hello")})
	if !ok || got.I32 != 5 {
		t.Fatalf("length() = %+v, ok=%v", got, ok)
	}
	got, ok = DefaultRegistry.Call(v, "Ljava/lang/String;->toUpperCase()Ljava/lang/String;", []vm.Value{vm.VString("hello")})
	if !ok || got.Str != "HELLO" {
		t.Fatalf("toUpperCase() = %+v, ok=%v", got, ok)
	}
}

func TestStringEqualsAndConcat(t *testing.T) {
	v := newTestVM(t)
	got, ok := DefaultRegistry.Call(v, "Ljava/lang/String;->equals(Ljava/lang/Object;)Z", []vm.Value{vm.VString("abc"), vm.VString("abc")})
	if !ok || !got.Bool() {
		t.Fatalf("equals() = %+v, ok=%v", got, ok)
	}
	got, ok = DefaultRegistry.Call(v, "Ljava/lang/String;->concat(Ljava/lang/String;)Ljava/lang/String;", []vm.Value{vm.VString("foo"), vm.VString("bar")})
	if !ok || got.Str != "foobar" {
		t.Fatalf("concat() = %+v, ok=%v", got, ok)
	}
}

func TestStringHashCodeMatchesJavaPolynomial(t *testing.T) {
	v := newTestVM(t)
	got, ok := DefaultRegistry.Call(v, "Ljava/lang/String;->hashCode()I", []vm.Value{vm.VString("a")})
	if !ok || got.I32 != 97 {
		t.Fatalf("hashCode('a') = %+v, ok=%v, want 97", got, ok)
	}
}

func TestStringBuilderAppendChain(t *testing.T) {
	v := newTestVM(t)
	cur, ok := DefaultRegistry.Call(v, "Ljava/lang/StringBuilder;-><init>()V", nil)
	if !ok {
		t.Fatalf("init failed")
	}
	cur, ok = DefaultRegistry.Call(v, "Ljava/lang/StringBuilder;->append(Ljava/lang/String;)Ljava/lang/StringBuilder;", []vm.Value{cur, vm.VString("hello ")})
	if !ok {
		t.Fatalf("append(String) failed")
	}
	cur, ok = DefaultRegistry.Call(v, "Ljava/lang/StringBuilder;->append(I)Ljava/lang/StringBuilder;", []vm.Value{cur, vm.VInt(42)})
	if !ok {
		t.Fatalf("append(int) failed")
	}
	out, ok := DefaultRegistry.Call(v, "Ljava/lang/StringBuilder;->toString()Ljava/lang/String;", []vm.Value{cur})
	if !ok || out.Str != "hello 42" {
		t.Fatalf("toString() = %+v, ok=%v, want %q", out, ok, "hello 42")
	}
}

func TestArraysToStringAndSort(t *testing.T) {
	v := newTestVM(t)
	id := v.Heap.NewArray("I", 3)
	obj := v.Heap.Get(id)
	obj.Elems[0] = vm.VInt(3)
	obj.Elems[1] = vm.VInt(1)
	obj.Elems[2] = vm.VInt(2)
	ref := vm.VRef(id)

	_, ok := DefaultRegistry.Call(v, "Ljava/util/Arrays;->sort([I)V", []vm.Value{ref})
	if !ok {
		t.Fatalf("sort failed")
	}
	got, ok := DefaultRegistry.Call(v, "Ljava/util/Arrays;->toString([I)Ljava/lang/String;", []vm.Value{ref})
	if !ok || got.Str != "[1, 2, 3]" {
		t.Fatalf("toString() = %+v, ok=%v, want [1, 2, 3]", got, ok)
	}
}

func TestArraysBinarySearch(t *testing.T) {
	v := newTestVM(t)
	id := v.Heap.NewArray("I", 4)
	obj := v.Heap.Get(id)
	obj.Elems[0] = vm.VInt(1)
	obj.Elems[1] = vm.VInt(3)
	obj.Elems[2] = vm.VInt(5)
	obj.Elems[3] = vm.VInt(7)
	ref := vm.VRef(id)

	got, ok := DefaultRegistry.Call(v, "Ljava/util/Arrays;->binarySearch([II)I", []vm.Value{ref, vm.VInt(5)})
	if !ok || got.I32 != 2 {
		t.Fatalf("binarySearch(5) = %+v, ok=%v, want 2", got, ok)
	}
	got, ok = DefaultRegistry.Call(v, "Ljava/util/Arrays;->binarySearch([II)I", []vm.Value{ref, vm.VInt(4)})
	if !ok || got.I32 != -3 {
		t.Fatalf("binarySearch(4) = %+v, ok=%v, want -3", got, ok)
	}
}

func TestHashMapPutGetRemove(t *testing.T) {
	v := newTestVM(t)
	m, ok := DefaultRegistry.Call(v, "Ljava/util/HashMap;-><init>()V", nil)
	if !ok {
		t.Fatalf("init failed")
	}
	prev, ok := DefaultRegistry.Call(v, "Ljava/util/HashMap;->put(Ljava/lang/Object;Ljava/lang/Object;)Ljava/lang/Object;",
		[]vm.Value{m, vm.VString("k"), vm.VInt(7)})
	if !ok || prev.Kind != vm.KindReference || prev.Ref != vm.Null {
		t.Fatalf("first put() should return null, got %+v, ok=%v", prev, ok)
	}
	got, ok := DefaultRegistry.Call(v, "Ljava/util/HashMap;->get(Ljava/lang/Object;)Ljava/lang/Object;", []vm.Value{m, vm.VString("k")})
	if !ok || got.I32 != 7 {
		t.Fatalf("get() = %+v, ok=%v, want 7", got, ok)
	}
	size, ok := DefaultRegistry.Call(v, "Ljava/util/HashMap;->size()I", []vm.Value{m})
	if !ok || size.I32 != 1 {
		t.Fatalf("size() = %+v, ok=%v, want 1", size, ok)
	}
	removed, ok := DefaultRegistry.Call(v, "Ljava/util/HashMap;->remove(Ljava/lang/Object;)Ljava/lang/Object;", []vm.Value{m, vm.VString("k")})
	if !ok || removed.I32 != 7 {
		t.Fatalf("remove() = %+v, ok=%v, want 7", removed, ok)
	}
	empty, ok := DefaultRegistry.Call(v, "Ljava/util/HashMap;->isEmpty()Z", []vm.Value{m})
	if !ok || !empty.Bool() {
		t.Fatalf("isEmpty() = %+v, ok=%v, want true", empty, ok)
	}
}

func TestBase64RoundTrip(t *testing.T) {
	v := newTestVM(t)
	id := v.Heap.NewArray("B", 3)
	obj := v.Heap.Get(id)
	obj.Elems[0] = vm.VByte('f')
	obj.Elems[1] = vm.VByte('o')
	obj.Elems[2] = vm.VByte('o')
	ref := vm.VRef(id)

	encoded, ok := DefaultRegistry.Call(v, "Landroid/util/Base64;->encodeToString([BI)Ljava/lang/String;", []vm.Value{ref, vm.VInt(0)})
	if !ok || encoded.Str != "Zm9v" {
		t.Fatalf("encodeToString() = %+v, ok=%v, want Zm9v", encoded, ok)
	}
	decoded, ok := DefaultRegistry.Call(v, "Landroid/util/Base64;->decode(Ljava/lang/String;I)[B", []vm.Value{encoded, vm.VInt(0)})
	if !ok {
		t.Fatalf("decode failed")
	}
	elems, ok := arrayElems(v, decoded)
	if !ok || len(elems) != 3 {
		t.Fatalf("decoded array = %+v, ok=%v", elems, ok)
	}
	if b, _ := intOf(elems[0]); byte(b) != 'f' {
		t.Fatalf("decoded[0] = %v, want 'f'", b)
	}
}

func TestBoxedParseAndToString(t *testing.T) {
	v := newTestVM(t)
	got, ok := DefaultRegistry.Call(v, "Ljava/lang/Integer;->parseInt(Ljava/lang/String;)I", []vm.Value{vm.VString("123")})
	if !ok || got.I32 != 123 {
		t.Fatalf("parseInt() = %+v, ok=%v, want 123", got, ok)
	}
	got, ok = DefaultRegistry.Call(v, "Ljava/lang/Integer;->toString(I)Ljava/lang/String;", []vm.Value{vm.VInt(123)})
	if !ok || got.Str != "123" {
		t.Fatalf("toString() = %+v, ok=%v, want 123", got, ok)
	}
}
