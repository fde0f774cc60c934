package vm

import (
	"math"
	"testing"

	"dexlens/internal/model"
)

func u16(op, arg byte) uint16 { return uint16(op) | uint16(arg)<<8 }

func newTestContext(t *testing.T, df *model.DexFile) *model.Context {
	t.Helper()
	ctx := model.NewContext()
	ctx.AddDexFile(df)
	return ctx
}

func codeOf(regs, ins, outs int, insns []uint16) *model.Code {
	return &model.Code{RegistersSize: regs, InsSize: ins, OutsSize: outs, Insns: insns}
}

// TestArithmeticWraparound exercises const, const/4, and add-int/2addr and
// checks the result wraps modulo 2^32 instead of overflowing, matching
// Dalvik's integer semantics.
func TestArithmeticWraparound(t *testing.T) {
	insns := []uint16{
		u16(0x14, 0x00), 0xffff, 0x7fff, // const v0, #0x7fffffff
		u16(0x12, 0x11), // const/4 v1, #1
		u16(0xb0, 0x10), // add-int/2addr v0, v1
		u16(0x0f, 0x00), // return v0
	}
	m := &model.Method{
		Name:  "wraps",
		Proto: model.Proto{ReturnType: model.Type{Descriptor: "I"}},
		Code:  codeOf(2, 0, 0, insns),
	}
	m.Class = &model.Class{Type: model.Type{Descriptor: "Lpkg/Arith;"}, DirectMethods: []*model.Method{m}}
	df := &model.DexFile{Name: "classes.dex", Classes: []*model.Class{m.Class}}
	ctx := newTestContext(t, df)

	v := New(ctx, DefaultOptions())
	ret, err := v.Invoke(m, nil)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if ret.Kind != KindInt || ret.I32 != math.MinInt32 {
		t.Fatalf("got %+v, want wrapped MinInt32", ret)
	}
}

// TestDivByZeroRaisesUncaught checks that div-int/2addr by zero surfaces an
// uncaught ArithmeticException when the method has no matching try range.
func TestDivByZeroRaisesUncaught(t *testing.T) {
	insns := []uint16{
		u16(0x12, 0x10), // const/4 v0, #1
		u16(0x12, 0x01), // const/4 v1, #0
		u16(0xb3, 0x10), // div-int/2addr v0, v1
		u16(0x0f, 0x00), // return v0
	}
	m := &model.Method{
		Name:  "divZero",
		Proto: model.Proto{ReturnType: model.Type{Descriptor: "I"}},
		Code:  codeOf(2, 0, 0, insns),
	}
	m.Class = &model.Class{Type: model.Type{Descriptor: "Lpkg/Arith;"}, DirectMethods: []*model.Method{m}}
	df := &model.DexFile{Name: "classes.dex", Classes: []*model.Class{m.Class}}
	ctx := newTestContext(t, df)

	v := New(ctx, DefaultOptions())
	_, err := v.Invoke(m, nil)
	ve, ok := err.(*VmError)
	if !ok || ve.Kind != ErrUncaught {
		t.Fatalf("err = %v, want ErrUncaught VmError", err)
	}
	if ve.ExcType != "Ljava/lang/ArithmeticException;" {
		t.Fatalf("ExcType = %q", ve.ExcType)
	}
}

// TestStaticFieldInitRunsClinitOnce checks that reading a static field
// triggers <clinit> before the sget completes, and that the materialised
// value reflects what <clinit> wrote (spec: "first touch of a class's
// static state triggers <clinit> before the touching instruction completes").
func TestStaticFieldInitRunsClinitOnce(t *testing.T) {
	cls := &model.Class{Type: model.Type{Descriptor: "Lpkg/Foo;"}}
	secret := &model.Field{Class: cls, Name: "SECRET", Type: model.Type{Descriptor: "I"}}
	cls.StaticFields = []*model.Field{secret}

	clinitInsns := []uint16{
		u16(0x14, 0x00), 0x002a, 0x0000, // const v0, #42
		u16(0x67, 0x00), 0x0000, // sput v0, Lpkg/Foo;->SECRET:I
		u16(0x0e, 0x00), // return-void
	}
	clinit := &model.Method{
		Class: cls, Name: "<clinit>",
		Proto: model.Proto{ReturnType: model.Type{Descriptor: "V"}},
		Code:  codeOf(1, 0, 0, clinitInsns),
	}

	getInsns := []uint16{
		u16(0x60, 0x00), 0x0000, // sget v0, Lpkg/Foo;->SECRET:I
		u16(0x0f, 0x00), // return v0
	}
	getSecret := &model.Method{
		Class: cls, Name: "getSecret",
		Proto: model.Proto{ReturnType: model.Type{Descriptor: "I"}},
		Code:  codeOf(1, 0, 0, getInsns),
	}
	cls.DirectMethods = []*model.Method{clinit, getSecret}

	df := &model.DexFile{
		Name:    "classes.dex",
		Classes: []*model.Class{cls},
		Fields: []model.RawFieldResolved{
			{Class: model.Type{Descriptor: "Lpkg/Foo;"}, Name: "SECRET", Type: model.Type{Descriptor: "I"}},
		},
	}
	ctx := newTestContext(t, df)

	v := New(ctx, DefaultOptions())
	ret, err := v.Invoke(getSecret, nil)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if ret.Kind != KindInt || ret.I32 != 42 {
		t.Fatalf("got %+v, want 42", ret)
	}
	if v.Statics.stateOf("Lpkg/Foo;") != Done {
		t.Fatalf("class init state = %v, want Done", v.Statics.stateOf("Lpkg/Foo;"))
	}
}

// TestGetStaticFieldRunsClinitOnFirstTouch checks that reading a static
// field directly (without going through a getter method) still triggers
// <clinit> lazily, per spec §6's get_static_field operation.
func TestGetStaticFieldRunsClinitOnFirstTouch(t *testing.T) {
	cls := &model.Class{Type: model.Type{Descriptor: "Lpkg/Foo;"}}
	secret := &model.Field{Class: cls, Name: "SECRET", Type: model.Type{Descriptor: "I"}}
	cls.StaticFields = []*model.Field{secret}

	clinitInsns := []uint16{
		u16(0x14, 0x00), 0x002a, 0x0000, // const v0, #42
		u16(0x67, 0x00), 0x0000, // sput v0, Lpkg/Foo;->SECRET:I
		u16(0x0e, 0x00), // return-void
	}
	clinit := &model.Method{
		Class: cls, Name: "<clinit>",
		Proto: model.Proto{ReturnType: model.Type{Descriptor: "V"}},
		Code:  codeOf(1, 0, 0, clinitInsns),
	}
	cls.DirectMethods = []*model.Method{clinit}

	df := &model.DexFile{
		Name:    "classes.dex",
		Classes: []*model.Class{cls},
		Fields: []model.RawFieldResolved{
			{Class: model.Type{Descriptor: "Lpkg/Foo;"}, Name: "SECRET", Type: model.Type{Descriptor: "I"}},
		},
	}
	ctx := newTestContext(t, df)

	v := New(ctx, DefaultOptions())
	val, ok, err := v.GetStaticField("Lpkg/Foo;->SECRET:I")
	if err != nil {
		t.Fatalf("GetStaticField: %v", err)
	}
	if !ok {
		t.Fatalf("GetStaticField: ok = false, want true")
	}
	if val.Kind != KindInt || val.I32 != 42 {
		t.Fatalf("got %+v, want 42", val)
	}
}

func TestGetStaticFieldUnknownFQDNNotOK(t *testing.T) {
	v := New(model.NewContext(), DefaultOptions())
	_, ok, err := v.GetStaticField("not-a-valid-fqdn")
	if err != nil {
		t.Fatalf("GetStaticField: %v", err)
	}
	if ok {
		t.Fatalf("GetStaticField: ok = true for malformed fqdn, want false")
	}
}

// TestVirtualDispatchUnknownReceiverFallsBack checks that invoking a virtual
// method through a receiver register the VM never wrote (Value's zero value
// is Unknown) still resolves to the statically named method rather than
// failing, per spec §4.5's dispatch fallback rule.
func TestVirtualDispatchUnknownReceiverFallsBack(t *testing.T) {
	base := &model.Class{Type: model.Type{Descriptor: "Lpkg/Base;"}}
	greetInsns := []uint16{
		u16(0x12, 0x70), // const/4 v0, #7
		u16(0x0f, 0x00), // return v0
	}
	greet := &model.Method{
		Class: base, Name: "greet",
		Proto: model.Proto{ReturnType: model.Type{Descriptor: "I"}},
		Code:  codeOf(1, 1, 0, greetInsns),
	}
	base.VirtualMethods = []*model.Method{greet}

	driverClass := &model.Class{Type: model.Type{Descriptor: "Lpkg/Driver;"}}
	driverInsns := []uint16{
		u16(0x6e, 0x10), 0x0000, 0x0000, // invoke-virtual {v0}, Lpkg/Base;->greet()I
		u16(0x0a, 0x01), // move-result v1
		u16(0x0f, 0x01), // return v1
	}
	driver := &model.Method{
		Class: driverClass, Name: "callGreet",
		Proto: model.Proto{ReturnType: model.Type{Descriptor: "I"}},
		Code:  codeOf(2, 0, 0, driverInsns),
	}
	driverClass.DirectMethods = []*model.Method{driver}

	df := &model.DexFile{
		Name:    "classes.dex",
		Classes: []*model.Class{base, driverClass},
		Methods: []model.RawMethodResolved{
			{Class: model.Type{Descriptor: "Lpkg/Base;"}, Name: "greet", Proto: model.Proto{ReturnType: model.Type{Descriptor: "I"}}},
		},
	}
	ctx := newTestContext(t, df)

	v := New(ctx, DefaultOptions())
	ret, err := v.Invoke(driver, nil)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if ret.Kind != KindInt || ret.I32 != 7 {
		t.Fatalf("got %+v, want 7", ret)
	}
}

// TestArrayXorLoop is the VM equivalent of decrypting a short byte string by
// XOR-ing each element against a fixed key inside a registered loop: it
// exercises new-array, fill-array-data, if-ge, aget-byte/aput-byte,
// xor-int/2addr, add-int/lit8 and goto together in one method body.
func TestArrayXorLoop(t *testing.T) {
	insns := []uint16{
		u16(0x12, 0x31), // 0: const/4 v1, #3          (size)
		u16(0x23, 0x10), 0x0000, // 1: new-array v0, v1, [B
		u16(0x26, 0x00), 0x0011, 0x0000, // 3: fill-array-data v0, +17 (-> offset 20)
		u16(0x12, 0x02), // 6: const/4 v2, #0          (i)
		u16(0x12, 0x13), // 7: const/4 v3, #1          (key)
		u16(0x35, 0x12), 0x000a, // 8: if-ge v2, v1, +10 (-> offset 18)
		u16(0x48, 0x04), 0x0200, // 10: aget-byte v4, v0, v2
		u16(0xb7, 0x34), // 12: xor-int/2addr v4, v3
		u16(0x4f, 0x04), 0x0200, // 13: aput-byte v4, v0, v2
		u16(0xd8, 0x02), 0x0102, // 15: add-int/lit8 v2, v2, #1
		u16(0x28, 0xf7), // 17: goto -9 (-> offset 8)
		u16(0x11, 0x00), // 18: return-object v0
		0x0000,          // 19: nop (payload alignment)
		0x0300, 0x0001, 0x0003, 0x0000, 0x0b0a, 0x000c, // 20: fill-array-data-payload
	}
	cls := &model.Class{Type: model.Type{Descriptor: "Lpkg/Xor;"}}
	m := &model.Method{
		Class: cls, Name: "decrypt",
		Proto: model.Proto{ReturnType: model.Type{Descriptor: "[B"}},
		Code:  codeOf(5, 0, 0, insns),
	}
	cls.DirectMethods = []*model.Method{m}

	df := &model.DexFile{
		Name:    "classes.dex",
		Classes: []*model.Class{cls},
		Types:   []model.Type{{Descriptor: "[B"}},
	}
	ctx := newTestContext(t, df)

	v := New(ctx, DefaultOptions())
	ret, err := v.Invoke(m, nil)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if ret.Kind != KindReference {
		t.Fatalf("result kind = %v, want Reference", ret.Kind)
	}
	obj := v.Heap.Get(ret.Ref)
	if obj == nil || !obj.IsArray || len(obj.Elems) != 3 {
		t.Fatalf("heap object = %+v", obj)
	}
	want := []int64{11, 10, 13}
	for i, w := range want {
		got, ok := obj.Elems[i].AsInt64()
		if !ok || got != w {
			t.Errorf("elem[%d] = %v, want %d", i, obj.Elems[i], w)
		}
	}
}
