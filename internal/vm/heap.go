package vm

// Object is a heap-allocated instance: a class descriptor plus its boxed
// field map, with optional inline storage for the handful of shapes the VM
// treats specially (arrays, interned strings).
type Object struct {
	Class string // class descriptor, e.g. "Ljava/lang/StringBuilder;"

	Fields map[string]Value // field name -> value, for ordinary instances

	IsArray   bool
	ArrayElem Value // zero Value carrying ArrayElem.Kind-equivalent descriptor info
	Elems     []Value

	IsString bool
	Str      string
}

// Heap is the VM's object arena, addressed by a monotonically increasing
// ObjectId (spec §4.5: "ObjectId allocation uses the per-VM counter, not
// hashing"). References are indices into this map, not pointers, so cycles
// in the emulated object graph are representable without special-casing.
type Heap struct {
	objects map[ObjectId]*Object
	next    uint64
}

// NewHeap returns an empty heap. ObjectId allocation starts at 1; 0 (Null)
// is never a valid id.
func NewHeap() *Heap {
	return &Heap{objects: make(map[ObjectId]*Object), next: 1}
}

func (h *Heap) alloc(o *Object) ObjectId {
	id := ObjectId(h.next)
	h.next++
	h.objects[id] = o
	return id
}

// NewInstance allocates a zero-valued instance of classDescriptor.
func (h *Heap) NewInstance(classDescriptor string) ObjectId {
	return h.alloc(&Object{Class: classDescriptor, Fields: make(map[string]Value)})
}

// NewString allocates a new heap String object holding s and returns its
// id; equal strings are not shared.
func (h *Heap) NewString(s string) ObjectId {
	return h.alloc(&Object{Class: "Ljava/lang/String;", IsString: true, Str: s})
}

// NewArray allocates a zero/default-initialised array of length with the
// given element type descriptor (spec §4.5: "new-array ... allocate with
// zero/default element values").
func (h *Heap) NewArray(elemDescriptor string, length int) ObjectId {
	elems := make([]Value, length)
	zero := zeroValueFor(elemDescriptor)
	for i := range elems {
		elems[i] = zero
	}
	return h.alloc(&Object{
		Class:     "[" + elemDescriptor,
		IsArray:   true,
		ArrayElem: Value{Str: elemDescriptor},
		Elems:     elems,
	})
}

func zeroValueFor(descriptor string) Value {
	if descriptor == "" {
		return VNullRef()
	}
	switch descriptor[0] {
	case 'Z':
		return VBool(false)
	case 'B':
		return VByte(0)
	case 'C':
		return VChar(0)
	case 'S':
		return VShort(0)
	case 'I':
		return VInt(0)
	case 'J':
		return VLong(0)
	case 'F':
		return VFloat(0)
	case 'D':
		return VDouble(0)
	default:
		return VNullRef()
	}
}

// Get returns the object at id, or nil if id is Null or unallocated.
func (h *Heap) Get(id ObjectId) *Object {
	if id == Null {
		return nil
	}
	return h.objects[id]
}

// Count reports how many objects have been allocated — used by tests and
// diagnostics, not by interpretation itself.
func (h *Heap) Count() int { return len(h.objects) }
