package dexfile

// This file declares the raw, file-local tables produced by Parse: the
// unresolved index-based records that mirror the on-disk DEX layout. The
// model package (internal/model) consumes these and resolves them into the
// cross-indexed program model; dexfile itself never resolves across files.

// Header is the decoded DEX header (relevant fields only; checksum/signature
// bytes are skipped, neither verified nor retained).
type Header struct {
	Version        string // e.g. "035"
	FileSize       uint32
	HeaderSize     uint32
	EndianTag      uint32
	LinkSize       uint32
	LinkOff        uint32
	MapOff         uint32
	StringIDsSize  uint32
	StringIDsOff   uint32
	TypeIDsSize    uint32
	TypeIDsOff     uint32
	ProtoIDsSize   uint32
	ProtoIDsOff    uint32
	FieldIDsSize   uint32
	FieldIDsOff    uint32
	MethodIDsSize  uint32
	MethodIDsOff   uint32
	ClassDefsSize  uint32
	ClassDefsOff   uint32
	DataSize       uint32
	DataOff        uint32
}

// EndianTagValue is the expected little-endian ENDIAN_TAG.
const EndianTagValue = 0x12345678

// RawTypeID indexes into the string pool for a type descriptor.
type RawTypeID struct {
	DescriptorIdx uint32
}

// RawProtoID is a method prototype: return type plus an ordered parameter list.
type RawProtoID struct {
	ShortyIdx     uint32
	ReturnTypeIdx uint32
	ParametersOff uint32 // offset of type_list, 0 if no parameters
	ParamTypeIdxs []uint32 // resolved eagerly from ParametersOff
}

// RawFieldID names a field by its declaring class, type, and name.
type RawFieldID struct {
	ClassIdx uint32 // index into type ids
	TypeIdx  uint32
	NameIdx  uint32
}

// RawMethodID names a method by its declaring class, prototype, and name.
type RawMethodID struct {
	ClassIdx uint32
	ProtoIdx uint32
	NameIdx  uint32
}

// RawClassDef is one class_def_item.
type RawClassDef struct {
	ClassIdx        uint32
	AccessFlags     uint32
	SuperclassIdx   int64 // -1 if none (java.lang.Object or an interface)
	InterfacesOff   uint32
	Interfaces      []uint32 // type ids, resolved eagerly from InterfacesOff
	SourceFileIdx   int64 // -1 if unknown
	AnnotationsOff  uint32
	ClassDataOff    uint32
	StaticValuesOff uint32
}

// RawEncodedField is one encoded_field within class_data_item.
type RawEncodedField struct {
	FieldIdx    uint32 // already delta-decoded to an absolute field_ids index
	AccessFlags uint32
}

// RawEncodedMethod is one encoded_method within class_data_item.
type RawEncodedMethod struct {
	MethodIdx   uint32 // already delta-decoded to an absolute method_ids index
	AccessFlags uint32
	CodeOff     uint32 // 0 if abstract/native
}

// RawClassData is the decoded class_data_item for one class.
type RawClassData struct {
	StaticFields  []RawEncodedField
	InstanceFields []RawEncodedField
	DirectMethods []RawEncodedMethod
	VirtualMethods []RawEncodedMethod
}

// RawTry describes one try_item (exception-handling range).
type RawTry struct {
	StartAddr  uint32
	InsnCount  uint16
	HandlerOff uint16
}

// RawHandler is one exception handler: a list of (type, addr) catches plus
// an optional catch-all address.
type RawHandler struct {
	Catches       []RawCatch
	CatchAllAddr  uint32
	HasCatchAll   bool
}

// RawCatch is a single typed catch clause.
type RawCatch struct {
	TypeIdx uint32
	Addr    uint32
}

// RawCode is the decoded code_item for one method.
type RawCode struct {
	RegistersSize uint16
	InsSize       uint16
	OutsSize      uint16
	Insns         []uint16 // raw instruction u16 stream
	Tries         []RawTry
	Handlers      []RawHandler
}

// RawEncodedValue is a tagged union over the encoded_value formats used for
// static field initial values and annotation elements.
type RawEncodedValue struct {
	Type  EncodedValueType
	Byte  int8
	Short int16
	Char  uint16
	Int   int32
	Long  int64
	Float float32
	Double float64
	// Index holds the pool index for
	// VALUE_STRING/TYPE/FIELD/METHOD/ENUM (and the not-fully-evaluated
	// VALUE_METHOD_TYPE/VALUE_METHOD_HANDLE, which reuse the index slot).
	Index uint32
	Array []RawEncodedValue // VALUE_ARRAY
	Annotation *RawEncodedAnnotation // VALUE_ANNOTATION
	BoolVal bool
}

// RawEncodedAnnotation is a decoded encoded_annotation (used both for
// VALUE_ANNOTATION elements and the annotations_directory).
type RawEncodedAnnotation struct {
	TypeIdx uint32
	Names   []uint32 // string idx per element
	Values  []RawEncodedValue
}

// AnnotationVisibility is the leading byte of an annotation_item.
type AnnotationVisibility byte

const (
	VisibilityBuild   AnnotationVisibility = 0x00
	VisibilityRuntime AnnotationVisibility = 0x01
	VisibilitySystem  AnnotationVisibility = 0x02
)

// RawAnnotationItem is one annotation_item: a visibility tag plus the
// encoded_annotation it carries.
type RawAnnotationItem struct {
	Visibility AnnotationVisibility
	Annotation *RawEncodedAnnotation
}

// RawAnnotationSetItem is a decoded annotation_set_item: the dereferenced
// annotation_item at each annotation_off_item, in file order (the format
// itself is unordered; callers that care about a canonical order sort by
// type descriptor).
type RawAnnotationSetItem struct {
	Items []*RawAnnotationItem
}

// RawFieldAnnotation pairs a field_ids index with its annotation_set_item.
type RawFieldAnnotation struct {
	FieldIdx    uint32
	Annotations *RawAnnotationSetItem
}

// RawMethodAnnotation pairs a method_ids index with its annotation_set_item.
type RawMethodAnnotation struct {
	MethodIdx   uint32
	Annotations *RawAnnotationSetItem
}

// RawParameterAnnotation pairs a method_ids index with one annotation_set_item
// per formal parameter (nil where a parameter carries no annotations), decoded
// from the method's annotation_set_ref_list.
type RawParameterAnnotation struct {
	MethodIdx  uint32
	Parameters []*RawAnnotationSetItem
}

// RawAnnotationsDirectory is the decoded annotations_directory_item for one
// class_def_item: the class-level annotation set plus the field/method/
// parameter annotation tables.
type RawAnnotationsDirectory struct {
	ClassAnnotations *RawAnnotationSetItem
	Fields           []RawFieldAnnotation
	Methods          []RawMethodAnnotation
	Parameters       []RawParameterAnnotation
}

// RawMapItem is one map_item in the map_list: the element type, count, and
// file offset of one contiguous run of same-typed items.
type RawMapItem struct {
	Type   MapItemType
	Size   uint32
	Offset uint32
}

// MapItemType is a map_item's type_code, identifying which DEX section a
// map entry describes.
type MapItemType uint16

const (
	TypeHeaderItem              MapItemType = 0x0000
	TypeStringIDItem            MapItemType = 0x0001
	TypeTypeIDItem              MapItemType = 0x0002
	TypeProtoIDItem             MapItemType = 0x0003
	TypeFieldIDItem             MapItemType = 0x0004
	TypeMethodIDItem            MapItemType = 0x0005
	TypeClassDefItem            MapItemType = 0x0006
	TypeCallSiteIDItem          MapItemType = 0x0007
	TypeMethodHandleItem        MapItemType = 0x0008
	TypeMapList                 MapItemType = 0x1000
	TypeTypeList                MapItemType = 0x1001
	TypeAnnotationSetRefList    MapItemType = 0x1002
	TypeAnnotationSetItem       MapItemType = 0x1003
	TypeClassDataItem           MapItemType = 0x2000
	TypeCodeItem                MapItemType = 0x2001
	TypeStringDataItem          MapItemType = 0x2002
	TypeDebugInfoItem           MapItemType = 0x2003
	TypeAnnotationItem          MapItemType = 0x2004
	TypeEncodedArrayItem        MapItemType = 0x2005
	TypeAnnotationsDirectoryItem MapItemType = 0x2006
	TypeHiddenapiClassDataItem  MapItemType = 0xf000
)

// EncodedValueType is the low-order type byte of an encoded_value.
type EncodedValueType byte

const (
	ValueByte        EncodedValueType = 0x00
	ValueShort       EncodedValueType = 0x02
	ValueChar        EncodedValueType = 0x03
	ValueInt         EncodedValueType = 0x04
	ValueLong        EncodedValueType = 0x06
	ValueFloat       EncodedValueType = 0x10
	ValueDouble      EncodedValueType = 0x11
	ValueMethodType  EncodedValueType = 0x15
	ValueMethodHandle EncodedValueType = 0x16
	ValueString      EncodedValueType = 0x17
	ValueType        EncodedValueType = 0x18
	ValueField       EncodedValueType = 0x19
	ValueMethod      EncodedValueType = 0x1a
	ValueEnum        EncodedValueType = 0x1b
	ValueArray       EncodedValueType = 0x1c
	ValueAnnotation  EncodedValueType = 0x1d
	ValueNull        EncodedValueType = 0x1e
	ValueBoolean     EncodedValueType = 0x1f
)

// RawDexFile is the fully-decoded, file-local result of Parse: every pool
// and class, still index-based and unresolved across files. The model
// package wraps this into DexFile and resolves references.
type RawDexFile struct {
	Header    Header
	Strings   []string // decoded string_data_item payloads, by string_ids index
	Types     []RawTypeID
	Protos    []RawProtoID
	Fields    []RawFieldID
	Methods   []RawMethodID
	ClassDefs []RawClassDef
	// Map is the decoded map_list, one entry per section type present in
	// the file. Used to locate and bounds-check sections (notably the
	// annotations directory) independent of the canonical section order.
	Map []RawMapItem
	// ClassData[i] corresponds to ClassDefs[i]; nil if class_data_off was 0
	// (a marker interface or an external reference record).
	ClassData []*RawClassData
	// AnnotationsDirs[i] corresponds to ClassDefs[i]; nil if annotations_off
	// was 0 (the class, its fields, methods, and parameters carry no
	// annotations).
	AnnotationsDirs []*RawAnnotationsDirectory
	// Code[off] holds the decoded code item located at file offset off, so
	// multiple encoded_methods that happen to share a code_off (rare, but
	// legal) resolve to the same RawCode.
	Code map[uint32]*RawCode
	// StaticValues[i] corresponds to ClassDefs[i]'s encoded_array, if any.
	StaticValues [][]RawEncodedValue
}

// MapEntry returns the map_item describing t, if the map_list carries one.
func (rdf *RawDexFile) MapEntry(t MapItemType) (RawMapItem, bool) {
	for _, it := range rdf.Map {
		if it.Type == t {
			return it, true
		}
	}
	return RawMapItem{}, false
}
