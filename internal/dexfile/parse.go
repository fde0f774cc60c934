package dexfile

import (
	"bytes"
	"fmt"
)

var dexMagicPrefix = []byte("dex\n")

// Parse decodes a complete DEX blob into a RawDexFile. It is strict about
// the magic, endian tag, and section boundaries, but lenient about unknown
// instruction bytes (the disassembler, not Parse, records those).
func Parse(data []byte) (*RawDexFile, error) {
	hdr, err := parseHeader(data)
	if err != nil {
		return nil, err
	}

	mapItems, err := parseMapList(data, hdr)
	if err != nil {
		return nil, err
	}

	strs, err := parseStrings(data, hdr)
	if err != nil {
		return nil, err
	}

	types, err := parseTypeIDs(data, hdr)
	if err != nil {
		return nil, err
	}

	protos, err := parseProtoIDs(data, hdr)
	if err != nil {
		return nil, err
	}
	for i := range protos {
		if protos[i].ParametersOff == 0 {
			continue
		}
		params, err := TypeList(data, protos[i].ParametersOff)
		if err != nil {
			return nil, err
		}
		protos[i].ParamTypeIdxs = params
	}

	fields, err := parseFieldIDs(data, hdr)
	if err != nil {
		return nil, err
	}

	methods, err := parseMethodIDs(data, hdr)
	if err != nil {
		return nil, err
	}

	classDefs, err := parseClassDefs(data, hdr)
	if err != nil {
		return nil, err
	}
	for i := range classDefs {
		if classDefs[i].InterfacesOff == 0 {
			continue
		}
		ifaces, err := TypeList(data, classDefs[i].InterfacesOff)
		if err != nil {
			return nil, err
		}
		classDefs[i].Interfaces = ifaces
	}

	rdf := &RawDexFile{
		Header:          *hdr,
		Strings:         strs,
		Types:           types,
		Protos:          protos,
		Fields:          fields,
		Methods:         methods,
		ClassDefs:       classDefs,
		Map:             mapItems,
		ClassData:       make([]*RawClassData, len(classDefs)),
		AnnotationsDirs: make([]*RawAnnotationsDirectory, len(classDefs)),
		Code:            make(map[uint32]*RawCode),
		StaticValues:    make([][]RawEncodedValue, len(classDefs)),
	}

	for i, cd := range classDefs {
		if cd.ClassDataOff != 0 {
			data2, err := parseClassData(data, cd.ClassDataOff)
			if err != nil {
				return nil, err
			}
			rdf.ClassData[i] = data2
			for _, m := range append(append([]RawEncodedMethod{}, data2.DirectMethods...), data2.VirtualMethods...) {
				if m.CodeOff == 0 {
					continue
				}
				if _, ok := rdf.Code[m.CodeOff]; ok {
					continue
				}
				code, err := parseCodeItem(data, m.CodeOff)
				if err != nil {
					return nil, err
				}
				rdf.Code[m.CodeOff] = code
			}
		}
		if cd.StaticValuesOff != 0 {
			vals, err := parseEncodedArray(newStreamAt(data, int(cd.StaticValuesOff)))
			if err != nil {
				return nil, err
			}
			rdf.StaticValues[i] = vals
		}
		if cd.AnnotationsOff != 0 {
			if entry, ok := rdf.MapEntry(TypeAnnotationsDirectoryItem); !ok || cd.AnnotationsOff < entry.Offset {
				return nil, &ParseError{Kind: MapSectionMissing, Offset: int(cd.AnnotationsOff), Detail: "annotations_directory_item referenced by class_def but absent from map_list"}
			}
			dir, err := parseAnnotationsDirectory(data, cd.AnnotationsOff)
			if err != nil {
				return nil, err
			}
			rdf.AnnotationsDirs[i] = dir
		}
	}

	return rdf, nil
}

func parseHeader(data []byte) (*Header, error) {
	if len(data) < 0x70 {
		return nil, newTruncated("header", 0x70, len(data), 0)
	}
	if !bytes.Equal(data[0:4], dexMagicPrefix) {
		return nil, &ParseError{Kind: BadMagic, Offset: 0, Detail: "missing \"dex\\n\" magic"}
	}
	if data[7] != 0x00 {
		return nil, &ParseError{Kind: BadMagic, Offset: 7, Detail: "missing NUL terminator after version"}
	}
	version := string(data[4:7])

	s := newStreamAt(data, 8)
	// checksum (4 bytes) + signature (20 bytes) are validated by presence only.
	if err := s.Skip(4 + 20); err != nil {
		return nil, err
	}

	fileSize, _ := s.ReadU32()
	headerSize, _ := s.ReadU32()
	endianTag, _ := s.ReadU32()
	if endianTag != EndianTagValue {
		return nil, &ParseError{Kind: BadMagic, Offset: s.Position() - 4, Detail: fmt.Sprintf("unexpected endian tag 0x%x", endianTag)}
	}
	linkSize, _ := s.ReadU32()
	linkOff, _ := s.ReadU32()
	mapOff, _ := s.ReadU32()
	stringIDsSize, _ := s.ReadU32()
	stringIDsOff, _ := s.ReadU32()
	typeIDsSize, _ := s.ReadU32()
	typeIDsOff, _ := s.ReadU32()
	protoIDsSize, _ := s.ReadU32()
	protoIDsOff, _ := s.ReadU32()
	fieldIDsSize, _ := s.ReadU32()
	fieldIDsOff, _ := s.ReadU32()
	methodIDsSize, _ := s.ReadU32()
	methodIDsOff, _ := s.ReadU32()
	classDefsSize, _ := s.ReadU32()
	classDefsOff, _ := s.ReadU32()
	dataSize, _ := s.ReadU32()
	dataOff, _ := s.ReadU32()

	if int(fileSize) > len(data) {
		return nil, newTruncated("file", int(fileSize), len(data), 32)
	}

	return &Header{
		Version: version, FileSize: fileSize, HeaderSize: headerSize, EndianTag: endianTag,
		LinkSize: linkSize, LinkOff: linkOff, MapOff: mapOff,
		StringIDsSize: stringIDsSize, StringIDsOff: stringIDsOff,
		TypeIDsSize: typeIDsSize, TypeIDsOff: typeIDsOff,
		ProtoIDsSize: protoIDsSize, ProtoIDsOff: protoIDsOff,
		FieldIDsSize: fieldIDsSize, FieldIDsOff: fieldIDsOff,
		MethodIDsSize: methodIDsSize, MethodIDsOff: methodIDsOff,
		ClassDefsSize: classDefsSize, ClassDefsOff: classDefsOff,
		DataSize: dataSize, DataOff: dataOff,
	}, nil
}

func parseStrings(data []byte, hdr *Header) ([]string, error) {
	out := make([]string, hdr.StringIDsSize)
	idS := newStreamAt(data, int(hdr.StringIDsOff))
	for i := range out {
		off, err := idS.ReadU32()
		if err != nil {
			return nil, newTruncated("string_ids", 4, idS.Remaining(), idS.Position())
		}
		ds := newStreamAt(data, int(off))
		n, err := ds.ReadULEB128()
		if err != nil {
			return nil, err
		}
		str, _, err := decodeMUTF8(data[ds.Position():], int(n))
		if err != nil {
			return nil, err
		}
		out[i] = str
	}
	return out, nil
}

func parseTypeIDs(data []byte, hdr *Header) ([]RawTypeID, error) {
	out := make([]RawTypeID, hdr.TypeIDsSize)
	s := newStreamAt(data, int(hdr.TypeIDsOff))
	for i := range out {
		idx, err := s.ReadU32()
		if err != nil {
			return nil, newTruncated("type_ids", 4, s.Remaining(), s.Position())
		}
		out[i] = RawTypeID{DescriptorIdx: idx}
	}
	return out, nil
}

func parseProtoIDs(data []byte, hdr *Header) ([]RawProtoID, error) {
	out := make([]RawProtoID, hdr.ProtoIDsSize)
	s := newStreamAt(data, int(hdr.ProtoIDsOff))
	for i := range out {
		shorty, err1 := s.ReadU32()
		ret, err2 := s.ReadU32()
		paramsOff, err3 := s.ReadU32()
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, newTruncated("proto_ids", 12, s.Remaining(), s.Position())
		}
		out[i] = RawProtoID{ShortyIdx: shorty, ReturnTypeIdx: ret, ParametersOff: paramsOff}
	}
	return out, nil
}

func parseFieldIDs(data []byte, hdr *Header) ([]RawFieldID, error) {
	out := make([]RawFieldID, hdr.FieldIDsSize)
	s := newStreamAt(data, int(hdr.FieldIDsOff))
	for i := range out {
		classIdx, err1 := s.ReadU16()
		typeIdx, err2 := s.ReadU16()
		nameIdx, err3 := s.ReadU32()
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, newTruncated("field_ids", 8, s.Remaining(), s.Position())
		}
		out[i] = RawFieldID{ClassIdx: uint32(classIdx), TypeIdx: uint32(typeIdx), NameIdx: nameIdx}
	}
	return out, nil
}

func parseMethodIDs(data []byte, hdr *Header) ([]RawMethodID, error) {
	out := make([]RawMethodID, hdr.MethodIDsSize)
	s := newStreamAt(data, int(hdr.MethodIDsOff))
	for i := range out {
		classIdx, err1 := s.ReadU16()
		protoIdx, err2 := s.ReadU16()
		nameIdx, err3 := s.ReadU32()
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, newTruncated("method_ids", 8, s.Remaining(), s.Position())
		}
		out[i] = RawMethodID{ClassIdx: uint32(classIdx), ProtoIdx: uint32(protoIdx), NameIdx: nameIdx}
	}
	return out, nil
}

func parseClassDefs(data []byte, hdr *Header) ([]RawClassDef, error) {
	out := make([]RawClassDef, hdr.ClassDefsSize)
	s := newStreamAt(data, int(hdr.ClassDefsOff))
	for i := range out {
		classIdx, e1 := s.ReadU32()
		accessFlags, e2 := s.ReadU32()
		superclassIdx, e3 := s.ReadU32()
		interfacesOff, e4 := s.ReadU32()
		sourceFileIdx, e5 := s.ReadU32()
		annotationsOff, e6 := s.ReadU32()
		classDataOff, e7 := s.ReadU32()
		staticValuesOff, e8 := s.ReadU32()
		if e1 != nil || e2 != nil || e3 != nil || e4 != nil || e5 != nil || e6 != nil || e7 != nil || e8 != nil {
			return nil, newTruncated("class_defs", 32, s.Remaining(), s.Position())
		}
		super := int64(-1)
		if superclassIdx != 0xffffffff {
			super = int64(superclassIdx)
		}
		srcFile := int64(-1)
		if sourceFileIdx != 0xffffffff {
			srcFile = int64(sourceFileIdx)
		}
		out[i] = RawClassDef{
			ClassIdx: classIdx, AccessFlags: accessFlags, SuperclassIdx: super,
			InterfacesOff: interfacesOff, SourceFileIdx: srcFile,
			AnnotationsOff: annotationsOff, ClassDataOff: classDataOff, StaticValuesOff: staticValuesOff,
		}
	}
	return out, nil
}

func parseClassData(data []byte, off uint32) (*RawClassData, error) {
	s := newStreamAt(data, int(off))
	numStaticFields, err := s.ReadULEB128()
	if err != nil {
		return nil, err
	}
	numInstanceFields, err := s.ReadULEB128()
	if err != nil {
		return nil, err
	}
	numDirectMethods, err := s.ReadULEB128()
	if err != nil {
		return nil, err
	}
	numVirtualMethods, err := s.ReadULEB128()
	if err != nil {
		return nil, err
	}

	cd := &RawClassData{}
	cd.StaticFields, err = parseEncodedFields(s, int(numStaticFields))
	if err != nil {
		return nil, err
	}
	cd.InstanceFields, err = parseEncodedFields(s, int(numInstanceFields))
	if err != nil {
		return nil, err
	}
	cd.DirectMethods, err = parseEncodedMethods(s, int(numDirectMethods))
	if err != nil {
		return nil, err
	}
	cd.VirtualMethods, err = parseEncodedMethods(s, int(numVirtualMethods))
	if err != nil {
		return nil, err
	}
	return cd, nil
}

func parseEncodedFields(s *stream, n int) ([]RawEncodedField, error) {
	out := make([]RawEncodedField, n)
	var fieldIdx uint32
	for i := 0; i < n; i++ {
		delta, err := s.ReadULEB128()
		if err != nil {
			return nil, err
		}
		fieldIdx += delta
		accessFlags, err := s.ReadULEB128()
		if err != nil {
			return nil, err
		}
		out[i] = RawEncodedField{FieldIdx: fieldIdx, AccessFlags: accessFlags}
	}
	return out, nil
}

func parseEncodedMethods(s *stream, n int) ([]RawEncodedMethod, error) {
	out := make([]RawEncodedMethod, n)
	var methodIdx uint32
	for i := 0; i < n; i++ {
		delta, err := s.ReadULEB128()
		if err != nil {
			return nil, err
		}
		methodIdx += delta
		accessFlags, err := s.ReadULEB128()
		if err != nil {
			return nil, err
		}
		codeOff, err := s.ReadULEB128()
		if err != nil {
			return nil, err
		}
		out[i] = RawEncodedMethod{MethodIdx: methodIdx, AccessFlags: accessFlags, CodeOff: codeOff}
	}
	return out, nil
}

// TypeList reads a type_list (used for proto parameters and class interfaces)
// at the given file offset. Returns nil if off is 0 (no list present).
func TypeList(data []byte, off uint32) ([]uint32, error) {
	if off == 0 {
		return nil, nil
	}
	s := newStreamAt(data, int(off))
	size, err := s.ReadU32()
	if err != nil {
		return nil, err
	}
	out := make([]uint32, size)
	for i := range out {
		v, err := s.ReadU16()
		if err != nil {
			return nil, newTruncated("type_list", 2, s.Remaining(), s.Position())
		}
		out[i] = uint32(v)
	}
	return out, nil
}
