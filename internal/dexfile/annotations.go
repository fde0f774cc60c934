package dexfile

// parseMapList decodes the map_list at hdr.MapOff: a uint32 count followed
// by that many map_item (type: u16, unused: u16, size: u32, offset: u32).
// It locates every section in the file regardless of where the canonical
// layout would normally put it.
func parseMapList(data []byte, hdr *Header) ([]RawMapItem, error) {
	if hdr.MapOff == 0 {
		return nil, nil
	}
	s := newStreamAt(data, int(hdr.MapOff))
	size, err := s.ReadU32()
	if err != nil {
		return nil, newTruncated("map_list", 4, s.Remaining(), s.Position())
	}
	out := make([]RawMapItem, size)
	for i := range out {
		typ, e1 := s.ReadU16()
		_, e2 := s.ReadU16() // unused, padding to align the following u32s
		itemSize, e3 := s.ReadU32()
		offset, e4 := s.ReadU32()
		if e1 != nil || e2 != nil || e3 != nil || e4 != nil {
			return nil, newTruncated("map_item", 12, s.Remaining(), s.Position())
		}
		out[i] = RawMapItem{Type: MapItemType(typ), Size: itemSize, Offset: offset}
	}
	return out, nil
}

// parseAnnotationItem reads one annotation_item at off: a visibility byte
// followed by an encoded_annotation.
func parseAnnotationItem(data []byte, off uint32) (*RawAnnotationItem, error) {
	s := newStreamAt(data, int(off))
	vis, err := s.ReadByte()
	if err != nil {
		return nil, newTruncated("annotation_item", 1, s.Remaining(), s.Position())
	}
	ann, err := parseEncodedAnnotation(s)
	if err != nil {
		return nil, err
	}
	return &RawAnnotationItem{Visibility: AnnotationVisibility(vis), Annotation: ann}, nil
}

// parseAnnotationSetItem reads an annotation_set_item at off: a uint32 size
// followed by that many annotation_off_item (uint32 file offsets to
// annotation_item), dereferenced eagerly. Returns nil if off is 0.
func parseAnnotationSetItem(data []byte, off uint32) (*RawAnnotationSetItem, error) {
	if off == 0 {
		return nil, nil
	}
	s := newStreamAt(data, int(off))
	size, err := s.ReadU32()
	if err != nil {
		return nil, newTruncated("annotation_set_item", 4, s.Remaining(), s.Position())
	}
	set := &RawAnnotationSetItem{Items: make([]*RawAnnotationItem, size)}
	for i := range set.Items {
		itemOff, err := s.ReadU32()
		if err != nil {
			return nil, newTruncated("annotation_off_item", 4, s.Remaining(), s.Position())
		}
		item, err := parseAnnotationItem(data, itemOff)
		if err != nil {
			return nil, err
		}
		set.Items[i] = item
	}
	return set, nil
}

// parseAnnotationSetRefList reads an annotation_set_ref_list at off: a
// uint32 size followed by that many annotation_set_ref_item (uint32 offsets
// to annotation_set_item, 0 meaning that parameter carries no annotations).
// Used for per-parameter annotations.
func parseAnnotationSetRefList(data []byte, off uint32) ([]*RawAnnotationSetItem, error) {
	if off == 0 {
		return nil, nil
	}
	s := newStreamAt(data, int(off))
	size, err := s.ReadU32()
	if err != nil {
		return nil, newTruncated("annotation_set_ref_list", 4, s.Remaining(), s.Position())
	}
	out := make([]*RawAnnotationSetItem, size)
	for i := range out {
		refOff, err := s.ReadU32()
		if err != nil {
			return nil, newTruncated("annotation_set_ref_item", 4, s.Remaining(), s.Position())
		}
		set, err := parseAnnotationSetItem(data, refOff)
		if err != nil {
			return nil, err
		}
		out[i] = set
	}
	return out, nil
}

// parseAnnotationsDirectory reads the annotations_directory_item at off: the
// class-level annotation set plus the parallel field/method/parameter
// annotation tables, each keyed by its pool index (spec §4.1 "annotations
// directory", §3 Class.annotations).
func parseAnnotationsDirectory(data []byte, off uint32) (*RawAnnotationsDirectory, error) {
	s := newStreamAt(data, int(off))
	classAnnOff, e1 := s.ReadU32()
	fieldsSize, e2 := s.ReadU32()
	methodsSize, e3 := s.ReadU32()
	paramsSize, e4 := s.ReadU32()
	if e1 != nil || e2 != nil || e3 != nil || e4 != nil {
		return nil, newTruncated("annotations_directory_item", 16, s.Remaining(), s.Position())
	}

	dir := &RawAnnotationsDirectory{}
	if classAnnOff != 0 {
		set, err := parseAnnotationSetItem(data, classAnnOff)
		if err != nil {
			return nil, err
		}
		dir.ClassAnnotations = set
	}

	dir.Fields = make([]RawFieldAnnotation, fieldsSize)
	for i := range dir.Fields {
		fieldIdx, e1 := s.ReadU32()
		annOff, e2 := s.ReadU32()
		if e1 != nil || e2 != nil {
			return nil, newTruncated("field_annotation", 8, s.Remaining(), s.Position())
		}
		set, err := parseAnnotationSetItem(data, annOff)
		if err != nil {
			return nil, err
		}
		dir.Fields[i] = RawFieldAnnotation{FieldIdx: fieldIdx, Annotations: set}
	}

	dir.Methods = make([]RawMethodAnnotation, methodsSize)
	for i := range dir.Methods {
		methodIdx, e1 := s.ReadU32()
		annOff, e2 := s.ReadU32()
		if e1 != nil || e2 != nil {
			return nil, newTruncated("method_annotation", 8, s.Remaining(), s.Position())
		}
		set, err := parseAnnotationSetItem(data, annOff)
		if err != nil {
			return nil, err
		}
		dir.Methods[i] = RawMethodAnnotation{MethodIdx: methodIdx, Annotations: set}
	}

	dir.Parameters = make([]RawParameterAnnotation, paramsSize)
	for i := range dir.Parameters {
		methodIdx, e1 := s.ReadU32()
		listOff, e2 := s.ReadU32()
		if e1 != nil || e2 != nil {
			return nil, newTruncated("parameter_annotation", 8, s.Remaining(), s.Position())
		}
		params, err := parseAnnotationSetRefList(data, listOff)
		if err != nil {
			return nil, err
		}
		dir.Parameters[i] = RawParameterAnnotation{MethodIdx: methodIdx, Parameters: params}
	}

	return dir, nil
}
