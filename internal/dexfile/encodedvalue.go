package dexfile

import "fmt"

// parseEncodedArray reads an encoded_array (a ULEB128 size followed by that
// many encoded_value entries), as used for static field initial values.
func parseEncodedArray(s *stream) ([]RawEncodedValue, error) {
	size, err := s.ReadULEB128()
	if err != nil {
		return nil, err
	}
	out := make([]RawEncodedValue, size)
	for i := range out {
		v, err := parseEncodedValue(s)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// parseEncodedValue reads one encoded_value: a type-and-arg byte followed by
// a type-specific payload.
func parseEncodedValue(s *stream) (RawEncodedValue, error) {
	tb, err := s.ReadByte()
	if err != nil {
		return RawEncodedValue{}, err
	}
	valueType := EncodedValueType(tb & 0x1f)
	valueArg := int(tb >> 5)

	switch valueType {
	case ValueByte:
		b, err := readSignedIntOfSize(s, valueArg+1)
		return RawEncodedValue{Type: valueType, Byte: int8(b)}, err
	case ValueShort:
		v, err := readSignedIntOfSize(s, valueArg+1)
		return RawEncodedValue{Type: valueType, Short: int16(v)}, err
	case ValueChar:
		v, err := readUnsignedIntOfSize(s, valueArg+1)
		return RawEncodedValue{Type: valueType, Char: uint16(v)}, err
	case ValueInt:
		v, err := readSignedIntOfSize(s, valueArg+1)
		return RawEncodedValue{Type: valueType, Int: int32(v)}, err
	case ValueLong:
		v, err := readSignedLongOfSize(s, valueArg+1)
		return RawEncodedValue{Type: valueType, Long: v}, err
	case ValueFloat:
		v, err := readFloatRightZeroExtended(s, valueArg+1)
		return RawEncodedValue{Type: valueType, Float: v}, err
	case ValueDouble:
		v, err := readDoubleRightZeroExtended(s, valueArg+1)
		return RawEncodedValue{Type: valueType, Double: v}, err
	case ValueMethodType, ValueMethodHandle, ValueString, ValueType, ValueField, ValueMethod, ValueEnum:
		idx, err := readUnsignedIntOfSize(s, valueArg+1)
		return RawEncodedValue{Type: valueType, Index: uint32(idx)}, err
	case ValueArray:
		arr, err := parseEncodedArray(s)
		return RawEncodedValue{Type: valueType, Array: arr}, err
	case ValueAnnotation:
		ann, err := parseEncodedAnnotation(s)
		return RawEncodedValue{Type: valueType, Annotation: ann}, err
	case ValueNull:
		return RawEncodedValue{Type: valueType}, nil
	case ValueBoolean:
		return RawEncodedValue{Type: valueType, BoolVal: valueArg != 0}, nil
	default:
		return RawEncodedValue{}, fmt.Errorf("dexfile: unknown encoded_value type 0x%x at offset %d", valueType, s.Position())
	}
}

func parseEncodedAnnotation(s *stream) (*RawEncodedAnnotation, error) {
	typeIdx, err := s.ReadULEB128()
	if err != nil {
		return nil, err
	}
	size, err := s.ReadULEB128()
	if err != nil {
		return nil, err
	}
	ann := &RawEncodedAnnotation{TypeIdx: typeIdx, Names: make([]uint32, size), Values: make([]RawEncodedValue, size)}
	for i := uint32(0); i < size; i++ {
		nameIdx, err := s.ReadULEB128()
		if err != nil {
			return nil, err
		}
		v, err := parseEncodedValue(s)
		if err != nil {
			return nil, err
		}
		ann.Names[i] = nameIdx
		ann.Values[i] = v
	}
	return ann, nil
}

// readUnsignedIntOfSize reads n little-endian bytes zero-extended to uint64,
// the encoding used for VALUE_CHAR/STRING/TYPE/FIELD/METHOD/ENUM indices.
func readUnsignedIntOfSize(s *stream, n int) (uint64, error) {
	bs, err := s.ReadBytes(n)
	if err != nil {
		return 0, err
	}
	var v uint64
	for i, b := range bs {
		v |= uint64(b) << (8 * uint(i))
	}
	return v, nil
}

// readSignedIntOfSize reads n little-endian bytes sign-extended to int64.
func readSignedIntOfSize(s *stream, n int) (int64, error) {
	bs, err := s.ReadBytes(n)
	if err != nil {
		return 0, err
	}
	var v int64
	for i, b := range bs {
		v |= int64(b) << (8 * uint(i))
	}
	if n < 8 {
		shift := uint(64 - 8*n)
		v = (v << shift) >> shift
	}
	return v, nil
}

func readSignedLongOfSize(s *stream, n int) (int64, error) {
	return readSignedIntOfSize(s, n)
}

// readFloatRightZeroExtended reads n bytes, places them in the high-order
// bytes of a 4-byte buffer (right-zero-extended per the DEX spec), and
// reinterprets as IEEE-754 float32.
func readFloatRightZeroExtended(s *stream, n int) (float32, error) {
	bs, err := s.ReadBytes(n)
	if err != nil {
		return 0, err
	}
	var buf [4]byte
	copy(buf[4-n:], bs)
	bits := uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24
	return float32FromBits(bits), nil
}

func readDoubleRightZeroExtended(s *stream, n int) (float64, error) {
	bs, err := s.ReadBytes(n)
	if err != nil {
		return 0, err
	}
	var buf [8]byte
	copy(buf[8-n:], bs)
	var bits uint64
	for i := 7; i >= 0; i-- {
		bits = bits<<8 | uint64(buf[i])
	}
	return float64FromBits(bits), nil
}
