package dexfile

// parseCodeItem decodes a code_item: register/ins/outs counts, the raw u16
// instruction stream, and the try/handler tables. The instruction stream is
// left undisassembled here — internal/disasm turns it into typed Instructions
// once pool references can be resolved against the full program model.
func parseCodeItem(data []byte, off uint32) (*RawCode, error) {
	s := newStreamAt(data, int(off))

	registersSize, err := s.ReadU16()
	if err != nil {
		return nil, err
	}
	insSize, err := s.ReadU16()
	if err != nil {
		return nil, err
	}
	outsSize, err := s.ReadU16()
	if err != nil {
		return nil, err
	}
	triesSize, err := s.ReadU16()
	if err != nil {
		return nil, err
	}
	_, err = s.ReadU32() // debug_info_off, not modeled
	if err != nil {
		return nil, err
	}
	insnsSize, err := s.ReadU32()
	if err != nil {
		return nil, err
	}

	insns := make([]uint16, insnsSize)
	for i := range insns {
		v, err := s.ReadU16()
		if err != nil {
			return nil, newTruncated("code_item.insns", 2, s.Remaining(), s.Position())
		}
		insns[i] = v
	}

	code := &RawCode{
		RegistersSize: registersSize,
		InsSize:       insSize,
		OutsSize:      outsSize,
		Insns:         insns,
	}

	if triesSize == 0 {
		return code, nil
	}

	if insnsSize%2 != 0 {
		s.Align(4) // padding before tries[] when insns_size is odd
	}

	tries := make([]RawTry, triesSize)
	for i := range tries {
		startAddr, e1 := s.ReadU32()
		insnCount, e2 := s.ReadU16()
		handlerOff, e3 := s.ReadU16()
		if e1 != nil || e2 != nil || e3 != nil {
			return nil, newTruncated("try_item", 8, s.Remaining(), s.Position())
		}
		tries[i] = RawTry{StartAddr: startAddr, InsnCount: insnCount, HandlerOff: handlerOff}
	}

	handlersListStart := s.Position()
	handlersSize, err := s.ReadULEB128()
	if err != nil {
		return nil, err
	}

	// handler_off in try_item is relative to the start of the
	// encoded_catch_handler_list (i.e. handlersListStart).
	offsetToHandler := make(map[int]RawHandler, handlersSize)
	for i := uint32(0); i < handlersSize; i++ {
		relOff := s.Position() - handlersListStart
		h, err := parseEncodedCatchHandler(s)
		if err != nil {
			return nil, err
		}
		offsetToHandler[relOff] = h
	}

	resolved := make([]RawHandler, len(tries))
	for i, t := range tries {
		h, ok := offsetToHandler[int(t.HandlerOff)]
		if !ok {
			return nil, newPoolRange("try_item.handler_off", int(t.HandlerOff), int(handlersSize), handlersListStart)
		}
		resolved[i] = h
	}

	code.Tries = tries
	code.Handlers = resolved
	return code, nil
}

func parseEncodedCatchHandler(s *stream) (RawHandler, error) {
	size, err := s.ReadSLEB128()
	if err != nil {
		return RawHandler{}, err
	}
	n := size
	if n < 0 {
		n = -n
	}
	h := RawHandler{Catches: make([]RawCatch, 0, n)}
	for i := int32(0); i < n; i++ {
		typeIdx, err := s.ReadULEB128()
		if err != nil {
			return RawHandler{}, err
		}
		addr, err := s.ReadULEB128()
		if err != nil {
			return RawHandler{}, err
		}
		h.Catches = append(h.Catches, RawCatch{TypeIdx: typeIdx, Addr: addr})
	}
	if size <= 0 {
		addr, err := s.ReadULEB128()
		if err != nil {
			return RawHandler{}, err
		}
		h.CatchAllAddr = addr
		h.HasCatchAll = true
	}
	return h, nil
}
