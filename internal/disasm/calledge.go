package disasm

// CallEdge is a call site extracted from a method's instruction stream. A
// Dalvik invoke-* directly names its target method_id, so unlike the
// ARM64 teacher's register-tracked BL/BLR extraction this is a direct
// lookup, not a data-flow reconstruction.
type CallEdge struct {
	FromMethod string // FQDN of the caller
	FromOffset int    // code-unit offset of the invoke instruction
	Kind       string // "invoke-virtual", "invoke-direct", "invoke-static", "invoke-super", "invoke-interface"
	Target     string // callee FQDN, resolved via the method pool triple even if unresolved to a concrete *model.Method
	Resolved   bool   // true if Target names a method declared somewhere in the analyzed dex set
}

// ExtractCallEdges scans a resolved instruction stream for invoke-* sites.
func ExtractCallEdges(fromMethod string, insts []Instruction) []CallEdge {
	var edges []CallEdge
	for _, in := range insts {
		if !in.IsInvoke() || in.Method == nil {
			continue
		}
		e := CallEdge{
			FromMethod: fromMethod,
			FromOffset: in.Offset,
			Kind:       in.Name,
			Target:     in.Method.Class.Descriptor + "->" + in.Method.Name + in.Method.Proto.Descriptor(),
			Resolved:   in.Method.Method != nil,
		}
		edges = append(edges, e)
	}
	return edges
}
