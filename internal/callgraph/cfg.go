package callgraph

import (
	"fmt"

	"dexlens/internal/disasm"

	"github.com/zboralski/lattice"
)

// BuildCFG constructs a lattice.CFGGraph from disassembled methods. Each
// FuncInfo is converted to a lattice.FuncCFG via the existing
// disasm.BuildCFG (3-phase leader/partition/successor algorithm) then
// mapped to lattice types.
func BuildCFG(funcs []FuncInfo) *lattice.CFGGraph {
	cg := &lattice.CFGGraph{}
	for _, f := range funcs {
		dcfg := disasm.BuildCFG(f.Name, f.Insts)
		lcfg := convertFuncCFG(&dcfg, f.CallEdges)
		cg.Funcs = append(cg.Funcs, lcfg)
	}
	return cg
}

// BuildFuncCFG builds a single-method lattice.FuncCFG from instructions and
// call edges. Returns the FuncCFG and the number of basic blocks (for
// filtering trivial methods, e.g. pure accessors with a single block).
func BuildFuncCFG(name string, insts []disasm.Instruction, edges []disasm.CallEdge) (*lattice.FuncCFG, int) {
	dcfg := disasm.BuildCFG(name, insts)
	lcfg := convertFuncCFG(&dcfg, edges)
	return lcfg, len(dcfg.Blocks)
}

// convertFuncCFG maps a disasm.FuncCFG to a lattice.FuncCFG. Call edges are
// mapped into blocks by matching instruction offsets.
func convertFuncCFG(dcfg *disasm.FuncCFG, edges []disasm.CallEdge) *lattice.FuncCFG {
	edgeByOffset := make(map[int]disasm.CallEdge, len(edges))
	for _, e := range edges {
		edgeByOffset[e.FromOffset] = e
	}

	lcfg := &lattice.FuncCFG{Name: dcfg.Name}
	for _, db := range dcfg.Blocks {
		lb := &lattice.BasicBlock{
			ID:    db.ID,
			Start: db.Start,
			End:   db.End,
			Term:  db.IsTerm,
		}

		for _, ds := range db.Succs {
			lb.Succs = append(lb.Succs, lattice.Successor{
				BlockID: ds.BlockID,
				Cond:    ds.Cond,
			})
		}

		for idx := db.Start; idx < db.End && idx < len(dcfg.Insts); idx++ {
			if e, ok := edgeByOffset[dcfg.Insts[idx].Offset]; ok {
				callee := e.Target
				if callee == "" {
					callee = fmt.Sprintf("unresolved@%d", e.FromOffset)
				}
				lb.Calls = append(lb.Calls, lattice.CallSite{
					Offset: idx,
					Callee: callee,
				})
			}
		}

		lcfg.Blocks = append(lcfg.Blocks, lb)
	}
	return lcfg
}
