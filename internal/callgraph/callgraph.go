package callgraph

import (
	"dexlens/internal/disasm"
	"dexlens/internal/model"

	"github.com/zboralski/lattice"
)

// FuncInfo holds the data needed to build call graph and CFG for one method.
type FuncInfo struct {
	Name      string // method FQDN
	Insts     []disasm.Instruction
	CallEdges []disasm.CallEdge
}

// FuncsFromContext disassembles every method with a code body in ctx and
// extracts its call edges, ready for BuildCallGraph/BuildCFG.
func FuncsFromContext(ctx *model.Context) []FuncInfo {
	var funcs []FuncInfo
	for _, cls := range ctx.AllClasses() {
		var df *model.DexFile
		if cls.DexIndex < len(ctx.Dexes) {
			df = ctx.Dexes[cls.DexIndex]
		}
		for _, m := range cls.AllMethods() {
			if m.Code == nil {
				continue
			}
			insts := disasm.Disassemble(m.Code.Insns)
			if df != nil {
				disasm.Resolve(insts, df, ctx)
			}
			fqdn := m.FQDN()
			funcs = append(funcs, FuncInfo{
				Name:      fqdn,
				Insts:     insts,
				CallEdges: disasm.ExtractCallEdges(fqdn, insts),
			})
		}
	}
	return funcs
}

// BuildCallGraph constructs a lattice.Graph from disassembled methods. Each
// method becomes a node; each resolved invoke-* site becomes an edge.
// Call edges with an empty Target are skipped. An edge whose Target names a
// method declared outside the analyzed dex set still becomes an edge — the
// graph includes
// the boundary to runtime/library code the way the teacher's BLR-via
// fallback does, since knowing a method calls into unresolved territory is
// itself useful.
func BuildCallGraph(funcs []FuncInfo) *lattice.Graph {
	g := &lattice.Graph{}
	for _, f := range funcs {
		g.Nodes = append(g.Nodes, f.Name)
		for _, e := range f.CallEdges {
			if e.Target == "" {
				continue
			}
			g.Edges = append(g.Edges, lattice.Edge{
				Caller: f.Name,
				Callee: e.Target,
			})
		}
	}
	g.Dedup()
	return g
}
