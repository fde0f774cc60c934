package callgraph

import (
	"testing"

	"dexlens/internal/disasm"

	"github.com/zboralski/lattice/render"
)

func TestBuildCFG_DOTOutput(t *testing.T) {
	// if-eqz v0, +4 -> join; else const/4 v1, #0; goto +1 -> join; return v1
	insns := []uint16{
		0x0038, 0x0004, // 0 (2 units): if-eqz v0, +4
		0x0112, // 2 (1 unit): const/4 v1, #0
		0x0128, // 3 (1 unit): goto +1 -> offset 4
		0x010f, // 4 (1 unit): return v1
	}
	insts := disasm.Disassemble(insns)

	funcs := []FuncInfo{
		{Name: "Ltest;->m()V", Insts: insts},
	}

	cfg := BuildCFG(funcs)

	if len(cfg.Funcs) != 1 {
		t.Fatalf("expected 1 function, got %d", len(cfg.Funcs))
	}
	f := cfg.Funcs[0]
	if f.Name != "Ltest;->m()V" {
		t.Errorf("func name = %q", f.Name)
	}
	if len(f.Blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(f.Blocks))
	}
	if len(f.Blocks[0].Succs) != 2 {
		t.Errorf("entry block succs = %+v", f.Blocks[0].Succs)
	}

	dot := render.DOTCFG(cfg, "dexlens CFG example")
	if dot == "" {
		t.Error("expected non-empty DOT output")
	}
}

func TestBuildCallGraph_DOTOutput(t *testing.T) {
	funcs := []FuncInfo{
		{
			Name: "Lmain/Main;->main([Ljava/lang/String;)V",
			CallEdges: []disasm.CallEdge{
				{FromOffset: 4, Kind: "invoke-static", Target: "Lfoo/Foo;->init()V", Resolved: true},
				{FromOffset: 10, Kind: "invoke-static", Target: "Lbar/Bar;->run()V", Resolved: true},
			},
		},
		{
			Name: "Lfoo/Foo;->init()V",
			CallEdges: []disasm.CallEdge{
				{FromOffset: 8, Kind: "invoke-static", Target: "Llog/Logger;->log(Ljava/lang/String;)V", Resolved: false},
			},
		},
		{
			Name: "Lbar/Bar;->run()V",
			CallEdges: []disasm.CallEdge{
				{FromOffset: 4, Kind: "invoke-static", Target: "Llog/Logger;->log(Ljava/lang/String;)V", Resolved: false},
			},
		},
		{
			Name: "Llog/Logger;->log(Ljava/lang/String;)V",
		},
	}

	cg := BuildCallGraph(funcs)

	if len(cg.Nodes) != 4 {
		t.Errorf("expected 4 nodes, got %d", len(cg.Nodes))
	}

	dot := render.DOT(cg, "dexlens call graph example")
	if dot == "" {
		t.Error("expected non-empty DOT output")
	}
}
