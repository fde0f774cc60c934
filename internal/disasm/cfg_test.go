package disasm

import "testing"

func TestBuildCFGIfElseHasTwoPathsToJoin(t *testing.T) {
	insns := []uint16{
		0x0038, 0x0004, // 0 (2 units): if-eqz v0, +4 -> target offset 4
		0x0112,         // 2 (1 unit): const/4 v1, #0
		0x0128,         // 3 (1 unit): goto +1 -> target offset 4
		0x010f,         // 4 (1 unit): return v1
	}
	decoded := Disassemble(insns)
	cfg := BuildCFG("Ltest;->m()V", decoded)

	if len(cfg.Blocks) != 3 {
		t.Fatalf("got %d blocks, want 3: %+v", len(cfg.Blocks), cfg.Blocks)
	}
	// Block 0: if-eqz, two successors (T to block containing offset 4, F fallthrough).
	b0 := cfg.Blocks[0]
	if len(b0.Succs) != 2 {
		t.Fatalf("block0 succs = %+v, want 2", b0.Succs)
	}
	// The join block (offset 4, "return v1") should have no outgoing successors and be terminal.
	var joinFound bool
	for _, b := range cfg.Blocks {
		if b.Start < len(cfg.Insts) && cfg.Insts[b.Start].Offset == 4 {
			joinFound = true
			if !b.IsTerm {
				t.Fatalf("join block should be terminal (return): %+v", b)
			}
		}
	}
	if !joinFound {
		t.Fatal("expected a block starting at offset 4")
	}
}

func TestBuildCFGEmptyInsns(t *testing.T) {
	cfg := BuildCFG("Ltest;->m()V", nil)
	if len(cfg.Blocks) != 0 {
		t.Fatalf("expected no blocks, got %+v", cfg.Blocks)
	}
}

func TestBuildCFGPackedSwitch(t *testing.T) {
	// 0 (3 units): packed-switch v0, +5 (payload at offset 5)
	// 3 (1 unit):  nop (switch case target)
	// 4 (1 unit):  return-void
	// 5 (payload, 6 units): packed-switch-payload size=1 key=0 target=+3 (-> offset 3, the nop)
	insns := []uint16{
		0x002b, 0x0005, 0x0000, // 0: packed-switch v0, +5
		0x0000, // 3: nop
		0x000e, // 4: return-void
		// payload at offset 5
		0x0100, 0x0001, // ident, size=1
		0x0000, 0x0000, // first_key = 0
		0x0003, 0x0000, // target0 = +3
	}
	decoded := Disassemble(insns)
	cfg := BuildCFG("Ltest;->s()V", decoded)
	if len(cfg.Blocks) == 0 {
		t.Fatal("expected at least one block")
	}
	// First block ends with the packed-switch; it should have a "default" successor.
	b0 := cfg.Blocks[0]
	foundDefault := false
	for _, s := range b0.Succs {
		if s.Cond == "default" {
			foundDefault = true
		}
	}
	if !foundDefault {
		t.Fatalf("expected a default successor on the switch block: %+v", b0.Succs)
	}
}
