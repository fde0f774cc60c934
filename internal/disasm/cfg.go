package disasm

import (
	"fmt"
	"sort"
)

// BasicBlock is a maximal straight-line run of instructions with a single
// entry point.
type BasicBlock struct {
	ID      int
	Start   int    // index into FuncCFG.Insts (inclusive)
	End     int    // index into FuncCFG.Insts (exclusive)
	Succs   []Succ // successor edges
	IsEntry bool
	IsTerm  bool // ends with return/throw, or a branch this repo couldn't resolve
}

// Succ describes a control-flow successor edge.
type Succ struct {
	BlockID int
	Cond    string // "" unconditional, "T"/"F" for if-*, "case:<key>" for switch, "default" for switch fallthrough
}

// FuncCFG is a per-method control-flow graph. Insts holds only the
// executable instruction stream (payload pseudo-instructions are excluded
// from block partitioning — they're reached exclusively via a switch's
// Branch offset, never by sequential flow).
type FuncCFG struct {
	Name   string
	Blocks []BasicBlock
	Insts  []Instruction
}

// BuildCFG constructs a control-flow graph from a method's full decoded
// instruction stream (as returned by Disassemble, payloads included). The
// algorithm:
//  1. Find block leaders: offset 0, branch/switch targets, instructions
//     after a terminator/branch/switch.
//  2. Partition the executable stream into blocks by leader offset.
//  3. Compute successor edges from each block's last instruction.
func BuildCFG(name string, all []Instruction) FuncCFG {
	var exec []Instruction
	payloadByOffset := make(map[int]Instruction)
	for _, in := range all {
		if in.PayloadKind != "" {
			payloadByOffset[in.Offset] = in
			continue
		}
		exec = append(exec, in)
	}
	if len(exec) == 0 {
		return FuncCFG{Name: name, Insts: exec}
	}

	offsetToIdx := make(map[int]int, len(exec))
	for i, in := range exec {
		offsetToIdx[in.Offset] = i
	}

	leaders := map[int]bool{0: true}
	for i, in := range exec {
		bi := ClassifyBranch(in)
		if bi.IsTerm {
			continue
		}
		if !bi.IsGoto && !bi.IsCond && !bi.IsSwitch {
			continue
		}
		if i+1 < len(exec) {
			leaders[i+1] = true
		}
		switch {
		case bi.IsGoto, bi.IsCond:
			if bi.HasTarget {
				if idx, ok := offsetToIdx[bi.Target]; ok {
					leaders[idx] = true
				}
			}
		case bi.IsSwitch:
			if payload, ok := payloadByOffset[in.Offset+in.Branch]; ok {
				for _, rel := range payload.SwitchTargets {
					if idx, ok := offsetToIdx[in.Offset+rel]; ok {
						leaders[idx] = true
					}
				}
			}
		}
	}

	sorted := make([]int, 0, len(leaders))
	for idx := range leaders {
		sorted = append(sorted, idx)
	}
	sort.Ints(sorted)

	blocks := make([]BasicBlock, len(sorted))
	leaderToBlock := make(map[int]int, len(sorted))
	for i, start := range sorted {
		end := len(exec)
		if i+1 < len(sorted) {
			end = sorted[i+1]
		}
		blocks[i] = BasicBlock{ID: i, Start: start, End: end, IsEntry: start == 0}
		leaderToBlock[start] = i
	}

	for i := range blocks {
		blk := &blocks[i]
		if blk.End <= blk.Start {
			continue
		}
		last := exec[blk.End-1]
		bi := ClassifyBranch(last)

		switch {
		case bi.IsTerm:
			blk.IsTerm = true

		case bi.IsGoto:
			if bi.HasTarget {
				if idx, ok := offsetToIdx[bi.Target]; ok {
					if bid, ok := leaderToBlock[idx]; ok {
						blk.Succs = append(blk.Succs, Succ{BlockID: bid})
						continue
					}
				}
			}
			blk.IsTerm = true // target unresolved or outside the method

		case bi.IsCond:
			if bi.HasTarget {
				if idx, ok := offsetToIdx[bi.Target]; ok {
					if bid, ok := leaderToBlock[idx]; ok {
						blk.Succs = append(blk.Succs, Succ{BlockID: bid, Cond: "T"})
					}
				}
			}
			if nextBlk, ok := leaderToBlock[blk.End]; ok {
				blk.Succs = append(blk.Succs, Succ{BlockID: nextBlk, Cond: "F"})
			}

		case bi.IsSwitch:
			if payload, ok := payloadByOffset[last.Offset+last.Branch]; ok {
				for k, rel := range payload.SwitchTargets {
					if idx, ok := offsetToIdx[last.Offset+rel]; ok {
						if bid, ok := leaderToBlock[idx]; ok {
							key := int64(0)
							if k < len(payload.SwitchKeys) {
								key = int64(payload.SwitchKeys[k])
							}
							blk.Succs = append(blk.Succs, Succ{BlockID: bid, Cond: fmt.Sprintf("case:%d", key)})
						}
					}
				}
			}
			if nextBlk, ok := leaderToBlock[blk.End]; ok {
				blk.Succs = append(blk.Succs, Succ{BlockID: nextBlk, Cond: "default"})
			}

		default:
			if nextBlk, ok := leaderToBlock[blk.End]; ok {
				blk.Succs = append(blk.Succs, Succ{BlockID: nextBlk})
			}
		}
	}

	return FuncCFG{Name: name, Blocks: blocks, Insts: exec}
}
