package flow

import "dexlens/internal/model"

// DeadSide names which successor of a conditional can never execute, as
// determined by the guard's operands both being concrete at analysis time.
type DeadSide int

const (
	DeadNone DeadSide = iota
	DeadTaken
	DeadFallthrough
)

func (d DeadSide) String() string {
	switch d {
	case DeadTaken:
		return "taken"
	case DeadFallthrough:
		return "fallthrough"
	default:
		return "none"
	}
}

// Branching records one encountered conditional: its site, both successor
// PCs, which side (if any) is statically dead, and the method it belongs
// to.
type Branching struct {
	Method        *model.Method
	PC            int // branch instruction's code-unit offset
	TakenPC       int
	FallthroughPC int
	Dead          DeadSide
}

// Options carries the flow analyser's termination knobs as a plain value
// type, the same Options{...} convention internal/vm uses.
type Options struct {
	// MaxSteps bounds the total number of worklist pops for one
	// AnalyseBranches call (spec: "each path is bounded by a configurable
	// step budget").
	MaxSteps int
	// WidenAfter is the number of times the same program point may be
	// visited; a path that reaches it again is dropped and not expanded
	// further. No register value is abstracted to Top by this limit.
	WidenAfter int
}

// DefaultOptions returns sane defaults for interactive/CLI use.
func DefaultOptions() Options {
	return Options{MaxSteps: 50000, WidenAfter: 16}
}
