package disasm

import (
	"fmt"
	"strings"
)

// RenderText renders a decoded instruction stream as stable text output.
// Each line: <offset>  <hex code units>  <mnemonic operands>  ; <comment>.
// Annotators are checked in order; the first non-empty result wins.
func RenderText(insts []Instruction, annotators ...Annotator) string {
	var b strings.Builder
	for _, in := range insts {
		fmt.Fprintf(&b, "%04x: ", in.Offset)
		for _, u := range in.Raw {
			fmt.Fprintf(&b, "%04x ", u)
		}
		if in.Unknown {
			b.WriteString(" unknown")
		} else {
			b.WriteString(" ")
			b.WriteString(in.Name)
			for i, r := range in.Regs {
				if i == 0 {
					b.WriteString(" v")
				} else {
					b.WriteString(", v")
				}
				fmt.Fprintf(&b, "%d", r)
			}
		}
		for _, ann := range annotators {
			if s := ann(in); s != "" {
				fmt.Fprintf(&b, "  ; %s", s)
				break
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
