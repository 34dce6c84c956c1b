package vm

import (
	"fmt"
	"strings"
)

// Disassemble returns a human-readable listing of the program.
func (p *Program) Disassemble() string {
	return p.DisassembleWithName("")
}

// DisassembleWithName returns a listing with a name header. Loop bodies
// are indented by nesting depth.
func (p *Program) DisassembleWithName(name string) string {
	var sb strings.Builder

	if name != "" {
		fmt.Fprintf(&sb, "; === %s ===\n", name)
	}
	fmt.Fprintf(&sb, "; tapeworm bytecode v%d\n", ImageVersion)
	fmt.Fprintf(&sb, "; %d instructions\n\n", len(p.code))

	depth := 0
	for addr, in := range p.code {
		if in.Op == OpEndLoop && depth > 0 {
			depth--
		}
		fmt.Fprintf(&sb, "%04d  %s%s\n", addr, strings.Repeat("  ", depth), in)
		if in.Op == OpStartLoop {
			depth++
		}
	}
	return sb.String()
}
