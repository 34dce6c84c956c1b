package ir

import (
	"fmt"
	"strings"
)

func (n IncVal) String() string { return fmt.Sprintf("IncVal(%d)", n.Amount) }
func (n DecVal) String() string { return fmt.Sprintf("DecVal(%d)", n.Amount) }
func (n IncPtr) String() string { return fmt.Sprintf("IncPtr(%d)", n.Amount) }
func (n DecPtr) String() string { return fmt.Sprintf("DecPtr(%d)", n.Amount) }
func (n MulVal) String() string { return fmt.Sprintf("MulVal(%d, %d)", n.Offset, n.Amount) }
func (Clear) String() string    { return "Clear" }
func (Output) String() string   { return "Output" }
func (Input) String() string    { return "Input" }

func (n Loop) String() string {
	return "Loop" + SeqString(n.Body)
}

// SeqString renders a sequence on one line, e.g. "[IncVal(4), Output]".
func SeqString(nodes []Node) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Format renders a tree one node per line, indenting loop bodies by two
// spaces per nesting level.
func Format(nodes []Node) string {
	var sb strings.Builder
	formatSeq(&sb, nodes, 0)
	return sb.String()
}

func formatSeq(sb *strings.Builder, nodes []Node, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, n := range nodes {
		if l, ok := n.(Loop); ok {
			fmt.Fprintf(sb, "%sLoop {\n", indent)
			formatSeq(sb, l.Body, depth+1)
			fmt.Fprintf(sb, "%s}\n", indent)
			continue
		}
		sb.WriteString(indent)
		sb.WriteString(n.String())
		sb.WriteByte('\n')
	}
}
