package backend

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chazu/tapeworm/ir"
)

const cRuntime = `#include <stdio.h>

typedef unsigned char byte;
typedef unsigned long long usize;

#define MEMORY memory
#define MEMORY_LENGTH <TAPE_SIZE>
#define MEMORY_DEFINE \
    static byte MEMORY[MEMORY_LENGTH] = { 0 }

#define POINTER pointer
#define POINTER_DEFINE \
    usize POINTER = 0

#define INC_VAL_BY(amount) \
    MEMORY[POINTER] += (amount)

#define DEC_VAL_BY(amount) \
    MEMORY[POINTER] -= (amount)

#define INC_PTR_BY(amount) \
    POINTER += (amount)

#define DEC_PTR_BY(amount) \
    POINTER -= (amount)

#define CLEAR \
    MEMORY[POINTER] = 0

#define MUL_VAL_BY(offset, amount) \
    MEMORY[POINTER + (offset)] += (byte)(MEMORY[POINTER] * (amount))

#define LOOP(...)                 \
    while (MEMORY[POINTER] != 0) { \
        __VA_ARGS__                \
    }

#define OUTPUT \
    putchar(MEMORY[POINTER])

int main(void) {
    POINTER_DEFINE;
    MEMORY_DEFINE;

<CODE>
    return 0;
}
`

// C renders a C99 program built on the macro runtime above.
type C struct {
	TapeSize int
}

func (*C) Name() string { return "c" }
func (*C) Ext() string  { return ".c" }

func (b *C) Render(nodes []ir.Node) (string, error) {
	if err := checkSupported(nodes); err != nil {
		return "", err
	}
	var sb strings.Builder
	renderC(&sb, 1, nodes)
	return strings.NewReplacer(
		"<TAPE_SIZE>", strconv.Itoa(tapeSizeOr(b.TapeSize)),
		"<CODE>", sb.String(),
	).Replace(cRuntime), nil
}

func renderC(sb *strings.Builder, depth int, nodes []ir.Node) {
	indent := strings.Repeat("\t", depth)
	for _, n := range nodes {
		sb.WriteString(indent)
		switch x := n.(type) {
		case ir.IncVal:
			fmt.Fprintf(sb, "INC_VAL_BY(%d)", x.Amount)
		case ir.DecVal:
			fmt.Fprintf(sb, "DEC_VAL_BY(%d)", x.Amount)
		case ir.IncPtr:
			fmt.Fprintf(sb, "INC_PTR_BY(%d)", x.Amount)
		case ir.DecPtr:
			fmt.Fprintf(sb, "DEC_PTR_BY(%d)", x.Amount)
		case ir.MulVal:
			fmt.Fprintf(sb, "MUL_VAL_BY(%d, %d)", x.Offset, x.Amount)
		case ir.Clear:
			sb.WriteString("CLEAR")
		case ir.Output:
			sb.WriteString("OUTPUT")
		case ir.Loop:
			sb.WriteString("LOOP(\n")
			renderC(sb, depth+1, x.Body)
			sb.WriteString(indent)
			sb.WriteString(")")
		default:
			panic(fmt.Sprintf("backend: cannot render %T", n))
		}
		sb.WriteString(";\n")
	}
}
