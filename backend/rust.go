package backend

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chazu/tapeworm/ir"
)

const rustRuntime = `use std::io::Write;

macro_rules! inc_val_by {
    ($memory:expr, $index:expr, $amount:expr) => {{
        $memory[$index] = $memory[$index].wrapping_add($amount);
    }};
}

macro_rules! dec_val_by {
    ($memory:expr, $index:expr, $amount:expr) => {{
        $memory[$index] = $memory[$index].wrapping_sub($amount);
    }};
}

macro_rules! mul_val_by {
    ($memory:expr, $index:expr, $offset:expr, $amount:expr) => {{
        let target = $index.checked_add_signed($offset).unwrap();
        $memory[target] = $memory[target].wrapping_add($memory[$index].wrapping_mul($amount));
    }};
}

macro_rules! inc_ptr_by {
    ($pointer:expr, $amount:expr) => {{
        $pointer += $amount;
    }};
}

macro_rules! dec_ptr_by {
    ($pointer:expr, $amount:expr) => {{
        $pointer -= $amount;
    }};
}

macro_rules! clear {
    ($memory:expr, $index:expr) => {{
        $memory[$index] = 0;
    }};
}

macro_rules! r#loop {
    ($memory:expr, $index:expr $(, $expression:expr)* $(,)?) => {{
        while $memory[$index] != 0 {
            $(
                $expression;
            )*
        }
    }};
}

macro_rules! output {
    ($out:expr, $memory:expr, $pointer:expr) => {{
        $out.write_all(&[$memory[$pointer]]).unwrap();
    }};
}

fn main() {
    let stdout = std::io::stdout();
    let mut out = std::io::BufWriter::new(stdout.lock());
    let mut pointer: usize = 0;
    let mut memory = [0u8; <TAPE_SIZE>];

<CODE>
    out.flush().unwrap();
}
`

// Rust renders a Rust program built on the macro runtime above.
type Rust struct {
	TapeSize int
}

func (*Rust) Name() string { return "rust" }
func (*Rust) Ext() string  { return ".rs" }

func (b *Rust) Render(nodes []ir.Node) (string, error) {
	if err := checkSupported(nodes); err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, n := range nodes {
		sb.WriteString("\t")
		sb.WriteString(rustExpr(1, n))
		sb.WriteString(";\n")
	}
	return strings.NewReplacer(
		"<TAPE_SIZE>", strconv.Itoa(tapeSizeOr(b.TapeSize)),
		"<CODE>", sb.String(),
	).Replace(rustRuntime), nil
}

// rustExpr renders one node. Nested loop bodies are comma-separated macro
// arguments, one per line.
func rustExpr(depth int, n ir.Node) string {
	switch x := n.(type) {
	case ir.IncVal:
		return fmt.Sprintf("inc_val_by!(memory, pointer, %d)", x.Amount)
	case ir.DecVal:
		return fmt.Sprintf("dec_val_by!(memory, pointer, %d)", x.Amount)
	case ir.IncPtr:
		return fmt.Sprintf("inc_ptr_by!(pointer, %d)", x.Amount)
	case ir.DecPtr:
		return fmt.Sprintf("dec_ptr_by!(pointer, %d)", x.Amount)
	case ir.MulVal:
		return fmt.Sprintf("mul_val_by!(memory, pointer, %d, %d)", x.Offset, x.Amount)
	case ir.Clear:
		return "clear!(memory, pointer)"
	case ir.Output:
		return "output!(out, memory, pointer)"
	case ir.Loop:
		var sb strings.Builder
		sb.WriteString("r#loop!(memory, pointer")
		inner := strings.Repeat("\t", depth+1)
		for _, child := range x.Body {
			sb.WriteString(",\n")
			sb.WriteString(inner)
			sb.WriteString(rustExpr(depth+1, child))
		}
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat("\t", depth))
		sb.WriteString(")")
		return sb.String()
	}
	panic(fmt.Sprintf("backend: cannot render %T", n))
}
