package backend

import (
	"bytes"
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/chazu/tapeworm/ir"
)

// Go renders a standalone Go program with jennifer.
type Go struct {
	TapeSize int
}

func (*Go) Name() string { return "go" }
func (*Go) Ext() string  { return ".go" }

func (b *Go) Render(nodes []ir.Node) (string, error) {
	if err := checkSupported(nodes); err != nil {
		return "", err
	}

	f := jen.NewFile("main")
	f.HeaderComment("Code generated by tapeworm. DO NOT EDIT.")

	f.Var().Defs(
		jen.Id("tape").Index(jen.Lit(tapeSizeOr(b.TapeSize))).Byte(),
		jen.Id("p").Int(),
	)

	body := []jen.Code{
		jen.Id("out").Op(":=").Qual("bufio", "NewWriter").Call(jen.Qual("os", "Stdout")),
		jen.Defer().Id("out").Dot("Flush").Call(),
		jen.Line(),
	}
	body = append(body, goStatements(nodes)...)
	f.Func().Id("main").Params().Block(body...)

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return "", fmt.Errorf("render go: %w", err)
	}
	return buf.String(), nil
}

func cell() *jen.Statement {
	return jen.Id("tape").Index(jen.Id("p"))
}

func goStatements(nodes []ir.Node) []jen.Code {
	stmts := make([]jen.Code, 0, len(nodes))
	for _, n := range nodes {
		switch x := n.(type) {
		case ir.IncVal:
			stmts = append(stmts, cell().Op("+=").Lit(int(x.Amount)))
		case ir.DecVal:
			stmts = append(stmts, cell().Op("-=").Lit(int(x.Amount)))
		case ir.IncPtr:
			stmts = append(stmts, jen.Id("p").Op("+=").Lit(int(x.Amount)))
		case ir.DecPtr:
			stmts = append(stmts, jen.Id("p").Op("-=").Lit(int(x.Amount)))
		case ir.MulVal:
			target := jen.Id("p").Op("+").Lit(x.Offset)
			if x.Offset < 0 {
				target = jen.Id("p").Op("-").Lit(-x.Offset)
			}
			stmts = append(stmts, jen.Id("tape").Index(target).Op("+=").Add(cell()).Op("*").Lit(int(x.Amount)))
		case ir.Clear:
			stmts = append(stmts, cell().Op("=").Lit(0))
		case ir.Output:
			stmts = append(stmts, jen.Id("out").Dot("WriteByte").Call(cell()))
		case ir.Loop:
			stmts = append(stmts, jen.For(cell().Op("!=").Lit(0)).Block(goStatements(x.Body)...))
		default:
			panic(fmt.Sprintf("backend: cannot render %T", n))
		}
	}
	return stmts
}
