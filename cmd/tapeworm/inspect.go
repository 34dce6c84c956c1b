package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/chazu/tapeworm/ir"
)

// irCommand handles `tapeworm ir`.
func irCommand(args []string, stdout io.Writer) error {
	var o options
	fs := newFlagSet("ir", &o)
	hash := fs.Bool("hash", false, "Print the tree hash after the tree")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := oneFile(fs)
	if err != nil {
		return err
	}
	if err := o.setup(); err != nil {
		return err
	}

	tree, err := o.compileFile(path)
	if err != nil {
		return err
	}
	fmt.Fprint(stdout, ir.Format(tree))
	if *hash {
		fmt.Fprintf(stdout, "; %d nodes, hash %x\n", ir.Count(tree), ir.Hash(tree))
	}
	return nil
}

// disasmCommand handles `tapeworm disasm`. It accepts source files and
// program images.
func disasmCommand(args []string, stdout io.Writer) error {
	var o options
	fs := newFlagSet("disasm", &o)
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := oneFile(fs)
	if err != nil {
		return err
	}
	if err := o.setup(); err != nil {
		return err
	}

	prog, err := o.loadProgram(path)
	if err != nil {
		return err
	}
	fmt.Fprint(stdout, prog.DisassembleWithName(filepath.Base(path)))
	return nil
}
