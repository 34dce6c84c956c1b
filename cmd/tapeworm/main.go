// Command tapeworm compiles, optimizes and runs tape programs.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	_ "github.com/tliron/commonlog/simple"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: tapeworm <command> [options] [files...]\n\n")
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  run       Compile (or load a %s image) and execute a program\n", ".twc")
	fmt.Fprintf(os.Stderr, "  build     Translate programs with a backend (c, go, rust, image)\n")
	fmt.Fprintf(os.Stderr, "  ir        Print the optimized IR tree\n")
	fmt.Fprintf(os.Stderr, "  disasm    Print the bytecode listing\n")
	fmt.Fprintf(os.Stderr, "  serve     Start the compile/run service\n")
	fmt.Fprintf(os.Stderr, "  lsp       Start the language server on stdio\n")
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  tapeworm run hello.bf                  # Optimize and run\n")
	fmt.Fprintf(os.Stderr, "  tapeworm run -O0 -steps 1000000 x.bf   # Run unoptimized with a step limit\n")
	fmt.Fprintf(os.Stderr, "  tapeworm build -backend c -o out *.bf  # Write C sources to out/\n")
	fmt.Fprintf(os.Stderr, "  tapeworm build -backend image x.bf     # Write x.twc\n")
	fmt.Fprintf(os.Stderr, "  tapeworm ir -passes coalesce x.bf      # Show IR after coalescing only\n")
	fmt.Fprintf(os.Stderr, "  tapeworm serve -addr :4600             # Serve Compile and Run\n")
	fmt.Fprintf(os.Stderr, "\nRun 'tapeworm <command> -h' for command options.\n")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd, args := os.Args[1], os.Args[2:]
	var err error
	switch cmd {
	case "run":
		err = runCommand(args, os.Stdout)
	case "build":
		err = buildCommand(args, os.Stdout)
	case "ir":
		err = irCommand(args, os.Stdout)
	case "disasm":
		err = disasmCommand(args, os.Stdout)
	case "serve":
		err = serveCommand(args)
	case "lsp":
		err = lspCommand(args)
	case "help", "-h", "--help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", cmd)
		usage()
		os.Exit(2)
	}

	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
