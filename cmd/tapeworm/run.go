package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/chazu/tapeworm/server"
	"github.com/chazu/tapeworm/vm"
)

// outputWriter wraps w in a buffer unless it is a terminal, where each
// byte should appear as soon as the program writes it.
func outputWriter(w io.Writer) (io.Writer, func() error) {
	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return w, func() error { return nil }
	}
	bw := bufio.NewWriter(w)
	return bw, bw.Flush
}

// runCommand handles `tapeworm run`.
func runCommand(args []string, stdout io.Writer) error {
	var o options
	fs := newFlagSet("run", &o)
	trace := fs.Bool("trace", false, "Trace each executed instruction to stderr")
	remote := fs.String("remote", "", "Run on a tapeworm server at this URL instead of locally")
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

	if *remote != "" {
		return runRemote(*remote, path, &o, stdout)
	}

	prog, err := o.loadProgram(path)
	if err != nil {
		return err
	}

	w, flush := outputWriter(stdout)
	opts := append(o.machineOptions(), vm.WithOutput(w))
	if *trace {
		opts = append(opts, vm.WithTrace(os.Stderr))
	}
	m := vm.NewMachine(prog, opts...)
	runErr := m.Run()
	if err := flush(); err != nil && runErr == nil {
		runErr = err
	}
	log.Infof("%s: %d steps, pointer %d", path, m.Steps(), m.Pointer())
	return runErr
}

func runRemote(url, path string, o *options, stdout io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	req := &server.RunRequest{
		Passes:    o.passes,
		TapeSize:  o.tapeSize,
		StepLimit: o.steps,
	}
	if vm.IsImage(data) {
		req.Image = data
	} else {
		req.Source = string(data)
	}

	client := server.NewClient(http.DefaultClient, url)
	resp, err := client.Run(context.Background(), req)
	if err != nil {
		return err
	}
	log.Infof("run %s: %d steps, pointer %d", resp.RunID, resp.Steps, resp.Pointer)
	if _, err := stdout.Write(resp.Output); err != nil {
		return err
	}
	if resp.Fault != "" {
		return fmt.Errorf("%s fault: %s", resp.FaultKind, resp.Fault)
	}
	return nil
}
