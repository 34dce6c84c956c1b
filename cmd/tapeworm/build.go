package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/tapeworm/backend"
	"github.com/chazu/tapeworm/ir"
	"github.com/chazu/tapeworm/vm"
)

// imageBackend is the build target that writes bytecode images instead of
// source text.
const imageBackend = "image"

// buildCommand handles `tapeworm build`. Without file arguments it builds
// every source file listed by the manifest.
func buildCommand(args []string, stdout io.Writer) error {
	var o options
	fs := newFlagSet("build", &o)
	name := fs.String("backend", "", "Output backend: "+strings.Join(append(backend.Names(), imageBackend), ", "))
	outDir := fs.String("o", "", "Output directory (default from manifest, or the current directory)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := o.setup(); err != nil {
		return err
	}

	if *name == "" {
		*name = o.manifest.Compile.Backend
	}
	if *outDir == "" {
		*outDir = "."
		if o.project {
			*outDir = o.manifest.OutputDir()
		}
	}

	files := fs.Args()
	if len(files) == 0 {
		if !o.project {
			return errors.New("no input files and no tapeworm.toml found")
		}
		var err error
		if files, err = o.manifest.SourceFiles(); err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("no source files in %s", strings.Join(o.manifest.Source.Dirs, ", "))
		}
	}

	emit, ext, err := emitter(*name, o.tapeSize)
	if err != nil {
		return err
	}
	outs, err := outputPaths(files, *outDir, ext)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return err
	}

	for i, file := range files {
		tree, err := o.compileFile(file)
		if err != nil {
			return err
		}
		data, err := emit(tree)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		out := outs[i]
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return err
		}
		log.Noticef("wrote %s", out)
		fmt.Fprintln(stdout, out)
	}
	return nil
}

// outputPaths maps each source file to its output file in outDir. Two
// sources with the same base name would overwrite each other, so that is
// an error.
func outputPaths(files []string, outDir, ext string) ([]string, error) {
	outs := make([]string, len(files))
	seen := make(map[string]string, len(files))
	for i, file := range files {
		base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		out := filepath.Join(outDir, base+ext)
		if prev, ok := seen[out]; ok {
			return nil, fmt.Errorf("%s and %s would both be written to %s", prev, file, out)
		}
		seen[out] = file
		outs[i] = out
	}
	return outs, nil
}

// emitter returns the rendering function and file extension for a build
// target.
func emitter(name string, tapeSize int) (func([]ir.Node) ([]byte, error), string, error) {
	if strings.EqualFold(name, imageBackend) {
		return func(tree []ir.Node) ([]byte, error) {
			return vm.EncodeImage(vm.Lower(tree))
		}, vm.ImageExt, nil
	}
	b, err := backend.New(name, tapeSize)
	if err != nil {
		return nil, "", err
	}
	return func(tree []ir.Node) ([]byte, error) {
		text, err := b.Render(tree)
		return []byte(text), err
	}, b.Ext(), nil
}
