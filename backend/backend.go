// Package backend renders optimized trees as source text for other
// languages.
//
// The C and Rust backends follow the same scheme: every node kind maps to
// a call of a small runtime macro, and the rendered statements are spliced
// into a fixed wrapper at its <CODE> placeholder. The Go backend builds its
// output with jennifer.
package backend

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/chazu/tapeworm/ir"
)

// DefaultTapeSize matches the VM's default tape length.
const DefaultTapeSize = 30000

// ErrUnsupported is returned when a tree contains Input.
var ErrUnsupported = errors.New("input is not supported")

// Backend renders a tree as a complete program in another language.
type Backend interface {
	// Name is the registry key, e.g. "c".
	Name() string
	// Ext is the output file extension, including the dot.
	Ext() string
	Render(nodes []ir.Node) (string, error)
}

type factory func(tapeSize int) Backend

var registry = map[string]factory{
	"c":    func(n int) Backend { return &C{TapeSize: n} },
	"rust": func(n int) Backend { return &Rust{TapeSize: n} },
	"go":   func(n int) Backend { return &Go{TapeSize: n} },
}

// New returns the named backend configured for a tape of tapeSize cells.
// A tapeSize below 1 selects DefaultTapeSize.
func New(name string, tapeSize int) (Backend, error) {
	f, ok := registry[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown backend %q (want one of %s)", name, strings.Join(Names(), ", "))
	}
	return f(tapeSize), nil
}

// Lookup returns the named backend with the default tape size.
func Lookup(name string) (Backend, error) {
	return New(name, DefaultTapeSize)
}

// Names lists the registered backends in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func tapeSizeOr(n int) int {
	if n < 1 {
		return DefaultTapeSize
	}
	return n
}

// checkSupported returns ErrUnsupported if Input appears anywhere in nodes.
func checkSupported(nodes []ir.Node) error {
	for _, n := range nodes {
		switch x := n.(type) {
		case ir.Input:
			return ErrUnsupported
		case ir.Loop:
			if err := checkSupported(x.Body); err != nil {
				return err
			}
		}
	}
	return nil
}
