// Package optimizer rewrites expression trees into cheaper trees with the
// same observable behavior.
//
// Three passes run in a fixed order:
//
//   - Coalesce merges runs of value and pointer changes and drops the ones
//     that cancel out.
//   - Fuse replaces pointer-balanced copy/scale loops with MulVal nodes
//     followed by a Clear.
//   - ZeroLoop replaces the loops [-] and [+] with Clear.
//
// Every pass is a pure function: it allocates a new tree and never edits
// the one it was given. Passes are total over well-formed trees; an unknown
// node type is a programming error and panics.
package optimizer

import (
	"fmt"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/chazu/tapeworm/ir"
)

var log = commonlog.GetLogger("tapeworm.optimizer")

// Pass is a named tree-to-tree rewrite.
type Pass struct {
	Name  string
	Apply func([]ir.Node) []ir.Node
}

var (
	CoalescePass = Pass{Name: "coalesce", Apply: Coalesce}
	FusePass     = Pass{Name: "fuse", Apply: Fuse}
	ZeroLoopPass = Pass{Name: "zero", Apply: ZeroLoop}
)

// DefaultPasses returns the standard pipeline order.
func DefaultPasses() []Pass {
	return []Pass{CoalescePass, FusePass, ZeroLoopPass}
}

var passesByName = map[string]Pass{
	CoalescePass.Name: CoalescePass,
	FusePass.Name:     FusePass,
	ZeroLoopPass.Name: ZeroLoopPass,
}

// ParsePasses parses a comma-separated pass list such as "coalesce,zero".
// The words "all" and "default" select DefaultPasses; "none" and the empty
// string select no passes. Passes run in the order given.
func ParsePasses(list string) ([]Pass, error) {
	list = strings.TrimSpace(list)
	switch list {
	case "", "none":
		return nil, nil
	case "all", "default":
		return DefaultPasses(), nil
	}

	var passes []Pass
	for _, name := range strings.Split(list, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		p, ok := passesByName[name]
		if !ok {
			return nil, fmt.Errorf("unknown pass %q (want one of %s)", name, strings.Join(PassNames(), ", "))
		}
		passes = append(passes, p)
	}
	return passes, nil
}

// PassNames lists the known pass names in default pipeline order.
func PassNames() []string {
	names := make([]string, 0, len(passesByName))
	for _, p := range DefaultPasses() {
		names = append(names, p.Name)
	}
	return names
}

// ---------------------------------------------------------------------------
// Pipeline
// ---------------------------------------------------------------------------

// Pipeline applies a fixed sequence of passes.
type Pipeline struct {
	passes []Pass
}

// New creates a pipeline running passes in order. With no arguments the
// pipeline is the identity transformation.
func New(passes ...Pass) *Pipeline {
	return &Pipeline{passes: append([]Pass(nil), passes...)}
}

// Passes returns the pipeline's passes in execution order.
func (p *Pipeline) Passes() []Pass {
	return append([]Pass(nil), p.passes...)
}

// Names returns the pass names joined with commas, e.g. "coalesce,fuse,zero".
func (p *Pipeline) Names() string {
	names := make([]string, len(p.passes))
	for i, pass := range p.passes {
		names[i] = pass.Name
	}
	return strings.Join(names, ",")
}

// PassStat records the tree size around a single pass.
type PassStat struct {
	Name   string
	Before int
	After  int
}

// Stats collects one PassStat per pass, in execution order.
type Stats []PassStat

// Removed returns the total number of nodes eliminated.
func (s Stats) Removed() int {
	if len(s) == 0 {
		return 0
	}
	return s[0].Before - s[len(s)-1].After
}

func (s Stats) String() string {
	if len(s) == 0 {
		return "no passes"
	}
	parts := make([]string, len(s))
	for i, st := range s {
		parts[i] = fmt.Sprintf("%s %d->%d", st.Name, st.Before, st.After)
	}
	return strings.Join(parts, ", ")
}

// Run applies every pass and reports node counts before and after each one.
func (p *Pipeline) Run(nodes []ir.Node) ([]ir.Node, Stats) {
	stats := make(Stats, 0, len(p.passes))
	tree := nodes
	if len(p.passes) == 0 {
		tree = ir.Clone(nodes)
	}
	for _, pass := range p.passes {
		before := ir.Count(tree)
		tree = pass.Apply(tree)
		after := ir.Count(tree)
		stats = append(stats, PassStat{Name: pass.Name, Before: before, After: after})
		log.Debugf("pass %s: %d -> %d nodes", pass.Name, before, after)
	}
	return tree, stats
}

// Optimize applies the pipeline and discards the statistics.
func (p *Pipeline) Optimize(nodes []ir.Node) []ir.Node {
	tree, _ := p.Run(nodes)
	return tree
}

var defaultPipeline = New(DefaultPasses()...)

// Optimize runs Coalesce, Fuse and ZeroLoop in that order.
func Optimize(nodes []ir.Node) []ir.Node {
	return defaultPipeline.Optimize(nodes)
}
