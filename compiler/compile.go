package compiler

import (
	"github.com/tliron/commonlog"

	"github.com/chazu/tapeworm/ir"
	"github.com/chazu/tapeworm/optimizer"
)

var log = commonlog.GetLogger("tapeworm.compiler")

// Option configures Compile.
type Option func(*options)

type options struct {
	pipeline *optimizer.Pipeline
	stats    *optimizer.Stats
}

// WithPasses replaces the default pass list.
func WithPasses(passes ...optimizer.Pass) Option {
	return func(o *options) { o.pipeline = optimizer.New(passes...) }
}

// WithPipeline uses an already configured pipeline.
func WithPipeline(p *optimizer.Pipeline) Option {
	return func(o *options) { o.pipeline = p }
}

// WithoutOptimization returns the tree exactly as parsed.
func WithoutOptimization() Option {
	return func(o *options) { o.pipeline = optimizer.New() }
}

// WithStats stores the per-pass statistics of the compilation in dst.
func WithStats(dst *optimizer.Stats) Option {
	return func(o *options) { o.stats = dst }
}

// Compile tokenizes, parses and optimizes src. Without options the default
// pipeline (coalesce, fuse, zero) is applied.
func Compile(src string, opts ...Option) ([]ir.Node, error) {
	o := options{pipeline: optimizer.New(optimizer.DefaultPasses()...)}
	for _, opt := range opts {
		opt(&o)
	}

	tree, err := Parse(src)
	if err != nil {
		return nil, err
	}

	optimized, stats := o.pipeline.Run(tree)
	if o.stats != nil {
		*o.stats = stats
	}
	log.Debugf("compiled %d bytes of source: %d nodes (%s)", len(src), ir.Count(optimized), stats)
	return optimized, nil
}
