package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/chazu/tapeworm/cache"
	"github.com/chazu/tapeworm/compiler"
	"github.com/chazu/tapeworm/ir"
	"github.com/chazu/tapeworm/manifest"
	"github.com/chazu/tapeworm/optimizer"
	"github.com/chazu/tapeworm/vm"
)

var log = commonlog.GetLogger("tapeworm")

// baseVerbosity is the commonlog verbosity for notice level.
const baseVerbosity = 3

// verbosity counts repeated -v flags.
type verbosity int

func (v *verbosity) String() string   { return strconv.Itoa(int(*v)) }
func (v *verbosity) IsBoolFlag() bool { return true }

func (v *verbosity) Set(s string) error {
	on, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	if on {
		*v++
	}
	return nil
}

// options holds the flags shared by every command, merged with the
// project manifest once parsed.
type options struct {
	passes   string
	noOpt    bool
	tapeSize int
	steps    uint64
	verbose  verbosity
	noCache  bool

	// manifest is the project manifest, or the defaults when no
	// tapeworm.toml was found.
	manifest *manifest.Manifest
	// project reports whether a tapeworm.toml was found.
	project bool
}

func newFlagSet(name string, o *options) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&o.passes, "passes", "", "Comma-separated optimization passes (coalesce, fuse, zero, all, none)")
	fs.BoolVar(&o.noOpt, "O0", false, "Disable optimization")
	fs.IntVar(&o.tapeSize, "tape", 0, "Tape size in cells (default from manifest or 30000)")
	fs.Uint64Var(&o.steps, "steps", 0, "Stop after this many instructions (0 for no limit)")
	fs.Var(&o.verbose, "v", "Verbose output (repeat for debug)")
	fs.BoolVar(&o.noCache, "no-cache", false, "Do not read or write the compile cache")
	return fs
}

// setup loads the manifest, fills unset flags from it and configures
// logging.
func (o *options) setup() error {
	m, err := manifest.FindAndLoad(".")
	if err != nil {
		return err
	}
	o.project = m != nil
	if m == nil {
		m = manifest.Default()
	}
	o.manifest = m

	if o.passes == "" {
		o.passes = m.Passes()
	}
	if o.noOpt {
		o.passes = "none"
	}
	if o.tapeSize == 0 {
		o.tapeSize = m.VM.TapeSize
	}
	if o.steps == 0 {
		o.steps = m.VM.StepLimit
	}
	if o.tapeSize < 1 {
		return fmt.Errorf("tape size must be positive, got %d", o.tapeSize)
	}

	commonlog.Configure(baseVerbosity+int(o.verbose)+m.Log.Verbosity, nil)
	if o.project {
		log.Infof("using manifest %s", filepath.Join(m.Dir, manifest.FileName))
	}
	return nil
}

func (o *options) pipeline() (*optimizer.Pipeline, error) {
	passes, err := optimizer.ParsePasses(o.passes)
	if err != nil {
		return nil, err
	}
	return optimizer.New(passes...), nil
}

func (o *options) machineOptions() []vm.Option {
	opts := []vm.Option{vm.WithTapeSize(o.tapeSize)}
	if o.steps > 0 {
		opts = append(opts, vm.WithStepLimit(o.steps))
	}
	return opts
}

// openCache returns the project cache, or nil when caching is off. The
// cache is only used inside a project so that stray runs do not leave
// databases behind.
func (o *options) openCache() (*cache.Store, error) {
	if o.noCache || !o.project || !o.manifest.CacheEnabled() {
		return nil, nil
	}
	return cache.Open(o.manifest.CachePath())
}

// compileFile reads and compiles a source file with the configured
// pipeline.
func (o *options) compileFile(path string) ([]ir.Node, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	pipeline, err := o.pipeline()
	if err != nil {
		return nil, err
	}
	var stats optimizer.Stats
	tree, err := compiler.Compile(string(src), compiler.WithPipeline(pipeline), compiler.WithStats(&stats))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(stats) > 0 {
		log.Infof("%s: %s", path, stats)
	}
	return tree, nil
}

// loadProgram returns the bytecode for path. Image files are decoded;
// anything else is compiled, through the cache when one is open.
func (o *options) loadProgram(path string) (*vm.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if vm.IsImage(data) {
		p, err := vm.DecodeImage(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return p, nil
	}
	if strings.EqualFold(filepath.Ext(path), vm.ImageExt) {
		return nil, fmt.Errorf("%s: not a program image", path)
	}

	pipeline, err := o.pipeline()
	if err != nil {
		return nil, err
	}
	store, err := o.openCache()
	if err != nil {
		log.Warningf("cache disabled: %s", err)
		store = nil
	}
	if store != nil {
		defer store.Close()
	}
	p, err := store.Program(string(data), pipeline)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// oneFile returns the single file argument of a command.
func oneFile(fs *flag.FlagSet) (string, error) {
	switch fs.NArg() {
	case 1:
		return fs.Arg(0), nil
	case 0:
		return "", errors.New("no input file")
	}
	return "", fmt.Errorf("expected one input file, got %d", fs.NArg())
}
