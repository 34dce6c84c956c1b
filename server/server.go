package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/tliron/commonlog"

	"github.com/chazu/tapeworm/backend"
	"github.com/chazu/tapeworm/cache"
	"github.com/chazu/tapeworm/compiler"
	"github.com/chazu/tapeworm/ir"
	"github.com/chazu/tapeworm/optimizer"
	"github.com/chazu/tapeworm/vm"
)

var log = commonlog.GetLogger("tapeworm.server")

// DefaultStepLimit bounds each Run request unless overridden.
const DefaultStepLimit = 10_000_000

// MaxTapeSize is the largest tape a Run request may ask for.
const MaxTapeSize = 1 << 24

// cancelCheckInterval is how many steps a run takes between context checks.
const cancelCheckInterval = 1 << 16

// Server serves the Compile and Run procedures over Connect with a CBOR
// codec.
type Server struct {
	cfg    serverConfig
	worker *Worker
	mux    *http.ServeMux
}

// ServerOption configures a Server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	stepLimit uint64
	tapeSize  int
	workers   int
	store     *cache.Store
}

// WithStepLimit caps the number of instructions a Run request may execute.
// Requests may ask for less, never more. Zero removes the cap.
func WithStepLimit(n uint64) ServerOption {
	return func(c *serverConfig) { c.stepLimit = n }
}

// WithTapeSize sets the tape size used when a request does not name one.
func WithTapeSize(n int) ServerOption {
	return func(c *serverConfig) { c.tapeSize = n }
}

// WithWorkers sets how many programs may run at once.
func WithWorkers(n int) ServerOption {
	return func(c *serverConfig) { c.workers = n }
}

// WithCache makes Run reuse compiled programs from store.
func WithCache(store *cache.Store) ServerOption {
	return func(c *serverConfig) { c.store = store }
}

// New creates a Server.
func New(opts ...ServerOption) *Server {
	cfg := serverConfig{
		stepLimit: DefaultStepLimit,
		tapeSize:  vm.DefaultTapeSize,
		workers:   runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Server{
		cfg:    cfg,
		worker: NewWorker(cfg.workers),
		mux:    http.NewServeMux(),
	}

	codec := connect.WithCodec(cborCodec{})
	s.mux.Handle(CompileProcedure, connect.NewUnaryHandler(CompileProcedure, s.Compile, codec))
	s.mux.Handle(RunProcedure, connect.NewUnaryHandler(RunProcedure, s.Run, codec))
	return s
}

// Handler returns the HTTP handler serving both procedures.
func (s *Server) Handler() http.Handler { return s.mux }

// ListenAndServe starts the HTTP server on the given address.
// The address should be in the form "host:port" or ":port".
func (s *Server) ListenAndServe(addr string) error {
	log.Infof("tapeworm server listening on %s", addr)
	log.Infof("  compile: http://%s%s", addr, CompileProcedure)
	log.Infof("  run:     http://%s%s", addr, RunProcedure)
	return http.ListenAndServe(addr, s.mux)
}

// Stop shuts down the worker pool.
func (s *Server) Stop() {
	s.worker.Stop()
}

func pipelineFor(passes string) (*optimizer.Pipeline, error) {
	if passes == "" {
		return optimizer.New(optimizer.DefaultPasses()...), nil
	}
	ps, err := optimizer.ParsePasses(passes)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	return optimizer.New(ps...), nil
}

func diagnosticsFor(err error) []Diagnostic {
	var out []Diagnostic
	for _, se := range compiler.SyntaxErrors(err) {
		out = append(out, Diagnostic{Line: se.Pos.Line, Column: se.Pos.Column, Message: se.Msg})
	}
	return out
}

// Compile compiles the request source. Syntax errors are reported as
// diagnostics in a successful response; an unknown pass or backend is an
// invalid argument.
func (s *Server) Compile(ctx context.Context, req *connect.Request[CompileRequest]) (*connect.Response[CompileResponse], error) {
	msg := req.Msg
	pipeline, err := pipelineFor(msg.Passes)
	if err != nil {
		return nil, err
	}
	var render backend.Backend
	if msg.Backend != "" {
		if render, err = backend.New(msg.Backend, s.cfg.tapeSize); err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
	}

	var stats optimizer.Stats
	tree, err := compiler.Compile(msg.Source, compiler.WithPipeline(pipeline), compiler.WithStats(&stats))
	if err != nil {
		diags := diagnosticsFor(err)
		if len(diags) == 0 {
			return nil, connect.NewError(connect.CodeInternal, err)
		}
		log.Infof("compile: %d syntax errors", len(diags))
		return connect.NewResponse(&CompileResponse{Diagnostics: diags}), nil
	}

	prog := vm.Lower(tree)
	image, err := vm.EncodeImage(prog)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	hash := ir.Hash(tree)
	resp := &CompileResponse{
		Success:     true,
		IR:          ir.Format(tree),
		TreeHash:    hash[:],
		Nodes:       ir.Count(tree),
		Disassembly: prog.Disassemble(),
		Image:       image,
	}
	for _, st := range stats {
		resp.Stats = append(resp.Stats, PassStat{Name: st.Name, Before: st.Before, After: st.After})
	}
	if render != nil {
		text, err := render.Render(tree)
		if err != nil {
			if errors.Is(err, backend.ErrUnsupported) {
				return nil, connect.NewError(connect.CodeUnimplemented, err)
			}
			return nil, connect.NewError(connect.CodeInternal, err)
		}
		resp.Rendered = text
	}
	log.Infof("compile: %d nodes, %d instructions (%s)", resp.Nodes, prog.Len(), pipeline.Names())
	return connect.NewResponse(resp), nil
}

func (s *Server) program(msg *RunRequest) (*vm.Program, error) {
	switch {
	case msg.Source != "" && len(msg.Image) > 0:
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("source and image are mutually exclusive"))
	case len(msg.Image) > 0:
		p, err := vm.DecodeImage(msg.Image)
		if err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		return p, nil
	}
	pipeline, err := pipelineFor(msg.Passes)
	if err != nil {
		return nil, err
	}
	p, err := s.cfg.store.Program(msg.Source, pipeline)
	if err != nil {
		if len(compiler.SyntaxErrors(err)) > 0 {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return p, nil
}

func (s *Server) stepLimit(requested uint64) uint64 {
	if requested == 0 || (s.cfg.stepLimit > 0 && requested > s.cfg.stepLimit) {
		return s.cfg.stepLimit
	}
	return requested
}

// Run compiles or decodes the request's program and executes it on a
// fresh Machine. Faults are reported in the response.
func (s *Server) Run(ctx context.Context, req *connect.Request[RunRequest]) (*connect.Response[RunResponse], error) {
	msg := req.Msg
	prog, err := s.program(msg)
	if err != nil {
		return nil, err
	}
	tapeSize := msg.TapeSize
	if tapeSize <= 0 {
		tapeSize = s.cfg.tapeSize
	}
	if tapeSize > MaxTapeSize {
		return nil, connect.NewError(connect.CodeInvalidArgument,
			fmt.Errorf("tape size %d exceeds maximum %d", tapeSize, MaxTapeSize))
	}

	id := uuid.New().String()
	value, err := s.worker.Do(ctx, func() any {
		return s.execute(ctx, id, prog, tapeSize, s.stepLimit(msg.StepLimit))
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, connect.NewError(connect.CodeCanceled, ctxErr)
		}
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	resp := value.(*RunResponse)
	if resp.FaultKind == "" && ctx.Err() != nil {
		return nil, connect.NewError(connect.CodeCanceled, ctx.Err())
	}
	log.Infof("run %s: %d steps, %d bytes output %s", id, resp.Steps, len(resp.Output), resp.FaultKind)
	return connect.NewResponse(resp), nil
}

type outputBuffer struct{ data []byte }

func (b *outputBuffer) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	return len(p), nil
}

// execute runs prog to completion, a fault, or cancellation of ctx.
func (s *Server) execute(ctx context.Context, id string, prog *vm.Program, tapeSize int, limit uint64) *RunResponse {
	var out outputBuffer
	m := vm.NewMachine(prog,
		vm.WithOutput(&out),
		vm.WithTapeSize(tapeSize),
		vm.WithStepLimit(limit),
	)
	resp := &RunResponse{RunID: id}
	for {
		ok, err := m.Step()
		if err != nil {
			resp.Fault = err.Error()
			resp.FaultKind = faultKind(err)
			break
		}
		if !ok {
			break
		}
		if m.Steps()%cancelCheckInterval == 0 && ctx.Err() != nil {
			break
		}
	}
	resp.Output = out.data
	resp.Steps = m.Steps()
	resp.Pointer = uint64(m.Pointer())
	return resp
}

func faultKind(err error) string {
	var af *vm.AddressFault
	switch {
	case errors.As(err, &af):
		return FaultAddress
	case errors.Is(err, vm.ErrUnsupported):
		return FaultUnsupported
	case errors.Is(err, vm.ErrStepLimit):
		return FaultStepLimit
	}
	return "error"
}
