package server

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/chazu/tapeworm/compiler"
	"github.com/chazu/tapeworm/ir"
	"github.com/chazu/tapeworm/optimizer"
)

const lspName = "tapeworm-lsp"

// LSP reports bracket errors and shows optimized IR on hover for tape
// programs.
type LSP struct {
	mu   sync.Mutex
	docs map[string]string // URI → full document content

	pipeline *optimizer.Pipeline
	handler  protocol.Handler
	server   *glspserver.Server
	version  string
}

// NewLSP creates an LSP server that optimizes with pipeline. A nil
// pipeline selects the default passes.
func NewLSP(pipeline *optimizer.Pipeline) *LSP {
	if pipeline == nil {
		pipeline = optimizer.New(optimizer.DefaultPasses()...)
	}
	s := &LSP{
		docs:     make(map[string]string),
		pipeline: pipeline,
		version:  "0.1.0",
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentHover: s.textDocumentHover,
	}

	s.server = glspserver.NewServer(&s.handler, lspName, false)
	return s
}

// Run starts the LSP server on stdio. Blocks until the client disconnects.
func (s *LSP) Run() error {
	return s.server.RunStdio()
}

// --- LSP lifecycle handlers ---

func (s *LSP) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Infof("%s initializing", lspName)

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
	}
	capabilities.HoverProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lspName,
			Version: &s.version,
		},
	}, nil
}

func (s *LSP) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *LSP) shutdown(ctx *glsp.Context) error {
	log.Infof("%s shutting down", lspName)
	return nil
}

func (s *LSP) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

// --- Document synchronization ---

func (s *LSP) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	text := params.TextDocument.Text

	s.mu.Lock()
	s.docs[string(uri)] = text
	s.mu.Unlock()

	s.publishDiagnostics(ctx, uri, text)
	return nil
}

func (s *LSP) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	// With Full sync, the last change event contains the full text
	if len(params.ContentChanges) > 0 {
		last := params.ContentChanges[len(params.ContentChanges)-1]
		if whole, ok := last.(protocol.TextDocumentContentChangeEventWhole); ok {
			s.mu.Lock()
			s.docs[string(uri)] = whole.Text
			s.mu.Unlock()

			s.publishDiagnostics(ctx, uri, whole.Text)
		}
	}
	return nil
}

func (s *LSP) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI

	s.mu.Lock()
	delete(s.docs, string(uri))
	s.mu.Unlock()

	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

// --- Language features ---

func (s *LSP) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	s.mu.Lock()
	text, ok := s.docs[string(params.TextDocument.URI)]
	s.mu.Unlock()

	if !ok {
		return nil, nil
	}
	return s.hover(text, params.Position), nil
}

// hover describes the innermost loop enclosing pos, or the whole document
// when pos is outside every loop. It returns nil for documents that do not
// parse.
func (s *LSP) hover(text string, pos protocol.Position) *protocol.Hover {
	offset, ok := offsetAt(text, pos)
	if !ok {
		return nil
	}

	var b strings.Builder
	var rng *protocol.Range
	if open, end, found := enclosingLoop(text, offset); found {
		tree, err := compiler.Compile(text[open:end], compiler.WithPipeline(s.pipeline))
		if err != nil {
			return nil
		}
		r := protocol.Range{Start: positionAt(text, open), End: positionAt(text, end)}
		rng = &r
		fmt.Fprintf(&b, "**loop** (%d nodes after %s)\n\n", ir.Count(tree), s.pipeline.Names())
		b.WriteString("```\n")
		b.WriteString(ir.Format(tree))
		b.WriteString("```")
	} else {
		var stats optimizer.Stats
		tree, err := compiler.Compile(text, compiler.WithPipeline(s.pipeline), compiler.WithStats(&stats))
		if err != nil {
			return nil
		}
		fmt.Fprintf(&b, "**program**: %d nodes, loop depth %d\n\n", ir.Count(tree), ir.Depth(tree))
		if len(stats) > 0 {
			fmt.Fprintf(&b, "Passes: `%s`", stats)
		} else {
			b.WriteString("No optimization passes.")
		}
	}

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: b.String(),
		},
		Range: rng,
	}
}

// --- Diagnostics ---

func (s *LSP) publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics(text),
	})
}

// diagnostics returns one error per unmatched bracket in text. The result
// is never nil so that publishing it clears earlier diagnostics.
func diagnostics(text string) []protocol.Diagnostic {
	out := []protocol.Diagnostic{}
	_, err := compiler.Parse(text)
	for _, se := range compiler.SyntaxErrors(err) {
		severity := protocol.DiagnosticSeverityError
		source := lspName
		start := protocol.Position{Line: uint32(se.Pos.Line - 1), Character: uint32(se.Pos.Column - 1)}
		end := start
		end.Character++
		out = append(out, protocol.Diagnostic{
			Range:    protocol.Range{Start: start, End: end},
			Severity: &severity,
			Source:   &source,
			Message:  se.Msg,
		})
	}
	return out
}

// --- Text position helpers ---

// offsetAt converts a 0-based line and rune column into a byte offset.
// Columns past the end of a line clamp to the line end.
func offsetAt(text string, pos protocol.Position) (int, bool) {
	offset := 0
	for line := uint32(0); line < pos.Line; line++ {
		i := strings.IndexByte(text[offset:], '\n')
		if i < 0 {
			return 0, false
		}
		offset += i + 1
	}
	for col := uint32(0); col < pos.Character && offset < len(text); col++ {
		r, size := utf8.DecodeRuneInString(text[offset:])
		if r == '\n' {
			break
		}
		offset += size
	}
	return offset, true
}

// positionAt is the inverse of offsetAt.
func positionAt(text string, offset int) protocol.Position {
	var pos protocol.Position
	for _, r := range text[:offset] {
		if r == '\n' {
			pos.Line++
			pos.Character = 0
		} else {
			pos.Character++
		}
	}
	return pos
}

// enclosingLoop finds the innermost matched bracket pair containing the
// byte at offset. It returns the offset of '[' and one past the matching
// ']'.
func enclosingLoop(text string, offset int) (open, end int, found bool) {
	var stack []int
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '[':
			stack = append(stack, i)
		case ']':
			if len(stack) == 0 {
				continue
			}
			start := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			// Pairs close innermost first, so the first hit is the tightest.
			if start <= offset && offset <= i {
				return start, i + 1, true
			}
		}
	}
	return 0, 0, false
}

func boolPtr(b bool) *bool { return &b }
