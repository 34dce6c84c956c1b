package server

// Procedure paths served by Server.
const (
	CompileProcedure = "/tapeworm.v1.CompilerService/Compile"
	RunProcedure     = "/tapeworm.v1.CompilerService/Run"
)

// CompileRequest asks for source to be compiled.
type CompileRequest struct {
	Source string `cbor:"1,keyasint"`
	// Passes is a pass list for optimizer.ParsePasses. Empty selects the
	// default pipeline.
	Passes string `cbor:"2,keyasint,omitempty"`
	// Backend optionally names a text backend to render the result with.
	Backend string `cbor:"3,keyasint,omitempty"`
}

// PassStat mirrors optimizer.PassStat on the wire.
type PassStat struct {
	Name   string `cbor:"1,keyasint"`
	Before int    `cbor:"2,keyasint"`
	After  int    `cbor:"3,keyasint"`
}

// Diagnostic is a syntax error with a 1-based position.
type Diagnostic struct {
	Line    int    `cbor:"1,keyasint"`
	Column  int    `cbor:"2,keyasint"`
	Message string `cbor:"3,keyasint"`
}

// CompileResponse carries either the compiled program or diagnostics.
type CompileResponse struct {
	Success     bool         `cbor:"1,keyasint"`
	Diagnostics []Diagnostic `cbor:"2,keyasint,omitempty"`
	IR          string       `cbor:"3,keyasint,omitempty"`
	TreeHash    []byte       `cbor:"4,keyasint,omitempty"`
	Nodes       int          `cbor:"5,keyasint,omitempty"`
	Stats       []PassStat   `cbor:"6,keyasint,omitempty"`
	Disassembly string       `cbor:"7,keyasint,omitempty"`
	Image       []byte       `cbor:"8,keyasint,omitempty"`
	Rendered    string       `cbor:"9,keyasint,omitempty"`
}

// RunRequest asks for a program to be executed. Exactly one of Source and
// Image must be set.
type RunRequest struct {
	Source    string `cbor:"1,keyasint,omitempty"`
	Image     []byte `cbor:"2,keyasint,omitempty"`
	Passes    string `cbor:"3,keyasint,omitempty"`
	TapeSize  int    `cbor:"4,keyasint,omitempty"`
	StepLimit uint64 `cbor:"5,keyasint,omitempty"`
}

// Fault kinds reported in RunResponse.FaultKind.
const (
	FaultAddress     = "address"
	FaultUnsupported = "unsupported"
	FaultStepLimit   = "step-limit"
)

// RunResponse reports the outcome of a run. A program that faults still
// produces a response; Fault and FaultKind describe what stopped it.
type RunResponse struct {
	RunID     string `cbor:"1,keyasint"`
	Output    []byte `cbor:"2,keyasint"`
	Steps     uint64 `cbor:"3,keyasint"`
	Pointer   uint64 `cbor:"4,keyasint"`
	Fault     string `cbor:"5,keyasint,omitempty"`
	FaultKind string `cbor:"6,keyasint,omitempty"`
}
