// Package eqlog runs equational logic programs: facts, rules, rewrites,
// axioms and queries are compiled into an e-graph, saturated within a
// budget, and every query is answered against the saturated graph.
package eqlog

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/gnolang/eqlog/internal/egraph"
	"github.com/gnolang/eqlog/internal/engine"
	"github.com/gnolang/eqlog/internal/report"
	"github.com/gnolang/eqlog/internal/syntax"
)

type (
	// Limits bound saturation. A zero field means no limit; the zero
	// value as a whole means DefaultLimits.
	Limits     = egraph.Limits
	StopReason = egraph.StopReason
)

const (
	Saturated      = egraph.Saturated
	IterationLimit = egraph.IterationLimit
	NodeLimit      = egraph.NodeLimit
	TimeLimit      = egraph.TimeLimit
)

func DefaultLimits() Limits {
	return egraph.DefaultLimits()
}

// Options control a single run.
type Options struct {
	// Filename names the program for include resolution and diagnostics.
	Filename string
	// Verbose is accepted for compatibility; logging verbosity is chosen
	// by the Logger.
	Verbose bool
	Proof   bool
	// Graph, when set, is the path the saturated e-graph is written to
	// in GraphViz format.
	Graph  string
	Color  bool
	Limits Limits
	Logger *zap.Logger
}

// Outcome is what one program run produced.
type Outcome struct {
	Filename   string
	Report     string
	Stop       StopReason
	Iterations int
	Nodes      int
	Queries    int
	Answered   int
	// Err is set by batch runs when the program could not be run.
	Err error
}

// SourceError ties an error to the program text it was found in.
type SourceError struct {
	Filename string
	Source   string
	Err      error
}

func (e *SourceError) Error() string {
	if e.Filename == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Filename, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Run runs a program and returns its report.
func Run(source string, opts Options) (string, error) {
	out, err := execute(opts.Filename, source, opts, nil)
	if err != nil {
		return "", err
	}
	return out.Report, nil
}

// RunFile reads and runs the program at path.
func RunFile(path string, opts Options) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	opts.Filename = path
	return Run(string(data), opts)
}

// RunSimple runs source with default options. Errors are returned as
// report text.
func RunSimple(source string) string {
	return RunWithProof(source, false)
}

// RunWithProof is RunSimple with optional proof lines.
func RunWithProof(source string, proof bool) string {
	out, err := Run(source, Options{Proof: proof})
	if err != nil {
		return err.Error()
	}
	return out
}

func execute(filename, source string, opts Options, preload []syntax.Entry) (*Outcome, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	entries, err := newLoader().load(filename, source)
	if err != nil {
		return nil, err
	}

	prog := engine.NewProgram(nil)
	if err := prog.AddAll(preload); err != nil {
		return nil, fmt.Errorf("configured rules: %w", err)
	}
	if err := prog.AddAll(entries); err != nil {
		return nil, &SourceError{Filename: filename, Source: source, Err: err}
	}
	logger.Debug("program compiled",
		zap.Int("facts", len(prog.Facts)),
		zap.Int("rules", len(prog.Rules)),
		zap.Int("queries", len(prog.Queries)),
	)

	res, err := engine.Run(prog, engine.Options{Limits: opts.Limits, Logger: logger})
	if err != nil {
		return nil, err
	}

	if opts.Graph != "" {
		if err := writeGraph(opts.Graph, res.Graph); err != nil {
			return nil, err
		}
	}

	return outcomeOf(filename, res, opts), nil
}

func outcomeOf(filename string, res *engine.Result, opts Options) *Outcome {
	out := &Outcome{
		Filename:   filename,
		Report:     report.Format(res, report.Options{Proof: opts.Proof, Color: opts.Color}),
		Stop:       res.Report.Stop,
		Iterations: res.Report.Iterations,
		Nodes:      res.Report.Nodes,
		Queries:    len(res.Queries),
	}
	for _, answers := range res.Answers {
		if len(answers) > 0 {
			out.Answered++
		}
	}
	return out
}

func writeGraph(path string, g *egraph.EGraph) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating graph file: %w", err)
	}
	defer f.Close()
	if err := g.WriteDot(f); err != nil {
		return fmt.Errorf("writing graph: %w", err)
	}
	return nil
}
