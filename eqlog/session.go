package eqlog

import (
	"github.com/gnolang/eqlog/internal/engine"
	"github.com/gnolang/eqlog/internal/syntax"
)

// Session accumulates statements across inputs, as an interactive shell
// does. Queries and goals are answered against everything entered so far
// and are not kept.
type Session struct {
	opts    Options
	preload []syntax.Entry
	entries []syntax.Entry
}

func NewSession(opts Options) *Session {
	return &Session{opts: opts}
}

// Eval parses input, keeps its statements and, if it contains queries or
// goals, runs them and returns the report. Input that fails to parse or
// compile leaves the session unchanged.
func (s *Session) Eval(input string) (string, error) {
	entries, err := newLoader().load("", input)
	if err != nil {
		return "", err
	}

	var kept, asked []syntax.Entry
	for _, e := range entries {
		switch e.(type) {
		case syntax.Query, syntax.Goal:
			asked = append(asked, e)
		default:
			kept = append(kept, e)
		}
	}

	next := append(append([]syntax.Entry{}, s.entries...), kept...)
	prog := engine.NewProgram(nil)
	if err := prog.AddAll(s.preload); err != nil {
		return "", err
	}
	if err := prog.AddAll(next); err != nil {
		return "", &SourceError{Source: input, Err: err}
	}
	if err := prog.AddAll(asked); err != nil {
		return "", &SourceError{Source: input, Err: err}
	}
	s.entries = next

	if len(asked) == 0 {
		return "", nil
	}
	out, err := s.answer(prog)
	if err != nil {
		return "", err
	}
	return out.Report, nil
}

func (s *Session) answer(prog *engine.Program) (*Outcome, error) {
	res, err := engine.Run(prog, engine.Options{Limits: s.opts.Limits, Logger: s.opts.Logger})
	if err != nil {
		return nil, err
	}
	return outcomeOf("", res, s.opts), nil
}

// Len is the number of statements kept, not counting configured rules.
func (s *Session) Len() int {
	return len(s.entries)
}

// Reset forgets every statement entered. Configured rules stay.
func (s *Session) Reset() {
	s.entries = nil
}
