package eqlog

import (
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gnolang/eqlog/internal/syntax"
)

// ProgramEngine runs programs. Engine is the implementation; batch
// helpers accept the interface.
type ProgramEngine interface {
	RunFile(path string) (*Outcome, error)
	RunSource(source []byte) (*Outcome, error)
}

// Engine runs programs under one configuration. It is safe for
// concurrent use; every run owns its own e-graph.
type Engine struct {
	config Config
	opts   Options
	rules  []syntax.Entry
	logger *zap.Logger
}

// New loads the configuration at configPath, or uses DefaultConfig when
// configPath is empty.
func New(configPath string, opts Options) (*Engine, error) {
	cfg := DefaultConfig()
	if configPath != "" {
		var err error
		cfg, err = LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
	}
	return NewEngine(cfg, opts)
}

// NewEngine builds an engine from cfg. Non-zero limits in opts override
// the configured ones.
func NewEngine(cfg Config, opts Options) (*Engine, error) {
	rules, err := cfg.Entries()
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	opts.Limits = cfg.limits(opts.Limits)
	opts.Proof = opts.Proof || cfg.Proof
	return &Engine{config: cfg, opts: opts, rules: rules, logger: logger}, nil
}

func (e *Engine) Config() Config {
	return e.config
}

// Session starts an interactive session that sees the configured rules
// and runs under the engine's limits.
func (e *Engine) Session() *Session {
	s := NewSession(e.opts)
	s.preload = e.rules
	return s
}

func (e *Engine) RunFile(path string) (*Outcome, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return e.run(path, string(data))
}

func (e *Engine) RunSource(source []byte) (*Outcome, error) {
	return e.run(e.opts.Filename, string(source))
}

func (e *Engine) run(filename, source string) (*Outcome, error) {
	logger := e.logger.With(zap.String("run", uuid.NewString()))
	if filename != "" {
		logger = logger.With(zap.String("file", filename))
	}

	opts := e.opts
	opts.Filename = filename
	opts.Logger = logger

	out, err := execute(filename, source, opts, e.rules)
	if err != nil {
		logger.Debug("run failed", zap.Error(err))
		return nil, err
	}
	logger.Info("run finished",
		zap.Stringer("stop", out.Stop),
		zap.Int("iterations", out.Iterations),
		zap.Int("nodes", out.Nodes),
		zap.Int("queries", out.Queries),
		zap.Int("answered", out.Answered),
	)
	return out, nil
}
