package eqlog

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gnolang/eqlog/internal/syntax"
)

const DefaultConfigFile = ".eqlog.yaml"

// Config is the yaml configuration shared by every run of an Engine.
type Config struct {
	Name   string       `yaml:"name"`
	Limits LimitsConfig `yaml:"limits"`
	Proof  bool         `yaml:"proof"`
	Rules  []RuleConfig `yaml:"rules"`
}

type LimitsConfig struct {
	Iterations int           `yaml:"iterations"`
	Nodes      int           `yaml:"nodes"`
	Time       time.Duration `yaml:"time"`
}

// RuleConfig declares a rewrite that is loaded before every program. It
// reads like "lhs <- rhs :- conditions.": terms matching rhs are made
// equal to lhs.
type RuleConfig struct {
	Name          string   `yaml:"name"`
	Lhs           string   `yaml:"lhs"`
	Rhs           string   `yaml:"rhs"`
	Conditions    []string `yaml:"conditions,omitempty"`
	Bidirectional bool     `yaml:"bidirectional,omitempty"`
}

func DefaultConfig() Config {
	d := DefaultLimits()
	return Config{
		Name: "eqlog",
		Limits: LimitsConfig{
			Iterations: d.Iterations,
			Nodes:      d.Nodes,
			Time:       d.Time,
		},
		Rules: []RuleConfig{},
	}
}

func LoadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

func WriteConfig(path string, cfg Config) error {
	d, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, d, 0o644)
}

// Entries parses the configured rules into program entries.
func (c Config) Entries() ([]syntax.Entry, error) {
	entries := make([]syntax.Entry, 0, len(c.Rules))
	for i, r := range c.Rules {
		name := r.Name
		if name == "" {
			name = fmt.Sprintf("rules[%d]", i)
		}
		lhs, err := syntax.ParseTerm(r.Lhs)
		if err != nil {
			return nil, fmt.Errorf("rule %s: lhs: %w", name, err)
		}
		rhs, err := syntax.ParseTerm(r.Rhs)
		if err != nil {
			return nil, fmt.Errorf("rule %s: rhs: %w", name, err)
		}

		if r.Bidirectional {
			if len(r.Conditions) > 0 {
				return nil, fmt.Errorf("rule %s: a bidirectional rule cannot have conditions", name)
			}
			entries = append(entries, syntax.BiRewrite{Name: r.Name, Lhs: lhs, Rhs: rhs})
			continue
		}

		var conds []syntax.EqTerm
		for _, c := range r.Conditions {
			cond, err := syntax.ParseEqTerm(c)
			if err != nil {
				return nil, fmt.Errorf("rule %s: condition %q: %w", name, c, err)
			}
			conds = append(conds, cond)
		}
		entries = append(entries, syntax.Rewrite{Name: r.Name, Lhs: lhs, Rhs: rhs, Conditions: conds})
	}
	return entries, nil
}

// limits fills the zero fields of l from the configuration, then from
// DefaultLimits.
func (c Config) limits(l Limits) Limits {
	d := DefaultLimits()
	if l.Iterations == 0 {
		l.Iterations = firstNonZero(c.Limits.Iterations, d.Iterations)
	}
	if l.Nodes == 0 {
		l.Nodes = firstNonZero(c.Limits.Nodes, d.Nodes)
	}
	if l.Time == 0 {
		l.Time = firstNonZero(c.Limits.Time, d.Time)
	}
	return l
}

func firstNonZero[T comparable](vs ...T) T {
	var zero T
	for _, v := range vs {
		if v != zero {
			return v
		}
	}
	return zero
}
