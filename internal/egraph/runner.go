package egraph

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Limits bound a saturation run. A zero field means no limit.
type Limits struct {
	Iterations int
	Nodes      int
	Time       time.Duration
}

func DefaultLimits() Limits {
	return Limits{
		Iterations: 30,
		Nodes:      10_000,
		Time:       5 * time.Second,
	}
}

// StopReason tells why a run ended. Only Saturated means the rules have
// nothing left to add.
type StopReason int

const (
	Saturated StopReason = iota
	IterationLimit
	NodeLimit
	TimeLimit
)

func (r StopReason) String() string {
	switch r {
	case Saturated:
		return "saturated"
	case IterationLimit:
		return "iteration limit"
	case NodeLimit:
		return "node limit"
	case TimeLimit:
		return "time limit"
	default:
		return "unknown"
	}
}

// Rewrite is a named rule.
type Rewrite struct {
	Name     string
	Searcher Searcher
	Applier  Applier
}

func NewRewrite(name string, searcher Searcher, applier Applier) *Rewrite {
	return &Rewrite{Name: name, Searcher: searcher, Applier: applier}
}

type RunReport struct {
	Stop       StopReason
	Iterations int
	Nodes      int
	Classes    int
	Elapsed    time.Duration
}

func (r RunReport) String() string {
	return fmt.Sprintf("stop=%s iterations=%d nodes=%d classes=%d elapsed=%s",
		r.Stop, r.Iterations, r.Nodes, r.Classes, r.Elapsed)
}

// Runner saturates a graph with a rule set under Limits. Budgets are
// checked between iterations.
type Runner struct {
	graph  *EGraph
	limits Limits
	logger *zap.Logger
	now    func() time.Time
}

func NewRunner(g *EGraph, limits Limits, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{graph: g, limits: limits, logger: logger, now: time.Now}
}

func (r *Runner) Run(rules []*Rewrite) (RunReport, error) {
	g := r.graph
	start := r.now()
	g.Rebuild()

	report := RunReport{}
	finish := func(stop StopReason) RunReport {
		report.Stop = stop
		report.Nodes = g.NumNodes()
		report.Classes = g.NumClasses()
		report.Elapsed = r.now().Sub(start)
		return report
	}

	for {
		if r.limits.Iterations > 0 && report.Iterations >= r.limits.Iterations {
			return finish(IterationLimit), nil
		}
		if r.limits.Nodes > 0 && g.NumNodes() > r.limits.Nodes {
			return finish(NodeLimit), nil
		}
		if r.limits.Time > 0 && r.now().Sub(start) > r.limits.Time {
			return finish(TimeLimit), nil
		}

		nodesBefore, unionsBefore := g.NumNodes(), g.Unions()

		// all rules see the same graph state
		matches := make([][]SearchMatches, len(rules))
		for i, rule := range rules {
			matches[i] = rule.Searcher.Search(g)
		}
		for i, rule := range rules {
			if len(matches[i]) == 0 {
				continue
			}
			if _, err := rule.Applier.ApplyMatches(g, matches[i], rule.Name); err != nil {
				return report, fmt.Errorf("applying rule %q: %w", rule.Name, err)
			}
		}
		g.Rebuild()
		report.Iterations++

		r.logger.Debug("saturation iteration",
			zap.Int("iteration", report.Iterations),
			zap.Int("nodes", g.NumNodes()),
			zap.Int("classes", g.NumClasses()),
		)

		if g.NumNodes() == nodesBefore && g.Unions() == unionsBefore {
			return finish(Saturated), nil
		}
	}
}
