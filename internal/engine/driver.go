package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/gnolang/eqlog/internal/egraph"
	"github.com/gnolang/eqlog/internal/syntax"
)

type Options struct {
	// Limits bound saturation. The zero value means egraph.DefaultLimits.
	Limits egraph.Limits
	Logger *zap.Logger
}

// Result holds the saturated graph and the answers of every query, in
// declaration order.
type Result struct {
	Graph   *egraph.EGraph
	Report  egraph.RunReport
	Queries []MultiPattern
	Answers [][]egraph.Subst

	extractor *egraph.Extractor
}

// Run seeds a fresh graph with the program's facts, saturates it with
// the rules and answers every query against the final state. Running out
// of budget is not an error; it shows up in Result.Report.Stop.
func Run(prog *Program, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	limits := opts.Limits
	if limits == (egraph.Limits{}) {
		limits = egraph.DefaultLimits()
	}

	g := egraph.New()
	for _, f := range prog.Facts {
		a := g.AddExpr(exprOf(f.Left))
		b := g.AddExpr(exprOf(f.Right))
		g.Union(a, b, f.Reason)
	}

	report, err := egraph.NewRunner(g, limits, logger).Run(prog.Rules)
	if err != nil {
		return nil, fmt.Errorf("saturation failed: %w", err)
	}
	logger.Debug("saturation finished",
		zap.Stringer("stop", report.Stop),
		zap.Int("iterations", report.Iterations),
		zap.Int("nodes", report.Nodes),
		zap.Int("rules", len(prog.Rules)),
	)

	res := &Result{
		Graph:   g,
		Report:  report,
		Queries: prog.Queries,
		Answers: make([][]egraph.Subst, len(prog.Queries)),
	}
	for i, q := range prog.Queries {
		for _, m := range q.Search(g) {
			res.Answers[i] = append(res.Answers[i], m.Substs...)
		}
	}
	return res, nil
}

// Extract returns the smallest term in the class of id.
func (r *Result) Extract(id egraph.ID) egraph.Expr {
	if r.extractor == nil {
		r.extractor = egraph.NewExtractor(r.Graph)
	}
	e, _, _ := r.extractor.Best(id)
	return e
}

// ProofLine justifies one equality conjunct of a query answer.
type ProofLine struct {
	Left          string
	Right         string
	Justification string
}

// Explain justifies every equality conjunct of query q under s. A
// conjunct the graph cannot justify is left out rather than failing.
func (r *Result) Explain(q int, s egraph.Subst) []ProofLine {
	if q < 0 || q >= len(r.Queries) {
		return nil
	}
	var lines []ProofLine
	for _, p := range r.Queries[q].Patterns {
		if p.Kind != syntax.WrapEq {
			continue
		}
		exp, ok := r.Graph.ExplainPatterns(p.Left, p.Right, s)
		if !ok {
			continue
		}
		lines = append(lines, ProofLine{
			Left:          p.Left.String(),
			Right:         p.Right.String(),
			Justification: exp.String(),
		})
	}
	return lines
}
