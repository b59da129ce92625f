package engine

import (
	"fmt"

	"github.com/gnolang/eqlog/internal/egraph"
	"github.com/gnolang/eqlog/internal/syntax"
)

// Fact is an asserted equality between two ground terms. A bare fact is
// a term equal to itself.
type Fact struct {
	Left   syntax.GroundTerm
	Right  syntax.GroundTerm
	Reason string
}

// Program is the compiled form of a list of entries. It is built once,
// then handed to Run.
type Program struct {
	Facts   []Fact
	Rules   []*egraph.Rewrite
	Queries []MultiPattern

	names     NameGen
	ruleNames map[string]bool
}

// NewProgram returns an empty program. A nil names uses DefaultNames.
func NewProgram(names NameGen) *Program {
	if names == nil {
		names = DefaultNames
	}
	return &Program{names: names, ruleNames: make(map[string]bool)}
}

// Compile builds a program from entries with the default name generator.
func Compile(entries []syntax.Entry) (*Program, error) {
	p := NewProgram(nil)
	if err := p.AddAll(entries); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Program) AddAll(entries []syntax.Entry) error {
	for _, e := range entries {
		if err := p.Add(e); err != nil {
			return err
		}
	}
	return nil
}

// Add compiles one entry into the program.
func (p *Program) Add(entry syntax.Entry) error {
	switch e := entry.(type) {
	case syntax.Fact:
		l, r := e.Fact.Pair()
		p.Facts = append(p.Facts, Fact{Left: l, Right: r, Reason: "fact"})
		return nil

	case syntax.Clause:
		searcher := multiPatternOf(e.Body)
		applier := multiPatternOf(e.Head)
		return p.addRule(fmt.Sprintf("%s:-%s.", applier, searcher), searcher, applier)

	case syntax.Rewrite:
		lhs, rhs := patternOf(e.Lhs), patternOf(e.Rhs)
		conds := make([]Condition, len(e.Conditions))
		for i, c := range e.Conditions {
			l, r := c.Pair()
			conds[i] = Condition{Left: patternOf(l), Right: patternOf(r)}
		}
		name := e.Name
		if name == "" {
			name = fmt.Sprintf("%s -> %s", rhs, lhs)
			if len(conds) > 0 {
				name = fmt.Sprintf("%s -[%s]> %s", rhs, joinConditions(conds), lhs)
			}
		}
		applier := ConditionalApplier{Conditions: conds, Applier: egraph.PatternApplier{Pattern: lhs}}
		return p.addRule(name, egraph.PatternSearcher{Pattern: rhs}, applier)

	case syntax.BiRewrite:
		a, b := patternOf(e.Lhs), patternOf(e.Rhs)
		forward, backward := fmt.Sprintf("%s -> %s", a, b), fmt.Sprintf("%s -> %s", b, a)
		if e.Name != "" {
			forward, backward = e.Name, e.Name+"#rev"
		}
		if err := p.addRule(forward, egraph.PatternSearcher{Pattern: a}, egraph.PatternApplier{Pattern: b}); err != nil {
			return err
		}
		return p.addRule(backward, egraph.PatternSearcher{Pattern: b}, egraph.PatternApplier{Pattern: a})

	case syntax.Query:
		p.Queries = append(p.Queries, multiPatternOf(e.Goals))
		return nil

	case syntax.Axiom:
		return p.compileAxiom(e.Name, e.Body)

	case syntax.Goal:
		return p.compileGoal(NewEnv(), e.Body, path{"goal"})

	case syntax.Directive:
		// resolved by the loader before compilation
		return nil

	default:
		return fmt.Errorf("unknown entry %T", entry)
	}
}

// addRule registers a rule after checking that its name is new and that
// the searcher binds every variable the applier uses.
func (p *Program) addRule(name string, searcher egraph.Searcher, applier egraph.Applier) error {
	if p.ruleNames[name] {
		return &RuleCompileError{Rule: name, Msg: "a rule with this name already exists"}
	}
	if v := firstMissing(searcher.Vars(), applier.Vars()); v != "" {
		return &RuleCompileError{Rule: name, Msg: fmt.Sprintf("variable ?%s is not bound by the rule's left-hand side", v)}
	}
	p.ruleNames[name] = true
	p.Rules = append(p.Rules, egraph.NewRewrite(name, searcher, applier))
	return nil
}

func multiPatternOf(ts []syntax.EqTerm) MultiPattern {
	patterns := make([]EqPattern, len(ts))
	for i, t := range ts {
		patterns[i] = eqPatternOf(t)
	}
	return MultiPattern{Patterns: patterns}
}
