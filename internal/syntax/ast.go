package syntax

import (
	"fmt"
	"strings"
)

// Term is a first-order term: either a variable or a function symbol
// applied to an ordered list of argument terms.
type Term interface {
	isTerm()
	String() string
}

// Var is a named variable.
type Var struct {
	Name string
}

func (Var) isTerm() {}
func (v Var) String() string {
	return v.Name
}

// Apply is a function symbol applied to arguments. Constants are Apply
// values with no arguments.
type Apply struct {
	Head string
	Args []Term
}

func (Apply) isTerm() {}
func (a Apply) String() string {
	if len(a.Args) == 0 {
		return a.Head
	}
	parts := make([]string, len(a.Args))
	for i, arg := range a.Args {
		parts[i] = arg.String()
	}
	return fmt.Sprintf("%s(%s)", a.Head, strings.Join(parts, ", "))
}

// Helper constructors

func NewVar(name string) Var {
	return Var{Name: name}
}

func Const(name string) Apply {
	return Apply{Head: name}
}

func Fn(head string, args ...Term) Apply {
	return Apply{Head: head, Args: args}
}

// GroundTerm is a variable-free term.
type GroundTerm struct {
	Head string
	Args []GroundTerm
}

func (g GroundTerm) String() string {
	return g.Term().String()
}

// Term converts the ground term back into the general term shape.
func (g GroundTerm) Term() Term {
	args := make([]Term, len(g.Args))
	for i, arg := range g.Args {
		args[i] = arg.Term()
	}
	if len(args) == 0 {
		args = nil
	}
	return Apply{Head: g.Head, Args: args}
}

// Ground projects t onto a GroundTerm. It reports false if t contains a
// variable anywhere.
func Ground(t Term) (GroundTerm, bool) {
	switch t := t.(type) {
	case Apply:
		g := GroundTerm{Head: t.Head}
		for _, arg := range t.Args {
			ga, ok := Ground(arg)
			if !ok {
				return GroundTerm{}, false
			}
			g.Args = append(g.Args, ga)
		}
		return g, true
	default:
		return GroundTerm{}, false
	}
}

// FreeVars returns the variable names of t in first-occurrence order.
func FreeVars(t Term) []string {
	var out []string
	seen := make(map[string]bool)
	var walk func(Term)
	walk = func(t Term) {
		switch t := t.(type) {
		case Var:
			if !seen[t.Name] {
				seen[t.Name] = true
				out = append(out, t.Name)
			}
		case Apply:
			for _, arg := range t.Args {
				walk(arg)
			}
		}
	}
	walk(t)
	return out
}

// WrapKind tags the two shapes of a top-level statement.
type WrapKind int

const (
	WrapBare WrapKind = iota
	WrapEq
)

func (k WrapKind) String() string {
	switch k {
	case WrapBare:
		return "Bare"
	case WrapEq:
		return "Eq"
	default:
		return "Unknown"
	}
}

// EqWrap is either a single value (WrapBare, only Left is set) or an
// equality between Left and Right (WrapEq). Equality never nests.
type EqWrap[T any] struct {
	Kind  WrapKind
	Left  T
	Right T
}

func Bare[T any](v T) EqWrap[T] {
	return EqWrap[T]{Kind: WrapBare, Left: v}
}

func Equal[T any](l, r T) EqWrap[T] {
	return EqWrap[T]{Kind: WrapEq, Left: l, Right: r}
}

// Sides returns Left for a bare value and both sides for an equality.
func (w EqWrap[T]) Sides() []T {
	if w.Kind == WrapEq {
		return []T{w.Left, w.Right}
	}
	return []T{w.Left}
}

// Pair returns the two sides of the equality. A bare value is paired
// with itself.
func (w EqWrap[T]) Pair() (T, T) {
	if w.Kind == WrapEq {
		return w.Left, w.Right
	}
	return w.Left, w.Left
}

func (w EqWrap[T]) String() string {
	if w.Kind == WrapEq {
		return fmt.Sprintf("%v = %v", w.Left, w.Right)
	}
	return fmt.Sprint(w.Left)
}

// MapWrap applies f to every side of w, keeping its shape.
func MapWrap[T, U any](w EqWrap[T], f func(T) U) EqWrap[U] {
	if w.Kind == WrapEq {
		return Equal(f(w.Left), f(w.Right))
	}
	return Bare(f(w.Left))
}

// EqTerm is a top-level atom over terms.
type EqTerm = EqWrap[Term]

// Formula is a first-order formula over EqTerm atoms.
type Formula interface {
	isFormula()
	String() string
}

type Impl struct {
	Hyp  Formula
	Conc Formula
}

type Conj struct {
	Items []Formula
}

type Disj struct {
	Items []Formula
}

type ForAll struct {
	Vars []string
	Body Formula
}

type Exists struct {
	Vars []string
	Body Formula
}

type Atom struct {
	Eq EqTerm
}

func (Impl) isFormula()   {}
func (Conj) isFormula()   {}
func (Disj) isFormula()   {}
func (ForAll) isFormula() {}
func (Exists) isFormula() {}
func (Atom) isFormula()   {}

func (f Impl) String() string {
	return fmt.Sprintf("(%s => %s)", f.Hyp, f.Conc)
}

func (f Conj) String() string {
	return joinFormulas(f.Items, " /\\ ")
}

func (f Disj) String() string {
	return joinFormulas(f.Items, " \\/ ")
}

func (f ForAll) String() string {
	return fmt.Sprintf("forall %s, %s", strings.Join(f.Vars, " "), f.Body)
}

func (f Exists) String() string {
	return fmt.Sprintf("exists %s, %s", strings.Join(f.Vars, " "), f.Body)
}

func (f Atom) String() string {
	return f.Eq.String()
}

func joinFormulas(fs []Formula, sep string) string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = f.String()
	}
	return "(" + strings.Join(parts, sep) + ")"
}

// Entry is one program statement.
type Entry interface {
	isEntry()
	String() string
}

// Clause asserts every Head conjunct whenever all Body conjuncts match.
type Clause struct {
	Head []EqTerm
	Body []EqTerm
}

// Fact is a ground statement.
type Fact struct {
	Fact EqWrap[GroundTerm]
}

// Rewrite rewrites Rhs into Lhs when every condition already holds.
// Name is optional; the rule text is used when it is empty.
type Rewrite struct {
	Name       string
	Lhs        Term
	Rhs        Term
	Conditions []EqTerm
}

// BiRewrite rewrites in both directions.
type BiRewrite struct {
	Name string
	Lhs  Term
	Rhs  Term
}

type Query struct {
	Goals []EqTerm
}

type Axiom struct {
	Name string
	Body Formula
}

type Goal struct {
	Body Formula
}

// Directive is a loader instruction. Include is the only directive.
type Directive struct {
	Include string
}

func (Clause) isEntry()    {}
func (Fact) isEntry()      {}
func (Rewrite) isEntry()   {}
func (BiRewrite) isEntry() {}
func (Query) isEntry()     {}
func (Axiom) isEntry()     {}
func (Goal) isEntry()      {}
func (Directive) isEntry() {}

func (e Clause) String() string {
	return fmt.Sprintf("%s :- %s.", joinEqTerms(e.Head), joinEqTerms(e.Body))
}

func (e Fact) String() string {
	return e.Fact.String() + "."
}

func (e Rewrite) String() string {
	if len(e.Conditions) == 0 {
		return fmt.Sprintf("%s <- %s.", e.Lhs, e.Rhs)
	}
	return fmt.Sprintf("%s <- %s :- %s.", e.Lhs, e.Rhs, joinEqTerms(e.Conditions))
}

func (e BiRewrite) String() string {
	return fmt.Sprintf("%s <-> %s.", e.Lhs, e.Rhs)
}

func (e Query) String() string {
	return fmt.Sprintf("?- %s.", joinEqTerms(e.Goals))
}

func (e Axiom) String() string {
	return fmt.Sprintf("axiom %s : %s.", e.Name, e.Body)
}

func (e Goal) String() string {
	return fmt.Sprintf("goal %s.", e.Body)
}

func (e Directive) String() string {
	return fmt.Sprintf(":- include(%q).", e.Include)
}

func joinEqTerms(ts []EqTerm) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}
