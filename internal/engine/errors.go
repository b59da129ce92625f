package engine

import (
	"fmt"
	"strings"
)

// NonGroundError reports an axiom atom that keeps a variable no
// enclosing forall binds.
type NonGroundError struct {
	Term string
	Var  string
	Path string
}

func (e *NonGroundError) Error() string {
	return fmt.Sprintf("%s: %s is not ground: %s is not bound by an enclosing forall", e.Path, e.Term, e.Var)
}

// UnsupportedShapeError reports a formula construct that cannot be
// compiled where it appears.
type UnsupportedShapeError struct {
	Construct string
	Path      string
	Formula   string
}

func (e *UnsupportedShapeError) Error() string {
	return fmt.Sprintf("%s: unsupported %s: %s", e.Path, e.Construct, e.Formula)
}

// RuleCompileError reports a rule that cannot be registered.
type RuleCompileError struct {
	Rule string
	Msg  string
}

func (e *RuleCompileError) Error() string {
	return fmt.Sprintf("rule %s: %s", e.Rule, e.Msg)
}

// path is a position inside a formula, rendered as "axiom foo > forall > impl.hyp".
type path []string

func (p path) with(step string) path {
	out := make(path, len(p), len(p)+1)
	copy(out, p)
	return append(out, step)
}

func (p path) String() string {
	return strings.Join(p, " > ")
}
