package syntax

import "fmt"

// Parser turns a token stream into program entries.
type Parser struct {
	tokens  []Token
	current int
}

func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse lexes and parses a whole program.
func Parse(source string) ([]Entry, error) {
	tokens, err := Lex(source)
	if err != nil {
		return nil, err
	}
	return NewParser(tokens).Parse()
}

// ParseTerm parses a single term such as "f(X, a)".
func ParseTerm(source string) (Term, error) {
	p, err := parserFor(source)
	if err != nil {
		return nil, err
	}
	t, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	return t, p.expectEnd()
}

// ParseEqTerm parses "t" or "t = u".
func ParseEqTerm(source string) (EqTerm, error) {
	p, err := parserFor(source)
	if err != nil {
		return EqTerm{}, err
	}
	t, err := p.parseEqTerm()
	if err != nil {
		return EqTerm{}, err
	}
	return t, p.expectEnd()
}

// ParseFormula parses a formula without the trailing '.'.
func ParseFormula(source string) (Formula, error) {
	p, err := parserFor(source)
	if err != nil {
		return nil, err
	}
	f, err := p.parseFormula()
	if err != nil {
		return nil, err
	}
	return f, p.expectEnd()
}

func parserFor(source string) (*Parser, error) {
	tokens, err := Lex(source)
	if err != nil {
		return nil, err
	}
	return NewParser(tokens), nil
}

func (p *Parser) Parse() ([]Entry, error) {
	var entries []Entry
	for !p.isAtEnd() {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		entries = append(entries, stmt...)
	}
	return entries, nil
}

func (p *Parser) parseStatement() ([]Entry, error) {
	tok := p.peek()
	switch {
	case tok.Type == TokenQuery:
		p.advance()
		goals, err := p.parseEqTermList()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenDot); err != nil {
			return nil, err
		}
		return []Entry{Query{Goals: goals}}, nil

	case tok.Type == TokenIf:
		p.advance()
		d, err := p.parseDirective()
		if err != nil {
			return nil, err
		}
		return []Entry{d}, nil

	case p.isKeyword("axiom") && p.peekAt(1).Type == TokenIdent && p.peekAt(2).Type == TokenColon:
		p.advance()
		name := p.advance().Value
		p.advance()
		f, err := p.parseFormula()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenDot); err != nil {
			return nil, err
		}
		return []Entry{Axiom{Name: name, Body: f}}, nil

	case p.isKeyword("goal") && startsFormula(p.peekAt(1)):
		p.advance()
		f, err := p.parseFormula()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenDot); err != nil {
			return nil, err
		}
		return []Entry{Goal{Body: f}}, nil
	}

	return p.parseRuleOrFacts()
}

func (p *Parser) parseDirective() (Entry, error) {
	tok := p.peek()
	if !p.isKeyword("include") {
		return nil, p.errorAt(tok, fmt.Sprintf("unknown directive %q", tok.Value))
	}
	p.advance()
	if _, err := p.expect(TokenLParen); err != nil {
		return nil, err
	}
	path, err := p.expect(TokenString)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenDot); err != nil {
		return nil, err
	}
	return Directive{Include: path.Value}, nil
}

// parseRuleOrFacts handles every statement that starts with a term:
// facts, clauses, rewrites and bidirectional rewrites.
func (p *Parser) parseRuleOrFacts() ([]Entry, error) {
	start := p.peek()
	first, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	switch p.peek().Type {
	case TokenRewrite:
		p.advance()
		rhs, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		var conds []EqTerm
		if p.match(TokenIf) {
			conds, err = p.parseEqTermList()
			if err != nil {
				return nil, err
			}
		}
		if _, err := p.expect(TokenDot); err != nil {
			return nil, err
		}
		return []Entry{Rewrite{Lhs: first, Rhs: rhs, Conditions: conds}}, nil
	case TokenBiRewrite:
		p.advance()
		rhs, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenDot); err != nil {
			return nil, err
		}
		return []Entry{BiRewrite{Lhs: first, Rhs: rhs}}, nil
	}

	atom, err := p.finishEqTerm(first)
	if err != nil {
		return nil, err
	}
	head := []EqTerm{atom}
	for p.match(TokenComma) {
		atom, err := p.parseEqTerm()
		if err != nil {
			return nil, err
		}
		head = append(head, atom)
	}

	if p.match(TokenIf) {
		body, err := p.parseEqTermList()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenDot); err != nil {
			return nil, err
		}
		return []Entry{Clause{Head: head, Body: body}}, nil
	}

	if _, err := p.expect(TokenDot); err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(head))
	for _, h := range head {
		l, okl := Ground(h.Left)
		r, okr := l, true
		if h.Kind == WrapEq {
			r, okr = Ground(h.Right)
		}
		if !okl || !okr {
			return nil, p.errorAt(start, fmt.Sprintf("fact %s is not ground", h))
		}
		if h.Kind == WrapEq {
			entries = append(entries, Fact{Fact: Equal(l, r)})
		} else {
			entries = append(entries, Fact{Fact: Bare(l)})
		}
	}
	return entries, nil
}

func (p *Parser) parseEqTermList() ([]EqTerm, error) {
	var out []EqTerm
	for {
		t, err := p.parseEqTerm()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
		if !p.match(TokenComma) {
			return out, nil
		}
	}
}

func (p *Parser) parseEqTerm() (EqTerm, error) {
	t, err := p.parseTerm()
	if err != nil {
		return EqTerm{}, err
	}
	return p.finishEqTerm(t)
}

func (p *Parser) finishEqTerm(left Term) (EqTerm, error) {
	if !p.match(TokenEq) {
		return Bare(left), nil
	}
	right, err := p.parseTerm()
	if err != nil {
		return EqTerm{}, err
	}
	return Equal(left, right), nil
}

func (p *Parser) parseTerm() (Term, error) {
	tok := p.peek()
	switch tok.Type {
	case TokenVariable:
		p.advance()
		return Var{Name: tok.Value}, nil
	case TokenIdent:
		p.advance()
		if !p.match(TokenLParen) {
			return Apply{Head: tok.Value}, nil
		}
		var args []Term
		for {
			arg, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.match(TokenComma) {
				continue
			}
			if _, err := p.expect(TokenRParen); err != nil {
				return nil, err
			}
			return Apply{Head: tok.Value, Args: args}, nil
		}
	default:
		return nil, p.errorAt(tok, fmt.Sprintf("expected term, got %s", tok.Type))
	}
}

// Formula grammar, loosest first:
//
//	formula := disj [ "=>" formula ]
//	disj    := conj { "\/" conj }
//	conj    := unary { "/\" unary }
//	unary   := ("forall" | "exists") names "," formula | "(" formula ")" | atom
func (p *Parser) parseFormula() (Formula, error) {
	hyp, err := p.parseDisj()
	if err != nil {
		return nil, err
	}
	if !p.match(TokenImplies) {
		return hyp, nil
	}
	conc, err := p.parseFormula()
	if err != nil {
		return nil, err
	}
	return Impl{Hyp: hyp, Conc: conc}, nil
}

func (p *Parser) parseDisj() (Formula, error) {
	first, err := p.parseConj()
	if err != nil {
		return nil, err
	}
	items := []Formula{first}
	for p.match(TokenOr) {
		next, err := p.parseConj()
		if err != nil {
			return nil, err
		}
		items = append(items, next)
	}
	if len(items) == 1 {
		return first, nil
	}
	return Disj{Items: items}, nil
}

func (p *Parser) parseConj() (Formula, error) {
	first, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	items := []Formula{first}
	for p.match(TokenAnd) {
		next, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		items = append(items, next)
	}
	if len(items) == 1 {
		return first, nil
	}
	return Conj{Items: items}, nil
}

func (p *Parser) parseUnary() (Formula, error) {
	if p.isQuantifier() {
		kw := p.advance().Value
		var names []string
		for p.peek().Type == TokenIdent || p.peek().Type == TokenVariable {
			names = append(names, p.advance().Value)
		}
		if len(names) == 0 {
			return nil, p.errorAt(p.peek(), fmt.Sprintf("%s needs at least one variable", kw))
		}
		if _, err := p.expect(TokenComma); err != nil {
			return nil, err
		}
		body, err := p.parseFormula()
		if err != nil {
			return nil, err
		}
		if kw == "forall" {
			return ForAll{Vars: names, Body: body}, nil
		}
		return Exists{Vars: names, Body: body}, nil
	}

	if p.match(TokenLParen) {
		f, err := p.parseFormula()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRParen); err != nil {
			return nil, err
		}
		return f, nil
	}

	atom, err := p.parseEqTerm()
	if err != nil {
		return nil, err
	}
	return Atom{Eq: atom}, nil
}

func (p *Parser) isQuantifier() bool {
	if !p.isKeyword("forall") && !p.isKeyword("exists") {
		return false
	}
	next := p.peekAt(1).Type
	return next == TokenIdent || next == TokenVariable
}

// startsFormula reports whether tok can begin a formula following the
// goal keyword, as opposed to continuing a fact named "goal".
func startsFormula(tok Token) bool {
	return tok.Type == TokenIdent || tok.Type == TokenVariable
}

func (p *Parser) isKeyword(word string) bool {
	tok := p.peek()
	return tok.Type == TokenIdent && tok.Value == word
}

func (p *Parser) match(t TokenType) bool {
	if p.peek().Type == t {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(t TokenType) (Token, error) {
	tok := p.peek()
	if tok.Type != t {
		return tok, p.errorAt(tok, fmt.Sprintf("expected %s, got %s", t, describe(tok)))
	}
	p.advance()
	return tok, nil
}

func (p *Parser) expectEnd() error {
	if tok := p.peek(); tok.Type != TokenEOF {
		return p.errorAt(tok, fmt.Sprintf("unexpected %s", describe(tok)))
	}
	return nil
}

func (p *Parser) errorAt(tok Token, msg string) *ParseError {
	return &ParseError{Line: tok.Line, Col: tok.Col, Msg: msg, AtEOF: tok.Type == TokenEOF}
}

func describe(tok Token) string {
	switch tok.Type {
	case TokenEOF:
		return "end of input"
	case TokenIdent, TokenVariable, TokenString:
		return fmt.Sprintf("%s %q", tok.Type, tok.Value)
	default:
		return tok.Type.String()
	}
}

func (p *Parser) advance() Token {
	tok := p.peek()
	if !p.isAtEnd() {
		p.current++
	}
	return tok
}

func (p *Parser) peek() Token {
	return p.peekAt(0)
}

func (p *Parser) peekAt(offset int) Token {
	i := p.current + offset
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Type == TokenEOF
}
