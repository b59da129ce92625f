package syntax

import (
	"fmt"
	"strings"
	"unicode"
)

// TokenType defines the type of a token
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIdent
	TokenVariable
	TokenString
	TokenLParen
	TokenRParen
	TokenComma
	TokenDot
	TokenEq
	TokenColon
	TokenIf        // :-
	TokenQuery     // ?-
	TokenRewrite   // <-
	TokenBiRewrite // <->
	TokenImplies   // =>
	TokenAnd       // /\
	TokenOr        // \/
)

func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenIdent:
		return "identifier"
	case TokenVariable:
		return "variable"
	case TokenString:
		return "string"
	case TokenLParen:
		return "'('"
	case TokenRParen:
		return "')'"
	case TokenComma:
		return "','"
	case TokenDot:
		return "'.'"
	case TokenEq:
		return "'='"
	case TokenColon:
		return "':'"
	case TokenIf:
		return "':-'"
	case TokenQuery:
		return "'?-'"
	case TokenRewrite:
		return "'<-'"
	case TokenBiRewrite:
		return "'<->'"
	case TokenImplies:
		return "'=>'"
	case TokenAnd:
		return "'/\\'"
	case TokenOr:
		return "'\\/'"
	default:
		return "Unknown"
	}
}

// Token represents a lexical token
type Token struct {
	Type  TokenType
	Value string
	Line  int
	Col   int
}

// ParseError reports malformed source with the position it was found at.
type ParseError struct {
	Line int
	Col  int
	Msg  string
	// AtEOF is set when the input ended before the statement did.
	AtEOF bool
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d col %d: %s", e.Line, e.Col, e.Msg)
}

// Incomplete reports whether more input could complete the statement.
func (e *ParseError) Incomplete() bool {
	return e.AtEOF
}

var punctuation = []struct {
	text string
	typ  TokenType
}{
	// longest first
	{"<->", TokenBiRewrite},
	{":-", TokenIf},
	{"?-", TokenQuery},
	{"<-", TokenRewrite},
	{"=>", TokenImplies},
	{"/\\", TokenAnd},
	{"\\/", TokenOr},
	{"(", TokenLParen},
	{")", TokenRParen},
	{",", TokenComma},
	{".", TokenDot},
	{"=", TokenEq},
	{":", TokenColon},
}

// Lex performs lexical analysis on the input string
// and returns a sequence of tokens terminated by TokenEOF.
func Lex(input string) ([]Token, error) {
	var tokens []Token
	line, col := 1, 1
	i := 0

	advance := func(n int) {
		for k := 0; k < n && i < len(input); k++ {
			if input[i] == '\n' {
				line++
				col = 1
			} else {
				col++
			}
			i++
		}
	}

scan:
	for i < len(input) {
		c := input[i]

		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			advance(1)
			continue
		case c == '%':
			for i < len(input) && input[i] != '\n' {
				advance(1)
			}
			continue
		case strings.HasPrefix(input[i:], "/*"):
			startLine, startCol := line, col
			end := strings.Index(input[i+2:], "*/")
			if end < 0 {
				return nil, &ParseError{Line: startLine, Col: startCol, Msg: "unterminated block comment", AtEOF: true}
			}
			advance(end + 4)
			continue
		case c == '"':
			startLine, startCol := line, col
			advance(1)
			var sb strings.Builder
			for {
				if i >= len(input) {
					return nil, &ParseError{Line: startLine, Col: startCol, Msg: "unterminated string", AtEOF: true}
				}
				ch := input[i]
				if ch == '"' {
					advance(1)
					break
				}
				if ch == '\\' && i+1 < len(input) {
					sb.WriteByte(input[i+1])
					advance(2)
					continue
				}
				sb.WriteByte(ch)
				advance(1)
			}
			tokens = append(tokens, Token{Type: TokenString, Value: sb.String(), Line: startLine, Col: startCol})
			continue
		case isIdentStart(rune(c)):
			start, startCol := i, col
			for i < len(input) && isIdentPart(rune(input[i])) {
				advance(1)
			}
			word := input[start:i]
			typ := TokenIdent
			if unicode.IsUpper(rune(word[0])) || word[0] == '_' {
				typ = TokenVariable
			}
			tokens = append(tokens, Token{Type: typ, Value: word, Line: line, Col: startCol})
			continue
		}

		for _, p := range punctuation {
			if strings.HasPrefix(input[i:], p.text) {
				tokens = append(tokens, Token{Type: p.typ, Value: p.text, Line: line, Col: col})
				advance(len(p.text))
				continue scan
			}
		}
		return nil, &ParseError{Line: line, Col: col, Msg: fmt.Sprintf("unexpected character %q", c)}
	}

	tokens = append(tokens, Token{Type: TokenEOF, Line: line, Col: col})
	return tokens, nil
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
