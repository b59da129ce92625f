package report

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gnolang/eqlog/internal/engine"
	"github.com/gnolang/eqlog/internal/syntax"
)

const tabWidth = 8

// FormatError renders err for a terminal. Parse errors point into source
// with a snippet of the offending line.
func FormatError(filename, source string, err error, colored bool) string {
	s := newStyles(colored)

	var perr *syntax.ParseError
	if !errors.As(err, &perr) {
		return s.err.Sprintf("error: %s", category(err)) + "\n" +
			s.line.Sprint(" = ") + s.message.Sprint(err.Error()) + "\n"
	}

	lines := strings.Split(source, "\n")
	width := len(fmt.Sprintf("%d", perr.Line))
	padding := strings.Repeat(" ", width+1)

	var sb strings.Builder
	sb.WriteString(s.err.Sprint("error: parse error") + "\n")
	sb.WriteString(s.line.Sprintf("%s--> ", strings.Repeat(" ", width)))
	sb.WriteString(s.file.Sprintf("%s:%d:%d", displayName(filename), perr.Line, perr.Col) + "\n")

	if perr.Line < 1 || perr.Line > len(lines) {
		sb.WriteString(s.line.Sprintf("%s= ", padding) + s.message.Sprint(perr.Msg) + "\n")
		return sb.String()
	}

	line := lines[perr.Line-1]
	sb.WriteString(s.line.Sprintf("%s|", padding) + "\n")
	sb.WriteString(s.line.Sprintf("%*d | ", width, perr.Line) + line + "\n")
	sb.WriteString(s.line.Sprintf("%s| ", padding))
	sb.WriteString(strings.Repeat(" ", visualColumn(line, perr.Col)) + s.message.Sprint("^") + "\n")
	sb.WriteString(s.line.Sprintf("%s= ", padding) + s.message.Sprint(perr.Msg) + "\n")
	return sb.String()
}

func category(err error) string {
	var (
		ng    *engine.NonGroundError
		shape *engine.UnsupportedShapeError
		rule  *engine.RuleCompileError
	)
	switch {
	case errors.As(err, &ng):
		return "non-ground axiom"
	case errors.As(err, &shape):
		return "unsupported formula"
	case errors.As(err, &rule):
		return "invalid rule"
	default:
		return "run failed"
	}
}

func displayName(filename string) string {
	if filename == "" {
		return "<stdin>"
	}
	return filename
}

// visualColumn returns the display column of the 1-based byte column,
// expanding tabs.
func visualColumn(line string, column int) int {
	if column < 1 {
		return 0
	}
	visual := 0
	for i, ch := range line {
		if i+1 == column {
			break
		}
		if ch == '\t' {
			visual += tabWidth - (visual % tabWidth)
		} else {
			visual++
		}
	}
	return visual
}
