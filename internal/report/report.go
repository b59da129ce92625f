package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/fatih/color"

	"github.com/gnolang/eqlog/internal/egraph"
	"github.com/gnolang/eqlog/internal/engine"
)

type Options struct {
	// Proof adds a justification line for every equality conjunct.
	Proof bool
	Color bool
}

type styles struct {
	query   *color.Color
	unknown *color.Color
	answer  *color.Color
	proof   *color.Color
	note    *color.Color
	err     *color.Color
	file    *color.Color
	line    *color.Color
	message *color.Color
}

// newStyles builds a private set of styles so concurrent reports never
// flip each other's color state.
func newStyles(colored bool) styles {
	s := styles{
		query:   color.New(color.FgCyan, color.Bold),
		unknown: color.New(color.FgHiYellow),
		answer:  color.New(color.FgGreen),
		proof:   color.New(color.FgHiBlue),
		note:    color.New(color.FgYellow, color.Bold),
		err:     color.New(color.FgRed, color.Bold),
		file:    color.New(color.FgCyan, color.Bold),
		line:    color.New(color.FgHiBlue, color.Bold),
		message: color.New(color.FgRed, color.Bold),
	}
	for _, c := range []*color.Color{s.query, s.unknown, s.answer, s.proof, s.note, s.err, s.file, s.line, s.message} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return s
}

const reportTemplate = `{{range .Queries}}{{query .Query}}{{if .Answers}}{{range .Answers}}{{answer .}}{{end}}{{else}}{{unknown}}{{end}}{{end}}{{if .Stopped}}{{note .Stop}}{{end}}`

type reportData struct {
	Queries []queryData
	Stopped bool
	Stop    egraph.StopReason
}

type queryData struct {
	Query   string
	Answers []answerData
}

type answerData struct {
	Bindings []binding
	Proofs   []engine.ProofLine
}

type binding struct {
	Var  string
	Term string
}

// Format renders the answers of every query in declaration order.
func Format(res *engine.Result, opts Options) string {
	var buf bytes.Buffer
	if err := Write(&buf, res, opts); err != nil {
		return fmt.Sprintf("error formatting report: %v", err)
	}
	return buf.String()
}

func Write(w io.Writer, res *engine.Result, opts Options) error {
	s := newStyles(opts.Color)
	funcMap := template.FuncMap{
		"query":   func(q string) string { return s.query.Sprintf("-? %s", q) + "\n" },
		"unknown": func() string { return s.unknown.Sprint("unknown.") + "\n" },
		"answer":  func(a answerData) string { return answerLines(s, a) },
		"note": func(stop egraph.StopReason) string {
			return s.note.Sprintf("%% search stopped: %s; answers are best-effort", stop) + "\n"
		},
	}
	tmpl := template.Must(template.New("report").Funcs(funcMap).Parse(reportTemplate))
	return tmpl.Execute(w, collect(res, opts))
}

func collect(res *engine.Result, opts Options) reportData {
	data := reportData{
		Stop:    res.Report.Stop,
		Stopped: res.Report.Stop != egraph.Saturated,
	}
	for i, q := range res.Queries {
		qd := queryData{Query: q.String()}
		vars := q.Vars()
		for _, subst := range res.Answers[i] {
			var a answerData
			for _, v := range vars {
				id, ok := subst.Get(v)
				if !ok {
					continue
				}
				a.Bindings = append(a.Bindings, binding{Var: "?" + v, Term: res.Extract(id).String()})
			}
			if opts.Proof {
				a.Proofs = res.Explain(i, subst)
			}
			qd.Answers = append(qd.Answers, a)
		}
		data.Queries = append(data.Queries, qd)
	}
	return data
}

func answerLines(s styles, a answerData) string {
	parts := make([]string, len(a.Bindings))
	for i, b := range a.Bindings {
		parts[i] = fmt.Sprintf("%s = %s", b.Var, b.Term)
	}
	out := s.answer.Sprintf("[%s];", strings.Join(parts, ", ")) + "\n"
	for _, p := range a.Proofs {
		out += s.proof.Sprintf("Proof %s = %s: %s", p.Left, p.Right, p.Justification) + "\n"
	}
	return out
}
