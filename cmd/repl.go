package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/gnolang/eqlog/eqlog"
	"github.com/gnolang/eqlog/internal/syntax"
)

const (
	historyFile = ".eqlog_history"
	promptMain  = "eqlog> "
	promptCont  = "  ...> "
	banner      = "eqlog: enter facts, rules and ?- queries. :reset forgets everything, :quit exits."
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive session",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return err
		}
		return runRepl(cmd.OutOrStdout(), cmd.ErrOrStderr(), engine.Session())
	},
}

func init() {
	addRunFlags(replCmd.Flags())
}

func runRepl(out, errOut io.Writer, session *eqlog.Session) error {
	fmt.Fprintln(out, banner)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		input, ok := readStatement(ln)
		if !ok {
			fmt.Fprintln(out)
			return nil
		}

		trimmed := strings.TrimSpace(input)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			switch trimmed {
			case ":quit", ":q":
				return nil
			case ":reset":
				session.Reset()
				fmt.Fprintln(out, "% cleared")
			default:
				fmt.Fprintf(out, "unknown command %s. Type :quit to exit.\n", trimmed)
			}
			continue
		}

		ln.AppendHistory(strings.ReplaceAll(input, "\n", " "))
		result, err := session.Eval(input)
		if err != nil {
			printError(errOut, "", input, err)
			continue
		}
		fmt.Fprint(out, result)
	}
}

// readStatement reads lines until they parse or fail for a reason more
// input cannot fix. It reports false at end of input.
func readStatement(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if !needsMore(b.String()) {
			return b.String(), true
		}
	}
}

func needsMore(src string) bool {
	trimmed := strings.TrimSpace(src)
	if trimmed == "" || strings.HasPrefix(trimmed, ":") {
		return false
	}
	_, err := syntax.Parse(src)
	var perr *syntax.ParseError
	return errors.As(err, &perr) && perr.Incomplete()
}
