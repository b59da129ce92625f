package eqlog

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gnolang/eqlog/internal/syntax"
)

// loader expands include directives. Each file is read once per run, so
// include cycles end at the first repeat.
type loader struct {
	seen map[string]bool
}

func newLoader() *loader {
	return &loader{seen: make(map[string]bool)}
}

func (l *loader) load(filename, source string) ([]syntax.Entry, error) {
	if filename != "" {
		if abs, err := filepath.Abs(filename); err == nil {
			l.seen[abs] = true
		}
	}

	entries, err := syntax.Parse(source)
	if err != nil {
		return nil, &SourceError{Filename: filename, Source: source, Err: err}
	}

	out := make([]syntax.Entry, 0, len(entries))
	for _, e := range entries {
		d, ok := e.(syntax.Directive)
		if !ok {
			out = append(out, e)
			continue
		}
		included, err := l.include(filename, d.Include)
		if err != nil {
			return nil, err
		}
		out = append(out, included...)
	}
	return out, nil
}

// include resolves target relative to the directory of the including
// file, or the working directory for unnamed sources.
func (l *loader) include(from, target string) ([]syntax.Entry, error) {
	path := target
	if !filepath.IsAbs(path) && from != "" {
		path = filepath.Join(filepath.Dir(from), target)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving include %q: %w", target, err)
	}
	if l.seen[abs] {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("including %q: %w", target, err)
	}
	return l.load(path, string(data))
}
