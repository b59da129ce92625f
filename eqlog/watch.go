package eqlog

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/gnolang/eqlog/scanner"
)

// Watcher re-runs programs whenever they are written.
type Watcher struct {
	engine   ProgramEngine
	watcher  *fsnotify.Watcher
	logger   *zap.Logger
	out      io.Writer
	filter   *scanner.Scanner
	debounce time.Duration

	mu      sync.Mutex
	targets map[string]bool
	pending map[string]*time.Timer
}

func NewWatcher(engine ProgramEngine, out io.Writer, logger *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		engine:   engine,
		watcher:  fw,
		logger:   logger,
		out:      out,
		filter:   scanner.New("", scanner.ProgramExtensions...),
		debounce: 100 * time.Millisecond,
		targets:  make(map[string]bool),
		pending:  make(map[string]*time.Timer),
	}, nil
}

// Add watches a program file, or every directory below path. A watched
// file is run once immediately.
func (w *Watcher) Add(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		w.mu.Lock()
		w.targets[filepath.Clean(path)] = true
		w.mu.Unlock()
		if err := w.watcher.Add(filepath.Dir(path)); err != nil {
			return fmt.Errorf("error adding directory to watcher: %w", err)
		}
		w.rerun(path)
		return nil
	}

	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.watcher.Add(p)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("error adding directory to watcher: %w", err)
	}
	return nil
}

// Run handles events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) Close() error {
	w.mu.Lock()
	for name, t := range w.pending {
		t.Stop()
		delete(w.pending, name)
	}
	w.mu.Unlock()
	return w.watcher.Close()
}

// handle schedules a run for a written program. Bursts of writes to the
// same file within the debounce window cause one run.
func (w *Watcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	if !w.wants(event.Name) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[event.Name]; ok {
		t.Reset(w.debounce)
		return
	}
	name := event.Name
	w.pending[name] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, name)
		w.mu.Unlock()
		w.rerun(name)
	})
}

func (w *Watcher) wants(name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.targets) > 0 {
		return w.targets[filepath.Clean(name)]
	}
	return w.filter.IsTarget(name)
}

func (w *Watcher) rerun(path string) {
	out, err := w.engine.RunFile(path)
	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.logger.Error("Error running program", zap.String("file", path), zap.Error(err))
		fmt.Fprintf(w.out, "%% %s: %v\n", path, err)
		return
	}
	fmt.Fprintf(w.out, "%% %s\n%s", path, out.Report)
}
