package eqlog

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gnolang/eqlog/scanner"
)

// ProgressOutput receives the progress bar of directory runs.
var ProgressOutput io.Writer = os.Stderr

// ProcessFiles runs every program named by paths. Directories are
// searched for program files. Outcomes keep the order of paths, and
// within a directory the order of file names.
func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	engine ProgramEngine,
	paths []string,
) ([]*Outcome, error) {
	var all []*Outcome
	for _, path := range paths {
		outcomes, err := ProcessPath(ctx, logger, engine, path)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			}
			return nil, err
		}
		all = append(all, outcomes...)
	}
	return all, nil
}

// ProcessPath runs one file, or every program file under a directory.
// A program that fails is reported through Outcome.Err and does not stop
// the others.
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	engine ProgramEngine,
	path string,
) ([]*Outcome, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}

	if !info.IsDir() {
		return []*Outcome{runOne(logger, engine, path)}, nil
	}

	files, err := scanner.New(path, scanner.ProgramExtensions...).Scan()
	if err != nil {
		return nil, fmt.Errorf("error scanning %s: %w", path, err)
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(ProgressOutput),
		progressbar.OptionSetDescription(path),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	outcomes := make([]*Outcome, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			outcomes[i] = runOne(logger, engine, f.Path)
			_ = bar.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	_ = bar.Finish()
	return outcomes, nil
}

func runOne(logger *zap.Logger, engine ProgramEngine, path string) *Outcome {
	out, err := engine.RunFile(path)
	if err != nil {
		logger.Error("Error running program", zap.String("file", path), zap.Error(err))
		return &Outcome{Filename: path, Err: err}
	}
	return out
}
