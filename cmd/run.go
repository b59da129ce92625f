package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/gnolang/eqlog/eqlog"
	"github.com/gnolang/eqlog/internal/report"
)

var (
	proof     bool
	graphPath string
	colorOut  bool
	iterLimit int
	nodeLimit int
	timeLimit time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run [paths...]",
	Short: "Run programs and print the answers to their queries",
	Long: `Run programs and print the answers to their queries.

With no paths the program is read from standard input. Directories are
searched for .eql and .pl files.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		engine, err := newEngine()
		if err != nil {
			return fmt.Errorf("initializing engine: %w", err)
		}
		return runPrograms(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), engine, args)
	},
}

func init() {
	addRunFlags(runCmd.Flags())
}

func addRunFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&proof, "proof", false, "Print a proof for every equality in an answer")
	fs.StringVar(&graphPath, "graph", "", "Write the saturated e-graph in GraphViz format to this path")
	fs.BoolVar(&colorOut, "color", false, "Color the output")
	fs.IntVar(&iterLimit, "iter-limit", 0, "Maximum saturation iterations (0 uses the configured value)")
	fs.IntVar(&nodeLimit, "node-limit", 0, "Maximum e-graph nodes (0 uses the configured value)")
	fs.DurationVar(&timeLimit, "time-limit", 0, "Maximum saturation time per program (0 uses the configured value)")
}

func newEngine() (*eqlog.Engine, error) {
	if err := setupLogger(); err != nil {
		return nil, err
	}
	path := cfgFile
	if path == "" {
		if _, err := os.Stat(eqlog.DefaultConfigFile); err == nil {
			path = eqlog.DefaultConfigFile
		}
	}
	return eqlog.New(path, eqlog.Options{
		Verbose: verbose,
		Proof:   proof,
		Graph:   graphPath,
		Color:   colorOut,
		Limits:  eqlog.Limits{Iterations: iterLimit, Nodes: nodeLimit, Time: timeLimit},
		Logger:  logger,
	})
}

func runPrograms(ctx context.Context, in io.Reader, out, errOut io.Writer, engine eqlog.ProgramEngine, paths []string) error {
	if len(paths) == 0 {
		src, err := io.ReadAll(in)
		if err != nil {
			return fmt.Errorf("reading standard input: %w", err)
		}
		outcome, err := engine.RunSource(src)
		if err != nil {
			printError(errOut, "", string(src), err)
			return errors.New("program failed")
		}
		fmt.Fprint(out, outcome.Report)
		return nil
	}

	outcomes, err := eqlog.ProcessFiles(ctx, logger, engine, paths)
	if err != nil {
		return err
	}

	failed := 0
	for _, o := range outcomes {
		if len(outcomes) > 1 {
			fmt.Fprintf(out, "%% %s\n", o.Filename)
		}
		if o.Err != nil {
			printError(errOut, o.Filename, "", o.Err)
			failed++
			continue
		}
		fmt.Fprint(out, o.Report)
	}
	if failed > 0 {
		if logger != nil {
			logger.Warn("some programs failed", zap.Int("failed", failed), zap.Int("total", len(outcomes)))
		}
		return fmt.Errorf("%d of %d programs failed", failed, len(outcomes))
	}
	return nil
}

// printError renders err with the source it points into, when known.
func printError(w io.Writer, filename, source string, err error) {
	var serr *eqlog.SourceError
	if errors.As(err, &serr) {
		filename, source, err = serr.Filename, serr.Source, serr.Err
	}
	fmt.Fprint(w, report.FormatError(filename, source, err, colorOut))
}
