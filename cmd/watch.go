package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/eqlog/eqlog"
)

var watchCmd = &cobra.Command{
	Use:   "watch [paths...]",
	Short: "Re-run programs whenever they change",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return err
		}

		w, err := eqlog.NewWatcher(engine, cmd.OutOrStdout(), logger)
		if err != nil {
			return err
		}
		defer w.Close()

		for _, path := range args {
			if err := w.Add(path); err != nil {
				return err
			}
			logger.Debug("watching", zap.String("path", path))
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	addRunFlags(watchCmd.Flags())
}
