package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Show the RTC time on both faces",
	Long: `run enables the servo outputs and redraws the minutes and hours faces
every time the RTC second changes. The HTTP API is served alongside unless
http.listen is empty. Stops on SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigs)

		hw, err := openHardware()
		if err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, hw.Close()) }()
		if err := hw.Enable(); err != nil {
			return err
		}

		c := hw.controller()
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		go func() {
			select {
			case <-sigs:
				cancel()
			case <-ctx.Done():
			}
		}()

		if err := c.Refresh(); err != nil {
			logger.Warnw("initial update failed", "error", err)
		}
		if err := c.RunAndServe(ctx, cfg.HTTP.Listen); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		logger.Info("servoclock stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
