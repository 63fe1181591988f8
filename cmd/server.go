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

var listenAddr string

var serverCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API without the clock loop",
	Long: `serve exposes the status, face, calibration and RTC endpoints without
polling the RTC, so faces keep whatever was last written. Useful when
calibrating segment duties.`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigs)

		addr := cfg.HTTP.Listen
		if cmd.Flags().Changed("listen") {
			addr = listenAddr
		}
		if addr == "" {
			return errors.New("no listen address")
		}

		hw, err := openHardware()
		if err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, hw.Close()) }()
		if err := hw.Enable(); err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		go func() {
			select {
			case <-sigs:
				cancel()
			case <-ctx.Done():
			}
		}()
		return hw.controller().Serve(ctx, addr)
	},
}

func init() {
	serverCmd.Flags().StringVar(&listenAddr, "listen", "", "listen address, overrides the config file")
	rootCmd.AddCommand(serverCmd)
}
