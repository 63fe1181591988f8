package cmd

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/Seann-Moser/servoclock/pkg/bus"
	"github.com/Seann-Moser/servoclock/pkg/pca9685"
)

var freqCmd = &cobra.Command{
	Use:   "freq <minutes|hours> [hz]",
	Short: "Print or set the PWM frequency of one board",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		face, err := faceConfig(args[0])
		if err != nil {
			return err
		}
		regs, err := openBus()
		if err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, regs.Close()) }()
		ctrl, err := pca9685.New(regs, face.Address, pca9685.WithLogger(logger.Named(args[0])))
		if err != nil {
			return err
		}
		if len(args) == 2 {
			hz, err := strconv.Atoi(args[1])
			if err != nil {
				return errors.Wrapf(bus.ErrConfiguration, "frequency %q", args[1])
			}
			if err := ctrl.SetFrequency(hz); err != nil {
				return err
			}
		}
		hz, err := ctrl.Frequency()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s 0x%02X %d Hz\n", args[0], face.Address, hz)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(freqCmd)
}
