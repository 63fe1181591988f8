package cmd

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/Seann-Moser/servoclock/pkg/bus"
)

var writeCmd = &cobra.Command{
	Use:   "write <minutes|hours> <number>",
	Short: "Show a number from 0 to 99 on one face",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		number, err := strconv.Atoi(args[1])
		if err != nil {
			return errors.Wrapf(bus.ErrConfiguration, "number %q", args[1])
		}
		regs, err := openBus()
		if err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, regs.Close()) }()
		face, err := openFace(regs, args[0])
		if err != nil {
			return err
		}
		if err := face.Write(number); err != nil {
			return err
		}
		logger.Infow("wrote face", "face", args[0], "number", number)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(writeCmd)
}
