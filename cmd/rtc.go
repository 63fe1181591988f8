package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/Seann-Moser/servoclock/pkg/ds3231"
)

var setNow bool

var rtcCmd = &cobra.Command{
	Use:   "rtc",
	Short: "Print the RTC time, or set it from the system clock",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		regs, err := openBus()
		if err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, regs.Close()) }()
		rtc := ds3231.New(regs, cfg.RTC.Address)
		if setNow {
			if err := rtc.SetTime(ds3231.FromTime(time.Now())); err != nil {
				return err
			}
		}
		now, err := rtc.Now()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), now)
		return nil
	},
}

func init() {
	rtcCmd.Flags().BoolVar(&setNow, "set-now", false, "write the system time to the RTC first")
	rootCmd.AddCommand(rtcCmd)
}
