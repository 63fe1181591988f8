/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Seann-Moser/servoclock/pkg/config"
	"github.com/Seann-Moser/servoclock/pkg/logging"
)

var (
	configPath string
	logLevel   string
	busName    string

	cfg       config.Config
	logger    = zap.NewNop().Sugar()
	closeLog  = func() error { return nil }
	newLogger = logging.New
)

var rootCmd = &cobra.Command{
	Use:   "servoclock",
	Short: "Drive a two-face seven-segment servo clock",
	Long: `servoclock shows the time from a DS3231 RTC on two PCA9685 boards,
each moving fourteen servos as a pair of seven-segment digits.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			cfg.Log.Level = logLevel
		}
		if cmd.Flags().Changed("bus") {
			cfg.Bus.Name = busName
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		logger, closeLog, err = newLogger(cfg.Log)
		return err
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := execute(); err != nil {
		os.Exit(1)
	}
}

// execute runs the command and then flushes and closes the log, whether or
// not the command failed.
func execute() error {
	err := rootCmd.Execute()
	if err != nil {
		logger.Errorw("command failed", "error", err)
	}
	return multierr.Append(err, closeLog())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&busName, "bus", "", "I2C bus name, overrides the config file")
}
