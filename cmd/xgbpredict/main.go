// Command xgbpredict loads a legacy XGBoost binary model and scores data
// with it, dumps its trees or renders them with graphviz.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/xgbpredictor/pkg/errors"
	"github.com/YuminosukeSato/xgbpredictor/pkg/log"
)

type rootCmdConfig struct {
	configFile string
	logLevel   string
	logFormat  string
	file       fileConfig
}

func main() {
	if err := cliParser(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "xgbpredict:", err)
		os.Exit(1)
	}
}

func cliParser(stdout, stderr io.Writer) *cobra.Command {
	config := &rootCmdConfig{}
	rootCmd := &cobra.Command{
		Use:           "xgbpredict",
		Short:         "xgbpredict scores data with XGBoost binary models",
		Long:          `A tool to inspect legacy XGBoost binary models and predict with them without the XGBoost library`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.setup(cmd, stderr)
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.PersistentFlags().StringVarP(&config.configFile, "config", "c", "", "path to a YAML file with default values for the flags")
	rootCmd.PersistentFlags().StringVar(&config.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&config.logFormat, "log-format", string(log.FormatConsole), "log format: json or console")
	rootCmd.AddCommand(
		versionCmd(),
		predictCmd(config),
		leafCmd(config),
		dumpCmd(config),
		renderCmd(config),
		infoCmd(config),
		evalCmd(config),
	)
	return rootCmd
}

// setup reads the config file and installs the logger. Flags given on the
// command line win over file values.
func (rc *rootCmdConfig) setup(cmd *cobra.Command, stderr io.Writer) error {
	if rc.configFile != "" {
		fc, err := readConfigFile(rc.configFile)
		if err != nil {
			return err
		}
		rc.file = fc
		if !cmd.Flags().Changed("log-level") && fc.LogLevel != "" {
			rc.logLevel = fc.LogLevel
		}
		if !cmd.Flags().Changed("log-format") && fc.LogFormat != "" {
			rc.logFormat = fc.LogFormat
		}
	}

	level, err := log.ParseLevel(rc.logLevel)
	if err != nil {
		return errors.NewValidationError("log-level", err.Error(), rc.logLevel)
	}
	var logger log.Logger
	switch format := log.Format(rc.logFormat); format {
	case log.FormatJSON, log.FormatConsole:
		logger = log.NewZerologLogger(stderr, level, format)
	default:
		return errors.NewValidationError("log-format", "must be json or console", rc.logFormat)
	}
	log.SetLogger(logger)
	log.InstallWarningSink(logger)
	return nil
}
