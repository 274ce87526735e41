package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/xgbpredictor/pkg/errors"
	"github.com/YuminosukeSato/xgbpredictor/xgboost/gbm"
)

type dumpCmdConfig struct {
	model     string
	output    string
	withStats bool
}

func dumpCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &dumpCmdConfig{}
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the model as text",
		Long:  `Print every tree of a tree model, or the weights of a linear model, in the text format of xgboost's dump_model`,
		RunE: func(cmd *cobra.Command, args []string) error {
			mergeString(cmd, "model", &config.model, rootConfig.file.Model)
			if err := config.Validate(); err != nil {
				return err
			}
			return config.run(cmd)
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.model), "model", "m", "", "path to the XGBoost binary model (required)")
	cmd.PersistentFlags().StringVarP(&(config.output), "output", "o", "", "path to write the dump to (default: stdout)")
	cmd.PersistentFlags().BoolVar(&(config.withStats), "with-stats", false, "include gain and cover of every node")
	return cmd
}

func (dcc *dumpCmdConfig) Validate() error {
	if dcc.model == "" {
		return errors.NewValidationError("model", "required flag was not set", dcc.model)
	}
	return nil
}

func (dcc *dumpCmdConfig) run(cmd *cobra.Command) error {
	p, err := loadModel(dcc.model, 0)
	if err != nil {
		return err
	}
	dumps, err := gbm.DumpBooster(p.Booster(), dcc.withStats)
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if dcc.output != "" {
		f, err := os.Create(dcc.output)
		if err != nil {
			return errors.Wrapf(err, "create output %s", dcc.output)
		}
		defer f.Close()
		w = f
	}
	tree := p.BoosterName() != gbm.NameGBLinear
	for i, d := range dumps {
		if tree {
			if _, err := fmt.Fprintf(w, "booster[%d]:\n", i); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, d); err != nil {
			return err
		}
	}
	return nil
}
