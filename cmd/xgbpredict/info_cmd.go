package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/xgbpredictor/pkg/errors"
	"github.com/YuminosukeSato/xgbpredictor/xgboost/gbm"
	"github.com/YuminosukeSato/xgbpredictor/xgboost/objective"
)

type infoCmdConfig struct {
	model string
}

func infoCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &infoCmdConfig{}
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Describe a model",
		Long:  "Print the header parameters, objective and booster of a model.\nSupported objectives: " + strings.Join(objective.Names(), ", "),
		RunE: func(cmd *cobra.Command, args []string) error {
			mergeString(cmd, "model", &config.model, rootConfig.file.Model)
			if config.model == "" {
				return errors.NewValidationError("model", "required flag was not set", config.model)
			}
			return config.run(cmd)
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.model), "model", "m", "", "path to the XGBoost binary model (required)")
	return cmd
}

func (icc *infoCmdConfig) run(cmd *cobra.Command) error {
	p, err := loadModel(icc.model, 0)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	param := p.Param()
	fmt.Fprintf(tw, "dialect:\t%s\n", param.Dialect)
	fmt.Fprintf(tw, "objective:\t%s\n", p.ObjectiveName())
	fmt.Fprintf(tw, "booster:\t%s\n", p.BoosterName())
	fmt.Fprintf(tw, "base_score:\t%g\n", param.BaseScore)
	fmt.Fprintf(tw, "num_feature:\t%d\n", param.NumFeature)
	fmt.Fprintf(tw, "num_class:\t%d\n", param.NumClass)
	fmt.Fprintf(tw, "num_output_group:\t%d\n", p.NumOutputGroup())
	if e, ok := p.Booster().(*gbm.TreeEnsemble); ok {
		fmt.Fprintf(tw, "num_trees:\t%d\n", e.NumTrees())
		fmt.Fprintf(tw, "dart:\t%t\n", e.IsDart())
	}
	return tw.Flush()
}
