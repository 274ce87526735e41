package main

import (
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/xgbpredictor/pkg/log"
)

type predictCmdConfig struct {
	scoreFlags
	margin   bool
	plotFile string
}

func predictCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &predictCmdConfig{}
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Score rows with a model",
		Long:  `Load a model and write one line of predictions per input row. Multiclass models write one column per class unless the objective picks the class.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			config.merge(cmd, rootConfig.file)
			mergeBool(cmd, "margin", &config.margin, rootConfig.file.Margin)
			if err := config.Validate(); err != nil {
				return err
			}
			return config.run(cmd)
		},
	}
	config.register(cmd)
	cmd.PersistentFlags().BoolVar(&(config.margin), "margin", false, "write raw margins instead of transformed predictions")
	cmd.PersistentFlags().StringVar(&(config.plotFile), "plot", "", "path to a PNG or SVG histogram of the first output column")
	return cmd
}

func (pcc *predictCmdConfig) run(cmd *cobra.Command) error {
	p, data, err := pcc.loadInput()
	if err != nil {
		return err
	}
	logger := log.GetLoggerWithName("xgbpredict")
	start := time.Now()

	var preds *mat.Dense
	if data.dense != nil {
		preds, err = p.PredictBatch(data.dense, pcc.margin, pcc.ntreeLimit, pcc.denseOptions()...)
	} else {
		var rows [][]float64
		rows, err = p.PredictVectors(data.sparse, pcc.margin, pcc.ntreeLimit)
		preds = rowsToDense(rows)
	}
	if err != nil {
		return err
	}
	logger.Info("predicted",
		log.OperationKey, log.OperationPredict,
		log.SamplesKey, data.Len(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)

	if pcc.plotFile != "" {
		if err := saveHistogram(pcc.plotFile, p.ObjectiveName(), preds); err != nil {
			return err
		}
	}
	return writeResult(cmd.OutOrStdout(), pcc.output, pcc.outputFormat, preds)
}
