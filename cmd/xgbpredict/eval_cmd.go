package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/xgbpredictor/metrics"
	"github.com/YuminosukeSato/xgbpredictor/pkg/errors"
	"github.com/YuminosukeSato/xgbpredictor/pkg/log"
)

type evalCmdConfig struct {
	scoreFlags
	metric      string
	labelColumn int
}

func evalCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &evalCmdConfig{}
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate a model on labelled rows",
		Long: `Score labelled rows and print an evaluation metric. Labels are the first token of
libsvm lines, or the --label-column of csv and npy input.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			config.merge(cmd, rootConfig.file)
			if err := config.Validate(); err != nil {
				return err
			}
			return config.run(cmd)
		},
	}
	config.register(cmd)
	cmd.PersistentFlags().StringVar(&(config.metric), "metric", "", "one of "+strings.Join(metrics.Names(), ", ")+" (default: from the objective)")
	cmd.PersistentFlags().IntVar(&(config.labelColumn), "label-column", 0, "column holding the label in csv and npy input")
	return cmd
}

func (ecc *evalCmdConfig) run(cmd *cobra.Command) error {
	p, data, err := ecc.loadInput()
	if err != nil {
		return err
	}
	metric := ecc.metric
	if metric == "" {
		metric = metrics.Default(p.ObjectiveName())
		if metric == "" {
			return errors.NewValidationError("metric", "objective has no default metric, set --metric", p.ObjectiveName())
		}
	}

	var (
		preds  *mat.Dense
		labels []float64
	)
	if data.dense != nil {
		var X *mat.Dense
		X, labels, err = splitLabel(data.dense, ecc.labelColumn)
		if err != nil {
			return err
		}
		if _, c := X.Dims(); c == 0 {
			return errors.NewValidationError("input", "no feature columns besides the label", ecc.input)
		}
		preds, err = p.PredictBatch(X, false, ecc.ntreeLimit, ecc.denseOptions()...)
	} else {
		labels = data.labels
		for i, y := range labels {
			if math.IsNaN(y) {
				return errors.NewValidationError("input", fmt.Sprintf("line %d has no label", i+1), ecc.input)
			}
		}
		var rows [][]float64
		rows, err = p.PredictVectors(data.sparse, false, ecc.ntreeLimit)
		preds = rowsToDense(rows)
	}
	if err != nil {
		return err
	}

	score, err := metrics.Evaluate(metric, mat.NewVecDense(len(labels), labels), preds)
	if err != nil {
		return err
	}
	log.GetLoggerWithName("xgbpredict").Info("evaluated",
		log.OperationKey, "eval",
		log.SamplesKey, len(labels),
		"metric", metric,
	)
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%g\n", metric, score)
	return err
}
