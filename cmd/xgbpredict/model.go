package main

import (
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/xgbpredictor/pkg/errors"
	"github.com/YuminosukeSato/xgbpredictor/pkg/log"
	"github.com/YuminosukeSato/xgbpredictor/xgboost"
	"github.com/YuminosukeSato/xgbpredictor/xgboost/fvec"
)

// scoreFlags are shared by the commands that run a model over input rows.
type scoreFlags struct {
	model         string
	input         string
	inputFormat   string
	output        string
	outputFormat  string
	ntreeLimit    int
	zeroAsMissing bool
	workers       int
}

func (sf *scoreFlags) register(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&(sf.model), "model", "m", "", "path to the XGBoost binary model (required)")
	cmd.PersistentFlags().StringVarP(&(sf.input), "input", "i", "", "path to the rows to score (required)")
	cmd.PersistentFlags().StringVar(&(sf.inputFormat), "input-format", "", "input format: libsvm, csv or npy (default: from the extension)")
	cmd.PersistentFlags().StringVarP(&(sf.output), "output", "o", "", "path to write results to (default: stdout)")
	cmd.PersistentFlags().StringVar(&(sf.outputFormat), "output-format", "", "output format: text, csv or npy (default: from the extension)")
	cmd.PersistentFlags().IntVarP(&(sf.ntreeLimit), "ntree-limit", "n", 0, "use only the first n trees, 0 for all")
	cmd.PersistentFlags().BoolVar(&(sf.zeroAsMissing), "zero-as-missing", false, "treat 0 cells of dense input as missing")
	cmd.PersistentFlags().IntVarP(&(sf.workers), "workers", "w", 0, "number of goroutines scoring rows, 0 for one per CPU")
}

func (sf *scoreFlags) merge(cmd *cobra.Command, fc fileConfig) {
	mergeString(cmd, "model", &sf.model, fc.Model)
	mergeString(cmd, "input", &sf.input, fc.Input)
	mergeString(cmd, "input-format", &sf.inputFormat, fc.InputFormat)
	mergeString(cmd, "output", &sf.output, fc.Output)
	mergeString(cmd, "output-format", &sf.outputFormat, fc.OutputFormat)
	mergeInt(cmd, "ntree-limit", &sf.ntreeLimit, fc.NTreeLimit)
	mergeBool(cmd, "zero-as-missing", &sf.zeroAsMissing, fc.ZeroAsMissing)
	mergeInt(cmd, "workers", &sf.workers, fc.Workers)
}

func (sf *scoreFlags) Validate() error {
	if sf.model == "" {
		return errors.NewValidationError("model", "required flag was not set", sf.model)
	}
	if sf.input == "" {
		return errors.NewValidationError("input", "required flag was not set", sf.input)
	}
	if sf.ntreeLimit < 0 {
		return errors.NewValidationError("ntree-limit", "must not be negative", sf.ntreeLimit)
	}
	if sf.workers < 0 {
		return errors.NewValidationError("workers", "must not be negative", sf.workers)
	}
	return nil
}

func (sf *scoreFlags) denseOptions() []fvec.DenseOption {
	return []fvec.DenseOption{fvec.WithZeroAsMissing(sf.zeroAsMissing)}
}

func loadModel(path string, workers int) (*xgboost.Predictor, error) {
	opts := []xgboost.Option{xgboost.WithLogger(log.GetLoggerWithName("xgbpredict"))}
	if workers > 0 {
		opts = append(opts, xgboost.WithWorkers(workers))
	}
	return xgboost.LoadFromFile(path, opts...)
}

// loadInput reads the model and the rows for a scoring command.
func (sf *scoreFlags) loadInput() (*xgboost.Predictor, *dataset, error) {
	p, err := loadModel(sf.model, sf.workers)
	if err != nil {
		return nil, nil, err
	}
	data, err := readDataset(sf.input, sf.inputFormat)
	if err != nil {
		return nil, nil, err
	}
	if data.Len() == 0 {
		return nil, nil, errors.NewValidationError("input", "no rows to score", sf.input)
	}
	return p, data, nil
}
