package main

import (
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/xgbpredictor/pkg/log"
)

type leafCmdConfig struct {
	scoreFlags
}

func leafCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &leafCmdConfig{}
	cmd := &cobra.Command{
		Use:   "leaf",
		Short: "Print the leaf each row reaches in every tree",
		Long:  `Load a tree model and write, for each input row, the index of the leaf reached in each tree`,
		RunE: func(cmd *cobra.Command, args []string) error {
			config.merge(cmd, rootConfig.file)
			if err := config.Validate(); err != nil {
				return err
			}
			return config.run(cmd)
		},
	}
	config.register(cmd)
	return cmd
}

func (lcc *leafCmdConfig) run(cmd *cobra.Command) error {
	p, data, err := lcc.loadInput()
	if err != nil {
		return err
	}
	var leaves *mat.Dense
	if data.dense != nil {
		leaves, err = p.PredictLeafBatch(data.dense, lcc.ntreeLimit, lcc.denseOptions()...)
	} else {
		var rows [][]int
		rows, err = p.PredictLeafVectors(data.sparse, lcc.ntreeLimit)
		leaves = leavesToDense(rows)
	}
	if err != nil {
		return err
	}
	log.GetLoggerWithName("xgbpredict").Info("predicted leaves",
		log.OperationKey, log.OperationPredictLeaf,
		log.SamplesKey, data.Len(),
	)
	return writeResult(cmd.OutOrStdout(), lcc.output, lcc.outputFormat, leaves)
}
