package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/xgbpredictor/pkg/errors"
	"github.com/YuminosukeSato/xgbpredictor/pkg/log"
	"github.com/YuminosukeSato/xgbpredictor/xgboost/gbm"
)

type renderCmdConfig struct {
	model  string
	output string
	format string
	tree   int
}

func renderCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &renderCmdConfig{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Draw a tree with graphviz",
		Long:  `Render one tree of a tree model as a graphviz dot file or as an image`,
		RunE: func(cmd *cobra.Command, args []string) error {
			mergeString(cmd, "model", &config.model, rootConfig.file.Model)
			if err := config.Validate(); err != nil {
				return err
			}
			return config.run(cmd)
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.model), "model", "m", "", "path to the XGBoost binary model (required)")
	cmd.PersistentFlags().StringVarP(&(config.output), "output", "o", "", "path to write the drawing to (default: stdout)")
	cmd.PersistentFlags().StringVarP(&(config.format), "format", "f", "", "dot, svg, png or jpg (default: from the extension, else dot)")
	cmd.PersistentFlags().IntVarP(&(config.tree), "tree", "t", 0, "index of the tree to draw")
	return cmd
}

func (rcc *renderCmdConfig) Validate() error {
	if rcc.model == "" {
		return errors.NewValidationError("model", "required flag was not set", rcc.model)
	}
	if rcc.tree < 0 {
		return errors.NewValidationError("tree", "must not be negative", rcc.tree)
	}
	if rcc.format == "" {
		rcc.format = strings.TrimPrefix(strings.ToLower(filepath.Ext(rcc.output)), ".")
		if _, ok := gbm.RenderFormats[rcc.format]; !ok {
			rcc.format = "dot"
		}
	}
	_, err := gbm.ParseRenderFormat(rcc.format)
	return err
}

func (rcc *renderCmdConfig) run(cmd *cobra.Command) error {
	p, err := loadModel(rcc.model, 0)
	if err != nil {
		return err
	}
	e, ok := p.Booster().(*gbm.TreeEnsemble)
	if !ok {
		return errors.NewValidationError("model", "only tree models can be rendered", p.BoosterName())
	}
	if rcc.tree >= e.NumTrees() {
		return errors.NewValidationError("tree", "model has fewer trees", rcc.tree)
	}
	format, err := gbm.ParseRenderFormat(rcc.format)
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if rcc.output != "" {
		f, err := os.Create(rcc.output)
		if err != nil {
			return errors.Wrapf(err, "create output %s", rcc.output)
		}
		defer f.Close()
		w = f
	}
	if err := e.Tree(rcc.tree).Render(w, format); err != nil {
		return err
	}
	log.GetLoggerWithName("xgbpredict").Debug("rendered tree",
		log.OperationKey, log.OperationRender,
		"tree", rcc.tree,
		"format", rcc.format,
	)
	return nil
}
