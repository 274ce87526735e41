package main

import (
	"os"

	"github.com/spf13/cobra"
	yaml "gopkg.in/yaml.v2"

	"github.com/YuminosukeSato/xgbpredictor/pkg/errors"
)

// fileConfig holds the defaults that may be read from a YAML file passed
// with --config. Pointers tell an unset key from an explicit zero.
type fileConfig struct {
	Model         string `yaml:"model"`
	Input         string `yaml:"input"`
	InputFormat   string `yaml:"input_format"`
	Output        string `yaml:"output"`
	OutputFormat  string `yaml:"output_format"`
	Margin        *bool  `yaml:"margin"`
	NTreeLimit    *int   `yaml:"ntree_limit"`
	ZeroAsMissing *bool  `yaml:"zero_as_missing"`
	Workers       *int   `yaml:"workers"`
	LogLevel      string `yaml:"log_level"`
	LogFormat     string `yaml:"log_format"`
}

func readConfigFile(path string) (fileConfig, error) {
	var fc fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return fc, errors.Wrapf(err, "read config %s", path)
	}
	if err := yaml.UnmarshalStrict(data, &fc); err != nil {
		return fc, errors.Wrapf(err, "parse config %s", path)
	}
	return fc, nil
}

func mergeString(cmd *cobra.Command, flag string, dst *string, v string) {
	if v != "" && !cmd.Flags().Changed(flag) {
		*dst = v
	}
}

func mergeBool(cmd *cobra.Command, flag string, dst *bool, v *bool) {
	if v != nil && !cmd.Flags().Changed(flag) {
		*dst = *v
	}
}

func mergeInt(cmd *cobra.Command, flag string, dst *int, v *int) {
	if v != nil && !cmd.Flags().Changed(flag) {
		*dst = *v
	}
}
