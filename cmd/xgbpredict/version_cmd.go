package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const (
	VersionMajor = 0
	VersionMinor = 3
	VersionPatch = 0
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of xgbpredict",
		Long:  `Print the version number of xgbpredict`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "xgbpredict v%d.%d.%d\n", VersionMajor, VersionMinor, VersionPatch)
			return nil
		},
	}
}
