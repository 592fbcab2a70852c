package main

import (
	"fmt"

	goversion "github.com/caarlos0/go-version"
	"github.com/spf13/cobra"

	"object-mapper/utils"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), buildVersion().String())

			return err
		},
	}
}

func buildVersion() goversion.Info {
	return goversion.GetVersionInfo(
		goversion.WithAppDetails("mapplan", "Inspect object mapping plans", ""),
		func(i *goversion.Info) {
			i.GitVersion = utils.Coalesce(version, i.GitVersion)
			i.GitCommit = utils.Coalesce(commit, i.GitCommit)
			i.GitTreeState = utils.Coalesce(treeState, i.GitTreeState)
			i.BuildDate = utils.Coalesce(date, i.BuildDate)
			i.BuiltBy = utils.Coalesce(builtBy, i.BuiltBy)
		},
	)
}
