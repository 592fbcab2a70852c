package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func typesCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the types plans can be compiled for",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := g.newMapper(cmd)
			if err != nil {
				return err
			}

			for _, name := range m.TypeNames() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
					return err
				}
			}

			return nil
		},
	}
}
