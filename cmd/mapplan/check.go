package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func checkCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Check a mapping file against the demo types without loading it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := g.newMapper(cmd)
			if err != nil {
				return err
			}

			diags, err := m.CheckConfigFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			for _, d := range diags.All() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), d.String()); err != nil {
					return err
				}
			}

			if err := diags.Error(); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", args[0])

			return err
		},
	}
}
