package main

import (
	"github.com/spf13/cobra"

	"object-mapper/internal/plan"
	"object-mapper/mapper"
)

type planFlags struct {
	source      string
	target      string
	ruleSet     string
	format      string
	suggestions bool
}

func planCmd(g *globalFlags) *cobra.Command {
	f := &planFlags{}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the mapping plan between two types",
		Long: `Compile the plan mapping the source type onto the target type under a rule set,
together with the plans it uses, and print it.

Members without a data source are listed as "// No data source for X" comments.
With --suggestions a mapping file is printed instead, pinning the closest source
member for each of them, ready to be reviewed and passed back with --config.`,
		Example: `  mapplan plan --source store.Order --target warehouse.Order
  mapplan plan -s store.Order -t warehouse.Order -r merge --format yaml
  mapplan plan -s store.Order -t warehouse.Order --suggestions > mapping.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlan(cmd, g, f)
		},
	}

	cmd.Flags().StringVarP(&f.source, "source", "s", "store.Order", "source type")
	cmd.Flags().StringVarP(&f.target, "target", "t", "warehouse.Order", "target type")
	cmd.Flags().StringVarP(&f.ruleSet, "rule-set", "r", "new", "rule set: new, merge or overwrite")
	cmd.Flags().StringVarP(&f.format, "format", "f", "text", "output format: text, yaml or json")
	cmd.Flags().BoolVar(&f.suggestions, "suggestions", false, "print a mapping file with suggested sources")

	return cmd
}

func runPlan(cmd *cobra.Command, g *globalFlags, f *planFlags) error {
	ruleSet, err := mapper.ParseRuleSet(f.ruleSet)
	if err != nil {
		return err
	}

	format, err := plan.ParseFormat(f.format)
	if err != nil {
		return err
	}

	m, err := g.newMapper(cmd)
	if err != nil {
		return err
	}

	src, tgt, err := typePair(m, f.source, f.target)
	if err != nil {
		return err
	}

	d, err := m.Describe(cmd.Context(), ruleSet, src, tgt)
	if err != nil {
		return err
	}

	var out []byte
	if f.suggestions {
		out, err = plan.ExportSuggestionsYAML(d)
	} else {
		out, err = plan.Export(d, format)
	}

	if err != nil {
		return err
	}

	_, err = cmd.OutOrStdout().Write(out)

	return err
}
