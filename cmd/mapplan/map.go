package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"object-mapper/mapper"
)

type mapFlags struct {
	source  string
	target  string
	ruleSet string
	onto    string
	input   string
	output  string
}

func mapCmd(g *globalFlags) *cobra.Command {
	f := &mapFlags{}

	cmd := &cobra.Command{
		Use:   "map [file]",
		Short: "Map a JSON or YAML document onto the target type",
		Long: `Decode a source document, map it onto the target type and print the result.

The document is read from the file argument, or from stdin when it is omitted or "-".
Files ending in .json are decoded as JSON and everything else as YAML; --input
overrides the guess. With the merge and overwrite rule sets --onto names the document
holding the existing target.`,
		Example: `  mapplan map order.json
  mapplan map -r merge --onto shipment.yaml order.json
  cat order.yaml | mapplan map -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}

			return runMap(cmd, g, f, path)
		},
	}

	cmd.Flags().StringVarP(&f.source, "source", "s", "store.Order", "source type")
	cmd.Flags().StringVarP(&f.target, "target", "t", "warehouse.Order", "target type")
	cmd.Flags().StringVarP(&f.ruleSet, "rule-set", "r", "new", "rule set: new, merge or overwrite")
	cmd.Flags().StringVar(&f.onto, "onto", "", "document holding the existing target")
	cmd.Flags().StringVarP(&f.input, "input", "i", "", "input format: json or yaml (default: by extension)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "yaml", "output format: json or yaml")

	return cmd
}

func runMap(cmd *cobra.Command, g *globalFlags, f *mapFlags, path string) error {
	ruleSet, err := mapper.ParseRuleSet(f.ruleSet)
	if err != nil {
		return err
	}

	m, err := g.newMapper(cmd)
	if err != nil {
		return err
	}

	srcType, tgtType, err := typePair(m, f.source, f.target)
	if err != nil {
		return err
	}

	source := reflect.New(srcType)
	if err := decodeFile(cmd.InOrStdin(), path, f.input, source.Interface()); err != nil {
		return err
	}

	var existing any
	if f.onto != "" {
		target := reflect.New(tgtType)
		if err := decodeFile(cmd.InOrStdin(), f.onto, f.input, target.Interface()); err != nil {
			return err
		}

		existing = target.Interface()
	}

	out, err := m.MapValue(cmd.Context(), ruleSet, source.Interface(), reflect.PointerTo(tgtType), existing)
	if err != nil {
		return err
	}

	return encode(cmd.OutOrStdout(), f.output, out)
}

func decodeFile(stdin io.Reader, path, format string, v any) error {
	var (
		data []byte
		err  error
	)

	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}

	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	if format == "" {
		format = "yaml"
		if strings.EqualFold(filepath.Ext(path), ".json") {
			format = "json"
		}
	}

	switch strings.ToLower(format) {
	case "json":
		err = json.Unmarshal(data, v)
	case "yaml", "yml":
		err = yaml.Unmarshal(data, v)
	default:
		return fmt.Errorf("unknown input format %q (want json or yaml)", format)
	}

	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	return nil
}

func encode(w io.Writer, format string, v any) error {
	switch strings.ToLower(format) {
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}

		_, err = fmt.Fprintf(w, "%s\n", data)

		return err
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		if err := enc.Encode(v); err != nil {
			return err
		}

		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (want json or yaml)", format)
	}
}
