package plan

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"object-mapper/internal/common"
	"object-mapper/internal/diagnostic"
	"object-mapper/internal/mapping"
)

// Format selects how a description is exported.
type Format string

const (
	FormatText Format = "text"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatYAML, FormatJSON:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, yaml or json)", s)
	}
}

// Export renders d in format f.
func Export(d *Description, f Format) ([]byte, error) {
	switch f {
	case FormatText, "":
		return []byte(d.Text()), nil
	case FormatYAML:
		return yaml.Marshal(d)
	case FormatJSON:
		return json.MarshalIndent(d, "", "  ")
	default:
		return nil, fmt.Errorf("unknown format %q", f)
	}
}

// ExportSuggestions generates a mapping file pinning the best suggested source member
// for every target member that has no data source. It allows users to review and
// approve suggestions instead of writing the mapping from scratch.
func ExportSuggestions(d *Description) *mapping.File {
	f := &mapping.File{Version: "1"}
	index := make(map[string]int)

	for _, pd := range d.Plans {
		target := pd.Target
		if pd.Root != "" {
			target = pd.Root
		}

		for _, diag := range pd.Diagnostics {
			best, ok := common.First(diag.Suggestions)
			if diag.Code != diagnostic.CodeNoDataSource || !ok {
				continue
			}

			key := pd.RuleSet + " " + pd.Source + "->" + target

			i, ok := index[key]
			if !ok {
				i = len(f.Mappings)
				index[key] = i
				f.Mappings = append(f.Mappings, mapping.TypeMapping{
					Source:   pd.Source,
					Target:   target,
					RuleSets: mapping.StringArray{pd.RuleSet},
				})
			}

			f.Mappings[i].Fields = append(f.Mappings[i].Fields, mapping.FieldMapping{
				Target: diag.FieldPath,
				Source: best,
			})
		}
	}

	return f
}

// ExportSuggestionsYAML generates the suggested mapping file as YAML.
func ExportSuggestionsYAML(d *Description) ([]byte, error) {
	data, err := mapping.Marshal(ExportSuggestions(d))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal suggestions: %w", err)
	}

	return data, nil
}
