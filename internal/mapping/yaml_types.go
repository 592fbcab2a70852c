package mapping

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// UnmarshalYAML accepts either a single string or an array of strings.
func (s *StringArray) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var str string

		if err := node.Decode(&str); err != nil {
			return err
		}

		*s = nil
		if str != "" {
			*s = StringArray{str}
		}

		return nil

	case yaml.SequenceNode:
		var arr []string

		if err := node.Decode(&arr); err != nil {
			return err
		}

		*s = arr

		return nil

	default:
		return fmt.Errorf("expected string or array, got %v", node.Kind)
	}
}

// MarshalYAML outputs a single string if length is 1, otherwise an array.
func (s StringArray) MarshalYAML() (any, error) {
	if len(s) == 1 {
		return s[0], nil
	}

	return []string(s), nil
}

// UnmarshalTOML accepts either a single string or an array of strings.
func (s *StringArray) UnmarshalTOML(data any) error {
	switch v := data.(type) {
	case string:
		*s = nil
		if v != "" {
			*s = StringArray{v}
		}

		return nil

	case []any:
		arr := make(StringArray, 0, len(v))

		for _, item := range v {
			str, ok := item.(string)
			if !ok {
				return fmt.Errorf("expected string in array, got %T", item)
			}

			arr = append(arr, str)
		}

		*s = arr

		return nil

	default:
		return fmt.Errorf("expected string or array, got %T", data)
	}
}
