package mapping

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	yaml := `
version: "1"
mappings:
  - source: store.Order
    target: warehouse.Order
    rule_sets: merge
    121:
      OrderID: ID
      CustomerName: Customer
    fields:
      - target: Status
        default: "pending"
      - target: Amount
        transform: PriceToAmount
    ignore:
      - Internal
    derive:
      - declared: warehouse.Payment
        derived: warehouse.CardPayment
`

	f, err := Parse([]byte(yaml))
	require.NoError(t, err)
	require.NotNil(t, f)

	assert.Equal(t, "1", f.Version)
	require.Len(t, f.Mappings, 1)

	tm := f.Mappings[0]
	assert.Equal(t, "store.Order", tm.Source)
	assert.Equal(t, "warehouse.Order", tm.Target)
	assert.Equal(t, StringArray{"merge"}, tm.RuleSets)
	assert.Equal(t, []string{"Internal"}, tm.Ignore)
	assert.Equal(t, []Derivation{{Declared: "warehouse.Payment", Derived: "warehouse.CardPayment"}}, tm.Derive)

	// 121 entries come first, ordered by target
	assert.Nil(t, tm.OneToOne)
	require.Len(t, tm.Fields, 4)
	assert.Equal(t, FieldMapping{Source: "CustomerName", Target: "Customer"}, tm.Fields[0])
	assert.Equal(t, FieldMapping{Source: "OrderID", Target: "ID"}, tm.Fields[1])

	require.NotNil(t, tm.Fields[2].Default)
	assert.Equal(t, "pending", *tm.Fields[2].Default)
	assert.Equal(t, "PriceToAmount", tm.Fields[3].Transform)
}

func TestParseMinimal(t *testing.T) {
	f, err := Parse([]byte("mappings: []"))
	require.NoError(t, err)

	assert.Equal(t, "1", f.Version)
	assert.Empty(t, f.Mappings)
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse([]byte("mappings: {source: ["))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse mapping YAML")
}

func TestParseRuleSetList(t *testing.T) {
	f, err := Parse([]byte(`
mappings:
  - source: a.A
    target: b.B
    rule_sets: [merge, overwrite]
`))
	require.NoError(t, err)

	assert.Equal(t, StringArray{"merge", "overwrite"}, f.Mappings[0].RuleSets)
}

func TestParseTOML(t *testing.T) {
	data := `
version = "2"

[[mappings]]
source = "store.Order"
target = "warehouse.Order"
rule_sets = ["create_new", "overwrite"]
ignore = ["Internal"]
121 = { OrderID = "ID" }

[[mappings.fields]]
target = "Status"
default = "pending"
`

	f, err := ParseTOML([]byte(data))
	require.NoError(t, err)

	assert.Equal(t, "2", f.Version)
	require.Len(t, f.Mappings, 1)

	tm := f.Mappings[0]
	assert.Equal(t, StringArray{"create_new", "overwrite"}, tm.RuleSets)
	assert.Equal(t, []string{"Internal"}, tm.Ignore)
	require.Len(t, tm.Fields, 2)
	assert.Equal(t, FieldMapping{Source: "OrderID", Target: "ID"}, tm.Fields[0])
	assert.Equal(t, "Status", tm.Fields[1].Target)
}

func TestParseTOMLSingleRuleSet(t *testing.T) {
	f, err := ParseTOML([]byte(`
[[mappings]]
source = "a.A"
target = "b.B"
rule_sets = "merge"
`))
	require.NoError(t, err)

	assert.Equal(t, StringArray{"merge"}, f.Mappings[0].RuleSets)
}

func TestLoadFileByExtension(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "mapping.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("mappings:\n  - source: a.A\n    target: b.B\n"), 0o600))

	tomlPath := filepath.Join(dir, "mapping.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte("[[mappings]]\nsource = \"a.A\"\ntarget = \"b.B\"\n"), 0o600))

	for _, path := range []string{yamlPath, tomlPath} {
		f, err := LoadFile(path)
		require.NoError(t, err, path)
		require.Len(t, f.Mappings, 1)
		assert.Equal(t, "b.B", f.Mappings[0].Target)
	}

	_, err := LoadFile(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

func TestMarshalRoundTrip(t *testing.T) {
	pending := "pending"
	f := &File{
		Version: "1",
		Mappings: []TypeMapping{{
			Source:   "store.Order",
			Target:   "warehouse.Order",
			RuleSets: StringArray{"merge"},
			Fields:   []FieldMapping{{Target: "Status", Default: &pending}},
		}},
	}

	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, WriteFile(f, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "rule_sets: merge")

	back, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, f, back)
}
