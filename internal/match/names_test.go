package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchingNames(t *testing.T) {
	t.Parallel()

	naming := NewNaming([]string{"str"}, []string{"Field"}, []string{"Code"})

	tests := []struct {
		name       string
		enumerable bool
		expected   []string
	}{
		{"CustomerName", false, []string{"customername"}},
		{"strName", false, []string{"strname", "name"}},
		{"NameField", false, []string{"namefield", "name"}},
		{"Items", true, []string{"items", "item"}},
		{"Categories", true, []string{"categories", "category"}},
		{"Addresses", true, []string{"addresses", "address"}},
		{"ItemList", true, []string{"itemlist", "item", "items"}},
		{"Tag", true, []string{"tag", "tags"}},
		{"Entry", true, []string{"entry", "entries"}},
		{"Status", true, []string{"status", "statu"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, naming.MatchingNames(tt.name, tt.enumerable))
		})
	}
}

func TestJoinedNames(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{""}, JoinedNames(nil))
	assert.Equal(t, []string{"valuevalue"}, JoinedNames([][]string{{"value"}, {"value"}}))
	assert.Equal(t,
		[]string{"orderitems", "orderitem", "ordsitems", "ordsitem"},
		JoinedNames([][]string{{"order", "ords"}, {"items", "item"}}))
}

func TestMatches(t *testing.T) {
	t.Parallel()

	assert.True(t, Matches([]string{"valuevalue"}, []string{"value", "valuevalue"}))
	assert.False(t, Matches([]string{"value"}, []string{"valuevalue"}))
	assert.False(t, Matches(nil, []string{"value"}))

	assert.True(t, CouldMatch([]string{"value"}, []string{"valuevalue"}))
	assert.True(t, CouldMatch([]string{"customer"}, []string{"customeremail"}))
	assert.False(t, CouldMatch([]string{"address"}, []string{"customeremail"}))
}

func TestIsIdentifier(t *testing.T) {
	t.Parallel()

	naming := NewNaming(nil, nil, []string{"SKU"})

	assert.True(t, naming.IsIdentifier("Product", "ID"))
	assert.True(t, naming.IsIdentifier("Product", "Identifier"))
	assert.True(t, naming.IsIdentifier("Product", "ProductId"))
	assert.True(t, naming.IsIdentifier("Product", "sku"))
	assert.False(t, naming.IsIdentifier("Product", "OrderID"))
	assert.False(t, naming.IsIdentifier("", "Price"))
}
