package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeIdent(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"PostalCode", "postalcode"},
		{"postal_code", "postalcode"},
		{"postal-code", "postalcode"},
		{"POSTAL_CODE", "postalcode"},
		{"orderNumber", "ordernumber"},
		{"OrderNumber", "ordernumber"},
		{"Value_Value", "valuevalue"},
		{"HTTPStatus", "httpstatus"},
		{"unit price", "unitprice"},
		{"SKU", "sku"},
		{"", ""},
		{"x", "x"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeIdent(tt.input))
		})
	}
}

func TestNormalizeIdentWithSuffixStrip(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"ProductID", "product"},
		{"customer_id", "customer"},
		{"TagIds", "tag"},
		{"OrderedAt", "ordered"},
		{"ShippedUTC", "shipped"},
		{"UpdatedAtUTC", "updatedat"},
		{"PickedTimestamp", "picked"},
		{"ID", "id"},
		{"Ids", "ids"},
		{"TotalCents", "totalcents"},
		{"Carrier", "carrier"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeIdentWithSuffixStrip(tt.input))
		})
	}
}

func TestDefaultSuffixes(t *testing.T) {
	for _, suffix := range DefaultSuffixes {
		assert.Equal(t, "order", StripAffixes("order"+suffix, nil, DefaultSuffixes), suffix)
	}

	assert.Equal(t, "tag", StripAffixes("tagids", nil, DefaultSuffixes), "ids is tried before id")
}

func TestStripAffixes(t *testing.T) {
	prefixes := []string{"str", "m"}
	suffixes := []string{"value", "field"}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"prefix", "strname", "name"},
		{"suffix", "pricevalue", "price"},
		{"both", "mpricefield", "price"},
		{"first prefix only", "mstrname", "strname"},
		{"first suffix only", "totalfieldvalue", "totalfield"},
		{"prefix keeps a remainder", "str", "str"},
		{"suffix keeps a remainder", "mvalue", "value"},
		{"no affix", "email", "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripAffixes(tt.input, prefixes, suffixes))
		})
	}

	assert.Equal(t, "strname", StripAffixes("strname", nil, nil))
}

func TestTokenizeCamelCase(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"PostalCode", []string{"Postal", "Code"}},
		{"orderNumber", []string{"order", "Number"}},
		{"SKUCode", []string{"SKU", "Code"}},
		{"TotalUSD", []string{"Total", "USD"}},
		{"ship_date", []string{"ship", "date"}},
		{"Value_Value", []string{"Value", "Value"}},
		{"unit price", []string{"unit", "price"}},
		{"EMAIL", []string{"EMAIL"}},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, tokenizeCamelCase(tt.input))
		})
	}
}
