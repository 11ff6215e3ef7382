package store

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariationAttributesListForm(t *testing.T) {
	var attrs VariationAttributes
	err := json.Unmarshal([]byte(`[{"name":"Weight","option":"4kg Full Roll"},{"name":"Colour","option":"Black"}]`), &attrs)
	require.NoError(t, err)
	require.Len(t, attrs, 2)
	assert.Equal(t, VariationAttribute{Name: "Weight", Value: "4kg Full Roll"}, attrs[0])
	assert.Equal(t, VariationAttribute{Name: "Colour", Value: "Black"}, attrs[1])
}

func TestVariationAttributesListFormValueKey(t *testing.T) {
	var attrs VariationAttributes
	err := json.Unmarshal([]byte(`[{"name":"Weight","value":"2kg Half Roll"}]`), &attrs)
	require.NoError(t, err)
	require.Len(t, attrs, 1)
	assert.Equal(t, "2kg Half Roll", attrs[0].Value)
}

func TestVariationAttributesMappingForm(t *testing.T) {
	var attrs VariationAttributes
	err := json.Unmarshal([]byte(`{"Weight":"4kg Full Roll","Colour":"Black"}`), &attrs)
	require.NoError(t, err)
	require.Len(t, attrs, 2)

	// Mapping keys come back sorted so rendering is stable.
	assert.Equal(t, "Colour", attrs[0].Name)
	assert.Equal(t, "Weight", attrs[1].Name)
}

func TestVariationAttributesGarbage(t *testing.T) {
	var attrs VariationAttributes
	err := json.Unmarshal([]byte(`"just a string"`), &attrs)
	assert.Error(t, err)
}

func TestVariationAttributesSummary(t *testing.T) {
	attrs := VariationAttributes{
		{Name: "Weight", Value: "4kg Full Roll"},
		{Name: "Colour", Value: "Black"},
	}
	assert.Equal(t, "Weight: 4kg Full Roll, Colour: Black", attrs.Summary())
	assert.Equal(t, "", VariationAttributes{}.Summary())
}
