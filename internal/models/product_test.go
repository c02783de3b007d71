package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColorList_StringAndListAreEquivalent(t *testing.T) {
	var fromString, fromList ProductInput
	require.NoError(t, json.Unmarshal([]byte(`{"colors":"Rojo, Verde"}`), &fromString))
	require.NoError(t, json.Unmarshal([]byte(`{"colors":["Rojo","Verde"]}`), &fromList))

	assert.Equal(t, ColorList{"Rojo", "Verde"}, fromString.Colors)
	assert.Equal(t, fromList.Colors, fromString.Colors)
}

func TestColorList_DropsBlankLabels(t *testing.T) {
	assert.Equal(t, ColorList{"Negro", "Blanco"}, ParseColors(" Negro ,, Blanco ,"))
	assert.Empty(t, ParseColors(""))
}

func TestColorList_RejectsOtherShapes(t *testing.T) {
	var in ProductInput
	assert.Error(t, json.Unmarshal([]byte(`{"colors":42}`), &in))
}

func TestColorList_AbsentStaysNil(t *testing.T) {
	var in ProductUpdateInput
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Malla"}`), &in))
	assert.Nil(t, in.Colors)
	assert.Nil(t, in.Variants)
}

func TestVariantList_JSONStringAndList(t *testing.T) {
	var fromString, fromList ProductInput
	require.NoError(t, json.Unmarshal([]byte(`{"variants":"[{\"name\":\"4x4x1m\",\"price\":null}]"}`), &fromString))
	require.NoError(t, json.Unmarshal([]byte(`{"variants":[{"name":"4x4x1m","price":null}]}`), &fromList))

	require.Len(t, fromString.Variants, 1)
	assert.Equal(t, fromList.Variants, fromString.Variants)
	assert.Equal(t, "4x4x1m", fromString.Variants[0].Name)
	assert.True(t, fromString.Variants[0].IsAvailable())
	assert.False(t, fromString.Variants[0].Price.Valid)
}

func TestVariantList_AvailabilityAndPrice(t *testing.T) {
	vs, err := ParseVariants(`[{"name":"2mm","available":false,"price":"1250.50"},{"name":"3mm","price":980}]`)
	require.NoError(t, err)
	require.Len(t, vs, 2)

	assert.False(t, vs[0].IsAvailable())
	assert.Equal(t, "1250.5", vs[0].Price.Decimal.String())
	assert.True(t, vs[1].IsAvailable())
	assert.Equal(t, "980", vs[1].Price.Decimal.String())
}

func TestVariantList_MalformedString(t *testing.T) {
	_, err := ParseVariants(`not json`)
	assert.Error(t, err)

	var in ProductInput
	assert.Error(t, json.Unmarshal([]byte(`{"variants":"[{"}`), &in))
}

func TestVariantList_ValidateRequiresName(t *testing.T) {
	assert.NoError(t, VariantList{{Name: "1m"}}.Validate())
	assert.Error(t, VariantList{{Name: "1m"}, {Name: ""}}.Validate())
}
