package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDimensionKind(t *testing.T) {
	assert.Equal(t, []DimensionKind{Color, Capacity, Memory}, AllDimensions())
	assert.Equal(t, "capacity", Capacity.String())
	assert.Equal(t, "DimensionKind(7)", DimensionKind(7).String())
	assert.False(t, DimensionKind(-1).Valid())

	for _, d := range AllDimensions() {
		got, err := ParseDimensionKind(d.String())
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}

	got, err := ParseDimensionKind(" Memory ")
	require.NoError(t, err)
	assert.Equal(t, Memory, got)

	_, err = ParseDimensionKind("size")
	assert.Error(t, err)
}

func TestPins_JSONKeysUseNames(t *testing.T) {
	pins := Pins{Color: "Black", Capacity: "128GB"}

	raw, err := json.Marshal(pins)
	require.NoError(t, err)
	assert.JSONEq(t, `{"color":"Black","capacity":"128GB"}`, string(raw))

	var back Pins
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, pins.Equal(back))

	assert.Error(t, json.Unmarshal([]byte(`{"size":"XL"}`), &back))
}

func TestPins_CloneIsIndependent(t *testing.T) {
	p := Pins{Color: "Black"}
	c := p.Clone()
	c[Color] = "White"
	assert.Equal(t, "Black", p[Color])

	assert.NotNil(t, Pins(nil).Clone())
	assert.True(t, Pins(nil).Equal(Pins{}))
	assert.False(t, p.Equal(Pins{Color: "White"}))
}

func TestVariant(t *testing.T) {
	v := Variant{
		DimensionValues: Pins{Color: "Black", Capacity: "128GB"},
		MarketCode:      "MC-1",
	}

	assert.True(t, v.Purchasable())
	assert.Equal(t, "MC-1", v.Code())
	assert.False(t, v.InStock())

	assert.True(t, v.Matches(Pins{Color: "Black"}))
	assert.True(t, v.Matches(Pins{}))
	assert.False(t, v.Matches(Pins{Memory: "8GB"}))
	assert.True(t, v.SameCombination(Pins{Color: "Black", Capacity: "128GB"}))
	assert.False(t, v.SameCombination(Pins{Color: "Black"}))

	orphan := Variant{}
	assert.False(t, orphan.Purchasable())
}

func TestBaseProduct_AsVariant(t *testing.T) {
	p := BaseProduct{
		ID: "p-1", SKU: "BASE", Price: 500000, Stock: 3,
		Media: []Media{{URL: "https://cdn/x.jpg", Type: MediaImage}},
	}

	v := p.AsVariant()
	assert.Equal(t, "p-1", v.BaseProductID)
	assert.Equal(t, int64(500000), v.Price)
	assert.Equal(t, int64(500000), v.ListPrice)
	assert.Empty(t, v.DimensionValues)
	assert.Equal(t, p.Media, v.Media)

	v.Media[0].URL = "changed"
	assert.Equal(t, "https://cdn/x.jpg", p.Media[0].URL)
}
