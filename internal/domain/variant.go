package domain

// MediaType distinguishes images from videos.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// Media is one gallery entry.
type Media struct {
	URL     string    `json:"url"`
	Type    MediaType `json:"type"`
	AltText string    `json:"alt_text,omitempty"`
}

// BaseProduct is the catalog entry shoppers browse to. It stands in as the
// only selectable unit when a product has no variants.
type BaseProduct struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	SKU        string  `json:"sku,omitempty"`
	MarketCode string  `json:"market_code,omitempty"`
	EAN        string  `json:"ean,omitempty"`
	Price      int64   `json:"price"`
	ListPrice  int64   `json:"list_price"`
	Currency   string  `json:"currency"`
	Stock      int     `json:"stock"`
	Media      []Media `json:"media,omitempty"`
}

// Variant is one concrete purchasable combination of dimension values.
// Amounts are in the currency's minor unit.
type Variant struct {
	BaseProductID   string `json:"base_product_id"`
	DimensionValues Pins   `json:"dimension_values"`

	SKU        string `json:"sku,omitempty"`
	MarketCode string `json:"market_code,omitempty"`
	EAN        string `json:"ean,omitempty"`

	Price     int64   `json:"price"`
	ListPrice int64   `json:"list_price"`
	Stock     int     `json:"stock"`
	Media     []Media `json:"media,omitempty"`
}

// Purchasable reports whether the variant carries an identifier the cart
// can use.
func (v *Variant) Purchasable() bool {
	return v.SKU != "" || v.MarketCode != ""
}

// InStock reports whether at least one unit is available.
func (v *Variant) InStock() bool {
	return v.Stock > 0
}

// Code returns the SKU, or the market code when the SKU is empty.
func (v *Variant) Code() string {
	if v.SKU != "" {
		return v.SKU
	}
	return v.MarketCode
}

// Matches reports whether every pin agrees with the variant's values.
func (v *Variant) Matches(pins Pins) bool {
	for d, val := range pins {
		if v.DimensionValues[d] != val {
			return false
		}
	}
	return true
}

// SameCombination reports whether the variant's values are exactly pins.
func (v *Variant) SameCombination(pins Pins) bool {
	return v.DimensionValues.Equal(pins)
}

// AsVariant turns the base product into a one-off variant with no
// dimension values.
func (p BaseProduct) AsVariant() Variant {
	listPrice := p.ListPrice
	if listPrice == 0 {
		listPrice = p.Price
	}
	return Variant{
		BaseProductID:   p.ID,
		DimensionValues: Pins{},
		SKU:             p.SKU,
		MarketCode:      p.MarketCode,
		EAN:             p.EAN,
		Price:           p.Price,
		ListPrice:       listPrice,
		Stock:           p.Stock,
		Media:           append([]Media(nil), p.Media...),
	}
}

// RawVariant is a variant as stored upstream: loosely typed attributes
// that still need normalizing.
type RawVariant struct {
	ID         string            `json:"id"`
	SKU        string            `json:"sku,omitempty"`
	MarketCode string            `json:"market_code,omitempty"`
	EAN        string            `json:"ean,omitempty"`
	Price      int64             `json:"price"`
	ListPrice  *int64            `json:"list_price,omitempty"`
	Stock      int               `json:"stock"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Media      []Media           `json:"media,omitempty"`
}

// CatalogSource is everything needed to build one product's catalog.
type CatalogSource struct {
	Product  BaseProduct  `json:"product"`
	Variants []RawVariant `json:"variants"`
}
