package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/utafrali/variant-service/internal/domain"
)

// attributeKeys maps upstream attribute names onto dimensions.
var attributeKeys = map[string]domain.DimensionKind{
	"color":          domain.Color,
	"colour":         domain.Color,
	"capacity":       domain.Capacity,
	"storage":        domain.Capacity,
	"almacenamiento": domain.Capacity,
	"memory":         domain.Memory,
	"ram":            domain.Memory,
	"memoria":        domain.Memory,
}

// absentValues are labels upstream uses to say "this axis does not apply".
var absentValues = map[string]struct{}{
	"":          {},
	"-":         {},
	"na":        {},
	"n/a":       {},
	"no aplica": {},
}

// Normalize turns upstream records into variants: attribute keys become
// dimensions, sentinel labels are dropped, negative stock is clamped to zero
// and a missing list price defaults to the price. Every repair is returned
// as an Issue; nothing is rejected.
func Normalize(productID string, raw []domain.RawVariant) ([]domain.Variant, []Issue) {
	variants := make([]domain.Variant, 0, len(raw))
	var issues []Issue
	unknownKeys := make(map[string]struct{})

	for i, rv := range raw {
		v := domain.Variant{
			BaseProductID:   productID,
			DimensionValues: make(domain.Pins, len(rv.Attributes)),
			SKU:             strings.TrimSpace(rv.SKU),
			MarketCode:      strings.TrimSpace(rv.MarketCode),
			EAN:             strings.TrimSpace(rv.EAN),
			Price:           rv.Price,
			ListPrice:       rv.Price,
			Stock:           rv.Stock,
			Media:           append([]domain.Media(nil), rv.Media...),
		}
		code := v.Code()
		if rv.ListPrice != nil && *rv.ListPrice > 0 {
			v.ListPrice = *rv.ListPrice
		}
		if v.Stock < 0 {
			issues = append(issues, Issue{
				Kind:      IssueNegativeStock,
				ProductID: productID,
				Variant:   variantRef(code, i),
				Detail:    fmt.Sprintf("stock %d clamped to 0", rv.Stock),
			})
			v.Stock = 0
		}

		// Sorted so that aliases of the same dimension resolve the same
		// way on every build.
		keys := make([]string, 0, len(rv.Attributes))
		for k := range rv.Attributes {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			norm := strings.ToLower(strings.TrimSpace(k))
			dim, ok := attributeKeys[norm]
			if !ok {
				if _, seen := unknownKeys[norm]; !seen {
					unknownKeys[norm] = struct{}{}
					issues = append(issues, Issue{
						Kind:      IssueUnknownDimensionKey,
						ProductID: productID,
						Variant:   variantRef(code, i),
						Detail:    fmt.Sprintf("attribute %q ignored", k),
					})
				}
				continue
			}
			label := strings.TrimSpace(rv.Attributes[k])
			if _, absent := absentValues[strings.ToLower(label)]; absent {
				continue
			}
			if _, taken := v.DimensionValues[dim]; !taken {
				v.DimensionValues[dim] = label
			}
		}

		variants = append(variants, v)
	}

	return variants, issues
}

// FromSource normalizes and indexes src in one step. The returned catalog's
// Issues include the normalization findings.
func FromSource(src domain.CatalogSource) *Catalog {
	variants, issues := Normalize(src.Product.ID, src.Variants)
	c := Build(src.Product, variants)
	c.issues = append(issues, c.issues...)
	return c
}
