// Package catalog indexes one base product's variants by dimension value.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/utafrali/variant-service/internal/domain"
)

// Catalog is the immutable index over one product's variants. A catalog is
// never patched: a changed variant list means building a new one.
type Catalog struct {
	product  domain.BaseProduct
	variants []domain.Variant

	// buckets holds, per dimension value, the ascending raw indexes of the
	// variants carrying it.
	buckets map[domain.DimensionKind]map[string][]int
	// values holds each dimension's distinct values in first-seen order.
	values map[domain.DimensionKind][]string

	issues []Issue
}

// Build indexes variants. It never fails: duplicate combinations, variants
// without identifiers and an empty list are recorded as issues.
func Build(product domain.BaseProduct, variants []domain.Variant) *Catalog {
	c := &Catalog{
		product:  product,
		variants: make([]domain.Variant, len(variants)),
		buckets:  make(map[domain.DimensionKind]map[string][]int),
		values:   make(map[domain.DimensionKind][]string),
	}

	if len(variants) == 0 {
		c.issues = append(c.issues, Issue{
			Kind:      IssueEmptyCatalog,
			ProductID: product.ID,
			Detail:    "no variants; base product is the only selectable unit",
		})
		return c
	}

	seen := make(map[string]int, len(variants))
	for i, v := range variants {
		v.DimensionValues = v.DimensionValues.Clone()
		c.variants[i] = v

		for _, d := range domain.AllDimensions() {
			val, ok := v.DimensionValues[d]
			if !ok {
				continue
			}
			byVal := c.buckets[d]
			if byVal == nil {
				byVal = make(map[string][]int)
				c.buckets[d] = byVal
			}
			if _, known := byVal[val]; !known {
				c.values[d] = append(c.values[d], val)
			}
			byVal[val] = append(byVal[val], i)
		}

		if !v.Purchasable() {
			c.issues = append(c.issues, Issue{
				Kind:      IssueMissingIdentifiers,
				ProductID: product.ID,
				Variant:   variantRef("", i),
				Detail:    "variant has neither sku nor market code",
			})
		}

		key := combinationKey(v.DimensionValues)
		if first, dup := seen[key]; dup {
			c.issues = append(c.issues, Issue{
				Kind:      IssueDuplicateCombination,
				ProductID: product.ID,
				Variant:   variantRef(v.Code(), i),
				Detail:    fmt.Sprintf("same combination as %s (%s)", variantRef(variants[first].Code(), first), key),
			})
			continue
		}
		seen[key] = i
	}

	return c
}

// combinationKey renders pins in declared dimension order.
func combinationKey(p domain.Pins) string {
	parts := make([]string, 0, len(p))
	for _, d := range domain.AllDimensions() {
		if v, ok := p[d]; ok {
			parts = append(parts, d.String()+"="+v)
		}
	}
	return strings.Join(parts, ",")
}

// Product returns the base product.
func (c *Catalog) Product() domain.BaseProduct { return c.product }

// Empty reports whether the product has no variants.
func (c *Catalog) Empty() bool { return len(c.variants) == 0 }

// Len returns the number of variants.
func (c *Catalog) Len() int { return len(c.variants) }

// Variant returns the variant at raw index i. The result must not be
// modified.
func (c *Catalog) Variant(i int) *domain.Variant { return &c.variants[i] }

// Variants returns a copy of the variant list in raw order.
func (c *Catalog) Variants() []domain.Variant {
	return append([]domain.Variant(nil), c.variants...)
}

// Dimensions returns the dimensions used by at least one variant, in
// declared order.
func (c *Catalog) Dimensions() []domain.DimensionKind {
	var out []domain.DimensionKind
	for _, d := range domain.AllDimensions() {
		if len(c.values[d]) > 0 {
			out = append(out, d)
		}
	}
	return out
}

// Values returns d's distinct values in first-seen order.
func (c *Catalog) Values(d domain.DimensionKind) []string {
	return append([]string(nil), c.values[d]...)
}

// HasValue reports whether some variant has value for d.
func (c *Catalog) HasValue(d domain.DimensionKind, value string) bool {
	_, ok := c.buckets[d][value]
	return ok
}

// Matching returns the ascending raw indexes of variants that agree with
// every pin. Empty pins match every variant.
func (c *Catalog) Matching(pins domain.Pins) []int {
	if len(pins) == 0 {
		all := make([]int, len(c.variants))
		for i := range all {
			all[i] = i
		}
		return all
	}

	lists := make([][]int, 0, len(pins))
	for d, v := range pins {
		bucket, ok := c.buckets[d][v]
		if !ok {
			return nil
		}
		lists = append(lists, bucket)
	}
	sort.Slice(lists, func(i, j int) bool { return len(lists[i]) < len(lists[j]) })

	out := append([]int(nil), lists[0]...)
	for _, l := range lists[1:] {
		out = intersect(out, l)
		if len(out) == 0 {
			return nil
		}
	}
	return out
}

// ValuesAmong projects the variants at idx onto d, in d's catalog order.
func (c *Catalog) ValuesAmong(d domain.DimensionKind, idx []int) []string {
	present := make(map[string]struct{}, len(c.values[d]))
	for _, i := range idx {
		if v, ok := c.variants[i].DimensionValues[d]; ok {
			present[v] = struct{}{}
		}
	}
	out := make([]string, 0, len(present))
	for _, v := range c.values[d] {
		if _, ok := present[v]; ok {
			out = append(out, v)
		}
	}
	return out
}

// FindByCode returns the raw index of the first variant whose SKU or
// market code equals code.
func (c *Catalog) FindByCode(code string) (int, bool) {
	if code == "" {
		return 0, false
	}
	for i := range c.variants {
		if c.variants[i].SKU == code || c.variants[i].MarketCode == code {
			return i, true
		}
	}
	return 0, false
}

// Issues returns the data-quality issues found while building.
func (c *Catalog) Issues() []Issue {
	return append([]Issue(nil), c.issues...)
}

// intersect merges two ascending index lists.
func intersect(a, b []int) []int {
	out := a[:0]
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return out
}
