// Package selection keeps a shopper's partial variant choice resolvable.
//
// A Selection always resolves to exactly one variant of a non-empty catalog.
// When the shopper picks a value that is incompatible with the rest of the
// choice, the most recently touched dimension wins and the others are
// repaired around it in declared dimension order, taking the first reachable
// value in catalog order.
package selection

import (
	"fmt"

	"github.com/utafrali/variant-service/internal/catalog"
	"github.com/utafrali/variant-service/internal/domain"
)

// Selection is the state of one product view. Resolver methods return new
// values and never modify their arguments.
type Selection struct {
	Pinned   domain.Pins
	Resolved *domain.Variant
	// Synthesized is set when Resolved was made from the base product
	// because the catalog has no variants.
	Synthesized bool
}

// Clone returns a deep copy of s.
func (s Selection) Clone() Selection {
	out := Selection{Pinned: s.Pinned.Clone(), Synthesized: s.Synthesized}
	if s.Resolved != nil {
		v := *s.Resolved
		v.DimensionValues = v.DimensionValues.Clone()
		v.Media = append([]domain.Media(nil), v.Media...)
		out.Resolved = &v
	}
	return out
}

// Resolver answers selection questions against one catalog snapshot. It is
// safe for concurrent use because the catalog is immutable.
type Resolver struct {
	catalog  *catalog.Catalog
	reporter Reporter
}

// New returns a resolver over c. A nil reporter discards findings.
func New(c *catalog.Catalog, r Reporter) *Resolver {
	if r == nil {
		r = nopReporter{}
	}
	return &Resolver{catalog: c, reporter: r}
}

// WithReporter returns a resolver over the same catalog that reports to rep.
// A nil rep discards findings.
func (r *Resolver) WithReporter(rep Reporter) *Resolver {
	return New(r.catalog, rep)
}

// Catalog returns the snapshot the resolver reads.
func (r *Resolver) Catalog() *catalog.Catalog { return r.catalog }

// Initialize returns the opening selection. A known preferredSKU (SKU or
// market code) pins that variant's values; otherwise every dimension takes
// its first reachable value in declared order.
func (r *Resolver) Initialize(preferredSKU string) Selection {
	if i, ok := r.catalog.FindByCode(preferredSKU); ok {
		s := r.resolve(r.catalog.Variant(i).DimensionValues.Clone())
		if r.catalog.Variant(i).Purchasable() {
			s.Resolved = r.withMedia(i)
		}
		return s
	}
	return r.resolve(r.repair(domain.Pins{}, nil))
}

// Restore rebuilds a selection from pins held by a client. Pins naming
// values the catalog does not have are dropped and reported, then the
// remaining pins are repaired in declared order.
func (r *Resolver) Restore(pins domain.Pins) Selection {
	clean := make(domain.Pins, len(pins))
	for d, v := range pins {
		mustValid(d)
		if !r.catalog.HasValue(d, v) {
			r.unknownValue(d, v)
			continue
		}
		clean[d] = v
	}
	return r.resolve(r.repair(clean, nil))
}

// SelectDimension pins dimension to value and repairs the other
// dimensions around it. A value the catalog does not know is reported and
// leaves the selection unchanged. It panics if dimension is not a declared
// DimensionKind.
func (r *Resolver) SelectDimension(s Selection, dimension domain.DimensionKind, value string) Selection {
	mustValid(dimension)

	if !r.catalog.HasValue(dimension, value) {
		r.unknownValue(dimension, value)
		return s.Clone()
	}
	if cur, ok := s.Pinned[dimension]; ok && cur == value {
		return s.Clone()
	}

	pins := s.Pinned.Clone()
	pins[dimension] = value
	return r.resolve(r.repair(pins, &dimension))
}

// AvailableValues returns the values of dimension reachable under the
// selection's other pins, in catalog order. It is empty only when the
// catalog has no value for dimension. It panics if dimension is not a
// declared DimensionKind.
func (r *Resolver) AvailableValues(s Selection, dimension domain.DimensionKind) []string {
	mustValid(dimension)
	if r.catalog.Empty() {
		return []string{}
	}

	others := make(domain.Pins, len(s.Pinned))
	for d, v := range s.Pinned {
		if d != dimension {
			others[d] = v
		}
	}
	return r.catalog.ValuesAmong(dimension, r.catalog.Matching(others))
}

// repair walks the catalog's dimensions in declared order, keeping each
// pinned value that is still reachable together with the values confirmed
// so far and replacing the others with the first reachable value. A
// dimension no confirmed variant carries is unpinned. The anchor, when
// given, is confirmed first and never changed.
func (r *Resolver) repair(pins domain.Pins, anchor *domain.DimensionKind) domain.Pins {
	confirmed := make(domain.Pins, len(pins))
	if anchor != nil {
		confirmed[*anchor] = pins[*anchor]
	}

	for _, d := range r.catalog.Dimensions() {
		if anchor != nil && d == *anchor {
			continue
		}
		reachable := r.catalog.ValuesAmong(d, r.catalog.Matching(confirmed))
		if len(reachable) == 0 {
			continue
		}
		next := reachable[0]
		if cur, ok := pins[d]; ok && contains(reachable, cur) {
			next = cur
		}
		confirmed[d] = next
	}
	return confirmed
}

// resolve maps pins to one variant. An exact match prefers the first
// purchasable variant in raw order; duplicates were already reported when
// the catalog was built. Without an exact match the variant
// sharing the most pins wins (first in raw order on ties) and the pins are
// rewritten to its values.
func (r *Resolver) resolve(pins domain.Pins) Selection {
	c := r.catalog
	if c.Empty() {
		p := c.Product()
		v := p.AsVariant()
		return Selection{Pinned: domain.Pins{}, Resolved: &v, Synthesized: true}
	}

	var exact []int
	for _, i := range c.Matching(pins) {
		if c.Variant(i).SameCombination(pins) {
			exact = append(exact, i)
		}
	}

	if len(exact) > 0 {
		chosen := exact[0]
		for _, i := range exact {
			if c.Variant(i).Purchasable() {
				chosen = i
				break
			}
		}
		return Selection{Pinned: pins, Resolved: r.withMedia(chosen)}
	}

	best, bestScore := 0, -1
	for i := 0; i < c.Len(); i++ {
		score := 0
		for d, v := range pins {
			if c.Variant(i).DimensionValues[d] == v {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	r.reporter.Report(catalog.Issue{
		Kind:      catalog.IssueUnresolvedCombination,
		ProductID: c.Product().ID,
		Variant:   c.Variant(best).Code(),
		Detail:    fmt.Sprintf("no variant for %v; fell back to closest", pins),
	})
	return Selection{Pinned: c.Variant(best).DimensionValues.Clone(), Resolved: r.withMedia(best)}
}

// withMedia copies variant i, inheriting the base product's media when it
// has none of its own.
func (r *Resolver) withMedia(i int) *domain.Variant {
	v := *r.catalog.Variant(i)
	v.DimensionValues = v.DimensionValues.Clone()
	if len(v.Media) == 0 {
		v.Media = r.catalog.Product().Media
	}
	v.Media = append([]domain.Media(nil), v.Media...)
	return &v
}

func (r *Resolver) unknownValue(d domain.DimensionKind, v string) {
	r.reporter.Report(catalog.Issue{
		Kind:      catalog.IssueUnknownValue,
		ProductID: r.catalog.Product().ID,
		Detail:    fmt.Sprintf("%s=%q is not offered", d, v),
	})
}

func mustValid(d domain.DimensionKind) {
	if !d.Valid() {
		panic(fmt.Sprintf("selection: unknown dimension %d", int(d)))
	}
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
