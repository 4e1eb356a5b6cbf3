package catalog

import "fmt"

// IssueKind classifies a data-quality problem found in a product's variants.
type IssueKind string

const (
	IssueDuplicateCombination  IssueKind = "duplicate_combination"
	IssueMissingIdentifiers    IssueKind = "missing_identifiers"
	IssueEmptyCatalog          IssueKind = "empty_catalog"
	IssueNegativeStock         IssueKind = "negative_stock"
	IssueUnknownDimensionKey   IssueKind = "unknown_dimension_key"
	IssueUnknownValue          IssueKind = "unknown_value"
	IssueUnresolvedCombination IssueKind = "unresolved_combination"
)

// Issue is one reportable data-quality finding. Issues never stop a catalog
// from being built or a selection from resolving.
type Issue struct {
	Kind      IssueKind `json:"kind"`
	ProductID string    `json:"product_id"`
	// Variant identifies the offending variant by code, or by its position
	// in the raw list ("#3") when it has no code.
	Variant string `json:"variant,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

func (i Issue) String() string {
	s := fmt.Sprintf("%s product=%s", i.Kind, i.ProductID)
	if i.Variant != "" {
		s += " variant=" + i.Variant
	}
	if i.Detail != "" {
		s += ": " + i.Detail
	}
	return s
}

func variantRef(code string, index int) string {
	if code != "" {
		return code
	}
	return fmt.Sprintf("#%d", index)
}
