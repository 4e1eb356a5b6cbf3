package domain

// InstallmentPlan is a zero-interest breakdown of a price.
type InstallmentPlan struct {
	TermCount            int    `json:"term_count"`
	PerInstallmentAmount int64  `json:"per_installment_amount"`
	TotalPrice           int64  `json:"total_price"`
	IsZeroInterest       bool   `json:"is_zero_interest"`
	DisplayFull          string `json:"display_full"`
	DisplayShort         string `json:"display_short"`
}

// PriceList maps installment term counts to the total price charged for
// that term.
type PriceList map[int]int64

// PriceQuote is a price list as returned by the payment service. Currency
// is the ISO code the prices are expressed in and may be empty.
type PriceQuote struct {
	Currency string
	Prices   PriceList
}
