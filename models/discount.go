package models

import "github.com/shopspring/decimal"

// DiscountKind discriminates the line discount variant.
type DiscountKind string

const (
	DiscountNone    DiscountKind = "none"
	DiscountPercent DiscountKind = "percent"
	DiscountAmount  DiscountKind = "amount"
)

// Discount is a tagged variant: at most one of a percentage or a fixed
// amount applies to a line. Percent and Amount are only meaningful for
// their matching Kind.
type Discount struct {
	Kind    DiscountKind
	Percent decimal.Decimal
	Amount  Money
}

// NewDiscount normalizes the two optional API/storage fields into the
// variant. A positive percentage wins over a fixed amount when both are
// supplied. A fixed amount may be negative: credit note lines store the
// discount with the same sign as the reversed line, and it must keep
// applying there.
func NewDiscount(percent *decimal.Decimal, amount *Money) Discount {
	if percent != nil && percent.IsPositive() {
		return Discount{Kind: DiscountPercent, Percent: *percent}
	}
	if amount != nil && !amount.IsZero() {
		return Discount{Kind: DiscountAmount, Amount: *amount}
	}
	return Discount{Kind: DiscountNone}
}
