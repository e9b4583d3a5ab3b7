package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses.
const (
	OrderStatusOpen      = "open"
	OrderStatusInvoiced  = "invoiced"
	OrderStatusCancelled = "cancelled"
)

// Order is a sales order that can later be turned into an invoice.
type Order struct {
	ID          int         `json:"id"`
	CustomerID  int         `json:"customer_id"`
	OrderNumber string      `json:"order_number"`
	Status      string      `json:"status"`
	OrderDate   *string     `json:"order_date"`
	Notes       *string     `json:"notes"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	// Computed fields
	CustomerName *string     `json:"customer_name,omitempty"`
	Lines        []OrderLine `json:"lines,omitempty"`
}

// OrderLine is a single order row. VATRate is optional; when absent the
// catalog item's default rate and then the company default apply at
// invoicing time.
type OrderLine struct {
	ID              int              `json:"id"`
	OrderID         int              `json:"order_id"`
	ItemID          *int             `json:"item_id"`
	Description     string           `json:"description"`
	Quantity        decimal.Decimal  `json:"quantity"`
	UnitPrice       Money            `json:"unit_price"`
	DiscountPercent *decimal.Decimal `json:"discount_percent"`
	DiscountAmount  *Money           `json:"discount_amount"`
	VATRate         *decimal.Decimal `json:"vat_rate"`
}

// OrderInput is used for creating orders.
type OrderInput struct {
	CustomerID int              `json:"customer_id"`
	OrderDate  *string          `json:"order_date"`
	Notes      *string          `json:"notes"`
	Lines      []OrderLineInput `json:"lines"`
}

// OrderLineInput is a single order row on input.
type OrderLineInput struct {
	ItemID          *int             `json:"item_id"`
	Description     *string          `json:"description"`
	Quantity        decimal.Decimal  `json:"quantity"`
	UnitPrice       *Money           `json:"unit_price"`
	DiscountPercent *decimal.Decimal `json:"discount_percent"`
	DiscountAmount  *Money           `json:"discount_amount"`
	VATRate         *decimal.Decimal `json:"vat_rate"`
}

func (o *OrderInput) Validate() string {
	if o.CustomerID <= 0 {
		return "customer_id is required"
	}
	if len(o.Lines) == 0 {
		return "at least one line is required"
	}
	for i := range o.Lines {
		if msg := o.Lines[i].validate(); msg != "" {
			return msg
		}
	}
	return ""
}

func (l *OrderLineInput) validate() string {
	if l.ItemID == nil && (l.Description == nil || *l.Description == "") {
		return "line needs an item_id or a description"
	}
	if l.ItemID == nil && l.UnitPrice == nil {
		return "line needs an item_id or a unit_price"
	}
	if !l.Quantity.IsPositive() {
		return "quantity must be positive"
	}
	if l.DiscountAmount != nil && l.DiscountAmount.IsNegative() {
		return "discount_amount must be non-negative"
	}
	return validateLineRates(l.DiscountPercent, l.VATRate)
}

// validateLineRates checks the shared 0–100 ranges on line inputs.
func validateLineRates(discountPercent, vatRate *decimal.Decimal) string {
	hundred := decimal.NewFromInt(100)
	if discountPercent != nil && (discountPercent.IsNegative() || discountPercent.GreaterThan(hundred)) {
		return "discount_percent must be between 0 and 100"
	}
	if vatRate != nil && (vatRate.IsNegative() || vatRate.GreaterThan(hundred)) {
		return "vat_rate must be between 0 and 100"
	}
	return ""
}
