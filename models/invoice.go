package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice statuses. Transitions are one-directional except cancellation;
// "credited" is terminal and only ever set on the original invoice when a
// full credit note is finalized against it.
const (
	StatusDraft     = "draft"
	StatusSent      = "sent"
	StatusPaid      = "paid"
	StatusOverdue   = "overdue"
	StatusCancelled = "cancelled"
	StatusCredited  = "credited"
)

// Invoice is a financial document. A credit note is an Invoice with
// IsCreditNote set; OriginalInvoiceID/CreditNoteID form the reversal pair.
type Invoice struct {
	ID                int       `json:"id"`
	CustomerID        int       `json:"customer_id"`
	OrderID           *int      `json:"order_id"`
	InvoiceNumber     string    `json:"invoice_number"`
	ReferenceNumber   string    `json:"reference_number"`
	InvoiceDate       string    `json:"invoice_date"`
	DueDate           *string   `json:"due_date"`
	Status            string    `json:"status"`
	TotalAmount       Money     `json:"total_amount"`     // VAT inclusive, negative on credit notes
	TotalVATAmount    Money     `json:"total_vat_amount"` // negative on credit notes
	VATReverseCharge  bool      `json:"vat_reverse_charge"`
	IsCreditNote      bool      `json:"is_credit_note"`
	OriginalInvoiceID *int      `json:"original_invoice_id"`
	CreditNoteID      *int      `json:"credit_note_id"`
	Notes             *string   `json:"notes"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
	// Computed fields
	CustomerName *string       `json:"customer_name,omitempty"`
	Lines        []InvoiceLine `json:"lines,omitempty"`
	Payments     []Payment     `json:"payments,omitempty"`
	PaidAmount   Money         `json:"paid_amount"`
}

// InvoiceLine is a computed, persisted invoice row. NetAmount and VATAmount
// are stored rounded to two decimals. UnitCost is informational, copied from
// the catalog item for margin bookkeeping.
type InvoiceLine struct {
	ID              int              `json:"id"`
	InvoiceID       int              `json:"invoice_id"`
	ItemID          *int             `json:"item_id"`
	Description     string           `json:"description"`
	Quantity        decimal.Decimal  `json:"quantity"`
	UnitPrice       Money            `json:"unit_price"`
	DiscountPercent *decimal.Decimal `json:"discount_percent"`
	DiscountAmount  *Money           `json:"discount_amount"`
	VATRate         decimal.Decimal  `json:"vat_rate"`
	NetAmount       Money            `json:"net_amount"`
	VATAmount       Money            `json:"vat_amount"`
	UnitCost        *Money           `json:"unit_cost"`
}

// Discount returns the normalized discount variant for the line.
func (l *InvoiceLine) Discount() Discount {
	return NewDiscount(l.DiscountPercent, l.DiscountAmount)
}

// InvoiceInput is used for manual invoice creation.
type InvoiceInput struct {
	CustomerID       int                `json:"customer_id"`
	InvoiceDate      *string            `json:"invoice_date"`
	DueDate          *string            `json:"due_date"`
	VATReverseCharge bool               `json:"vat_reverse_charge"`
	ReferenceNumber  *string            `json:"reference_number"`
	Notes            *string            `json:"notes"`
	Lines            []InvoiceLineInput `json:"lines"`
}

// InvoiceLineInput is a single invoice row on input. When ItemID is set,
// description, unit price and VAT rate default from the catalog item.
type InvoiceLineInput struct {
	ID              *int             `json:"id"`
	ItemID          *int             `json:"item_id"`
	Description     *string          `json:"description"`
	Quantity        decimal.Decimal  `json:"quantity"`
	UnitPrice       *Money           `json:"unit_price"`
	DiscountPercent *decimal.Decimal `json:"discount_percent"`
	DiscountAmount  *Money           `json:"discount_amount"`
	VATRate         *decimal.Decimal `json:"vat_rate"`
}

func (i *InvoiceInput) Validate() string {
	if i.CustomerID <= 0 {
		return "customer_id is required"
	}
	if len(i.Lines) == 0 {
		return "at least one line is required"
	}
	for idx := range i.Lines {
		if msg := i.Lines[idx].Validate(); msg != "" {
			return msg
		}
	}
	return ""
}

func (l *InvoiceLineInput) Validate() string {
	if l.ItemID == nil && (l.Description == nil || *l.Description == "") {
		return "line needs an item_id or a description"
	}
	if l.ItemID == nil && l.UnitPrice == nil {
		return "line needs an item_id or a unit_price"
	}
	// Negative quantities and negative discounts exist only on credit
	// notes, which are never created through this input.
	if !l.Quantity.IsPositive() {
		return "quantity must be positive"
	}
	if l.DiscountAmount != nil && l.DiscountAmount.IsNegative() {
		return "discount_amount must be non-negative"
	}
	return validateLineRates(l.DiscountPercent, l.VATRate)
}

// InvoiceUpdateInput updates an invoice. Nil Lines leaves line items and
// totals untouched; non-nil Lines is a full replace-or-merge by line ID.
type InvoiceUpdateInput struct {
	InvoiceDate      *string             `json:"invoice_date"`
	DueDate          *string             `json:"due_date"`
	VATReverseCharge *bool               `json:"vat_reverse_charge"`
	ReferenceNumber  *string             `json:"reference_number"`
	Notes            *string             `json:"notes"`
	Lines            *[]InvoiceLineInput `json:"lines"`
}

func (i *InvoiceUpdateInput) Validate() string {
	if i.Lines != nil {
		if len(*i.Lines) == 0 {
			return "lines must not be empty when supplied"
		}
		for idx := range *i.Lines {
			if msg := (*i.Lines)[idx].Validate(); msg != "" {
				return msg
			}
		}
	}
	return ""
}

// CreditLineInput selects one original invoice line for a partial credit
// note, with the monetary amounts to credit (entered positive).
type CreditLineInput struct {
	LineID          int   `json:"line_id"`
	CreditAmount    Money `json:"credit_amount"`
	CreditVATAmount Money `json:"credit_vat_amount"`
}

func (c *CreditLineInput) Validate() string {
	if c.LineID <= 0 {
		return "line_id is required"
	}
	if !c.CreditAmount.IsPositive() {
		return "credit_amount must be positive"
	}
	if c.CreditVATAmount.IsNegative() {
		return "credit_vat_amount must be non-negative"
	}
	return ""
}
