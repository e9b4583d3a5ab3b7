package models

import "time"

// Payment records money received against an invoice. Append-only.
type Payment struct {
	ID        int       `json:"id"`
	InvoiceID int       `json:"invoice_id"`
	Amount    Money     `json:"amount"`
	PaidAt    string    `json:"paid_at"`
	Method    *string   `json:"method"`
	Reference *string   `json:"reference"`
	CreatedAt time.Time `json:"created_at"`
}
