package models

import "time"

// Customer is an invoicing counterparty.
type Customer struct {
	ID              int       `json:"id"`
	Name            string    `json:"name"`
	Email           *string   `json:"email"`
	Phone           *string   `json:"phone"`
	VATID           *string   `json:"vat_id"`
	Street          *string   `json:"street"`
	PostalCode      *string   `json:"postal_code"`
	City            *string   `json:"city"`
	CountryCode     string    `json:"country_code"`
	EInvoiceAddress *string   `json:"e_invoice_address"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CustomerInput is used for creating/updating customers.
type CustomerInput struct {
	Name            string  `json:"name"`
	Email           *string `json:"email"`
	Phone           *string `json:"phone"`
	VATID           *string `json:"vat_id"`
	Street          *string `json:"street"`
	PostalCode      *string `json:"postal_code"`
	City            *string `json:"city"`
	CountryCode     string  `json:"country_code"`
	EInvoiceAddress *string `json:"e_invoice_address"`
}

func (c *CustomerInput) Validate() string {
	if c.Name == "" {
		return "name is required"
	}
	if c.CountryCode == "" {
		c.CountryCode = "FI"
	}
	if len(c.CountryCode) != 2 {
		return "country_code must be a two-letter ISO code"
	}
	return ""
}
