package models

import "time"

// SellerProfile holds the issuing company's identity. There is exactly one
// row. VAT ID, IBAN and BIC are hard preconditions for Finvoice export;
// the rest may fall back to placeholders there.
type SellerProfile struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	VATID       *string   `json:"vat_id"`
	IBAN        *string   `json:"iban"`
	BIC         *string   `json:"bic"`
	Street      *string   `json:"street"`
	PostalCode  *string   `json:"postal_code"`
	City        *string   `json:"city"`
	CountryCode string    `json:"country_code"`
	Phone       *string   `json:"phone"`
	Email       *string   `json:"email"`
	WWW         *string   `json:"www"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SellerProfileInput is used for updating the seller profile.
type SellerProfileInput struct {
	Name        string  `json:"name"`
	VATID       *string `json:"vat_id"`
	IBAN        *string `json:"iban"`
	BIC         *string `json:"bic"`
	Street      *string `json:"street"`
	PostalCode  *string `json:"postal_code"`
	City        *string `json:"city"`
	CountryCode string  `json:"country_code"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email"`
	WWW         *string `json:"www"`
}

func (s *SellerProfileInput) Validate() string {
	if s.Name == "" {
		return "name is required"
	}
	if s.CountryCode == "" {
		s.CountryCode = "FI"
	}
	return ""
}
