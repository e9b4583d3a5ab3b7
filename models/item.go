package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CatalogItem is a sellable product or service with list price, cost price
// and a default VAT rate used when an order line carries none.
type CatalogItem struct {
	ID             int             `json:"id"`
	Name           string          `json:"name"`
	Description    *string         `json:"description"`
	Unit           string          `json:"unit"`
	UnitPrice      Money           `json:"unit_price"`
	CostPrice      Money           `json:"cost_price"`
	DefaultVATRate decimal.Decimal `json:"default_vat_rate"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// CatalogItemInput is used for creating/updating catalog items.
type CatalogItemInput struct {
	Name           string           `json:"name"`
	Description    *string          `json:"description"`
	Unit           string           `json:"unit"`
	UnitPrice      Money            `json:"unit_price"`
	CostPrice      Money            `json:"cost_price"`
	DefaultVATRate *decimal.Decimal `json:"default_vat_rate"`
}

func (i *CatalogItemInput) Validate() string {
	if i.Name == "" {
		return "name is required"
	}
	if i.Unit == "" {
		i.Unit = "kpl"
	}
	if i.UnitPrice.IsNegative() || i.CostPrice.IsNegative() {
		return "prices must be non-negative"
	}
	if i.DefaultVATRate != nil && (i.DefaultVATRate.IsNegative() || i.DefaultVATRate.GreaterThan(decimal.NewFromInt(100))) {
		return "default_vat_rate must be between 0 and 100"
	}
	return ""
}
