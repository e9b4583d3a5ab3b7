package finvoice

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkoskinen/laskutus/finance"
	"github.com/mkoskinen/laskutus/models"
)

func ptr[T any](v T) *T { return &v }

func mustMoney(t *testing.T, s string) models.Money {
	t.Helper()
	m, err := models.MoneyFromString(s)
	require.NoError(t, err)
	return m
}

func testSeller() *models.SellerProfile {
	return &models.SellerProfile{
		Name:        "Myyjä Oy",
		VATID:       ptr("FI12345678"),
		IBAN:        ptr("FI2112345600000785"),
		BIC:         ptr("NDEAFIHH"),
		Street:      ptr("Myyjänkatu 1"),
		PostalCode:  ptr("00100"),
		City:        ptr("Helsinki"),
		CountryCode: "FI",
	}
}

func testCustomer() *models.Customer {
	return &models.Customer{
		ID:          1,
		Name:        "Asiakas Oy",
		Street:      ptr("Testikatu 1"),
		PostalCode:  ptr("00200"),
		City:        ptr("Espoo"),
		CountryCode: "FI",
	}
}

func testInvoice(t *testing.T) *models.Invoice {
	return &models.Invoice{
		ID:              1,
		CustomerID:      1,
		InvoiceNumber:   "INV-26-00001",
		ReferenceNumber: "26000013",
		InvoiceDate:     "2026-08-31",
		DueDate:         ptr("2026-09-14"),
		Status:          models.StatusSent,
		TotalAmount:     mustMoney(t, "33.89"),
		TotalVATAmount:  mustMoney(t, "6.89"),
		Lines: []models.InvoiceLine{
			{
				Description: "Konsultointi",
				Quantity:    decimal.NewFromInt(3),
				UnitPrice:   mustMoney(t, "10.00"),
				VATRate:     decimal.RequireFromString("25.5"),
				NetAmount:   mustMoney(t, "27.00"),
				VATAmount:   mustMoney(t, "6.89"),
			},
		},
	}
}

func TestExportInvoice(t *testing.T) {
	out, err := Export(testInvoice(t), testCustomer(), testSeller())
	require.NoError(t, err)
	doc := string(out)

	assert.True(t, strings.HasPrefix(doc, "<?xml"))
	assert.Contains(t, doc, `<Finvoice Version="3.0">`)
	assert.Contains(t, doc, "<InvoiceTypeCode>INV01</InvoiceTypeCode>")
	assert.Contains(t, doc, "<InvoiceNumber>INV-26-00001</InvoiceNumber>")
	assert.Contains(t, doc, `<InvoiceDate Format="CCYYMMDD">20260831</InvoiceDate>`)
	assert.Contains(t, doc, `<InvoiceDueDate Format="CCYYMMDD">20260914</InvoiceDueDate>`)

	// Totals and per-rate VAT specification, always two decimals
	assert.Contains(t, doc, `<InvoiceTotalVatExcludedAmount AmountCurrencyIdentifier="EUR">27.00</InvoiceTotalVatExcludedAmount>`)
	assert.Contains(t, doc, `<InvoiceTotalVatAmount AmountCurrencyIdentifier="EUR">6.89</InvoiceTotalVatAmount>`)
	assert.Contains(t, doc, `<InvoiceTotalVatIncludedAmount AmountCurrencyIdentifier="EUR">33.89</InvoiceTotalVatIncludedAmount>`)
	assert.Contains(t, doc, "<VatRatePercent>25.50</VatRatePercent>")

	// Seller bank details carry their identification scheme
	assert.Contains(t, doc, `<SellerAccountID IdentificationSchemeName="IBAN">FI2112345600000785</SellerAccountID>`)
	assert.Contains(t, doc, `<SellerBic IdentificationSchemeName="BIC">NDEAFIHH</SellerBic>`)

	// Payment reference travels in the EPI remittance identifier
	assert.Contains(t, doc, `<EpiRemittanceInfoIdentifier IdentificationSchemeName="SPY">26000013</EpiRemittanceInfoIdentifier>`)
	assert.Contains(t, doc, `<EpiInstructedAmount AmountCurrencyIdentifier="EUR">33.89</EpiInstructedAmount>`)

	// One row per line
	assert.Contains(t, doc, "<ArticleName>Konsultointi</ArticleName>")
	assert.Contains(t, doc, `<DeliveredQuantity QuantityUnitCode="kpl">3</DeliveredQuantity>`)
}

func TestExportCreditNoteTypeCode(t *testing.T) {
	inv := testInvoice(t)
	inv.IsCreditNote = true
	out, err := Export(inv, testCustomer(), testSeller())
	require.NoError(t, err)
	assert.Contains(t, string(out), "<InvoiceTypeCode>INV02</InvoiceTypeCode>")
}

func TestExportWithoutDueDateUsesInvoiceDate(t *testing.T) {
	inv := testInvoice(t)
	inv.DueDate = nil
	out, err := Export(inv, testCustomer(), testSeller())
	require.NoError(t, err)
	doc := string(out)
	assert.NotContains(t, doc, "<PaymentTermsDetails>")
	assert.Contains(t, doc, `<EpiDateOptionDate Format="CCYYMMDD">20260831</EpiDateOptionDate>`)
}

func TestExportOptionalFieldsGetPlaceholders(t *testing.T) {
	cust := testCustomer()
	cust.Street = nil
	cust.City = nil
	out, err := Export(testInvoice(t), cust, testSeller())
	require.NoError(t, err)
	doc := string(out)
	assert.Contains(t, doc, "<BuyerStreetName>-</BuyerStreetName>")
	assert.Contains(t, doc, "<BuyerTownName>-</BuyerTownName>")
}

func TestExportIncompleteSeller(t *testing.T) {
	seller := testSeller()
	seller.IBAN = nil
	seller.BIC = ptr("")
	_, err := Export(testInvoice(t), testCustomer(), seller)
	require.Error(t, err)
	assert.True(t, errors.Is(err, finance.ErrSellerProfileIncomplete))
	assert.Contains(t, err.Error(), "iban, bic")
	assert.NotContains(t, err.Error(), "vat_id")
}
