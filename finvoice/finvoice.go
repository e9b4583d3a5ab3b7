// Package finvoice maps an invoice aggregate into the Finvoice 3.0
// e-invoice XML format. It performs no business logic: all monetary values
// must already be final, and the element order below is schema-mandated.
package finvoice

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/mkoskinen/laskutus/finance"
	"github.com/mkoskinen/laskutus/models"
)

const (
	typeCodeInvoice    = "INV01"
	typeCodeCreditNote = "INV02"

	dateFormat = "CCYYMMDD"
	currency   = "EUR"

	// placeholder fills optional seller/buyer text fields that are empty.
	// The three hard-required seller fields (VAT ID, IBAN, BIC) never
	// fall back to it.
	placeholder = "-"
)

type document struct {
	XMLName     xml.Name    `xml:"Finvoice"`
	Version     string      `xml:"Version,attr"`
	SellerParty sellerParty `xml:"SellerPartyDetails"`
	SellerInfo  sellerInfo  `xml:"SellerInformationDetails"`
	BuyerParty  buyerParty  `xml:"BuyerPartyDetails"`
	Details     details     `xml:"InvoiceDetails"`
	Rows        []row       `xml:"InvoiceRow"`
	Epi         epiDetails  `xml:"EpiDetails"`
}

type sellerParty struct {
	Identifier       string        `xml:"SellerPartyIdentifier"`
	OrganisationName string        `xml:"SellerOrganisationName"`
	PostalAddress    sellerAddress `xml:"SellerPostalAddressDetails"`
}

type sellerAddress struct {
	StreetName         string `xml:"SellerStreetName"`
	TownName           string `xml:"SellerTownName"`
	PostCodeIdentifier string `xml:"SellerPostCodeIdentifier"`
	CountryCode        string `xml:"CountryCode"`
}

type sellerInfo struct {
	AccountDetails sellerAccount `xml:"SellerAccountDetails"`
}

type sellerAccount struct {
	AccountID schemeValue `xml:"SellerAccountID"`
	BIC       schemeValue `xml:"SellerBic"`
}

type schemeValue struct {
	Value    string `xml:",chardata"`
	SchemeID string `xml:"IdentificationSchemeName,attr"`
}

type buyerParty struct {
	Identifier       string       `xml:"BuyerPartyIdentifier,omitempty"`
	OrganisationName string       `xml:"BuyerOrganisationName"`
	PostalAddress    buyerAddress `xml:"BuyerPostalAddressDetails"`
}

type buyerAddress struct {
	StreetName         string `xml:"BuyerStreetName"`
	TownName           string `xml:"BuyerTownName"`
	PostCodeIdentifier string `xml:"BuyerPostCodeIdentifier"`
	CountryCode        string `xml:"CountryCode"`
}

type details struct {
	TypeCode              string     `xml:"InvoiceTypeCode"`
	InvoiceNumber         string     `xml:"InvoiceNumber"`
	InvoiceDate           dateValue  `xml:"InvoiceDate"`
	OriginalInvoiceNumber string     `xml:"OriginalInvoiceNumber,omitempty"`
	VatExcludedAmount     amount     `xml:"InvoiceTotalVatExcludedAmount"`
	VatAmount             amount     `xml:"InvoiceTotalVatAmount"`
	VatIncludedAmount     amount     `xml:"InvoiceTotalVatIncludedAmount"`
	VatSpecification      []vatSpec  `xml:"VatSpecificationDetails"`
	PaymentTerms          *terms     `xml:"PaymentTermsDetails,omitempty"`
}

type vatSpec struct {
	BaseAmount  amount `xml:"VatBaseAmount"`
	RatePercent string `xml:"VatRatePercent"`
	RateAmount  amount `xml:"VatRateAmount"`
}

type terms struct {
	InvoiceDueDate dateValue `xml:"InvoiceDueDate"`
}

type row struct {
	ArticleName       string    `xml:"ArticleName"`
	DeliveredQuantity quantity  `xml:"DeliveredQuantity"`
	UnitPriceAmount   amount    `xml:"UnitPriceAmount"`
	VatRatePercent    string    `xml:"RowVatRatePercent"`
	VatAmount         amount    `xml:"RowVatAmount"`
	VatExcludedAmount amount    `xml:"RowVatExcludedAmount"`
	Amount            amount    `xml:"RowAmount"`
}

type quantity struct {
	Value    string `xml:",chardata"`
	UnitCode string `xml:"QuantityUnitCode,attr"`
}

type epiDetails struct {
	PartyDetails       epiParty       `xml:"EpiPartyDetails"`
	PaymentInstruction epiInstruction `xml:"EpiPaymentInstructionDetails"`
}

type epiParty struct {
	BfiIdentifier schemeValue    `xml:"EpiBfiPartyDetails>EpiBfiIdentifier"`
	Beneficiary   epiBeneficiary `xml:"EpiBeneficiaryPartyDetails"`
}

type epiBeneficiary struct {
	Name      string      `xml:"EpiNameAddressDetails"`
	AccountID schemeValue `xml:"EpiAccountID"`
}

type epiInstruction struct {
	RemittanceInfo   schemeValue `xml:"EpiRemittanceInfoIdentifier"`
	InstructedAmount amount      `xml:"EpiInstructedAmount"`
	DateOptionDate   dateValue   `xml:"EpiDateOptionDate"`
}

type amount struct {
	Value      string `xml:",chardata"`
	CurrencyID string `xml:"AmountCurrencyIdentifier,attr"`
}

type dateValue struct {
	Value  string `xml:",chardata"`
	Format string `xml:"Format,attr"`
}

// Export serializes the invoice aggregate into a UTF-8 Finvoice document.
// Seller VAT ID, IBAN and BIC are hard preconditions; missing ones yield
// finance.ErrSellerProfileIncomplete naming the gaps.
func Export(inv *models.Invoice, customer *models.Customer, seller *models.SellerProfile) ([]byte, error) {
	var missing []string
	if strVal(seller.VATID) == "" {
		missing = append(missing, "vat_id")
	}
	if strVal(seller.IBAN) == "" {
		missing = append(missing, "iban")
	}
	if strVal(seller.BIC) == "" {
		missing = append(missing, "bic")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", finance.ErrSellerProfileIncomplete, strings.Join(missing, ", "))
	}

	totals := finance.SummarizeLines(inv.Lines)

	doc := document{
		Version: "3.0",
		SellerParty: sellerParty{
			Identifier:       *seller.VATID,
			OrganisationName: orPlaceholder(seller.Name),
			PostalAddress: sellerAddress{
				StreetName:         orPlaceholder(strVal(seller.Street)),
				TownName:           orPlaceholder(strVal(seller.City)),
				PostCodeIdentifier: orPlaceholder(strVal(seller.PostalCode)),
				CountryCode:        seller.CountryCode,
			},
		},
		SellerInfo: sellerInfo{
			AccountDetails: sellerAccount{
				AccountID: schemeValue{Value: *seller.IBAN, SchemeID: "IBAN"},
				BIC:       schemeValue{Value: *seller.BIC, SchemeID: "BIC"},
			},
		},
		BuyerParty: buyerParty{
			Identifier:       strVal(customer.VATID),
			OrganisationName: orPlaceholder(customer.Name),
			PostalAddress: buyerAddress{
				StreetName:         orPlaceholder(strVal(customer.Street)),
				TownName:           orPlaceholder(strVal(customer.City)),
				PostCodeIdentifier: orPlaceholder(strVal(customer.PostalCode)),
				CountryCode:        customer.CountryCode,
			},
		},
		Details: details{
			TypeCode:          typeCodeInvoice,
			InvoiceNumber:     inv.InvoiceNumber,
			InvoiceDate:       xmlDate(inv.InvoiceDate),
			VatExcludedAmount: xmlAmount(totals.Subtotal),
			VatAmount:         xmlAmount(totals.VATTotal),
			VatIncludedAmount: xmlAmount(totals.GrandTotal),
		},
		Epi: epiDetails{
			PartyDetails: epiParty{
				BfiIdentifier: schemeValue{Value: *seller.BIC, SchemeID: "BIC"},
				Beneficiary: epiBeneficiary{
					Name:      orPlaceholder(seller.Name),
					AccountID: schemeValue{Value: *seller.IBAN, SchemeID: "IBAN"},
				},
			},
			PaymentInstruction: epiInstruction{
				RemittanceInfo:   schemeValue{Value: inv.ReferenceNumber, SchemeID: "SPY"},
				InstructedAmount: xmlAmount(inv.TotalAmount),
			},
		},
	}

	if inv.IsCreditNote {
		doc.Details.TypeCode = typeCodeCreditNote
	}
	if inv.DueDate != nil && *inv.DueDate != "" {
		doc.Details.PaymentTerms = &terms{InvoiceDueDate: xmlDate(*inv.DueDate)}
		doc.Epi.PaymentInstruction.DateOptionDate = xmlDate(*inv.DueDate)
	} else {
		doc.Epi.PaymentInstruction.DateOptionDate = xmlDate(inv.InvoiceDate)
	}

	for _, rs := range totals.Rates {
		doc.Details.VatSpecification = append(doc.Details.VatSpecification, vatSpec{
			BaseAmount:  xmlAmount(rs.Net),
			RatePercent: rs.Rate.StringFixed(2),
			RateAmount:  xmlAmount(rs.VAT),
		})
	}

	for _, l := range inv.Lines {
		gross := l.NetAmount.Add(l.VATAmount)
		doc.Rows = append(doc.Rows, row{
			ArticleName:       l.Description,
			DeliveredQuantity: quantity{Value: l.Quantity.String(), UnitCode: "kpl"},
			UnitPriceAmount:   xmlAmount(l.UnitPrice.Round2()),
			VatRatePercent:    l.VATRate.StringFixed(2),
			VatAmount:         xmlAmount(l.VATAmount),
			VatExcludedAmount: xmlAmount(l.NetAmount),
			Amount:            xmlAmount(gross),
		})
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling finvoice: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}

// xmlAmount renders a fixed two-decimal amount with a period separator,
// never locale-formatted.
func xmlAmount(m models.Money) amount {
	return amount{Value: m.StringFixed2(), CurrencyID: currency}
}

// xmlDate converts a stored ISO date to the CCYYMMDD form Finvoice wants.
// Unparseable input passes through stripped of separators rather than
// failing the whole export.
func xmlDate(iso string) dateValue {
	if t, err := time.Parse("2006-01-02", iso); err == nil {
		return dateValue{Value: t.Format("20060102"), Format: dateFormat}
	}
	return dateValue{Value: strings.ReplaceAll(iso, "-", ""), Format: dateFormat}
}

func strVal(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orPlaceholder(s string) string {
	if s == "" {
		return placeholder
	}
	return s
}
