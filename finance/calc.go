package finance

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mkoskinen/laskutus/models"
)

var hundred = decimal.NewFromInt(100)

// LineCalc is the money-accurate result for one line, rounded to two
// decimals and ready to persist. Gross = Net + VAT.
type LineCalc struct {
	Net   models.Money
	VAT   models.Money
	Gross models.Money
}

// ComputeLine computes net, VAT and gross for a single line. The whole
// chain runs at full precision; rounding happens once, on the results.
//
// Discount precedence: a percentage wins over a fixed amount. A fixed
// amount can zero a line but never flips its sign: a positive line is
// floored at zero, and a negative line (credit note, where the discount
// carries the line's sign) is capped at zero, so a clamped original
// reverses to exactly zero.
//
// When reverseCharge is set the line VAT is zero regardless of vatRate.
func ComputeLine(quantity decimal.Decimal, unitPrice models.Money, disc models.Discount, vatRate decimal.Decimal, reverseCharge bool) LineCalc {
	gross := unitPrice.Mul(quantity)

	net := gross
	switch disc.Kind {
	case models.DiscountPercent:
		net = gross.Mul(decimal.NewFromInt(1).Sub(disc.Percent.Div(hundred)))
	case models.DiscountAmount:
		net = gross.Sub(disc.Amount)
		if (gross.Sign() >= 0 && net.IsNegative()) || (gross.Sign() < 0 && net.Sign() > 0) {
			net = models.Money{}
		}
	}

	var vat models.Money
	if !reverseCharge {
		vat = net.PercentOf(vatRate)
	}

	netR := net.Round2()
	vatR := vat.Round2()
	return LineCalc{Net: netR, VAT: vatR, Gross: netR.Add(vatR)}
}

// RateSummary is the net and VAT total for one distinct VAT rate.
type RateSummary struct {
	Rate decimal.Decimal `json:"rate"`
	Net  models.Money    `json:"net"`
	VAT  models.Money    `json:"vat"`
}

// Totals aggregates persisted lines into document totals and the per-rate
// VAT summary required by the Finvoice output.
type Totals struct {
	Subtotal   models.Money  `json:"subtotal"`
	VATTotal   models.Money  `json:"vat_total"`
	GrandTotal models.Money  `json:"grand_total"`
	Rates      []RateSummary `json:"rates"`
}

// SummarizeLines sums the already-rounded per-line amounts so that document
// totals always equal the sum of what is persisted, and groups net/VAT by
// distinct VAT rate, ascending.
func SummarizeLines(lines []models.InvoiceLine) Totals {
	var t Totals
	byRate := map[string]*RateSummary{}

	for i := range lines {
		l := &lines[i]
		t.Subtotal = t.Subtotal.Add(l.NetAmount)
		t.VATTotal = t.VATTotal.Add(l.VATAmount)

		key := l.VATRate.String()
		rs, ok := byRate[key]
		if !ok {
			rs = &RateSummary{Rate: l.VATRate}
			byRate[key] = rs
		}
		rs.Net = rs.Net.Add(l.NetAmount)
		rs.VAT = rs.VAT.Add(l.VATAmount)
	}

	t.GrandTotal = t.Subtotal.Add(t.VATTotal)
	for _, rs := range byRate {
		t.Rates = append(t.Rates, *rs)
	}
	sort.Slice(t.Rates, func(i, j int) bool { return t.Rates[i].Rate.LessThan(t.Rates[j].Rate) })
	return t
}
