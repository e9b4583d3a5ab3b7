package finance

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/mkoskinen/laskutus/models"
)

func TestComputeLinePercentDiscount(t *testing.T) {
	// 3 x 10.00 with 10 % discount at 25.5 % VAT
	calc := ComputeLine(dec(t, "3"), money(t, "10.00"), models.Discount{Kind: models.DiscountPercent, Percent: dec(t, "10")}, dec(t, "25.5"), false)
	assert.Equal(t, "27.00", calc.Net.StringFixed2())
	assert.Equal(t, "6.89", calc.VAT.StringFixed2()) // 27.00 * 0.255 = 6.885, rounded once
	assert.Equal(t, "33.89", calc.Gross.StringFixed2())
}

func TestComputeLineAmountDiscount(t *testing.T) {
	calc := ComputeLine(dec(t, "2"), money(t, "50.00"), models.Discount{Kind: models.DiscountAmount, Amount: money(t, "15.50")}, dec(t, "14"), false)
	assert.Equal(t, "84.50", calc.Net.StringFixed2())
	assert.Equal(t, "11.83", calc.VAT.StringFixed2())
	assert.Equal(t, "96.33", calc.Gross.StringFixed2())
}

func TestComputeLineAmountDiscountClampsAtZero(t *testing.T) {
	// A fixed discount larger than the line value floors a positive line at zero.
	calc := ComputeLine(dec(t, "1"), money(t, "5.00"), models.Discount{Kind: models.DiscountAmount, Amount: money(t, "10.00")}, dec(t, "25.5"), false)
	assert.True(t, calc.Net.IsZero())
	assert.True(t, calc.VAT.IsZero())
	assert.True(t, calc.Gross.IsZero())

	// The mirror case on a reversed line: the oversized discount carries the
	// line's sign, and the clamp caps the net at zero instead of letting it
	// go positive.
	calc = ComputeLine(dec(t, "-1"), money(t, "5.00"), models.Discount{Kind: models.DiscountAmount, Amount: money(t, "-10.00")}, dec(t, "25.5"), false)
	assert.True(t, calc.Net.IsZero())
	assert.True(t, calc.VAT.IsZero())
	assert.True(t, calc.Gross.IsZero())
}

func TestComputeLineNegativeQuantityPropagates(t *testing.T) {
	// Credit note lines carry negative quantities; the fixed discount mirrors
	// the sign and must not be clamped.
	pos := ComputeLine(dec(t, "3"), money(t, "10.00"), models.Discount{Kind: models.DiscountAmount, Amount: money(t, "3.00")}, dec(t, "25.5"), false)
	neg := ComputeLine(dec(t, "-3"), money(t, "10.00"), models.Discount{Kind: models.DiscountAmount, Amount: money(t, "-3.00")}, dec(t, "25.5"), false)
	assert.Equal(t, pos.Net.Neg().StringFixed2(), neg.Net.StringFixed2())
	assert.Equal(t, pos.VAT.Neg().StringFixed2(), neg.VAT.StringFixed2())
	assert.Equal(t, pos.Gross.Neg().StringFixed2(), neg.Gross.StringFixed2())
}

func TestComputeLineReverseCharge(t *testing.T) {
	calc := ComputeLine(dec(t, "4"), money(t, "25.00"), models.Discount{Kind: models.DiscountNone}, dec(t, "25.5"), true)
	assert.Equal(t, "100.00", calc.Net.StringFixed2())
	assert.True(t, calc.VAT.IsZero())
	assert.Equal(t, "100.00", calc.Gross.StringFixed2())
}

func TestComputeLineRoundsHalfAwayFromZero(t *testing.T) {
	// 0.10 at 25 % VAT = 0.025, which rounds up to 0.03.
	calc := ComputeLine(dec(t, "1"), money(t, "0.10"), models.Discount{Kind: models.DiscountNone}, dec(t, "25"), false)
	assert.Equal(t, "0.03", calc.VAT.StringFixed2())
}

func TestNewDiscountPercentWins(t *testing.T) {
	pct := dec(t, "10")
	amt := money(t, "5.00")
	d := models.NewDiscount(&pct, &amt)
	assert.Equal(t, models.DiscountPercent, d.Kind)

	zero := decimal.Zero
	d = models.NewDiscount(&zero, &amt)
	assert.Equal(t, models.DiscountAmount, d.Kind)

	// Negative amounts stay a discount; they come from reversed lines.
	negAmt := money(t, "-5.00")
	d = models.NewDiscount(nil, &negAmt)
	assert.Equal(t, models.DiscountAmount, d.Kind)

	d = models.NewDiscount(nil, nil)
	assert.Equal(t, models.DiscountNone, d.Kind)
}

func TestSummarizeLines(t *testing.T) {
	lines := []models.InvoiceLine{
		{NetAmount: money(t, "100.00"), VATAmount: money(t, "25.50"), VATRate: dec(t, "25.5")},
		{NetAmount: money(t, "50.00"), VATAmount: money(t, "7.00"), VATRate: dec(t, "14")},
		{NetAmount: money(t, "20.00"), VATAmount: money(t, "5.10"), VATRate: dec(t, "25.5")},
	}
	totals := SummarizeLines(lines)

	assert.Equal(t, "170.00", totals.Subtotal.StringFixed2())
	assert.Equal(t, "37.60", totals.VATTotal.StringFixed2())
	assert.Equal(t, "207.60", totals.GrandTotal.StringFixed2())

	// Grouped by rate, ascending
	assert.Len(t, totals.Rates, 2)
	assert.Equal(t, "14", totals.Rates[0].Rate.String())
	assert.Equal(t, "50.00", totals.Rates[0].Net.StringFixed2())
	assert.Equal(t, "25.5", totals.Rates[1].Rate.String())
	assert.Equal(t, "120.00", totals.Rates[1].Net.StringFixed2())
	assert.Equal(t, "30.60", totals.Rates[1].VAT.StringFixed2())
}

func TestSummarizeLinesEmpty(t *testing.T) {
	totals := SummarizeLines(nil)
	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.GrandTotal.IsZero())
	assert.Empty(t, totals.Rates)
}
