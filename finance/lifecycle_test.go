package finance

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkoskinen/laskutus/models"
)

func TestCreateInvoiceResolvesItemsAndTotals(t *testing.T) {
	s := newTestService(t)
	cust := seedCustomer(t, s, "Asiakas Oy")
	item := seedItem(t, s, "Konsultointi", "100.00", "60.00", "25.5")

	inv, err := s.CreateInvoice(context.Background(), models.InvoiceInput{
		CustomerID: cust,
		Lines: []models.InvoiceLineInput{
			{ItemID: &item, Quantity: dec(t, "2")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusDraft, inv.Status)
	assert.Equal(t, yearPrefix()+"00001", inv.InvoiceNumber)

	// Payment reference is derived from the document number
	ref, err := ReferenceNumber(inv.InvoiceNumber)
	require.NoError(t, err)
	assert.Equal(t, ref, inv.ReferenceNumber)

	require.Len(t, inv.Lines, 1)
	line := inv.Lines[0]
	assert.Equal(t, "Konsultointi", line.Description)
	assert.Equal(t, "100.00", line.UnitPrice.StringFixed2())
	assert.Equal(t, "25.5", line.VATRate.String())
	require.NotNil(t, line.UnitCost)
	assert.Equal(t, "60.00", line.UnitCost.StringFixed2())
	assert.Equal(t, "200.00", line.NetAmount.StringFixed2())
	assert.Equal(t, "51.00", line.VATAmount.StringFixed2())

	assert.Equal(t, "251.00", inv.TotalAmount.StringFixed2())
	assert.Equal(t, "51.00", inv.TotalVATAmount.StringFixed2())
}

func TestCreateInvoiceUnknownCustomer(t *testing.T) {
	s := newTestService(t)
	_, err := s.CreateInvoice(context.Background(), models.InvoiceInput{
		CustomerID: 999,
		Lines: []models.InvoiceLineInput{
			{Description: ptr("Työ"), Quantity: dec(t, "1"), UnitPrice: ptr(money(t, "10.00"))},
		},
	})
	assert.True(t, errors.Is(err, ErrCustomerNotFound))
}

func TestCreateInvoiceUnknownItem(t *testing.T) {
	s := newTestService(t)
	cust := seedCustomer(t, s, "Asiakas Oy")
	missing := 4242
	_, err := s.CreateInvoice(context.Background(), models.InvoiceInput{
		CustomerID: cust,
		Lines: []models.InvoiceLineInput{
			{ItemID: &missing, Quantity: dec(t, "1")},
		},
	})
	assert.True(t, errors.Is(err, ErrItemNotFound))
}

func TestCreateFromOrderVATFallbackChain(t *testing.T) {
	s := newTestService(t)
	cust := seedCustomer(t, s, "Asiakas Oy")
	item := seedItem(t, s, "Lisenssi", "50.00", "0.00", "14")

	explicit := dec(t, "10")
	order := seedOrder(t, s, cust, []models.OrderLineInput{
		// Explicit line rate wins over everything
		{Description: ptr("Erikoisrivi"), Quantity: dec(t, "1"), UnitPrice: ptr(money(t, "100.00")), VATRate: &explicit},
		// Item's default rate
		{ItemID: &item, Quantity: dec(t, "1"), UnitPrice: ptr(money(t, "50.00"))},
		// Company default
		{Description: ptr("Muu työ"), Quantity: dec(t, "1"), UnitPrice: ptr(money(t, "10.00"))},
	})

	inv, err := s.CreateFromOrder(context.Background(), order)
	require.NoError(t, err)

	require.NotNil(t, inv.OrderID)
	assert.Equal(t, order, *inv.OrderID)
	require.Len(t, inv.Lines, 3)
	assert.Equal(t, "10", inv.Lines[0].VATRate.String())
	assert.Equal(t, "14", inv.Lines[1].VATRate.String())
	assert.Equal(t, "25.5", inv.Lines[2].VATRate.String())

	var status string
	require.NoError(t, s.db.QueryRow(`SELECT status FROM orders WHERE id = ?`, order).Scan(&status))
	assert.Equal(t, models.OrderStatusInvoiced, status)

	// Already invoiced: a second invoicing attempt is rejected
	_, err = s.CreateFromOrder(context.Background(), order)
	assert.True(t, errors.Is(err, ErrOrderNotOpen))
}

func TestCreateFromOrderUnknownOrder(t *testing.T) {
	s := newTestService(t)
	_, err := s.CreateFromOrder(context.Background(), 999)
	assert.True(t, errors.Is(err, ErrOrderNotFound))
}

func TestStatusTransitions(t *testing.T) {
	s := newTestService(t)
	cust := seedCustomer(t, s, "Asiakas Oy")
	inv, err := s.CreateInvoice(context.Background(), models.InvoiceInput{
		CustomerID: cust,
		Lines: []models.InvoiceLineInput{
			{Description: ptr("Työ"), Quantity: dec(t, "1"), UnitPrice: ptr(money(t, "100.00"))},
		},
	})
	require.NoError(t, err)

	// draft cannot jump straight to paid
	_, err = s.UpdateStatus(context.Background(), inv.ID, models.StatusPaid)
	assert.True(t, errors.Is(err, ErrInvalidTransition))

	// unknown status is rejected before touching the database
	_, err = s.UpdateStatus(context.Background(), inv.ID, "archived")
	assert.True(t, errors.Is(err, ErrInvalidTransition))

	inv, err = s.UpdateStatus(context.Background(), inv.ID, models.StatusSent)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSent, inv.Status)

	inv, err = s.UpdateStatus(context.Background(), inv.ID, models.StatusOverdue)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOverdue, inv.Status)

	// paid is terminal
	inv, err = s.UpdateStatus(context.Background(), inv.ID, models.StatusPaid)
	require.NoError(t, err)
	_, err = s.UpdateStatus(context.Background(), inv.ID, models.StatusSent)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
}

func TestMarkPaidIsIdempotent(t *testing.T) {
	s := newTestService(t)
	cust := seedCustomer(t, s, "Asiakas Oy")
	inv, err := s.CreateInvoice(context.Background(), models.InvoiceInput{
		CustomerID: cust,
		Lines: []models.InvoiceLineInput{
			{Description: ptr("Työ"), Quantity: dec(t, "3"), UnitPrice: ptr(money(t, "10.00")), VATRate: ptr(dec(t, "25.5"))},
		},
	})
	require.NoError(t, err)

	_, err = s.UpdateStatus(context.Background(), inv.ID, models.StatusSent)
	require.NoError(t, err)

	inv, err = s.UpdateStatus(context.Background(), inv.ID, models.StatusPaid)
	require.NoError(t, err)
	require.Len(t, inv.Payments, 1)
	assert.Equal(t, inv.TotalAmount.StringFixed2(), inv.PaidAmount.StringFixed2())

	// Marking paid again must not record a second payment
	inv, err = s.UpdateStatus(context.Background(), inv.ID, models.StatusPaid)
	require.NoError(t, err)
	assert.Len(t, inv.Payments, 1)
	assert.Equal(t, inv.TotalAmount.StringFixed2(), inv.PaidAmount.StringFixed2())
}

func TestMarkPaidRecordsOutstandingBalance(t *testing.T) {
	s := newTestService(t)
	cust := seedCustomer(t, s, "Asiakas Oy")
	inv, err := s.CreateInvoice(context.Background(), models.InvoiceInput{
		CustomerID: cust,
		Lines: []models.InvoiceLineInput{
			{Description: ptr("Työ"), Quantity: dec(t, "1"), UnitPrice: ptr(money(t, "100.00")), VATRate: ptr(dec(t, "0"))},
		},
	})
	require.NoError(t, err)
	_, err = s.UpdateStatus(context.Background(), inv.ID, models.StatusSent)
	require.NoError(t, err)

	// Partial payment already on file
	_, err = s.db.Exec(`INSERT INTO payments (invoice_id, amount, paid_at) VALUES (?, '40.00', '2026-01-15')`, inv.ID)
	require.NoError(t, err)

	inv, err = s.UpdateStatus(context.Background(), inv.ID, models.StatusPaid)
	require.NoError(t, err)
	require.Len(t, inv.Payments, 2)
	assert.Equal(t, "100.00", inv.PaidAmount.StringFixed2())
}

func TestUpdateInvoiceReplaceOrMergeLines(t *testing.T) {
	s := newTestService(t)
	cust := seedCustomer(t, s, "Asiakas Oy")
	inv, err := s.CreateInvoice(context.Background(), models.InvoiceInput{
		CustomerID: cust,
		Lines: []models.InvoiceLineInput{
			{Description: ptr("Rivi A"), Quantity: dec(t, "1"), UnitPrice: ptr(money(t, "100.00")), VATRate: ptr(dec(t, "0"))},
			{Description: ptr("Rivi B"), Quantity: dec(t, "1"), UnitPrice: ptr(money(t, "50.00")), VATRate: ptr(dec(t, "0"))},
		},
	})
	require.NoError(t, err)
	require.Len(t, inv.Lines, 2)
	keptID := inv.Lines[0].ID

	// Keep A with a new quantity, drop B, add C
	updated, err := s.UpdateInvoice(context.Background(), inv.ID, models.InvoiceUpdateInput{
		Lines: &[]models.InvoiceLineInput{
			{ID: &keptID, Description: ptr("Rivi A"), Quantity: dec(t, "2"), UnitPrice: ptr(money(t, "100.00")), VATRate: ptr(dec(t, "0"))},
			{Description: ptr("Rivi C"), Quantity: dec(t, "1"), UnitPrice: ptr(money(t, "25.00")), VATRate: ptr(dec(t, "0"))},
		},
	})
	require.NoError(t, err)

	require.Len(t, updated.Lines, 2)
	assert.Equal(t, keptID, updated.Lines[0].ID)
	assert.Equal(t, "200.00", updated.Lines[0].NetAmount.StringFixed2())
	assert.Equal(t, "Rivi C", updated.Lines[1].Description)
	assert.Equal(t, "225.00", updated.TotalAmount.StringFixed2())
}

func TestUpdateInvoiceFieldsLeaveTotalsAlone(t *testing.T) {
	s := newTestService(t)
	cust := seedCustomer(t, s, "Asiakas Oy")
	inv, err := s.CreateInvoice(context.Background(), models.InvoiceInput{
		CustomerID: cust,
		Lines: []models.InvoiceLineInput{
			{Description: ptr("Työ"), Quantity: dec(t, "1"), UnitPrice: ptr(money(t, "100.00")), VATRate: ptr(dec(t, "25.5"))},
		},
	})
	require.NoError(t, err)

	updated, err := s.UpdateInvoice(context.Background(), inv.ID, models.InvoiceUpdateInput{
		Notes:   ptr("maksuehto 14 pv"),
		DueDate: ptr("2026-09-30"),
	})
	require.NoError(t, err)
	require.NotNil(t, updated.Notes)
	assert.Equal(t, "maksuehto 14 pv", *updated.Notes)
	assert.Equal(t, inv.TotalAmount.StringFixed2(), updated.TotalAmount.StringFixed2())
	assert.Len(t, updated.Lines, 1)
}

func TestUpdateInvoiceNotFound(t *testing.T) {
	s := newTestService(t)
	_, err := s.UpdateInvoice(context.Background(), 999, models.InvoiceUpdateInput{Notes: ptr("x")})
	assert.True(t, errors.Is(err, ErrInvoiceNotFound))
}
