package finance

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mkoskinen/laskutus/models"
)

// querier is satisfied by both *sql.DB and *sql.Tx so read helpers can run
// inside or outside a transaction.
type querier interface {
	QueryRow(query string, args ...any) *sql.Row
	Query(query string, args ...any) (*sql.Rows, error)
	Exec(query string, args ...any) (sql.Result, error)
}

const invoiceSelect = `SELECT i.id, i.customer_id, i.order_id, i.invoice_number, i.reference_number,
	i.invoice_date, i.due_date, i.status, i.total_amount, i.total_vat_amount,
	i.vat_reverse_charge, i.is_credit_note, i.original_invoice_id, i.credit_note_id, i.notes,
	i.created_at, i.updated_at, c.name
	FROM invoices i
	JOIN customers c ON i.customer_id = c.id`

func scanInvoice(scanner interface{ Scan(...any) error }) (models.Invoice, error) {
	var inv models.Invoice
	var reverseCharge, creditNote int
	err := scanner.Scan(&inv.ID, &inv.CustomerID, &inv.OrderID, &inv.InvoiceNumber, &inv.ReferenceNumber,
		&inv.InvoiceDate, &inv.DueDate, &inv.Status, &inv.TotalAmount, &inv.TotalVATAmount,
		&reverseCharge, &creditNote, &inv.OriginalInvoiceID, &inv.CreditNoteID, &inv.Notes,
		&inv.CreatedAt, &inv.UpdatedAt, &inv.CustomerName)
	inv.VATReverseCharge = reverseCharge != 0
	inv.IsCreditNote = creditNote != 0
	return inv, err
}

func getInvoice(q querier, id int) (*models.Invoice, error) {
	inv, err := scanInvoice(q.QueryRow(invoiceSelect+" WHERE i.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrInvoiceNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func getInvoiceLines(q querier, invoiceID int) ([]models.InvoiceLine, error) {
	rows, err := q.Query(`SELECT id, invoice_id, item_id, description, quantity, unit_price,
		discount_percent, discount_amount, vat_rate, net_amount, vat_amount, unit_cost
		FROM invoice_lines WHERE invoice_id = ? ORDER BY id`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []models.InvoiceLine
	for rows.Next() {
		var l models.InvoiceLine
		var discPct, discAmt, unitCost sql.NullString
		if err := rows.Scan(&l.ID, &l.InvoiceID, &l.ItemID, &l.Description, &l.Quantity, &l.UnitPrice,
			&discPct, &discAmt, &l.VATRate, &l.NetAmount, &l.VATAmount, &unitCost); err != nil {
			return nil, err
		}
		if l.DiscountPercent, err = nullDecimal(discPct); err != nil {
			return nil, err
		}
		if l.DiscountAmount, err = nullMoney(discAmt); err != nil {
			return nil, err
		}
		if l.UnitCost, err = nullMoney(unitCost); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func getPayments(q querier, invoiceID int) ([]models.Payment, error) {
	rows, err := q.Query(`SELECT id, invoice_id, amount, paid_at, method, reference, created_at
		FROM payments WHERE invoice_id = ? ORDER BY id`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.InvoiceID, &p.Amount, &p.PaidAt, &p.Method, &p.Reference, &p.CreatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// sumPayments totals recorded payments in decimal space; summing the TEXT
// column in SQL would coerce through floats.
func sumPayments(q querier, invoiceID int) (models.Money, error) {
	payments, err := getPayments(q, invoiceID)
	if err != nil {
		return models.Money{}, err
	}
	var total models.Money
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total, nil
}

func customerExists(q querier, id int) error {
	var one int
	err := q.QueryRow(`SELECT 1 FROM customers WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: id %d", ErrCustomerNotFound, id)
	}
	return err
}

func getCustomer(q querier, id int) (*models.Customer, error) {
	var c models.Customer
	err := q.QueryRow(`SELECT id, name, email, phone, vat_id, street, postal_code, city,
		country_code, e_invoice_address, created_at, updated_at FROM customers WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.VATID, &c.Street, &c.PostalCode, &c.City,
			&c.CountryCode, &c.EInvoiceAddress, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrCustomerNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func getItem(q querier, id int) (*models.CatalogItem, error) {
	var it models.CatalogItem
	err := q.QueryRow(`SELECT id, name, description, unit, unit_price, cost_price, default_vat_rate,
		created_at, updated_at FROM catalog_items WHERE id = ?`, id).
		Scan(&it.ID, &it.Name, &it.Description, &it.Unit, &it.UnitPrice, &it.CostPrice, &it.DefaultVATRate,
			&it.CreatedAt, &it.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrItemNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func getOrder(q querier, id int) (*models.Order, error) {
	var o models.Order
	err := q.QueryRow(`SELECT o.id, o.customer_id, o.order_number, o.status, o.order_date, o.notes,
		o.created_at, o.updated_at, c.name
		FROM orders o JOIN customers c ON o.customer_id = c.id WHERE o.id = ?`, id).
		Scan(&o.ID, &o.CustomerID, &o.OrderNumber, &o.Status, &o.OrderDate, &o.Notes,
			&o.CreatedAt, &o.UpdatedAt, &o.CustomerName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrOrderNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(`SELECT id, order_id, item_id, description, quantity, unit_price,
		discount_percent, discount_amount, vat_rate FROM order_lines WHERE order_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var l models.OrderLine
		var discPct, discAmt, vatRate sql.NullString
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ItemID, &l.Description, &l.Quantity, &l.UnitPrice,
			&discPct, &discAmt, &vatRate); err != nil {
			return nil, err
		}
		if l.DiscountPercent, err = nullDecimal(discPct); err != nil {
			return nil, err
		}
		if l.DiscountAmount, err = nullMoney(discAmt); err != nil {
			return nil, err
		}
		if l.VATRate, err = nullDecimal(vatRate); err != nil {
			return nil, err
		}
		o.Lines = append(o.Lines, l)
	}
	return &o, rows.Err()
}

func insertInvoice(q querier, inv *models.Invoice) error {
	return q.QueryRow(`INSERT INTO invoices (customer_id, order_id, invoice_number, reference_number,
		invoice_date, due_date, status, total_amount, total_vat_amount, vat_reverse_charge,
		is_credit_note, original_invoice_id, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		inv.CustomerID, inv.OrderID, inv.InvoiceNumber, inv.ReferenceNumber,
		inv.InvoiceDate, inv.DueDate, inv.Status, inv.TotalAmount.StringFixed2(), inv.TotalVATAmount.StringFixed2(),
		boolInt(inv.VATReverseCharge), boolInt(inv.IsCreditNote), inv.OriginalInvoiceID, inv.Notes).
		Scan(&inv.ID)
}

func insertLine(q querier, l *models.InvoiceLine) error {
	return q.QueryRow(`INSERT INTO invoice_lines (invoice_id, item_id, description, quantity, unit_price,
		discount_percent, discount_amount, vat_rate, net_amount, vat_amount, unit_cost)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		l.InvoiceID, l.ItemID, l.Description, l.Quantity.String(), l.UnitPrice.String(),
		decimalArg(l.DiscountPercent), moneyArg(l.DiscountAmount), l.VATRate.String(),
		l.NetAmount.StringFixed2(), l.VATAmount.StringFixed2(), moneyArg(l.UnitCost)).
		Scan(&l.ID)
}

func updateLine(q querier, l *models.InvoiceLine) error {
	_, err := q.Exec(`UPDATE invoice_lines SET item_id = ?, description = ?, quantity = ?, unit_price = ?,
		discount_percent = ?, discount_amount = ?, vat_rate = ?, net_amount = ?, vat_amount = ?, unit_cost = ?
		WHERE id = ? AND invoice_id = ?`,
		l.ItemID, l.Description, l.Quantity.String(), l.UnitPrice.String(),
		decimalArg(l.DiscountPercent), moneyArg(l.DiscountAmount), l.VATRate.String(),
		l.NetAmount.StringFixed2(), l.VATAmount.StringFixed2(), moneyArg(l.UnitCost),
		l.ID, l.InvoiceID)
	return err
}

func insertPayment(q querier, p *models.Payment) error {
	return q.QueryRow(`INSERT INTO payments (invoice_id, amount, paid_at, method, reference)
		VALUES (?, ?, ?, ?, ?) RETURNING id`,
		p.InvoiceID, p.Amount.StringFixed2(), p.PaidAt, p.Method, p.Reference).Scan(&p.ID)
}

func nullDecimal(ns sql.NullString) (*decimal.Decimal, error) {
	if !ns.Valid {
		return nil, nil
	}
	d, err := decimal.NewFromString(ns.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func nullMoney(ns sql.NullString) (*models.Money, error) {
	if !ns.Valid {
		return nil, nil
	}
	m, err := models.MoneyFromString(ns.String)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func decimalArg(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func moneyArg(m *models.Money) any {
	if m == nil {
		return nil
	}
	return m.String()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
