package finance

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/mkoskinen/laskutus/models"
)

// transitions is the invoice state machine. Same-status updates are no-ops
// and always allowed. "credited" has no inbound edge here: it is entered
// only by the credit note engine.
var transitions = map[string]map[string]bool{
	models.StatusDraft:     {models.StatusSent: true, models.StatusCancelled: true},
	models.StatusSent:      {models.StatusPaid: true, models.StatusOverdue: true, models.StatusCancelled: true},
	models.StatusOverdue:   {models.StatusPaid: true, models.StatusCancelled: true},
	models.StatusPaid:      {},
	models.StatusCancelled: {},
	models.StatusCredited:  {},
}

// CreateInvoice creates a manual invoice: resolves catalog data for each
// line, computes totals, assigns the next document number and a payment
// reference, and persists header plus lines atomically.
func (s *Service) CreateInvoice(ctx context.Context, input models.InvoiceInput) (*models.Invoice, error) {
	return s.createDocument(ctx, func(tx *sql.Tx) (*models.Invoice, error) {
		return s.buildInvoice(tx, input, nil)
	})
}

// CreateFromOrder copies an open order's lines into a new invoice and marks
// the order invoiced in the same transaction. Missing line VAT rates fall
// back to the catalog item's default rate, then to the company default.
func (s *Service) CreateFromOrder(ctx context.Context, orderID int) (*models.Invoice, error) {
	return s.createDocument(ctx, func(tx *sql.Tx) (*models.Invoice, error) {
		order, err := getOrder(tx, orderID)
		if err != nil {
			return nil, err
		}
		if order.Status != models.OrderStatusOpen {
			return nil, fmt.Errorf("%w: order %d is %s", ErrOrderNotOpen, orderID, order.Status)
		}

		input := models.InvoiceInput{CustomerID: order.CustomerID, Notes: order.Notes}
		for _, ol := range order.Lines {
			li := models.InvoiceLineInput{
				ItemID:          ol.ItemID,
				Quantity:        ol.Quantity,
				DiscountPercent: ol.DiscountPercent,
				DiscountAmount:  ol.DiscountAmount,
				VATRate:         ol.VATRate,
			}
			price := ol.UnitPrice
			li.UnitPrice = &price
			if ol.Description != "" {
				desc := ol.Description
				li.Description = &desc
			}
			input.Lines = append(input.Lines, li)
		}

		inv, err := s.buildInvoice(tx, input, &orderID)
		if err != nil {
			return nil, err
		}
		if _, err := tx.Exec(`UPDATE orders SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			models.OrderStatusInvoiced, orderID); err != nil {
			return nil, err
		}
		return inv, nil
	})
}

// buildInvoice is the shared creation path for manual, order-derived and
// credit-note documents. It must run inside the creating transaction so the
// number count and the insert are atomic.
func (s *Service) buildInvoice(tx *sql.Tx, input models.InvoiceInput, orderID *int) (*models.Invoice, error) {
	if err := customerExists(tx, input.CustomerID); err != nil {
		return nil, err
	}

	lines, err := s.resolveLines(tx, input.Lines, input.VATReverseCharge)
	if err != nil {
		return nil, err
	}
	totals := SummarizeLines(lines)

	now := time.Now()
	inv := &models.Invoice{
		CustomerID:       input.CustomerID,
		OrderID:          orderID,
		InvoiceDate:      now.Format("2006-01-02"),
		DueDate:          input.DueDate,
		Status:           models.StatusDraft,
		TotalAmount:      totals.GrandTotal,
		TotalVATAmount:   totals.VATTotal,
		VATReverseCharge: input.VATReverseCharge,
		Notes:            input.Notes,
	}
	if input.InvoiceDate != nil && *input.InvoiceDate != "" {
		inv.InvoiceDate = *input.InvoiceDate
	}

	if inv.InvoiceNumber, err = s.nextDocumentNumber(tx, now); err != nil {
		return nil, err
	}
	if input.ReferenceNumber != nil && *input.ReferenceNumber != "" {
		inv.ReferenceNumber = *input.ReferenceNumber
	} else if inv.ReferenceNumber, err = ReferenceNumber(inv.InvoiceNumber); err != nil {
		return nil, err
	}

	if err := insertInvoice(tx, inv); err != nil {
		return nil, err
	}
	for i := range lines {
		lines[i].InvoiceID = inv.ID
		if err := insertLine(tx, &lines[i]); err != nil {
			return nil, err
		}
	}
	inv.Lines = lines
	return inv, nil
}

// resolveLines turns line inputs into computed, persistable lines. VAT rate
// priority: explicit line rate, then catalog item default, then company
// default. Unit cost is copied from the item for margin bookkeeping.
func (s *Service) resolveLines(tx *sql.Tx, inputs []models.InvoiceLineInput, reverseCharge bool) ([]models.InvoiceLine, error) {
	lines := make([]models.InvoiceLine, 0, len(inputs))
	for i := range inputs {
		in := &inputs[i]
		line := models.InvoiceLine{
			ItemID:          in.ItemID,
			Quantity:        in.Quantity,
			DiscountPercent: in.DiscountPercent,
			DiscountAmount:  in.DiscountAmount,
			VATRate:         s.cfg.DefaultVATRate,
		}
		if in.ID != nil {
			line.ID = *in.ID
		}
		if in.Description != nil {
			line.Description = *in.Description
		}
		if in.UnitPrice != nil {
			line.UnitPrice = *in.UnitPrice
		}
		if in.VATRate != nil {
			line.VATRate = *in.VATRate
		}

		if in.ItemID != nil {
			item, err := getItem(tx, *in.ItemID)
			if err != nil {
				return nil, err
			}
			if line.Description == "" {
				line.Description = item.Name
			}
			if in.UnitPrice == nil {
				line.UnitPrice = item.UnitPrice
			}
			if in.VATRate == nil {
				line.VATRate = item.DefaultVATRate
			}
			cost := item.CostPrice
			line.UnitCost = &cost
		}

		calc := ComputeLine(line.Quantity, line.UnitPrice, line.Discount(), line.VATRate, reverseCharge)
		line.NetAmount = calc.Net
		line.VATAmount = calc.VAT
		lines = append(lines, line)
	}
	return lines, nil
}

// UpdateStatus moves an invoice through the state machine. Transitioning
// into "paid" records a payment for the outstanding balance unless the
// invoice is already fully paid, which makes marking paid idempotent.
func (s *Service) UpdateStatus(ctx context.Context, id int, newStatus string) (*models.Invoice, error) {
	if _, known := transitions[newStatus]; !known {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, newStatus)
	}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		inv, err := getInvoice(tx, id)
		if err != nil {
			return err
		}
		if newStatus != inv.Status && !transitions[inv.Status][newStatus] {
			return fmt.Errorf("%w: %s %s -> %s", ErrInvalidTransition, inv.InvoiceNumber, inv.Status, newStatus)
		}

		if newStatus == models.StatusPaid {
			paid, err := sumPayments(tx, id)
			if err != nil {
				return err
			}
			outstanding := inv.TotalAmount.Sub(paid)
			if outstanding.IsPositive() {
				p := models.Payment{
					InvoiceID: id,
					Amount:    outstanding.Round2(),
					PaidAt:    time.Now().Format("2006-01-02"),
				}
				if err := insertPayment(tx, &p); err != nil {
					return err
				}
			}
		}

		if newStatus != inv.Status {
			if _, err := tx.Exec(`UPDATE invoices SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
				newStatus, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetInvoice(ctx, id)
}

// UpdateInvoice applies field updates and, when Lines is supplied, a full
// replace-or-merge of the line items: lines with a known ID are updated,
// new lines inserted, lines missing from the input deleted, and totals
// recomputed from scratch. Without Lines, totals are left untouched.
func (s *Service) UpdateInvoice(ctx context.Context, id int, input models.InvoiceUpdateInput) (*models.Invoice, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		inv, err := getInvoice(tx, id)
		if err != nil {
			return err
		}
		if inv.IsCreditNote && input.Lines != nil {
			return fmt.Errorf("%w: %s", ErrCreditNoteImmutable, inv.InvoiceNumber)
		}

		if input.InvoiceDate != nil {
			inv.InvoiceDate = *input.InvoiceDate
		}
		if input.DueDate != nil {
			inv.DueDate = input.DueDate
		}
		if input.VATReverseCharge != nil {
			inv.VATReverseCharge = *input.VATReverseCharge
		}
		if input.ReferenceNumber != nil && *input.ReferenceNumber != "" {
			inv.ReferenceNumber = *input.ReferenceNumber
		}
		if input.Notes != nil {
			inv.Notes = input.Notes
		}

		if input.Lines != nil {
			existing, err := getInvoiceLines(tx, id)
			if err != nil {
				return err
			}
			existingIDs := make(map[int]bool, len(existing))
			for _, l := range existing {
				existingIDs[l.ID] = true
			}

			lines, err := s.resolveLines(tx, *input.Lines, inv.VATReverseCharge)
			if err != nil {
				return err
			}

			kept := make(map[int]bool, len(lines))
			for i := range lines {
				l := &lines[i]
				l.InvoiceID = id
				if l.ID != 0 && existingIDs[l.ID] {
					kept[l.ID] = true
					if err := updateLine(tx, l); err != nil {
						return err
					}
				} else {
					l.ID = 0
					if err := insertLine(tx, l); err != nil {
						return err
					}
				}
			}
			var stale []string
			var staleArgs []any
			for _, l := range existing {
				if !kept[l.ID] {
					stale = append(stale, "?")
					staleArgs = append(staleArgs, l.ID)
				}
			}
			if len(stale) > 0 {
				if _, err := tx.Exec(`DELETE FROM invoice_lines WHERE id IN (`+strings.Join(stale, ",")+`)`,
					staleArgs...); err != nil {
					return err
				}
			}

			totals := SummarizeLines(lines)
			inv.TotalAmount = totals.GrandTotal
			inv.TotalVATAmount = totals.VATTotal
		}

		_, err = tx.Exec(`UPDATE invoices SET invoice_date = ?, due_date = ?, vat_reverse_charge = ?,
			reference_number = ?, notes = ?, total_amount = ?, total_vat_amount = ?,
			updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			inv.InvoiceDate, inv.DueDate, boolInt(inv.VATReverseCharge),
			inv.ReferenceNumber, inv.Notes, inv.TotalAmount.StringFixed2(), inv.TotalVATAmount.StringFixed2(), id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetInvoice(ctx, id)
}

// GetInvoice loads an invoice with its lines, payments and paid total.
func (s *Service) GetInvoice(ctx context.Context, id int) (*models.Invoice, error) {
	inv, err := getInvoice(s.db, id)
	if err != nil {
		return nil, err
	}
	if inv.Lines, err = getInvoiceLines(s.db, id); err != nil {
		return nil, err
	}
	if inv.Payments, err = getPayments(s.db, id); err != nil {
		return nil, err
	}
	for _, p := range inv.Payments {
		inv.PaidAmount = inv.PaidAmount.Add(p.Amount)
	}
	return inv, nil
}

// InvoiceFilter narrows ListInvoices. Zero values mean no filtering.
type InvoiceFilter struct {
	Status      string
	CustomerID  int
	Search      string
	CreditNotes *bool
}

// ListInvoices returns invoice headers, newest first.
func (s *Service) ListInvoices(ctx context.Context, f InvoiceFilter) ([]models.Invoice, error) {
	query := invoiceSelect
	var conditions []string
	var args []any

	if f.Status != "" {
		conditions = append(conditions, "i.status = ?")
		args = append(args, f.Status)
	}
	if f.CustomerID > 0 {
		conditions = append(conditions, "i.customer_id = ?")
		args = append(args, f.CustomerID)
	}
	if f.Search != "" {
		conditions = append(conditions, "(i.invoice_number LIKE ? OR i.reference_number LIKE ? OR c.name LIKE ?)")
		s := "%" + f.Search + "%"
		args = append(args, s, s, s)
	}
	if f.CreditNotes != nil {
		conditions = append(conditions, "i.is_credit_note = ?")
		args = append(args, boolInt(*f.CreditNotes))
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY i.created_at DESC, i.id DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invoices := []models.Invoice{}
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}
