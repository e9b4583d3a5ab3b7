package finance

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mkoskinen/laskutus/models"
)

// CreateFullCreditNote reverses an entire invoice. Every line quantity is
// negated and totals are recomputed from the negated lines, so the per-rate
// VAT summary of the pair stays internally consistent instead of being a
// blind sign flip of the original totals. The pair is linked bidirectionally
// and the original moves to "credited", all in one transaction.
func (s *Service) CreateFullCreditNote(ctx context.Context, originalID int) (*models.Invoice, error) {
	return s.createDocument(ctx, func(tx *sql.Tx) (*models.Invoice, error) {
		original, err := getInvoice(tx, originalID)
		if err != nil {
			return nil, err
		}
		if original.IsCreditNote {
			return nil, fmt.Errorf("%w: %s", ErrCreditNoteOfCreditNote, original.InvoiceNumber)
		}
		if original.CreditNoteID != nil {
			return nil, fmt.Errorf("%w: %s already credited by invoice %d",
				ErrAlreadyCredited, original.InvoiceNumber, *original.CreditNoteID)
		}

		origLines, err := getInvoiceLines(tx, originalID)
		if err != nil {
			return nil, err
		}

		lines := make([]models.InvoiceLine, 0, len(origLines))
		for _, ol := range origLines {
			l := models.InvoiceLine{
				ItemID:          ol.ItemID,
				Description:     ol.Description,
				Quantity:        ol.Quantity.Neg(),
				UnitPrice:       ol.UnitPrice,
				DiscountPercent: ol.DiscountPercent,
				VATRate:         ol.VATRate,
				UnitCost:        ol.UnitCost,
			}
			// Fixed discounts mirror the sign of the reversed line so the
			// credit net is the exact negation of the original net.
			if ol.DiscountAmount != nil {
				neg := ol.DiscountAmount.Neg()
				l.DiscountAmount = &neg
			}
			calc := ComputeLine(l.Quantity, l.UnitPrice, l.Discount(), l.VATRate, original.VATReverseCharge)
			l.NetAmount = calc.Net
			l.VATAmount = calc.VAT
			lines = append(lines, l)
		}

		note, err := s.insertCreditNote(tx, original, lines)
		if err != nil {
			return nil, err
		}
		if _, err := tx.Exec(`UPDATE invoices SET credit_note_id = ?, status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			note.ID, models.StatusCredited, originalID); err != nil {
			return nil, err
		}
		return note, nil
	})
}

// CreatePartialCreditNote reverses selected lines of an invoice by explicit
// credit amounts. The implied credited quantity per line is
// −creditAmount/unitPrice, defaulting to −1 when the original unit price is
// zero. The original stays payable for its remainder: its status is not
// forced to "credited", only the credit-note link is recorded.
//
// Each credit amount is checked against the original line's net amount, but
// no cumulative "already credited" balance is tracked across multiple
// partial credit notes, so repeated partials can over-credit a line. That
// leniency is deliberate pending a product decision; see DESIGN.md.
func (s *Service) CreatePartialCreditNote(ctx context.Context, originalID int, creditLines []models.CreditLineInput) (*models.Invoice, error) {
	return s.createDocument(ctx, func(tx *sql.Tx) (*models.Invoice, error) {
		original, err := getInvoice(tx, originalID)
		if err != nil {
			return nil, err
		}
		if original.IsCreditNote {
			return nil, fmt.Errorf("%w: %s", ErrCreditNoteOfCreditNote, original.InvoiceNumber)
		}

		origLines, err := getInvoiceLines(tx, originalID)
		if err != nil {
			return nil, err
		}
		byID := make(map[int]*models.InvoiceLine, len(origLines))
		for i := range origLines {
			byID[origLines[i].ID] = &origLines[i]
		}

		lines := make([]models.InvoiceLine, 0, len(creditLines))
		for _, cl := range creditLines {
			ol, ok := byID[cl.LineID]
			if !ok {
				return nil, fmt.Errorf("%w: line %d on invoice %s", ErrInvoiceLineNotFound, cl.LineID, original.InvoiceNumber)
			}
			if cl.CreditAmount.GreaterThan(ol.NetAmount.Decimal) {
				return nil, fmt.Errorf("%w: line %d net is %s, credit requested %s",
					ErrCreditExceedsLine, cl.LineID, ol.NetAmount.StringFixed2(), cl.CreditAmount.StringFixed2())
			}

			quantity := decimal.NewFromInt(-1)
			if !ol.UnitPrice.IsZero() {
				q, err := cl.CreditAmount.Div(ol.UnitPrice.Decimal)
				if err != nil {
					return nil, err
				}
				quantity = q.Decimal.Neg()
			}

			lines = append(lines, models.InvoiceLine{
				ItemID:      ol.ItemID,
				Description: ol.Description,
				Quantity:    quantity,
				UnitPrice:   ol.UnitPrice,
				VATRate:     ol.VATRate,
				NetAmount:   cl.CreditAmount.Neg().Round2(),
				VATAmount:   cl.CreditVATAmount.Neg().Round2(),
				UnitCost:    ol.UnitCost,
			})
		}

		note, err := s.insertCreditNote(tx, original, lines)
		if err != nil {
			return nil, err
		}
		if _, err := tx.Exec(`UPDATE invoices SET credit_note_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			note.ID, originalID); err != nil {
			return nil, err
		}
		return note, nil
	})
}

// insertCreditNote persists a credit note derived from original through the
// same numbering and reference path as regular invoices.
func (s *Service) insertCreditNote(tx *sql.Tx, original *models.Invoice, lines []models.InvoiceLine) (*models.Invoice, error) {
	totals := SummarizeLines(lines)
	now := time.Now()

	note := &models.Invoice{
		CustomerID:        original.CustomerID,
		InvoiceDate:       now.Format("2006-01-02"),
		Status:            models.StatusDraft,
		TotalAmount:       totals.GrandTotal,
		TotalVATAmount:    totals.VATTotal,
		VATReverseCharge:  original.VATReverseCharge,
		IsCreditNote:      true,
		OriginalInvoiceID: &original.ID,
	}

	var err error
	if note.InvoiceNumber, err = s.nextDocumentNumber(tx, now); err != nil {
		return nil, err
	}
	if note.ReferenceNumber, err = ReferenceNumber(note.InvoiceNumber); err != nil {
		return nil, err
	}

	if err := insertInvoice(tx, note); err != nil {
		return nil, err
	}
	for i := range lines {
		lines[i].InvoiceID = note.ID
		if err := insertLine(tx, &lines[i]); err != nil {
			return nil, err
		}
	}
	note.Lines = lines
	return note, nil
}
