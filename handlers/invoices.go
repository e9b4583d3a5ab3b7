package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mkoskinen/laskutus/finance"
	"github.com/mkoskinen/laskutus/models"
)

// ListInvoices lists invoices and credit notes
// @Summary      List invoices
// @Description  Invoice headers, newest first. Credit notes are invoices with is_credit_note set.
// @Tags         invoices
// @Produce      json
// @Param        status        query     string  false  "Filter by status"
// @Param        customer_id   query     int     false  "Filter by customer"
// @Param        search        query     string  false  "Search by invoice number, reference or customer name"
// @Param        credit_notes  query     bool    false  "Only credit notes (true) or only invoices (false)"
// @Success      200           {object}  Response{data=[]models.Invoice}
// @Router       /invoices [get]
// @Security     BasicAuth
func ListInvoices(w http.ResponseWriter, r *http.Request) {
	f := finance.InvoiceFilter{
		Status: r.URL.Query().Get("status"),
		Search: r.URL.Query().Get("search"),
	}
	if cid := r.URL.Query().Get("customer_id"); cid != "" {
		f.CustomerID, _ = strconv.Atoi(cid)
	}
	if cn := r.URL.Query().Get("credit_notes"); cn != "" {
		v := cn == "true" || cn == "1"
		f.CreditNotes = &v
	}

	invoices, err := Engine.ListInvoices(r.Context(), f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, invoices)
}

// GetInvoice retrieves an invoice with lines and payments
// @Summary      Get invoice
// @Tags         invoices
// @Produce      json
// @Param        id   path      int  true  "Invoice ID"
// @Success      200  {object}  Response{data=models.Invoice}
// @Failure      404  {object}  Response{error=string}
// @Router       /invoices/{id} [get]
// @Security     BasicAuth
func GetInvoice(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	inv, err := Engine.GetInvoice(r.Context(), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

// CreateInvoice creates a manual invoice
// @Summary      Create invoice
// @Description  Create a draft invoice. Line description, price and VAT rate default from the catalog item; totals, the document number and the payment reference are computed by the engine.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        invoice  body      models.InvoiceInput  true  "Invoice contents"
// @Success      201      {object}  Response{data=models.Invoice}
// @Failure      400      {object}  Response{error=string}
// @Failure      404      {object}  Response{error=string}
// @Router       /invoices [post]
// @Security     BasicAuth
func CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var input models.InvoiceInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	inv, err := Engine.CreateInvoice(r.Context(), input)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

// UpdateInvoice updates an invoice
// @Summary      Update invoice
// @Description  Update invoice fields. When lines are supplied they fully replace-or-merge the existing lines and totals are recomputed; otherwise totals are untouched.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id       path      int                        true  "Invoice ID"
// @Param        invoice  body      models.InvoiceUpdateInput  true  "Updated fields"
// @Success      200      {object}  Response{data=models.Invoice}
// @Failure      400      {object}  Response{error=string}
// @Failure      404      {object}  Response{error=string}
// @Router       /invoices/{id} [put]
// @Security     BasicAuth
func UpdateInvoice(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	var input models.InvoiceUpdateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	inv, err := Engine.UpdateInvoice(r.Context(), id, input)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

// statusInput is the body for status updates.
type statusInput struct {
	Status string `json:"status"`
}

// UpdateInvoiceStatus moves an invoice through its lifecycle
// @Summary      Update invoice status
// @Description  Guarded by the invoice state machine. Marking as paid records a payment for the outstanding balance and is idempotent.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id      path      int          true  "Invoice ID"
// @Param        status  body      statusInput  true  "New status"
// @Success      200     {object}  Response{data=models.Invoice}
// @Failure      404     {object}  Response{error=string}
// @Failure      409     {object}  Response{error=string}
// @Router       /invoices/{id}/status [post]
// @Security     BasicAuth
func UpdateInvoiceStatus(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	var input statusInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	switch input.Status {
	case models.StatusDraft, models.StatusSent, models.StatusPaid, models.StatusOverdue, models.StatusCancelled:
	default:
		writeError(w, http.StatusBadRequest, "status must be one of: draft, sent, paid, overdue, cancelled")
		return
	}

	inv, err := Engine.UpdateStatus(r.Context(), id, input.Status)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

// creditNoteInput selects between a full reversal (no lines) and a partial
// credit note (explicit lines).
type creditNoteInput struct {
	Lines []models.CreditLineInput `json:"lines"`
}

// CreateCreditNote creates a credit note against an invoice
// @Summary      Create credit note
// @Description  Without lines, reverses the whole invoice and marks it credited. With lines, credits the given amounts against the selected lines and leaves the original payable for its remainder.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id    path      int              true   "Original invoice ID"
// @Param        body  body      creditNoteInput  false  "Partial credit lines (omit for a full credit note)"
// @Success      201   {object}  Response{data=models.Invoice}
// @Failure      404   {object}  Response{error=string}
// @Failure      409   {object}  Response{error=string}
// @Router       /invoices/{id}/credit-note [post]
// @Security     BasicAuth
func CreateCreditNote(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))

	var input creditNoteInput
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
	}

	var inv *models.Invoice
	var err error
	if len(input.Lines) == 0 {
		inv, err = Engine.CreateFullCreditNote(r.Context(), id)
	} else {
		for i := range input.Lines {
			if msg := input.Lines[i].Validate(); msg != "" {
				writeError(w, http.StatusBadRequest, msg)
				return
			}
		}
		inv, err = Engine.CreatePartialCreditNote(r.Context(), id, input.Lines)
	}
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}
