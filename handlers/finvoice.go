package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mkoskinen/laskutus/finvoice"
)

// ExportFinvoice serializes an invoice as Finvoice XML
// @Summary      Export invoice as Finvoice XML
// @Description  Produces a Finvoice 3.0 document. Fails with 422 when the seller profile is missing VAT id, IBAN or BIC.
// @Tags         invoices
// @Produce      xml
// @Param        id   path      int  true  "Invoice ID"
// @Success      200  {string}  string  "Finvoice XML document"
// @Failure      404  {object}  Response{error=string}
// @Failure      422  {object}  Response{error=string}
// @Router       /invoices/{id}/finvoice [get]
// @Security     BasicAuth
func ExportFinvoice(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))

	inv, err := Engine.GetInvoice(r.Context(), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	customer, err := getCustomerByID(inv.CustomerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	seller, err := getSellerProfile()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	doc, err := finvoice.Export(inv, &customer, &seller)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.xml"`, inv.InvoiceNumber))
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}
