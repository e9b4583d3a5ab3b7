package finance

import "errors"

// Deterministic business-rule failures. Handlers map these to HTTP statuses
// with errors.Is; none of them is retried automatically. The one transparent
// retry in the engine is the document-number conflict, which is retried a
// bounded number of times before surfacing ErrNumberConflict.
var (
	// Not found
	ErrCustomerNotFound    = errors.New("customer not found")
	ErrItemNotFound        = errors.New("catalog item not found")
	ErrInvoiceNotFound     = errors.New("invoice not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrInvoiceLineNotFound = errors.New("invoice line not found")

	// Conflict
	ErrInvalidTransition      = errors.New("invalid status transition")
	ErrOrderNotOpen           = errors.New("order is not open for invoicing")
	ErrAlreadyCredited        = errors.New("invoice already has a credit note")
	ErrCreditNoteOfCreditNote = errors.New("cannot credit a credit note")
	ErrNumberConflict         = errors.New("document number conflict")
	ErrCreditExceedsLine      = errors.New("credit amount exceeds original line")
	ErrCreditNoteImmutable    = errors.New("credit note lines cannot be modified")

	// Validation
	ErrInvalidReferenceInput = errors.New("reference base contains no digits")

	// Precondition
	ErrSellerProfileIncomplete = errors.New("seller profile incomplete")
)
