package finance

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// nextDocumentNumber produces the next candidate number for the numbering
// period of now's year, formatted PREFIX-YY-NNNNN. The counter resets each
// year and is derived by counting existing documents with the year prefix,
// so it must run inside the same transaction that inserts the document.
// The value is a candidate only; the unique index on invoice_number is the
// backstop and collisions are retried by createDocument.
//
// The sequence part is zero-padded to the width of the last-seen number
// (minimum five digits). A last number whose tail does not parse (legacy
// data) restarts the visible sequence at 00001 instead of failing.
func (s *Service) nextDocumentNumber(tx *sql.Tx, now time.Time) (string, error) {
	prefix := fmt.Sprintf("%s%02d-", s.cfg.NumberPrefix, now.Year()%100)

	var count int
	var last sql.NullString
	err := tx.QueryRow(
		`SELECT COUNT(*), MAX(invoice_number) FROM invoices WHERE invoice_number LIKE ? || '%'`,
		prefix,
	).Scan(&count, &last)
	if err != nil {
		return "", fmt.Errorf("counting documents for %q: %w", prefix, err)
	}

	width := 5
	if last.Valid {
		tail := strings.TrimPrefix(last.String, prefix)
		if _, err := strconv.Atoi(tail); err != nil {
			return prefix + "00001", nil
		}
		if len(tail) > width {
			width = len(tail)
		}
	}
	return fmt.Sprintf("%s%0*d", prefix, width, count+1), nil
}
