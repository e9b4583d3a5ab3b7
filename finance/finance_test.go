package finance

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/mkoskinen/laskutus/db"
	"github.com/mkoskinen/laskutus/models"
)

// newTestService opens a throwaway sqlite database, runs the real
// migrations and returns an engine with the default configuration.
func newTestService(t *testing.T) *Service {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	database, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(ON)")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, db.Migrate(database))
	return NewService(database, Config{
		NumberPrefix:   "INV-",
		DefaultVATRate: decimal.RequireFromString("25.5"),
	})
}

func seedCustomer(t *testing.T, s *Service, name string) int {
	t.Helper()
	var id int
	require.NoError(t, s.db.QueryRow(
		`INSERT INTO customers (name, street, postal_code, city) VALUES (?, 'Testikatu 1', '00100', 'Helsinki') RETURNING id`,
		name).Scan(&id))
	return id
}

func seedItem(t *testing.T, s *Service, name, price, cost, vat string) int {
	t.Helper()
	var id int
	require.NoError(t, s.db.QueryRow(
		`INSERT INTO catalog_items (name, unit_price, cost_price, default_vat_rate) VALUES (?, ?, ?, ?) RETURNING id`,
		name, price, cost, vat).Scan(&id))
	return id
}

func seedOrder(t *testing.T, s *Service, customerID int, lines []models.OrderLineInput) int {
	t.Helper()
	var id int
	require.NoError(t, s.db.QueryRow(
		`INSERT INTO orders (customer_id, order_number) VALUES (?, 'ORD-T') RETURNING id`, customerID).Scan(&id))
	for _, l := range lines {
		desc := ""
		if l.Description != nil {
			desc = *l.Description
		}
		price := "0"
		if l.UnitPrice != nil {
			price = l.UnitPrice.String()
		}
		var vat any
		if l.VATRate != nil {
			vat = l.VATRate.String()
		}
		var discPct any
		if l.DiscountPercent != nil {
			discPct = l.DiscountPercent.String()
		}
		_, err := s.db.Exec(`INSERT INTO order_lines (order_id, item_id, description, quantity, unit_price, discount_percent, vat_rate)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, l.ItemID, desc, l.Quantity.String(), price, discPct, vat)
		require.NoError(t, err)
	}
	return id
}

// insertRawInvoice plants an invoice row with an arbitrary number, for
// exercising the sequencer against pre-existing data.
func insertRawInvoice(t *testing.T, s *Service, customerID int, number string) {
	t.Helper()
	_, err := s.db.Exec(`INSERT INTO invoices (customer_id, invoice_number, invoice_date) VALUES (?, ?, ?)`,
		customerID, number, time.Now().Format("2006-01-02"))
	require.NoError(t, err)
}

func yearPrefix() string {
	return fmt.Sprintf("INV-%02d-", time.Now().Year()%100)
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func money(t *testing.T, s string) models.Money {
	t.Helper()
	m, err := models.MoneyFromString(s)
	require.NoError(t, err)
	return m
}

func ptr[T any](v T) *T { return &v }
