package finance

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"

	"github.com/mkoskinen/laskutus/models"
)

// Config carries the engine's company-level settings.
type Config struct {
	// NumberPrefix is the document number prefix, "INV-" by default.
	// Invoices and credit notes share one numbering space.
	NumberPrefix string
	// DefaultVATRate applies when neither the line nor the catalog item
	// carries a rate.
	DefaultVATRate decimal.Decimal
}

// ConfigFromEnv reads engine settings from the environment.
func ConfigFromEnv() Config {
	cfg := Config{
		NumberPrefix:   "INV-",
		DefaultVATRate: decimal.RequireFromString("25.5"),
	}
	if p := os.Getenv("INVOICE_NUMBER_PREFIX"); p != "" {
		cfg.NumberPrefix = p
	}
	if v := os.Getenv("DEFAULT_VAT_RATE"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			slog.Warn("ignoring invalid DEFAULT_VAT_RATE", "value", v, "error", err)
		} else {
			cfg.DefaultVATRate = d
		}
	}
	return cfg
}

// Service is the financial document engine. Every mutating operation runs
// inside a single database transaction: either the full document (header,
// lines, linked order/original updates) commits, or none of it does.
type Service struct {
	db  *sql.DB
	cfg Config
}

// NewService returns an engine bound to the given database.
func NewService(db *sql.DB, cfg Config) *Service {
	if cfg.NumberPrefix == "" {
		cfg.NumberPrefix = "INV-"
	}
	return &Service{db: db, cfg: cfg}
}

// DefaultVATRate exposes the configured company default VAT rate.
func (s *Service) DefaultVATRate() decimal.Decimal { return s.cfg.DefaultVATRate }

// withTx runs fn inside a transaction, rolling back on error.
func (s *Service) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// maxNumberAttempts bounds the retry loop around document creation when two
// concurrent creations compute the same candidate number and one loses to
// the unique index.
const maxNumberAttempts = 3

// createDocument runs build inside a transaction, retrying the whole
// transaction on a document-number collision. Any other error surfaces
// immediately.
func (s *Service) createDocument(ctx context.Context, build func(tx *sql.Tx) (*models.Invoice, error)) (*models.Invoice, error) {
	var created *models.Invoice
	backoff := retry.WithMaxRetries(maxNumberAttempts, retry.NewConstant(20*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		created = nil
		err := s.withTx(ctx, func(tx *sql.Tx) error {
			inv, err := build(tx)
			if err != nil {
				return err
			}
			created = inv
			return nil
		})
		if isNumberConflict(err) {
			slog.Warn("document number collision, retrying", "error", err)
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		if isNumberConflict(err) {
			return nil, fmt.Errorf("%w: %v", ErrNumberConflict, err)
		}
		return nil, err
	}
	return created, nil
}

// isNumberConflict recognizes the unique-index violation on the document
// number column.
func isNumberConflict(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: invoices.invoice_number")
}
