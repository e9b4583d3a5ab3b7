package handlers

import (
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/mkoskinen/laskutus/models"
)

func nullDecimalPtr(ns sql.NullString) (*decimal.Decimal, error) {
	if !ns.Valid {
		return nil, nil
	}
	d, err := decimal.NewFromString(ns.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func nullMoneyPtr(ns sql.NullString) (*models.Money, error) {
	if !ns.Valid {
		return nil, nil
	}
	m, err := models.MoneyFromString(ns.String)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
