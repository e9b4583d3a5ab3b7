package handlers

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullDecimalPtr(t *testing.T) {
	d, err := nullDecimalPtr(sql.NullString{})
	require.NoError(t, err)
	assert.Nil(t, d)

	d, err = nullDecimalPtr(sql.NullString{Valid: true, String: "25.5"})
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "25.5", d.String())

	// A corrupt stored value must surface, not vanish into nil
	_, err = nullDecimalPtr(sql.NullString{Valid: true, String: "not-a-number"})
	assert.Error(t, err)
}

func TestNullMoneyPtr(t *testing.T) {
	m, err := nullMoneyPtr(sql.NullString{})
	require.NoError(t, err)
	assert.Nil(t, m)

	m, err = nullMoneyPtr(sql.NullString{Valid: true, String: "10.00"})
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "10.00", m.StringFixed2())

	_, err = nullMoneyPtr(sql.NullString{Valid: true, String: "10,00"})
	assert.Error(t, err)
}
