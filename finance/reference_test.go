package finance

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceNumber(t *testing.T) {
	tests := []struct {
		name string
		base string
		want string
	}{
		{"seven digits", "1234567", "12345672"},
		{"single digit", "1", "13"},
		{"document number with prefix", "INV-24-00042", "24000426"},
		{"leading zeros kept", "00013", "000136"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReferenceNumber(tt.base)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReferenceNumberNoDigits(t *testing.T) {
	_, err := ReferenceNumber("INV--")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidReferenceInput))
}

func TestReferenceNumberRoundTrip(t *testing.T) {
	// Recomputing the check digit from the base portion of a generated
	// reference must reproduce that same digit.
	bases := []string{"1", "42", "1234567", "99999999999", "INV-25-00001", "00700"}
	for _, base := range bases {
		ref, err := ReferenceNumber(base)
		require.NoError(t, err)
		again, err := ReferenceNumber(ref[:len(ref)-1])
		require.NoError(t, err)
		assert.Equal(t, ref, again, "base %q", base)
		assert.True(t, ValidReferenceNumber(ref), "base %q", base)
	}
}

func TestValidReferenceNumberRejectsTampering(t *testing.T) {
	ref, err := ReferenceNumber("1234567")
	require.NoError(t, err)
	// Flip the check digit
	bad := ref[:len(ref)-1] + string('0'+(ref[len(ref)-1]-'0'+1)%10)
	assert.False(t, ValidReferenceNumber(bad))
	assert.False(t, ValidReferenceNumber(""))
	assert.False(t, ValidReferenceNumber("5"))
}
