package finance

import (
	"fmt"
	"strconv"
	"strings"
)

// refWeights is the Finnish viitenumero weight cycle, applied from the
// least significant digit upwards.
var refWeights = [3]int{7, 3, 1}

// ReferenceNumber computes a Finnish payment reference (viitenumero) from a
// base string. Non-digit characters are stripped; the remaining digits get a
// mod-10 check digit appended. Returns ErrInvalidReferenceInput when the
// base contains no digits at all.
func ReferenceNumber(base string) (string, error) {
	var b strings.Builder
	for _, r := range base {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidReferenceInput, base)
	}

	sum := 0
	for i := 0; i < len(digits); i++ {
		d := int(digits[len(digits)-1-i] - '0')
		sum += d * refWeights[i%3]
	}
	check := (10 - sum%10) % 10
	return digits + strconv.Itoa(check), nil
}

// ValidReferenceNumber reports whether ref is a well-formed reference whose
// trailing check digit matches its base.
func ValidReferenceNumber(ref string) bool {
	if len(ref) < 2 {
		return false
	}
	computed, err := ReferenceNumber(ref[:len(ref)-1])
	return err == nil && computed == ref
}
