// Package vin validates 17-character Vehicle Identification Numbers.
//
// Validation is purely structural: format plus the ISO 3779 position-weighted
// checksum. Decoding a well-formed VIN into make/model/year is delegated to
// the external decoder collaborator; a VIN this package accepts may still be
// unknown to the decoder.
package vin

import (
	"errors"
	"strings"

	dErrors "lanewise/pkg/domain-errors"
)

// Validation failure kinds. Both surface to clients as CodeInvalidVIN;
// programmatic callers distinguish them with errors.Is.
var (
	// ErrInvalidFormat reports a VIN with the wrong length or an illegal
	// character. The checksum was never evaluated.
	ErrInvalidFormat = errors.New("invalid vin format")

	// ErrChecksumMismatch reports a well-formed VIN whose embedded check
	// digit does not match the computed one.
	ErrChecksumMismatch = errors.New("vin checksum mismatch")
)

// Length is the required VIN length.
const Length = 17

// checkDigitPos is the zero-based index of the embedded check digit.
const checkDigitPos = 8

// weights are the per-position checksum weights.
var weights = [Length]int{8, 7, 6, 5, 4, 3, 2, 10, 0, 9, 8, 7, 6, 5, 4, 3, 2}

// transliteration maps VIN letters to their checksum values. I, O, and Q are
// absent: they are never legal in a VIN.
var transliteration = map[byte]int{
	'A': 1, 'B': 2, 'C': 3, 'D': 4, 'E': 5, 'F': 6, 'G': 7, 'H': 8,
	'J': 1, 'K': 2, 'L': 3, 'M': 4, 'N': 5, 'P': 7, 'R': 9,
	'S': 2, 'T': 3, 'U': 4, 'V': 5, 'W': 6, 'X': 7, 'Y': 8, 'Z': 9,
}

// Validate checks format and checksum. It returns a domain error with
// CodeInvalidVIN wrapping ErrInvalidFormat or ErrChecksumMismatch; a nil
// return means the VIN is structurally sound.
func Validate(v string) error {
	v = strings.ToUpper(strings.TrimSpace(v))
	if len(v) != Length {
		return dErrors.Newf(dErrors.CodeInvalidVIN, "vin must be %d characters, got %d", Length, len(v)).
			WithCause(ErrInvalidFormat).WithFields("vin")
	}
	for i := 0; i < Length; i++ {
		if value(v[i]) < 0 {
			return dErrors.Newf(dErrors.CodeInvalidVIN, "vin contains illegal character %q at position %d", string(v[i]), i+1).
				WithCause(ErrInvalidFormat).WithFields("vin")
		}
	}
	if computeCheckDigit(v) != v[checkDigitPos] {
		return dErrors.New(dErrors.CodeInvalidVIN, "vin checksum mismatch").
			WithCause(ErrChecksumMismatch).WithFields("vin")
	}
	return nil
}

// IsValid is a convenience wrapper over Validate.
func IsValid(v string) bool {
	return Validate(v) == nil
}

// computeCheckDigit derives the expected character at the check digit
// position: the weighted transliteration sum reduced mod 11, with 'X'
// standing in for a remainder of 10.
func computeCheckDigit(v string) byte {
	sum := 0
	for i := 0; i < Length; i++ {
		sum += value(v[i]) * weights[i]
	}
	rem := sum % 11
	if rem == 10 {
		return 'X'
	}
	return byte('0' + rem)
}

// value returns the checksum value of a VIN character, or -1 when the
// character is not legal in a VIN (lowercase, punctuation, I, O, Q).
func value(c byte) int {
	if c >= '0' && c <= '9' {
		return int(c - '0')
	}
	if val, ok := transliteration[c]; ok {
		return val
	}
	return -1
}
