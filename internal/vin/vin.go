// Package vin validates Vehicle Identification Numbers and decodes them from
// barcode images.
package vin

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Length is the number of characters of a VIN.
const Length = 17

var (
	ErrInvalidVIN = errors.New("the scanned code is not a valid VIN")
	ErrNoBarcode  = errors.New("no barcode found")

	ErrUndecodableImage = errors.New("image could not be decoded")
)

// I, O and Q are never used, to avoid confusion with 1 and 0.
var pattern = regexp.MustCompile(`^[A-HJ-NPR-Z0-9]{17}$`)

// Validate reports whether s is a well-formed VIN. Lower-case letters are
// not accepted; normalize with Normalize first.
func Validate(s string) bool {
	return pattern.MatchString(s)
}

// Normalize upper-cases s and strips surrounding whitespace.
func Normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

var transliteration = map[byte]int{
	'A': 1, 'B': 2, 'C': 3, 'D': 4, 'E': 5, 'F': 6, 'G': 7, 'H': 8,
	'J': 1, 'K': 2, 'L': 3, 'M': 4, 'N': 5, 'P': 7, 'R': 9,
	'S': 2, 'T': 3, 'U': 4, 'V': 5, 'W': 6, 'X': 7, 'Y': 8, 'Z': 9,
}

var weights = [Length]int{8, 7, 6, 5, 4, 3, 2, 10, 0, 9, 8, 7, 6, 5, 4, 3, 2}

// checkPosition is the index of the check digit.
const checkPosition = 8

// CheckDigit computes the ISO 3779 check digit of a well-formed VIN.
func CheckDigit(s string) (byte, error) {
	if !Validate(s) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidVIN, s)
	}
	sum := 0
	for i := 0; i < Length; i++ {
		c := s[i]
		value, ok := transliteration[c]
		if !ok {
			value = int(c - '0')
		}
		sum += value * weights[i]
	}
	r := sum % 11
	if r == 10 {
		return 'X', nil
	}
	return byte('0' + r), nil
}

// HasValidCheckDigit reports whether the ninth character matches the check
// digit. Only North American VINs are required to carry one.
func HasValidCheckDigit(s string) bool {
	digit, err := CheckDigit(s)
	return err == nil && s[checkPosition] == digit
}
