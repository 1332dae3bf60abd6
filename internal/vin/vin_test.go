package vin

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		vin  string
		want bool
	}{
		{"1234567890ABCDEFG", true},
		{"1M8GDM9AXKP042788", true},
		{"1234567890ABCDEFI", false},
		{"1234567890ABCDEFO", false},
		{"1234567890ABCDEFQ", false},
		{"1234567890ABCDEF", false},
		{"1234567890ABCDEFGH", false},
		{"1m8gdm9axkp042788", false},
		{"", false},
		{"1M8GDM9AXKP04278-", false},
	}
	for _, tt := range tests {
		t.Run(tt.vin, func(t *testing.T) {
			assert.Equal(t, tt.want, Validate(tt.vin))
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "1M8GDM9AXKP042788", Normalize("  1m8gdm9axkp042788\n"))
}

func TestCheckDigit(t *testing.T) {
	tests := []struct {
		vin   string
		digit byte
	}{
		{"1M8GDM9AXKP042788", 'X'},
		{"1HGCM82633A004352", '3'},
		{"11111111111111111", '1'},
		{"JH4KA7561PC008269", '1'},
	}
	for _, tt := range tests {
		t.Run(tt.vin, func(t *testing.T) {
			digit, err := CheckDigit(tt.vin)
			require.NoError(t, err)
			assert.Equal(t, string(tt.digit), string(digit))
			assert.True(t, HasValidCheckDigit(tt.vin))
		})
	}

	_, err := CheckDigit("1234567890ABCDEFI")
	assert.ErrorIs(t, err, ErrInvalidVIN)
}

func TestHasValidCheckDigit_FormatOnlyVIN(t *testing.T) {
	// Well formed, but the ninth character is not the check digit.
	assert.True(t, Validate("1234567890ABCDEFG"))
	assert.False(t, HasValidCheckDigit("1234567890ABCDEFG"))
	assert.False(t, HasValidCheckDigit(strings.Repeat("I", Length)))
}
