package payment

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLuhnValid(t *testing.T) {
	tests := []struct {
		number string
		want   bool
	}{
		{"4111111111111111", true},
		{"5555555555554444", true},
		{"378282246310005", true},
		{"4111111111111112", false},
		{"", false},
		{"4111x11111111111", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LuhnValid(tt.number), tt.number)
	}
}

func TestValidateCard(t *testing.T) {
	tests := []struct {
		name    string
		card    CardInfo
		field   string
		message string
	}{
		{
			name:    "too short",
			card:    CardInfo{CardNumber: "4111 1111", ExpirationDate: "12/30", CVV: "123"},
			field:   "cardNumber",
			message: "Invalid card number length. Please enter a valid card number.",
		},
		{
			name:    "fails checksum",
			card:    CardInfo{CardNumber: "4111-1111-1111-1112", ExpirationDate: "12/30", CVV: "123"},
			field:   "cardNumber",
			message: "Invalid card number. Please check and try again.",
		},
		{
			name:    "bad expiry",
			card:    CardInfo{CardNumber: "4111111111111111", ExpirationDate: "1230", CVV: "123"},
			field:   "expirationDate",
			message: "Invalid expiration date format. Please use MM/YY or MM/YYYY format.",
		},
		{
			name:    "three digit expiry year",
			card:    CardInfo{CardNumber: "4111111111111111", ExpirationDate: "12/202", CVV: "123"},
			field:   "expirationDate",
			message: "Invalid expiration date format. Please use MM/YY or MM/YYYY format.",
		},
		{
			name:    "bad cvv",
			card:    CardInfo{CardNumber: "4111111111111111", ExpirationDate: "12/2030", CVV: "12"},
			field:   "cvv",
			message: "Invalid CVV. Please enter a 3 or 4 digit security code.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateCard(tt.card)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, tt.message, verr.Message)
		})
	}
}

func TestValidateCardCleansNumber(t *testing.T) {
	number, err := ValidateCard(CardInfo{CardNumber: "4111 1111-1111 1111", ExpirationDate: "12/30", CVV: "1234"})
	require.NoError(t, err)
	assert.Equal(t, "4111111111111111", number)
}

func TestMaskCard(t *testing.T) {
	assert.Equal(t, "4111****1111", MaskCard("4111 1111 1111 1111"))
	assert.Equal(t, "****", MaskCard("1234"))
}
