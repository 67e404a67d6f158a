package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCard(t *testing.T) {
	eng := testEngine(t)

	tests := []struct {
		name       string
		cardNumber string
		country    string
		reason     string
		wantErr    bool
	}{
		{
			name:       "debit card with matching issuer country",
			cardNumber: "4123456789012345",
			country:    "LT",
			reason:     "",
		},
		{
			name:       "credit card declined",
			cardNumber: "5168745555000000",
			country:    "EE",
			reason:     "Card type CC is not supported",
		},
		{
			name:       "issuer country mismatch",
			cardNumber: "4000000001999999", // DEU-issued range
			country:    "LT",
			reason:     "Country of the card used for the transaction doesn't match the user's country, expected LT",
		},
		{
			name:       "no matching bin entry passes through",
			cardNumber: "9999999999000000",
			country:    "LT",
			reason:     "",
		},
		{
			name:       "non-numeric prefix",
			cardNumber: "notanumber123456",
			country:    "LT",
			wantErr:    true,
		},
		{
			name:       "shorter than ten digits",
			cardNumber: "412345",
			country:    "LT",
			wantErr:    true,
		},
		{
			name:       "holder country missing from reference table",
			cardNumber: "4123456789012345",
			country:    "XX",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason, err := eng.validateCard(tt.cardNumber, tt.country)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.reason, reason)
		})
	}
}
