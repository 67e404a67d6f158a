package engine

import (
	"fmt"
	"math/big"
	"strings"
)

const maxIBANLength = 34

var ninetySeven = big.NewInt(97)

// validateIBAN checks a bank transfer account number: overall length, the
// mod-97 check digits, and that the IBAN's country prefix matches the
// account holder's country. It returns a decline reason, or "" when the
// IBAN is acceptable.
func validateIBAN(iban, holderCountry string) string {
	if len(iban) > maxIBANLength || !checksumValid(iban) {
		return fmt.Sprintf("Invalid iban %s", iban)
	}
	if !strings.HasPrefix(iban, holderCountry) {
		return fmt.Sprintf("Country of the account used for the transaction doesn't match the user's country, expected %s", holderCountry)
	}
	return ""
}

// checksumValid applies the standard mod-97 test: the first four
// characters move to the end, letters expand to their two-digit values
// (A=10 .. Z=35), and the resulting numeral must leave remainder 1.
func checksumValid(iban string) bool {
	if len(iban) < 5 {
		return false
	}
	rearranged := iban[4:] + iban[:4]

	var expanded strings.Builder
	for _, ch := range rearranged {
		switch {
		case ch >= 'A' && ch <= 'Z':
			expanded.WriteString(fmt.Sprintf("%d", ch-'A'+10))
		case ch >= 'a' && ch <= 'z':
			expanded.WriteString(fmt.Sprintf("%d", ch-'a'+10))
		case ch >= '0' && ch <= '9':
			expanded.WriteRune(ch)
		default:
			return false
		}
	}

	numeral, ok := new(big.Int).SetString(expanded.String(), 10)
	if !ok {
		return false
	}
	return new(big.Int).Mod(numeral, ninetySeven).Int64() == 1
}
