package engine

import (
	"fmt"
	"strconv"

	"txnproc/internal/errors"
	"txnproc/internal/models"
)

const cardPrefixDigits = 10

// validateCard checks a card payment: the card's leading ten digits are
// matched against the BIN table, the matched entry must be a debit card,
// and its issuing country must correspond to the account holder's
// country. A card matching no BIN entry passes through. It returns a
// decline reason ("" when acceptable) or an error for malformed input,
// which the caller downgrades to a generic processing decline.
func (e *Engine) validateCard(cardNumber, holderCountry string) (string, error) {
	if len(cardNumber) < cardPrefixDigits {
		return "", fmt.Errorf("card number %q is shorter than %d digits", cardNumber, cardPrefixDigits)
	}
	prefix, err := strconv.ParseUint(cardNumber[:cardPrefixDigits], 10, 64)
	if err != nil {
		return "", fmt.Errorf("parse card prefix: %w", err)
	}

	entry, ok := e.ref.MatchBin(prefix)
	if !ok {
		return "", nil
	}

	if entry.CardType != models.CardTypeDebit {
		return fmt.Sprintf("Card type %s is not supported", entry.CardType), nil
	}

	issuerCountry, ok := e.ref.IssuerCountry(holderCountry)
	if !ok {
		return "", fmt.Errorf("country %s: %w", holderCountry, errors.ErrUnknownCountry)
	}
	if entry.IssuerCountryCode != issuerCountry {
		return fmt.Sprintf("Country of the card used for the transaction doesn't match the user's country, expected %s", holderCountry), nil
	}
	return "", nil
}
