package refdata

import (
	"fmt"
	"sort"

	"txnproc/internal/errors"
	"txnproc/internal/models"
)

// ReferenceData holds the immutable lookup tables consulted during card
// validation: the country-code mapping (account holder country to card
// issuer country) and the BIN range table. It is built once at startup
// and is read-only afterwards.
type ReferenceData struct {
	countries map[string]string
	bins      []models.BinEntry
}

// New validates and assembles reference data. BIN ranges must be
// well-formed (low <= high) and mutually non-overlapping, so that any
// card prefix matches at most one entry. Overlap is a load-time error
// rather than a precedence guess at validation time.
func New(countries map[string]string, bins []models.BinEntry) (*ReferenceData, error) {
	sorted := make([]models.BinEntry, len(bins))
	copy(sorted, bins)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].RangeLow < sorted[j].RangeLow
	})

	for i, entry := range sorted {
		if entry.RangeLow > entry.RangeHigh {
			return nil, errors.NewReferenceDataError("bin table",
				fmt.Sprintf("entry %s has inverted range [%d, %d]", entry.Label, entry.RangeLow, entry.RangeHigh))
		}
		if i > 0 && entry.RangeLow <= sorted[i-1].RangeHigh {
			return nil, errors.NewReferenceDataError("bin table",
				fmt.Sprintf("entry %s overlaps entry %s", entry.Label, sorted[i-1].Label))
		}
	}

	return &ReferenceData{
		countries: countries,
		bins:      sorted,
	}, nil
}

// IssuerCountry resolves an account holder's country code to the card
// issuer country code used in the BIN table.
func (r *ReferenceData) IssuerCountry(holderCountry string) (string, bool) {
	code, ok := r.countries[holderCountry]
	return code, ok
}

// MatchBin returns the single BIN entry whose inclusive range contains
// the given card prefix, if any.
func (r *ReferenceData) MatchBin(prefix uint64) (models.BinEntry, bool) {
	// Ranges are sorted and disjoint, so binary search over lower bounds.
	i := sort.Search(len(r.bins), func(i int) bool {
		return r.bins[i].RangeHigh >= prefix
	})
	if i < len(r.bins) && r.bins[i].RangeLow <= prefix && prefix <= r.bins[i].RangeHigh {
		return r.bins[i], true
	}
	return models.BinEntry{}, false
}

// BinCount reports the number of loaded BIN entries.
func (r *ReferenceData) BinCount() int {
	return len(r.bins)
}
