// Package fees calculates the flat fee charged for a transfer.
package fees

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Policy maps transfer classification to a flat fee
type Policy struct {
	// DomesticCountry is an IBAN country prefix of domestic transfers
	DomesticCountry string

	Domestic      decimal.Decimal
	International decimal.Decimal
}

// Default is the fee schedule of the bank
var Default = Policy{
	DomesticCountry: "CH",
	Domestic:        decimal.NewFromInt(12),
	International:   decimal.NewFromInt(25),
}

// NewPolicy returns the default schedule with a given domestic country
func NewPolicy(domesticCountry string) Policy {
	policy := Default
	if domesticCountry != "" {
		policy.DomesticCountry = domesticCountry
	}
	return policy
}

// FeeFor returns the fee of a transfer. Internal transfers are free,
// otherwise the raw recipient IBAN prefix decides between domestic and international fee
func (p Policy) FeeFor(internal bool, recipientIBAN string) decimal.Decimal {
	if internal {
		return decimal.Zero
	}
	if strings.HasPrefix(recipientIBAN, p.DomesticCountry) {
		return p.Domestic
	}
	return p.International
}

// FeeFor uses the Default policy
func FeeFor(internal bool, recipientIBAN string) decimal.Decimal {
	return Default.FeeFor(internal, recipientIBAN)
}
