package transfers

import (
	"regexp"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/evgeny-myasishchev/vault.banking/pkg/ledger"
	"github.com/evgeny-myasishchev/vault.banking/pkg/money"
)

const (
	// MaxReferenceLength is a max number of characters of a reference
	MaxReferenceLength = 140

	// MaxRecipientNameLength is a max number of characters of a recipient name
	MaxRecipientNameLength = 140

	minIBANLength = 15
	maxIBANLength = 34
)

var ibanPrefix = regexp.MustCompile(`^[A-Z]{2}[0-9]{2}`)

// Request is a transfer request made on behalf of the user
type Request struct {
	SourceAccountID string
	RecipientIBAN   string
	RecipientName   string
	Amount          decimal.Decimal
	Reference       string
}

// Validate checks the request before any account is touched
func (r *Request) Validate() error {
	if r.SourceAccountID == "" {
		return newError(KindInvalidRequest, errors.New("Source account is required"))
	}
	if len(r.RecipientIBAN) < minIBANLength || len(r.RecipientIBAN) > maxIBANLength {
		return newError(KindInvalidRequest, errors.Errorf(
			"Recipient IBAN must be %v to %v characters long", minIBANLength, maxIBANLength))
	}
	if !ibanPrefix.MatchString(r.RecipientIBAN) {
		return newError(KindInvalidRequest, errors.New("Recipient IBAN must start with a country code and check digits"))
	}
	if utf8.RuneCountInString(r.RecipientName) > MaxRecipientNameLength {
		return newError(KindInvalidRequest, errors.Errorf(
			"Recipient name must be at most %v characters long", MaxRecipientNameLength))
	}
	if err := money.Validate(r.Amount); err != nil {
		return newError(KindInvalidRequest, err)
	}
	if utf8.RuneCountInString(r.Reference) > MaxReferenceLength {
		return newError(KindInvalidRequest, errors.Errorf(
			"Reference must be at most %v characters long", MaxReferenceLength))
	}
	return nil
}

// Result of a committed transfer
type Result struct {
	Success bool

	// Transaction is the outgoing record of the source account
	Transaction *ledger.Transaction

	IsInternal bool
}
