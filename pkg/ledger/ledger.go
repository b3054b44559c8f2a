// Package ledger defines accounts and journal records shared by storage
// backends and the transfer orchestrator.
package ledger

import (
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrAccountNotFound is returned when account is not known by the ledger
	ErrAccountNotFound = errors.New("Account not found")

	// ErrInsufficientFunds is returned when balance adjustment would make the balance negative
	ErrInsufficientFunds = errors.New("Insufficient funds")

	// ErrDuplicateTransaction is returned when a journal record with the same id already exists
	ErrDuplicateTransaction = errors.New("Duplicate transaction id")
)

// Category is a kind of an account
type Category string

const (
	// CategoryEveryday is a private (current) account
	CategoryEveryday Category = "everyday"

	// CategorySavings is a savings account
	CategorySavings Category = "savings"

	// CategoryInvestment is an investment portfolio
	CategoryInvestment Category = "investment"
)

var categoryLabels = map[Category]string{
	CategoryEveryday:   "Private Account",
	CategorySavings:    "Savings Account",
	CategoryInvestment: "Investment Portfolio",
}

// Label returns a display name of the category
func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// ParseCategory accepts both category codes and display labels
func ParseCategory(val string) (Category, error) {
	for category, label := range categoryLabels {
		if val == string(category) || val == label {
			return category, nil
		}
	}
	return "", errors.Errorf("Unknown account category: %v", val)
}

// Account is a balance holder
type Account struct {
	ID       string
	Owner    string
	Category Category
	IBAN     string
	Balance  decimal.Decimal
	Currency string
}

// Direction of a journal record relative to the account it belongs to
type Direction string

const (
	// Incoming means funds were credited
	Incoming Direction = "incoming"

	// Outgoing means funds were debited
	Outgoing Direction = "outgoing"
)

// Transaction is an immutable journal record
type Transaction struct {
	ID               string
	AccountID        string
	Direction        Direction
	Amount           decimal.Decimal
	Fee              decimal.Decimal
	CounterpartyName string
	CounterpartyIBAN string
	Reference        string
	Date             time.Time
}

// Total is an amount the record changed the account balance by
func (t *Transaction) Total() decimal.Decimal {
	if t.Direction == Incoming {
		return t.Amount
	}
	return t.Amount.Add(t.Fee).Neg()
}
