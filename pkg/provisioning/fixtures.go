package provisioning

import (
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Fixtures describe users to provision
type Fixtures struct {
	Users []UserFixture `yaml:"users"`
}

// UserFixture is a user with accounts and historical records
type UserFixture struct {
	Username string `yaml:"username"`

	// Either a plain password or a bcrypt hash is required
	Password     string `yaml:"password"`
	PasswordHash string `yaml:"passwordHash"`

	Name         string               `yaml:"name"`
	Accounts     []AccountFixture     `yaml:"accounts"`
	Transactions []TransactionFixture `yaml:"transactions"`
}

// AccountFixture is an account of the user. Balance is the current balance
// that already includes all transactions of the account
type AccountFixture struct {
	ID       string          `yaml:"id"`
	Category string          `yaml:"category"`
	IBAN     string          `yaml:"iban"`
	Balance  decimal.Decimal `yaml:"balance"`
}

// TransactionFixture is a historical journal record
type TransactionFixture struct {
	ID               string          `yaml:"id"`
	AccountID        string          `yaml:"accountId"`
	Type             string          `yaml:"type"`
	Amount           decimal.Decimal `yaml:"amount"`
	Fee              decimal.Decimal `yaml:"fee"`
	CounterpartyName string          `yaml:"counterpartyName"`
	CounterpartyIBAN string          `yaml:"counterpartyIban"`
	Reference        string          `yaml:"reference"`
	Date             time.Time       `yaml:"date"`
}

// ParseFixtures decodes YAML fixtures
func ParseFixtures(r io.Reader) (*Fixtures, error) {
	var fixtures Fixtures
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&fixtures); err != nil {
		return nil, errors.Wrap(err, "Failed to parse fixtures")
	}
	return &fixtures, nil
}

// LoadFixtures reads YAML fixtures from a file
func LoadFixtures(path string) (*Fixtures, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to open fixtures file %v", path)
	}
	defer file.Close()
	return ParseFixtures(file)
}
