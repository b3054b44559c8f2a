package dal

import (
	"context"
	"iter"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/evgeny-myasishchev/vault.banking/pkg/ledger"
	"github.com/evgeny-myasishchev/vault.banking/pkg/lib-core-golang/diag"
)

var logger = diag.CreateLogger()

var (
	// ErrUserNotFound is returned when there is no user with given username
	ErrUserNotFound = errors.New("User not found")

	// ErrDuplicateUser is returned when creating a user that already exists
	ErrDuplicateUser = errors.New("User already exists")

	// ErrDuplicateAccount is returned when account id or IBAN is already taken
	ErrDuplicateAccount = errors.New("Account id or IBAN already exists")
)

// UserDTO is a DTO to store bank user
type UserDTO struct {
	Username     string
	PasswordHash string
	Name         string
}

// AccountReader reads accounts
type AccountReader interface {
	GetAccount(ctx context.Context, accountID string) (*ledger.Account, error)
	FindAccountByIBAN(ctx context.Context, iban string) (*ledger.Account, error)
}

// Tx is a set of operations that can take part in a unit of work.
// Storage implements it as well, in which case every call is atomic on its own
type Tx interface {
	AccountReader

	CreateUser(ctx context.Context, user *UserDTO) error
	CreateAccount(ctx context.Context, account *ledger.Account) error

	// AdjustBalance adds delta to the account balance and returns the new balance.
	// Fails with ledger.ErrInsufficientFunds if the balance would go below zero
	AdjustBalance(ctx context.Context, accountID string, delta decimal.Decimal) (decimal.Decimal, error)

	// AppendTransaction appends the record to the account journal
	AppendTransaction(ctx context.Context, trx *ledger.Transaction) error
}

// Storage is a persistance layer
type Storage interface {
	Tx

	Setup(ctx context.Context) error

	GetUser(ctx context.Context, username string) (*UserDTO, error)

	ListAccounts(ctx context.Context) ([]*ledger.Account, error)
	ListAccountsByOwner(ctx context.Context, owner string) ([]*ledger.Account, error)

	// ListTransactions returns account journal, newest first.
	// Records booked at the same instant are ordered by append, latest first.
	// The sequence is evaluated lazily and every range over it reads the journal again
	ListTransactions(ctx context.Context, accountID string) iter.Seq2[*ledger.Transaction, error]

	// InTx runs fn as a single unit of work. If fn returns an error
	// nothing done via tx is persisted or observable
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// CollectTransactions drains the sequence into a slice
func CollectTransactions(seq iter.Seq2[*ledger.Transaction, error]) ([]*ledger.Transaction, error) {
	var result []*ledger.Transaction
	for trx, err := range seq {
		if err != nil {
			return nil, err
		}
		result = append(result, trx)
	}
	return result, nil
}
