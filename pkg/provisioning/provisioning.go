// Package provisioning creates users and their accounts.
package provisioning

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
	"github.com/shopspring/decimal"

	"github.com/evgeny-myasishchev/vault.banking/pkg/auth"
	"github.com/evgeny-myasishchev/vault.banking/pkg/dal"
	"github.com/evgeny-myasishchev/vault.banking/pkg/directory"
	"github.com/evgeny-myasishchev/vault.banking/pkg/ledger"
	"github.com/evgeny-myasishchev/vault.banking/pkg/lib-core-golang/diag"
	"github.com/evgeny-myasishchev/vault.banking/pkg/money"
)

var logger = diag.CreateLogger()

// errAlreadyProvisioned rolls back the unit of work of a user that exists
var errAlreadyProvisioned = errors.New("User already provisioned")

// Service provisions users
type Service interface {
	// Provision creates users from fixtures. Users that already exist are skipped
	Provision(ctx context.Context, fixtures *Fixtures) error
}

type service struct {
	storage  dal.Storage
	resolver directory.Resolver
}

func (svc *service) Provision(ctx context.Context, fixtures *Fixtures) error {
	for i := range fixtures.Users {
		if err := svc.provisionUser(ctx, &fixtures.Users[i]); err != nil {
			return err
		}
	}
	return nil
}

func (svc *service) provisionUser(ctx context.Context, fixture *UserFixture) error {
	user, err := newUser(fixture)
	if err != nil {
		return err
	}
	accounts := make([]*ledger.Account, 0, len(fixture.Accounts))
	for _, accFixture := range fixture.Accounts {
		account, err := newAccount(fixture.Username, accFixture)
		if err != nil {
			return err
		}
		accounts = append(accounts, account)
	}
	ownAccounts := map[string]bool{}
	for _, account := range accounts {
		ownAccounts[account.ID] = true
	}
	transactions := make([]*ledger.Transaction, 0, len(fixture.Transactions))
	for _, trxFixture := range fixture.Transactions {
		trx, err := newTransaction(trxFixture)
		if err != nil {
			return err
		}
		if !ownAccounts[trx.AccountID] {
			return errors.Errorf("Transaction %v belongs to unknown account %v", trx.ID, trx.AccountID)
		}
		transactions = append(transactions, trx)
	}
	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].Date.Before(transactions[j].Date)
	})

	err = svc.storage.InTx(ctx, func(tx dal.Tx) error {
		if err := tx.CreateUser(ctx, user); err != nil {
			if errors.Cause(err) == dal.ErrDuplicateUser {
				return errAlreadyProvisioned
			}
			return errors.Wrapf(err, "Failed to provision user %v", user.Username)
		}
		for _, account := range accounts {
			if err := tx.CreateAccount(ctx, account); err != nil {
				return errors.Wrapf(err, "Failed to provision account %v", account.ID)
			}
		}
		for _, trx := range transactions {
			if err := tx.AppendTransaction(ctx, trx); err != nil {
				return errors.Wrapf(err, "Failed to provision transaction %v", trx.ID)
			}
		}
		return nil
	})
	if err == errAlreadyProvisioned {
		logger.Info(ctx, "User %v already provisioned, skipping", user.Username)
		return nil
	}
	if err != nil {
		return err
	}
	for _, account := range accounts {
		svc.resolver.Register(account, user.Name)
	}
	logger.Info(ctx, "Provisioned user %v. Accounts: %v, transactions: %v",
		user.Username, len(accounts), len(transactions))
	return nil
}

func newUser(fixture *UserFixture) (*dal.UserDTO, error) {
	if fixture.Username == "" {
		return nil, errors.New("Username is required")
	}
	hash := fixture.PasswordHash
	if hash == "" {
		if fixture.Password == "" {
			return nil, errors.Errorf("Password of %v is required", fixture.Username)
		}
		var err error
		if hash, err = auth.HashPassword(fixture.Password); err != nil {
			return nil, err
		}
	}
	name := fixture.Name
	if name == "" {
		name = fixture.Username
	}
	return &dal.UserDTO{Username: fixture.Username, PasswordHash: hash, Name: name}, nil
}

func newAccount(owner string, fixture AccountFixture) (*ledger.Account, error) {
	category, err := ledger.ParseCategory(fixture.Category)
	if err != nil {
		return nil, errors.Wrapf(err, "Invalid account %v", fixture.ID)
	}
	if fixture.ID == "" || fixture.IBAN == "" {
		return nil, errors.Errorf("Account of %v requires id and iban", owner)
	}
	if fixture.Balance.IsNegative() || fixture.Balance.GreaterThan(money.MaxAmount) ||
		!fixture.Balance.Equal(fixture.Balance.Truncate(money.Scale)) {
		return nil, errors.Errorf("Invalid balance of account %v: %v", fixture.ID, fixture.Balance)
	}
	return &ledger.Account{
		ID:       fixture.ID,
		Owner:    owner,
		Category: category,
		IBAN:     fixture.IBAN,
		Balance:  fixture.Balance,
		Currency: money.Currency,
	}, nil
}

func newTransaction(fixture TransactionFixture) (*ledger.Transaction, error) {
	id := fixture.ID
	if id == "" {
		id = uuid.NewV4().String()
	}
	direction := ledger.Direction(fixture.Type)
	if direction != ledger.Incoming && direction != ledger.Outgoing {
		return nil, errors.Errorf("Invalid type of transaction %v: %v", id, fixture.Type)
	}
	if err := money.Validate(fixture.Amount); err != nil {
		return nil, errors.Wrapf(err, "Invalid amount of transaction %v", id)
	}
	fee := fixture.Fee
	if direction == ledger.Incoming {
		fee = decimal.Zero
	}
	if fee.IsNegative() {
		return nil, errors.Errorf("Invalid fee of transaction %v: %v", id, fee)
	}
	if fixture.Date.IsZero() {
		return nil, errors.Errorf("Date of transaction %v is required", id)
	}
	return &ledger.Transaction{
		ID:               id,
		AccountID:        fixture.AccountID,
		Direction:        direction,
		Amount:           fixture.Amount,
		Fee:              fee,
		CounterpartyName: fixture.CounterpartyName,
		CounterpartyIBAN: fixture.CounterpartyIBAN,
		Reference:        fixture.Reference,
		Date:             fixture.Date.UTC(),
	}, nil
}

// ServiceOpt is an option of the provisioning service
type ServiceOpt func(svc *service)

// WithStorage sets storage to provision users to
func WithStorage(storage dal.Storage) ServiceOpt {
	return func(svc *service) {
		svc.storage = storage
	}
}

// WithResolver sets the directory to register new accounts in
func WithResolver(resolver directory.Resolver) ServiceOpt {
	return func(svc *service) {
		svc.resolver = resolver
	}
}

// NewService returns an instance of provisioning service
func NewService(opts ...ServiceOpt) Service {
	svc := &service{}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}
