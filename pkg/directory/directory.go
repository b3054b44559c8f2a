// Package directory resolves IBANs to accounts held by the bank.
package directory

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/evgeny-myasishchev/vault.banking/pkg/dal"
	"github.com/evgeny-myasishchev/vault.banking/pkg/ledger"
	"github.com/evgeny-myasishchev/vault.banking/pkg/lib-core-golang/diag"
)

var logger = diag.CreateLogger()

// Classification of a recipient IBAN
type Classification struct {
	Internal  bool
	AccountID string
	Owner     string
	OwnerName string
}

// Resolver maps IBAN to an account held by the bank
type Resolver interface {
	// Classify returns internal classification if iban is held by the bank
	Classify(iban string) Classification

	// Register adds a newly provisioned account to the index
	Register(account *ledger.Account, ownerName string)

	// Load builds the index from all accounts known by storage
	Load(ctx context.Context, storage dal.Storage) error
}

type indexResolver struct {
	mu     sync.RWMutex
	byIBAN map[string]Classification
}

func (r *indexResolver) Classify(iban string) Classification {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.byIBAN[iban]; ok {
		return c
	}
	return Classification{}
}

func (r *indexResolver) Register(account *ledger.Account, ownerName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byIBAN[account.IBAN] = Classification{
		Internal:  true,
		AccountID: account.ID,
		Owner:     account.Owner,
		OwnerName: ownerName,
	}
}

func (r *indexResolver) Load(ctx context.Context, storage dal.Storage) error {
	accounts, err := storage.ListAccounts(ctx)
	if err != nil {
		return errors.Wrap(err, "Failed to load directory")
	}
	names := map[string]string{}
	for _, account := range accounts {
		name, ok := names[account.Owner]
		if !ok {
			user, err := storage.GetUser(ctx, account.Owner)
			if err != nil {
				return errors.Wrapf(err, "Failed to load owner of account %v", account.ID)
			}
			name = user.Name
			names[account.Owner] = name
		}
		r.Register(account, name)
	}
	logger.Info(ctx, "Directory loaded. Accounts: %v, owners: %v", len(accounts), len(names))
	return nil
}

// NewResolver returns an empty index based resolver
func NewResolver() Resolver {
	return &indexResolver{byIBAN: map[string]Classification{}}
}
