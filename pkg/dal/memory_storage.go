package dal

import (
	"context"
	"iter"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/evgeny-myasishchev/vault.banking/pkg/ledger"
)

// memoryStorage keeps everything in maps guarded by a single RW lock.
// Units of work hold the write lock for their whole duration so readers
// never see a partially applied transfer.
type memoryStorage struct {
	mu sync.RWMutex

	users          map[string]UserDTO
	accounts       map[string]*ledger.Account
	accountsByIBAN map[string]string

	// account id -> records in append order
	journal        map[string][]ledger.Transaction
	transactionIDs map[string]struct{}
}

// NewMemoryStorage returns an empty in-memory storage
func NewMemoryStorage() Storage {
	return &memoryStorage{
		users:          map[string]UserDTO{},
		accounts:       map[string]*ledger.Account{},
		accountsByIBAN: map[string]string{},
		journal:        map[string][]ledger.Transaction{},
		transactionIDs: map[string]struct{}{},
	}
}

func (s *memoryStorage) Setup(ctx context.Context) error {
	logger.Info(ctx, "Setup memory storage")
	return nil
}

func (s *memoryStorage) CreateUser(ctx context.Context, user *UserDTO) error {
	return s.InTx(ctx, func(tx Tx) error {
		return tx.CreateUser(ctx, user)
	})
}

func (s *memoryStorage) GetUser(ctx context.Context, username string) (*UserDTO, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

func (s *memoryStorage) CreateAccount(ctx context.Context, account *ledger.Account) error {
	return s.InTx(ctx, func(tx Tx) error {
		return tx.CreateAccount(ctx, account)
	})
}

func (s *memoryStorage) GetAccount(ctx context.Context, accountID string) (*ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getAccount(accountID)
}

func (s *memoryStorage) getAccount(accountID string) (*ledger.Account, error) {
	account, ok := s.accounts[accountID]
	if !ok {
		return nil, ledger.ErrAccountNotFound
	}
	result := *account
	return &result, nil
}

func (s *memoryStorage) FindAccountByIBAN(ctx context.Context, iban string) (*ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findAccountByIBAN(iban)
}

func (s *memoryStorage) findAccountByIBAN(iban string) (*ledger.Account, error) {
	accountID, ok := s.accountsByIBAN[iban]
	if !ok {
		return nil, ledger.ErrAccountNotFound
	}
	return s.getAccount(accountID)
}

func (s *memoryStorage) ListAccounts(ctx context.Context) ([]*ledger.Account, error) {
	return s.listAccounts(func(*ledger.Account) bool { return true }), nil
}

func (s *memoryStorage) ListAccountsByOwner(ctx context.Context, owner string) ([]*ledger.Account, error) {
	return s.listAccounts(func(acc *ledger.Account) bool { return acc.Owner == owner }), nil
}

func (s *memoryStorage) listAccounts(match func(*ledger.Account) bool) []*ledger.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*ledger.Account, 0, len(s.accounts))
	for _, account := range s.accounts {
		if match(account) {
			acc := *account
			result = append(result, &acc)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (s *memoryStorage) AdjustBalance(ctx context.Context, accountID string, delta decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := s.InTx(ctx, func(tx Tx) error {
		var err error
		balance, err = tx.AdjustBalance(ctx, accountID, delta)
		return err
	})
	return balance, err
}

func (s *memoryStorage) AppendTransaction(ctx context.Context, trx *ledger.Transaction) error {
	return s.InTx(ctx, func(tx Tx) error {
		return tx.AppendTransaction(ctx, trx)
	})
}

func (s *memoryStorage) ListTransactions(ctx context.Context, accountID string) iter.Seq2[*ledger.Transaction, error] {
	return func(yield func(*ledger.Transaction, error) bool) {
		if err := ctx.Err(); err != nil {
			yield(nil, err)
			return
		}
		s.mu.RLock()
		// reversed so the stable sort keeps latest appended first among equal dates
		records := s.journal[accountID]
		snapshot := make([]ledger.Transaction, 0, len(records))
		for i := len(records) - 1; i >= 0; i-- {
			snapshot = append(snapshot, records[i])
		}
		s.mu.RUnlock()

		sort.SliceStable(snapshot, func(i, j int) bool {
			return snapshot[i].Date.After(snapshot[j].Date)
		})
		for i := range snapshot {
			trx := snapshot[i]
			if !yield(&trx, nil) {
				return
			}
		}
	}
}

func (s *memoryStorage) InTx(ctx context.Context, fn func(tx Tx) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{storage: s}
	defer func() {
		if rec := recover(); rec != nil {
			tx.rollback()
			panic(rec)
		}
	}()
	if err = fn(tx); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

// memoryTx operates on the storage while the write lock is held.
// Every mutation registers an undo step
type memoryTx struct {
	storage *memoryStorage
	undo    []func()
}

func (tx *memoryTx) rollback() {
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
	tx.undo = nil
}

func (tx *memoryTx) CreateUser(ctx context.Context, user *UserDTO) error {
	s := tx.storage
	if _, ok := s.users[user.Username]; ok {
		return ErrDuplicateUser
	}
	username := user.Username
	s.users[username] = *user
	tx.undo = append(tx.undo, func() { delete(s.users, username) })
	return nil
}

func (tx *memoryTx) CreateAccount(ctx context.Context, account *ledger.Account) error {
	s := tx.storage
	if _, ok := s.users[account.Owner]; !ok {
		return errors.Wrapf(ErrUserNotFound, "Failed to create account %v", account.ID)
	}
	if _, ok := s.accounts[account.ID]; ok {
		return ErrDuplicateAccount
	}
	if _, ok := s.accountsByIBAN[account.IBAN]; ok {
		return ErrDuplicateAccount
	}
	stored := *account
	s.accounts[stored.ID] = &stored
	s.accountsByIBAN[stored.IBAN] = stored.ID
	tx.undo = append(tx.undo, func() {
		delete(s.accounts, stored.ID)
		delete(s.accountsByIBAN, stored.IBAN)
	})
	return nil
}

func (tx *memoryTx) GetAccount(ctx context.Context, accountID string) (*ledger.Account, error) {
	return tx.storage.getAccount(accountID)
}

func (tx *memoryTx) FindAccountByIBAN(ctx context.Context, iban string) (*ledger.Account, error) {
	return tx.storage.findAccountByIBAN(iban)
}

func (tx *memoryTx) AdjustBalance(ctx context.Context, accountID string, delta decimal.Decimal) (decimal.Decimal, error) {
	account, ok := tx.storage.accounts[accountID]
	if !ok {
		return decimal.Zero, ledger.ErrAccountNotFound
	}
	newBalance := account.Balance.Add(delta)
	if newBalance.IsNegative() {
		return decimal.Zero, ledger.ErrInsufficientFunds
	}
	prevBalance := account.Balance
	account.Balance = newBalance
	tx.undo = append(tx.undo, func() { account.Balance = prevBalance })
	return newBalance, nil
}

func (tx *memoryTx) AppendTransaction(ctx context.Context, trx *ledger.Transaction) error {
	s := tx.storage
	if _, ok := s.accounts[trx.AccountID]; !ok {
		return errors.Wrapf(ledger.ErrAccountNotFound, "Failed to append transaction %v", trx.ID)
	}
	if _, ok := s.transactionIDs[trx.ID]; ok {
		return ledger.ErrDuplicateTransaction
	}
	accountID, trxID := trx.AccountID, trx.ID
	prevLen := len(s.journal[accountID])
	s.journal[accountID] = append(s.journal[accountID], *trx)
	s.transactionIDs[trxID] = struct{}{}
	tx.undo = append(tx.undo, func() {
		s.journal[accountID] = s.journal[accountID][:prevLen]
		delete(s.transactionIDs, trxID)
	})
	return nil
}
