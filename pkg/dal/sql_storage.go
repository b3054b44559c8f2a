package dal

import (
	"context"
	"database/sql"
	"iter"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/evgeny-myasishchev/vault.banking/pkg/ledger"
	"github.com/evgeny-myasishchev/vault.banking/pkg/money"
)

// Statements are kept portable between sqlite and postgres.
// Note: sqlite numbers $N params in the order of first appearance,
// so they must always be introduced in ascending order
var schema = []string{`
CREATE TABLE IF NOT EXISTS users(
	username      VARCHAR(64) NOT NULL PRIMARY KEY,
	password_hash TEXT NOT NULL,
	name          TEXT NOT NULL
)`, `
CREATE TABLE IF NOT EXISTS accounts(
	id       VARCHAR(64) NOT NULL PRIMARY KEY,
	owner    VARCHAR(64) NOT NULL REFERENCES users(username),
	category VARCHAR(16) NOT NULL,
	iban     VARCHAR(34) NOT NULL UNIQUE,
	balance  BIGINT NOT NULL CHECK (balance >= 0),
	currency CHAR(3) NOT NULL
)`, `
CREATE TABLE IF NOT EXISTS transactions(
	id                VARCHAR(36) NOT NULL PRIMARY KEY,
	account_id        VARCHAR(64) NOT NULL REFERENCES accounts(id),
	direction         VARCHAR(8) NOT NULL,
	amount            BIGINT NOT NULL,
	fee               BIGINT NOT NULL,
	counterparty_name TEXT NOT NULL,
	counterparty_iban VARCHAR(34) NOT NULL,
	reference         TEXT NOT NULL,
	booked_at         BIGINT NOT NULL,
	seq               BIGINT NOT NULL
)`, `
CREATE INDEX IF NOT EXISTS transactions_account_booked_at ON transactions(account_id, booked_at)`, `
CREATE UNIQUE INDEX IF NOT EXISTS transactions_account_seq ON transactions(account_id, seq)`,
}

const (
	selectAccount = `SELECT id, owner, category, iban, balance, currency FROM accounts`

	selectTransaction = `
	SELECT
		id, account_id, direction, amount, fee,
		counterparty_name, counterparty_iban, reference, booked_at
	FROM transactions`
)

// queryer is satisfied by both *sql.DB and *sql.Tx
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

type sqlStorage struct {
	db *sql.DB
	sqlOps
}

func (s *sqlStorage) Setup(ctx context.Context) error {
	logger.Info(ctx, "Setup SQL storage")
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "Failed to setup storage")
		}
	}
	return nil
}

func (s *sqlStorage) GetUser(ctx context.Context, username string) (*UserDTO, error) {
	var user UserDTO
	err := s.db.QueryRowContext(ctx, `
	SELECT username, password_hash, name
	FROM users WHERE username = $1`, username).
		Scan(&user.Username, &user.PasswordHash, &user.Name)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to get user %v", username)
	}
	return &user, nil
}

func (s *sqlStorage) ListAccounts(ctx context.Context) ([]*ledger.Account, error) {
	return s.listAccounts(ctx, selectAccount+` ORDER BY id`)
}

func (s *sqlStorage) ListAccountsByOwner(ctx context.Context, owner string) ([]*ledger.Account, error) {
	return s.listAccounts(ctx, selectAccount+` WHERE owner = $1 ORDER BY id`, owner)
}

func (s *sqlStorage) listAccounts(ctx context.Context, query string, args ...interface{}) ([]*ledger.Account, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to list accounts")
	}
	defer rows.Close()
	var result []*ledger.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, account)
	}
	return result, errors.Wrap(rows.Err(), "Failed to list accounts")
}

func (s *sqlStorage) AdjustBalance(ctx context.Context, accountID string, delta decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := s.InTx(ctx, func(tx Tx) error {
		var err error
		balance, err = tx.AdjustBalance(ctx, accountID, delta)
		return err
	})
	return balance, err
}

func (s *sqlStorage) ListTransactions(ctx context.Context, accountID string) iter.Seq2[*ledger.Transaction, error] {
	return func(yield func(*ledger.Transaction, error) bool) {
		rows, err := s.db.QueryContext(ctx,
			selectTransaction+` WHERE account_id = $1 ORDER BY booked_at DESC, seq DESC`, accountID)
		if err != nil {
			yield(nil, errors.Wrapf(err, "Failed to list transactions of %v", accountID))
			return
		}
		defer rows.Close()
		for rows.Next() {
			trx, err := scanTransaction(rows)
			if !yield(trx, err) || err != nil {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, errors.Wrapf(err, "Failed to list transactions of %v", accountID))
		}
	}
}

func (s *sqlStorage) InTx(ctx context.Context, fn func(tx Tx) error) (err error) {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "Failed to begin transaction")
	}
	defer func() {
		if rec := recover(); rec != nil {
			sqlTx.Rollback()
			panic(rec)
		}
	}()
	if err := fn(sqlOps{q: sqlTx}); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			logger.WithError(rbErr).Error(ctx, "Failed to rollback transaction")
		}
		return err
	}
	return errors.Wrap(sqlTx.Commit(), "Failed to commit transaction")
}

// sqlOps implements Tx on top of either the db or an open sql transaction
type sqlOps struct {
	q queryer
}

func (o sqlOps) CreateUser(ctx context.Context, user *UserDTO) error {
	if _, err := o.q.ExecContext(ctx, `
	INSERT INTO users(username, password_hash, name)
	VALUES($1, $2, $3)`,
		user.Username, user.PasswordHash, user.Name); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateUser
		}
		return errors.Wrapf(err, "Failed to create user %v", user.Username)
	}
	return nil
}

func (o sqlOps) CreateAccount(ctx context.Context, account *ledger.Account) error {
	balance, err := money.ToMinor(account.Balance)
	if err != nil {
		return errors.Wrapf(err, "Invalid balance of account %v", account.ID)
	}
	if _, err := o.q.ExecContext(ctx, `
	INSERT INTO accounts(id, owner, category, iban, balance, currency)
	VALUES($1, $2, $3, $4, $5, $6)`,
		account.ID, account.Owner, string(account.Category), account.IBAN,
		balance, account.Currency); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateAccount
		}
		return errors.Wrapf(err, "Failed to create account %v", account.ID)
	}
	return nil
}

func (o sqlOps) GetAccount(ctx context.Context, accountID string) (*ledger.Account, error) {
	return o.queryAccount(ctx, selectAccount+` WHERE id = $1`, accountID)
}

func (o sqlOps) FindAccountByIBAN(ctx context.Context, iban string) (*ledger.Account, error) {
	return o.queryAccount(ctx, selectAccount+` WHERE iban = $1`, iban)
}

func (o sqlOps) queryAccount(ctx context.Context, query string, arg string) (*ledger.Account, error) {
	account, err := scanAccount(o.q.QueryRowContext(ctx, query, arg))
	if errors.Cause(err) == sql.ErrNoRows {
		return nil, ledger.ErrAccountNotFound
	}
	return account, err
}

// AdjustBalance relies on a conditional update so the balance check
// and the change are a single atomic statement
func (o sqlOps) AdjustBalance(ctx context.Context, accountID string, delta decimal.Decimal) (decimal.Decimal, error) {
	deltaMinor, err := money.ToMinor(delta)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "Failed to adjust balance of %v", accountID)
	}
	var minor int64
	err = o.q.QueryRowContext(ctx, `
	UPDATE accounts SET balance = balance + $1
	WHERE id = $2 AND balance + $1 >= 0
	RETURNING balance`, deltaMinor, accountID).Scan(&minor)
	if err == sql.ErrNoRows {
		if _, err := o.GetAccount(ctx, accountID); err != nil {
			return decimal.Zero, err
		}
		return decimal.Zero, ledger.ErrInsufficientFunds
	}
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "Failed to adjust balance of %v", accountID)
	}
	return money.FromMinor(minor), nil
}

// AppendTransaction numbers records of the account journal in append order.
// Callers append under the lock of the account row taken by AdjustBalance
func (o sqlOps) AppendTransaction(ctx context.Context, trx *ledger.Transaction) error {
	amount, err := money.ToMinor(trx.Amount)
	if err != nil {
		return errors.Wrapf(err, "Invalid amount of transaction %v", trx.ID)
	}
	fee, err := money.ToMinor(trx.Fee)
	if err != nil {
		return errors.Wrapf(err, "Invalid fee of transaction %v", trx.ID)
	}
	if _, err := o.q.ExecContext(ctx, `
	INSERT INTO transactions(
		id,
		account_id,
		direction,
		amount,
		fee,
		counterparty_name,
		counterparty_iban,
		reference,
		booked_at,
		seq
	)
	VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9,
		(SELECT COALESCE(MAX(seq), 0) + 1 FROM transactions WHERE account_id = $2))`,
		trx.ID,
		trx.AccountID,
		string(trx.Direction),
		amount,
		fee,
		trx.CounterpartyName,
		trx.CounterpartyIBAN,
		trx.Reference,
		trx.Date.UnixNano(),
	); err != nil {
		if isUniqueViolation(err) {
			return ledger.ErrDuplicateTransaction
		}
		return errors.Wrapf(err, "Failed to append transaction %v", trx.ID)
	}
	return nil
}

func scanAccount(row rowScanner) (*ledger.Account, error) {
	var account ledger.Account
	var category string
	var balance int64
	if err := row.Scan(
		&account.ID,
		&account.Owner,
		&category,
		&account.IBAN,
		&balance,
		&account.Currency,
	); err != nil {
		return nil, errors.Wrap(err, "Failed to read account")
	}
	account.Category = ledger.Category(category)
	account.Balance = money.FromMinor(balance)
	return &account, nil
}

func scanTransaction(row rowScanner) (*ledger.Transaction, error) {
	var trx ledger.Transaction
	var direction string
	var amount, fee, bookedAt int64
	if err := row.Scan(
		&trx.ID,
		&trx.AccountID,
		&direction,
		&amount,
		&fee,
		&trx.CounterpartyName,
		&trx.CounterpartyIBAN,
		&trx.Reference,
		&bookedAt,
	); err != nil {
		return nil, errors.Wrap(err, "Failed to read transaction")
	}
	trx.Direction = ledger.Direction(direction)
	trx.Amount = money.FromMinor(amount)
	trx.Fee = money.FromMinor(fee)
	trx.Date = time.Unix(0, bookedAt).UTC()
	return &trx, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// SQLStorageOpt is an option of SQL storage
type SQLStorageOpt func(s *sqlStorage)

// WithSQLDb will set an explicit db instance for a storage
func WithSQLDb(db *sql.DB) SQLStorageOpt {
	return func(s *sqlStorage) {
		s.db = db
	}
}

// NewSQLStorage returns an instance of a SQL storage
func NewSQLStorage(opts ...SQLStorageOpt) (Storage, error) {
	storage := &sqlStorage{}
	for _, opt := range opts {
		opt(storage)
	}
	if storage.db == nil {
		return nil, errors.New("SQL storage requires a db instance")
	}
	storage.sqlOps = sqlOps{q: storage.db}
	return storage, nil
}
