// Package transfers moves funds between accounts keeping balances
// and journals consistent.
package transfers

import (
	"context"
	"time"

	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
	"github.com/shopspring/decimal"

	"github.com/evgeny-myasishchev/vault.banking/pkg/dal"
	"github.com/evgeny-myasishchev/vault.banking/pkg/directory"
	"github.com/evgeny-myasishchev/vault.banking/pkg/fees"
	"github.com/evgeny-myasishchev/vault.banking/pkg/ledger"
	"github.com/evgeny-myasishchev/vault.banking/pkg/lib-core-golang/diag"
)

var logger = diag.CreateLogger()

// ExternalCounterpartyName is used when the recipient name is neither given nor known
const ExternalCounterpartyName = "External Transfer"

type state string

const (
	stateValidated         state = "Validated"
	stateFundsChecked      state = "FundsChecked"
	stateDebited           state = "Debited"
	stateJournaledOutgoing state = "JournaledOutgoing"
	stateCredited          state = "Credited"
	stateJournaledIncoming state = "JournaledIncoming"
	stateCommitted         state = "Committed"
)

// Service performs transfers
type Service interface {
	// Transfer debits the source account of the user and credits the recipient
	// if it is held by the bank. Either everything is committed or nothing is
	Transfer(ctx context.Context, username string, req *Request) (*Result, error)
}

type service struct {
	storage  dal.Storage
	resolver directory.Resolver
	fees     fees.Policy
	clock    *monotonicClock
	newID    func() string
}

type transfer struct {
	req        *Request
	source     *ledger.Account
	recipient  directory.Classification
	senderName string
	fee        decimal.Decimal
	outgoing   *ledger.Transaction
	incoming   *ledger.Transaction
}

func (s *service) logState(ctx context.Context, st state, t *transfer) {
	logger.WithData(diag.MsgData{
		"state":         st,
		"transactionId": t.outgoing.ID,
		"internal":      t.recipient.Internal,
	}).Debug(ctx, "Transfer %v from %v", st, t.source.ID)
}

func (s *service) Transfer(ctx context.Context, username string, req *Request) (*Result, error) {
	if username == "" {
		return nil, ErrNotAuthenticated
	}
	if err := req.Validate(); err != nil {
		logger.WithError(err).Info(ctx, "Rejecting invalid transfer request")
		return nil, err
	}

	source, err := s.storage.GetAccount(ctx, req.SourceAccountID)
	if err != nil {
		if errors.Cause(err) == ledger.ErrAccountNotFound {
			return nil, newError(KindSourceNotFound, err)
		}
		return nil, newError(KindStorageUnavailable, err)
	}
	if source.Owner != username {
		logger.Warn(ctx, "Account %v is not owned by the user", source.ID)
		return nil, newError(KindSourceNotFound, errors.Errorf("Account %v is not owned by %v", source.ID, username))
	}

	senderName, err := s.displayName(ctx, username)
	if err != nil {
		return nil, newError(KindStorageUnavailable, err)
	}

	t := &transfer{
		req:        req,
		source:     source,
		recipient:  s.resolver.Classify(req.RecipientIBAN),
		senderName: senderName,
	}
	t.fee = s.fees.FeeFor(t.recipient.Internal, req.RecipientIBAN)
	t.outgoing = s.outgoingRecord(t)
	s.logState(ctx, stateValidated, t)

	if err := s.storage.InTx(ctx, func(tx dal.Tx) error {
		return s.apply(ctx, tx, t)
	}); err != nil {
		if errors.Cause(err) == ledger.ErrInsufficientFunds {
			logger.Info(ctx, "Insufficient funds on %v", source.ID)
			return nil, newError(KindInsufficientFunds, err)
		}
		logger.WithError(err).Error(ctx, "Transfer from %v failed", source.ID)
		return nil, newError(KindStorageUnavailable, err)
	}
	s.logState(ctx, stateCommitted, t)
	logger.WithData(diag.MsgData{
		"transactionId": t.outgoing.ID,
		"amount":        req.Amount.String(),
		"fee":           t.fee.String(),
	}).Info(ctx, "Transfer from %v committed. Internal: %v", source.ID, t.recipient.Internal)

	return &Result{
		Success:     true,
		Transaction: t.outgoing,
		IsInternal:  t.recipient.Internal,
	}, nil
}

func (s *service) apply(ctx context.Context, tx dal.Tx, t *transfer) error {
	total := t.req.Amount.Add(t.fee)

	// Fails fast under the unit of work, the debit below is still checked by the store
	current, err := tx.GetAccount(ctx, t.source.ID)
	if err != nil {
		return err
	}
	if current.Balance.LessThan(total) {
		return ledger.ErrInsufficientFunds
	}
	s.logState(ctx, stateFundsChecked, t)

	if _, err := tx.AdjustBalance(ctx, t.source.ID, total.Neg()); err != nil {
		return err
	}
	s.logState(ctx, stateDebited, t)

	if err := tx.AppendTransaction(ctx, t.outgoing); err != nil {
		return err
	}
	s.logState(ctx, stateJournaledOutgoing, t)

	if !t.recipient.Internal {
		return nil
	}

	if _, err := tx.AdjustBalance(ctx, t.recipient.AccountID, t.req.Amount); err != nil {
		return errors.Wrapf(err, "Failed to credit %v", t.recipient.AccountID)
	}
	s.logState(ctx, stateCredited, t)

	t.incoming = s.incomingRecord(t)
	if err := tx.AppendTransaction(ctx, t.incoming); err != nil {
		return err
	}
	s.logState(ctx, stateJournaledIncoming, t)
	return nil
}

func (s *service) outgoingRecord(t *transfer) *ledger.Transaction {
	counterpartyName := t.req.RecipientName
	if counterpartyName == "" {
		counterpartyName = t.recipient.OwnerName
	}
	if counterpartyName == "" {
		counterpartyName = ExternalCounterpartyName
	}
	return &ledger.Transaction{
		ID:               s.newID(),
		AccountID:        t.source.ID,
		Direction:        ledger.Outgoing,
		Amount:           t.req.Amount,
		Fee:              t.fee,
		CounterpartyName: counterpartyName,
		CounterpartyIBAN: t.req.RecipientIBAN,
		Reference:        t.req.Reference,
		Date:             s.clock.Now(),
	}
}

func (s *service) incomingRecord(t *transfer) *ledger.Transaction {
	return &ledger.Transaction{
		ID:               s.newID(),
		AccountID:        t.recipient.AccountID,
		Direction:        ledger.Incoming,
		Amount:           t.req.Amount,
		Fee:              decimal.Zero,
		CounterpartyName: t.senderName,
		CounterpartyIBAN: t.source.IBAN,
		Reference:        t.req.Reference,
		Date:             s.clock.Now(),
	}
}

func (s *service) displayName(ctx context.Context, username string) (string, error) {
	user, err := s.storage.GetUser(ctx, username)
	if err != nil {
		if errors.Cause(err) == dal.ErrUserNotFound {
			return username, nil
		}
		return "", err
	}
	if user.Name == "" {
		return username, nil
	}
	return user.Name, nil
}

// ServiceOpt is an option of the transfer service
type ServiceOpt func(s *service)

// WithStorage sets the storage of accounts and journals
func WithStorage(storage dal.Storage) ServiceOpt {
	return func(s *service) {
		s.storage = storage
	}
}

// WithResolver sets the directory used to classify recipients
func WithResolver(resolver directory.Resolver) ServiceOpt {
	return func(s *service) {
		s.resolver = resolver
	}
}

// WithFeePolicy overrides fees.Default
func WithFeePolicy(policy fees.Policy) ServiceOpt {
	return func(s *service) {
		s.fees = policy
	}
}

// WithNow sets the source of time for journal records
func WithNow(now func() time.Time) ServiceOpt {
	return func(s *service) {
		s.clock.now = now
	}
}

// WithNewID sets the generator of journal record ids
func WithNewID(newID func() string) ServiceOpt {
	return func(s *service) {
		s.newID = newID
	}
}

// NewService returns a transfer service. Storage and resolver are required
func NewService(opts ...ServiceOpt) Service {
	s := &service{
		fees:  fees.Default,
		clock: &monotonicClock{now: time.Now},
		newID: func() string { return uuid.NewV4().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.storage == nil || s.resolver == nil {
		panic("transfer service requires storage and resolver")
	}
	return s
}
