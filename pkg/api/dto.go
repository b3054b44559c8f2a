package api

import (
	"encoding/json"
	"time"

	"github.com/evgeny-myasishchev/vault.banking/pkg/dal"
	"github.com/evgeny-myasishchev/vault.banking/pkg/ledger"
	"github.com/evgeny-myasishchev/vault.banking/pkg/money"
	"github.com/evgeny-myasishchev/vault.banking/pkg/transfers"
)

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type loginResponse struct {
	Success bool     `json:"success"`
	User    *userDTO `json:"user"`
}

type accountDTO struct {
	ID       string      `json:"id"`
	Type     string      `json:"type"`
	IBAN     string      `json:"iban"`
	Balance  json.Number `json:"balance"`
	Currency string      `json:"currency"`
}

func newAccountDTO(account *ledger.Account) *accountDTO {
	return &accountDTO{
		ID:       account.ID,
		Type:     account.Category.Label(),
		IBAN:     account.IBAN,
		Balance:  money.Number(account.Balance),
		Currency: account.Currency,
	}
}

type transactionDTO struct {
	ID               string      `json:"id"`
	AccountID        string      `json:"accountId"`
	Type             string      `json:"type"`
	Amount           json.Number `json:"amount"`
	Fee              json.Number `json:"fee"`
	CounterpartyName string      `json:"counterpartyName"`
	CounterpartyIBAN string      `json:"counterpartyIban"`
	Reference        string      `json:"reference"`
	Date             time.Time   `json:"date"`
}

func newTransactionDTO(trx *ledger.Transaction) *transactionDTO {
	return &transactionDTO{
		ID:               trx.ID,
		AccountID:        trx.AccountID,
		Type:             string(trx.Direction),
		Amount:           money.Number(trx.Amount),
		Fee:              money.Number(trx.Fee),
		CounterpartyName: trx.CounterpartyName,
		CounterpartyIBAN: trx.CounterpartyIBAN,
		Reference:        trx.Reference,
		Date:             trx.Date,
	}
}

type userDTO struct {
	Username     string            `json:"username"`
	Name         string            `json:"name"`
	Accounts     []*accountDTO     `json:"accounts"`
	Transactions []*transactionDTO `json:"transactions"`
}

func newUserDTO(user *dal.UserDTO, accounts []*ledger.Account, journal []*ledger.Transaction) *userDTO {
	dto := &userDTO{
		Username:     user.Username,
		Name:         user.Name,
		Accounts:     make([]*accountDTO, 0, len(accounts)),
		Transactions: make([]*transactionDTO, 0, len(journal)),
	}
	for _, account := range accounts {
		dto.Accounts = append(dto.Accounts, newAccountDTO(account))
	}
	for _, trx := range journal {
		dto.Transactions = append(dto.Transactions, newTransactionDTO(trx))
	}
	return dto
}

type transferRequest struct {
	SourceAccountID string      `json:"sourceAccountId"`
	RecipientIBAN   string      `json:"recipientIban"`
	RecipientName   string      `json:"recipientName"`
	Amount          json.Number `json:"amount"`
	Reference       string      `json:"reference"`
}

type transferResponse struct {
	Success     bool            `json:"success"`
	Transaction *transactionDTO `json:"transaction"`
	IsInternal  bool            `json:"isInternal"`
}

func newTransferResponse(result *transfers.Result) *transferResponse {
	return &transferResponse{
		Success:     result.Success,
		Transaction: newTransactionDTO(result.Transaction),
		IsInternal:  result.IsInternal,
	}
}

type accountTransactionsResponse struct {
	AccountID    string            `json:"accountId"`
	Transactions []*transactionDTO `json:"transactions"`
}
