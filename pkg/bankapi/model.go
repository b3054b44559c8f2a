package bankapi

import (
	"encoding/json"
	"time"
)

// AccountDTO is an account of the current user
type AccountDTO struct {
	ID       string      `json:"id"`
	Type     string      `json:"type"`
	IBAN     string      `json:"iban"`
	Balance  json.Number `json:"balance"`
	Currency string      `json:"currency"`
}

// TransactionDTO is a journal record
type TransactionDTO struct {
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

// UserDTO is the current user with accounts and recent transactions
type UserDTO struct {
	Username     string           `json:"username"`
	Name         string           `json:"name"`
	Accounts     []AccountDTO     `json:"accounts"`
	Transactions []TransactionDTO `json:"transactions"`
}

// TransferRequest is a payload to submit a transfer
type TransferRequest struct {
	SourceAccountID string      `json:"sourceAccountId"`
	RecipientIBAN   string      `json:"recipientIban"`
	RecipientName   string      `json:"recipientName,omitempty"`
	Amount          json.Number `json:"amount"`
	Reference       string      `json:"reference,omitempty"`
}

// TransferResult is an outcome of a committed transfer
type TransferResult struct {
	Success     bool           `json:"success"`
	Transaction TransactionDTO `json:"transaction"`
	IsInternal  bool           `json:"isInternal"`
}
