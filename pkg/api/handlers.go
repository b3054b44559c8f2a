package api

import (
	"context"
	"net/http"
	"slices"

	"github.com/pkg/errors"

	"github.com/evgeny-myasishchev/vault.banking/pkg/auth"
	"github.com/evgeny-myasishchev/vault.banking/pkg/dal"
	"github.com/evgeny-myasishchev/vault.banking/pkg/ledger"
	"github.com/evgeny-myasishchev/vault.banking/pkg/lib-core-golang/router"
	"github.com/evgeny-myasishchev/vault.banking/pkg/money"
	"github.com/evgeny-myasishchev/vault.banking/pkg/transfers"
)

func sessionCookie(token string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *handlers) login(w http.ResponseWriter, req *http.Request, t router.HandlerToolkit) error {
	var payload loginRequest
	if err := t.BindPayload(&payload); err != nil {
		return err
	}
	ctx := req.Context()
	session, err := h.auth.Login(ctx, payload.Username, payload.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return router.UnauthorizedError("Invalid credentials")
		}
		return err
	}
	user, err := h.loadUser(auth.ContextWithUsername(ctx, session.User.Username), session.User)
	if err != nil {
		return err
	}
	return t.WriteJSON(
		loginResponse{Success: true, User: user},
		t.WithCookie(sessionCookie(session.Token, 0)),
	)
}

func (h *handlers) logout(w http.ResponseWriter, req *http.Request, t router.HandlerToolkit) error {
	if token := auth.SessionToken(req); token != "" {
		if err := h.auth.Logout(req.Context(), token); err != nil {
			return err
		}
	}
	return t.WriteJSON(successResponse{Success: true}, t.WithCookie(sessionCookie("", -1)))
}

func (h *handlers) currentUser(w http.ResponseWriter, req *http.Request, t router.HandlerToolkit) error {
	ctx := req.Context()
	username := auth.Username(ctx)
	if username == "" {
		return errNotAuthenticated()
	}
	user, err := h.storage.GetUser(ctx, username)
	if err != nil {
		if errors.Is(err, dal.ErrUserNotFound) {
			return router.ResourceNotFoundError("User not found")
		}
		return err
	}
	dto, err := h.loadUser(ctx, user)
	if err != nil {
		return err
	}
	return t.WriteJSON(dto)
}

// loadUser collects accounts of the user and their journals merged newest first
func (h *handlers) loadUser(ctx context.Context, user *dal.UserDTO) (*userDTO, error) {
	accounts, err := h.storage.ListAccountsByOwner(ctx, user.Username)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to list accounts")
	}
	var journal []*ledger.Transaction
	for _, account := range accounts {
		records, err := dal.CollectTransactions(h.storage.ListTransactions(ctx, account.ID))
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to list transactions of %v", account.ID)
		}
		journal = append(journal, records...)
	}
	slices.SortStableFunc(journal, func(a, b *ledger.Transaction) int {
		return b.Date.Compare(a.Date)
	})
	return newUserDTO(user, accounts, journal), nil
}

func (h *handlers) transfer(w http.ResponseWriter, req *http.Request, t router.HandlerToolkit) error {
	ctx := req.Context()
	username := auth.Username(ctx)
	if username == "" {
		return errNotAuthenticated()
	}
	var payload transferRequest
	if err := t.BindPayload(&payload); err != nil {
		return err
	}
	amount, err := money.Parse(payload.Amount)
	if err != nil {
		logger.WithError(err).Info(ctx, "Rejecting transfer with malformed amount")
		return router.BadRequestError(transfers.KindInvalidRequest.Message())
	}
	result, err := h.transfers.Transfer(ctx, username, &transfers.Request{
		SourceAccountID: payload.SourceAccountID,
		RecipientIBAN:   payload.RecipientIBAN,
		RecipientName:   payload.RecipientName,
		Amount:          amount,
		Reference:       payload.Reference,
	})
	if err != nil {
		return transferHTTPError(err)
	}
	return t.WriteJSON(newTransferResponse(result))
}

func (h *handlers) accountTransactions(w http.ResponseWriter, req *http.Request, t router.HandlerToolkit) error {
	ctx := req.Context()
	username := auth.Username(ctx)
	if username == "" {
		return errNotAuthenticated()
	}
	var params struct {
		AccountID string `validate:"required"`
		Limit     int    `validate:"min=1,max=500"`
	}
	if err := t.BindParams().
		PathParam("id").String(&params.AccountID).
		QueryParam("limit").Default(defaultHistoryLimit).Int(&params.Limit).
		Validate(&params); err != nil {
		return err
	}

	account, err := h.storage.GetAccount(ctx, params.AccountID)
	if err != nil {
		if errors.Is(err, ledger.ErrAccountNotFound) {
			return router.ResourceNotFoundError("Account not found")
		}
		return err
	}
	if account.Owner != username {
		logger.Warn(ctx, "Account %v is not owned by the user", account.ID)
		return router.ResourceNotFoundError("Account not found")
	}

	result := accountTransactionsResponse{
		AccountID:    account.ID,
		Transactions: make([]*transactionDTO, 0, params.Limit),
	}
	for trx, err := range h.storage.ListTransactions(ctx, account.ID) {
		if err != nil {
			return errors.Wrapf(err, "Failed to list transactions of %v", account.ID)
		}
		result.Transactions = append(result.Transactions, newTransactionDTO(trx))
		if len(result.Transactions) == params.Limit {
			break
		}
	}
	return t.WriteJSON(result)
}
