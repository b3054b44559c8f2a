// Package api exposes banking operations over HTTP.
package api

import (
	"net/http"

	"go.uber.org/dig"

	"github.com/evgeny-myasishchev/vault.banking/pkg/auth"
	"github.com/evgeny-myasishchev/vault.banking/pkg/dal"
	"github.com/evgeny-myasishchev/vault.banking/pkg/lib-core-golang/diag"
	"github.com/evgeny-myasishchev/vault.banking/pkg/lib-core-golang/router"
	"github.com/evgeny-myasishchev/vault.banking/pkg/transfers"
)

//go:generate mockgen -destination=mock_transfers_test.go -package=api -mock_names=Service=MockTransferService github.com/evgeny-myasishchev/vault.banking/pkg/transfers Service
//go:generate mockgen -destination=mock_auth_test.go -package=api -mock_names=Service=MockAuthService github.com/evgeny-myasishchev/vault.banking/pkg/auth Service

var logger = diag.CreateLogger()

// RoutesDeps are services used by api handlers
type RoutesDeps struct {
	dig.In

	Storage   dal.Storage
	Auth      auth.Service
	Transfers transfers.Service
}

type handlers struct {
	storage   dal.Storage
	auth      auth.Service
	transfers transfers.Service
}

// SetupRoutes registers api routes and the session middleware
func SetupRoutes(r router.Router, deps RoutesDeps) {
	h := &handlers{
		storage:   deps.Storage,
		auth:      deps.Auth,
		transfers: deps.Transfers,
	}

	r.Use(router.MiddlewareFunc(auth.NewSessionMiddleware(deps.Auth)))

	r.Handle(http.MethodGet, "/v1/healthcheck/ping", router.ToolkitHandlerFunc(h.ping))

	r.Handle(http.MethodPost, "/api/auth/login", router.ToolkitHandlerFunc(h.login))
	r.Handle(http.MethodPost, "/api/auth/logout", router.ToolkitHandlerFunc(h.logout))
	r.Handle(http.MethodGet, "/api/user", router.ToolkitHandlerFunc(h.currentUser))

	r.Handle(http.MethodPost, "/api/transfers", router.ToolkitHandlerFunc(h.transfer))
	r.Handle(http.MethodGet, "/api/accounts/:id/transactions", router.ToolkitHandlerFunc(h.accountTransactions))
}

func (h *handlers) ping(w http.ResponseWriter, req *http.Request, t router.HandlerToolkit) error {
	return t.WriteJSON(map[string]string{"status": "ok"})
}

func errNotAuthenticated() error {
	return router.UnauthorizedError(transfers.KindNotAuthenticated.Message())
}

// transferHTTPError maps transfer failures to http errors exposing
// only the user facing message of the kind
func transferHTTPError(err error) error {
	kind := transfers.KindOf(err)
	message := kind.Message()
	switch kind {
	case transfers.KindNotAuthenticated:
		return router.UnauthorizedError(message)
	case transfers.KindInvalidRequest:
		return router.BadRequestError(message)
	case transfers.KindSourceNotFound:
		return router.ResourceNotFoundError(message)
	case transfers.KindInsufficientFunds:
		return router.UnprocessableEntityError(message)
	default:
		return router.ServiceUnavailableError(message)
	}
}
