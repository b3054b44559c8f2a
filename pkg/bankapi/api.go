// Package bankapi is a client of the banking HTTP api.
package bankapi

import (
	"context"

	"github.com/pkg/errors"

	"github.com/evgeny-myasishchev/vault.banking/pkg/lib-core-golang/request"
)

// SessionCookieName is a cookie the server keeps the session in
const SessionCookieName = "vault.sid"

// ErrNoSession is returned if login succeeded but no session cookie was issued
var ErrNoSession = errors.New("Server did not start a session")

// API is an interface to communicate with the bank
type API interface {
	CurrentUser(ctx context.Context) (*UserDTO, error)
	Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error)
	Logout(ctx context.Context) error
}

type api struct {
	baseURL string
	session string
}

func (a *api) withSession(req request.ReqFactory) request.ReqFactory {
	return req.WithHeader("Cookie", SessionCookieName+"="+a.session)
}

func (a *api) CurrentUser(ctx context.Context) (*UserDTO, error) {
	res := request.Do(ctx, a.withSession(request.Get(a.baseURL+"/api/user")))
	var user UserDTO
	if err := res.DecodeJSON(&user); err != nil {
		return nil, errors.Wrap(err, "Failed to fetch current user")
	}
	return &user, nil
}

func (a *api) Transfer(ctx context.Context, trx TransferRequest) (*TransferResult, error) {
	res := request.Do(ctx, a.withSession(request.PostJSON(a.baseURL+"/api/transfers", trx)))
	var result TransferResult
	if err := res.DecodeJSON(&result); err != nil {
		return nil, errors.Wrap(err, "Failed to submit transfer")
	}
	return &result, nil
}

func (a *api) Logout(ctx context.Context) error {
	_, err := request.Do(ctx, a.withSession(request.Post(a.baseURL+"/api/auth/logout", "application/json", nil))).ReadAll()
	return errors.Wrap(err, "Failed to logout")
}

// Factory is a function that creates bank API instance for given credentials
type Factory func(ctx context.Context, baseURL string, username string, password string) (API, error)

// NewAPI logs in and returns an instance of the API bound to the session
func NewAPI(ctx context.Context, baseURL string, username string, password string) (API, error) {
	res := request.Do(ctx, request.PostJSON(baseURL+"/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	}))
	resVal, err := res()
	if err != nil {
		return nil, errors.Wrap(err, "Failed to login")
	}
	defer resVal.Body.Close()

	for _, cookie := range resVal.Cookies() {
		if cookie.Name == SessionCookieName && cookie.Value != "" {
			return &api{baseURL: baseURL, session: cookie.Value}, nil
		}
	}
	return nil, ErrNoSession
}
