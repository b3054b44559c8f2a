package auth

import (
	"context"
	"net/http"

	"github.com/evgeny-myasishchev/vault.banking/pkg/lib-core-golang/diag"
)

// SessionCookie is a name of the cookie that holds session token
const SessionCookie = "vault.sid"

type contextKeys string

const usernameKey contextKeys = "username"

// ContextWithUsername returns context of an authenticated user
func ContextWithUsername(ctx context.Context, username string) context.Context {
	ctx = diag.ContextWithUsername(ctx, username)
	return context.WithValue(ctx, usernameKey, username)
}

// Username returns authenticated username or empty string
func Username(ctx context.Context) string {
	val, _ := ctx.Value(usernameKey).(string)
	return val
}

// SessionToken returns session token of the request if any
func SessionToken(req *http.Request) string {
	cookie, err := req.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// NewSessionMiddleware resolves the session cookie into an authenticated user.
// Requests without a valid session are passed through anonymous
func NewSessionMiddleware(svc Service) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			token := SessionToken(req)
			if token == "" {
				next.ServeHTTP(w, req)
				return
			}
			ctx := req.Context()
			username, err := svc.Authenticate(ctx, token)
			if err != nil {
				if err != ErrSessionNotFound {
					logger.WithError(err).Error(ctx, "Failed to authenticate session")
				}
				next.ServeHTTP(w, req)
				return
			}
			next.ServeHTTP(w, req.WithContext(ContextWithUsername(ctx, username)))
		})
	}
}
