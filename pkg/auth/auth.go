// Package auth authenticates bank users and maintains their sessions.
package auth

import (
	"context"
	"time"

	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/evgeny-myasishchev/vault.banking/pkg/dal"
	"github.com/evgeny-myasishchev/vault.banking/pkg/lib-core-golang/diag"
)

var logger = diag.CreateLogger()

// ErrInvalidCredentials is returned when username or password do not match
var ErrInvalidCredentials = errors.New("Invalid username or password")

// DefaultSessionTTL is used unless configured otherwise
const DefaultSessionTTL = 30 * time.Minute

// Session of an authenticated user
type Session struct {
	Token string
	User  *dal.UserDTO
}

// Service is an auth service abstraction
type Service interface {
	Login(ctx context.Context, username, password string) (*Session, error)
	Logout(ctx context.Context, token string) error

	// Authenticate returns username of the session. Fails with ErrSessionNotFound
	// if the session is unknown or expired
	Authenticate(ctx context.Context, token string) (string, error)
}

type service struct {
	storage    dal.Storage
	sessions   SessionStore
	sessionTTL time.Duration
	newToken   func() string
}

func (svc *service) Login(ctx context.Context, username, password string) (*Session, error) {
	logger.Debug(ctx, "Authenticating user %v", username)
	user, err := svc.storage.GetUser(ctx, username)
	if err != nil {
		if errors.Cause(err) == dal.ErrUserNotFound {
			logger.Info(ctx, "Login attempt of unknown user %v", username)
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, "Failed to get user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.Info(ctx, "Wrong password of user %v", username)
		return nil, ErrInvalidCredentials
	}
	token := svc.newToken()
	if err := svc.sessions.Save(ctx, token, user.Username, svc.sessionTTL); err != nil {
		return nil, errors.Wrap(err, "Failed to save session")
	}
	logger.Info(ctx, "User %v logged in", username)
	return &Session{Token: token, User: user}, nil
}

func (svc *service) Logout(ctx context.Context, token string) error {
	return errors.Wrap(svc.sessions.Delete(ctx, token), "Failed to delete session")
}

func (svc *service) Authenticate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrSessionNotFound
	}
	return svc.sessions.Get(ctx, token)
}

// HashPassword returns bcrypt hash of the password
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "Failed to hash password")
	}
	return string(hash), nil
}

// ServiceOpt is an option for auth service
type ServiceOpt func(*service)

// WithStorage will init the service with storage
func WithStorage(storage dal.Storage) ServiceOpt {
	return func(svc *service) {
		svc.storage = storage
	}
}

// WithSessionStore will init the service with a session store
func WithSessionStore(sessions SessionStore) ServiceOpt {
	return func(svc *service) {
		svc.sessions = sessions
	}
}

// WithSessionTTL sets for how long sessions are valid
func WithSessionTTL(ttl time.Duration) ServiceOpt {
	return func(svc *service) {
		svc.sessionTTL = ttl
	}
}

// NewService returns an instance of an auth service
func NewService(opts ...ServiceOpt) Service {
	svc := &service{
		sessionTTL: DefaultSessionTTL,
		newToken:   func() string { return uuid.NewV4().String() },
	}
	for _, opt := range opts {
		opt(svc)
	}
	return Service(svc)
}
