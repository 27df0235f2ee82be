package auth

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/linkstash/linkstash-back/internal/db"
)

// IdentityStore is the narrow slice of persistence the auth core needs.
// Implementations signal a duplicate email with db.ErrDuplicateKey and a
// missing user with db.ErrRecordNotFound; the core never sees query syntax
// or driver error codes.
type IdentityStore interface {
	CreateUser(ctx context.Context, email, passwordHash string) (*db.User, error)
	FindUserByEmail(ctx context.Context, email string) (*db.User, error)
}

type Core struct {
	store  IdentityStore
	hasher Hasher
	tokens *TokenService
	logger *zap.SugaredLogger
}

func NewCore(store IdentityStore, hasher Hasher, tokens *TokenService, logger *zap.SugaredLogger) *Core {
	return &Core{
		store:  store,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
	}
}

// Signup hashes the password and persists a new user. The store's unique
// constraint on email is the source of truth for duplicates: a violation
// surfacing here is a normal error path, not a bug.
func (c *Core) Signup(ctx context.Context, email, password string) (*db.User, error) {
	hash, err := c.hasher.Hash(password)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	user, err := c.store.CreateUser(ctx, email, hash)
	if err != nil {
		if errors.Is(err, db.ErrDuplicateKey) {
			return nil, ErrDuplicateEmail
		}
		return nil, errors.Wrap(err, "create user")
	}

	c.logger.Infow("user signed up", "user_id", user.ID)
	return user, nil
}

// Login verifies the credentials and issues a bearer token. An unknown
// email and a wrong password fail identically so that login cannot be used
// to probe which emails are registered.
func (c *Core) Login(ctx context.Context, email, password string) (string, *db.User, error) {
	user, err := c.store.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, db.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, errors.Wrap(err, "find user")
	}

	if !c.hasher.Verify(user.Password, password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := c.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, errors.Wrap(err, "issue token")
	}

	c.logger.Infow("user logged in", "user_id", user.ID)
	return token, user, nil
}
