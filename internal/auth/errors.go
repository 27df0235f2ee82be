package auth

import (
	"github.com/pkg/errors"
)

// Domain errors surfaced to the transport layer. The messages are what
// clients see, so they stay short and deliberately non-leaking: a wrong
// password and an unknown email both yield ErrInvalidCredentials.
var (
	ErrDuplicateEmail     = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")

	ErrTokenMalformed = errors.New("token malformed")
	ErrBadSignature   = errors.New("token signature invalid")
	ErrTokenExpired   = errors.New("token expired")
)
