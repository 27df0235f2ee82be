package auth

import (
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/linkstash/linkstash-back/internal/config"
)

type Hasher interface {
	Hash(pass string) (string, error)
	Verify(hash, pass string) bool
}

// BcryptHasher wraps bcrypt with a configurable cost. The output embeds
// its own salt, so hashing the same password twice yields different
// strings while Verify still matches both.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cfg *config.Config) Hasher {
	return &BcryptHasher{cost: cfg.BcryptCost}
}

func (h *BcryptHasher) Hash(pass string) (string, error) {
	passwordHashB, err := bcrypt.GenerateFromPassword([]byte(pass), h.cost)
	if err != nil {
		return "", errors.Wrap(err, "generate password hash")
	}
	return string(passwordHashB), nil
}

// Verify reports whether pass matches hash. Comparison is constant-time
// inside bcrypt; a mismatch is a normal false, never an error.
func (h *BcryptHasher) Verify(hash, pass string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pass)) == nil
}
