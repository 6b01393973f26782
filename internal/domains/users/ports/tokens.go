package ports

import (
	"errors"

	"github.com/Apurer/pet-adoption-api/internal/shared/identity"
)

// ErrInvalidToken covers malformed, expired and badly signed tokens.
var ErrInvalidToken = errors.New("invalid or expired token")

// TokenIssuer signs and verifies bearer tokens carrying {sub, email, role}.
type TokenIssuer interface {
	Issue(actor identity.Actor) (string, error)
	Verify(token string) (identity.Actor, error)
}
