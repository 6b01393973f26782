package adoptionserver

import (
	"strings"

	"github.com/gin-gonic/gin"

	userports "github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
	apierrors "github.com/Apurer/pet-adoption-api/internal/shared/errors"
	"github.com/Apurer/pet-adoption-api/internal/shared/identity"
)

const actorContextKey = "adoptionserver.actor"

// Authenticator turns bearer tokens into request actors.
type Authenticator struct {
	tokens userports.TokenIssuer
}

// NewAuthenticator verifies tokens with the given issuer.
func NewAuthenticator(tokens userports.TokenIssuer) *Authenticator {
	return &Authenticator{tokens: tokens}
}

// Required rejects requests without a valid bearer token.
func (a *Authenticator) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		if a == nil || a.tokens == nil {
			apierrors.DefaultResponder.Unauthorized(c, "authentication is not configured")
			return
		}
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			apierrors.DefaultResponder.Unauthorized(c, "missing bearer token")
			return
		}
		actor, err := a.tokens.Verify(token)
		if err != nil {
			apierrors.DefaultResponder.Unauthorized(c, err.Error())
			return
		}
		c.Set(actorContextKey, actor)
		c.Request = c.Request.WithContext(identity.WithActor(c.Request.Context(), actor))
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// actorFrom returns the authenticated caller; routes behind Required always have one.
func actorFrom(c *gin.Context) identity.Actor {
	if value, ok := c.Get(actorContextKey); ok {
		if actor, ok := value.(identity.Actor); ok {
			return actor
		}
	}
	actor, _ := identity.ActorFrom(c.Request.Context())
	return actor
}
